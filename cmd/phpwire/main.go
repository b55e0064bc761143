// phpwire - PHP serialization codec CLI tool
//
// Usage:
//
//	phpwire decode [flags] [file]   Decode wire text to JSON
//	phpwire encode [file]           Encode JSON to wire text
//	phpwire version                 Print version info
//
// Decode flags:
//
//	--dump            var_dump-style output instead of JSON
//	--assoc           keep every array as ordered key/value pairs
//	--session         require session (name|value) input
//	--charset NAME    declared text encoding of the input
//
// If no file is given, reads from stdin.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"

	"github.com/veldt/phpwire/phpwire"
)

const version = "0.1.0"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "decode":
		cmdDecode(os.Args[2:])
	case "encode":
		cmdEncode(os.Args[2:])
	case "version":
		fmt.Printf("phpwire %s\n", version)
	case "-h", "--help", "help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "phpwire: unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func cmdDecode(args []string) {
	flags := pflag.NewFlagSet("decode", pflag.ExitOnError)
	dump := flags.Bool("dump", false, "var_dump-style output instead of JSON")
	assoc := flags.Bool("assoc", false, "keep every array as ordered key/value pairs")
	session := flags.Bool("session", false, "require session (name|value) input")
	charset := flags.String("charset", "", "declared text encoding of the input")
	if err := flags.Parse(args); err != nil {
		fatal("decode: %v", err)
	}

	data := readInput(flags.Args())
	if *session && !phpwire.IsSession(data) {
		fatal("decode: input is not a session buffer")
	}

	opts := phpwire.DefaultUnserializeOptions()
	opts.Assoc = *assoc
	opts.Charset = *charset

	v, err := phpwire.UnserializeWithOptions(data, opts)
	if err != nil {
		fatal("decode: %v", err)
	}

	if *dump {
		fmt.Print(phpwire.Dump(v))
		return
	}
	out, err := v.ToJSON()
	if err != nil {
		fatal("decode: %v", err)
	}
	os.Stdout.Write(out)
	fmt.Println()
}

func cmdEncode(args []string) {
	flags := pflag.NewFlagSet("encode", pflag.ExitOnError)
	if err := flags.Parse(args); err != nil {
		fatal("encode: %v", err)
	}

	data := readInput(flags.Args())
	v, err := phpwire.FromJSON(data)
	if err != nil {
		fatal("encode: %v", err)
	}
	out, err := phpwire.Serialize(v)
	if err != nil {
		fatal("encode: %v", err)
	}
	fmt.Println(out)
}

func readInput(args []string) []byte {
	var in io.Reader = os.Stdin
	if len(args) > 0 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			fatal("open file: %v", err)
		}
		defer f.Close()
		in = f
	}
	data, err := io.ReadAll(in)
	if err != nil {
		fatal("read input: %v", err)
	}
	return data
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `phpwire - PHP serialization codec

Usage:
  phpwire decode [--dump] [--assoc] [--session] [--charset NAME] [file]
  phpwire encode [file]
  phpwire version

If no file is given, reads from stdin.`)
}

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "phpwire: "+format+"\n", args...)
	os.Exit(1)
}
