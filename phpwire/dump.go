package phpwire

import (
	"strconv"
	"strings"
)

// Dump renders a value as indented human-readable text, in the shape
// of PHP's var_dump. Intended for the CLI and debugging, not as a
// wire format.
func Dump(v *Value) string {
	var sb strings.Builder
	d := &dumper{seen: make(map[*Value]bool)}
	d.value(&sb, v, 0)
	sb.WriteString("\n")
	return sb.String()
}

// dumper tracks composites on the current path so shared or cyclic
// structures print *RECURSION* instead of looping.
type dumper struct {
	seen map[*Value]bool
}

func (d *dumper) value(sb *strings.Builder, v *Value, depth int) {
	if v.IsNull() {
		sb.WriteString("NULL")
		return
	}

	switch v.typ {
	case TypeList, TypeMap, TypeObject:
		if d.seen[v] {
			sb.WriteString("*RECURSION*")
			return
		}
		d.seen[v] = true
		defer delete(d.seen, v)
	}

	switch v.typ {
	case TypeBool:
		sb.WriteString("bool(")
		sb.WriteString(strconv.FormatBool(v.boolVal))
		sb.WriteString(")")

	case TypeInt:
		sb.WriteString("int(")
		sb.WriteString(strconv.FormatInt(v.intVal, 10))
		sb.WriteString(")")

	case TypeFloat:
		sb.WriteString("float(")
		sb.WriteString(strconv.FormatFloat(v.floatVal, 'g', -1, 64))
		sb.WriteString(")")

	case TypeStr:
		sb.WriteString("string(")
		sb.WriteString(strconv.Itoa(len(v.strVal)))
		sb.WriteString(") ")
		sb.WriteString(strconv.Quote(v.strVal))

	case TypeList:
		sb.WriteString("array(")
		sb.WriteString(strconv.Itoa(len(v.listVal)))
		sb.WriteString(") {")
		for i, elem := range v.listVal {
			writeIndent(sb, depth+1)
			sb.WriteString("[")
			sb.WriteString(strconv.Itoa(i))
			sb.WriteString("]=> ")
			d.value(sb, elem, depth+1)
		}
		writeIndent(sb, depth)
		sb.WriteString("}")

	case TypeMap:
		sb.WriteString("array(")
		sb.WriteString(strconv.Itoa(len(v.mapVal)))
		sb.WriteString(") {")
		for _, e := range v.mapVal {
			writeIndent(sb, depth+1)
			sb.WriteString("[")
			if e.Key.Type() == TypeStr {
				sb.WriteString(strconv.Quote(e.Key.strVal))
			} else {
				sb.WriteString(keyString(e.Key))
			}
			sb.WriteString("]=> ")
			d.value(sb, e.Value, depth+1)
		}
		writeIndent(sb, depth)
		sb.WriteString("}")

	case TypeObject:
		sb.WriteString("object(")
		sb.WriteString(v.objVal.ClassName)
		sb.WriteString(") (")
		sb.WriteString(strconv.Itoa(len(v.objVal.Fields)))
		sb.WriteString(") {")
		for _, f := range v.objVal.Fields {
			writeIndent(sb, depth+1)
			sb.WriteString("[")
			sb.WriteString(strconv.Quote(f.Name))
			sb.WriteString("]=> ")
			d.value(sb, f.Value, depth+1)
		}
		writeIndent(sb, depth)
		sb.WriteString("}")

	default:
		sb.WriteString(v.typ.String())
	}
}

func writeIndent(sb *strings.Builder, depth int) {
	sb.WriteString("\n")
	for i := 0; i < depth; i++ {
		sb.WriteString("  ")
	}
}
