package phpwire

import (
	"fmt"
	"reflect"
	"strings"
)

var valuePtrType = reflect.TypeOf((*Value)(nil))

// assignField stores a decoded field on a ClassMap-constructed
// instance. Targets implementing FieldSetter receive the raw value;
// otherwise the instance must be a pointer to a struct and the field
// is matched by `php` tag, then by case-insensitive exported name.
// No match is a hard error: the wire named a field the target does
// not expose.
func assignField(inst any, class, name string, v *Value) error {
	if fs, ok := inst.(FieldSetter); ok {
		return fs.SetPhpField(name, v)
	}

	rv := reflect.ValueOf(inst)
	if rv.Kind() != reflect.Ptr || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		return &NoSuchFieldError{Class: class, Field: name}
	}
	sv := rv.Elem()
	t := sv.Type()

	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.PkgPath != "" {
			continue // unexported
		}
		fname := strings.ToLower(f.Name)
		if tag, ok := f.Tag.Lookup("php"); ok {
			if tag == "-" {
				continue
			}
			fname = tag
		}
		if fname != name && !strings.EqualFold(f.Name, name) {
			continue
		}
		return setField(sv.Field(i), class, name, v)
	}
	return &NoSuchFieldError{Class: class, Field: name}
}

// setField converts a decoded value into the field's Go type.
func setField(f reflect.Value, class, name string, v *Value) error {
	if !f.CanSet() {
		return &NoSuchFieldError{Class: class, Field: name}
	}

	// *Value and any fields take the decoded value unconverted.
	if f.Type() == valuePtrType {
		f.Set(reflect.ValueOf(v))
		return nil
	}
	if f.Kind() == reflect.Interface && f.Type().NumMethod() == 0 {
		f.Set(reflect.ValueOf(v))
		return nil
	}

	if v.IsNull() {
		f.Set(reflect.Zero(f.Type()))
		return nil
	}

	switch f.Kind() {
	case reflect.Bool:
		b, err := v.AsBool()
		if err != nil {
			return fieldTypeError(class, name, f, v)
		}
		f.SetBool(b)

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		i, err := v.AsInt()
		if err != nil {
			return fieldTypeError(class, name, f, v)
		}
		f.SetInt(i)

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		i, err := v.AsInt()
		if err != nil || i < 0 {
			return fieldTypeError(class, name, f, v)
		}
		f.SetUint(uint64(i))

	case reflect.Float32, reflect.Float64:
		// Integer wire values fill float fields; the format does not
		// distinguish 1 from 1.0 reliably across producers.
		if i, err := v.AsInt(); err == nil {
			f.SetFloat(float64(i))
			return nil
		}
		fl, err := v.AsFloat()
		if err != nil {
			return fieldTypeError(class, name, f, v)
		}
		f.SetFloat(fl)

	case reflect.String:
		s, err := v.AsStr()
		if err != nil {
			return fieldTypeError(class, name, f, v)
		}
		f.SetString(s)

	case reflect.Slice:
		if f.Type().Elem().Kind() == reflect.Uint8 {
			s, err := v.AsStr()
			if err != nil {
				return fieldTypeError(class, name, f, v)
			}
			f.SetBytes([]byte(s))
			return nil
		}
		return fieldTypeError(class, name, f, v)

	default:
		return fieldTypeError(class, name, f, v)
	}
	return nil
}

func fieldTypeError(class, name string, f reflect.Value, v *Value) error {
	return fmt.Errorf("phpwire: cannot assign %s to field %s.%s (%s)", v.Type(), class, name, f.Type())
}
