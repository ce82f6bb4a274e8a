package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"runtime"
	"strconv"
	"strings"
)

// ParameterSpec describes a single inferred tool parameter.
type ParameterSpec struct {
	Name        string
	Type        string
	Description string
}

// invoker binds a named-argument map to a tool function and runs it.
type invoker func(ctx context.Context, args map[string]any) (result any, err error)

// toolFunc is everything introspection learns about a callable.
type toolFunc struct {
	name     string
	params   []ParameterSpec
	required []string
	invoke   invoker
}

var (
	ctxType = reflect.TypeOf((*context.Context)(nil)).Elem()
	errType = reflect.TypeOf((*error)(nil)).Elem()
)

// fieldDefault is a pre-parsed default value for one argument field.
type fieldDefault struct {
	index int
	value reflect.Value
}

// introspectTool derives a tool's name, parameter schema, and invoke
// adapter from a Go function. Supported shapes are
// func([ctx context.Context][, args A]) [R][, error] where A is a
// struct or pointer to struct whose exported fields are the tool's
// parameters. Unusable functions panic; this is a registration-time
// programming error, not a runtime condition.
func introspectTool(fn any, doc string) (result toolFunc) {
	v := reflect.ValueOf(fn)
	if !v.IsValid() || v.Kind() != reflect.Func {
		panic(fmt.Sprintf("mcp: RegisterTool requires a function, got %T", fn))
	}

	t := v.Type()
	result.name = declaredFuncName(v)

	hasCtx := t.NumIn() > 0 && t.In(0) == ctxType

	argIdx := 0
	if hasCtx {
		argIdx = 1
	}

	var argType reflect.Type
	switch t.NumIn() - argIdx {
	case 0:
		// No parameters beyond an optional context.
	case 1:
		argType = t.In(argIdx)
	default:
		panic(fmt.Sprintf("mcp: tool %s: parameters must be a single argument struct", result.name))
	}

	argPtr := false
	structType := argType
	if structType != nil {
		if structType.Kind() == reflect.Pointer {
			argPtr = true
			structType = structType.Elem()
		}
		if structType.Kind() != reflect.Struct {
			panic(fmt.Sprintf("mcp: tool %s: argument type %s is not a struct", result.name, argType))
		}
	}

	resultIdx, errIdx := -1, -1
	switch t.NumOut() {
	case 0:
	case 1:
		if t.Out(0).Implements(errType) && t.Out(0).Kind() == reflect.Interface {
			errIdx = 0
		} else {
			resultIdx = 0
		}
	case 2:
		if !t.Out(1).Implements(errType) {
			panic(fmt.Sprintf("mcp: tool %s: second return value must be error", result.name))
		}
		resultIdx, errIdx = 0, 1
	default:
		panic(fmt.Sprintf("mcp: tool %s: too many return values", result.name))
	}

	var defaults []fieldDefault
	result.required = []string{}

	if structType != nil {
		for i := 0; i < structType.NumField(); i++ {
			field := structType.Field(i)
			if !field.IsExported() {
				continue
			}

			name := paramName(field)
			if name == "" {
				continue
			}

			spec := ParameterSpec{
				Name:        name,
				Type:        inferParamType(field),
				Description: paramDescription(field, doc, name),
			}
			result.params = append(result.params, spec)

			defTag, hasDefault := field.Tag.Lookup("default")
			if hasDefault {
				if defTag != "" {
					value, err := parseDefaultValue(field.Type, defTag)
					if err != nil {
						panic(fmt.Sprintf("mcp: tool %s: bad default for parameter %s: %v", result.name, name, err))
					}
					defaults = append(defaults, fieldDefault{index: i, value: value})
				}
				continue
			}

			// Pointer fields carry nil as an explicit absent default.
			if field.Type.Kind() != reflect.Pointer {
				result.required = append(result.required, name)
			}
		}
	}

	result.invoke = func(ctx context.Context, args map[string]any) (out any, err error) {
		if ctx == nil {
			ctx = context.Background()
		}

		in := make([]reflect.Value, 0, 2)
		if hasCtx {
			in = append(in, reflect.ValueOf(ctx))
		}

		if structType != nil {
			ptr := reflect.New(structType)
			for _, d := range defaults {
				ptr.Elem().Field(d.index).Set(d.value)
			}

			if len(args) > 0 {
				var data []byte
				data, err = json.Marshal(args)
				if err != nil {
					err = fmt.Errorf("encoding arguments: %w", err)
					return out, err
				}

				err = json.Unmarshal(data, ptr.Interface())
				if err != nil {
					err = fmt.Errorf("binding arguments: %w", err)
					return out, err
				}
			}

			if argPtr {
				in = append(in, ptr)
			} else {
				in = append(in, ptr.Elem())
			}
		}

		returned := v.Call(in)

		if errIdx >= 0 {
			if e, ok := returned[errIdx].Interface().(error); ok && e != nil {
				err = e
				return out, err
			}
		}
		if resultIdx >= 0 {
			out = returned[resultIdx].Interface()
		}

		return out, err
	}

	return result
}

// declaredFuncName returns a function value's declared name: the last
// path segment with any method-value suffix stripped.
func declaredFuncName(v reflect.Value) (result string) {
	result = runtime.FuncForPC(v.Pointer()).Name()

	if idx := strings.LastIndex(result, "/"); idx >= 0 {
		result = result[idx+1:]
	}
	if idx := strings.LastIndex(result, "."); idx >= 0 {
		result = result[idx+1:]
	}

	result = strings.TrimSuffix(result, "-fm")
	return result
}

// paramName resolves a field's wire name from its json tag, falling
// back to the lower-cased field name. Fields tagged json:"-" yield "".
func paramName(field reflect.StructField) (result string) {
	tag := field.Tag.Get("json")
	if tag == "-" {
		return result
	}

	result, _, _ = strings.Cut(tag, ",")
	if result == "" {
		result = strings.ToLower(field.Name)
	}

	return result
}

// inferParamType maps a field to a JSON Schema type. A typehint tag is
// a textual annotation and takes precedence; otherwise the Go type
// decides through a fixed kind table. The mapping is total: anything
// unrecognized falls back to "string".
func inferParamType(field reflect.StructField) (result string) {
	if hint, ok := field.Tag.Lookup("typehint"); ok {
		result = inferHintType(hint)
		return result
	}

	result = inferGoType(field.Type)
	return result
}

// inferGoType maps a Go type to a JSON Schema type after unwrapping
// pointers. Container types map by their outer kind; element types are
// ignored.
func inferGoType(t reflect.Type) (result string) {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	switch t.Kind() {
	case reflect.String:
		result = "string"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		result = "integer"
	case reflect.Float32, reflect.Float64:
		result = "number"
	case reflect.Bool:
		result = "boolean"
	case reflect.Slice, reflect.Array:
		result = "array"
	case reflect.Map, reflect.Struct:
		result = "object"
	default:
		result = "string"
	}

	return result
}

// inferHintType maps a textual type annotation by case-insensitive
// substring matching, in fixed priority order.
func inferHintType(hint string) (result string) {
	lower := strings.ToLower(hint)

	switch {
	case strings.Contains(lower, "int"):
		result = "integer"
	case strings.Contains(lower, "float"), strings.Contains(lower, "number"):
		result = "number"
	case strings.Contains(lower, "bool"):
		result = "boolean"
	case strings.Contains(lower, "list"), strings.Contains(lower, "array"):
		result = "array"
	case strings.Contains(lower, "dict"), strings.Contains(lower, "object"):
		result = "object"
	default:
		result = "string"
	}

	return result
}

// paramDescription resolves a parameter's description: a doc tag wins,
// then the documentation text supplied at registration, then the
// default "Parameter <name>".
func paramDescription(field reflect.StructField, doc, name string) (result string) {
	if tag, ok := field.Tag.Lookup("doc"); ok && tag != "" {
		result = tag
		return result
	}

	result = extractParamDoc(doc, name)
	return result
}

// extractParamDoc scans documentation text line by line for a
// "<name>: ..." or "- <name>: ..." entry, with a secondary
// case-insensitive match on lines mentioning "param <name>" or
// "parameter <name>". Scanning stops at the first matching line.
func extractParamDoc(doc, name string) (result string) {
	result = "Parameter " + name
	if doc == "" {
		return result
	}

	needleParam := "param " + strings.ToLower(name)
	needleParameter := "parameter " + strings.ToLower(name)

	for _, line := range strings.Split(strings.TrimSpace(doc), "\n") {
		line = strings.TrimSpace(line)

		if strings.HasPrefix(line, name+":") || strings.HasPrefix(line, "- "+name+":") {
			_, after, _ := strings.Cut(line, ":")
			result = strings.TrimSpace(after)
			return result
		}

		lower := strings.ToLower(line)
		if strings.Contains(lower, needleParam) || strings.Contains(lower, needleParameter) {
			if _, after, ok := strings.Cut(line, ":"); ok {
				result = strings.TrimSpace(after)
			}
			return result
		}
	}

	return result
}

// parseDefaultValue parses a default tag into a value of the field's
// type. Primitives parse via strconv; composites parse as JSON.
func parseDefaultValue(ft reflect.Type, tag string) (result reflect.Value, err error) {
	if ft.Kind() == reflect.Pointer {
		var elem reflect.Value
		elem, err = parseDefaultValue(ft.Elem(), tag)
		if err != nil {
			return result, err
		}

		result = reflect.New(ft.Elem())
		result.Elem().Set(elem)
		return result, err
	}

	result = reflect.New(ft).Elem()

	switch ft.Kind() {
	case reflect.String:
		result.SetString(tag)

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		var n int64
		n, err = strconv.ParseInt(tag, 10, 64)
		if err != nil {
			return result, err
		}
		result.SetInt(n)

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		var n uint64
		n, err = strconv.ParseUint(tag, 10, 64)
		if err != nil {
			return result, err
		}
		result.SetUint(n)

	case reflect.Float32, reflect.Float64:
		var f float64
		f, err = strconv.ParseFloat(tag, 64)
		if err != nil {
			return result, err
		}
		result.SetFloat(f)

	case reflect.Bool:
		var b bool
		b, err = strconv.ParseBool(tag)
		if err != nil {
			return result, err
		}
		result.SetBool(b)

	default:
		err = json.Unmarshal([]byte(tag), result.Addr().Interface())
		if err != nil {
			return result, err
		}
	}

	return result, err
}
