package appgridlog

import (
	"bytes"
	"encoding"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strings"
)

// metadataSeparator is appended between the message and the encoded metadata.
// AppGrid consumers expect it without a leading space.
const metadataSeparator = "| Metadata: "

// NamedError lets an error choose the name shown in encoded metadata.
type NamedError interface {
	error
	ErrorName() string
}

// StackTracer exposes a textual stack trace for encoded metadata.
type StackTracer interface {
	StackTrace() string
}

// BuildMessage appends the encoded metadata to message. With no metadata the
// message is returned unchanged.
func BuildMessage(message string, metadata []any) (string, error) {
	if len(metadata) == 0 {
		return message, nil
	}
	encoded, err := EncodeMetadata(metadata)
	if err != nil {
		return "", err
	}
	return message + metadataSeparator + encoded, nil
}

// EncodeMetadata renders metadata as a compact JSON array. Error values at
// any depth (slice and array elements, map values, pointers and struct
// fields) are written as "<Name>: <message> | <stack>" strings.
func EncodeMetadata(metadata []any) (string, error) {
	items := make([]any, len(metadata))
	for i, item := range metadata {
		items[i] = replaceErrors(item)
	}

	var buf bytes.Buffer
	if err := encodeJSON(&buf, items); err != nil {
		return "", &SerializationError{What: "metadata", Err: err}
	}
	return buf.String(), nil
}

// FormatError renders err the way it appears inside encoded metadata.
func FormatError(err error) string {
	return fmt.Sprintf("%s: %s | %s", errorName(err), err.Error(), errorStack(err))
}

// maxReplaceDepth bounds the error walk. Deeper values are encoded as given,
// which also leaves reference cycles for the JSON encoder to reject.
const maxReplaceDepth = 32

var (
	errorType         = reflect.TypeOf((*error)(nil)).Elem()
	jsonMarshalerType = reflect.TypeOf((*json.Marshaler)(nil)).Elem()
	textMarshalerType = reflect.TypeOf((*encoding.TextMarshaler)(nil)).Elem()
	anyType           = reflect.TypeOf((*any)(nil)).Elem()
)

// replaceErrors returns v with every reachable error rendered by FormatError.
// Values holding no error are returned unchanged.
func replaceErrors(v any) any {
	if v == nil {
		return nil
	}
	if out, changed := replaceValue(reflect.ValueOf(v), 0); changed {
		return out
	}
	return v
}

// replaceValue reports false when v holds no error.
func replaceValue(v reflect.Value, depth int) (any, bool) {
	if !v.IsValid() || depth > maxReplaceDepth {
		return nil, false
	}

	t := v.Type()
	if t.Implements(errorType) && v.CanInterface() {
		if (v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface) && v.IsNil() {
			return nil, false
		}
		return FormatError(v.Interface().(error)), true
	}
	if t.Implements(jsonMarshalerType) || t.Implements(textMarshalerType) {
		return nil, false
	}

	switch v.Kind() {
	case reflect.Pointer, reflect.Interface:
		if v.IsNil() {
			return nil, false
		}
		return replaceValue(v.Elem(), depth+1)

	case reflect.Slice, reflect.Array:
		if v.Kind() == reflect.Slice && v.IsNil() {
			return nil, false
		}
		items := make([]any, v.Len())
		changed := false
		for i := range items {
			elem := v.Index(i)
			if !elem.CanInterface() {
				return nil, false
			}
			r, ok := replaceValue(elem, depth+1)
			if !ok {
				r = elem.Interface()
			}
			items[i] = r
			changed = changed || ok
		}
		if !changed {
			return nil, false
		}
		return items, true

	case reflect.Map:
		if v.IsNil() {
			return nil, false
		}
		out := reflect.MakeMapWithSize(reflect.MapOf(t.Key(), anyType), v.Len())
		changed := false
		iter := v.MapRange()
		for iter.Next() {
			val := iter.Value()
			if !val.CanInterface() {
				return nil, false
			}
			r, ok := replaceValue(val, depth+1)
			if !ok {
				r = val.Interface()
			}
			out.SetMapIndex(iter.Key(), reflect.ValueOf(&r).Elem())
			changed = changed || ok
		}
		if !changed {
			return nil, false
		}
		return out.Interface(), true

	case reflect.Struct:
		fields, changed, ok := replaceFields(v, depth)
		if !ok || !changed {
			return nil, false
		}
		return fields, true
	}
	return nil, false
}

// replaceFields lists the fields encoding/json would write for the struct v:
// json tag names, "-" and unexported fields skipped, omitempty honored and
// untagged embedded structs flattened. ok is false when a field cannot be
// read, in which case the struct is left to the encoder.
func replaceFields(v reflect.Value, depth int) (fields orderedObject, changed, ok bool) {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		tag := sf.Tag.Get("json")
		if tag == "-" {
			continue
		}
		name, opts, _ := strings.Cut(tag, ",")
		fv := v.Field(i)

		if sf.Anonymous && name == "" {
			inner := fv
			if inner.Kind() == reflect.Pointer {
				if inner.IsNil() {
					continue
				}
				inner = inner.Elem()
			}
			if inner.Kind() == reflect.Struct {
				nested, c, readable := replaceFields(inner, depth+1)
				if !readable {
					return nil, false, false
				}
				fields = append(fields, nested...)
				changed = changed || c
				continue
			}
		}
		if !sf.IsExported() {
			continue
		}
		if !fv.CanInterface() {
			return nil, false, false
		}
		if name == "" {
			name = sf.Name
		}
		if slices.Contains(strings.Split(opts, ","), "omitempty") && isEmptyValue(fv) {
			continue
		}

		r, replaced := replaceValue(fv, depth+1)
		if !replaced {
			r = fv.Interface()
		}
		fields = append(fields, objectField{name: name, value: r})
		changed = changed || replaced
	}
	return fields, changed, true
}

func isEmptyValue(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Array, reflect.Map, reflect.Slice, reflect.String:
		return v.Len() == 0
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64,
		reflect.Interface, reflect.Pointer:
		return v.IsZero()
	}
	return false
}

type objectField struct {
	name  string
	value any
}

// orderedObject encodes as a JSON object in field declaration order.
type orderedObject []objectField

func (o orderedObject) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range o {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := encodeJSON(&buf, f.name); err != nil {
			return nil, err
		}
		buf.WriteByte(':')
		if err := encodeJSON(&buf, f.value); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// encodeJSON writes compact JSON for v without HTML escaping or a trailing newline.
func encodeJSON(buf *bytes.Buffer, v any) error {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return err
	}
	buf.Truncate(buf.Len() - 1)
	return nil
}

func errorName(err error) string {
	if named, ok := err.(NamedError); ok {
		return named.ErrorName()
	}

	t := reflect.TypeOf(err)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	// errors.New, fmt.Errorf and errors.Join carry no meaningful type name.
	switch t.Name() {
	case "", "errorString", "wrapError", "wrapErrors", "joinError":
		return "Error"
	}
	return t.Name()
}

func errorStack(err error) string {
	var tracer StackTracer
	if errors.As(err, &tracer) {
		return tracer.StackTrace()
	}
	return fmt.Sprintf("%+v", err)
}
