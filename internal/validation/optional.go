package validation

import (
	"bytes"
	"encoding/json"
	"reflect"
)

// NullMessage is reported for body fields sent as an explicit JSON null.
const NullMessage = "This field may not be null."

// Optional is a JSON body field that remembers whether the client sent it
// and whether it was sent as null. A pointer cannot tell those apart.
//
// The shared validator sees the inner value when the field is present and
// nothing otherwise, so `required` and `omitempty` keep working. Struct
// reports explicit nulls on its own.
type Optional[T any] struct {
	Value T
	Set   bool
	Null  bool
}

// Some returns a present Optional holding v.
func Some[T any](v T) Optional[T] {
	return Optional[T]{Value: v, Set: true}
}

// Null returns an Optional that was sent as null.
func Null[T any]() Optional[T] {
	return Optional[T]{Set: true, Null: true}
}

// UnmarshalJSON is only called for keys present in the body.
// Type mismatches surface as *json.UnmarshalTypeError, which the decoder
// tags with the field name.
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	var zero T
	o.Value = zero
	o.Set = true
	o.Null = bytes.Equal(bytes.TrimSpace(data), []byte("null"))
	if o.Null {
		return nil
	}
	return json.Unmarshal(data, &o.Value)
}

// Present reports whether a non-null value was sent.
func (o Optional[T]) Present() bool {
	return o.Set && !o.Null
}

// Ptr returns the value, or nil when it was not sent or was null.
func (o Optional[T]) Ptr() *T {
	if !o.Present() {
		return nil
	}
	v := o.Value
	return &v
}

// IsNull reports whether the field was sent as an explicit null.
func (o Optional[T]) IsNull() bool {
	return o.Set && o.Null
}

func (o Optional[T]) validationValue() any {
	if !o.Present() {
		return nil
	}
	return o.Value
}

type optionalField interface {
	IsNull() bool
	validationValue() any
}

// optionalValue is the validator type func for every Optional instantiation.
func optionalValue(field reflect.Value) any {
	if o, ok := field.Interface().(optionalField); ok {
		return o.validationValue()
	}
	return nil
}

// nullFields lists the Optional fields of s that were sent as null.
func nullFields(s any) CustomValidationErrors {
	v := reflect.Indirect(reflect.ValueOf(s))
	if v.Kind() != reflect.Struct {
		return nil
	}

	var out CustomValidationErrors
	for i := 0; i < v.NumField(); i++ {
		sf := v.Type().Field(i)
		if !sf.IsExported() {
			continue
		}
		o, ok := v.Field(i).Interface().(optionalField)
		if !ok || !o.IsNull() {
			continue
		}
		out = append(out, CustomValidationError{Field: jsonName(sf), Message: NullMessage})
	}
	return out
}
