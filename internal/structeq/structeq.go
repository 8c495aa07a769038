// Package structeq implements the structural equality used to compare
// derived query keys. It differs from reflect.DeepEqual in two ways: NaN
// compares equal to NaN, and file-like values are compared by their
// metadata (name, size, content type) rather than their contents.
package structeq

import (
	"math"
	"reflect"
)

// FileLike is the closed set of values compared by metadata instead of
// bytes. Anything carrying a name, a size, and a content type qualifies.
type FileLike interface {
	FileName() string
	FileSize() int64
	FileType() string
}

// Equal reports whether a and b are structurally equal.
func Equal(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	return equalValue(reflect.ValueOf(a), reflect.ValueOf(b))
}

//nolint:cyclop // kind dispatch is a flat switch, splitting it obscures the rules
func equalValue(va, vb reflect.Value) bool {
	va, okA := unwrap(va)
	vb, okB := unwrap(vb)

	// Both nil after unwrapping counts as equal.
	if !okA || !okB {
		return okA == okB
	}

	if fa, fb, ok := asFileLike(va, vb); ok {
		return fa.FileName() == fb.FileName() &&
			fa.FileSize() == fb.FileSize() &&
			fa.FileType() == fb.FileType()
	}

	// Numbers compare numerically across kinds, with NaN equal to itself.
	if na, ok := asFloat(va); ok {
		nb, ok := asFloat(vb)
		if !ok {
			return false
		}

		if math.IsNaN(na) || math.IsNaN(nb) {
			return math.IsNaN(na) && math.IsNaN(nb)
		}

		return na == nb
	}

	if va.Kind() != vb.Kind() {
		return false
	}

	switch va.Kind() {
	case reflect.String:
		return va.String() == vb.String()
	case reflect.Bool:
		return va.Bool() == vb.Bool()
	case reflect.Slice, reflect.Array:
		return equalSequence(va, vb)
	case reflect.Map:
		return equalMap(va, vb)
	case reflect.Struct:
		return equalStruct(va, vb)
	default:
		// Funcs, channels and the like never compare equal.
		return false
	}
}

// unwrap follows interfaces and pointers down to a concrete value. The
// second return is false when the chain ends in nil.
func unwrap(v reflect.Value) (reflect.Value, bool) {
	for v.Kind() == reflect.Interface || v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return v, false
		}

		v = v.Elem()
	}

	return v, true
}

func asFileLike(va, vb reflect.Value) (FileLike, FileLike, bool) {
	if !va.CanInterface() || !vb.CanInterface() {
		return nil, nil, false
	}

	fa, okA := va.Interface().(FileLike)
	fb, okB := vb.Interface().(FileLike)

	return fa, fb, okA && okB
}

func asFloat(v reflect.Value) (float64, bool) {
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(v.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(v.Uint()), true
	case reflect.Float32, reflect.Float64:
		return v.Float(), true
	default:
		return 0, false
	}
}

func equalSequence(va, vb reflect.Value) bool {
	if va.Len() != vb.Len() {
		return false
	}

	for i := 0; i < va.Len(); i++ {
		if !equalValue(va.Index(i), vb.Index(i)) {
			return false
		}
	}

	return true
}

func equalMap(va, vb reflect.Value) bool {
	// MapIndex panics on a key of the wrong type.
	if va.Type().Key() != vb.Type().Key() {
		return false
	}

	if va.Len() != vb.Len() {
		return false
	}

	for _, key := range va.MapKeys() {
		wb := vb.MapIndex(key)
		if !wb.IsValid() {
			return false
		}

		if !equalValue(va.MapIndex(key), wb) {
			return false
		}
	}

	return true
}

func equalStruct(va, vb reflect.Value) bool {
	if va.Type() != vb.Type() {
		return false
	}

	for i := 0; i < va.NumField(); i++ {
		if !va.Type().Field(i).IsExported() {
			continue
		}

		if !equalValue(va.Field(i), vb.Field(i)) {
			return false
		}
	}

	return true
}
