package ferrier

import (
	"fmt"
	"net/url"
	"reflect"
)

// EncodeQuery serializes query parameters for a GET request. Keys whose
// value is nil are skipped; the rest are URL-encoded "key=value" pairs
// joined with "&". Keys are emitted in sorted order so the same parameters
// always produce the same URL.
func EncodeQuery(query map[string]any) string {
	if len(query) == 0 {
		return ""
	}

	values := url.Values{}

	for key, value := range query {
		if isNil(value) {
			continue
		}

		values.Set(key, fmt.Sprint(value))
	}

	return values.Encode()
}

// AppendQuery attaches an encoded query to a URL, reusing an existing "?"
// when the URL already carries one.
func AppendQuery(rawURL string, query map[string]any) string {
	encoded := EncodeQuery(query)
	if encoded == "" {
		return rawURL
	}

	separator := "?"
	for _, r := range rawURL {
		if r == '?' {
			separator = "&"

			break
		}
	}

	return rawURL + separator + encoded
}

// isNil also catches typed nil pointers, maps, and slices.
func isNil(value any) bool {
	if value == nil {
		return true
	}

	v := reflect.ValueOf(value)
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Chan, reflect.Func:
		return v.IsNil()
	default:
		return false
	}
}
