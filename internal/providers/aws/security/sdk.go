package awssecurity

import (
	"github.com/aws/aws-sdk-go-v2/aws"
)

// tagMap converts any SDK tag slice into a map. kv extracts the key and value
// pointers of one tag; tags with a nil key are skipped. An empty input yields
// nil so untagged resources compare equal to "no tags".
func tagMap[T any](tags []T, kv func(T) (*string, *string)) map[string]string {
	if len(tags) == 0 {
		return nil
	}
	m := make(map[string]string, len(tags))
	for _, t := range tags {
		k, v := kv(t)
		if k == nil {
			continue
		}
		m[*k] = aws.ToString(v)
	}
	return m
}

// stringsOf maps a slice of SDK structs to the non-empty strings get returns.
func stringsOf[T any](items []T, get func(T) *string) []string {
	var out []string
	for _, it := range items {
		if s := aws.ToString(get(it)); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// firstNonEmpty returns the first non-empty value.
func firstNonEmpty(values ...*string) string {
	for _, v := range values {
		if s := aws.ToString(v); s != "" {
			return s
		}
	}
	return ""
}

// truthy reads an SDK boolean whether the field is modelled as a value or as
// a nullable pointer.
func truthy[T bool | *bool](v T) bool {
	switch x := any(v).(type) {
	case bool:
		return x
	case *bool:
		return x != nil && *x
	}
	return false
}

// int32Of reads an SDK int32 whether the field is a value or a pointer.
func int32Of[T int32 | *int32](v T) int32 {
	switch x := any(v).(type) {
	case int32:
		return x
	case *int32:
		if x != nil {
			return *x
		}
	}
	return 0
}
