// Package policydoc decodes AWS access policy documents (IAM identity
// policies, S3 bucket policies, SNS/SQS access policies and Lambda resource
// policies) into typed statements.
//
// AWS accepts several fields either as a single value or as a list, and IAM
// returns documents URL-encoded. Both forms are normalised here so that
// checks compare typed values instead of searching raw JSON text.
package policydoc

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrEmptyDocument is returned by Parse for blank input.
var ErrEmptyDocument = errors.New("policydoc: empty document")

// Document is a decoded policy document.
type Document struct {
	Version   string     `json:"Version,omitempty"`
	ID        string     `json:"Id,omitempty"`
	Statement Statements `json:"Statement"`
}

// Statement is one policy statement. Fields absent from the document are
// left at their zero value.
type Statement struct {
	Sid          string     `json:"Sid,omitempty"`
	Effect       string     `json:"Effect"`
	Principal    *Principal `json:"Principal,omitempty"`
	NotPrincipal *Principal `json:"NotPrincipal,omitempty"`
	Action       StringList `json:"Action,omitempty"`
	NotAction    StringList `json:"NotAction,omitempty"`
	Resource     StringList `json:"Resource,omitempty"`
	NotResource  StringList `json:"NotResource,omitempty"`
	Condition    Conditions `json:"Condition,omitempty"`
}

// Conditions maps a condition operator ("Bool", "StringEquals", ...) to its
// key/value block.
type Conditions map[string]map[string]StringList

// Parse decodes raw, which may be plain or URL-encoded JSON.
func Parse(raw string) (*Document, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, ErrEmptyDocument
	}
	if !strings.HasPrefix(raw, "{") {
		decoded, err := url.PathUnescape(raw)
		if err != nil {
			return nil, fmt.Errorf("policydoc: url-decode: %w", err)
		}
		raw = strings.TrimSpace(decoded)
	}
	var doc Document
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, fmt.Errorf("policydoc: decode: %w", err)
	}
	return &doc, nil
}

// ---------------------------------------------------------------------------
// Flexible field types
// ---------------------------------------------------------------------------

// StringList holds a field that may be written as "x" or ["x", "y"].
type StringList []string

// UnmarshalJSON accepts a JSON string, a list of strings, or null. Scalar
// booleans and numbers, which condition blocks often use unquoted, are kept
// in their JSON text form ("false", "443").
func (s *StringList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*s = nil
		return nil
	}
	if len(data) > 0 && data[0] == '[' {
		var items []json.RawMessage
		if err := json.Unmarshal(data, &items); err != nil {
			return fmt.Errorf("policydoc: expected list: %w", err)
		}
		out := make(StringList, 0, len(items))
		for _, item := range items {
			v, err := scalar(item)
			if err != nil {
				return err
			}
			out = append(out, v)
		}
		*s = out
		return nil
	}
	v, err := scalar(data)
	if err != nil {
		return err
	}
	*s = StringList{v}
	return nil
}

func scalar(data json.RawMessage) (string, error) {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return "", fmt.Errorf("policydoc: string: %w", err)
		}
		return v, nil
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return "", fmt.Errorf("policydoc: scalar: %w", err)
	}
	switch v.(type) {
	case bool, float64:
		return string(data), nil
	}
	return "", fmt.Errorf("policydoc: expected string or list of strings, got %s", data)
}

// Contains reports whether v is one of the values.
func (s StringList) Contains(v string) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}

// ContainsFold is Contains with case-insensitive comparison. Action names
// and condition values are case-insensitive in AWS.
func (s StringList) ContainsFold(v string) bool {
	for _, x := range s {
		if strings.EqualFold(x, v) {
			return true
		}
	}
	return false
}

// Statements holds the Statement field, which may be a single object or a
// list of objects.
type Statements []Statement

// UnmarshalJSON accepts a statement object or a list of statements.
func (s *Statements) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '{' {
		var one Statement
		if err := json.Unmarshal(data, &one); err != nil {
			return err
		}
		*s = Statements{one}
		return nil
	}
	var many []Statement
	if err := json.Unmarshal(data, &many); err != nil {
		return err
	}
	*s = many
	return nil
}

// Principal is either the wildcard "*" or a map of principal types ("AWS",
// "Service", "Federated", "CanonicalUser") to identifiers.
type Principal struct {
	Wildcard bool
	Values   map[string]StringList
}

// UnmarshalJSON accepts "*" or an object of string-or-list values.
func (p *Principal) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		p.Wildcard = single == "*"
		if !p.Wildcard {
			p.Values = map[string]StringList{"AWS": {single}}
		}
		return nil
	}
	var values map[string]StringList
	if err := json.Unmarshal(data, &values); err != nil {
		return fmt.Errorf("policydoc: principal: %w", err)
	}
	p.Values = values
	return nil
}

// MarshalJSON writes the wildcard back as "*".
func (p Principal) MarshalJSON() ([]byte, error) {
	if p.Wildcard {
		return []byte(`"*"`), nil
	}
	return json.Marshal(p.Values)
}

// Public reports whether the principal matches everyone: "*" or
// {"AWS": "*"}.
func (p *Principal) Public() bool {
	if p == nil {
		return false
	}
	return p.Wildcard || p.Values["AWS"].Contains("*")
}
