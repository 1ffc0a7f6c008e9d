// Package forms holds submitted form state and the per-entity validation rules
// evaluated against it.
package forms

import (
	"net/url"
	"strconv"
	"strings"
)

// Values holds submitted form fields. Keys repeated in the request (order
// lines) keep every value in submission order.
type Values map[string][]string

// FromURL copies parsed request form values.
func FromURL(src url.Values) Values {
	out := make(Values, len(src))
	for key, list := range src {
		out[key] = append([]string(nil), list...)
	}
	return out
}

// Get returns the first value for key.
func (v Values) Get(key string) string {
	if v == nil {
		return ""
	}
	list := v[key]
	if len(list) == 0 {
		return ""
	}
	return list[0]
}

// All returns every value submitted for key.
func (v Values) All(key string) []string {
	if v == nil {
		return nil
	}
	return v[key]
}

// Set replaces the values for key.
func (v Values) Set(key, value string) {
	v[key] = []string{value}
}

// Add appends value to key.
func (v Values) Add(key, value string) {
	v[key] = append(v[key], value)
}

// Del removes key.
func (v Values) Del(key string) {
	delete(v, key)
}

// Clone returns a deep copy.
func (v Values) Clone() Values {
	if v == nil {
		return Values{}
	}
	return FromURL(url.Values(v))
}

// Float parses the first value for key as a decimal number.
func (v Values) Float(key string) (float64, bool) {
	return ParseNumber(v.Get(key))
}

// ParseNumber parses a decimal number accepting a comma as separator.
func ParseNumber(raw string) (float64, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", "."), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// Int parses the first value for key as an integer.
func (v Values) Int(key string) (int, bool) {
	raw := strings.TrimSpace(v.Get(key))
	if raw == "" {
		return 0, false
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return n, true
}

// Bool reports whether the key carries a checkbox-style truthy value.
func (v Values) Bool(key string) bool {
	switch strings.ToLower(strings.TrimSpace(v.Get(key))) {
	case "true", "on", "1", "yes", "si", "sí":
		return true
	}
	return false
}

// Trimmed returns the first value for key without surrounding whitespace.
func (v Values) Trimmed(key string) string {
	return strings.TrimSpace(v.Get(key))
}
