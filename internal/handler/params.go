package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
)

var (
	errNotBool    = errors.New("expected true or false")
	errNotInteger = errors.New("expected a whole number of bytes")
)

// tierFlag is the enablePremium field. It accepts a JSON boolean or the
// strings "true" and "false", from a JSON body or a form value. Set reports
// whether the field was present at all.
type tierFlag struct {
	Set   bool
	Value bool
}

func (f *tierFlag) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch v := v.(type) {
	case bool:
		*f = tierFlag{Set: true, Value: v}
		return nil
	case string:
		return f.UnmarshalParam(v)
	}
	return errNotBool
}

// UnmarshalParam implements echo.BindUnmarshaler for form values.
func (f *tierFlag) UnmarshalParam(s string) error {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true":
		*f = tierFlag{Set: true, Value: true}
	case "false":
		*f = tierFlag{Set: true, Value: false}
	case "":
	default:
		return errNotBool
	}
	return nil
}

// byteSize is the size field of the storage endpoints. It accepts a JSON
// number or a numeric string; fractions are rejected.
type byteSize struct {
	Set   bool
	Bytes int64
}

func (s *byteSize) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		return s.UnmarshalParam(str)
	}
	return s.UnmarshalParam(string(b))
}

// UnmarshalParam implements echo.BindUnmarshaler for form values.
func (s *byteSize) UnmarshalParam(v string) error {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return errNotInteger
	}
	*s = byteSize{Set: true, Bytes: n}
	return nil
}
