package journal

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

const (
	categoryKey     = "category"
	responseTextKey = "response_text"
)

// DecodeResult parses provider output as exactly one flat JSON object with the keys
// "category" and "response_text". Surrounding whitespace is tolerated; prose, code
// fences, extra, repeated or differently-cased keys, null or non-string values, an unknown
// category, an empty response_text and trailing data are not.
//
// Every failure wraps ErrMalformedResponse and returns a zero Result.
func DecodeResult(outputText string) (Result, error) {
	s := strings.TrimSpace(outputText)
	if s == "" {
		return Result{}, fmt.Errorf("%w: empty output", ErrMalformedResponse)
	}
	if s[0] != '{' {
		return Result{}, fmt.Errorf("%w: output is not a bare JSON object (len=%d)", ErrMalformedResponse, len(s))
	}

	dec := json.NewDecoder(strings.NewReader(s))
	if tok, err := dec.Token(); err != nil || tok != json.Delim('{') {
		return Result{}, fmt.Errorf("%w: output is not a JSON object", ErrMalformedResponse)
	}

	values := make(map[string]string, 2)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return Result{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
		}
		key, ok := tok.(string)
		if !ok {
			return Result{}, fmt.Errorf("%w: unexpected token %v", ErrMalformedResponse, tok)
		}
		if key != categoryKey && key != responseTextKey {
			return Result{}, fmt.Errorf("%w: unexpected key %q", ErrMalformedResponse, key)
		}
		if _, dup := values[key]; dup {
			return Result{}, fmt.Errorf("%w: duplicate key %q", ErrMalformedResponse, key)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return Result{}, fmt.Errorf("%w: %q: %v", ErrMalformedResponse, key, err)
		}
		v, err := stringValue(key, raw)
		if err != nil {
			return Result{}, err
		}
		values[key] = v
	}
	if tok, err := dec.Token(); err != nil || tok != json.Delim('}') {
		return Result{}, fmt.Errorf("%w: unterminated JSON object", ErrMalformedResponse)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return Result{}, fmt.Errorf("%w: trailing data after JSON object", ErrMalformedResponse)
	}

	rawCategory, ok := values[categoryKey]
	if !ok {
		return Result{}, fmt.Errorf("%w: missing key %q", ErrMalformedResponse, categoryKey)
	}
	text, ok := values[responseTextKey]
	if !ok {
		return Result{}, fmt.Errorf("%w: missing key %q", ErrMalformedResponse, responseTextKey)
	}

	category, err := ParseCategory(rawCategory)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if strings.TrimSpace(text) == "" {
		return Result{}, fmt.Errorf("%w: empty %s", ErrMalformedResponse, responseTextKey)
	}

	return Result{Category: category, ResponseText: text}, nil
}

func stringValue(key string, raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '"' {
		return "", fmt.Errorf("%w: %q must be a string", ErrMalformedResponse, key)
	}
	var v string
	if err := json.Unmarshal(raw, &v); err != nil {
		return "", fmt.Errorf("%w: %q: %v", ErrMalformedResponse, key, err)
	}
	return v, nil
}
