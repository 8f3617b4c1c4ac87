package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

type Assignment struct {
	Name  string
	Value *float64
}

// Solution keeps variable values in the order the solver sent them. A nil
// Solution means the response carried none. Names are unique: a repeated key
// keeps the position of its first occurrence and the value of its last.
type Solution []Assignment

func (s Solution) Lookup(name string) (float64, bool) {
	for _, a := range s {
		if a.Name == name && a.Value != nil {
			return *a.Value, true
		}
	}
	return 0, false
}

func (s Solution) MarshalJSON() ([]byte, error) {
	if s == nil {
		return []byte("null"), nil
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, a := range s {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(a.Name)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(a.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (s *Solution) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*s = nil
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("solution must be an object, got %v", tok)
	}

	out := Solution{}
	seen := map[string]int{}
	for dec.More() {
		tok, err = dec.Token()
		if err != nil {
			return err
		}
		name, ok := tok.(string)
		if !ok {
			return fmt.Errorf("unexpected solution key %v", tok)
		}
		var value *float64
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("solution value for %q: %w", name, err)
		}
		if i, ok := seen[name]; ok {
			out[i].Value = value
			continue
		}
		seen[name] = len(out)
		out = append(out, Assignment{Name: name, Value: value})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}

	*s = out
	return nil
}
