// Package payload models the semi-structured request document handed to the
// relay. Callers send arbitrary JSON; the executor only ever asks for a small
// set of optional keys (intent, goal, next_action, owner, due) and otherwise
// treats the document as an ordered bag of key/value pairs. Key order follows
// the source document, which matters for the persona summary line.
package payload

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Pair is a single top-level key/value entry.
type Pair struct {
	Key   string
	Value any
}

// Payload is an order-preserving, key-unique mapping. The zero value is an
// empty payload and is safe to use.
type Payload struct {
	pairs []Pair
	index map[string]int
}

// Parse decodes a JSON document into a Payload. A document that is not a
// JSON object is wrapped as {"payload": <value>}. Malformed JSON returns a
// *ParseError carrying the decoder diagnostic.
func Parse(raw string) (Payload, error) {
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return Payload{}, &ParseError{Raw: raw, Err: err}
	}

	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		// Not an object: re-decode the whole document and wrap it.
		var value any
		wrapDec := json.NewDecoder(strings.NewReader(raw))
		wrapDec.UseNumber()
		if err := wrapDec.Decode(&value); err != nil {
			return Payload{}, &ParseError{Raw: raw, Err: err}
		}
		if err := expectEOF(wrapDec); err != nil {
			return Payload{}, &ParseError{Raw: raw, Err: err}
		}
		p := Payload{}
		p.set("payload", value)
		return p, nil
	}

	p := Payload{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return Payload{}, &ParseError{Raw: raw, Err: err}
		}
		key, ok := keyTok.(string)
		if !ok {
			return Payload{}, &ParseError{Raw: raw, Err: fmt.Errorf("object key is not a string: %v", keyTok)}
		}
		var value any
		if err := dec.Decode(&value); err != nil {
			return Payload{}, &ParseError{Raw: raw, Err: err}
		}
		p.set(key, value)
	}
	if _, err := dec.Token(); err != nil { // closing '}'
		return Payload{}, &ParseError{Raw: raw, Err: err}
	}
	if err := expectEOF(dec); err != nil {
		return Payload{}, &ParseError{Raw: raw, Err: err}
	}
	return p, nil
}

// expectEOF verifies no trailing tokens follow the decoded document.
func expectEOF(dec *json.Decoder) error {
	if tok, err := dec.Token(); err == nil {
		return fmt.Errorf("trailing data after JSON document: %v", tok)
	}
	return nil
}

// New builds a payload from pairs in order. Duplicate keys overwrite in
// place, keeping the position of the first occurrence.
func New(pairs ...Pair) Payload {
	p := Payload{}
	for _, pr := range pairs {
		p.set(pr.Key, pr.Value)
	}
	return p
}

func (p *Payload) set(key string, value any) {
	if p.index == nil {
		p.index = make(map[string]int)
	}
	if i, ok := p.index[key]; ok {
		p.pairs[i].Value = value
		return
	}
	p.index[key] = len(p.pairs)
	p.pairs = append(p.pairs, Pair{Key: key, Value: value})
}

// Len returns the number of top-level keys.
func (p Payload) Len() int { return len(p.pairs) }

// Empty reports whether the payload has no keys.
func (p Payload) Empty() bool { return len(p.pairs) == 0 }

// Pairs returns the entries in document order. The slice is a copy.
func (p Payload) Pairs() []Pair {
	out := make([]Pair, len(p.pairs))
	copy(out, p.pairs)
	return out
}

// Get returns the value for key and whether the key is present.
func (p Payload) Get(key string) (any, bool) {
	if p.index == nil {
		return nil, false
	}
	i, ok := p.index[key]
	if !ok {
		return nil, false
	}
	return p.pairs[i].Value, true
}

// Str returns the stringified value for key, or "" when absent.
func (p Payload) Str(key string) string {
	v, ok := p.Get(key)
	if !ok {
		return ""
	}
	return Stringify(v)
}

// StrDefault returns the stringified value for key, or def when the key is
// absent. A present-but-empty value is returned as-is, not defaulted.
func (p Payload) StrDefault(key, def string) string {
	v, ok := p.Get(key)
	if !ok {
		return def
	}
	return Stringify(v)
}

// Intent returns the declared intent, falling back to goal when intent is
// absent or empty. Returns "" when neither is usable.
func (p Payload) Intent() string {
	if v := p.Str("intent"); v != "" {
		return v
	}
	return p.Str("goal")
}

// NextAction returns the requested next action, or "" when absent or empty.
func (p Payload) NextAction() string { return p.Str("next_action") }

// Owner returns the next-action owner, defaulting to "persona".
func (p Payload) Owner() string { return p.StrDefault("owner", "persona") }

// Due returns the next-action due tag, defaulting to "P0".
func (p Payload) Due() string { return p.StrDefault("due", "P0") }

// Stringify renders a payload value for interpolation into advisory text.
// Strings render bare, scalars via their natural form, composites as
// compact JSON.
func Stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		if t {
			return "true"
		}
		return "false"
	default:
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		enc.SetEscapeHTML(false)
		if err := enc.Encode(v); err != nil {
			return fmt.Sprint(v)
		}
		return strings.TrimSuffix(buf.String(), "\n")
	}
}

// MarshalJSON encodes the payload as an object preserving key order.
func (p Payload) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, pr := range p.pairs {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(pr.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		value, err := json.Marshal(pr.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a document with the same normalization as Parse.
func (p *Payload) UnmarshalJSON(data []byte) error {
	parsed, err := Parse(string(data))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// MarshalYAML encodes the payload as a YAML mapping preserving key order.
func (p Payload) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, pr := range p.pairs {
		keyNode := &yaml.Node{}
		if err := keyNode.Encode(pr.Key); err != nil {
			return nil, err
		}
		valueNode := &yaml.Node{}
		if err := valueNode.Encode(normalizeYAML(pr.Value)); err != nil {
			return nil, err
		}
		node.Content = append(node.Content, keyNode, valueNode)
	}
	return node, nil
}

// normalizeYAML converts json.Number values so the YAML encoder emits plain
// scalars instead of quoted strings.
func normalizeYAML(v any) any {
	switch t := v.(type) {
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i
		}
		if f, err := t.Float64(); err == nil {
			return f
		}
		return t.String()
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = normalizeYAML(e)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = normalizeYAML(e)
		}
		return out
	default:
		return v
	}
}
