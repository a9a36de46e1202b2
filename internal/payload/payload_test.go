package payload

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestParse_ObjectPreservesOrder(t *testing.T) {
	p, err := Parse(`{"zeta": 1, "alpha": 2, "mid": 3}`)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}

	pairs := p.Pairs()
	want := []string{"zeta", "alpha", "mid"}
	if len(pairs) != len(want) {
		t.Fatalf("got %d pairs, want %d", len(pairs), len(want))
	}
	for i, key := range want {
		if pairs[i].Key != key {
			t.Errorf("pair %d key = %q, want %q", i, pairs[i].Key, key)
		}
	}
}

func TestParse_NonObjectWraps(t *testing.T) {
	for _, raw := range []string{`[1, 2]`, `"just text"`, `42`, `null`} {
		p, err := Parse(raw)
		if err != nil {
			t.Fatalf("Parse(%s) returned error: %v", raw, err)
		}
		if p.Len() != 1 {
			t.Fatalf("Parse(%s) len = %d, want 1", raw, p.Len())
		}
		if _, ok := p.Get("payload"); !ok {
			t.Errorf("Parse(%s) missing wrapped payload key", raw)
		}
	}
}

func TestParse_ObjectIsIdentity(t *testing.T) {
	p, err := Parse(`{"intent": "reduce latency"}`)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if _, ok := p.Get("payload"); ok {
		t.Error("mapping payload was wrapped; want identity")
	}
	if got := p.Str("intent"); got != "reduce latency" {
		t.Errorf("intent = %q, want %q", got, "reduce latency")
	}
}

func TestParse_MalformedJSON(t *testing.T) {
	_, err := Parse(`{"intent": `)
	if err == nil {
		t.Fatal("expected error for malformed JSON")
	}
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("error type = %T, want *ParseError", err)
	}
	if parseErr.Err == nil {
		t.Error("ParseError should carry the underlying diagnostic")
	}
}

func TestParse_TrailingData(t *testing.T) {
	if _, err := Parse(`{"a": 1} trailing`); err == nil {
		t.Error("expected error for trailing data")
	}
}

func TestParse_DuplicateKeysLastWins(t *testing.T) {
	p, err := Parse(`{"a": 1, "a": 2}`)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if p.Len() != 1 {
		t.Fatalf("len = %d, want 1", p.Len())
	}
	if got := p.Str("a"); got != "2" {
		t.Errorf("a = %q, want %q", got, "2")
	}
}

func TestIntent_FallsBackToGoal(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"intent only", `{"intent": "ship it"}`, "ship it"},
		{"goal only", `{"goal": "reduce latency"}`, "reduce latency"},
		{"intent wins", `{"intent": "a", "goal": "b"}`, "a"},
		{"empty intent falls through", `{"intent": "", "goal": "b"}`, "b"},
		{"neither", `{"topic": "x"}`, ""},
	}
	for _, tt := range tests {
		p, err := Parse(tt.raw)
		if err != nil {
			t.Fatalf("%s: Parse returned error: %v", tt.name, err)
		}
		if got := p.Intent(); got != tt.want {
			t.Errorf("%s: Intent() = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestOwnerDue_Defaults(t *testing.T) {
	p, err := Parse(`{}`)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if got := p.Owner(); got != "persona" {
		t.Errorf("Owner() = %q, want %q", got, "persona")
	}
	if got := p.Due(); got != "P0" {
		t.Errorf("Due() = %q, want %q", got, "P0")
	}

	// Present-but-empty values are not defaulted.
	p, err = Parse(`{"owner": ""}`)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if got := p.Owner(); got != "" {
		t.Errorf("Owner() with empty value = %q, want empty", got)
	}
}

func TestStringify(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{"text", "text"},
		{json.Number("42"), "42"},
		{json.Number("0.5"), "0.5"},
		{true, "true"},
		{nil, ""},
		{[]any{"a", "b"}, `["a","b"]`},
		{map[string]any{"k": "v"}, `{"k":"v"}`},
	}
	for _, tt := range tests {
		if got := Stringify(tt.in); got != tt.want {
			t.Errorf("Stringify(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestMarshalJSON_PreservesOrder(t *testing.T) {
	p, err := Parse(`{"z": 1, "a": "two", "m": [3]}`)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	data, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("Marshal returned error: %v", err)
	}
	want := `{"z":1,"a":"two","m":[3]}`
	if string(data) != want {
		t.Errorf("Marshal = %s, want %s", data, want)
	}
}

func TestNew_DuplicateKeyKeepsPosition(t *testing.T) {
	p := New(Pair{Key: "a", Value: 1}, Pair{Key: "b", Value: 2}, Pair{Key: "a", Value: 3})
	pairs := p.Pairs()
	if len(pairs) != 2 {
		t.Fatalf("len = %d, want 2", len(pairs))
	}
	if pairs[0].Key != "a" || pairs[0].Value != 3 {
		t.Errorf("pair 0 = %+v, want a=3", pairs[0])
	}
}

func TestEmpty(t *testing.T) {
	var zero Payload
	if !zero.Empty() {
		t.Error("zero payload should be empty")
	}
	p, _ := Parse(`{"k": "v"}`)
	if p.Empty() {
		t.Error("populated payload should not be empty")
	}
}
