package envelope

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestCodec(t *testing.T) {
	env := Call("42", "origin-a", "fn", []interface{}{1, "2", map[string]int{"x": 3}, true})
	data, err := JSON.Encode(env)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := string(data), `{"id":"42","origin":"origin-a","fn":"fn","args":[1,"2",{"x":3},true]}`; got != want {
		t.Errorf("wrong wire format:\n   got: %s\n  want: %s", got, want)
	}

	got, err := JSON.Decode(data)
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != env.ID || got.Origin != env.Origin || got.Fn != env.Fn || got.Ack {
		t.Errorf("got: %s; want: %s", got, env)
	}
	if !got.IsCall() {
		t.Errorf("decoded envelope is not a call: %s", got)
	}

	var c struct{ X int }
	raw, err := got.Raw(2)
	if err != nil {
		t.Fatal(err)
	}
	if err := json.Unmarshal(raw, &c); err != nil {
		t.Fatal(err)
	}
	if c.X != 3 {
		t.Errorf("got: %d; want: 3", c.X)
	}
}

func TestCodecAck(t *testing.T) {
	data, err := JSON.Encode(Ack("1", "b", errors.New("dummy"), "result"))
	if err != nil {
		t.Fatal(err)
	}
	if got, want := string(data), `{"id":"1","origin":"b","args":["dummy","result"],"ack":true}`; got != want {
		t.Errorf("wrong wire format:\n   got: %s\n  want: %s", got, want)
	}

	data, err = JSON.Encode(Ack("2", "b", nil))
	if err != nil {
		t.Fatal(err)
	}
	if got, want := string(data), `{"id":"2","origin":"b","args":[null],"ack":true}`; got != want {
		t.Errorf("wrong wire format:\n   got: %s\n  want: %s", got, want)
	}
}

func TestCodecCycle(t *testing.T) {
	circular := map[string]interface{}{}
	circular["x"] = circular

	_, err := JSON.Encode(Call("1", "a", "fn", []interface{}{circular}))
	if _, ok := err.(SerializationError); !ok {
		t.Fatalf("expected SerializationError, got: %T %v", err, err)
	}
}

func TestCodecDecodeInvalid(t *testing.T) {
	tests := []string{
		``,
		`not json`,
		`[1,2,3]`,
		`"string"`,
		`{"origin":"a","fn":"x","args":[]}`,
		`{"id":42,"fn":"x"}`,
		`{"id":"1",`,
	}
	for _, tc := range tests {
		if env, err := JSON.Decode([]byte(tc)); err == nil {
			t.Errorf("decode %q: expected error, got %s", tc, env)
		} else if _, ok := err.(DecodeError); !ok {
			t.Errorf("decode %q: expected DecodeError, got %T", tc, err)
		}
	}
}

func TestCodecUnknownFields(t *testing.T) {
	env, err := JSON.Decode([]byte(`{"id":"1","origin":"a","ack":true,"args":[null,5],"version":7}`))
	if err != nil {
		t.Fatal(err)
	}
	results, err := env.RawArgs(1)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 || string(results[0]) != "5" {
		t.Errorf("got: %q; want: [5]", results)
	}
}

func TestParseError(t *testing.T) {
	tests := []struct {
		raw  string
		want error
	}{
		{``, nil},
		{`null`, nil},
		{`false`, nil},
		{`0`, nil},
		{`0.0`, nil},
		{`""`, nil},
		{`"dummy"`, RemoteError{"dummy"}},
		{`{"code":1}`, RemoteError{`{"code":1}`}},
		{`true`, RemoteError{`true`}},
	}
	for _, tc := range tests {
		if got := ParseError(json.RawMessage(tc.raw)); got != tc.want {
			t.Errorf("ParseError(%q): got %v; want %v", tc.raw, got, tc.want)
		}
	}
}
