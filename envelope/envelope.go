// Package envelope defines the wire message exchanged between endpoints and
// the codecs that turn it into transport-safe text.
package envelope

import (
	"encoding/json"
	"fmt"
)

// Envelope is the sole wire structure. A call envelope names a method in Fn,
// a response envelope has Ack set.
type Envelope struct {
	ID     string        `json:"id"`
	Origin string        `json:"origin"`
	Fn     string        `json:"fn,omitempty"`
	Args   []interface{} `json:"args"`
	Ack    bool          `json:"ack,omitempty"`
}

// IsCall returns true for call envelopes.
func (env *Envelope) IsCall() bool {
	return !env.Ack && env.Fn != ""
}

// Raw returns the i'th argument as raw JSON. Decoded envelopes carry their
// arguments as json.RawMessage; other values are marshalled.
func (env *Envelope) Raw(i int) (json.RawMessage, error) {
	if i < 0 || i >= len(env.Args) {
		return nil, nil
	}
	if raw, ok := env.Args[i].(json.RawMessage); ok {
		return raw, nil
	}
	return json.Marshal(env.Args[i])
}

// RawArgs returns the arguments from position i onwards as raw JSON.
func (env *Envelope) RawArgs(from int) ([]json.RawMessage, error) {
	if from >= len(env.Args) {
		return nil, nil
	}
	out := make([]json.RawMessage, 0, len(env.Args)-from)
	for i := from; i < len(env.Args); i++ {
		raw, err := env.Raw(i)
		if err != nil {
			return nil, err
		}
		out = append(out, raw)
	}
	return out, nil
}

func (env *Envelope) String() string {
	kind := "call"
	if env.Ack {
		kind = "ack"
	}
	return fmt.Sprintf("Envelope(%s id=%q origin=%q fn=%q args=%d)", kind, env.ID, env.Origin, env.Fn, len(env.Args))
}

// Call builds a call envelope.
func Call(id, origin, fn string, args []interface{}) *Envelope {
	if args == nil {
		args = []interface{}{}
	}
	return &Envelope{
		ID:     id,
		Origin: origin,
		Fn:     fn,
		Args:   args,
	}
}

// Ack builds a response envelope. The first argument is always the error
// argument (nil for success), followed by any results.
func Ack(id, origin string, err error, results ...interface{}) *Envelope {
	args := make([]interface{}, 0, len(results)+1)
	args = append(args, ErrorArg(err))
	args = append(args, results...)
	return &Envelope{
		ID:     id,
		Origin: origin,
		Args:   args,
		Ack:    true,
	}
}
