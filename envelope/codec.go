package envelope

import (
	"encoding/json"
)

// Codec encodes envelopes to transport-safe text and back.
type Codec interface {
	Encode(*Envelope) ([]byte, error)
	Decode([]byte) (*Envelope, error)
}

// JSON is the default Codec. Unknown fields are ignored on decode. Decoded
// arguments are kept as json.RawMessage so that handlers can unmarshal them
// into concrete types.
var JSON Codec = jsonCodec{}

type jsonCodec struct{}

// wireEnvelope mirrors Envelope with raw arguments for decoding.
type wireEnvelope struct {
	ID     string            `json:"id"`
	Origin string            `json:"origin"`
	Fn     string            `json:"fn,omitempty"`
	Args   []json.RawMessage `json:"args"`
	Ack    bool              `json:"ack,omitempty"`
}

func (jsonCodec) Encode(env *Envelope) ([]byte, error) {
	data, err := json.Marshal(env)
	if err != nil {
		return nil, SerializationError{err}
	}
	return data, nil
}

func (jsonCodec) Decode(data []byte) (*Envelope, error) {
	if !isObject(data) {
		return nil, DecodeError{errNotObject}
	}
	var wire wireEnvelope
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, DecodeError{err}
	}
	if wire.ID == "" {
		return nil, DecodeError{ErrMissingID}
	}
	env := &Envelope{
		ID:     wire.ID,
		Origin: wire.Origin,
		Fn:     wire.Fn,
		Ack:    wire.Ack,
		Args:   make([]interface{}, len(wire.Args)),
	}
	for i, arg := range wire.Args {
		env.Args[i] = arg
	}
	return env, nil
}
