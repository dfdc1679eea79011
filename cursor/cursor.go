// Package cursor implements the opaque pagination cursor carried by edges.
//
// A Cursor is the ordered list of sort-key values identifying a row. Clients
// only ever see its encoded form, base64 of the codec output (JSON by
// default), and must treat it as a black box. The encoding is stable only as
// long as the row producer emits the same key values; it is not versioned.
package cursor

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/99designs/gqlgen/graphql"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/syssam/setof"
)

// Cursor is the ordered list of values identifying a row within a result set.
type Cursor []any

// Codec converts cursors to and from bytes before base64 encoding.
type Codec interface {
	Name() string
	Marshal(Cursor) ([]byte, error)
	Unmarshal([]byte) (Cursor, error)
}

// Codecs.
var (
	JSON    Codec = jsonCodec{}
	Msgpack Codec = msgpackCodec{}
)

// CodecByName returns the codec registered under name ("json" or "msgpack").
func CodecByName(name string) (Codec, bool) {
	switch name {
	case "", JSON.Name():
		return JSON, true
	case Msgpack.Name():
		return Msgpack, true
	default:
		return nil, false
	}
}

type jsonCodec struct{}

func (jsonCodec) Name() string { return "json" }

func (jsonCodec) Marshal(c Cursor) ([]byte, error) {
	return json.Marshal([]any(c))
}

// Unmarshal keeps numbers as json.Number so numeric keys round-trip exactly.
func (jsonCodec) Unmarshal(b []byte) (Cursor, error) {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var c []any
	if err := dec.Decode(&c); err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, errors.New("trailing data after cursor")
	}
	if c == nil {
		return nil, errors.New("null cursor")
	}
	return Cursor(c), nil
}

type msgpackCodec struct{}

func (msgpackCodec) Name() string { return "msgpack" }

func (msgpackCodec) Marshal(c Cursor) ([]byte, error) {
	v, err := toMsgpack([]any(c))
	if err != nil {
		return nil, err
	}
	return msgpack.Marshal(v)
}

// Unmarshal returns values in the form the JSON codec decodes them to, so
// both codecs round-trip the same cursors.
func (msgpackCodec) Unmarshal(b []byte) (Cursor, error) {
	r := bytes.NewReader(b)
	dec := msgpack.NewDecoder(r)
	dec.UseLooseInterfaceDecoding(true)
	v, err := dec.DecodeInterfaceLoose()
	if err != nil {
		return nil, err
	}
	if r.Len() > 0 {
		return nil, errors.New("trailing data after cursor")
	}
	if v == nil {
		return nil, errors.New("null cursor")
	}
	v, err = fromMsgpack(v)
	if err != nil {
		return nil, err
	}
	c, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("%T is not a list", v)
	}
	return Cursor(c), nil
}

// numberExt carries a decimal number as its JSON text. Floats and json.Number
// values are encoded this way so no precision or formatting is lost.
type numberExt string

const numberExtID int8 = 1

func init() {
	msgpack.RegisterExt(numberExtID, (*numberExt)(nil))
}

func (n *numberExt) MarshalMsgpack() ([]byte, error) { return []byte(*n), nil }

func (n *numberExt) UnmarshalMsgpack(b []byte) error {
	*n = numberExt(b)
	return nil
}

func number(text string) *numberExt {
	n := numberExt(text)
	return &n
}

func toMsgpack(v any) (any, error) {
	switch v := v.(type) {
	case json.Number, float32, float64:
		b, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		return number(string(b)), nil
	case []any:
		out := make([]any, len(v))
		for i, e := range v {
			c, err := toMsgpack(e)
			if err != nil {
				return nil, err
			}
			out[i] = c
		}
		return out, nil
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, e := range v {
			c, err := toMsgpack(e)
			if err != nil {
				return nil, err
			}
			out[k] = c
		}
		return out, nil
	default:
		return v, nil
	}
}

func fromMsgpack(v any) (any, error) {
	switch v := v.(type) {
	case *numberExt:
		return json.Number(*v), nil
	case int64:
		return json.Number(strconv.FormatInt(v, 10)), nil
	case uint64:
		return json.Number(strconv.FormatUint(v, 10)), nil
	case float64:
		b, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		return json.Number(b), nil
	case []any:
		for i, e := range v {
			c, err := fromMsgpack(e)
			if err != nil {
				return nil, err
			}
			v[i] = c
		}
		return v, nil
	case map[string]any:
		for k, e := range v {
			c, err := fromMsgpack(e)
			if err != nil {
				return nil, err
			}
			v[k] = c
		}
		return v, nil
	default:
		return v, nil
	}
}

// Encoder turns cursors into their opaque string form.
type Encoder struct {
	codec Codec
}

// NewEncoder returns an Encoder using codec. A nil codec means JSON.
func NewEncoder(codec Codec) *Encoder {
	if codec == nil {
		codec = JSON
	}
	return &Encoder{codec: codec}
}

// Codec returns the codec of the encoder.
func (e *Encoder) Codec() Codec { return e.codec }

// Encode returns the opaque form of c.
func (e *Encoder) Encode(c Cursor) (string, error) {
	if c == nil {
		return "", setof.NewCursorError("", "missing cursor", nil)
	}
	b, err := e.codec.Marshal(c)
	if err != nil {
		return "", setof.NewCursorError("", e.codec.Name()+" marshal", err)
	}
	return base64.StdEncoding.EncodeToString(b), nil
}

// Decode parses the opaque form produced by Encode.
func (e *Encoder) Decode(s string) (Cursor, error) {
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, setof.NewCursorError(s, "base64", err)
	}
	c, err := e.codec.Unmarshal(b)
	if err != nil {
		return nil, setof.NewCursorError(s, e.codec.Name()+" unmarshal", err)
	}
	return c, nil
}

var std = NewEncoder(JSON)

// Encode encodes c with the JSON codec.
func Encode(c Cursor) (string, error) { return std.Encode(c) }

// Decode decodes s with the JSON codec.
func Decode(s string) (Cursor, error) { return std.Decode(s) }

// MarshalGQL implements graphql.Marshaler so generated gqlgen models can
// carry a Cursor directly. Encoding failures render as null.
func (c Cursor) MarshalGQL(w io.Writer) {
	s, err := Encode(c)
	if err != nil {
		graphql.Null.MarshalGQL(w)
		return
	}
	graphql.MarshalString(s).MarshalGQL(w)
}

// UnmarshalGQL implements graphql.Unmarshaler.
func (c *Cursor) UnmarshalGQL(v any) error {
	s, ok := v.(string)
	if !ok {
		return setof.NewCursorError("", fmt.Sprintf("%T is not a string", v), nil)
	}
	decoded, err := Decode(s)
	if err != nil {
		return err
	}
	*c = decoded
	return nil
}
