package archive

import (
	"fmt"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// Encoder writes plain-data values into a keyed archive record
type Encoder interface {
	EncodeString(key, value string)
	EncodeBool(key string, value bool)
	// EncodeObject stores a JSON-like mapping. Values must be nil, bool,
	// strings, numbers a float64 holds exactly, slices or string-keyed maps,
	// recursively. See PlainObject.
	EncodeObject(key string, value map[string]any) error
}

// Decoder reads values back from a keyed archive record.
// Keys the caller never asks for are ignored.
type Decoder interface {
	ContainsKey(key string) bool
	DecodeString(key string) (string, error)
	DecodeBool(key string) (bool, error)
	DecodeObject(key string) (map[string]any, error)
}

// Record is a keyed set of plain-data values backed by a protobuf Struct
type Record struct {
	fields *structpb.Struct
}

var (
	_ Encoder = (*Record)(nil)
	_ Decoder = (*Record)(nil)
)

// NewRecord creates an empty record
func NewRecord() *Record {
	return &Record{fields: &structpb.Struct{Fields: map[string]*structpb.Value{}}}
}

// UnmarshalRecord parses the wire form produced by Record.Marshal
func UnmarshalRecord(data []byte) (*Record, error) {
	var fields structpb.Struct
	if err := proto.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if fields.Fields == nil {
		fields.Fields = map[string]*structpb.Value{}
	}
	return &Record{fields: &fields}, nil
}

// Marshal returns the deterministic protobuf encoding of the record
func (r *Record) Marshal() ([]byte, error) {
	return proto.MarshalOptions{Deterministic: true}.Marshal(r.fields)
}

func (r *Record) EncodeString(key, value string) {
	r.fields.Fields[key] = structpb.NewStringValue(value)
}

func (r *Record) EncodeBool(key string, value bool) {
	r.fields.Fields[key] = structpb.NewBoolValue(value)
}

func (r *Record) EncodeObject(key string, value map[string]any) error {
	plain, err := PlainObject(value)
	if err != nil {
		return &KeyError{Key: key, Err: err}
	}
	obj, err := structpb.NewStruct(plain)
	if err != nil {
		return &KeyError{Key: key, Err: fmt.Errorf("%w: %v", ErrUnsupportedValue, err)}
	}
	r.fields.Fields[key] = structpb.NewStructValue(obj)
	return nil
}

func (r *Record) ContainsKey(key string) bool {
	_, ok := r.fields.Fields[key]
	return ok
}

func (r *Record) DecodeString(key string) (string, error) {
	v, err := r.value(key)
	if err != nil {
		return "", err
	}
	s, ok := v.GetKind().(*structpb.Value_StringValue)
	if !ok {
		return "", &KeyError{Key: key, Err: ErrWrongType}
	}
	return s.StringValue, nil
}

func (r *Record) DecodeBool(key string) (bool, error) {
	v, err := r.value(key)
	if err != nil {
		return false, err
	}
	b, ok := v.GetKind().(*structpb.Value_BoolValue)
	if !ok {
		return false, &KeyError{Key: key, Err: ErrWrongType}
	}
	return b.BoolValue, nil
}

func (r *Record) DecodeObject(key string) (map[string]any, error) {
	v, err := r.value(key)
	if err != nil {
		return nil, err
	}
	obj, ok := v.GetKind().(*structpb.Value_StructValue)
	if !ok {
		return nil, &KeyError{Key: key, Err: ErrWrongType}
	}
	return obj.StructValue.AsMap(), nil
}

func (r *Record) value(key string) (*structpb.Value, error) {
	v, ok := r.fields.Fields[key]
	if !ok || v == nil {
		return nil, &KeyError{Key: key, Err: ErrMissingKey}
	}
	return v, nil
}
