// Package codec provides a gRPC codec that carries messages as JSON, so plain
// Go structs can be served without generated protobuf types.
package codec

import (
	"encoding/json"
	"fmt"

	"google.golang.org/grpc/encoding"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
)

// Name is the content-subtype clients select with grpc.CallContentSubtype.
const Name = "json"

func init() {
	encoding.RegisterCodec(JSON{})
}

// JSON marshals proto messages with protojson and everything else with encoding/json.
type JSON struct{}

func (JSON) Name() string { return Name }

func (JSON) Marshal(v any) ([]byte, error) {
	if m, ok := v.(proto.Message); ok {
		return protojson.Marshal(m)
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("json codec marshal %T: %w", v, err)
	}
	return data, nil
}

func (JSON) Unmarshal(data []byte, v any) error {
	if m, ok := v.(proto.Message); ok {
		return protojson.UnmarshalOptions{DiscardUnknown: true}.Unmarshal(data, m)
	}
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("json codec unmarshal %T: %w", v, err)
	}
	return nil
}
