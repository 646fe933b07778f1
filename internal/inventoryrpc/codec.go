package inventoryrpc

import (
	"encoding/json"

	"google.golang.org/grpc/encoding"
)

// jsonCodecName is registered as a grpc content-subtype so calls on this
// client marshal with encoding/json instead of protobuf (spec §4.C; see
// DESIGN.md for why no .pb.go stubs exist in this repo).
const jsonCodecName = "json"

func init() {
	encoding.RegisterCodec(jsonCodec{})
}

// jsonCodec implements encoding.Codec over encoding/json so the inventory
// RPC client can exercise real gRPC transport (dial, unary interceptors,
// deadline propagation, keepalive) without a protobuf toolchain.
type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (jsonCodec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

func (jsonCodec) Name() string { return jsonCodecName }
