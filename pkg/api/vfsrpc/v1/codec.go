package vfsrpc

import (
	"encoding/json"

	"google.golang.org/grpc/encoding"
)

// CodecName 是注册到 gRPC 的内容子类型 (application/grpc+json)
const CodecName = "json"

// jsonCodec 让 gRPC 直接传输带 json tag 的 Go 结构体
type jsonCodec struct{}

func (jsonCodec) Name() string { return CodecName }

func (jsonCodec) Marshal(v any) ([]byte, error) { return json.Marshal(v) }

func (jsonCodec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }

func init() {
	encoding.RegisterCodec(jsonCodec{})
}
