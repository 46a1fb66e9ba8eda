package core

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/fxamacker/cbor/v2"
)

// 规范化 CBOR 编码选项
var encOptions = cbor.EncOptions{
	// 1. 强制 Map Key 排序 (Canonical)
	// 保证同一棵树生成唯一的摘要
	Sort: cbor.SortCanonical,

	// 2. 浮点数统一 64 位，避免 meta 里的数字编码抖动
	ShortestFloat: cbor.ShortestFloatNone,

	// 3. 时间编码为 Unix 整数，不生成 Tag 0/1
	Time:    cbor.TimeUnix,
	TimeTag: cbor.EncTagNone,

	// 4. 禁止不定长编码
	IndefLength: cbor.IndefLengthForbidden,

	BigIntConvert: cbor.BigIntConvertShortest,
}

var em, _ = encOptions.EncMode()

var decOptions = cbor.DecOptions{
	// 限制容器大小和嵌套深度，防止被篡改的快照耗尽内存
	// 每一层目录占两层嵌套 (map + children 数组)
	MaxArrayElements: 65536,
	MaxMapPairs:      65536,
	MaxNestedLevels:  512,

	IndefLength: cbor.IndefLengthForbidden,
	DupMapKey:   cbor.DupMapKeyEnforcedAPF,
	BignumTag:   cbor.BignumTagForbidden,
	TimeTag:     cbor.DecTagIgnored,

	// meta 里的嵌套 map 解成 map[string]any，和 JSON 保持一致
	DefaultMapType: reflect.TypeOf(map[string]any(nil)),
}

var dm, _ = decOptions.DecMode()

// Codec 负责工作树和持久化字节之间的转换
type Codec interface {
	Name() string
	Marshal(root *Node) ([]byte, error)
	Unmarshal(data []byte) (*Node, error)
}

const (
	CodecJSON = "json"
	CodecCBOR = "cbor"
)

// CodecByName 根据配置名选择编解码器
func CodecByName(name string) (Codec, error) {
	switch name {
	case "", CodecJSON:
		return JSONCodec{}, nil
	case CodecCBOR:
		return CBORCodec{}, nil
	default:
		return nil, fmt.Errorf("unsupported snapshot codec: %s", name)
	}
}

// JSONCodec 文本格式，和浏览器端 localStorage 里的快照兼容
type JSONCodec struct{}

func (JSONCodec) Name() string { return CodecJSON }

func (JSONCodec) Marshal(root *Node) ([]byte, error) {
	data, err := json.Marshal(root)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	return data, nil
}

func (JSONCodec) Unmarshal(data []byte) (*Node, error) {
	var root Node
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("corrupted snapshot: %w", err)
	}
	return &root, nil
}

// CBORCodec 紧凑的二进制格式 (规范化编码)
type CBORCodec struct{}

func (CBORCodec) Name() string { return CodecCBOR }

func (CBORCodec) Marshal(root *Node) ([]byte, error) {
	data, err := em.Marshal(root)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	return data, nil
}

func (CBORCodec) Unmarshal(data []byte) (*Node, error) {
	var root Node
	if err := dm.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("corrupted snapshot: %w", err)
	}
	return &root, nil
}

// Digest 计算树的确定性摘要 (规范化 CBOR + SHA-256)
// 与选用的持久化编码无关，可用于比较两个快照是否相同
func Digest(root *Node) (string, error) {
	data, err := em.Marshal(root)
	if err != nil {
		return "", fmt.Errorf("failed to marshal tree: %w", err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
