package msgpack

import (
	"encoding/binary"
	"math"

	"github.com/runcat-io/runcat/pkg/documents"
)

// The msgpack-numpy convention serializes a native array as a map of the
// form {"nd": true, "type": dtype, "shape": [...], "data": <bin>}. Decoding
// is best-effort: anything that does not match the convention exactly is
// left as the raw map, since documents are otherwise opaque.

// resolveArrays rewrites array-convention maps inside doc into
// *documents.NDArray values, recursing through nested maps and slices.
func resolveArrays(doc map[string]any) {
	for k, v := range doc {
		doc[k] = resolveValue(v)
	}
}

func resolveValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		if arr, ok := toNDArray(t); ok {
			return arr
		}
		resolveArrays(t)
		return t
	case []any:
		for i, e := range t {
			t[i] = resolveValue(e)
		}
		return t
	default:
		return v
	}
}

// toNDArray converts one array-convention map into an NDArray.
func toNDArray(m map[string]any) (*documents.NDArray, bool) {
	nd, _ := m["nd"].(bool)
	if !nd {
		return nil, false
	}
	dtype, ok := m["type"].(string)
	if !ok {
		return nil, false
	}
	rawShape, ok := m["shape"].([]any)
	if !ok {
		return nil, false
	}
	data, ok := m["data"].([]byte)
	if !ok || len(data) > maxFrameSize {
		return nil, false
	}

	shape := make([]int, len(rawShape))
	count := 1
	for i, d := range rawShape {
		n, ok := toInt(d)
		if !ok || n < 0 {
			return nil, false
		}
		shape[i] = n
		count *= n
	}

	values, ok := decodeData(dtype, data, count)
	if !ok {
		return nil, false
	}
	return &documents.NDArray{Shape: shape, Dtype: dtype, Data: values}, true
}

// decodeData unpacks the raw buffer into a typed flat slice. Supported
// dtypes cover what experiment-run writers emit in practice: f8/f4, i8/i4,
// and u1, little- or big-endian.
func decodeData(dtype string, data []byte, count int) (any, bool) {
	if len(dtype) < 2 {
		return nil, false
	}
	order, kind := byteOrder(dtype[0]), dtype[1:]
	if order == nil {
		return nil, false
	}

	switch kind {
	case "f8":
		if len(data) != count*8 {
			return nil, false
		}
		out := make([]float64, count)
		for i := range out {
			out[i] = math.Float64frombits(order.Uint64(data[i*8:]))
		}
		return out, true
	case "f4":
		if len(data) != count*4 {
			return nil, false
		}
		out := make([]float32, count)
		for i := range out {
			out[i] = math.Float32frombits(order.Uint32(data[i*4:]))
		}
		return out, true
	case "i8":
		if len(data) != count*8 {
			return nil, false
		}
		out := make([]int64, count)
		for i := range out {
			out[i] = int64(order.Uint64(data[i*8:]))
		}
		return out, true
	case "i4":
		if len(data) != count*4 {
			return nil, false
		}
		out := make([]int32, count)
		for i := range out {
			out[i] = int32(order.Uint32(data[i*4:]))
		}
		return out, true
	case "u1":
		if len(data) != count {
			return nil, false
		}
		out := make([]uint8, count)
		copy(out, data)
		return out, true
	default:
		return nil, false
	}
}

func byteOrder(c byte) binary.ByteOrder {
	switch c {
	case '<', '|':
		return binary.LittleEndian
	case '>':
		return binary.BigEndian
	default:
		return nil
	}
}

// toInt normalizes the integer widths the msgpack decoder may produce.
func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int8:
		return int(n), true
	case int16:
		return int(n), true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case uint8:
		return int(n), true
	case uint16:
		return int(n), true
	case uint32:
		return int(n), true
	case uint64:
		return int(n), true
	case float64:
		return int(n), true
	default:
		return 0, false
	}
}
