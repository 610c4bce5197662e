package encoding

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"fmt"
)

// EncodeIndices encodes a triangle index list into base64(varint pairs).
// Indices are delta coded and zig-zagged, then the deltas are run-length
// coded as (delta, run_len) pairs. Sequential index buffers collapse to a
// single pair.
func EncodeIndices(idx []uint32) string {
	var buf bytes.Buffer
	var tmp [binary.MaxVarintLen64]byte

	deltas := make([]uint64, len(idx))
	prev := int64(0)
	for i, v := range idx {
		deltas[i] = zigzag(int64(v) - prev)
		prev = int64(v)
	}

	i := 0
	for i < len(deltas) {
		d := deltas[i]
		run := 1
		for j := i + 1; j < len(deltas) && deltas[j] == d && run < 1<<31; j++ {
			run++
		}

		n := binary.PutUvarint(tmp[:], d)
		buf.Write(tmp[:n])
		n = binary.PutUvarint(tmp[:], uint64(run))
		buf.Write(tmp[:n])

		i += run
	}

	return base64.StdEncoding.EncodeToString(buf.Bytes())
}

func DecodeIndices(b64 string) ([]uint32, error) {
	raw, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return nil, err
	}
	var out []uint32
	prev := int64(0)
	for i := 0; i < len(raw); {
		d, n := binary.Uvarint(raw[i:])
		if n <= 0 {
			return nil, fmt.Errorf("bad varint at %d", i)
		}
		i += n
		run, n := binary.Uvarint(raw[i:])
		if n <= 0 {
			return nil, fmt.Errorf("bad varint at %d", i)
		}
		i += n
		if run > 1<<31 {
			return nil, fmt.Errorf("run too long: %d", run)
		}
		delta := unzigzag(d)
		for k := uint64(0); k < run; k++ {
			prev += delta
			if prev < 0 || prev > 0xFFFFFFFF {
				return nil, fmt.Errorf("index out of range: %d", prev)
			}
			out = append(out, uint32(prev))
		}
	}
	return out, nil
}

func zigzag(v int64) uint64 { return uint64((v << 1) ^ (v >> 63)) }

func unzigzag(u uint64) int64 { return int64(u>>1) ^ -int64(u&1) }
