package main

import (
	"encoding/binary"
	"fmt"
	"math"
)

const vec4Stride = 16

type vec4 [4]float32

func (v vec4) String() string {
	return fmt.Sprintf("(%.1f, %.1f, %.1f, %.1f)", v[0], v[1], v[2], v[3])
}

func encodeVec4s(values ...vec4) []byte {
	out := make([]byte, len(values)*vec4Stride)
	for i, value := range values {
		for component, f := range value {
			binary.LittleEndian.PutUint32(out[i*vec4Stride+component*4:], math.Float32bits(f))
		}
	}
	return out
}

func decodeVec4s(data []byte) []vec4 {
	out := make([]vec4, len(data)/vec4Stride)
	for i := range out {
		for component := range out[i] {
			out[i][component] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*vec4Stride+component*4:]))
		}
	}
	return out
}
