package frame

import (
	"encoding/binary"
	"fmt"
	"hash"
)

type (
	// Location identifies a unit of executable code: a function and the
	// source file it lives in. It is comparable and stable across samples,
	// which makes it usable as a map key.
	Location struct {
		Function string `json:"function"`
		File     string `json:"file"`
	}

	// Frame is a Location plus the line that was executing at the instant
	// the stack was captured. The line belongs to the sample, not to the
	// location.
	Frame struct {
		Function string `json:"function"`
		File     string `json:"file"`
		Line     uint32 `json:"line"`
	}
)

func (f Frame) Location() Location {
	return Location{Function: f.Function, File: f.File}
}

// WriteToHash feeds the frame into a stack fingerprint. Fields are
// length-prefixed so that ("ab","c") and ("a","bc") cannot collide.
func (f Frame) WriteToHash(h hash.Hash) {
	var buf [4]byte
	for _, s := range []string{f.Function, f.File} {
		binary.LittleEndian.PutUint32(buf[:], uint32(len(s)))
		h.Write(buf[:])
		h.Write([]byte(s))
	}
	binary.LittleEndian.PutUint32(buf[:], f.Line)
	h.Write(buf[:])
}

func (l Location) String() string {
	return fmt.Sprintf("%s (%s)", l.Function, l.File)
}

// MarshalText lets nested maps keyed by Location serialize to JSON.
func (l Location) MarshalText() ([]byte, error) {
	return []byte(l.File + ":" + l.Function), nil
}
