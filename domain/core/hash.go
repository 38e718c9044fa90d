package core

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"math"
)

// Hash represents a cryptographic hash
type Hash string

// String returns the string representation
func (h Hash) String() string {
	return string(h)
}

// IsEmpty checks if the hash is empty
func (h Hash) IsEmpty() bool {
	return h == ""
}

// Short returns the first 12 hex characters, enough to tell runs apart in logs.
func (h Hash) Short() string {
	if len(h) <= 12 {
		return string(h)
	}
	return string(h[:12])
}

// HashSamples fingerprints a sequence of samples. Each sample is length-prefixed so that
// moving an observation from one sample to the next changes the hash.
func HashSamples(samples ...[]float64) Hash {
	h := sha256.New()
	buf := make([]byte, 8)
	for _, sample := range samples {
		binary.LittleEndian.PutUint64(buf, uint64(len(sample)))
		h.Write(buf)
		for _, v := range sample {
			binary.LittleEndian.PutUint64(buf, math.Float64bits(v))
			h.Write(buf)
		}
	}
	return Hash(hex.EncodeToString(h.Sum(nil)))
}
