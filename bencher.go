// Package bencher generates and scans Burst/Signum proof-of-capacity plots.
//
// A plot is 8192 Shabal-256 hashes (262144 bytes) deterministically derived
// from a numeric account id and a nonce number, laid out in the PoC2 scoop
// order. The package processes W nonces at a time over a word-interleaved
// buffer, with W selectable as 1, 4, 8 or 16 lanes to match the vector
// register widths of the native mshabal engines; every lane count produces
// bit-identical per-nonce plots. Scanning reads one scoop pair per nonce,
// hashes it against a generation signature and reduces to the lowest
// deadline.
//
// The interleaved layout groups the W lanes' 32-bit words: the word at plot
// byte offset o of lane k lives at buffer offset (o/4*W+k)*4. Use
// ExtractNonce to recover the flat per-nonce view.
package bencher

import (
	"github.com/klauspost/cpuid/v2"
	"golang.org/x/xerrors"
)

// Plot geometry, fixed by the Burst/Signum protocol.
const (
	// HashSize is the Shabal-256 digest size in bytes.
	HashSize = 32
	// HashesPerNonce is the number of hashes forming one plot.
	HashesPerNonce = 8192
	// NonceSize is the byte size of one nonce's plot.
	NonceSize = HashSize * HashesPerNonce
	// ScoopSize is the byte size of one scoop, a pair of hashes.
	ScoopSize = 2 * HashSize
	// ScoopsPerNonce is the number of scoops in one plot.
	ScoopsPerNonce = 4096

	// hashCap is the byte length the hash input window saturates at:
	// 128 hashes.
	hashCap = 4096
)

// Engine plots and scans batches of lanes nonces over interleaved buffers.
// It carries no mutable state and is safe for concurrent use; callers
// partition nonce ranges across goroutines themselves.
type Engine struct {
	lanes int
	iv    *vecContext
}

// New returns the engine for the given lane count. Valid counts are 1
// (portable scalar reference), 4, 8 and 16, mirroring the 128/256/512-bit
// mshabal widths. The per-width Shabal fast contexts are package state built
// once at init, so construction is cheap and idempotent.
func New(lanes int) (*Engine, error) {
	iv := vecIV(lanes)
	if iv == nil {
		return nil, xerrors.Errorf("unsupported lane count %d: must be 1, 4, 8 or 16", lanes)
	}
	return &Engine{lanes: lanes, iv: iv}, nil
}

// Preferred returns the engine whose lane count matches the widest vector
// unit of the host CPU, so that batches line up with plots produced by the
// native SIMD engines. The lane count only affects batch layout and
// throughput, never output bytes.
func Preferred() *Engine {
	var lanes int
	switch {
	case cpuid.CPU.Supports(cpuid.AVX512F):
		lanes = 16
	case cpuid.CPU.Supports(cpuid.AVX2):
		lanes = 8
	case cpuid.CPU.Supports(cpuid.SSE2):
		lanes = 4
	default:
		lanes = 1
	}
	e, _ := New(lanes)
	return e
}

// Lanes returns the engine's lane count W.
func (e *Engine) Lanes() int { return e.lanes }

// ExtractNonce copies the flat 262144-byte plot of the nonce at the given
// batch index out of an interleaved cache holding a whole multiple of the
// engine's lane count.
func (e *Engine) ExtractNonce(cache []byte, index uint64) ([]byte, error) {
	L := uint64(e.lanes)
	group := index / L
	lane := int(index % L)
	base := group * L * NonceSize
	if uint64(len(cache)) < base+L*NonceSize {
		return nil, xerrors.Errorf("cache of %d bytes does not cover nonce index %d at %d lanes", len(cache), index, e.lanes)
	}
	src := cache[base:]
	out := make([]byte, NonceSize)
	for w := 0; w < NonceSize/4; w++ {
		copy(out[4*w:4*w+4], src[(w*e.lanes+lane)*4:])
	}
	return out, nil
}
