package bencher

import (
	"encoding/binary"

	"github.com/PoC-Consortium/bencher/shabal"
)

// ReferencePlot produces the flat plot of a single nonce with a plain
// scalar Shabal-256, one hash at a time. It is the ground truth the vector
// engines are validated against and is far too slow for actual plotting.
func ReferencePlot(numericID, nonce uint64) []byte {
	plot, _ := referencePlot(numericID, nonce)
	return plot
}

// referencePlot also returns the final hash so tests can undo the XOR fold.
func referencePlot(numericID, nonce uint64) ([]byte, [HashSize]byte) {
	buf := make([]byte, NonceSize+16)
	seed := buf[NonceSize:]
	binary.BigEndian.PutUint64(seed[0:], numericID)
	binary.BigEndian.PutUint64(seed[8:], nonce)

	// Hashes accrete leftwards from the seed; each reads at most hashCap
	// bytes ahead of the write cursor.
	for i := NonceSize; i > 0; i -= HashSize {
		end := i + hashCap
		if end > len(buf) {
			end = len(buf)
		}
		h := shabal.Sum256(buf[i:end])
		copy(buf[i-HashSize:i], h[:])
	}

	fin := shabal.Sum256(buf)
	plot := buf[:NonceSize]
	for i := range plot {
		plot[i] ^= fin[i%HashSize]
	}
	return plot, fin
}
