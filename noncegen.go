package bencher

import (
	"encoding/binary"
	"math/bits"

	"golang.org/x/xerrors"
)

// PlotNonces fills cache with the plots of nonces consecutive nonce numbers
// starting at startNonce, generated for numericID. nonces must be a multiple
// of the engine's lane count and cache must hold at least nonces*NonceSize
// writable bytes; the result is one interleaved group of lanes plots per
// batch, in the PoC2 scoop order.
func (e *Engine) PlotNonces(cache []byte, numericID, startNonce, nonces uint64) error {
	L := e.lanes
	if nonces%uint64(L) != 0 {
		return xerrors.Errorf("nonce count %d is not a multiple of the lane count %d", nonces, L)
	}
	if uint64(len(cache)) < nonces*NonceSize {
		return xerrors.Errorf("cache of %d bytes cannot hold %d nonces (%d bytes needed)", len(cache), nonces, nonces*NonceSize)
	}

	// The three interleaved termination blocks:
	//   t1 = seed‖nonce, 0x80, zeros      — body length divisible by 64
	//   t2 = H[0], seed‖nonce, 0x80, zeros — body length ≡ 32 (mod 64)
	//   t3 = 0x80, zeros                   — saturated window, pure padding
	// The id, padding marker and zero words never change; the nonce words
	// are rewritten per batch, t2's leading hash once per batch.
	var t1, t2, t3 [16 * maxLanes]uint32
	idBE := bits.ReverseBytes64(numericID)
	for k := 0; k < L; k++ {
		t1[0*L+k] = uint32(idBE)
		t1[1*L+k] = uint32(idBE >> 32)
		t1[4*L+k] = 0x80
		t2[8*L+k] = uint32(idBE)
		t2[9*L+k] = uint32(idBE >> 32)
		t2[12*L+k] = 0x80
		t3[0*L+k] = 0x80
	}

	var fin [HashSize * maxLanes]byte
	for n := uint64(0); n < nonces; n += uint64(L) {
		chunk := cache[n*NonceSize : (n+uint64(L))*NonceSize]

		for k := 0; k < L; k++ {
			be := bits.ReverseBytes64(startNonce + n + uint64(k))
			t1[2*L+k] = uint32(be)
			t1[3*L+k] = uint32(be >> 32)
			t2[10*L+k] = uint32(be)
			t2[11*L+k] = uint32(be >> 32)
		}

		// Hash 1 of 8192: seed alone, written to the tail slot. The write
		// cursor walks from there toward offset 0, which is what produces
		// the PoC2 pairing.
		e.iv.vhashFast(nil, &t1, chunk[(NonceSize-HashSize)*L:], 0)

		// The padded tail block of every t2-terminated message is
		// H[0]‖seed‖padding, so the first hash seeds t2 once per batch.
		h0 := chunk[(NonceSize-HashSize)*L:]
		for w := 0; w < 8*L; w++ {
			t2[w] = binary.LittleEndian.Uint32(h0[4*w:])
		}

		// Hashes 2..128: the body grows by one hash per round; t1 when it
		// splits into whole blocks, t2 otherwise.
		for i := NonceSize - HashSize; i > NonceSize-hashCap; i -= HashSize {
			nb := (NonceSize + 16 - i) >> 6
			term := &t2
			if i%64 == 0 {
				term = &t1
			}
			e.iv.vhashFast(chunk[i*L:], term, chunk[(i-HashSize)*L:], nb)
		}

		// Hashes 129..8192: the window is saturated at 128 hashes and the
		// seed has fallen out of it.
		for i := NonceSize - hashCap; i > 0; i -= HashSize {
			e.iv.vhashFast(chunk[i*L:], &t3, chunk[(i-HashSize)*L:], hashCap>>6)
		}

		// Final hash over the whole body plus seed, then folded into every
		// hash of the batch.
		e.iv.vhashFast(chunk, &t1, fin[:], (NonceSize+16)>>6)

		stride := HashSize * L
		f := fin[:stride]
		for off := 0; off < NonceSize*L; off += stride {
			row := chunk[off : off+stride]
			for i := range row {
				row[i] ^= f[i]
			}
		}
	}
	return nil
}
