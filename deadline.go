package bencher

import (
	"encoding/binary"

	"golang.org/x/xerrors"
)

// FindBestDeadline scans one scoop across nonceCount plotted nonces in the
// interleaved data buffer. Per nonce it hashes gensig‖u1‖u2 — u1 the scoop's
// first hash, u2 the mirror scoop's second hash, the PoC2 pairing — and
// takes the first 8 digest bytes, big-endian, as the deadline.
//
// bestDeadline is in/out and must be initialized by the caller (typically
// math.MaxUint64); bestOffset is written only when bestDeadline improves, so
// on a strict minimum the lowest qualifying index wins.
func (e *Engine) FindBestDeadline(data []byte, scoop uint32, nonceCount uint64, gensig []byte, bestDeadline, bestOffset *uint64) error {
	L := e.lanes
	if scoop >= ScoopsPerNonce {
		return xerrors.Errorf("scoop %d out of range [0, %d)", scoop, ScoopsPerNonce)
	}
	if nonceCount%uint64(L) != 0 {
		return xerrors.Errorf("nonce count %d is not a multiple of the lane count %d", nonceCount, L)
	}
	if len(gensig) != HashSize {
		return xerrors.Errorf("generation signature must be %d bytes, got %d", HashSize, len(gensig))
	}
	if uint64(len(data)) < nonceCount*NonceSize {
		return xerrors.Errorf("data of %d bytes does not hold %d nonces", len(data), nonceCount)
	}

	var gs, term [8 * maxLanes]uint32
	for w := 0; w < 8; w++ {
		gw := binary.LittleEndian.Uint32(gensig[4*w:])
		for k := 0; k < L; k++ {
			gs[w*L+k] = gw
		}
	}
	for k := 0; k < L; k++ {
		term[k] = 0x80
	}

	mirror := ScoopsPerNonce - 1 - int(scoop)
	u1Off := int(scoop) * ScoopSize * L
	u2Off := (mirror*ScoopSize + HashSize) * L

	var dl [maxLanes]uint64
	for i := uint64(0); i < nonceCount; i += uint64(L) {
		base := i * NonceSize
		e.iv.vdeadlineFast(&gs, data[base+uint64(u1Off):], data[base+uint64(u2Off):], &term, &dl)
		for k := 0; k < L; k++ {
			setBestDeadline(dl[k], i+uint64(k), bestDeadline, bestOffset)
		}
	}
	return nil
}

// setBestDeadline keeps the strictly lowest deadline; equal deadlines keep
// the earlier offset.
func setBestDeadline(d, offset uint64, bestDeadline, bestOffset *uint64) {
	if d < *bestDeadline {
		*bestDeadline = d
		*bestOffset = offset
	}
}
