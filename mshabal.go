package bencher

import (
	"encoding/binary"
	"math/bits"
)

// maxLanes bounds the state and scratch arrays; 16 lanes is the 512-bit
// engine.
const maxLanes = 16

// vecContext is a W-lane Shabal-256 state: every state word widened to W
// parallel copies, stored word-major and lane-minor so that the W words of
// one position sit contiguously, exactly as in the interleaved buffers.
//
// The package-level contexts built at init are IV snapshots and stay
// read-only forever; vhashFast and vdeadlineFast work on stack copies, so a
// single snapshot serves any number of goroutines.
type vecContext struct {
	lanes    int
	a        [12 * maxLanes]uint32
	b        [16 * maxLanes]uint32
	c        [16 * maxLanes]uint32
	wlo, whi uint32
}

var (
	vecIV1  = newVecContext(1)
	vecIV4  = newVecContext(4)
	vecIV8  = newVecContext(8)
	vecIV16 = newVecContext(16)
)

func vecIV(lanes int) *vecContext {
	switch lanes {
	case 1:
		return vecIV1
	case 4:
		return vecIV4
	case 8:
		return vecIV8
	case 16:
		return vecIV16
	}
	return nil
}

// newVecContext absorbs the two out-size-keyed prefix blocks from an
// all-zero state with the counter at -1, leaving it at (Whigh=0, Wlow=1).
func newVecContext(lanes int) *vecContext {
	s := &vecContext{lanes: lanes}
	s.wlo, s.whi = 0xFFFFFFFF, 0xFFFFFFFF
	var m [16 * maxLanes]uint32
	for w := 0; w < 16; w++ {
		for k := 0; k < lanes; k++ {
			m[w*lanes+k] = uint32(8*HashSize + w)
		}
	}
	s.compress(&m)
	for w := 0; w < 16; w++ {
		for k := 0; k < lanes; k++ {
			m[w*lanes+k] = uint32(8*HashSize + 16 + w)
		}
	}
	s.compress(&m)
	return s
}

func (s *vecContext) xorW() {
	L := s.lanes
	for k := 0; k < L; k++ {
		s.a[k] ^= s.wlo
		s.a[L+k] ^= s.whi
	}
}

func (s *vecContext) compress(m *[16 * maxLanes]uint32) {
	L := s.lanes
	for i := 0; i < 16*L; i++ {
		s.b[i] += m[i]
	}
	s.xorW()
	s.applyP(m)
	for i := 0; i < 16*L; i++ {
		s.b[i], s.c[i] = s.c[i]-m[i], s.b[i]
	}
	s.wlo++
	if s.wlo == 0 {
		s.whi++
	}
}

func (s *vecContext) applyP(m *[16 * maxLanes]uint32) {
	L := s.lanes
	for i := 0; i < 16*L; i++ {
		s.b[i] = bits.RotateLeft32(s.b[i], 17)
	}
	for step := 0; step < 3; step++ {
		for i := 0; i < 16; i++ {
			ia := ((16*step + i) % 12) * L
			ip := ((16*step + i + 11) % 12) * L
			ib := i * L
			i13 := ((i + 13) & 15) * L
			i9 := ((i + 9) & 15) * L
			i6 := ((i + 6) & 15) * L
			ic := ((8 - i + 16) & 15) * L
			for k := 0; k < L; k++ {
				t := (s.a[ia+k] ^ bits.RotateLeft32(s.a[ip+k], 15)*5 ^ s.c[ic+k]) * 3
				t ^= s.b[i13+k] ^ (s.b[i9+k] &^ s.b[i6+k]) ^ m[ib+k]
				s.a[ia+k] = t
				s.b[ib+k] = ^(bits.RotateLeft32(s.b[ib+k], 1) ^ t)
			}
		}
	}
	for u := 0; u < 36; u++ {
		ia := (11 - u%12) * L
		ic := ((6 - u%16 + 16) & 15) * L
		for k := 0; k < L; k++ {
			s.a[ia+k] += s.c[ic+k]
		}
	}
}

// closeRounds absorbs the final block and replays the permutation three more
// times over it with B and C swapped in between. The counter is not stepped.
func (s *vecContext) closeRounds(m *[16 * maxLanes]uint32) {
	L := s.lanes
	for i := 0; i < 16*L; i++ {
		s.b[i] += m[i]
	}
	s.xorW()
	s.applyP(m)
	for r := 0; r < 3; r++ {
		for i := 0; i < 16*L; i++ {
			s.b[i], s.c[i] = s.c[i], s.b[i]
		}
		s.xorW()
		s.applyP(m)
	}
}

// loadBlock decodes interleaved block blk of in into m.
func loadBlock(m *[16 * maxLanes]uint32, in []byte, blk, lanes int) {
	base := blk * 64 * lanes
	for w := 0; w < 16*lanes; w++ {
		m[w] = binary.LittleEndian.Uint32(in[base+4*w:])
	}
}

// vhashFast runs one whole Shabal-256 computation per lane from the IV
// snapshot: nblocks full 64-byte blocks from the interleaved in buffer
// (in may be nil when nblocks is 0), then term as the final block. term
// carries the trailing message bytes together with the 0x80 padding, so no
// length bookkeeping happens here; the counter advances exactly nblocks
// times. The 32-byte digests are written interleaved to out.
func (iv *vecContext) vhashFast(in []byte, term *[16 * maxLanes]uint32, out []byte, nblocks int) {
	s := *iv
	L := s.lanes
	var m [16 * maxLanes]uint32
	for blk := 0; blk < nblocks; blk++ {
		loadBlock(&m, in, blk, L)
		s.compress(&m)
	}
	s.closeRounds(term)
	for w := 0; w < 8; w++ {
		for k := 0; k < L; k++ {
			binary.LittleEndian.PutUint32(out[(w*L+k)*4:], s.b[(8+w)*L+k])
		}
	}
}

// vdeadlineFast hashes gensig‖u1‖u2 per lane and returns the deadlines: the
// first 8 digest bytes read as big-endian. gensig and term are broadcast
// 32-byte halves (8 interleaved words each); u1 and u2 are interleaved
// 32-byte reads from the plot cache. Two blocks total: gensig‖u1, then
// u2‖padding.
func (iv *vecContext) vdeadlineFast(gensig *[8 * maxLanes]uint32, u1, u2 []byte, term *[8 * maxLanes]uint32, dl *[maxLanes]uint64) {
	s := *iv
	L := s.lanes
	var m [16 * maxLanes]uint32
	copy(m[:8*L], gensig[:8*L])
	for w := 0; w < 8*L; w++ {
		m[8*L+w] = binary.LittleEndian.Uint32(u1[4*w:])
	}
	s.compress(&m)
	for w := 0; w < 8*L; w++ {
		m[w] = binary.LittleEndian.Uint32(u2[4*w:])
	}
	copy(m[8*L:16*L], term[:8*L])
	s.closeRounds(&m)

	var d8 [8]byte
	for k := 0; k < L; k++ {
		binary.LittleEndian.PutUint32(d8[0:], s.b[8*L+k])
		binary.LittleEndian.PutUint32(d8[4:], s.b[9*L+k])
		dl[k] = binary.BigEndian.Uint64(d8[:])
	}
}
