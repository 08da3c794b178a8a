package bencher

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"testing"

	randmath "math/rand"

	"github.com/PoC-Consortium/bencher/shabal"
)

// interleave packs equal-length per-lane byte streams into the word-major
// lane-minor layout the engine consumes.
func interleave(lanes int, msgs [][]byte) []byte {
	n := len(msgs[0])
	out := make([]byte, n*lanes)
	for k, msg := range msgs {
		for w := 0; w < n/4; w++ {
			copy(out[(w*lanes+k)*4:], msg[4*w:4*w+4])
		}
	}
	return out
}

func randomBytes(rand *randmath.Rand, n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte(rand.Uint32())
	}
	return b
}

// termFor packs the message tail plus Shabal padding into a termination
// block: tail must be shorter than one block and a multiple of 4 bytes.
func termFor(lanes int, tails [][]byte) [16 * maxLanes]uint32 {
	var t [16 * maxLanes]uint32
	n := len(tails[0])
	for k, tail := range tails {
		for w := 0; w < n/4; w++ {
			t[w*lanes+k] = binary.LittleEndian.Uint32(tail[4*w:])
		}
		t[n/4*lanes+k] = 0x80
	}
	return t
}

func TestVhashFastMatchesScalar(t *testing.T) {
	t.Parallel()

	// message sizes exercising all three termination shapes: tail-only,
	// block-aligned body with seed-sized tail, and saturated pure padding
	for _, tc := range []struct{ size, tail int }{
		{16, 16},  // seed‖nonce round
		{48, 48},  // hash + seed tail, no full block
		{64, 0},   // one block, padding-only termination
		{80, 16},  // one block + seed-sized tail
		{4096, 0}, // saturated window
	} {
		tc := tc
		t.Run(fmt.Sprintf("len%d", tc.size), func(t *testing.T) {
			t.Parallel()
			rand := randmath.New(randmath.NewSource(int64(tc.size)))
			for _, lanes := range []int{1, 4, 8, 16} {
				msgs := make([][]byte, lanes)
				tails := make([][]byte, lanes)
				for k := range msgs {
					msgs[k] = randomBytes(rand, tc.size)
					tails[k] = msgs[k][tc.size-tc.tail:]
				}
				nblocks := (tc.size - tc.tail) / 64
				var in []byte
				if nblocks > 0 {
					in = interleave(lanes, msgs)[:nblocks*64*lanes]
				}
				term := termFor(lanes, tails)

				out := make([]byte, HashSize*lanes)
				vecIV(lanes).vhashFast(in, &term, out, nblocks)

				for k := range msgs {
					want := shabal.Sum256(msgs[k])
					got := make([]byte, HashSize)
					for w := 0; w < 8; w++ {
						copy(got[4*w:], out[(w*lanes+k)*4:(w*lanes+k)*4+4])
					}
					if !bytes.Equal(got, want[:]) {
						t.Fatalf("lanes=%d lane=%d: vhashFast = %x, want %x", lanes, k, got, want)
					}
				}
			}
		})
	}
}

func TestVdeadlineFastMatchesScalar(t *testing.T) {
	t.Parallel()

	rand := randmath.New(randmath.NewSource(43))

	for _, lanes := range []int{1, 4, 8, 16} {
		gensig := randomBytes(rand, HashSize)
		u1s := make([][]byte, lanes)
		u2s := make([][]byte, lanes)
		for k := 0; k < lanes; k++ {
			u1s[k] = randomBytes(rand, HashSize)
			u2s[k] = randomBytes(rand, HashSize)
		}

		var gs, term [8 * maxLanes]uint32
		for w := 0; w < 8; w++ {
			gw := binary.LittleEndian.Uint32(gensig[4*w:])
			for k := 0; k < lanes; k++ {
				gs[w*lanes+k] = gw
			}
		}
		for k := 0; k < lanes; k++ {
			term[k] = 0x80
		}

		var dl [maxLanes]uint64
		vecIV(lanes).vdeadlineFast(&gs, interleave(lanes, u1s), interleave(lanes, u2s), &term, &dl)

		for k := 0; k < lanes; k++ {
			msg := append(append(append([]byte{}, gensig...), u1s[k]...), u2s[k]...)
			sum := shabal.Sum256(msg)
			want := binary.BigEndian.Uint64(sum[:8])
			if dl[k] != want {
				t.Fatalf("lanes=%d lane=%d: deadline = %d, want %d", lanes, k, dl[k], want)
			}
		}
	}
}
