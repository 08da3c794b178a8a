// Command bencher plots a nonce range in memory, scans one scoop and
// reports the timings and the best deadline, plus per-nonce plot
// fingerprints when -f is given. It is a
// throughput benchmark and correctness probe for the plotting core, not a
// miner.
package main

import (
	"encoding/hex"
	"fmt"
	"log"
	"math"
	"os"
	"time"

	bencher "github.com/PoC-Consortium/bencher"
	"github.com/mattn/go-isatty"
	sha256simd "github.com/minio/sha256-simd"
	"github.com/pborman/options"
)

func main() {

	opts := &struct {
		NumericID   uint64       `getopt:"-i --id          Numeric account id to plot for"`
		StartNonce  uint64       `getopt:"-n --start-nonce Nonce number to start generation at"`
		Nonces      uint64       `getopt:"-c --nonces      Number of nonces to generate (multiple of the lane count)"`
		Lanes       int          `getopt:"-w --width       Lane count: 1, 4, 8 or 16 (0 = detect from CPU)"`
		Scoop       uint64       `getopt:"-s --scoop       Scoop to scan after plotting"`
		GenSig      string       `getopt:"-g --gensig      Hex generation signature (32 bytes, defaults to all-zero)"`
		Fingerprint bool         `getopt:"-f --fingerprint Print the SHA-256 of every de-interleaved plot"`
		Help        options.Help `getopt:"-h --help        Display help"`
	}{
		Nonces: 64,
	}

	options.RegisterAndParse(opts)

	var eng *bencher.Engine
	if opts.Lanes == 0 {
		eng = bencher.Preferred()
	} else {
		var err error
		eng, err = bencher.New(opts.Lanes)
		if err != nil {
			log.Fatal(err)
		}
	}

	if opts.Scoop >= bencher.ScoopsPerNonce {
		log.Fatalf("scoop %d out of range [0, %d)", opts.Scoop, bencher.ScoopsPerNonce)
	}

	gensig := make([]byte, bencher.HashSize)
	if opts.GenSig != "" {
		decoded, err := hex.DecodeString(opts.GenSig)
		if err != nil || len(decoded) != bencher.HashSize {
			log.Fatalf("gensig must be %d hex-encoded bytes", bencher.HashSize)
		}
		copy(gensig, decoded)
	}

	if isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd()) {
		log.Printf("Plotting %d nonces for id %d at %d lanes...", opts.Nonces, opts.NumericID, eng.Lanes())
	}

	cache := make([]byte, opts.Nonces*bencher.NonceSize)

	plotStart := time.Now()
	if err := eng.PlotNonces(cache, opts.NumericID, opts.StartNonce, opts.Nonces); err != nil {
		log.Fatal(err)
	}
	plotDur := time.Since(plotStart)

	bestDeadline := uint64(math.MaxUint64)
	var bestOffset uint64
	scanStart := time.Now()
	if err := eng.FindBestDeadline(cache, uint32(opts.Scoop), opts.Nonces, gensig, &bestDeadline, &bestOffset); err != nil {
		log.Fatal(err)
	}
	scanDur := time.Since(scanStart)

	plotted := float64(opts.Nonces) * bencher.NonceSize
	fmt.Fprintf(os.Stderr, `
Lanes:         % 12d
Plotted:       % 12d bytes in %s (%.2f MiB/s)
Scanned scoop: % 12d in %s
Best deadline: % 12d at nonce %d (offset %d)
`,
		eng.Lanes(),
		int64(plotted), plotDur, plotted/plotDur.Seconds()/(1<<20),
		opts.Scoop, scanDur,
		bestDeadline, opts.StartNonce+bestOffset, bestOffset,
	)

	if opts.Fingerprint {
		for i := uint64(0); i < opts.Nonces; i++ {
			plot, err := eng.ExtractNonce(cache, i)
			if err != nil {
				log.Fatal(err)
			}
			sum := sha256simd.Sum256(plot)
			fmt.Printf("%d %x\n", opts.StartNonce+i, sum)
		}
	}
}
