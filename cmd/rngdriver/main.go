// Command rngdriver iterates the core unit PRNG and emits raw bytes to
// standard output, suitable for piping into a general-purpose statistical
// randomness test suite (e.g., `rngdriver 10000000000 | dieharder -g200 -a`).
package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"

	"github.com/solsword/anarchy/internal/unit"
)

func main() {
	var limit uint64
	if len(os.Args) > 1 {
		v, err := strconv.ParseUint(os.Args[1], 10, 64)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: couldn't parse %q as an output limit.\n", os.Args[1])
			os.Exit(1)
		}
		limit = v
	}

	out := bufio.NewWriter(os.Stdout)
	defer out.Flush()

	var buf [8]byte
	x := unit.Id(7817298123)
	const seed = unit.Id(1092809123)

	for written := uint64(0); limit == 0 || written < limit; {
		x = unit.Prng(x, seed)
		for i := 0; i < 8; i++ {
			buf[i] = byte(x >> (8 * i))
		}
		n := uint64(len(buf))
		if limit != 0 && limit-written < n {
			n = limit - written
		}
		if _, err := out.Write(buf[:n]); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing output: %v\n", err)
			os.Exit(1)
		}
		written += n
	}
}
