package oracle

// keccakF applies the Keccak-f[1600] permutation to the 25-lane state,
// in place, for the standard 24 rounds.
func keccakF(a *[25]uint64) {
	var b [25]uint64
	var c [5]uint64
	var d [5]uint64

	for round := 0; round < 24; round++ {
		// theta
		for x := 0; x < 5; x++ {
			c[x] = a[x] ^ a[x+5] ^ a[x+10] ^ a[x+15] ^ a[x+20]
		}
		for x := 0; x < 5; x++ {
			d[x] = c[(x+4)%5] ^ rotl64(c[(x+1)%5], 1)
		}
		for x := 0; x < 5; x++ {
			for y := 0; y < 5; y++ {
				a[x+5*y] ^= d[x]
			}
		}

		// rho and pi
		for x := 0; x < 5; x++ {
			for y := 0; y < 5; y++ {
				nx := y
				ny := (2*x + 3*y) % 5
				b[nx+5*ny] = rotl64(a[x+5*y], rhoOffsets[x+5*y])
			}
		}

		// chi
		for x := 0; x < 5; x++ {
			for y := 0; y < 5; y++ {
				a[x+5*y] = b[x+5*y] ^ ((^b[(x+1)%5+5*y]) & b[(x+2)%5+5*y])
			}
		}

		// iota
		a[0] ^= roundConstants[round]
	}
}

func rotl64(x uint64, n uint) uint64 {
	n %= 64
	if n == 0 {
		return x
	}
	return (x << n) | (x >> (64 - n))
}

// rhoOffsets holds the per-lane rotation amount, indexed as x+5*y, matching
// the FIPS 202 rho-offset table.
var rhoOffsets = [25]uint{
	0, 1, 62, 28, 27,
	36, 44, 6, 55, 20,
	3, 10, 43, 25, 39,
	41, 45, 15, 21, 8,
	18, 2, 61, 56, 14,
}

// roundConstants are the 24 iota round constants defined by FIPS 202.
var roundConstants = [24]uint64{
	0x0000000000000001, 0x0000000000008082, 0x800000000000808A, 0x8000000080008000,
	0x000000000000808B, 0x0000000080000001, 0x8000000080008081, 0x8000000000008009,
	0x000000000000008A, 0x0000000000000088, 0x0000000080008009, 0x000000008000000A,
	0x000000008000808B, 0x800000000000008B, 0x8000000000008089, 0x8000000000008003,
	0x8000000000008002, 0x8000000000000080, 0x000000000000800A, 0x800000008000000A,
	0x8000000080008081, 0x8000000000008080, 0x0000000080000001, 0x8000000080008008,
}
