package prime

import (
	"math/big"

	"github.com/tutils/tprime/prng"
)

// Normalize forces n to exactly bits bits with the top and bottom bits set.
// n is not modified. Negative inputs are taken in two's complement. A zero
// width yields zero.
func Normalize(n *big.Int, bits uint) *big.Int {
	c := new(big.Int)
	if bits == 0 {
		return c
	}
	if n != nil {
		c.Set(n)
	}
	c.SetBit(c, int(bits-1), 1)
	c.SetBit(c, 0, 1)
	return c.And(c, prng.Mask(bits))
}
