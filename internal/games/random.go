package games

import (
	"crypto/rand"
	"math/big"

	"github.com/shopspring/decimal"
)

// randBelow returns a uniform int64 in [0, n).
func randBelow(n int64) int64 {
	v, err := rand.Int(rand.Reader, big.NewInt(n))
	if err != nil {
		// crypto/rand does not fail on supported platforms.
		panic(err)
	}
	return v.Int64()
}

// randCents returns a uniform two-decimal multiplier in [min, max],
// expressed in hundredths so the draw stays in integer space.
func randCents(min, max int64) int64 {
	return min + randBelow(max-min+1)
}

// scaledPayout multiplies a stake by a fractional multiplier and keeps
// the whole-chip part.
func scaledPayout(bet int64, multiplier decimal.Decimal) int64 {
	return decimal.NewFromInt(bet).Mul(multiplier).IntPart()
}
