package eval

import (
	"math/rand"
	"time"

	"github.com/calcmesh/calcmesh/numfmt"
)

// currentSerial returns today's 1900-system date serial (spec §4.5
// calendar), backing the default systemClock used by NOW/TODAY when no
// test Clock has been injected.
func currentSerial() float64 {
	now := time.Now().UTC()
	serial, _ := numfmt.DateToSerial(now.Day(), int(now.Month()), now.Year())
	frac := (float64(now.Hour())*3600 + float64(now.Minute())*60 + float64(now.Second())) / 86400
	return float64(serial) + frac
}

// pseudoRandomFloat64 backs the default defaultRandom used by RAND when
// no test RandomSource has been injected. Grounded on the teacher's
// DefaultRandomGenerator (builtin.go), which likewise wraps math/rand
// rather than crypto/rand since formula RNG has no security requirement.
func pseudoRandomFloat64() float64 {
	return rand.Float64()
}
