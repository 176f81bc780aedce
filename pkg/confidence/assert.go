package confidence

import (
	"fmt"
	"math"
)

// assertInRange panics on a confidence outside [0,1] when assertions are compiled in.
// Such a value means two scales were mixed up somewhere upstream.
func assertInRange(name string, c float64) {
	if !assertionsEnabled {
		return
	}
	if math.IsNaN(c) || c < 0 || c > 1 {
		panic(fmt.Sprintf("confidence: %s %v is outside [0,1]", name, c))
	}
}
