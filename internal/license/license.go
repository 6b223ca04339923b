// Package license computes Abaqus license token requirements.
package license

import "math"

// Needed returns the number of Abaqus analysis tokens required to run on
// cpus cores: floor(5 * cpus^0.422). Non-positive counts need no tokens.
func Needed(cpus int) int {
	if cpus < 1 {
		return 0
	}
	return int(math.Floor(5 * math.Pow(float64(cpus), 0.422)))
}
