package options

import units "github.com/docker/go-units"

// humanSize delegates to go-units so log lines agree with the formatting
// operators already expect from other tools in this ecosystem.
func humanSize(n uint64) string {
	return units.HumanSize(float64(n))
}
