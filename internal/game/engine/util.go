package engine

import (
	"time"

	"growarena.gg/internal/game/resolve"
)

func timeUnix(s int64) time.Time { return time.Unix(s, 0) }

func rollRange(r resolve.Rand, min, max int64) int64 {
	if max <= min {
		return min
	}
	return min + r.Int63n(max-min+1)
}
