package storage

import (
	"errors"

	"github.com/san-kum/stardrop/internal/dynamo"
)

// Jar is the part of the simulator the persistence layer is allowed to
// touch: appending stars. It never reads internal arrays.
type Jar interface {
	AddStar(x, y, z float64) (int, error)
	AddSettledStar(x, y, z float64) (int, error)
}

// SpawnFunc picks the drop point for a newly earned star.
type SpawnFunc func() (x, y, z float64)

// Restore places every recorded star back into the jar as settled, without
// replaying its fall. A full jar ends the restore early; the returned count
// tells the caller how many made it in.
func Restore(jar Jar, stars Stars) (int, error) {
	for n, star := range stars {
		if _, err := jar.AddSettledStar(star.X, star.Y, star.Z); err != nil {
			if errors.Is(err, dynamo.ErrStoreFull) {
				return n, nil
			}
			return n, err
		}
	}
	return len(stars), nil
}

// Sync drops one falling star for each star earned since the last sync and
// returns the new recorded total.
func Sync(jar Jar, recorded, earned int, spawn SpawnFunc) (int, error) {
	for recorded < earned {
		x, y, z := spawn()
		if _, err := jar.AddStar(x, y, z); err != nil {
			if errors.Is(err, dynamo.ErrStoreFull) {
				return recorded, nil
			}
			return recorded, err
		}
		recorded++
	}
	return recorded, nil
}
