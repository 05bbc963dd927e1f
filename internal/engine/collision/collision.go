// Package collision flags overlapping entities once per frame.
package collision

import "github.com/Faultbox/stagecraft/internal/engine/entity"

// Pair is two entities whose world bounds overlapped.
type Pair struct {
	A, B entity.ID
}

// Participants filters the entities that take part in a pass: loaded,
// non-instanced, with physics participation enabled.
func Participants(groups ...[]*entity.Entity) []*entity.Entity {
	var out []*entity.Entity
	for _, group := range groups {
		for _, e := range group {
			if e.Physics && e.IsLoaded() && !e.Kind.Instanced() {
				out = append(out, e)
			}
		}
	}
	return out
}

// Pass resets every participant's collision flag and tests all pairs.
// A flag is only ever raised during the pass, so an entity touching
// anything ends the frame colliding regardless of iteration order.
// With fewer than two participants nothing changes.
func Pass(participants []*entity.Entity) []Pair {
	if len(participants) < 2 {
		return nil
	}

	for _, e := range participants {
		e.ResetCollision()
	}

	var pairs []Pair
	for i := 0; i < len(participants); i++ {
		a := participants[i]
		boundsA := a.WorldBounds()
		for j := i + 1; j < len(participants); j++ {
			b := participants[j]
			if !boundsA.Intersects(b.WorldBounds()) {
				continue
			}
			a.SetColliding(true)
			b.SetColliding(true)
			pairs = append(pairs, Pair{A: a.ID(), B: b.ID()})
		}
	}
	return pairs
}
