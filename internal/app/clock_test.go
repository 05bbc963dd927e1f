package app

import (
	"testing"
	"time"
)

func TestClockTick(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	steps := []time.Duration{0, 16 * time.Millisecond, -time.Second, 2 * time.Second}
	i := 0
	clock := NewClock(func() time.Time {
		t := base.Add(steps[i])
		base = t
		i++
		return t
	})

	tests := []struct {
		name string
		want float32
	}{
		{"first tick", 0},
		{"normal frame", 0.016},
		{"clock went backwards", 0},
		{"long stall is capped", maxDelta},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := clock.Tick()
			if diff := got - tt.want; diff > 1e-6 || diff < -1e-6 {
				t.Errorf("Tick() = %f, want %f", got, tt.want)
			}
		})
	}
}
