package tracker

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func intPtr(v int) *int { return &v }

func TestEffectiveCap(t *testing.T) {
	tests := []struct {
		name          string
		override      *int
		structuralMax int
		want          int
	}{
		{name: "nil override uses structural", override: nil, structuralMax: 10, want: 10},
		{name: "zero override uses structural", override: intPtr(0), structuralMax: 10, want: 10},
		{name: "negative override uses structural", override: intPtr(-3), structuralMax: 10, want: 10},
		{name: "in-range override", override: intPtr(4), structuralMax: 10, want: 4},
		{name: "override at structural max", override: intPtr(10), structuralMax: 10, want: 10},
		{name: "override above structural clamps down", override: intPtr(25), structuralMax: 10, want: 10},
		{name: "minimum override of one", override: intPtr(1), structuralMax: 10, want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EffectiveCap(tt.override, tt.structuralMax))
		})
	}
}

func TestEffectiveActivityCap(t *testing.T) {
	catalog := DefaultCatalog()
	settings := DefaultSettings()
	settings.HuntCap = intPtr(4)
	settings.RaidCap = intPtr(99)

	assert.Equal(t, 4, effectiveActivityCap(settings, catalog.Activity(ActivityHunt)))
	assert.Equal(t, 3, effectiveActivityCap(settings, catalog.Activity(ActivityRaid)))
	assert.Equal(t, 3, effectiveActivityCap(settings, catalog.Activity(ActivityExpedition)))

	// Non-overridable activities ignore settings entirely.
	assert.Equal(t, 12, effectiveActivityCap(settings, catalog.Activity(ActivityCorridor)))
	assert.Equal(t, 12, effectiveActivityCap(nil, catalog.Activity(ActivityCorridor)))

	assert.Equal(t, 10, effectiveActivityCap(nil, catalog.Activity(ActivityHunt)))
}
