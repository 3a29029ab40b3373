package tracker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeVersioned(t *testing.T, version int, counters map[ActivityID]*ActivityCounter) *Aggregate {
	t.Helper()
	agg := &Aggregate{
		Version: version,
		Characters: []*Character{{
			ID:         "char1",
			AccountID:  "acct1",
			Name:       "角色1",
			Activities: counters,
		}},
	}
	data, err := EncodeAggregate(agg)
	require.NoError(t, err)
	out, err := DecodeAggregate(data)
	require.NoError(t, err)
	return out
}

func TestDecodeAggregate_TicketSplitMigration(t *testing.T) {
	// v1 stored base+tickets merged into remaining. Expedition structural
	// max is 3: remaining 5 with 2 tickets splits into base 3.
	agg := decodeVersioned(t, 1, map[ActivityID]*ActivityCounter{
		ActivityExpedition: {Remaining: 5, TicketBonus: 2, BossRemaining: 4},
	})

	counter := agg.Character("char1").Activities[ActivityExpedition]
	assert.Equal(t, 3, counter.Remaining)
	assert.Equal(t, 2, counter.TicketBonus)
	assert.Equal(t, 4, counter.BossRemaining)
	assert.Equal(t, currentSchemaVersion, agg.Version)
}

func TestDecodeAggregate_TicketSplitSkipsImplausibleCounts(t *testing.T) {
	agg := decodeVersioned(t, 1, map[ActivityID]*ActivityCounter{
		// remaining - tickets would go negative: already split, leave it.
		ActivityExpedition: {Remaining: 1, TicketBonus: 2},
		// difference above the structural max: corrupt, leave it.
		ActivityAwakening: {Remaining: 99, TicketBonus: 2},
		// no tickets: nothing to split.
		ActivityTrial: {Remaining: 4},
	})

	c := agg.Character("char1")
	assert.Equal(t, 1, c.Activities[ActivityExpedition].Remaining)
	assert.Equal(t, 99, c.Activities[ActivityAwakening].Remaining)
	assert.Equal(t, 4, c.Activities[ActivityTrial].Remaining)
}

func TestDecodeAggregate_CurrentVersionNotMigrated(t *testing.T) {
	agg := decodeVersioned(t, currentSchemaVersion, map[ActivityID]*ActivityCounter{
		ActivityExpedition: {Remaining: 3, TicketBonus: 2},
	})

	counter := agg.Character("char1").Activities[ActivityExpedition]
	assert.Equal(t, 3, counter.Remaining)
	assert.Equal(t, 2, counter.TicketBonus)
}

func TestDecodeAggregate_FillsDefaults(t *testing.T) {
	agg := decodeVersioned(t, currentSchemaVersion, map[ActivityID]*ActivityCounter{
		ActivityHunt: {Remaining: 2},
	})

	c := agg.Character("char1")
	// Missing counters filled from the catalog, present ones kept.
	assert.Equal(t, 2, c.Activities[ActivityHunt].Remaining)
	assert.Equal(t, 3, c.Activities[ActivityExpedition].Remaining)
	assert.Equal(t, 5, c.Activities[ActivityExpedition].BossRemaining)
	assert.Equal(t, 4, c.Missions[MissionDaily])
	assert.Equal(t, 240, c.Energy.BaseCap)
	assert.Equal(t, 480, c.Energy.BonusCap)
	assert.NotNil(t, c.Stats.Completions)
	assert.NotNil(t, agg.Settings)
	assert.Equal(t, int64(60000), agg.Settings.GoldPerExpedition)
}

func TestDecodeAggregate_DropsUnknownActivities(t *testing.T) {
	agg := decodeVersioned(t, currentSchemaVersion, map[ActivityID]*ActivityCounter{
		ActivityHunt:               {Remaining: 2},
		ActivityID("retired_mode"): {Remaining: 7},
	})

	c := agg.Character("char1")
	assert.NotContains(t, c.Activities, ActivityID("retired_mode"))
	assert.Contains(t, c.Activities, ActivityHunt)
}

func TestDecodeAggregate_InvalidPayload(t *testing.T) {
	_, err := DecodeAggregate([]byte("{not json"))
	assert.Error(t, err)
}
