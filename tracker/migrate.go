package tracker

import (
	"encoding/json"
	"fmt"
)

// currentSchemaVersion is the persisted document version this build writes.
//
// Version history:
//
//	1: ticketed activities stored base+tickets as a single remaining count.
//	2: remaining and ticketBonus split into separate fields.
const currentSchemaVersion = 2

// EncodeAggregate marshals the aggregate document.
func EncodeAggregate(agg *Aggregate) ([]byte, error) {
	data, err := json.Marshal(agg)
	if err != nil {
		return nil, fmt.Errorf("encode aggregate: %w", err)
	}
	return data, nil
}

// DecodeAggregate unmarshals a persisted document, fills missing fields with
// catalog defaults, and applies version-gated migrations. Unknown fields are
// ignored for forward compatibility.
func DecodeAggregate(data []byte) (*Aggregate, error) {
	agg := &Aggregate{}
	if err := json.Unmarshal(data, agg); err != nil {
		return nil, fmt.Errorf("decode aggregate: %w", err)
	}
	if agg.Version < currentSchemaVersion {
		migrateTicketSplit(agg)
	}
	normalizeAggregate(agg)
	return agg, nil
}

// migrateTicketSplit reinterprets v1 documents where a ticketed activity
// encoded base+stored tickets as a single remaining count. Heuristic: if
// stored tickets are positive and remaining minus tickets lands inside the
// structural range, that difference is the true base; otherwise the counter
// is left unchanged.
func migrateTicketSplit(agg *Aggregate) {
	catalog := DefaultCatalog()
	for _, c := range agg.Characters {
		for id, counter := range c.Activities {
			def := catalog.Activity(id)
			if def == nil || counter.TicketBonus <= 0 {
				continue
			}
			base := counter.Remaining - counter.TicketBonus
			if base >= 0 && base <= def.StructuralMax {
				counter.Remaining = base
			}
		}
	}
}

// normalizeAggregate fills anything a loaded document is missing with
// catalog defaults and stamps the current version.
func normalizeAggregate(agg *Aggregate) {
	catalog := DefaultCatalog()
	config := DefaultLedgerConfig()

	if agg.Settings == nil {
		agg.Settings = DefaultSettings()
	}
	for _, c := range agg.Characters {
		if c.Missions == nil {
			c.Missions = make(map[MissionID]int, len(catalog.Missions()))
		}
		for _, m := range catalog.Missions() {
			if _, ok := c.Missions[m.ID]; !ok {
				c.Missions[m.ID] = m.StructuralMax
			}
		}
		if c.Activities == nil {
			c.Activities = make(map[ActivityID]*ActivityCounter, len(catalog.Activities()))
		}
		for _, a := range catalog.Activities() {
			if _, ok := c.Activities[a.ID]; !ok {
				c.Activities[a.ID] = &ActivityCounter{Remaining: a.StructuralMax, BossRemaining: a.BossMax}
			}
		}
		// Drop counters for activities no longer in the catalog.
		for id := range c.Activities {
			if catalog.Activity(id) == nil {
				delete(c.Activities, id)
			}
		}
		if c.Energy.BaseCap <= 0 {
			c.Energy.BaseCap = config.EnergyBaseCap
		}
		if c.Energy.BonusCap <= 0 {
			c.Energy.BonusCap = config.EnergyBonusCap
		}
		if c.Stats.Completions == nil {
			c.Stats.Completions = make(map[TaskID]int)
		}
	}
	agg.Version = currentSchemaVersion
}

// DefaultSettings returns the build-time settings defaults.
func DefaultSettings() *AppSettings {
	return &AppSettings{
		GoldPerExpedition: 60000,
		GoldPerAbyss:      28000,
		GoldPerGoldcave:   12000,
		EnergyWarnBelow:   40,
		TicketWarnAbove:   20,
	}
}
