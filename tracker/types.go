package tracker

import (
	"bytes"
	"encoding/json"
)

// Typed identifiers for the closed catalog. Counters are addressed through
// CounterRef so a scope/key mismatch cannot be constructed outside the
// catalog tables.
type (
	TaskID     string
	ActivityID string
	MissionID  string
)

// CounterScope identifies which counter group a CounterRef addresses.
type CounterScope uint8

const (
	ScopeMission CounterScope = iota + 1
	ScopeActivity
	ScopeActivityBoss
)

// CounterRef addresses a single counter on a character. Exactly one of
// Mission or Activity is set, selected by Scope.
type CounterRef struct {
	Scope    CounterScope
	Mission  MissionID
	Activity ActivityID
}

// Energy is the Aode energy pool, split into a naturally refilling base
// segment and a purchased bonus segment.
type Energy struct {
	BaseCurrent  int `json:"baseCurrent"`
	BonusCurrent int `json:"bonusCurrent"`
	BaseCap      int `json:"baseCap"`
	BonusCap     int `json:"bonusCap"`
}

// Total returns the combined energy available for spending.
func (e Energy) Total() int { return e.BaseCurrent + e.BonusCurrent }

// ActivityCounter holds the remaining attempts for one activity, its ticket
// bonus attempts, and the linked boss-kill counter where the activity has one.
type ActivityCounter struct {
	Remaining     int `json:"remaining"`
	TicketBonus   int `json:"ticketBonus"`
	BossRemaining int `json:"bossRemaining"`
}

// WeeklyStats accumulates per-cycle earnings and completion tallies. It is
// reset to a fresh cycle on every weekly boundary.
type WeeklyStats struct {
	CycleStartSec int64          `json:"cycleStartSec"`
	GoldEarned    int64          `json:"goldEarned"`
	Completions   map[TaskID]int `json:"completions"`
}

// Character is the per-character resource ledger state.
type Character struct {
	ID        string `json:"id"`
	AccountID string `json:"accountId"`
	Name      string `json:"name"`

	Energy     Energy                          `json:"energy"`
	Missions   map[MissionID]int               `json:"missions"`
	Activities map[ActivityID]*ActivityCounter `json:"activities"`
	Stats      WeeklyStats                     `json:"stats"`
	AodePlan   map[TaskID]int                  `json:"aodePlan,omitempty"`

	// LastSyncedSec is the last instant the catch-up ran for this character.
	LastSyncedSec int64 `json:"lastSyncedSec"`
}

// Account groups characters.
type Account struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// AppSettings holds the user-configurable values. Override caps are nil when
// the structural default applies.
type AppSettings struct {
	GoldPerExpedition int64 `json:"goldPerExpedition"`
	GoldPerAbyss      int64 `json:"goldPerAbyss"`
	GoldPerGoldcave   int64 `json:"goldPerGoldcave"`

	ExpeditionCap *int `json:"expeditionCap,omitempty"`
	AwakeningCap  *int `json:"awakeningCap,omitempty"`
	RaidCap       *int `json:"raidCap,omitempty"`
	SimulacrumCap *int `json:"simulacrumCap,omitempty"`
	HuntCap       *int `json:"huntCap,omitempty"`

	EnergyWarnBelow int `json:"energyWarnBelow"`
	TicketWarnAbove int `json:"ticketWarnAbove"`
}

// OperationLogEntry is one undo-capable history record. Entries are immutable
// after creation.
type OperationLogEntry struct {
	ID           string         `json:"id"`
	TimestampSec int64          `json:"timestampSec"`
	Label        string         `json:"label"`
	CharacterID  string         `json:"characterId,omitempty"`
	Before       *StateSnapshot `json:"before"`
}

// StateSnapshot is a deep copy of the mutable top-level state, taken before a
// mutation runs. Undo restores these fields wholesale.
type StateSnapshot struct {
	SelectedAccountID   string       `json:"selectedAccountId"`
	SelectedCharacterID string       `json:"selectedCharacterId"`
	Settings            *AppSettings `json:"settings"`
	Accounts            []*Account   `json:"accounts"`
	Characters          []*Character `json:"characters"`
}

// Aggregate is the whole persisted document.
type Aggregate struct {
	Version             int                  `json:"version"`
	SelectedAccountID   string               `json:"selectedAccountId"`
	SelectedCharacterID string               `json:"selectedCharacterId"`
	Settings            *AppSettings         `json:"settings"`
	Accounts            []*Account           `json:"accounts"`
	Characters          []*Character         `json:"characters"`
	History             []*OperationLogEntry `json:"history"`
}

// Character returns the character with the given id, or nil.
func (a *Aggregate) Character(id string) *Character {
	for _, c := range a.Characters {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// Account returns the account with the given id, or nil.
func (a *Aggregate) Account(id string) *Account {
	for _, acc := range a.Accounts {
		if acc.ID == id {
			return acc
		}
	}
	return nil
}

func cloneIntPtr(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneCounts[K comparable](m map[K]int) map[K]int {
	if m == nil {
		return nil
	}
	out := make(map[K]int, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Clone returns a deep copy of the settings.
func (s *AppSettings) Clone() *AppSettings {
	if s == nil {
		return nil
	}
	out := *s
	out.ExpeditionCap = cloneIntPtr(s.ExpeditionCap)
	out.AwakeningCap = cloneIntPtr(s.AwakeningCap)
	out.RaidCap = cloneIntPtr(s.RaidCap)
	out.SimulacrumCap = cloneIntPtr(s.SimulacrumCap)
	out.HuntCap = cloneIntPtr(s.HuntCap)
	return &out
}

// Clone returns a deep copy of the character.
func (c *Character) Clone() *Character {
	out := *c
	out.Missions = cloneCounts(c.Missions)
	out.Activities = make(map[ActivityID]*ActivityCounter, len(c.Activities))
	for id, counter := range c.Activities {
		cp := *counter
		out.Activities[id] = &cp
	}
	out.Stats.Completions = cloneCounts(c.Stats.Completions)
	out.AodePlan = cloneCounts(c.AodePlan)
	return &out
}

func cloneAccounts(accounts []*Account) []*Account {
	out := make([]*Account, len(accounts))
	for i, acc := range accounts {
		cp := *acc
		out[i] = &cp
	}
	return out
}

func cloneCharacters(characters []*Character) []*Character {
	out := make([]*Character, len(characters))
	for i, c := range characters {
		out[i] = c.Clone()
	}
	return out
}

// Snapshot deep-copies the mutable top-level state. History is excluded:
// entries are immutable and never part of their own snapshots.
func (a *Aggregate) Snapshot() *StateSnapshot {
	return &StateSnapshot{
		SelectedAccountID:   a.SelectedAccountID,
		SelectedCharacterID: a.SelectedCharacterID,
		Settings:            a.Settings.Clone(),
		Accounts:            cloneAccounts(a.Accounts),
		Characters:          cloneCharacters(a.Characters),
	}
}

// Clone returns a deep copy of the aggregate. History entries are shared
// (immutable after creation); the slice header is copied so appends and
// truncations do not alias.
func (a *Aggregate) Clone() *Aggregate {
	out := *a
	out.Settings = a.Settings.Clone()
	out.Accounts = cloneAccounts(a.Accounts)
	out.Characters = cloneCharacters(a.Characters)
	out.History = make([]*OperationLogEntry, len(a.History))
	copy(out.History, a.History)
	return &out
}

// Equal reports whether two snapshots are byte-for-byte identical under
// canonical JSON encoding. Map keys are sorted by encoding/json, so the
// comparison is deterministic.
func (s *StateSnapshot) Equal(other *StateSnapshot) bool {
	a, err1 := json.Marshal(s)
	b, err2 := json.Marshal(other)
	if err1 != nil || err2 != nil {
		return false
	}
	return bytes.Equal(a, b)
}
