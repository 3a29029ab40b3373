package tracker

import "time"

// TaskAction is the kind of mutation applied to a task's counters. The three
// kinds are mutually exclusive per request.
type TaskAction string

const (
	// ActionComplete records finished runs: draws energy, decrements the
	// task's counters, tallies completions and gold.
	ActionComplete TaskAction = "complete"
	// ActionUseTicket stacks purchased bonus attempts onto the task's ticket
	// counter without touching energy or tallies.
	ActionUseTicket TaskAction = "useTicket"
	// ActionSetCompleted declares how many runs were already done this
	// period; the remaining counter is derived from the fixed total.
	ActionSetCompleted TaskAction = "setCompleted"
)

// ScheduleInfo reports the upcoming refill/reset instants for UI display.
type ScheduleInfo struct {
	NowSec             int64                `json:"nowSec"`
	NextEnergyTickSec  int64                `json:"nextEnergyTickSec"`
	NextDailyResetSec  int64                `json:"nextDailyResetSec"`
	NextWeeklyResetSec int64                `json:"nextWeeklyResetSec"`
	NextDispatchSec    map[ActivityID]int64 `json:"nextDispatchSec"`
}

// The LedgerSystem owns the per-character resource ledger: elapsed-time
// catch-up against the fixed schedule set, task completion with ticket
// stacking, and the targeted field overrides.
//
// All methods mutate the character they are handed; callers pass a working
// copy and publish it only on success (the transaction log enforces this).
// Methods validate every precondition before the first mutation, so a
// returned error means the character is untouched.
type LedgerSystem interface {
	// Refresh applies every refill/reset boundary crossed since the
	// character's last sync, in catch-up order, then re-clamps all counters
	// to their effective caps. Idempotent for a fixed now.
	Refresh(c *Character, settings *AppSettings, now time.Time)

	// ApplyTaskAction applies one of the three action kinds for a task.
	ApplyTaskAction(c *Character, settings *AppSettings, taskID TaskID, action TaskAction, amount int, now time.Time) error

	SetRaidCounts(c *Character, settings *AppSettings, remaining, bossRemaining int) error
	SetEnergySegments(c *Character, base, bonus int) error
	SetArtifactStatus(c *Character, completed int) error
	SetCorridorCompletion(c *Character, completed int) error
	SetWeeklyCompletions(c *Character, completions map[TaskID]int) error
	SetAodePlan(c *Character, plan map[TaskID]int) error
	ResetWeeklyStats(c *Character, now time.Time)

	// ClampToCaps re-clamps every counter to its effective cap. Run after
	// any settings change that may have lowered an override cap.
	ClampToCaps(c *Character, settings *AppSettings)

	// NewCharacter builds a fresh character with full counters.
	NewCharacter(id, accountID, name string, now time.Time) *Character

	// ScheduleInfo reports the next occurrence of each schedule.
	ScheduleInfo(now time.Time) *ScheduleInfo
}
