package tracker

import (
	"math"
	"time"
)

// LocalLedger implements the LedgerSystem interface over the in-memory
// aggregate, with the catalog and schedule set fixed at construction.
type LocalLedger struct {
	config  *LedgerConfig
	catalog *Catalog
}

// NewLocalLedger creates a ledger system with the given configuration.
func NewLocalLedger(config *LedgerConfig, catalog *Catalog) *LocalLedger {
	return &LocalLedger{config: config, catalog: catalog}
}

// NewCharacter builds a fresh character with full counters.
func (l *LocalLedger) NewCharacter(id, accountID, name string, now time.Time) *Character {
	c := &Character{
		ID:        id,
		AccountID: accountID,
		Name:      name,
		Energy: Energy{
			BaseCurrent: l.config.EnergyBaseCap,
			BaseCap:     l.config.EnergyBaseCap,
			BonusCap:    l.config.EnergyBonusCap,
		},
		Missions:   make(map[MissionID]int, len(l.catalog.Missions())),
		Activities: make(map[ActivityID]*ActivityCounter, len(l.catalog.Activities())),
		Stats: WeeklyStats{
			CycleStartSec: now.Unix(),
			Completions:   make(map[TaskID]int),
		},
		LastSyncedSec: now.Unix(),
	}
	for _, m := range l.catalog.Missions() {
		c.Missions[m.ID] = m.StructuralMax
	}
	for _, a := range l.catalog.Activities() {
		c.Activities[a.ID] = &ActivityCounter{
			Remaining:     a.StructuralMax,
			BossRemaining: a.BossMax,
		}
	}
	return c
}

// Refresh applies every refill/reset boundary crossed since the character's
// last sync. Steps run in catch-up order: energy ticks, daily boundaries,
// weekly boundaries, dispatch ticks, sync stamp, final clamp.
func (l *LocalLedger) Refresh(c *Character, settings *AppSettings, now time.Time) {
	prev := time.Unix(c.LastSyncedSec, 0).In(now.Location())
	if c.LastSyncedSec == 0 {
		// Never synced (legacy document): start the clock now.
		prev = now
	}

	// (1) Energy ticks.
	if ticks := l.config.EnergyTick.CountBoundaries(prev, now); ticks > 0 {
		c.Energy.BaseCurrent = min(c.Energy.BaseCurrent+ticks*l.config.EnergyPerTick, c.Energy.BaseCap)
	}

	// (2) Daily boundaries: flat reset for daily missions, additive restock
	// for the daily-granted activities. Restock rather than reset so missed
	// days compound, clamped at the structural max.
	if days := l.config.DailyReset.CountBoundaries(prev, now); days > 0 {
		for _, m := range l.catalog.Missions() {
			if m.Reset == ResetDaily {
				c.Missions[m.ID] = m.StructuralMax
			}
		}
		for _, a := range l.catalog.Activities() {
			if a.DailyGrant > 0 {
				counter := l.activityCounter(c, a.ID)
				counter.Remaining = min(counter.Remaining+days*a.DailyGrant, a.StructuralMax)
			}
		}
	}

	// (3) Weekly boundaries: flat reset of every weekly-scoped counter,
	// ticket bonuses zeroed, stats cycle restarted.
	if weeks := l.config.WeeklyReset.CountBoundaries(prev, now); weeks > 0 {
		for _, m := range l.catalog.Missions() {
			if m.Reset == ResetWeekly {
				c.Missions[m.ID] = m.StructuralMax
			}
		}
		for _, a := range l.catalog.Activities() {
			counter := l.activityCounter(c, a.ID)
			if !a.Restocked() {
				counter.Remaining = a.StructuralMax
			}
			counter.BossRemaining = a.BossMax
			counter.TicketBonus = 0
		}
		c.Stats = WeeklyStats{
			CycleStartSec: now.Unix(),
			Completions:   make(map[TaskID]int),
		}
	}

	// (4) Dispatch ticks.
	for _, a := range l.catalog.Activities() {
		if len(a.DispatchHours) == 0 {
			continue
		}
		sched := HourListSchedule{Hours: a.DispatchHours}
		if n := sched.CountBoundaries(prev, now); n > 0 {
			counter := l.activityCounter(c, a.ID)
			counter.Remaining = min(counter.Remaining+n*a.DispatchGrant, a.StructuralMax)
		}
	}

	// (5) Sync stamp.
	c.LastSyncedSec = now.Unix()

	// (6) Final clamp: catches cap reductions applied out of band.
	l.ClampToCaps(c, settings)
}

// ApplyTaskAction applies one of the three action kinds for a task.
func (l *LocalLedger) ApplyTaskAction(c *Character, settings *AppSettings, taskID TaskID, action TaskAction, amount int, now time.Time) error {
	task := l.catalog.Task(taskID)
	if task == nil {
		return ErrTaskNotFound
	}
	switch action {
	case ActionComplete:
		if amount < 1 {
			return ErrBadInput
		}
		return l.applyComplete(c, settings, task, amount)
	case ActionUseTicket:
		if amount < 1 {
			return ErrBadInput
		}
		return l.applyUseTicket(c, task, amount)
	case ActionSetCompleted:
		return l.applySetCompleted(c, task, amount)
	default:
		return ErrBadInput
	}
}

func (l *LocalLedger) applyComplete(c *Character, settings *AppSettings, task *TaskDefinition, amount int) error {
	if !task.AllowComplete {
		return ErrTaskActionNotAllowed
	}

	energyRequired := task.EnergyCost * amount
	if c.Energy.Total() < energyRequired {
		return ErrInsufficientEnergy
	}

	// Available completions: the stacked availability of the primary counter
	// joined with every secondary counter's raw value.
	available := math.MaxInt
	for i, target := range task.Targets {
		value := l.counterValue(c, target.Ref)
		if i == 0 && task.Ticket != nil {
			value += l.activityCounter(c, task.Ticket.Activity).TicketBonus
		}
		if units := value / max(target.Decrement, 1); units < available {
			available = units
		}
	}
	if amount > available {
		return ErrInsufficientAttempts
	}

	// All checks passed; mutate.
	primary := task.Targets[0]
	primaryDraw := amount * max(primary.Decrement, 1)
	if task.Ticket != nil && primary.Ref.Scope == ScopeActivity {
		counter := l.activityCounter(c, primary.Ref.Activity)
		if task.Ticket.ConsumeTicketFirst {
			drawStacked(&counter.TicketBonus, &counter.Remaining, primaryDraw)
		} else {
			drawStacked(&counter.Remaining, &counter.TicketBonus, primaryDraw)
		}
	} else {
		l.decrementCounter(c, primary.Ref, primaryDraw)
	}
	for _, target := range task.Targets[1:] {
		l.decrementCounter(c, target.Ref, amount*max(target.Decrement, 1))
	}

	drawStacked(&c.Energy.BaseCurrent, &c.Energy.BonusCurrent, energyRequired)

	if c.Stats.Completions == nil {
		c.Stats.Completions = make(map[TaskID]int)
	}
	c.Stats.Completions[task.ID] += amount
	c.Stats.GoldEarned += int64(amount) * task.Gold.Resolve(settings)
	return nil
}

func (l *LocalLedger) applyUseTicket(c *Character, task *TaskDefinition, amount int) error {
	if !task.AllowUseTicket || task.Ticket == nil {
		return ErrTaskActionNotAllowed
	}
	counter := l.activityCounter(c, task.Ticket.Activity)
	counter.TicketBonus = min(counter.TicketBonus+amount*task.Ticket.Increment, l.config.TicketCeiling)
	return nil
}

func (l *LocalLedger) applySetCompleted(c *Character, task *TaskDefinition, amount int) error {
	if !task.AllowSetCompleted || task.FixedTotal <= 0 || len(task.Targets) != 1 {
		return ErrTaskActionNotAllowed
	}
	done := min(max(amount, 0), task.FixedTotal)
	l.setCounter(c, task.Targets[0].Ref, task.FixedTotal-done)
	return nil
}

// SetRaidCounts overrides the raid entry and boss-kill counters.
func (l *LocalLedger) SetRaidCounts(c *Character, settings *AppSettings, remaining, bossRemaining int) error {
	if remaining < 0 || bossRemaining < 0 {
		return ErrPayloadInvalid
	}
	def := l.catalog.Activity(ActivityRaid)
	counter := l.activityCounter(c, ActivityRaid)
	counter.Remaining = min(remaining, effectiveActivityCap(settings, def))
	counter.BossRemaining = min(bossRemaining, def.BossMax)
	return nil
}

// SetEnergySegments overrides the base and bonus energy segments.
func (l *LocalLedger) SetEnergySegments(c *Character, base, bonus int) error {
	if base < 0 || bonus < 0 {
		return ErrPayloadInvalid
	}
	c.Energy.BaseCurrent = min(base, c.Energy.BaseCap)
	c.Energy.BonusCurrent = min(bonus, c.Energy.BonusCap)
	return nil
}

// SetArtifactStatus declares how many artifact stages are already done this
// cycle; the remaining counter is derived.
func (l *LocalLedger) SetArtifactStatus(c *Character, completed int) error {
	return l.applySetCompleted(c, l.catalog.Task("artifact"), completed)
}

// SetCorridorCompletion declares how many corridor floors are already cleared
// this cycle; the remaining counter is derived.
func (l *LocalLedger) SetCorridorCompletion(c *Character, completed int) error {
	return l.applySetCompleted(c, l.catalog.Task("corridor"), completed)
}

// SetWeeklyCompletions overrides per-task completion tallies.
func (l *LocalLedger) SetWeeklyCompletions(c *Character, completions map[TaskID]int) error {
	for id, count := range completions {
		if l.catalog.Task(id) == nil || count < 0 {
			return ErrPayloadInvalid
		}
	}
	if c.Stats.Completions == nil {
		c.Stats.Completions = make(map[TaskID]int)
	}
	for id, count := range completions {
		c.Stats.Completions[id] = count
	}
	return nil
}

// SetAodePlan replaces the character's planned-runs map.
func (l *LocalLedger) SetAodePlan(c *Character, plan map[TaskID]int) error {
	for id, count := range plan {
		if l.catalog.Task(id) == nil || count < 0 {
			return ErrPayloadInvalid
		}
	}
	c.AodePlan = cloneCounts(plan)
	return nil
}

// ResetWeeklyStats restarts the stats cycle at now.
func (l *LocalLedger) ResetWeeklyStats(c *Character, now time.Time) {
	c.Stats = WeeklyStats{
		CycleStartSec: now.Unix(),
		Completions:   make(map[TaskID]int),
	}
}

// ClampToCaps re-clamps every counter to its effective cap. Caps never raise
// a counter, only lower it.
func (l *LocalLedger) ClampToCaps(c *Character, settings *AppSettings) {
	if c.Energy.BaseCap <= 0 {
		c.Energy.BaseCap = l.config.EnergyBaseCap
	}
	if c.Energy.BonusCap <= 0 {
		c.Energy.BonusCap = l.config.EnergyBonusCap
	}
	c.Energy.BaseCurrent = min(max(c.Energy.BaseCurrent, 0), c.Energy.BaseCap)
	c.Energy.BonusCurrent = min(max(c.Energy.BonusCurrent, 0), c.Energy.BonusCap)

	for _, m := range l.catalog.Missions() {
		c.Missions[m.ID] = min(max(c.Missions[m.ID], 0), m.StructuralMax)
	}
	for _, a := range l.catalog.Activities() {
		counter := l.activityCounter(c, a.ID)
		limit := effectiveActivityCap(settings, l.catalog.Activity(a.ID))
		counter.Remaining = min(max(counter.Remaining, 0), limit)
		counter.BossRemaining = min(max(counter.BossRemaining, 0), a.BossMax)
		counter.TicketBonus = min(max(counter.TicketBonus, 0), l.config.TicketCeiling)
	}
}

// ScheduleInfo reports the next occurrence of each schedule.
func (l *LocalLedger) ScheduleInfo(now time.Time) *ScheduleInfo {
	info := &ScheduleInfo{
		NowSec:             now.Unix(),
		NextEnergyTickSec:  l.config.EnergyTick.Next(now).Unix(),
		NextDailyResetSec:  l.config.DailyReset.Next(now).Unix(),
		NextWeeklyResetSec: l.config.WeeklyReset.Next(now).Unix(),
		NextDispatchSec:    make(map[ActivityID]int64),
	}
	for _, a := range l.catalog.Activities() {
		if len(a.DispatchHours) > 0 {
			info.NextDispatchSec[a.ID] = HourListSchedule{Hours: a.DispatchHours}.Next(now).Unix()
		}
	}
	return info
}

// activityCounter returns the counter for an activity, creating it when a
// loaded document predates the activity.
func (l *LocalLedger) activityCounter(c *Character, id ActivityID) *ActivityCounter {
	if c.Activities == nil {
		c.Activities = make(map[ActivityID]*ActivityCounter)
	}
	counter, ok := c.Activities[id]
	if !ok {
		def := l.catalog.Activity(id)
		counter = &ActivityCounter{Remaining: def.StructuralMax, BossRemaining: def.BossMax}
		c.Activities[id] = counter
	}
	return counter
}

func (l *LocalLedger) counterValue(c *Character, ref CounterRef) int {
	switch ref.Scope {
	case ScopeMission:
		return c.Missions[ref.Mission]
	case ScopeActivity:
		return l.activityCounter(c, ref.Activity).Remaining
	case ScopeActivityBoss:
		return l.activityCounter(c, ref.Activity).BossRemaining
	}
	return 0
}

func (l *LocalLedger) setCounter(c *Character, ref CounterRef, value int) {
	switch ref.Scope {
	case ScopeMission:
		c.Missions[ref.Mission] = value
	case ScopeActivity:
		l.activityCounter(c, ref.Activity).Remaining = value
	case ScopeActivityBoss:
		l.activityCounter(c, ref.Activity).BossRemaining = value
	}
}

// decrementCounter subtracts n from the referenced counter, clamped at 0.
func (l *LocalLedger) decrementCounter(c *Character, ref CounterRef, n int) {
	l.setCounter(c, ref, max(l.counterValue(c, ref)-n, 0))
}

// drawStacked draws n units from first, spilling the remainder into second.
// Neither bucket goes negative.
func drawStacked(first, second *int, n int) {
	take := min(*first, n)
	*first -= take
	n -= take
	*second = max(*second-n, 0)
}
