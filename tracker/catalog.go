package tracker

import "time"

// Activity ids. The set is closed; counters for anything else do not exist.
const (
	ActivityExpedition ActivityID = "expedition"
	ActivityAwakening  ActivityID = "awakening"
	ActivityRaid       ActivityID = "raid"
	ActivitySimulacrum ActivityID = "simulacrum"
	ActivityHunt       ActivityID = "hunt"
	ActivityCorridor   ActivityID = "corridor"
	ActivityArtifact   ActivityID = "artifact"
	ActivityAbyss      ActivityID = "abyss"
	ActivityGoldcave   ActivityID = "goldcave"
	ActivityDispatch   ActivityID = "dispatch"
	ActivityRift       ActivityID = "rift"
	ActivityTrial      ActivityID = "trial"
	ActivityGuildBoss  ActivityID = "guild_boss"
	ActivityBounty     ActivityID = "bounty"
	ActivityChasm      ActivityID = "chasm"
	ActivityNightmare  ActivityID = "nightmare"
	ActivityForgery    ActivityID = "forgery"
	ActivityLeyline    ActivityID = "leyline"
	ActivityEcho       ActivityID = "echo"
	ActivityWarrant    ActivityID = "warrant"
)

// Mission ids.
const (
	MissionDaily  MissionID = "daily_quests"
	MissionWeekly MissionID = "weekly_quests"
	MissionGuild  MissionID = "guild_donation"
	MissionEvent  MissionID = "event_pass"
)

// ResetScope selects which boundary resets a mission counter.
type ResetScope uint8

const (
	ResetDaily ResetScope = iota + 1
	ResetWeekly
)

// MissionDef is a static mission counter definition.
type MissionDef struct {
	ID            MissionID
	StructuralMax int
	Reset         ResetScope
}

// ActivityDef is a static activity counter definition. DailyGrant and
// DispatchHours describe additive restocking; activities with neither are
// flat-reset to StructuralMax on the weekly boundary.
type ActivityDef struct {
	ID            ActivityID
	StructuralMax int
	BossMax       int // 0: no linked boss-kill counter
	DailyGrant    int // additive restock per daily boundary
	DispatchHours []int
	DispatchGrant int
	Overridable   bool // user cap override slot exists in settings
}

// Restocked reports whether the activity refills additively instead of being
// flat-reset each week.
func (d *ActivityDef) Restocked() bool {
	return d.DailyGrant > 0 || len(d.DispatchHours) > 0
}

// SettingRef selects a gold-per-run settings field for tasks whose reward is
// user-configurable.
type SettingRef uint8

const (
	SettingNone SettingRef = iota
	SettingGoldExpedition
	SettingGoldAbyss
	SettingGoldGoldcave
)

// GoldSource is either a fixed per-completion value or a settings reference.
type GoldSource struct {
	Fixed   int64
	Setting SettingRef
}

// Resolve returns the gold granted per completion under the given settings.
func (g GoldSource) Resolve(settings *AppSettings) int64 {
	switch g.Setting {
	case SettingGoldExpedition:
		return settings.GoldPerExpedition
	case SettingGoldAbyss:
		return settings.GoldPerAbyss
	case SettingGoldGoldcave:
		return settings.GoldPerGoldcave
	default:
		return g.Fixed
	}
}

// CounterTarget is one counter a task decrements per completion.
type CounterTarget struct {
	Ref       CounterRef
	Decrement int
}

// TicketTarget describes a task's bonus-attempt counter and the draw order
// between it and the base counter.
type TicketTarget struct {
	Activity           ActivityID
	ConsumeTicketFirst bool
	Increment          int // bonus attempts granted per ticket
}

// TaskDefinition is a static catalog entry. The first target is the primary
// counter; any further targets are secondary joint constraints.
type TaskDefinition struct {
	ID         TaskID
	Category   string
	EnergyCost int
	Targets    []CounterTarget
	Ticket     *TicketTarget
	FixedTotal int // >0: "declare how many already done" task
	Gold       GoldSource

	AllowComplete     bool
	AllowUseTicket    bool
	AllowSetCompleted bool
}

// LedgerConfig carries the energy pool shape and the reset schedules. Fixed
// at build time alongside the catalog.
type LedgerConfig struct {
	EnergyBaseCap  int
	EnergyBonusCap int
	EnergyPerTick  int
	EnergyTick     IntervalSchedule
	DailyReset     DailySchedule
	WeeklyReset    WeeklySchedule
	TicketCeiling  int
}

// DefaultLedgerConfig returns the game's fixed schedule set: hourly energy
// ticks, daily reset at 05:00, weekly reset Wednesday 05:00.
func DefaultLedgerConfig() *LedgerConfig {
	return &LedgerConfig{
		EnergyBaseCap:  240,
		EnergyBonusCap: 480,
		EnergyPerTick:  8,
		EnergyTick:     IntervalSchedule{Every: time.Hour},
		DailyReset:     DailySchedule{Hour: 5},
		WeeklyReset:    WeeklySchedule{Weekday: time.Wednesday, Hour: 5},
		TicketCeiling:  999,
	}
}

var missionDefs = []MissionDef{
	{ID: MissionDaily, StructuralMax: 4, Reset: ResetDaily},
	{ID: MissionWeekly, StructuralMax: 3, Reset: ResetWeekly},
	{ID: MissionGuild, StructuralMax: 3, Reset: ResetWeekly},
	{ID: MissionEvent, StructuralMax: 1, Reset: ResetWeekly},
}

var activityDefs = []ActivityDef{
	{ID: ActivityExpedition, StructuralMax: 3, BossMax: 5, Overridable: true},
	{ID: ActivityAwakening, StructuralMax: 6, Overridable: true},
	{ID: ActivityRaid, StructuralMax: 3, BossMax: 3, Overridable: true},
	{ID: ActivitySimulacrum, StructuralMax: 5, Overridable: true},
	{ID: ActivityHunt, StructuralMax: 10, Overridable: true},
	{ID: ActivityCorridor, StructuralMax: 12},
	{ID: ActivityArtifact, StructuralMax: 7},
	{ID: ActivityAbyss, StructuralMax: 8, DailyGrant: 2},
	{ID: ActivityGoldcave, StructuralMax: 4, DailyGrant: 1},
	{ID: ActivityDispatch, StructuralMax: 6, DispatchHours: []int{5, 13, 21}, DispatchGrant: 1},
	{ID: ActivityRift, StructuralMax: 4, DispatchHours: []int{11, 23}, DispatchGrant: 1},
	{ID: ActivityTrial, StructuralMax: 5},
	{ID: ActivityGuildBoss, StructuralMax: 2},
	{ID: ActivityBounty, StructuralMax: 6},
	{ID: ActivityChasm, StructuralMax: 3},
	{ID: ActivityNightmare, StructuralMax: 1},
	{ID: ActivityForgery, StructuralMax: 4},
	{ID: ActivityLeyline, StructuralMax: 6},
	{ID: ActivityEcho, StructuralMax: 5},
	{ID: ActivityWarrant, StructuralMax: 3},
}

func activityTarget(id ActivityID) CounterTarget {
	return CounterTarget{Ref: CounterRef{Scope: ScopeActivity, Activity: id}, Decrement: 1}
}

func bossTarget(id ActivityID) CounterTarget {
	return CounterTarget{Ref: CounterRef{Scope: ScopeActivityBoss, Activity: id}, Decrement: 1}
}

func missionTarget(id MissionID) CounterTarget {
	return CounterTarget{Ref: CounterRef{Scope: ScopeMission, Mission: id}, Decrement: 1}
}

func ticket(id ActivityID, ticketFirst bool) *TicketTarget {
	return &TicketTarget{Activity: id, ConsumeTicketFirst: ticketFirst, Increment: 1}
}

var taskDefs = []TaskDefinition{
	{
		ID: "expedition", Category: "boss", EnergyCost: 80,
		Targets:       []CounterTarget{activityTarget(ActivityExpedition), bossTarget(ActivityExpedition)},
		Ticket:        ticket(ActivityExpedition, false),
		Gold:          GoldSource{Setting: SettingGoldExpedition},
		AllowComplete: true, AllowUseTicket: true,
	},
	{
		ID: "awakening", Category: "boss", EnergyCost: 60,
		Targets:       []CounterTarget{activityTarget(ActivityAwakening)},
		Ticket:        ticket(ActivityAwakening, true),
		Gold:          GoldSource{Fixed: 20000},
		AllowComplete: true, AllowUseTicket: true,
	},
	{
		ID: "raid", Category: "boss",
		Targets:       []CounterTarget{activityTarget(ActivityRaid), bossTarget(ActivityRaid)},
		Gold:          GoldSource{Fixed: 15000},
		AllowComplete: true,
	},
	{
		ID: "simulacrum", Category: "dungeon", EnergyCost: 40,
		Targets:       []CounterTarget{activityTarget(ActivitySimulacrum)},
		Ticket:        ticket(ActivitySimulacrum, false),
		Gold:          GoldSource{Fixed: 9000},
		AllowComplete: true, AllowUseTicket: true,
	},
	{
		ID: "hunt", Category: "dungeon", EnergyCost: 30,
		Targets:       []CounterTarget{activityTarget(ActivityHunt)},
		Gold:          GoldSource{Fixed: 6000},
		AllowComplete: true,
	},
	{
		ID: "corridor", Category: "progress",
		Targets:           []CounterTarget{activityTarget(ActivityCorridor)},
		FixedTotal:        12,
		AllowSetCompleted: true,
	},
	{
		ID: "artifact", Category: "progress",
		Targets:           []CounterTarget{activityTarget(ActivityArtifact)},
		FixedTotal:        7,
		AllowSetCompleted: true,
	},
	{
		ID: "abyss", Category: "farm", EnergyCost: 20,
		Targets:       []CounterTarget{activityTarget(ActivityAbyss)},
		Gold:          GoldSource{Setting: SettingGoldAbyss},
		AllowComplete: true,
	},
	{
		ID: "goldcave", Category: "farm", EnergyCost: 10,
		Targets:       []CounterTarget{activityTarget(ActivityGoldcave)},
		Gold:          GoldSource{Setting: SettingGoldGoldcave},
		AllowComplete: true,
	},
	{
		ID: "dispatch", Category: "dispatch",
		Targets:       []CounterTarget{activityTarget(ActivityDispatch)},
		AllowComplete: true,
	},
	{
		ID: "rift", Category: "dispatch",
		Targets:       []CounterTarget{activityTarget(ActivityRift)},
		AllowComplete: true,
	},
	{
		ID: "trial", Category: "dungeon", EnergyCost: 25,
		Targets:       []CounterTarget{activityTarget(ActivityTrial)},
		Ticket:        ticket(ActivityTrial, false),
		Gold:          GoldSource{Fixed: 5000},
		AllowComplete: true, AllowUseTicket: true,
	},
	{
		ID: "guild_boss", Category: "guild",
		Targets:       []CounterTarget{activityTarget(ActivityGuildBoss)},
		Gold:          GoldSource{Fixed: 8000},
		AllowComplete: true,
	},
	{
		ID: "bounty", Category: "commission", EnergyCost: 15,
		Targets:       []CounterTarget{activityTarget(ActivityBounty)},
		Gold:          GoldSource{Fixed: 3000},
		AllowComplete: true,
	},
	{
		ID: "chasm", Category: "dungeon", EnergyCost: 30,
		Targets:       []CounterTarget{activityTarget(ActivityChasm)},
		Ticket:        ticket(ActivityChasm, true),
		Gold:          GoldSource{Fixed: 7000},
		AllowComplete: true, AllowUseTicket: true,
	},
	{
		ID: "nightmare", Category: "boss", EnergyCost: 100,
		Targets:       []CounterTarget{activityTarget(ActivityNightmare)},
		Gold:          GoldSource{Fixed: 30000},
		AllowComplete: true,
	},
	{
		ID: "forgery", Category: "farm", EnergyCost: 20,
		Targets:       []CounterTarget{activityTarget(ActivityForgery)},
		Gold:          GoldSource{Fixed: 4000},
		AllowComplete: true,
	},
	{
		ID: "leyline", Category: "farm", EnergyCost: 20,
		Targets:       []CounterTarget{activityTarget(ActivityLeyline)},
		Gold:          GoldSource{Fixed: 4000},
		AllowComplete: true,
	},
	{
		ID: "echo", Category: "farm", EnergyCost: 15,
		Targets:       []CounterTarget{activityTarget(ActivityEcho)},
		Gold:          GoldSource{Fixed: 2500},
		AllowComplete: true,
	},
	{
		ID: "warrant", Category: "commission", EnergyCost: 10,
		Targets:       []CounterTarget{activityTarget(ActivityWarrant)},
		Gold:          GoldSource{Fixed: 2000},
		AllowComplete: true,
	},
	{
		ID: "daily_quests", Category: "mission",
		Targets:       []CounterTarget{missionTarget(MissionDaily)},
		AllowComplete: true,
	},
	{
		ID: "weekly_quests", Category: "mission",
		Targets:       []CounterTarget{missionTarget(MissionWeekly)},
		AllowComplete: true,
	},
	{
		ID: "guild_donation", Category: "mission",
		Targets:       []CounterTarget{missionTarget(MissionGuild)},
		AllowComplete: true,
	},
	{
		ID: "event_pass", Category: "mission",
		Targets:       []CounterTarget{missionTarget(MissionEvent)},
		AllowComplete: true,
	},
}

// Catalog is the immutable task/activity definition table. Built once at
// package init; never mutated at runtime.
type Catalog struct {
	missions   map[MissionID]*MissionDef
	activities map[ActivityID]*ActivityDef
	tasks      map[TaskID]*TaskDefinition
}

// DefaultCatalog returns the built-in catalog.
func DefaultCatalog() *Catalog { return defaultCatalog }

var defaultCatalog = buildCatalog()

func buildCatalog() *Catalog {
	c := &Catalog{
		missions:   make(map[MissionID]*MissionDef, len(missionDefs)),
		activities: make(map[ActivityID]*ActivityDef, len(activityDefs)),
		tasks:      make(map[TaskID]*TaskDefinition, len(taskDefs)),
	}
	for i := range missionDefs {
		c.missions[missionDefs[i].ID] = &missionDefs[i]
	}
	for i := range activityDefs {
		c.activities[activityDefs[i].ID] = &activityDefs[i]
	}
	for i := range taskDefs {
		c.tasks[taskDefs[i].ID] = &taskDefs[i]
	}
	return c
}

// Task returns the task definition, or nil for an unknown id.
func (c *Catalog) Task(id TaskID) *TaskDefinition { return c.tasks[id] }

// Activity returns the activity definition, or nil for an unknown id.
func (c *Catalog) Activity(id ActivityID) *ActivityDef { return c.activities[id] }

// Mission returns the mission definition, or nil for an unknown id.
func (c *Catalog) Mission(id MissionID) *MissionDef { return c.missions[id] }

// Missions returns the static mission definitions.
func (c *Catalog) Missions() []MissionDef { return missionDefs }

// Activities returns the static activity definitions.
func (c *Catalog) Activities() []ActivityDef { return activityDefs }

// Tasks returns the static task definitions.
func (c *Catalog) Tasks() []TaskDefinition { return taskDefs }
