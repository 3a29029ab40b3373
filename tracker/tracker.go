package tracker

// Tracker combines the resource ledger, the static catalog, and the
// transaction log behind a method-per-operation contract. Every operation is
// a synchronous, bounded, in-memory transform: it refreshes all characters
// against elapsed wall-clock time, runs inside the transaction log, and
// returns the full aggregate (or a coded error with no partial effect).
//
// The model is single-writer: operations execute to completion before the
// next is accepted, and the aggregate is exclusively owned by the
// transaction log between snapshot and commit.
type Tracker interface {
	// GetState refreshes every character and returns the aggregate.
	GetState() (*Aggregate, error)

	// ApplyTaskAction applies a complete/useTicket/setCompleted action for a
	// catalog task on a character.
	ApplyTaskAction(characterID string, taskID TaskID, action TaskAction, amount int) (*Aggregate, error)

	// Targeted field-level overrides. All pass through cap resolution and
	// the transaction log.
	UpdateRaidCounts(characterID string, remaining, bossRemaining int) (*Aggregate, error)
	UpdateEnergySegments(characterID string, base, bonus int) (*Aggregate, error)
	UpdateArtifactStatus(characterID string, completed int) (*Aggregate, error)
	ApplyCorridorCompletion(characterID string, completed int) (*Aggregate, error)
	ResetWeeklyStats(characterID string) (*Aggregate, error)
	UpdateWeeklyCompletions(characterID string, completions map[TaskID]int) (*Aggregate, error)
	UpdateAodePlan(characterID string, plan map[TaskID]int) (*Aggregate, error)

	// UpdateSettings replaces the app settings and re-clamps every counter
	// affected by an override cap change.
	UpdateSettings(settings *AppSettings) (*Aggregate, error)

	// UndoOperations rewinds up to steps history entries.
	UndoOperations(steps int) (*Aggregate, error)
	// ClearHistory drops all history entries.
	ClearHistory() (*Aggregate, error)

	// Roster operations. The system keeps at least one account, and every
	// account keeps at least one character.
	AddAccount(name, characterName string) (*Aggregate, error)
	RenameAccount(accountID, name string) (*Aggregate, error)
	DeleteAccount(accountID string) (*Aggregate, error)
	AddCharacter(accountID, name string) (*Aggregate, error)
	RenameCharacter(characterID, name string) (*Aggregate, error)
	DeleteCharacter(characterID string) (*Aggregate, error)
	SelectCharacter(characterID string) (*Aggregate, error)

	// ScheduleInfo reports upcoming refill/reset instants.
	ScheduleInfo() *ScheduleInfo

	GetLedgerSystem() LedgerSystem
	GetCatalog() *Catalog
}
