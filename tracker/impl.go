package tracker

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// trackerImpl implements the Tracker interface.
type trackerImpl struct {
	logger  *zap.Logger
	store   Storage
	config  *LedgerConfig
	catalog *Catalog
	ledger  LedgerSystem
	log     *MutationLog
	clock   func() time.Time

	current *Aggregate
}

// Option customizes Init.
type Option func(*trackerImpl)

// WithClock injects the time source. Used by tests.
func WithClock(clock func() time.Time) Option {
	return func(t *trackerImpl) { t.clock = clock }
}

// WithLedgerConfig overrides the built-in schedule set and energy shape.
func WithLedgerConfig(config *LedgerConfig) Option {
	return func(t *trackerImpl) { t.config = config }
}

// Init loads (or creates) the aggregate through the given storage port and
// returns a ready Tracker.
func Init(store Storage, logger *zap.Logger, opts ...Option) (Tracker, error) {
	t := &trackerImpl{
		logger:  logger,
		store:   store,
		config:  DefaultLedgerConfig(),
		catalog: DefaultCatalog(),
		clock:   time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	t.ledger = NewLocalLedger(t.config, t.catalog)
	t.log = NewMutationLog(store, logger, t.clock)

	agg, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("load aggregate: %w", err)
	}
	now := t.clock()
	if agg == nil {
		agg = t.newAggregate(now)
		if err := store.Save(agg); err != nil {
			return nil, fmt.Errorf("save initial aggregate: %w", err)
		}
		logger.Info("created fresh aggregate",
			zap.String("accountId", agg.SelectedAccountID),
			zap.String("characterId", agg.SelectedCharacterID))
	}
	t.current = agg
	if err := t.refreshAll(now); err != nil {
		return nil, err
	}
	return t, nil
}

// newAggregate builds the minimal valid state: one account, one character.
func (t *trackerImpl) newAggregate(now time.Time) *Aggregate {
	account := &Account{ID: uuid.NewString(), Name: "默认账号"}
	character := t.ledger.NewCharacter(uuid.NewString(), account.ID, "角色1", now)
	return &Aggregate{
		Version:             currentSchemaVersion,
		SelectedAccountID:   account.ID,
		SelectedCharacterID: character.ID,
		Settings:            DefaultSettings(),
		Accounts:            []*Account{account},
		Characters:          []*Character{character},
	}
}

// refreshAll runs the passive catch-up on every character and persists if
// anything moved. No history entry: pure time elapse is not undoable.
func (t *trackerImpl) refreshAll(now time.Time) error {
	before := t.current.Snapshot()
	working := t.current.Clone()
	for _, c := range working.Characters {
		t.ledger.Refresh(c, working.Settings, now)
	}
	if before.Equal(working.Snapshot()) {
		return nil
	}
	if err := t.store.Save(working); err != nil {
		return fmt.Errorf("persist refresh: %w", err)
	}
	t.current = working
	return nil
}

// mutate is the shared operation body: refresh, then commit through the
// transaction log.
func (t *trackerImpl) mutate(label, characterID string, fn func(a *Aggregate, now time.Time) error) (*Aggregate, error) {
	now := t.clock()
	if err := t.refreshAll(now); err != nil {
		return nil, err
	}
	agg, err := t.log.Commit(t.current, label, characterID, func(a *Aggregate) error {
		return fn(a, now)
	})
	if err != nil {
		return nil, err
	}
	t.current = agg
	t.logger.Debug("operation committed", zap.String("label", label))
	return t.current, nil
}

// mutateCharacter wraps mutate with character lookup and an in-transaction
// refresh (a no-op for the same now, but keeps operation bodies total).
func (t *trackerImpl) mutateCharacter(label, characterID string, fn func(c *Character, a *Aggregate, now time.Time) error) (*Aggregate, error) {
	return t.mutate(label, characterID, func(a *Aggregate, now time.Time) error {
		c := a.Character(characterID)
		if c == nil {
			return ErrCharacterNotFound
		}
		t.ledger.Refresh(c, a.Settings, now)
		return fn(c, a, now)
	})
}

func (t *trackerImpl) GetState() (*Aggregate, error) {
	if err := t.refreshAll(t.clock()); err != nil {
		return nil, err
	}
	return t.current, nil
}

func (t *trackerImpl) ApplyTaskAction(characterID string, taskID TaskID, action TaskAction, amount int) (*Aggregate, error) {
	return t.mutateCharacter("apply task action", characterID, func(c *Character, a *Aggregate, now time.Time) error {
		return t.ledger.ApplyTaskAction(c, a.Settings, taskID, action, amount, now)
	})
}

func (t *trackerImpl) UpdateRaidCounts(characterID string, remaining, bossRemaining int) (*Aggregate, error) {
	return t.mutateCharacter("update raid counts", characterID, func(c *Character, a *Aggregate, now time.Time) error {
		return t.ledger.SetRaidCounts(c, a.Settings, remaining, bossRemaining)
	})
}

func (t *trackerImpl) UpdateEnergySegments(characterID string, base, bonus int) (*Aggregate, error) {
	return t.mutateCharacter("update energy segments", characterID, func(c *Character, a *Aggregate, now time.Time) error {
		return t.ledger.SetEnergySegments(c, base, bonus)
	})
}

func (t *trackerImpl) UpdateArtifactStatus(characterID string, completed int) (*Aggregate, error) {
	return t.mutateCharacter("update artifact status", characterID, func(c *Character, a *Aggregate, now time.Time) error {
		return t.ledger.SetArtifactStatus(c, completed)
	})
}

func (t *trackerImpl) ApplyCorridorCompletion(characterID string, completed int) (*Aggregate, error) {
	return t.mutateCharacter("apply corridor completion", characterID, func(c *Character, a *Aggregate, now time.Time) error {
		return t.ledger.SetCorridorCompletion(c, completed)
	})
}

func (t *trackerImpl) ResetWeeklyStats(characterID string) (*Aggregate, error) {
	return t.mutateCharacter("reset weekly stats", characterID, func(c *Character, a *Aggregate, now time.Time) error {
		t.ledger.ResetWeeklyStats(c, now)
		return nil
	})
}

func (t *trackerImpl) UpdateWeeklyCompletions(characterID string, completions map[TaskID]int) (*Aggregate, error) {
	return t.mutateCharacter("update weekly completions", characterID, func(c *Character, a *Aggregate, now time.Time) error {
		return t.ledger.SetWeeklyCompletions(c, completions)
	})
}

func (t *trackerImpl) UpdateAodePlan(characterID string, plan map[TaskID]int) (*Aggregate, error) {
	return t.mutateCharacter("update aode plan", characterID, func(c *Character, a *Aggregate, now time.Time) error {
		return t.ledger.SetAodePlan(c, plan)
	})
}

func (t *trackerImpl) UpdateSettings(settings *AppSettings) (*Aggregate, error) {
	return t.mutate("update settings", "", func(a *Aggregate, now time.Time) error {
		if settings == nil {
			return ErrPayloadInvalid
		}
		if settings.GoldPerExpedition < 0 || settings.GoldPerAbyss < 0 || settings.GoldPerGoldcave < 0 ||
			settings.EnergyWarnBelow < 0 || settings.TicketWarnAbove < 0 {
			return ErrPayloadInvalid
		}
		next := settings.Clone()
		normalizeOverrides(next)
		a.Settings = next
		// Override caps may have dropped below current counters.
		for _, c := range a.Characters {
			t.ledger.ClampToCaps(c, a.Settings)
		}
		return nil
	})
}

// normalizeOverrides maps non-positive override caps to "unset".
func normalizeOverrides(s *AppSettings) {
	for _, slot := range []**int{&s.ExpeditionCap, &s.AwakeningCap, &s.RaidCap, &s.SimulacrumCap, &s.HuntCap} {
		if *slot != nil && **slot < 1 {
			*slot = nil
		}
	}
}

func (t *trackerImpl) UndoOperations(steps int) (*Aggregate, error) {
	now := t.clock()
	if err := t.refreshAll(now); err != nil {
		return nil, err
	}
	agg, err := t.log.Undo(t.current, steps, func(a *Aggregate, at time.Time) {
		for _, c := range a.Characters {
			t.ledger.Refresh(c, a.Settings, at)
		}
	})
	if err != nil {
		return nil, err
	}
	t.current = agg
	return t.current, nil
}

func (t *trackerImpl) ClearHistory() (*Aggregate, error) {
	agg, err := t.log.ClearHistory(t.current)
	if err != nil {
		return nil, err
	}
	t.current = agg
	return t.current, nil
}

func (t *trackerImpl) AddAccount(name, characterName string) (*Aggregate, error) {
	return t.mutate("add account", "", func(a *Aggregate, now time.Time) error {
		if name == "" || characterName == "" {
			return ErrPayloadInvalid
		}
		account := &Account{ID: uuid.NewString(), Name: name}
		character := t.ledger.NewCharacter(uuid.NewString(), account.ID, characterName, now)
		a.Accounts = append(a.Accounts, account)
		a.Characters = append(a.Characters, character)
		ensureSelection(a)
		return nil
	})
}

func (t *trackerImpl) RenameAccount(accountID, name string) (*Aggregate, error) {
	return t.mutate("rename account", "", func(a *Aggregate, now time.Time) error {
		if name == "" {
			return ErrPayloadInvalid
		}
		account := a.Account(accountID)
		if account == nil {
			return ErrAccountNotFound
		}
		account.Name = name
		return nil
	})
}

func (t *trackerImpl) DeleteAccount(accountID string) (*Aggregate, error) {
	return t.mutate("delete account", "", func(a *Aggregate, now time.Time) error {
		if a.Account(accountID) == nil {
			return ErrAccountNotFound
		}
		if len(a.Accounts) <= 1 {
			return ErrLastAccount
		}
		accounts := a.Accounts[:0]
		for _, acc := range a.Accounts {
			if acc.ID != accountID {
				accounts = append(accounts, acc)
			}
		}
		a.Accounts = accounts
		characters := a.Characters[:0]
		for _, c := range a.Characters {
			if c.AccountID != accountID {
				characters = append(characters, c)
			}
		}
		a.Characters = characters
		ensureSelection(a)
		return nil
	})
}

func (t *trackerImpl) AddCharacter(accountID, name string) (*Aggregate, error) {
	return t.mutate("add character", "", func(a *Aggregate, now time.Time) error {
		if name == "" {
			return ErrPayloadInvalid
		}
		if a.Account(accountID) == nil {
			return ErrAccountNotFound
		}
		character := t.ledger.NewCharacter(uuid.NewString(), accountID, name, now)
		a.Characters = append(a.Characters, character)
		ensureSelection(a)
		return nil
	})
}

func (t *trackerImpl) RenameCharacter(characterID, name string) (*Aggregate, error) {
	return t.mutateCharacter("rename character", characterID, func(c *Character, a *Aggregate, now time.Time) error {
		if name == "" {
			return ErrPayloadInvalid
		}
		c.Name = name
		return nil
	})
}

func (t *trackerImpl) DeleteCharacter(characterID string) (*Aggregate, error) {
	return t.mutate("delete character", characterID, func(a *Aggregate, now time.Time) error {
		target := a.Character(characterID)
		if target == nil {
			return ErrCharacterNotFound
		}
		siblings := 0
		for _, c := range a.Characters {
			if c.AccountID == target.AccountID {
				siblings++
			}
		}
		if siblings <= 1 {
			return ErrLastCharacter
		}
		characters := a.Characters[:0]
		for _, c := range a.Characters {
			if c.ID != characterID {
				characters = append(characters, c)
			}
		}
		a.Characters = characters
		ensureSelection(a)
		return nil
	})
}

func (t *trackerImpl) SelectCharacter(characterID string) (*Aggregate, error) {
	return t.mutate("select character", characterID, func(a *Aggregate, now time.Time) error {
		c := a.Character(characterID)
		if c == nil {
			return ErrCharacterNotFound
		}
		a.SelectedCharacterID = c.ID
		a.SelectedAccountID = c.AccountID
		return nil
	})
}

func (t *trackerImpl) ScheduleInfo() *ScheduleInfo {
	return t.ledger.ScheduleInfo(t.clock())
}

func (t *trackerImpl) GetLedgerSystem() LedgerSystem { return t.ledger }

func (t *trackerImpl) GetCatalog() *Catalog { return t.catalog }

// ensureSelection repairs the selection pointers after roster changes. The
// still-selected account's characters are preferred; otherwise selection
// falls to the first character of the first account that has one.
func ensureSelection(a *Aggregate) {
	if c := a.Character(a.SelectedCharacterID); c != nil {
		a.SelectedAccountID = c.AccountID
		return
	}
	for _, c := range a.Characters {
		if c.AccountID == a.SelectedAccountID {
			a.SelectedCharacterID = c.ID
			return
		}
	}
	if len(a.Characters) > 0 {
		a.SelectedCharacterID = a.Characters[0].ID
		a.SelectedAccountID = a.Characters[0].AccountID
	}
}
