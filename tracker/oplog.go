package tracker

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// maxHistoryEntries bounds the undo ring; the oldest entries drop first.
const maxHistoryEntries = 200

// MutationLog wraps every state-changing operation: it deep-snapshots the
// aggregate, runs the mutation on a working copy, diffs, and appends an
// undo-capable entry only when observable state actually changed. The
// aggregate is exclusively owned by the log between snapshot and commit.
type MutationLog struct {
	store  Storage
	logger *zap.Logger
	clock  func() time.Time
}

// NewMutationLog creates a transaction log persisting through store.
func NewMutationLog(store Storage, logger *zap.Logger, clock func() time.Time) *MutationLog {
	if clock == nil {
		clock = time.Now
	}
	return &MutationLog{store: store, logger: logger, clock: clock}
}

// Commit runs mutate on a working copy of agg. On a domain error the working
// copy is discarded and agg is returned untouched. On success the new
// aggregate is persisted and returned; a history entry is appended only if
// the mutation changed observable state.
func (m *MutationLog) Commit(agg *Aggregate, label, characterID string, mutate func(*Aggregate) error) (*Aggregate, error) {
	before := agg.Snapshot()

	working := agg.Clone()
	if err := mutate(working); err != nil {
		m.logger.Debug("operation rejected", zap.String("label", label), zap.Error(err))
		return agg, err
	}

	if !before.Equal(working.Snapshot()) {
		entry := &OperationLogEntry{
			ID:           uuid.NewString(),
			TimestampSec: m.clock().Unix(),
			Label:        label,
			CharacterID:  characterID,
			Before:       before,
		}
		working.History = append(working.History, entry)
		if over := len(working.History) - maxHistoryEntries; over > 0 {
			working.History = working.History[over:]
		}
	}

	if err := m.store.Save(working); err != nil {
		m.logger.Error("persistence failed", zap.String("label", label), zap.Error(err))
		return agg, fmt.Errorf("persist %q: %w", label, err)
	}
	return working, nil
}

// Undo rewinds up to steps entries by restoring each entry's before-snapshot
// wholesale, newest first. Undo is a full state replacement, not an inverse
// replay: time-driven catch-ups have no expressible inverse. The refresh
// callback re-applies elapsed time after the rewind, before persisting.
func (m *MutationLog) Undo(agg *Aggregate, steps int, refresh func(*Aggregate, time.Time)) (*Aggregate, error) {
	if steps < 1 {
		return agg, ErrBadInput
	}

	working := agg.Clone()
	undone := 0
	for undone < steps && len(working.History) > 0 {
		entry := working.History[len(working.History)-1]
		working.History = working.History[:len(working.History)-1]
		restoreSnapshot(working, entry.Before)
		undone++
	}
	if undone > 0 {
		refresh(working, m.clock())
	}

	if err := m.store.Save(working); err != nil {
		m.logger.Error("persistence failed", zap.String("label", "undo"), zap.Error(err))
		return agg, fmt.Errorf("persist undo: %w", err)
	}
	m.logger.Info("operations undone", zap.Int("steps", undone))
	return working, nil
}

// ClearHistory drops all history entries and persists.
func (m *MutationLog) ClearHistory(agg *Aggregate) (*Aggregate, error) {
	working := agg.Clone()
	working.History = nil
	if err := m.store.Save(working); err != nil {
		return agg, fmt.Errorf("persist clear history: %w", err)
	}
	return working, nil
}

// restoreSnapshot replaces the mutable top-level fields from a snapshot. The
// snapshot's contents are deep-copied so a restored aggregate never aliases
// an entry still in history.
func restoreSnapshot(agg *Aggregate, snap *StateSnapshot) {
	agg.SelectedAccountID = snap.SelectedAccountID
	agg.SelectedCharacterID = snap.SelectedCharacterID
	agg.Settings = snap.Settings.Clone()
	agg.Accounts = cloneAccounts(snap.Accounts)
	agg.Characters = cloneCharacters(snap.Characters)
}
