package tracker

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestTracker(t *testing.T) (Tracker, *MemoryStorage) {
	t.Helper()
	store := NewMemoryStorage()
	tr, err := Init(store, zap.NewNop(), WithClock(fixedClock(testBase)))
	require.NoError(t, err)
	return tr, store
}

func selectedCharacter(t *testing.T, tr Tracker) *Character {
	t.Helper()
	agg, err := tr.GetState()
	require.NoError(t, err)
	c := agg.Character(agg.SelectedCharacterID)
	require.NotNil(t, c)
	return c
}

func TestInit_CreatesFreshAggregate(t *testing.T) {
	tr, store := newTestTracker(t)

	agg, err := tr.GetState()
	require.NoError(t, err)
	assert.Equal(t, currentSchemaVersion, agg.Version)
	require.Len(t, agg.Accounts, 1)
	require.Len(t, agg.Characters, 1)
	assert.Equal(t, "默认账号", agg.Accounts[0].Name)
	assert.Equal(t, "角色1", agg.Characters[0].Name)
	assert.Equal(t, agg.Accounts[0].ID, agg.SelectedAccountID)
	assert.Equal(t, agg.Characters[0].ID, agg.SelectedCharacterID)

	// The fresh document was persisted immediately.
	loaded, err := store.Load()
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, agg.SelectedCharacterID, loaded.SelectedCharacterID)
}

func TestInit_LoadsExistingAggregate(t *testing.T) {
	store := NewMemoryStorage()
	tr1, err := Init(store, zap.NewNop(), WithClock(fixedClock(testBase)))
	require.NoError(t, err)
	first := selectedCharacter(t, tr1)

	_, err = tr1.ApplyTaskAction(first.ID, "hunt", ActionComplete, 2)
	require.NoError(t, err)

	tr2, err := Init(store, zap.NewNop(), WithClock(fixedClock(testBase)))
	require.NoError(t, err)
	second := selectedCharacter(t, tr2)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 8, second.Activities[ActivityHunt].Remaining)
}

func TestApplyTaskAction_ThroughHub(t *testing.T) {
	tr, _ := newTestTracker(t)
	c := selectedCharacter(t, tr)

	agg, err := tr.ApplyTaskAction(c.ID, "hunt", ActionComplete, 1)
	require.NoError(t, err)

	updated := agg.Character(c.ID)
	assert.Equal(t, 9, updated.Activities[ActivityHunt].Remaining)
	assert.Equal(t, 210, updated.Energy.BaseCurrent)
	require.Len(t, agg.History, 1)
	assert.Equal(t, "apply task action", agg.History[0].Label)
	assert.Equal(t, c.ID, agg.History[0].CharacterID)
}

func TestApplyTaskAction_UnknownCharacter(t *testing.T) {
	tr, _ := newTestTracker(t)

	_, err := tr.ApplyTaskAction("missing", "hunt", ActionComplete, 1)
	assert.ErrorIs(t, err, ErrCharacterNotFound)
	assert.Equal(t, "角色不存在", err.Error())
}

func TestUndoOperations_ThroughHub(t *testing.T) {
	tr, _ := newTestTracker(t)
	c := selectedCharacter(t, tr)

	_, err := tr.ApplyTaskAction(c.ID, "hunt", ActionComplete, 1)
	require.NoError(t, err)
	_, err = tr.ApplyTaskAction(c.ID, "hunt", ActionComplete, 1)
	require.NoError(t, err)

	agg, err := tr.UndoOperations(1)
	require.NoError(t, err)
	assert.Equal(t, 9, agg.Character(c.ID).Activities[ActivityHunt].Remaining)
	assert.Equal(t, 210, agg.Character(c.ID).Energy.BaseCurrent)
	assert.Len(t, agg.History, 1)

	_, err = tr.UndoOperations(0)
	assert.ErrorIs(t, err, ErrBadInput)
}

func TestClearHistory_ThroughHub(t *testing.T) {
	tr, _ := newTestTracker(t)
	c := selectedCharacter(t, tr)

	_, err := tr.ApplyTaskAction(c.ID, "hunt", ActionComplete, 1)
	require.NoError(t, err)

	agg, err := tr.ClearHistory()
	require.NoError(t, err)
	assert.Empty(t, agg.History)
	assert.Equal(t, 9, agg.Character(c.ID).Activities[ActivityHunt].Remaining)
}

func TestUpdateSettings_ReclampsCounters(t *testing.T) {
	tr, _ := newTestTracker(t)
	c := selectedCharacter(t, tr)
	assert.Equal(t, 10, c.Activities[ActivityHunt].Remaining)

	settings := DefaultSettings()
	settings.HuntCap = intPtr(4)
	agg, err := tr.UpdateSettings(settings)
	require.NoError(t, err)

	assert.Equal(t, 4, *agg.Settings.HuntCap)
	assert.Equal(t, 4, agg.Character(c.ID).Activities[ActivityHunt].Remaining)
}

func TestUpdateSettings_Validation(t *testing.T) {
	tr, _ := newTestTracker(t)

	_, err := tr.UpdateSettings(nil)
	assert.ErrorIs(t, err, ErrPayloadInvalid)

	bad := DefaultSettings()
	bad.GoldPerAbyss = -1
	_, err = tr.UpdateSettings(bad)
	assert.ErrorIs(t, err, ErrPayloadInvalid)

	// Non-positive overrides normalize to "unset".
	odd := DefaultSettings()
	odd.RaidCap = intPtr(-5)
	agg, err := tr.UpdateSettings(odd)
	require.NoError(t, err)
	assert.Nil(t, agg.Settings.RaidCap)
}

func TestRosterOperations(t *testing.T) {
	tr, _ := newTestTracker(t)

	agg, err := tr.AddAccount("小号", "角色2")
	require.NoError(t, err)
	require.Len(t, agg.Accounts, 2)
	require.Len(t, agg.Characters, 2)
	second := agg.Accounts[1]
	assert.Equal(t, "小号", second.Name)

	agg, err = tr.RenameAccount(second.ID, "大号")
	require.NoError(t, err)
	assert.Equal(t, "大号", agg.Account(second.ID).Name)

	agg, err = tr.AddCharacter(second.ID, "角色3")
	require.NoError(t, err)
	require.Len(t, agg.Characters, 3)

	_, err = tr.AddCharacter("missing", "x")
	assert.ErrorIs(t, err, ErrAccountNotFound)
	_, err = tr.AddCharacter(second.ID, "")
	assert.ErrorIs(t, err, ErrPayloadInvalid)
	_, err = tr.RenameAccount(second.ID, "")
	assert.ErrorIs(t, err, ErrPayloadInvalid)
}

func TestDeleteAccount_GuardsAndSelection(t *testing.T) {
	tr, _ := newTestTracker(t)
	first, err := tr.GetState()
	require.NoError(t, err)
	firstAccount := first.Accounts[0]

	_, err = tr.DeleteAccount(firstAccount.ID)
	assert.ErrorIs(t, err, ErrLastAccount)

	agg, err := tr.AddAccount("小号", "角色2")
	require.NoError(t, err)
	secondAccount := agg.Accounts[1]

	// Deleting the selected account moves selection to a surviving character.
	agg, err = tr.DeleteAccount(firstAccount.ID)
	require.NoError(t, err)
	require.Len(t, agg.Accounts, 1)
	require.Len(t, agg.Characters, 1)
	assert.Equal(t, secondAccount.ID, agg.SelectedAccountID)
	assert.Equal(t, agg.Characters[0].ID, agg.SelectedCharacterID)

	_, err = tr.DeleteAccount("missing")
	assert.ErrorIs(t, err, ErrAccountNotFound)
}

func TestDeleteCharacter_GuardsAndSelection(t *testing.T) {
	tr, _ := newTestTracker(t)
	agg, err := tr.GetState()
	require.NoError(t, err)
	account := agg.Accounts[0]
	original := agg.SelectedCharacterID

	_, err = tr.DeleteCharacter(original)
	assert.ErrorIs(t, err, ErrLastCharacter)

	agg, err = tr.AddCharacter(account.ID, "角色2")
	require.NoError(t, err)
	require.Len(t, agg.Characters, 2)
	added := agg.Characters[1]

	agg, err = tr.DeleteCharacter(original)
	require.NoError(t, err)
	require.Len(t, agg.Characters, 1)
	assert.Equal(t, added.ID, agg.SelectedCharacterID)
	assert.Equal(t, account.ID, agg.SelectedAccountID)

	_, err = tr.DeleteCharacter("missing")
	assert.ErrorIs(t, err, ErrCharacterNotFound)
}

func TestSelectCharacter(t *testing.T) {
	tr, _ := newTestTracker(t)
	agg, err := tr.GetState()
	require.NoError(t, err)
	account := agg.Accounts[0]

	agg, err = tr.AddCharacter(account.ID, "角色2")
	require.NoError(t, err)
	added := agg.Characters[1]
	historyBefore := len(agg.History)

	agg, err = tr.SelectCharacter(added.ID)
	require.NoError(t, err)
	assert.Equal(t, added.ID, agg.SelectedCharacterID)
	assert.Len(t, agg.History, historyBefore+1)

	// Selecting the already-selected character changes nothing and leaves
	// no history entry.
	agg, err = tr.SelectCharacter(added.ID)
	require.NoError(t, err)
	assert.Len(t, agg.History, historyBefore+1)

	_, err = tr.SelectCharacter("missing")
	assert.ErrorIs(t, err, ErrCharacterNotFound)
}

func TestRenameCharacter(t *testing.T) {
	tr, _ := newTestTracker(t)
	c := selectedCharacter(t, tr)

	agg, err := tr.RenameCharacter(c.ID, "新名字")
	require.NoError(t, err)
	assert.Equal(t, "新名字", agg.Character(c.ID).Name)

	_, err = tr.RenameCharacter(c.ID, "")
	assert.ErrorIs(t, err, ErrPayloadInvalid)
}

func TestCharacterSetters_ThroughHub(t *testing.T) {
	tr, _ := newTestTracker(t)
	c := selectedCharacter(t, tr)

	agg, err := tr.UpdateEnergySegments(c.ID, 120, 60)
	require.NoError(t, err)
	assert.Equal(t, 120, agg.Character(c.ID).Energy.BaseCurrent)
	assert.Equal(t, 60, agg.Character(c.ID).Energy.BonusCurrent)

	agg, err = tr.UpdateRaidCounts(c.ID, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, 1, agg.Character(c.ID).Activities[ActivityRaid].Remaining)
	assert.Equal(t, 2, agg.Character(c.ID).Activities[ActivityRaid].BossRemaining)

	agg, err = tr.UpdateArtifactStatus(c.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, 5, agg.Character(c.ID).Activities[ActivityArtifact].Remaining)

	agg, err = tr.ApplyCorridorCompletion(c.ID, 10)
	require.NoError(t, err)
	assert.Equal(t, 2, agg.Character(c.ID).Activities[ActivityCorridor].Remaining)

	agg, err = tr.UpdateWeeklyCompletions(c.ID, map[TaskID]int{"hunt": 3})
	require.NoError(t, err)
	assert.Equal(t, 3, agg.Character(c.ID).Stats.Completions["hunt"])

	agg, err = tr.UpdateAodePlan(c.ID, map[TaskID]int{"expedition": 2})
	require.NoError(t, err)
	assert.Equal(t, 2, agg.Character(c.ID).AodePlan["expedition"])
}

func TestResetWeeklyStats_ThroughHub(t *testing.T) {
	tr, _ := newTestTracker(t)
	c := selectedCharacter(t, tr)

	_, err := tr.ApplyTaskAction(c.ID, "hunt", ActionComplete, 1)
	require.NoError(t, err)

	agg, err := tr.ResetWeeklyStats(c.ID)
	require.NoError(t, err)
	updated := agg.Character(c.ID)
	assert.Equal(t, int64(0), updated.Stats.GoldEarned)
	assert.Empty(t, updated.Stats.Completions)
	assert.Equal(t, testBase.Unix(), updated.Stats.CycleStartSec)
}

func TestTracker_RefreshBeforeTransaction(t *testing.T) {
	// With a moving clock, elapsed-time catch-up persists without a history
	// entry; only the explicit mutation is undoable.
	now := testBase
	store := NewMemoryStorage()
	tr, err := Init(store, zap.NewNop(), WithClock(func() time.Time { return now }))
	require.NoError(t, err)
	c := selectedCharacter(t, tr)

	_, err = tr.UpdateEnergySegments(c.ID, 0, 0)
	require.NoError(t, err)

	now = now.Add(5 * time.Hour)
	agg, err := tr.ApplyTaskAction(c.ID, "warrant", ActionComplete, 1)
	require.NoError(t, err)

	// Five hourly ticks landed before the action spent 10.
	assert.Equal(t, 30, agg.Character(c.ID).Energy.BaseCurrent)
	require.Len(t, agg.History, 2)

	// Undo rewinds the action but not the passage of time.
	agg, err = tr.UndoOperations(1)
	require.NoError(t, err)
	assert.Equal(t, 40, agg.Character(c.ID).Energy.BaseCurrent)
	assert.Equal(t, 3, agg.Character(c.ID).Activities[ActivityWarrant].Remaining)
}

func TestScheduleInfo_ThroughHub(t *testing.T) {
	tr, _ := newTestTracker(t)

	info := tr.ScheduleInfo()
	require.NotNil(t, info)
	assert.Equal(t, testBase.Unix(), info.NowSec)
	assert.Greater(t, info.NextWeeklyResetSec, info.NowSec)

	assert.NotNil(t, tr.GetLedgerSystem())
	assert.NotNil(t, tr.GetCatalog())
}
