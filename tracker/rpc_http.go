package tracker

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// NewRouter exposes the Tracker operations as a method-per-operation JSON
// surface. Every response carries the full aggregate plus the upcoming
// schedule instants, or a coded error body.
func NewRouter(t Tracker, logger *zap.Logger) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	h := &rpcHandler{tracker: t, logger: logger}

	r.Get("/api/state", h.getState)
	r.Post("/api/task-action", h.applyTaskAction)
	r.Post("/api/raid-counts", h.updateRaidCounts)
	r.Post("/api/energy-segments", h.updateEnergySegments)
	r.Post("/api/artifact-status", h.updateArtifactStatus)
	r.Post("/api/corridor-completion", h.applyCorridorCompletion)
	r.Post("/api/weekly-stats/reset", h.resetWeeklyStats)
	r.Post("/api/settings", h.updateSettings)
	r.Post("/api/weekly-completions", h.updateWeeklyCompletions)
	r.Post("/api/aode-plan", h.updateAodePlan)
	r.Post("/api/undo", h.undoOperations)
	r.Post("/api/history/clear", h.clearHistory)
	r.Post("/api/accounts", h.addAccount)
	r.Post("/api/accounts/rename", h.renameAccount)
	r.Post("/api/accounts/delete", h.deleteAccount)
	r.Post("/api/characters", h.addCharacter)
	r.Post("/api/characters/rename", h.renameCharacter)
	r.Post("/api/characters/delete", h.deleteCharacter)
	r.Post("/api/characters/select", h.selectCharacter)

	return r
}

type rpcHandler struct {
	tracker Tracker
	logger  *zap.Logger
}

// StateResponse is the success envelope for every operation.
type StateResponse struct {
	State    *Aggregate    `json:"state"`
	Schedule *ScheduleInfo `json:"schedule"`
}

// ErrorResponse is the failure envelope.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

type ErrorBody struct {
	Message string `json:"message"`
	Code    int    `json:"code"`
}

func statusFor(code int) int {
	switch code {
	case INVALID_ARGUMENT_ERROR_CODE:
		return http.StatusBadRequest
	case NOT_FOUND_ERROR_CODE:
		return http.StatusNotFound
	case FAILED_PRECONDITION_ERROR_CODE:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (h *rpcHandler) respond(w http.ResponseWriter, agg *Aggregate, err error) {
	w.Header().Set("Content-Type", "application/json")
	if err != nil {
		code := errorCode(err)
		h.logger.Warn("operation failed", zap.Error(err), zap.Int("code", code))
		w.WriteHeader(statusFor(code))
		_ = json.NewEncoder(w).Encode(&ErrorResponse{Error: ErrorBody{Message: err.Error(), Code: code}})
		return
	}
	_ = json.NewEncoder(w).Encode(&StateResponse{State: agg, Schedule: h.tracker.ScheduleInfo()})
}

func (h *rpcHandler) decode(w http.ResponseWriter, r *http.Request, into any) bool {
	if err := json.NewDecoder(r.Body).Decode(into); err != nil {
		h.respond(w, nil, ErrPayloadDecode)
		return false
	}
	return true
}

func (h *rpcHandler) getState(w http.ResponseWriter, r *http.Request) {
	agg, err := h.tracker.GetState()
	h.respond(w, agg, err)
}

// TaskActionRequest is the applyTaskAction payload.
type TaskActionRequest struct {
	CharacterID string     `json:"characterId"`
	TaskID      TaskID     `json:"taskId"`
	Action      TaskAction `json:"action"`
	Amount      int        `json:"amount"`
}

func (h *rpcHandler) applyTaskAction(w http.ResponseWriter, r *http.Request) {
	var req TaskActionRequest
	if !h.decode(w, r, &req) {
		return
	}
	agg, err := h.tracker.ApplyTaskAction(req.CharacterID, req.TaskID, req.Action, req.Amount)
	h.respond(w, agg, err)
}

func (h *rpcHandler) updateRaidCounts(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CharacterID   string `json:"characterId"`
		Remaining     int    `json:"remaining"`
		BossRemaining int    `json:"bossRemaining"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	agg, err := h.tracker.UpdateRaidCounts(req.CharacterID, req.Remaining, req.BossRemaining)
	h.respond(w, agg, err)
}

func (h *rpcHandler) updateEnergySegments(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CharacterID  string `json:"characterId"`
		BaseCurrent  int    `json:"baseCurrent"`
		BonusCurrent int    `json:"bonusCurrent"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	agg, err := h.tracker.UpdateEnergySegments(req.CharacterID, req.BaseCurrent, req.BonusCurrent)
	h.respond(w, agg, err)
}

func (h *rpcHandler) updateArtifactStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CharacterID string `json:"characterId"`
		Completed   int    `json:"completed"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	agg, err := h.tracker.UpdateArtifactStatus(req.CharacterID, req.Completed)
	h.respond(w, agg, err)
}

func (h *rpcHandler) applyCorridorCompletion(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CharacterID string `json:"characterId"`
		Completed   int    `json:"completed"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	agg, err := h.tracker.ApplyCorridorCompletion(req.CharacterID, req.Completed)
	h.respond(w, agg, err)
}

func (h *rpcHandler) resetWeeklyStats(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CharacterID string `json:"characterId"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	agg, err := h.tracker.ResetWeeklyStats(req.CharacterID)
	h.respond(w, agg, err)
}

func (h *rpcHandler) updateSettings(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Settings *AppSettings `json:"settings"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	agg, err := h.tracker.UpdateSettings(req.Settings)
	h.respond(w, agg, err)
}

func (h *rpcHandler) updateWeeklyCompletions(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CharacterID string         `json:"characterId"`
		Completions map[TaskID]int `json:"completions"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	agg, err := h.tracker.UpdateWeeklyCompletions(req.CharacterID, req.Completions)
	h.respond(w, agg, err)
}

func (h *rpcHandler) updateAodePlan(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CharacterID string         `json:"characterId"`
		Plan        map[TaskID]int `json:"plan"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	agg, err := h.tracker.UpdateAodePlan(req.CharacterID, req.Plan)
	h.respond(w, agg, err)
}

func (h *rpcHandler) undoOperations(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Steps int `json:"steps"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	agg, err := h.tracker.UndoOperations(req.Steps)
	h.respond(w, agg, err)
}

func (h *rpcHandler) clearHistory(w http.ResponseWriter, r *http.Request) {
	agg, err := h.tracker.ClearHistory()
	h.respond(w, agg, err)
}

func (h *rpcHandler) addAccount(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name          string `json:"name"`
		CharacterName string `json:"characterName"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	agg, err := h.tracker.AddAccount(req.Name, req.CharacterName)
	h.respond(w, agg, err)
}

func (h *rpcHandler) renameAccount(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AccountID string `json:"accountId"`
		Name      string `json:"name"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	agg, err := h.tracker.RenameAccount(req.AccountID, req.Name)
	h.respond(w, agg, err)
}

func (h *rpcHandler) deleteAccount(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AccountID string `json:"accountId"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	agg, err := h.tracker.DeleteAccount(req.AccountID)
	h.respond(w, agg, err)
}

func (h *rpcHandler) addCharacter(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AccountID string `json:"accountId"`
		Name      string `json:"name"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	agg, err := h.tracker.AddCharacter(req.AccountID, req.Name)
	h.respond(w, agg, err)
}

func (h *rpcHandler) renameCharacter(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CharacterID string `json:"characterId"`
		Name        string `json:"name"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	agg, err := h.tracker.RenameCharacter(req.CharacterID, req.Name)
	h.respond(w, agg, err)
}

func (h *rpcHandler) deleteCharacter(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CharacterID string `json:"characterId"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	agg, err := h.tracker.DeleteCharacter(req.CharacterID)
	h.respond(w, agg, err)
}

func (h *rpcHandler) selectCharacter(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CharacterID string `json:"characterId"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	agg, err := h.tracker.SelectCharacter(req.CharacterID)
	h.respond(w, agg, err)
}
