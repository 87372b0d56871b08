package handler

import (
	"net/http"
	"strconv"

	"mathquest/internal/app/service"
	"mathquest/internal/common"

	"github.com/go-chi/chi/v5"
)

type HistoryHandler struct {
	historyService *service.HistoryService
}

func NewHistoryHandler(hs *service.HistoryService) *HistoryHandler {
	return &HistoryHandler{historyService: hs}
}

func (h *HistoryHandler) RegisterRoutes(r chi.Router) {
	r.Get("/history", h.listHistory) // GET /api/v1/problem/history?user_session_id=ABCDE&page=1&limit=10
}

func (h *HistoryHandler) listHistory(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	page, ok := intParam(w, q.Get("page"), "page", 1)
	if !ok {
		return
	}
	limit, ok := intParam(w, q.Get("limit"), "limit", service.DefaultHistoryPageSize)
	if !ok {
		return
	}

	history, err := h.historyService.ListSubmissions(r.Context(), q.Get("user_session_id"), page, limit)
	if err != nil {
		common.RespondWithDomainError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, history)
}

// intParam parses an optional integer query parameter, answering 400 when it is not a number.
func intParam(w http.ResponseWriter, raw, name string, fallback int) (int, bool) {
	if raw == "" {
		return fallback, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		common.RespondWithError(w, http.StatusBadRequest, common.CodeValidation, name+" must be an integer")
		return 0, false
	}
	return v, true
}
