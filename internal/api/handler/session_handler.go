package handler

import (
	"net/http"

	"mathquest/internal/app/service"
	"mathquest/internal/common"

	"github.com/go-chi/chi/v5"
)

type SessionHandler struct {
	sessionService *service.SessionService
}

func NewSessionHandler(ss *service.SessionService) *SessionHandler {
	return &SessionHandler{sessionService: ss}
}

func (h *SessionHandler) RegisterRoutes(r chi.Router) {
	r.Post("/", h.createSession)     // POST /api/v1/session
	r.Post("/join", h.joinSession)   // POST /api/v1/session/join
	r.Get("/data", h.getSessionData) // GET /api/v1/session/data?session_id=ABCDE
}

type createSessionResponse struct {
	SessionID   string `json:"session_id"`
	HintCredits int    `json:"hint_credits"`
}

type joinSessionRequest struct {
	SessionID string `json:"session_id"`
}

func (h *SessionHandler) createSession(w http.ResponseWriter, r *http.Request) {
	session, err := h.sessionService.CreateSession(r.Context())
	if err != nil {
		common.RespondWithDomainError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, createSessionResponse{SessionID: session.ID, HintCredits: session.HintCredits})
}

func (h *SessionHandler) joinSession(w http.ResponseWriter, r *http.Request) {
	var req joinSessionRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}

	resp, err := h.sessionService.JoinSession(r.Context(), req.SessionID)
	if err != nil {
		common.RespondWithDomainError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, resp)
}

func (h *SessionHandler) getSessionData(w http.ResponseWriter, r *http.Request) {
	data, err := h.sessionService.GetSessionData(r.Context(), r.URL.Query().Get("session_id"))
	if err != nil {
		common.RespondWithDomainError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, data)
}
