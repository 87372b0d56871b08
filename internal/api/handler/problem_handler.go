package handler

import (
	"net/http"

	"mathquest/internal/app/service"
	"mathquest/internal/common"

	"github.com/go-chi/chi/v5"
)

type ProblemHandler struct {
	problemService *service.ProblemService
	// generatorLimit guards the routes that call the content generator. Nil means unlimited.
	generatorLimit func(http.Handler) http.Handler
}

func NewProblemHandler(ps *service.ProblemService, generatorLimit func(http.Handler) http.Handler) *ProblemHandler {
	return &ProblemHandler{problemService: ps, generatorLimit: generatorLimit}
}

func (h *ProblemHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.getProblem) // GET /api/v1/problem?sessionId=...

	r.Group(func(gen chi.Router) {
		if h.generatorLimit != nil {
			gen.Use(h.generatorLimit)
		}
		gen.Post("/", h.generateProblem)    // POST /api/v1/problem
		gen.Post("/submit", h.submitAnswer) // POST /api/v1/problem/submit
		gen.Post("/hint", h.requestHint)    // POST /api/v1/problem/hint
	})
}

func (h *ProblemHandler) generateProblem(w http.ResponseWriter, r *http.Request) {
	var req service.GenerateProblemRequest
	if !decodeJSON(w, r, &req, true) {
		return
	}

	problem, err := h.problemService.GenerateProblem(r.Context(), req)
	if err != nil {
		common.RespondWithDomainError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, problem)
}

func (h *ProblemHandler) getProblem(w http.ResponseWriter, r *http.Request) {
	view, err := h.problemService.GetProblem(r.Context(), r.URL.Query().Get("sessionId"))
	if err != nil {
		common.RespondWithDomainError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, view)
}

func (h *ProblemHandler) submitAnswer(w http.ResponseWriter, r *http.Request) {
	var req service.SubmitAnswerRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}

	resp, err := h.problemService.SubmitAnswer(r.Context(), req)
	if err != nil {
		common.RespondWithDomainError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, resp)
}

func (h *ProblemHandler) requestHint(w http.ResponseWriter, r *http.Request) {
	var req service.HintRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}

	resp, err := h.problemService.RequestHint(r.Context(), req)
	if err != nil {
		common.RespondWithDomainError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, resp)
}
