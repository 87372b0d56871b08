package handler

import (
	"net/http"

	"mathquest/internal/app/service"
	"mathquest/internal/common"
	"mathquest/internal/domain/model"

	"github.com/go-chi/chi/v5"
)

type TopicHandler struct {
	topicService *service.TopicService
}

func NewTopicHandler(ts *service.TopicService) *TopicHandler {
	return &TopicHandler{topicService: ts}
}

func (h *TopicHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.listTopics) // GET /api/v1/topics
}

type topicsResponse struct {
	Topics []model.Topic `json:"topics"`
}

func (h *TopicHandler) listTopics(w http.ResponseWriter, r *http.Request) {
	common.RespondWithJSON(w, http.StatusOK, topicsResponse{Topics: h.topicService.ListTopics()})
}
