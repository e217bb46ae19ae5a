package handlers

import (
	"log"
	"net/http"

	"github.com/davorm/tether/internal/service"
	"github.com/davorm/tether/internal/transport/http/middleware"
	"github.com/google/uuid"
)

type ConversationHandler struct {
	convService    *service.ConversationService
	messageService *service.MessageService
}

func NewConversationHandler(convService *service.ConversationService, messageService *service.MessageService) *ConversationHandler {
	return &ConversationHandler{
		convService:    convService,
		messageService: messageService,
	}
}

// List returns the viewer's conversation list, most recent first.
func (h *ConversationHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	convs, err := h.convService.ListConversations(r.Context(), userID)
	if err != nil {
		log.Printf("ERROR list conversations: %v", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"conversations": convs})
}

// Open marks everything the peer sent as read. The frontend calls this when
// a conversation becomes the active selection, and again on poll ticks
// while it stays open; repeats are no-ops.
func (h *ConversationHandler) Open(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	peerID, err := uuid.Parse(r.PathValue("peerId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid peer ID")
		return
	}

	if err := h.messageService.MarkConversationRead(r.Context(), userID, peerID); err != nil {
		log.Printf("ERROR open conversation: %v", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
