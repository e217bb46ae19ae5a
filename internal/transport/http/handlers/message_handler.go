package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/davorm/tether/internal/domain"
	"github.com/davorm/tether/internal/service"
	"github.com/davorm/tether/internal/transport/http/middleware"
	"github.com/davorm/tether/pkg/validator"
	"github.com/google/uuid"
)

type MessageHandler struct {
	messageService *service.MessageService
}

func NewMessageHandler(messageService *service.MessageService) *MessageHandler {
	return &MessageHandler{messageService: messageService}
}

// Send persists one direct message. A quota-blocked send returns 429 with
// its own code so the frontend can show the limit banner instead of a
// generic failure.
func (h *MessageHandler) Send(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var input struct {
		ReceiverID uuid.UUID `json:"receiver_id"`
		Content    string    `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}
	if input.ReceiverID == uuid.Nil {
		writeError(w, http.StatusBadRequest, "MISSING_RECEIVER_ID", "receiver_id is required")
		return
	}
	if errs := validator.ValidateMessageContent(input.Content); errs.HasErrors() {
		writeValidationErrors(w, errs)
		return
	}

	result, err := h.messageService.Send(r.Context(), userID, input.ReceiverID, input.Content)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyContent):
			writeError(w, http.StatusBadRequest, "MISSING_CONTENT", "Message content is required")
		case errors.Is(err, service.ErrCannotMessageSelf):
			writeError(w, http.StatusBadRequest, "CANNOT_MESSAGE_SELF", "Cannot send a message to yourself")
		case errors.Is(err, service.ErrReceiverNotFound):
			writeError(w, http.StatusNotFound, "NOT_FOUND", "User not found")
		case errors.Is(err, service.ErrQuotaExhausted):
			writeError(w, http.StatusTooManyRequests, "QUOTA_EXHAUSTED", "Message limit reached, wait for the other user to respond")
		default:
			log.Printf("ERROR send message: %v", err)
			writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		}
		return
	}

	writeJSON(w, http.StatusCreated, result)
}

// ListWith returns the conversation history with one peer in display shape.
func (h *MessageHandler) ListWith(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	peerID, err := uuid.Parse(r.PathValue("peerId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid peer ID")
		return
	}

	messages, err := h.messageService.ListWith(r.Context(), userID, peerID)
	if err != nil {
		log.Printf("ERROR list messages: %v", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		return
	}

	display := make([]domain.DisplayMessage, 0, len(messages))
	for _, msg := range messages {
		display = append(display, msg.ToDisplay(userID))
	}

	writeJSON(w, http.StatusOK, map[string]any{"messages": display})
}
