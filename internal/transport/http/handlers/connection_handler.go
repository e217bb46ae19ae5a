package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/davorm/tether/internal/service"
	"github.com/davorm/tether/internal/transport/http/middleware"
	"github.com/google/uuid"
)

type ConnectionHandler struct {
	connService *service.ConnectionService
}

func NewConnectionHandler(connService *service.ConnectionService) *ConnectionHandler {
	return &ConnectionHandler{connService: connService}
}

func (h *ConnectionHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var input struct {
		Username string `json:"username"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}
	if input.Username == "" {
		writeError(w, http.StatusBadRequest, "MISSING_USERNAME", "username is required")
		return
	}

	conn, err := h.connService.Connect(r.Context(), userID, input.Username)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrConnUserNotFound):
			writeError(w, http.StatusNotFound, "NOT_FOUND", "User not found")
		case errors.Is(err, service.ErrCannotConnectSelf):
			writeError(w, http.StatusBadRequest, "CANNOT_CONNECT_SELF", "Cannot connect with yourself")
		case errors.Is(err, service.ErrAlreadyConnected):
			writeError(w, http.StatusConflict, "ALREADY_CONNECTED", "You are already connected")
		default:
			log.Printf("ERROR create connection: %v", err)
			writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		}
		return
	}

	writeJSON(w, http.StatusCreated, conn)
}

func (h *ConnectionHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	conns, err := h.connService.List(r.Context(), userID)
	if err != nil {
		log.Printf("ERROR list connections: %v", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"connections": conns})
}

func (h *ConnectionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	otherID, err := uuid.Parse(r.PathValue("uid"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid user ID")
		return
	}

	if err := h.connService.Remove(r.Context(), userID, otherID); err != nil {
		log.Printf("ERROR delete connection: %v", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
