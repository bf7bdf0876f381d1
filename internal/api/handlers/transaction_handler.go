package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"fintrack/internal/auth"
	"fintrack/internal/services"
)

// TransactionHandler handles HTTP requests for transaction management.
type TransactionHandler struct {
	service services.TransactionServiceProvider
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(service services.TransactionServiceProvider) *TransactionHandler {
	return &TransactionHandler{service: service}
}

// Create records a new transaction for the authenticated user.
func (h *TransactionHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())

	var input services.TransactionInput
	if !decodeBody(w, r, &input) {
		return
	}

	tx, err := h.service.Add(r.Context(), userID, input)
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message":     "Transaction added",
		"transaction": tx,
	})
}

// GetAll lists the authenticated user's transactions, newest first.
func (h *TransactionHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())

	transactions, err := h.service.List(r.Context(), userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to list transactions")
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"transaction": transactions})
}

// Delete removes one of the authenticated user's transactions by id.
func (h *TransactionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())
	id := chi.URLParam(r, "id")

	if err := h.service.Delete(r.Context(), userID, id); err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "Transaction deleted"})
}
