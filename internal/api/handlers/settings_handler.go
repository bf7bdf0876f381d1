package handlers

import (
	"net/http"

	"fintrack/internal/auth"
	"fintrack/internal/models"
	"fintrack/internal/services"
)

// SettingsHandler handles HTTP requests for user settings.
type SettingsHandler struct {
	service services.SettingsServiceProvider
}

// NewSettingsHandler creates a new SettingsHandler.
func NewSettingsHandler(service services.SettingsServiceProvider) *SettingsHandler {
	return &SettingsHandler{service: service}
}

// Get returns the authenticated user's settings, empty if never written.
func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())

	settings, err := h.service.Get(r.Context(), userID)
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, settings)
}

// Update upserts the authenticated user's settings.
func (h *SettingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())

	var payload struct {
		Name          string `json:"name"`
		Currency      string `json:"currency"`
		Notifications bool   `json:"notifications"`
	}
	if !decodeBody(w, r, &payload) {
		return
	}

	settings, err := h.service.Upsert(r.Context(), models.Settings{
		UserID:        userID,
		Name:          payload.Name,
		Currency:      payload.Currency,
		Notifications: payload.Notifications,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, settings)
}
