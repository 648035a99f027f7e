// Package handlers implements the HTTP handlers for the Bot Factory engine:
// bot configuration CRUD, inbound message handling, and decision trace
// retrieval. All handlers go through the Store interface so the persistence
// backend can be swapped without touching them.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/botfactory/botfactory/engine/internal/api/middleware"
	"github.com/botfactory/botfactory/engine/internal/engine"
	"github.com/botfactory/botfactory/engine/internal/store"
	"github.com/botfactory/botfactory/engine/pkg/models"
)

// Handlers holds all handler dependencies.
type Handlers struct {
	Store  store.Store
	Engine *engine.Engine
}

// New creates a Handlers instance.
func New(s store.Store, e *engine.Engine) *Handlers {
	return &Handlers{Store: s, Engine: e}
}

// ── Bot Handlers ─────────────────────────────────────────────

func (h *Handlers) ListBots(w http.ResponseWriter, r *http.Request) {
	clientID := middleware.GetClientID(r.Context())
	bots, err := h.Store.ListBots(r.Context(), clientID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if bots == nil {
		bots = []models.BotConfig{}
	}
	respondJSON(w, http.StatusOK, bots)
}

func (h *Handlers) CreateBot(w http.ResponseWriter, r *http.Request) {
	var input models.BotInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if input.NormalizedName() == "" {
		respondError(w, http.StatusBadRequest, "Bot name is required")
		return
	}
	for _, c := range input.Channels {
		if !c.Valid() {
			respondError(w, http.StatusBadRequest, "Unknown channel: "+string(c))
			return
		}
	}
	if input.ClientID == "" {
		input.ClientID = middleware.GetClientID(r.Context())
	}

	bot, err := h.Store.CreateBot(r.Context(), input)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	log.Info().Str("bot", bot.ID).Str("name", bot.Name).Str("client", bot.ClientID).Msg("Bot created")
	respondJSON(w, http.StatusCreated, bot)
}

func (h *Handlers) GetBot(w http.ResponseWriter, r *http.Request) {
	bot, err := h.Store.GetBot(r.Context(), chi.URLParam(r, "botID"))
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, bot)
}

func (h *Handlers) UpdateBot(w http.ResponseWriter, r *http.Request) {
	var patch models.BotPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if patch.Channels != nil {
		for _, c := range *patch.Channels {
			if !c.Valid() {
				respondError(w, http.StatusBadRequest, "Unknown channel: "+string(c))
				return
			}
		}
	}

	bot, err := h.Store.UpdateBot(r.Context(), chi.URLParam(r, "botID"), patch)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	log.Info().Str("bot", bot.ID).Int("version", bot.Version).Msg("Bot updated")
	respondJSON(w, http.StatusOK, bot)
}

func (h *Handlers) DeleteBot(w http.ResponseWriter, r *http.Request) {
	botID := chi.URLParam(r, "botID")
	if err := h.Store.DeleteBot(r.Context(), botID); err != nil {
		respondStoreError(w, err)
		return
	}

	log.Info().Str("bot", botID).Msg("Bot deleted")
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted", "id": botID})
}

// ── Activation Handlers ──────────────────────────────────────

func (h *Handlers) ActivateBot(w http.ResponseWriter, r *http.Request) {
	h.setActive(w, r, true)
}

func (h *Handlers) DeactivateBot(w http.ResponseWriter, r *http.Request) {
	h.setActive(w, r, false)
}

func (h *Handlers) setActive(w http.ResponseWriter, r *http.Request, active bool) {
	bot, err := h.Store.UpdateBot(r.Context(), chi.URLParam(r, "botID"), models.BotPatch{Active: &active})
	if err != nil {
		respondStoreError(w, err)
		return
	}

	log.Info().Str("bot", bot.ID).Bool("active", active).Msg("Bot activation changed")
	respondJSON(w, http.StatusOK, bot)
}

// ── Message Handlers ─────────────────────────────────────────

// InboundMessage is the payload for handling one incoming message.
type InboundMessage struct {
	Channel models.Channel    `json:"channel"`
	Text    string            `json:"text"`
	Meta    map[string]string `json:"meta,omitempty"`
}

func (h *Handlers) HandleMessage(w http.ResponseWriter, r *http.Request) {
	var msg InboundMessage
	if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if msg.Text == "" {
		respondError(w, http.StatusBadRequest, "Message text is required")
		return
	}

	trace, err := h.Engine.HandleInboundMessage(r.Context(), chi.URLParam(r, "botID"), msg.Channel, msg.Text, msg.Meta)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, trace)
}

// ── Trace Handlers ───────────────────────────────────────────

func (h *Handlers) ListTraces(w http.ResponseWriter, r *http.Request) {
	botID := chi.URLParam(r, "botID")
	if _, err := h.Store.GetBot(r.Context(), botID); err != nil {
		respondStoreError(w, err)
		return
	}

	traces, err := h.Store.ListTraces(r.Context(), botID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if traces == nil {
		traces = []models.DecisionTrace{}
	}
	respondJSON(w, http.StatusOK, traces)
}

// ── Helpers ──────────────────────────────────────────────────

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondStoreError maps store error types to HTTP status codes.
func respondStoreError(w http.ResponseWriter, err error) {
	switch err.(type) {
	case *store.ErrNotFound:
		respondError(w, http.StatusNotFound, err.Error())
	case *store.ErrVersionConflict:
		respondError(w, http.StatusConflict, err.Error())
	default:
		respondError(w, http.StatusInternalServerError, err.Error())
	}
}
