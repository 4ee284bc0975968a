package http

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/atinyakov/basetutor/internal/convert"
	"github.com/atinyakov/basetutor/internal/models"
)

// HistoryService defines the conversion history operations required by the
// HTTP handlers.
type HistoryService interface {
	RecordConversion(ctx context.Context, username, inputValue string, inputBase int, outputValue string, outputBase int) (models.ConversionEntry, error)
	History(ctx context.Context, username string) ([]models.ConversionEntry, error)
	RecentHistory(ctx context.Context, username string, limit int) ([]models.ConversionEntry, error)
	ClearHistory(ctx context.Context, username string) (int64, error)
}

// RecentCache is the local most-recent list of anonymous conversions.
type RecentCache interface {
	Load() ([]string, error)
	Add(entry string) error
}

// HistoryHandler serves conversions and their history.
type HistoryHandler struct {
	HistoryService HistoryService
	Cache          RecentCache
}

// ConvertRequest is the payload of POST /api/convert. A non-empty Username
// records the conversion in that user's history; otherwise it goes to the
// local recent cache.
type ConvertRequest struct {
	Username string `json:"username,omitempty"`
	Value    string `json:"value"`
	From     int    `json:"from"`
	To       int    `json:"to"`
}

// ConvertResponse carries the converted value and, for a logged-in user,
// the stored history entry.
type ConvertResponse struct {
	Result string                  `json:"result"`
	Entry  *models.ConversionEntry `json:"entry,omitempty"`
}

// Convert converts a value between bases and records it.
func (h *HistoryHandler) Convert(w http.ResponseWriter, r *http.Request) {
	var req ConvertRequest
	if !decodeBody(r, &req, false) {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	result, err := convert.Convert(req.Value, req.From, req.To)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := ConvertResponse{Result: result}
	if req.Username != "" {
		e, err := h.HistoryService.RecordConversion(r.Context(), req.Username, req.Value, req.From, result, req.To)
		if err != nil {
			writeError(w, err)
			return
		}
		resp.Entry = &e
	} else if err := h.Cache.Add(fmt.Sprintf("%s (%d) = %s (%d)", req.Value, req.From, result, req.To)); err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// List returns the history of {username}, most-recent-first, bounded by the
// optional ?limit= query parameter.
func (h *HistoryHandler) List(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	var (
		entries []models.ConversionEntry
		err     error
	)
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, convErr := strconv.Atoi(raw)
		if convErr != nil || limit <= 0 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		entries, err = h.HistoryService.RecentHistory(r.Context(), username, limit)
	} else {
		entries, err = h.HistoryService.History(r.Context(), username)
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// Clear deletes the history of {username}.
func (h *HistoryHandler) Clear(w http.ResponseWriter, r *http.Request) {
	n, err := h.HistoryService.ClearHistory(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"removed": n})
}

// Recent returns the local recent-conversions cache.
func (h *HistoryHandler) Recent(w http.ResponseWriter, r *http.Request) {
	entries, err := h.Cache.Load()
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"history": entries})
}
