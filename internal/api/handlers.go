package api

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/yuin/goldmark"

	"github.com/gameplanhq/gameplan/internal/agenda"
	"github.com/gameplanhq/gameplan/internal/apperr"
	"github.com/gameplanhq/gameplan/internal/history"
	"github.com/gameplanhq/gameplan/internal/storage"
)

// ItemDetail is the full representation of a tracked item.
type ItemDetail struct {
	history.ItemRow
	Content string `json:"content"`
}

// Handler holds API route handlers.
type Handler struct {
	store storage.Provider
	db    *history.DB
	md    goldmark.Markdown
}

// NewHandler creates a Handler.
func NewHandler(store storage.Provider, db *history.DB) *Handler {
	return &Handler{store: store, db: db, md: goldmark.New()}
}

// ListItems handles GET /api/items.
func (h *Handler) ListItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.db.ListItems()
	if err != nil {
		slog.Error("list items failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	if items == nil {
		items = []history.ItemRow{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"items": items,
		"total": len(items),
	})
}

// GetItem handles GET /api/items/{adapter}/{id}.
func (h *Handler) GetItem(w http.ResponseWriter, r *http.Request) {
	adapterName := chi.URLParam(r, "adapter")
	id := chi.URLParam(r, "id")

	row, err := h.db.GetItem(adapterName, id)
	if err != nil {
		slog.Error("get item failed", slog.String("id", id), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	if row == nil {
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
		return
	}

	content := ""
	if row.Path != "" && h.store.Exists(row.Path) {
		data, readErr := h.store.Read(row.Path)
		if readErr != nil {
			slog.Error("read item failed", slog.String("path", row.Path), slog.String("error", readErr.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
			return
		}
		content = string(data)
	}

	writeJSON(w, http.StatusOK, ItemDetail{ItemRow: *row, Content: content})
}

// GetAgenda handles GET /api/agenda. With ?format=html the markdown is
// rendered through goldmark; otherwise the raw document is returned.
func (h *Handler) GetAgenda(w http.ResponseWriter, r *http.Request) {
	if !h.store.Exists(agenda.FileName) {
		writeJSON(w, http.StatusNotFound, errorBody("agenda not initialized"))
		return
	}
	data, err := h.store.Read(agenda.FileName)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("agenda not initialized"))
			return
		}
		slog.Error("read agenda failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}

	if r.URL.Query().Get("format") == "html" {
		var buf bytes.Buffer
		if err := h.md.Convert(data, &buf); err != nil {
			slog.Error("render agenda failed", slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write(buf.Bytes())
		return
	}

	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	_, _ = w.Write(data)
}
