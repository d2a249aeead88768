package main

import (
	"log/slog"
	"net/http"
	"strings"
	"sync"

	attachcount "caseguard-backend"
	"caseguard-backend/internal/attachment"
)

type CounterFactory func(cfg attachcount.ConnectionConfig) (attachcount.Counter, error)

// Handler serves case attachment counts from the configured SQL backend. The
// backend is opened on first use and reused afterwards.
type Handler struct {
	Connection     attachcount.ConnectionConfig
	CounterFactory CounterFactory
	Logger         *slog.Logger

	mu      sync.Mutex
	counter attachcount.Counter
}

func NewHandler(connection attachcount.ConnectionConfig, factory CounterFactory, logger *slog.Logger) *Handler {
	return &Handler{Connection: connection, CounterFactory: factory, Logger: logger}
}

func (h *Handler) HandleCount(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
		return
	}
	var req countRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.CaseID) == "" {
		writeError(w, http.StatusBadRequest, codeInvalidRequest, "caseId is required")
		return
	}
	kind, err := attachment.ParseKind(req.Kind)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidRequest, err.Error())
		return
	}
	counter, err := h.sharedCounter()
	if err != nil {
		writeError(w, http.StatusBadGateway, codeBackendUnavailable, err.Error())
		return
	}
	count, err := counter.CountOfItemsOfKind(r.Context(), req.CaseID, kind)
	if err != nil {
		h.Logger.Error("count failed", slog.String("caseId", req.CaseID), slog.String("kind", string(kind)), slog.String("error", err.Error()))
		writeError(w, http.StatusBadGateway, codeCountFailed, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"caseId": req.CaseID, "kind": kind, "count": count})
}

// HandleTestConnection pings the configured backend, or a one-off connection
// supplied in the request body.
func (h *Handler) HandleTestConnection(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
		return
	}
	var req testConnectionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidRequest, err.Error())
		return
	}
	if req.Connection != nil {
		conn, err := h.CounterFactory(*req.Connection)
		if err != nil {
			writeJSON(w, http.StatusOK, map[string]any{"ok": false, "error": err.Error()})
			return
		}
		defer conn.Close()
		if err := conn.TestConnection(r.Context()); err != nil {
			writeJSON(w, http.StatusOK, map[string]any{"ok": false, "error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
		return
	}
	counter, err := h.sharedCounter()
	if err != nil {
		writeJSON(w, http.StatusOK, map[string]any{"ok": false, "error": err.Error()})
		return
	}
	if err := counter.TestConnection(r.Context()); err != nil {
		writeJSON(w, http.StatusOK, map[string]any{"ok": false, "error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (h *Handler) sharedCounter() (attachcount.Counter, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.counter != nil {
		return h.counter, nil
	}
	counter, err := h.CounterFactory(h.Connection)
	if err != nil {
		return nil, err
	}
	h.counter = counter
	return counter, nil
}

func (h *Handler) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.counter == nil {
		return nil
	}
	err := h.counter.Close()
	h.counter = nil
	return err
}
