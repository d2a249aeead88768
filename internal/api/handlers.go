package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"caseguard-backend/internal/attachment"
	"caseguard-backend/internal/bus"
	"caseguard-backend/internal/limiter"
	"caseguard-backend/internal/metrics"
	"caseguard-backend/internal/monitor"
	"caseguard-backend/internal/slo"
	"caseguard-backend/internal/storage"
)

type AttachmentStore interface {
	CreateAttachments(ctx context.Context, caseID string, requests []attachment.Request) ([]string, error)
	ListAttachments(ctx context.Context, caseID string) ([]storage.AttachmentRecord, error)
	GetAttachment(ctx context.Context, caseID, id string) (storage.AttachmentRecord, error)
}

type EventPublisher interface {
	Publish(subject string, payload any) error
}

type Handler struct {
	Repo    AttachmentStore
	Counter limiter.AttachmentService
	Bus     EventPublisher
	Limits  limiter.Limits
	Timeout time.Duration
	Logger  *slog.Logger
}

type errorResponse struct {
	Ok      bool                     `json:"ok"`
	Code    string                   `json:"code"`
	Message string                   `json:"message"`
	Details []attachment.ErrorDetail `json:"details"`
}

type attachmentsRequest struct {
	Attachments []attachment.Request `json:"attachments"`
}

type monitorValidateRequest struct {
	Type   string                `json:"type"`
	Fields monitor.MonitorFields `json:"fields"`
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/health", handleHealth)
	r.Route("/cases/{caseId}/attachments", func(r chi.Router) {
		r.Post("/validate", h.handleAttachmentsValidate)
		r.Post("/", h.handleAttachmentsCreate)
		r.Get("/", h.handleAttachmentsList)
		r.Get("/{id}", h.handleAttachmentGet)
	})
	r.Post("/monitors/validate", h.handleMonitorValidate)
	r.Post("/slos/validate", h.handleSLOValidate)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) handleAttachmentsValidate(w http.ResponseWriter, r *http.Request) {
	caseID, requests, ok := h.decodeAttachments(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()
	if !h.checkQuotas(ctx, w, caseID, requests) {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (h *Handler) handleAttachmentsCreate(w http.ResponseWriter, r *http.Request) {
	caseID, requests, ok := h.decodeAttachments(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()
	if !h.checkQuotas(ctx, w, caseID, requests) {
		return
	}
	ids, err := h.Repo.CreateAttachments(ctx, caseID, requests)
	if err != nil {
		h.logger().Error("failed to store attachments", slog.String("caseId", caseID), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, map[string]any{"ok": false, "message": "failed to store attachments"})
		return
	}
	h.publish(bus.SubjectAttachmentsAdded, bus.AttachmentsAdded{
		CaseID:        caseID,
		AttachmentIDs: ids,
		Alerts:        limiter.NewAlertLimiter(h.Limits.MaxAlertsPerCase).CountOfItemsInRequest(requests),
		Files:         limiter.NewFileLimiter(h.Limits.MaxFilesPerCase).CountOfItemsInRequest(requests),
	})
	writeJSON(w, http.StatusCreated, map[string]any{"ok": true, "ids": ids})
}

func (h *Handler) handleAttachmentsList(w http.ResponseWriter, r *http.Request) {
	caseID := strings.TrimSpace(chi.URLParam(r, "caseId"))
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()
	records, err := h.Repo.ListAttachments(ctx, caseID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]any{"ok": false, "message": "failed to fetch attachments"})
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (h *Handler) handleAttachmentGet(w http.ResponseWriter, r *http.Request) {
	caseID := strings.TrimSpace(chi.URLParam(r, "caseId"))
	id := chi.URLParam(r, "id")
	if _, err := uuid.Parse(id); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"ok": false, "message": "invalid attachment id"})
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()
	rec, err := h.Repo.GetAttachment(ctx, caseID, id)
	if errors.Is(err, storage.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]any{"ok": false, "message": "attachment not found"})
		return
	}
	if err != nil {
		h.logger().Error("failed to fetch attachment", slog.String("caseId", caseID), slog.String("id", id), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, map[string]any{"ok": false, "message": "failed to fetch attachment"})
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (h *Handler) handleMonitorValidate(w http.ResponseWriter, r *http.Request) {
	var req monitorValidateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"ok": false, "message": err.Error()})
		return
	}
	monitorType, err := monitor.ParseDataStream(req.Type)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Code:    "MONITOR_TYPE_UNKNOWN",
			Message: err.Error(),
			Details: []attachment.ErrorDetail{{Field: "type", Problem: "unsupported", Hint: "Use http, tcp, icmp or browser"}},
		})
		return
	}
	invalid, err := monitor.InvalidFields(monitorType, req.Fields)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]any{"ok": false, "message": err.Error()})
		return
	}
	metrics.RecordMonitorValidation(string(monitorType), len(invalid) == 0)
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "valid": len(invalid) == 0, "invalidFields": invalid})
}

func (h *Handler) handleSLOValidate(w http.ResponseWriter, r *http.Request) {
	var form slo.MapForm
	if err := decodeJSON(r, &form); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"ok": false, "message": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, slo.SectionValidity(form))
}

func (h *Handler) decodeAttachments(w http.ResponseWriter, r *http.Request) (string, []attachment.Request, bool) {
	caseID := strings.TrimSpace(chi.URLParam(r, "caseId"))
	var req attachmentsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"ok": false, "message": err.Error()})
		return "", nil, false
	}
	if reqErr := attachment.ValidateRequests(req.Attachments); reqErr != nil {
		writeRequestError(w, reqErr)
		return "", nil, false
	}
	return caseID, req.Attachments, true
}

// checkQuotas writes the error response and returns false when the batch may
// not be attached.
func (h *Handler) checkQuotas(ctx context.Context, w http.ResponseWriter, caseID string, requests []attachment.Request) bool {
	checker := limiter.NewAttachmentLimitChecker(h.Counter, caseID, h.Limits)
	err := checker.Validate(ctx, requests)
	if err == nil {
		return true
	}
	var quotaErr *limiter.QuotaExceededError
	if errors.As(err, &quotaErr) {
		metrics.RecordQuotaRejection(quotaErr.Kind)
		h.publish(bus.SubjectAttachmentsRejected, bus.AttachmentsRejected{
			CaseID:  caseID,
			Kind:    string(quotaErr.Kind),
			Limit:   quotaErr.Limit,
			Message: quotaErr.Message,
		})
		writeJSON(w, quotaErr.StatusCode(), errorResponse{
			Code:    "QUOTA_EXCEEDED",
			Message: quotaErr.Message,
			Details: []attachment.ErrorDetail{{Field: "attachments", Problem: "quota_exceeded"}},
		})
		return false
	}
	h.logger().Error("failed to count case attachments", slog.String("caseId", caseID), slog.String("error", err.Error()))
	writeJSON(w, http.StatusBadGateway, map[string]any{"ok": false, "message": "failed to count case attachments"})
	return false
}

// publish is best effort; the HTTP outcome never depends on the bus.
func (h *Handler) publish(subject string, payload any) {
	if h.Bus == nil {
		return
	}
	if err := h.Bus.Publish(subject, payload); err != nil {
		h.logger().Warn("failed to publish event", slog.String("subject", subject), slog.String("error", err.Error()))
	}
}

func (h *Handler) logger() *slog.Logger {
	if h.Logger == nil {
		return slog.Default()
	}
	return h.Logger
}

func writeRequestError(w http.ResponseWriter, reqErr *attachment.RequestError) {
	writeJSON(w, http.StatusBadRequest, errorResponse{
		Ok:      false,
		Code:    reqErr.Code,
		Message: reqErr.Message,
		Details: reqErr.Details,
	})
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
