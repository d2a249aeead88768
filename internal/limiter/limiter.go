package limiter

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"caseguard-backend/internal/attachment"
)

const (
	MaxAlertsPerCase = 1000
	MaxFilesPerCase  = 100
)

// AttachmentService counts what is already attached to a case.
type AttachmentService interface {
	CountOfItemsOfKind(ctx context.Context, caseID string, kind attachment.Kind) (int, error)
}

// Limiter enforces the maximum number of one kind of item per case.
type Limiter interface {
	Kind() attachment.Kind
	Limit() int
	ErrorMessage() string
	CountOfItemsInRequest(requests []attachment.Request) int
	CountOfItemsWithinCase(ctx context.Context, service AttachmentService, caseID string) (int, error)
}

type Limits struct {
	MaxAlertsPerCase int `yaml:"maxAlertsPerCase"`
	MaxFilesPerCase  int `yaml:"maxFilesPerCase"`
}

func DefaultLimits() Limits {
	return Limits{
		MaxAlertsPerCase: MaxAlertsPerCase,
		MaxFilesPerCase:  MaxFilesPerCase,
	}
}

var ErrQuotaExceeded = errors.New("quota exceeded")

// QuotaExceededError is a client error: the batch must be rejected as a whole.
type QuotaExceededError struct {
	Kind    attachment.Kind
	Limit   int
	Message string
}

func (e *QuotaExceededError) Error() string {
	return e.Message
}

func (e *QuotaExceededError) Is(target error) bool {
	return target == ErrQuotaExceeded
}

func (e *QuotaExceededError) StatusCode() int {
	return http.StatusBadRequest
}

// baseLimiter holds what every limiter shares: the quota and how to look up
// the case-side count.
type baseLimiter struct {
	kind     attachment.Kind
	limit    int
	itemName string
}

func (b baseLimiter) Kind() attachment.Kind {
	return b.kind
}

func (b baseLimiter) Limit() int {
	return b.limit
}

func (b baseLimiter) ErrorMessage() string {
	return fmt.Sprintf("Case has reached the maximum allowed number (%d) of attached %s.", b.limit, b.itemName)
}

func (b baseLimiter) CountOfItemsWithinCase(ctx context.Context, service AttachmentService, caseID string) (int, error) {
	count, err := service.CountOfItemsOfKind(ctx, caseID, b.kind)
	if err != nil {
		return 0, fmt.Errorf("count %s within case %s: %w", b.itemName, caseID, err)
	}
	return count, nil
}

type AlertLimiter struct {
	baseLimiter
}

func NewAlertLimiter(limit int) *AlertLimiter {
	return &AlertLimiter{baseLimiter{kind: attachment.KindAlert, limit: limit, itemName: "alerts"}}
}

// CountOfItemsInRequest counts alert ids, not alert requests: one request may
// attach several alerts.
func (l *AlertLimiter) CountOfItemsInRequest(requests []attachment.Request) int {
	total := 0
	for _, req := range requests {
		if req.IsAlert() {
			total += len(req.AlertIDs())
		}
	}
	return total
}

type FileLimiter struct {
	baseLimiter
}

func NewFileLimiter(limit int) *FileLimiter {
	return &FileLimiter{baseLimiter{kind: attachment.KindFile, limit: limit, itemName: "files"}}
}

func (l *FileLimiter) CountOfItemsInRequest(requests []attachment.Request) int {
	total := 0
	for _, req := range requests {
		if req.IsFile() {
			total++
		}
	}
	return total
}
