package limiter

import (
	"context"

	"caseguard-backend/internal/attachment"
)

// AttachmentLimitChecker rejects attachment batches that would push a case over
// any of its quotas.
type AttachmentLimitChecker struct {
	limiters []Limiter
	service  AttachmentService
	caseID   string
}

func NewAttachmentLimitChecker(service AttachmentService, caseID string, limits Limits) *AttachmentLimitChecker {
	return &AttachmentLimitChecker{
		limiters: []Limiter{
			NewAlertLimiter(limits.MaxAlertsPerCase),
			NewFileLimiter(limits.MaxFilesPerCase),
		},
		service: service,
		caseID:  caseID,
	}
}

// Validate checks limiters in order and returns the first violation. The case
// is only queried when the batch has matching items and does not already
// exceed the limit on its own.
func (c *AttachmentLimitChecker) Validate(ctx context.Context, requests []attachment.Request) error {
	for _, limiter := range c.limiters {
		itemsWithinRequests := limiter.CountOfItemsInRequest(requests)
		if itemsWithinRequests == 0 {
			continue
		}
		if itemsWithinRequests > limiter.Limit() {
			return quotaExceeded(limiter)
		}
		itemsWithinCase, err := limiter.CountOfItemsWithinCase(ctx, c.service, c.caseID)
		if err != nil {
			return err
		}
		if itemsWithinRequests+itemsWithinCase > limiter.Limit() {
			return quotaExceeded(limiter)
		}
	}
	return nil
}

func quotaExceeded(limiter Limiter) *QuotaExceededError {
	return &QuotaExceededError{Kind: limiter.Kind(), Limit: limiter.Limit(), Message: limiter.ErrorMessage()}
}
