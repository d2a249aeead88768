package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"caseguard-backend/internal/attachment"
	"caseguard-backend/internal/limiter"
)

var (
	quotaRejections = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "caseguard",
		Subsystem: "attachments",
		Name:      "quota_rejections_total",
		Help:      "Attachment batches rejected by a case quota",
	}, []string{"kind"})
	caseCountLookups = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "caseguard",
		Subsystem: "attachments",
		Name:      "case_count_lookups_total",
		Help:      "Lookups of items already attached to a case",
	}, []string{"kind", "result"})
	caseCountDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "caseguard",
		Subsystem: "attachments",
		Name:      "case_count_duration_seconds",
		Help:      "Duration of case count lookups in seconds",
		Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12),
	}, []string{"kind"})
	monitorValidations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "caseguard",
		Subsystem: "monitors",
		Name:      "validations_total",
		Help:      "Monitor field set validations by monitor type and outcome",
	}, []string{"type", "result"})
)

func init() {
	prometheus.MustRegister(quotaRejections)
	prometheus.MustRegister(caseCountLookups)
	prometheus.MustRegister(caseCountDuration)
	prometheus.MustRegister(monitorValidations)
}

func RecordQuotaRejection(kind attachment.Kind) {
	quotaRejections.WithLabelValues(string(kind)).Inc()
}

func RecordMonitorValidation(monitorType string, valid bool) {
	result := "invalid"
	if valid {
		result = "valid"
	}
	monitorValidations.WithLabelValues(monitorType, result).Inc()
}

// TrackedService counts and times every case lookup made by the limiters.
type TrackedService struct {
	wrapped limiter.AttachmentService
}

var _ limiter.AttachmentService = TrackedService{}

func NewTrackedService(service limiter.AttachmentService) limiter.AttachmentService {
	return TrackedService{wrapped: service}
}

func (t TrackedService) CountOfItemsOfKind(ctx context.Context, caseID string, kind attachment.Kind) (int, error) {
	start := time.Now()
	count, err := t.wrapped.CountOfItemsOfKind(ctx, caseID, kind)
	caseCountDuration.WithLabelValues(string(kind)).Observe(time.Since(start).Seconds())
	result := "ok"
	if err != nil {
		result = "error"
	}
	caseCountLookups.WithLabelValues(string(kind), result).Inc()
	return count, err
}
