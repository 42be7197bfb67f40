package telemetry

import (
	"context"
	"fmt"
	"strconv"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// WorkflowMetrics records contract workflow counters. A nil *WorkflowMetrics
// is valid and records nothing.
type WorkflowMetrics struct {
	transitions   metric.Int64Counter
	lockConflicts metric.Int64Counter
	uploads       metric.Int64Counter
}

// NewWorkflowMetrics registers the workflow instruments on mp.
func NewWorkflowMetrics(mp metric.MeterProvider) (*WorkflowMetrics, error) {
	meter := mp.Meter("github.com/ghuser/contractflow/contract")

	transitions, err := meter.Int64Counter("contract_transitions_total",
		metric.WithDescription("Contract status transitions by source and target status."))
	if err != nil {
		return nil, fmt.Errorf("transitions counter: %w", err)
	}
	lockConflicts, err := meter.Int64Counter("contract_lock_conflicts_total",
		metric.WithDescription("Lock acquisitions rejected because another operator holds the contract."))
	if err != nil {
		return nil, fmt.Errorf("lock conflicts counter: %w", err)
	}
	uploads, err := meter.Int64Counter("contract_documents_uploaded_total",
		metric.WithDescription("Documents stored for contracts by MIME type."))
	if err != nil {
		return nil, fmt.Errorf("uploads counter: %w", err)
	}
	return &WorkflowMetrics{transitions: transitions, lockConflicts: lockConflicts, uploads: uploads}, nil
}

func (m *WorkflowMetrics) Transition(ctx context.Context, from, to string, automated, forced bool) {
	if m == nil {
		return
	}
	m.transitions.Add(ctx, 1, metric.WithAttributes(
		attribute.String("from", from),
		attribute.String("to", to),
		attribute.String("automated", strconv.FormatBool(automated)),
		attribute.String("forced", strconv.FormatBool(forced)),
	))
}

func (m *WorkflowMetrics) LockConflict(ctx context.Context) {
	if m == nil {
		return
	}
	m.lockConflicts.Add(ctx, 1)
}

func (m *WorkflowMetrics) DocumentUploaded(ctx context.Context, mimeType string) {
	if m == nil {
		return
	}
	m.uploads.Add(ctx, 1, metric.WithAttributes(attribute.String("mime_type", mimeType)))
}
