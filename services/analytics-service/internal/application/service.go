package application

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/patientmesh/mesh/contracts/events"
	"github.com/patientmesh/mesh/services/analytics-service/internal/domain"
	"github.com/patientmesh/mesh/services/analytics-service/internal/ports"
)

type Outcome string

const (
	OutcomeCounted   Outcome = "counted"
	OutcomeDuplicate Outcome = "duplicate"
)

type Service struct {
	dedup ports.Deduplicator

	mu     sync.Mutex
	counts map[events.PatientEventKind]int64
}

func NewService(dedup ports.Deduplicator) *Service {
	return &Service{
		dedup:  dedup,
		counts: make(map[events.PatientEventKind]int64),
	}
}

// HandlePatientEvent counts each distinct event once. Redeliveries are
// reported as duplicates and otherwise ignored.
func (s *Service) HandlePatientEvent(ctx context.Context, payload []byte) (Outcome, error) {
	evt, err := events.DecodePatientEvent(payload)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrInvalidEvent, err)
	}

	first, err := s.dedup.MarkSeen(ctx, evt.EventID)
	if err != nil && ctx.Err() != nil {
		return "", fmt.Errorf("mark event %s seen: %w", evt.EventID, ctx.Err())
	}
	if err != nil {
		// Counting twice beats dropping an event when the store is down.
		slog.Default().WarnContext(ctx, "dedup store unavailable, counting event",
			"module", "analytics",
			"layer", "application",
			"operation", "handle_patient_event",
			"event_id", evt.EventID,
			"error", err,
		)
		first = true
	}
	if !first {
		slog.Default().InfoContext(ctx, "duplicate patient event ignored",
			"module", "analytics",
			"layer", "application",
			"operation", "handle_patient_event",
			"outcome", string(OutcomeDuplicate),
			"event_id", evt.EventID,
		)
		return OutcomeDuplicate, nil
	}

	s.mu.Lock()
	s.counts[evt.EventKind]++
	total := s.counts[evt.EventKind]
	s.mu.Unlock()

	slog.Default().InfoContext(ctx, "patient event received",
		"module", "analytics",
		"layer", "application",
		"operation", "handle_patient_event",
		"outcome", string(OutcomeCounted),
		"event_id", evt.EventID,
		"event_kind", string(evt.EventKind),
		"patient_id", evt.PatientID,
		"kind_total", total,
	)
	return OutcomeCounted, nil
}

// Counts returns a copy of the per kind totals.
func (s *Service) Counts() map[events.PatientEventKind]int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[events.PatientEventKind]int64, len(s.counts))
	for k, v := range s.counts {
		out[k] = v
	}
	return out
}
