// Package events defines the envelopes published on the patient topic.
package events

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	PatientEventSchemaVersion = 1
	DefaultPatientTopic       = "patient"
)

type PatientEventKind string

const (
	PatientCreated PatientEventKind = "CREATED"
	PatientUpdated PatientEventKind = "UPDATED"
)

func (k PatientEventKind) Valid() bool {
	return k == PatientCreated || k == PatientUpdated
}

// PatientEvent is keyed by PatientID on the wire. Consumers dedupe on EventID.
type PatientEvent struct {
	EventID       string           `json:"event_id"`
	EventKind     PatientEventKind `json:"event_kind"`
	PatientID     string           `json:"patient_id"`
	Name          string           `json:"name"`
	Email         string           `json:"email"`
	Timestamp     time.Time        `json:"timestamp"`
	SourceService string           `json:"source_service"`
	SchemaVersion int              `json:"schema_version"`
}

func (e PatientEvent) Encode() ([]byte, error) {
	return json.Marshal(e)
}

func DecodePatientEvent(payload []byte) (PatientEvent, error) {
	var evt PatientEvent
	if err := json.Unmarshal(payload, &evt); err != nil {
		return PatientEvent{}, fmt.Errorf("decode patient event: %w", err)
	}
	if strings.TrimSpace(evt.EventID) == "" {
		return PatientEvent{}, errors.New("patient event missing event_id")
	}
	if strings.TrimSpace(evt.PatientID) == "" {
		return PatientEvent{}, errors.New("patient event missing patient_id")
	}
	if !evt.EventKind.Valid() {
		return PatientEvent{}, fmt.Errorf("unknown patient event kind %q", evt.EventKind)
	}
	return evt, nil
}
