package domain

import (
	"context"
	"time"
)

// Filer sends an assembled submission to the filing backend
type Filer interface {
	Lodge(ctx context.Context, s Submission) (Result, error)
}

// Outcome names the audit result of a submit
type Outcome string

const (
	OutcomeSucceeded    Outcome = "succeeded"
	OutcomeFailed       Outcome = "failed"
	OutcomeUnauthorized Outcome = "unauthorized"
)

// Event is one audited submission outcome
type Event struct {
	ID        string        `json:"id"`
	SessionID string        `json:"session_id"`
	At        time.Time     `json:"at"`
	Kind      AgreementKind `json:"agreement_type"`
	Outcome   Outcome       `json:"outcome"`
	Label     string        `json:"label"`
	Type      string        `json:"type"`
	Counter   string        `json:"counterparty"`
	FileCount int           `json:"file_count"`
	Message   string        `json:"message,omitempty"`
}

// Recorder keeps an audit trail of submissions
type Recorder interface {
	Record(ctx context.Context, e Event) error
}

// History reads back recorded events for a session, newest first
type History interface {
	BySession(ctx context.Context, sessionID string, limit int) ([]Event, error)
}

// ReauthSignal is raised when the filing backend rejects the bearer credential
type ReauthSignal interface {
	ReauthRequired(ctx context.Context, sessionID string)
}

// ServicePort is implemented by the lodgement service
type ServicePort interface {
	Open(ctx context.Context, in OpenInput) (SessionView, error)
	Get(ctx context.Context, id string) (SessionView, error)
	SelectFiles(ctx context.Context, id string, files []FileInput) (SessionView, error)
	UpdateFields(ctx context.Context, id string, in FieldsUpdate) (SessionView, error)
	Preview(ctx context.Context, id string) (Preview, error)
	Submit(ctx context.Context, id string) (SubmitOutput, error)
	Reauthenticated(ctx context.Context, id string) (SessionView, error)
	Events(ctx context.Context, id string) ([]Event, error)
}
