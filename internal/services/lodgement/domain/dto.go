package domain

import (
	"time"

	"lodgement/internal/core/identifier"
)

// OpenInput starts a lodgement session from a navigation target
type OpenInput struct {
	Origin string
	Kind   AgreementKind
	Nav    NavParams
}

// FileInput is one selected document
type FileInput struct {
	Name      string
	MediaType string
	Content   []byte
}

// FieldsUpdate edits classification fields; nil leaves a field untouched
type FieldsUpdate struct {
	BusinessName *string `json:"business_name,omitempty" validate:"omitempty,max=200"`
	Category     *string `json:"category,omitempty"      validate:"omitempty,max=120"`
	Type         *string `json:"type,omitempty"          validate:"omitempty,max=200"`
	NMI          *string `json:"nmi,omitempty"           validate:"omitempty,max=32"`
	MIRN         *string `json:"mirn,omitempty"          validate:"omitempty,max=32"`
	Kind         *string `json:"agreement_type,omitempty" validate:"omitempty,oneof=contract contract_multi eoi"`
}

// FileView describes a selected file without its content
type FileView struct {
	Name      string `json:"name"       example:"agreement.pdf"`
	MediaType string `json:"media_type" example:"application/pdf"`
	Size      int    `json:"size"       example:"18342"`
}

// TransferView reports how the pending handoff resolved when the session opened
type TransferView struct {
	Requested bool   `json:"requested"`
	Delivered bool   `json:"delivered"`
	Via       string `json:"via,omitempty" example:"session"`
	Message   string `json:"message,omitempty"`
}

// SessionView is the observable state of a lodgement session
type SessionView struct {
	ID             string        `json:"id"              example:"4f1c2f0e-8c1e-4d55-9d3c-1c3f9c1d2a10"`
	Kind           AgreementKind `json:"agreement_type"  example:"contract"`
	State          State         `json:"state"           example:"files_selected"`
	Fields         Fields        `json:"fields"`
	Sticky         []string      `json:"sticky,omitempty"`
	Files          []FileView    `json:"files"`
	FileCount      int           `json:"file_count"`
	Message        string        `json:"message,omitempty"`
	LastOutcome    Outcome       `json:"last_outcome,omitempty"`
	ErrorField     string        `json:"error_field,omitempty"`
	ReauthRequired bool          `json:"reauth_required"`
	Transfer       TransferView  `json:"transfer"`
	UpdatedAt      time.Time     `json:"updated_at"`
}

// Preview is where a submission would be routed and under which label
type Preview struct {
	Table       string          `json:"table"        example:"contract"`
	MatchKey    string          `json:"match_key"    example:"Origin C&I Electricity"`
	DisplayName string          `json:"display_name" example:"Origin Energy"`
	Emails      []string        `json:"emails"`
	Default     bool            `json:"default"`
	Identifier  identifier.Spec `json:"identifier"`
	Offered     []string        `json:"offered_fields"`
	Label       string          `json:"label"        example:"Acme Pty Ltd NMI: 4102345678"`
}

// SubmitOutput is the outcome of one submit action
type SubmitOutput struct {
	Session SessionView `json:"session"`
	Result  Result      `json:"result"`
}
