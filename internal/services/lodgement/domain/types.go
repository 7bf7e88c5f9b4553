// Package domain holds lodgement session types independent of transport or storage
package domain

import (
	"net/url"
	"strings"

	"lodgement/internal/core/filecodec"
	"lodgement/internal/core/routing"
	perr "lodgement/internal/platform/errors"
)

// AgreementKind selects the submission mode and which routing table applies
type AgreementKind string

const (
	// KindContract is a single file contract lodgement
	KindContract AgreementKind = "contract"

	// KindContractMulti is a contract lodgement that may carry several files
	KindContractMulti AgreementKind = "contract_multi"

	// KindEOI is an expression of interest lodgement
	KindEOI AgreementKind = "eoi"
)

// ParseAgreementKind accepts the wire values; empty means contract
func ParseAgreementKind(s string) (AgreementKind, error) {
	switch AgreementKind(strings.ToLower(strings.TrimSpace(s))) {
	case "", KindContract:
		return KindContract, nil
	case KindContractMulti:
		return KindContractMulti, nil
	case KindEOI:
		return KindEOI, nil
	}
	return "", perr.WithField(perr.InvalidArgf("unknown agreement type %q", s), "agreement_type")
}

// MultiFile reports whether more than one file may be selected
func (k AgreementKind) MultiFile() bool { return k == KindContractMulti }

// Table is the routing table this kind is routed with
func (k AgreementKind) Table() routing.TableName {
	if k == KindEOI {
		return routing.EOI
	}
	return routing.Contract
}

// State is a step of the submission state machine
type State string

const (
	StateIdle          State = "idle"
	StateFilesSelected State = "files_selected"
	StateValidating    State = "validating"
	StateSubmitting    State = "submitting"
	StateSucceeded     State = "succeeded"
	StateFailed        State = "failed"
)

// Field names shared by the form, the navigation target and validation errors
const (
	FieldBusinessName = "business_name"
	FieldCategory     = "category"
	FieldType         = "type"
	FieldNMI          = "nmi"
	FieldMIRN         = "mirn"
	FieldFiles        = "files"
	FieldPending      = "pending_transfer"
	FieldTransferKey  = "transfer_key"
)

// Fields is the classification an operator confirms before submitting
type Fields struct {
	BusinessName string `json:"business_name"`
	Category     string `json:"category"`
	Type         string `json:"type"`
	NMI          string `json:"nmi"`
	MIRN         string `json:"mirn"`
}

// Get returns the value of a named field
func (f Fields) Get(name string) string {
	switch name {
	case FieldBusinessName:
		return f.BusinessName
	case FieldCategory:
		return f.Category
	case FieldType:
		return f.Type
	case FieldNMI:
		return f.NMI
	case FieldMIRN:
		return f.MIRN
	}
	return ""
}

// Set assigns a named field; unknown names are ignored
func (f *Fields) Set(name, v string) {
	switch name {
	case FieldBusinessName:
		f.BusinessName = v
	case FieldCategory:
		f.Category = v
	case FieldType:
		f.Type = v
	case FieldNMI:
		f.NMI = v
	case FieldMIRN:
		f.MIRN = v
	}
}

// FieldNames lists the classification fields in form order
var FieldNames = []string{FieldBusinessName, FieldCategory, FieldType, FieldNMI, FieldMIRN}

// NavParams are the plain key/value parameters carried on the navigation target
type NavParams struct {
	Fields      Fields
	Pending     bool
	TransferKey string
}

// ParseNav reads navigation parameters; pending_transfer accepts 1 or true
func ParseNav(q url.Values) NavParams {
	var n NavParams
	for _, name := range FieldNames {
		n.Fields.Set(name, q.Get(name))
	}
	switch strings.ToLower(strings.TrimSpace(q.Get(FieldPending))) {
	case "1", "true":
		n.Pending = true
	}
	n.TransferKey = q.Get(FieldTransferKey)
	return n
}

// Values formats the parameters, omitting empty ones
func (n NavParams) Values() url.Values {
	q := url.Values{}
	for _, name := range FieldNames {
		if v := n.Fields.Get(name); v != "" {
			q.Set(name, v)
		}
	}
	if n.Pending {
		q.Set(FieldPending, "1")
	}
	if n.TransferKey != "" {
		q.Set(FieldTransferKey, n.TransferKey)
	}
	return q
}

// Supplied lists the fields that arrived with a value
func (n NavParams) Supplied() []string {
	var out []string
	for _, name := range FieldNames {
		if n.Fields.Get(name) != "" {
			out = append(out, name)
		}
	}
	return out
}

// Submission is the outbound request assembled at submit time
type Submission struct {
	Kind           AgreementKind
	Label          string
	Classification string
	Files          []filecodec.File
	FileCount      int
}

// Check enforces the file count invariants
func (s Submission) Check() error {
	if len(s.Files) == 0 {
		return perr.WithField(perr.Newf(perr.CodeValidation, "select at least one file"), FieldFiles)
	}
	if s.FileCount != len(s.Files) {
		return perr.Internalf("file count %d does not match %d files", s.FileCount, len(s.Files))
	}
	if !s.Kind.MultiFile() && s.FileCount != 1 {
		return perr.WithField(perr.Newf(perr.CodeValidation, "only one file may be lodged for %s", s.Kind), FieldFiles)
	}
	return nil
}

// Result is the filing backend's answer to a successful submission
type Result struct {
	Message string `json:"message,omitempty"`
}
