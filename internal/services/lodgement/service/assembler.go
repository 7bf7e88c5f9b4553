package service

import (
	"path/filepath"
	"strings"
	"sync"
	"time"

	"lodgement/internal/core/filecodec"
	"lodgement/internal/core/identifier"
	perr "lodgement/internal/platform/errors"
	"lodgement/internal/services/lodgement/domain"
)

// recognised document extensions, lowercased with the dot
var documentExts = map[string]struct{}{
	".pdf": {}, ".doc": {}, ".docx": {}, ".xls": {}, ".xlsx": {}, ".csv": {},
	".png": {}, ".jpg": {}, ".jpeg": {}, ".txt": {}, ".msg": {}, ".eml": {},
}

// Recognised reports whether name carries a supported document extension
func Recognised(name string) bool {
	_, ok := documentExts[strings.ToLower(filepath.Ext(name))]
	return ok
}

// Assembler is one operator's submission state machine.
// All methods are safe for concurrent use; at most one submit is in flight
type Assembler struct {
	mu sync.Mutex

	id       string
	kind     domain.AgreementKind
	state    domain.State
	fields   domain.Fields
	sticky   map[string]bool
	files    []filecodec.File
	message  string
	errField string
	reauth   bool
	outcome  domain.Outcome
	transfer domain.TransferView
	updated  time.Time

	now func() time.Time
}

// NewAssembler starts in Idle with the navigation fields applied and marked sticky
func NewAssembler(id string, kind domain.AgreementKind, nav domain.NavParams, now func() time.Time) *Assembler {
	if now == nil {
		now = time.Now
	}
	a := &Assembler{
		id:     id,
		kind:   kind,
		state:  domain.StateIdle,
		fields: nav.Fields,
		sticky: map[string]bool{},
		now:    now,
	}
	for _, f := range nav.Supplied() {
		a.sticky[f] = true
	}
	a.updated = now()
	return a
}

// ID returns the session id
func (a *Assembler) ID() string { return a.id }

// State returns the current state
func (a *Assembler) State() domain.State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

func (a *Assembler) touch() { a.updated = a.now() }

// fail records a validation or state error on the view and returns it unchanged
func (a *Assembler) fail(err error) error {
	w := perr.WireFrom(err)
	a.message, a.errField = w.Message, w.Field
	a.touch()
	return err
}

func validation(field, format string, args ...any) error {
	return perr.WithField(perr.Newf(perr.CodeValidation, format, args...), field)
}

func (a *Assembler) guardLocked() error {
	if a.state == domain.StateSubmitting {
		return perr.Conflictf("a submission is already in flight")
	}
	if a.reauth {
		return perr.Unauthorizedf("reauthentication required")
	}
	return nil
}

// SelectFiles replaces the selection. Unknown extensions and extra files for a single file
// kind are rejected and leave the state as it was
func (a *Assembler) SelectFiles(files []filecodec.File) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.selectLocked(files)
}

func (a *Assembler) selectLocked(files []filecodec.File) error {
	if err := a.guardLocked(); err != nil {
		return err
	}
	if len(files) == 0 {
		return a.fail(validation(domain.FieldFiles, "select at least one file"))
	}
	for _, f := range files {
		if !Recognised(f.Name) {
			return a.fail(validation(domain.FieldFiles, "%q is not a recognised document type", f.Name))
		}
	}
	if !a.kind.MultiFile() && len(files) > 1 {
		return a.fail(validation(domain.FieldFiles, "only one file may be lodged for %s", a.kind))
	}
	a.files = append([]filecodec.File(nil), files...)
	a.state = domain.StateFilesSelected
	a.message, a.errField = "", ""
	a.touch()
	return nil
}

// Attach selects a single file; a handoff delivery goes through the same checks as manual selection
func (a *Assembler) Attach(f filecodec.File, fromHandoff bool, via string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if fromHandoff {
		a.transfer = domain.TransferView{Requested: true, Delivered: true, Via: via}
	}
	err := a.selectLocked([]filecodec.File{f})
	if err != nil && fromHandoff {
		a.transfer.Delivered = false
		a.transfer.Message = perr.WireFrom(err).Message
	}
	return err
}

// NoTransfer records that a pending handoff found nothing
func (a *Assembler) NoTransfer(msg string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.transfer = domain.TransferView{Requested: true, Message: msg}
	a.touch()
}

// UpdateFields applies edits. Editing a field to a new value drops its navigation stickiness
func (a *Assembler) UpdateFields(in domain.FieldsUpdate) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state == domain.StateSubmitting {
		return perr.Conflictf("a submission is already in flight")
	}
	if in.Kind != nil {
		k, err := domain.ParseAgreementKind(*in.Kind)
		if err != nil {
			return a.fail(err)
		}
		if !k.MultiFile() && len(a.files) > 1 {
			return a.fail(validation(domain.FieldFiles, "only one file may be lodged for %s", k))
		}
		a.kind = k
	}
	set := func(name string, v *string) {
		if v == nil {
			return
		}
		if a.fields.Get(name) != *v {
			delete(a.sticky, name)
		}
		a.fields.Set(name, *v)
	}
	set(domain.FieldBusinessName, in.BusinessName)
	set(domain.FieldCategory, in.Category)
	set(domain.FieldType, in.Type)
	set(domain.FieldNMI, in.NMI)
	set(domain.FieldMIRN, in.MIRN)
	a.message, a.errField = "", ""
	a.touch()
	return nil
}

// begin validates and moves to Submitting, returning the submission to dispatch
func (a *Assembler) begin() (domain.Submission, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.guardLocked(); err != nil {
		return domain.Submission{}, err
	}
	if len(a.files) == 0 {
		return domain.Submission{}, a.fail(validation(domain.FieldFiles, "select at least one file"))
	}

	a.state = domain.StateValidating
	back := func(err error) (domain.Submission, error) {
		a.state = domain.StateFilesSelected
		return domain.Submission{}, a.fail(err)
	}
	if strings.TrimSpace(a.fields.Type) == "" {
		return back(validation(domain.FieldType, "select a contract or service type"))
	}
	if strings.TrimSpace(a.fields.BusinessName) == "" {
		return back(validation(domain.FieldBusinessName, "business name is required"))
	}
	sub := domain.Submission{
		Kind:           a.kind,
		Label:          identifier.ComposeLabel(a.fields.BusinessName, a.fields.NMI, a.fields.MIRN),
		Classification: a.fields.Type,
		Files:          append([]filecodec.File(nil), a.files...),
		FileCount:      len(a.files),
	}
	if err := sub.Check(); err != nil {
		return back(err)
	}

	a.state = domain.StateSubmitting
	a.message, a.errField = "", ""
	a.touch()
	return sub, nil
}

// finish applies the filing outcome and reports how it should be audited
func (a *Assembler) finish(res domain.Result, err error) domain.Outcome {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.touch()

	if err == nil {
		a.outcome = domain.OutcomeSucceeded
		a.state = domain.StateSucceeded
		a.files = nil
		a.message, a.errField = res.Message, ""
		kept := domain.Fields{}
		for _, name := range domain.FieldNames {
			if a.sticky[name] {
				kept.Set(name, a.fields.Get(name))
			}
		}
		a.fields = kept
		return domain.OutcomeSucceeded
	}

	a.message, a.errField = perr.WireFrom(err).Message, ""
	if perr.IsCode(err, perr.CodeUnauthorized) {
		a.outcome = domain.OutcomeUnauthorized
		a.state = domain.StateFailed
		a.reauth = true
		return a.outcome
	}
	a.outcome = domain.OutcomeFailed
	a.state = domain.StateFilesSelected
	return a.outcome
}

// Reauthenticated releases a session held at Failed after a 401
func (a *Assembler) Reauthenticated() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.reauth {
		return
	}
	a.reauth = false
	a.message = ""
	if len(a.files) > 0 {
		a.state = domain.StateFilesSelected
	} else {
		a.state = domain.StateIdle
	}
	a.touch()
}

// Snapshot returns the fields and kind used for previews
func (a *Assembler) Snapshot() (domain.AgreementKind, domain.Fields) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.kind, a.fields
}

// View returns the observable state
func (a *Assembler) View() domain.SessionView {
	a.mu.Lock()
	defer a.mu.Unlock()
	v := domain.SessionView{
		ID:             a.id,
		Kind:           a.kind,
		State:          a.state,
		Fields:         a.fields,
		Files:          make([]domain.FileView, 0, len(a.files)),
		FileCount:      len(a.files),
		Message:        a.message,
		LastOutcome:    a.outcome,
		ErrorField:     a.errField,
		ReauthRequired: a.reauth,
		Transfer:       a.transfer,
		UpdatedAt:      a.updated,
	}
	for _, name := range domain.FieldNames {
		if a.sticky[name] {
			v.Sticky = append(v.Sticky, name)
		}
	}
	for _, f := range a.files {
		v.Files = append(v.Files, domain.FileView{Name: f.Name, MediaType: f.MediaType, Size: f.Size()})
	}
	return v
}
