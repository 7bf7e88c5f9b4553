// Package service implements lodgement sessions: handoff intake, routing preview and submission
package service

import (
	"context"
	"sync/atomic"
	"time"

	"lodgement/internal/core/filecodec"
	"lodgement/internal/core/identifier"
	"lodgement/internal/core/routing"
	perr "lodgement/internal/platform/errors"
	"lodgement/internal/platform/logger"
	"lodgement/internal/services/lodgement/domain"
	tdomain "lodgement/internal/services/transfer/domain"

	"github.com/google/uuid"
	"github.com/jellydator/ttlcache/v3"
	"k8s.io/utils/clock"
)

// Service defines the lodgement service contract
type Service interface {
	domain.ServicePort
	ResolveRoute(ctx context.Context, table, typ string) (routing.Entry, error)
	RouteTables(ctx context.Context) []routing.TableName
	ListRoutes(ctx context.Context, table string) ([]routing.Entry, error)
	ResolveIdentifier(ctx context.Context, category string) (IdentifierView, error)
}

// IdentifierView is the identifier spec for a category and the inputs to offer
type IdentifierView struct {
	identifier.Spec
	Offered []string `json:"offered_fields"`
}

// DefaultSessionTTL is how long an untouched session is kept
const DefaultSessionTTL = 2 * time.Hour

// NoTransferMessage is shown when a pending handoff delivered nothing
const NoTransferMessage = "no transfer available, please select the file manually"

// Config tunes the service
type Config struct {
	SessionTTL time.Duration
}

// Deps are the collaborators the service needs. Recorder, Reauth, Clock and NewID are optional
type Deps struct {
	Routes   *routing.Book
	Receiver tdomain.ReceiverPort
	Filer    domain.Filer
	Recorder domain.Recorder
	Reauth   domain.ReauthSignal
	Clock    clock.PassiveClock
	NewID    func() string
}

// Svc implements the lodgement service
type Svc struct {
	sessions *ttlcache.Cache[string, *Assembler]
	running  atomic.Bool
	d        Deps
	log      *logger.Logger
}

var _ Service = (*Svc)(nil)

// New constructs the service
func New(d Deps, cfg Config) *Svc {
	if d.Routes == nil {
		panic("lodgement.Service requires routing tables")
	}
	if d.Receiver == nil {
		panic("lodgement.Service requires a transfer receiver")
	}
	if d.Filer == nil {
		panic("lodgement.Service requires a filer")
	}
	if d.Recorder == nil {
		d.Recorder = NopRecorder{}
	}
	if d.Reauth == nil {
		d.Reauth = LogSignal{}
	}
	if d.Clock == nil {
		d.Clock = clock.RealClock{}
	}
	if d.NewID == nil {
		d.NewID = uuid.NewString
	}
	ttl := cfg.SessionTTL
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &Svc{
		sessions: ttlcache.New[string, *Assembler](ttlcache.WithTTL[string, *Assembler](ttl)),
		d:        d,
		log:      logger.Named("lodgement"),
	}
}

// Start runs session expiry until Stop
func (s *Svc) Start() {
	if s.running.CompareAndSwap(false, true) {
		go s.sessions.Start()
	}
}

// Stop ends session expiry
func (s *Svc) Stop() {
	if s.running.CompareAndSwap(true, false) {
		s.sessions.Stop()
	}
}

func (s *Svc) session(id string) (*Assembler, error) {
	it := s.sessions.Get(id)
	if it == nil {
		return nil, perr.NotFoundf("lodgement session %q not found", id)
	}
	return it.Value(), nil
}

// Open creates a session from the navigation target. With a pending transfer it waits for
// the handoff, bounded by the transfer read budget, and attaches what arrives
func (s *Svc) Open(ctx context.Context, in domain.OpenInput) (domain.SessionView, error) {
	kind := in.Kind
	if kind == "" {
		kind = domain.KindContract
	}
	a := NewAssembler(s.d.NewID(), kind, in.Nav, s.d.Clock.Now)
	s.sessions.Set(a.ID(), a, ttlcache.DefaultTTL)

	log := logger.C(ctx).With().Str("session", a.ID()).Logger()
	if in.Nav.Pending {
		d, ok, err := s.d.Receiver.Receive(ctx, tdomain.ReceiveInput{Origin: in.Origin, Key: in.Nav.TransferKey})
		switch {
		case err != nil:
			log.Warn().Err(err).Msg("transfer receive failed")
			a.NoTransfer(NoTransferMessage)
		case !ok:
			a.NoTransfer(NoTransferMessage)
		default:
			if err := a.Attach(d.File, true, string(d.Via)); err != nil {
				log.Info().Err(err).Str("name", d.File.Name).Msg("transferred file rejected")
			}
		}
	}
	log.Debug().Str("kind", string(kind)).Bool("pending", in.Nav.Pending).Msg("session opened")
	return a.View(), nil
}

// Get returns the session view
func (s *Svc) Get(_ context.Context, id string) (domain.SessionView, error) {
	a, err := s.session(id)
	if err != nil {
		return domain.SessionView{}, err
	}
	return a.View(), nil
}

// SelectFiles replaces the session's file selection
func (s *Svc) SelectFiles(_ context.Context, id string, files []domain.FileInput) (domain.SessionView, error) {
	a, err := s.session(id)
	if err != nil {
		return domain.SessionView{}, err
	}
	fs := make([]filecodec.File, 0, len(files))
	for _, f := range files {
		fs = append(fs, filecodec.File{Name: f.Name, MediaType: f.MediaType, Content: f.Content})
	}
	if err := a.SelectFiles(fs); err != nil {
		return a.View(), err
	}
	return a.View(), nil
}

// UpdateFields edits classification fields
func (s *Svc) UpdateFields(_ context.Context, id string, in domain.FieldsUpdate) (domain.SessionView, error) {
	a, err := s.session(id)
	if err != nil {
		return domain.SessionView{}, err
	}
	if err := a.UpdateFields(in); err != nil {
		return a.View(), err
	}
	return a.View(), nil
}

func (s *Svc) table(name routing.TableName) (*routing.Table, error) {
	t, ok := s.d.Routes.Table(name)
	if !ok {
		return nil, perr.NotFoundf("routing table %q not found", name)
	}
	return t, nil
}

// Preview resolves where the session would be lodged and under which label
func (s *Svc) Preview(_ context.Context, id string) (domain.Preview, error) {
	a, err := s.session(id)
	if err != nil {
		return domain.Preview{}, err
	}
	kind, f := a.Snapshot()
	t, err := s.table(kind.Table())
	if err != nil {
		return domain.Preview{}, err
	}
	e := t.Resolve(f.Type)
	spec := identifier.Resolve(f.Category)
	return domain.Preview{
		Table:       string(t.Name()),
		MatchKey:    e.MatchKey,
		DisplayName: e.DisplayName,
		Emails:      e.Emails,
		Default:     e.Default,
		Identifier:  spec,
		Offered:     spec.Fields(),
		Label:       identifier.ComposeLabel(f.BusinessName, f.NMI, f.MIRN),
	}, nil
}

// Submit validates, dispatches once and applies the outcome. A 401 holds the session at
// Failed and raises the reauthentication signal
func (s *Svc) Submit(ctx context.Context, id string) (domain.SubmitOutput, error) {
	a, err := s.session(id)
	if err != nil {
		return domain.SubmitOutput{}, err
	}
	sub, err := a.begin()
	if err != nil {
		return domain.SubmitOutput{Session: a.View()}, err
	}

	res, lerr := s.d.Filer.Lodge(ctx, sub)
	outcome := a.finish(res, lerr)

	s.audit(ctx, id, sub, outcome, res, lerr)
	if outcome == domain.OutcomeUnauthorized {
		s.d.Reauth.ReauthRequired(ctx, id)
	}
	return domain.SubmitOutput{Session: a.View(), Result: res}, lerr
}

func (s *Svc) audit(ctx context.Context, id string, sub domain.Submission, outcome domain.Outcome, res domain.Result, lerr error) {
	msg := res.Message
	if lerr != nil {
		msg = perr.WireFrom(lerr).Message
	}
	counter := ""
	if t, err := s.table(sub.Kind.Table()); err == nil {
		counter = t.Resolve(sub.Classification).DisplayName
	}
	e := domain.Event{
		ID:        s.d.NewID(),
		SessionID: id,
		At:        s.d.Clock.Now(),
		Kind:      sub.Kind,
		Outcome:   outcome,
		Label:     sub.Label,
		Type:      sub.Classification,
		Counter:   counter,
		FileCount: sub.FileCount,
		Message:   msg,
	}
	if err := s.d.Recorder.Record(ctx, e); err != nil {
		logger.C(ctx).Warn().Err(err).Str("session", id).Msg("audit record failed")
	}
}

// Reauthenticated clears a held 401 once the operator has a fresh credential
func (s *Svc) Reauthenticated(_ context.Context, id string) (domain.SessionView, error) {
	a, err := s.session(id)
	if err != nil {
		return domain.SessionView{}, err
	}
	a.Reauthenticated()
	return a.View(), nil
}

// Events returns the audit trail for a session when the recorder can read it back
func (s *Svc) Events(ctx context.Context, id string) ([]domain.Event, error) {
	h, ok := s.d.Recorder.(domain.History)
	if !ok {
		return []domain.Event{}, nil
	}
	out, err := h.BySession(ctx, id, 0)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []domain.Event{}
	}
	return out, nil
}

// ResolveRoute looks typ up in the named table
func (s *Svc) ResolveRoute(_ context.Context, table, typ string) (routing.Entry, error) {
	t, err := s.table(routing.TableName(table))
	if err != nil {
		return routing.Entry{}, err
	}
	return t.Resolve(typ), nil
}

// RouteTables lists the loaded routing tables
func (s *Svc) RouteTables(context.Context) []routing.TableName { return s.d.Routes.Names() }

// ListRoutes returns every entry of the named table in file order
func (s *Svc) ListRoutes(_ context.Context, table string) ([]routing.Entry, error) {
	t, err := s.table(routing.TableName(table))
	if err != nil {
		return nil, err
	}
	return t.Entries(), nil
}

// ResolveIdentifier returns the identifier implied by category
func (s *Svc) ResolveIdentifier(_ context.Context, category string) (IdentifierView, error) {
	spec := identifier.Resolve(category)
	return IdentifierView{Spec: spec, Offered: spec.Fields()}, nil
}

// NopRecorder discards audit events
type NopRecorder struct{}

// Record does nothing
func (NopRecorder) Record(context.Context, domain.Event) error { return nil }

// LogSignal reports reauthentication requests in the log only
type LogSignal struct{}

// ReauthRequired logs the request
func (LogSignal) ReauthRequired(ctx context.Context, sessionID string) {
	logger.C(ctx).Warn().Str("session", sessionID).Msg("filing credential rejected, reauthentication required")
}
