package module

import (
	"context"

	"lodgement/internal/services/lodgement/domain"
	"lodgement/internal/services/lodgement/service"
	tdomain "lodgement/internal/services/transfer/domain"
)

// Ports declares the injected transfer receiver this module depends on
type Ports struct {
	Receiver tdomain.ReceiverPort
}

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }

// adaptLodgementPort exposes the session operations for cross module use
type adaptLodgementPort struct{ svc service.Service }

func (a adaptLodgementPort) Open(ctx context.Context, in domain.OpenInput) (domain.SessionView, error) {
	return a.svc.Open(ctx, in)
}

func (a adaptLodgementPort) Get(ctx context.Context, id string) (domain.SessionView, error) {
	return a.svc.Get(ctx, id)
}

func (a adaptLodgementPort) SelectFiles(ctx context.Context, id string, files []domain.FileInput) (domain.SessionView, error) {
	return a.svc.SelectFiles(ctx, id, files)
}

func (a adaptLodgementPort) UpdateFields(ctx context.Context, id string, in domain.FieldsUpdate) (domain.SessionView, error) {
	return a.svc.UpdateFields(ctx, id, in)
}

func (a adaptLodgementPort) Preview(ctx context.Context, id string) (domain.Preview, error) {
	return a.svc.Preview(ctx, id)
}

func (a adaptLodgementPort) Submit(ctx context.Context, id string) (domain.SubmitOutput, error) {
	return a.svc.Submit(ctx, id)
}

func (a adaptLodgementPort) Reauthenticated(ctx context.Context, id string) (domain.SessionView, error) {
	return a.svc.Reauthenticated(ctx, id)
}

func (a adaptLodgementPort) Events(ctx context.Context, id string) ([]domain.Event, error) {
	return a.svc.Events(ctx, id)
}

var _ domain.ServicePort = adaptLodgementPort{}
