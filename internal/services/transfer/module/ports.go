package module

import (
	"context"

	"lodgement/internal/services/transfer/domain"
	"lodgement/internal/services/transfer/service"
)

// Ports holds the ports exposed by the transfer module
type Ports struct {
	Transfers domain.ServicePort
	Receiver  domain.ReceiverPort
}

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }

type adaptReceiver struct{ svc service.Service }

// Receive waits for a pending handoff
func (a adaptReceiver) Receive(ctx context.Context, in domain.ReceiveInput) (domain.Delivered, bool, error) {
	return a.svc.Receive(ctx, in)
}
