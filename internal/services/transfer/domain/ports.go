package domain

import "context"

// ServicePort is implemented by the transfer service
type ServicePort interface {
	Publish(ctx context.Context, in PublishInput) (PublishOutput, error)
	Receive(ctx context.Context, in ReceiveInput) (Delivered, bool, error)
	Clear(ctx context.Context, key string) error
}

// ReceiverPort is the slice of the service other modules consume
type ReceiverPort interface {
	Receive(ctx context.Context, in ReceiveInput) (Delivered, bool, error)
}
