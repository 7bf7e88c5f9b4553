// Package domain holds transfer handoff types independent of transport or storage
package domain

import (
	"context"

	"lodgement/internal/core/filecodec"
)

// DefaultKey is the storage key used by the lodgement handoff
const DefaultKey = "lodgementFileTransfer"

// MessageType tags handoff messages so the channel can carry unrelated traffic
const MessageType = "LODGEMENT_FILE_TRANSFER"

// Store is a key scoped payload store. Absence is reported with ok=false, not an error
type Store interface {
	Write(ctx context.Context, key string, p filecodec.Payload) error
	Read(ctx context.Context, key string) (filecodec.Payload, bool, error)
	Clear(ctx context.Context, key string) error
}

// Message is one broadcast on the handoff channel
type Message struct {
	Type     string            `json:"type"`
	Origin   string            `json:"origin"`
	Key      string            `json:"key,omitempty"`
	FileData filecodec.Payload `json:"fileData"`
}

// Channel delivers messages to listeners of the same origin, best effort
type Channel interface {
	Send(msg Message)
	Subscribe(origin string, fn func(Message)) (unsubscribe func())
}

// Source says which path delivered a transfer
type Source string

const (
	// SourceChannel is the direct broadcast path
	SourceChannel Source = "channel"

	// SourceSession is the session scoped store
	SourceSession Source = "session"

	// SourceDurable is the durable store
	SourceDurable Source = "durable"
)

// Delivered is a decoded transfer and the path it arrived on
type Delivered struct {
	File filecodec.File
	Via  Source
}

// Navigation parameters the transfer owns on the destination URL
const (
	ParamPending = "pending_transfer"
	ParamKey     = "transfer_key"
)
