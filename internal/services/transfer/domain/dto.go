package domain

import "net/url"

// PublishInput is the producer side of a handoff
type PublishInput struct {
	Origin    string
	Key       string
	Name      string
	MediaType string
	Content   []byte

	// Navigation fields copied onto the destination target
	Nav url.Values
}

// PublishOutput describes a stored transfer and where to navigate next
type PublishOutput struct {
	Key        string `json:"key"          example:"lodgementFileTransfer"`
	Name       string `json:"name"         example:"agreement.pdf"`
	MediaType  string `json:"type"         example:"application/pdf"`
	Size       int    `json:"size"         example:"18342"`
	CapturedAt int64  `json:"timestamp"    example:"1740823200000"`
	Target     string `json:"target"       example:"/lodgement?business_name=Acme&pending_transfer=1"`
	Session    bool   `json:"session_ok"`
	Durable    bool   `json:"durable_ok"`
}

// ReceiveInput is the destination side of a handoff
type ReceiveInput struct {
	Origin string
	Key    string
}
