package net

import (
	"net/http"

	perr "lodgement/internal/platform/errors"
)

// Envelope wraps every JSON body the API writes. Data is set on success; Code,
// Error and Field on failure
type Envelope struct {
	StatusCode int            `json:"status_code"`
	Status     string         `json:"status"`
	Code       perr.ErrorCode `json:"code,omitempty"`
	Error      string         `json:"error,omitempty"`
	Field      string         `json:"field,omitempty"`
	RequestID  string         `json:"request_id,omitempty"`
	Data       any            `json:"data,omitempty"`
}

// Reply wraps data in a success envelope for status
func Reply(status int, data any, reqID string) Envelope {
	return Envelope{StatusCode: status, Status: http.StatusText(status), RequestID: reqID, Data: data}
}

// Error maps err to its status and failure envelope. A nil err is a bare 200
func Error(err error, reqID string) (int, Envelope) {
	status, w := perr.HTTP(err)
	env := Reply(status, nil, reqID)
	env.Code, env.Error, env.Field = w.Code, w.Message, w.Field
	return status, env
}
