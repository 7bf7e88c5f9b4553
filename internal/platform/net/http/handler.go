package http

import (
	"net/http"

	"lodgement/internal/platform/net/http/bind"
)

// Call adapts a return style handler. A returned Response is written as is; any
// other value becomes a 200 envelope and an error becomes its mapped failure
func Call(fn func(*http.Request) (any, error)) Handler {
	return Handle(func(r *http.Request) Response {
		out, err := fn(r)
		if err != nil {
			return Error(err)
		}
		if resp, ok := out.(Response); ok {
			return resp
		}
		return OK(out)
	})
}

// JSONHandler is Call with the body bound and validated into T first. fn is not
// reached when binding fails
func JSONHandler[T any](fn func(*http.Request, T) (any, error)) Handler {
	return Call(func(r *http.Request) (any, error) {
		in, err := bind.ParseJSON[T](r)
		if err != nil {
			return nil, err
		}
		return fn(r, in)
	})
}
