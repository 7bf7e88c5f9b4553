package bind

import (
	"bufio"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	perr "lodgement/internal/platform/errors"
)

// JSONOptions tunes ParseJSON. Passing none means DefaultJSON, not the zero value
type JSONOptions struct {
	MaxBytes        int64
	DisallowUnknown bool
	AllowEmptyBody  bool
}

// DefaultJSON caps bodies at 1MB and rejects unknown fields
var DefaultJSON = JSONOptions{MaxBytes: 1 << 20, DisallowUnknown: true}

// jsonMore is swapped in tests to fake trailing input
var jsonMore = (*json.Decoder).More

// bodyless lists the methods where a missing body is not an error
var bodyless = map[string]bool{
	http.MethodGet:     true,
	http.MethodHead:    true,
	http.MethodDelete:  true,
	http.MethodOptions: true,
}

// ParseJSON decodes exactly one JSON value from the body into T and validates it.
// An empty body yields the zero T, unvalidated, on bodyless methods or when
// AllowEmptyBody is set; otherwise it is a JSON error
func ParseJSON[T any](r *http.Request, opts ...JSONOptions) (T, error) {
	var zero T
	o := DefaultJSON
	if len(opts) > 0 {
		o = opts[0]
	}
	defer func() { _ = r.Body.Close() }()

	var src io.Reader = r.Body
	if o.MaxBytes > 0 {
		src = io.LimitReader(src, o.MaxBytes)
	}
	br := bufio.NewReader(src)
	if _, err := br.Peek(1); err != nil {
		if o.AllowEmptyBody || bodyless[r.Method] {
			return zero, nil
		}
		return zero, perr.JSONErrf("empty body")
	}

	dec := json.NewDecoder(br)
	if o.DisallowUnknown {
		dec.DisallowUnknownFields()
	}
	var out T
	switch err := dec.Decode(&out); {
	case errors.Is(err, io.EOF) && o.AllowEmptyBody:
		return zero, nil
	case err != nil:
		return zero, perr.JSONErrf("invalid JSON: %v", err)
	case jsonMore(dec):
		return zero, perr.JSONErrf("unexpected trailing data")
	}
	if err := Validate(out); err != nil {
		return zero, err
	}
	return out, nil
}
