// Package client sends assembled lodgements to the filing backend as multipart requests
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strconv"
	"strings"
	"time"

	perr "lodgement/internal/platform/errors"
	"lodgement/internal/platform/logger"
	pnet "lodgement/internal/platform/net"
	"lodgement/internal/services/lodgement/domain"
)

const (
	defaultTimeout = 60 * time.Second
	defaultUA      = "lodgement-api"
	maxErrBody     = 2048
)

// Multipart field names understood by the filing backend
const (
	FieldBusinessName  = "business_name"
	FieldContractType  = "contract_type"
	FieldAgreementType = "agreement_type"
	FieldFileCount     = "file_count"
	filePrefix         = "file_"
)

// TokenSource supplies the bearer credential for each request
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// StaticToken is a fixed bearer credential
type StaticToken string

// Token returns the fixed value
func (s StaticToken) Token(context.Context) (string, error) { return string(s), nil }

// ForwardedToken prefers the caller's credential kept on ctx by the auth middleware
// and falls back to Fallback when the request carried none
type ForwardedToken struct {
	Fallback TokenSource
}

// Token returns the forwarded credential or the fallback's token
func (f ForwardedToken) Token(ctx context.Context) (string, error) {
	if raw := pnet.Credential(ctx); raw != "" {
		return raw, nil
	}
	if f.Fallback == nil {
		return "", nil
	}
	return f.Fallback.Token(ctx)
}

// Options configures the Client
type Options struct {
	URL       string
	UserAgent string
	Timeout   time.Duration
	Tokens    TokenSource
	HTTP      *http.Client
}

// Client posts submissions to the filing backend. It never retries on its own
type Client struct {
	http *http.Client
	opts Options
	log  logger.Logger
	now  func() time.Time
}

var _ domain.Filer = (*Client)(nil)

// New creates a Client with defaults applied
func New(o Options) *Client {
	if o.UserAgent == "" {
		o.UserAgent = defaultUA
	}
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}
	if o.Tokens == nil {
		o.Tokens = StaticToken("")
	}
	hc := o.HTTP
	if hc == nil {
		hc = &http.Client{Timeout: o.Timeout}
	}
	return &Client{http: hc, opts: o, log: *logger.Named("filing"), now: time.Now}
}

// Body renders s as the multipart request the filing backend expects.
// Files are named file_0..file_n in selection order
func Body(s domain.Submission) (contentType string, body []byte, err error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for i, f := range s.Files {
		h := textproto.MIMEHeader{}
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s%d"; filename="%s"`, filePrefix, i, escapeQuotes(f.Name)))
		mt := f.MediaType
		if mt == "" {
			mt = "application/octet-stream"
		}
		h.Set("Content-Type", mt)
		pw, err := w.CreatePart(h)
		if err != nil {
			return "", nil, err
		}
		if _, err := pw.Write(f.Content); err != nil {
			return "", nil, err
		}
	}
	fields := [][2]string{
		{FieldBusinessName, s.Label},
		{FieldContractType, s.Classification},
		{FieldAgreementType, string(s.Kind)},
		{FieldFileCount, strconv.Itoa(s.FileCount)},
	}
	for _, kv := range fields {
		if err := w.WriteField(kv[0], kv[1]); err != nil {
			return "", nil, err
		}
	}
	if err := w.Close(); err != nil {
		return "", nil, err
	}
	return w.FormDataContentType(), buf.Bytes(), nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string { return quoteEscaper.Replace(s) }

// Lodge sends s once. A 401 becomes an Unauthorized error; other failures carry the
// server's message verbatim
func (c *Client) Lodge(ctx context.Context, s domain.Submission) (domain.Result, error) {
	if err := s.Check(); err != nil {
		return domain.Result{}, err
	}
	if c.opts.URL == "" {
		return domain.Result{}, perr.Unavailablef("filing endpoint is not configured")
	}
	ct, body, err := Body(s)
	if err != nil {
		return domain.Result{}, perr.Wrap(err, perr.CodeUnknown, "build filing request")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.opts.URL, bytes.NewReader(body))
	if err != nil {
		return domain.Result{}, perr.Wrap(err, perr.CodeUnknown, "filing new request failed")
	}
	req.Header.Set("Content-Type", ct)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.opts.UserAgent)
	tok, err := c.opts.Tokens.Token(ctx)
	if err != nil {
		return domain.Result{}, perr.Wrap(err, perr.CodeUnauthorized, "no filing credential")
	}
	if tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	start := c.now()
	resp, err := c.http.Do(req)
	lat := c.now().Sub(start)
	if err != nil {
		c.log.Warn().Err(err).Dur("latency", lat).Msg("filing transport error")
		return domain.Result{}, perr.Wrap(err, perr.CodeUnavailable, "filing service unreachable")
	}
	defer func() { _ = resp.Body.Close() }()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrBody))
	msg := serverMessage(raw)

	c.log.Debug().
		Int("status", resp.StatusCode).
		Int("files", s.FileCount).
		Str("agreement_type", string(s.Kind)).
		Dur("latency", lat).
		Msg("filing http response")

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return domain.Result{Message: msg}, nil
	case resp.StatusCode == http.StatusUnauthorized:
		if msg == "" {
			msg = "filing credential rejected"
		}
		return domain.Result{}, perr.New(perr.CodeUnauthorized, msg)
	default:
		if msg == "" {
			msg = fmt.Sprintf("filing failed with status %d", resp.StatusCode)
		}
		return domain.Result{}, perr.New(codeFor(resp.StatusCode), msg)
	}
}

// serverMessage picks detail, message or error from a JSON body, else the trimmed raw body
func serverMessage(raw []byte) string {
	var body struct {
		Detail  any    `json:"detail"`
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(raw, &body); err == nil {
		if s, ok := body.Detail.(string); ok && s != "" {
			return s
		}
		if body.Message != "" {
			return body.Message
		}
		if body.Error != "" {
			return body.Error
		}
		if body.Detail != nil {
			if b, err := json.Marshal(body.Detail); err == nil {
				return string(b)
			}
		}
		return ""
	}
	return strings.TrimSpace(string(raw))
}

func codeFor(status int) perr.ErrorCode {
	switch {
	case status == http.StatusForbidden:
		return perr.CodeForbidden
	case status == http.StatusNotFound:
		return perr.CodeNotFound
	case status == http.StatusConflict:
		return perr.CodeConflict
	case status == http.StatusTooManyRequests:
		return perr.CodeTooManyRequests
	case status >= 500:
		return perr.CodeUnavailable
	default:
		return perr.CodeInvalidArgument
	}
}
