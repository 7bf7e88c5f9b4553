package http

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	stdhttp "net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	perr "lodgement/internal/platform/errors"
	phttp "lodgement/internal/platform/net/http"
	"lodgement/internal/services/transfer/domain"

	"github.com/go-chi/chi/v5"
)

type fakeSvc struct {
	in      domain.PublishInput
	cleared string
	err     error
}

func (f *fakeSvc) Publish(_ context.Context, in domain.PublishInput) (domain.PublishOutput, error) {
	f.in = in
	if f.err != nil {
		return domain.PublishOutput{}, f.err
	}
	return domain.PublishOutput{Key: in.Key, Name: in.Name, Size: len(in.Content), Target: "/lodgement?pending_transfer=1"}, nil
}

func (f *fakeSvc) Receive(context.Context, domain.ReceiveInput) (domain.Delivered, bool, error) {
	return domain.Delivered{}, false, nil
}

func (f *fakeSvc) Clear(_ context.Context, key string) error {
	f.cleared = key
	return f.err
}

func newServer(t *testing.T, s *fakeSvc) *httptest.Server {
	t.Helper()
	r := phttp.AdaptChi(chi.NewRouter())
	r.Route("/transfers", func(rr phttp.Router) {
		Register(rr, s, Options{AppOrigin: "https://app.example"})
	})
	srv := httptest.NewServer(r.Mux())
	t.Cleanup(srv.Close)
	return srv
}

func form(t *testing.T, fields map[string]string, file string) ([]byte, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		_ = w.WriteField(k, v)
	}
	if file != "" {
		fw, err := w.CreateFormFile("file", file)
		if err != nil {
			t.Fatal(err)
		}
		_, _ = fw.Write([]byte{1, 2, 3})
	}
	_ = w.Close()
	return buf.Bytes(), w.FormDataContentType()
}

func TestPublish_SplitsKeyFileAndNavigation(t *testing.T) {
	t.Parallel()
	s := &fakeSvc{}
	srv := newServer(t, s)

	body, ct := form(t, map[string]string{
		"key":              "customKey",
		"business_name":    "Acme Pty Ltd",
		"type":             "Origin C&I Electricity",
		"pending_transfer": "0",
	}, "agreement.pdf")
	req, _ := stdhttp.NewRequest(stdhttp.MethodPost, srv.URL+"/transfers", bytes.NewReader(body))
	req.Header.Set("Content-Type", ct)
	req.Header.Set("Origin", "https://portal.example")

	resp, err := stdhttp.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != stdhttp.StatusCreated {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var env struct {
		Data domain.PublishOutput `json:"data"`
	}
	_ = json.NewDecoder(resp.Body).Decode(&env)
	if env.Data.Key != "customKey" || env.Data.Size != 3 {
		t.Fatalf("data = %+v", env.Data)
	}

	in := s.in
	if in.Origin != "https://portal.example" || in.Key != "customKey" || in.Name != "agreement.pdf" {
		t.Fatalf("input = %+v", in)
	}
	want := url.Values{"business_name": {"Acme Pty Ltd"}, "type": {"Origin C&I Electricity"}}
	if in.Nav.Encode() != want.Encode() {
		t.Fatalf("nav = %v", in.Nav)
	}
}

func TestPublish_Errors(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		svcErr error
		file   string
		ct     string
		status int
	}{
		{"missing file", nil, "", "", stdhttp.StatusUnprocessableEntity},
		{"not multipart", nil, "agreement.pdf", "application/json", stdhttp.StatusUnprocessableEntity},
		{"stores down", perr.Unavailablef("transfer could not be stored"), "agreement.pdf", "", stdhttp.StatusServiceUnavailable},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := &fakeSvc{err: tc.svcErr}
			srv := newServer(t, s)
			body, ct := form(t, nil, tc.file)
			if tc.ct != "" {
				ct = tc.ct
			}
			resp, err := stdhttp.Post(srv.URL+"/transfers", ct, bytes.NewReader(body))
			if err != nil {
				t.Fatal(err)
			}
			resp.Body.Close()
			if resp.StatusCode != tc.status {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tc.status)
			}
		})
	}
}

func TestPublish_FallsBackToConfiguredOrigin(t *testing.T) {
	t.Parallel()
	s := &fakeSvc{}
	srv := newServer(t, s)

	body, ct := form(t, nil, "agreement.pdf")
	resp, err := stdhttp.Post(srv.URL+"/transfers", ct, bytes.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if s.in.Origin != "https://app.example" || s.in.Key != "" {
		t.Fatalf("input = %+v", s.in)
	}
}

func TestClear(t *testing.T) {
	t.Parallel()
	s := &fakeSvc{}
	srv := newServer(t, s)

	req, _ := stdhttp.NewRequest(stdhttp.MethodDelete, srv.URL+"/transfers/lodgementFileTransfer", nil)
	resp, err := stdhttp.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != stdhttp.StatusNoContent || s.cleared != "lodgementFileTransfer" {
		t.Fatalf("status = %d cleared %q", resp.StatusCode, s.cleared)
	}
}

func TestOrigin(t *testing.T) {
	t.Parallel()
	r := httptest.NewRequest(stdhttp.MethodPost, "/", strings.NewReader(""))
	if got := origin(r, "fallback"); got != "fallback" {
		t.Fatalf("origin = %q", got)
	}
}
