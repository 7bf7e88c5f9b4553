package http

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	stdhttp "net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"lodgement/internal/core/filecodec"
	"lodgement/internal/core/routing"
	"lodgement/internal/modkit/httpkit"
	perr "lodgement/internal/platform/errors"
	pnet "lodgement/internal/platform/net"
	phttp "lodgement/internal/platform/net/http"
	"lodgement/internal/services/lodgement/domain"
	svc "lodgement/internal/services/lodgement/service"
	tdomain "lodgement/internal/services/transfer/domain"

	"github.com/go-chi/chi/v5"
)

type stubReceiver struct {
	mu      sync.Mutex
	origins []string
	file    *tdomain.Delivered
}

func (s *stubReceiver) Receive(_ context.Context, in tdomain.ReceiveInput) (tdomain.Delivered, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.origins = append(s.origins, in.Origin)
	if s.file == nil {
		return tdomain.Delivered{}, false, nil
	}
	d := *s.file
	s.file = nil
	return d, true, nil
}

func domainFile(name string) filecodec.File {
	return filecodec.File{Name: name, MediaType: "application/pdf", Content: []byte("%PDF-1.7")}
}

type stubFiler struct{ err error }

func (f stubFiler) Lodge(context.Context, domain.Submission) (domain.Result, error) {
	if f.err != nil {
		return domain.Result{}, f.err
	}
	return domain.Result{Message: "Agreement lodged"}, nil
}

type envelope struct {
	StatusCode int             `json:"status_code"`
	Code       perr.ErrorCode  `json:"code"`
	Error      string          `json:"error"`
	Field      string          `json:"field"`
	Data       json.RawMessage `json:"data"`
}

func newServer(t *testing.T, recv *stubReceiver, filer domain.Filer) *httptest.Server {
	t.Helper()
	s := svc.New(svc.Deps{Routes: routing.MustLoad(), Receiver: recv, Filer: filer}, svc.Config{})
	r := phttp.AdaptChi(chi.NewRouter())
	r.Route("/lodgement", func(rr phttp.Router) {
		Register(rr, s, Options{AppOrigin: "https://app.example"})
	})
	srv := httptest.NewServer(r.Mux())
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, req *stdhttp.Request) (int, envelope) {
	t.Helper()
	resp, err := stdhttp.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	defer resp.Body.Close()
	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return resp.StatusCode, env
}

func call(t *testing.T, method, url string, body []byte, ct string) (int, envelope) {
	t.Helper()
	req, err := stdhttp.NewRequest(method, url, bytes.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	if ct != "" {
		req.Header.Set("Content-Type", ct)
	}
	return do(t, req)
}

func data[T any](t *testing.T, env envelope) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(env.Data, &v); err != nil {
		t.Fatalf("data: %v (%s)", err, env.Data)
	}
	return v
}

func multipartFiles(t *testing.T, names ...string) ([]byte, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, n := range names {
		fw, err := w.CreateFormFile("files", n)
		if err != nil {
			t.Fatal(err)
		}
		_, _ = fw.Write([]byte("%PDF-1.7"))
	}
	_ = w.Close()
	return buf.Bytes(), w.FormDataContentType()
}

func TestOpen_UsesOriginHeaderElseConfigured(t *testing.T) {
	t.Parallel()
	recv := &stubReceiver{file: &tdomain.Delivered{
		File: domainFile("agreement.pdf"),
		Via:  tdomain.SourceDurable,
	}}
	srv := newServer(t, recv, stubFiler{})

	req, _ := stdhttp.NewRequest(stdhttp.MethodPost, srv.URL+"/lodgement/sessions?business_name=Acme&type=Origin+C%26I+Gas&pending_transfer=1", nil)
	req.Header.Set("Origin", "https://portal.example")
	status, env := do(t, req)
	if status != stdhttp.StatusCreated {
		t.Fatalf("status = %d env %+v", status, env)
	}
	v := data[domain.SessionView](t, env)
	if v.State != domain.StateFilesSelected || v.FileCount != 1 || v.Transfer.Via != "durable" {
		t.Fatalf("view = %+v", v)
	}
	if v.Fields.Type != "Origin C&I Gas" {
		t.Fatalf("fields = %+v", v.Fields)
	}

	status, _ = call(t, stdhttp.MethodPost, srv.URL+"/lodgement/sessions?pending_transfer=true", nil, "")
	if status != stdhttp.StatusCreated {
		t.Fatalf("status = %d", status)
	}
	if len(recv.origins) != 2 || recv.origins[0] != "https://portal.example" || recv.origins[1] != "https://app.example" {
		t.Fatalf("origins = %v", recv.origins)
	}
}

func TestOpen_RejectsUnknownAgreementType(t *testing.T) {
	t.Parallel()
	srv := newServer(t, &stubReceiver{}, stubFiler{})

	status, env := call(t, stdhttp.MethodPost, srv.URL+"/lodgement/sessions?agreement_type=lease", nil, "")
	if status != stdhttp.StatusUnprocessableEntity || env.Field != "agreement_type" {
		t.Fatalf("status = %d env %+v", status, env)
	}
}

func TestSessionFlow_SelectEditPreviewSubmit(t *testing.T) {
	t.Parallel()
	srv := newServer(t, &stubReceiver{}, stubFiler{})
	base := srv.URL + "/lodgement/sessions"

	_, env := call(t, stdhttp.MethodPost, base+"?agreement_type=contract_multi&business_name=Acme", nil, "")
	id := data[domain.SessionView](t, env).ID

	body, ct := multipartFiles(t, "agreement.pdf", "schedule.xlsx")
	status, env := call(t, stdhttp.MethodPost, base+"/"+id+"/files", body, ct)
	if status != stdhttp.StatusOK || data[domain.SessionView](t, env).FileCount != 2 {
		t.Fatalf("files status = %d env %+v", status, env)
	}

	status, env = call(t, stdhttp.MethodPut, base+"/"+id+"/fields",
		[]byte(`{"type":"AGL C&I Gas","category":"C&I Gas","mirn":"5330012345"}`), "application/json")
	if status != stdhttp.StatusOK {
		t.Fatalf("fields status = %d env %+v", status, env)
	}

	status, env = call(t, stdhttp.MethodGet, base+"/"+id+"/preview", nil, "")
	p := data[domain.Preview](t, env)
	if status != stdhttp.StatusOK || p.DisplayName != "AGL (C&I Gas)" || p.Label != "Acme MIRN: 5330012345" {
		t.Fatalf("preview = %+v", p)
	}

	status, env = call(t, stdhttp.MethodPost, base+"/"+id+"/submit", nil, "")
	out := data[domain.SubmitOutput](t, env)
	if status != stdhttp.StatusOK || out.Result.Message != "Agreement lodged" || out.Session.State != domain.StateSucceeded {
		t.Fatalf("submit status = %d out %+v", status, out)
	}

	status, env = call(t, stdhttp.MethodGet, base+"/"+id+"/events", nil, "")
	if status != stdhttp.StatusOK || string(env.Data) != "[]" {
		t.Fatalf("events status = %d data %s", status, env.Data)
	}
}

func TestFiles_ValidationCarriesField(t *testing.T) {
	t.Parallel()
	srv := newServer(t, &stubReceiver{}, stubFiler{})
	base := srv.URL + "/lodgement/sessions"

	_, env := call(t, stdhttp.MethodPost, base, nil, "")
	id := data[domain.SessionView](t, env).ID

	body, ct := multipartFiles(t, "a.pdf", "b.pdf")
	status, env := call(t, stdhttp.MethodPost, base+"/"+id+"/files", body, ct)
	if status != stdhttp.StatusBadRequest || env.Field != domain.FieldFiles {
		t.Fatalf("status = %d env %+v", status, env)
	}

	status, _ = call(t, stdhttp.MethodPost, base+"/"+id+"/files", []byte(`{}`), "application/json")
	if status != stdhttp.StatusUnprocessableEntity {
		t.Fatalf("non multipart status = %d", status)
	}
}

func TestFields_BindValidation(t *testing.T) {
	t.Parallel()
	srv := newServer(t, &stubReceiver{}, stubFiler{})
	base := srv.URL + "/lodgement/sessions"

	_, env := call(t, stdhttp.MethodPost, base, nil, "")
	id := data[domain.SessionView](t, env).ID

	status, _ := call(t, stdhttp.MethodPut, base+"/"+id+"/fields", []byte(`{"agreement_type":"lease"}`), "application/json")
	if status != stdhttp.StatusBadRequest {
		t.Fatalf("status = %d", status)
	}
	status, _ = call(t, stdhttp.MethodPut, base+"/"+id+"/fields", []byte(`{"colour":"red"}`), "application/json")
	if status != stdhttp.StatusBadRequest {
		t.Fatalf("unknown field status = %d", status)
	}
}

func TestSubmit_UnauthorizedThenReauthenticated(t *testing.T) {
	t.Parallel()
	srv := newServer(t, &stubReceiver{}, stubFiler{err: perr.New(perr.CodeUnauthorized, "Token expired")})
	base := srv.URL + "/lodgement/sessions"

	_, env := call(t, stdhttp.MethodPost, base+"?business_name=Acme&type=Default", nil, "")
	id := data[domain.SessionView](t, env).ID
	body, ct := multipartFiles(t, "agreement.pdf")
	_, _ = call(t, stdhttp.MethodPost, base+"/"+id+"/files", body, ct)

	status, env := call(t, stdhttp.MethodPost, base+"/"+id+"/submit", nil, "")
	if status != stdhttp.StatusUnauthorized || env.Error != "Token expired" {
		t.Fatalf("status = %d env %+v", status, env)
	}
	_, env = call(t, stdhttp.MethodGet, base+"/"+id, nil, "")
	if v := data[domain.SessionView](t, env); v.State != domain.StateFailed || !v.ReauthRequired {
		t.Fatalf("view = %+v", v)
	}

	status, env = call(t, stdhttp.MethodPost, base+"/"+id+"/reauthenticated", nil, "")
	if v := data[domain.SessionView](t, env); status != stdhttp.StatusOK || v.State != domain.StateFilesSelected {
		t.Fatalf("status = %d view %+v", status, v)
	}
}

func TestGet_UnknownSession(t *testing.T) {
	t.Parallel()
	srv := newServer(t, &stubReceiver{}, stubFiler{})

	status, env := call(t, stdhttp.MethodGet, srv.URL+"/lodgement/sessions/nope", nil, "")
	if status != stdhttp.StatusNotFound || env.Code != perr.CodeNotFound {
		t.Fatalf("status = %d env %+v", status, env)
	}
}

func TestRoutingLookups(t *testing.T) {
	t.Parallel()
	srv := newServer(t, &stubReceiver{}, stubFiler{})
	base := srv.URL + "/lodgement/routing"

	status, env := call(t, stdhttp.MethodGet, base+"/contract/resolve?type=agl+sme+electricity", nil, "")
	e := data[routing.Entry](t, env)
	if status != stdhttp.StatusOK || e.MatchKey != "AGL SME Electricity" || len(e.Emails) != 2 {
		t.Fatalf("entry = %+v", e)
	}

	status, env = call(t, stdhttp.MethodGet, base+"/eoi/resolve?type=", nil, "")
	if e := data[routing.Entry](t, env); status != stdhttp.StatusOK || !e.Default {
		t.Fatalf("default entry = %+v", e)
	}

	status, env = call(t, stdhttp.MethodGet, base, nil, "")
	if names := data[[]string](t, env); status != stdhttp.StatusOK || len(names) != 2 {
		t.Fatalf("tables = %v", names)
	}
	status, env = call(t, stdhttp.MethodGet, base+"/contract", nil, "")
	if entries := data[[]routing.Entry](t, env); status != stdhttp.StatusOK || len(entries) < 2 {
		t.Fatalf("contract entries = %v", entries)
	}
	status, _ = call(t, stdhttp.MethodGet, base+"/lease", nil, "")
	if status != stdhttp.StatusNotFound {
		t.Fatalf("unknown table listing status = %d", status)
	}

	status, _ = call(t, stdhttp.MethodGet, base+"/lease/resolve?type=x", nil, "")
	if status != stdhttp.StatusNotFound {
		t.Fatalf("unknown table status = %d", status)
	}

	status, env = call(t, stdhttp.MethodGet, base+"/identifier?category=C%26I+Electricity", nil, "")
	if status != stdhttp.StatusOK || !strings.Contains(string(env.Data), `"kind":"NMI"`) {
		t.Fatalf("identifier status = %d data %s", status, env.Data)
	}
	status, env = call(t, stdhttp.MethodGet, base+"/identifier", nil, "")
	if status != stdhttp.StatusUnprocessableEntity || env.Field != "category" {
		t.Fatalf("missing category status = %d env %+v", status, env)
	}
}

func TestOrigin(t *testing.T) {
	t.Parallel()
	r := httptest.NewRequest(stdhttp.MethodGet, "/", nil)
	if got := Origin(r, "https://app.example"); got != "https://app.example" {
		t.Fatalf("fallback = %q", got)
	}
	r.Header.Set("Origin", "null")
	if got := Origin(r, "x"); got != "x" {
		t.Fatalf("null origin = %q", got)
	}
	r.Header.Set("Origin", "https://portal.example")
	if got := Origin(r, "x"); got != "https://portal.example" {
		t.Fatalf("header origin = %q", got)
	}
}

type credFiler struct {
	mu   sync.Mutex
	seen []string
}

func (f *credFiler) Lodge(ctx context.Context, _ domain.Submission) (domain.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seen = append(f.seen, pnet.Credential(ctx))
	return domain.Result{Message: "ok"}, nil
}

func TestSessions_ProtectedByBearerAndForwarded(t *testing.T) {
	t.Parallel()
	filer := &credFiler{}
	s := svc.New(svc.Deps{Routes: routing.MustLoad(), Receiver: &stubReceiver{}, Filer: filer}, svc.Config{})
	r := phttp.AdaptChi(chi.NewRouter())
	r.Route("/lodgement", func(rr phttp.Router) {
		Register(rr, s, Options{
			AppOrigin: "https://app.example",
			Auth:      httpkit.NewPortFunc(func(string) (string, error) { return "u-1", nil }),
		})
	})
	srv := httptest.NewServer(r.Mux())
	t.Cleanup(srv.Close)

	status, env := call(t, stdhttp.MethodPost, srv.URL+"/lodgement/sessions?business_name=Acme&type=Solar", nil, "")
	if status != stdhttp.StatusUnauthorized {
		t.Fatalf("no bearer status = %d env %+v", status, env)
	}

	// routing lookups stay public
	status, _ = call(t, stdhttp.MethodGet, srv.URL+"/lodgement/routing/contract/resolve?type=Solar", nil, "")
	if status != stdhttp.StatusOK {
		t.Fatalf("routing status = %d", status)
	}

	authed := func(method, url string, body []byte, ct string) (int, envelope) {
		req, err := stdhttp.NewRequest(method, url, bytes.NewReader(body))
		if err != nil {
			t.Fatal(err)
		}
		req.Header.Set("Authorization", "Bearer user-tok")
		if ct != "" {
			req.Header.Set("Content-Type", ct)
		}
		return do(t, req)
	}

	status, env = authed(stdhttp.MethodPost, srv.URL+"/lodgement/sessions?business_name=Acme&type=Solar", nil, "")
	if status != stdhttp.StatusCreated {
		t.Fatalf("open status = %d env %+v", status, env)
	}
	id := data[domain.SessionView](t, env).ID

	body, ct := multipartFiles(t, "agreement.pdf")
	if status, env = authed(stdhttp.MethodPost, srv.URL+"/lodgement/sessions/"+id+"/files", body, ct); status != stdhttp.StatusOK {
		t.Fatalf("files status = %d env %+v", status, env)
	}
	if status, env = authed(stdhttp.MethodPost, srv.URL+"/lodgement/sessions/"+id+"/submit", nil, ""); status != stdhttp.StatusOK {
		t.Fatalf("submit status = %d env %+v", status, env)
	}

	filer.mu.Lock()
	defer filer.mu.Unlock()
	if len(filer.seen) != 1 || filer.seen[0] != "user-tok" {
		t.Fatalf("forwarded credentials = %v", filer.seen)
	}
}
