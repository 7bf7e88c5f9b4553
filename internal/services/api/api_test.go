package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"lodgement/internal/platform/config"
	phttp "lodgement/internal/platform/net/http"

	"github.com/go-chi/chi/v5"
)

func mount(t *testing.T) (*httptest.Server, *Runtime) {
	t.Helper()
	r := phttp.AdaptChi(chi.NewRouter())
	rt := Mount(r, Options{Config: config.New()})
	srv := httptest.NewServer(r.Mux())
	t.Cleanup(srv.Close)
	return srv, rt
}

func TestMount_ModulesListed(t *testing.T) {
	srv, rt := mount(t)

	mods := rt.Modules()
	want := map[string]string{"meta": "/meta", "transfer": "/transfers", "lodgement": "/lodgement"}
	if len(mods) != len(want) {
		t.Fatalf("modules = %+v", mods)
	}
	for _, m := range mods {
		if want[m.Name] != m.Prefix {
			t.Fatalf("module %s prefix = %q, want %q", m.Name, m.Prefix, want[m.Name])
		}
		if m.Name == "transfer" && m.Ports != "module.Ports" {
			t.Fatalf("transfer ports = %q", m.Ports)
		}
	}

	resp, err := http.Get(srv.URL + "/api/v1/meta/modules")
	if err != nil {
		t.Fatalf("get modules: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()
	var env struct {
		Data struct {
			Modules []struct {
				Name string `json:"name"`
			} `json:"modules"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(env.Data.Modules) != 3 {
		t.Fatalf("served modules = %+v", env.Data.Modules)
	}
}

func TestMount_RoutesReachable(t *testing.T) {
	srv, _ := mount(t)

	cases := []struct {
		path string
		want int
	}{
		{"/api/v1/meta/health", http.StatusOK},
		{"/api/v1/lodgement/routing/contract/resolve?type=Solar", http.StatusOK},
		{"/api/v1/lodgement/sessions/missing", http.StatusNotFound},
	}
	for _, tc := range cases {
		resp, err := http.Get(srv.URL + tc.path)
		if err != nil {
			t.Fatalf("get %s: %v", tc.path, err)
		}
		_ = resp.Body.Close()
		if resp.StatusCode != tc.want {
			t.Fatalf("%s status = %d, want %d", tc.path, resp.StatusCode, tc.want)
		}
	}
}

func TestRuntime_StartAndRun(t *testing.T) {
	_, rt := mount(t)

	ctx, cancel := context.WithCancel(context.Background())
	if err := rt.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- rt.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		if err != nil && !errors.Is(err, context.Canceled) {
			t.Fatalf("run: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("runtime did not stop")
	}
}
