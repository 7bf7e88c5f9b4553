package store

import (
	"context"
	"testing"

	"lodgement/internal/platform/store/ch"
)

func TestCHSeam_Unconnected(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newCHAdapter(&ch.CH{})

	cases := []struct {
		name string
		call func() error
	}{
		{"insert wrong shape", func() error { return s.Insert(ctx, "lodgement_events", []string{"nope"}) }},
		{"insert", func() error { return s.Insert(ctx, "lodgement_events", [][]any{{"k1"}}) }},
		{"exec", func() error { return s.Exec(ctx, "OPTIMIZE TABLE lodgement_events") }},
		{"query", func() error { _, err := s.Query(ctx, "SELECT 1"); return err }},
		{"ping", func() error { return s.(Pinger).Ping(ctx) }},
		{"nil seam ping", func() error { return (*chSeam)(nil).Ping(ctx) }},
	}
	for _, tc := range cases {
		if tc.call() == nil {
			t.Errorf("%s: want error", tc.name)
		}
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}
