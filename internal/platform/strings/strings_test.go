package strings

import (
	"slices"
	"testing"

	kit "lodgement/internal/platform/testkit"
)

func TestIfEmpty(t *testing.T) {
	def := []string{"GET", "POST"}
	if got := IfEmpty(nil, def); !slices.Equal(got, def) {
		t.Fatalf("nil in: %v", got)
	}
	if got := IfEmpty([]string{}, def); !slices.Equal(got, def) {
		t.Fatalf("empty in: %v", got)
	}
	if got := IfEmpty([]string{"PUT"}, def); !slices.Equal(got, []string{"PUT"}) {
		t.Fatalf("set in: %v", got)
	}
}

func TestMustString(t *testing.T) {
	if got := MustString(" transfer ", "module name"); got != " transfer " {
		t.Fatalf("got %q", got)
	}
	for _, in := range []string{"", " ", "\t\n"} {
		kit.MustPanic(t, func() { MustString(in, "module name") })
	}
}

func TestMustPrefix(t *testing.T) {
	cases := map[string]string{
		"transfer":        "/transfer",
		"/lodgement":      "/lodgement",
		" /lodgement/ ":   "/lodgement",
		"//meta//":        "/meta",
		"routing/tables/": "/routing/tables",
	}
	for in, want := range cases {
		if got := MustPrefix(in); got != want {
			t.Errorf("MustPrefix(%q)=%q want %q", in, got, want)
		}
	}
	for _, in := range []string{"", "/", " // "} {
		kit.MustPanic(t, func() { MustPrefix(in) })
	}
}
