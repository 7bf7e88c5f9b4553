package identifier

import (
	"strings"
	"testing"
)

func TestResolve_DecisionTable(t *testing.T) {
	cases := []struct {
		in   string
		want Kind
	}{
		{"C&I Electricity", KindNMI},
		{"c&i electricity", KindNMI},
		{"SME Electricity", KindNMI},
		{"sme_electricity", KindNMI},
		{"Meter Data Agreement", KindNMI},
		{"DMA", KindNMI},
		{"C&I Gas", KindMIRN},
		{"SME Gas", KindMIRN},
		{" ci_gas ", KindMIRN},
		{"Waste Management", KindNone},
		{"Solar PV", KindNone},
		{"", KindNone},
	}
	for _, c := range cases {
		got := Resolve(c.in)
		if got.Kind != c.want {
			t.Fatalf("Resolve(%q) = %s, want %s", c.in, got.Kind, c.want)
		}
		if got.Label == "" {
			t.Fatalf("Resolve(%q) empty label", c.in)
		}
	}
}

func TestSpecFields(t *testing.T) {
	if f := Resolve("C&I Electricity").Fields(); strings.Join(f, ",") != "nmi" {
		t.Fatalf("nmi fields = %v", f)
	}
	if f := Resolve("SME Gas").Fields(); strings.Join(f, ",") != "mirn" {
		t.Fatalf("mirn fields = %v", f)
	}
	if f := Resolve("Cleaning").Fields(); strings.Join(f, ",") != "nmi,mirn" {
		t.Fatalf("fallback fields = %v", f)
	}
}

func TestComposeLabel(t *testing.T) {
	cases := []struct {
		business, nmi, mirn, want string
	}{
		{"Acme Pty Ltd", "NMI123", "", "Acme Pty Ltd NMI: NMI123"},
		{"Acme Pty Ltd", "", "MIRN456", "Acme Pty Ltd MIRN: MIRN456"},
		{"Acme Pty Ltd", "", "", "Acme Pty Ltd"},
		{"Acme Pty Ltd", "NMI123", "MIRN456", "Acme Pty Ltd NMI: NMI123"},
		{"  Acme Pty Ltd  ", "", "", "Acme Pty Ltd"},
		{"Acme Pty Ltd", "   ", "MIRN456", "Acme Pty Ltd MIRN: MIRN456"},
	}
	for _, c := range cases {
		if got := ComposeLabel(c.business, c.nmi, c.mirn); got != c.want {
			t.Fatalf("ComposeLabel(%q,%q,%q) = %q, want %q", c.business, c.nmi, c.mirn, got, c.want)
		}
	}
}
