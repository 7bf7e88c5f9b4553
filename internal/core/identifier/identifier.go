// Package identifier decides which meter identifier applies to a utility or service category
// and builds the composite business label used as the submission key
package identifier

import "strings"

// Kind is the meter identifier kind implied by a category
type Kind string

const (
	// KindNone means no identifier is implied
	KindNone Kind = "none"

	// KindNMI is the National Meter Identifier used by electricity accounts
	KindNMI Kind = "NMI"

	// KindMIRN is the Meter Installation Registration Number used by gas accounts
	KindMIRN Kind = "MIRN"
)

// Field names offered to the operator
const (
	FieldNMI  = "nmi"
	FieldMIRN = "mirn"
)

// Spec is the identifier derived from a category
type Spec struct {
	Kind  Kind   `json:"kind"`
	Label string `json:"label"`
}

// Fields lists the optional inputs offered for this spec.
// With no implied kind both are offered so the operator can record whichever applies
func (s Spec) Fields() []string {
	switch s.Kind {
	case KindNMI:
		return []string{FieldNMI}
	case KindMIRN:
		return []string{FieldMIRN}
	default:
		return []string{FieldNMI, FieldMIRN}
	}
}

// electricity and meter data categories from both the contract and service vocabularies
var nmiCategories = set(
	"C&I Electricity", "CI Electricity", "ci_electricity", "Commercial Electricity",
	"SME Electricity", "sme_electricity", "Small Business Electricity",
	"Meter Data Agreement", "Meter Data", "DMA", "dma", "meter_data_agreement", "Metering",
)

var mirnCategories = set(
	"C&I Gas", "CI Gas", "ci_gas", "Commercial Gas",
	"SME Gas", "sme_gas", "Small Business Gas",
)

var labels = map[Kind]string{
	KindNMI:  "National Meter Identifier (NMI)",
	KindMIRN: "Meter Installation Registration Number (MIRN)",
	KindNone: "No identifier implied",
}

func set(vals ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(vals))
	for _, v := range vals {
		m[norm(v)] = struct{}{}
	}
	return m
}

func norm(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

// Resolve maps a category to its identifier spec
func Resolve(category string) Spec {
	c := norm(category)
	k := KindNone
	if _, ok := nmiCategories[c]; ok {
		k = KindNMI
	} else if _, ok := mirnCategories[c]; ok {
		k = KindMIRN
	}
	return Spec{Kind: k, Label: labels[k]}
}

// ComposeLabel trims business and appends " NMI: <v>" or " MIRN: <v>" when a value is given.
// NMI wins when both are present
func ComposeLabel(business, nmi, mirn string) string {
	out := strings.TrimSpace(business)
	if v := strings.TrimSpace(nmi); v != "" {
		return out + " NMI: " + v
	}
	if v := strings.TrimSpace(mirn); v != "" {
		return out + " MIRN: " + v
	}
	return out
}
