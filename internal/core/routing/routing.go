// Package routing loads the counterparty routing tables from the embedded routes.json
// and resolves a contract or service type to the counterparty that receives it
package routing

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"golang.org/x/text/cases"
)

//go:embed routes.json
var embedded []byte

// TableName names one of the closed routing vocabularies
type TableName string

const (
	// Contract routes signed supply contracts
	Contract TableName = "contract"

	// EOI routes expressions of interest
	EOI TableName = "eoi"
)

// Entry is a counterparty and the addresses a lodgement is sent to
type Entry struct {
	MatchKey    string   `json:"match_key"`
	DisplayName string   `json:"display_name"`
	Emails      []string `json:"emails"`
	Default     bool     `json:"default"`
}

type rawEntry struct {
	MatchKey    string   `json:"match_key"    validate:"required"`
	DisplayName string   `json:"display_name" validate:"required"`
	Emails      []string `json:"emails"       validate:"required,min=1,dive,required,email"`
	Default     bool     `json:"default"`
}

type rawBook struct {
	Version int                     `json:"version"`
	Tables  map[TableName][]rawEntry `json:"tables"`
}

// Table is one validated routing vocabulary
type Table struct {
	name    TableName
	entries []Entry
	exact   map[string]int
	folded  map[string]int
	def     int
}

// Book holds every routing table by name
type Book struct {
	tables map[TableName]*Table
}

// Load parses the embedded tables
func Load() (*Book, error) { return Parse(embedded) }

// LoadFile parses tables from path, falling back to the embedded tables when path is empty
func LoadFile(path string) (*Book, error) {
	if strings.TrimSpace(path) == "" {
		return Load()
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("routing: read %s: %w", path, err)
	}
	return Parse(b)
}

// MustLoad panics when the embedded tables are invalid
func MustLoad() *Book {
	b, err := Load()
	if err != nil {
		panic(err)
	}
	return b
}

// Parse decodes and validates routing data.
// Both the contract and eoi tables must be present
func Parse(data []byte) (*Book, error) {
	var rb rawBook
	if err := json.Unmarshal(data, &rb); err != nil {
		return nil, fmt.Errorf("routing: parse: %w", err)
	}
	if rb.Version != 1 {
		return nil, fmt.Errorf("routing: unsupported version %d (want 1)", rb.Version)
	}

	v := validator.New(validator.WithRequiredStructEnabled())
	book := &Book{tables: make(map[TableName]*Table, len(rb.Tables))}
	for _, name := range []TableName{Contract, EOI} {
		raw, ok := rb.Tables[name]
		if !ok {
			return nil, fmt.Errorf("routing: missing table %q", name)
		}
		t, err := buildTable(v, name, raw)
		if err != nil {
			return nil, err
		}
		book.tables[name] = t
	}
	return book, nil
}

func buildTable(v *validator.Validate, name TableName, raw []rawEntry) (*Table, error) {
	t := &Table{
		name:   name,
		exact:  make(map[string]int, len(raw)),
		folded: make(map[string]int, len(raw)),
		def:    -1,
	}
	for i, re := range raw {
		if err := v.Struct(re); err != nil {
			return nil, fmt.Errorf("routing: %s[%d] %q: %w", name, i, re.MatchKey, err)
		}
		fk := fold(re.MatchKey)
		if prev, dup := t.folded[fk]; dup {
			return nil, fmt.Errorf("routing: %s: duplicate key %q (also %q)", name, re.MatchKey, t.entries[prev].MatchKey)
		}
		if re.Default {
			if t.def >= 0 {
				return nil, fmt.Errorf("routing: %s: more than one default entry", name)
			}
			t.def = len(t.entries)
		}
		t.exact[re.MatchKey] = len(t.entries)
		t.folded[fk] = len(t.entries)
		t.entries = append(t.entries, Entry{
			MatchKey:    re.MatchKey,
			DisplayName: re.DisplayName,
			Emails:      append([]string(nil), re.Emails...),
			Default:     re.Default,
		})
	}
	if t.def < 0 {
		return nil, fmt.Errorf("routing: %s: no default entry", name)
	}
	return t, nil
}

// fold is Unicode case folding; a Caser is not safe to share so one is built per call
func fold(s string) string { return cases.Fold().String(s) }

// Table returns the named table
func (b *Book) Table(name TableName) (*Table, bool) {
	t, ok := b.tables[TableName(strings.ToLower(string(name)))]
	return t, ok
}

// Names lists the loaded table names in sorted order
func (b *Book) Names() []TableName {
	out := make([]TableName, 0, len(b.tables))
	for n := range b.tables {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Name returns the table name
func (t *Table) Name() TableName { return t.name }

// Resolve returns the entry for typ: exact key, then case-insensitive key, then the default.
// typ is not trimmed
func (t *Table) Resolve(typ string) Entry {
	if i, ok := t.exact[typ]; ok {
		return t.entries[i].clone()
	}
	if i, ok := t.folded[fold(typ)]; ok {
		return t.entries[i].clone()
	}
	return t.entries[t.def].clone()
}

// Default returns the table's catch-all entry
func (t *Table) Default() Entry { return t.entries[t.def].clone() }

// Entries returns a copy of every entry in file order
func (t *Table) Entries() []Entry {
	out := make([]Entry, len(t.entries))
	for i, e := range t.entries {
		out[i] = e.clone()
	}
	return out
}

func (e Entry) clone() Entry {
	e.Emails = append([]string(nil), e.Emails...)
	return e
}
