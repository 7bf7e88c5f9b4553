// Package testkit holds assertions and seam helpers shared by package tests
package testkit

import (
	"strings"
	"sync"
	"testing"
)

var serial sync.Mutex

// Swap points *target at v until t finishes. Tests that Swap a package level var
// should also call Serial
func Swap[T any](t testing.TB, target *T, v T) {
	t.Helper()
	prev := *target
	*target = v
	t.Cleanup(func() { *target = prev })
}

// Serial holds a process wide lock until t finishes
func Serial(t testing.TB) {
	t.Helper()
	serial.Lock()
	t.Cleanup(serial.Unlock)
}

// MustPanic fails t unless fn panics
func MustPanic(t testing.TB, fn func()) {
	t.Helper()
	if r := catch(fn); r == nil {
		t.Fatal("expected a panic")
	}
}

// MustNotPanic fails t if fn panics
func MustNotPanic(t testing.TB, fn func()) {
	t.Helper()
	if r := catch(fn); r != nil {
		t.Fatalf("unexpected panic: %v", r)
	}
}

// MustContain fails t unless out contains want. out is printed in full on failure
func MustContain(t testing.TB, out, want string) {
	t.Helper()
	if !strings.Contains(out, want) {
		t.Fatalf("missing %q in output:\n%s", want, out)
	}
}

func catch(fn func()) (r any) {
	defer func() { r = recover() }()
	fn()
	return nil
}
