// Package logger owns the process zerolog root and the request scoped children built from it
package logger

import (
	"context"
	"io"
	"os"
	"runtime/debug"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"lodgement/internal/platform/config/raw"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/pkgerrors"
)

// Logger is the logging type every package passes around
type Logger = zerolog.Logger

// Options configures the root logger. Empty string fields are left off every line
type Options struct {
	Level       string
	Format      string // "console" or "json"
	Service     string
	Component   string
	Version     string
	Writer      io.Writer // stdout when nil
	WithCaller  bool
	SampleEvery int // keep one line in N when above 1
}

// FromEnv reads LOG_*. It goes through raw so reading config never logs
func FromEnv() Options {
	env := raw.New().Prefix("LOG_")
	return Options{
		Level:       env.Get("LEVEL", "debug"),
		Format:      strings.ToLower(env.Get("FORMAT", "console")),
		Service:     env.Get("SERVICE", ""),
		Component:   env.Get("COMPONENT", ""),
		WithCaller:  env.GetBool("CALLER", false),
		SampleEvery: env.GetInt("SAMPLE_EVERY", 0),
	}
}

var (
	initOnce sync.Once
	root     atomic.Pointer[Logger]
)

// Init installs the root logger. Calls after the first, including the implicit
// one in Get, are ignored
func Init(opt Options) {
	initOnce.Do(func() {
		zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack
		zerolog.TimeFieldFormat = time.RFC3339Nano
		l := build(opt)
		root.Store(&l)
	})
}

// Get returns the root, initializing it from the environment if Init was never called
func Get() *Logger {
	if l := root.Load(); l != nil {
		return l
	}
	Init(FromEnv())
	return root.Load()
}

func build(opt Options) Logger {
	out := opt.Writer
	if out == nil {
		out = os.Stdout
	}
	if opt.Format == "console" {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	ctx := zerolog.New(out).Level(parseLevel(opt.Level)).With().Timestamp()
	for _, f := range [][2]string{
		{"service", opt.Service},
		{"component", opt.Component},
		{"version", opt.Version},
	} {
		if f[1] != "" {
			ctx = ctx.Str(f[0], f[1])
		}
	}
	if bi, ok := debug.ReadBuildInfo(); ok {
		ctx = ctx.Str("go_version", bi.GoVersion)
	}
	if opt.WithCaller {
		ctx = ctx.Caller()
	}

	l := ctx.Logger()
	if opt.SampleEvery > 1 {
		l = l.Sample(&zerolog.BasicSampler{N: uint32(opt.SampleEvery)})
	}
	return l
}

// parseLevel maps a level name to zerolog. "warning" is accepted; blank or
// unknown names mean debug
func parseLevel(s string) zerolog.Level {
	switch s = strings.ToLower(strings.TrimSpace(s)); s {
	case "":
		return zerolog.DebugLevel
	case "warning":
		return zerolog.WarnLevel
	}
	if lvl, err := zerolog.ParseLevel(s); err == nil {
		return lvl
	}
	return zerolog.DebugLevel
}

type ctxKey uint8

const (
	requestIDKey ctxKey = iota + 1
	userIDKey
)

// WithRequest remembers the ids C stamps on request loggers. Empty ids are skipped
func WithRequest(ctx context.Context, reqID, userID string) context.Context {
	if reqID != "" {
		ctx = context.WithValue(ctx, requestIDKey, reqID)
	}
	if userID != "" {
		ctx = context.WithValue(ctx, userIDKey, userID)
	}
	return ctx
}

// C is the root with request_id and user_id from ctx attached
func C(ctx context.Context) *Logger {
	lc := Get().With()
	for _, k := range []struct {
		key  ctxKey
		name string
	}{{requestIDKey, "request_id"}, {userIDKey, "user_id"}} {
		if v, _ := ctx.Value(k.key).(string); v != "" {
			lc = lc.Str(k.name, v)
		}
	}
	l := lc.Logger()
	return &l
}

// Named is the root tagged with component. An empty name returns the root itself
func Named(component string) *Logger {
	if component == "" {
		return Get()
	}
	l := Get().With().Str("component", component).Logger()
	return &l
}
