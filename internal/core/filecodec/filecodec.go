// Package filecodec converts a binary file into a text safe transfer payload and back.
// The payload shape is shared by the transfer stores and the handoff channel
package filecodec

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
)

// FreshWindow is how long a payload stays usable after capture
const FreshWindow = 5 * time.Minute

// ErrDecode marks a payload whose data is not a valid encoding
var ErrDecode = errors.New("filecodec: malformed payload data")

// Payload is the persisted and broadcast form of a file
type Payload struct {
	Name      string `json:"name"`
	Type      string `json:"type"`
	Data      string `json:"data"`
	Timestamp int64  `json:"timestamp"` // epoch ms, producer wall clock
}

// File is a decoded payload
type File struct {
	Name      string
	MediaType string
	Content   []byte
}

// Size returns the content length in bytes
func (f File) Size() int { return len(f.Content) }

// CapturedAt returns the producer capture time
func (p Payload) CapturedAt() time.Time { return time.UnixMilli(p.Timestamp) }

// IsZero reports whether p carries nothing
func (p Payload) IsZero() bool { return p.Name == "" && p.Data == "" && p.Timestamp == 0 }

// Encode reads r fully and returns the text safe payload stamped with now
func Encode(name, mediaType string, r io.Reader, now time.Time) (Payload, error) {
	if r == nil {
		return Payload{}, fmt.Errorf("filecodec: nil reader for %q", name)
	}
	raw, err := io.ReadAll(r)
	if err != nil {
		return Payload{}, fmt.Errorf("filecodec: read %q: %w", name, err)
	}
	return EncodeBytes(name, mediaType, raw, now), nil
}

// EncodeBytes is Encode for content already in memory
func EncodeBytes(name, mediaType string, raw []byte, now time.Time) Payload {
	if mediaType == "" {
		mediaType = "application/octet-stream"
	}
	return Payload{
		Name:      name,
		Type:      mediaType,
		Data:      "data:" + mediaType + ";base64," + base64.StdEncoding.EncodeToString(raw),
		Timestamp: now.UnixMilli(),
	}
}

// Decode reverses Encode. Malformed data yields an error wrapping ErrDecode
func Decode(p Payload) (File, error) {
	body, ok := splitDataURL(p.Data)
	if !ok {
		return File{}, fmt.Errorf("%w: missing base64 data prefix", ErrDecode)
	}
	raw, err := base64.StdEncoding.DecodeString(body)
	if err != nil {
		return File{}, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return File{Name: p.Name, MediaType: p.Type, Content: raw}, nil
}

// Reader returns the decoded content as a reader
func (f File) Reader() io.Reader { return bytes.NewReader(f.Content) }

// Fresh reports whether p is still inside window at now.
// The boundary instant counts as expired
func Fresh(p Payload, now time.Time, window time.Duration) bool {
	if window <= 0 {
		window = FreshWindow
	}
	return p.Timestamp > now.Add(-window).UnixMilli()
}

// splitDataURL returns the part after "base64," for data:<type>;base64,<body>
func splitDataURL(s string) (string, bool) {
	if !strings.HasPrefix(s, "data:") {
		return "", false
	}
	i := strings.Index(s, ",")
	if i < 0 {
		return "", false
	}
	if !strings.HasSuffix(s[:i], ";base64") {
		return "", false
	}
	return s[i+1:], true
}
