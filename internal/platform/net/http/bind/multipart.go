package bind

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"

	perr "lodgement/internal/platform/errors"
)

// MultipartOptions controls multipart parsing
type MultipartOptions struct {
	MaxBytes int64 // default 25MB over the whole body
	MaxFiles int   // default 20
}

func defaultMultipartOptions() MultipartOptions {
	return MultipartOptions{MaxBytes: 25 << 20, MaxFiles: 20}
}

// Upload is one file part read fully into memory
type Upload struct {
	Field     string
	Name      string
	MediaType string
	Content   []byte
}

// ParseMultipart streams a multipart/form-data body and returns its plain fields and
// its file parts in the order they were sent
func ParseMultipart(r *http.Request, opts ...MultipartOptions) (url.Values, []Upload, error) {
	o := defaultMultipartOptions()
	if len(opts) > 0 {
		if opts[0].MaxBytes > 0 {
			o.MaxBytes = opts[0].MaxBytes
		}
		if opts[0].MaxFiles > 0 {
			o.MaxFiles = opts[0].MaxFiles
		}
	}

	ct, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || ct != "multipart/form-data" {
		return nil, nil, perr.InvalidArgf("expected multipart/form-data body")
	}
	r.Body = http.MaxBytesReader(nil, r.Body, o.MaxBytes)

	mr, err := r.MultipartReader()
	if err != nil {
		return nil, nil, perr.InvalidArgf("invalid multipart body: %v", err)
	}

	fields := url.Values{}
	var files []Upload
	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, multipartErr(err)
		}
		b, err := io.ReadAll(part)
		_ = part.Close()
		if err != nil {
			return nil, nil, multipartErr(err)
		}
		if part.FileName() == "" {
			fields.Add(part.FormName(), string(b))
			continue
		}
		if len(files) == o.MaxFiles {
			return nil, nil, perr.InvalidArgf("too many files (max %d)", o.MaxFiles)
		}
		mt := part.Header.Get("Content-Type")
		if strings.TrimSpace(mt) == "" {
			mt = "application/octet-stream"
		}
		files = append(files, Upload{
			Field:     part.FormName(),
			Name:      part.FileName(),
			MediaType: mt,
			Content:   b,
		})
	}
	return fields, files, nil
}

func multipartErr(err error) error {
	var tooBig *http.MaxBytesError
	if errors.As(err, &tooBig) {
		return perr.InvalidArgf("request body exceeds %d bytes", tooBig.Limit)
	}
	return perr.InvalidArgf("invalid multipart body: %v", err)
}
