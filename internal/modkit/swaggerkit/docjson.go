package swaggerkit

import (
	"encoding/json"
	"net/http"
	"strings"

	"lodgement/internal/platform/config"
	perr "lodgement/internal/platform/errors"

	"github.com/swaggo/swag/v2"
)

// InstanceName is the swag registry key the API docs live under
const InstanceName = "api"

// docReader is swapped in tests to feed a raw document
var docReader = func() (string, error) { return swag.ReadDoc(InstanceName) }

type obj = map[string]any

// serveDocJSON serves the registered document as OAS 3.0.3 with the error envelope
// declared on every operation. The UI cannot render 3.1
func serveDocJSON() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		raw, err := docReader()
		if err != nil {
			http.Error(w, "spec unavailable", http.StatusServiceUnavailable)
			return
		}
		var doc obj
		if err := json.Unmarshal([]byte(raw), &doc); err != nil {
			http.Error(w, "spec parse error", http.StatusInternalServerError)
			return
		}

		delete(doc, "swagger")
		doc["openapi"] = "3.0.3"
		if _, ok := doc["servers"]; !ok {
			doc["servers"] = []any{obj{"url": "/api/v1"}}
		}
		if sfx := config.New().Prefix("CORE_API_").MayString("DOCS_TITLE_SUFFIX", ""); sfx != "" {
			info := child(doc, "info")
			title, _ := info["title"].(string)
			info["title"] = strings.TrimSpace(title + " " + sfx)
		}
		addErrorResponses(doc)

		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.Header().Set("Cache-Control", "no-store")
		_ = json.NewEncoder(w).Encode(doc)
	}
}

// child returns m[key] as an object, creating it when missing
func child(m obj, key string) obj {
	if c, ok := m[key].(obj); ok {
		return c
	}
	c := obj{}
	m[key] = c
	return c
}

var errorSchema = obj{
	"type":     "object",
	"required": []any{"status_code", "status"},
	"properties": obj{
		"status_code": obj{"type": "integer"},
		"status":      obj{"type": "string"},
		"code":        obj{"type": "integer"},
		"error":       obj{"type": "string"},
		"field":       obj{"type": "string"},
		"request_id":  obj{"type": "string"},
	},
}

func errorResponse(code perr.ErrorCode, msg string) obj {
	status := code.Status()
	return obj{
		"description": http.StatusText(status),
		"content": obj{"application/json": obj{
			"schema": obj{"$ref": "#/components/schemas/ErrorResponse"},
			"example": obj{
				"status_code": status,
				"status":      http.StatusText(status),
				"code":        code,
				"error":       msg,
			},
		}},
	}
}

// addErrorResponses declares ErrorResponse and fills in 400 and 500 wherever an
// operation does not document them itself
func addErrorResponses(doc obj) {
	schemas := child(child(doc, "components"), "schemas")
	if _, ok := schemas["ErrorResponse"]; !ok {
		schemas["ErrorResponse"] = errorSchema
	}

	fallback := map[string]obj{
		"400": errorResponse(perr.CodeValidation, "business_name must be at least 2"),
		"500": errorResponse(perr.CodePanic, "internal error"),
	}
	paths, _ := doc["paths"].(obj)
	for _, item := range paths {
		ops, _ := item.(obj)
		for _, v := range ops {
			op, ok := v.(obj)
			if !ok {
				continue
			}
			resps := child(op, "responses")
			for status, r := range fallback {
				if _, ok := resps[status]; !ok {
					resps[status] = r
				}
			}
		}
	}
}
