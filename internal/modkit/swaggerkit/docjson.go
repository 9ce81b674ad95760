package swaggerkit

import (
	_ "embed"
	"encoding/json"
	"net/http"

	"pulse/internal/platform/config"
	perr "pulse/internal/platform/errors"
)

//go:embed openapi.json
var openapiDoc string

// docReader is swapped in tests
var docReader = func() string { return openapiDoc }

// SpecMutator edits the decoded document before it is served
type SpecMutator func(map[string]any)

var mutators []SpecMutator

// Register adds m to every doc.json response; call it from init
func Register(m SpecMutator) {
	if m != nil {
		mutators = append(mutators, m)
	}
}

const errorRef = "#/components/schemas/ErrorResponse"

// errorSchema mirrors the envelope written by phttp.Error
var errorSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"status_code": map[string]any{"type": "integer"},
		"status":      map[string]any{"type": "string"},
		"code":        map[string]any{"type": "integer"},
		"error":       map[string]any{"type": "string"},
		"field":       map[string]any{"type": "string"},
		"request_id":  map[string]any{"type": "string"},
	},
	"required": []any{"status_code", "status"},
}

// defaults are added to any operation that does not declare the status itself
var defaults = map[string]map[string]any{
	"400": errorResponse(http.StatusBadRequest, perr.ErrorCodeValidation, "limit must be at most 1000", "limit"),
	"500": errorResponse(http.StatusInternalServerError, perr.ErrorCodePanic, "panic recovered", ""),
}

func errorResponse(status int, code perr.ErrorCode, msg, field string) map[string]any {
	ex := map[string]any{
		"status_code": status,
		"status":      http.StatusText(status),
		"code":        code,
		"error":       msg,
		"request_id":  "9f1c2d3e/AbCdEf-000042",
	}
	if field != "" {
		ex["field"] = field
	}
	return map[string]any{
		"description": http.StatusText(status),
		"content": map[string]any{
			"application/json": map[string]any{
				"schema":  map[string]any{"$ref": errorRef},
				"example": ex,
			},
		},
	}
}

func serveDocJSON() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var spec map[string]any
		if err := json.Unmarshal([]byte(docReader()), &spec); err != nil {
			http.Error(w, "spec parse error", http.StatusInternalServerError)
			return
		}
		decorate(spec)
		for _, m := range mutators {
			m(spec)
		}
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.Header().Set("Cache-Control", "no-store")
		_ = json.NewEncoder(w).Encode(spec)
	}
}

// child returns m[key] as an object, creating it when absent
func child(m map[string]any, key string) map[string]any {
	c, ok := m[key].(map[string]any)
	if !ok {
		c = map[string]any{}
		m[key] = c
	}
	return c
}

func decorate(spec map[string]any) {
	// the bundled UI renders 3.0 only
	spec["openapi"] = "3.0.3"
	if _, ok := spec["servers"]; !ok {
		spec["servers"] = []any{map[string]any{"url": "/api/v1"}}
	}
	if sfx := config.New().Prefix("CORE_API_").MayString("DOCS_TITLE_SUFFIX", ""); sfx != "" {
		info := child(spec, "info")
		if title, ok := info["title"].(string); ok {
			info["title"] = title + " " + sfx
		}
	}

	schemas := child(child(spec, "components"), "schemas")
	if _, ok := schemas["ErrorResponse"]; !ok {
		schemas["ErrorResponse"] = errorSchema
	}

	paths, _ := spec["paths"].(map[string]any)
	for _, item := range paths {
		ops, ok := item.(map[string]any)
		if !ok {
			continue
		}
		for _, op := range ops {
			o, ok := op.(map[string]any)
			if !ok {
				continue
			}
			resps := child(o, "responses")
			for status, resp := range defaults {
				if _, ok := resps[status]; !ok {
					resps[status] = resp
				}
			}
		}
	}
}
