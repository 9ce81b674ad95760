// Package ghevent holds the raw GitHub event shape shared by the REST feed and
// GH Archive, and the rule that maps it onto activities
package ghevent

import (
	"encoding/json"
	"time"

	perr "pulse/internal/platform/errors"
)

// Platform is the activity platform id for everything GitHub produces
const Platform = "github"

// WebBase prefixes the links stored on activities
const WebBase = "https://github.com"

// Event types the classifier understands
const (
	TypePush   = "PushEvent"
	TypeWatch  = "WatchEvent"
	TypeCreate = "CreateEvent"
)

// CreateEvent ref types
const (
	RefTag        = "tag"
	RefBranch     = "branch"
	RefRepository = "repository"
)

// Event is the envelope both the events API and GH Archive emit per event
// Payload stays raw for type-specific decode
type Event struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Actor     Actor           `json:"actor"`
	Repo      Repo            `json:"repo"`
	Payload   json.RawMessage `json:"payload"`
	Public    bool            `json:"public"`
	CreatedAt time.Time       `json:"created_at" validate:"required"`
}

// Actor is the user who triggered the event
type Actor struct {
	ID    int64  `json:"id"`
	Login string `json:"login" validate:"required"`
}

// Repo is the repository the event occurred in
type Repo struct {
	ID   int64  `json:"id"`
	Name string `json:"name" validate:"required"` // owner/name
}

type pushPayload struct {
	Ref  string `json:"ref"`
	Head string `json:"head"`
}

type createPayload struct {
	Ref     string `json:"ref"`
	RefType string `json:"ref_type"`
}

// DecodeList parses a JSON array of events as served by the events API
func DecodeList(data []byte) ([]Event, error) {
	var out []Event
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeJSON, "ghevent: decode event list")
	}
	return out, nil
}
