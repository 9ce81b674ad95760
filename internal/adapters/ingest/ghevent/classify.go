package ghevent

import (
	"encoding/json"
	"fmt"

	"pulse/internal/core/activity"
	"pulse/internal/core/walker"
	perr "pulse/internal/platform/errors"
	"pulse/internal/platform/net/http/bind"
)

// Kind reports which activity kind e maps to, None for unsupported events
// a recognized event whose payload cannot be read is an error
func Kind(e Event) (activity.Kind, error) {
	switch e.Type {
	case TypePush:
		return activity.KindPush, nil
	case TypeWatch:
		return activity.KindWatch, nil
	case TypeCreate:
		var p createPayload
		if err := decodePayload(e, &p); err != nil {
			return activity.None, err
		}
		switch p.RefType {
		case RefTag:
			return activity.KindCreateTag, nil
		case RefBranch:
			return activity.KindCreateBranch, nil
		case RefRepository:
			return activity.KindCreateRepository, nil
		}
	}
	return activity.None, nil
}

// Classify maps e onto an activity
// ok=false means the event type is not representable; label prefixes error paths
func Classify(e Event, label string) (activity.Activity, bool, error) {
	kind, err := Kind(e)
	if err != nil {
		return nil, false, payloadErr(label, err)
	}
	if kind == activity.None {
		return nil, false, nil
	}
	if err := bind.Struct(e); err != nil {
		p := label
		if pe, ok := perr.As(err); ok && pe.Field() != "" {
			p = path(label, pe.Field())
		}
		return nil, false, perr.Validationf(p, "%s: %s", p, err.Error())
	}

	rec := activity.Record{
		activity.TagField:        string(kind),
		activity.FieldPlatform:   Platform,
		activity.FieldTimestamp:  e.CreatedAt,
		activity.FieldUsername:   e.Actor.Login,
		activity.FieldRepository: e.Repo.Name,
		activity.FieldURL:        WebBase + "/" + e.Repo.Name,
	}

	switch kind {
	case activity.KindPush:
		var p pushPayload
		if err := decodePayload(e, &p); err != nil {
			return nil, false, payloadErr(label, err)
		}
		if p.Head != "" {
			rec[activity.FieldCommitRef] = p.Head
			rec[activity.FieldURL] = fmt.Sprintf("%s/%s/commit/%s", WebBase, e.Repo.Name, p.Head)
		}
	case activity.KindCreateTag:
		var p createPayload
		if err := decodePayload(e, &p); err != nil {
			return nil, false, payloadErr(label, err)
		}
		if p.Ref != "" {
			rec[activity.FieldTagName] = p.Ref
			rec[activity.FieldURL] = fmt.Sprintf("%s/%s/releases/tag/%s", WebBase, e.Repo.Name, p.Ref)
		}
	case activity.KindCreateBranch:
		var p createPayload
		if err := decodePayload(e, &p); err != nil {
			return nil, false, payloadErr(label, err)
		}
		if p.Ref != "" {
			rec[activity.FieldBranchName] = p.Ref
			rec[activity.FieldURL] = fmt.Sprintf("%s/%s/tree/%s", WebBase, e.Repo.Name, p.Ref)
		}
	}

	a, err := activity.Import(rec, label)
	if err != nil {
		return nil, false, err
	}
	return a, true, nil
}

// NewWalker wraps fetch in a walker that classifies GitHub events
// errors are reported under label[i]
func NewWalker(label string, fetch walker.FetchFunc[Event]) *walker.EventWalker[Event] {
	return walker.NewEventWalker(Platform, fetch, func(i int, e Event) (activity.Activity, bool, error) {
		return Classify(e, fmt.Sprintf("%s[%d]", label, i))
	})
}

func decodePayload(e Event, dst any) error {
	if len(e.Payload) == 0 {
		return nil
	}
	if err := json.Unmarshal(e.Payload, dst); err != nil {
		return perr.Wrap(err, perr.ErrorCodeJSON, "ghevent: decode payload")
	}
	return nil
}

func payloadErr(label string, err error) error {
	p := path(label, "payload")
	return perr.Validationf(p, "%s: %v", p, perr.Root(err))
}

func path(label, field string) string {
	if label == "" {
		return field
	}
	return label + "." + field
}
