package activity

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"

	perr "pulse/internal/platform/errors"
)

// Record is the plain exported form of an activity
type Record = map[string]any

// Field names of the exported record
const (
	TagField        = "$type"
	FieldPlatform   = "platform"
	FieldTimestamp  = "timestamp"
	FieldUsername   = "username"
	FieldURL        = "url"
	FieldRepository = "repository"
	FieldCommitRef  = "commitRef"
	FieldTagName    = "tagName"
	FieldBranchName = "branchName"
)

// maxEpochMillis bounds numeric timestamps to roughly +-275000 years around the epoch
const maxEpochMillis = 8.64e15

// Import validates raw and builds the variant selected by its $type tag
// label prefixes every failure path, e.g. "feed[3]" yields "feed[3].timestamp"
func Import(raw any, label string) (Activity, error) {
	rec, ok := asRecord(raw)
	if !ok {
		return nil, invalid(label, "expected an object, got %s", typeName(raw))
	}
	r := &reader{rec: rec, label: label}

	tag := r.tag()
	if r.err != nil {
		return nil, r.err
	}
	kind := Kind(tag)

	switch kind {
	case KindPush:
		b := r.base()
		a := PushActivity{
			Base:       b,
			Username:   r.str(FieldUsername),
			URL:        r.str(FieldURL),
			Repository: r.str(FieldRepository),
			CommitRef:  r.str(FieldCommitRef),
		}
		return done(a, r.err)
	case KindWatch:
		b := r.base()
		a := WatchActivity{
			Base:       b,
			Username:   r.str(FieldUsername),
			URL:        r.str(FieldURL),
			Repository: r.str(FieldRepository),
		}
		return done(a, r.err)
	case KindCreateTag:
		b := r.base()
		a := CreateTagActivity{
			Base:       b,
			Username:   r.str(FieldUsername),
			URL:        r.str(FieldURL),
			Repository: r.str(FieldRepository),
			TagName:    r.str(FieldTagName),
		}
		return done(a, r.err)
	case KindCreateBranch:
		b := r.base()
		a := CreateBranchActivity{
			Base:       b,
			Username:   r.str(FieldUsername),
			URL:        r.str(FieldURL),
			Repository: r.str(FieldRepository),
			BranchName: r.str(FieldBranchName),
		}
		return done(a, r.err)
	case KindCreateRepository:
		b := r.base()
		a := CreateRepositoryActivity{
			Base:       b,
			Username:   r.str(FieldUsername),
			URL:        r.str(FieldURL),
			Repository: r.str(FieldRepository),
		}
		return done(a, r.err)
	default:
		return nil, invalid(r.path(TagField), "unknown activity type %q", tag)
	}
}

// ImportJSON decodes one JSON object and imports it
func ImportJSON(data []byte, label string) (Activity, error) {
	raw, err := decodeJSON(data, label)
	if err != nil {
		return nil, err
	}
	return Import(raw, label)
}

// ImportAll imports an array; the first malformed element fails the whole batch
func ImportAll(raw any, label string) ([]Activity, error) {
	items, ok := asList(raw)
	if !ok {
		return nil, invalid(label, "expected an array, got %s", typeName(raw))
	}
	out := make([]Activity, 0, len(items))
	for i, it := range items {
		a, err := Import(it, fmt.Sprintf("%s[%d]", label, i))
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

// Export renders a as a plain record carrying its $type tag
func Export(a Activity) Record {
	var e exporter
	a.Accept(&e)
	return e.out
}

// ExportAll exports every activity in order
func ExportAll(xs []Activity) []Record {
	out := make([]Record, 0, len(xs))
	for _, a := range xs {
		out = append(out, Export(a))
	}
	return out
}

// MarshalTable renders the persisted table form: a JSON array of exported records
func MarshalTable(xs []Activity) ([]byte, error) {
	b, err := json.MarshalIndent(ExportAll(xs), "", "  ")
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeJSON, "activity table encode failed")
	}
	return b, nil
}

// UnmarshalTable parses the persisted table form; empty input is an empty table
func UnmarshalTable(data []byte, label string) ([]Activity, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return []Activity{}, nil
	}
	raw, err := decodeJSON(data, label)
	if err != nil {
		return nil, err
	}
	return ImportAll(raw, label)
}

// ValidationPath returns the offending field path of a validation failure
func ValidationPath(err error) (string, bool) {
	e, ok := perr.As(err)
	if !ok || e.Code() != perr.ErrorCodeValidation {
		return "", false
	}
	return e.Field(), true
}

type exporter struct{ out Record }

func (e *exporter) head(k Kind, b Base, username, url, repository string) Record {
	return Record{
		TagField:        string(k),
		FieldPlatform:   b.platform,
		FieldTimestamp:  b.timestamp.UnixMilli(),
		FieldUsername:   username,
		FieldURL:        url,
		FieldRepository: repository,
	}
}

func (e *exporter) VisitPush(a PushActivity) {
	e.out = e.head(KindPush, a.Base, a.Username, a.URL, a.Repository)
	e.out[FieldCommitRef] = a.CommitRef
}

func (e *exporter) VisitWatch(a WatchActivity) {
	e.out = e.head(KindWatch, a.Base, a.Username, a.URL, a.Repository)
}

func (e *exporter) VisitCreateTag(a CreateTagActivity) {
	e.out = e.head(KindCreateTag, a.Base, a.Username, a.URL, a.Repository)
	e.out[FieldTagName] = a.TagName
}

func (e *exporter) VisitCreateBranch(a CreateBranchActivity) {
	e.out = e.head(KindCreateBranch, a.Base, a.Username, a.URL, a.Repository)
	e.out[FieldBranchName] = a.BranchName
}

func (e *exporter) VisitCreateRepository(a CreateRepositoryActivity) {
	e.out = e.head(KindCreateRepository, a.Base, a.Username, a.URL, a.Repository)
}

// reader pulls typed fields out of a record, keeping the first failure
type reader struct {
	rec   Record
	label string
	err   error
}

func (r *reader) path(field string) string {
	if r.label == "" {
		return field
	}
	return r.label + "." + field
}

func (r *reader) fail(field, format string, a ...any) {
	if r.err == nil {
		r.err = invalid(r.path(field), format, a...)
	}
}

func (r *reader) tag() string {
	v, ok := r.rec[TagField]
	if !ok || v == nil {
		r.fail(TagField, "discriminator is missing")
		return ""
	}
	s, ok := v.(string)
	if !ok {
		r.fail(TagField, "discriminator must be a string, got %s", typeName(v))
		return ""
	}
	return s
}

func (r *reader) str(field string) string {
	if r.err != nil {
		return ""
	}
	v, ok := r.rec[field]
	if !ok || v == nil {
		r.fail(field, "required field is missing")
		return ""
	}
	s, ok := v.(string)
	if !ok {
		r.fail(field, "expected a string, got %s", typeName(v))
		return ""
	}
	return s
}

func (r *reader) base() Base {
	platform := r.str(FieldPlatform)
	if r.err == nil && platform == "" {
		r.fail(FieldPlatform, "must be a non-empty string")
	}
	ts := r.instant(FieldTimestamp)
	if r.err != nil {
		return Base{}
	}
	return Base{platform: platform, timestamp: normalize(ts)}
}

func (r *reader) instant(field string) time.Time {
	if r.err != nil {
		return time.Time{}
	}
	v, ok := r.rec[field]
	if !ok || v == nil {
		r.fail(field, "required field is missing")
		return time.Time{}
	}
	var t time.Time
	switch x := v.(type) {
	case time.Time:
		t = x
	case string:
		parsed, err := time.Parse(time.RFC3339Nano, x)
		if err != nil {
			r.fail(field, "invalid timestamp %q", x)
			return time.Time{}
		}
		t = parsed
	case json.Number:
		f, err := strconv.ParseFloat(string(x), 64)
		if err != nil {
			r.fail(field, "invalid numeric timestamp %q", string(x))
			return time.Time{}
		}
		t = r.millis(field, f)
	case float64:
		t = r.millis(field, x)
	case float32:
		t = r.millis(field, float64(x))
	case int:
		t = r.millis(field, float64(x))
	case int32:
		t = r.millis(field, float64(x))
	case int64:
		t = time.UnixMilli(x)
	default:
		r.fail(field, "expected a timestamp, got %s", typeName(v))
		return time.Time{}
	}
	if r.err != nil {
		return time.Time{}
	}
	if msg := instantProblem(t); msg != "" {
		r.fail(field, "%s", msg)
		return time.Time{}
	}
	return t
}

func (r *reader) millis(field string, f float64) time.Time {
	if math.IsNaN(f) || math.IsInf(f, 0) || math.Abs(f) > maxEpochMillis {
		r.fail(field, "timestamp %v is not a finite instant", f)
		return time.Time{}
	}
	return time.UnixMilli(int64(math.Trunc(f)))
}

func done[T Activity](a T, err error) (Activity, error) {
	if err != nil {
		return nil, err
	}
	return a, nil
}

func invalid(path, format string, a ...any) error {
	return perr.Validationf(path, "%s: %s", path, fmt.Sprintf(format, a...))
}

func asRecord(v any) (Record, bool) {
	switch x := v.(type) {
	case map[string]any:
		return x, x != nil
	case json.RawMessage:
		raw, err := decodeJSON(x, "")
		if err != nil {
			return nil, false
		}
		return asRecord(raw)
	default:
		return nil, false
	}
}

func asList(v any) ([]any, bool) {
	switch x := v.(type) {
	case []any:
		return x, true
	case []Record:
		out := make([]any, len(x))
		for i := range x {
			out[i] = x[i]
		}
		return out, true
	default:
		return nil, false
	}
}

func decodeJSON(data []byte, label string) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, perr.WithField(perr.Wrapf(err, perr.ErrorCodeJSON, "%s: invalid JSON", label), label)
	}
	return raw, nil
}

func typeName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case json.Number, float64, float32, int, int32, int64:
		return "number"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}
