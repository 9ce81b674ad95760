// Package activity defines the closed set of normalized activity variants,
// their validating import and their export to plain records
package activity

import (
	"fmt"
	"strings"
	"time"

	perr "pulse/internal/platform/errors"
)

// Kind is the variant marker for an activity; its value is the $type tag
type Kind string

// Known kinds; the set is closed
const (
	KindPush             Kind = "PushActivity"
	KindWatch            Kind = "WatchActivity"
	KindCreateTag        Kind = "CreateTagActivity"
	KindCreateBranch     Kind = "CreateBranchActivity"
	KindCreateRepository Kind = "CreateRepositoryActivity"
)

// None is the absent kind
const None Kind = ""

// Kinds returns every known kind in declaration order
func Kinds() []Kind {
	return []Kind{KindPush, KindWatch, KindCreateTag, KindCreateBranch, KindCreateRepository}
}

// Valid reports whether k is one of the known kinds
func (k Kind) Valid() bool {
	for _, v := range Kinds() {
		if v == k {
			return true
		}
	}
	return false
}

// String returns the tag value
func (k Kind) String() string { return string(k) }

// ParseKind resolves a tag, accepting the short lowercase form too ("push", "create-tag")
func ParseKind(s string) (Kind, error) {
	s = strings.TrimSpace(s)
	if k := Kind(s); k.Valid() {
		return k, nil
	}
	short := strings.ReplaceAll(strings.ToLower(s), "-", "")
	for _, k := range Kinds() {
		if strings.ToLower(strings.TrimSuffix(string(k), "Activity")) == short {
			return k, nil
		}
	}
	return None, perr.InvalidArgf("unknown activity kind %q", s)
}

// Activity is a normalized, platform-tagged event
type Activity interface {
	Platform() string
	Timestamp() time.Time
	Kind() Kind
	Accept(v Visitor)
}

// Visitor has one method per variant; a new variant fails to compile until every visitor handles it
type Visitor interface {
	VisitPush(PushActivity)
	VisitWatch(WatchActivity)
	VisitCreateTag(CreateTagActivity)
	VisitCreateBranch(CreateBranchActivity)
	VisitCreateRepository(CreateRepositoryActivity)
}

// Base carries the identity fields every variant shares
// fields are unexported so platform and timestamp cannot change after construction
type Base struct {
	platform  string
	timestamp time.Time
}

// NewBase validates and builds the shared identity fields
// timestamps are normalised to UTC millisecond precision
func NewBase(platform string, ts time.Time) (Base, error) {
	if strings.TrimSpace(platform) == "" {
		return Base{}, invalid(FieldPlatform, "must be a non-empty string")
	}
	if msg := instantProblem(ts); msg != "" {
		return Base{}, invalid(FieldTimestamp, "%s", msg)
	}
	return Base{platform: platform, timestamp: normalize(ts)}, nil
}

// MustBase is NewBase for literals known to be valid; it panics otherwise
func MustBase(platform string, ts time.Time) Base {
	b, err := NewBase(platform, ts)
	if err != nil {
		panic(err)
	}
	return b
}

// Platform returns the origin integration name
func (b Base) Platform() string { return b.platform }

// Timestamp returns the event time
func (b Base) Timestamp() time.Time { return b.timestamp }

func normalize(ts time.Time) time.Time { return ts.UTC().Truncate(time.Millisecond) }

// instantProblem says why ts cannot be stored, "" when it can.
// Accepted instants export to milliseconds that Import reads back.
func instantProblem(ts time.Time) string {
	if ts.IsZero() {
		return "must be a valid instant"
	}
	if s := ts.Unix(); s > maxEpochMillis/1000 || s < -maxEpochMillis/1000 {
		return fmt.Sprintf("timestamp %s out of range", ts.UTC().Format(time.RFC3339))
	}
	if ms := normalize(ts).UnixMilli(); ms > maxEpochMillis || ms < -maxEpochMillis {
		return fmt.Sprintf("timestamp %d out of range", ms)
	}
	return ""
}

// PushActivity is a code push
type PushActivity struct {
	Base
	Username   string
	URL        string
	Repository string
	CommitRef  string
}

// Kind implements Activity
func (PushActivity) Kind() Kind { return KindPush }

// Accept implements Activity
func (a PushActivity) Accept(v Visitor) { v.VisitPush(a) }

// WatchActivity is a star/watch
type WatchActivity struct {
	Base
	Username   string
	URL        string
	Repository string
}

// Kind implements Activity
func (WatchActivity) Kind() Kind { return KindWatch }

// Accept implements Activity
func (a WatchActivity) Accept(v Visitor) { v.VisitWatch(a) }

// CreateTagActivity is a tag creation
type CreateTagActivity struct {
	Base
	Username   string
	URL        string
	Repository string
	TagName    string
}

// Kind implements Activity
func (CreateTagActivity) Kind() Kind { return KindCreateTag }

// Accept implements Activity
func (a CreateTagActivity) Accept(v Visitor) { v.VisitCreateTag(a) }

// CreateBranchActivity is a branch creation
type CreateBranchActivity struct {
	Base
	Username   string
	URL        string
	Repository string
	BranchName string
}

// Kind implements Activity
func (CreateBranchActivity) Kind() Kind { return KindCreateBranch }

// Accept implements Activity
func (a CreateBranchActivity) Accept(v Visitor) { v.VisitCreateBranch(a) }

// CreateRepositoryActivity is a repository creation
type CreateRepositoryActivity struct {
	Base
	Username   string
	URL        string
	Repository string
}

// Kind implements Activity
func (CreateRepositoryActivity) Kind() Kind { return KindCreateRepository }

// Accept implements Activity
func (a CreateRepositoryActivity) Accept(v Visitor) { v.VisitCreateRepository(a) }

// Subject holds the fields every current variant carries besides identity
type Subject struct {
	Username   string
	URL        string
	Repository string
}

// SubjectOf extracts username, url and repository from any variant
func SubjectOf(a Activity) Subject {
	var s subjectVisitor
	a.Accept(&s)
	return s.out
}

type subjectVisitor struct{ out Subject }

func (s *subjectVisitor) VisitPush(a PushActivity) {
	s.out = Subject{a.Username, a.URL, a.Repository}
}

func (s *subjectVisitor) VisitWatch(a WatchActivity) {
	s.out = Subject{a.Username, a.URL, a.Repository}
}

func (s *subjectVisitor) VisitCreateTag(a CreateTagActivity) {
	s.out = Subject{a.Username, a.URL, a.Repository}
}

func (s *subjectVisitor) VisitCreateBranch(a CreateBranchActivity) {
	s.out = Subject{a.Username, a.URL, a.Repository}
}

func (s *subjectVisitor) VisitCreateRepository(a CreateRepositoryActivity) {
	s.out = Subject{a.Username, a.URL, a.Repository}
}
