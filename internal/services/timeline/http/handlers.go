// Package http provides http transport for the timeline
package http

import (
	stdhttp "net/http"
	"strconv"
	"strings"

	"pulse/internal/modkit/httpkit"
	perr "pulse/internal/platform/errors"
	"pulse/internal/platform/net/http/bind"
	"pulse/internal/services/timeline/domain"
)

// Register mounts timeline endpoints on the given router
func Register(r httpkit.Router, s domain.ServicePort) {
	h := &handlers{svc: s}

	// stored activities, newest first
	httpkit.Get(r, "/activities", h.activities)

	// collector groups over the stored table
	httpkit.Get(r, "/groups", h.groups)

	// crawl, merge and save
	httpkit.Post(r, "/refresh", h.refresh)
}

type handlers struct{ svc domain.ServicePort }

// @Summary List stored activities
// @Tags Timeline
// @Produce json
// @Param kind query string false "activity kind, tag or short form"
// @Param platform query string false "platform id"
// @Param offset query int false "offset"
// @Param limit query int false "page size (max 1000)"
// @Success 200 {object} domain.ActivitiesPage "ok"
// @Router /timeline/activities [get]
func (h *handlers) activities(r *stdhttp.Request) (any, error) {
	q := r.URL.Query()
	in := domain.ActivitiesInput{
		Kind:     strings.TrimSpace(q.Get("kind")),
		Platform: strings.TrimSpace(q.Get("platform")),
	}
	var err error
	if in.Offset, err = queryInt(q.Get("offset"), "offset"); err != nil {
		return nil, err
	}
	if in.Limit, err = queryInt(q.Get("limit"), "limit"); err != nil {
		return nil, err
	}
	if err := bind.Struct(in); err != nil {
		return nil, err
	}
	page, err := h.svc.Activities(r.Context(), in)
	if err != nil {
		return nil, err
	}
	return httpkit.List(page.Items, page.Total, page.Offset, page.Limit), nil
}

// @Summary Partition stored activities into groups
// @Tags Timeline
// @Produce json
// @Param gap query string false "adjacency window, e.g. 15m or 1d"
// @Param limit query int false "max groups"
// @Success 200 {object} domain.GroupsResult "ok"
// @Router /timeline/groups [get]
func (h *handlers) groups(r *stdhttp.Request) (any, error) {
	q := r.URL.Query()
	in := domain.GroupsInput{Gap: strings.TrimSpace(q.Get("gap"))}
	var err error
	if in.Limit, err = queryInt(q.Get("limit"), "limit"); err != nil {
		return nil, err
	}
	if err := bind.Struct(in); err != nil {
		return nil, err
	}
	return h.svc.Groups(r.Context(), in)
}

// @Summary Refresh the stored table from every configured walker
// @Tags Timeline
// @Produce json
// @Success 200 {object} domain.RefreshResult "ok"
// @Failure 409 {object} httpkit.Envelope "refresh already running"
// @Router /timeline/refresh [post]
func (h *handlers) refresh(r *stdhttp.Request) (any, error) {
	return h.svc.Refresh(r.Context())
}

func queryInt(v, field string) (int, error) {
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, perr.Validationf(field, "%s must be an integer", field)
	}
	return n, nil
}
