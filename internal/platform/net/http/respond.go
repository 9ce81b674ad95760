// Package http holds the router seam, the server and the response envelope
package http

import (
	"encoding/json"
	stdhttp "net/http"

	perr "pulse/internal/platform/errors"
	pnet "pulse/internal/platform/net"
)

// Envelope wraps every body the api writes, success or failure.
// Field is the request path that failed validation, e.g. "activities[3].timestamp".
type Envelope struct {
	StatusCode int            `json:"status_code"`
	Status     string         `json:"status"`
	Code       perr.ErrorCode `json:"code,omitempty"`
	Error      string         `json:"error,omitempty"`
	Field      string         `json:"field,omitempty"`
	RequestID  string         `json:"request_id,omitempty"`
	Data       any            `json:"data,omitempty"`
}

// Page is the window a List response was cut from
type Page struct {
	Total  int `json:"total"`
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// Response is what return-style handlers produce.
// An error Body picks its own status from its code.
type Response struct {
	Status int
	Body   any
	Header stdhttp.Header
}

func OK(data any) Response       { return Response{Status: stdhttp.StatusOK, Body: data} }
func Accepted(data any) Response { return Response{Status: stdhttp.StatusAccepted, Body: data} }
func Error(err error) Response   { return Response{Body: err} }

// List is a 200 carrying items and their page
func List(items any, total, offset, limit int) Response {
	return OK(struct {
		Items any  `json:"items"`
		Page  Page `json:"page"`
	}{items, Page{Total: total, Offset: offset, Limit: limit}})
}

// Handle adapts a return-style handler to net/http
func Handle(h func(r *stdhttp.Request) Response) stdhttp.HandlerFunc {
	return func(w stdhttp.ResponseWriter, r *stdhttp.Request) { Write(w, r, h(r)) }
}

// Write renders resp as an Envelope tagged with the request id
func Write(w stdhttp.ResponseWriter, r *stdhttp.Request, resp Response) {
	for k, vs := range resp.Header {
		for _, v := range vs {
			w.Header().Add(k, v)
		}
	}
	env := Envelope{StatusCode: resp.Status, RequestID: pnet.RequestID(r.Context())}
	if err, ok := resp.Body.(error); ok && err != nil {
		wire := perr.WireFrom(err)
		env.StatusCode = perr.HTTPStatus(err)
		env.Code, env.Error, env.Field = wire.Code, wire.Message, wire.Field
	} else {
		env.Data = resp.Body
	}
	if env.StatusCode == 0 {
		env.StatusCode = stdhttp.StatusOK
	}
	env.Status = stdhttp.StatusText(env.StatusCode)

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(env.StatusCode)
	_ = json.NewEncoder(w).Encode(env)
}
