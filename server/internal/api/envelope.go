package api

import (
	"encoding/base64"

	"github.com/zkrest/zkrest/server/internal/service"
)

// Envelope status values.
const (
	StatusOK    = "OK"
	StatusError = "ERROR"
)

// Response is the JSON body of every operation endpoint. Children and Data
// are only set on success, Error only on failure.
type Response struct {
	Status string `json:"Status"`
	Path   string `json:"Path"`

	// Children is a service.Tree for tree requests and a service.List for
	// list requests.
	Children interface{} `json:"Children,omitempty"`

	// Data is the node payload in standard, padded base64. It is a pointer so
	// an empty payload still appears as "".
	Data *string `json:"Data,omitempty"`

	Error *string `json:"Error,omitempty"`
}

// NewResponse converts a service result into its response envelope.
func NewResponse(res service.Result) Response {
	if res.Err != nil {
		msg := res.Err.Error()
		return Response{Status: StatusError, Path: res.Path, Error: &msg}
	}

	resp := Response{Status: StatusOK, Path: res.Path}
	switch p := res.Payload.(type) {
	case service.Data:
		enc := base64.StdEncoding.EncodeToString(p)
		resp.Data = &enc
	case service.Tree:
		if p == nil {
			p = service.Tree{}
		}
		resp.Children = p
	case service.List:
		if p == nil {
			p = service.List{}
		}
		resp.Children = p
	}
	return resp
}

// errorResponse is the body of auth failures, which happen before any
// operation runs.
type errorResponse struct {
	Status string `json:"Status"`
	Error  string `json:"Error"`
}
