package rsm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// ErrorDetail is the payload the server attaches to a failed request.
type ErrorDetail struct {
	ReqUUID string `json:"req_uuid"`
	Type    string `json:"type"`
}

// TableSpec describes one table in the response to listing all tables.
type TableSpec struct {
	HasDue bool   `json:"has_due"`
	Name   string `json:"name"`
}

// TableListResponse is the payload of GET /list.
type TableListResponse struct {
	Res []TableSpec `json:"res"`
}

// TaskDetail describes one task in a table listing.
type TaskDetail struct {
	Description string  `json:"description"`
	Group       string  `json:"group"`
	Due         *string `json:"due,omitempty"`
}

// TaskListResponse is the payload of GET /<tablename>.
type TaskListResponse struct {
	Res []TaskDetail `json:"res"`
}

// Response is the tagged result of any API call: either a server-reported
// failure or an opaque success payload. The two are disjoint on the wire
// and are discriminated during decoding by the presence of an "error"
// object in the body.
type Response struct {
	failure *ErrorDetail
	payload json.RawMessage
}

// DecodeResponse decodes a response body into the success or failure
// variant. A body that is not valid JSON yields ErrUnreadableServerResponse.
func DecodeResponse(body []byte) (*Response, error) {
	var probe struct {
		Error *ErrorDetail `json:"error"`
	}
	if err := json.Unmarshal(body, &probe); err != nil {
		return nil, fmt.Errorf("%v: %w", err, ErrUnreadableServerResponse)
	}
	r := &Response{payload: append(json.RawMessage(nil), body...)}
	r.failure = probe.Error
	return r, nil
}

// IsError reports whether the server answered with a failure.
func (r *Response) IsError() bool {
	return r.failure != nil
}

// Failure returns the server-reported error detail, or nil on success.
func (r *Response) Failure() *ErrorDetail {
	return r.failure
}

// Tables decodes the payload as a table listing.
func (r *Response) Tables() (*TableListResponse, error) {
	var t TableListResponse
	if err := json.Unmarshal(r.payload, &t); err != nil {
		return nil, fmt.Errorf("%v: %w", err, ErrUnreadableServerResponse)
	}
	return &t, nil
}

// Tasks decodes the payload as a task listing.
func (r *Response) Tasks() (*TaskListResponse, error) {
	var t TaskListResponse
	if err := json.Unmarshal(r.payload, &t); err != nil {
		return nil, fmt.Errorf("%v: %w", err, ErrUnreadableServerResponse)
	}
	return &t, nil
}

// Print writes the response body to w, re-indented with two spaces.
func (r *Response) Print(w io.Writer) error {
	var buf bytes.Buffer
	if err := json.Indent(&buf, r.payload, "", "  "); err != nil {
		return fmt.Errorf("%v: %w", err, ErrUnreadableServerResponse)
	}
	buf.WriteByte('\n')
	_, err := w.Write(buf.Bytes())
	return err
}
