package rsm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"strings"

	uuid "github.com/nu7hatch/gouuid"
	log "github.com/sirupsen/logrus"
)

const defaultEndpoint = "http://100.97.63.15:10001"

type clientOption func(*Client) error

// WithEndpoint is a client option to set the endpoint when building a client
// with NewClient. This is meant to be used in tests only.
func WithEndpoint(endpoint string) clientOption {
	return func(c *Client) error {
		c.endpoint = endpoint
		return nil
	}
}

// WithWireLog is a client option to log all requests and responses to the
// specified log file. Useful for debugging the client itself, shouldn't be
// needed in normal operation.
func WithWireLog(pathname string) clientOption {
	return func(c *Client) error {
		f, err := os.OpenFile(pathname, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0600)
		if err == nil {
			c.wlog = f
		}
		return err
	}
}

// Client talks to the rsm backend. It holds the session token captured at
// login and replays it in the Cookie header on every call. Each call builds
// a fresh HTTP client, performs exactly one request, and decodes the body
// into a Response.
type Client struct {
	endpoint string

	// The session cookie string; empty for the pre-login client.
	token string

	// If non-nil, log all requests and responses to this file, one per line,
	// in JSON format.
	wlog io.Writer
}

// NewClient creates a client authenticated by the token stored in the
// config. It fails with ErrNoAuth when no token has been persisted yet.
func NewClient(store *ConfigStore, opts ...clientOption) (*Client, error) {
	token, err := store.LoadToken()
	if err != nil {
		return nil, err
	}
	c := &Client{endpoint: defaultEndpoint, token: token, wlog: io.Discard}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// NewClientWithoutToken creates a client with no session. It is usable only
// for the signup, login, and lost-key endpoints.
func NewClientWithoutToken(opts ...clientOption) (*Client, error) {
	c := &Client{endpoint: defaultEndpoint, wlog: io.Discard}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// SetToken replaces the session token held by the client, e.g. after a
// fresh login on the same invocation.
func (c *Client) SetToken(token string) {
	c.token = token
}

// do performs one request and returns the decoded response together with
// any cookies the server set.
func (c *Client) do(method, rawurl string, body any) (*Response, []*http.Cookie, error) {
	var reqBody io.Reader
	var encoded []byte
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, nil, fmt.Errorf("%s %s: %w", method, rawurl, err)
		}
		encoded = b
		reqBody = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, rawurl, reqBody)
	if err != nil {
		return nil, nil, fmt.Errorf("%v: %w", err, ErrFailedToConnectToServer)
	}
	if encoded != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Cookie", c.token)
	}
	reqID := ""
	if u, err := uuid.NewV4(); err == nil {
		reqID = u.String()
		req.Header.Set("X-Request-Id", reqID)
	}
	log.WithFields(log.Fields{
		"method":     method,
		"url":        rawurl,
		"request_id": reqID,
	}).Info("Sending request")
	_, _ = c.wlog.Write([]byte(fmt.Sprintf(`{"type": "request", "method": %q, "url": %q, "body": %q}`+"\n", method, rawurl, encoded)))

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, nil, fmt.Errorf("%v: %w", err, ErrFailedToConnectToServer)
	}
	httpc := &http.Client{Jar: jar}
	r, err := httpc.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("%v: %w", err, ErrFailedToConnectToServer)
	}
	defer func() {
		if err := r.Body.Close(); err != nil {
			log.WithFields(log.Fields{
				"url":   rawurl,
				"cause": err,
			}).Warning("Could not close response body")
		}
	}()
	b, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("%v: %w", err, ErrInvalidServerResponse)
	}
	_, _ = c.wlog.Write([]byte(`{"type": "response", "response": `))
	_, _ = c.wlog.Write(b)
	_, _ = c.wlog.Write([]byte("}\n"))
	resp, err := DecodeResponse(b)
	if err != nil {
		return nil, nil, err
	}
	return resp, r.Cookies(), nil
}

// tableURL builds the endpoint URL for a table, percent-encoding the name.
func (c *Client) tableURL(tablename string) string {
	return c.endpoint + "/" + url.PathEscape(tablename)
}

// ListTables fetches the names and characteristics of all tables.
func (c *Client) ListTables() (*Response, error) {
	resp, _, err := c.do(http.MethodGet, c.endpoint+"/list", nil)
	return resp, err
}

// ListTasks fetches the contents of a table. The optional group and sortBy
// filters are sent as percent-encoded query parameters.
func (c *Client) ListTasks(tablename, group, sortBy string) (*Response, error) {
	u := c.tableURL(tablename)
	q := make(url.Values)
	if group != "" {
		q.Set("group", group)
	}
	if sortBy != "" {
		q.Set("sort_by", sortBy)
	}
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	resp, _, err := c.do(http.MethodGet, u, nil)
	return resp, err
}

// CreateTable creates a new table, optionally with a due column.
func (c *Client) CreateTable(tablename string, hasDue bool) (*Response, error) {
	body := struct {
		Tablename string `json:"tablename"`
		HasDue    bool   `json:"has_due"`
	}{Tablename: tablename, HasDue: hasDue}
	resp, _, err := c.do(http.MethodPost, c.endpoint+"/create", body)
	return resp, err
}

// DropTable deletes a table entirely.
func (c *Client) DropTable(tablename string) (*Response, error) {
	resp, _, err := c.do(http.MethodDelete, c.tableURL(tablename), nil)
	return resp, err
}

// TaskPayload carries the task fields for add and update requests. Due and
// Group are omitted from the JSON body when empty.
type TaskPayload struct {
	Description string `json:"description"`
	Due         string `json:"due,omitempty"`
	Group       string `json:"group,omitempty"`
}

// AddTask inserts a task into a table.
func (c *Client) AddTask(tablename string, task TaskPayload) (*Response, error) {
	resp, _, err := c.do(http.MethodPost, c.tableURL(tablename), task)
	return resp, err
}

// UpdateTask replaces the task identified by oldDesc with the given payload.
func (c *Client) UpdateTask(tablename, oldDesc string, task TaskPayload) (*Response, error) {
	body := struct {
		OldDesc string `json:"old_desc"`
		TaskPayload
	}{OldDesc: oldDesc, TaskPayload: task}
	resp, _, err := c.do(http.MethodPut, c.tableURL(tablename), body)
	return resp, err
}

// RemoveTask deletes the task identified by desc from a table.
func (c *Client) RemoveTask(tablename, desc string) (*Response, error) {
	body := struct {
		Desc string `json:"desc"`
	}{Desc: desc}
	resp, _, err := c.do(http.MethodDelete, c.tableURL(tablename), body)
	return resp, err
}

// ClearTable empties a table. The built-in tables keep their literal names
// in the path; everything else lives under the user/ namespace.
func (c *Client) ClearTable(tablename string) (*Response, error) {
	scoped := url.PathEscape(tablename)
	if tablename != "reminder" && tablename != "todo" {
		scoped = "user/" + scoped
	}
	resp, _, err := c.do(http.MethodDelete, c.endpoint+"/"+scoped+"/clear", nil)
	return resp, err
}

// Signup registers a new account. Username and password are trimmed before
// they are sent.
func (c *Client) Signup(username, password string) (*Response, error) {
	body := struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}{Username: strings.TrimSpace(username), Password: strings.TrimSpace(password)}
	resp, _, err := c.do(http.MethodPost, c.endpoint+"/signup", body)
	return resp, err
}

// Login exchanges the account key for a session. Alongside the response it
// returns the session token assembled from the cookies the server set,
// ready to be persisted and replayed.
func (c *Client) Login(key string) (*Response, string, error) {
	body := struct {
		Key string `json:"key"`
	}{Key: strings.TrimSpace(key)}
	resp, cookies, err := c.do(http.MethodPost, c.endpoint+"/login", body)
	if err != nil {
		return nil, "", err
	}
	return resp, BuildToken(cookies, timeNow()), nil
}

// Logout tells the server whether the user confirmed logging out. The
// request is sent either way; the caller wipes local state only on a
// confirmed, successful logout.
func (c *Client) Logout(logout bool) (*Response, error) {
	body := struct {
		Logout bool `json:"logout"`
	}{Logout: logout}
	resp, _, err := c.do(http.MethodPost, c.endpoint+"/logout", body)
	return resp, err
}

// LostKey asks the server to rotate the account key, authenticating with
// the username and password instead of the lost key.
func (c *Client) LostKey(username, password string) (*Response, error) {
	body := struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}{Username: strings.TrimSpace(username), Password: strings.TrimSpace(password)}
	resp, _, err := c.do(http.MethodPost, c.endpoint+"/lostkey", body)
	return resp, err
}
