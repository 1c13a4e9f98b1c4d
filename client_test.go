package rsm_test

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	rsm "github.com/DevTommyy/cli-client"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStoreWithToken(t *testing.T, token string) *rsm.ConfigStore {
	t.Helper()
	store := rsm.NewConfigStore(filepath.Join(t.TempDir(), "rsm-conf.json"))
	require.Nil(t, store.Save(&rsm.Config{Token: &token, FirstRun: false}))
	return store
}

// capture records the interesting parts of the one request a test is
// expected to make.
type capture struct {
	method      string
	path        string
	query       string
	cookie      string
	contentType string
	requestID   string
	body        []byte
}

func captureServer(respBody string, c *capture) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c.method = r.Method
		c.path = r.URL.EscapedPath()
		c.query = r.URL.RawQuery
		c.cookie = r.Header.Get("Cookie")
		c.contentType = r.Header.Get("Content-Type")
		c.requestID = r.Header.Get("X-Request-Id")
		c.body, _ = io.ReadAll(r.Body)
		fmt.Fprint(w, respBody)
	}))
}

func TestNewClientRequiresToken(t *testing.T) {
	store := rsm.NewConfigStore(filepath.Join(t.TempDir(), "rsm-conf.json"))
	_, err := rsm.NewClient(store)
	assert.ErrorIs(t, err, rsm.ErrNoAuth)
}

func TestCookieHeaderReplayed(t *testing.T) {
	token := "session=abc; Path=/; HttpOnly; Expires="
	var c capture
	srv := captureServer(`{"res":[]}`, &c)
	defer srv.Close()

	client, err := rsm.NewClient(newStoreWithToken(t, token), rsm.WithEndpoint(srv.URL))
	require.Nil(t, err)
	_, err = client.ListTables()
	require.Nil(t, err)

	assert.Equal(t, token, c.cookie)
	assert.Equal(t, http.MethodGet, c.method)
	assert.Equal(t, "/list", c.path)
	assert.NotEmpty(t, c.requestID)
}

func TestListTasksQueryEncoding(t *testing.T) {
	var c capture
	srv := captureServer(`{"res":[]}`, &c)
	defer srv.Close()

	client, err := rsm.NewClient(newStoreWithToken(t, "session=abc"), rsm.WithEndpoint(srv.URL))
	require.Nil(t, err)
	_, err = client.ListTasks("mytable", "g/1", "due")
	require.Nil(t, err)

	assert.Equal(t, "/mytable", c.path)
	// Keys and values are percent-encoded, parameters joined with &.
	assert.Equal(t, "group=g%2F1&sort_by=due", c.query)
}

func TestListTasksNoOptions(t *testing.T) {
	var c capture
	srv := captureServer(`{"res":[]}`, &c)
	defer srv.Close()

	client, err := rsm.NewClient(newStoreWithToken(t, "session=abc"), rsm.WithEndpoint(srv.URL))
	require.Nil(t, err)
	_, err = client.ListTasks("reminder", "", "")
	require.Nil(t, err)

	assert.Equal(t, "/reminder", c.path)
	assert.Empty(t, c.query)
}

func TestClearTablePathScoping(t *testing.T) {
	testCases := []struct {
		tablename string
		path      string
	}{
		{"reminder", "/reminder/clear"},
		{"todo", "/todo/clear"},
		{"my table", "/user/my%20table/clear"},
		{"groceries", "/user/groceries/clear"},
	}
	for _, tc := range testCases {
		t.Run(tc.tablename, func(t *testing.T) {
			var c capture
			srv := captureServer(`{"res":"cleared"}`, &c)
			defer srv.Close()

			client, err := rsm.NewClient(newStoreWithToken(t, "session=abc"), rsm.WithEndpoint(srv.URL))
			require.Nil(t, err)
			_, err = client.ClearTable(tc.tablename)
			require.Nil(t, err)

			assert.Equal(t, http.MethodDelete, c.method)
			assert.Equal(t, tc.path, c.path)
		})
	}
}

func TestTableOperationFraming(t *testing.T) {
	store := newStoreWithToken(t, "session=abc")
	testCases := []struct {
		name   string
		call   func(*rsm.Client) (*rsm.Response, error)
		method string
		path   string
		body   string
	}{
		{
			name:   "create",
			call:   func(c *rsm.Client) (*rsm.Response, error) { return c.CreateTable("groceries", true) },
			method: http.MethodPost,
			path:   "/create",
			body:   `{"tablename":"groceries","has_due":true}`,
		},
		{
			name:   "drop",
			call:   func(c *rsm.Client) (*rsm.Response, error) { return c.DropTable("groceries") },
			method: http.MethodDelete,
			path:   "/groceries",
			body:   "",
		},
		{
			name: "add with all fields",
			call: func(c *rsm.Client) (*rsm.Response, error) {
				return c.AddTask("groceries", rsm.TaskPayload{Description: "milk", Due: "2024-05-14T10:00:00", Group: "food"})
			},
			method: http.MethodPost,
			path:   "/groceries",
			body:   `{"description":"milk","due":"2024-05-14T10:00:00","group":"food"}`,
		},
		{
			name: "add omits empty optionals",
			call: func(c *rsm.Client) (*rsm.Response, error) {
				return c.AddTask("groceries", rsm.TaskPayload{Description: "milk"})
			},
			method: http.MethodPost,
			path:   "/groceries",
			body:   `{"description":"milk"}`,
		},
		{
			name: "update",
			call: func(c *rsm.Client) (*rsm.Response, error) {
				return c.UpdateTask("groceries", "milk", rsm.TaskPayload{Description: "oat milk", Group: "food"})
			},
			method: http.MethodPut,
			path:   "/groceries",
			body:   `{"old_desc":"milk","description":"oat milk","group":"food"}`,
		},
		{
			name:   "remove",
			call:   func(c *rsm.Client) (*rsm.Response, error) { return c.RemoveTask("groceries", "milk") },
			method: http.MethodDelete,
			path:   "/groceries",
			body:   `{"desc":"milk"}`,
		},
		{
			name:   "logout",
			call:   func(c *rsm.Client) (*rsm.Response, error) { return c.Logout(true) },
			method: http.MethodPost,
			path:   "/logout",
			body:   `{"logout":true}`,
		},
		{
			name:   "signup trims credentials",
			call:   func(c *rsm.Client) (*rsm.Response, error) { return c.Signup(" alice \n", " hunter2 ") },
			method: http.MethodPost,
			path:   "/signup",
			body:   `{"username":"alice","password":"hunter2"}`,
		},
		{
			name:   "lostkey",
			call:   func(c *rsm.Client) (*rsm.Response, error) { return c.LostKey("alice", "hunter2") },
			method: http.MethodPost,
			path:   "/lostkey",
			body:   `{"username":"alice","password":"hunter2"}`,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var c capture
			srv := captureServer(`{"res":"ok"}`, &c)
			defer srv.Close()

			client, err := rsm.NewClient(store, rsm.WithEndpoint(srv.URL))
			require.Nil(t, err)
			resp, err := tc.call(client)
			require.Nil(t, err)
			assert.False(t, resp.IsError())

			assert.Equal(t, tc.method, c.method)
			assert.Equal(t, tc.path, c.path)
			assert.Equal(t, tc.body, string(c.body))
			if tc.body != "" {
				assert.Equal(t, "application/json", c.contentType)
			}
		})
	}
}

func TestLoginCapturesCookies(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "session", Value: "xyz", Path: "/"})
		fmt.Fprint(w, `{"res":"logged in"}`)
	}))
	defer srv.Close()

	client, err := rsm.NewClientWithoutToken(rsm.WithEndpoint(srv.URL))
	require.Nil(t, err)
	resp, token, err := client.Login("my-key\n")
	require.Nil(t, err)
	assert.False(t, resp.IsError())
	assert.Equal(t, "session=xyz; Path=/; HttpOnly; Expires=", token)
}

func TestServerErrorIsNotAClientError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"error":{"req_uuid":"u-2","type":"NoSuchTable"}}`)
	}))
	defer srv.Close()

	client, err := rsm.NewClient(newStoreWithToken(t, "session=abc"), rsm.WithEndpoint(srv.URL))
	require.Nil(t, err)
	resp, err := client.DropTable("nope")
	require.Nil(t, err)
	require.True(t, resp.IsError())
	assert.Equal(t, "NoSuchTable", resp.Failure().Type)
}

func TestTransportFailure(t *testing.T) {
	client, err := rsm.NewClient(newStoreWithToken(t, "session=abc"), rsm.WithEndpoint("http://127.0.0.1:1"))
	require.Nil(t, err)
	_, err = client.ListTables()
	assert.ErrorIs(t, err, rsm.ErrFailedToConnectToServer)
}

func TestUnreadableResponseBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<html>oops</html>")
	}))
	defer srv.Close()

	client, err := rsm.NewClient(newStoreWithToken(t, "session=abc"), rsm.WithEndpoint(srv.URL))
	require.Nil(t, err)
	_, err = client.ListTables()
	assert.ErrorIs(t, err, rsm.ErrUnreadableServerResponse)
}
