package rsm_test

import (
	"bytes"
	"testing"

	rsm "github.com/DevTommyy/cli-client"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeResponseFailure(t *testing.T) {
	body := []byte(`{"error":{"req_uuid":"u-1","type":"NoSuchTable"}}`)
	resp, err := rsm.DecodeResponse(body)
	require.Nil(t, err)
	require.True(t, resp.IsError())
	assert.Equal(t, "u-1", resp.Failure().ReqUUID)
	assert.Equal(t, "NoSuchTable", resp.Failure().Type)
}

func TestDecodeResponseSuccess(t *testing.T) {
	resp, err := rsm.DecodeResponse([]byte(`{"res":"table created"}`))
	require.Nil(t, err)
	assert.False(t, resp.IsError())
	assert.Nil(t, resp.Failure())
}

// A success payload that merely mentions "error" in a string must not be
// misclassified; only a present error object selects the failure branch.
func TestDecodeResponseSuccessMentioningError(t *testing.T) {
	resp, err := rsm.DecodeResponse([]byte(`{"res":[{"description":"fix error page","group":"","due":null}]}`))
	require.Nil(t, err)
	assert.False(t, resp.IsError())

	tasks, err := resp.Tasks()
	require.Nil(t, err)
	require.Len(t, tasks.Res, 1)
	assert.Equal(t, "fix error page", tasks.Res[0].Description)
}

func TestDecodeResponseNotJSON(t *testing.T) {
	_, err := rsm.DecodeResponse([]byte("<html>502</html>"))
	assert.ErrorIs(t, err, rsm.ErrUnreadableServerResponse)
}

func TestResponseTables(t *testing.T) {
	resp, err := rsm.DecodeResponse([]byte(`{"res":[{"has_due":true,"name":"reminder"},{"has_due":false,"name":"todo"}]}`))
	require.Nil(t, err)
	tables, err := resp.Tables()
	require.Nil(t, err)
	require.Len(t, tables.Res, 2)
	assert.Equal(t, rsm.TableSpec{HasDue: true, Name: "reminder"}, tables.Res[0])
}

func TestResponsePrintIndents(t *testing.T) {
	resp, err := rsm.DecodeResponse([]byte(`{"res":"ok"}`))
	require.Nil(t, err)
	var buf bytes.Buffer
	require.Nil(t, resp.Print(&buf))
	assert.Equal(t, "{\n  \"res\": \"ok\"\n}\n", buf.String())
}
