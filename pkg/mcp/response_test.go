package mcp

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func marshalToMap(t *testing.T, resp Response) (result map[string]any) {
	t.Helper()

	data, err := json.Marshal(resp)
	require.NoError(t, err)

	err = json.Unmarshal(data, &result)
	require.NoError(t, err)

	return result
}

func TestSuccessResponseShape(t *testing.T) {
	t.Parallel()

	resp := successResponse("req-1", map[string]any{"answer": 42})
	m := marshalToMap(t, resp)

	assert.Equal(t, "2.0", m["jsonrpc"])
	assert.Equal(t, "req-1", m["id"])
	assert.Equal(t, map[string]any{"answer": float64(42)}, m["result"])

	_, hasError := m["error"]
	assert.False(t, hasError, "success envelope must not carry an error key")
}

func TestSuccessResponseOmitsAbsentID(t *testing.T) {
	t.Parallel()

	resp := successResponse(nil, "ok")
	m := marshalToMap(t, resp)

	_, hasID := m["id"]
	assert.False(t, hasID, "id must be omitted when the request had none")
}

func TestSuccessResponseKeepsZeroID(t *testing.T) {
	t.Parallel()

	// 0 and "" are valid ids; only a missing/null id is dropped.
	m := marshalToMap(t, successResponse(float64(0), "ok"))
	id, hasID := m["id"]
	require.True(t, hasID)
	assert.Equal(t, float64(0), id)

	m = marshalToMap(t, successResponse("", "ok"))
	_, hasID = m["id"]
	assert.True(t, hasID)
}

func TestSuccessResponseNilResultStillPresent(t *testing.T) {
	t.Parallel()

	data, err := json.Marshal(successResponse(1, nil))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"result":null`)
}

func TestErrorResponseShape(t *testing.T) {
	t.Parallel()

	resp := errorResponse(7, CodeMethodNotFound, "Method not found", "Tool 'x' not found")
	m := marshalToMap(t, resp)

	assert.Equal(t, "2.0", m["jsonrpc"])
	assert.Equal(t, float64(7), m["id"])

	_, hasResult := m["result"]
	assert.False(t, hasResult, "error envelope must not carry a result key")

	errObj, ok := m["error"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(CodeMethodNotFound), errObj["code"])
	assert.Equal(t, "Method not found", errObj["message"])
	assert.Equal(t, "Tool 'x' not found", errObj["data"])
}

func TestErrorResponseDropsEmptyData(t *testing.T) {
	t.Parallel()

	resp := errorResponse(1, CodeInternalError, "Internal error", "")
	m := marshalToMap(t, resp)

	errObj, ok := m["error"].(map[string]any)
	require.True(t, ok)

	_, hasData := errObj["data"]
	assert.False(t, hasData, "empty data must be dropped from the wire")
}

func TestErrorResponseOmitsAbsentID(t *testing.T) {
	t.Parallel()

	resp := errorResponse(nil, CodeParseError, "Parse error", "Invalid JSON")
	m := marshalToMap(t, resp)

	_, hasID := m["id"]
	assert.False(t, hasID)
}
