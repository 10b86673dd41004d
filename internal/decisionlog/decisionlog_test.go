package decisionlog

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLog_EmitsStructuredRecord(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(slog.New(slog.NewJSONHandler(&buf, nil)))
	defer SetLogger(slog.Default())

	Log(DecisionGate, "request rejected", map[string]any{
		"request_id": "req_1",
		"error_type": "rate_limit",
	})

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "request rejected", record["msg"])
	assert.Equal(t, "gate_rejection", record["decision"])
	assert.Equal(t, "req_1", record["request_id"])
	assert.Equal(t, "rate_limit", record["error_type"])
}
