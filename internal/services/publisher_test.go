package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBatchRoutingKey(t *testing.T) {
	assert.Equal(t, "batch.abc-123", BatchRoutingKey("abc-123"))
}

func TestBatchEventWireFormat(t *testing.T) {
	event := BatchEvent{
		BatchID:    "b1",
		Status:     BatchProcessing,
		Progress:   42.5,
		TotalFiles: 3,
		Timestamp:  time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
	}

	data, err := json.Marshal(event)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "b1", decoded["batch_id"])
	assert.Equal(t, "processing", decoded["status"])
	assert.Equal(t, 42.5, decoded["progress"])
	assert.EqualValues(t, 3, decoded["total_files"])
	assert.NotContains(t, decoded, "error")
}

func TestNoopPublisher(t *testing.T) {
	p := NewNoopPublisher()
	assert.NoError(t, p.Publish(context.Background(), BatchEvent{BatchID: "x"}))
	assert.NoError(t, p.Close())
}
