package amqp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImportCompletedMessageRoundTrip(t *testing.T) {
	msg := NewImportCompletedMessage("batch-1", "owner-1", "export.csv", 42, 3)
	require.False(t, msg.Timestamp.IsZero())

	body, err := msg.ToJSON()
	require.NoError(t, err)

	decoded, err := ImportCompletedMessageFromJSON(body)
	require.NoError(t, err)
	assert.Equal(t, "batch-1", decoded.BatchID)
	assert.Equal(t, "owner-1", decoded.OwnerID)
	assert.Equal(t, "export.csv", decoded.Filename)
	assert.Equal(t, 42, decoded.Imported)
	assert.Equal(t, 3, decoded.Duplicates)
}

func TestImportCompletedMessageFromJSON_Invalid(t *testing.T) {
	_, err := ImportCompletedMessageFromJSON([]byte("not json"))
	assert.Error(t, err)
}
