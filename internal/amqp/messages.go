package amqp

import (
	"encoding/json"
	"time"
)

// ImportCompletedMessage announces a finished CSV import batch. It carries
// only identifiers and counts; consumers fetch the batch from the database
// when they need more.
type ImportCompletedMessage struct {
	BatchID    string    `json:"batch_id"`
	OwnerID    string    `json:"owner_id"`
	Filename   string    `json:"filename"`
	Imported   int       `json:"imported"`
	Duplicates int       `json:"duplicates"`
	Timestamp  time.Time `json:"timestamp"`
}

// NewImportCompletedMessage creates an import-completed message stamped with
// the current time.
func NewImportCompletedMessage(batchID, ownerID, filename string, imported, duplicates int) *ImportCompletedMessage {
	return &ImportCompletedMessage{
		BatchID:    batchID,
		OwnerID:    ownerID,
		Filename:   filename,
		Imported:   imported,
		Duplicates: duplicates,
		Timestamp:  time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *ImportCompletedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ImportCompletedMessageFromJSON creates a message from JSON bytes
func ImportCompletedMessageFromJSON(data []byte) (*ImportCompletedMessage, error) {
	var msg ImportCompletedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
