package amqp

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// LedgerSavedMessage notifies the archive worker that a ledger was
// written. It carries only the ledger name; the worker reloads the file
// itself so the message can never go stale.
type LedgerSavedMessage struct {
	ID        string    `json:"id"`
	Ledger    string    `json:"ledger"`
	Records   int       `json:"records"`
	Timestamp time.Time `json:"timestamp"`
}

func NewLedgerSavedMessage(ledger string, records int) *LedgerSavedMessage {
	return &LedgerSavedMessage{
		ID:        uuid.NewString(),
		Ledger:    ledger,
		Records:   records,
		Timestamp: time.Now(),
	}
}

func (m *LedgerSavedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func LedgerSavedMessageFromJSON(data []byte) (*LedgerSavedMessage, error) {
	var msg LedgerSavedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
