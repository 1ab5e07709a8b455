package amqp

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// LedgerCommitMessage announces that a ledger year was committed to storage.
// It carries only the commit id; the worker reads the ledger itself.
type LedgerCommitMessage struct {
	ID        string    `json:"id"`
	CommitID  int64     `json:"commit_id"`
	Year      int       `json:"year"`
	Timestamp time.Time `json:"timestamp"`
}

// NewLedgerCommitMessage stamps a message with a fresh id and the current time.
func NewLedgerCommitMessage(commitID int64, year int) *LedgerCommitMessage {
	return &LedgerCommitMessage{
		ID:        uuid.NewString(),
		CommitID:  commitID,
		Year:      year,
		Timestamp: time.Now(),
	}
}

func (m *LedgerCommitMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// LedgerCommitMessageFromJSON decodes and sanity-checks a message body.
func LedgerCommitMessageFromJSON(data []byte) (*LedgerCommitMessage, error) {
	var msg LedgerCommitMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.CommitID <= 0 {
		return nil, errors.New("message has no commit id")
	}
	return &msg, nil
}
