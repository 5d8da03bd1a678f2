package amqp

import (
	"encoding/json"
	"time"
)

// Mutation operations carried on the wire.
const (
	OpInsert         = "insert"
	OpUpdate         = "update"
	OpDelete         = "delete"
	OpCategoryDelete = "category_delete"
)

// LedgerMutationMessage announces that a currency's ledger was saved.
// It carries only the currency and what changed; the mirror worker
// reloads the full ledger from the sheet, since every save is a full
// overwrite anyway.
type LedgerMutationMessage struct {
	Currency   string    `json:"currency"`
	Op         string    `json:"op"`
	RowIDs     []string  `json:"row_ids,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NewLedgerMutationMessage creates a mutation message stamped with the
// current time.
func NewLedgerMutationMessage(currency, op string, rowIDs []string) *LedgerMutationMessage {
	return &LedgerMutationMessage{
		Currency:   currency,
		Op:         op,
		RowIDs:     rowIDs,
		OccurredAt: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *LedgerMutationMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// LedgerMutationMessageFromJSON creates a message from JSON bytes
func LedgerMutationMessageFromJSON(data []byte) (*LedgerMutationMessage, error) {
	var msg LedgerMutationMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
