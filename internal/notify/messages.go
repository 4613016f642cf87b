package notify

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"finboard/internal/store"
)

// ChangeMessage announces a committed store change. It carries counts and
// the saved total, not the dataset itself.
type ChangeMessage struct {
	ID           string    `json:"id"`
	Revision     uint64    `json:"revision"`
	Timestamp    time.Time `json:"timestamp"`
	Transactions int       `json:"transactions"`
	Pots         int       `json:"pots"`
	Bills        int       `json:"bills"`
	TotalSaved   string    `json:"totalSaved"`
}

func NewChangeMessage(c store.Change, now time.Time) ChangeMessage {
	return ChangeMessage{
		ID:           uuid.NewString(),
		Revision:     c.Revision,
		Timestamp:    now.UTC(),
		Transactions: len(c.Snapshot.Transactions),
		Pots:         len(c.Snapshot.Pots),
		Bills:        len(c.Snapshot.Bills),
		TotalSaved:   c.Snapshot.TotalSaved().StringFixed(2),
	}
}

// ToJSON converts the message to JSON bytes
func (m ChangeMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ChangeMessageFromJSON parses a message produced by ToJSON.
func ChangeMessageFromJSON(data []byte) (ChangeMessage, error) {
	var msg ChangeMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return ChangeMessage{}, err
	}
	return msg, nil
}
