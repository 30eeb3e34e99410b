package amqp

import (
	"encoding/json"
	"time"
)

// SnapshotPublishedMessage announces a newly stored dataset snapshot.
// It carries only the id; consumers read the tree from the snapshot store.
type SnapshotPublishedMessage struct {
	SnapshotID string    `json:"snapshot_id"`
	Source     string    `json:"source"`
	Records    int       `json:"records"`
	Timestamp  time.Time `json:"timestamp"`
}

func NewSnapshotPublishedMessage(id, source string, records int) *SnapshotPublishedMessage {
	return &SnapshotPublishedMessage{
		SnapshotID: id,
		Source:     source,
		Records:    records,
		Timestamp:  time.Now(),
	}
}

func (m *SnapshotPublishedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func SnapshotPublishedMessageFromJSON(data []byte) (*SnapshotPublishedMessage, error) {
	var msg SnapshotPublishedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
