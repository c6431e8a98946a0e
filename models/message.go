package models

import "time"

// Event is pushed to websocket subscribers. Events with a ClientID are
// delivered only to that client.
type Event struct {
	Type     string    `json:"type"`
	ClientID string    `json:"clientId,omitempty"`
	Data     any       `json:"data,omitempty"`
	Time     time.Time `json:"time"`
}
