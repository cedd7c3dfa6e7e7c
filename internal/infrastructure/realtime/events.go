package realtime

import (
	"encoding/json"
)

// Frame is the envelope of every server-to-dashboard message.
type Frame struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

// EncodeFrame marshals an event envelope.
func EncodeFrame(event string, data any) ([]byte, error) {
	return json.Marshal(Frame{Type: event, Data: data})
}

// BroadcastRoom encodes data as an event frame and sends it to the watchers of roomKey.
func (r *Router) BroadcastRoom(roomKey, event string, data any) (int, error) {
	payload, err := EncodeFrame(event, data)
	if err != nil {
		return 0, err
	}
	return r.Broadcast(roomKey, payload), nil
}

// BroadcastEvent encodes data as an event frame and sends it to every connection.
func (r *Router) BroadcastEvent(event string, data any) (int, error) {
	payload, err := EncodeFrame(event, data)
	if err != nil {
		return 0, err
	}
	return r.BroadcastAll(payload), nil
}
