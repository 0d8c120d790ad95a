// Package protocol defines the payloads exchanged between the bridge, the UI
// and the chat server.
package protocol

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// StatusOK is the payload of the onConnect event.
const StatusOK = "ok"

// ErrNotSequence is returned when an inbound frame is valid JSON but not an
// array of records.
var ErrNotSequence = errors.New("frame is not a sequence of records")

// Identity is the resolved display identity of the local user.
type Identity struct {
	Username string `json:"username"`
	Color    string `json:"color"`
}

// Encode encodes the identity into the onUserData payload.
func (id Identity) Encode() (string, error) {
	data, err := marshal(id)
	if err != nil {
		return "", fmt.Errorf("failed to encode identity: %w", err)
	}
	return string(data), nil
}

// Decode decodes an onUserData payload.
func (id *Identity) Decode(payload string) error {
	if err := json.Unmarshal([]byte(payload), id); err != nil {
		return fmt.Errorf("failed to decode identity: %w", err)
	}
	return nil
}

// Batch is the ordered sequence of message records carried by one inbound
// frame. Records stay opaque.
type Batch []json.RawMessage

// DecodeFrame parses a raw transport frame into a Batch.
func DecodeFrame(frame []byte) (Batch, error) {
	trimmed := bytes.TrimSpace(frame)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		if !json.Valid(trimmed) {
			return nil, fmt.Errorf("failed to decode frame: invalid JSON")
		}
		return nil, ErrNotSequence
	}

	var b Batch
	if err := json.Unmarshal(trimmed, &b); err != nil {
		return nil, fmt.Errorf("failed to decode frame: %w", err)
	}
	if b == nil {
		b = Batch{}
	}
	return b, nil
}

// Encode re-serializes the batch into the onMessages payload.
func (b Batch) Encode() (string, error) {
	if b == nil {
		b = Batch{}
	}
	data, err := marshal(b)
	if err != nil {
		return "", fmt.Errorf("failed to encode batch: %w", err)
	}
	return string(data), nil
}

// Record is the message shape the bundled UIs render and send. The bridge
// itself never looks inside records.
type Record struct {
	Username string `json:"username"`
	Color    string `json:"color,omitempty"`
	Content  string `json:"content"`
}

// Encode encodes the record into an outbound sendMessage payload.
func (r Record) Encode() (string, error) {
	data, err := marshal(r)
	if err != nil {
		return "", fmt.Errorf("failed to encode record: %w", err)
	}
	return string(data), nil
}

// Decode decodes a single record.
func (r *Record) Decode(data []byte) error {
	if err := json.Unmarshal(data, r); err != nil {
		return fmt.Errorf("failed to decode record: %w", err)
	}
	return nil
}

// Records decodes every record of the batch, skipping ones that do not
// match the Record shape.
func (b Batch) Records() []Record {
	out := make([]Record, 0, len(b))
	for _, raw := range b {
		var r Record
		if err := r.Decode(raw); err != nil {
			continue
		}
		out = append(out, r)
	}
	return out
}

// marshal encodes v compactly without HTML escaping.
func marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
