package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"strconv"
	"time"
)

// Event is a single client-reported occurrence inside a batch.
// properties is free-form and kept as-is for forward compatibility.
type Event struct {
	ID         string         `json:"id,omitempty"`
	UserID     string         `json:"userId,omitempty"`
	Type       string         `json:"type"`
	Timestamp  Timestamp      `json:"timestamp"`
	SessionID  string         `json:"sessionId,omitempty"`
	Properties map[string]any `json:"properties,omitempty"`
}

// UnmarshalJSON decodes any JSON object into an Event. Fields of the wrong
// shape degrade instead of failing: non-string ids and types keep their JSON
// text, an unreadable timestamp is left zero and non-object properties are
// kept under "value".
func (e *Event) UnmarshalJSON(b []byte) error {
	var raw struct {
		ID         json.RawMessage `json:"id"`
		UserID     json.RawMessage `json:"userId"`
		Type       json.RawMessage `json:"type"`
		Timestamp  json.RawMessage `json:"timestamp"`
		SessionID  json.RawMessage `json:"sessionId"`
		Properties json.RawMessage `json:"properties"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	*e = Event{
		ID:        looseString(raw.ID),
		UserID:    looseString(raw.UserID),
		Type:      looseString(raw.Type),
		SessionID: looseString(raw.SessionID),
	}
	if err := e.Timestamp.UnmarshalJSON(raw.Timestamp); err != nil {
		e.Timestamp = Timestamp{}
	}
	e.Properties = looseProperties(raw.Properties)
	return nil
}

func looseString(b json.RawMessage) string {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return ""
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		return s
	}
	return string(b)
}

func looseProperties(b json.RawMessage) map[string]any {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err == nil {
		return m
	}
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return nil
	}
	return map[string]any{"value": v}
}

// Batch is the POST /api/collect payload.
// Events stays raw so a missing field can be told apart from a non-array one.
type Batch struct {
	Events     json.RawMessage `json:"events"`
	DeviceID   string          `json:"deviceId,omitempty"`
	AppVersion string          `json:"appVersion,omitempty"`
	Platform   string          `json:"platform,omitempty"`
}

// CollectResponse is returned by POST /api/collect on success.
type CollectResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Timestamp accepts RFC3339 strings or epoch milliseconds.
type Timestamp struct {
	time.Time
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Timestamp) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		t.Time = time.Time{}
		return nil
	}

	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		if s == "" {
			t.Time = time.Time{}
			return nil
		}
		parsed, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return errors.New("timestamp must be RFC3339 or epoch milliseconds")
		}
		t.Time = parsed.UTC()
		return nil
	}

	ms, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		return errors.New("timestamp must be RFC3339 or epoch milliseconds")
	}
	t.Time = time.UnixMilli(int64(ms)).UTC()
	return nil
}

// MarshalJSON implements json.Marshaler.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.UTC().Format(time.RFC3339Nano))
}
