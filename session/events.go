package session

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/kbukum/sseclient/errors"
)

// TypeSystem marks protocol control events.
const TypeSystem = "system"

// Callback receives every delivered event, in order, from a single goroutine.
type Callback func(Event)

// Event is one structured message from the stream.
type Event struct {
	Type    string `json:"type"`
	SubType string `json:"subType,omitempty"`
	Code    int    `json:"code,omitempty"`
	Message string `json:"message,omitempty"`

	// Name is the SSE "event:" field, empty for default messages.
	Name string `json:"-"`
	// ID is the SSE "id:" field.
	ID string `json:"-"`
	// Raw is the full JSON payload.
	Raw json.RawMessage `json:"-"`
}

// UnmarshalJSON accepts code as a number or a numeric string.
func (e *Event) UnmarshalJSON(data []byte) error {
	type plain Event
	var aux struct {
		*plain
		Code json.RawMessage `json:"code"`
	}
	aux.plain = (*plain)(e)
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	code, err := parseCode(aux.Code)
	if err != nil {
		return err
	}
	e.Code = code
	return nil
}

func parseCode(raw json.RawMessage) (int, error) {
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0, nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		v, err := strconv.Atoi(n.String())
		if err != nil {
			return 0, fmt.Errorf("code %s is not an integer", n)
		}
		return v, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, fmt.Errorf("code must be a number: %w", err)
	}
	if s == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("code %q is not an integer", s)
	}
	return v, nil
}

// Decode unmarshals the full payload into v.
func (e Event) Decode(v any) error {
	if len(e.Raw) == 0 {
		return errors.InvalidFormat("event", fmt.Errorf("empty payload"))
	}
	return json.Unmarshal(e.Raw, v)
}

// IsSystem reports whether the event is a protocol control message.
func (e Event) IsSystem() bool { return e.Type == TypeSystem }

// IsTokenExpiry reports whether the server signaled an expired or rejected
// access token.
func (e Event) IsTokenExpiry() bool {
	if !e.IsSystem() || e.Code != http.StatusUnauthorized {
		return false
	}
	switch errors.ErrorCode(e.SubType) {
	case errors.ErrCodeTokenExpired, errors.ErrCodeInvalidAccessToken:
		return true
	}
	return false
}

// IsTerminal reports whether the event says automatic recovery gave up.
func (e Event) IsTerminal() bool {
	return e.IsSystem() && errors.ErrorCode(e.SubType) == errors.ErrCodeTokenRefreshFailed
}

// TerminalEvent is delivered once per failed token refresh.
func TerminalEvent() Event {
	e := Event{
		Type:    TypeSystem,
		SubType: string(errors.ErrCodeTokenRefreshFailed),
		Code:    http.StatusUnauthorized,
		Message: "Could not refresh the access token.",
	}
	e.Raw, _ = json.Marshal(e)
	return e
}

// ParseEvent decodes a stream payload. The payload must be a JSON object.
func ParseEvent(data string) (Event, error) {
	raw := bytes.TrimSpace([]byte(data))
	if len(raw) == 0 || raw[0] != '{' {
		return Event{}, errors.InvalidFormat("event", fmt.Errorf("payload is not a JSON object"))
	}
	var e Event
	if err := json.Unmarshal(raw, &e); err != nil {
		return Event{}, errors.InvalidFormat("event", err)
	}
	e.Raw = json.RawMessage(raw)
	return e, nil
}
