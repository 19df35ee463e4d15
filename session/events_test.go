package session

import (
	"testing"

	"github.com/kbukum/sseclient/errors"
)

func TestParseEvent(t *testing.T) {
	e, err := ParseEvent(`{"type":"system","subType":"TOKEN_EXPIRED","code":401,"message":"expired","extra":true}`)
	if err != nil {
		t.Fatalf("ParseEvent: %v", err)
	}
	if e.Type != "system" || e.SubType != "TOKEN_EXPIRED" || e.Code != 401 || e.Message != "expired" {
		t.Errorf("unexpected event %+v", e)
	}
	var full map[string]any
	if err := e.Decode(&full); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if full["extra"] != true {
		t.Errorf("expected Raw to keep unknown fields, got %v", full)
	}
}

func TestParseEvent_CodeAsString(t *testing.T) {
	e, err := ParseEvent(`{"type":"system","code":"401"}`)
	if err != nil {
		t.Fatalf("ParseEvent: %v", err)
	}
	if e.Code != 401 {
		t.Errorf("expected 401, got %d", e.Code)
	}
	if e, _ := ParseEvent(`{"type":"x","code":null}`); e.Code != 0 {
		t.Errorf("expected 0 for null code, got %d", e.Code)
	}
}

func TestParseEvent_Invalid(t *testing.T) {
	for _, data := range []string{"hello", `["a"]`, `{"type":`, `{"code":"abc"}`, `{"code":4.5}`, "   "} {
		if _, err := ParseEvent(data); !errors.HasCode(err, errors.ErrCodeInvalidFormat) {
			t.Errorf("%q: expected INVALID_FORMAT, got %v", data, err)
		}
	}
}

func TestEvent_IsTokenExpiry(t *testing.T) {
	tests := []struct {
		name string
		e    Event
		want bool
	}{
		{"expired", Event{Type: "system", SubType: "TOKEN_EXPIRED", Code: 401}, true},
		{"invalid", Event{Type: "system", SubType: "INVALID_ACCESS_TOKEN", Code: 401}, true},
		{"wrong code", Event{Type: "system", SubType: "TOKEN_EXPIRED", Code: 403}, false},
		{"wrong type", Event{Type: "update", SubType: "TOKEN_EXPIRED", Code: 401}, false},
		{"other subtype", Event{Type: "system", SubType: "MAINTENANCE", Code: 401}, false},
		{"terminal", TerminalEvent(), false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.e.IsTokenExpiry(); got != tc.want {
				t.Errorf("IsTokenExpiry() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestTerminalEvent(t *testing.T) {
	e := TerminalEvent()
	if !e.IsTerminal() || e.Code != 401 || e.Type != TypeSystem {
		t.Fatalf("unexpected terminal event %+v", e)
	}
	parsed, err := ParseEvent(string(e.Raw))
	if err != nil {
		t.Fatalf("terminal Raw must parse: %v", err)
	}
	if parsed.SubType != "COULD_NOT_REFRESH_TOKEN" {
		t.Errorf("unexpected subType %q", parsed.SubType)
	}
}

func TestEvent_DecodeEmpty(t *testing.T) {
	var v map[string]any
	if err := (Event{}).Decode(&v); !errors.HasCode(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("expected INVALID_FORMAT, got %v", err)
	}
}
