package models

import (
	"encoding/json"
	"testing"
)

func TestGUID_StringRoundTrip(t *testing.T) {
	id := NewGUID()

	parsed, err := GUIDFromString(id.String())
	if err != nil {
		t.Fatalf("GUIDFromString returned error: %v", err)
	}
	if parsed != id {
		t.Errorf("Expected %s, got %s", id, parsed)
	}
}

func TestGUIDFromString_Invalid(t *testing.T) {
	for _, input := range []string{"", "not-a-uuid", "12345"} {
		if _, err := GUIDFromString(input); err == nil {
			t.Errorf("Expected error for input %q", input)
		}
	}
}

func TestGUID_ScanValue(t *testing.T) {
	id := NewGUID()

	value, err := id.Value()
	if err != nil {
		t.Fatalf("Value returned error: %v", err)
	}

	str, ok := value.(string)
	if !ok {
		t.Fatalf("Expected string driver value, got %T", value)
	}
	if len(str) != 36 {
		t.Errorf("Expected canonical 36-character representation, got %q", str)
	}

	var scanned GUID
	if err := scanned.Scan(str); err != nil {
		t.Fatalf("Scan(string) returned error: %v", err)
	}
	if scanned != id {
		t.Errorf("Expected %s after scan, got %s", id, scanned)
	}

	var fromBytes GUID
	if err := fromBytes.Scan([]byte(str)); err != nil {
		t.Fatalf("Scan([]byte) returned error: %v", err)
	}
	if fromBytes != id {
		t.Errorf("Expected %s after byte scan, got %s", id, fromBytes)
	}
}

func TestGUID_ScanNil(t *testing.T) {
	var g GUID
	if err := g.Scan(nil); err != nil {
		t.Fatalf("Scan(nil) returned error: %v", err)
	}
	if !g.IsNil() {
		t.Error("Expected nil scan to produce the zero GUID")
	}
}

func TestGUID_JSONRoundTrip(t *testing.T) {
	id := NewGUID()

	data, err := json.Marshal(id)
	if err != nil {
		t.Fatalf("Marshal returned error: %v", err)
	}
	if string(data) != `"`+id.String()+`"` {
		t.Errorf("Expected quoted canonical string, got %s", data)
	}

	var decoded GUID
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal returned error: %v", err)
	}
	if decoded != id {
		t.Errorf("Expected %s after JSON round trip, got %s", id, decoded)
	}

	if err := json.Unmarshal([]byte(`"garbage"`), &decoded); err == nil {
		t.Error("Expected error for invalid JSON GUID")
	}
	if err := json.Unmarshal([]byte(`42`), &decoded); err == nil {
		t.Error("Expected error for non-string JSON GUID")
	}
}

func TestValidTaskStatus(t *testing.T) {
	for _, status := range []string{StatusTodo, StatusInProgress, StatusDone} {
		if !ValidTaskStatus(status) {
			t.Errorf("Expected %q to be a valid status", status)
		}
	}
	for _, status := range []string{"", "pending", "IN_PROGRESS", "in-progress"} {
		if ValidTaskStatus(status) {
			t.Errorf("Expected %q to be invalid", status)
		}
	}
}

func TestValidTaskPriority(t *testing.T) {
	for _, priority := range []string{PriorityLow, PriorityMedium, PriorityHigh} {
		if !ValidTaskPriority(priority) {
			t.Errorf("Expected %q to be a valid priority", priority)
		}
	}
	for _, priority := range []string{"", "urgent", "HIGH"} {
		if ValidTaskPriority(priority) {
			t.Errorf("Expected %q to be invalid", priority)
		}
	}
}
