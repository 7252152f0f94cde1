package adminlog

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
)

type recordingNotifier struct {
	events []Event
}

func (r *recordingNotifier) Emit(_ context.Context, event Event) {
	r.events = append(r.events, event)
}

func TestMultiFansOut(t *testing.T) {
	a := &recordingNotifier{}
	b := &recordingNotifier{}
	m := Multi{a, b}

	m.Emit(context.Background(), Event{Kind: KindDeploy, Fields: map[string]string{"app_id": "app-1"}})

	for _, r := range []*recordingNotifier{a, b} {
		if len(r.events) != 1 {
			t.Fatalf("events = %d", len(r.events))
		}
		if r.events[0].Kind != KindDeploy {
			t.Fatalf("kind = %q", r.events[0].Kind)
		}
	}
}

func TestLogNotifierWritesFields(t *testing.T) {
	var buf bytes.Buffer
	n := NewLogNotifier(slog.New(slog.NewJSONHandler(&buf, nil)))

	n.Emit(context.Background(), Event{
		Kind:   KindPayment,
		Fields: map[string]string{"payment_id": "pay-1", "amount": "25.00"},
	})

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("log output not JSON: %v", err)
	}
	if record["kind"] != string(KindPayment) {
		t.Fatalf("kind = %v", record["kind"])
	}
	if record["payment_id"] != "pay-1" || record["amount"] != "25.00" {
		t.Fatalf("fields missing: %v", record)
	}
}
