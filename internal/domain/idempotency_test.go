package domain

import (
	"testing"
	"time"
)

func TestIdempotencyStatusValid(t *testing.T) {
	tests := []struct {
		name   string
		status IdempotencyStatus
		want   bool
	}{
		{name: "processing", status: IdempotencyStatusProcessing, want: true},
		{name: "done", status: IdempotencyStatusDone, want: true},
		{name: "failed", status: IdempotencyStatusFailed, want: true},
		{name: "unknown value", status: IdempotencyStatus("broken"), want: false},
		{name: "empty", status: IdempotencyStatus(""), want: false},
		// Регистр значим: в базе статусы хранятся строчными.
		{name: "wrong case", status: IdempotencyStatus("Done"), want: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.status.Valid(); got != tc.want {
				t.Fatalf("status %q valid=%v, want %v", tc.status, got, tc.want)
			}
		})
	}
}

func TestIdempotencyStatusTerminal(t *testing.T) {
	if IdempotencyStatusProcessing.Terminal() {
		t.Fatal("processing must not be terminal")
	}
	if !IdempotencyStatusDone.Terminal() {
		t.Fatal("done must be terminal")
	}
	if !IdempotencyStatusFailed.Terminal() {
		t.Fatal("failed must be terminal")
	}
}

func TestIdempotencyRecordReplayable(t *testing.T) {
	base := IdempotencyRecord{
		Key:         "order-123",
		RequestHash: "abc",
		TTLAt:       time.Now().Add(time.Hour),
	}

	tests := []struct {
		name   string
		status IdempotencyStatus
		body   []byte
		want   bool
	}{
		{name: "done with body", status: IdempotencyStatusDone, body: []byte(`{"success":true}`), want: true},
		{name: "failed with body", status: IdempotencyStatusFailed, body: []byte(`{"success":false}`), want: true},
		// Запрос ещё в обработке: отдавать нечего, клиент получает конфликт.
		{name: "processing", status: IdempotencyStatusProcessing, body: []byte(`{}`), want: false},
		{name: "done without body", status: IdempotencyStatusDone, body: nil, want: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := base
			rec.Status = tc.status
			rec.ResponseBody = tc.body
			if got := rec.Replayable(); got != tc.want {
				t.Fatalf("replayable=%v, want %v", got, tc.want)
			}
		})
	}
}
