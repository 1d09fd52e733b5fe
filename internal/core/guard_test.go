package core

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var baseTime = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

func TestEvaluateWindow(t *testing.T) {
	records := []SendRecord{{Timestamp: baseTime, Recipient: "a@x.com", TemplateVersion: "v1"}}

	tests := []struct {
		name      string
		recipient string
		version   string
		now       time.Time
		want      Decision
	}{
		{"one hour later", "a@x.com", "v1", baseTime.Add(time.Hour), Suppress},
		{"25 hours later", "a@x.com", "v1", baseTime.Add(25 * time.Hour), Allow},
		{"window edge is inclusive", "a@x.com", "v1", baseTime.Add(24 * time.Hour), Suppress},
		{"recipient ignores case", "A@X.com", "v1", baseTime.Add(time.Hour), Suppress},
		{"other recipient", "b@x.com", "v1", baseTime.Add(time.Hour), Allow},
		{"other template version", "a@x.com", "v2", baseTime.Add(time.Hour), Allow},
		{"record in the future", "a@x.com", "v1", baseTime.Add(-time.Minute), Allow},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, match := Evaluate(records, tt.recipient, tt.version, tt.now, 24*time.Hour)
			assert.Equal(t, tt.want, got)
			if tt.want == Suppress {
				require.NotNil(t, match)
				assert.Equal(t, baseTime, match.Timestamp)
			} else {
				assert.Nil(t, match)
			}
		})
	}
}

func TestEvaluatePicksMostRecentMatch(t *testing.T) {
	records := []SendRecord{
		{Timestamp: baseTime, Recipient: "a@x.com", TemplateVersion: "v1"},
		{Timestamp: baseTime.Add(2 * time.Hour), Recipient: "a@x.com", TemplateVersion: "v1"},
		{Timestamp: baseTime.Add(time.Hour), Recipient: "a@x.com", TemplateVersion: "v1"},
	}
	decision, match := Evaluate(records, "a@x.com", "v1", baseTime.Add(3*time.Hour), 24*time.Hour)
	assert.Equal(t, Suppress, decision)
	assert.Equal(t, baseTime.Add(2*time.Hour), match.Timestamp)
}

func TestDuplicateGuardCheck(t *testing.T) {
	log := &fakeSendLog{records: []SendRecord{{Timestamp: baseTime, Recipient: "a@x.com", TemplateVersion: "v1"}}}
	guard := NewDuplicateGuard(log, 24*time.Hour, zap.NewNop())

	result, err := guard.Check(context.Background(), "a@x.com", "v1", baseTime.Add(time.Hour), false)
	require.NoError(t, err)
	assert.Equal(t, Suppress, result.Decision)

	result, err = guard.Check(context.Background(), "a@x.com", "v1", baseTime.Add(time.Hour), true)
	require.NoError(t, err)
	assert.Equal(t, Allow, result.Decision)
}

func TestDuplicateGuardFailsClosed(t *testing.T) {
	corrupt := &fakeSendLog{readErr: fmt.Errorf("row 3: %w", ErrSendLogCorrupt)}
	guard := NewDuplicateGuard(corrupt, 24*time.Hour, zap.NewNop())

	_, err := guard.Check(context.Background(), "a@x.com", "v1", baseTime, false)
	require.ErrorIs(t, err, ErrSendLogCorrupt)

	// override never consults the log
	result, err := guard.Check(context.Background(), "a@x.com", "v1", baseTime, true)
	require.NoError(t, err)
	assert.Equal(t, Allow, result.Decision)
}

func TestNormalizeRecipient(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"jane@example.com", "jane@example.com"},
		{"  Jane@Example.COM ", "jane@example.com"},
		{"Jane <jane@example.com>", "jane@example.com"},
		{"\"Doe, Jane\" <JANE@example.com>", "jane@example.com"},
		{"not an address", "not an address"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeRecipient(tt.in))
		})
	}
}

func TestEvaluateMatchesDisplayNameRecords(t *testing.T) {
	records := []SendRecord{{Timestamp: baseTime, Recipient: "Jane <jane@example.com>", TemplateVersion: "v1"}}

	decision, match := Evaluate(records, "jane@example.com", "v1", baseTime.Add(time.Hour), 24*time.Hour)
	assert.Equal(t, Suppress, decision)
	require.NotNil(t, match)
}
