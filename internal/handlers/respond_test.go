package handlers

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskquest/internal/ledger"
)

func TestRespondLedgerError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"not found", ledger.ErrNotFound, 404},
		{"forbidden", ledger.ErrForbidden, 403},
		{"already completed", ledger.ErrAlreadyCompleted, 409},
		{"insufficient points", ledger.InsufficientPointsError{Required: 50, Available: 20}, 400},
		{"locked avatar", ledger.LockedError{AvatarName: "Owl", StreakRequired: 7}, 403},
		{"storage failure", assert.AnError, 500},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			respondLedgerError(rec, tc.err)
			assert.Equal(t, tc.wantStatus, rec.Code)
		})
	}
}

func TestRespondLedgerErrorShortfallBody(t *testing.T) {
	rec := httptest.NewRecorder()
	respondLedgerError(rec, ledger.InsufficientPointsError{Required: 50, Available: 20})

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.EqualValues(t, 30, body["shortfall"])
	assert.EqualValues(t, 50, body["required"])
	assert.EqualValues(t, 20, body["available"])
}
