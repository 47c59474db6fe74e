package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSuccessEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	Success(rec, http.StatusCreated, "Appointment booked", map[string]string{"time": "09:00"})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, "Appointment booked", body.Message)
}

func TestConflictEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	Conflict(rec, "Slot already taken")

	assert.Equal(t, http.StatusConflict, rec.Code)
	var body Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.False(t, body.Success)
	assert.Equal(t, "Slot already taken", body.Message)
}

func TestNewMeta(t *testing.T) {
	assert.Equal(t, &Meta{Page: 2, Limit: 20, Total: 41, TotalPages: 3}, NewMeta(2, 20, 41))
	assert.Equal(t, 0, NewMeta(1, 0, 10).TotalPages)
}
