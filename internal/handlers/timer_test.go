package handlers

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/timesheet-api/internal/dto"
)

func TestTimerHandler_StartCurrentStop(t *testing.T) {
	env := setupHandlerTestEnv(t)
	user := env.createUser(t, "alice")
	r := env.router(user.ID)

	w := doJSON(t, r, http.MethodGet, "/api/timer/current", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var status dto.TimerStatusResponse
	decode(t, w, &status)
	assert.Empty(t, status.EntryID)
	assert.Nil(t, status.Entry)

	w = doJSON(t, r, http.MethodPost, "/api/timer/start", map[string]string{"ticket_name": "Billing"})
	require.Equal(t, http.StatusCreated, w.Code)
	var started dto.TimeEntryDTO
	decode(t, w, &started)
	assert.True(t, started.Running)
	assert.Equal(t, "Billing", started.TicketName)

	env.clock.Advance(2 * time.Minute)

	w = doJSON(t, r, http.MethodGet, "/api/timer/current", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &status)
	assert.Equal(t, started.ID, status.EntryID)
	assert.InDelta(t, 120, status.Duration, 0.001)

	w = doJSON(t, r, http.MethodPost, "/api/timer/stop", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var stopped struct {
		Entry *dto.TimeEntryDTO `json:"entry"`
	}
	decode(t, w, &stopped)
	require.NotNil(t, stopped.Entry)
	assert.False(t, stopped.Entry.Running)
	assert.Equal(t, "00:02", stopped.Entry.Formatted)

	w = doJSON(t, r, http.MethodGet, "/api/timer/current", nil)
	require.Equal(t, http.StatusOK, w.Code)
	status = dto.TimerStatusResponse{}
	decode(t, w, &status)
	assert.Empty(t, status.EntryID)
	assert.Nil(t, status.Entry)
	assert.Zero(t, status.Duration)

	w = doJSON(t, r, http.MethodPost, "/api/timer/stop", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &stopped)
	assert.Nil(t, stopped.Entry)
}

func TestTimerHandler_StartRequiresTicketName(t *testing.T) {
	env := setupHandlerTestEnv(t)
	user := env.createUser(t, "alice")

	w := doJSON(t, env.router(user.ID), http.MethodPost, "/api/timer/start", map[string]string{"ticket_name": " "})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestEntryHandler_ListUpdateDelete(t *testing.T) {
	env := setupHandlerTestEnv(t)
	user := env.createUser(t, "alice")
	other := env.createUser(t, "bob")
	r := env.router(user.ID)

	first, err := env.timerService.StartTimer(user.ID, "A")
	require.NoError(t, err)
	env.clock.Advance(time.Hour)
	second, err := env.timerService.StartTimer(user.ID, "B")
	require.NoError(t, err)

	w := doJSON(t, r, http.MethodGet, "/api/entries", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list dto.TimeEntryListResponse
	decode(t, w, &list)
	require.Len(t, list.Entries, 2)
	assert.Equal(t, second.ID, list.Entries[0].ID)
	assert.Nil(t, list.Pagination)

	w = doJSON(t, r, http.MethodGet, "/api/entries?page=1&limit=1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &list)
	require.Len(t, list.Entries, 1)
	require.NotNil(t, list.Pagination)
	assert.Equal(t, 1, list.Pagination.Limit)

	end := testNow.Add(30 * time.Minute)
	w = doJSON(t, r, http.MethodPut, "/api/entries/"+first.ID, map[string]interface{}{
		"start_time": testNow.Format(time.RFC3339),
		"end_time":   end.Format(time.RFC3339),
		"memo":       "kickoff",
	})
	require.Equal(t, http.StatusOK, w.Code)
	var updated dto.TimeEntryDTO
	decode(t, w, &updated)
	assert.Equal(t, "kickoff", updated.Memo)
	require.NotNil(t, updated.Hours)
	assert.Equal(t, 0.5, *updated.Hours)

	w = doJSON(t, r, http.MethodPut, "/api/entries/"+first.ID, map[string]interface{}{"memo": "no start"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, env.router(other.ID), http.MethodDelete, "/api/entries/"+second.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, r, http.MethodDelete, "/api/entries/"+second.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	id, err := env.timerService.CurrentEntryID(user.ID)
	require.NoError(t, err)
	assert.Empty(t, id)
}
