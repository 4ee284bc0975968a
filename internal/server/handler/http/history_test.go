package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atinyakov/basetutor/internal/models"
)

func TestHistoryHandler_ConvertAnonymousGoesToCache(t *testing.T) {
	api := newTestAPI()
	api.history.record = func(string, string, int, string, int) (models.ConversionEntry, error) {
		t.Fatal("anonymous conversion must not be stored per user")
		return models.ConversionEntry{}, nil
	}

	rec := api.do(t, http.MethodPost, "/api/convert", `{"value":"255","from":10,"to":16}`)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp ConvertResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "ff", resp.Result)
	assert.Nil(t, resp.Entry)
	assert.Equal(t, []string{"255 (10) = ff (16)"}, api.cache.entries)
}

func TestHistoryHandler_ConvertRecordsForUser(t *testing.T) {
	api := newTestAPI()
	api.history.record = func(username, in string, from int, out string, to int) (models.ConversionEntry, error) {
		return models.ConversionEntry{ID: 7, Username: username, InputValue: in, InputBase: from, OutputValue: out, OutputBase: to}, nil
	}

	rec := api.do(t, http.MethodPost, "/api/convert", `{"username":"alice","value":"101","from":2,"to":10}`)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp ConvertResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "5", resp.Result)
	require.NotNil(t, resp.Entry)
	assert.Equal(t, int64(7), resp.Entry.ID)
	assert.Empty(t, api.cache.entries)
}

func TestHistoryHandler_ConvertErrors(t *testing.T) {
	tests := []struct {
		name         string
		body         string
		recordErr    error
		expectedCode int
	}{
		{"malformed value", `{"value":"12","from":2,"to":10}`, nil, http.StatusBadRequest},
		{"unsupported base", `{"value":"12","from":3,"to":10}`, nil, http.StatusBadRequest},
		{"bad json", `{`, nil, http.StatusBadRequest},
		{"unknown user", `{"username":"ghost","value":"1","from":10,"to":2}`, models.ErrNotFound, http.StatusNotFound},
		{"storage", `{"username":"alice","value":"1","from":10,"to":2}`, &models.StorageError{Op: "InsertConversion", Err: errors.New("boom")}, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newTestAPI()
			api.history.record = func(string, string, int, string, int) (models.ConversionEntry, error) {
				return models.ConversionEntry{}, tt.recordErr
			}
			assert.Equal(t, tt.expectedCode, api.do(t, http.MethodPost, "/api/convert", tt.body).Code)
		})
	}
}

func TestHistoryHandler_List(t *testing.T) {
	api := newTestAPI()
	entries := []models.ConversionEntry{{ID: 2, Username: "alice"}, {ID: 1, Username: "alice"}}
	api.history.history = func(string) ([]models.ConversionEntry, error) { return entries, nil }
	var gotLimit int
	api.history.recent = func(_ string, limit int) ([]models.ConversionEntry, error) {
		gotLimit = limit
		return entries[:1], nil
	}

	rec := api.do(t, http.MethodGet, "/api/users/alice/history", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var all []models.ConversionEntry
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&all))
	assert.Len(t, all, 2)

	rec = api.do(t, http.MethodGet, "/api/users/alice/history?limit=1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, gotLimit)

	rec = api.do(t, http.MethodGet, "/api/users/alice/history?limit=zero", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHistoryHandler_Clear(t *testing.T) {
	api := newTestAPI()
	api.history.clear = func(username string) (int64, error) {
		assert.Equal(t, "alice", username)
		return 3, nil
	}

	rec := api.do(t, http.MethodDelete, "/api/users/alice/history", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"removed":3}`, rec.Body.String())
}

func TestHistoryHandler_Recent(t *testing.T) {
	api := newTestAPI()
	api.cache.entries = []string{"b", "a"}

	rec := api.do(t, http.MethodGet, "/api/history/recent", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"history":["b","a"]}`, rec.Body.String())

	api.cache.err = errors.New("read-only fs")
	assert.Equal(t, http.StatusInternalServerError, api.do(t, http.MethodGet, "/api/history/recent", "").Code)
}
