package intakeclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientStartSuccess(t *testing.T) {
	var gotPath string
	var gotReq StartRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(StartResponse{Answer: `["Hypertension"]`, Model: "gemini-2.0-flash"})
	}))
	defer server.Close()

	client := NewClient(server.URL, 5*time.Second)
	resp, err := client.Start(context.Background(), StartRequest{
		PatientProfile: PatientProfile{Age: 34, Gender: GenderFemale, ChiefComplaint: "headache"},
	})

	require.NoError(t, err)
	assert.Equal(t, "/start", gotPath)
	assert.Equal(t, "headache", gotReq.PatientProfile.ChiefComplaint)
	assert.Equal(t, `["Hypertension"]`, resp.Answer)
	assert.Equal(t, "gemini-2.0-flash", resp.Model)
}

func TestClientSaveSectionPath(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(SaveSectionResponse{Message: "saved"})
	}))
	defer server.Close()

	client := NewClient(server.URL, 5*time.Second)
	_, err := client.SaveSection(context.Background(), SectionRedFlags, SaveSectionRequest{})

	require.NoError(t, err)
	assert.Equal(t, "/sections/red-flags", gotPath)
}

func TestClientErrorBodyShapes(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		message string
	}{
		{
			name:    "flat error and message",
			status:  http.StatusBadGateway,
			body:    `{"error":"suggestion_failed","message":"The suggestion service is unavailable."}`,
			message: "The suggestion service is unavailable.",
		},
		{
			name:    "nested error object with message",
			status:  http.StatusBadRequest,
			body:    `{"error":{"message":"age must be between 0 and 140"}}`,
			message: "age must be between 0 and 140",
		},
		{
			name:    "nested error object with error field",
			status:  http.StatusBadRequest,
			body:    `{"error":{"error":"validation failed"}}`,
			message: "validation failed",
		},
		{
			name:    "plain string error",
			status:  http.StatusInternalServerError,
			body:    `{"error":"something broke"}`,
			message: "something broke",
		},
		{
			name:    "unusable body falls back to generic",
			status:  http.StatusInternalServerError,
			body:    `<html>gateway timeout</html>`,
			message: GenericSubmissionError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := NewClient(server.URL, 5*time.Second)
			_, err := client.Start(context.Background(), StartRequest{})

			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Equal(t, tt.message, apiErr.Message)
		})
	}
}

func TestClientTransportErrorIsGeneric(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client := NewClient(server.URL, time.Second)
	_, err := client.Start(context.Background(), StartRequest{})

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, GenericSubmissionError, apiErr.Message)
	assert.Zero(t, apiErr.StatusCode)
}
