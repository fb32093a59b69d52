package intake

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"

	"github.com/WailSalutem-Health-Care/intake-service/internal/genai"
	"github.com/WailSalutem-Health-Care/intake-service/internal/pagination"
)

func postJSON(t *testing.T, handlerFunc http.HandlerFunc, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	encoded, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("failed to marshal request: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(encoded))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handlerFunc(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) (string, string) {
	t.Helper()
	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode error body: %v", err)
	}
	return body.Error, body.Message
}

// TestHandlerStart_Success tests a valid start request
func TestHandlerStart_Success(t *testing.T) {
	mockSvc := &mockIntakeService{
		startFunc: func(ctx context.Context, req StartRequest) (*StartResponse, error) {
			return &StartResponse{Answer: `["Hypertension"]`, Model: "test-model"}, nil
		},
	}
	handler := NewHandler(mockSvc)

	rec := postJSON(t, handler.Start, "/start", StartRequest{PatientProfile: testProfile()})

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}
	var resp StartResponse
	json.NewDecoder(rec.Body).Decode(&resp)
	if resp.Answer != `["Hypertension"]` {
		t.Errorf("Expected answer passthrough, got '%s'", resp.Answer)
	}
}

// TestHandlerStart_InvalidAge tests profile validation
func TestHandlerStart_InvalidAge(t *testing.T) {
	handler := NewHandler(&mockIntakeService{})

	profile := testProfile()
	profile.Age = 200
	rec := postJSON(t, handler.Start, "/start", StartRequest{PatientProfile: profile})

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("Expected status 400, got %d", rec.Code)
	}
	errType, _ := decodeError(t, rec)
	if errType != "validation_error" {
		t.Errorf("Expected 'validation_error', got '%s'", errType)
	}
}

// TestHandlerStart_MissingComplaint tests that an empty chief complaint is
// rejected before the service runs
func TestHandlerStart_MissingComplaint(t *testing.T) {
	called := false
	mockSvc := &mockIntakeService{
		startFunc: func(ctx context.Context, req StartRequest) (*StartResponse, error) {
			called = true
			return &StartResponse{}, nil
		},
	}
	handler := NewHandler(mockSvc)

	profile := testProfile()
	profile.ChiefComplaint = ""
	rec := postJSON(t, handler.Start, "/start", StartRequest{PatientProfile: profile})

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("Expected status 400, got %d", rec.Code)
	}
	if called {
		t.Error("Expected service not to be called on invalid input")
	}
}

// TestHandlerStart_NotConfigured tests the 503 mapping
func TestHandlerStart_NotConfigured(t *testing.T) {
	mockSvc := &mockIntakeService{
		startFunc: func(ctx context.Context, req StartRequest) (*StartResponse, error) {
			return nil, genai.ErrNotConfigured
		},
	}
	handler := NewHandler(mockSvc)

	rec := postJSON(t, handler.Start, "/start", StartRequest{PatientProfile: testProfile()})

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("Expected status 503, got %d", rec.Code)
	}
	errType, _ := decodeError(t, rec)
	if errType != "suggestions_unavailable" {
		t.Errorf("Expected 'suggestions_unavailable', got '%s'", errType)
	}
}

// TestHandlerStart_GenerationFailure tests the 502 mapping
func TestHandlerStart_GenerationFailure(t *testing.T) {
	mockSvc := &mockIntakeService{
		startFunc: func(ctx context.Context, req StartRequest) (*StartResponse, error) {
			return nil, fmt.Errorf("%w: upstream exploded", ErrSuggestionFailed)
		},
	}
	handler := NewHandler(mockSvc)

	rec := postJSON(t, handler.Start, "/start", StartRequest{PatientProfile: testProfile()})

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("Expected status 502, got %d", rec.Code)
	}
	errType, _ := decodeError(t, rec)
	if errType != "suggestion_failed" {
		t.Errorf("Expected 'suggestion_failed', got '%s'", errType)
	}
}

// TestHandlerStart_InvalidJSON tests malformed JSON
func TestHandlerStart_InvalidJSON(t *testing.T) {
	handler := NewHandler(&mockIntakeService{})

	req := httptest.NewRequest(http.MethodPost, "/start", bytes.NewReader([]byte("not json")))
	rec := httptest.NewRecorder()
	handler.Start(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("Expected status 400, got %d", rec.Code)
	}
	errType, _ := decodeError(t, rec)
	if errType != "invalid_request" {
		t.Errorf("Expected 'invalid_request', got '%s'", errType)
	}
}

// TestHandlerConfirmAntecedents_EmptySelection tests the required-selection
// validation
func TestHandlerConfirmAntecedents_EmptySelection(t *testing.T) {
	handler := NewHandler(&mockIntakeService{})

	rec := postJSON(t, handler.ConfirmAntecedents, "/antecedents", ConfirmAntecedentsRequest{
		PatientProfile:      testProfile(),
		SelectedAntecedents: []string{},
	})

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("Expected status 400, got %d", rec.Code)
	}
}

// TestHandlerSaveSection_UnknownSection tests the 404 mapping for a bad
// section id
func TestHandlerSaveSection_UnknownSection(t *testing.T) {
	handler := NewHandler(&mockIntakeService{})

	body, _ := json.Marshal(SaveSectionRequest{
		PatientProfile: testProfile(),
		Answers:        []Answer{{ID: "x"}},
	})
	req := httptest.NewRequest(http.MethodPost, "/sections/nonsense", bytes.NewReader(body))
	req = mux.SetURLVars(req, map[string]string{"section": "nonsense"})
	rec := httptest.NewRecorder()

	handler.SaveSection(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("Expected status 404, got %d", rec.Code)
	}
	errType, _ := decodeError(t, rec)
	if errType != "unknown_section" {
		t.Errorf("Expected 'unknown_section', got '%s'", errType)
	}
}

// TestHandlerSaveSection_Success tests the section path variable reaching the
// service
func TestHandlerSaveSection_Success(t *testing.T) {
	var got SectionID
	mockSvc := &mockIntakeService{
		saveSectionFunc: func(ctx context.Context, section SectionID, req SaveSectionRequest) (*SaveSectionResponse, error) {
			got = section
			return &SaveSectionResponse{Message: "ok"}, nil
		},
	}
	handler := NewHandler(mockSvc)

	body, _ := json.Marshal(SaveSectionRequest{
		PatientProfile: testProfile(),
		Answers:        []Answer{{ID: "loc-where", Answer: "left temple"}},
	})
	req := httptest.NewRequest(http.MethodPost, "/sections/location", bytes.NewReader(body))
	req = mux.SetURLVars(req, map[string]string{"section": "location"})
	rec := httptest.NewRecorder()

	handler.SaveSection(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}
	if got != SectionLocation {
		t.Errorf("Expected section 'location', got '%s'", got)
	}
}

// TestHandlerListRecords_InternalError tests the default 500 mapping
func TestHandlerListRecords_InternalError(t *testing.T) {
	mockSvc := &mockIntakeService{
		listRecordsFunc: func(ctx context.Context, params pagination.Params) (*RecordListResponse, error) {
			return nil, errors.New("store exploded")
		},
	}
	handler := NewHandler(mockSvc)

	req := httptest.NewRequest(http.MethodGet, "/records", nil)
	rec := httptest.NewRecorder()
	handler.ListRecords(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("Expected status 500, got %d", rec.Code)
	}
}

// mockIntakeService is a func-field mock of ServiceInterface
type mockIntakeService struct {
	startFunc              func(ctx context.Context, req StartRequest) (*StartResponse, error)
	confirmAntecedentsFunc func(ctx context.Context, req ConfirmAntecedentsRequest) (*ConfirmAntecedentsResponse, error)
	suggestAllergiesFunc   func(ctx context.Context, req SuggestAllergiesRequest) (*SuggestAllergiesResponse, error)
	confirmAllergiesFunc   func(ctx context.Context, req ConfirmAllergiesRequest) (*ConfirmAllergiesResponse, error)
	suggestDrugsFunc       func(ctx context.Context, req SuggestDrugsRequest) (*SuggestDrugsResponse, error)
	confirmDrugsFunc       func(ctx context.Context, req ConfirmDrugsRequest) (*ConfirmDrugsResponse, error)
	saveSectionFunc        func(ctx context.Context, section SectionID, req SaveSectionRequest) (*SaveSectionResponse, error)
	listRecordsFunc        func(ctx context.Context, params pagination.Params) (*RecordListResponse, error)
}

func (m *mockIntakeService) Start(ctx context.Context, req StartRequest) (*StartResponse, error) {
	if m.startFunc != nil {
		return m.startFunc(ctx, req)
	}
	return &StartResponse{}, nil
}

func (m *mockIntakeService) ConfirmAntecedents(ctx context.Context, req ConfirmAntecedentsRequest) (*ConfirmAntecedentsResponse, error) {
	if m.confirmAntecedentsFunc != nil {
		return m.confirmAntecedentsFunc(ctx, req)
	}
	return &ConfirmAntecedentsResponse{}, nil
}

func (m *mockIntakeService) SuggestAllergies(ctx context.Context, req SuggestAllergiesRequest) (*SuggestAllergiesResponse, error) {
	if m.suggestAllergiesFunc != nil {
		return m.suggestAllergiesFunc(ctx, req)
	}
	return &SuggestAllergiesResponse{}, nil
}

func (m *mockIntakeService) ConfirmAllergies(ctx context.Context, req ConfirmAllergiesRequest) (*ConfirmAllergiesResponse, error) {
	if m.confirmAllergiesFunc != nil {
		return m.confirmAllergiesFunc(ctx, req)
	}
	return &ConfirmAllergiesResponse{}, nil
}

func (m *mockIntakeService) SuggestDrugs(ctx context.Context, req SuggestDrugsRequest) (*SuggestDrugsResponse, error) {
	if m.suggestDrugsFunc != nil {
		return m.suggestDrugsFunc(ctx, req)
	}
	return &SuggestDrugsResponse{}, nil
}

func (m *mockIntakeService) ConfirmDrugs(ctx context.Context, req ConfirmDrugsRequest) (*ConfirmDrugsResponse, error) {
	if m.confirmDrugsFunc != nil {
		return m.confirmDrugsFunc(ctx, req)
	}
	return &ConfirmDrugsResponse{}, nil
}

func (m *mockIntakeService) SaveSection(ctx context.Context, section SectionID, req SaveSectionRequest) (*SaveSectionResponse, error) {
	if m.saveSectionFunc != nil {
		return m.saveSectionFunc(ctx, section, req)
	}
	return &SaveSectionResponse{}, nil
}

func (m *mockIntakeService) ListRecords(ctx context.Context, params pagination.Params) (*RecordListResponse, error) {
	if m.listRecordsFunc != nil {
		return m.listRecordsFunc(ctx, params)
	}
	return &RecordListResponse{Success: true}, nil
}
