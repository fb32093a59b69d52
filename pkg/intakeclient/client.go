package intakeclient

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// GenericSubmissionError is the fallback message surfaced when the service
// fails without a usable error body.
const GenericSubmissionError = "Unable to submit the intake information. Please try again."

// API is the typed surface of the intake service. The workflow engine depends
// on this interface so tests can script the service.
type API interface {
	Start(ctx context.Context, req StartRequest) (*StartResponse, error)
	ConfirmAntecedents(ctx context.Context, req ConfirmAntecedentsRequest) (*ConfirmAntecedentsResponse, error)
	SuggestAllergies(ctx context.Context, req SuggestAllergiesRequest) (*SuggestAllergiesResponse, error)
	ConfirmAllergies(ctx context.Context, req ConfirmAllergiesRequest) (*ConfirmAllergiesResponse, error)
	SuggestDrugs(ctx context.Context, req SuggestDrugsRequest) (*SuggestDrugsResponse, error)
	ConfirmDrugs(ctx context.Context, req ConfirmDrugsRequest) (*ConfirmDrugsResponse, error)
	SaveSection(ctx context.Context, section SectionID, req SaveSectionRequest) (*SaveSectionResponse, error)
}

// APIError carries the HTTP status and the human-readable message extracted
// from the service's error body.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string { return e.Message }

// Client talks to the intake service over HTTP.
type Client struct {
	http *resty.Client
}

var _ API = (*Client)(nil)

// NewClient creates a client for the given base URL. timeout 0 means a
// default of 60 seconds, sized for the model-backed endpoints.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		http: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(timeout).
			SetHeader("Content-Type", "application/json").
			SetHeader("Accept", "application/json"),
	}
}

func (c *Client) Start(ctx context.Context, req StartRequest) (*StartResponse, error) {
	var out StartResponse
	if err := c.post(ctx, "/start", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ConfirmAntecedents(ctx context.Context, req ConfirmAntecedentsRequest) (*ConfirmAntecedentsResponse, error) {
	var out ConfirmAntecedentsResponse
	if err := c.post(ctx, "/antecedents", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) SuggestAllergies(ctx context.Context, req SuggestAllergiesRequest) (*SuggestAllergiesResponse, error) {
	var out SuggestAllergiesResponse
	if err := c.post(ctx, "/allergies/suggest", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ConfirmAllergies(ctx context.Context, req ConfirmAllergiesRequest) (*ConfirmAllergiesResponse, error) {
	var out ConfirmAllergiesResponse
	if err := c.post(ctx, "/allergies", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) SuggestDrugs(ctx context.Context, req SuggestDrugsRequest) (*SuggestDrugsResponse, error) {
	var out SuggestDrugsResponse
	if err := c.post(ctx, "/drugs/suggest", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ConfirmDrugs(ctx context.Context, req ConfirmDrugsRequest) (*ConfirmDrugsResponse, error) {
	var out ConfirmDrugsResponse
	if err := c.post(ctx, "/drugs", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) SaveSection(ctx context.Context, section SectionID, req SaveSectionRequest) (*SaveSectionResponse, error) {
	var out SaveSectionResponse
	if err := c.post(ctx, fmt.Sprintf("/sections/%s", section), req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) post(ctx context.Context, path string, body, out interface{}) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(out).
		Post(path)
	if err != nil {
		return &APIError{Message: GenericSubmissionError}
	}
	if resp.IsError() {
		return &APIError{
			StatusCode: resp.StatusCode(),
			Message:    extractErrorMessage(resp.Body()),
		}
	}
	return nil
}

// extractErrorMessage pulls a human-readable message out of the error body,
// tolerating both the flat {error, message} shape and a nested
// {error: {message|error}} object. Anything else falls back to the generic
// submission message.
func extractErrorMessage(body []byte) string {
	var nested struct {
		Error   json.RawMessage `json:"error"`
		Message string          `json:"message"`
	}
	if err := json.Unmarshal(body, &nested); err != nil {
		return GenericSubmissionError
	}
	if nested.Message != "" {
		return nested.Message
	}
	if len(nested.Error) > 0 {
		var inner struct {
			Message string `json:"message"`
			Error   string `json:"error"`
		}
		if err := json.Unmarshal(nested.Error, &inner); err == nil {
			if inner.Message != "" {
				return inner.Message
			}
			if inner.Error != "" {
				return inner.Error
			}
		}
		var flat string
		if err := json.Unmarshal(nested.Error, &flat); err == nil && flat != "" {
			return flat
		}
	}
	return GenericSubmissionError
}
