package intake

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"

	"github.com/WailSalutem-Health-Care/intake-service/internal/genai"
	"github.com/WailSalutem-Health-Care/intake-service/internal/pagination"
)

type Handler struct {
	service  ServiceInterface
	validate *validator.Validate
}

func NewHandler(service ServiceInterface) *Handler {
	return &Handler{
		service:  service,
		validate: validator.New(),
	}
}

func (h *Handler) Start(w http.ResponseWriter, r *http.Request) {
	var req StartRequest
	if !h.decode(w, r, &req) {
		return
	}

	resp, err := h.service.Start(r.Context(), req)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, resp)
}

func (h *Handler) ConfirmAntecedents(w http.ResponseWriter, r *http.Request) {
	var req ConfirmAntecedentsRequest
	if !h.decode(w, r, &req) {
		return
	}

	resp, err := h.service.ConfirmAntecedents(r.Context(), req)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, resp)
}

func (h *Handler) SuggestAllergies(w http.ResponseWriter, r *http.Request) {
	var req SuggestAllergiesRequest
	if !h.decode(w, r, &req) {
		return
	}

	resp, err := h.service.SuggestAllergies(r.Context(), req)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, resp)
}

func (h *Handler) ConfirmAllergies(w http.ResponseWriter, r *http.Request) {
	var req ConfirmAllergiesRequest
	if !h.decode(w, r, &req) {
		return
	}

	resp, err := h.service.ConfirmAllergies(r.Context(), req)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, resp)
}

func (h *Handler) SuggestDrugs(w http.ResponseWriter, r *http.Request) {
	var req SuggestDrugsRequest
	if !h.decode(w, r, &req) {
		return
	}

	resp, err := h.service.SuggestDrugs(r.Context(), req)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, resp)
}

func (h *Handler) ConfirmDrugs(w http.ResponseWriter, r *http.Request) {
	var req ConfirmDrugsRequest
	if !h.decode(w, r, &req) {
		return
	}

	resp, err := h.service.ConfirmDrugs(r.Context(), req)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, resp)
}

func (h *Handler) SaveSection(w http.ResponseWriter, r *http.Request) {
	section := SectionID(mux.Vars(r)["section"])
	if _, ok := SectionByID(section); !ok {
		respondError(w, http.StatusNotFound, "unknown_section", "Unknown questionnaire section: "+string(section))
		return
	}

	var req SaveSectionRequest
	if !h.decode(w, r, &req) {
		return
	}

	resp, err := h.service.SaveSection(r.Context(), section, req)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, resp)
}

func (h *Handler) ListRecords(w http.ResponseWriter, r *http.Request) {
	params := pagination.ParseParams(r)

	resp, err := h.service.ListRecords(r.Context(), params)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, resp)
}

// decode parses and validates the JSON body, writing the error response
// itself when the request is bad.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, req interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON payload: "+err.Error())
		return false
	}
	if err := h.validate.Struct(req); err != nil {
		respondError(w, http.StatusBadRequest, "validation_error", err.Error())
		return false
	}
	return true
}

func respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, genai.ErrNotConfigured):
		respondError(w, http.StatusServiceUnavailable, "suggestions_unavailable",
			"The suggestion service is not configured. Please try again later.")
	case errors.Is(err, ErrSuggestionFailed):
		respondError(w, http.StatusBadGateway, "suggestion_failed",
			"The suggestion service could not produce an answer. Please try again.")
	case errors.Is(err, ErrUnknownSection):
		respondError(w, http.StatusNotFound, "unknown_section", err.Error())
	default:
		respondError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}

func respondJSON(w http.ResponseWriter, statusCode int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(body)
}

func respondError(w http.ResponseWriter, statusCode int, errorType, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"error":   errorType,
		"message": message,
	})
}
