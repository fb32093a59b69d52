package intake

import (
	"context"

	"github.com/WailSalutem-Health-Care/intake-service/internal/pagination"
)

// ServiceInterface defines the contract for the intake workflow operations
type ServiceInterface interface {
	Start(ctx context.Context, req StartRequest) (*StartResponse, error)
	ConfirmAntecedents(ctx context.Context, req ConfirmAntecedentsRequest) (*ConfirmAntecedentsResponse, error)
	SuggestAllergies(ctx context.Context, req SuggestAllergiesRequest) (*SuggestAllergiesResponse, error)
	ConfirmAllergies(ctx context.Context, req ConfirmAllergiesRequest) (*ConfirmAllergiesResponse, error)
	SuggestDrugs(ctx context.Context, req SuggestDrugsRequest) (*SuggestDrugsResponse, error)
	ConfirmDrugs(ctx context.Context, req ConfirmDrugsRequest) (*ConfirmDrugsResponse, error)
	SaveSection(ctx context.Context, section SectionID, req SaveSectionRequest) (*SaveSectionResponse, error)
	ListRecords(ctx context.Context, params pagination.Params) (*RecordListResponse, error)
}

// Ensure Service implements ServiceInterface
var _ ServiceInterface = (*Service)(nil)
