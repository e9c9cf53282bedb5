package api

import (
	"errors"
	"net/http"

	repository "github.com/okian/fanhop/internal/adapters/repository"
	"github.com/okian/fanhop/internal/adapters/storage"
	service "github.com/okian/fanhop/internal/app"
	"github.com/okian/fanhop/internal/codec/brackettoken"
	"github.com/okian/fanhop/internal/codec/modeltoken"
	"github.com/okian/fanhop/internal/domain/edition"
	"github.com/okian/fanhop/internal/domain/stats"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest    = errors.New("bad request")
	ErrNoOwner       = errors.New("missing " + OwnerHeader + " header")
	ErrLimitExceeded = errors.New("limit exceeded")
)

// classify maps an error to an HTTP status and a stable error code.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, ErrNoOwner):
		return http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, ErrLimitExceeded):
		return http.StatusBadRequest, "limit_exceeded"
	case errors.Is(err, edition.ErrUnknownEdition):
		return http.StatusNotFound, "unknown_edition"
	case errors.Is(err, storage.ErrNotFound), errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, service.ErrNoResults):
		return http.StatusConflict, "no_results"
	case errors.Is(err, brackettoken.ErrMalformed),
		errors.Is(err, brackettoken.ErrVersion),
		errors.Is(err, modeltoken.ErrMalformed),
		errors.Is(err, modeltoken.ErrInvalid),
		errors.Is(err, modeltoken.ErrNoToken):
		return http.StatusBadRequest, "invalid_token"
	case errors.Is(err, ErrBadRequest),
		errors.Is(err, service.ErrInvalidRequest),
		errors.Is(err, storage.ErrInvalidModel),
		errors.Is(err, repository.ErrInvalidLimit),
		errors.Is(err, stats.ErrWeightRange),
		errors.Is(err, stats.ErrUnknownStat),
		errors.Is(err, stats.ErrUnknownPreset):
		return http.StatusBadRequest, "bad_request"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}
