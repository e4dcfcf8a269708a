package api

import (
	"errors"

	domrepo "ParamSweep/internal/domain/repository"
	"ParamSweep/internal/usecase"
	xhttp "ParamSweep/pkg/http"
)

// appError maps domain failures to HTTP errors.
func appError(err error) *xhttp.AppError {
	switch {
	case errors.Is(err, domrepo.ErrUnknownStrategy):
		return xhttp.NotFoundError("unknown strategy").WithParam("detail", err.Error()).WithError(err)
	case errors.Is(err, usecase.ErrSweepNotFound):
		return xhttp.NotFoundError("sweep not found").WithError(err)
	case errors.Is(err, domrepo.ErrParameterLookupMiss):
		return xhttp.NotFoundError("no optimized parameters").WithParam("detail", err.Error()).WithError(err)
	case errors.Is(err, domrepo.ErrInvalidParams):
		return xhttp.BadRequestError(err.Error()).WithError(err)
	case errors.Is(err, domrepo.ErrDataUnavailable):
		return xhttp.ServiceUnavailableError("market data unavailable").WithParam("detail", err.Error()).WithError(err)
	default:
		return xhttp.InternalError("internal error").WithError(err)
	}
}
