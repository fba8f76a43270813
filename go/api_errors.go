package petstoreserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	adoptionsapp "github.com/Apurer/pet-adoption-api/internal/domains/adoptions/application"
	paymentsapp "github.com/Apurer/pet-adoption-api/internal/domains/payments/application"
	petsapp "github.com/Apurer/pet-adoption-api/internal/domains/pets/application"
	reviewsapp "github.com/Apurer/pet-adoption-api/internal/domains/reviews/application"
	usersapp "github.com/Apurer/pet-adoption-api/internal/domains/users/application"
	userports "github.com/Apurer/pet-adoption-api/internal/domains/users/ports"
	"github.com/Apurer/pet-adoption-api/internal/shared/auth"
	apierrors "github.com/Apurer/pet-adoption-api/internal/shared/errors"
)

var responder = apierrors.NewChainedResponder("", domainMappers()...)

// callbackResponder answers gateway callbacks; an unknown transaction is the caller's fault.
var callbackResponder = apierrors.NewChainedResponder("", append([]apierrors.ErrorMapper{
	apierrors.MapSentinel(paymentsapp.ErrNotFound, withStatus(apierrors.ErrNotFound, http.StatusBadRequest)),
}, domainMappers()...)...)

func domainMappers() []apierrors.ErrorMapper {
	return []apierrors.ErrorMapper{
		apierrors.MapSentinel(auth.ErrUnauthenticated, apierrors.ErrUnauthorized),
		apierrors.MapSentinel(auth.ErrForbidden, apierrors.ErrForbidden),
		apierrors.MapSentinel(usersapp.ErrAuthentication, apierrors.ErrUnauthorized),

		apierrors.MapSentinel(usersapp.ErrInvalidInput, apierrors.ErrValidation),
		apierrors.MapSentinel(petsapp.ErrInvalidInput, apierrors.ErrValidation),
		apierrors.MapSentinel(reviewsapp.ErrInvalidInput, apierrors.ErrValidation),
		apierrors.MapSentinel(adoptionsapp.ErrInvalidInput, apierrors.ErrValidation),
		apierrors.MapSentinel(paymentsapp.ErrInvalidInput, apierrors.ErrValidation),

		apierrors.MapSentinel(userports.ErrNotFound, apierrors.ErrNotFound),
		apierrors.MapSentinel(petsapp.ErrNotFound, apierrors.ErrNotFound),
		apierrors.MapSentinel(reviewsapp.ErrNotFound, apierrors.ErrNotFound),
		apierrors.MapSentinel(adoptionsapp.ErrNotFound, apierrors.ErrNotFound),
		apierrors.MapSentinel(paymentsapp.ErrNotFound, apierrors.ErrNotFound),

		apierrors.MapSentinel(usersapp.ErrConflict, apierrors.ErrConflict),
		apierrors.MapSentinel(petsapp.ErrConflict, apierrors.ErrConflict),
		apierrors.MapSentinel(reviewsapp.ErrConflict, apierrors.ErrConflict),
		apierrors.MapSentinel(adoptionsapp.ErrConflict, apierrors.ErrConflict),
		apierrors.MapSentinel(paymentsapp.ErrConflict, apierrors.ErrConflict),

		apierrors.MapSentinel(adoptionsapp.ErrInsufficientFunds, apierrors.ErrInsufficientFunds),

		apierrors.MapSentinel(petsapp.ErrForbidden, apierrors.ErrForbidden),
		apierrors.MapSentinel(reviewsapp.ErrForbidden, apierrors.ErrForbidden),
		apierrors.MapSentinel(paymentsapp.ErrForbidden, apierrors.ErrForbidden),

		mapGatewayError,
		mapPersistenceError,
	}
}

func mapGatewayError(err error) (apierrors.ProblemDetail, bool) {
	if !errors.Is(err, paymentsapp.ErrGateway) {
		return apierrors.ProblemDetail{}, false
	}
	return apierrors.NewGatewayProblem(err.Error()), true
}

// mapPersistenceError hides storage internals from clients.
func mapPersistenceError(err error) (apierrors.ProblemDetail, bool) {
	return apierrors.ErrInternal.WithDetail("the request could not be completed"), true
}

func withStatus(p apierrors.ProblemDetail, status int) apierrors.ProblemDetail {
	p.Status = status
	return p
}

// respondProblem maps a ProblemDetail through the shared responder.
func respondProblem(c *gin.Context, problem apierrors.ProblemDetail) {
	responder.Respond(c, problem)
}

// respondError runs err through the context mappers.
func respondError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	responder.RespondError(c, err)
}

func respondBindError(c *gin.Context, err error) {
	respondProblem(c, apierrors.ErrBadRequest.WithDetail(err.Error()))
}

func notFoundRoute(c *gin.Context) apierrors.ProblemDetail {
	return apierrors.ErrNotFound.WithDetail("no route for " + c.Request.Method + " " + c.Request.URL.Path)
}
