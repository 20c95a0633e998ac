// internal/handlers/errors.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vatsal2312/TinyAstro/internal/services"
	"github.com/vatsal2312/TinyAstro/internal/utils"
)

// writeServiceError translates a service sentinel into the HTTP response
// the API contract promises; anything unrecognized is a 500 with the
// message suppressed.
func writeServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrAssetNotFound),
		errors.Is(err, services.ErrInvalidLease),
		errors.Is(err, services.ErrTransactionNotFound):
		utils.ErrorResponse(c, http.StatusNotFound, "NOT_FOUND", err.Error(), nil)

	case errors.Is(err, services.ErrNotOwner):
		utils.ForbiddenResponse(c, err.Error())

	case errors.Is(err, services.ErrAlreadyStaked),
		errors.Is(err, services.ErrSlotOccupied),
		errors.Is(err, services.ErrLeaseAlreadySigned),
		errors.Is(err, services.ErrTokenIsStaked),
		errors.Is(err, services.ErrHasActiveLease),
		errors.Is(err, services.ErrRecipientHasActivePass),
		errors.Is(err, services.ErrActiveRentalPass):
		utils.ConflictResponse(c, "CONFLICT", err.Error())

	case errors.Is(err, services.ErrNotStaked),
		errors.Is(err, services.ErrNoStakedAssets),
		errors.Is(err, services.ErrZeroEmissionRate),
		errors.Is(err, services.ErrZeroAccrual),
		errors.Is(err, services.ErrFirstAssetLocked),
		errors.Is(err, services.ErrRecipientIsHolder),
		errors.Is(err, services.ErrSecondPassUnavailable),
		errors.Is(err, services.ErrInvalidLessee),
		errors.Is(err, services.ErrIncorrectFundsAmount),
		errors.Is(err, services.ErrInsufficientFunds),
		errors.Is(err, services.ErrZeroWithdrawal),
		errors.Is(err, services.ErrStakingPaused):
		utils.UnprocessableResponse(c, "UNPROCESSABLE", err.Error())

	case errors.Is(err, services.ErrEmptyBatch),
		errors.Is(err, services.ErrInvalidDuration),
		errors.Is(err, services.ErrInvalidFraction):
		utils.BadRequestResponse(c, err.Error(), nil)

	case errors.Is(err, services.ErrInvalidCredentials):
		utils.UnauthorizedResponse(c, err.Error())

	default:
		utils.InternalErrorResponse(c, "")
	}
}
