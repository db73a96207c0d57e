package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/jostojic/quotescreen/internal/adapters/http/dto"
	"github.com/jostojic/quotescreen/internal/domain"
)

// bindRequest binds and validates the request body into req. On failure
// the error response is written and false is returned.
func bindRequest(c *gin.Context, req any) bool {
	if err := dto.BindAndValidate(c, req); err != nil {
		respondBindError(c, err)
		return false
	}

	return true
}

func respondBindError(c *gin.Context, err error) {
	switch {
	case dto.IsValidationError(err):
		dto.RespondWithValidationErrors(c, dto.ValidationErrors(err))
	case domain.IsInvalidInput(err):
		dto.HandleError(c, err)
	default:
		dto.AbortWithCode(c, dto.ErrorCodeBadRequest, err.Error())
	}
}
