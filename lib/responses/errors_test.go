package responses

import (
	"errors"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func TestNotFoundErrorsNotAllowedForSentry(t *testing.T) {
	notFoundErrResponse := echo.NewHTTPError(http.StatusNotFound, echo.Map{
		"error":   true,
		"code":    4,
		"message": "no voevent found for this ivorn",
	})

	isAllowed := isErrAllowedForSentry(notFoundErrResponse)
	assert.False(t, isAllowed)
}

func TestServerErrorsAllowedForSentry(t *testing.T) {
	serverErrResponse := echo.NewHTTPError(http.StatusInternalServerError, echo.Map{
		"error":   true,
		"code":    6,
		"message": "Something went wrong. Please try again later",
	})

	isAllowed := isErrAllowedForSentry(serverErrResponse)
	assert.True(t, isAllowed)
}

func TestNonHTTPErrorsAllowedForSentry(t *testing.T) {
	err := errors.New("random error")

	isAllowed := isErrAllowedForSentry(err)
	assert.True(t, isAllowed)
}
