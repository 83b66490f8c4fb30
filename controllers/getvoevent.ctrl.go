package controllers

import (
	"errors"
	"net/http"

	"github.com/4pisky/voeventhub.go/lib/responses"
	"github.com/4pisky/voeventhub.go/lib/service"
	"github.com/4pisky/voeventhub.go/voevent"
	"github.com/labstack/echo/v4"
)

// GetVoeventController : Get VOEvent Controller
type GetVoeventController struct {
	svc *service.VoeventhubService
}

func NewGetVoeventController(svc *service.VoeventhubService) *GetVoeventController {
	return &GetVoeventController{svc: svc}
}

// GetVoevent : returns a single event by exact ivorn, cites included.
// The ivorn goes in a query param because ivorns contain slashes and '#'.
func (controller *GetVoeventController) GetVoevent(c echo.Context) error {
	ivorn := c.QueryParam("ivorn")
	if ivorn == "" {
		return c.JSON(responses.BadArgumentsError.HttpStatusCode, responses.BadArgumentsError)
	}

	row, err := controller.svc.FindVoeventByIvorn(c.Request().Context(), ivorn)
	if err != nil {
		if errors.Is(err, voevent.ErrVoeventNotFound) {
			return c.JSON(responses.NotFoundError.HttpStatusCode, responses.NotFoundError)
		}
		return err
	}

	response := newVoeventResponse(row, true)
	return c.JSON(http.StatusOK, &response)
}

// GetVoeventXML : returns the raw packet as it was received.
func (controller *GetVoeventController) GetVoeventXML(c echo.Context) error {
	ivorn := c.QueryParam("ivorn")
	if ivorn == "" {
		return c.JSON(responses.BadArgumentsError.HttpStatusCode, responses.BadArgumentsError)
	}

	xml, err := controller.svc.VoeventXML(c.Request().Context(), ivorn)
	if err != nil {
		if errors.Is(err, voevent.ErrVoeventNotFound) {
			return c.JSON(responses.NotFoundError.HttpStatusCode, responses.NotFoundError)
		}
		return err
	}
	return c.Blob(http.StatusOK, echo.MIMETextXMLCharsetUTF8, []byte(xml))
}
