package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/4pisky/voeventhub.go/lib/responses"
	"github.com/4pisky/voeventhub.go/lib/service"
	"github.com/labstack/echo/v4"
)

// ListVoeventsController : List VOEvents Controller
type ListVoeventsController struct {
	svc *service.VoeventhubService
}

func NewListVoeventsController(svc *service.VoeventhubService) *ListVoeventsController {
	return &ListVoeventsController{svc: svc}
}

type ListVoeventsResponse struct {
	Voevents []VoeventResponse `json:"voevents"`
}

type CountVoeventsResponse struct {
	Count int `json:"count"`
}

// ListVoevents : returns stored events matching the query filters, in
// insertion order, without the raw XML.
func (controller *ListVoeventsController) ListVoevents(c echo.Context) error {
	filter, err := filterFromQuery(c)
	if err != nil {
		return c.JSON(responses.BadArgumentsError.HttpStatusCode, responses.BadArgumentsError)
	}

	voevents, err := controller.svc.Voevents(c.Request().Context(), filter)
	if err != nil {
		return err
	}

	response := ListVoeventsResponse{Voevents: make([]VoeventResponse, len(voevents))}
	for i := range voevents {
		response.Voevents[i] = newVoeventResponse(&voevents[i], filter.WithCites)
	}
	return c.JSON(http.StatusOK, &response)
}

// CountVoevents : returns the number of stored events matching the filters.
func (controller *ListVoeventsController) CountVoevents(c echo.Context) error {
	filter, err := filterFromQuery(c)
	if err != nil {
		return c.JSON(responses.BadArgumentsError.HttpStatusCode, responses.BadArgumentsError)
	}

	count, err := controller.svc.CountVoevents(c.Request().Context(), filter)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, &CountVoeventsResponse{Count: count})
}

func filterFromQuery(c echo.Context) (service.VoeventFilter, error) {
	filter := service.VoeventFilter{
		Stream:        c.QueryParam("stream"),
		Role:          c.QueryParam("role"),
		IvornContains: c.QueryParam("ivorn_contains"),
		Cited:         c.QueryParam("cited"),
		Descending:    c.QueryParam("order") == "desc",
		WithCites:     c.QueryParam("cites") == "true",
	}

	if v := c.QueryParam("received_after"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return filter, err
		}
		filter.ReceivedAfter = t
	}
	if v := c.QueryParam("received_before"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return filter, err
		}
		filter.ReceivedBefore = t
	}
	if v := c.QueryParam("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 0 {
			return filter, echo.ErrBadRequest
		}
		filter.Limit = limit
	}
	if v := c.QueryParam("offset"); v != "" {
		offset, err := strconv.Atoi(v)
		if err != nil || offset < 0 {
			return filter, echo.ErrBadRequest
		}
		filter.Offset = offset
	}
	return filter, nil
}
