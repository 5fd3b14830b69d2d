package controllers

import (
	"log/slog"
	"net/http"

	"holidaymatch/internal/delivery/http/helpers"
	"holidaymatch/internal/delivery/http/middleware"
	"holidaymatch/internal/domain"
)

// EventStatusResponse is the body of the cancel and complete endpoints.
type EventStatusResponse struct {
	EventID string             `json:"event_id"`
	Status  domain.EventStatus `json:"status"`
}

// MyEventsSuccessResponse is the success envelope for GET /events (200).
type MyEventsSuccessResponse struct {
	Data  *domain.MyEvents  `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// EventController serves events confirmed in conversations.
type EventController struct {
	Logger  *slog.Logger
	Service domain.EventService
}

// NewEventController creates an EventController with the given logger and service.
func NewEventController(logger *slog.Logger, svc domain.EventService) *EventController {
	return &EventController{Logger: logger, Service: svc}
}

// List godoc
// @Summary List my events
// @Description Events I host and attend, ordered by date. Cancelled events are omitted. Empty when unauthenticated.
// @Tags events
// @Produce json
// @Success 200 {object} controllers.MyEventsSuccessResponse
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events [get]
func (c *EventController) List(w http.ResponseWriter, r *http.Request) {
	events, err := c.Service.GetMyEvents(r.Context(), middleware.CallerID(r))
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, events)
}

// UpcomingCount godoc
// @Summary Count my upcoming events
// @Tags events
// @Produce json
// @Success 200 {object} controllers.CountSuccessResponse
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/upcoming-count [get]
func (c *EventController) UpcomingCount(w http.ResponseWriter, r *http.Request) {
	n, err := c.Service.GetUpcomingCount(r.Context(), middleware.CallerID(r))
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, CountResponse{Count: n})
}

// Cancel godoc
// @Summary Cancel an upcoming event
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Success 200 {object} helpers.APIResponse "data contains event_id and status"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Router /events/{eventID}/cancel [post]
func (c *EventController) Cancel(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("eventID")
	if err := c.Service.CancelEvent(r.Context(), middleware.CallerID(r), id); err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, EventStatusResponse{EventID: id, Status: domain.EventCancelled})
}

// Complete godoc
// @Summary Mark an upcoming event as completed
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Success 200 {object} helpers.APIResponse "data contains event_id and status"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Router /events/{eventID}/complete [post]
func (c *EventController) Complete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("eventID")
	if err := c.Service.CompleteEvent(r.Context(), middleware.CallerID(r), id); err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, EventStatusResponse{EventID: id, Status: domain.EventCompleted})
}
