package controllers

import (
	"log/slog"
	"net/http"

	"holidaymatch/internal/delivery/http/helpers"
	"holidaymatch/internal/delivery/http/middleware"
	"holidaymatch/internal/domain"
)

// EventCardRequest is the request body for POST /users/{userID}/event-cards
type EventCardRequest struct {
	Date    domain.HolidayDate `json:"date"`
	Address *string            `json:"address"`
	Phone   *string            `json:"phone"`
	Note    *string            `json:"note"`
}

// Validate implements Validator.
func (e EventCardRequest) Validate() []string {
	if !e.Date.Valid() {
		return []string{`date must be one of "24 Dec", "25 Dec", "26 Dec", "31 Dec"`}
	}
	return nil
}

// AreMatchedResponse is the body of GET /users/{userID}/matched.
type AreMatchedResponse struct {
	Matched bool `json:"matched"`
}

// MatchesSuccessResponse is the success envelope for GET /matches (200).
type MatchesSuccessResponse struct {
	Data  []*domain.Match   `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// ConnectionSuccessResponse is the success envelope for GET /users/{userID}/connection (200).
type ConnectionSuccessResponse struct {
	Data  *domain.Connection `json:"data"`
	Error *helpers.APIError  `json:"error"`
}

// MessageSuccessResponse is the success envelope for endpoints that create a message (201).
type MessageSuccessResponse struct {
	Data  *domain.Message   `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// MatchController serves match state and event cards between matched users.
type MatchController struct {
	Logger        *slog.Logger
	Service       domain.MatchService
	Conversations domain.ConversationService
}

// NewMatchController creates a MatchController.
func NewMatchController(logger *slog.Logger, svc domain.MatchService, conversations domain.ConversationService) *MatchController {
	return &MatchController{Logger: logger, Service: svc, Conversations: conversations}
}

// List godoc
// @Summary List my matches
// @Description Accepted invitations involving the caller, newest first, with the other user fully disclosed.
// @Tags matches
// @Produce json
// @Security BearerAuth
// @Success 200 {object} controllers.MatchesSuccessResponse
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /matches [get]
func (c *MatchController) List(w http.ResponseWriter, r *http.Request) {
	matches, err := c.Service.GetMatches(r.Context(), middleware.CallerID(r))
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	if matches == nil {
		matches = []*domain.Match{}
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, matches)
}

// AreMatched godoc
// @Summary Check whether the caller is matched with a user
// @Tags matches
// @Produce json
// @Security BearerAuth
// @Param userID path string true "Other user ID"
// @Success 200 {object} helpers.APIResponse "data contains matched"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /users/{userID}/matched [get]
func (c *MatchController) AreMatched(w http.ResponseWriter, r *http.Request) {
	ok, err := c.Service.AreMatched(r.Context(), middleware.CallerID(r), r.PathValue("userID"))
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, AreMatchedResponse{Matched: ok})
}

// Connection godoc
// @Summary Connection status with a user
// @Description One of not_authenticated, none, pending_sent, pending_received, matched, declined_by_me, declined_by_them.
// @Tags matches
// @Produce json
// @Security BearerAuth
// @Param userID path string true "Other user ID"
// @Success 200 {object} controllers.ConnectionSuccessResponse
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /users/{userID}/connection [get]
func (c *MatchController) Connection(w http.ResponseWriter, r *http.Request) {
	conn, err := c.Service.GetConnectionStatus(r.Context(), middleware.CallerID(r), r.PathValue("userID"))
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, conn)
}

// SendEventCard godoc
// @Summary Share event details with a match
// @Description Posts an event card into the conversation with a matched user.
// @Tags matches
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param userID path string true "Receiver user ID"
// @Param body body EventCardRequest true "Event card"
// @Success 201 {object} controllers.MessageSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /users/{userID}/event-cards [post]
func (c *MatchController) SendEventCard(w http.ResponseWriter, r *http.Request) {
	var req EventCardRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	card := &domain.EventCard{Date: req.Date, Address: req.Address, Phone: req.Phone, Note: req.Note}
	msg, err := c.Conversations.SendEventCard(r.Context(), middleware.CallerID(r), r.PathValue("userID"), card)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, msg)
}
