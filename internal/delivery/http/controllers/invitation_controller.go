package controllers

import (
	"log/slog"
	"net/http"
	"strings"

	"holidaymatch/internal/delivery/http/helpers"
	"holidaymatch/internal/delivery/http/middleware"
	"holidaymatch/internal/domain"
)

// SendInvitationRequest is the request body for POST /invitations
type SendInvitationRequest struct {
	ToUserID string             `json:"to_user_id"`
	Date     domain.HolidayDate `json:"date"`
}

// Validate implements Validator.
func (s SendInvitationRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(s.ToUserID) == "" {
		errs = append(errs, "to_user_id is required")
	}
	if !s.Date.Valid() {
		errs = append(errs, `date must be one of "24 Dec", "25 Dec", "26 Dec", "31 Dec"`)
	}
	return errs
}

// RespondInvitationRequest is the request body for POST /invitations/{invitationID}/respond
type RespondInvitationRequest struct {
	Accept *bool `json:"accept"`
}

// Validate implements Validator.
func (r RespondInvitationRequest) Validate() []string {
	if r.Accept == nil {
		return []string{"accept is required"}
	}
	return nil
}

// InvitationStatusResponse reports the state of an invitation after a mutation.
type InvitationStatusResponse struct {
	InvitationID string                  `json:"invitation_id"`
	Status       domain.InvitationStatus `json:"status,omitempty"`
	Cancelled    bool                    `json:"cancelled,omitempty"`
}

// CountResponse wraps a single counter.
type CountResponse struct {
	Count int `json:"count"`
}

// SendInvitationSuccessResponse is the success envelope for POST /invitations (201).
type SendInvitationSuccessResponse struct {
	Data  *domain.Invitation `json:"data"`
	Error *helpers.APIError  `json:"error"`
}

// MyInvitationsSuccessResponse is the success envelope for GET /invitations (200).
type MyInvitationsSuccessResponse struct {
	Data  *domain.MyInvitations `json:"data"`
	Error *helpers.APIError     `json:"error"`
}

// CountSuccessResponse is the success envelope for counter endpoints (200).
type CountSuccessResponse struct {
	Data  CountResponse     `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// InvitationController handles the invitation lifecycle endpoints.
type InvitationController struct {
	Logger  *slog.Logger
	Service domain.InvitationService
}

// NewInvitationController creates an InvitationController with the given logger and service.
func NewInvitationController(logger *slog.Logger, svc domain.InvitationService) *InvitationController {
	return &InvitationController{Logger: logger, Service: svc}
}

// Send godoc
// @Summary Send an invitation
// @Description Invite another user for one of the holiday dates. At most one invitation may exist per direction between two users.
// @Tags invitations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body SendInvitationRequest true "Invitee and date"
// @Success 201 {object} controllers.SendInvitationSuccessResponse "data contains the pending invitation"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Failure 429 {object} helpers.APIResponse "error.code: rate_limited"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /invitations [post]
func (c *InvitationController) Send(w http.ResponseWriter, r *http.Request) {
	var req SendInvitationRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	inv, err := c.Service.Send(r.Context(), middleware.CallerID(r), strings.TrimSpace(req.ToUserID), req.Date)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, inv)
}

// Respond godoc
// @Summary Accept or decline an invitation
// @Description Only the invitee may respond, and only while the invitation is pending. Accepting opens a conversation between both users.
// @Tags invitations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param invitationID path string true "Invitation ID"
// @Param body body RespondInvitationRequest true "Decision"
// @Success 200 {object} helpers.APIResponse "data contains invitation_id and status"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /invitations/{invitationID}/respond [post]
func (c *InvitationController) Respond(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("invitationID")
	var req RespondInvitationRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	if err := c.Service.Respond(r.Context(), middleware.CallerID(r), id, *req.Accept); err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	status := domain.InvitationDeclined
	if *req.Accept {
		status = domain.InvitationAccepted
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, InvitationStatusResponse{InvitationID: id, Status: status})
}

// Cancel godoc
// @Summary Cancel a sent invitation
// @Description Only the sender may cancel, and only while the invitation is pending. The invitation is removed.
// @Tags invitations
// @Produce json
// @Security BearerAuth
// @Param invitationID path string true "Invitation ID"
// @Success 200 {object} helpers.APIResponse "data contains invitation_id and cancelled"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /invitations/{invitationID} [delete]
func (c *InvitationController) Cancel(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("invitationID")
	if err := c.Service.Cancel(r.Context(), middleware.CallerID(r), id); err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, InvitationStatusResponse{InvitationID: id, Cancelled: true})
}

// List godoc
// @Summary List my invitations
// @Description Sent and received invitations, each with the other user's public summary. Anonymous callers get empty lists.
// @Tags invitations
// @Produce json
// @Security BearerAuth
// @Success 200 {object} controllers.MyInvitationsSuccessResponse
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /invitations [get]
func (c *InvitationController) List(w http.ResponseWriter, r *http.Request) {
	mine, err := c.Service.GetMyInvitations(r.Context(), middleware.CallerID(r))
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, mine)
}

// PendingCount godoc
// @Summary Count pending received invitations
// @Tags invitations
// @Produce json
// @Security BearerAuth
// @Success 200 {object} controllers.CountSuccessResponse
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /invitations/pending-count [get]
func (c *InvitationController) PendingCount(w http.ResponseWriter, r *http.Request) {
	n, err := c.Service.GetPendingCount(r.Context(), middleware.CallerID(r))
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, CountResponse{Count: n})
}
