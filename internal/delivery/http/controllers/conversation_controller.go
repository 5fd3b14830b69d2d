package controllers

import (
	"log/slog"
	"net/http"
	"strings"

	"holidaymatch/internal/delivery/http/helpers"
	"holidaymatch/internal/delivery/http/middleware"
	"holidaymatch/internal/domain"
)

const maxMessageLength = 4000

// SendMessageRequest is the request body for POST /conversations/{conversationID}/messages
type SendMessageRequest struct {
	Content string `json:"content"`
}

// Validate implements Validator.
func (s SendMessageRequest) Validate() []string {
	content := strings.TrimSpace(s.Content)
	if content == "" {
		return []string{"content is required"}
	}
	if len(content) > maxMessageLength {
		return []string{"content must be at most 4000 bytes"}
	}
	return nil
}

// MarkReadResponse is the body of POST /conversations/{conversationID}/read.
type MarkReadResponse struct {
	ConversationID string `json:"conversation_id"`
	Read           bool   `json:"read"`
}

// ConversationsSuccessResponse is the success envelope for GET /conversations (200).
type ConversationsSuccessResponse struct {
	Data  []*domain.ConversationSummary `json:"data"`
	Error *helpers.APIError             `json:"error"`
}

// MessagesSuccessResponse is the success envelope for GET /conversations/{conversationID}/messages (200).
type MessagesSuccessResponse struct {
	Data  []*domain.Message `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// ConversationController handles messaging between matched users.
type ConversationController struct {
	Logger  *slog.Logger
	Service domain.ConversationService
}

// NewConversationController creates a ConversationController with the given logger and service.
func NewConversationController(logger *slog.Logger, svc domain.ConversationService) *ConversationController {
	return &ConversationController{Logger: logger, Service: svc}
}

// List godoc
// @Summary List my conversations
// @Description Most recently active first, each with the other user's public summary, last message and unread count.
// @Tags conversations
// @Produce json
// @Security BearerAuth
// @Success 200 {object} controllers.ConversationsSuccessResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /conversations [get]
func (c *ConversationController) List(w http.ResponseWriter, r *http.Request) {
	list, err := c.Service.ListConversations(r.Context(), middleware.CallerID(r))
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, list)
}

// Messages godoc
// @Summary List messages in a conversation
// @Description Oldest first. Only participants may read a conversation.
// @Tags conversations
// @Produce json
// @Security BearerAuth
// @Param conversationID path string true "Conversation ID"
// @Success 200 {object} controllers.MessagesSuccessResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /conversations/{conversationID}/messages [get]
func (c *ConversationController) Messages(w http.ResponseWriter, r *http.Request) {
	msgs, err := c.Service.ListMessages(r.Context(), middleware.CallerID(r), r.PathValue("conversationID"))
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	if msgs == nil {
		msgs = []*domain.Message{}
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, msgs)
}

// SendMessage godoc
// @Summary Send a text message
// @Tags conversations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param conversationID path string true "Conversation ID"
// @Param body body SendMessageRequest true "Message"
// @Success 201 {object} controllers.MessageSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /conversations/{conversationID}/messages [post]
func (c *ConversationController) SendMessage(w http.ResponseWriter, r *http.Request) {
	var req SendMessageRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	msg, err := c.Service.SendMessage(r.Context(), middleware.CallerID(r), r.PathValue("conversationID"), req.Content)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, msg)
}

// ConfirmEvent godoc
// @Summary Confirm the host's event card
// @Description Guest only. Moves an invited conversation to confirmed and adds a system message.
// @Tags conversations
// @Produce json
// @Security BearerAuth
// @Param conversationID path string true "Conversation ID"
// @Success 201 {object} controllers.MessageSuccessResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /conversations/{conversationID}/confirm [post]
func (c *ConversationController) ConfirmEvent(w http.ResponseWriter, r *http.Request) {
	msg, err := c.Service.ConfirmEventCard(r.Context(), middleware.CallerID(r), r.PathValue("conversationID"))
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, msg)
}

// MarkRead godoc
// @Summary Mark a conversation as read
// @Description Marks every message from the other participant as read.
// @Tags conversations
// @Produce json
// @Security BearerAuth
// @Param conversationID path string true "Conversation ID"
// @Success 200 {object} helpers.APIResponse "data contains conversation_id and read"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /conversations/{conversationID}/read [post]
func (c *ConversationController) MarkRead(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("conversationID")
	if err := c.Service.MarkAsRead(r.Context(), middleware.CallerID(r), id); err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, MarkReadResponse{ConversationID: id, Read: true})
}

// UnreadCount godoc
// @Summary Count unread messages across all conversations
// @Tags conversations
// @Produce json
// @Security BearerAuth
// @Success 200 {object} controllers.CountSuccessResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /conversations/unread-count [get]
func (c *ConversationController) UnreadCount(w http.ResponseWriter, r *http.Request) {
	n, err := c.Service.UnreadCount(r.Context(), middleware.CallerID(r))
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, CountResponse{Count: n})
}
