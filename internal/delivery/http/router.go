package http

import (
	"log/slog"
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"holidaymatch/internal/delivery/http/controllers"
	"holidaymatch/internal/delivery/http/helpers"
	"holidaymatch/internal/delivery/http/middleware"
	"holidaymatch/internal/domain"
)

// RouterDeps holds everything NewRouter wires into the mux.
type RouterDeps struct {
	Logger        *slog.Logger
	Verifier      domain.TokenVerifier
	InviteLimiter *middleware.LimiterStore

	Invitations   *controllers.InvitationController
	Matches       *controllers.MatchController
	Conversations *controllers.ConversationController
	Profiles      *controllers.ProfileController
	Events        *controllers.EventController
}

// NewRouter initializes the HTTP router with all application routes
func NewRouter(d RouterDeps) *http.ServeMux {
	mux := http.NewServeMux()
	auth := middleware.RequireAuth(d.Verifier, d.Logger)
	optional := middleware.OptionalAuth(d.Verifier, d.Logger)
	limited := func(next http.HandlerFunc) http.HandlerFunc { return next }
	if d.InviteLimiter != nil {
		limited = middleware.RateLimit(d.InviteLimiter)
	}

	// Invitations
	mux.HandleFunc("POST /invitations", auth(limited(d.Invitations.Send)))
	mux.HandleFunc("POST /invitations/{invitationID}/respond", auth(d.Invitations.Respond))
	mux.HandleFunc("DELETE /invitations/{invitationID}", auth(d.Invitations.Cancel))
	mux.HandleFunc("GET /invitations", optional(d.Invitations.List))
	mux.HandleFunc("GET /invitations/pending-count", optional(d.Invitations.PendingCount))

	// Matches
	mux.HandleFunc("GET /matches", optional(d.Matches.List))
	mux.HandleFunc("GET /users/{userID}/matched", optional(d.Matches.AreMatched))
	mux.HandleFunc("GET /users/{userID}/connection", optional(d.Matches.Connection))
	mux.HandleFunc("POST /users/{userID}/event-cards", auth(d.Matches.SendEventCard))

	// Profiles
	mux.HandleFunc("GET /profiles", optional(d.Profiles.List))
	mux.HandleFunc("GET /profiles/{userID}", optional(d.Profiles.Get))

	// Conversations
	mux.HandleFunc("GET /conversations", auth(d.Conversations.List))
	mux.HandleFunc("GET /conversations/unread-count", auth(d.Conversations.UnreadCount))
	mux.HandleFunc("GET /conversations/{conversationID}/messages", auth(d.Conversations.Messages))
	mux.HandleFunc("POST /conversations/{conversationID}/messages", auth(d.Conversations.SendMessage))
	mux.HandleFunc("POST /conversations/{conversationID}/read", auth(d.Conversations.MarkRead))
	mux.HandleFunc("POST /conversations/{conversationID}/confirm", auth(d.Conversations.ConfirmEvent))

	// Events
	mux.HandleFunc("GET /events", optional(d.Events.List))
	mux.HandleFunc("GET /events/upcoming-count", optional(d.Events.UpcomingCount))
	mux.HandleFunc("POST /events/{eventID}/cancel", auth(d.Events.Cancel))
	mux.HandleFunc("POST /events/{eventID}/complete", auth(d.Events.Complete))

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		helpers.WriteJSONSuccess(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}
