package controllers

import (
	"log/slog"
	"net/http"
	"strings"

	"holidaymatch/internal/delivery/http/helpers"
	"holidaymatch/internal/delivery/http/middleware"
	"holidaymatch/internal/domain"
)

// ListProfilesResponse is the paginated body of GET /profiles.
type ListProfilesResponse struct {
	Items      []*domain.ProfileView  `json:"items"`
	Pagination helpers.PaginationMeta `json:"pagination"`
}

// ListProfilesSuccessResponse is the success envelope for GET /profiles (200).
type ListProfilesSuccessResponse struct {
	Data  ListProfilesResponse `json:"data"`
	Error *helpers.APIError    `json:"error"`
}

// ProfileSuccessResponse is the success envelope for GET /profiles/{userID} (200).
type ProfileSuccessResponse struct {
	Data  *domain.ProfileView `json:"data"`
	Error *helpers.APIError   `json:"error"`
}

// ProfileController serves profile reads.
type ProfileController struct {
	Logger  *slog.Logger
	Service domain.ProfileService
}

// NewProfileController creates a ProfileController with the given logger and service.
func NewProfileController(logger *slog.Logger, svc domain.ProfileService) *ProfileController {
	return &ProfileController{Logger: logger, Service: svc}
}

// Get godoc
// @Summary Get a profile
// @Description Contact fields (last_name, phone, address) are only returned to the owner and matched users.
// @Tags profiles
// @Produce json
// @Security BearerAuth
// @Param userID path string true "User ID"
// @Success 200 {object} controllers.ProfileSuccessResponse
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /profiles/{userID} [get]
func (c *ProfileController) Get(w http.ResponseWriter, r *http.Request) {
	view, err := c.Service.GetProfile(r.Context(), middleware.CallerID(r), r.PathValue("userID"))
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, view)
}

// List godoc
// @Summary Browse visible profiles
// @Description Listings never include contact fields. Each entry carries the caller's connection status when authenticated.
// @Tags profiles
// @Produce json
// @Security BearerAuth
// @Param city query string false "Exact city"
// @Param role query string false "host, guest or both"
// @Param language query string false "Spoken language"
// @Param date query string false "Available holiday date, e.g. 24 Dec"
// @Param page query int false "Page number (default 1)"
// @Param page_size query int false "Page size (default 20, max 100)"
// @Success 200 {object} controllers.ListProfilesSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /profiles [get]
func (c *ProfileController) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := domain.ProfileFilter{
		City:     strings.TrimSpace(q.Get("city")),
		Role:     domain.Role(strings.ToLower(strings.TrimSpace(q.Get("role")))),
		Language: strings.TrimSpace(q.Get("language")),
		Date:     domain.HolidayDate(strings.TrimSpace(q.Get("date"))),
	}
	params := helpers.ParsePagination(r)
	views, total, err := c.Service.ListProfiles(r.Context(), middleware.CallerID(r), filter, params)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	meta := helpers.NewPaginationMeta(params, total)
	helpers.WriteJSONSuccess(w, http.StatusOK, ListProfilesResponse{Items: views, Pagination: meta})
}
