package practitioner

import (
	"errors"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/medibook/booking-api/internal/middleware"
	"github.com/medibook/booking-api/internal/model"
	"github.com/medibook/booking-api/internal/service/availability"
	"github.com/medibook/booking-api/internal/service/practitioner"
	"github.com/medibook/booking-api/pkg/clock"
	apperrors "github.com/medibook/booking-api/pkg/errors"
	"github.com/medibook/booking-api/pkg/httputil"
	"github.com/medibook/booking-api/pkg/metrics"
)

type Handler struct {
	service         *practitioner.Service
	availabilitySvc *availability.Service
	clock           clock.Clock
	metrics         *metrics.Metrics
}

func NewHandler(
	service *practitioner.Service,
	availabilitySvc *availability.Service,
	clk clock.Clock,
	m *metrics.Metrics,
) *Handler {
	return &Handler{
		service:         service,
		availabilitySvc: availabilitySvc,
		clock:           clk,
		metrics:         m,
	}
}

func (h *Handler) Search(c *gin.Context) {
	filters := &model.PractitionerFilters{
		Specialty:        c.Query("specialty"),
		City:             c.Query("city"),
		Name:             c.Query("name"),
		Teleconsultation: c.Query("teleconsultation") == "true",
		AcceptsNew:       c.Query("accepts_new_patients") == "true",
		Page:             queryInt(c, "page", 1),
		Limit:            queryInt(c, "limit", 20),
	}

	practitioners, total, err := h.service.Search(c.Request.Context(), filters)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithPagination(c, practitioners, filters.Page, filters.Limit, total)
}

func (h *Handler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.Validation("invalid practitioner id", err))
		return
	}

	detail, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, detail)
}

// Slots lists bookable slots per date. Without an explicit range it
// covers today through the next six days.
func (h *Handler) Slots(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.Validation("invalid practitioner id", err))
		return
	}

	today := model.DateOf(h.clock.Now())
	from := today
	to := today.AddDays(availability.DefaultRangeDays)

	if s := c.Query("from"); s != "" {
		if from, err = model.ParseDate(s); err != nil {
			httputil.RespondWithError(c, apperrors.Validation("invalid from date, expected YYYY-MM-DD", err))
			return
		}
		// An explicit from without to means a single day.
		to = from
	}
	if s := c.Query("to"); s != "" {
		if to, err = model.ParseDate(s); err != nil {
			httputil.RespondWithError(c, apperrors.Validation("invalid to date, expected YYYY-MM-DD", err))
			return
		}
	}

	start := time.Now()
	slots, duration, err := h.availabilitySvc.ResolveSlots(c.Request.Context(), id, from, to)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	h.metrics.SlotComputation.Observe(time.Since(start).Seconds())

	httputil.RespondWithSuccess(c, model.SlotsResponse{
		PractitionerID:       id,
		ConsultationDuration: duration,
		Slots:                slots,
	})
}

// ReplaceAvailability swaps the caller's weekly schedule. The
// practitioner is resolved from the authenticated user.
func (h *Handler) ReplaceAvailability(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		httputil.RespondWithError(c, apperrors.Unauthorized(errors.New("missing identity")))
		return
	}

	var req model.ReplaceAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.Validation(err.Error(), err))
		return
	}

	windows, err := h.service.ReplaceAvailability(c.Request.Context(), userID, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, windows)
}

func (h *Handler) RegisterPublicRoutes(r *gin.RouterGroup) {
	practitioners := r.Group("/practitioners")
	{
		practitioners.GET("", h.Search)
		practitioners.GET("/:id", h.Get)
		practitioners.GET("/:id/slots", h.Slots)
	}
}

func (h *Handler) RegisterProtectedRoutes(r *gin.RouterGroup, auth *middleware.AuthMiddleware) {
	practitioners := r.Group("/practitioners")
	{
		practitioners.PUT("/availability", auth.RequireRole(model.UserRolePractitioner), h.ReplaceAvailability)
	}
}

func queryInt(c *gin.Context, key string, fallback int) int {
	v, err := strconv.Atoi(c.Query(key))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}
