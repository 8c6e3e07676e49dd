package pharmacy

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jwalitptl/hms-api/internal/middleware"
	"github.com/jwalitptl/hms-api/internal/model"
	pharmacyService "github.com/jwalitptl/hms-api/internal/service/pharmacy"
	"github.com/jwalitptl/hms-api/pkg/errors"
	"github.com/jwalitptl/hms-api/pkg/httputil"
)

type Handler struct {
	service *pharmacyService.Service
}

func NewHandler(service *pharmacyService.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	pharmacy := rg.Group("/pharmacy")
	{
		pharmacy.GET("/notifications", h.ListNotifications)
		pharmacy.POST("/notifications/:id/process", h.ProcessNotification)
		pharmacy.POST("/notifications/:id/escalate", h.Escalate)
		pharmacy.GET("/workload", h.Workload)
	}

	nurse := rg.Group("/nurse-requests")
	{
		nurse.GET("", h.ListOpenRequests)
		nurse.POST("/:id/accept", h.AcceptRequest)
		nurse.POST("/:id/complete", h.CompleteRequest)
	}

	notifications := rg.Group("/nurse-notifications")
	{
		notifications.GET("", h.ListNurseNotifications)
		notifications.POST("/:id/dismiss", h.DismissNotification)
	}
}

func (h *Handler) ListNotifications(c *gin.Context) {
	filters := &model.PharmacyNotificationFilters{}

	if id := c.Query("hospital_id"); id != "" {
		hospitalID, err := uuid.Parse(id)
		if err != nil {
			httputil.RespondWithError(c, errors.BadRequest("invalid hospital ID", err))
			return
		}
		filters.HospitalID = hospitalID
	}
	if status := c.Query("status"); status != "" {
		filters.Status = model.NotificationStatus(status)
	}

	notifications, err := h.service.ListNotifications(c.Request.Context(), filters)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, notifications)
}

func (h *Handler) ProcessNotification(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, errors.BadRequest("invalid notification ID", err))
		return
	}

	if err := h.service.MarkNotificationProcessed(c.Request.Context(), id); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, gin.H{"processed": true})
}

// Escalate broadcasts a pharmacy assistance request to every active
// nurse in the hospital.
func (h *Handler) Escalate(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, errors.BadRequest("invalid notification ID", err))
		return
	}

	requestedBy, ok := middleware.CurrentUserID(c)
	if !ok {
		httputil.RespondWithError(c, errors.Unauthorized(nil))
		return
	}

	var req model.EscalationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, errors.BadRequest(err.Error(), err))
		return
	}

	nurseReq, err := h.service.RequestAssistance(c.Request.Context(), id, requestedBy, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithCreated(c, nurseReq)
}

// Workload returns the outstanding work counts plus the peak-hour flag
// the UI uses to surface the assistance banner.
func (h *Handler) Workload(c *gin.Context) {
	hospitalID, err := uuid.Parse(c.Query("hospital_id"))
	if err != nil {
		httputil.RespondWithError(c, errors.BadRequest("invalid hospital ID", err))
		return
	}

	peak, workload, err := h.service.IsPeakHour(c.Request.Context(), hospitalID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, gin.H{
		"workload":     workload,
		"is_peak_hour": peak,
	})
}

func (h *Handler) ListOpenRequests(c *gin.Context) {
	hospitalID, err := uuid.Parse(c.Query("hospital_id"))
	if err != nil {
		httputil.RespondWithError(c, errors.BadRequest("invalid hospital ID", err))
		return
	}

	requests, err := h.service.ListOpenRequests(c.Request.Context(), hospitalID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, requests)
}

func (h *Handler) AcceptRequest(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, errors.BadRequest("invalid request ID", err))
		return
	}

	nurseID, ok := middleware.CurrentUserID(c)
	if !ok {
		httputil.RespondWithError(c, errors.Unauthorized(nil))
		return
	}

	request, err := h.service.AcceptNurseRequest(c.Request.Context(), id, nurseID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, request)
}

func (h *Handler) CompleteRequest(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, errors.BadRequest("invalid request ID", err))
		return
	}

	nurseID, ok := middleware.CurrentUserID(c)
	if !ok {
		httputil.RespondWithError(c, errors.Unauthorized(nil))
		return
	}

	request, err := h.service.CompleteNurseRequest(c.Request.Context(), id, nurseID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, request)
}

func (h *Handler) ListNurseNotifications(c *gin.Context) {
	nurseID, ok := middleware.CurrentUserID(c)
	if !ok {
		httputil.RespondWithError(c, errors.Unauthorized(nil))
		return
	}

	notifications, err := h.service.ListNurseNotifications(c.Request.Context(), nurseID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, notifications)
}

func (h *Handler) DismissNotification(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, errors.BadRequest("invalid notification ID", err))
		return
	}

	nurseID, ok := middleware.CurrentUserID(c)
	if !ok {
		httputil.RespondWithError(c, errors.Unauthorized(nil))
		return
	}

	if err := h.service.DismissNurseNotification(c.Request.Context(), id, nurseID); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, gin.H{"dismissed": true})
}
