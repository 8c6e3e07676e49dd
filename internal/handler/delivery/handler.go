package delivery

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jwalitptl/hms-api/internal/middleware"
	"github.com/jwalitptl/hms-api/internal/model"
	deliveryService "github.com/jwalitptl/hms-api/internal/service/delivery"
	"github.com/jwalitptl/hms-api/pkg/errors"
	"github.com/jwalitptl/hms-api/pkg/httputil"
)

type Handler struct {
	service *deliveryService.Service
}

func NewHandler(service *deliveryService.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	tasks := rg.Group("/delivery-tasks")
	{
		tasks.GET("", h.ListTasks)
		tasks.GET("/:id", h.GetTask)
		tasks.POST("/:id/accept", h.AcceptTask)
		tasks.POST("/:id/complete", h.CompleteTask)
	}
}

func (h *Handler) ListTasks(c *gin.Context) {
	filters := &model.DeliveryTaskFilters{}

	if id := c.Query("hospital_id"); id != "" {
		hospitalID, err := uuid.Parse(id)
		if err != nil {
			httputil.RespondWithError(c, errors.BadRequest("invalid hospital ID", err))
			return
		}
		filters.HospitalID = hospitalID
	}
	if status := c.Query("status"); status != "" {
		filters.Status = model.DeliveryTaskStatus(status)
	}
	if id := c.Query("accepted_by"); id != "" {
		acceptedBy, err := uuid.Parse(id)
		if err != nil {
			httputil.RespondWithError(c, errors.BadRequest("invalid partner ID", err))
			return
		}
		filters.AcceptedBy = acceptedBy
	}

	tasks, err := h.service.List(c.Request.Context(), filters)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, tasks)
}

func (h *Handler) GetTask(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, errors.BadRequest("invalid task ID", err))
		return
	}

	task, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, task)
}

func (h *Handler) AcceptTask(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, errors.BadRequest("invalid task ID", err))
		return
	}

	partnerID, ok := middleware.CurrentUserID(c)
	if !ok {
		httputil.RespondWithError(c, errors.Unauthorized(nil))
		return
	}

	task, err := h.service.Accept(c.Request.Context(), id, partnerID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, task)
}

func (h *Handler) CompleteTask(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, errors.BadRequest("invalid task ID", err))
		return
	}

	partnerID, ok := middleware.CurrentUserID(c)
	if !ok {
		httputil.RespondWithError(c, errors.Unauthorized(nil))
		return
	}

	task, err := h.service.Complete(c.Request.Context(), id, partnerID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, task)
}
