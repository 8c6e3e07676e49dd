package prescription

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jwalitptl/hms-api/internal/model"
	pharmacyService "github.com/jwalitptl/hms-api/internal/service/pharmacy"
	workflowService "github.com/jwalitptl/hms-api/internal/service/workflow"
	"github.com/jwalitptl/hms-api/pkg/errors"
	"github.com/jwalitptl/hms-api/pkg/httputil"
)

type Handler struct {
	workflow *workflowService.Service
	pharmacy *pharmacyService.Service
}

func NewHandler(workflow *workflowService.Service, pharmacy *pharmacyService.Service) *Handler {
	return &Handler{workflow: workflow, pharmacy: pharmacy}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	prescriptions := rg.Group("/prescriptions")
	{
		prescriptions.POST("", h.CreatePrescription)
		prescriptions.GET("/:id", h.GetPrescription)
		prescriptions.GET("", h.ListPrescriptions)
		prescriptions.POST("/:id/medications/advance", h.AdvanceMedication)
	}
}

// CreatePrescription runs the full cascade: prescription, bill,
// pharmacy notification and (for admitted patients) a delivery task.
func (h *Handler) CreatePrescription(c *gin.Context) {
	var req model.CreatePrescriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, errors.BadRequest(err.Error(), err))
		return
	}

	prescription, bill, err := h.workflow.CreatePrescriptionWithBilling(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithCreated(c, gin.H{"prescription": prescription, "bill": bill})
}

func (h *Handler) GetPrescription(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, errors.BadRequest("invalid prescription ID", err))
		return
	}

	prescription, err := h.pharmacy.GetPrescription(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, prescription)
}

func (h *Handler) ListPrescriptions(c *gin.Context) {
	filters := &model.PrescriptionFilters{}

	if id := c.Query("hospital_id"); id != "" {
		hospitalID, err := uuid.Parse(id)
		if err != nil {
			httputil.RespondWithError(c, errors.BadRequest("invalid hospital ID", err))
			return
		}
		filters.HospitalID = hospitalID
	}
	if id := c.Query("patient_id"); id != "" {
		patientID, err := uuid.Parse(id)
		if err != nil {
			httputil.RespondWithError(c, errors.BadRequest("invalid patient ID", err))
			return
		}
		filters.PatientID = patientID
	}
	if id := c.Query("doctor_id"); id != "" {
		doctorID, err := uuid.Parse(id)
		if err != nil {
			httputil.RespondWithError(c, errors.BadRequest("invalid doctor ID", err))
			return
		}
		filters.DoctorID = doctorID
	}

	prescriptions, err := h.pharmacy.ListPrescriptions(c.Request.Context(), filters)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, prescriptions)
}

// AdvanceMedication moves one medication line through the dispensing
// state machine.
func (h *Handler) AdvanceMedication(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, errors.BadRequest("invalid prescription ID", err))
		return
	}

	var req model.AdvanceMedicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, errors.BadRequest(err.Error(), err))
		return
	}

	prescription, err := h.pharmacy.AdvanceMedicationStatus(c.Request.Context(), id, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, prescription)
}
