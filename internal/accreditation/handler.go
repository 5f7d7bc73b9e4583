package accreditation

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"redepharma/pharmacy-portal/pharmacy-portal-backend/internal/auth"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	acc := rg.Group("/pharmacies/:id/accreditation")
	{
		acc.POST("", h.Create)
		acc.GET("", h.GetCurrentStatus)
		acc.PATCH("/status", h.UpdateStatus)
		acc.GET("/transitions", h.GetPharmacyTransitions)
		acc.GET("/can-transition", h.CanTransition)
		acc.GET("/grace-period", h.CheckGracePeriod)
		acc.GET("/history", h.GetHistory)
	}
	rg.GET("/accreditation/transitions", h.GetTransitionsByStatus)
}

type createBody struct {
	InitialStatus Status `json:"initial_status"`
}

func (h *Handler) Create(c *gin.Context) {
	pharmacyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid pharmacy id"})
		return
	}

	var body createBody
	// Body is optional; initial status defaults to ACTIVE.
	_ = c.ShouldBindJSON(&body)
	if body.InitialStatus != "" && body.InitialStatus != StatusActive && body.InitialStatus != StatusInactive {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid initial status"})
		return
	}

	record, err := h.service.Create(c.Request.Context(), CreateRequest{
		PharmacyID:    pharmacyID,
		InitialStatus: body.InitialStatus,
		ActorID:       auth.CurrentUserID(c),
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, record)
}

func (h *Handler) GetCurrentStatus(c *gin.Context) {
	pharmacyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid pharmacy id"})
		return
	}

	view, err := h.service.GetCurrentStatus(c.Request.Context(), pharmacyID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

type updateStatusBody struct {
	Status     Status  `json:"status" binding:"required"`
	ReasonCode *string `json:"reason_code"`
}

func (h *Handler) UpdateStatus(c *gin.Context) {
	pharmacyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid pharmacy id"})
		return
	}

	var body updateStatusBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if body.Status != StatusActive && body.Status != StatusInactive {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid target status"})
		return
	}

	record, err := h.service.UpdateStatus(c.Request.Context(), UpdateStatusRequest{
		PharmacyID:   pharmacyID,
		TargetStatus: body.Status,
		ReasonCode:   body.ReasonCode,
		ActorID:      auth.CurrentUserID(c),
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

func (h *Handler) GetPharmacyTransitions(c *gin.Context) {
	pharmacyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid pharmacy id"})
		return
	}

	view, err := h.service.GetPossibleTransitions(c.Request.Context(), TransitionsQuery{
		PharmacyID: &pharmacyID,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *Handler) GetTransitionsByStatus(c *gin.Context) {
	statusParam := c.Query("status")
	if statusParam == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status query parameter is required"})
		return
	}
	status := Status(statusParam)
	if status != StatusActive && status != StatusInactive {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
		return
	}

	query := TransitionsQuery{CurrentStatus: &status}
	if reason := c.Query("reason"); reason != "" {
		query.CurrentReason = &reason
	}

	view, err := h.service.GetPossibleTransitions(c.Request.Context(), query)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *Handler) CanTransition(c *gin.Context) {
	pharmacyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid pharmacy id"})
		return
	}
	status := Status(c.Query("status"))
	if status != StatusActive && status != StatusInactive {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
		return
	}
	var reasonCode *string
	if reason := c.Query("reason"); reason != "" {
		reasonCode = &reason
	}

	allowed, err := h.service.CanTransition(c.Request.Context(), pharmacyID, status, reasonCode)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"allowed": allowed})
}

func (h *Handler) CheckGracePeriod(c *gin.Context) {
	pharmacyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid pharmacy id"})
		return
	}

	result, err := h.service.CheckReaccreditationGracePeriod(c.Request.Context(), pharmacyID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) GetHistory(c *gin.Context) {
	pharmacyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid pharmacy id"})
		return
	}

	transitions, err := h.service.GetHistory(c.Request.Context(), pharmacyID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, transitions)
}

// writeError maps domain errors onto client status codes. Rejected
// transitions and stale writes get distinct codes so callers can tell a
// business refusal from a retryable race.
func writeError(c *gin.Context, err error) {
	var transitionErr *TransitionError
	switch {
	case errors.Is(err, ErrRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error(), "code": "not_found"})
	case errors.Is(err, ErrRecordExists):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": "already_exists"})
	case errors.Is(err, ErrUnknownReason):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": "unknown_reason"})
	case errors.As(err, &transitionErr):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":       transitionErr.Error(),
			"code":        "transition_not_allowed",
			"from_status": transitionErr.FromStatus,
			"from_reason": transitionErr.FromReason,
			"to_status":   transitionErr.ToStatus,
			"to_reason":   transitionErr.ToReason,
		})
	case errors.Is(err, ErrStaleWrite):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "code": "conflict"})
	case errors.Is(err, ErrInvalidQuery):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": "invalid_query"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
