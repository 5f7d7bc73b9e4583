package pharmacies

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
	group := rg.Group("/pharmacies")
	{
		group.POST("", h.Create)
		group.GET("", h.List)
		group.GET("/:id", h.Get)
		group.PUT("/:id", h.Update)
		group.DELETE("/:id", h.Delete)
	}
}

type createPharmacyBody struct {
	CNPJ          string `json:"cnpj" binding:"required"`
	CorporateName string `json:"corporate_name" binding:"required"`
	TradeName     string `json:"trade_name"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	City          string `json:"city"`
	State         string `json:"state"`
}

func (h *Handler) Create(c *gin.Context) {
	var body createPharmacyBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	pharmacy, err := h.service.Create(c.Request.Context(), CreatePharmacyRequest{
		CNPJ:          body.CNPJ,
		CorporateName: body.CorporateName,
		TradeName:     body.TradeName,
		Email:         body.Email,
		Phone:         body.Phone,
		City:          body.City,
		State:         body.State,
		ActorID:       auth.CurrentUserID(c),
	})
	if err != nil {
		if errors.Is(err, ErrCNPJTaken) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, pharmacy)
}

func (h *Handler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid pharmacy id"})
		return
	}

	pharmacy, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, pharmacy)
}

func (h *Handler) List(c *gin.Context) {
	filter := Filter{
		State: c.Query("state"),
		City:  c.Query("city"),
	}
	list, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, list)
}

type updatePharmacyBody struct {
	TradeName *string `json:"trade_name"`
	Email     *string `json:"email"`
	Phone     *string `json:"phone"`
	City      *string `json:"city"`
	State     *string `json:"state"`
}

func (h *Handler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid pharmacy id"})
		return
	}

	var body updatePharmacyBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	pharmacy, err := h.service.Update(c.Request.Context(), id, UpdatePharmacyRequest{
		TradeName: body.TradeName,
		Email:     body.Email,
		Phone:     body.Phone,
		City:      body.City,
		State:     body.State,
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, pharmacy)
}

func (h *Handler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid pharmacy id"})
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}
