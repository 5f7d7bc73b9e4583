package reports

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"redepharma/pharmacy-portal/pharmacy-portal-backend/internal/accreditation"
	"redepharma/pharmacy-portal/pharmacy-portal-backend/internal/pharmacies"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	reports := rg.Group("/reports")
	{
		reports.GET("/registry", h.ExportRegistry)
		reports.GET("/certificates/:id", h.GenerateCertificate)
	}
}

func (h *Handler) ExportRegistry(c *gin.Context) {
	var status *accreditation.Status
	if param := c.Query("status"); param != "" {
		s := accreditation.Status(param)
		if s != accreditation.StatusActive && s != accreditation.StatusInactive {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
			return
		}
		status = &s
	}

	contents, filename, err := h.service.ExportRegistry(c.Request.Context(), status)
	if err != nil {
		writeError(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		contents)
}

func (h *Handler) GenerateCertificate(c *gin.Context) {
	pharmacyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid pharmacy id"})
		return
	}

	pdf, filename, err := h.service.GenerateCertificate(c.Request.Context(), pharmacyID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, "application/pdf", pdf)
}

// writeError maps known domain errors to client status codes; anything else
// is a server fault.
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotAccredited):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "code": "not_accredited"})
	case errors.Is(err, accreditation.ErrRecordNotFound), errors.Is(err, pharmacies.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error(), "code": "not_found"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
