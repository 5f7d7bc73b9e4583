package reports

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"redepharma/pharmacy-portal/pharmacy-portal-backend/internal/accreditation"
	"redepharma/pharmacy-portal/pharmacy-portal-backend/internal/pharmacies"
)

// stubService returns canned responses per method.
type stubService struct {
	registryErr    error
	certificateErr error
}

func (s *stubService) ExportRegistry(context.Context, *accreditation.Status) ([]byte, string, error) {
	if s.registryErr != nil {
		return nil, "", s.registryErr
	}
	return []byte("xlsx"), "registry.xlsx", nil
}

func (s *stubService) GenerateCertificate(context.Context, uuid.UUID) ([]byte, string, error) {
	if s.certificateErr != nil {
		return nil, "", s.certificateErr
	}
	return []byte("pdf"), "certificate.pdf", nil
}

func newTestRouter(service Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	NewHandler(service).RegisterRoutes(router.Group("/"))
	return router
}

func TestExportRegistryMapsDomainErrors(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"missing pharmacy", pharmacies.ErrNotFound, http.StatusNotFound},
		{"missing record", accreditation.ErrRecordNotFound, http.StatusNotFound},
		{"storage failure", errors.New("disk full"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			router := newTestRouter(&stubService{registryErr: tc.err})

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/reports/registry", nil)
			router.ServeHTTP(w, req)

			assert.Equal(t, tc.want, w.Code)
		})
	}
}

func TestExportRegistryRejectsInvalidStatus(t *testing.T) {
	router := newTestRouter(&stubService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/reports/registry?status=SUSPENDED", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGenerateCertificateNotAccredited(t *testing.T) {
	router := newTestRouter(&stubService{certificateErr: ErrNotAccredited})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/reports/certificates/"+uuid.New().String(), nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestGenerateCertificateSuccess(t *testing.T) {
	router := newTestRouter(&stubService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/reports/certificates/"+uuid.New().String(), nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
}
