package reports

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"redepharma/pharmacy-portal/pharmacy-portal-backend/internal/accreditation"
	"redepharma/pharmacy-portal/pharmacy-portal-backend/internal/pharmacies"
	"redepharma/pharmacy-portal/pharmacy-portal-backend/internal/reports/export"
	"redepharma/pharmacy-portal/pharmacy-portal-backend/pkg/storage"
)

var ErrNotAccredited = errors.New("pharmacy is not currently accredited")

type Service interface {
	ExportRegistry(ctx context.Context, status *accreditation.Status) ([]byte, string, error)
	GenerateCertificate(ctx context.Context, pharmacyID uuid.UUID) ([]byte, string, error)
}

type reportService struct {
	accreditation accreditation.Service
	pharmacies    pharmacies.Service
	reasons       accreditation.ReasonLookup
	archive       storage.S3Client
	archiveBucket string
	logger        *zap.Logger
}

func NewService(
	accreditationService accreditation.Service,
	pharmacyService pharmacies.Service,
	reasons accreditation.ReasonLookup,
	archive storage.S3Client,
	archiveBucket string,
	logger *zap.Logger,
) Service {
	return &reportService{
		accreditation: accreditationService,
		pharmacies:    pharmacyService,
		reasons:       reasons,
		archive:       archive,
		archiveBucket: archiveBucket,
		logger:        logger,
	}
}

// ExportRegistry renders the accreditation registry, optionally filtered by
// status, as an Excel workbook. Returns the file contents and a filename.
func (s *reportService) ExportRegistry(ctx context.Context, status *accreditation.Status) ([]byte, string, error) {
	records, err := s.accreditation.ListRecords(ctx, status)
	if err != nil {
		return nil, "", err
	}

	rows := make([]export.RegistryRow, 0, len(records))
	for _, record := range records {
		row := export.RegistryRow{
			Status:    string(record.Status),
			UpdatedAt: record.UpdatedAt,
			Version:   record.Version,
		}
		pharmacy, err := s.pharmacies.Get(ctx, record.PharmacyID)
		if err != nil {
			if errors.Is(err, pharmacies.ErrNotFound) {
				// Accreditation rows may outlive a soft deleted pharmacy.
				row.CorporateName = record.PharmacyID.String()
			} else {
				return nil, "", err
			}
		} else {
			row.CNPJ = pharmacy.CNPJ
			row.CorporateName = pharmacy.CorporateName
			row.TradeName = pharmacy.TradeName
			row.City = pharmacy.City
			row.State = pharmacy.State
		}
		if record.ReasonCode != nil {
			row.ReasonCode = *record.ReasonCode
			reason, err := s.reasons.GetByCode(ctx, *record.ReasonCode)
			if err == nil && reason != nil {
				row.ReasonDescription = reason.Description
			}
		}
		rows = append(rows, row)
	}

	exporter := export.NewRegistryExcelExporter()
	defer exporter.Close()
	if err := exporter.Export(rows); err != nil {
		return nil, "", fmt.Errorf("export registry: %w", err)
	}

	var buf bytes.Buffer
	if err := exporter.Write(&buf); err != nil {
		return nil, "", fmt.Errorf("write workbook: %w", err)
	}

	filename := fmt.Sprintf("accreditation-registry-%s.xlsx", time.Now().Format("20060102-150405"))
	s.archiveReport(ctx, filename, buf.Bytes())
	return buf.Bytes(), filename, nil
}

// GenerateCertificate produces the accreditation certificate PDF for an
// ACTIVE pharmacy. Inactive pharmacies get ErrNotAccredited.
func (s *reportService) GenerateCertificate(ctx context.Context, pharmacyID uuid.UUID) ([]byte, string, error) {
	view, err := s.accreditation.GetCurrentStatus(ctx, pharmacyID)
	if err != nil {
		return nil, "", err
	}
	if view.Status != accreditation.StatusActive {
		return nil, "", ErrNotAccredited
	}

	pharmacy, err := s.pharmacies.Get(ctx, pharmacyID)
	if err != nil {
		return nil, "", err
	}

	generator := export.NewCertificateGenerator()
	pdf, err := generator.Generate(export.CertificateData{
		PharmacyName:  pharmacy.CorporateName,
		CNPJ:          pharmacy.CNPJ,
		City:          pharmacy.City,
		State:         pharmacy.State,
		AccreditedAt:  view.UpdatedAt,
		CertificateID: uuid.New().String(),
	})
	if err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("certificate-%s.pdf", pharmacy.CNPJ)
	s.archiveReport(ctx, filename, pdf)
	return pdf, filename, nil
}

// archiveReport uploads a copy of the generated report when an archive bucket
// is configured. Upload failures are logged, not surfaced.
func (s *reportService) archiveReport(ctx context.Context, filename string, contents []byte) {
	if s.archive == nil || s.archiveBucket == "" {
		return
	}
	key := fmt.Sprintf("reports/%s/%s", time.Now().Format("2006/01"), filename)
	if err := s.archive.Upload(ctx, s.archiveBucket, key, bytes.NewReader(contents)); err != nil {
		s.logger.Warn("failed to archive report",
			zap.String("key", key),
			zap.Error(err))
	}
}
