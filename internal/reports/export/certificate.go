package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// CertificateData carries everything printed on an accreditation certificate.
type CertificateData struct {
	PharmacyName  string
	CNPJ          string
	City          string
	State         string
	AccreditedAt  time.Time
	CertificateID string
}

// CertificateGenerator renders accreditation certificates as A4 PDFs.
type CertificateGenerator struct{}

func NewCertificateGenerator() *CertificateGenerator {
	return &CertificateGenerator{}
}

func (g *CertificateGenerator) Generate(data CertificateData) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(25, 30, 25)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 22)
	pdf.SetTextColor(31, 56, 100)
	pdf.CellFormat(0, 14, "Certificado de Credenciamento", "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetDrawColor(68, 114, 196)
	pdf.SetLineWidth(0.8)
	pdf.Line(40, pdf.GetY(), 170, pdf.GetY())
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	pdf.SetTextColor(0, 0, 0)
	pdf.MultiCell(0, 7, "Certificamos que o estabelecimento abaixo identificado encontra-se regularmente credenciado junto a Rede Pharma, estando apto a operar em conformidade com as normas vigentes.", "", "C", false)
	pdf.Ln(10)

	writeField := func(label, value string) {
		pdf.SetFont("Helvetica", "B", 11)
		pdf.CellFormat(45, 8, label, "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 11)
		pdf.CellFormat(0, 8, value, "", 1, "L", false, 0, "")
	}

	writeField("Razao Social:", data.PharmacyName)
	writeField("CNPJ:", data.CNPJ)
	writeField("Municipio / UF:", fmt.Sprintf("%s / %s", data.City, data.State))
	writeField("Credenciada em:", data.AccreditedAt.Format("02/01/2006"))

	pdf.Ln(16)
	pdf.SetFont("Helvetica", "I", 9)
	pdf.SetTextColor(120, 120, 120)
	pdf.CellFormat(0, 6, fmt.Sprintf("Certificado %s, emitido em %s.", data.CertificateID, time.Now().Format("02/01/2006")), "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 6, "Documento gerado eletronicamente, dispensa assinatura.", "", 1, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render certificate: %w", err)
	}
	return buf.Bytes(), nil
}
