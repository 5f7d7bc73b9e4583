package export

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"
)

// RegistryRow is one pharmacy line in the registry export.
type RegistryRow struct {
	CNPJ              string
	CorporateName     string
	TradeName         string
	City              string
	State             string
	Status            string
	ReasonCode        string
	ReasonDescription string
	UpdatedAt         time.Time
	Version           int64
}

var registryColumns = []string{
	"CNPJ", "Corporate Name", "Trade Name", "City", "State",
	"Status", "Reason Code", "Reason", "Updated At", "Version",
}

// RegistryExcelExporter writes the accreditation registry as a worksheet with
// a styled, frozen header row and an auto filter.
type RegistryExcelExporter struct {
	file  *excelize.File
	sheet string
}

func NewRegistryExcelExporter() *RegistryExcelExporter {
	file := excelize.NewFile()
	sheet := "Registry"
	file.SetSheetName("Sheet1", sheet)
	return &RegistryExcelExporter{file: file, sheet: sheet}
}

func (e *RegistryExcelExporter) Export(rows []RegistryRow) error {
	headerStyle, err := e.file.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	for i, column := range registryColumns {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := e.file.SetCellValue(e.sheet, cell, column); err != nil {
			return err
		}
	}
	lastHeaderCell, _ := excelize.CoordinatesToCellName(len(registryColumns), 1)
	if err := e.file.SetCellStyle(e.sheet, "A1", lastHeaderCell, headerStyle); err != nil {
		return err
	}

	for i, row := range rows {
		values := []interface{}{
			row.CNPJ,
			row.CorporateName,
			row.TradeName,
			row.City,
			row.State,
			row.Status,
			row.ReasonCode,
			row.ReasonDescription,
			row.UpdatedAt.Format("2006-01-02 15:04:05"),
			row.Version,
		}
		for j, value := range values {
			cell, err := excelize.CoordinatesToCellName(j+1, i+2)
			if err != nil {
				return err
			}
			if err := e.file.SetCellValue(e.sheet, cell, value); err != nil {
				return err
			}
		}
	}

	if err := e.file.SetPanes(e.sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return err
	}
	if err := e.file.AutoFilter(e.sheet, fmt.Sprintf("A1:%s", lastHeaderCell), nil); err != nil {
		return err
	}
	if err := e.file.SetColWidth(e.sheet, "A", "J", 22); err != nil {
		return err
	}
	return nil
}

func (e *RegistryExcelExporter) Write(w io.Writer) error {
	return e.file.Write(w)
}

func (e *RegistryExcelExporter) Close() error {
	return e.file.Close()
}
