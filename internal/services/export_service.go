package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strings"
	"time"

	"github.com/feraben/crm-api/internal/config"
	"github.com/feraben/crm-api/internal/models"
	"github.com/feraben/crm-api/internal/storage"
	"github.com/feraben/crm-api/pkg/logger"
	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// Export formats
const (
	FormatPDF  = "pdf"
	FormatXLSX = "xlsx"
	FormatCSV  = "csv"
)

// ExportedFile is a rendered document ready to be served
type ExportedFile struct {
	Data        []byte
	Filename    string
	ContentType string
	ArchivePath string
}

// ExportService renders liquidations as PDF receipts, spreadsheets or CSV
// and archives a copy of every rendered document
type ExportService struct {
	liquidationSvc *LiquidationService
	store          *storage.LocalStorage
	company        config.CompanyInfo
	now            func() time.Time
}

func NewExportService(liquidationSvc *LiquidationService, store *storage.LocalStorage, company config.CompanyInfo) *ExportService {
	return &ExportService{
		liquidationSvc: liquidationSvc,
		store:          store,
		company:        company,
		now:            time.Now,
	}
}

// ExportLiquidation renders the liquidation in format
func (s *ExportService) ExportLiquidation(ctx context.Context, id uint, format string) (*ExportedFile, error) {
	liq, err := s.liquidationSvc.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	var file *ExportedFile
	switch strings.ToLower(format) {
	case "", FormatPDF:
		file, err = s.LiquidationPDF(liq)
	case FormatXLSX:
		file, err = s.LiquidationXLSX(liq)
	case FormatCSV:
		file, err = s.LiquidationCSV(liq)
	default:
		return nil, fmt.Errorf("%w: formato %q no soportado", ErrInvalidInput, format)
	}
	if err != nil {
		return nil, err
	}

	if s.store != nil {
		path, err := s.store.Save(file.Data, file.Filename, "liquidations", s.now())
		if err != nil {
			// the caller still gets the document
			logger.Warn("failed to archive liquidation export", "liquidation_id", liq.ID, "error", err)
		} else {
			file.ArchivePath = path
		}
	}
	return file, nil
}

func vendorName(liq *models.Liquidation) string {
	if liq.Vendor != nil {
		return liq.Vendor.Name
	}
	return fmt.Sprintf("Vendedor %d", liq.VendorID)
}

func period(liq *models.Liquidation) string {
	return fmt.Sprintf("%s al %s", liq.PeriodFrom.Format("02/01/2006"), liq.PeriodTo.Format("02/01/2006"))
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

type summaryRow struct {
	label string
	value decimal.Decimal
}

func summaryRows(liq *models.Liquidation) []summaryRow {
	return []summaryRow{
		{"Base de cálculo", liq.TotalBase},
		{"Comisión bruta", liq.TotalCommission},
		{"Adelantos", liq.Advances.Neg()},
		{"Dinero en mano", liq.CashInHand.Neg()},
		{"Otros descuentos", liq.OtherDiscounts.Neg()},
		{"Bonificaciones", liq.OtherBonuses},
		{"Total neto a pagar", liq.TotalNet},
	}
}

// LiquidationCSV renders the summary followed by the detail lines
func (s *ExportService) LiquidationCSV(liq *models.Liquidation) (*ExportedFile, error) {
	buf := new(bytes.Buffer)
	writer := csv.NewWriter(buf)

	_ = writer.Write([]string{"Liquidación", liq.ReceiptNumber()})
	_ = writer.Write([]string{"Vendedor", vendorName(liq)})
	_ = writer.Write([]string{"Período", period(liq)})
	_ = writer.Write([]string{"Estado", liq.State})
	for _, r := range summaryRows(liq) {
		_ = writer.Write([]string{r.label, money(r.value)})
	}
	_ = writer.Write([]string{""})

	_ = writer.Write([]string{"Fecha", "Cliente", "Tipo", "Importe", "Base", "%", "Comisión"})
	for _, l := range liq.Lines {
		_ = writer.Write([]string{
			l.MovementDate.Format("2006-01-02"),
			l.ClientName,
			l.Kind,
			money(l.MovementAmount),
			money(l.Base),
			money(l.Percentage),
			money(l.Commission),
		})
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}

	return &ExportedFile{
		Data:        buf.Bytes(),
		Filename:    liq.ReceiptNumber() + ".csv",
		ContentType: "text/csv",
	}, nil
}

// LiquidationXLSX renders a workbook with a summary sheet and a detail sheet
func (s *ExportService) LiquidationXLSX(liq *models.Liquidation) (*ExportedFile, error) {
	f := excelize.NewFile()
	defer f.Close()

	summary := "Resumen"
	_ = f.SetSheetName("Sheet1", summary)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 14},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})
	boldStyle, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})

	_ = f.SetCellValue(summary, "A1", fmt.Sprintf("Liquidación de comisiones %s", liq.ReceiptNumber()))
	_ = f.SetCellStyle(summary, "A1", "A1", headerStyle)
	_ = f.SetCellValue(summary, "A2", s.company.Name)
	_ = f.SetCellValue(summary, "A4", "Vendedor")
	_ = f.SetCellValue(summary, "B4", vendorName(liq))
	_ = f.SetCellValue(summary, "A5", "Período")
	_ = f.SetCellValue(summary, "B5", period(liq))
	_ = f.SetCellValue(summary, "A6", "Porcentaje")
	_ = f.SetCellValue(summary, "B6", liq.Percentage.InexactFloat64())
	_ = f.SetCellValue(summary, "A7", "Estado")
	_ = f.SetCellValue(summary, "B7", liq.State)

	row := 9
	for _, r := range summaryRows(liq) {
		_ = f.SetCellValue(summary, fmt.Sprintf("A%d", row), r.label)
		_ = f.SetCellValue(summary, fmt.Sprintf("B%d", row), r.value.InexactFloat64())
		row++
	}
	_ = f.SetCellStyle(summary, fmt.Sprintf("A%d", row-1), fmt.Sprintf("B%d", row-1), boldStyle)
	_ = f.SetColWidth(summary, "A", "A", 24)
	_ = f.SetColWidth(summary, "B", "B", 30)

	detail := "Detalle"
	if _, err := f.NewSheet(detail); err != nil {
		return nil, err
	}
	headers := []string{"Fecha", "Cliente", "Tipo", "Importe", "Base", "%", "Comisión"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(detail, cell, h)
	}
	_ = f.SetCellStyle(detail, "A1", "G1", boldStyle)

	for i, l := range liq.Lines {
		r := i + 2
		_ = f.SetCellValue(detail, fmt.Sprintf("A%d", r), l.MovementDate.Format("2006-01-02"))
		_ = f.SetCellValue(detail, fmt.Sprintf("B%d", r), l.ClientName)
		_ = f.SetCellValue(detail, fmt.Sprintf("C%d", r), l.Kind)
		_ = f.SetCellValue(detail, fmt.Sprintf("D%d", r), l.MovementAmount.InexactFloat64())
		_ = f.SetCellValue(detail, fmt.Sprintf("E%d", r), l.Base.InexactFloat64())
		_ = f.SetCellValue(detail, fmt.Sprintf("F%d", r), l.Percentage.InexactFloat64())
		_ = f.SetCellValue(detail, fmt.Sprintf("G%d", r), l.Commission.InexactFloat64())
	}
	_ = f.SetColWidth(detail, "B", "B", 32)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}

	return &ExportedFile{
		Data:        buf.Bytes(),
		Filename:    liq.ReceiptNumber() + ".xlsx",
		ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	}, nil
}

// LiquidationPDF renders the printable receipt with signature lines
func (s *ExportService) LiquidationPDF(liq *models.Liquidation) (*ExportedFile, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(120, 10, tr(s.company.Name))
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(70, 10, liq.ReceiptNumber(), "", 0, "R", false, 0, "")
	pdf.Ln(6)
	if s.company.RUT != "" {
		pdf.Cell(120, 6, tr("RUT "+s.company.RUT))
		pdf.Ln(5)
	}
	if s.company.Address != "" {
		pdf.Cell(120, 6, tr(s.company.Address))
		pdf.Ln(5)
	}
	pdf.Ln(6)

	pdf.SetFont("Arial", "B", 13)
	pdf.Cell(0, 8, tr("Recibo de liquidación de comisiones"))
	pdf.Ln(10)

	pdf.SetFont("Arial", "", 10)
	info := [][2]string{
		{"Vendedor:", vendorName(liq)},
		{"Período:", period(liq)},
		{"Base / porcentaje:", fmt.Sprintf("%s / %s%%", liq.Basis, money(liq.Percentage))},
		{"Movimientos / clientes:", fmt.Sprintf("%d / %d", liq.MovementCount, liq.ClientCount)},
		{"Forma de pago:", liq.PaymentMethod},
		{"Estado:", liq.State},
	}
	if liq.PaymentDate != nil {
		info = append(info, [2]string{"Fecha de pago:", liq.PaymentDate.Format("02/01/2006")})
	}
	for _, kv := range info {
		pdf.Cell(50, 6, tr(kv[0]))
		pdf.Cell(0, 6, tr(kv[1]))
		pdf.Ln(6)
	}
	pdf.Ln(4)

	pdf.SetFont("Arial", "B", 11)
	pdf.Cell(0, 8, "Resumen")
	pdf.Ln(8)
	rows := summaryRows(liq)
	for i, r := range rows {
		if i == len(rows)-1 {
			pdf.SetFont("Arial", "B", 11)
		} else {
			pdf.SetFont("Arial", "", 10)
		}
		pdf.CellFormat(90, 7, tr(r.label), "B", 0, "L", false, 0, "")
		pdf.CellFormat(40, 7, money(r.value), "B", 0, "R", false, 0, "")
		pdf.Ln(7)
	}
	pdf.Ln(2)
	pdf.SetFont("Arial", "I", 9)
	pdf.MultiCell(0, 5, tr("Son: "+AmountInWords(liq.TotalNet)), "", "L", false)
	pdf.Ln(4)

	if len(liq.Lines) > 0 {
		pdf.SetFont("Arial", "B", 9)
		widths := []float64{22, 70, 28, 25, 15, 25}
		for i, h := range []string{"Fecha", "Cliente", "Tipo", "Base", "%", "Comisión"} {
			pdf.CellFormat(widths[i], 6, tr(h), "1", 0, "C", false, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Arial", "", 8)
		for _, l := range liq.Lines {
			pdf.CellFormat(widths[0], 5, l.MovementDate.Format("02/01/2006"), "1", 0, "L", false, 0, "")
			pdf.CellFormat(widths[1], 5, tr(l.ClientName), "1", 0, "L", false, 0, "")
			pdf.CellFormat(widths[2], 5, tr(l.Kind), "1", 0, "L", false, 0, "")
			pdf.CellFormat(widths[3], 5, money(l.Base), "1", 0, "R", false, 0, "")
			pdf.CellFormat(widths[4], 5, money(l.Percentage), "1", 0, "R", false, 0, "")
			pdf.CellFormat(widths[5], 5, money(l.Commission), "1", 0, "R", false, 0, "")
			pdf.Ln(-1)
		}
		pdf.Ln(6)
	}

	if liq.Notes != "" {
		pdf.SetFont("Arial", "I", 9)
		pdf.MultiCell(0, 5, tr(liq.Notes), "", "L", false)
		pdf.Ln(4)
	}

	pdf.Ln(16)
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(85, 6, tr(signatureLabel("Firma vendedor", liq.VendorSigned)), "T", 0, "C", false, 0, "")
	pdf.Cell(20, 6, "")
	pdf.CellFormat(85, 6, tr(signatureLabel("Firma administración", liq.AdminSigned)), "T", 0, "C", false, 0, "")

	buf := new(bytes.Buffer)
	if err := pdf.Output(buf); err != nil {
		return nil, err
	}

	return &ExportedFile{
		Data:        buf.Bytes(),
		Filename:    liq.ReceiptNumber() + ".pdf",
		ContentType: "application/pdf",
	}, nil
}

func signatureLabel(label string, signed bool) string {
	if signed {
		return label + " (firmado)"
	}
	return label
}
