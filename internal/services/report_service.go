package services

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"time"

	"github.com/SebastiaanKlippert/go-wkhtmltopdf"
	"github.com/feraben/crm-api/internal/config"
	"github.com/feraben/crm-api/internal/models"
	"github.com/feraben/crm-api/internal/repository"
)

//go:embed templates/reports/*.html
var reportTemplates embed.FS

// ReportService serves the commission reporting views and client statements
type ReportService struct {
	repo      repository.ReportRepository
	clientSvc *ClientService
	company   config.CompanyInfo
	now       func() time.Time
}

func NewReportService(repo repository.ReportRepository, clientSvc *ClientService, company config.CompanyInfo) *ReportService {
	return &ReportService{
		repo:      repo,
		clientSvc: clientSvc,
		company:   company,
		now:       time.Now,
	}
}

// VendorYearStats aggregates a vendor's liquidations whose period ends in year
func (s *ReportService) VendorYearStats(ctx context.Context, vendorID uint, year int) (*models.VendorYearStats, error) {
	if year < 1900 || year > 9999 {
		return nil, fmt.Errorf("%w: año %d", ErrInvalidInput, year)
	}
	return s.repo.VendorYearStats(ctx, vendorID, year)
}

// Dashboard aggregates the current calendar year
func (s *ReportService) Dashboard(ctx context.Context) (*models.DashboardSummary, error) {
	return s.repo.Dashboard(ctx, s.now().Year())
}

// SuggestedPeriods returns the preset ranges offered when settling: current
// month, previous month, last 30 days and year to date
func SuggestedPeriods(now time.Time) []models.SuggestedPeriod {
	today := models.DateOnly(now)
	monthStart := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC)
	monthEnd := monthStart.AddDate(0, 1, -1)
	prevStart := monthStart.AddDate(0, -1, 0)
	prevEnd := monthStart.AddDate(0, 0, -1)
	yearStart := time.Date(today.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)

	return []models.SuggestedPeriod{
		{Key: "current_month", Label: "Mes actual", From: monthStart, To: monthEnd},
		{Key: "previous_month", Label: "Mes anterior", From: prevStart, To: prevEnd},
		{Key: "last_30_days", Label: "Últimos 30 días", From: today.AddDate(0, 0, -30), To: today},
		{Key: "year_to_date", Label: "Año actual", From: yearStart, To: today},
	}
}

// SuggestedPeriods returns the preset ranges for today
func (s *ReportService) SuggestedPeriods() []models.SuggestedPeriod {
	return SuggestedPeriods(s.now())
}

// ClientStatementHTML renders the account statement of a client
func (s *ReportService) ClientStatementHTML(ctx context.Context, clientID uint) ([]byte, error) {
	statement, err := s.clientSvc.Statement(ctx, clientID)
	if err != nil {
		return nil, err
	}

	type row struct {
		Date     string
		Kind     string
		Document string
		Amount   string
		Balance  string
	}
	rows := make([]row, 0, len(statement.Lines))
	for _, l := range statement.Lines {
		rows = append(rows, row{
			Date:     l.Date.Format("02/01/2006"),
			Kind:     l.Kind,
			Document: l.Document,
			Amount:   l.Amount.StringFixed(2),
			Balance:  l.RunningBalance.StringFixed(2),
		})
	}

	data := struct {
		Company config.CompanyInfo
		Client  *models.Client
		Date    string
		Rows    []row
		Balance string
	}{
		Company: s.company,
		Client:  statement.Client,
		Date:    s.now().Format("02/01/2006"),
		Rows:    rows,
		Balance: statement.Balance.StringFixed(2),
	}

	return renderTemplate("client_statement.html", data)
}

// ClientStatementPDF renders the account statement of a client as PDF
func (s *ReportService) ClientStatementPDF(ctx context.Context, clientID uint) (*bytes.Buffer, error) {
	html, err := s.ClientStatementHTML(ctx, clientID)
	if err != nil {
		return nil, err
	}
	return htmlToPDF(html)
}

func renderTemplate(name string, data any) ([]byte, error) {
	tmpl, err := template.ParseFS(reportTemplates, "templates/reports/"+name)
	if err != nil {
		return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to execute template: %w", err)
	}
	return buf.Bytes(), nil
}

// htmlToPDF converts an HTML document with wkhtmltopdf
func htmlToPDF(html []byte) (*bytes.Buffer, error) {
	pdfg, err := wkhtmltopdf.NewPDFGenerator()
	if err != nil {
		return nil, fmt.Errorf("failed to create pdf generator: %w", err)
	}

	pdfg.Dpi.Set(300)
	pdfg.Orientation.Set(wkhtmltopdf.OrientationPortrait)
	pdfg.PageSize.Set(wkhtmltopdf.PageSizeA4)

	page := wkhtmltopdf.NewPageReader(bytes.NewReader(html))
	pdfg.AddPage(page)

	if err := pdfg.Create(); err != nil {
		return nil, fmt.Errorf("failed to create pdf: %w", err)
	}

	return pdfg.Buffer(), nil
}
