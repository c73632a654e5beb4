package service

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/complaint-desk-api/internal/dto"
	"github.com/noah-isme/complaint-desk-api/internal/models"
	appErrors "github.com/noah-isme/complaint-desk-api/pkg/errors"
	"github.com/noah-isme/complaint-desk-api/pkg/export"
)

const (
	reportDateLayout = "2006-01-02"
	csvDateLayout    = "02-01-2006"

	ReportFormatCSV = "csv"
	ReportFormatPDF = "pdf"
)

// ErrPDFRender is returned when the PDF renderer fails. Its message is the response body clients expect.
var ErrPDFRender = appErrors.New("REPORT_RENDER_FAILED", http.StatusInternalServerError, "Error generating PDF")

type reportSource interface {
	ListCreatedBetween(ctx context.Context, from, to time.Time, categories []string) ([]models.Complaint, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(doc export.Document) ([]byte, error)
}

// ReportService renders complaint reports for a date range.
type ReportService struct {
	source    reportSource
	csv       csvRenderer
	pdf       pdfRenderer
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewReportService constructs the report service with the default exporters.
func NewReportService(source reportSource, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &ReportService{
		source:    source,
		csv:       export.NewCSVExporter(),
		pdf:       export.NewPDFExporter(),
		metrics:   metrics,
		validator: validate,
		logger:    logger,
	}
}

// Generate selects complaints created on the inclusive calendar range and renders them as CSV or PDF.
// Any format other than csv yields a PDF.
func (s *ReportService) Generate(ctx context.Context, req dto.ReportRequest) (*dto.ReportFile, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid report request")
	}
	start, err := time.Parse(reportDateLayout, strings.TrimSpace(req.StartDate))
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid date, expected YYYY-MM-DD")
	}
	end, err := time.Parse(reportDateLayout, strings.TrimSpace(req.EndDate))
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid date, expected YYYY-MM-DD")
	}
	if start.After(end) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "start_date must not be after end_date")
	}

	queryStart := time.Now()
	complaints, err := s.source.ListCreatedBetween(ctx, start, end.AddDate(0, 0, 1), splitCategories(req.Categories))
	s.metrics.ObserveDBQuery("complaints_report_range", time.Since(queryStart))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load complaints for report")
	}

	startLabel, endLabel := start.Format(reportDateLayout), end.Format(reportDateLayout)
	base := fmt.Sprintf("complaints_report_%s_to_%s", startLabel, endLabel)

	format := ReportFormatPDF
	if strings.EqualFold(strings.TrimSpace(req.Format), ReportFormatCSV) {
		format = ReportFormatCSV
	}

	var file *dto.ReportFile
	switch format {
	case ReportFormatCSV:
		data, err := s.csv.Render(csvDataset(complaints))
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		file = &dto.ReportFile{Data: data, Filename: base + ".csv", ContentType: "text/csv"}
	default:
		data, err := s.pdf.Render(export.Document{
			Title: "COMPLAINTS REPORT",
			Summary: []string{
				fmt.Sprintf("Report Period: %s to %s", startLabel, endLabel),
				fmt.Sprintf("Total Complaints: %d", len(complaints)),
			},
			Data: pdfDataset(complaints),
		})
		if err != nil {
			s.logger.Error("pdf report rendering failed", zap.Error(err))
			return nil, appErrors.Wrap(err, ErrPDFRender.Code, ErrPDFRender.Status, ErrPDFRender.Message)
		}
		file = &dto.ReportFile{Data: data, Filename: base + ".pdf", ContentType: "application/pdf"}
	}
	file.Count = len(complaints)

	s.metrics.ReportGenerated(format)
	s.logger.Info("report generated",
		zap.String("format", format),
		zap.String("start_date", startLabel),
		zap.String("end_date", endLabel),
		zap.Int("complaints", file.Count))
	return file, nil
}

func splitCategories(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func csvDataset(complaints []models.Complaint) export.Dataset {
	data := export.Dataset{
		Columns: []export.Column{
			{Key: "id", Header: "Complaint ID"},
			{Key: "subject", Header: "Subject", Quote: true},
			{Key: "category", Header: "Category", Quote: true},
			{Key: "priority", Header: "Priority", Quote: true},
			{Key: "status", Header: "Status", Quote: true},
			{Key: "submission_type", Header: "Submission Type", Quote: true},
			{Key: "created", Header: "Date Created", Quote: true},
			{Key: "submitted_by", Header: "Submitted By", Quote: true},
			{Key: "assigned_to", Header: "Assigned To", Quote: true},
		},
		Rows: make([]map[string]string, 0, len(complaints)),
	}
	for _, c := range complaints {
		data.Rows = append(data.Rows, map[string]string{
			"id":              c.ID,
			"subject":         c.Subject,
			"category":        c.Category,
			"priority":        c.Priority,
			"status":          string(c.Status),
			"submission_type": c.SubmissionType,
			"created":         c.CreatedAt.Format(csvDateLayout),
			"submitted_by":    nameOr(c.SubmitterUsername, "Anonymous"),
			"assigned_to":     nameOr(c.AssigneeUsername, "Unassigned"),
		})
	}
	return data
}

func pdfDataset(complaints []models.Complaint) export.Dataset {
	data := export.Dataset{
		Columns: []export.Column{
			{Key: "id", Header: "ID", Weight: 1},
			{Key: "subject", Header: "Subject", Weight: 3},
			{Key: "category", Header: "Category", Weight: 1.5},
			{Key: "priority", Header: "Priority", Weight: 1.5},
			{Key: "status", Header: "Status", Weight: 1.5},
			{Key: "created", Header: "Created Date", Weight: 2},
		},
		Rows: make([]map[string]string, 0, len(complaints)),
	}
	for _, c := range complaints {
		data.Rows = append(data.Rows, map[string]string{
			"id":       c.ID,
			"subject":  c.Subject,
			"category": c.Category,
			"priority": c.Priority,
			"status":   string(c.Status),
			"created":  c.CreatedAt.Format(reportDateLayout),
		})
	}
	return data
}

func nameOr(name *string, fallback string) string {
	if name == nil || *name == "" {
		return fallback
	}
	return *name
}
