package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/complaint-desk-api/internal/dto"
	"github.com/noah-isme/complaint-desk-api/internal/service"
	appErrors "github.com/noah-isme/complaint-desk-api/pkg/errors"
	"github.com/noah-isme/complaint-desk-api/pkg/response"
)

type reportService interface {
	Generate(ctx context.Context, req dto.ReportRequest) (*dto.ReportFile, error)
}

// ReportHandler renders complaint reports for download.
type ReportHandler struct {
	service reportService
	logger  *zap.Logger
}

// NewReportHandler constructs the report handler.
func NewReportHandler(svc reportService, logger *zap.Logger) *ReportHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportHandler{service: svc, logger: logger}
}

// Generate godoc
// @Summary Generate complaints report
// @Description Renders complaints created between start_date and end_date (inclusive) as CSV or PDF
// @Tags Admin
// @Produce text/csv
// @Produce application/pdf
// @Param start_date query string true "YYYY-MM-DD"
// @Param end_date query string true "YYYY-MM-DD"
// @Param categories query string false "Comma separated categories"
// @Param format query string false "csv or pdf" default(pdf)
// @Success 200 {file} binary
// @Failure 400 {object} response.Envelope
// @Security BearerAuth
// @Router /admin/reports/generate [get]
func (h *ReportHandler) Generate(c *gin.Context) {
	var req dto.ReportRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid report parameters"))
		return
	}
	if req.StartDate == "" {
		req.StartDate = c.Query("startDate")
	}
	if req.EndDate == "" {
		req.EndDate = c.Query("endDate")
	}

	file, err := h.service.Generate(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrPDFRender) {
			c.Data(http.StatusInternalServerError, "text/plain; charset=utf-8", []byte(service.ErrPDFRender.Message))
			return
		}
		response.Error(c, err)
		return
	}

	response.File(c, file.ContentType, file.Filename, file.Data)
}
