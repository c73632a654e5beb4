package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/complaint-desk-api/internal/dto"
	"github.com/noah-isme/complaint-desk-api/internal/service"
	appErrors "github.com/noah-isme/complaint-desk-api/pkg/errors"
)

type fakeReportSrv struct {
	file    *dto.ReportFile
	err     error
	lastReq dto.ReportRequest
}

func (f *fakeReportSrv) Generate(_ context.Context, req dto.ReportRequest) (*dto.ReportFile, error) {
	f.lastReq = req
	return f.file, f.err
}

func TestReportHandlerStreamsCSV(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := &fakeReportSrv{file: &dto.ReportFile{
		Data:        []byte("ID,Subject\n"),
		Filename:    "complaints-report.csv",
		ContentType: "text/csv",
	}}
	handler := NewReportHandler(srv, nil)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/admin/reports/generate?start_date=2024-01-01&end_date=2024-01-31&format=csv", nil)

	handler.Generate(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="complaints-report.csv"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "ID,Subject\n", rec.Body.String())
	assert.Equal(t, "csv", srv.lastReq.Format)
}

func TestReportHandlerAcceptsCamelCaseDates(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := &fakeReportSrv{file: &dto.ReportFile{Data: []byte("%PDF"), Filename: "r.pdf", ContentType: "application/pdf"}}
	handler := NewReportHandler(srv, nil)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/admin/reports/generate?startDate=2024-02-01&endDate=2024-02-02", nil)

	handler.Generate(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "2024-02-01", srv.lastReq.StartDate)
	assert.Equal(t, "2024-02-02", srv.lastReq.EndDate)
}

func TestReportHandlerPDFFailureIsPlainText(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := &fakeReportSrv{err: appErrors.Wrap(errors.New("font missing"), service.ErrPDFRender.Code, service.ErrPDFRender.Status, service.ErrPDFRender.Message)}
	handler := NewReportHandler(srv, nil)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/admin/reports/generate?start_date=2024-01-01&end_date=2024-01-02", nil)

	handler.Generate(c)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Error generating PDF", rec.Body.String())
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/plain")
}

func TestReportHandlerValidationError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := &fakeReportSrv{err: appErrors.Clone(appErrors.ErrValidation, "end_date must not be before start_date")}
	handler := NewReportHandler(srv, nil)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/admin/reports/generate?start_date=2024-03-01&end_date=2024-01-01", nil)

	handler.Generate(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
