package dto

// ReportRequest binds GET /admin/reports/generate query parameters.
type ReportRequest struct {
	StartDate  string `form:"start_date" validate:"required"`
	EndDate    string `form:"end_date" validate:"required"`
	Categories string `form:"categories"`
	Format     string `form:"format"`
}

// ReportFile is a rendered report ready for download.
type ReportFile struct {
	Data        []byte
	Filename    string
	ContentType string
	Count       int
}
