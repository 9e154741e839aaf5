package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/openxk/course-select-api/internal/models"
	appErrors "github.com/openxk/course-select-api/pkg/errors"
	"github.com/openxk/course-select-api/pkg/export"
)

// ExportFormat names a supported timetable export encoding.
type ExportFormat string

const (
	FormatCSV ExportFormat = "csv"
	FormatPDF ExportFormat = "pdf"
)

// ExportResult bundles the rendered document with its HTTP metadata.
type ExportResult struct {
	Content     []byte
	ContentType string
	Filename    string
}

var timetableHeaders = []string{"Course Code", "Course Name", "Teacher", "Classroom", "Time Slot", "Status"}

type timetableSource interface {
	ListByStudent(ctx context.Context, studentID string) ([]models.EnrollmentDetail, error)
}

// ExportService renders a student's selections as a downloadable timetable.
type ExportService struct {
	enrollments timetableSource
	csv         *export.CSVExporter
	pdf         *export.PDFExporter
	logger      *zap.Logger
}

// NewExportService constructs ExportService.
func NewExportService(enrollments timetableSource, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		enrollments: enrollments,
		csv:         export.NewCSVExporter(),
		pdf:         export.NewPDFExporter(),
		logger:      logger,
	}
}

// Timetable renders the student's selections in the requested format.
func (s *ExportService) Timetable(ctx context.Context, studentID string, format ExportFormat) (*ExportResult, error) {
	enrollments, err := s.enrollments.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollments")
	}

	dataset := export.Dataset{Headers: timetableHeaders, Rows: make([]map[string]string, 0, len(enrollments))}
	for _, enrollment := range enrollments {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Course Code": enrollment.CourseCode,
			"Course Name": enrollment.CourseName,
			"Teacher":     enrollment.CourseTeacher,
			"Classroom":   enrollment.Classroom,
			"Time Slot":   enrollment.CourseTimeSlot,
			"Status":      string(enrollment.Status),
		})
	}

	stamp := time.Now().UTC().Format("20060102")
	switch format {
	case FormatCSV:
		content, err := s.csv.Render(dataset)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return &ExportResult{
			Content:     content,
			ContentType: "text/csv",
			Filename:    fmt.Sprintf("timetable_%s.csv", stamp),
		}, nil
	case FormatPDF:
		content, err := s.pdf.Render(dataset, "Course Timetable")
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		return &ExportResult{
			Content:     content,
			ContentType: "application/pdf",
			Filename:    fmt.Sprintf("timetable_%s.pdf", stamp),
		}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}
}
