package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/openxk/course-select-api/internal/models"
	appErrors "github.com/openxk/course-select-api/pkg/errors"
)

func timetableFixture() *mockEnrollmentStore {
	return &mockEnrollmentStore{all: []models.EnrollmentDetail{
		{
			Enrollment:     models.Enrollment{ID: "e-1", Status: models.EnrollmentStatusApproved},
			CourseCode:     "CS101",
			CourseName:     "数据结构",
			CourseTeacher:  "张伟",
			Classroom:      "教一101",
			CourseTimeSlot: "周一 1-2节",
		},
		{
			Enrollment:     models.Enrollment{ID: "e-2", Status: models.EnrollmentStatusPending},
			CourseCode:     "CS201",
			CourseName:     "操作系统",
			CourseTeacher:  "李芳",
			Classroom:      "教二201",
			CourseTimeSlot: "周二 3-4节",
		},
	}}
}

func TestTimetableCSV(t *testing.T) {
	svc := NewExportService(timetableFixture(), zap.NewNop())

	result, err := svc.Timetable(context.Background(), "stu-1", FormatCSV)
	require.NoError(t, err)
	assert.Equal(t, "text/csv", result.ContentType)
	assert.True(t, strings.HasSuffix(result.Filename, ".csv"))

	body := string(result.Content)
	lines := strings.Split(strings.TrimSpace(body), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Course Code,Course Name,Teacher,Classroom,Time Slot,Status", lines[0])
	assert.Contains(t, lines[1], "CS101")
	assert.Contains(t, lines[1], "approved")
	assert.Contains(t, lines[2], "周二 3-4节")
}

func TestTimetablePDF(t *testing.T) {
	svc := NewExportService(timetableFixture(), zap.NewNop())

	result, err := svc.Timetable(context.Background(), "stu-1", FormatPDF)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", result.ContentType)
	assert.True(t, strings.HasPrefix(string(result.Content), "%PDF"))
}

func TestTimetableEmptySchedule(t *testing.T) {
	svc := NewExportService(&mockEnrollmentStore{}, zap.NewNop())

	result, err := svc.Timetable(context.Background(), "stu-1", FormatCSV)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(result.Content)), "\n")
	assert.Len(t, lines, 1)
}

func TestTimetableUnsupportedFormat(t *testing.T) {
	svc := NewExportService(&mockEnrollmentStore{}, zap.NewNop())

	_, err := svc.Timetable(context.Background(), "stu-1", ExportFormat("xlsx"))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
