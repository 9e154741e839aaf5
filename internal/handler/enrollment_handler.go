package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/openxk/course-select-api/internal/models"
	"github.com/openxk/course-select-api/internal/service"
	appErrors "github.com/openxk/course-select-api/pkg/errors"
	"github.com/openxk/course-select-api/pkg/response"
)

type enrollmentService interface {
	Select(ctx context.Context, studentID, courseID string) (*models.Enrollment, error)
	Drop(ctx context.Context, studentID, courseID string) error
	List(ctx context.Context, studentID string) ([]models.EnrollmentDetail, error)
	Review(ctx context.Context, enrollmentID string, status models.EnrollmentStatus) (*models.Enrollment, error)
}

type exportService interface {
	Timetable(ctx context.Context, studentID string, format service.ExportFormat) (*service.ExportResult, error)
}

// EnrollmentHandler exposes course selection endpoints.
type EnrollmentHandler struct {
	enrollments enrollmentService
	exporter    exportService
	metrics     *service.MetricsService
}

// NewEnrollmentHandler constructs EnrollmentHandler.
func NewEnrollmentHandler(enrollments enrollmentService, exporter exportService, metrics *service.MetricsService) *EnrollmentHandler {
	return &EnrollmentHandler{enrollments: enrollments, exporter: exporter, metrics: metrics}
}

type selectCourseRequest struct {
	CourseID string `json:"course_id" binding:"required"`
}

type reviewEnrollmentRequest struct {
	Status models.EnrollmentStatus `json:"status" binding:"required"`
}

// List godoc
// @Summary List the current student's selections
// @Tags Enrollments
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /enrollments [get]
func (h *EnrollmentHandler) List(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	enrollments, err := h.enrollments.List(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, enrollments, nil)
}

// Select godoc
// @Summary Select a course
// @Tags Enrollments
// @Accept json
// @Produce json
// @Param payload body selectCourseRequest true "Selection payload"
// @Success 201 {object} response.Envelope
// @Router /enrollments [post]
func (h *EnrollmentHandler) Select(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req selectCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	enrollment, err := h.enrollments.Select(c.Request.Context(), claims.UserID, req.CourseID)
	if err != nil {
		h.metrics.RecordEnrollment("select", "error")
		response.Error(c, err)
		return
	}
	h.metrics.RecordEnrollment("select", "success")
	response.Created(c, enrollment)
}

// Drop godoc
// @Summary Drop a selected course
// @Tags Enrollments
// @Produce json
// @Param courseId path string true "Course ID"
// @Success 204
// @Router /enrollments/{courseId} [delete]
func (h *EnrollmentHandler) Drop(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	if err := h.enrollments.Drop(c.Request.Context(), claims.UserID, c.Param("courseId")); err != nil {
		h.metrics.RecordEnrollment("drop", "error")
		response.Error(c, err)
		return
	}
	h.metrics.RecordEnrollment("drop", "success")
	response.NoContent(c)
}

// Review godoc
// @Summary Approve or reject a selection
// @Tags Enrollments
// @Accept json
// @Produce json
// @Param id path string true "Enrollment ID"
// @Param payload body reviewEnrollmentRequest true "Review payload"
// @Success 200 {object} response.Envelope
// @Router /enrollments/{id}/status [patch]
func (h *EnrollmentHandler) Review(c *gin.Context) {
	var req reviewEnrollmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	enrollment, err := h.enrollments.Review(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, enrollment, nil)
}

// Export godoc
// @Summary Export the current student's timetable
// @Tags Enrollments
// @Produce text/csv
// @Produce application/pdf
// @Param format query string false "csv or pdf" default(csv)
// @Success 200
// @Router /enrollments/export [get]
func (h *EnrollmentHandler) Export(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	format := service.ExportFormat(c.DefaultQuery("format", "csv"))
	result, err := h.exporter.Timetable(c.Request.Context(), claims.UserID, format)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+result.Filename+`"`)
	c.Data(http.StatusOK, result.ContentType, result.Content)
}
