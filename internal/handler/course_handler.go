package handler

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/openxk/course-select-api/internal/dto"
	"github.com/openxk/course-select-api/internal/importer"
	"github.com/openxk/course-select-api/internal/models"
	"github.com/openxk/course-select-api/internal/service"
	appErrors "github.com/openxk/course-select-api/pkg/errors"
	"github.com/openxk/course-select-api/pkg/response"
)

type catalogService interface {
	ImportCatalog(ctx context.Context, content []byte, typeTag importer.Type) (*dto.ImportReport, error)
	ListCourses(ctx context.Context, filter models.CourseFilter) ([]models.Course, *models.Pagination, error)
	GetCourse(ctx context.Context, id string) (*models.Course, error)
}

// CourseHandler exposes catalog endpoints.
type CourseHandler struct {
	catalog     catalogService
	metrics     *service.MetricsService
	maxFileSize int64
}

// NewCourseHandler constructs CourseHandler.
func NewCourseHandler(catalog catalogService, metrics *service.MetricsService, maxFileSize int64) *CourseHandler {
	return &CourseHandler{catalog: catalog, metrics: metrics, maxFileSize: maxFileSize}
}

// List godoc
// @Summary List catalog courses
// @Tags Courses
// @Produce json
// @Param search query string false "Match course name or code"
// @Param teacher query string false "Filter by teacher"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /courses [get]
func (h *CourseHandler) List(c *gin.Context) {
	var filter models.CourseFilter
	filter.Search = c.Query("search")
	filter.Teacher = c.Query("teacher")
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}
	filter.SortBy = c.Query("sort")
	filter.SortOrder = c.Query("order")

	courses, pagination, err := h.catalog.ListCourses(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, courses, pagination)
}

// Get godoc
// @Summary Get one course
// @Tags Courses
// @Produce json
// @Param id path string true "Course ID"
// @Success 200 {object} response.Envelope
// @Router /courses/{id} [get]
func (h *CourseHandler) Get(c *gin.Context) {
	course, err := h.catalog.GetCourse(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, course, nil)
}

// Import godoc
// @Summary Import catalog courses from an uploaded file
// @Tags Courses
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Catalog file (csv, xlsx or pdf)"
// @Param type formData string false "Importer type: table or document"
// @Success 201 {object} response.Envelope
// @Router /courses/import [post]
func (h *CourseHandler) Import(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "missing catalog file"))
		return
	}
	if h.maxFileSize > 0 && fileHeader.Size > h.maxFileSize {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation,
			fmt.Sprintf("file exceeds maximum size of %d bytes", h.maxFileSize)))
		return
	}

	typeTag := importer.Type(c.PostForm("type"))
	if typeTag == "" {
		inferred, ok := importer.TypeForFilename(fileHeader.Filename)
		if !ok {
			response.Error(c, appErrors.Clone(appErrors.ErrUnsupportedFileType,
				fmt.Sprintf("cannot infer file type from %q", fileHeader.Filename)))
			return
		}
		typeTag = inferred
	}

	file, err := fileHeader.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open upload"))
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read upload"))
		return
	}

	report, err := h.catalog.ImportCatalog(c.Request.Context(), content, typeTag)
	if err != nil {
		h.metrics.RecordImport(string(typeTag), "error")
		response.Error(c, err)
		return
	}
	h.metrics.RecordImport(string(typeTag), "success")
	response.Created(c, report)
}
