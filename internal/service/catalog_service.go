package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/openxk/course-select-api/internal/dto"
	"github.com/openxk/course-select-api/internal/importer"
	"github.com/openxk/course-select-api/internal/models"
	appErrors "github.com/openxk/course-select-api/pkg/errors"
)

const (
	courseCacheKeyPrefix = "catalog:course:"
	courseListCacheKey   = "catalog:courses:"
)

type courseStore interface {
	List(ctx context.Context, filter models.CourseFilter) ([]models.Course, int, error)
	FindByID(ctx context.Context, id string) (*models.Course, error)
	CreateIfAbsent(ctx context.Context, course *models.Course) (bool, error)
}

type catalogCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

// CatalogService imports uploaded catalog files and serves course reads.
type CatalogService struct {
	repo      courseStore
	registry  *importer.Registry
	cache     catalogCache
	cacheTTL  time.Duration
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCatalogService constructs CatalogService.
func NewCatalogService(repo courseStore, registry *importer.Registry, cache catalogCache, cacheTTL time.Duration, validate *validator.Validate, logger *zap.Logger) *CatalogService {
	if registry == nil {
		registry = importer.NewRegistry()
	}
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogService{repo: repo, registry: registry, cache: cache, cacheTTL: cacheTTL, validator: validate, logger: logger}
}

// ImportCatalog parses the uploaded file with the importer declared by the
// type tag and persists every draft whose course code is new. Existing codes
// are left untouched, so re-importing the same file is a no-op.
func (s *CatalogService) ImportCatalog(ctx context.Context, content []byte, typeTag importer.Type) (*dto.ImportReport, error) {
	imp, ok := s.registry.Lookup(typeTag)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrUnsupportedFileType, fmt.Sprintf("unsupported catalog file type %q", typeTag))
	}

	drafts, err := imp.Parse(content)
	if err != nil {
		var missing *importer.MissingColumnsError
		if errors.As(err, &missing) {
			return nil, appErrors.Wrap(err, appErrors.ErrMissingColumns.Code, appErrors.ErrMissingColumns.Status, missing.Error())
		}
		return nil, appErrors.Wrap(err, appErrors.ErrParse.Code, appErrors.ErrParse.Status, "failed to parse catalog file")
	}

	report := &dto.ImportReport{Courses: []models.Course{}}
	for i := range drafts {
		if err := s.validator.Struct(&drafts[i]); err != nil {
			s.logger.Warn("skipping invalid course draft",
				zap.String("course_code", drafts[i].CourseCode),
				zap.Error(err))
			continue
		}
		created, err := s.repo.CreateIfAbsent(ctx, &drafts[i])
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist course")
		}
		if created {
			report.CreatedCount++
			report.Courses = append(report.Courses, drafts[i])
		}
	}

	if report.CreatedCount > 0 {
		s.invalidateCache(ctx)
	}
	s.logger.Info("catalog imported",
		zap.String("type", string(typeTag)),
		zap.Int("parsed", len(drafts)),
		zap.Int("created", report.CreatedCount))
	return report, nil
}

// ListCourses returns catalog courses with pagination metadata.
func (s *CatalogService) ListCourses(ctx context.Context, filter models.CourseFilter) ([]models.Course, *models.Pagination, error) {
	courses, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list courses")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	pagination := &models.Pagination{Page: page, PageSize: size, TotalCount: total}
	return courses, pagination, nil
}

// GetCourse returns one course, served from cache when possible.
func (s *CatalogService) GetCourse(ctx context.Context, id string) (*models.Course, error) {
	if s.cache != nil {
		var cached models.Course
		if err := s.cache.Get(ctx, courseCacheKeyPrefix+id, &cached); err == nil {
			return &cached, nil
		} else if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("course cache read failed", zap.Error(err))
		}
	}

	course, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, courseCacheKeyPrefix+course.ID, course, s.cacheTTL); err != nil {
			s.logger.Warn("course cache write failed", zap.Error(err))
		}
	}
	return course, nil
}

// InvalidateCourse drops cached state for one course. Called after select and
// drop mutate the selected count.
func (s *CatalogService) InvalidateCourse(ctx context.Context, id string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, courseCacheKeyPrefix+id); err != nil {
		s.logger.Warn("course cache invalidation failed", zap.Error(err))
	}
}

func (s *CatalogService) invalidateCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, courseListCacheKey+"*"); err != nil {
		s.logger.Warn("course list cache invalidation failed", zap.Error(err))
	}
}
