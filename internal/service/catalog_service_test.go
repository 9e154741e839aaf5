package service

import (
	"context"
	"database/sql"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/openxk/course-select-api/internal/importer"
	"github.com/openxk/course-select-api/internal/models"
	appErrors "github.com/openxk/course-select-api/pkg/errors"
)

const catalogCSV = `课程名称,课程号,任课教师,教学地点,课堂容量,已选人数,上课时间,课程性质,学分,开课学院,起始结束周
数据结构,CS101,张伟,教一101,60,0,周一 1-2节,必修,4,计算机学院,1-16周
操作系统,CS201,李芳,教二201,50,0,周二 3-4节,必修,3,计算机学院,1-16周
`

type mockCourseStore struct {
	courses  map[string]models.Course
	byCode   map[string]bool
	inserted []string
}

func (m *mockCourseStore) List(ctx context.Context, filter models.CourseFilter) ([]models.Course, int, error) {
	var out []models.Course
	for _, c := range m.courses {
		out = append(out, c)
	}
	return out, len(out), nil
}

func (m *mockCourseStore) FindByID(ctx context.Context, id string) (*models.Course, error) {
	if c, ok := m.courses[id]; ok {
		return &c, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockCourseStore) CreateIfAbsent(ctx context.Context, course *models.Course) (bool, error) {
	if m.byCode == nil {
		m.byCode = make(map[string]bool)
	}
	if m.byCode[course.CourseCode] {
		return false, nil
	}
	m.byCode[course.CourseCode] = true
	m.inserted = append(m.inserted, course.CourseCode)
	return true, nil
}

type mockCache struct {
	entries map[string][]byte
	deleted []string
}

func (m *mockCache) Get(ctx context.Context, key string, dest interface{}) error {
	if _, ok := m.entries[key]; !ok {
		return appErrors.ErrCacheMiss
	}
	if course, ok := dest.(*models.Course); ok {
		course.ID = key
	}
	return nil
}

func (m *mockCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if m.entries == nil {
		m.entries = make(map[string][]byte)
	}
	m.entries[key] = []byte("set")
	return nil
}

func (m *mockCache) DeleteByPattern(ctx context.Context, pattern string) error {
	m.deleted = append(m.deleted, pattern)
	return nil
}

func TestImportCatalogFromTable(t *testing.T) {
	store := &mockCourseStore{}
	svc := NewCatalogService(store, importer.NewRegistry(), nil, 0, nil, zap.NewNop())

	report, err := svc.ImportCatalog(context.Background(), []byte(catalogCSV), importer.TypeTable)
	require.NoError(t, err)
	assert.Equal(t, 2, report.CreatedCount)
	assert.Equal(t, []string{"CS101", "CS201"}, store.inserted)
}

func TestImportCatalogIsIdempotent(t *testing.T) {
	store := &mockCourseStore{}
	svc := NewCatalogService(store, importer.NewRegistry(), nil, 0, nil, zap.NewNop())

	_, err := svc.ImportCatalog(context.Background(), []byte(catalogCSV), importer.TypeTable)
	require.NoError(t, err)

	report, err := svc.ImportCatalog(context.Background(), []byte(catalogCSV), importer.TypeTable)
	require.NoError(t, err)
	assert.Zero(t, report.CreatedCount)
	assert.Empty(t, report.Courses)
	assert.Len(t, store.inserted, 2)
}

func TestImportCatalogMissingColumns(t *testing.T) {
	truncated := strings.ReplaceAll(catalogCSV, ",学分", "")
	store := &mockCourseStore{}
	svc := NewCatalogService(store, importer.NewRegistry(), nil, 0, nil, zap.NewNop())

	_, err := svc.ImportCatalog(context.Background(), []byte(truncated), importer.TypeTable)
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrMissingColumns.Code, appErr.Code)
	assert.Contains(t, appErr.Message, "学分")
	assert.Empty(t, store.inserted)
}

func TestImportCatalogUnsupportedType(t *testing.T) {
	svc := NewCatalogService(&mockCourseStore{}, importer.NewRegistry(), nil, 0, nil, zap.NewNop())
	_, err := svc.ImportCatalog(context.Background(), []byte("whatever"), importer.Type("spreadsheet"))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnsupportedFileType.Code, appErrors.FromError(err).Code)
}

func TestGetCourseHitsCache(t *testing.T) {
	key := courseCacheKeyPrefix + "c-1"
	cache := &mockCache{entries: map[string][]byte{key: []byte("cached")}}
	svc := NewCatalogService(&mockCourseStore{}, importer.NewRegistry(), cache, time.Minute, nil, zap.NewNop())

	course, err := svc.GetCourse(context.Background(), "c-1")
	require.NoError(t, err)
	assert.Equal(t, key, course.ID)
}

func TestGetCoursePopulatesCacheOnMiss(t *testing.T) {
	store := &mockCourseStore{courses: map[string]models.Course{
		"c-1": {ID: "c-1", Name: "数据结构"},
	}}
	cache := &mockCache{}
	svc := NewCatalogService(store, importer.NewRegistry(), cache, time.Minute, nil, zap.NewNop())

	course, err := svc.GetCourse(context.Background(), "c-1")
	require.NoError(t, err)
	assert.Equal(t, "数据结构", course.Name)
	assert.Contains(t, cache.entries, courseCacheKeyPrefix+"c-1")
}

func TestGetCourseNotFound(t *testing.T) {
	svc := NewCatalogService(&mockCourseStore{}, importer.NewRegistry(), nil, 0, nil, zap.NewNop())
	_, err := svc.GetCourse(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestListCoursesPagination(t *testing.T) {
	store := &mockCourseStore{courses: map[string]models.Course{
		"c-1": {ID: "c-1"},
		"c-2": {ID: "c-2"},
	}}
	svc := NewCatalogService(store, importer.NewRegistry(), nil, 0, nil, zap.NewNop())

	courses, pagination, err := svc.ListCourses(context.Background(), models.CourseFilter{})
	require.NoError(t, err)
	assert.Len(t, courses, 2)
	assert.Equal(t, 1, pagination.Page)
	assert.Equal(t, 20, pagination.PageSize)
	assert.Equal(t, 2, pagination.TotalCount)
}
