package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openxk/course-select-api/internal/models"
)

func TestCourseRepositoryCreateIfAbsent(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	mock.ExpectExec("INSERT INTO courses").
		WillReturnResult(sqlmock.NewResult(1, 1))

	course := &models.Course{CourseCode: "10001", Name: "高等数学", Capacity: 120}
	created, err := repo.CreateIfAbsent(context.Background(), course)
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotEmpty(t, course.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepositoryCreateIfAbsentExistingCode(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	// ON CONFLICT DO NOTHING reports zero affected rows for a known code.
	mock.ExpectExec("INSERT INTO courses").
		WillReturnResult(sqlmock.NewResult(0, 0))

	created, err := repo.CreateIfAbsent(context.Background(), &models.Course{CourseCode: "10001"})
	require.NoError(t, err)
	assert.False(t, created)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepositoryFindByID(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "course_code", "name", "teacher", "classroom", "capacity",
		"selected_count", "time_slot", "description", "start_week", "end_week", "created_at", "updated_at"}).
		AddRow("course-1", "10001", "高等数学", "张伟", "教一-101", 120, 45, "周四 5-6节", "必修 - 数学学院 - 4学分", 1, 16, now, now)
	mock.ExpectQuery("SELECT id, course_code, name").
		WithArgs("course-1").
		WillReturnRows(rows)

	course, err := repo.FindByID(context.Background(), "course-1")
	require.NoError(t, err)
	assert.Equal(t, "10001", course.CourseCode)
	assert.Equal(t, 45, course.SelectedCount)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepositoryList(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "course_code", "name", "teacher", "classroom", "capacity",
		"selected_count", "time_slot", "description", "start_week", "end_week", "created_at", "updated_at"}).
		AddRow("course-1", "10001", "高等数学", "张伟", "教一-101", 120, 45, "周四 5-6节", "必修", 1, 16, now, now)
	mock.ExpectQuery("SELECT id, course_code, name").
		WithArgs("%数学%").
		WillReturnRows(rows)
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM courses`).
		WithArgs("%数学%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	courses, total, err := repo.List(context.Background(), models.CourseFilter{Search: "数学"})
	require.NoError(t, err)
	require.Len(t, courses, 1)
	assert.Equal(t, 1, total)
	require.NoError(t, mock.ExpectationsWereMet())
}
