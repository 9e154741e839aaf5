package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/openxk/course-select-api/internal/models"
	"github.com/openxk/course-select-api/internal/repository"
	"github.com/openxk/course-select-api/internal/schedule"
	appErrors "github.com/openxk/course-select-api/pkg/errors"
)

type enrollmentStore interface {
	ListByStudent(ctx context.Context, studentID string) ([]models.EnrollmentDetail, error)
	ListApprovedByStudent(ctx context.Context, studentID string) ([]models.EnrollmentDetail, error)
	FindByID(ctx context.Context, id string) (*models.Enrollment, error)
	Exists(ctx context.Context, studentID, courseID string) (bool, error)
	Enroll(ctx context.Context, enrollment *models.Enrollment) error
	Drop(ctx context.Context, studentID, courseID string) error
	UpdateStatus(ctx context.Context, id string, status models.EnrollmentStatus) error
}

type enrollmentCourseStore interface {
	FindByID(ctx context.Context, id string) (*models.Course, error)
}

type courseInvalidator interface {
	InvalidateCourse(ctx context.Context, id string)
}

// EnrollmentService implements the select/drop/review flows.
type EnrollmentService struct {
	enrollments enrollmentStore
	courses     enrollmentCourseStore
	invalidator courseInvalidator
	logger      *zap.Logger
}

// NewEnrollmentService constructs EnrollmentService. invalidator may be nil.
func NewEnrollmentService(enrollments enrollmentStore, courses enrollmentCourseStore, invalidator courseInvalidator, logger *zap.Logger) *EnrollmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EnrollmentService{enrollments: enrollments, courses: courses, invalidator: invalidator, logger: logger}
}

// Select enrols a student in a course. Checks run in a fixed order: course
// existence, capacity, duplicate selection, then schedule conflict against
// the student's approved courses. The final insert re-checks capacity and
// uniqueness under a row lock, so racing requests cannot oversell a course.
func (s *EnrollmentService) Select(ctx context.Context, studentID, courseID string) (*models.Enrollment, error) {
	course, err := s.courses.FindByID(ctx, courseID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}

	if course.SelectedCount >= course.Capacity {
		return nil, appErrors.Clone(appErrors.ErrCapacityExceeded, fmt.Sprintf("课程 %s 已满", course.Name))
	}

	exists, err := s.enrollments.Exists(ctx, studentID, courseID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check enrollment")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrDuplicateEnrollment, fmt.Sprintf("已选过课程 %s", course.Name))
	}

	approved, err := s.enrollments.ListApprovedByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load selected courses")
	}
	for _, selected := range approved {
		if conflict, detail := schedule.CheckConflict(course.TimeSlot, selected.CourseTimeSlot); conflict {
			return nil, appErrors.Clone(appErrors.ErrScheduleConflict,
				fmt.Sprintf("与已选课程 %s 冲突：%s", selected.CourseName, detail))
		}
	}

	enrollment := &models.Enrollment{
		StudentID: studentID,
		CourseID:  courseID,
		Status:    models.EnrollmentStatusPending,
	}
	if err := s.enrollments.Enroll(ctx, enrollment); err != nil {
		switch {
		case errors.Is(err, repository.ErrCourseFull):
			return nil, appErrors.Clone(appErrors.ErrCapacityExceeded, fmt.Sprintf("课程 %s 已满", course.Name))
		case errors.Is(err, repository.ErrAlreadyEnrolled):
			return nil, appErrors.Clone(appErrors.ErrDuplicateEnrollment, fmt.Sprintf("已选过课程 %s", course.Name))
		case err == sql.ErrNoRows:
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		default:
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create enrollment")
		}
	}

	if s.invalidator != nil {
		s.invalidator.InvalidateCourse(ctx, courseID)
	}
	s.logger.Info("course selected",
		zap.String("student_id", studentID),
		zap.String("course_id", courseID),
		zap.String("enrollment_id", enrollment.ID))
	return enrollment, nil
}

// Drop removes a student's selection and frees the seat.
func (s *EnrollmentService) Drop(ctx context.Context, studentID, courseID string) error {
	if err := s.enrollments.Drop(ctx, studentID, courseID); err != nil {
		if errors.Is(err, repository.ErrNotEnrolled) {
			return appErrors.Clone(appErrors.ErrNotEnrolled, "未选该课程")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to drop course")
	}
	if s.invalidator != nil {
		s.invalidator.InvalidateCourse(ctx, courseID)
	}
	s.logger.Info("course dropped",
		zap.String("student_id", studentID),
		zap.String("course_id", courseID))
	return nil
}

// List returns a student's selections with course details.
func (s *EnrollmentService) List(ctx context.Context, studentID string) ([]models.EnrollmentDetail, error) {
	enrollments, err := s.enrollments.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list enrollments")
	}
	return enrollments, nil
}

// Review flips a selection's status. Administrator only.
func (s *EnrollmentService) Review(ctx context.Context, enrollmentID string, status models.EnrollmentStatus) (*models.Enrollment, error) {
	if !status.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid enrollment status %q", status))
	}
	enrollment, err := s.enrollments.FindByID(ctx, enrollmentID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollment")
	}
	if err := s.enrollments.UpdateStatus(ctx, enrollmentID, status); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update enrollment")
	}
	enrollment.Status = status
	s.logger.Info("enrollment reviewed",
		zap.String("enrollment_id", enrollmentID),
		zap.String("status", string(status)))
	return enrollment, nil
}
