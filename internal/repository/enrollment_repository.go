package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/openxk/course-select-api/internal/models"
)

// Sentinel errors surfaced by the transactional select/drop flows. The
// service layer maps them onto API error codes.
var (
	ErrCourseFull      = errors.New("course capacity reached")
	ErrAlreadyEnrolled = errors.New("student already selected this course")
	ErrNotEnrolled     = errors.New("student has not selected this course")
)

const pqUniqueViolation = "23505"

// EnrollmentRepository handles persistence of course selections.
type EnrollmentRepository struct {
	db *sqlx.DB
}

// NewEnrollmentRepository constructs the repository.
func NewEnrollmentRepository(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

// ListByStudent returns all of a student's selections with course details.
func (r *EnrollmentRepository) ListByStudent(ctx context.Context, studentID string) ([]models.EnrollmentDetail, error) {
	const query = `SELECT e.id, e.student_id, e.course_id, e.status, e.created_at, e.updated_at,
        c.course_code, c.name AS course_name, c.teacher AS course_teacher, c.classroom, c.time_slot AS course_time_slot
        FROM enrollments e
        JOIN courses c ON c.id = e.course_id
        WHERE e.student_id = $1
        ORDER BY e.created_at DESC`
	var enrollments []models.EnrollmentDetail
	if err := r.db.SelectContext(ctx, &enrollments, query, studentID); err != nil {
		return nil, fmt.Errorf("list enrollments: %w", err)
	}
	return enrollments, nil
}

// ListApprovedByStudent returns the approved selections used for conflict
// checking.
func (r *EnrollmentRepository) ListApprovedByStudent(ctx context.Context, studentID string) ([]models.EnrollmentDetail, error) {
	const query = `SELECT e.id, e.student_id, e.course_id, e.status, e.created_at, e.updated_at,
        c.course_code, c.name AS course_name, c.teacher AS course_teacher, c.classroom, c.time_slot AS course_time_slot
        FROM enrollments e
        JOIN courses c ON c.id = e.course_id
        WHERE e.student_id = $1 AND e.status = $2`
	var enrollments []models.EnrollmentDetail
	if err := r.db.SelectContext(ctx, &enrollments, query, studentID, models.EnrollmentStatusApproved); err != nil {
		return nil, fmt.Errorf("list approved enrollments: %w", err)
	}
	return enrollments, nil
}

// FindByID returns an enrollment by its ID.
func (r *EnrollmentRepository) FindByID(ctx context.Context, id string) (*models.Enrollment, error) {
	const query = `SELECT id, student_id, course_id, status, created_at, updated_at FROM enrollments WHERE id = $1`
	var enrollment models.Enrollment
	if err := r.db.GetContext(ctx, &enrollment, query, id); err != nil {
		return nil, err
	}
	return &enrollment, nil
}

// Exists checks whether any selection links the student and course.
func (r *EnrollmentRepository) Exists(ctx context.Context, studentID, courseID string) (bool, error) {
	const query = `SELECT 1 FROM enrollments WHERE student_id = $1 AND course_id = $2 LIMIT 1`
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, studentID, courseID); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check enrollment: %w", err)
	}
	return true, nil
}

// Enroll creates the pending selection and bumps the course's selected count
// in one transaction. The course row is locked so concurrent selects cannot
// both pass the capacity check; the (student_id, course_id) unique constraint
// closes the duplicate race behind the service pre-check.
func (r *EnrollmentRepository) Enroll(ctx context.Context, enrollment *models.Enrollment) (err error) {
	if enrollment.ID == "" {
		enrollment.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if enrollment.CreatedAt.IsZero() {
		enrollment.CreatedAt = now
	}
	enrollment.UpdatedAt = now
	if enrollment.Status == "" {
		enrollment.Status = models.EnrollmentStatusPending
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin enroll transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var course struct {
		Capacity      int `db:"capacity"`
		SelectedCount int `db:"selected_count"`
	}
	const lockQuery = `SELECT capacity, selected_count FROM courses WHERE id = $1 FOR UPDATE`
	if err = tx.GetContext(ctx, &course, lockQuery, enrollment.CourseID); err != nil {
		if err == sql.ErrNoRows {
			return err
		}
		return fmt.Errorf("lock course row: %w", err)
	}
	if course.SelectedCount >= course.Capacity {
		err = ErrCourseFull
		return err
	}

	const insertQuery = `INSERT INTO enrollments (id, student_id, course_id, status, created_at, updated_at)
        VALUES (:id, :student_id, :course_id, :status, :created_at, :updated_at)`
	if _, err = tx.NamedExecContext(ctx, insertQuery, enrollment); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
			err = ErrAlreadyEnrolled
			return err
		}
		return fmt.Errorf("create enrollment: %w", err)
	}

	const countQuery = `UPDATE courses SET selected_count = selected_count + 1, updated_at = $2 WHERE id = $1`
	if _, err = tx.ExecContext(ctx, countQuery, enrollment.CourseID, now); err != nil {
		return fmt.Errorf("increment selected count: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit enrollment: %w", err)
	}
	return nil
}

// Drop removes the selection and decrements the course's selected count,
// floored at zero, in one transaction.
func (r *EnrollmentRepository) Drop(ctx context.Context, studentID, courseID string) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin drop transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const deleteQuery = `DELETE FROM enrollments WHERE student_id = $1 AND course_id = $2`
	result, err := tx.ExecContext(ctx, deleteQuery, studentID, courseID)
	if err != nil {
		return fmt.Errorf("delete enrollment: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete enrollment rows affected: %w", err)
	}
	if affected == 0 {
		err = ErrNotEnrolled
		return err
	}

	const countQuery = `UPDATE courses SET selected_count = GREATEST(selected_count - 1, 0), updated_at = $2 WHERE id = $1`
	if _, err = tx.ExecContext(ctx, countQuery, courseID, time.Now().UTC()); err != nil {
		return fmt.Errorf("decrement selected count: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit drop: %w", err)
	}
	return nil
}

// UpdateStatus flips a selection between pending/approved/rejected. Used by
// the administrator review flow.
func (r *EnrollmentRepository) UpdateStatus(ctx context.Context, id string, status models.EnrollmentStatus) error {
	const query = `UPDATE enrollments SET status = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, status, time.Now().UTC()); err != nil {
		return fmt.Errorf("update enrollment status: %w", err)
	}
	return nil
}
