package models

import "time"

// EnrollmentStatus represents the lifecycle of a course selection.
type EnrollmentStatus string

// Possible enrollment statuses. Pending selections are flipped to approved or
// rejected by an administrator review.
const (
	EnrollmentStatusPending  EnrollmentStatus = "pending"
	EnrollmentStatusApproved EnrollmentStatus = "approved"
	EnrollmentStatusRejected EnrollmentStatus = "rejected"
)

// Valid reports whether the status is one of the known values.
func (s EnrollmentStatus) Valid() bool {
	switch s {
	case EnrollmentStatusPending, EnrollmentStatusApproved, EnrollmentStatusRejected:
		return true
	}
	return false
}

// Enrollment captures a student's selection of a course. At most one row may
// exist per (student_id, course_id) pair.
type Enrollment struct {
	ID        string           `db:"id" json:"id"`
	StudentID string           `db:"student_id" json:"student_id"`
	CourseID  string           `db:"course_id" json:"course_id"`
	Status    EnrollmentStatus `db:"status" json:"status"`
	CreatedAt time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt time.Time        `db:"updated_at" json:"updated_at"`
}

// EnrollmentDetail enriches Enrollment with course info needed by listings
// and conflict checks.
type EnrollmentDetail struct {
	Enrollment
	CourseCode     string `db:"course_code" json:"course_code"`
	CourseName     string `db:"course_name" json:"course_name"`
	CourseTeacher  string `db:"course_teacher" json:"course_teacher"`
	Classroom      string `db:"classroom" json:"classroom"`
	CourseTimeSlot string `db:"course_time_slot" json:"course_time_slot"`
}
