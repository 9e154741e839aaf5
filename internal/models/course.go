package models

import "time"

// Course describes one offering in the catalog. CourseCode is the stable
// external identifier; ID is the row key.
type Course struct {
	ID            string    `db:"id" json:"id"`
	CourseCode    string    `db:"course_code" json:"course_code" validate:"required"`
	Name          string    `db:"name" json:"name" validate:"required"`
	Teacher       string    `db:"teacher" json:"teacher"`
	Classroom     string    `db:"classroom" json:"classroom"`
	Capacity      int       `db:"capacity" json:"capacity" validate:"gte=0"`
	SelectedCount int       `db:"selected_count" json:"selected_count" validate:"gte=0"`
	TimeSlot      string    `db:"time_slot" json:"time_slot"`
	Description   string    `db:"description" json:"description"`
	StartWeek     int       `db:"start_week" json:"start_week" validate:"gte=1"`
	EndWeek       int       `db:"end_week" json:"end_week" validate:"gtefield=StartWeek"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// CourseFilter describes query params for listing courses.
type CourseFilter struct {
	Search    string
	Teacher   string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// Pagination carries list metadata in response envelopes.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
