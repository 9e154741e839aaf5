package dto

import "github.com/openxk/course-select-api/internal/models"

// ImportReport summarises one catalog import run. Courses whose codes were
// already present are skipped and not counted.
type ImportReport struct {
	CreatedCount int             `json:"created_count"`
	Courses      []models.Course `json:"courses"`
}
