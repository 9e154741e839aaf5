package importer

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/openxk/course-select-api/internal/models"
)

// Course lines carry eleven comma-separated fields: 开课学院, 课程名称,
// 课程性质, 教学班名称 (parenthesised, not captured), 课程号, 学分, 任课教师,
// 课堂容量, 已选人数, 上课时间, 教学地点.
var courseLinePattern = regexp.MustCompile(`([^,\n]+),([^,\n]+),([^,\n]+),\([^)\n]+\),(\d+),(\d+\.?\d*),([^,\n]+),(\d+),(\d+),([^,\n]+),([^,\n]+)`)

// DocumentImporter extracts course drafts from the text of paginated PDF
// catalogs.
type DocumentImporter struct{}

// NewDocumentImporter constructs a DocumentImporter.
func NewDocumentImporter() *DocumentImporter {
	return &DocumentImporter{}
}

// Parse walks every page, extracts its plain text and collects all course
// lines found across the document.
func (d *DocumentImporter) Parse(content []byte) ([]models.Course, error) {
	reader, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}

	var courses []models.Course
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("extract page %d text: %w", i, err)
		}
		courses = append(courses, extractCourses(text)...)
	}
	return courses, nil
}

// extractCourses scans one page's text for course lines.
func extractCourses(text string) []models.Course {
	var courses []models.Course
	for _, match := range courseLinePattern.FindAllStringSubmatch(text, -1) {
		rawTime := strings.TrimSpace(match[9])
		startWeek, endWeek := weeksFromBrace(rawTime)

		courses = append(courses, models.Course{
			CourseCode:    strings.TrimSpace(match[4]),
			Name:          strings.TrimSpace(match[2]),
			Teacher:       strings.TrimSpace(match[6]),
			Classroom:     firstClassroom(match[10]),
			Capacity:      atoiOrZero(match[7]),
			SelectedCount: atoiOrZero(match[8]),
			TimeSlot:      normalizeTimeSlot(rawTime),
			Description:   fmt.Sprintf("%s - %s - %s学分", strings.TrimSpace(match[3]), strings.TrimSpace(match[1]), match[5]),
			StartWeek:     startWeek,
			EndWeek:       endWeek,
		})
	}
	return courses
}
