package importer

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/openxk/course-select-api/internal/models"
)

// Column names the table shape must carry, in reporting order.
var requiredColumns = []string{
	"课程名称",
	"课程号",
	"任课教师",
	"教学地点",
	"课堂容量",
	"已选人数",
	"上课时间",
	"课程性质",
	"学分",
	"开课学院",
	"起始结束周",
}

// xlsx files are zip archives.
var zipMagic = []byte{0x50, 0x4b, 0x03, 0x04}

// MissingColumnsError reports which required table columns are absent.
type MissingColumnsError struct {
	Columns []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("文件缺少必要的列：%s", strings.Join(e.Columns, ", "))
}

// TableImporter extracts course drafts from structured tables. CSV and XLSX
// content share one column contract; the encoding is sniffed from the bytes.
type TableImporter struct{}

// NewTableImporter constructs a TableImporter.
func NewTableImporter() *TableImporter {
	return &TableImporter{}
}

// Parse validates the header against the required columns and converts every
// row carrying a course code into a draft. Rows without a course code are
// skipped; open classroom/time fields degrade to the 待定 sentinel and broken
// week ranges fall back to weeks 1-16.
func (t *TableImporter) Parse(content []byte) ([]models.Course, error) {
	rows, err := readRows(content)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, &MissingColumnsError{Columns: requiredColumns}
	}

	index := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		index[strings.TrimSpace(name)] = i
	}

	var missing []string
	for _, name := range requiredColumns {
		if _, ok := index[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, &MissingColumnsError{Columns: missing}
	}

	cell := func(row []string, column string) string {
		i := index[column]
		if i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var courses []models.Course
	for _, row := range rows[1:] {
		code := cell(row, "课程号")
		if code == "" {
			continue
		}

		startWeek, endWeek := parseWeekRange(cell(row, "起始结束周"))
		courses = append(courses, models.Course{
			CourseCode:    code,
			Name:          cell(row, "课程名称"),
			Teacher:       cell(row, "任课教师"),
			Classroom:     firstClassroom(cell(row, "教学地点")),
			Capacity:      atoiOrZero(cell(row, "课堂容量")),
			SelectedCount: atoiOrZero(cell(row, "已选人数")),
			TimeSlot:      normalizeTimeSlot(cell(row, "上课时间")),
			Description:   fmt.Sprintf("%s - %s - %s学分", cell(row, "课程性质"), cell(row, "开课学院"), cell(row, "学分")),
			StartWeek:     startWeek,
			EndWeek:       endWeek,
		})
	}
	return courses, nil
}

func readRows(content []byte) ([][]string, error) {
	if bytes.HasPrefix(content, zipMagic) {
		return readXLSXRows(content)
	}
	return readCSVRows(content)
}

func readCSVRows(content []byte) ([][]string, error) {
	reader := csv.NewReader(bytes.NewReader(content))
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	return rows, nil
}

func readXLSXRows(content []byte) ([][]string, error) {
	book, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer book.Close()

	sheets := book.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("xlsx has no sheets")
	}
	rows, err := book.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read xlsx rows: %w", err)
	}
	return rows, nil
}
