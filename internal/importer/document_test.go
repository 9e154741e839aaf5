package importer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractCoursesFromPageText(t *testing.T) {
	text := "2024-2025学年第一学期开课目录\n" +
		"计算机学院,操作系统,必修,(操作系统-01班),30001,4,孙明,100,37,星期二第1-2节{1-16周},信息楼-401\n" +
		"计算机学院,编译原理,选修,(编译原理-01班),30002,3.5,周红,60,60,星期五第7-8节{9-16周},信息楼-402;信息楼-403\n"

	courses := extractCourses(text)
	require.Len(t, courses, 2)

	first := courses[0]
	assert.Equal(t, "30001", first.CourseCode)
	assert.Equal(t, "操作系统", first.Name)
	assert.Equal(t, "孙明", first.Teacher)
	assert.Equal(t, "信息楼-401", first.Classroom)
	assert.Equal(t, 100, first.Capacity)
	assert.Equal(t, 37, first.SelectedCount)
	assert.Equal(t, "周二 1-2节", first.TimeSlot)
	assert.Equal(t, "必修 - 计算机学院 - 4学分", first.Description)
	assert.Equal(t, 1, first.StartWeek)
	assert.Equal(t, 16, first.EndWeek)

	second := courses[1]
	assert.Equal(t, "信息楼-402", second.Classroom)
	assert.Equal(t, 9, second.StartWeek)
	assert.Equal(t, 16, second.EndWeek)
	assert.Equal(t, "周五 7-8节", second.TimeSlot)
}

func TestExtractCoursesIgnoresNonCourseLines(t *testing.T) {
	text := "第 3 页，共 10 页\n本表由教务处导出\n"
	assert.Empty(t, extractCourses(text))
}

func TestExtractCoursesWithoutWeekBrace(t *testing.T) {
	text := "数学学院,概率论,必修,(概率论-02班),30003,3,吴刚,80,12,星期一第5-6节,理科楼-210\n"
	courses := extractCourses(text)
	require.Len(t, courses, 1)
	assert.Equal(t, 1, courses[0].StartWeek)
	assert.Equal(t, 16, courses[0].EndWeek)
	assert.Equal(t, "周一 5-6节", courses[0].TimeSlot)
}

func TestTypeForFilename(t *testing.T) {
	cases := map[string]struct {
		typ Type
		ok  bool
	}{
		"catalog.csv":  {TypeTable, true},
		"catalog.XLSX": {TypeTable, true},
		"catalog.pdf":  {TypeDocument, true},
		"catalog.docx": {"", false},
		"catalog":      {"", false},
	}
	for name, want := range cases {
		typ, ok := TypeForFilename(name)
		assert.Equal(t, want.ok, ok, name)
		assert.Equal(t, want.typ, typ, name)
	}
}

func TestRegistryLookup(t *testing.T) {
	registry := NewRegistry()

	imp, ok := registry.Lookup(TypeTable)
	require.True(t, ok)
	assert.IsType(t, &TableImporter{}, imp)

	imp, ok = registry.Lookup(TypeDocument)
	require.True(t, ok)
	assert.IsType(t, &DocumentImporter{}, imp)

	_, ok = registry.Lookup("spreadsheet")
	assert.False(t, ok)
}
