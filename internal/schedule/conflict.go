package schedule

import "fmt"

// CheckConflict compares the raw time-slot strings of two courses and reports
// the first overlapping pair, with a human-readable description of the
// colliding block. A parse failure on either side degrades to "no conflict"
// and surfaces the error text in the description instead of blocking the
// operation.
func CheckConflict(timeSlotA, timeSlotB string) (bool, string) {
	slotsA, err := Parse(timeSlotA)
	if err != nil {
		return false, fmt.Sprintf("时间格式解析错误: %v", err)
	}
	slotsB, err := Parse(timeSlotB)
	if err != nil {
		return false, fmt.Sprintf("时间格式解析错误: %v", err)
	}

	for _, a := range slotsA {
		for _, b := range slotsB {
			if a.Overlaps(b) {
				return true, fmt.Sprintf("课程时间冲突：周%d %s-%s", a.Day, a.Start, a.End)
			}
		}
	}
	return false, ""
}
