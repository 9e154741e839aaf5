package schedule

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ClockTime is a time of day in minutes from midnight.
type ClockTime int

// Clock builds a ClockTime from hour and minute.
func Clock(hour, minute int) ClockTime {
	return ClockTime(hour*60 + minute)
}

// String formats the time as HH:MM.
func (t ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", int(t)/60, int(t)%60)
}

// TimeSlot is one weekly recurring block of a course: a weekday (1=Monday ..
// 7=Sunday) plus clock start and end times.
type TimeSlot struct {
	Day   int
	Start ClockTime
	End   ClockTime
}

// Overlaps reports whether two slots collide. Slots on different weekdays
// never overlap; on the same weekday the interval check is strict, so
// touching endpoints are not a conflict.
func (s TimeSlot) Overlaps(other TimeSlot) bool {
	if s.Day != other.Day {
		return false
	}
	return s.Start < other.End && s.End > other.Start
}

// periodTimes maps odd class-period anchors to their clock-time ranges. Even
// periods share the anchor's block, so "1-2节" spans the whole 08:00-09:40
// block and "1-4节" runs through the following anchor's end.
var periodTimes = map[int]struct{ start, end ClockTime }{
	1: {Clock(8, 0), Clock(9, 40)},
	3: {Clock(10, 0), Clock(11, 40)},
	5: {Clock(14, 0), Clock(15, 40)},
	7: {Clock(16, 0), Clock(17, 40)},
	9: {Clock(19, 0), Clock(20, 40)},
}

var weekdayNames = map[string]int{
	"一": 1, "二": 2, "三": 3, "四": 4, "五": 5, "六": 6, "日": 7,
}

var segmentPattern = regexp.MustCompile(`^周([一二三四五六日])\s*(\d+)-(\d+)节`)

// Parse converts a raw time-slot string such as "周一 1-2节, 周三 3-4节" into
// TimeSlots. Segments that do not match the weekday-period pattern, name an
// unknown weekday, or start outside the period table are silently skipped;
// the result may be empty.
func Parse(raw string) ([]TimeSlot, error) {
	var slots []TimeSlot
	for _, segment := range strings.Split(raw, ",") {
		segment = strings.TrimSpace(segment)
		match := segmentPattern.FindStringSubmatch(segment)
		if match == nil {
			continue
		}
		day, ok := weekdayNames[match[1]]
		if !ok {
			continue
		}
		startPeriod, err := strconv.Atoi(match[2])
		if err != nil {
			return nil, fmt.Errorf("parse start period %q: %w", match[2], err)
		}
		endPeriod, err := strconv.Atoi(match[3])
		if err != nil {
			return nil, fmt.Errorf("parse end period %q: %w", match[3], err)
		}

		anchor, ok := periodTimes[startPeriod]
		if !ok {
			continue
		}
		end := anchor.end
		if next, ok := periodTimes[startPeriod+1]; ok && endPeriod > startPeriod {
			end = next.end
		}
		slots = append(slots, TimeSlot{Day: day, Start: anchor.start, End: end})
	}
	return slots, nil
}
