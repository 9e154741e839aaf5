package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckConflictAdjacentBlocks(t *testing.T) {
	// Period 1-2 ends 09:40, period 3-4 starts 10:00.
	conflict, desc := CheckConflict("周一 1-2节", "周一 3-4节")
	assert.False(t, conflict)
	assert.Empty(t, desc)
}

func TestCheckConflictIdenticalSlots(t *testing.T) {
	conflict, desc := CheckConflict("周四 5-6节", "周四 5-6节")
	require.True(t, conflict)
	assert.Equal(t, "课程时间冲突：周4 14:00-15:40", desc)
}

func TestCheckConflictEvenStartPeriodSkipped(t *testing.T) {
	// Start periods outside the anchor table produce no slots, so even
	// identical strings cannot collide. Matches the period-table contract.
	conflict, _ := CheckConflict("周四 4-5节", "周四 4-5节")
	assert.False(t, conflict)
}

func TestCheckConflictReportsFirstPair(t *testing.T) {
	conflict, desc := CheckConflict("周一 1-2节, 周三 5-6节", "周五 7-8节, 周一 1-2节, 周三 5-6节")
	require.True(t, conflict)
	assert.Equal(t, "课程时间冲突：周1 08:00-09:40", desc)
}

func TestCheckConflictDifferentDays(t *testing.T) {
	conflict, _ := CheckConflict("周一 1-2节", "周二 1-2节")
	assert.False(t, conflict)
}

func TestCheckConflictSymmetric(t *testing.T) {
	a, b := "周一 1-2节, 周三 3-4节", "周三 3-4节"
	gotAB, _ := CheckConflict(a, b)
	gotBA, _ := CheckConflict(b, a)
	assert.Equal(t, gotAB, gotBA)
}

func TestCheckConflictUnparseableIsNotAConflict(t *testing.T) {
	// Lenient by policy: a parse failure must not block enrollment.
	conflict, desc := CheckConflict("周一 99999999999999999999-2节", "周一 1-2节")
	assert.False(t, conflict)
	assert.Contains(t, desc, "时间格式解析错误")

	conflict, desc = CheckConflict("周一 1-2节", "周一 99999999999999999999-2节")
	assert.False(t, conflict)
	assert.Contains(t, desc, "时间格式解析错误")
}

func TestCheckConflictPendingSlots(t *testing.T) {
	conflict, desc := CheckConflict("待定", "周一 1-2节")
	assert.False(t, conflict)
	assert.Empty(t, desc)
}
