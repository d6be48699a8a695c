package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/wfunc/trivia-game/internal/models"
)

// TestGrader_Clue1 测试第一条线索（区分大小写的精确匹配）
func TestGrader_Clue1(t *testing.T) {
	grader := NewGrader()

	result := grader.Grade(1, "D")
	assert.True(t, result.Correct)
	assert.Empty(t, result.Reward)
	assert.Equal(t, 100, result.Points)

	result = grader.Grade(1, "A")
	assert.False(t, result.Correct)
	assert.NotEmpty(t, result.Narrative)

	// 区分大小写
	result = grader.Grade(1, "d")
	assert.False(t, result.Correct)
}

// TestGrader_Clue2 测试第二条线索（不区分大小写，带别名和奖励）
func TestGrader_Clue2(t *testing.T) {
	grader := NewGrader()

	result := grader.Grade(2, "bonz")
	assert.True(t, result.Correct)
	assert.Equal(t, "Golden Key", result.Reward)

	result = grader.Grade(2, "BONZ")
	assert.True(t, result.Correct)
	assert.Equal(t, "Golden Key", result.Reward)

	// 别名同样有效
	result = grader.Grade(2, "znob")
	assert.True(t, result.Correct)
	result = grader.Grade(2, "ZNOB")
	assert.True(t, result.Correct)

	result = grader.Grade(2, "wrong")
	assert.False(t, result.Correct)
	assert.Empty(t, result.Reward)
}

// TestGrader_TrimsWhitespace 测试答案首尾空白被忽略
func TestGrader_TrimsWhitespace(t *testing.T) {
	grader := NewGrader()

	result := grader.Grade(1, "  D  ")
	assert.True(t, result.Correct)

	result = grader.Grade(2, " bonz\n")
	assert.True(t, result.Correct)
}

// TestGrader_UnknownClue 测试未知线索编号一律判错
func TestGrader_UnknownClue(t *testing.T) {
	grader := NewGrader()

	result := grader.Grade(99, "anything")
	assert.False(t, result.Correct)
	assert.Equal(t, unknownClueNarrative, result.Narrative)
	assert.Empty(t, result.Reward)
}

// TestGrader_AddAliases 测试配置追加别名
func TestGrader_AddAliases(t *testing.T) {
	grader := NewGrader()
	grader.AddAliases(2, []string{"bnoz"})

	result := grader.Grade(2, "bnoz")
	assert.True(t, result.Correct)

	// 不存在的线索编号静默忽略
	grader.AddAliases(99, []string{"x"})
	assert.False(t, grader.HasClue(99))
}

// TestGrader_FromLevels 测试从关卡数据重建规则表
func TestGrader_FromLevels(t *testing.T) {
	levels := []*models.Level{
		{
			ClueNumber:    1,
			Answer:        "D",
			CaseSensitive: true,
			PassMessage:   "对",
			FailMessage:   "错",
			ScoreValue:    100,
		},
		{
			ClueNumber:    3,
			Answer:        "moon",
			Aliases:       models.StringArray{"月亮"},
			CaseSensitive: false,
			PassMessage:   "对",
			FailMessage:   "错",
			RewardGift:    "Mystery Box",
			ScoreValue:    200,
		},
	}

	grader := NewGraderFromLevels(levels)
	assert.Equal(t, 2, grader.ClueCount())

	result := grader.Grade(3, "MOON")
	assert.True(t, result.Correct)
	assert.Equal(t, "Mystery Box", result.Reward)
	assert.Equal(t, 200, result.Points)

	result = grader.Grade(3, "月亮")
	assert.True(t, result.Correct)

	// 关卡数据之外的线索不存在
	result = grader.Grade(2, "bonz")
	assert.False(t, result.Correct)
}
