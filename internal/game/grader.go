package game

import (
	"strings"
	"sync"

	"github.com/wfunc/trivia-game/internal/models"
)

// ClueRule 单条线索的判定规则
type ClueRule struct {
	Answer        string
	Aliases       []string
	CaseSensitive bool
	PassMessage   string
	FailMessage   string
	Reward        string // 为空表示无奖励
	Points        int
}

// GradeResult 判定结果
type GradeResult struct {
	Correct   bool   `json:"correct"`
	Narrative string `json:"narrative"`
	Reward    string `json:"reward,omitempty"`
	Points    int    `json:"points"`
}

// 未知线索编号的兜底叙述
const unknownClueNarrative = "这道题我也不认识……换个线索试试吧。"

// Grader 线索判定器
// 纯判定逻辑，不修改任何状态；规则表可由配置或关卡数据重建
type Grader struct {
	mu    sync.RWMutex
	rules map[int]ClueRule
}

// NewGrader 使用内置规则表创建判定器
// 线索1：精确匹配"D"（区分大小写）
// 线索2：不区分大小写匹配"bonz"，别名"znob"，奖励Golden Key
func NewGrader() *Grader {
	return &Grader{
		rules: map[int]ClueRule{
			1: {
				Answer:        "D",
				CaseSensitive: true,
				PassMessage:   "答对了！第一条线索解开，继续下一题。",
				FailMessage:   "不对哦，再想想第一条线索。",
				Points:        100,
			},
			2: {
				Answer:        "bonz",
				Aliases:       []string{"znob"},
				CaseSensitive: false,
				PassMessage:   "太棒了！你解开了最后一条线索！",
				FailMessage:   "还差一点，换个角度想想。",
				Reward:        "Golden Key",
				Points:        100,
			},
		},
	}
}

// NewGraderFromLevels 从关卡数据重建判定器
// 关卡编辑接口写入的新线索通过这里生效
func NewGraderFromLevels(levels []*models.Level) *Grader {
	rules := make(map[int]ClueRule, len(levels))
	for _, level := range levels {
		rules[level.ClueNumber] = ClueRule{
			Answer:        level.Answer,
			Aliases:       level.Aliases,
			CaseSensitive: level.CaseSensitive,
			PassMessage:   level.PassMessage,
			FailMessage:   level.FailMessage,
			Reward:        level.RewardGift,
			Points:        level.ScoreValue,
		}
	}
	return &Grader{rules: rules}
}

// AddAliases 追加配置中的线索别名
func (g *Grader) AddAliases(clueNumber int, aliases []string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	rule, ok := g.rules[clueNumber]
	if !ok {
		return
	}
	rule.Aliases = append(rule.Aliases, aliases...)
	g.rules[clueNumber] = rule
}

// SetRule 设置或覆盖一条线索规则
func (g *Grader) SetRule(clueNumber int, rule ClueRule) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.rules[clueNumber] = rule
}

// HasClue 检查线索编号是否存在
func (g *Grader) HasClue(clueNumber int) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	_, ok := g.rules[clueNumber]
	return ok
}

// ClueCount 返回线索总数
func (g *Grader) ClueCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.rules)
}

// Grade 判定答案
// 答案先去除首尾空白；未知线索编号一律判错并返回兜底叙述
func (g *Grader) Grade(clueNumber int, answer string) GradeResult {
	g.mu.RLock()
	rule, ok := g.rules[clueNumber]
	g.mu.RUnlock()

	if !ok {
		return GradeResult{
			Correct:   false,
			Narrative: unknownClueNarrative,
		}
	}

	trimmed := strings.TrimSpace(answer)
	if matches(trimmed, rule.Answer, rule.CaseSensitive) {
		return passResult(rule)
	}
	for _, alias := range rule.Aliases {
		if matches(trimmed, alias, rule.CaseSensitive) {
			return passResult(rule)
		}
	}

	return GradeResult{
		Correct:   false,
		Narrative: rule.FailMessage,
	}
}

// matches 比较答案与期望值
func matches(answer, expected string, caseSensitive bool) bool {
	if caseSensitive {
		return answer == expected
	}
	return strings.EqualFold(answer, expected)
}

// passResult 构造答对结果
func passResult(rule ClueRule) GradeResult {
	return GradeResult{
		Correct:   true,
		Narrative: rule.PassMessage,
		Reward:    rule.Reward,
		Points:    rule.Points,
	}
}
