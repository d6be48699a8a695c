package game

import (
	"math/rand"
	"strings"
	"sync"
	"time"
)

// HostReply 主持人回复
// Reward 非空时表示该回复附带礼物
type HostReply struct {
	Content string `json:"content"`
	Emotion string `json:"emotion"`
	Reward  string `json:"reward,omitempty"`
}

// ReplyRule 关键词回复规则
// Keywords 中任意一个命中即触发，按规则顺序匹配，先命中先生效；
// Reward 非空时命中该规则会发放对应礼物
type ReplyRule struct {
	Keywords []string
	Reply    string
	Emotion  string
	Reward   string
}

// HostResponder 主持人回复解析器
// 对玩家的聊天内容做不区分大小写的子串匹配，
// 没有规则命中时从兜底回复池中等概率随机选取
type HostResponder struct {
	rules    []ReplyRule
	fallback []string

	mu  sync.Mutex
	rng *rand.Rand
}

// 默认关键词规则表（顺序即优先级）
var defaultRules = []ReplyRule{
	{
		Keywords: []string{"你好", "hello", "hi"},
		Reply:    "你好呀！准备好解开今晚的谜题了吗？",
		Emotion:  "happy",
	},
	{
		Keywords: []string{"提示", "hint", "help", "帮助"},
		Reply:    "需要提示的话，点击提示按钮，不过会记录你的提示次数哦。",
		Emotion:  "wink",
	},
	{
		Keywords: []string{"线索", "clue"},
		Reply:    "线索就藏在题目里，仔细读每一个字。",
		Emotion:  "mysterious",
	},
	{
		Keywords: []string{"答案", "answer"},
		Reply:    "答案可不能直接告诉你，自己想出来才有意思。",
		Emotion:  "smug",
	},
	{
		Keywords: []string{"礼物", "gift", "奖励", "reward"},
		Reply:    "答对关键线索就有神秘奖励等着你！",
		Emotion:  "excited",
	},
	{
		Keywords: []string{"谢谢", "thanks", "thank"},
		Reply:    "不客气，这是我作为主持人的荣幸。",
		Emotion:  "happy",
	},
	{
		Keywords: []string{"芝麻开门", "open sesame"},
		Reply:    "哦？你知道暗号！这枚银币收下吧。",
		Emotion:  "excited",
		Reward:   "Silver Coin",
	},
	{
		Keywords: []string{"再见", "bye", "拜拜"},
		Reply:    "这就要走了吗？谜题还等着你呢。",
		Emotion:  "sad",
	},
}

// 兜底回复池（无规则命中时等概率选取）
var defaultFallbacks = []string{
	"嗯……有意思的说法。",
	"继续说，我在听。",
	"这个话题让我想到了今晚的谜题。",
	"哈哈，你们玩家总是让我惊喜。",
	"要不要试着回答当前的线索？",
}

// NewHostResponder 创建主持人回复解析器
// rng 为 nil 时使用时间种子（测试时可注入固定种子）
func NewHostResponder(rng *rand.Rand) *HostResponder {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &HostResponder{
		rules:    defaultRules,
		fallback: defaultFallbacks,
		rng:      rng,
	}
}

// NewHostResponderWithRules 使用自定义规则创建解析器
func NewHostResponderWithRules(rules []ReplyRule, fallback []string, rng *rand.Rand) *HostResponder {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if len(fallback) == 0 {
		fallback = defaultFallbacks
	}
	return &HostResponder{
		rules:    rules,
		fallback: fallback,
		rng:      rng,
	}
}

// Respond 解析玩家消息并生成主持人回复
func (h *HostResponder) Respond(message string) HostReply {
	lowered := strings.ToLower(message)

	for _, rule := range h.rules {
		for _, keyword := range rule.Keywords {
			if strings.Contains(lowered, strings.ToLower(keyword)) {
				return HostReply{
					Content: rule.Reply,
					Emotion: rule.Emotion,
					Reward:  rule.Reward,
				}
			}
		}
	}

	// 无规则命中，随机兜底
	h.mu.Lock()
	idx := h.rng.Intn(len(h.fallback))
	h.mu.Unlock()

	return HostReply{
		Content: h.fallback[idx],
		Emotion: "thoughtful",
	}
}

// Rules 返回当前规则表
func (h *HostResponder) Rules() []ReplyRule {
	return h.rules
}
