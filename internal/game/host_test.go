package game

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestHostResponder_KeywordMatch 测试关键词匹配
func TestHostResponder_KeywordMatch(t *testing.T) {
	responder := NewHostResponder(rand.New(rand.NewSource(1)))

	reply := responder.Respond("你好，主持人")
	assert.Equal(t, "你好呀！准备好解开今晚的谜题了吗？", reply.Content)
	assert.Equal(t, "happy", reply.Emotion)

	// 不区分大小写
	reply = responder.Respond("HELLO there")
	assert.Equal(t, "happy", reply.Emotion)
}

// TestHostResponder_FirstMatchWins 测试规则顺序优先
// 消息同时命中"你好"和"提示"时，取顺序靠前的规则
func TestHostResponder_FirstMatchWins(t *testing.T) {
	responder := NewHostResponder(rand.New(rand.NewSource(1)))

	reply := responder.Respond("你好，能给点提示吗")
	assert.Equal(t, "你好呀！准备好解开今晚的谜题了吗？", reply.Content)
}

// TestHostResponder_RewardRule 测试暗号规则附带礼物
func TestHostResponder_RewardRule(t *testing.T) {
	responder := NewHostResponder(rand.New(rand.NewSource(1)))

	reply := responder.Respond("芝麻开门！")
	assert.Equal(t, "excited", reply.Emotion)
	assert.Equal(t, "Silver Coin", reply.Reward)

	reply = responder.Respond("Open Sesame")
	assert.Equal(t, "Silver Coin", reply.Reward)

	// 普通规则与兜底都不带礼物
	assert.Empty(t, responder.Respond("你好").Reward)
	assert.Empty(t, responder.Respond("xyzzy").Reward)
}

// TestHostResponder_Fallback 测试无命中时的兜底回复
func TestHostResponder_Fallback(t *testing.T) {
	responder := NewHostResponder(rand.New(rand.NewSource(42)))

	reply := responder.Respond("xyzzy")
	assert.Equal(t, "thoughtful", reply.Emotion)
	assert.Contains(t, defaultFallbacks, reply.Content)
}

// TestHostResponder_FallbackDeterministic 测试固定种子下兜底可复现
func TestHostResponder_FallbackDeterministic(t *testing.T) {
	a := NewHostResponder(rand.New(rand.NewSource(7)))
	b := NewHostResponder(rand.New(rand.NewSource(7)))

	for i := 0; i < 10; i++ {
		assert.Equal(t, a.Respond("无关内容").Content, b.Respond("无关内容").Content)
	}
}

// TestHostResponder_CustomRules 测试自定义规则
func TestHostResponder_CustomRules(t *testing.T) {
	rules := []ReplyRule{
		{Keywords: []string{"ping"}, Reply: "pong", Emotion: "happy"},
	}
	responder := NewHostResponderWithRules(rules, nil, rand.New(rand.NewSource(1)))

	reply := responder.Respond("ping!")
	assert.Equal(t, "pong", reply.Content)

	reply = responder.Respond("其他")
	assert.Equal(t, "thoughtful", reply.Emotion)
}
