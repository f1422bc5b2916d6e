package protocol_test

import (
	"testing"

	"github.com/fishpi/gofish/internal/protocol"
	"github.com/stretchr/testify/assert"
)

func TestIsQuoteMessage(t *testing.T) {
	assert.True(t, protocol.IsQuoteMessage("回复\n\n##### 引用 @alice\n> 原话"))
	assert.True(t, protocol.IsQuoteMessage("  > 只有引用行"))
	assert.False(t, protocol.IsQuoteMessage("普通消息"))
	assert.False(t, protocol.IsQuoteMessage("大于号 a > b 不算引用"))
}

func TestFormatQuoteMessage(t *testing.T) {
	md := "收到\n\n##### 引用 @alice [↩](https://fishpi.cn/cr#chatroom123 \"跳转至原消息\")\n> 第一行\n> 第二行"

	got := protocol.FormatQuoteMessage(md, "  ")
	assert.Equal(t, "  └─引用 alice: 第一行 第二行", got)
}

func TestFormatQuoteMessageNoQuote(t *testing.T) {
	assert.Empty(t, protocol.FormatQuoteMessage("普通消息", ""))
	assert.Empty(t, protocol.FormatQuoteMessage("##### 引用 @alice 但没有引用行", ""))
}

func TestFilterTailContent(t *testing.T) {
	md := "我自己说的话\n\n##### 引用 @alice\n> 被引用的话"
	assert.Equal(t, "我自己说的话", protocol.FilterTailContent(md))
}

func TestFilterTailContentKeepsQuoteOnlyMessage(t *testing.T) {
	md := "> 整条消息都是引用"
	assert.Equal(t, md, protocol.FilterTailContent(md), "过滤后为空时保留原文")
}

func TestFilterTailContentNoQuote(t *testing.T) {
	assert.Equal(t, "没有引用", protocol.FilterTailContent("没有引用"))
}

func TestStripHTMLTags(t *testing.T) {
	assert.Equal(t, "hello world", protocol.StripHTMLTags(`<p>hello <b>world</b></p>`))
}

func TestStripChatHTMLRemovesBlockquote(t *testing.T) {
	content := `<p>回复内容</p><blockquote><p>被引用的原文</p></blockquote>`
	assert.Equal(t, "回复内容", protocol.StripChatHTML(content))
}

func TestBuildReply(t *testing.T) {
	got := protocol.BuildReply("收到", "alice", "123", "原消息预览")
	want := "收到\n\n##### 引用 @alice [↩](https://fishpi.cn/cr#chatroom123 \"跳转至原消息\")\n> 原消息预览"
	assert.Equal(t, want, got)

	assert.True(t, protocol.IsQuoteMessage(got), "构造出的回复应能被识别为引用")
}
