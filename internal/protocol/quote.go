package protocol

import (
	"fmt"
	"regexp"
	"strings"
)

const quoteMarker = "##### 引用"

var (
	htmlTagRE    = regexp.MustCompile(`<[^>]+>`)
	blockquoteRE = regexp.MustCompile(`(?s)<blockquote[^>]*>.*?</blockquote>`)
)

// StripHTMLTags 去除 HTML 标签，只保留文本
func StripHTMLTags(s string) string {
	return htmlTagRE.ReplaceAllString(s, "")
}

// StripChatHTML 去除聊天室消息中的 HTML
//
// 引用块整体先删掉，引用内容由 FormatQuoteMessage 单独渲染。
func StripChatHTML(s string) string {
	s = blockquoteRE.ReplaceAllString(s, "")
	return strings.TrimSpace(htmlTagRE.ReplaceAllString(s, ""))
}

// IsQuoteMessage 判断 markdown 文本是否包含引用
func IsQuoteMessage(md string) bool {
	if strings.Contains(md, quoteMarker) {
		return true
	}
	for _, line := range strings.Split(md, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), ">") {
			return true
		}
	}
	return false
}

// FormatQuoteMessage 将 markdown 引用渲染为单行摘要
//
// 输出形如 "{indent}└─引用 {user}: {content}"，没有引用时返回空串。
func FormatQuoteMessage(md, indent string) string {
	idx := strings.Index(md, quoteMarker)
	if idx < 0 {
		return ""
	}
	rest := md[idx+len(quoteMarker):]

	user := ""
	if at := strings.Index(rest, "@"); at >= 0 {
		tail := rest[at+1:]
		end := len(tail)
		for i, r := range tail {
			if r == ' ' || r == '[' || r == '\n' {
				end = i
				break
			}
		}
		user = tail[:end]
	}

	var quoted []string
	for _, line := range strings.Split(rest, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, ">") {
			quoted = append(quoted, strings.TrimSpace(strings.TrimPrefix(trimmed, ">")))
		}
	}
	if len(quoted) == 0 {
		return ""
	}
	return fmt.Sprintf("%s└─引用 %s: %s", indent, user, strings.Join(quoted, " "))
}

// FilterTailContent 去掉消息尾部的引用块，保留用户自己写的正文
//
// 引用块之前没有正文时原样返回，避免把消息过滤成空。
func FilterTailContent(md string) string {
	lines := strings.Split(md, "\n")
	cut := -1
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, ">") || strings.HasPrefix(trimmed, quoteMarker) {
			cut = i
			break
		}
	}
	if cut < 0 {
		return md
	}
	head := strings.TrimSpace(strings.Join(lines[:cut], "\n"))
	if head == "" {
		return md
	}
	return head
}

// BuildReply 构造带引用的回复正文
func BuildReply(reply, userName, msgID, preview string) string {
	return fmt.Sprintf(
		"%s\n\n%s @%s [↩](https://fishpi.cn/cr#chatroom%s \"跳转至原消息\")\n> %s",
		reply, quoteMarker, userName, msgID, preview,
	)
}
