package protocol

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ChatData 私聊消息
type ChatData struct {
	OID              string `json:"oId"`
	FromID           string `json:"fromId"`
	ToID             string `json:"toId"`
	Preview          string `json:"preview"`
	UserSession      string `json:"user_session"`
	SenderAvatar     string `json:"senderAvatar"`
	ReceiverAvatar   string `json:"receiverAvatar"`
	SenderUserName   string `json:"senderUserName"`
	ReceiverUserName string `json:"receiverUserName"`
	Markdown         string `json:"markdown"`
	Content          string `json:"content"`
	Time             string `json:"time"`
}

// ChatNotice 私聊通知
type ChatNotice struct {
	Command        string `json:"command"`
	UserID         string `json:"userId"`
	Preview        string `json:"preview"`
	SenderAvatar   string `json:"senderAvatar"`
	SenderUserName string `json:"senderUserName"`
}

// ChatRevoke 私聊撤回
type ChatRevoke struct {
	Data string `json:"data"`
	Type string `json:"type"`
}

// DecodeChat 解码私聊频道的下行帧
//
// 路由规则：已知 command 走通知，type 为 revoke 走撤回，
// 携带未知 command 的帧直接丢弃，其余按消息处理。
func DecodeChat(raw []byte) (Event, error) {
	text := strings.TrimSpace(string(raw))
	if text == "heartbeat" || text == "pong" || text == "" {
		return nil, ErrKeepalive
	}

	var head struct {
		Command string `json:"command"`
		Type    string `json:"type"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return nil, fmt.Errorf("decode chat frame: %w", err)
	}

	switch head.Command {
	case CmdChatUnreadCountRefresh, CmdNewIdleChatMessage:
		var n ChatNotice
		if err := json.Unmarshal(raw, &n); err != nil {
			return nil, fmt.Errorf("decode chat notice: %w", err)
		}
		return &ChatNoticeEvent{Notice: n}, nil
	}

	if head.Type == ChatTypeRevoke {
		var r ChatRevoke
		if err := json.Unmarshal(raw, &r); err != nil {
			return nil, fmt.Errorf("decode chat revoke: %w", err)
		}
		return &ChatRevokeEvent{Revoke: r}, nil
	}

	if head.Command != "" {
		return nil, fmt.Errorf("%w: command %q", ErrUnknownType, head.Command)
	}

	var d ChatData
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, fmt.Errorf("decode chat data: %w", err)
	}
	d.Content = strings.TrimSuffix(strings.TrimPrefix(d.Content, "<p>"), "</p>")
	return &ChatDataEvent{Data: d}, nil
}
