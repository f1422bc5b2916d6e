package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrKeepalive 心跳帧，调用方直接丢弃
var ErrKeepalive = errors.New("protocol: keepalive frame")

// ErrUnknownType 未知事件类型
var ErrUnknownType = errors.New("protocol: unknown event type")

// DecodeChatroom 解码聊天室频道的下行帧
//
// 服务端的心跳应答不是 JSON，必须在解码前拦截。
func DecodeChatroom(raw []byte) (Event, error) {
	text := strings.TrimSpace(string(raw))
	if text == "heartbeat" || text == "pong" || text == "" {
		return nil, ErrKeepalive
	}

	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return nil, fmt.Errorf("decode chatroom frame: %w", err)
	}

	switch head.Type {
	case TypeOnline:
		var frame struct {
			Users         []ChatRoomUser `json:"users"`
			OnlineChatCnt int            `json:"onlineChatCnt"`
			Discussing    string         `json:"discussing"`
		}
		if err := json.Unmarshal(raw, &frame); err != nil {
			return nil, fmt.Errorf("decode online frame: %w", err)
		}
		return &OnlineUsersEvent{
			Users:       frame.Users,
			OnlineCount: frame.OnlineChatCnt,
			Discussing:  frame.Discussing,
		}, nil

	case TypeDiscussChanged:
		var frame struct {
			NewDiscuss string `json:"newDiscuss"`
		}
		if err := json.Unmarshal(raw, &frame); err != nil {
			return nil, fmt.Errorf("decode discuss frame: %w", err)
		}
		return &DiscussChangedEvent{NewDiscuss: frame.NewDiscuss}, nil

	case TypeRevoke:
		var frame struct {
			OID string `json:"oId"`
		}
		if err := json.Unmarshal(raw, &frame); err != nil {
			return nil, fmt.Errorf("decode revoke frame: %w", err)
		}
		return &RevokeEvent{OID: frame.OID}, nil

	case TypeMsg:
		var msg ChatRoomMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			return nil, fmt.Errorf("decode msg frame: %w", err)
		}
		msg.Classify()
		return &MessageEvent{Message: &msg}, nil

	case TypeBarrager:
		var b BarragerMsg
		if err := json.Unmarshal(raw, &b); err != nil {
			return nil, fmt.Errorf("decode barrager frame: %w", err)
		}
		return &BarrageEvent{Barrage: b}, nil

	case TypeRedPacketStatus:
		var s RedPacketStatus
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, fmt.Errorf("decode redPacketStatus frame: %w", err)
		}
		return &RedPacketStatusEvent{Status: s}, nil

	case TypeCustom:
		var frame struct {
			Message string `json:"message"`
		}
		if err := json.Unmarshal(raw, &frame); err != nil {
			return nil, fmt.Errorf("decode customMessage frame: %w", err)
		}
		return &CustomEvent{Message: frame.Message}, nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, head.Type)
	}
}
