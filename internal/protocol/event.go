// Package protocol 定义 fishpi 实时消息的事件模型和解码逻辑
//
// WebSocket 下行帧是松散的 JSON，字段缺失、类型漂移都很常见。
// 本包在边界处一次性解码成封闭的事件联合，内部代码不再接触原始 JSON。
package protocol

// 聊天室事件类型
const (
	TypeOnline          = "online"
	TypeDiscussChanged  = "discussChanged"
	TypeRevoke          = "revoke"
	TypeMsg             = "msg"
	TypeRedPacket       = "redPacket"
	TypeRedPacketStatus = "redPacketStatus"
	TypeBarrager        = "barrager"
	TypeCustom          = "customMessage"
	TypeWeather         = "weather"
	TypeMusic           = "music"
)

// 私聊事件类型
const (
	ChatTypeData   = "data"
	ChatTypeNotice = "notice"
	ChatTypeRevoke = "revoke"
)

// 通知事件命令
const (
	CmdRefreshNotification    = "refreshNotification"
	CmdWarnBroadcast          = "warnBroadcast"
	CmdNewIdleChatMessage     = "newIdleChatMessage"
	CmdChatUnreadCountRefresh = "chatUnreadCountRefresh"
)

// Event 解码后的事件，每个帧恰好产生一个变体
type Event interface {
	// EventType 返回事件类型标识
	EventType() string

	sealed()
}

// OnlineUsersEvent 在线用户快照，整体替换本地名单
type OnlineUsersEvent struct {
	Users       []ChatRoomUser
	OnlineCount int
	Discussing  string
}

// DiscussChangedEvent 话题变更
type DiscussChangedEvent struct {
	NewDiscuss string
}

// RevokeEvent 聊天室消息撤回
type RevokeEvent struct {
	OID string
}

// MessageEvent 聊天室消息，特殊载荷已在解码时分类完毕
type MessageEvent struct {
	Message *ChatRoomMessage
}

// RedPacketStatusEvent 红包领取进度广播
type RedPacketStatusEvent struct {
	Status RedPacketStatus
}

// BarrageEvent 弹幕
type BarrageEvent struct {
	Barrage BarragerMsg
}

// CustomEvent 服务端自定义文本消息
type CustomEvent struct {
	Message string
}

// ChatDataEvent 私聊消息
type ChatDataEvent struct {
	Data ChatData
}

// ChatNoticeEvent 私聊通知（未读刷新、新消息预览）
type ChatNoticeEvent struct {
	Notice ChatNotice
}

// ChatRevokeEvent 私聊消息撤回
type ChatRevokeEvent struct {
	Revoke ChatRevoke
}

// NoticeEvent 用户通知频道消息
type NoticeEvent struct {
	Notice NoticeMsg
}

func (e *OnlineUsersEvent) EventType() string    { return TypeOnline }
func (e *DiscussChangedEvent) EventType() string { return TypeDiscussChanged }
func (e *RevokeEvent) EventType() string         { return TypeRevoke }

func (e *RedPacketStatusEvent) EventType() string { return TypeRedPacketStatus }
func (e *BarrageEvent) EventType() string         { return TypeBarrager }
func (e *CustomEvent) EventType() string          { return TypeCustom }
func (e *ChatDataEvent) EventType() string        { return ChatTypeData }
func (e *ChatNoticeEvent) EventType() string      { return ChatTypeNotice }
func (e *ChatRevokeEvent) EventType() string      { return ChatTypeRevoke }
func (e *NoticeEvent) EventType() string          { return e.Notice.Command }

// EventType 返回消息的实际类型，红包、天气、音乐消息返回对应的特殊类型
func (e *MessageEvent) EventType() string {
	switch {
	case e.Message == nil:
		return TypeMsg
	case e.Message.IsRedPacket():
		return TypeRedPacket
	case e.Message.IsWeather():
		return TypeWeather
	case e.Message.IsMusic():
		return TypeMusic
	default:
		return TypeMsg
	}
}

func (e *OnlineUsersEvent) sealed()     {}
func (e *DiscussChangedEvent) sealed()  {}
func (e *RevokeEvent) sealed()          {}
func (e *MessageEvent) sealed()         {}
func (e *RedPacketStatusEvent) sealed() {}
func (e *BarrageEvent) sealed()         {}
func (e *CustomEvent) sealed()          {}
func (e *ChatDataEvent) sealed()        {}
func (e *ChatNoticeEvent) sealed()      {}
func (e *ChatRevokeEvent) sealed()      {}
func (e *NoticeEvent) sealed()          {}
