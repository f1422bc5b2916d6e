package protocol

import "encoding/json"

// 红包类型
const (
	RedPacketRandom            = "random"
	RedPacketAverage           = "average"
	RedPacketSpecify           = "specify"
	RedPacketHeartbeat         = "heartbeat"
	RedPacketRockPaperScissors = "rockPaperScissors"
)

// RedPacketKindName 返回红包类型的中文名
func RedPacketKindName(kind string) string {
	switch kind {
	case RedPacketRandom:
		return "拼手气红包"
	case RedPacketAverage:
		return "平分红包"
	case RedPacketSpecify:
		return "专属红包"
	case RedPacketHeartbeat:
		return "心跳红包"
	case RedPacketRockPaperScissors:
		return "猜拳红包"
	default:
		return kind
	}
}

// Gesture 猜拳手势
type Gesture int

// 手势取值与服务端编码一致
const (
	GestureRock     Gesture = 0
	GestureScissors Gesture = 1
	GesturePaper    Gesture = 2
)

// String 返回手势的中文名
func (g Gesture) String() string {
	switch g {
	case GestureRock:
		return "石头"
	case GestureScissors:
		return "剪刀"
	case GesturePaper:
		return "布"
	default:
		return "未知"
	}
}

// RedPacketMessage 红包消息的线上格式
//
// Recivers 是服务端的历史拼写，内容是再编码一层的 JSON 字符串，
// 例如 "[\"alice\"]"，用 Receivers 方法取解码后的列表。
type RedPacketMessage struct {
	MsgType  string         `json:"msgType"`
	OID      string         `json:"oId,omitempty"`
	Msg      string         `json:"msg"`
	Type     string         `json:"type"`
	SenderID string         `json:"senderId,omitempty"`
	Money    int            `json:"money"`
	Count    int            `json:"count"`
	Got      int            `json:"got"`
	Recivers string         `json:"recivers"`
	Who      []RedPacketGot `json:"who,omitempty"`
	Gesture  *Gesture       `json:"gesture,omitempty"`
	UserName string         `json:"userName,omitempty"`
}

// Receivers 解码专属红包的接收者列表
func (m *RedPacketMessage) Receivers() []string {
	if m.Recivers == "" {
		return nil
	}
	var names []string
	if err := json.Unmarshal([]byte(m.Recivers), &names); err != nil {
		return nil
	}
	return names
}

// SetReceivers 编码接收者列表
func (m *RedPacketMessage) SetReceivers(names []string) {
	if names == nil {
		names = []string{}
	}
	data, _ := json.Marshal(names)
	m.Recivers = string(data)
}

// RedPacketGot 单条领取记录
type RedPacketGot struct {
	UserID    string `json:"userId"`
	UserName  string `json:"userName"`
	Avatar    string `json:"avatar"`
	UserMoney int    `json:"userMoney"`
	Time      string `json:"time"`
}

// RedPacketBase 红包概要
type RedPacketBase struct {
	Count         int      `json:"count"`
	Got           int      `json:"got"`
	Msg           string   `json:"msg"`
	UserName      string   `json:"userName"`
	UserAvatarURL string   `json:"userAvatarURL"`
	Gesture       *Gesture `json:"gesture,omitempty"`
}

// RedPacketInfo 打开红包后的完整信息
type RedPacketInfo struct {
	Info     RedPacketBase  `json:"info"`
	Recivers []string       `json:"recivers"`
	Who      []RedPacketGot `json:"who"`
}

// RedPacketStatus 红包领取进度广播
type RedPacketStatus struct {
	OID              string `json:"oId"`
	Count            int    `json:"count"`
	Got              int    `json:"got"`
	WhoGive          string `json:"whoGive"`
	WhoGot           string `json:"whoGot"`
	UserAvatarURL20  string `json:"avatarURL20"`
	UserAvatarURL48  string `json:"avatarURL48"`
	UserAvatarURL210 string `json:"avatarURL210"`
}
