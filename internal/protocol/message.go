package protocol

import (
	"encoding/json"
	"strings"
)

// ChatRoomUser 聊天室在线用户
type ChatRoomUser struct {
	OID           string `json:"oId"`
	UserName      string `json:"userName"`
	UserNickname  string `json:"userNickname"`
	UserAvatarURL string `json:"userAvatarURL"`
	Homepage      string `json:"homePage"`
}

// AllName 返回完整展示名，有昵称时格式为 昵称(用户名)
func (u *ChatRoomUser) AllName() string {
	if u.UserNickname != "" {
		return u.UserNickname + "(" + u.UserName + ")"
	}
	return u.UserName
}

// ChatRoomMessage 聊天室消息
type ChatRoomMessage struct {
	OID           string `json:"oId"`
	UserOID       int64  `json:"userOId"`
	UserName      string `json:"userName"`
	UserNickname  string `json:"userNickname"`
	UserAvatarURL string `json:"userAvatarURL"`
	SysMetal      string `json:"sysMetal"`
	Content       string `json:"content"`
	MD            string `json:"md"`
	Time          string `json:"time"`
	Type          string `json:"type"`
	Client        string `json:"client"`

	// 特殊载荷，Classify 填充，互斥
	RedPacket *RedPacketMessage `json:"-"`
	Weather   *WeatherMsg       `json:"-"`
	Music     *MusicMsg         `json:"-"`
}

// AllName 返回完整展示名，有昵称时格式为 昵称(用户名)
func (m *ChatRoomMessage) AllName() string {
	if m.UserNickname != "" {
		return m.UserNickname + "(" + m.UserName + ")"
	}
	return m.UserName
}

// IsRedPacket 判断是否为红包消息
func (m *ChatRoomMessage) IsRedPacket() bool { return m.RedPacket != nil }

// IsWeather 判断是否为天气消息
func (m *ChatRoomMessage) IsWeather() bool { return m.Weather != nil }

// IsMusic 判断是否为音乐消息
func (m *ChatRoomMessage) IsMusic() bool { return m.Music != nil }

const (
	redPacketOpen  = "[redpacket]"
	redPacketClose = "[/redpacket]"
)

// Classify 识别消息中的特殊载荷
//
// 识别顺序固定：先探测 md 中的天气载荷，再尝试把 content 整体按
// msgType 解析，最后回退到 [redpacket] 包裹形式。全程尽力而为，
// 解析失败只是当作普通消息，不报错。重复调用无副作用。
func (m *ChatRoomMessage) Classify() {
	if m.RedPacket != nil || m.Weather != nil || m.Music != nil {
		return
	}

	// 天气消息的结构化数据在 md 字段里
	if strings.Contains(m.MD, `"msgType":"weather"`) {
		var w WeatherMsg
		if err := json.Unmarshal([]byte(m.MD), &w); err == nil && w.MsgType == "weather" {
			m.Weather = &w
			return
		}
	}

	trimmed := strings.TrimSpace(m.Content)
	if strings.HasPrefix(trimmed, "{") {
		var probe struct {
			MsgType string `json:"msgType"`
		}
		if err := json.Unmarshal([]byte(trimmed), &probe); err == nil {
			switch probe.MsgType {
			case "redPacket":
				var rp RedPacketMessage
				if json.Unmarshal([]byte(trimmed), &rp) == nil {
					if rp.OID == "" {
						rp.OID = m.OID
					}
					m.RedPacket = &rp
					return
				}
			case "weather":
				var w WeatherMsg
				if json.Unmarshal([]byte(trimmed), &w) == nil {
					m.Weather = &w
					return
				}
			case "music":
				var mu MusicMsg
				if json.Unmarshal([]byte(trimmed), &mu) == nil {
					m.Music = &mu
					return
				}
			}
		}
	}

	// 老版本红包以 [redpacket]{...}[/redpacket] 形式内嵌在正文里
	start := strings.Index(m.Content, redPacketOpen)
	end := strings.Index(m.Content, redPacketClose)
	if start >= 0 && end > start {
		raw := m.Content[start+len(redPacketOpen) : end]
		var rp RedPacketMessage
		if json.Unmarshal([]byte(raw), &rp) == nil {
			if rp.OID == "" {
				rp.OID = m.OID
			}
			m.RedPacket = &rp
		}
	}
}

// WeatherMsg 天气消息载荷
//
// 多日数据以逗号分隔字符串下发，Days 负责按日展开。
type WeatherMsg struct {
	MsgType     string `json:"msgType"`
	Type        string `json:"type"`
	Title       string `json:"t"`
	SubTitle    string `json:"st"`
	Date        string `json:"date"`
	WeatherCode string `json:"weatherCode"`
	Min         string `json:"min"`
	Max         string `json:"max"`
}

// WeatherDay 单日天气
type WeatherDay struct {
	Date string
	Code string
	Min  string
	Max  string
}

// Days 将逗号分隔的多日字段展开为逐日数据
//
// 各字段长度不一致时按最短的截断。
func (w *WeatherMsg) Days() []WeatherDay {
	dates := strings.Split(w.Date, ",")
	codes := strings.Split(w.WeatherCode, ",")
	mins := strings.Split(w.Min, ",")
	maxs := strings.Split(w.Max, ",")

	n := len(dates)
	for _, l := range []int{len(codes), len(mins), len(maxs)} {
		if l < n {
			n = l
		}
	}

	days := make([]WeatherDay, 0, n)
	for i := 0; i < n; i++ {
		days = append(days, WeatherDay{
			Date: strings.TrimSpace(dates[i]),
			Code: strings.TrimSpace(codes[i]),
			Min:  strings.TrimSpace(mins[i]),
			Max:  strings.TrimSpace(maxs[i]),
		})
	}
	return days
}

// MusicMsg 音乐分享消息载荷
type MusicMsg struct {
	MsgType  string `json:"msgType"`
	Type     string `json:"type"`
	Source   string `json:"source"`
	CoverURL string `json:"coverURL"`
	Title    string `json:"title"`
	From     string `json:"from"`
}

// BarragerMsg 弹幕消息
type BarragerMsg struct {
	UserName         string `json:"userName"`
	UserNickname     string `json:"userNickname"`
	Content          string `json:"barragerContent"`
	Color            string `json:"barragerColor"`
	UserAvatarURL    string `json:"userAvatarURL"`
	UserAvatarURL20  string `json:"userAvatarURL20"`
	UserAvatarURL48  string `json:"userAvatarURL48"`
	UserAvatarURL210 string `json:"userAvatarURL210"`
}

// AllName 返回完整展示名
func (b *BarragerMsg) AllName() string {
	if b.UserNickname != "" {
		return b.UserNickname + "(" + b.UserName + ")"
	}
	return b.UserName
}
