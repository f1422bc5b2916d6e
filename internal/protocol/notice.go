package protocol

import (
	"encoding/json"
	"fmt"
	"strings"
)

// 通知分类，对应通知列表接口的 type 参数
const (
	NoticeTypePoint       = "point"
	NoticeTypeCommented   = "commented"
	NoticeTypeReply       = "reply"
	NoticeTypeAt          = "at"
	NoticeTypeFollowing   = "following"
	NoticeTypeBroadcast   = "broadcast"
	NoticeTypeSysAnnounce = "sys-announce"
)

// NoticeMsg 通知频道消息
type NoticeMsg struct {
	Command           string `json:"command"`
	UserID            string `json:"userId"`
	Count             int    `json:"count"`
	WarnBroadcastText string `json:"warnBroadcastText"`
	Who               string `json:"who"`
	Preview           string `json:"preview"`
	SenderAvatar      string `json:"senderAvatar"`
	SenderUserName    string `json:"senderUserName"`
}

// DecodeNotice 解码通知频道的下行帧，未知命令丢弃
func DecodeNotice(raw []byte) (Event, error) {
	text := strings.TrimSpace(string(raw))
	if text == "heartbeat" || text == "pong" || text == "" {
		return nil, ErrKeepalive
	}

	var n NoticeMsg
	if err := json.Unmarshal(raw, &n); err != nil {
		return nil, fmt.Errorf("decode notice frame: %w", err)
	}

	switch n.Command {
	case CmdRefreshNotification, CmdWarnBroadcast, CmdNewIdleChatMessage:
		return &NoticeEvent{Notice: n}, nil
	default:
		return nil, fmt.Errorf("%w: command %q", ErrUnknownType, n.Command)
	}
}

// NoticeCount 未读通知计数
//
// userNotifyStatus 服务端用 0/1 表示，解码后转成 bool。
type NoticeCount struct {
	NotifyStatus          bool `json:"-"`
	UnreadNotificationCnt int  `json:"unreadNotificationCnt"`
	UnreadReplyCnt        int  `json:"unreadReplyNotificationCnt"`
	UnreadPointCnt        int  `json:"unreadPointNotificationCnt"`
	UnreadAtCnt           int  `json:"unreadAtNotificationCnt"`
	UnreadBroadcastCnt    int  `json:"unreadBroadcastNotificationCnt"`
	UnreadSysAnnounceCnt  int  `json:"unreadSysAnnounceNotificationCnt"`
	UnreadNewFollowerCnt  int  `json:"unreadNewFollowerNotificationCnt"`
	UnreadFollowingCnt    int  `json:"unreadFollowingNotificationCnt"`
	UnreadCommentedCnt    int  `json:"unreadCommentedNotificationCnt"`
}

// UnmarshalJSON 处理 userNotifyStatus 的 0/1 编码
func (c *NoticeCount) UnmarshalJSON(data []byte) error {
	type alias NoticeCount
	var aux struct {
		alias
		UserNotifyStatus int `json:"userNotifyStatus"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*c = NoticeCount(aux.alias)
	c.NotifyStatus = aux.UserNotifyStatus != 0
	return nil
}

// NoticePoint 积分通知
type NoticePoint struct {
	OID         string `json:"oId"`
	DataID      string `json:"dataId"`
	UserID      string `json:"userId"`
	DataType    int    `json:"dataType"`
	Description string `json:"description"`
	HasRead     bool   `json:"hasRead"`
	CreateTime  string `json:"createTime"`
}

// NoticeCommented 评论通知
type NoticeCommented struct {
	OID                       string `json:"oId"`
	CommentAuthorName         string `json:"commentAuthorName"`
	CommentAuthorThumbnailURL string `json:"commentAuthorThumbnailURL"`
	CommentArticleTitle       string `json:"commentArticleTitle"`
	CommentArticlePermalink   string `json:"commentArticlePermalink"`
	CommentContent            string `json:"commentContent"`
	CommentCreateTime         string `json:"commentCreateTime"`
	HasRead                   bool   `json:"hasRead"`
}

// NoticeAt @提及通知
type NoticeAt struct {
	OID           string `json:"oId"`
	Content       string `json:"content"`
	UserName      string `json:"userName"`
	UserAvatarURL string `json:"userAvatarURL"`
	DeleteFlag    bool   `json:"deleted"`
	HasRead       bool   `json:"hasRead"`
	CreateTime    string `json:"createTime"`
}

// NoticeFollow 关注者动态通知
type NoticeFollow struct {
	OID          string `json:"oId"`
	URL          string `json:"url"`
	Content      string `json:"content"`
	AuthorName   string `json:"authorName"`
	ThumbnailURL string `json:"thumbnailURL"`
	Title        string `json:"articleTitle"`
	IsComment    bool   `json:"isComment"`
	HasRead      bool   `json:"hasRead"`
	CreateTime   string `json:"createTime"`
}

// NoticeSystem 系统公告通知
type NoticeSystem struct {
	OID         string `json:"oId"`
	UserID      string `json:"userId"`
	DataID      string `json:"dataId"`
	DataType    int    `json:"dataType"`
	Description string `json:"description"`
	HasRead     bool   `json:"hasRead"`
	CreateTime  string `json:"createTime"`
}
