package api

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"

	"github.com/fishpi/gofish/internal/protocol"
)

// NoticeUnreadCount 查询各分类的未读通知数
func (c *Client) NoticeUnreadCount(ctx context.Context) (*protocol.NoticeCount, error) {
	token, err := c.RequireToken()
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("apiKey", token)

	var count protocol.NoticeCount
	if err := c.Get(ctx, "notifications/unread/count", params, &count); err != nil {
		return nil, err
	}
	return &count, nil
}

// NoticeList 分页拉取某分类的通知
//
// 不同分类的条目结构不同，这里返回原始条目由调用方按分类解码，
// 常用分类有 DecodePointNotices 等便捷方法。
func (c *Client) NoticeList(ctx context.Context, typ string, page int) ([]json.RawMessage, error) {
	token, err := c.RequireToken()
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("apiKey", token)
	params.Set("type", typ)
	params.Set("p", strconv.Itoa(page))

	var resp struct {
		Result
		Data []json.RawMessage `json:"data"`
	}
	if err := c.Get(ctx, "api/getNotifications", params, &resp); err != nil {
		return nil, err
	}
	if err := checkResult("api/getNotifications", &resp.Result); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// NoticeMakeRead 标记某分类的通知为已读
func (c *Client) NoticeMakeRead(ctx context.Context, typ string) error {
	token, err := c.RequireToken()
	if err != nil {
		return err
	}

	params := url.Values{}
	params.Set("apiKey", token)

	var resp Result
	if err := c.Get(ctx, "notifications/make-read/"+typ, params, &resp); err != nil {
		return err
	}
	return checkResult("notifications/make-read", &resp)
}

// NoticeReadAll 标记全部通知为已读
func (c *Client) NoticeReadAll(ctx context.Context) error {
	token, err := c.RequireToken()
	if err != nil {
		return err
	}

	params := url.Values{}
	params.Set("apiKey", token)

	var resp Result
	if err := c.Get(ctx, "notifications/all-read", params, &resp); err != nil {
		return err
	}
	return checkResult("notifications/all-read", &resp)
}

// DecodePointNotices 解码积分通知条目
func DecodePointNotices(items []json.RawMessage) ([]protocol.NoticePoint, error) {
	return decodeNotices[protocol.NoticePoint](items)
}

// DecodeCommentedNotices 解码评论通知条目
func DecodeCommentedNotices(items []json.RawMessage) ([]protocol.NoticeCommented, error) {
	return decodeNotices[protocol.NoticeCommented](items)
}

// DecodeAtNotices 解码提及通知条目
func DecodeAtNotices(items []json.RawMessage) ([]protocol.NoticeAt, error) {
	return decodeNotices[protocol.NoticeAt](items)
}

// DecodeFollowNotices 解码关注动态通知条目
func DecodeFollowNotices(items []json.RawMessage) ([]protocol.NoticeFollow, error) {
	return decodeNotices[protocol.NoticeFollow](items)
}

// DecodeSystemNotices 解码系统公告条目
func DecodeSystemNotices(items []json.RawMessage) ([]protocol.NoticeSystem, error) {
	return decodeNotices[protocol.NoticeSystem](items)
}

func decodeNotices[T any](items []json.RawMessage) ([]T, error) {
	out := make([]T, 0, len(items))
	for _, raw := range items {
		var item T
		if err := json.Unmarshal(raw, &item); err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, nil
}
