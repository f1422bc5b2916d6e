package api

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/fishpi/gofish/internal/protocol"
)

// ChatListItem 私聊会话列表项，即与每个对端的最近一条消息
type ChatListItem struct {
	OID              string `json:"oId"`
	FromID           string `json:"fromId"`
	ToID             string `json:"toId"`
	Preview          string `json:"preview"`
	SenderAvatar     string `json:"senderAvatar"`
	ReceiverAvatar   string `json:"receiverAvatar"`
	SenderUserName   string `json:"senderUserName"`
	ReceiverUserName string `json:"receiverUserName"`
	Markdown         string `json:"markdown"`
	Content          string `json:"content"`
	Time             string `json:"time"`
}

// ChatList 拉取私聊会话列表
func (c *Client) ChatList(ctx context.Context) ([]ChatListItem, error) {
	token, err := c.RequireToken()
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("apiKey", token)

	var resp struct {
		Result
		Data []ChatListItem `json:"data"`
	}
	if err := c.Get(ctx, "chat/get-list", params, &resp); err != nil {
		return nil, err
	}
	if err := checkResult("chat/get-list", &resp.Result); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// ChatHistory 拉取与某用户的私聊历史，拉取成功后顺手标记已读
func (c *Client) ChatHistory(ctx context.Context, toUser string, page, pageSize int) ([]protocol.ChatData, error) {
	token, err := c.RequireToken()
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("apiKey", token)
	params.Set("toUser", toUser)
	params.Set("page", strconv.Itoa(page))
	params.Set("pageSize", strconv.Itoa(pageSize))

	var resp struct {
		Result
		Data []protocol.ChatData `json:"data"`
	}
	if err := c.Get(ctx, "chat/get-message", params, &resp); err != nil {
		return nil, err
	}
	if err := checkResult("chat/get-message", &resp.Result); err != nil {
		return nil, err
	}

	for i := range resp.Data {
		resp.Data[i].Content = strings.TrimSuffix(strings.TrimPrefix(resp.Data[i].Content, "<p>"), "</p>")
	}

	// 标记已读失败不影响历史查询本身
	_ = c.ChatMarkRead(ctx, toUser)
	return resp.Data, nil
}

// ChatMarkRead 标记来自某用户的私聊消息为已读
func (c *Client) ChatMarkRead(ctx context.Context, fromUser string) error {
	token, err := c.RequireToken()
	if err != nil {
		return err
	}

	params := url.Values{}
	params.Set("apiKey", token)
	params.Set("fromUser", fromUser)

	var resp Result
	if err := c.Get(ctx, "chat/mark-as-read", params, &resp); err != nil {
		return err
	}
	return checkResult("chat/mark-as-read", &resp)
}

// ChatHasUnread 查询是否有未读私聊消息
func (c *Client) ChatHasUnread(ctx context.Context) (bool, error) {
	token, err := c.RequireToken()
	if err != nil {
		return false, err
	}

	params := url.Values{}
	params.Set("apiKey", token)

	var resp struct {
		Result
		Data []protocol.ChatNotice `json:"data"`
	}
	if err := c.Get(ctx, "chat/has-unread", params, &resp); err != nil {
		return false, err
	}
	if err := checkResult("chat/has-unread", &resp.Result); err != nil {
		return false, err
	}
	return len(resp.Data) > 0, nil
}

// ChatRevoke 撤回一条私聊消息
func (c *Client) ChatRevoke(ctx context.Context, oid string) error {
	token, err := c.RequireToken()
	if err != nil {
		return err
	}

	payload := map[string]string{
		"oId":    oid,
		"apiKey": token,
	}
	var resp Result
	if err := c.Post(ctx, "chat/revoke", payload, &resp); err != nil {
		return err
	}
	return checkResult("chat/revoke", &resp)
}

// ChatChannelURL 构造与某用户的私聊频道地址
func (c *Client) ChatChannelURL(toUser string) (string, error) {
	token, err := c.RequireToken()
	if err != nil {
		return "", err
	}
	q := url.Values{}
	q.Set("apiKey", token)
	q.Set("toUser", toUser)
	return c.WebSocketURL("chat-channel?" + q.Encode()), nil
}

// UserChannelURL 构造用户通知频道地址
func (c *Client) UserChannelURL() (string, error) {
	token, err := c.RequireToken()
	if err != nil {
		return "", err
	}
	q := url.Values{}
	q.Set("apiKey", token)
	return c.WebSocketURL("user-channel?" + q.Encode()), nil
}
