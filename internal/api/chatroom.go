package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/fishpi/gofish/internal/protocol"
	"github.com/fishpi/gofish/pkg/logger"
	"go.uber.org/zap"
)

// HistoryMode 历史消息查询方向
type HistoryMode string

// 查询方向取值与服务端一致
const (
	ModeContext HistoryMode = "Context"
	ModeBefore  HistoryMode = "Before"
	ModeAfter   HistoryMode = "After"
)

// ContentType 历史消息内容格式
type ContentType string

const (
	ContentHTML     ContentType = "html"
	ContentMarkdown ContentType = "md"
)

// ChatroomHistory 分页拉取聊天室历史消息
func (c *Client) ChatroomHistory(ctx context.Context, page int, typ ContentType) ([]protocol.ChatRoomMessage, error) {
	token, err := c.RequireToken()
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("page", strconv.Itoa(page))
	params.Set("type", string(typ))
	params.Set("apiKey", token)

	var resp Result
	if err := c.Get(ctx, "chat-room/more", params, &resp); err != nil {
		return nil, err
	}
	if err := checkResult("chat-room/more", &resp); err != nil {
		return nil, err
	}
	return decodeMessages("chat-room/more", resp.Data)
}

// ChatroomMessagesAround 以某条消息为锚点查询上下文
func (c *Client) ChatroomMessagesAround(ctx context.Context, oid string, mode HistoryMode, size int, typ ContentType) ([]protocol.ChatRoomMessage, error) {
	token, err := c.RequireToken()
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("oId", oid)
	params.Set("mode", string(mode))
	params.Set("size", strconv.Itoa(size))
	params.Set("type", string(typ))
	params.Set("apiKey", token)

	var resp Result
	if err := c.Get(ctx, "chat-room/getMessage", params, &resp); err != nil {
		return nil, err
	}
	if err := checkResult("chat-room/getMessage", &resp); err != nil {
		return nil, err
	}
	return decodeMessages("chat-room/getMessage", resp.Data)
}

func decodeMessages(endpoint string, data json.RawMessage) ([]protocol.ChatRoomMessage, error) {
	var msgs []protocol.ChatRoomMessage
	if err := json.Unmarshal(data, &msgs); err != nil {
		return nil, fmt.Errorf("decode %s data: %w", endpoint, err)
	}
	for i := range msgs {
		msgs[i].Classify()
	}
	return msgs, nil
}

// ChatroomSend 发送聊天室消息
func (c *Client) ChatroomSend(ctx context.Context, content string) error {
	token, err := c.RequireToken()
	if err != nil {
		return err
	}

	payload := map[string]string{
		"content": content,
		"apiKey":  token,
	}
	var resp Result
	if err := c.Post(ctx, "chat-room/send", payload, &resp); err != nil {
		return err
	}
	return checkResult("chat-room/send", &resp)
}

// ChatroomRevoke 撤回聊天室消息
func (c *Client) ChatroomRevoke(ctx context.Context, oid string) error {
	token, err := c.RequireToken()
	if err != nil {
		return err
	}

	payload := map[string]string{"apiKey": token}
	var resp Result
	if err := c.Delete(ctx, "chat-room/revoke/"+oid, payload, &resp); err != nil {
		return err
	}
	return checkResult("chat-room/revoke", &resp)
}

// SendBarrage 发送弹幕，内容以专用标记包裹后走普通发送接口
func (c *Client) SendBarrage(ctx context.Context, content, color string) error {
	inner, err := json.Marshal(map[string]string{
		"color":   color,
		"content": content,
	})
	if err != nil {
		return fmt.Errorf("encode barrage: %w", err)
	}
	return c.ChatroomSend(ctx, "[barrager]"+string(inner)+"[/barrager]")
}

// SetDiscuss 设置聊天室话题
func (c *Client) SetDiscuss(ctx context.Context, topic string) error {
	return c.ChatroomSend(ctx, "[setdiscuss]"+topic+"[/setdiscuss]")
}

// BarrageCost 弹幕单价
type BarrageCost struct {
	Value int
	Unit  string
}

var barrageCostRE = regexp.MustCompile(`>发送弹幕每次将花费\s*<b>([-0-9]+)</b>\s*([^<]*?)</div>`)

// GetBarrageCost 从聊天室页面解析弹幕单价
//
// 页面结构变化导致解析不到时回退默认 20 积分。
func (c *Client) GetBarrageCost(ctx context.Context) (BarrageCost, error) {
	fallback := BarrageCost{Value: 20, Unit: "积分"}

	params := url.Values{}
	if token := c.Token(); token != "" {
		params.Set("apiKey", token)
	}
	page, err := c.GetText(ctx, "cr", params)
	if err != nil {
		return fallback, err
	}

	m := barrageCostRE.FindStringSubmatch(page)
	if m == nil {
		logger.Debug("barrage cost pattern not found, using default")
		return fallback, nil
	}
	value, err := strconv.Atoi(m[1])
	if err != nil {
		return fallback, nil
	}
	unit := strings.TrimSpace(m[2])
	if unit == "" {
		unit = fallback.Unit
	}
	return BarrageCost{Value: value, Unit: unit}, nil
}

// MuteItem 禁言中的成员
type MuteItem struct {
	UserName      string `json:"userName"`
	UserNickname  string `json:"userNickname"`
	UserAvatarURL string `json:"userAvatarURL"`
	Time          int64  `json:"time"`
}

// ChatroomMutes 查询当前禁言中的成员
func (c *Client) ChatroomMutes(ctx context.Context) ([]MuteItem, error) {
	var resp struct {
		Result
		Data []MuteItem `json:"data"`
	}
	if err := c.Get(ctx, "chat-room/si-guo-list", nil, &resp); err != nil {
		return nil, err
	}
	if err := checkResult("chat-room/si-guo-list", &resp.Result); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

var htmlCommentRE = regexp.MustCompile(`<!--[\s\S]*?-->`)

// ChatroomRaw 获取消息的 markdown 原文
func (c *Client) ChatroomRaw(ctx context.Context, oid string) (string, error) {
	text, err := c.GetText(ctx, "cr/raw/"+oid, nil)
	if err != nil {
		return "", err
	}
	return htmlCommentRE.ReplaceAllString(text, ""), nil
}

// ChatroomNode 可用的聊天室节点
type ChatroomNode struct {
	Node   string `json:"node"`
	Name   string `json:"name"`
	Online int    `json:"online"`
	Weight int    `json:"weight"`
}

// NodeInfo 节点发现结果
type NodeInfo struct {
	Recommended string
	Name        string
	Available   []ChatroomNode
}

// ChatroomNodeGet 节点发现，推荐地址用于建立聊天室连接
//
// 服务端可能随响应下发刷新后的 apiKey，这里直接采纳。
func (c *Client) ChatroomNodeGet(ctx context.Context) (*NodeInfo, error) {
	token, err := c.RequireToken()
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("apiKey", token)

	var resp struct {
		Code      *int           `json:"code"`
		Msg       string         `json:"msg"`
		Data      string         `json:"data"`
		Name      string         `json:"name"`
		APIKey    string         `json:"apiKey"`
		Avaliable []ChatroomNode `json:"avaliable"`
	}
	if err := c.Get(ctx, "chat-room/node/get", params, &resp); err != nil {
		return nil, err
	}
	if resp.Code == nil || *resp.Code != 0 {
		code := 0
		if resp.Code != nil {
			code = *resp.Code
		}
		return nil, &Error{Endpoint: "chat-room/node/get", Code: code, Msg: resp.Msg}
	}

	if resp.APIKey != "" && resp.APIKey != token {
		logger.Info("adopting refreshed api key from node discovery",
			zap.String("node", resp.Name),
		)
		c.SetToken(resp.APIKey)
	}

	return &NodeInfo{
		Recommended: resp.Data,
		Name:        resp.Name,
		Available:   resp.Avaliable,
	}, nil
}

// ChatroomChannelURL 节点发现并补全聊天室频道地址
//
// 推荐地址不一定自带 apiKey，缺失时补上当前 token。节点发现可能
// 刚刷新过 token，所以追加动作放在发现之后。
func (c *Client) ChatroomChannelURL(ctx context.Context) (string, error) {
	node, err := c.ChatroomNodeGet(ctx)
	if err != nil {
		return "", err
	}

	addr := node.Recommended
	if strings.Contains(addr, "apiKey=") {
		return addr, nil
	}
	sep := "?"
	if strings.Contains(addr, "?") {
		sep = "&"
	}
	return addr + sep + "apiKey=" + url.QueryEscape(c.Token()), nil
}
