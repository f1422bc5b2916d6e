package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/fishpi/gofish/internal/protocol"
	"github.com/fishpi/gofish/pkg/metrics"
)

// SendRedPacket 发红包，线上格式是标记包裹的 JSON 走普通发送接口
func (c *Client) SendRedPacket(ctx context.Context, msg *protocol.RedPacketMessage) error {
	msg.MsgType = "redPacket"
	if msg.Recivers == "" {
		msg.SetReceivers(nil)
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode red packet: %w", err)
	}
	return c.ChatroomSend(ctx, "[redpacket]"+string(data)+"[/redpacket]")
}

// OpenRedPacket 打开红包，猜拳红包必须携带手势
func (c *Client) OpenRedPacket(ctx context.Context, oid string, gesture *protocol.Gesture) (*protocol.RedPacketInfo, error) {
	token, err := c.RequireToken()
	if err != nil {
		return nil, err
	}

	payload := map[string]any{
		"oId":    oid,
		"apiKey": token,
	}
	if gesture != nil {
		payload["gesture"] = int(*gesture)
	}

	var resp struct {
		Result
		Info     protocol.RedPacketBase  `json:"info"`
		Recivers json.RawMessage         `json:"recivers"`
		Who      []protocol.RedPacketGot `json:"who"`
	}
	if err := c.Post(ctx, "chat-room/red-packet/open", payload, &resp); err != nil {
		metrics.RedPacketOpened.WithLabelValues("error").Inc()
		return nil, err
	}
	if !resp.Ok() && resp.Info.Count == 0 {
		err := resp.Err("chat-room/red-packet/open")
		if errors.Is(err, ErrPacketExhausted) {
			metrics.RedPacketOpened.WithLabelValues("exhausted").Inc()
		} else {
			metrics.RedPacketOpened.WithLabelValues("rejected").Inc()
		}
		return nil, err
	}

	info := &protocol.RedPacketInfo{
		Info: resp.Info,
		Who:  resp.Who,
	}
	// recivers 字段两种形态都出现过：数组或再编码一层的字符串
	if len(resp.Recivers) > 0 {
		if json.Unmarshal(resp.Recivers, &info.Recivers) != nil {
			var nested string
			if json.Unmarshal(resp.Recivers, &nested) == nil {
				_ = json.Unmarshal([]byte(nested), &info.Recivers)
			}
		}
	}

	metrics.RedPacketOpened.WithLabelValues("ok").Inc()
	return info, nil
}
