// Package chatroom 提供聊天室服务
//
// 组合 REST 接口和实时频道：连接走节点发现拿推荐地址，本地维护
// 在线名单、话题和红包缓存，消息事件并发分发给业务监听器。
package chatroom

import (
	"context"
	"sync"

	"github.com/fishpi/gofish/internal/api"
	"github.com/fishpi/gofish/internal/protocol"
	"github.com/fishpi/gofish/internal/redpacket"
	"github.com/fishpi/gofish/internal/session"
	"github.com/fishpi/gofish/pkg/config"
	"github.com/fishpi/gofish/pkg/logger"
)

// Service 聊天室服务
type Service struct {
	client *api.Client
	sess   *session.Session
	cache  *redpacket.Cache

	mu          sync.RWMutex
	users       []protocol.ChatRoomUser
	onlineCount int
	topic       string
}

// NewService 创建聊天室服务
func NewService(client *api.Client, cfg *config.ClientConfig, cache *redpacket.Cache) *Service {
	s := &Service{
		client: client,
		cache:  cache,
	}
	s.sess = session.New(session.Options{
		Channel: "chatroom",
		URL: func(ctx context.Context) (string, error) {
			// 每次连接都重新做节点发现，重连时可能换到别的节点
			return client.ChatroomChannelURL(ctx)
		},
		Decode:    protocol.DecodeChatroom,
		UserAgent: cfg.API.UserAgent,
		WebSocket: cfg.WebSocket,
		Reconnect: cfg.Reconnect,
		StateHook: s.apply,
	})
	return s
}

// apply 在分发前同步维护本地状态
func (s *Service) apply(event protocol.Event) {
	switch e := event.(type) {
	case *protocol.OnlineUsersEvent:
		s.mu.Lock()
		s.users = e.Users
		s.onlineCount = e.OnlineCount
		s.topic = e.Discussing
		s.mu.Unlock()

	case *protocol.DiscussChangedEvent:
		s.mu.Lock()
		s.topic = e.NewDiscuss
		s.mu.Unlock()

	case *protocol.MessageEvent:
		if s.cache != nil && e.Message.IsRedPacket() {
			s.cache.Put(e.Message.OID, e.Message.RedPacket)
		}

	case *protocol.RedPacketStatusEvent:
		if s.cache != nil {
			s.cache.Reconcile(e.Status)
		}
	}
}

// OnEvent 注册事件监听器
func (s *Service) OnEvent(fn session.Listener) {
	s.sess.OnEvent(fn)
}

// OnError 注册连接级错误监听器
func (s *Service) OnError(fn session.ErrorListener) {
	s.sess.OnError(fn)
}

// Connect 建立聊天室连接，没有监听器时拒绝
func (s *Service) Connect(ctx context.Context) error {
	return s.sess.Connect(ctx)
}

// IsConnected 返回连接状态
func (s *Service) IsConnected() bool {
	return s.sess.IsConnected()
}

// Disconnect 断开连接并清空本地状态和监听器
func (s *Service) Disconnect() {
	s.sess.Disconnect()
	s.sess.ClearListeners()

	s.mu.Lock()
	s.users = nil
	s.onlineCount = 0
	s.topic = ""
	s.mu.Unlock()

	if s.cache != nil {
		s.cache.Clear()
	}
	logger.Info("chatroom state cleared")
}

// OnlineUsers 返回在线名单快照
func (s *Service) OnlineUsers() []protocol.ChatRoomUser {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]protocol.ChatRoomUser, len(s.users))
	copy(out, s.users)
	return out
}

// OnlineCount 返回在线人数
func (s *Service) OnlineCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.onlineCount
}

// Topic 返回当前话题
func (s *Service) Topic() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.topic
}

// Send 发送聊天室消息
func (s *Service) Send(ctx context.Context, content string) error {
	return s.client.ChatroomSend(ctx, content)
}

// Reply 发送带引用的回复
func (s *Service) Reply(ctx context.Context, reply string, quoted *protocol.ChatRoomMessage) error {
	preview := protocol.StripChatHTML(quoted.Content)
	content := protocol.BuildReply(reply, quoted.UserName, quoted.OID, preview)
	return s.client.ChatroomSend(ctx, content)
}

// Revoke 撤回消息
func (s *Service) Revoke(ctx context.Context, oid string) error {
	return s.client.ChatroomRevoke(ctx, oid)
}

// SendBarrage 发送弹幕
func (s *Service) SendBarrage(ctx context.Context, content, color string) error {
	return s.client.SendBarrage(ctx, content, color)
}

// BarrageCost 查询弹幕单价
func (s *Service) BarrageCost(ctx context.Context) (api.BarrageCost, error) {
	return s.client.GetBarrageCost(ctx)
}

// SetTopic 设置话题
func (s *Service) SetTopic(ctx context.Context, topic string) error {
	return s.client.SetDiscuss(ctx, topic)
}

// History 分页拉取历史消息
func (s *Service) History(ctx context.Context, page int) ([]protocol.ChatRoomMessage, error) {
	return s.client.ChatroomHistory(ctx, page, api.ContentHTML)
}

// MessagesAround 以某条消息为锚点查询上下文
func (s *Service) MessagesAround(ctx context.Context, oid string, mode api.HistoryMode, size int) ([]protocol.ChatRoomMessage, error) {
	return s.client.ChatroomMessagesAround(ctx, oid, mode, size, api.ContentHTML)
}

// Mutes 查询禁言名单
func (s *Service) Mutes(ctx context.Context) ([]api.MuteItem, error) {
	return s.client.ChatroomMutes(ctx)
}

// Raw 获取消息的 markdown 原文
func (s *Service) Raw(ctx context.Context, oid string) (string, error) {
	return s.client.ChatroomRaw(ctx, oid)
}
