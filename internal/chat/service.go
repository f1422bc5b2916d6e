// Package chat 提供私聊服务
//
// 每个对端用户名对应一条独立的私聊频道，由注册表统一管理，
// 通知频道用保留的哨兵 key 复用同一套会话设施。
package chat

import (
	"context"
	"fmt"

	"github.com/fishpi/gofish/internal/api"
	"github.com/fishpi/gofish/internal/protocol"
	"github.com/fishpi/gofish/internal/session"
	"github.com/fishpi/gofish/pkg/config"
)

// UserChannelKey 通知频道在注册表中的保留 key，不能当用户名用
const UserChannelKey = "_user-channel_"

// ErrReservedKey 对端用户名不能与保留 key 冲突
var ErrReservedKey = fmt.Errorf("chat: %q is a reserved key", UserChannelKey)

// Service 私聊服务
type Service struct {
	client   *api.Client
	cfg      *config.ClientConfig
	registry *session.Registry
}

// NewService 创建私聊服务
func NewService(client *api.Client, cfg *config.ClientConfig) *Service {
	return &Service{
		client:   client,
		cfg:      cfg,
		registry: session.NewRegistry(),
	}
}

// Registry 返回底层会话注册表
func (s *Service) Registry() *session.Registry {
	return s.registry
}

// Session 返回与某用户的私聊会话，按需创建
func (s *Service) Session(toUser string) (*session.Session, error) {
	if toUser == UserChannelKey {
		return nil, ErrReservedKey
	}
	sess := s.registry.GetOrCreate(toUser, func() *session.Session {
		return session.New(session.Options{
			Channel: "chat:" + toUser,
			URL: func(ctx context.Context) (string, error) {
				return s.client.ChatChannelURL(toUser)
			},
			Decode:    protocol.DecodeChat,
			UserAgent: s.cfg.API.UserAgent,
			WebSocket: s.cfg.WebSocket,
			Reconnect: s.cfg.Reconnect,
		})
	})
	return sess, nil
}

// Connect 建立与某用户的私聊连接，要求事先注册监听器
func (s *Service) Connect(ctx context.Context, toUser string, fn session.Listener) error {
	sess, err := s.Session(toUser)
	if err != nil {
		return err
	}
	if fn != nil {
		sess.OnEvent(fn)
	}
	return sess.Connect(ctx)
}

// Send 通过私聊频道发送消息，未连接时先建立连接
func (s *Service) Send(ctx context.Context, toUser, content string) error {
	sess, err := s.Session(toUser)
	if err != nil {
		return err
	}
	if !sess.IsConnected() {
		if err := sess.Connect(ctx); err != nil {
			return err
		}
	}
	return sess.Send([]byte(content))
}

// Disconnect 断开与某用户的私聊连接并移除会话
func (s *Service) Disconnect(toUser string) {
	s.registry.Remove(toUser)
}

// DisconnectAll 断开全部私聊连接
func (s *Service) DisconnectAll() {
	s.registry.ClearAll()
}

// IsConnected 判断与某用户的私聊连接是否在线
func (s *Service) IsConnected(toUser string) bool {
	return s.registry.IsConnected(toUser)
}

// List 拉取私聊会话列表
func (s *Service) List(ctx context.Context) ([]api.ChatListItem, error) {
	return s.client.ChatList(ctx)
}

// History 拉取与某用户的私聊历史
func (s *Service) History(ctx context.Context, toUser string, page, pageSize int) ([]protocol.ChatData, error) {
	return s.client.ChatHistory(ctx, toUser, page, pageSize)
}

// MarkRead 标记来自某用户的消息为已读
func (s *Service) MarkRead(ctx context.Context, fromUser string) error {
	return s.client.ChatMarkRead(ctx, fromUser)
}

// HasUnread 查询是否有未读私聊消息
func (s *Service) HasUnread(ctx context.Context) (bool, error) {
	return s.client.ChatHasUnread(ctx)
}

// Revoke 撤回一条私聊消息
func (s *Service) Revoke(ctx context.Context, oid string) error {
	return s.client.ChatRevoke(ctx, oid)
}
