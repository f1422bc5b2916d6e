// Package notice 提供用户通知服务
//
// 实时侧订阅用户通知频道，只处理已知的三种命令；
// 查询侧封装未读计数和分页通知列表。
package notice

import (
	"context"
	"encoding/json"

	"github.com/fishpi/gofish/internal/api"
	"github.com/fishpi/gofish/internal/protocol"
	"github.com/fishpi/gofish/internal/session"
	"github.com/fishpi/gofish/pkg/config"
)

// Service 通知服务
type Service struct {
	client *api.Client
	sess   *session.Session
}

// NewService 创建通知服务
func NewService(client *api.Client, cfg *config.ClientConfig) *Service {
	s := &Service{client: client}
	s.sess = session.New(session.Options{
		Channel: "notice",
		URL: func(ctx context.Context) (string, error) {
			return client.UserChannelURL()
		},
		Decode:    protocol.DecodeNotice,
		UserAgent: cfg.API.UserAgent,
		WebSocket: cfg.WebSocket,
		Reconnect: cfg.Reconnect,
	})
	return s
}

// OnEvent 注册事件监听器
func (s *Service) OnEvent(fn session.Listener) {
	s.sess.OnEvent(fn)
}

// OnError 注册连接级错误监听器
func (s *Service) OnError(fn session.ErrorListener) {
	s.sess.OnError(fn)
}

// Connect 建立通知频道连接
func (s *Service) Connect(ctx context.Context) error {
	return s.sess.Connect(ctx)
}

// Disconnect 断开通知频道
func (s *Service) Disconnect() {
	s.sess.Disconnect()
	s.sess.ClearListeners()
}

// IsConnected 返回连接状态
func (s *Service) IsConnected() bool {
	return s.sess.IsConnected()
}

// UnreadCount 查询各分类的未读通知数
func (s *Service) UnreadCount(ctx context.Context) (*protocol.NoticeCount, error) {
	return s.client.NoticeUnreadCount(ctx)
}

// List 分页拉取某分类的通知原始条目
func (s *Service) List(ctx context.Context, typ string, page int) ([]json.RawMessage, error) {
	return s.client.NoticeList(ctx, typ, page)
}

// PointNotices 拉取积分通知
func (s *Service) PointNotices(ctx context.Context, page int) ([]protocol.NoticePoint, error) {
	items, err := s.client.NoticeList(ctx, protocol.NoticeTypePoint, page)
	if err != nil {
		return nil, err
	}
	return api.DecodePointNotices(items)
}

// MakeRead 标记某分类为已读
func (s *Service) MakeRead(ctx context.Context, typ string) error {
	return s.client.NoticeMakeRead(ctx, typ)
}

// ReadAll 标记全部通知为已读
func (s *Service) ReadAll(ctx context.Context) error {
	return s.client.NoticeReadAll(ctx)
}
