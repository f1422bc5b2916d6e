// Package session 管理单条 WebSocket 通道的生命周期
//
// 一个 Session 对应一条频道连接，负责拨号、收发循环、事件分发和
// 断线重连。重连次数封顶，打满后通过错误回调上报并停止。
package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fishpi/gofish/internal/protocol"
	"github.com/fishpi/gofish/pkg/config"
	"github.com/fishpi/gofish/pkg/logger"
	"github.com/fishpi/gofish/pkg/metrics"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var (
	// ErrNoListener 没有任何监听器时拒绝连接，避免静默丢消息
	ErrNoListener = errors.New("session: connect refused, no listener registered")

	// ErrRetryExhausted 重连次数打满
	ErrRetryExhausted = errors.New("session: reconnect retries exhausted")

	// ErrNotConnected 未连接时调用 Send
	ErrNotConnected = errors.New("session: not connected")

	// ErrQueueFull 发送队列已满，消息被丢弃
	ErrQueueFull = errors.New("session: send queue full")
)

// Conn 抽象一条已建立的 WebSocket 连接
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Dialer 抽象拨号过程，测试时可注入假实现
type Dialer interface {
	Dial(ctx context.Context, url string) (Conn, error)
}

// WSDialer 基于 gorilla/websocket 的拨号器
type WSDialer struct {
	HandshakeTimeout time.Duration
	UserAgent        string
}

// Dial 建立 WebSocket 连接
func (d *WSDialer) Dial(ctx context.Context, url string) (Conn, error) {
	dialer := websocket.Dialer{
		HandshakeTimeout: d.HandshakeTimeout,
	}
	header := http.Header{}
	if d.UserAgent != "" {
		header.Set("User-Agent", d.UserAgent)
	}
	conn, _, err := dialer.DialContext(ctx, url, header)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}
	return conn, nil
}

// URLFunc 返回当前应连接的地址，节点发现可能在两次重连间换地址
type URLFunc func(ctx context.Context) (string, error)

// Listener 事件回调
type Listener func(protocol.Event)

// ErrorListener 连接级错误回调
type ErrorListener func(error)

// DecodeFunc 帧解码函数，不同频道的线上格式不同
type DecodeFunc func([]byte) (protocol.Event, error)

// Options 会话参数
type Options struct {
	Channel   string
	URL       URLFunc
	Decode    DecodeFunc
	Dialer    Dialer
	UserAgent string
	WebSocket config.WebSocketConfig
	Reconnect config.ReconnectConfig

	// StateHook 在并发分发前同步执行，服务层用它维护本地状态
	StateHook func(protocol.Event)
}

// link 一次具体的连接，重连会换一条新的 link
type link struct {
	id     string
	ws     Conn
	sendCh chan []byte
	stop   chan struct{}
	once   sync.Once
}

func (l *link) close() {
	l.once.Do(func() {
		close(l.stop)
		l.ws.Close()
	})
}

// Session 单条频道会话
type Session struct {
	opts Options
	log  *zap.Logger

	mu        sync.Mutex
	listeners []Listener
	errs      []ErrorListener
	cur       *link
	retries   int
	gen       uint64

	connected atomic.Bool
}

// New 创建会话，此时不拨号
func New(opts Options) *Session {
	if opts.Dialer == nil {
		opts.Dialer = &WSDialer{
			HandshakeTimeout: opts.WebSocket.HandshakeTimeout,
			UserAgent:        opts.UserAgent,
		}
	}
	if opts.WebSocket.SendQueueSize <= 0 {
		opts.WebSocket.SendQueueSize = 256
	}
	return &Session{
		opts: opts,
		log:  logger.Channel(opts.Channel),
	}
}

// OnEvent 注册事件监听器，必须在 Connect 前至少注册一个
func (s *Session) OnEvent(fn Listener) {
	s.mu.Lock()
	s.listeners = append(s.listeners, fn)
	s.mu.Unlock()
}

// OnError 注册连接级错误监听器
func (s *Session) OnError(fn ErrorListener) {
	s.mu.Lock()
	s.errs = append(s.errs, fn)
	s.mu.Unlock()
}

// ClearListeners 移除全部监听器，下次 Connect 前需要重新注册
func (s *Session) ClearListeners() {
	s.mu.Lock()
	s.listeners = nil
	s.errs = nil
	s.mu.Unlock()
}

// IsConnected 返回当前连接状态
func (s *Session) IsConnected() bool {
	return s.connected.Load()
}

// errSuperseded 拨号期间会话被断开或已有新连接，放弃本次结果
var errSuperseded = errors.New("session: dial superseded")

// Connect 建立连接并启动收发循环
func (s *Session) Connect(ctx context.Context) error {
	s.mu.Lock()
	if len(s.listeners) == 0 {
		s.mu.Unlock()
		return ErrNoListener
	}
	if s.cur != nil {
		s.mu.Unlock()
		return nil
	}
	gen := s.gen
	s.mu.Unlock()

	if err := s.dial(ctx, gen); err != nil {
		if errors.Is(err, errSuperseded) {
			// 并发 Connect 已装好连接
			return nil
		}
		return err
	}
	return nil
}

// dial 只在会话代数未变且没有现存连接时才安装新连接
func (s *Session) dial(ctx context.Context, gen uint64) error {
	url, err := s.opts.URL(ctx)
	if err != nil {
		return fmt.Errorf("resolve %s url: %w", s.opts.Channel, err)
	}

	ws, err := s.opts.Dialer.Dial(ctx, url)
	if err != nil {
		return err
	}

	l := &link{
		id:     uuid.New().String(),
		ws:     ws,
		sendCh: make(chan []byte, s.opts.WebSocket.SendQueueSize),
		stop:   make(chan struct{}),
	}

	s.mu.Lock()
	if s.gen != gen || s.cur != nil {
		s.mu.Unlock()
		ws.Close()
		return errSuperseded
	}
	s.cur = l
	s.retries = 0
	s.mu.Unlock()
	s.connected.Store(true)
	metrics.SessionsConnected.Inc()

	s.log.Info("channel connected", zap.String("conn_id", l.id))

	go s.readLoop(l)
	go s.writeLoop(l)
	return nil
}

// Send 将数据放入发送队列，队列满时立即报错而不是阻塞调用方
func (s *Session) Send(data []byte) error {
	s.mu.Lock()
	l := s.cur
	s.mu.Unlock()
	if l == nil || !s.connected.Load() {
		return ErrNotConnected
	}

	select {
	case l.sendCh <- data:
		metrics.MessagesSent.WithLabelValues(s.opts.Channel).Inc()
		return nil
	default:
		metrics.FramesDropped.WithLabelValues(s.opts.Channel, "queue_full").Inc()
		return ErrQueueFull
	}
}

// Disconnect 主动断开，不触发重连
//
// 代数自增让退避中的重连循环观察到断开并放弃。
func (s *Session) Disconnect() {
	s.mu.Lock()
	l := s.cur
	s.cur = nil
	s.retries = 0
	s.gen++
	s.mu.Unlock()

	if l != nil {
		l.close()
		if s.connected.CompareAndSwap(true, false) {
			metrics.SessionsConnected.Dec()
		}
		s.log.Info("channel disconnected", zap.String("conn_id", l.id))
	}
}

func (s *Session) readLoop(l *link) {
	for {
		_, raw, err := l.ws.ReadMessage()
		if err != nil {
			select {
			case <-l.stop:
				// 主动断开，安静退出
				return
			default:
			}
			s.log.Warn("read failed", zap.String("conn_id", l.id), zap.Error(err))
			l.close()
			s.reconnect(l)
			return
		}

		event, err := s.opts.Decode(raw)
		if err != nil {
			reason := "malformed"
			if errors.Is(err, protocol.ErrKeepalive) {
				reason = "keepalive"
			} else if errors.Is(err, protocol.ErrUnknownType) {
				reason = "unknown_type"
			} else {
				s.log.Debug("drop frame", zap.String("conn_id", l.id), zap.Error(err))
			}
			metrics.FramesDropped.WithLabelValues(s.opts.Channel, reason).Inc()
			continue
		}

		metrics.FramesReceived.WithLabelValues(s.opts.Channel, event.EventType()).Inc()

		if s.opts.StateHook != nil {
			s.opts.StateHook(event)
		}

		s.mu.Lock()
		listeners := make([]Listener, len(s.listeners))
		copy(listeners, s.listeners)
		s.mu.Unlock()

		for _, fn := range listeners {
			go fn(event)
		}
	}
}

func (s *Session) writeLoop(l *link) {
	for {
		select {
		case <-l.stop:
			return
		case data := <-l.sendCh:
			if err := l.ws.WriteMessage(websocket.TextMessage, data); err != nil {
				s.log.Warn("write failed", zap.String("conn_id", l.id), zap.Error(err))
				// 只关底层连接，读循环会观察到错误并走重连
				l.ws.Close()
				return
			}
		}
	}
}

// reconnect 读循环出错后的重连流程，cap 打满后上报并放弃
func (s *Session) reconnect(failed *link) {
	if s.connected.CompareAndSwap(true, false) {
		metrics.SessionsConnected.Dec()
	}

	s.mu.Lock()
	if s.cur != failed {
		// 已被 Disconnect 或新连接取代
		s.mu.Unlock()
		return
	}
	s.cur = nil
	gen := s.gen
	s.mu.Unlock()

	for {
		s.mu.Lock()
		if s.gen != gen {
			// 退避期间被主动断开
			s.mu.Unlock()
			return
		}
		s.retries++
		attempt := s.retries
		ceiling := s.opts.Reconnect.MaxRetries
		s.mu.Unlock()

		if ceiling > 0 && attempt > ceiling {
			s.log.Error("reconnect retries exhausted", zap.Int("attempts", attempt-1))
			metrics.SessionRetryExhausted.WithLabelValues(s.opts.Channel).Inc()
			s.notifyError(fmt.Errorf("%s: %w", s.opts.Channel, ErrRetryExhausted))
			return
		}

		time.Sleep(s.opts.Reconnect.Interval)

		s.mu.Lock()
		stale := s.gen != gen
		s.mu.Unlock()
		if stale {
			return
		}

		metrics.SessionReconnects.WithLabelValues(s.opts.Channel).Inc()
		s.log.Info("reconnecting", zap.Int("attempt", attempt))

		if err := s.dial(context.Background(), gen); err != nil {
			if errors.Is(err, errSuperseded) {
				return
			}
			s.log.Warn("reconnect failed", zap.Int("attempt", attempt), zap.Error(err))
			continue
		}
		return
	}
}

func (s *Session) notifyError(err error) {
	s.mu.Lock()
	errs := make([]ErrorListener, len(s.errs))
	copy(errs, s.errs)
	s.mu.Unlock()

	for _, fn := range errs {
		go fn(err)
	}
}
