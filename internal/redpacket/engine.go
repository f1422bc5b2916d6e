package redpacket

import (
	"context"
	"errors"
	"fmt"

	"github.com/fishpi/gofish/internal/api"
	"github.com/fishpi/gofish/internal/protocol"
	"github.com/fishpi/gofish/pkg/logger"
	"go.uber.org/zap"
)

// 发送默认值和下限
const (
	DefaultCount = 5
	MinMoney     = 32
)

var (
	// ErrBadCount 份数必须至少为 1
	ErrBadCount = errors.New("redpacket: count must be at least 1")

	// ErrBadMoney 金额低于下限
	ErrBadMoney = fmt.Errorf("redpacket: money must be at least %d", MinMoney)

	// ErrNoReceivers 专属红包必须指定接收者
	ErrNoReceivers = errors.New("redpacket: specify packet needs receivers")
)

// Sender 红包发送所需的接口面
type Sender interface {
	SendRedPacket(ctx context.Context, msg *protocol.RedPacketMessage) error
	OpenRedPacket(ctx context.Context, oid string, gesture *protocol.Gesture) (*protocol.RedPacketInfo, error)
}

// Engine 红包引擎，组合发送、打开和手势选择
type Engine struct {
	sender Sender
	cache  *Cache
	picker *Picker
}

// NewEngine 创建红包引擎
func NewEngine(sender Sender, cache *Cache, picker *Picker) *Engine {
	if picker == nil {
		picker = NewPicker(nil, nil)
	}
	return &Engine{sender: sender, cache: cache, picker: picker}
}

// Cache 返回底层缓存
func (e *Engine) Cache() *Cache {
	return e.cache
}

func validate(money, count int) error {
	if count < 1 {
		return ErrBadCount
	}
	if money < MinMoney {
		return ErrBadMoney
	}
	return nil
}

// SendRandom 发拼手气红包
func (e *Engine) SendRandom(ctx context.Context, money, count int, msg string) error {
	if count <= 0 {
		count = DefaultCount
	}
	if err := validate(money, count); err != nil {
		return err
	}
	return e.sender.SendRedPacket(ctx, &protocol.RedPacketMessage{
		Type:  protocol.RedPacketRandom,
		Money: money,
		Count: count,
		Msg:   msg,
	})
}

// SendAverage 发平分红包
func (e *Engine) SendAverage(ctx context.Context, money, count int, msg string) error {
	if count <= 0 {
		count = DefaultCount
	}
	if err := validate(money, count); err != nil {
		return err
	}
	return e.sender.SendRedPacket(ctx, &protocol.RedPacketMessage{
		Type:  protocol.RedPacketAverage,
		Money: money,
		Count: count,
		Msg:   msg,
	})
}

// SendSpecify 发专属红包，份数等于接收者人数
func (e *Engine) SendSpecify(ctx context.Context, money int, receivers []string, msg string) error {
	if len(receivers) == 0 {
		return ErrNoReceivers
	}
	if err := validate(money, len(receivers)); err != nil {
		return err
	}
	rp := &protocol.RedPacketMessage{
		Type:  protocol.RedPacketSpecify,
		Money: money,
		Count: len(receivers),
		Msg:   msg,
	}
	rp.SetReceivers(receivers)
	return e.sender.SendRedPacket(ctx, rp)
}

// SendHeartbeat 发心跳红包
func (e *Engine) SendHeartbeat(ctx context.Context, money, count int, msg string) error {
	if count <= 0 {
		count = DefaultCount
	}
	if err := validate(money, count); err != nil {
		return err
	}
	return e.sender.SendRedPacket(ctx, &protocol.RedPacketMessage{
		Type:  protocol.RedPacketHeartbeat,
		Money: money,
		Count: count,
		Msg:   msg,
	})
}

// SendRockPaperScissors 发猜拳红包，单份，手势为空时随机出拳
func (e *Engine) SendRockPaperScissors(ctx context.Context, money int, gesture *protocol.Gesture, msg string) error {
	if err := validate(money, 1); err != nil {
		return err
	}
	g := e.pickIfNil(gesture)
	return e.sender.SendRedPacket(ctx, &protocol.RedPacketMessage{
		Type:    protocol.RedPacketRockPaperScissors,
		Money:   money,
		Count:   1,
		Msg:     msg,
		Gesture: &g,
	})
}

// Open 打开红包，猜拳红包自动随机出拳
func (e *Engine) Open(ctx context.Context, msg *protocol.RedPacketMessage) (*protocol.RedPacketInfo, error) {
	var gesture *protocol.Gesture
	if msg.Type == protocol.RedPacketRockPaperScissors {
		g := e.picker.Pick()
		gesture = &g
		logger.Debug("auto gesture", zap.String("gesture", g.String()))
	}
	return e.open(ctx, msg.OID, gesture)
}

// OpenWithGesture 以指定手势打开猜拳红包
func (e *Engine) OpenWithGesture(ctx context.Context, oid string, gesture protocol.Gesture) (*protocol.RedPacketInfo, error) {
	return e.open(ctx, oid, &gesture)
}

// OpenByID 按 oId 打开红包，缓存里的类型信息决定是否带手势
func (e *Engine) OpenByID(ctx context.Context, oid string) (*protocol.RedPacketInfo, error) {
	if cached, ok := e.cache.Get(oid); ok {
		cached.OID = oid
		return e.Open(ctx, cached)
	}
	return e.open(ctx, oid, nil)
}

func (e *Engine) open(ctx context.Context, oid string, gesture *protocol.Gesture) (*protocol.RedPacketInfo, error) {
	info, err := e.sender.OpenRedPacket(ctx, oid, gesture)
	if err != nil {
		if errors.Is(err, api.ErrPacketExhausted) {
			// 已领完的红包从缓存里剔除，避免重复尝试
			e.cache.Remove(oid)
		}
		return nil, err
	}

	if info.Info.Got >= info.Info.Count {
		e.cache.Remove(oid)
	}
	return info, nil
}

func (e *Engine) pickIfNil(g *protocol.Gesture) protocol.Gesture {
	if g != nil {
		return *g
	}
	return e.picker.Pick()
}
