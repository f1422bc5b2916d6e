// Package redpacket 实现红包的发送、领取和本地跟踪
package redpacket

import (
	"sync"

	"github.com/fishpi/gofish/internal/protocol"
	"github.com/fishpi/gofish/pkg/metrics"
)

// Cache 记录仍可领取的红包
//
// 进度广播到达时同步领取数，领完的条目立即淘汰，
// 避免对已领完的红包发起无谓的打开请求。
type Cache struct {
	mu      sync.Mutex
	packets map[string]*protocol.RedPacketMessage
}

// NewCache 创建空缓存
func NewCache() *Cache {
	return &Cache{
		packets: make(map[string]*protocol.RedPacketMessage),
	}
}

// Put 登记一个新红包，没有 oId 或已领完的直接忽略
func (c *Cache) Put(oid string, msg *protocol.RedPacketMessage) {
	if oid == "" || msg == nil || msg.Got >= msg.Count {
		return
	}
	c.mu.Lock()
	c.packets[oid] = msg
	size := len(c.packets)
	c.mu.Unlock()
	metrics.RedPacketCacheSize.Set(float64(size))
}

// Get 查询红包，返回副本
func (c *Cache) Get(oid string) (*protocol.RedPacketMessage, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	msg, ok := c.packets[oid]
	if !ok {
		return nil, false
	}
	cp := *msg
	return &cp, true
}

// Reconcile 按进度广播更新领取数，领完即淘汰
func (c *Cache) Reconcile(status protocol.RedPacketStatus) {
	c.mu.Lock()
	msg, ok := c.packets[status.OID]
	if ok {
		msg.Got = status.Got
		if status.Count > 0 {
			msg.Count = status.Count
		}
		if msg.Got >= msg.Count {
			delete(c.packets, status.OID)
		}
	}
	size := len(c.packets)
	c.mu.Unlock()
	metrics.RedPacketCacheSize.Set(float64(size))
}

// Remove 淘汰一个红包
func (c *Cache) Remove(oid string) {
	c.mu.Lock()
	delete(c.packets, oid)
	size := len(c.packets)
	c.mu.Unlock()
	metrics.RedPacketCacheSize.Set(float64(size))
}

// Pending 返回仍可领取的红包 oId 列表
func (c *Cache) Pending() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	ids := make([]string, 0, len(c.packets))
	for oid := range c.packets {
		ids = append(ids, oid)
	}
	return ids
}

// Clear 清空缓存
func (c *Cache) Clear() {
	c.mu.Lock()
	c.packets = make(map[string]*protocol.RedPacketMessage)
	c.mu.Unlock()
	metrics.RedPacketCacheSize.Set(0)
}

// Len 返回缓存条目数
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.packets)
}
