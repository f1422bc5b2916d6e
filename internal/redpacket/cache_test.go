package redpacket_test

import (
	"testing"

	"github.com/fishpi/gofish/internal/protocol"
	"github.com/fishpi/gofish/internal/redpacket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func packet(count, got int) *protocol.RedPacketMessage {
	return &protocol.RedPacketMessage{
		Type:  protocol.RedPacketRandom,
		Money: 64,
		Count: count,
		Got:   got,
	}
}

func TestCachePutAndGet(t *testing.T) {
	c := redpacket.NewCache()
	c.Put("1", packet(5, 0))

	got, ok := c.Get("1")
	require.True(t, ok)
	assert.Equal(t, 5, got.Count)
	assert.Equal(t, 1, c.Len())
}

func TestCachePutIgnoresExhausted(t *testing.T) {
	c := redpacket.NewCache()
	c.Put("1", packet(5, 5))
	c.Put("", packet(5, 0))
	c.Put("2", nil)

	assert.Equal(t, 0, c.Len())
}

func TestCacheGetReturnsCopy(t *testing.T) {
	c := redpacket.NewCache()
	c.Put("1", packet(5, 0))

	first, _ := c.Get("1")
	first.Got = 99

	second, _ := c.Get("1")
	assert.Equal(t, 0, second.Got)
}

func TestCacheReconcileEvictsWhenDrained(t *testing.T) {
	c := redpacket.NewCache()
	c.Put("1", packet(5, 0))

	for got := 1; got <= 4; got++ {
		c.Reconcile(protocol.RedPacketStatus{OID: "1", Count: 5, Got: got})
		cached, ok := c.Get("1")
		require.True(t, ok, "领到第 %d 份时仍应在缓存", got)
		assert.Equal(t, got, cached.Got)
	}

	c.Reconcile(protocol.RedPacketStatus{OID: "1", Count: 5, Got: 5})
	_, ok := c.Get("1")
	assert.False(t, ok, "领完后立即淘汰")
	assert.Equal(t, 0, c.Len())
}

func TestCacheReconcileUnknownPacket(t *testing.T) {
	c := redpacket.NewCache()
	c.Reconcile(protocol.RedPacketStatus{OID: "missing", Count: 5, Got: 1})
	assert.Equal(t, 0, c.Len())
}

func TestCachePendingAndClear(t *testing.T) {
	c := redpacket.NewCache()
	c.Put("1", packet(5, 0))
	c.Put("2", packet(3, 1))

	assert.ElementsMatch(t, []string{"1", "2"}, c.Pending())

	c.Clear()
	assert.Empty(t, c.Pending())
	assert.Equal(t, 0, c.Len())
}
