package protocol_test

import (
	"testing"

	"github.com/fishpi/gofish/internal/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeChatroomKeepalive(t *testing.T) {
	for _, raw := range []string{"heartbeat", "pong", "  heartbeat  ", ""} {
		_, err := protocol.DecodeChatroom([]byte(raw))
		assert.ErrorIs(t, err, protocol.ErrKeepalive, "frame %q", raw)
	}
}

func TestDecodeChatroomOnline(t *testing.T) {
	raw := `{
		"type": "online",
		"onlineChatCnt": 2,
		"discussing": "今天吃什么",
		"users": [
			{"userName": "alice", "userNickname": "爱丽丝"},
			{"userName": "bob"}
		]
	}`

	event, err := protocol.DecodeChatroom([]byte(raw))
	require.NoError(t, err)

	online, ok := event.(*protocol.OnlineUsersEvent)
	require.True(t, ok)
	assert.Equal(t, 2, online.OnlineCount)
	assert.Equal(t, "今天吃什么", online.Discussing)
	require.Len(t, online.Users, 2)
	assert.Equal(t, "爱丽丝(alice)", online.Users[0].AllName())
	assert.Equal(t, "bob", online.Users[1].AllName())
}

func TestDecodeChatroomDiscussChanged(t *testing.T) {
	event, err := protocol.DecodeChatroom([]byte(`{"type":"discussChanged","newDiscuss":"新话题"}`))
	require.NoError(t, err)

	changed, ok := event.(*protocol.DiscussChangedEvent)
	require.True(t, ok)
	assert.Equal(t, "新话题", changed.NewDiscuss)
}

func TestDecodeChatroomRevoke(t *testing.T) {
	event, err := protocol.DecodeChatroom([]byte(`{"type":"revoke","oId":"123"}`))
	require.NoError(t, err)

	revoke, ok := event.(*protocol.RevokeEvent)
	require.True(t, ok)
	assert.Equal(t, "123", revoke.OID)
}

func TestDecodeChatroomPlainMessage(t *testing.T) {
	raw := `{"type":"msg","oId":"100","userName":"alice","content":"<p>hello</p>","md":"hello"}`

	event, err := protocol.DecodeChatroom([]byte(raw))
	require.NoError(t, err)

	msg, ok := event.(*protocol.MessageEvent)
	require.True(t, ok)
	assert.Equal(t, protocol.TypeMsg, msg.EventType())
	assert.False(t, msg.Message.IsRedPacket())
	assert.False(t, msg.Message.IsWeather())
	assert.False(t, msg.Message.IsMusic())
}

func TestDecodeChatroomRedPacketMessage(t *testing.T) {
	raw := `{"type":"msg","oId":"200","userName":"alice",
		"content":"{\"msgType\":\"redPacket\",\"money\":64,\"count\":5,\"got\":0,\"type\":\"random\",\"msg\":\"摸鱼红包\",\"recivers\":\"[]\"}"}`

	event, err := protocol.DecodeChatroom([]byte(raw))
	require.NoError(t, err)

	msg, ok := event.(*protocol.MessageEvent)
	require.True(t, ok)
	assert.Equal(t, protocol.TypeRedPacket, msg.EventType())

	rp := msg.Message.RedPacket
	require.NotNil(t, rp)
	assert.Equal(t, "200", rp.OID, "红包继承消息的 oId")
	assert.Equal(t, 64, rp.Money)
	assert.Equal(t, 5, rp.Count)
	assert.Equal(t, protocol.RedPacketRandom, rp.Type)
	assert.Empty(t, rp.Receivers())
}

func TestDecodeChatroomBracketRedPacket(t *testing.T) {
	raw := `{"type":"msg","oId":"300","userName":"bob",
		"content":"[redpacket]{\"type\":\"specify\",\"money\":32,\"count\":1,\"recivers\":\"[\\\"alice\\\"]\"}[/redpacket]"}`

	event, err := protocol.DecodeChatroom([]byte(raw))
	require.NoError(t, err)

	msg := event.(*protocol.MessageEvent)
	require.True(t, msg.Message.IsRedPacket())
	assert.Equal(t, protocol.RedPacketSpecify, msg.Message.RedPacket.Type)
	assert.Equal(t, []string{"alice"}, msg.Message.RedPacket.Receivers())
}

func TestClassifyWeatherInMarkdownWinsOverContent(t *testing.T) {
	msg := &protocol.ChatRoomMessage{
		OID:     "400",
		MD:      `{"msgType":"weather","t":"北京","st":"晴","date":"8.31,9.1","weatherCode":"CLEAR_DAY,RAIN","min":"20,19","max":"30,28"}`,
		Content: `{"msgType":"music","title":"某首歌"}`,
	}

	msg.Classify()

	require.True(t, msg.IsWeather())
	assert.False(t, msg.IsMusic())

	days := msg.Weather.Days()
	require.Len(t, days, 2)
	assert.Equal(t, "8.31", days[0].Date)
	assert.Equal(t, "RAIN", days[1].Code)
}

func TestClassifyIdempotent(t *testing.T) {
	msg := &protocol.ChatRoomMessage{
		OID:     "500",
		Content: `{"msgType":"music","source":"netease","title":"歌","from":"alice"}`,
	}

	msg.Classify()
	require.True(t, msg.IsMusic())
	first := msg.Music

	msg.Classify()
	assert.Same(t, first, msg.Music)
}

func TestClassifyMalformedPayloadFallsBackToPlain(t *testing.T) {
	msg := &protocol.ChatRoomMessage{
		OID:     "600",
		Content: `{"msgType":"redPacket", broken json`,
	}

	msg.Classify()
	assert.False(t, msg.IsRedPacket())
	assert.False(t, msg.IsWeather())
	assert.False(t, msg.IsMusic())
}

func TestDecodeChatroomBarrage(t *testing.T) {
	raw := `{"type":"barrager","userName":"alice","userNickname":"爱丽丝","barragerContent":"冲","barragerColor":"#ff0000"}`

	event, err := protocol.DecodeChatroom([]byte(raw))
	require.NoError(t, err)

	barrage, ok := event.(*protocol.BarrageEvent)
	require.True(t, ok)
	assert.Equal(t, "冲", barrage.Barrage.Content)
	assert.Equal(t, "#ff0000", barrage.Barrage.Color)
	assert.Equal(t, "爱丽丝(alice)", barrage.Barrage.AllName())
}

func TestDecodeChatroomRedPacketStatus(t *testing.T) {
	raw := `{"type":"redPacketStatus","oId":"700","count":5,"got":3,"whoGive":"alice","whoGot":"bob"}`

	event, err := protocol.DecodeChatroom([]byte(raw))
	require.NoError(t, err)

	status, ok := event.(*protocol.RedPacketStatusEvent)
	require.True(t, ok)
	assert.Equal(t, "700", status.Status.OID)
	assert.Equal(t, 3, status.Status.Got)
}

func TestDecodeChatroomUnknownType(t *testing.T) {
	_, err := protocol.DecodeChatroom([]byte(`{"type":"somethingNew"}`))
	assert.ErrorIs(t, err, protocol.ErrUnknownType)
}

func TestDecodeChatroomMalformedJSON(t *testing.T) {
	_, err := protocol.DecodeChatroom([]byte(`{not json`))
	require.Error(t, err)
	assert.NotErrorIs(t, err, protocol.ErrKeepalive)
}
