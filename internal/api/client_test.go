package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fishpi/gofish/internal/api"
	"github.com/fishpi/gofish/internal/protocol"
	"github.com/fishpi/gofish/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.Handler) *api.Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := api.NewClient(config.APIConfig{
		BaseURL:   server.URL,
		UserAgent: "gofish-test",
		Timeout:   5 * time.Second,
	})
	client.SetToken("test-key")
	return client
}

func TestRequireTokenWithoutLogin(t *testing.T) {
	client := api.NewClient(config.APIConfig{BaseURL: "https://fishpi.cn"})

	_, err := client.RequireToken()
	assert.ErrorIs(t, err, api.ErrUnauthenticated)

	err = client.ChatroomSend(context.Background(), "hello")
	assert.ErrorIs(t, err, api.ErrUnauthenticated)
}

func TestWebSocketURL(t *testing.T) {
	client := api.NewClient(config.APIConfig{BaseURL: "https://fishpi.cn"})
	assert.Equal(t, "wss://fishpi.cn/chat-channel?apiKey=x", client.WebSocketURL("chat-channel?apiKey=x"))
	assert.Equal(t, "wss://already.example/ws", client.WebSocketURL("wss://already.example/ws"))

	plain := api.NewClient(config.APIConfig{BaseURL: "http://localhost:8080"})
	assert.Equal(t, "ws://localhost:8080/user-channel", plain.WebSocketURL("user-channel"))
}

func TestErrorMapping(t *testing.T) {
	exhausted := &api.Error{Endpoint: "x", Msg: "红包已被领完"}
	assert.ErrorIs(t, exhausted, api.ErrPacketExhausted)

	repeated := &api.Error{Endpoint: "x", Msg: "你已领取过该红包"}
	assert.ErrorIs(t, repeated, api.ErrPacketExhausted)

	notEligible := &api.Error{Endpoint: "x", Msg: "你不是专属红包的接收者"}
	assert.ErrorIs(t, notEligible, api.ErrNotEligible)

	unauth := &api.Error{Endpoint: "x", Code: 401}
	assert.ErrorIs(t, unauth, api.ErrUnauthenticated)

	other := &api.Error{Endpoint: "x", Msg: "服务器开小差了"}
	assert.False(t, errors.Is(other, api.ErrPacketExhausted))
}

func TestChatroomSendResultCodes(t *testing.T) {
	var gotBody map[string]string
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/chat-room/send":
			require.NoError(t, jsonDecode(r, &gotBody))
			w.Write([]byte(`{"result":0}`))
		default:
			http.NotFound(w, r)
		}
	}))

	require.NoError(t, client.ChatroomSend(context.Background(), "hello"))
	assert.Equal(t, "hello", gotBody["content"])
	assert.Equal(t, "test-key", gotBody["apiKey"])
}

func TestChatroomSendFailure(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"result":1,"msg":"发言过于频繁"}`))
	}))

	err := client.ChatroomSend(context.Background(), "hello")
	require.Error(t, err)
	var apiErr *api.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "发言过于频繁", apiErr.Msg)
}

func TestGetBarrageCostParsesPage(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<div class="info">发送弹幕每次将花费 <b>30</b> 积分</div>`))
	}))

	cost, err := client.GetBarrageCost(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 30, cost.Value)
	assert.Equal(t, "积分", cost.Unit)
}

func TestGetBarrageCostFallback(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>页面改版了</html>`))
	}))

	cost, err := client.GetBarrageCost(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 20, cost.Value, "解析不到时回退默认值")
	assert.Equal(t, "积分", cost.Unit)
}

func TestChatroomNodeGetAdoptsRefreshedKey(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.URL.Query().Get("apiKey"))
		w.Write([]byte(`{
			"code": 0,
			"msg": "",
			"data": "wss://node1.fishpi.cn/chat-room-channel?apiKey=refreshed-key",
			"name": "node1",
			"apiKey": "refreshed-key",
			"avaliable": [{"node":"wss://node1.fishpi.cn","name":"node1","online":100,"weight":10}]
		}`))
	}))

	info, err := client.ChatroomNodeGet(context.Background())
	require.NoError(t, err)
	assert.Contains(t, info.Recommended, "node1.fishpi.cn")
	assert.Equal(t, "node1", info.Name)
	require.Len(t, info.Available, 1)
	assert.Equal(t, "refreshed-key", client.Token(), "下发的新 apiKey 被采纳")
}

func TestChatroomNodeGetFailure(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"code":1,"msg":"节点不可用"}`))
	}))

	_, err := client.ChatroomNodeGet(context.Background())
	require.Error(t, err)
	assert.Equal(t, "test-key", client.Token(), "失败时不动 token")
}

func TestChatroomChannelURLAppendsToken(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"code": 0,
			"data": "wss://node2.fishpi.cn/chat-room-channel",
			"name": "node2",
			"apiKey": "refreshed-key"
		}`))
	}))

	url, err := client.ChatroomChannelURL(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "wss://node2.fishpi.cn/chat-room-channel?apiKey=refreshed-key", url,
		"节点地址不带 apiKey 时追加刷新后的 token")
}

func TestChatroomChannelURLKeepsEmbeddedToken(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"code": 0,
			"data": "wss://node1.fishpi.cn/chat-room-channel?apiKey=embedded-key",
			"name": "node1"
		}`))
	}))

	url, err := client.ChatroomChannelURL(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "wss://node1.fishpi.cn/chat-room-channel?apiKey=embedded-key", url)
}

func TestChatroomRawStripsComments(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/cr/raw/123", r.URL.Path)
		w.Write([]byte("hello<!-- hidden -->world"))
	}))

	raw, err := client.ChatroomRaw(context.Background(), "123")
	require.NoError(t, err)
	assert.Equal(t, "helloworld", raw)
}

func TestOpenRedPacketExhausted(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"result":1,"msg":"红包已被领完"}`))
	}))

	_, err := client.OpenRedPacket(context.Background(), "1", nil)
	assert.ErrorIs(t, err, api.ErrPacketExhausted)
}

func TestOpenRedPacketGesturePayload(t *testing.T) {
	var gotBody map[string]any
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, jsonDecode(r, &gotBody))
		w.Write([]byte(`{
			"result": 0,
			"info": {"count":1,"got":1,"msg":"猜拳","userName":"alice"},
			"recivers": "[]",
			"who": [{"userId":"10","userName":"bob","userMoney":32}]
		}`))
	}))

	g := protocol.GestureScissors
	info, err := client.OpenRedPacket(context.Background(), "1", &g)
	require.NoError(t, err)
	assert.Equal(t, float64(1), gotBody["gesture"])
	require.Len(t, info.Who, 1)
	assert.Equal(t, 32, info.Who[0].UserMoney)
}

func jsonDecode(r *http.Request, out any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(out)
}

func testFishpiConfig() config.APIConfig {
	return config.APIConfig{
		BaseURL:   "https://fishpi.cn",
		UserAgent: "gofish-test",
		Timeout:   5 * time.Second,
	}
}
