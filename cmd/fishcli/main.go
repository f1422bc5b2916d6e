// fishcli 命令行聊天室客户端
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fishpi/gofish/internal/api"
	"github.com/fishpi/gofish/internal/chat"
	"github.com/fishpi/gofish/internal/chatroom"
	"github.com/fishpi/gofish/internal/notice"
	"github.com/fishpi/gofish/internal/protocol"
	"github.com/fishpi/gofish/internal/redpacket"
	"github.com/fishpi/gofish/pkg/config"
	"github.com/fishpi/gofish/pkg/logger"
	"github.com/fishpi/gofish/pkg/metrics"
	"go.uber.org/zap"
)

func main() {
	var (
		configPath = flag.String("config", "configs/client.yaml", "配置文件路径")
		token      = flag.String("token", "", "apiKey，缺省时读 FISHPI_TOKEN 环境变量")
		statsPath  = flag.String("gesture-stats", "gesture_stats.json", "猜拳统计文件路径")
	)
	flag.Parse()

	cfg, err := config.LoadClientConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	apiKey := *token
	if apiKey == "" {
		apiKey = os.Getenv("FISHPI_TOKEN")
	}
	if apiKey == "" {
		logger.Error("缺少 apiKey，使用 -token 或 FISHPI_TOKEN 指定")
		os.Exit(1)
	}

	if cfg.Metrics.Enabled {
		go func() {
			if err := metrics.Serve(cfg.Metrics.Addr); err != nil {
				logger.Error("指标服务退出", zap.Error(err))
			}
		}()
	}

	client := api.NewClient(cfg.API)
	client.SetToken(apiKey)

	cache := redpacket.NewCache()
	picker := redpacket.NewPicker(nil, redpacket.NewFileStats(*statsPath))
	engine := redpacket.NewEngine(client, cache, picker)

	room := chatroom.NewService(client, cfg, cache)
	notices := notice.NewService(client, cfg)
	chats := chat.NewService(client, cfg)

	ctx := context.Background()

	room.OnEvent(func(event protocol.Event) {
		switch e := event.(type) {
		case *protocol.MessageEvent:
			printMessage(engine, e.Message)
		case *protocol.BarrageEvent:
			fmt.Printf("[弹幕] %s: %s\n", e.Barrage.AllName(), e.Barrage.Content)
		case *protocol.DiscussChangedEvent:
			fmt.Printf("[话题] %s\n", e.NewDiscuss)
		case *protocol.RevokeEvent:
			fmt.Printf("[撤回] %s\n", e.OID)
		case *protocol.OnlineUsersEvent:
			logger.Debug("在线名单更新", zap.Int("count", e.OnlineCount))
		}
	})
	room.OnError(func(err error) {
		logger.Error("聊天室连接失败", zap.Error(err))
	})

	if err := room.Connect(ctx); err != nil {
		logger.Error("连接聊天室失败", zap.Error(err))
		os.Exit(1)
	}

	notices.OnEvent(func(event protocol.Event) {
		if e, ok := event.(*protocol.NoticeEvent); ok {
			switch e.Notice.Command {
			case protocol.CmdWarnBroadcast:
				fmt.Printf("[全员广播] %s (by %s)\n", e.Notice.WarnBroadcastText, e.Notice.Who)
			case protocol.CmdRefreshNotification:
				fmt.Println("[通知] 有新的未读通知")
			case protocol.CmdNewIdleChatMessage:
				fmt.Printf("[私聊] %s: %s\n", e.Notice.SenderUserName, e.Notice.Preview)
			}
		}
	})
	if err := notices.Connect(ctx); err != nil {
		logger.Warn("连接通知频道失败", zap.Error(err))
	}

	logger.Info("客户端已启动",
		zap.String("base_url", cfg.API.BaseURL),
		zap.Int("online", room.OnlineCount()),
	)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("正在退出")
	room.Disconnect()
	notices.Disconnect()
	chats.DisconnectAll()
}

// printMessage 渲染一条聊天室消息，红包自动尝试领取
func printMessage(engine *redpacket.Engine, msg *protocol.ChatRoomMessage) {
	switch {
	case msg.IsRedPacket():
		rp := msg.RedPacket
		fmt.Printf("[%s] %s 发了一个%s: %s (%d 积分 / %d 份)\n",
			msg.Time, msg.AllName(), protocol.RedPacketKindName(rp.Type), rp.Msg, rp.Money, rp.Count)
		go openPacket(engine, msg)

	case msg.IsWeather():
		w := msg.Weather
		fmt.Printf("[%s] %s 分享了 %s 的天气: %s\n", msg.Time, msg.AllName(), w.Title, w.SubTitle)

	case msg.IsMusic():
		m := msg.Music
		fmt.Printf("[%s] %s 分享了音乐: %s (%s)\n", msg.Time, msg.AllName(), m.Title, m.From)

	default:
		content := protocol.StripChatHTML(msg.Content)
		fmt.Printf("[%s] %s: %s\n", msg.Time, msg.AllName(), content)
		if quote := protocol.FormatQuoteMessage(msg.MD, "  "); quote != "" {
			fmt.Println(quote)
		}
	}
}

// openPacket 自动领取红包，领完和专属不符属于正常结果
func openPacket(engine *redpacket.Engine, msg *protocol.ChatRoomMessage) {
	info, err := engine.Open(context.Background(), msg.RedPacket)
	if err != nil {
		if errors.Is(err, api.ErrPacketExhausted) || errors.Is(err, api.ErrNotEligible) {
			logger.Debug("红包不可领取", zap.String("oId", msg.OID), zap.Error(err))
		} else {
			logger.Warn("领取红包失败", zap.String("oId", msg.OID), zap.Error(err))
		}
		return
	}
	for _, got := range info.Who {
		fmt.Printf("  └─%s 抢到 %d 积分\n", got.UserName, got.UserMoney)
	}
}
