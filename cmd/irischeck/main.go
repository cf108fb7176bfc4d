// Command irischeck probes the Iris endpoints the checkers bot depends on.
package main

import (
	"context"
	"flag"
	"os"
	"time"

	appcfg "github.com/park285/cheese-checkers-bot/internal/config"
	"github.com/park285/cheese-checkers-bot/internal/irisfast"
	"github.com/park285/cheese-checkers-bot/internal/obslog"
	"go.uber.org/zap"
)

func main() {
	room := flag.String("room", "", "send a test reply to this room through the configured egress")
	watch := flag.Duration("watch", 10*time.Second, "how long to print inbound WebSocket messages")
	flag.Parse()

	if err := obslog.InitFromEnv(); err != nil {
		panic(err)
	}
	logger := obslog.L()
	defer func() { _ = logger.Sync() }()

	cfg, err := appcfg.Load()
	if err != nil {
		logger.Error("config_error", zap.Error(err))
		os.Exit(2)
	}

	client := irisfast.NewClient(cfg.IrisBaseURL,
		irisfast.WithHeaderProvider(cfg.Headers),
		irisfast.WithTimeout(8*time.Second),
		irisfast.WithLogger(logger),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	ic, err := client.GetConfig(ctx)
	cancel()
	if err != nil {
		logger.Error("config_probe_error", zap.Error(err))
	} else {
		logger.Info("config_probe_ok",
			zap.String("bot_name", ic.BotName),
			zap.Int("port", ic.Port),
			zap.Int("polling", ic.PollingSpeed),
			zap.Int("rate", ic.MessageRate),
			zap.String("endpoint", ic.WebserverEndpoint),
		)
	}

	ws := irisfast.NewWebSocket(cfg.IrisWSURL, 0, time.Second)
	ws.SetHeaderProvider(cfg.Headers)
	ws.SetLogger(logger)
	ws.OnStateChange(func(state irisfast.WebSocketState) {
		logger.Info("ws_state", zap.String("state", state.String()))
	})
	ws.OnMessage(func(msg *irisfast.Message) {
		logger.Info("ws_message",
			zap.String("room", msg.Room),
			zap.String("user_id", msg.UserID()),
			zap.String("from", msg.SenderName()),
			zap.String("text", msg.Text()),
			zap.Bool("room_allowed", cfg.RoomAllowed(msg.Room)),
		)
	})

	cctx, ccancel := context.WithTimeout(context.Background(), 10*time.Second)
	err = ws.Connect(cctx)
	ccancel()
	if err != nil {
		logger.Error("ws_connect_error", zap.Error(err))
		os.Exit(1)
	}

	if *room != "" {
		egress := irisfast.NewEgress(cfg.EgressMode, cfg.EgressDryRun, client, ws, logger)
		sctx, scancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := egress.SendText(sctx, *room, "irischeck: checkers bot transport ok"); err != nil {
			logger.Error("egress_probe_error", zap.String("mode", cfg.EgressMode), zap.Error(err))
		} else {
			logger.Info("egress_probe_ok", zap.String("mode", cfg.EgressMode), zap.String("room", *room))
		}
		scancel()
	}

	time.Sleep(*watch)

	closeCtx, closeCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer closeCancel()
	_ = ws.Close(closeCtx)
}
