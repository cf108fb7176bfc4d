package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/park285/cheese-checkers-bot/internal/adapter/checkerspresenter"
	appcfg "github.com/park285/cheese-checkers-bot/internal/config"
	"github.com/park285/cheese-checkers-bot/internal/httpapi"
	"github.com/park285/cheese-checkers-bot/internal/irisfast"
	"github.com/park285/cheese-checkers-bot/internal/lobby"
	"github.com/park285/cheese-checkers-bot/internal/match"
	"github.com/park285/cheese-checkers-bot/internal/msgcat"
	"github.com/park285/cheese-checkers-bot/internal/obslog"
	"github.com/park285/cheese-checkers-bot/pkg/checkersdto"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const commandTimeout = 15 * time.Second

type bot struct {
	cfg       *appcfg.AppConfig
	matches   *match.Manager
	lobby     *lobby.Manager
	presenter *checkerspresenter.Presenter
	formatter *checkerspresenter.Formatter
	log       *zap.Logger
}

func main() {
	if err := obslog.InitFromEnv(); err != nil {
		panic(err)
	}
	logger := obslog.L()
	defer func() { _ = logger.Sync() }()

	cfg, err := appcfg.Load()
	if err != nil {
		logger.Fatal("config_error", zap.Error(err))
	}

	cat, err := msgcat.New(cfg.MessagesDir)
	if err != nil {
		logger.Fatal("msgcat_error", zap.Error(err))
	}

	client := irisfast.NewClient(cfg.IrisBaseURL,
		irisfast.WithHeaderProvider(cfg.Headers),
		irisfast.WithLogger(obslog.Named("iris")),
	)
	probeCtx, probeCancel := context.WithTimeout(context.Background(), 5*time.Second)
	if ic, err := client.GetConfig(probeCtx); err != nil {
		logger.Warn("iris_probe_error", zap.Error(err))
	} else {
		logger.Info("iris_probe", zap.String("bot_name", ic.BotName))
	}
	probeCancel()

	ws := irisfast.NewWebSocket(cfg.IrisWSURL, 5, time.Second)
	ws.SetHeaderProvider(cfg.Headers)
	ws.SetLogger(obslog.Named("ws"))
	ws.OnStateChange(func(state irisfast.WebSocketState) {
		logger.Info("ws_state", zap.String("state", state.String()))
	})

	matches, err := match.NewManager(cfg.RedisURL,
		match.WithTTL(cfg.MatchTTL),
		match.WithCatalog(cat),
		match.WithSquarePx(cfg.BoardSquarePx),
	)
	if err != nil {
		logger.Fatal("match_manager_error", zap.Error(err))
	}
	defer func() { _ = matches.Close() }()

	if cfg.DatabaseURL != "" {
		repo, err := match.NewRepository(cfg.DatabaseURL)
		if err != nil {
			logger.Fatal("repository_error", zap.Error(err))
		}
		defer func() { _ = repo.Close() }()
		sctx, scancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := repo.EnsureSchema(sctx); err != nil {
			scancel()
			logger.Fatal("schema_error", zap.Error(err))
		}
		scancel()
		matches.AttachRepository(repo)
	} else {
		logger.Info("archive_disabled", zap.String("reason", "DATABASE_URL not set"))
	}

	ropts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logger.Fatal("redis_url_error", zap.Error(err))
	}
	lobbyRDB := redis.NewClient(ropts)
	defer func() { _ = lobbyRDB.Close() }()

	egress := irisfast.NewEgress(cfg.EgressMode, cfg.EgressDryRun, client, ws, obslog.Named("egress"))
	b := &bot{
		cfg:       cfg,
		matches:   matches,
		lobby:     lobby.NewManager(lobbyRDB, matches),
		presenter: checkerspresenter.NewPresenter(egress),
		formatter: checkerspresenter.NewFormatter(prefixProvider{prefix: cfg.BotPrefix}, cat),
		log:       obslog.Named("bot"),
	}

	ws.OnMessage(func(msg *irisfast.Message) {
		if msg == nil || msg.Text() == "" {
			return
		}
		if !cfg.RoomAllowed(msg.Room) {
			return
		}
		cmd, ok := parseCommand(cfg.BotPrefix, msg.Msg)
		if !ok {
			return
		}
		// keep the read loop free
		go b.handle(checkerspresenter.MetaFromMessage(msg), cmd)
	})

	cctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := ws.Connect(cctx); err != nil {
		cancel()
		logger.Fatal("ws_connect_error", zap.Error(err))
	}
	cancel()
	logger.Info("bot_started", zap.String("prefix", cfg.BotPrefix), zap.String("egress", cfg.EgressMode))

	var api *httpapi.Server
	if cfg.HTTPAddr != "" {
		api = httpapi.New(matches, ws, obslog.Named("http"))
		go func() {
			if err := api.Listen(cfg.HTTPAddr); err != nil {
				logger.Error("http_listen_error", zap.String("addr", cfg.HTTPAddr), zap.Error(err))
			}
		}()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	closeCtx, closeCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer closeCancel()
	if api != nil {
		_ = api.Shutdown(closeCtx)
	}
	_ = ws.Close(closeCtx)
}

func (b *bot) handle(meta checkersdto.RequestMeta, cmd command) {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	log := b.log.With(zap.String("room", meta.Room), zap.String("user_id", meta.Sender), zap.String("sub", cmd.sub))
	if playerKey(meta) == "" && cmd.sub != "help" && cmd.sub != "replay" {
		b.reply(ctx, meta.Room, b.formatter.NoUser())
		return
	}

	var err error
	switch cmd.sub {
	case "start":
		err = b.start(ctx, meta, cmd.args)
	case "move":
		err = b.move(ctx, meta, cmd.args[0])
	case "hint":
		err = b.hint(ctx, meta, cmd.args)
	case "status":
		err = b.status(ctx, meta)
	case "open":
		err = b.open(ctx, meta, cmd.args)
	case "join":
		err = b.join(ctx, meta, cmd.args)
	case "lobby":
		err = b.list(ctx, meta)
	case "cancel":
		err = b.cancel(ctx, meta)
	case "moves":
		err = b.moves(ctx, meta)
	case "resign":
		err = b.resign(ctx, meta)
	case "replay":
		err = b.replay(ctx, meta, cmd.body)
	default:
		b.reply(ctx, meta.Room, b.formatter.Help())
	}
	if err != nil {
		log.Error("command_error", zap.Error(err))
		b.reply(ctx, meta.Room, b.formatter.Failed())
	}
}

func (b *bot) start(ctx context.Context, meta checkersdto.RequestMeta, args []string) error {
	target, color, layout := startArgs(args)
	target = checkerspresenter.SanitizeUserArg(target)
	if target == "" {
		b.reply(ctx, meta.Room, b.formatter.BadTarget())
		return nil
	}

	g, err := b.matches.Create(ctx, meta.Room, playerKey(meta), meta.Name, target, target, color, layout)
	switch {
	case errors.Is(err, match.ErrAlreadyPlaying):
		name := meta.Name
		if strings.HasSuffix(err.Error(), ": "+target) {
			name = target
		}
		b.reply(ctx, meta.Room, b.formatter.AlreadyPlaying(name))
		return nil
	case errors.Is(err, match.ErrSamePlayer):
		b.reply(ctx, meta.Room, b.formatter.BadTarget())
		return nil
	case err != nil:
		return err
	}

	state, err := b.matches.ToDTO(ctx, g)
	if err != nil {
		return err
	}
	return b.presenter.Board(ctx, meta.Room, b.formatter.Created(state), state)
}

func (b *bot) open(ctx context.Context, meta checkersdto.RequestMeta, args []string) error {
	// reuse the start parser with a placeholder target
	_, color, layout := startArgs(append([]string{""}, args...))
	ch, err := b.lobby.Open(ctx, meta.Room, playerKey(meta), meta.Name, color, layout)
	if err != nil {
		return b.lobbyRefusal(ctx, meta.Room, err)
	}
	b.reply(ctx, meta.Room, b.formatter.Opened(ch))
	return nil
}

func (b *bot) join(ctx context.Context, meta checkersdto.RequestMeta, args []string) error {
	if len(args) == 0 {
		b.reply(ctx, meta.Room, b.formatter.Help())
		return nil
	}
	g, _, err := b.lobby.Join(ctx, meta.Room, args[0], playerKey(meta), meta.Name)
	if err != nil {
		return b.lobbyRefusal(ctx, meta.Room, err)
	}
	state, err := b.matches.ToDTO(ctx, g)
	if err != nil {
		return err
	}
	return b.presenter.Board(ctx, meta.Room, b.formatter.Created(state), state)
}

func (b *bot) list(ctx context.Context, meta checkersdto.RequestMeta) error {
	open, err := b.lobby.List(ctx, meta.Room)
	if err != nil {
		return err
	}
	b.reply(ctx, meta.Room, b.formatter.Lobby(open))
	return nil
}

func (b *bot) cancel(ctx context.Context, meta checkersdto.RequestMeta) error {
	ch, err := b.lobby.Cancel(ctx, playerKey(meta))
	if err != nil {
		return b.lobbyRefusal(ctx, meta.Room, err)
	}
	b.reply(ctx, meta.Room, b.formatter.Cancelled(ch))
	return nil
}

// lobbyRefusal answers known lobby refusals and passes anything else up.
func (b *bot) lobbyRefusal(ctx context.Context, room string, err error) error {
	text, ok := b.formatter.LobbyError(err)
	if !ok {
		return err
	}
	b.reply(ctx, room, text)
	return nil
}

func (b *bot) move(ctx context.Context, meta checkersdto.RequestMeta, line string) error {
	started := time.Now()
	g, text, err := b.matches.Play(ctx, playerKey(meta), meta.Room, line)
	if err != nil {
		return err
	}
	// refusals hand back the unchanged game
	if g == nil || g.UpdatedAt.Before(started) {
		b.reply(ctx, meta.Room, text)
		return nil
	}
	state, err := b.matches.ToDTO(ctx, g)
	if err != nil {
		return err
	}
	return b.presenter.Board(ctx, meta.Room, text, state)
}

func (b *bot) hint(ctx context.Context, meta checkersdto.RequestMeta, args []string) error {
	if len(args) == 0 {
		b.reply(ctx, meta.Room, b.formatter.Help())
		return nil
	}
	state, text, err := b.matches.Hint(ctx, playerKey(meta), meta.Room, args[0])
	if err != nil {
		return err
	}
	return b.presenter.Board(ctx, meta.Room, text, state)
}

func (b *bot) status(ctx context.Context, meta checkersdto.RequestMeta) error {
	g, err := b.matches.GetActiveByUserInRoom(ctx, playerKey(meta), meta.Room)
	if err != nil {
		return err
	}
	if g == nil {
		b.reply(ctx, meta.Room, b.formatter.Status(nil))
		return nil
	}
	state, err := b.matches.ToDTO(ctx, g)
	if err != nil {
		return err
	}
	return b.presenter.Board(ctx, meta.Room, b.formatter.Status(state), state)
}

func (b *bot) moves(ctx context.Context, meta checkersdto.RequestMeta) error {
	g, err := b.matches.GetActiveByUserInRoom(ctx, playerKey(meta), meta.Room)
	if err != nil {
		return err
	}
	b.reply(ctx, meta.Room, b.formatter.Moves(g))
	return nil
}

func (b *bot) resign(ctx context.Context, meta checkersdto.RequestMeta) error {
	g, text, err := b.matches.Resign(ctx, playerKey(meta), meta.Room)
	if err != nil {
		return err
	}
	if g == nil || g.Active() {
		b.reply(ctx, meta.Room, text)
		return nil
	}
	state, err := b.matches.ToDTO(ctx, g)
	if err != nil {
		return err
	}
	return b.presenter.Board(ctx, meta.Room, text, state)
}

func (b *bot) replay(ctx context.Context, meta checkersdto.RequestMeta, body string) error {
	if strings.TrimSpace(body) == "" {
		b.reply(ctx, meta.Room, b.formatter.ReplayUsage())
		return nil
	}
	sum, err := b.matches.Replay(ctx, body)
	if err != nil {
		return err
	}
	b.log.Info("replay",
		zap.String("room", meta.Room),
		zap.Int("applied", sum.Applied),
		zap.Int("failed_line", sum.FailedLine),
	)
	return b.presenter.Replay(ctx, meta.Room, b.formatter.Replay(sum), sum)
}

func (b *bot) reply(ctx context.Context, room, text string) {
	if err := b.presenter.Text(ctx, room, text); err != nil {
		b.log.Warn("reply_error", zap.String("room", room), zap.Error(err))
	}
}

// playerKey identifies a player by display name, since a mention in
// "start @name" carries only the name.
func playerKey(meta checkersdto.RequestMeta) string { return strings.TrimSpace(meta.Name) }

type prefixProvider struct{ prefix string }

func (p prefixProvider) Prefix() string { return p.prefix }
