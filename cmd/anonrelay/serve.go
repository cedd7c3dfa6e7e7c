package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	v1 "github.com/humoyun-dev/anonim-chat/cmd/anonrelay/router/v1"
	"github.com/humoyun-dev/anonim-chat/internal/config"
	msgadapter "github.com/humoyun-dev/anonim-chat/internal/infrastructure/messenger/adapter"
	"github.com/humoyun-dev/anonim-chat/internal/infrastructure/realtime"
	"github.com/humoyun-dev/anonim-chat/internal/infrastructure/scheduler"
	"github.com/humoyun-dev/anonim-chat/internal/pkg/anon/application/feed"
	"github.com/humoyun-dev/anonim-chat/internal/pkg/anon/application/guard"
	"github.com/humoyun-dev/anonim-chat/internal/pkg/anon/application/locale"
	"github.com/humoyun-dev/anonim-chat/internal/pkg/anon/application/task"
	"github.com/humoyun-dev/anonim-chat/internal/pkg/anon/application/usecase"
	"github.com/humoyun-dev/anonim-chat/internal/pkg/anon/presentation/bot"
	httpHandler "github.com/humoyun-dev/anonim-chat/internal/pkg/anon/presentation/http"
)

func newServeCmd() *cobra.Command {
	var migrate bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the bot, the background worker and the dashboard API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			if cfg.BotToken == "" {
				return errors.New("BOT_TOKEN is required")
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg, migrate, slog.Default())
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", true, "apply the database schema on startup")
	return cmd
}

func serve(ctx context.Context, cfg *config.Config, migrate bool, logger *slog.Logger) error {
	bootCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	st, err := openStores(bootCtx, cfg, migrate, logger)
	if err != nil {
		return err
	}
	defer st.close()

	bg, err := openBackground(bootCtx, cfg, logger)
	if err != nil {
		return err
	}
	defer bg.close()
	if cfg.RedisURL != "" {
		st.checks["redis"] = bg.cache
	}

	tg, err := msgadapter.NewTelegram(cfg.BotToken, msgadapter.TelegramOptions{
		CallTimeout: cfg.SendTimeout,
		RatePerSec:  cfg.SendRate,
		Burst:       max(1, int(cfg.SendRate)),
	})
	if err != nil {
		return err
	}
	username := cfg.BotUsername
	if username == "" {
		if username, err = tg.Username(bootCtx); err != nil {
			return fmt.Errorf("resolve bot username: %w", err)
		}
	}

	words, err := guard.LoadBannedWords(cfg.BannedWords, cfg.BannedWordsFile)
	if err != nil {
		return err
	}
	spam := guard.New(guard.Options{
		Window:      cfg.SpamWindow,
		MaxMessages: cfg.SpamMaxMessages,
		StaleAfter:  cfg.SpamStaleAfter,
		BannedWords: words,
	})

	loc := locale.NewResolver(bg.cache, st.users, locale.DefaultTTL, logger)
	disclose := usecase.NewDiscloseSenderUseCase(st.users, tg, loc, logger)
	task.RegisterConfirmPurchaseTask(bg.server, usecase.NewConfirmPurchaseUseCase(st.messages, disclose), tg, loc, logger)

	expire := usecase.NewExpireReplyStatesUseCase(st.pairs, cfg.ReplyTTL)
	dispatcher := bot.NewDispatcher(bot.UseCases{
		Record:   usecase.NewRecordUserUseCase(st.users),
		Join:     usecase.NewJoinAsAnonUseCase(st.pairs),
		Reply:    usecase.NewEnterReplyModeUseCase(st.pairs, st.messages),
		Resolve:  usecase.NewResolveRecipientUseCase(st.pairs, cfg.ReplyTTL),
		Relay:    usecase.NewRelayMessageUseCase(st.messages, st.summaries, st.pairs, usecase.NewDeliverer(tg, cfg.SendTimeout, logger), loc, cfg.RevealStars, logger),
		Cancel:   usecase.NewCancelReplyUseCase(st.pairs),
		Reveal:   usecase.NewRequestRevealUseCase(st.messages, disclose, cfg.RevealStars),
		AskAgain: usecase.NewAskAgainUseCase(st.pairs, tg, loc, logger),
		SetLang:  usecase.NewSetLanguageUseCase(st.users, loc),
		Mirror:   usecase.NewMirrorReactionUseCase(st.messages, tg, logger),
	}, tg, st.messages, bg.client, spam, loc, bot.Options{
		BotUsername: username,
		RevealStars: cfg.RevealStars,
		PaySupport:  cfg.PaySupportText,
	}, logger)

	housekeeping, err := scheduler.New(cfg.SweepSchedule, logger, append([]scheduler.Job{
		{Name: "spam_guard_sweep", Run: func(_ context.Context, now time.Time) error {
			if n := spam.Sweep(now); n > 0 {
				logger.Debug("spam_guard_swept", "evicted", n)
			}
			return nil
		}},
		{Name: "reply_state_expiry", Run: func(ctx context.Context, now time.Time) error {
			n, err := expire.Execute(ctx, now)
			if n > 0 {
				logger.Info("reply_states_expired", "count", n)
			}
			return err
		}},
	}, bg.jobs...)...)
	if err != nil {
		return err
	}

	hub := realtime.NewRouter()
	defer hub.Close()
	live := feed.New(st.changes, st.messages, hub, feed.DefaultOptions(), logger)

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	v1.RegisterRoutes(engine, httpHandler.Stores{Messages: st.messages, Summaries: st.summaries, Users: st.users}, hub, st.checks, cfg.DashboardToken, logger)
	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: engine, ReadHeaderTimeout: 10 * time.Second}

	ctx, cancelRun := context.WithCancel(ctx)
	defer cancelRun()

	var wg sync.WaitGroup
	run := func(name string, fn func()) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			fn()
			logger.Info("component_stopped", "component", name)
		}()
	}

	run("worker", func() {
		if err := bg.server.Run(ctx); err != nil {
			logger.Error("worker_failed", "err", err)
		}
	})
	run("housekeeping", func() { housekeeping.Run(ctx) })
	run("feed", func() {
		if err := live.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("feed_failed", "err", err)
		}
	})
	run("bot", func() { tg.Listen(ctx, dispatcher.Handle) })

	httpErr := make(chan error, 1)
	run("http", func() {
		logger.Info("http_listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			httpErr <- err
		}
	})

	logger.Info("anonrelay_started", "bot", username, "reveal_stars", cfg.RevealStars, "reply_ttl", cfg.ReplyTTL)

	var runErr error
	select {
	case <-ctx.Done():
	case runErr = <-httpErr:
		logger.Error("http_failed", "err", runErr)
	}
	cancelRun()

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http_shutdown_failed", "err", err)
	}
	wg.Wait()
	return runErr
}
