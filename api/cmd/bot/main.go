package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"hash/fnv"
	"log"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/jackc/pgx/v5"
	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"screening-bot/api/internal/config"
	"screening-bot/api/internal/httpserver"
	"screening-bot/api/internal/logx"
	"screening-bot/api/internal/metrics"
	"screening-bot/api/internal/predict"
	"screening-bot/api/internal/screening"
	"screening-bot/api/internal/session"
	"screening-bot/api/internal/store"
	"screening-bot/api/internal/telegram"
)

func main() {
	cfg := config.LoadBot()
	logger := logx.New(os.Stdout, cfg.LogLevel)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	// --- Postgres (необязателен: без него флаг входа живёт в памяти) ---
	var (
		flags   session.FlagStore = session.NewMemoryStore()
		history telegram.History
		dbCheck httpserver.CheckFunc
	)
	if cfg.DatabaseURL != "" {
		db, err := sql.Open("pgx", cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("sql.Open: %v", err)
		}
		defer db.Close()
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(10)
		db.SetConnMaxLifetime(1 * time.Hour)

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		if err := db.PingContext(pingCtx); err != nil {
			cancel()
			log.Fatalf("db.Ping: %v", err)
		}
		if err := store.EnsureSchema(pingCtx, db); err != nil {
			cancel()
			log.Fatalf("ensure schema: %v", err)
		}
		cancel()
		logger.Info("db connected", "dsn", dsnSummary(cfg.DatabaseURL))

		flags = store.NewSessionRepo(db)
		history = store.NewResultRepo(db)
		dbCheck = db.PingContext
	} else {
		logger.Warn("DATABASE_URL is not set: session flags are kept in memory, history is disabled")
	}

	// --- Telegram bot ---
	bot, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		log.Fatal(err)
	}
	bot.Debug = false

	client := predict.New(cfg.PredictBaseURL, predict.WithLogger(logger), predict.WithMetrics(m))
	r := &telegram.Router{
		Bot:     bot,
		Service: screening.New(client, m, logger),
		Gate:    session.NewGate(flags),
		History: history,
		Log:     logger,
		Ctx:     ctx,
	}

	// --- HTTP mux (DefaultServeMux) ---
	// ListenForWebhook регистрирует обработчик на DefaultServeMux, поэтому служебные маршруты там же.
	http.Handle("/healthz", httpserver.Health("db", dbCheck))
	http.Handle("/metrics", metrics.Handler(reg))

	addr := "0.0.0.0:" + cfg.Port
	go func() {
		if err := httpserver.Serve(ctx, addr, http.DefaultServeMux, logger); err != nil {
			log.Fatal(err)
		}
	}()

	// --- Choose mode: Webhook vs Polling ---
	if webhookURL := strings.TrimSpace(cfg.WebhookURL); webhookURL != "" {
		runWebhook(ctx, bot, r, webhookURL, logger)
	} else {
		runPolling(ctx, bot, r.HandleUpdate, logger)
	}
	r.Wait()
	logger.Info("bot stopped")
}

// ---------------- Modes -----------------

func runWebhook(ctx context.Context, bot *tgbotapi.BotAPI, r *telegram.Router, baseURL string, logger *slog.Logger) {
	path := webhookPath(bot.Token)
	public := strings.TrimRight(baseURL, "/") + path

	wh, err := tgbotapi.NewWebhook(public)
	if err != nil {
		log.Fatal(err)
	}
	wh.DropPendingUpdates = true
	if _, err := bot.Request(wh); err != nil {
		log.Fatal(err)
	}

	updates := bot.ListenForWebhook(path)
	logger.Info("webhook registered", "path", path)
	for {
		select {
		case <-ctx.Done():
			return
		case upd, ok := <-updates:
			if !ok {
				logger.Warn("webhook updates channel closed")
				return
			}
			r.HandleUpdate(upd)
		}
	}
}

// ---------------- Polling loop -----------------

// retryDelay — пауза перед повтором getUpdates. Telegram сам сообщает retry_after при 429.
func retryDelay(err error) time.Duration {
	if err == nil {
		return 0
	}
	var apiErr *tgbotapi.Error
	if errors.As(err, &apiErr) {
		if apiErr.RetryAfter > 0 {
			return time.Duration(apiErr.RetryAfter) * time.Second
		}
		if apiErr.Code == http.StatusTooManyRequests {
			return 3 * time.Second
		}
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return 2 * time.Second
	}
	return time.Second
}

// Updater — часть *tgbotapi.BotAPI для long polling.
type Updater interface {
	GetUpdates(config tgbotapi.UpdateConfig) ([]tgbotapi.Update, error)
}

func runPolling(ctx context.Context, bot Updater, handle func(tgbotapi.Update), logger *slog.Logger) {
	offset := 0
	baseDelay := 1 * time.Second
	maxDelay := 15 * time.Second

	for {
		select {
		case <-ctx.Done():
			logger.Info("polling: context cancelled")
			return
		default:
		}

		u := tgbotapi.NewUpdate(offset)
		u.Timeout = 30 // long polling timeout (sec)

		updates, err := bot.GetUpdates(u)
		if err != nil {
			d := min(max(retryDelay(err), baseDelay), maxDelay)
			logger.Warn("polling error", "err", err, "retry_in", d)
			sleep(ctx, d)
			continue
		}

		for _, upd := range updates {
			if upd.UpdateID >= offset {
				offset = upd.UpdateID + 1
			}
			handle(upd)
		}

		if len(updates) == 0 {
			sleep(ctx, 200*time.Millisecond)
		}
	}
}

func sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

// ---------------- Helpers -----------------

// webhookPath — секретный путь вебхука, производный от токена.
func webhookPath(token string) string {
	h := fnv.New64a()
	_, _ = h.Write([]byte(token))
	return fmt.Sprintf("/webhook/%016x", h.Sum64())
}

// dsnSummary — адрес базы для логов, без пароля.
func dsnSummary(dsn string) string {
	cfg, err := pgx.ParseConfig(dsn)
	if err != nil {
		return "dsn: parse error"
	}
	return fmt.Sprintf("host=%s port=%d db=%s user=%s", cfg.Host, cfg.Port, cfg.Database, cfg.User)
}
