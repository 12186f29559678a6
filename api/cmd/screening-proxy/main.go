package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"screening-bot/api/internal/config"
	"screening-bot/api/internal/handle"
	"screening-bot/api/internal/httpserver"
	"screening-bot/api/internal/logx"
	"screening-bot/api/internal/metrics"
	"screening-bot/api/internal/predict"
	"screening-bot/api/internal/ratelimit"
	"screening-bot/api/internal/screening"
)

func main() {
	cfg := config.Load()
	logger := logx.New(os.Stdout, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	client := predict.New(cfg.PredictBaseURL, predict.WithLogger(logger), predict.WithMetrics(m))
	svc := screening.New(client, m, logger)
	limiter := ratelimit.New(cfg.RateRPS, cfg.RateBurst, 10*time.Minute)

	router := httprouter.New()
	router.Handler("GET", "/healthz", httpserver.Health("proxy", nil))
	router.Handler("GET", "/metrics", metrics.Handler(reg))
	handle.New(svc, limiter, m, logger).Register(router)

	addr := ":" + cfg.Port
	logger.Info("screening-proxy starting", "predict_base_url", client.BaseURL)
	if err := httpserver.Serve(ctx, addr, router, logger); err != nil {
		log.Fatal(err)
	}
}
