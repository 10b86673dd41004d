package main

import (
	"flag"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/collinskramp/mao-http-endpoint-mock/internal/analytics"
	"github.com/collinskramp/mao-http-endpoint-mock/internal/clock"
	"github.com/collinskramp/mao-http-endpoint-mock/internal/config"
	"github.com/collinskramp/mao-http-endpoint-mock/internal/decisionlog"
	"github.com/collinskramp/mao-http-endpoint-mock/internal/observability"
	"github.com/collinskramp/mao-http-endpoint-mock/internal/random"
	"github.com/collinskramp/mao-http-endpoint-mock/internal/server"
	"github.com/collinskramp/mao-http-endpoint-mock/internal/sim"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config (defaults apply when empty)")
	listen := flag.String("listen", "", "override listen address")
	flag.Parse()

	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(log)
	decisionlog.SetLogger(log)

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("config", "error", err)
		os.Exit(1)
	}
	if *listen != "" {
		cfg.ListenAddr = *listen
	}

	shutdownTracer, err := observability.InitTracer("mock-endpoint")
	if err != nil {
		log.Error("tracing", "error", err)
		os.Exit(1)
	}
	defer shutdownTracer()

	pipe := sim.NewPipeline(cfg, clock.System(), random.New(time.Now().UnixNano()))
	srv := server.New(pipe, clock.System(), log)

	handler := srv.Handler()

	// Optional Redis analytics sink.
	var sink *analytics.Analytics
	if cfg.RedisAddr != "" {
		sink = analytics.New(redis.NewClient(&redis.Options{Addr: cfg.RedisAddr}))
		handler = analytics.Middleware(sink, handler)
		log.Info("analytics sink enabled", "redis_addr", cfg.RedisAddr)
	}

	// Optional ops listener: Prometheus metrics, state snapshot,
	// analytics fetch.
	if cfg.OpsAddr != "" {
		go func() {
			log.Info("ops listener", "addr", cfg.OpsAddr)
			if err := http.ListenAndServe(cfg.OpsAddr, srv.OpsHandler(sink)); err != nil {
				log.Error("ops listener", "error", err)
			}
		}()
	}

	log.Info("mock endpoint running", "addr", cfg.ListenAddr)
	if err := http.ListenAndServe(cfg.ListenAddr, handler); err != nil {
		log.Error("listen", "error", err)
		os.Exit(1)
	}
}
