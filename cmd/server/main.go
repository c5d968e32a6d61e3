package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	http_handler "bambu.printjobs/internal/adapters/handler/http"
	"bambu.printjobs/internal/adapters/handler/mqtt"
	"bambu.printjobs/internal/adapters/homeassistant"
	"bambu.printjobs/internal/adapters/printer/bambu"
	redis_adapter "bambu.printjobs/internal/adapters/queue/redis"
	"bambu.printjobs/internal/config"
	"bambu.printjobs/internal/core/logger"
	"bambu.printjobs/internal/core/ports"
	"bambu.printjobs/internal/core/services"
	"bambu.printjobs/internal/core/tracing"
	"github.com/redis/go-redis/v9"
)

const version = "0.1.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	logger.Init(cfg.LogLevel, cfg.LogFormat)
	logger.Info("Starting bambu print job service", "version", version, "backend", cfg.InvokerBackend)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.EnableTracing {
		shutdownTracing, err := tracing.Init(cfg.ServiceName, cfg.OTLPEndpoint)
		if err != nil {
			logger.Error("Failed to initialize tracing", "error", err)
		} else {
			defer func() {
				if err := shutdownTracing(context.Background()); err != nil {
					logger.Error("Failed to shutdown tracing", "error", err)
				}
			}()
		}
	}

	ha := homeassistant.NewClient(cfg.HAURL, cfg.HAToken)

	var (
		caller    ports.ServiceCaller = ha
		connector services.Connector
	)
	if cfg.InvokerBackend == config.BackendMQTT {
		printer, err := bambu.DialPrinter(cfg.PrinterMQTTURL, cfg.PrinterSerial, cfg.PrinterAccessCode)
		if err != nil {
			logger.Error("Failed to connect to printer", "error", err)
			log.Fatalf("failed to connect to printer: %v", err)
		}
		defer printer.Close()
		caller = bambu.NewDispatcher(bambu.NewCache(cfg.CacheDir), printer, cfg.PrinterSerial)
		connector = printer
	}

	hub := http_handler.NewHub()
	go hub.Run(ctx)

	var mqttPublisher *mqtt.Publisher
	if cfg.MQTTBrokerURL != "" {
		mqttPublisher, err = mqtt.NewPublisher(cfg.MQTTBrokerURL, cfg.MQTTPrefix)
		if err != nil {
			logger.Error("Failed to init MQTT publisher", "error", err)
		} else {
			defer mqttPublisher.Close()
			if connector == nil {
				connector = mqttPublisher
			}
		}
	}

	// Without Redis, events go straight to local sinks. With Redis, every
	// instance publishes there and relays the shared stream to its own sinks.
	var (
		events      ports.EventPublisher
		sinks       []ports.SnapshotSink
		redisClient *redis.Client
	)
	if cfg.RedisURL != "" {
		adapter, client, err := redis_adapter.NewRedisAdapter(cfg.RedisURL)
		if err != nil {
			logger.Error("Failed to init redis", "error", err)
			log.Fatalf("failed to init redis: %v", err)
		}
		defer client.Close()
		redisClient = client
		events = adapter
		sinks = []ports.SnapshotSink{adapter}

		go relay(ctx, adapter, hub, hub)
		if mqttPublisher != nil {
			go relay(ctx, adapter, mqttPublisher, mqttPublisher)
		}
	} else {
		fanout := services.EventFanout{hub}
		sinks = []ports.SnapshotSink{hub}
		if mqttPublisher != nil {
			fanout = append(fanout, mqttPublisher)
			sinks = append(sinks, mqttPublisher)
		}
		events = fanout
	}

	jobService := services.NewJobService(ha)
	invoker := services.NewInvoker(caller, events)
	healthService := services.NewHealthService(ha, redisClient, connector, version)

	go services.NewJobWatcher(jobService, cfg.WatchInterval, sinks...).Start(ctx)

	httpServer := http_handler.NewServer(jobService, invoker, healthService, hub, http_handler.Options{
		CacheDir:      cfg.CacheDir,
		EnableMetrics: cfg.EnableMetrics,
	})

	logger.Info("HTTP Server starting", "port", cfg.HTTPPort)
	if err := httpServer.Run(ctx, ":"+cfg.HTTPPort); err != nil {
		logger.Error("HTTP server failed", "error", err)
		log.Fatalf("failed to serve http: %v", err)
	}
	logger.Info("Shut down gracefully")
}

func relay(ctx context.Context, sub ports.EventSubscriber, pub ports.EventPublisher, sink ports.SnapshotSink) {
	if err := services.Relay(ctx, sub, pub, sink); err != nil {
		logger.Error("Event relay stopped", "error", err)
	}
}
