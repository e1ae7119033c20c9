// Fabrica API — HTTP-сервер учёта производственных заказов:
// рецепты, изделия, снапшоты и активация заказов.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shaiso/Fabrica/internal/activation"
	"github.com/shaiso/Fabrica/internal/api"
	"github.com/shaiso/Fabrica/internal/mq"
	"github.com/shaiso/Fabrica/internal/repo"
	"github.com/shaiso/Fabrica/internal/snapshot"
	"github.com/shaiso/Fabrica/internal/telemetry"
)

var (
	startTime = time.Now()
	reqTotal  = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fabrica_api_http_requests_total",
		Help: "Total HTTP requests handled by fabrica_api",
	})
)

func main() {
	// Инициализируем structured logging
	logger := telemetry.SetupLogger()
	logger.Info("starting fabrica-api")

	// Подключаемся к базе данных
	pool, err := repo.NewPool(context.Background())
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()
	logger.Info("connected to database")

	// Создаём репозитории
	recipeRepo := repo.NewRecipeRepo(pool)
	productRepo := repo.NewProductRepo(pool)
	projectRepo := repo.NewProjectRepo(pool)
	taskRepo := repo.NewTaskRepo(pool)
	recipeSnapRepo := repo.NewRecipeSnapshotRepo(pool)
	productSnapRepo := repo.NewProductSnapshotRepo(pool)

	// Снапшот-кэш рецептов и изделий
	snapshots := snapshot.New(snapshot.Config{
		Recipes:      recipeRepo,
		Products:     productRepo,
		RecipeSnaps:  recipeSnapRepo,
		ProductSnaps: productSnapRepo,
		Logger:       logger,
	})

	// RabbitMQ — опционален: без него события просто не публикуются
	var publisher *mq.Publisher
	amqpURL := os.Getenv("AMQP_URL")
	if amqpURL == "" {
		amqpURL = mq.DefaultURL()
	}
	conn, err := mq.NewConnection(amqpURL, logger)
	if err != nil {
		logger.Warn("rabbitmq unavailable, events disabled", "error", err)
	} else {
		defer conn.Close()
		if err := mq.SetupTopology(context.Background(), conn); err != nil {
			logger.Error("failed to setup mq topology", "error", err)
			os.Exit(1)
		}
		publisher = mq.NewPublisher(conn, logger)
		logger.Info("connected to RabbitMQ")
	}

	// Движок активации заказов
	activatorCfg := activation.Config{
		Pool:        pool,
		Snapshots:   snapshots,
		RecipeSnaps: recipeSnapRepo,
		Logger:      logger,
	}
	if publisher != nil {
		activatorCfg.Publisher = publisher
	}
	activator := activation.New(activatorCfg)

	// Создаём API handler
	handler := api.NewHandler(api.Config{
		RecipeRepo:      recipeRepo,
		ProductRepo:     productRepo,
		ProjectRepo:     projectRepo,
		TaskRepo:        taskRepo,
		RecipeSnapRepo:  recipeSnapRepo,
		ProductSnapRepo: productSnapRepo,
		Snapshots:       snapshots,
		Activator:       activator,
		Logger:          logger,
	})

	mux := http.NewServeMux()

	// Health и metrics
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		reqTotal.Inc()
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "ok %s", time.Since(startTime))
	})
	mux.Handle("/metrics", promhttp.Handler())

	// Регистрируем API маршруты
	handler.RegisterRoutes(mux)

	addr := ":8080"
	if v := os.Getenv("API_PORT"); v != "" {
		addr = ":" + v
	}

	// Создаём HTTP сервер с возможностью graceful shutdown
	server := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	// Запускаем сервер в горутине
	go func() {
		logger.Info("listening", "addr", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Ожидаем сигнал завершения
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	<-ctx.Done()
	logger.Info("shutting down")

	// Graceful shutdown с таймаутом 10 секунд
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}

	logger.Info("stopped")
}
