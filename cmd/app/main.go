package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Domenick1991/showbooking/config"
	"github.com/Domenick1991/showbooking/internal/bootstrap"
	"github.com/Domenick1991/showbooking/internal/cache"
	"github.com/Domenick1991/showbooking/internal/kafka"
	"github.com/Domenick1991/showbooking/internal/repository"
	"github.com/Domenick1991/showbooking/internal/service/booking"
	"github.com/Domenick1991/showbooking/internal/service/showings"
	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	redisCache := cache.NewRedisCache(cfg.Redis, time.Duration(cfg.Catalog.CacheTTLSeconds)*time.Second)
	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()

	showingRepo := repository.NewShowingRepository(pool)
	reservationRepo := repository.NewReservationRepository(pool)
	showingService := showings.NewShowingService(showingRepo, redisCache, cfg.Catalog.PageSize)
	bookingService := booking.NewBookingService(
		reservationRepo,
		showingRepo,
		booking.WithCache(redisCache),
		booking.WithProducer(producer, cfg.Kafka.BookingTopic),
	)

	if err := bootstrap.Run(ctx, cfg, showingService, bookingService); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
