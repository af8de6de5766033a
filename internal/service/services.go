package service

import (
	postgres "github.com/moviepass/moviepass/internal/repository/postgres"
	redis "github.com/moviepass/moviepass/internal/repository/redis"
	"github.com/moviepass/moviepass/internal/service/booking"
	"github.com/moviepass/moviepass/internal/service/catalog"
)

type Services struct {
	Booking *booking.Service
	Catalog *catalog.Service
}

type Config struct {
	Booking booking.Config
	Catalog catalog.Config
}

func NewServices(
	store *postgres.Store,
	cache *redis.Cache,
	pubsub *redis.ShowingsPubSub,
	limiter *redis.SlidingWindowLimiter,
	api catalog.API,
	cfg Config,
) *Services {
	return &Services{
		Booking: booking.New(store.Tickets(), cache, pubsub, limiter, cfg.Booking),
		Catalog: catalog.New(api, cache, cfg.Catalog),
	}
}
