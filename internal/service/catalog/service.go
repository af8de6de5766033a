// Package catalog proxies movie metadata from the third-party TMDB catalog,
// caching responses so the mobile home screen does not hammer the upstream.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	redisrepo "github.com/moviepass/moviepass/internal/repository/redis"
	"github.com/moviepass/moviepass/internal/tmdb"
)

// API is the upstream catalog contract, implemented by tmdb.Client.
type API interface {
	NowPlaying(ctx context.Context, page int) (*tmdb.MovieList, error)
	Upcoming(ctx context.Context, page int) (*tmdb.MovieList, error)
	Popular(ctx context.Context, page int) (*tmdb.MovieList, error)
	Details(ctx context.Context, movieID string) (*tmdb.Movie, error)
	Similar(ctx context.Context, movieID string, page int) (*tmdb.MovieList, error)
	Search(ctx context.Context, query string, page int) (*tmdb.MovieList, error)
}

type Config struct {
	ListTTL    time.Duration
	DetailsTTL time.Duration
}

type Service struct {
	api   API
	cache *redisrepo.Cache
	cfg   Config
}

func New(api API, cache *redisrepo.Cache, cfg Config) *Service {
	if cfg.ListTTL <= 0 {
		cfg.ListTTL = 1 * time.Minute
	}

	if cfg.DetailsTTL <= 0 {
		cfg.DetailsTTL = 10 * time.Minute
	}

	return &Service{
		api:   api,
		cache: cache,
		cfg:   cfg,
	}
}

func (s *Service) NowPlaying(ctx context.Context, page int) (*tmdb.MovieList, error) {
	const op = "service.catalog.NowPlaying"

	list, err := s.cachedList(ctx, redisrepo.KeyMovieList("now_playing", page), func(ctx context.Context) (*tmdb.MovieList, error) {
		return s.api.NowPlaying(ctx, page)
	})
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return list, nil
}

func (s *Service) Upcoming(ctx context.Context, page int) (*tmdb.MovieList, error) {
	const op = "service.catalog.Upcoming"

	list, err := s.cachedList(ctx, redisrepo.KeyMovieList("upcoming", page), func(ctx context.Context) (*tmdb.MovieList, error) {
		return s.api.Upcoming(ctx, page)
	})
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return list, nil
}

func (s *Service) Popular(ctx context.Context, page int) (*tmdb.MovieList, error) {
	const op = "service.catalog.Popular"

	list, err := s.cachedList(ctx, redisrepo.KeyMovieList("popular", page), func(ctx context.Context) (*tmdb.MovieList, error) {
		return s.api.Popular(ctx, page)
	})
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return list, nil
}

func (s *Service) Details(ctx context.Context, movieID string) (*tmdb.Movie, error) {
	const op = "service.catalog.Details"

	loader := func(ctx context.Context) (*tmdb.Movie, error) {
		return s.api.Details(ctx, movieID)
	}

	var (
		movie *tmdb.Movie
		err   error
	)

	if s.cache != nil {
		movie, err = redisrepo.GetOrSetJSON(ctx, s.cache, redisrepo.KeyMovieDetails(movieID), s.cfg.DetailsTTL, loader)
	} else {
		movie, err = loader(ctx)
	}
	if err != nil {
		if errors.Is(err, tmdb.ErrNotFound) {
			return nil, fmt.Errorf("%s:%w", op, ErrMovieNotFound)
		}

		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return movie, nil
}

func (s *Service) Similar(ctx context.Context, movieID string, page int) (*tmdb.MovieList, error) {
	const op = "service.catalog.Similar"

	list, err := s.cachedList(ctx, redisrepo.KeyMovieSimilar(movieID, page), func(ctx context.Context) (*tmdb.MovieList, error) {
		return s.api.Similar(ctx, movieID, page)
	})
	if err != nil {
		if errors.Is(err, tmdb.ErrNotFound) {
			return nil, fmt.Errorf("%s:%w", op, ErrMovieNotFound)
		}

		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return list, nil
}

func (s *Service) Search(ctx context.Context, query string, page int) (*tmdb.MovieList, error) {
	const op = "service.catalog.Search"

	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}

	list, err := s.cachedList(ctx, redisrepo.KeySearch(strings.ToLower(query), page), func(ctx context.Context) (*tmdb.MovieList, error) {
		return s.api.Search(ctx, query, page)
	})
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return list, nil
}

func (s *Service) cachedList(
	ctx context.Context,
	key string,
	loader func(ctx context.Context) (*tmdb.MovieList, error),
) (*tmdb.MovieList, error) {
	if s.cache == nil {
		return loader(ctx)
	}

	return redisrepo.GetOrSetJSON(ctx, s.cache, key, s.cfg.ListTTL, loader)
}
