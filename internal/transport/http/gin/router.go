package httpgin

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	redisrepo "github.com/moviepass/moviepass/internal/repository/redis"
	"github.com/moviepass/moviepass/internal/service"
	"github.com/moviepass/moviepass/internal/service/booking"
	"github.com/moviepass/moviepass/internal/service/catalog"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// IdempotencyStore replays stored booking responses for repeated
// Idempotency-Key requests. Implemented by redisrepo.IdempotencyStore.
type IdempotencyStore interface {
	GetResult(ctx context.Context, key string) (string, bool, error)
	AcquireLock(ctx context.Context, key string, lockTTL time.Duration) (bool, error)
	SaveResult(ctx context.Context, key string, jsonPayload string) error
	Release(ctx context.Context, key string) error
}

func NewRouter(
	svcs *service.Services,
	idem IdempotencyStore,
	authSecret string,
	logger *slog.Logger,
	middlewares ...gin.HandlerFunc,
) *gin.Engine {
	r := gin.New()

	r.Use(gin.Recovery(), LoggingMiddleware(logger), RequestIDMiddleware(), CORS())
	for _, m := range middlewares {
		if m != nil {
			r.Use(m)
		}
	}

	// Swagger UI
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// health
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, MessageResponse{Message: "Welcome to MoviePass API", Success: true})
	})

	// Catalog (public, proxied from TMDB)
	movie := r.Group("/movie")
	{
		movie.GET("/now-playing", handleNowPlaying(svcs))
		movie.GET("/upcoming", handleUpcoming(svcs))
		movie.GET("/popular", handlePopular(svcs))
		movie.GET("/:id", handleMovieDetails(svcs))
		movie.GET("/:id/similar", handleSimilarMovies(svcs))
	}
	r.GET("/search", handleSearch(svcs))

	// Booking (authenticated)
	b := r.Group("/booking", BearerAuth(authSecret))
	{
		b.POST("/book", handleBookTicket(svcs, idem))
		b.GET("/my-tickets", handleMyTickets(svcs))
		b.GET("/ticket/:ticketId", handleTicketDetails(svcs))
		b.POST("/confirm-booking", handleConfirmBooking(svcs))
		b.GET("/showings/:movieId/seats", handleShowingSeats(svcs))
	}

	return r
}

// --- Booking handlers ---

// @Summary  Book seats for a showing (idempotent via Idempotency-Key)
// @Param    req body  BookTicketRequest true "payload"
// @Success  201 {object} BookTicketResponse
// @Failure  400 {object} ErrorResponse "validation / seats already booked"
// @Failure  429 {object} ErrorResponse "rate limited"
// @Router   /booking/book [post]
func handleBookTicket(
	svcs *service.Services,
	idem IdempotencyStore,
) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := callerIdentity(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "Authentication required.", Success: false})
			return
		}

		var req BookTicketRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "Movie ID, seats, and total price are required.")
			return
		}

		idemKey := strings.TrimSpace(c.GetHeader("Idempotency-Key"))
		var idemStorageKey string
		if idem != nil && idemKey != "" {
			idemStorageKey = redisrepo.KeyIdemBook(identity, req.MovieID, idemKey)

			if payload, ok, _ := idem.GetResult(c.Request.Context(), idemStorageKey); ok {
				c.Header("Idempotency-Key", idemKey)
				c.Data(http.StatusCreated, "application/json; charset=utf-8", []byte(payload))
				return
			}

			locked, err := idem.AcquireLock(c.Request.Context(), idemStorageKey, 60*time.Second)
			if err != nil {
				respondErr(c, err)
				return
			}
			if !locked {
				if payload, ok, _ := idem.GetResult(c.Request.Context(), idemStorageKey); ok {
					c.Header("Idempotency-Key", idemKey)
					c.Data(http.StatusCreated, "application/json; charset=utf-8", []byte(payload))
					return
				}
				c.Header("Retry-After", "1")
				c.JSON(http.StatusConflict, ErrorResponse{Message: "A booking with this idempotency key is in progress.", Success: false})
				return
			}
		}

		ticketID, err := svcs.Booking.CreateTicket(c.Request.Context(), booking.CreateTicketInput{
			ShowingID:  req.MovieID,
			Seats:      req.Seats,
			TotalPrice: req.TotalPrice,
			OwnerEmail: identity,
			RateKey:    "user:" + identity,
		})
		if err != nil {
			if idemStorageKey != "" && idem != nil {
				_ = idem.Release(c.Request.Context(), idemStorageKey)
			}
			respondErr(c, err)
			return
		}

		resp := BookTicketResponse{
			Message:  "Ticket booked successfully!",
			TicketID: ticketID.String(),
			Success:  true,
		}

		if idemStorageKey != "" && idem != nil {
			b, _ := json.Marshal(resp)
			_ = idem.SaveResult(c.Request.Context(), idemStorageKey, string(b))
			c.Header("Idempotency-Key", idemKey)
		}

		c.JSON(http.StatusCreated, resp)
	}
}

// @Summary  List the caller's tickets
// @Success  200 {object} TicketsResponse
// @Router   /booking/my-tickets [get]
func handleMyTickets(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := callerIdentity(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "Authentication required.", Success: false})
			return
		}

		tickets, err := svcs.Booking.MyTickets(c.Request.Context(), identity)
		if err != nil {
			respondErr(c, err)
			return
		}

		c.JSON(http.StatusOK, TicketsResponse{Tickets: tickets, Success: true})
	}
}

// @Summary  Get one ticket's details
// @Param    ticketId  path  string  true  "Ticket ID (uuid)"
// @Success  200 {object} TicketResponse
// @Failure  404 {object} ErrorResponse
// @Router   /booking/ticket/{ticketId} [get]
func handleTicketDetails(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := callerIdentity(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "Authentication required.", Success: false})
			return
		}

		ticketID, err := uuid.Parse(c.Param("ticketId"))
		if err != nil {
			c.JSON(http.StatusNotFound, ErrorResponse{Message: "Ticket not found.", Success: false})
			return
		}

		t, err := svcs.Booking.GetTicket(c.Request.Context(), ticketID, identity)
		if err != nil {
			respondErr(c, err)
			return
		}

		c.JSON(http.StatusOK, TicketResponse{Ticket: t, Success: true})
	}
}

// @Summary  Confirm a booking (flips status to paid)
// @Param    req body  ConfirmBookingRequest true "payload"
// @Success  200 {object} MessageResponse
// @Failure  400 {object} ErrorResponse
// @Failure  404 {object} ErrorResponse
// @Router   /booking/confirm-booking [post]
func handleConfirmBooking(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ConfirmBookingRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "Ticket ID is required.")
			return
		}

		ticketID, err := uuid.Parse(req.TicketID)
		if err != nil {
			c.JSON(http.StatusNotFound, ErrorResponse{Message: "Ticket not found.", Success: false})
			return
		}

		if err := svcs.Booking.ConfirmTicket(c.Request.Context(), ticketID); err != nil {
			respondErr(c, err)
			return
		}

		c.JSON(http.StatusOK, MessageResponse{
			Message: "Booking confirmed and payment processed.",
			Success: true,
		})
	}
}

// @Summary  List seats already taken for a showing
// @Param    movieId  path  string  true  "Showing ID"
// @Success  200 {object} ShowingSeatsResponse
// @Router   /booking/showings/{movieId}/seats [get]
func handleShowingSeats(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		seats, err := svcs.Booking.Availability(c.Request.Context(), c.Param("movieId"))
		if err != nil {
			respondErr(c, err)
			return
		}

		c.JSON(http.StatusOK, ShowingSeatsResponse{Seats: seats, Success: true})
	}
}

// --- Catalog handlers ---

// @Summary  Movies now playing
// @Param    page  query  int  false  "page"
// @Success  200 {object} tmdb.MovieList
// @Router   /movie/now-playing [get]
func handleNowPlaying(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := svcs.Catalog.NowPlaying(c.Request.Context(), parseIntDefault(c.Query("page"), 1))
		if err != nil {
			respondErr(c, err)
			return
		}
		writeJSONWithCache(c, http.StatusOK, list, "public, max-age=60", true)
	}
}

// @Summary  Upcoming movies
// @Param    page  query  int  false  "page"
// @Success  200 {object} tmdb.MovieList
// @Router   /movie/upcoming [get]
func handleUpcoming(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := svcs.Catalog.Upcoming(c.Request.Context(), parseIntDefault(c.Query("page"), 1))
		if err != nil {
			respondErr(c, err)
			return
		}
		writeJSONWithCache(c, http.StatusOK, list, "public, max-age=60", true)
	}
}

// @Summary  Popular movies
// @Param    page  query  int  false  "page"
// @Success  200 {object} tmdb.MovieList
// @Router   /movie/popular [get]
func handlePopular(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := svcs.Catalog.Popular(c.Request.Context(), parseIntDefault(c.Query("page"), 1))
		if err != nil {
			respondErr(c, err)
			return
		}
		writeJSONWithCache(c, http.StatusOK, list, "public, max-age=60", true)
	}
}

// @Summary  Movie details
// @Param    id  path  string  true  "Movie ID"
// @Success  200 {object} tmdb.Movie
// @Failure  404 {object} ErrorResponse
// @Router   /movie/{id} [get]
func handleMovieDetails(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		m, err := svcs.Catalog.Details(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondErr(c, err)
			return
		}
		writeJSONWithCache(c, http.StatusOK, m, "public, max-age=300", true)
	}
}

// @Summary  Similar movies
// @Param    id    path   string  true   "Movie ID"
// @Param    page  query  int     false  "page"
// @Success  200 {object} tmdb.MovieList
// @Router   /movie/{id}/similar [get]
func handleSimilarMovies(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := svcs.Catalog.Similar(c.Request.Context(), c.Param("id"), parseIntDefault(c.Query("page"), 1))
		if err != nil {
			respondErr(c, err)
			return
		}
		writeJSONWithCache(c, http.StatusOK, list, "public, max-age=60", true)
	}
}

// @Summary  Search movies
// @Param    query  query  string  true   "search text"
// @Param    page   query  int     false  "page"
// @Success  200 {object} tmdb.MovieList
// @Failure  400 {object} ErrorResponse
// @Router   /search [get]
func handleSearch(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := svcs.Catalog.Search(c.Request.Context(), c.Query("query"), parseIntDefault(c.Query("page"), 1))
		if err != nil {
			respondErr(c, err)
			return
		}
		writeJSONWithCache(c, http.StatusOK, list, "public, max-age=60", true)
	}
}

// --- Helpers ---

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Message: msg, Success: false})
}

func respondErr(c *gin.Context, err error) {
	if err == nil {
		c.Status(http.StatusNoContent)
		return
	}

	// booking service
	var taken *booking.SeatsTakenError
	if errors.As(err, &taken) {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: taken.Error(), Success: false})
		return
	}

	var invalid *booking.ValidationError
	if errors.As(err, &invalid) {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: invalid.Error(), Success: false})
		return
	}

	switch {
	case errors.Is(err, booking.ErrTicketNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Message: "Ticket not found.", Success: false})
		return
	case errors.Is(err, booking.ErrRateLimited):
		c.Header("Retry-After", "60")
		c.JSON(http.StatusTooManyRequests, ErrorResponse{Message: "Too many booking attempts. Please try again shortly.", Success: false})
		return
	// catalog service
	case errors.Is(err, catalog.ErrMovieNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Message: "Movie not found.", Success: false})
		return
	case errors.Is(err, catalog.ErrEmptyQuery):
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Search query is required.", Success: false})
		return
	}

	// storage/upstream failures: log the detail, keep the response generic
	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "Something went wrong. Please try again.", Success: false})
}
