package main // Entry point package

import (
	"log" // Logging library

	"github.com/joho/godotenv"    // .env loader for local development
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/emran-niftyitsolution/tms-sub000/internal/config"     // Internal config loader
	"github.com/emran-niftyitsolution/tms-sub000/internal/database"   // MySQL connector
	"github.com/emran-niftyitsolution/tms-sub000/internal/handler"    // HTTP handlers
	"github.com/emran-niftyitsolution/tms-sub000/internal/middleware" // Redis-backed cache and rate limiting
	"github.com/emran-niftyitsolution/tms-sub000/internal/queue"      // ticket.issued consumer
	"github.com/emran-niftyitsolution/tms-sub000/internal/repository" // data access layer
	"github.com/emran-niftyitsolution/tms-sub000/internal/router"     // route registration
)

func main() {
	// Load .env if present; real environments set variables directly.
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}

	cfg := config.Load() // Load environment config

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Repositories share the single pooled connection.
	userRepo := repository.NewUserRepo(db)
	tokenRepo := repository.NewTokenRepo(db)
	companyRepo := repository.NewCompanyRepo(db)
	seatPlanRepo := repository.NewSeatPlanRepo(db)
	busRepo := repository.NewBusRepo(db)
	routeRepo := repository.NewRouteRepo(db)
	scheduleRepo := repository.NewScheduleRepo(db)
	seatLockRepo := repository.NewSeatLockRepo(db)
	ticketRepo := repository.NewTicketRepo(db)

	authHandler := handler.NewAuthHandler(cfg, userRepo, tokenRepo)
	adminHandler := handler.NewAdminHandler(companyRepo, seatPlanRepo, busRepo, routeRepo, scheduleRepo, ticketRepo)
	customerHandler := handler.NewCustomerHandler(scheduleRepo, seatLockRepo, ticketRepo)
	publicHandler := &handler.PublicHandler{
		CompanyRepo:  companyRepo,
		RouteRepo:    routeRepo,
		BusRepo:      busRepo,
		ScheduleRepo: scheduleRepo,
	}

	e := echo.New() // Create Echo instance

	// Redis-backed token-bucket rate limiting over every route.  The response
	// cache keys on route and query only, so it goes to the public browse
	// group alone; caching an authenticated response would replay one user's
	// data to the next caller.  Both degrade to no-ops when disabled or when
	// Redis is unavailable.
	rdb := config.NewRedisClient()
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
	responseCache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)

	router.RegisterRoutes(e) // health check
	router.RegisterAuth(e, authHandler, cfg.JWTSecret)
	router.RegisterPublic(e, publicHandler, customerHandler, responseCache)
	router.RegisterAdmin(e, adminHandler, cfg.JWTSecret)
	router.RegisterAdminTickets(e, adminHandler, cfg.JWTSecret)
	router.RegisterCustomer(e, customerHandler, cfg.JWTSecret)

	// Consume ticket.issued events in the background; the loop reconnects on
	// broker failures and never stops the HTTP server.
	go func() {
		if err := queue.StartTicketConsumer(); err != nil {
			log.Printf("ticket consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port                                // Address string with port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env) // Print startup info

	if err := e.Start(addr); err != nil { // Start HTTP server
		log.Fatal(err) // Log and exit if server fails
	}
}
