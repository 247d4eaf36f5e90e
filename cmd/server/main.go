package main

import (
	"log"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/tabegoro/tabegoro/internal/billing"
	"github.com/tabegoro/tabegoro/internal/config"
	"github.com/tabegoro/tabegoro/internal/database"
	"github.com/tabegoro/tabegoro/internal/handler"
	"github.com/tabegoro/tabegoro/internal/logger"
	"github.com/tabegoro/tabegoro/internal/metrics"
	"github.com/tabegoro/tabegoro/internal/queue"
	"github.com/tabegoro/tabegoro/internal/repository"
	"github.com/tabegoro/tabegoro/internal/router"
)

func main() {
	cfg := config.Load()

	zlog, err := logger.New(cfg.Env)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer zlog.Sync()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		zlog.Fatal("database open failed", zap.Error(err))
	}
	defer db.Close()
	if err := database.Migrate(db); err != nil {
		zlog.Fatal("migrations failed", zap.Error(err))
	}

	rdb := config.NewRedisClient()

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	shops := repository.NewShopRepo(db)
	categories := repository.NewCategoryRepo(db)
	tags := repository.NewTagRepo(db)
	holidays := repository.NewHolidayRepo(db)
	reviews := repository.NewReviewRepo(db)
	favorites := repository.NewFavoriteRepo(db)
	reservations := repository.NewReservationRepo(db)
	orders := repository.NewOrderRepo(db)
	summaries := repository.NewSummaryRepo(db)

	provider := billing.NewClient(cfg.PaySecretKey, cfg.PayAPIBase, zlog)

	authH := handler.NewAuthHandler(cfg, users, tokens)
	acctH := handler.NewAccountHandler(users, orders)
	shopH := handler.NewShopHandler(shops, categories, tags, reviews, favorites)
	revH := handler.NewReviewHandler(shops, reviews)
	favH := handler.NewFavoriteHandler(shops, favorites)
	resvH := handler.NewReservationHandler(cfg, shops, reservations, reviews, zlog)
	subH := handler.NewSubscriptionHandler(cfg, users, orders, provider, zlog)
	adminH := handler.NewAdminHandler(shops, categories, tags, holidays, summaries)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(logger.Middleware(zlog))
	e.Use(metrics.Middleware())

	router.RegisterRoutes(e)
	router.RegisterAuth(e, authH, cfg.JWTSecret)
	router.RegisterPublic(e, shopH, revH, resvH, subH, cfg.JWTSecret, config.LoadCacheConfig(), config.LoadRateLimitConfig(), rdb)
	router.RegisterMember(e, acctH, subH, resvH, favH, revH, users, cfg.JWTSecret)
	router.RegisterAdmin(e, adminH, cfg.JWTSecret)

	// Reservation confirmations fan out through RabbitMQ; the consumer keeps
	// retrying the broker connection so the API can serve without it.
	go func() {
		if err := queue.StartReservationConsumer(); err != nil {
			zlog.Warn("reservation consumer stopped", zap.Error(err))
		}
	}()

	addr := ":" + cfg.Port
	zlog.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env))
	if err := e.Start(addr); err != nil {
		zlog.Fatal("server stopped", zap.Error(err))
	}
}
