package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/iliyamo/ecomm-delivery-backend/internal/config"
	"github.com/iliyamo/ecomm-delivery-backend/internal/database"
	"github.com/iliyamo/ecomm-delivery-backend/internal/geocode"
	"github.com/iliyamo/ecomm-delivery-backend/internal/handler"
	"github.com/iliyamo/ecomm-delivery-backend/internal/logger"
	"github.com/iliyamo/ecomm-delivery-backend/internal/mail"
	"github.com/iliyamo/ecomm-delivery-backend/internal/middleware"
	"github.com/iliyamo/ecomm-delivery-backend/internal/queue"
	"github.com/iliyamo/ecomm-delivery-backend/internal/repository"
	"github.com/iliyamo/ecomm-delivery-backend/internal/router"
	"github.com/iliyamo/ecomm-delivery-backend/internal/service"
	"github.com/iliyamo/ecomm-delivery-backend/internal/storage"
	"github.com/iliyamo/ecomm-delivery-backend/internal/utils"
	"github.com/iliyamo/ecomm-delivery-backend/internal/validate"
)

func main() {
	cfg := config.Load()

	zl, err := logger.New(cfg.Env)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(cfg)
	if err != nil {
		zl.Fatal("open database", zap.Error(err))
	}
	defer db.Close()

	// The rate limiter is optional: without Redis it passes everything.
	rdb, err := config.NewRedisClient(config.LoadRedisConfig())
	if err != nil {
		zl.Warn("redis unavailable; rate limiting disabled", zap.Error(err))
	} else {
		defer rdb.Close()
	}

	s3Client, err := storage.NewClient(ctx, cfg.S3)
	if err != nil {
		zl.Fatal("init s3 client", zap.Error(err))
	}
	pictures := storage.NewPictureStore(s3Client, cfg.S3)

	events := queue.NewPublisher(cfg.RabbitMQ, zl)
	defer func() { _ = events.Close() }()

	users := repository.NewUserRepo(db)
	partners := repository.NewPartnerRepo(db)
	addresses := repository.NewAddressRepo(db)
	codes := repository.NewOTPRepo(db)

	hasher := utils.NewPasswordHasher(cfg.BcryptCost)
	tokens := utils.NewTokenService(cfg.JWT)

	accountSvc := service.NewAccountService(service.AccountDeps{
		Users:    users,
		Hasher:   hasher,
		Tokens:   tokens,
		Pictures: pictures,
		Events:   events,
	})
	partnerSvc := service.NewPartnerService(service.PartnerDeps{
		Partners: partners,
		Hasher:   hasher,
		Tokens:   tokens,
		Events:   events,
	})
	addressSvc := service.NewAddressService(service.AddressDeps{
		Users:     users,
		Addresses: addresses,
		Geocoder:  geocode.NewOpenCage(cfg.Geocode),
	})
	otpSvc := service.NewOTPService(service.OTPDeps{
		Users:  users,
		Codes:  codes,
		Hasher: hasher,
		Mailer: mail.NewSMTPMailer(cfg.SMTP),
		Events: events,
		Length: cfg.OTPLength,
		TTL:    cfg.OTPTTL,
	})

	h := router.Handlers{
		Auth:      handler.NewAuthHandler(accountSvc, partnerSvc, cfg.Cookies, zl),
		Users:     handler.NewUserHandler(accountSvc, cfg.Cookies, zl),
		OTP:       handler.NewOTPHandler(otpSvc, zl),
		Addresses: handler.NewAddressHandler(addressSvc, zl),
		Partners:  handler.NewPartnerHandler(partnerSvc, zl),
	}

	e := echo.New()
	e.HideBanner = true
	e.Validator = validate.New()
	e.Use(echomw.RequestID())
	e.Use(echomw.Recover())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowCredentials: true,
	}))
	e.Use(middleware.RequestLogger(zl))

	limit := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb, zl)
	router.RegisterRoutes(e, db)
	router.RegisterCustomer(e, h, tokens, limit)
	router.RegisterPartner(e, h, tokens, limit)

	addr := ":" + cfg.Port
	go func() {
		zl.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Fatal("server stopped", zap.Error(err))
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		zl.Error("shutdown", zap.Error(err))
	}
}
