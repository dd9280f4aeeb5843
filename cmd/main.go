package main

import (
	"context"
	"os"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"

	"github.com/Mil05h/calories-ai/config"
	"github.com/Mil05h/calories-ai/controllers"
	"github.com/Mil05h/calories-ai/pkg/logging"
	"github.com/Mil05h/calories-ai/routes"
	"github.com/Mil05h/calories-ai/services"
	"github.com/Mil05h/calories-ai/utils"
)

func main() {
	logger := logging.Setup()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	db, err := config.OpenDB(cfg)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}

	jwt := utils.NewJWTManager(cfg.JWTSecret, 72*time.Hour)

	// Mail and object storage are optional; the features that need them
	// report their absence at call time.
	var mailer services.ResetMailer
	var uploader services.AvatarUploader
	if cfg.SESSender != "" || cfg.S3Bucket != "" {
		awscfg, err := awsconfig.LoadDefaultConfig(context.Background(),
			awsconfig.WithRegion(cfg.AWSRegion))
		if err != nil {
			logger.Error("failed to load AWS config", "error", err)
			os.Exit(1)
		}
		if cfg.SESSender != "" {
			mailer = utils.NewMailer(awscfg, cfg.SESSender)
		}
		if cfg.S3Bucket != "" {
			uploader = utils.NewUploader(awscfg, cfg.S3Bucket, cfg.S3BaseURL)
		}
	}

	llm := services.NewLLMService(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModel)

	authSvc := services.NewAuthService(db, jwt, mailer, logger)
	userSvc := services.NewUserService(db, uploader)
	mealSvc := services.NewMealService(db)
	analysisSvc := services.NewAnalysisService(llm, logger)

	r := routes.SetupRouter(jwt, routes.Controllers{
		Auth:     controllers.NewAuthController(authSvc),
		User:     controllers.NewUserController(userSvc),
		Meal:     controllers.NewMealController(mealSvc),
		Analysis: controllers.NewAnalysisController(analysisSvc, authSvc),
	})

	logger.Info("server starting", "addr", cfg.ListenAddr, "model", cfg.LLMModel)
	if err := r.Run(cfg.ListenAddr); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}
}
