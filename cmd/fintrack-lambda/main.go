package main

import (
	"context"
	"os"

	"github.com/aws/aws-lambda-go/lambda"

	"fintrack/internal/app"
	"fintrack/internal/config"
	"fintrack/internal/log"
)

func main() {
	cfg := config.Load()
	logger := app.NewLogger(cfg)

	// Built once per cold start and reused by every invocation in the sandbox.
	a, err := app.Build(context.Background(), cfg, logger)
	if err != nil {
		logger.Error("Failed to start", log.FieldOperation, log.OpStartup, log.FieldError, err)
		os.Exit(1)
	}
	defer a.Close()

	logger.Info("Lambda handler ready", log.FieldBackend, a.Backend.Type)
	lambda.Start(NewHandler(a.Server.Handler).Handle)
}
