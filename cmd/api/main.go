package main

import (
	"context"
	"os"

	"github.com/gin-gonic/gin"

	"shop-backend/pkg/container"
	"shop-backend/pkg/logger"
)

func main() {
	if os.Getenv("APP_ENV") == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	appContainer, err := container.NewContainer(context.Background())
	if err != nil {
		logger.Fatal("Failed to initialize container", err)
	}
	defer appContainer.Cleanup()

	if err := Serve(appContainer); err != nil {
		logger.Error("Server stopped with error", err)
	}
}
