package app

import (
	"fmt"
	"log"
	"os"

	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"gorm.io/gorm"

	"github.com/andikahmadi/sikp-backend/api"
	"github.com/andikahmadi/sikp-backend/config"
	"github.com/andikahmadi/sikp-backend/database"
	"github.com/andikahmadi/sikp-backend/router"
	"github.com/andikahmadi/sikp-backend/services"
	"github.com/andikahmadi/sikp-backend/services/cron"
	"github.com/andikahmadi/sikp-backend/utils/auth"
)

func SetupAndRunServer() error {

	// Load ENV
	if err := config.LoadENV(); err != nil {
		return err
	}

	getEnv, err := config.Get()
	if err != nil {
		return err
	}

	// Initialize GORM database connection
	store, err := database.StartGORM()
	if err != nil {
		print("Check whether the Postgres is running or not\n")
		return err
	}

	if err := store.Init(); err != nil {
		print("Failed to initialize database tables\n")
		return err
	}

	// Secondary connection for the raw reporting queries
	reporting, err := database.StartReporting()
	if err != nil {
		print("Failed to open the reporting connection\n")
		return err
	}

	// Initialize Cron Manager (only if enabled via environment variable)
	var cronManager *cron.CronManager
	if os.Getenv("CRON_ENABLED") != "false" { // Default to enabled
		db, ok := store.GetDB().(*gorm.DB)
		if !ok {
			print("Warning: Failed to get database connection for cron jobs\n")
		} else {
			blacklist := auth.NewBlacklistService(db)
			activity := services.NewActivityService(db)
			cronManager = cron.NewCronManager(db, blacklist, activity)
			if err := cronManager.Start(); err != nil {
				log.Printf("Warning: Failed to start cron jobs: %v", err)
				// Don't fail the app, just log the warning
			}
		}
	}

	// Defer Closing DB and stopping cron jobs
	defer func() {
		if cronManager != nil {
			cronManager.Stop()
		}
		reporting.Close()
		store.Close()
	}()

	// Init API
	var server *api.APIServer = api.NewAPIServer(fmt.Sprintf(":%d", getEnv.PORT))
	app := server.GetEngine()

	// Attach Middleware
	app.Use(logger.New())
	app.Use(recover.New())

	// Setup Routes
	router.SetupRoutes(app, store, reporting)

	// Get the PORT & Start the Server
	return server.Run()
}
