package main

import (
	"context"
	"flag"
	"time"

	"go.uber.org/zap"

	"github.com/tropicaldog17/keble/internal/db"
	"github.com/tropicaldog17/keble/internal/logger"
	"github.com/tropicaldog17/keble/internal/repositories"
)

// migrate applies the schema and optionally seeds a demo user, wallet and listing.
func main() {
	withSeed := flag.Bool("seed", false, "Insert a demo user, wallet and listing after migrating")
	dsn := flag.String("db", "", "Database connection string (defaults to DB_* environment)")
	flag.Parse()

	log, err := logger.New()
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	var database *db.DB
	if *dsn != "" {
		database, err = db.ConnectDSN(*dsn)
	} else {
		database, err = db.Connect(db.NewConfig())
	}
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.Close()

	if err := database.Migrate(); err != nil {
		log.Fatal("Migration failed", zap.Error(err))
	}
	log.Info("Schema is up to date")

	if !*withSeed {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	result, err := seed(ctx, repositories.NewStore(database))
	if err != nil {
		log.Fatal("Seeding failed", zap.Error(err))
	}
	log.Info("Seeded demo data",
		zap.String("user_id", result.UserID),
		zap.String("wallet_id", result.WalletID),
		zap.String("listing_id", result.ListingID))
}
