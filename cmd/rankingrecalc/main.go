package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"github.com/fylt/catalog/internal/adapters/repository/postgres"
	"github.com/fylt/catalog/internal/core/services"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	var dbHost, dbPort, dbUser, dbPass, dbName string
	var rankingID int64

	flag.StringVar(&dbHost, "db-host", os.Getenv("POSTGRES_HOST"), "Database host")
	flag.StringVar(&dbPort, "db-port", os.Getenv("POSTGRES_PORT"), "Database port")
	flag.StringVar(&dbUser, "db-user", os.Getenv("POSTGRES_USER"), "Database user")
	flag.StringVar(&dbPass, "db-pass", os.Getenv("POSTGRES_PASSWORD"), "Database password")
	flag.StringVar(&dbName, "db-name", os.Getenv("POSTGRES_DB"), "Database name")
	flag.Int64Var(&rankingID, "ranking", 0, "Ranking id to recalculate (0 recalculates all)")
	flag.Parse()

	connStr := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", dbUser, dbPass, dbHost, dbPort, dbName)
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatal(err)
	}

	rankingStore := postgres.NewRankingStore(db)
	rankingService := services.NewRankingService(rankingStore)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	log.Println("Starting ranking position recalculation job...")

	if rankingID > 0 {
		err = rankingService.RecalculatePositions(ctx, rankingID)
	} else {
		err = rankingService.RecalculateAll(ctx)
	}
	if err != nil {
		log.Fatalf("Error recalculating positions: %v", err)
	}

	log.Println("Ranking position recalculation completed successfully.")
}
