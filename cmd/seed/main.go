package main

import (
	"context"
	"log"
	"os"

	"github.com/azrishaharin/KonMari/internal/config"
	"github.com/azrishaharin/KonMari/internal/db"
	"github.com/azrishaharin/KonMari/internal/seed"
	"github.com/spf13/pflag"
)

func main() {
	fixtures := pflag.String("fixtures", "", "path to a YAML fixtures file (default: embedded demo data)")
	cfg := config.Load()
	logger := log.New(os.Stdout, "[seed] ", log.LstdFlags|log.LUTC|log.Lshortfile)

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.Fatalf("connect db: %v", err)
	}
	defer pool.Close()

	if err := seed.Apply(ctx, pool, *fixtures); err != nil {
		logger.Fatalf("seed apply: %v", err)
	}

	logger.Println("seed applied")
}
