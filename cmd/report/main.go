// backend-go/cmd/report/main.go
//
// Generates the catalog-wide stock summary. Writes CSV to a local file
// and, when object storage is configured and --archive is set, uploads a
// dated copy.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/optiqo/lenshop/backend-go/internal/config"
	"github.com/optiqo/lenshop/backend-go/internal/report"
	"github.com/optiqo/lenshop/backend-go/internal/repository/postgres"
	"github.com/optiqo/lenshop/backend-go/internal/storage"
)

func main() {
	outPath := flag.String("out", "stock_report.csv", "Output CSV path")
	archive := flag.Bool("archive", false, "Also upload the report to object storage")
	workers := flag.Int("workers", 4, "Concurrent product summaries")
	flag.Parse()

	_ = godotenv.Load()
	cfg := config.Load()

	db, err := postgres.NewDB(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	var objects storage.ObjectStorage
	if *archive {
		client, err := storage.NewS3Client(storage.S3Config{
			Endpoint:  cfg.Export.Endpoint,
			AccessKey: cfg.Export.AccessKey,
			SecretKey: cfg.Export.SecretKey,
			Bucket:    cfg.Export.Bucket,
			Region:    cfg.Export.Region,
			UseSSL:    cfg.Export.UseSSL,
		})
		if err != nil {
			log.Fatalf("Failed to initialize report storage: %v", err)
		}
		objects = client
	}

	reporter := report.NewReporter(
		postgres.NewProductRepository(db),
		postgres.NewOrderRepository(db),
		postgres.NewAlertConfigRepository(db),
		objects,
		*workers,
	)

	ctx := context.Background()
	start := time.Now()

	lines, err := reporter.Generate(ctx)
	if err != nil {
		log.Fatalf("Failed to generate report: %v", err)
	}
	data, err := report.RenderCSV(lines)
	if err != nil {
		log.Fatalf("Failed to render report: %v", err)
	}
	if err := os.WriteFile(*outPath, data, 0o644); err != nil {
		log.Fatalf("Failed to write %s: %v", *outPath, err)
	}
	log.Printf("Wrote %d product summaries to %s in %v", len(lines), *outPath, time.Since(start))

	if *archive {
		key, err := reporter.Archive(ctx, time.Now())
		if err != nil {
			log.Fatalf("Failed to archive report: %v", err)
		}
		log.Printf("Archived report to %s", key)
	}
}
