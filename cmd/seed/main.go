// Seed CLI. Creates the schema and loads a demo catalog so a fresh
// database is usable immediately:
//
//	go run ./cmd/seed --db-url $DATABASE_URL schema
//	go run ./cmd/seed --db-url $DATABASE_URL catalog --data-dir ./data/seeds
//	go run ./cmd/seed --db-url $DATABASE_URL all
package main

import (
	"context"
	"database/sql"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
)

func newDBURLFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "db-url",
		Usage:    "Database connection string",
		Required: true,
		EnvVars:  []string{"DATABASE_URL"},
	}
}

func newDataDirFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "data-dir",
		Usage:   "Directory containing seed CSV files",
		Value:   "./data/seeds",
		EnvVars: []string{"SEED_DATA_DIR"},
	}
}

func openDB(c *cli.Context) (*sql.DB, error) {
	db, err := sql.Open("pgx", c.String("db-url"))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("warning: could not load .env file: %v", err)
	}

	app := &cli.App{
		Name:  "seed",
		Usage: "Create the schema and seed the database with demo data",
		Flags: []cli.Flag{
			newDBURLFlag(),
		},
		Commands: []*cli.Command{
			{
				Name:   "schema",
				Usage:  "Create tables (products, purchase_orders, stock_alert_configs)",
				Flags:  []cli.Flag{newDBURLFlag()},
				Action: runSchema,
			},
			{
				Name:   "catalog",
				Usage:  "Seed the product catalog from products.csv",
				Flags:  []cli.Flag{newDBURLFlag(), newDataDirFlag()},
				Action: runCatalog,
			},
			{
				Name:  "all",
				Usage: "Create the schema, then seed the catalog",
				Flags: []cli.Flag{newDBURLFlag(), newDataDirFlag()},
				Action: func(c *cli.Context) error {
					if err := runSchema(c); err != nil {
						return err
					}
					return runCatalog(c)
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

const schema = `
CREATE TABLE IF NOT EXISTS products (
	id BIGSERIAL PRIMARY KEY,
	sku TEXT NOT NULL UNIQUE,
	name TEXT NOT NULL,
	kind TEXT NOT NULL DEFAULT 'other',
	power_range JSONB,
	purchase_price NUMERIC(12,2) NOT NULL DEFAULT 0,
	sale_price NUMERIC(12,2) NOT NULL DEFAULT 0,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS purchase_orders (
	id BIGSERIAL PRIMARY KEY,
	order_no TEXT NOT NULL UNIQUE,
	product_id BIGINT NOT NULL REFERENCES products(id),
	product_name TEXT NOT NULL DEFAULT '',
	rows JSONB,
	status TEXT NOT NULL DEFAULT 'active',
	stock_in_at TIMESTAMPTZ,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_purchase_orders_product ON purchase_orders(product_id);
CREATE INDEX IF NOT EXISTS idx_purchase_orders_order_no ON purchase_orders(order_no);

CREATE TABLE IF NOT EXISTS stock_alert_configs (
	product_id BIGINT PRIMARY KEY REFERENCES products(id),
	kind TEXT NOT NULL,
	thresholds JSONB,
	threshold INT NOT NULL DEFAULT 0,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`

func runSchema(c *cli.Context) error {
	db, err := openDB(c)
	if err != nil {
		return err
	}
	defer db.Close()

	log.Println("Creating schema...")
	if _, err := db.ExecContext(context.Background(), schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	log.Println("Schema created successfully!")
	return nil
}

func runCatalog(c *cli.Context) error {
	db, err := openDB(c)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := context.Background()
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	path := filepath.Join(c.String("data-dir"), "products.csv")
	count, err := seedProducts(ctx, tx, path)
	if err != nil {
		return fmt.Errorf("failed to seed products: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	log.Printf("Successfully seeded %d products\n", count)
	return nil
}

// seedProducts upserts the catalog from a CSV with columns
// sku,name,kind,purchase_price,sale_price,power_range. The power_range
// column is a semicolon-separated list of grid cell keys and may be
// empty for non-lens products.
func seedProducts(ctx context.Context, tx *sql.Tx, path string) (int, error) {
	log.Printf("Seeding products from %s\n", path)

	file, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open file %s: %w", path, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	header, err := reader.Read()
	if err != nil {
		return 0, fmt.Errorf("failed to read CSV header: %w", err)
	}
	col := func(name string) int {
		for i, h := range header {
			if h == name {
				return i
			}
		}
		return -1
	}
	for _, name := range []string{"sku", "name", "kind", "purchase_price", "sale_price", "power_range"} {
		if col(name) < 0 {
			return 0, fmt.Errorf("column %q not found in header: %v", name, header)
		}
	}

	const query = `
		INSERT INTO products (sku, name, kind, power_range, purchase_price, sale_price)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (sku) DO UPDATE SET
			name = EXCLUDED.name,
			kind = EXCLUDED.kind,
			power_range = EXCLUDED.power_range,
			purchase_price = EXCLUDED.purchase_price,
			sale_price = EXCLUDED.sale_price,
			updated_at = NOW()
	`
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare product statement: %w", err)
	}
	defer stmt.Close()

	count := 0
	for {
		record, err := reader.Read()
		if err != nil {
			if err == io.EOF {
				break
			}
			return count, fmt.Errorf("failed to read CSV record: %w", err)
		}

		sku := strings.TrimSpace(record[col("sku")])
		purchasePrice, err := parsePrice(record[col("purchase_price")])
		if err != nil {
			return count, fmt.Errorf("invalid purchase_price for sku %s: %w", sku, err)
		}
		salePrice, err := parsePrice(record[col("sale_price")])
		if err != nil {
			return count, fmt.Errorf("invalid sale_price for sku %s: %w", sku, err)
		}
		rangeJSON, err := encodePowerRange(record[col("power_range")])
		if err != nil {
			return count, fmt.Errorf("invalid power_range for sku %s: %w", sku, err)
		}

		if _, err := stmt.ExecContext(ctx,
			sku,
			strings.TrimSpace(record[col("name")]),
			strings.TrimSpace(record[col("kind")]),
			rangeJSON,
			purchasePrice,
			salePrice,
		); err != nil {
			return count, fmt.Errorf("failed to upsert product %s: %w", sku, err)
		}
		count++
	}

	return count, nil
}

func parsePrice(value string) (float64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, nil
	}
	cleaned := strings.ReplaceAll(value, ",", "")
	return strconv.ParseFloat(cleaned, 64)
}

func encodePowerRange(value string) ([]byte, error) {
	value = strings.TrimSpace(value)
	keys := []string{}
	if value != "" {
		for _, part := range strings.Split(value, ";") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			keys = append(keys, part)
		}
	}
	return json.Marshal(keys)
}
