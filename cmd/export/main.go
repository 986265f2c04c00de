// backend-go/cmd/export/main.go
//
// Standalone export sidecar. It serves purchase-order CSV downloads and
// archives them to object storage, so heavy export traffic stays off the
// main API process.
package main

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/optiqo/lenshop/backend-go/internal/config"
	"github.com/optiqo/lenshop/backend-go/internal/export"
	"github.com/optiqo/lenshop/backend-go/internal/repository/postgres"
	"github.com/optiqo/lenshop/backend-go/internal/storage"
)

func main() {
	// Load environment variables from .env file if it exists
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := postgres.NewDB(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	orderRepo := postgres.NewOrderRepository(db)

	// Object storage is optional: without a bucket the sidecar still
	// serves direct CSV downloads.
	var objects storage.ObjectStorage
	if cfg.Export.Bucket != "" {
		client, err := storage.NewS3Client(storage.S3Config{
			Endpoint:  cfg.Export.Endpoint,
			AccessKey: cfg.Export.AccessKey,
			SecretKey: cfg.Export.SecretKey,
			Bucket:    cfg.Export.Bucket,
			Region:    cfg.Export.Region,
			UseSSL:    cfg.Export.UseSSL,
		})
		if err != nil {
			log.Fatalf("Failed to initialize export storage: %v", err)
		}
		objects = client
	}

	svc := export.NewService(orderRepo, objects)

	r := mux.NewRouter()
	r.HandleFunc("/exports/purchase_orders/{id}.csv", downloadHandler(svc)).Methods("GET")
	r.HandleFunc("/exports/purchase_orders/{id}/archive", archiveHandler(svc)).Methods("POST")
	r.HandleFunc("/exports", listHandler(svc)).Methods("GET")

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}).Methods("GET")

	addr := fmt.Sprintf(":%s", cfg.Export.Port)
	log.Printf("Export sidecar starting on %s\n", addr)
	log.Fatal(http.ListenAndServe(addr, r))
}

func orderIDFromPath(r *http.Request) (int64, error) {
	return strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
}

func downloadHandler(svc *export.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := orderIDFromPath(r)
		if err != nil {
			http.Error(w, "invalid order id", http.StatusBadRequest)
			return
		}
		name, data, err := svc.Render(r.Context(), id)
		if err != nil {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
		w.Write(data)
	}
}

func archiveHandler(svc *export.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := orderIDFromPath(r)
		if err != nil {
			http.Error(w, "invalid order id", http.StatusBadRequest)
			return
		}
		key, err := svc.Archive(r.Context(), id)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"key": key})
	}
}

func listHandler(svc *export.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		infos, err := svc.ListArchived(r.Context())
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(infos)
	}
}
