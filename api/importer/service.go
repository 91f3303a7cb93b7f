package importer

import (
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"

	"AluguelSaas/internal/serviceiface"
)

type ImporterService struct {
	config map[string]interface{}
	pool   *pgxpool.Pool
}

func NewImporterService(cfg map[string]interface{}, pool *pgxpool.Pool) serviceiface.Service {
	return &ImporterService{config: cfg, pool: pool}
}

func (s *ImporterService) Name() string {
	return "importer"
}

func (s *ImporterService) Start() error {
	go StartImporterService(s.pool)
	return nil
}

func (s *ImporterService) Stop() error {
	return nil
}

func StartImporterService(pool *pgxpool.Pool) {
	router := mux.NewRouter()

	router.HandleFunc("/importer/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("Importer Service is active"))
	}).Methods("GET")

	router.Handle("/importer/owners", UploadOwners(pool)).Methods("POST")
	router.Handle("/importer/properties", UploadProperties(pool)).Methods("POST")
	router.Handle("/importer/shares", UploadOwnershipShares(pool)).Methods("POST")
	router.Handle("/importer/rentledger", UploadRentLedger(pool)).Methods("POST")
	router.Handle("/importer/templates/{kind}", DownloadTemplate(pool)).Methods("GET")

	log.Println("Importer Service started on :5143")
	if err := http.ListenAndServe(":5143", router); err != nil {
		log.Fatalf("Importer Service failed: %v", err)
	}
}
