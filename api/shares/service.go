package shares

import (
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"

	"AluguelSaas/internal/serviceiface"
)

type SharesService struct {
	config map[string]interface{}
	pool   *pgxpool.Pool
}

func NewSharesService(cfg map[string]interface{}, pool *pgxpool.Pool) serviceiface.Service {
	return &SharesService{config: cfg, pool: pool}
}

func (s *SharesService) Name() string {
	return "shares"
}

func (s *SharesService) Start() error {
	go StartSharesService(s.pool)
	return nil
}

func (s *SharesService) Stop() error {
	return nil
}

func StartSharesService(pool *pgxpool.Pool) {
	router := mux.NewRouter()

	router.HandleFunc("/shares/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("Shares Service is active"))
	}).Methods("GET")

	router.Handle("/shares/check", CheckShares(pool)).Methods("POST")
	router.Handle("/shares/dates", ListShareDates(pool)).Methods("POST")
	router.Handle("/shares/create", CreateShare(pool)).Methods("POST")
	router.Handle("/shares/update", UpdateShare(pool)).Methods("POST")

	log.Println("Shares Service started on :6143")
	if err := http.ListenAndServe(":6143", router); err != nil {
		log.Fatalf("Shares Service failed: %v", err)
	}
}
