package jobs

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/robfig/cron/v3"

	"AluguelSaas/api/importer"
	"AluguelSaas/api/shares"
	"AluguelSaas/internal/logger"
)

// JobsService runs the scheduled maintenance work: a nightly pass over every
// property's ownership shares that flags sums outside the tolerance band.
type JobsService struct {
	config map[string]interface{}
	pool   *pgxpool.Pool
	cron   *cron.Cron
}

func NewJobsService(cfg map[string]interface{}, pool *pgxpool.Pool) *JobsService {
	return &JobsService{config: cfg, pool: pool}
}

func (s *JobsService) Name() string {
	return "jobs"
}

func (s *JobsService) Start() error {
	auditSpec := "0 2 * * *"
	if v, ok := s.config["share_audit_cron"].(string); ok && v != "" {
		auditSpec = v
	}
	backupSpec := "0 3 * * *"
	if v, ok := s.config["backup_cron"].(string); ok && v != "" {
		backupSpec = v
	}
	s.cron = cron.New()
	if _, err := s.cron.AddFunc(auditSpec, func() { s.runShareAudit(context.Background()) }); err != nil {
		return fmt.Errorf("schedule share audit: %w", err)
	}
	if _, err := s.cron.AddFunc(backupSpec, s.runBackup); err != nil {
		return fmt.Errorf("schedule backup: %w", err)
	}
	s.cron.Start()
	log.Printf("[Jobs] share audit scheduled (%s), backup scheduled (%s)", auditSpec, backupSpec)
	return nil
}

func (s *JobsService) Stop() error {
	if s.cron != nil {
		ctx := s.cron.Stop()
		select {
		case <-ctx.Done():
		case <-time.After(30 * time.Second):
		}
	}
	return nil
}

// runShareAudit checks every (property, registration date) pair and logs
// the ones whose share sum has drifted outside tolerance. Read only; fixing
// the data is up to an operator.
func (s *JobsService) runShareAudit(ctx context.Context) {
	store := importer.NewPgStore(s.pool)
	props, err := store.Properties(ctx)
	if err != nil {
		log.Printf("[Jobs][ERROR] share audit: load properties: %v", err)
		return
	}

	violations := 0
	for _, p := range props {
		dates, err := store.ShareDatesFor(ctx, p.ID)
		if err != nil {
			log.Printf("[Jobs][ERROR] share audit: dates for property %d: %v", p.ID, err)
			continue
		}
		for _, d := range dates {
			result, err := shares.Check(ctx, store, p.ID, d)
			if err != nil {
				log.Printf("[Jobs][ERROR] share audit: property %d on %s: %v", p.ID, d.Format("2006-01-02"), err)
				continue
			}
			if !result.Valid {
				violations++
				msg := fmt.Sprintf("[Jobs] share audit: property %q (%d) on %s: %s",
					p.Name, p.ID, d.Format("2006-01-02"), result.Message)
				if logger.GlobalLogger != nil {
					logger.GlobalLogger.LogAudit(msg)
				} else {
					log.Println(msg)
				}
			}
		}
	}
	log.Printf("[Jobs] share audit finished: %d properties checked, %d violations", len(props), violations)
}

// runBackup dumps the database to a dated file under the backup folder and
// drops dumps older than the retention window. Disabled unless BACKUP_DIR
// is set; pg_dump must be on PATH.
func (s *JobsService) runBackup() {
	dir := strings.TrimSpace(os.Getenv("BACKUP_DIR"))
	if dir == "" {
		return
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		log.Printf("[Jobs][ERROR] backup: create %s: %v", dir, err)
		return
	}

	target := filepath.Join(dir, fmt.Sprintf("aluguel_%s.sql", time.Now().Format("20060102_150405")))
	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		os.Getenv("DB_USER"), os.Getenv("DB_PASSWORD"), os.Getenv("DB_HOST"),
		os.Getenv("DB_PORT"), os.Getenv("DB_NAME"))

	cmd := exec.Command("pg_dump", "--no-owner", "--file", target, dsn)
	if out, err := cmd.CombinedOutput(); err != nil {
		log.Printf("[Jobs][ERROR] backup: pg_dump: %v (%s)", err, strings.TrimSpace(string(out)))
		return
	}
	if logger.GlobalLogger != nil {
		logger.GlobalLogger.LogAudit("[Jobs] database backup written to " + target)
	} else {
		log.Println("[Jobs] database backup written to", target)
	}
	s.cleanOldBackups(dir)
}

func (s *JobsService) cleanOldBackups(dir string) {
	retention := 14
	if v, ok := s.config["backup_retention_days"].(int); ok && v > 0 {
		retention = v
	}
	cutoff := time.Now().AddDate(0, 0, -retention)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".sql" {
			continue
		}
		full := filepath.Join(dir, e.Name())
		info, err := os.Stat(full)
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		os.Remove(full)
	}
}
