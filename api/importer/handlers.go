package importer

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"

	"AluguelSaas/api"
	"AluguelSaas/api/auth"
	"AluguelSaas/api/constants"
	"AluguelSaas/internal/logger"
)

type engineFunc func(ctx context.Context, content []byte, store Store) (*ImportResult, error)

// uploadResponse is the envelope every import endpoint answers with.
type uploadResponse struct {
	*ImportResult
	BatchID  string `json:"batch_id"`
	FileName string `json:"file_name"`
}

// requireAdmin resolves the calling session and enforces the administrator
// role. Import endpoints mutate financial records; regular users only read.
func requireAdmin(w http.ResponseWriter, r *http.Request) *auth.UserSession {
	userID := r.FormValue(constants.KeyUserID)
	if userID == "" {
		api.RespondWithError(w, http.StatusBadRequest, constants.ErrUserIDRequired)
		return nil
	}
	session := auth.SessionByUserID(userID)
	if session == nil {
		api.RespondWithError(w, http.StatusUnauthorized, constants.ErrInvalidSession)
		return nil
	}
	if !session.IsAdministrator() {
		api.RespondWithError(w, http.StatusForbidden, constants.ErrAdministratorOnly)
		return nil
	}
	return session
}

func allowedUploadExt(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".xls", ".csv":
		return true
	}
	return false
}

// uploadHandler is the shared shape of the four import endpoints: session
// and role check, multipart read, extension check, one transaction around
// the whole engine call, commit on success and rollback on structural or
// infrastructure failure.
func uploadHandler(pool *pgxpool.Pool, kind string, run engineFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if err := r.ParseMultipartForm(constants.MaxUploadBytes); err != nil {
			api.RespondWithError(w, http.StatusBadRequest, constants.ErrFailedToParseMultipartForm)
			return
		}
		session := requireAdmin(w, r)
		if session == nil {
			return
		}

		file, header, err := r.FormFile(constants.KeyFile)
		if err != nil {
			api.RespondWithError(w, http.StatusBadRequest, constants.ErrNoFileUploaded)
			return
		}
		defer file.Close()
		if !allowedUploadExt(header.Filename) {
			api.RespondWithError(w, http.StatusBadRequest, constants.ErrUnsupportedFileType)
			return
		}
		content, err := io.ReadAll(file)
		if err != nil {
			api.RespondWithError(w, http.StatusBadRequest, "Failed to read uploaded file: "+err.Error())
			return
		}

		batchID := uuid.New().String()

		tx, err := pool.Begin(ctx)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrTxBeginFailed+": "+err.Error())
			return
		}
		result, err := run(ctx, content, NewPgStore(tx))
		if err != nil {
			tx.Rollback(ctx)
			api.RespondWithError(w, http.StatusInternalServerError, "Import failed: "+pgUserFriendlyMessage(err))
			return
		}
		if !result.Success {
			// Structural failure: nothing was staged, but roll back anyway so
			// the transaction never lingers.
			tx.Rollback(ctx)
			api.RespondWithJSON(w, http.StatusBadRequest, uploadResponse{ImportResult: result, BatchID: batchID, FileName: header.Filename})
			return
		}
		if err := tx.Commit(ctx); err != nil {
			tx.Rollback(ctx)
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrCommitFailed+pgUserFriendlyMessage(err))
			return
		}

		if logger.GlobalLogger != nil {
			logger.GlobalLogger.LogAudit(fmt.Sprintf("[Importer] %s import by %s: %d imported, %d rows, %d errors (batch %s)",
				kind, session.Name, result.ImportedCount, result.RowsProcessed, len(result.Errors), batchID))
		}
		// Keep the original spreadsheet for audit; never fail the import
		// over archival trouble.
		go archiveUpload(context.Background(), kind, batchID, header.Filename, content)

		api.RespondWithJSON(w, http.StatusOK, uploadResponse{ImportResult: result, BatchID: batchID, FileName: header.Filename})
	}
}

// Handler: UploadOwners stages new owners from the registration sheet.
func UploadOwners(pool *pgxpool.Pool) http.HandlerFunc {
	return uploadHandler(pool, "owners", ImportOwners)
}

// Handler: UploadProperties stages new properties from the registration sheet.
func UploadProperties(pool *pgxpool.Pool) http.HandlerFunc {
	return uploadHandler(pool, "properties", ImportProperties)
}

// Handler: UploadOwnershipShares stages ownership percentages from the wide
// share sheet.
func UploadOwnershipShares(pool *pgxpool.Pool) http.HandlerFunc {
	return uploadHandler(pool, "shares", ImportOwnershipShares)
}

// Handler: UploadRentLedger reconciles and upserts monthly rent
// distributions, one tab per accounting period.
func UploadRentLedger(pool *pgxpool.Pool) http.HandlerFunc {
	return uploadHandler(pool, "rentledger", ImportRentLedger)
}

// Handler: DownloadTemplate serves the model spreadsheet for one import
// kind so staff start from a layout the engine can read.
func DownloadTemplate(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		kind := mux.Vars(r)["kind"]

		var ownerNames []string
		if kind == "shares" || kind == "rentledger" {
			// Template owner columns mirror the registered population.
			store := NewPgStore(pool)
			owners, err := store.Owners(r.Context())
			if err != nil {
				api.RespondWithError(w, http.StatusInternalServerError, "Failed to load owners: "+pgUserFriendlyMessage(err))
				return
			}
			for _, o := range owners {
				ownerNames = append(ownerNames, o.Name)
			}
		}

		buf, err := BuildTemplate(kind, ownerNames)
		if err != nil {
			api.RespondWithError(w, http.StatusBadRequest, constants.ErrUnknownTemplate)
			return
		}
		w.Header().Set(constants.ContentTypeHeader, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s_template.xlsx", kind))
		w.Write(buf.Bytes())
	}
}
