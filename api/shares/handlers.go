package shares

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"AluguelSaas/api"
	"AluguelSaas/api/auth"
	"AluguelSaas/api/constants"
	"AluguelSaas/api/importer"
)

type shareRequest struct {
	UserID       string          `json:"user_id"`
	ShareID      int64           `json:"share_id,omitempty"`
	PropertyID   int64           `json:"property_id"`
	OwnerID      int64           `json:"owner_id,omitempty"`
	Percentage   decimal.Decimal `json:"percentage"`
	RegisteredOn string          `json:"registered_on"`
}

func decodeShareRequest(w http.ResponseWriter, r *http.Request) (*shareRequest, *auth.UserSession) {
	var req shareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.RespondWithError(w, http.StatusBadRequest, "Invalid JSON body: "+err.Error())
		return nil, nil
	}
	if req.UserID == "" {
		api.RespondWithError(w, http.StatusBadRequest, constants.ErrUserIDRequired)
		return nil, nil
	}
	session := auth.SessionByUserID(req.UserID)
	if session == nil {
		api.RespondWithError(w, http.StatusUnauthorized, constants.ErrInvalidSession)
		return nil, nil
	}
	if req.PropertyID == 0 {
		api.RespondWithError(w, http.StatusBadRequest, constants.ErrPropertyIDRequired)
		return nil, nil
	}
	return &req, session
}

func parseRegisteredOn(raw string) (time.Time, bool) {
	for _, layout := range []string{constants.DateFormat, constants.DateFormatAlt} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Handler: CheckShares reports whether a property's shares sum to 100%
// within tolerance for one registration date.
func CheckShares(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, _ := decodeShareRequest(w, r)
		if req == nil {
			return
		}
		regOn, ok := parseRegisteredOn(req.RegisteredOn)
		if !ok {
			api.RespondWithError(w, http.StatusBadRequest, constants.ErrDateRequired)
			return
		}
		result, err := Check(r.Context(), importer.NewPgStore(pool), req.PropertyID, regOn)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, "Share check failed: "+err.Error())
			return
		}
		api.RespondWithJSON(w, http.StatusOK, result)
	}
}

// Handler: ListShareDates returns the registration dates on record for a
// property, most recent first.
func ListShareDates(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, _ := decodeShareRequest(w, r)
		if req == nil {
			return
		}
		dates, err := importer.NewPgStore(pool).ShareDatesFor(r.Context(), req.PropertyID)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, "Failed to list share dates: "+err.Error())
			return
		}
		out := make([]string, 0, len(dates))
		for _, d := range dates {
			out = append(out, d.Format(constants.DateFormat))
		}
		api.RespondWithJSON(w, http.StatusOK, map[string]interface{}{"property_id": req.PropertyID, "dates": out})
	}
}

// shareWrite runs one guarded share mutation inside a transaction: lock the
// property, validate the resulting sum, persist, commit.
func shareWrite(pool *pgxpool.Pool, isUpdate bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		req, session := decodeShareRequest(w, r)
		if req == nil {
			return
		}
		if !session.IsAdministrator() {
			api.RespondWithError(w, http.StatusForbidden, constants.ErrAdministratorOnly)
			return
		}
		regOn, ok := parseRegisteredOn(req.RegisteredOn)
		if !ok {
			api.RespondWithError(w, http.StatusBadRequest, constants.ErrDateRequired)
			return
		}
		if req.Percentage.IsNegative() || req.Percentage.GreaterThan(decimal.NewFromInt(100)) {
			api.RespondWithError(w, http.StatusBadRequest, constants.ErrShareOutOfRange)
			return
		}

		tx, err := pool.Begin(ctx)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrTxBeginFailed+": "+err.Error())
			return
		}
		defer tx.Rollback(ctx)
		store := importer.NewPgStore(tx)

		if isUpdate {
			err = ValidateBeforeUpdate(ctx, store, req.ShareID, req.PropertyID, req.Percentage, regOn)
		} else {
			err = ValidateBeforeInsert(ctx, store, req.PropertyID, req.Percentage, regOn)
		}
		var vErr *ValidationError
		if errors.As(err, &vErr) {
			api.RespondWithJSON(w, http.StatusBadRequest, map[string]interface{}{"success": false, "validation": vErr})
			return
		}
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, "Share validation failed: "+err.Error())
			return
		}

		share := &importer.OwnershipShare{
			ID:           req.ShareID,
			PropertyID:   req.PropertyID,
			OwnerID:      req.OwnerID,
			Percentage:   req.Percentage,
			RegisteredOn: regOn,
		}
		if isUpdate {
			err = store.UpdateShare(ctx, share)
		} else {
			err = store.InsertShare(ctx, share)
		}
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, "Failed to save share: "+err.Error())
			return
		}
		if err := tx.Commit(ctx); err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrCommitFailed+err.Error())
			return
		}
		api.RespondWithJSON(w, http.StatusOK, map[string]interface{}{"success": true, "share": share})
	}
}

// Handler: CreateShare inserts a new ownership share after the sum guard.
func CreateShare(pool *pgxpool.Pool) http.HandlerFunc {
	return shareWrite(pool, false)
}

// Handler: UpdateShare rewrites an existing share after the sum guard,
// excluding the row being edited from the current sum.
func UpdateShare(pool *pgxpool.Pool) http.HandlerFunc {
	return shareWrite(pool, true)
}
