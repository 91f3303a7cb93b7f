package importer

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Store is the transactional database collaborator the engine runs against.
// Lookup methods return (nil, nil) when no record matches; a non-nil error
// always means infrastructure trouble and aborts the whole import call.
// All writes issued through one Store instance belong to one transaction,
// owned and committed (or rolled back) by the HTTP handler.
type Store interface {
	Owners(ctx context.Context) ([]Owner, error)
	Properties(ctx context.Context) ([]Property, error)
	OwnerByDocument(ctx context.Context, document string) (*Owner, error)
	PropertyByNameAddress(ctx context.Context, name, address string) (*Property, error)
	InsertOwner(ctx context.Context, o *Owner) error
	InsertProperty(ctx context.Context, p *Property) error

	InsertShare(ctx context.Context, s *OwnershipShare) error
	UpdateShare(ctx context.Context, s *OwnershipShare) error
	SharesFor(ctx context.Context, propertyID int64, registeredOn time.Time) ([]OwnershipShare, error)
	ShareDatesFor(ctx context.Context, propertyID int64) ([]time.Time, error)
	// LockProperty takes a row-level lock on the property so two concurrent
	// validate-then-write sequences on the same property serialize.
	LockProperty(ctx context.Context, propertyID int64) error

	LedgerEntryByKey(ctx context.Context, propertyID, ownerID int64, period time.Time) (*LedgerEntry, error)
	InsertLedgerEntry(ctx context.Context, e *LedgerEntry) error
	UpdateLedgerEntry(ctx context.Context, e *LedgerEntry) error
}

// pgxQuerier is satisfied by both pgx.Tx and *pgxpool.Pool.
type pgxQuerier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PgStore implements Store over a pgx transaction (or pool, for read-only
// diagnostic calls that need no staging).
type PgStore struct {
	q pgxQuerier
}

func NewPgStore(q pgxQuerier) *PgStore {
	return &PgStore{q: q}
}

func (s *PgStore) Owners(ctx context.Context) ([]Owner, error) {
	rows, err := s.q.Query(ctx, `
		SELECT id, name, surname, document, document_type, address, phone, email, active
		FROM owners WHERE active = true ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Owner
	for rows.Next() {
		var o Owner
		if err := rows.Scan(&o.ID, &o.Name, &o.Surname, &o.Document, &o.DocumentType,
			&o.Address, &o.Phone, &o.Email, &o.Active); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (s *PgStore) Properties(ctx context.Context) ([]Property, error) {
	rows, err := s.q.Query(ctx, `
		SELECT id, name, address, kind, total_area, built_area, assessed_value,
		       market_value, annual_tax, condo_fee, rented, active
		FROM properties WHERE active = true ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Property
	for rows.Next() {
		var p Property
		if err := rows.Scan(&p.ID, &p.Name, &p.Address, &p.Kind, &p.TotalArea, &p.BuiltArea,
			&p.AssessedValue, &p.MarketValue, &p.AnnualTax, &p.CondoFee, &p.Rented, &p.Active); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *PgStore) OwnerByDocument(ctx context.Context, document string) (*Owner, error) {
	var o Owner
	err := s.q.QueryRow(ctx, `
		SELECT id, name, surname, document, document_type, address, phone, email, active
		FROM owners WHERE document = $1`, document).
		Scan(&o.ID, &o.Name, &o.Surname, &o.Document, &o.DocumentType,
			&o.Address, &o.Phone, &o.Email, &o.Active)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (s *PgStore) PropertyByNameAddress(ctx context.Context, name, address string) (*Property, error) {
	var p Property
	err := s.q.QueryRow(ctx, `
		SELECT id, name, address, kind, total_area, built_area, assessed_value,
		       market_value, annual_tax, condo_fee, rented, active
		FROM properties WHERE name = $1 AND address = $2`, name, address).
		Scan(&p.ID, &p.Name, &p.Address, &p.Kind, &p.TotalArea, &p.BuiltArea,
			&p.AssessedValue, &p.MarketValue, &p.AnnualTax, &p.CondoFee, &p.Rented, &p.Active)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *PgStore) InsertOwner(ctx context.Context, o *Owner) error {
	return s.q.QueryRow(ctx, `
		INSERT INTO owners (name, surname, document, document_type, address, phone, email, active)
		VALUES ($1,$2,$3,$4,$5,$6,$7,true)
		RETURNING id`,
		o.Name, o.Surname, o.Document, o.DocumentType, o.Address, o.Phone, o.Email).
		Scan(&o.ID)
}

func (s *PgStore) InsertProperty(ctx context.Context, p *Property) error {
	return s.q.QueryRow(ctx, `
		INSERT INTO properties (name, address, kind, total_area, built_area, assessed_value,
		                        market_value, annual_tax, condo_fee, rented, active)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,false,true)
		RETURNING id`,
		p.Name, p.Address, p.Kind, p.TotalArea, p.BuiltArea, p.AssessedValue,
		p.MarketValue, p.AnnualTax, p.CondoFee).
		Scan(&p.ID)
}

func (s *PgStore) InsertShare(ctx context.Context, sh *OwnershipShare) error {
	return s.q.QueryRow(ctx, `
		INSERT INTO ownership_shares (property_id, owner_id, percentage, registered_on)
		VALUES ($1,$2,$3,$4)
		RETURNING id`,
		sh.PropertyID, sh.OwnerID, sh.Percentage, sh.RegisteredOn).
		Scan(&sh.ID)
}

func (s *PgStore) UpdateShare(ctx context.Context, sh *OwnershipShare) error {
	_, err := s.q.Exec(ctx, `
		UPDATE ownership_shares SET percentage = $2, registered_on = $3 WHERE id = $1`,
		sh.ID, sh.Percentage, sh.RegisteredOn)
	return err
}

func (s *PgStore) SharesFor(ctx context.Context, propertyID int64, registeredOn time.Time) ([]OwnershipShare, error) {
	rows, err := s.q.Query(ctx, `
		SELECT id, property_id, owner_id, percentage, registered_on
		FROM ownership_shares
		WHERE property_id = $1 AND registered_on = $2
		ORDER BY id`, propertyID, registeredOn)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []OwnershipShare
	for rows.Next() {
		var sh OwnershipShare
		if err := rows.Scan(&sh.ID, &sh.PropertyID, &sh.OwnerID, &sh.Percentage, &sh.RegisteredOn); err != nil {
			return nil, err
		}
		out = append(out, sh)
	}
	return out, rows.Err()
}

func (s *PgStore) ShareDatesFor(ctx context.Context, propertyID int64) ([]time.Time, error) {
	rows, err := s.q.Query(ctx, `
		SELECT DISTINCT registered_on FROM ownership_shares
		WHERE property_id = $1 ORDER BY registered_on DESC`, propertyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []time.Time
	for rows.Next() {
		var d time.Time
		if err := rows.Scan(&d); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (s *PgStore) LockProperty(ctx context.Context, propertyID int64) error {
	_, err := s.q.Exec(ctx, `SELECT id FROM properties WHERE id = $1 FOR UPDATE`, propertyID)
	return err
}

func (s *PgStore) LedgerEntryByKey(ctx context.Context, propertyID, ownerID int64, period time.Time) (*LedgerEntry, error) {
	var e LedgerEntry
	err := s.q.QueryRow(ctx, `
		SELECT id, property_id, owner_id, period, total_rent, owner_share, admin_fee, status
		FROM ledger_entries
		WHERE property_id = $1 AND owner_id = $2 AND period = $3`,
		propertyID, ownerID, period).
		Scan(&e.ID, &e.PropertyID, &e.OwnerID, &e.Period, &e.TotalRent, &e.OwnerShare, &e.AdminFee, &e.Status)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (s *PgStore) InsertLedgerEntry(ctx context.Context, e *LedgerEntry) error {
	return s.q.QueryRow(ctx, `
		INSERT INTO ledger_entries (property_id, owner_id, period, total_rent, owner_share, admin_fee, status)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING id`,
		e.PropertyID, e.OwnerID, e.Period, e.TotalRent, e.OwnerShare, e.AdminFee, e.Status).
		Scan(&e.ID)
}

func (s *PgStore) UpdateLedgerEntry(ctx context.Context, e *LedgerEntry) error {
	_, err := s.q.Exec(ctx, `
		UPDATE ledger_entries
		SET total_rent = $2, owner_share = $3, admin_fee = $4, status = $5
		WHERE id = $1`,
		e.ID, e.TotalRent, e.OwnerShare, e.AdminFee, e.Status)
	return err
}

// pgUserFriendlyMessage maps common Postgres error codes to messages an
// operator can act on without reading SQL state codes.
func pgUserFriendlyMessage(err error) string {
	if err == nil {
		return ""
	}
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err.Error()
	}
	switch pgErr.Code {
	case "23505":
		return "A record with the same unique value already exists."
	case "23503":
		return "Some referenced data was not found (please refresh and try again)."
	case "23514":
		return "Some fields have invalid values. Please check and try again."
	default:
		return "Database error while processing the request. Please try again."
	}
}
