package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/GustavoMarcolla/insightscore-pro/internal/data/pgxutil"
	"github.com/GustavoMarcolla/insightscore-pro/internal/domain/model"
)

// ContactRepo provides database operations for supplier contacts.
type ContactRepo struct {
	DB *sql.DB
}

// NewContactRepo creates a new ContactRepo.
func NewContactRepo(db *sql.DB) *ContactRepo {
	return &ContactRepo{DB: db}
}

const contactColumns = `id, supplier_id, name, email, whatsapp, created_at`

// Create inserts a new supplier contact.
func (r *ContactRepo) Create(ctx context.Context, req *model.CreateContactRequest) (*model.SupplierContact, error) {
	if req == nil {
		return nil, errors.New("create contact request is required")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var out model.SupplierContact
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			INSERT INTO supplier_contacts (supplier_id, name, email, whatsapp)
			VALUES ($1, $2, $3, $4)
			RETURNING `+contactColumns,
			req.SupplierID,
			strings.TrimSpace(req.Name),
			req.Email,
			req.WhatsApp,
		)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.SupplierContact])
		return err
	}); err != nil {
		return nil, fmt.Errorf("failed to create contact: %w", err)
	}
	return &out, nil
}

// ListBySupplier retrieves all contacts for a supplier.
func (r *ContactRepo) ListBySupplier(ctx context.Context, supplierID string) ([]*model.SupplierContact, error) {
	var rowsOut []model.SupplierContact
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			SELECT `+contactColumns+`
			FROM supplier_contacts
			WHERE supplier_id = $1
			ORDER BY created_at`, supplierID)
		if err != nil {
			return err
		}
		defer rows.Close()
		rowsOut, err = pgx.CollectRows(rows, pgx.RowToStructByName[model.SupplierContact])
		return err
	}); err != nil {
		return nil, fmt.Errorf("failed to list contacts: %w", err)
	}

	res := make([]*model.SupplierContact, len(rowsOut))
	for i := range rowsOut {
		res[i] = &rowsOut[i]
	}
	return res, nil
}

// Update updates fields of a supplier contact.
func (r *ContactRepo) Update(ctx context.Context, id string, req model.UpdateContactRequest) (*model.SupplierContact, error) {
	setParts := make([]string, 0, 3)
	args := make([]any, 0, 4)
	nextIdx := func() int { return len(args) + 1 }

	if req.Name != nil {
		setParts = append(setParts, fmt.Sprintf("name = $%d", nextIdx()))
		args = append(args, strings.TrimSpace(*req.Name))
	}
	if req.Email != nil {
		setParts = append(setParts, fmt.Sprintf("email = $%d", nextIdx()))
		args = append(args, *req.Email)
	}
	if req.WhatsApp != nil {
		setParts = append(setParts, fmt.Sprintf("whatsapp = $%d", nextIdx()))
		args = append(args, *req.WhatsApp)
	}

	var out model.SupplierContact
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		query := `SELECT ` + contactColumns + ` FROM supplier_contacts WHERE id = $1`
		queryArgs := []any{id}
		if len(setParts) > 0 {
			args = append(args, id)
			query = "UPDATE supplier_contacts SET " + strings.Join(setParts, ", ") +
				" WHERE id = $" + strconv.Itoa(len(args)) + " RETURNING " + contactColumns
			queryArgs = args
		}
		rows, err := conn.Query(ctx, query, queryArgs...)
		if err != nil {
			return err
		}
		defer rows.Close()
		var e error
		out, e = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.SupplierContact])
		return e
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrContactNotFound
		}
		return nil, fmt.Errorf("failed to update contact: %w", err)
	}
	return &out, nil
}

// Delete deletes a supplier contact by ID.
func (r *ContactRepo) Delete(ctx context.Context, id string) (bool, error) {
	var rows int64
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		ct, err := conn.Exec(ctx, `DELETE FROM supplier_contacts WHERE id = $1`, id)
		if err != nil {
			return err
		}
		rows = ct.RowsAffected()
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("failed to delete contact: %w", err)
	}
	return rows > 0, nil
}
