package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/GustavoMarcolla/insightscore-pro/internal/data/pgxutil"
	"github.com/GustavoMarcolla/insightscore-pro/internal/domain/model"
)

// SupplierRepo provides database operations for suppliers.
type SupplierRepo struct {
	DB *sql.DB
}

// NewSupplierRepo creates a new SupplierRepo.
func NewSupplierRepo(db *sql.DB) *SupplierRepo {
	return &SupplierRepo{DB: db}
}

const supplierColumns = `id, code, name, cnpj, address, status, current_score, total_evaluations, created_at, updated_at`

// Create inserts a new supplier.
func (r *SupplierRepo) Create(ctx context.Context, req *model.CreateSupplierRequest) (*model.Supplier, error) {
	if req == nil {
		return nil, errors.New("create supplier request is required")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var out model.Supplier
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			INSERT INTO suppliers (code, name, cnpj, address)
			VALUES ($1, $2, $3, $4)
			RETURNING `+supplierColumns,
			strings.TrimSpace(req.Code),
			strings.TrimSpace(req.Name),
			strings.TrimSpace(req.CNPJ),
			req.Address,
		)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Supplier])
		return err
	}); err != nil {
		return nil, r.mapWriteErr(err, false)
	}
	return &out, nil
}

// GetByID retrieves a supplier by ID.
func (r *SupplierRepo) GetByID(ctx context.Context, id string) (*model.Supplier, error) {
	return r.getByQuery(ctx, `SELECT `+supplierColumns+` FROM suppliers WHERE id = $1`, "failed to get supplier by ID", id)
}

// GetByCode retrieves a supplier by its business code.
func (r *SupplierRepo) GetByCode(ctx context.Context, code string) (*model.Supplier, error) {
	return r.getByQuery(ctx, `SELECT `+supplierColumns+` FROM suppliers WHERE code = $1`, "failed to get supplier by code", code)
}

// List retrieves suppliers with filters, sorting, and pagination.
func (r *SupplierRepo) List(ctx context.Context, opts model.SuppliersListOptions) ([]*model.Supplier, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := max(opts.Offset, 0)

	where, args := buildSupplierWhere(opts)
	sortCol, sortDir := validateSupplierSort(opts.Sort, opts.Dir)

	args = append(args, limit, offset)
	query := `SELECT ` + supplierColumns + ` FROM suppliers` + where +
		` ORDER BY ` + sortCol + ` ` + sortDir +
		` LIMIT $` + strconv.Itoa(len(args)-1) + ` OFFSET $` + strconv.Itoa(len(args))

	var rowsOut []model.Supplier
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		rowsOut, err = pgx.CollectRows(rows, pgx.RowToStructByName[model.Supplier])
		return err
	}); err != nil {
		return nil, fmt.Errorf("failed to list suppliers: %w", err)
	}

	res := make([]*model.Supplier, len(rowsOut))
	for i := range rowsOut {
		res[i] = &rowsOut[i]
	}
	return res, nil
}

// Count returns the total supplier count for the given filters.
func (r *SupplierRepo) Count(ctx context.Context, opts model.SuppliersListOptions) (int, error) {
	where, args := buildSupplierWhere(opts)

	var count int
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		return conn.QueryRow(ctx, `SELECT COUNT(*) FROM suppliers`+where, args...).Scan(&count)
	}); err != nil {
		return 0, fmt.Errorf("failed to count suppliers: %w", err)
	}
	return count, nil
}

// Update updates fields of a supplier.
func (r *SupplierRepo) Update(ctx context.Context, id string, req model.UpdateSupplierRequest) (*model.Supplier, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var out model.Supplier
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		setClause, args := r.buildUpdateClause(req)
		if setClause == "" {
			rows, err := conn.Query(ctx, `SELECT `+supplierColumns+` FROM suppliers WHERE id = $1`, id)
			if err != nil {
				return err
			}
			defer rows.Close()
			var e error
			out, e = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Supplier])
			return e
		}
		args = append(args, id)
		query := "UPDATE suppliers SET " + setClause + ", updated_at = now() WHERE id = $" +
			strconv.Itoa(len(args)) + " RETURNING " + supplierColumns
		rows, err := conn.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		var e error
		out, e = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Supplier])
		return e
	})
	if err != nil {
		return nil, r.mapWriteErr(err, true)
	}
	return &out, nil
}

// Delete deletes a supplier by ID. Qualifications cascade at the database level.
func (r *SupplierRepo) Delete(ctx context.Context, id string) (bool, error) {
	var rows int64
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		ct, err := conn.Exec(ctx, `DELETE FROM suppliers WHERE id = $1`, id)
		if err != nil {
			return err
		}
		rows = ct.RowsAffected()
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("failed to delete supplier: %w", err)
	}
	return rows > 0, nil
}

// RecalculateScore recomputes current_score and total_evaluations from the
// supplier's concluded qualifications. The score is the mean of all evaluation
// stars across concluded qualifications, scaled to 0-100; a supplier without
// concluded qualifications resets to zero.
func (r *SupplierRepo) RecalculateScore(ctx context.Context, supplierID string) (*model.Supplier, error) {
	var out model.Supplier
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			WITH agg AS (
				SELECT
					COALESCE(AVG(e.stars) * 20, 0) AS score,
					COUNT(DISTINCT q.id) AS evaluations
				FROM qualifications q
				JOIN evaluations e ON e.qualification_id = q.id
				WHERE q.supplier_id = $1 AND q.status = 'concluido'
			)
			UPDATE suppliers s
			SET current_score = agg.score,
			    total_evaluations = agg.evaluations,
			    updated_at = now()
			FROM agg
			WHERE s.id = $1
			RETURNING s.id, s.code, s.name, s.cnpj, s.address, s.status,
			          s.current_score, s.total_evaluations, s.created_at, s.updated_at`,
			supplierID,
		)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Supplier])
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSupplierNotFound
		}
		return nil, fmt.Errorf("failed to recalculate supplier score: %w", err)
	}
	return &out, nil
}

// --- helpers ---

func (r *SupplierRepo) buildUpdateClause(req model.UpdateSupplierRequest) (string, []any) {
	setParts := make([]string, 0, 5)
	args := make([]any, 0, 5)
	nextIdx := func() int { return len(args) + 1 }

	if req.Code != nil {
		setParts = append(setParts, fmt.Sprintf("code = $%d", nextIdx()))
		args = append(args, strings.TrimSpace(*req.Code))
	}
	if req.Name != nil {
		setParts = append(setParts, fmt.Sprintf("name = $%d", nextIdx()))
		args = append(args, strings.TrimSpace(*req.Name))
	}
	if req.CNPJ != nil {
		setParts = append(setParts, fmt.Sprintf("cnpj = $%d", nextIdx()))
		args = append(args, strings.TrimSpace(*req.CNPJ))
	}
	if req.Address != nil {
		if strings.TrimSpace(*req.Address) == "" {
			setParts = append(setParts, "address = NULL")
		} else {
			setParts = append(setParts, fmt.Sprintf("address = $%d", nextIdx()))
			args = append(args, *req.Address)
		}
	}
	if req.Status != nil {
		setParts = append(setParts, fmt.Sprintf("status = $%d", nextIdx()))
		args = append(args, string(*req.Status))
	}

	if len(setParts) == 0 {
		return "", nil
	}
	return strings.Join(setParts, ", "), args
}

func buildSupplierWhere(opts model.SuppliersListOptions) (string, []any) {
	conds := make([]string, 0, 2)
	args := make([]any, 0, 2)

	if opts.Q != nil && strings.TrimSpace(*opts.Q) != "" {
		args = append(args, "%"+strings.TrimSpace(*opts.Q)+"%")
		idx := strconv.Itoa(len(args))
		conds = append(conds, "(name ILIKE $"+idx+" OR code ILIKE $"+idx+")")
	}
	if opts.Status != nil {
		args = append(args, string(*opts.Status))
		conds = append(conds, "status = $"+strconv.Itoa(len(args)))
	}

	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func validateSupplierSort(sort, dir string) (string, string) {
	sortCol := "name"
	sortDir := sortDirAsc

	allowedSorts := map[string]bool{
		"code": true, "name": true, "current_score": true, "created_at": true,
	}
	if s := strings.ToLower(strings.TrimSpace(sort)); allowedSorts[s] {
		sortCol = s
	}
	if d := strings.ToLower(strings.TrimSpace(dir)); d == "desc" {
		sortDir = sortDirDesc
	}
	return sortCol, sortDir
}

func (r *SupplierRepo) getByQuery(ctx context.Context, q, errMsg string, args ...any) (*model.Supplier, error) {
	var supplier model.Supplier
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, q, args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		supplier, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Supplier])
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSupplierNotFound
		}
		return nil, fmt.Errorf("%s: %w", errMsg, err)
	}
	return &supplier, nil
}

func (r *SupplierRepo) mapWriteErr(err error, includeNotFound bool) error {
	if err == nil {
		return nil
	}
	if includeNotFound && errors.Is(err, pgx.ErrNoRows) {
		return ErrSupplierNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrSupplierCodeExists
	}
	return err
}
