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

// CriterionRepo provides database operations for scoring criteria.
type CriterionRepo struct {
	DB *sql.DB
}

// NewCriterionRepo creates a new CriterionRepo.
func NewCriterionRepo(db *sql.DB) *CriterionRepo {
	return &CriterionRepo{DB: db}
}

const criterionColumns = `id, code, description, group_id, status, created_at, updated_at`

// Create inserts a new criterion.
func (r *CriterionRepo) Create(ctx context.Context, req *model.CreateCriterionRequest) (*model.Criterion, error) {
	if req == nil {
		return nil, errors.New("create criterion request is required")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var out model.Criterion
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			INSERT INTO criteria (code, description, group_id)
			VALUES ($1, $2, $3)
			RETURNING `+criterionColumns,
			strings.TrimSpace(req.Code),
			strings.TrimSpace(req.Description),
			req.GroupID,
		)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Criterion])
		return err
	}); err != nil {
		return nil, fmt.Errorf("failed to create criterion: %w", err)
	}
	return &out, nil
}

// GetByID retrieves a criterion by ID.
func (r *CriterionRepo) GetByID(ctx context.Context, id string) (*model.Criterion, error) {
	var out model.Criterion
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `SELECT `+criterionColumns+` FROM criteria WHERE id = $1`, id)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Criterion])
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCriterionNotFound
		}
		return nil, fmt.Errorf("failed to get criterion: %w", err)
	}
	return &out, nil
}

// List retrieves criteria joined with their group description, optionally
// restricted to active criteria.
func (r *CriterionRepo) List(ctx context.Context, onlyActive bool) ([]*model.CriterionWithGroup, error) {
	query := `
		SELECT c.id, c.code, c.description, c.group_id, c.status, c.created_at, c.updated_at,
		       g.description AS group_description
		FROM criteria c
		LEFT JOIN criteria_groups g ON g.id = c.group_id`
	if onlyActive {
		query += ` WHERE c.status = 'ativo'`
	}
	query += ` ORDER BY c.code`

	var rowsOut []model.CriterionWithGroup
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, query)
		if err != nil {
			return err
		}
		defer rows.Close()
		rowsOut, err = pgx.CollectRows(rows, pgx.RowToStructByName[model.CriterionWithGroup])
		return err
	}); err != nil {
		return nil, fmt.Errorf("failed to list criteria: %w", err)
	}

	res := make([]*model.CriterionWithGroup, len(rowsOut))
	for i := range rowsOut {
		res[i] = &rowsOut[i]
	}
	return res, nil
}

// Update updates fields of a criterion.
func (r *CriterionRepo) Update(ctx context.Context, id string, req model.UpdateCriterionRequest) (*model.Criterion, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	setParts := make([]string, 0, 4)
	args := make([]any, 0, 5)
	nextIdx := func() int { return len(args) + 1 }

	if req.Code != nil {
		setParts = append(setParts, fmt.Sprintf("code = $%d", nextIdx()))
		args = append(args, strings.TrimSpace(*req.Code))
	}
	if req.Description != nil {
		setParts = append(setParts, fmt.Sprintf("description = $%d", nextIdx()))
		args = append(args, strings.TrimSpace(*req.Description))
	}
	if req.GroupID != nil {
		if strings.TrimSpace(*req.GroupID) == "" {
			setParts = append(setParts, "group_id = NULL")
		} else {
			setParts = append(setParts, fmt.Sprintf("group_id = $%d", nextIdx()))
			args = append(args, *req.GroupID)
		}
	}
	if req.Status != nil {
		setParts = append(setParts, fmt.Sprintf("status = $%d", nextIdx()))
		args = append(args, string(*req.Status))
	}

	var out model.Criterion
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		query := `SELECT ` + criterionColumns + ` FROM criteria WHERE id = $1`
		queryArgs := []any{id}
		if len(setParts) > 0 {
			args = append(args, id)
			query = "UPDATE criteria SET " + strings.Join(setParts, ", ") +
				", updated_at = now() WHERE id = $" + strconv.Itoa(len(args)) +
				" RETURNING " + criterionColumns
			queryArgs = args
		}
		rows, err := conn.Query(ctx, query, queryArgs...)
		if err != nil {
			return err
		}
		defer rows.Close()
		var e error
		out, e = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Criterion])
		return e
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCriterionNotFound
		}
		return nil, fmt.Errorf("failed to update criterion: %w", err)
	}
	return &out, nil
}

// Delete deletes a criterion by ID. Fails with a foreign key violation if the
// criterion already has evaluations.
func (r *CriterionRepo) Delete(ctx context.Context, id string) (bool, error) {
	var rows int64
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		ct, err := conn.Exec(ctx, `DELETE FROM criteria WHERE id = $1`, id)
		if err != nil {
			return err
		}
		rows = ct.RowsAffected()
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("failed to delete criterion: %w", err)
	}
	return rows > 0, nil
}
