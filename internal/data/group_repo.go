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

// GroupRepo provides database operations for criteria groups.
type GroupRepo struct {
	DB *sql.DB
}

// NewGroupRepo creates a new GroupRepo.
func NewGroupRepo(db *sql.DB) *GroupRepo {
	return &GroupRepo{DB: db}
}

const groupColumns = `id, code, description, status, created_at, updated_at`

// Create inserts a new criteria group.
func (r *GroupRepo) Create(ctx context.Context, req *model.CreateGroupRequest) (*model.CriteriaGroup, error) {
	if req == nil {
		return nil, errors.New("create group request is required")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var out model.CriteriaGroup
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			INSERT INTO criteria_groups (code, description)
			VALUES ($1, $2)
			RETURNING `+groupColumns,
			strings.TrimSpace(req.Code),
			strings.TrimSpace(req.Description),
		)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.CriteriaGroup])
		return err
	}); err != nil {
		return nil, fmt.Errorf("failed to create criteria group: %w", err)
	}
	return &out, nil
}

// GetByID retrieves a criteria group by ID.
func (r *GroupRepo) GetByID(ctx context.Context, id string) (*model.CriteriaGroup, error) {
	var out model.CriteriaGroup
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `SELECT `+groupColumns+` FROM criteria_groups WHERE id = $1`, id)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.CriteriaGroup])
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrGroupNotFound
		}
		return nil, fmt.Errorf("failed to get criteria group: %w", err)
	}
	return &out, nil
}

// List retrieves criteria groups with the count of criteria in each,
// optionally restricted to active groups.
func (r *GroupRepo) List(ctx context.Context, onlyActive bool) ([]*model.CriteriaGroupWithCount, error) {
	query := `
		SELECT g.id, g.code, g.description, g.status, g.created_at, g.updated_at,
		       COUNT(c.id)::int AS criteria_count
		FROM criteria_groups g
		LEFT JOIN criteria c ON c.group_id = g.id`
	if onlyActive {
		query += ` WHERE g.status = 'ativo'`
	}
	query += `
		GROUP BY g.id
		ORDER BY g.code`

	var rowsOut []model.CriteriaGroupWithCount
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, query)
		if err != nil {
			return err
		}
		defer rows.Close()
		rowsOut, err = pgx.CollectRows(rows, pgx.RowToStructByName[model.CriteriaGroupWithCount])
		return err
	}); err != nil {
		return nil, fmt.Errorf("failed to list criteria groups: %w", err)
	}

	res := make([]*model.CriteriaGroupWithCount, len(rowsOut))
	for i := range rowsOut {
		res[i] = &rowsOut[i]
	}
	return res, nil
}

// Update updates fields of a criteria group.
func (r *GroupRepo) Update(ctx context.Context, id string, req model.UpdateGroupRequest) (*model.CriteriaGroup, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	setParts := make([]string, 0, 3)
	args := make([]any, 0, 4)
	nextIdx := func() int { return len(args) + 1 }

	if req.Code != nil {
		setParts = append(setParts, fmt.Sprintf("code = $%d", nextIdx()))
		args = append(args, strings.TrimSpace(*req.Code))
	}
	if req.Description != nil {
		setParts = append(setParts, fmt.Sprintf("description = $%d", nextIdx()))
		args = append(args, strings.TrimSpace(*req.Description))
	}
	if req.Status != nil {
		setParts = append(setParts, fmt.Sprintf("status = $%d", nextIdx()))
		args = append(args, string(*req.Status))
	}

	var out model.CriteriaGroup
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		query := `SELECT ` + groupColumns + ` FROM criteria_groups WHERE id = $1`
		queryArgs := []any{id}
		if len(setParts) > 0 {
			args = append(args, id)
			query = "UPDATE criteria_groups SET " + strings.Join(setParts, ", ") +
				", updated_at = now() WHERE id = $" + strconv.Itoa(len(args)) +
				" RETURNING " + groupColumns
			queryArgs = args
		}
		rows, err := conn.Query(ctx, query, queryArgs...)
		if err != nil {
			return err
		}
		defer rows.Close()
		var e error
		out, e = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.CriteriaGroup])
		return e
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrGroupNotFound
		}
		return nil, fmt.Errorf("failed to update criteria group: %w", err)
	}
	return &out, nil
}

// Delete deletes a criteria group by ID. Criteria in the group are detached,
// not deleted.
func (r *GroupRepo) Delete(ctx context.Context, id string) (bool, error) {
	var rows int64
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		ct, err := conn.Exec(ctx, `DELETE FROM criteria_groups WHERE id = $1`, id)
		if err != nil {
			return err
		}
		rows = ct.RowsAffected()
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("failed to delete criteria group: %w", err)
	}
	return rows > 0, nil
}
