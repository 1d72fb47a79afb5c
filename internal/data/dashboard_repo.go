package data

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/GustavoMarcolla/insightscore-pro/internal/data/pgxutil"
	"github.com/GustavoMarcolla/insightscore-pro/internal/domain/model"
)

// DashboardRepo runs the aggregation queries behind the landing page.
// All averages are computed over concluded qualifications only.
type DashboardRepo struct {
	DB *sql.DB
}

// NewDashboardRepo creates a new DashboardRepo.
func NewDashboardRepo(db *sql.DB) *DashboardRepo {
	return &DashboardRepo{DB: db}
}

// Stats returns the headline counters.
func (r *DashboardRepo) Stats(ctx context.Context) (*model.DashboardStats, error) {
	var out model.DashboardStats
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		return conn.QueryRow(ctx, `
			SELECT
				(SELECT COUNT(*) FROM suppliers WHERE status = 'ativo'),
				(SELECT COUNT(*) FROM qualifications WHERE status = 'pendente'),
				COALESCE((SELECT AVG(current_score) FROM suppliers WHERE total_evaluations > 0), 0),
				(SELECT COUNT(*) FROM suppliers WHERE total_evaluations > 0 AND current_score < $1)
		`, model.RiskScoreThreshold).Scan(
			&out.ActiveSuppliers,
			&out.PendingQualifications,
			&out.AverageScore,
			&out.SuppliersAtRisk,
		)
	}); err != nil {
		return nil, fmt.Errorf("failed to load dashboard stats: %w", err)
	}
	return &out, nil
}

// MonthlyScores returns one averaged score point per month since the given
// time, on the 0-100 scale.
func (r *DashboardRepo) MonthlyScores(ctx context.Context, since time.Time) ([]model.MonthlyScore, error) {
	var out []model.MonthlyScore
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			SELECT date_trunc('month', q.received_at) AS month,
			       AVG(e.stars) * 20 AS average,
			       COUNT(DISTINCT q.id)::int AS count
			FROM qualifications q
			JOIN evaluations e ON e.qualification_id = q.id
			WHERE q.status = 'concluido' AND q.received_at >= $1
			GROUP BY 1
			ORDER BY 1`, since.UTC())
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectRows(rows, pgx.RowToStructByName[model.MonthlyScore])
		return err
	}); err != nil {
		return nil, fmt.Errorf("failed to load monthly scores: %w", err)
	}
	return out, nil
}

// TopSuppliers returns the best scored evaluated suppliers.
func (r *DashboardRepo) TopSuppliers(ctx context.Context, limit int) ([]model.SupplierRanking, error) {
	return r.rankedSuppliers(ctx, limit, sortDirDesc)
}

// WorstSuppliers returns the lowest scored evaluated suppliers.
func (r *DashboardRepo) WorstSuppliers(ctx context.Context, limit int) ([]model.SupplierRanking, error) {
	return r.rankedSuppliers(ctx, limit, sortDirAsc)
}

func (r *DashboardRepo) rankedSuppliers(ctx context.Context, limit int, dir string) ([]model.SupplierRanking, error) {
	if limit <= 0 {
		limit = 5
	}

	var out []model.SupplierRanking
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			SELECT id AS supplier_id, code, name, current_score, total_evaluations
			FROM suppliers
			WHERE status = 'ativo' AND total_evaluations > 0
			ORDER BY current_score `+dir+`, name
			LIMIT $1`, limit)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectRows(rows, pgx.RowToStructByName[model.SupplierRanking])
		return err
	}); err != nil {
		return nil, fmt.Errorf("failed to rank suppliers: %w", err)
	}
	return out, nil
}

// WorstCriteria returns the criteria with the lowest average stars across all
// concluded qualifications.
func (r *DashboardRepo) WorstCriteria(ctx context.Context, limit int) ([]model.CriterionStat, error) {
	if limit <= 0 {
		limit = 4
	}

	var out []model.CriterionStat
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			SELECT c.id AS criterion_id, c.code, c.description,
			       AVG(e.stars) AS average_stars,
			       AVG(e.stars) * 20 AS average_score,
			       COUNT(e.id)::int AS samples
			FROM evaluations e
			JOIN criteria c ON c.id = e.criterion_id
			JOIN qualifications q ON q.id = e.qualification_id
			WHERE q.status = 'concluido'
			GROUP BY c.id
			ORDER BY average_stars, c.code
			LIMIT $1`, limit)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectRows(rows, pgx.RowToStructByName[model.CriterionStat])
		return err
	}); err != nil {
		return nil, fmt.Errorf("failed to load worst criteria: %w", err)
	}
	return out, nil
}
