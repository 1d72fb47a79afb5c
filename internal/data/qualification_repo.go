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

// QualificationRepo provides database operations for qualifications, their
// evaluations, and their attachments.
type QualificationRepo struct {
	DB *sql.DB
}

// NewQualificationRepo creates a new QualificationRepo.
func NewQualificationRepo(db *sql.DB) *QualificationRepo {
	return &QualificationRepo{DB: db}
}

const qualificationColumns = `id, code, supplier_id, received_at, invoice_series, invoice_number, note, status, created_by, created_at, updated_at`

const attachmentColumns = `id, qualification_id, criterion_id, file_path, file_name, file_type, file_size, created_at`

// Create inserts a new qualification. The serial code is assigned by the
// database.
func (r *QualificationRepo) Create(ctx context.Context, req *model.CreateQualificationRequest) (*model.Qualification, error) {
	if req == nil {
		return nil, errors.New("create qualification request is required")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var out model.Qualification
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			INSERT INTO qualifications (supplier_id, received_at, invoice_series, invoice_number, note, created_by)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING `+qualificationColumns,
			req.SupplierID,
			req.ReceivedAt.UTC(),
			req.InvoiceSeries,
			req.InvoiceNumber,
			req.Note,
			req.CreatedBy,
		)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Qualification])
		return err
	}); err != nil {
		return nil, fmt.Errorf("failed to create qualification: %w", err)
	}
	return &out, nil
}

// GetByID retrieves a qualification by ID.
func (r *QualificationRepo) GetByID(ctx context.Context, id string) (*model.Qualification, error) {
	var out model.Qualification
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `SELECT `+qualificationColumns+` FROM qualifications WHERE id = $1`, id)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Qualification])
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrQualificationNotFound
		}
		return nil, fmt.Errorf("failed to get qualification: %w", err)
	}
	return &out, nil
}

// List retrieves qualifications joined with supplier display fields.
func (r *QualificationRepo) List(ctx context.Context, opts model.QualificationsListOptions) ([]*model.QualificationWithSupplier, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := max(opts.Offset, 0)

	where, args := buildQualificationWhere(opts)
	sortCol, sortDir := validateQualificationSort(opts.Sort, opts.Dir)

	args = append(args, limit, offset)
	query := `
		SELECT q.id, q.code, q.supplier_id, q.received_at, q.invoice_series, q.invoice_number,
		       q.note, q.status, q.created_by, q.created_at, q.updated_at,
		       s.name AS supplier_name, s.code AS supplier_code
		FROM qualifications q
		JOIN suppliers s ON s.id = q.supplier_id` + where +
		` ORDER BY ` + sortCol + ` ` + sortDir +
		` LIMIT $` + strconv.Itoa(len(args)-1) + ` OFFSET $` + strconv.Itoa(len(args))

	var rowsOut []model.QualificationWithSupplier
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		rowsOut, err = pgx.CollectRows(rows, pgx.RowToStructByName[model.QualificationWithSupplier])
		return err
	}); err != nil {
		return nil, fmt.Errorf("failed to list qualifications: %w", err)
	}

	res := make([]*model.QualificationWithSupplier, len(rowsOut))
	for i := range rowsOut {
		res[i] = &rowsOut[i]
	}
	return res, nil
}

// Count returns the total qualification count for the given filters.
func (r *QualificationRepo) Count(ctx context.Context, opts model.QualificationsListOptions) (int, error) {
	where, args := buildQualificationWhere(opts)

	var count int
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		return conn.QueryRow(ctx, `SELECT COUNT(*) FROM qualifications q`+where, args...).Scan(&count)
	}); err != nil {
		return 0, fmt.Errorf("failed to count qualifications: %w", err)
	}
	return count, nil
}

// Update updates fields of a qualification, including status transitions.
func (r *QualificationRepo) Update(ctx context.Context, id string, req model.UpdateQualificationRequest) (*model.Qualification, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	setParts := make([]string, 0, 5)
	args := make([]any, 0, 6)
	nextIdx := func() int { return len(args) + 1 }

	if req.ReceivedAt != nil {
		setParts = append(setParts, fmt.Sprintf("received_at = $%d", nextIdx()))
		args = append(args, req.ReceivedAt.UTC())
	}
	if req.InvoiceSeries != nil {
		setParts = append(setParts, fmt.Sprintf("invoice_series = $%d", nextIdx()))
		args = append(args, *req.InvoiceSeries)
	}
	if req.InvoiceNumber != nil {
		setParts = append(setParts, fmt.Sprintf("invoice_number = $%d", nextIdx()))
		args = append(args, *req.InvoiceNumber)
	}
	if req.Note != nil {
		setParts = append(setParts, fmt.Sprintf("note = $%d", nextIdx()))
		args = append(args, *req.Note)
	}
	if req.Status != nil {
		setParts = append(setParts, fmt.Sprintf("status = $%d", nextIdx()))
		args = append(args, string(*req.Status))
	}

	var out model.Qualification
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		query := `SELECT ` + qualificationColumns + ` FROM qualifications WHERE id = $1`
		queryArgs := []any{id}
		if len(setParts) > 0 {
			args = append(args, id)
			query = "UPDATE qualifications SET " + strings.Join(setParts, ", ") +
				", updated_at = now() WHERE id = $" + strconv.Itoa(len(args)) +
				" RETURNING " + qualificationColumns
			queryArgs = args
		}
		rows, err := conn.Query(ctx, query, queryArgs...)
		if err != nil {
			return err
		}
		defer rows.Close()
		var e error
		out, e = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Qualification])
		return e
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrQualificationNotFound
		}
		return nil, fmt.Errorf("failed to update qualification: %w", err)
	}
	return &out, nil
}

// Delete deletes a qualification by ID. Evaluations and attachment rows
// cascade at the database level.
func (r *QualificationRepo) Delete(ctx context.Context, id string) (bool, error) {
	var rows int64
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		ct, err := conn.Exec(ctx, `DELETE FROM qualifications WHERE id = $1`, id)
		if err != nil {
			return err
		}
		rows = ct.RowsAffected()
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("failed to delete qualification: %w", err)
	}
	return rows > 0, nil
}

// SaveEvaluations upserts the batch of criterion scores in a single
// transaction. Saving the same (qualification, criterion) pair again
// overwrites the previous stars and note.
func (r *QualificationRepo) SaveEvaluations(ctx context.Context, reqs []model.SaveEvaluationRequest) ([]*model.Evaluation, error) {
	if len(reqs) == 0 {
		return nil, nil
	}
	for i := range reqs {
		if err := reqs[i].Validate(); err != nil {
			return nil, err
		}
	}

	out := make([]*model.Evaluation, 0, len(reqs))
	err := pgxutil.WithPgxTx(ctx, r.DB, pgxutil.TxConfig{Fn: func(tx pgx.Tx) error {
		for i := range reqs {
			rows, err := tx.Query(ctx, `
				INSERT INTO evaluations (qualification_id, criterion_id, stars, note)
				VALUES ($1, $2, $3, $4)
				ON CONFLICT (qualification_id, criterion_id)
				DO UPDATE SET stars = EXCLUDED.stars, note = EXCLUDED.note
				RETURNING id, qualification_id, criterion_id, stars, note, created_at`,
				reqs[i].QualificationID,
				reqs[i].CriterionID,
				reqs[i].Stars,
				reqs[i].Note,
			)
			if err != nil {
				return err
			}
			ev, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Evaluation])
			if err != nil {
				return err
			}
			out = append(out, &ev)
		}
		return nil
	}})
	if err != nil {
		return nil, fmt.Errorf("failed to save evaluations: %w", err)
	}
	return out, nil
}

// ListEvaluations retrieves the evaluations for a qualification joined with
// criterion display fields.
func (r *QualificationRepo) ListEvaluations(ctx context.Context, qualificationID string) ([]*model.EvaluationWithCriterion, error) {
	var rowsOut []model.EvaluationWithCriterion
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			SELECT e.id, e.qualification_id, e.criterion_id, e.stars, e.note, e.created_at,
			       c.code AS criterion_code, c.description AS criterion_description
			FROM evaluations e
			JOIN criteria c ON c.id = e.criterion_id
			WHERE e.qualification_id = $1
			ORDER BY c.code`, qualificationID)
		if err != nil {
			return err
		}
		defer rows.Close()
		rowsOut, err = pgx.CollectRows(rows, pgx.RowToStructByName[model.EvaluationWithCriterion])
		return err
	}); err != nil {
		return nil, fmt.Errorf("failed to list evaluations: %w", err)
	}

	res := make([]*model.EvaluationWithCriterion, len(rowsOut))
	for i := range rowsOut {
		res[i] = &rowsOut[i]
	}
	return res, nil
}

// RegisterAttachment records an uploaded file against a qualification.
func (r *QualificationRepo) RegisterAttachment(ctx context.Context, req *model.RegisterAttachmentRequest) (*model.Attachment, error) {
	if req == nil {
		return nil, errors.New("register attachment request is required")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var out model.Attachment
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			INSERT INTO attachments (qualification_id, criterion_id, file_path, file_name, file_type, file_size)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING `+attachmentColumns,
			req.QualificationID,
			req.CriterionID,
			req.FilePath,
			req.FileName,
			req.FileType,
			req.FileSize,
		)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Attachment])
		return err
	}); err != nil {
		return nil, fmt.Errorf("failed to register attachment: %w", err)
	}
	return &out, nil
}

// ListAttachments retrieves the attachments for a qualification.
func (r *QualificationRepo) ListAttachments(ctx context.Context, qualificationID string) ([]*model.Attachment, error) {
	var rowsOut []model.Attachment
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			SELECT `+attachmentColumns+`
			FROM attachments
			WHERE qualification_id = $1
			ORDER BY created_at`, qualificationID)
		if err != nil {
			return err
		}
		defer rows.Close()
		rowsOut, err = pgx.CollectRows(rows, pgx.RowToStructByName[model.Attachment])
		return err
	}); err != nil {
		return nil, fmt.Errorf("failed to list attachments: %w", err)
	}

	res := make([]*model.Attachment, len(rowsOut))
	for i := range rowsOut {
		res[i] = &rowsOut[i]
	}
	return res, nil
}

// GetAttachment retrieves an attachment by ID.
func (r *QualificationRepo) GetAttachment(ctx context.Context, id string) (*model.Attachment, error) {
	var out model.Attachment
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `SELECT `+attachmentColumns+` FROM attachments WHERE id = $1`, id)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Attachment])
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAttachmentNotFound
		}
		return nil, fmt.Errorf("failed to get attachment: %w", err)
	}
	return &out, nil
}

// DeleteAttachment deletes an attachment row by ID. The caller is responsible
// for removing the stored object.
func (r *QualificationRepo) DeleteAttachment(ctx context.Context, id string) (bool, error) {
	var rows int64
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		ct, err := conn.Exec(ctx, `DELETE FROM attachments WHERE id = $1`, id)
		if err != nil {
			return err
		}
		rows = ct.RowsAffected()
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("failed to delete attachment: %w", err)
	}
	return rows > 0, nil
}

// --- helpers ---

func buildQualificationWhere(opts model.QualificationsListOptions) (string, []any) {
	conds := make([]string, 0, 2)
	args := make([]any, 0, 2)

	if opts.SupplierID != nil && strings.TrimSpace(*opts.SupplierID) != "" {
		args = append(args, *opts.SupplierID)
		conds = append(conds, "q.supplier_id = $"+strconv.Itoa(len(args)))
	}
	if opts.Status != nil {
		args = append(args, string(*opts.Status))
		conds = append(conds, "q.status = $"+strconv.Itoa(len(args)))
	}

	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func validateQualificationSort(sort, dir string) (string, string) {
	sortCol := "q.code"
	sortDir := sortDirDesc

	allowedSorts := map[string]string{
		"code":        "q.code",
		"received_at": "q.received_at",
		"status":      "q.status",
		"supplier":    "s.name",
	}
	if col, ok := allowedSorts[strings.ToLower(strings.TrimSpace(sort))]; ok {
		sortCol = col
	}
	if d := strings.ToLower(strings.TrimSpace(dir)); d == "asc" {
		sortDir = sortDirAsc
	}
	return sortCol, sortDir
}
