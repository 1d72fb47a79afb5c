package service

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/GustavoMarcolla/insightscore-pro/internal/core"
	"github.com/GustavoMarcolla/insightscore-pro/internal/domain/model"
	apperrors "github.com/GustavoMarcolla/insightscore-pro/internal/errors"
	"github.com/GustavoMarcolla/insightscore-pro/internal/ports"
)

const (
	// feedbackFallbackRounds is how many concluded rounds feed the report when
	// the last month has none.
	feedbackFallbackRounds = 20

	// feedbackScanLimit bounds the qualification listing behind a report.
	feedbackScanLimit = 200

	// feedbackFetchConcurrency bounds parallel evaluation fetches.
	feedbackFetchConcurrency = 4
)

// FeedbackServiceOptions groups dependencies for FeedbackService.
type FeedbackServiceOptions struct {
	Qualifications core.QualificationRepository // Required: rounds and evaluations
	Suppliers      core.SupplierRepository      // Required: supplier lookups
	Contacts       core.ContactRepository       // Required: recipients
	Mailer         ports.Mailer                 // Required: delivery
	FromAddress    string                       // Required: sender shown on emails
	Logger         *slog.Logger                 // Optional: structured logger
}

// FeedbackService builds per-criterion performance summaries for a supplier
// and emails them to its contacts.
type FeedbackService struct {
	qualifications core.QualificationRepository
	suppliers      core.SupplierRepository
	contacts       core.ContactRepository
	mailer         ports.Mailer
	from           string
	logger         *slog.Logger
	now            func() time.Time
}

// NewFeedbackService constructs a new FeedbackService.
func NewFeedbackService(opts FeedbackServiceOptions) (*FeedbackService, error) {
	if opts.Qualifications == nil {
		return nil, errors.New("QualificationRepository is required")
	}
	if opts.Suppliers == nil {
		return nil, errors.New("SupplierRepository is required")
	}
	if opts.Contacts == nil {
		return nil, errors.New("ContactRepository is required")
	}
	if opts.Mailer == nil {
		return nil, errors.New("Mailer is required")
	}

	var logger *slog.Logger
	if opts.Logger != nil {
		logger = opts.Logger.With("component", "feedback_service")
	}

	return &FeedbackService{
		qualifications: opts.Qualifications,
		suppliers:      opts.Suppliers,
		contacts:       opts.Contacts,
		mailer:         opts.Mailer,
		from:           opts.FromAddress,
		logger:         logger,
		now:            time.Now,
	}, nil
}

// FeedbackReport describes one sent feedback email.
type FeedbackReport struct {
	SupplierID   string                `json:"supplier_id"`
	SupplierName string                `json:"supplier_name"`
	Rounds       int                   `json:"rounds"`
	Criteria     []model.CriterionStat `json:"criteria"`
	Recipients   []string              `json:"recipients"`
	SentAt       time.Time             `json:"sent_at"`
}

// Send builds the per-criterion summary for the supplier's last month of
// concluded rounds (or its last rounds when the month is empty) and emails it
// to every contact with an email address.
func (s *FeedbackService) Send(ctx context.Context, supplierID string) (*FeedbackReport, error) {
	supplier, err := s.suppliers.GetByID(ctx, supplierID)
	if err != nil {
		return nil, fmt.Errorf("get supplier: %w", err)
	}

	recipients, err := s.recipients(ctx, supplierID)
	if err != nil {
		return nil, err
	}

	rounds, err := s.selectRounds(ctx, supplierID)
	if err != nil {
		return nil, err
	}
	if len(rounds) == 0 {
		return nil, apperrors.Validation("supplier has no concluded qualifications to report on")
	}

	stats, err := s.aggregate(ctx, rounds)
	if err != nil {
		return nil, err
	}

	subject := fmt.Sprintf("Feedback de desempenho - %s", supplier.Name)
	text := renderFeedbackText(supplier, rounds, stats)
	htmlBody := renderFeedbackHTML(supplier, rounds, stats)

	g, gctx := errgroup.WithContext(ctx)
	for _, to := range recipients {
		g.Go(func() error {
			if sendErr := s.mailer.Send(gctx, ports.Message{
				To:      []string{to},
				Subject: subject,
				HTML:    htmlBody,
				Text:    text,
			}); sendErr != nil {
				return fmt.Errorf("send feedback to %s: %w", to, sendErr)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if s.logger != nil {
		s.logger.InfoContext(ctx, "feedback sent",
			"supplier_id", supplierID, "rounds", len(rounds), "recipients", len(recipients))
	}
	return &FeedbackReport{
		SupplierID:   supplier.ID,
		SupplierName: supplier.Name,
		Rounds:       len(rounds),
		Criteria:     stats,
		Recipients:   recipients,
		SentAt:       s.now().UTC(),
	}, nil
}

func (s *FeedbackService) recipients(ctx context.Context, supplierID string) ([]string, error) {
	contacts, err := s.contacts.ListBySupplier(ctx, supplierID)
	if err != nil {
		return nil, fmt.Errorf("list contacts: %w", err)
	}
	var recipients []string
	for _, c := range contacts {
		if c.Email != nil && strings.TrimSpace(*c.Email) != "" {
			recipients = append(recipients, strings.TrimSpace(*c.Email))
		}
	}
	if len(recipients) == 0 {
		return nil, apperrors.Validation("supplier has no contacts with an email address")
	}
	return recipients, nil
}

// selectRounds picks the concluded rounds the report covers: everything
// received in the last month, or the most recent rounds when that window is
// empty.
func (s *FeedbackService) selectRounds(ctx context.Context, supplierID string) ([]*model.QualificationWithSupplier, error) {
	status := model.QualificationConcluded
	all, err := s.qualifications.List(ctx, model.QualificationsListOptions{
		SupplierID: &supplierID,
		Status:     &status,
		Sort:       "received_at",
		Dir:        "desc",
		Limit:      feedbackScanLimit,
	})
	if err != nil {
		return nil, fmt.Errorf("list qualifications: %w", err)
	}

	since := s.now().UTC().AddDate(0, -1, 0)
	var recent []*model.QualificationWithSupplier
	for _, q := range all {
		if !q.ReceivedAt.Before(since) {
			recent = append(recent, q)
		}
	}
	if len(recent) > 0 {
		return recent, nil
	}
	if len(all) > feedbackFallbackRounds {
		all = all[:feedbackFallbackRounds]
	}
	return all, nil
}

// aggregate averages stars per criterion across the selected rounds.
func (s *FeedbackService) aggregate(ctx context.Context, rounds []*model.QualificationWithSupplier) ([]model.CriterionStat, error) {
	type bucket struct {
		code        string
		description string
		sum         int
		samples     int
	}

	var mu sync.Mutex
	buckets := make(map[string]*bucket)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(feedbackFetchConcurrency)
	for _, round := range rounds {
		g.Go(func() error {
			evals, err := s.qualifications.ListEvaluations(gctx, round.ID)
			if err != nil {
				return fmt.Errorf("list evaluations for %s: %w", round.ID, err)
			}
			mu.Lock()
			defer mu.Unlock()
			for _, e := range evals {
				b := buckets[e.CriterionID]
				if b == nil {
					b = &bucket{code: e.CriterionCode, description: e.CriterionDescription}
					buckets[e.CriterionID] = b
				}
				b.sum += e.Stars
				b.samples++
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	stats := make([]model.CriterionStat, 0, len(buckets))
	for id, b := range buckets {
		avg := float64(b.sum) / float64(b.samples)
		stats = append(stats, model.CriterionStat{
			CriterionID:  id,
			Code:         b.code,
			Description:  b.description,
			AverageStars: avg,
			AverageScore: model.ScoreFromStars(avg),
			Samples:      b.samples,
		})
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].Code < stats[j].Code })
	return stats, nil
}

func renderFeedbackText(supplier *model.Supplier, rounds []*model.QualificationWithSupplier, stats []model.CriterionStat) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Feedback de desempenho - %s (%s)\n\n", supplier.Name, supplier.Code)
	fmt.Fprintf(&b, "Qualificacoes consideradas: %d\n", len(rounds))
	fmt.Fprintf(&b, "Pontuacao atual: %d/100\n\n", model.RoundScore(supplier.CurrentScore))
	b.WriteString("Desempenho por criterio:\n")
	for _, st := range stats {
		fmt.Fprintf(&b, "- %s (%s): %.1f/5 estrelas (%d/100, %d avaliacoes)\n",
			st.Description, st.Code, st.AverageStars, model.RoundScore(st.AverageScore), st.Samples)
	}
	return b.String()
}

func renderFeedbackHTML(supplier *model.Supplier, rounds []*model.QualificationWithSupplier, stats []model.CriterionStat) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<h2>Feedback de desempenho - %s (%s)</h2>",
		html.EscapeString(supplier.Name), html.EscapeString(supplier.Code))
	fmt.Fprintf(&b, "<p>Qualificacoes consideradas: <strong>%d</strong><br>", len(rounds))
	fmt.Fprintf(&b, "Pontuacao atual: <strong>%d/100</strong></p>", model.RoundScore(supplier.CurrentScore))
	b.WriteString("<table border=\"1\" cellpadding=\"6\" cellspacing=\"0\">")
	b.WriteString("<tr><th>Criterio</th><th>Estrelas</th><th>Pontuacao</th><th>Avaliacoes</th></tr>")
	for _, st := range stats {
		fmt.Fprintf(&b, "<tr><td>%s (%s)</td><td>%.1f/5</td><td>%d/100</td><td>%d</td></tr>",
			html.EscapeString(st.Description), html.EscapeString(st.Code),
			st.AverageStars, model.RoundScore(st.AverageScore), st.Samples)
	}
	b.WriteString("</table>")
	return b.String()
}
