package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/GustavoMarcolla/insightscore-pro/internal/domain/model"
	apperrors "github.com/GustavoMarcolla/insightscore-pro/internal/errors"
	"github.com/GustavoMarcolla/insightscore-pro/internal/mocks"
	mockauth "github.com/GustavoMarcolla/insightscore-pro/internal/mocks/auth"
)

type feedbackFixture struct {
	svc            *FeedbackService
	qualifications *mocks.MockQualificationRepository
	suppliers      *mocks.MockSupplierRepository
	contacts       *mocks.MockContactRepository
	mailer         *mockauth.MockMailer
}

// newFeedbackService creates mock repositories and a service for testing.
func newFeedbackService(t *testing.T) feedbackFixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	f := feedbackFixture{
		qualifications: mocks.NewMockQualificationRepository(ctrl),
		suppliers:      mocks.NewMockSupplierRepository(ctrl),
		contacts:       mocks.NewMockContactRepository(ctrl),
		mailer:         &mockauth.MockMailer{},
	}
	svc, err := NewFeedbackService(FeedbackServiceOptions{
		Qualifications: f.qualifications,
		Suppliers:      f.suppliers,
		Contacts:       f.contacts,
		Mailer:         f.mailer,
		FromAddress:    "qualidade@example.com",
	})
	require.NoError(t, err)
	f.svc = svc
	return f
}

func concludedRound(id string, receivedAt time.Time) *model.QualificationWithSupplier {
	return &model.QualificationWithSupplier{
		Qualification: model.Qualification{
			ID:         id,
			SupplierID: "sup-1",
			ReceivedAt: receivedAt,
			Status:     model.QualificationConcluded,
		},
		SupplierName: "Metalurgica Aurora",
		SupplierCode: "FORN-001",
	}
}

func contactWithEmail(name, email string) *model.SupplierContact {
	return &model.SupplierContact{ID: "ct-" + name, SupplierID: "sup-1", Name: name, Email: &email}
}

func TestFeedbackService_SendLastMonthRounds(t *testing.T) {
	t.Parallel()
	f := newFeedbackService(t)
	ctx := context.Background()
	f.svc.now = func() time.Time {
		return time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC)
	}

	recent := concludedRound("qual-1", time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC))
	old := concludedRound("qual-old", time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC))

	f.suppliers.EXPECT().GetByID(ctx, "sup-1").Return(testSupplier(), nil).Times(1)
	f.contacts.EXPECT().ListBySupplier(ctx, "sup-1").Return([]*model.SupplierContact{
		contactWithEmail("Joana", "joana@aurora.com.br"),
		{ID: "ct-sem-email", SupplierID: "sup-1", Name: "Carlos"},
	}, nil).Times(1)
	f.qualifications.EXPECT().List(ctx, gomock.Any()).
		Return([]*model.QualificationWithSupplier{recent, old}, nil).Times(1)
	// Only the recent round is aggregated; the old one falls outside the window.
	f.qualifications.EXPECT().ListEvaluations(gomock.Any(), "qual-1").
		Return([]*model.EvaluationWithCriterion{
			{
				Evaluation:           model.Evaluation{ID: "eval-1", CriterionID: "crit-1", Stars: 4},
				CriterionCode:        "PRZ",
				CriterionDescription: "Prazo de entrega",
			},
		}, nil).Times(1)

	report, err := f.svc.Send(ctx, "sup-1")
	require.NoError(t, err)
	assert.Equal(t, 1, report.Rounds)
	assert.Equal(t, []string{"joana@aurora.com.br"}, report.Recipients)
	require.Len(t, report.Criteria, 1)
	assert.Equal(t, "PRZ", report.Criteria[0].Code)
	assert.InDelta(t, 4.0, report.Criteria[0].AverageStars, 0.001)
	assert.InDelta(t, 80.0, report.Criteria[0].AverageScore, 0.001)

	sent := f.mailer.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, []string{"joana@aurora.com.br"}, sent[0].To)
	assert.Contains(t, sent[0].Subject, "Metalurgica Aurora")
	assert.Contains(t, sent[0].Text, "Prazo de entrega")
	assert.Contains(t, sent[0].HTML, "<table")
}

func TestFeedbackService_SendFallsBackToRecentRounds(t *testing.T) {
	t.Parallel()
	f := newFeedbackService(t)
	ctx := context.Background()
	f.svc.now = func() time.Time {
		return time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC)
	}

	// Nothing in the last month, so the latest rounds are used instead.
	old1 := concludedRound("qual-1", time.Date(2026, 4, 10, 0, 0, 0, 0, time.UTC))
	old2 := concludedRound("qual-2", time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC))

	f.suppliers.EXPECT().GetByID(ctx, "sup-1").Return(testSupplier(), nil).Times(1)
	f.contacts.EXPECT().ListBySupplier(ctx, "sup-1").Return([]*model.SupplierContact{
		contactWithEmail("Joana", "joana@aurora.com.br"),
	}, nil).Times(1)
	f.qualifications.EXPECT().List(ctx, gomock.Any()).
		Return([]*model.QualificationWithSupplier{old1, old2}, nil).Times(1)
	f.qualifications.EXPECT().ListEvaluations(gomock.Any(), "qual-1").
		Return([]*model.EvaluationWithCriterion{
			{
				Evaluation:    model.Evaluation{ID: "eval-1", CriterionID: "crit-1", Stars: 5},
				CriterionCode: "QUAL",
			},
		}, nil).Times(1)
	f.qualifications.EXPECT().ListEvaluations(gomock.Any(), "qual-2").
		Return([]*model.EvaluationWithCriterion{
			{
				Evaluation:    model.Evaluation{ID: "eval-2", CriterionID: "crit-1", Stars: 3},
				CriterionCode: "QUAL",
			},
		}, nil).Times(1)

	report, err := f.svc.Send(ctx, "sup-1")
	require.NoError(t, err)
	assert.Equal(t, 2, report.Rounds)
	require.Len(t, report.Criteria, 1)
	assert.InDelta(t, 4.0, report.Criteria[0].AverageStars, 0.001)
}

func TestFeedbackService_SendNoContacts(t *testing.T) {
	t.Parallel()
	f := newFeedbackService(t)
	ctx := context.Background()

	f.suppliers.EXPECT().GetByID(ctx, "sup-1").Return(testSupplier(), nil).Times(1)
	f.contacts.EXPECT().ListBySupplier(ctx, "sup-1").Return(nil, nil).Times(1)

	_, err := f.svc.Send(ctx, "sup-1")
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
	assert.Empty(t, f.mailer.Sent())
}

func TestFeedbackService_SendNoConcludedRounds(t *testing.T) {
	t.Parallel()
	f := newFeedbackService(t)
	ctx := context.Background()

	f.suppliers.EXPECT().GetByID(ctx, "sup-1").Return(testSupplier(), nil).Times(1)
	f.contacts.EXPECT().ListBySupplier(ctx, "sup-1").Return([]*model.SupplierContact{
		contactWithEmail("Joana", "joana@aurora.com.br"),
	}, nil).Times(1)
	f.qualifications.EXPECT().List(ctx, gomock.Any()).Return(nil, nil).Times(1)

	_, err := f.svc.Send(ctx, "sup-1")
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
	assert.Empty(t, f.mailer.Sent())
}

func TestFeedbackService_SendEmailsEveryContact(t *testing.T) {
	t.Parallel()
	f := newFeedbackService(t)
	ctx := context.Background()
	f.svc.now = func() time.Time {
		return time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC)
	}

	round := concludedRound("qual-1", time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC))

	f.suppliers.EXPECT().GetByID(ctx, "sup-1").Return(testSupplier(), nil).Times(1)
	f.contacts.EXPECT().ListBySupplier(ctx, "sup-1").Return([]*model.SupplierContact{
		contactWithEmail("Joana", "joana@aurora.com.br"),
		contactWithEmail("Carlos", "carlos@aurora.com.br"),
	}, nil).Times(1)
	f.qualifications.EXPECT().List(ctx, gomock.Any()).
		Return([]*model.QualificationWithSupplier{round}, nil).Times(1)
	f.qualifications.EXPECT().ListEvaluations(gomock.Any(), "qual-1").
		Return([]*model.EvaluationWithCriterion{
			{Evaluation: model.Evaluation{ID: "eval-1", CriterionID: "crit-1", Stars: 4}, CriterionCode: "PRZ"},
		}, nil).Times(1)

	report, err := f.svc.Send(ctx, "sup-1")
	require.NoError(t, err)
	assert.Len(t, report.Recipients, 2)
	assert.Len(t, f.mailer.Sent(), 2)
}
