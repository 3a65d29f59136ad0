package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dodopay/contas/internal/model"
	"github.com/dodopay/contas/internal/repository"
)

type fakeReportStore struct {
	totals       *repository.DashboardTotals
	recent       []*model.Entry
	thirdParties []*model.Entry
	cardOrder    map[string]int
}

func (f *fakeReportStore) DashboardTotals(context.Context, int, int, int) (*repository.DashboardTotals, error) {
	return f.totals, nil
}

func (f *fakeReportStore) Recent(context.Context, int, int) ([]*model.Entry, error) {
	return f.recent, nil
}

func (f *fakeReportStore) ByKind(context.Context, int, model.Kind, int, int) ([]*model.Entry, error) {
	return nil, nil
}

func (f *fakeReportStore) ThirdParties(context.Context, int, int, int) ([]*model.Entry, error) {
	return f.thirdParties, nil
}

func (f *fakeReportStore) CardOrder(context.Context, int) (map[string]int, error) {
	return f.cardOrder, nil
}

func thirdPartyEntry(name string, kind model.Kind, status model.Status, amount float64) *model.Entry {
	return &model.Entry{
		Description:    "item",
		Amount:         amount,
		Kind:           kind,
		Status:         status,
		ThirdPartyName: &name,
		DueDate:        time.Date(2025, 5, 10, 0, 0, 0, 0, time.UTC),
	}
}

func TestThirdPartyCards_GroupsAndTotals(t *testing.T) {
	store := &fakeReportStore{
		thirdParties: []*model.Entry{
			thirdPartyEntry("Maria", model.KindCard, model.StatusPending, 0.1),
			thirdPartyEntry("Maria", model.KindCard, model.StatusPending, 0.2),
			thirdPartyEntry("Maria", model.KindRecurring, model.StatusPending, 50),
			thirdPartyEntry("Maria", model.KindCard, model.StatusPaid, 99),
			thirdPartyEntry("Ana", model.KindCard, model.StatusPaid, 30),
		},
	}

	cards, err := NewReport(store).ThirdPartyCards(context.Background(), 1, 5, 2025)
	require.NoError(t, err)
	require.Len(t, cards, 2)

	// no saved order: alphabetical
	require.Equal(t, "Ana", cards[0].Name)
	require.Equal(t, "Maria", cards[1].Name)

	ana := cards[0]
	require.True(t, ana.AllPaid)
	require.Zero(t, ana.PendingTotal)
	require.Len(t, ana.CardItems, 1)

	maria := cards[1]
	require.False(t, maria.AllPaid)
	require.Len(t, maria.CardItems, 3)
	require.Len(t, maria.FixedItems, 1)
	// 0.1 + 0.2 summed as decimals, not floats
	require.Equal(t, 0.3, maria.CardTotal)
	require.Equal(t, 50.0, maria.FixedTotal)
	require.Equal(t, 50.3, maria.PendingTotal)
}

func TestThirdPartyCards_SavedOrderWins(t *testing.T) {
	store := &fakeReportStore{
		thirdParties: []*model.Entry{
			thirdPartyEntry("Ana", model.KindCard, model.StatusPending, 10),
			thirdPartyEntry("Zeca", model.KindCard, model.StatusPending, 10),
			thirdPartyEntry("Maria", model.KindCard, model.StatusPending, 10),
		},
		cardOrder: map[string]int{"Zeca": 0, "Maria": 1},
	}

	cards, err := NewReport(store).ThirdPartyCards(context.Background(), 1, 5, 2025)
	require.NoError(t, err)
	require.Equal(t, "Zeca", cards[0].Name)
	require.Equal(t, "Maria", cards[1].Name)
	require.Equal(t, "Ana", cards[2].Name, "names without a saved position go last")
}

func TestSummary(t *testing.T) {
	store := &fakeReportStore{
		totals: &repository.DashboardTotals{TotalIncome: 5000, TotalBills: 3200, Unpaid: 800, Projected: 1800},
		recent: []*model.Entry{{Description: "Internet"}},
	}

	summary, err := NewReport(store).Summary(context.Background(), 1, 5, 2025)
	require.NoError(t, err)
	require.Equal(t, 5000.0, summary.Totals.TotalIncome)
	require.Len(t, summary.Recent, 1)
}
