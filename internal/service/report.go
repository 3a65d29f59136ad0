package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/dodopay/contas/internal/model"
	"github.com/dodopay/contas/internal/repository"
)

const recentLimit = 20

// Cards without a saved position sort after every ordered card.
const unorderedCardPosition = 9999

// ReportStore is the repository slice the report service reads from.
type ReportStore interface {
	DashboardTotals(ctx context.Context, userID, month, year int) (*repository.DashboardTotals, error)
	Recent(ctx context.Context, userID, limit int) ([]*model.Entry, error)
	ByKind(ctx context.Context, userID int, kind model.Kind, month, year int) ([]*model.Entry, error)
	ThirdParties(ctx context.Context, userID, month, year int) ([]*model.Entry, error)
	CardOrder(ctx context.Context, userID int) (map[string]int, error)
}

// Summary is the dashboard headline for one month.
type Summary struct {
	Totals *repository.DashboardTotals
	Recent []*model.Entry
}

// PersonCard groups one third party's entries for a dashboard card. Totals
// cover pending entries only.
type PersonCard struct {
	Name         string
	CardItems    []*model.Entry
	FixedItems   []*model.Entry
	CardTotal    float64
	FixedTotal   float64
	PendingTotal float64
	AllPaid      bool
}

// Report builds the read models the dashboard renders.
type Report struct {
	store ReportStore
}

func NewReport(store ReportStore) *Report {
	return &Report{store: store}
}

// Summary returns the month's totals and the most recent entries.
func (r *Report) Summary(ctx context.Context, userID, month, year int) (*Summary, error) {
	totals, err := r.store.DashboardTotals(ctx, userID, month, year)
	if err != nil {
		return nil, fmt.Errorf("dashboard totals: %w", err)
	}
	recent, err := r.store.Recent(ctx, userID, recentLimit)
	if err != nil {
		return nil, fmt.Errorf("recent entries: %w", err)
	}
	return &Summary{Totals: totals, Recent: recent}, nil
}

// EntriesByKind lists the owner's entries of one kind for the month.
func (r *Report) EntriesByKind(ctx context.Context, userID int, kind model.Kind, month, year int) ([]*model.Entry, error) {
	return r.store.ByKind(ctx, userID, kind, month, year)
}

// ThirdPartyCards groups the month's third-party entries into one card per
// person, ordered by the user's saved card order with unknown names last.
// Amounts are summed as decimals so card totals never pick up float drift.
func (r *Report) ThirdPartyCards(ctx context.Context, userID, month, year int) ([]*PersonCard, error) {
	entries, err := r.store.ThirdParties(ctx, userID, month, year)
	if err != nil {
		return nil, fmt.Errorf("third party entries: %w", err)
	}

	cards := make(map[string]*PersonCard)
	pendingCard := make(map[string]decimal.Decimal)
	pendingFixed := make(map[string]decimal.Decimal)
	unpaid := make(map[string]int)

	for _, e := range entries {
		name := *e.ThirdPartyName
		card, ok := cards[name]
		if !ok {
			card = &PersonCard{Name: name}
			cards[name] = card
		}

		if e.Kind == model.KindRecurring {
			card.FixedItems = append(card.FixedItems, e)
		} else {
			card.CardItems = append(card.CardItems, e)
		}

		if e.Status == model.StatusPending {
			unpaid[name]++
			amount := decimal.NewFromFloat(e.Amount)
			if e.Kind == model.KindRecurring {
				pendingFixed[name] = pendingFixed[name].Add(amount)
			} else {
				pendingCard[name] = pendingCard[name].Add(amount)
			}
		}
	}

	order, err := r.store.CardOrder(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("card order: %w", err)
	}

	result := make([]*PersonCard, 0, len(cards))
	for name, card := range cards {
		card.CardTotal = pendingCard[name].InexactFloat64()
		card.FixedTotal = pendingFixed[name].InexactFloat64()
		card.PendingTotal = pendingCard[name].Add(pendingFixed[name]).InexactFloat64()
		card.AllPaid = unpaid[name] == 0
		result = append(result, card)
	}

	sort.Slice(result, func(i, j int) bool {
		oi, oj := cardPosition(order, result[i].Name), cardPosition(order, result[j].Name)
		if oi != oj {
			return oi < oj
		}
		return result[i].Name < result[j].Name
	})
	return result, nil
}

func cardPosition(order map[string]int, name string) int {
	if pos, ok := order[name]; ok {
		return pos
	}
	return unorderedCardPosition
}
