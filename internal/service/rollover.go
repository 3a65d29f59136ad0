package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/dodopay/contas/internal/model"
	"github.com/dodopay/contas/internal/repository"
)

// Day of month used for copies whose source has no usable due date.
const fallbackDueDay = 10

// RolloverStore is the repository slice the rollover engine needs.
type RolloverStore interface {
	SelectForRollover(ctx context.Context, userID, month, year int) ([]*model.Entry, error)
	WithTransaction(ctx context.Context, fn func(repository.RolloverTx) error) error
}

// Rollover clones a month's recurring bills, income and open installment
// series into the following month.
type Rollover struct {
	store RolloverStore
}

func NewRollover(store RolloverStore) *Rollover {
	return &Rollover{store: store}
}

// CopyMonth copies the eligible entries of (userID, month, year) into the
// next month: installment counters advance, bills reset to unpaid, income
// arrives paid, and every copy keeps the creation time of its series origin.
// The copies are inserted in one transaction; a single failure rolls back the
// whole batch. When the month has nothing eligible no transaction is opened.
//
// Two concurrent invocations for the same period are not serialized and will
// double-insert; the caller keeps the action disabled while one is in flight.
func (r *Rollover) CopyMonth(ctx context.Context, userID, month, year int) error {
	nextMonth, nextYear := nextPeriod(month, year)

	entries, err := r.store.SelectForRollover(ctx, userID, month, year)
	if err != nil {
		return fmt.Errorf("select entries for rollover: %w", err)
	}
	if len(entries) == 0 {
		logrus.Infof("copy month: nothing to copy for user %d in %02d/%d", userID, month, year)
		return nil
	}

	err = r.store.WithTransaction(ctx, func(tx repository.RolloverTx) error {
		for _, e := range entries {
			cp, ok := rolloverCopy(e, nextMonth, nextYear)
			if !ok {
				continue
			}
			if err := tx.InsertCopy(ctx, cp); err != nil {
				return fmt.Errorf("copy entry %d: %w", e.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("copy month %02d/%d for user %d: %w", month, year, userID, err)
	}

	logrus.Infof("copied %02d/%d into %02d/%d for user %d", month, year, nextMonth, nextYear, userID)
	return nil
}

// nextPeriod advances one calendar month, wrapping December into January of
// the next year.
func nextPeriod(month, year int) (int, int) {
	month++
	if month > 12 {
		return 1, year + 1
	}
	return month, year
}

// rolloverCopy builds the next month's copy of e, or reports false when the
// entry is an exhausted installment series that must not be carried forward.
func rolloverCopy(e *model.Entry, month, year int) (*model.Entry, bool) {
	current, total := e.InstallmentCurrent, e.InstallmentTotal
	if e.HasInstallments() {
		if *current >= *total {
			return nil, false
		}
		next := *current + 1
		current = &next
	}

	day := e.DueDate.Day()
	if e.DueDate.IsZero() {
		day = fallbackDueDay
	}
	dueDate := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)

	createdAt := e.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	return &model.Entry{
		UserID:             e.UserID,
		Description:        e.Description,
		Amount:             e.Amount,
		Kind:               e.Kind,
		Category:           e.Category,
		Status:             model.StatusFor(e.Kind),
		DueDate:            dueDate,
		InstallmentCurrent: current,
		InstallmentTotal:   e.InstallmentTotal,
		ThirdPartyName:     e.ThirdPartyName,
		Order:              e.Order,
		CreatedAt:          createdAt,
	}, true
}
