// Package service holds the business operations both ingestion surfaces (web
// API and Telegram bot) share.
package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dodopay/contas/internal/model"
	"github.com/dodopay/contas/internal/parse"
)

// EntriesStore is the repository slice the entries service needs.
type EntriesStore interface {
	Add(ctx context.Context, userID int, d *model.Draft) error
	Update(ctx context.Context, userID int, id int64, d *model.Draft) error
	UpdateStatus(ctx context.Context, userID int, id int64, status model.Status) error
	UpdateStatusByPerson(ctx context.Context, userID int, person string, status model.Status, month, year int, ownerName string) error
	Delete(ctx context.Context, userID int, id int64) error
	DeleteByPerson(ctx context.Context, userID int, person string, month, year int, ownerName string) error
	DeleteMonth(ctx context.Context, userID, month, year int) error
	Reorder(ctx context.Context, userID int, ids []int64) error
	DistinctThirdParties(ctx context.Context, userID int) ([]string, error)
	SaveCardOrder(ctx context.Context, userID int, names []string) error
}

// FormInput is the raw web form payload for creating or editing an entry.
// Amount and installments arrive as the user typed them.
type FormInput struct {
	Description     string
	AmountRaw       string
	TransactionKind string // RENDA or CONTA
	SubKind         string // Fixa, Unica, Parcelada — or the income category
	InstallmentsRaw string
	ThirdParty      string
	DueDate         time.Time
}

// Entries applies the parsing and classification rules and forwards to the
// repository.
type Entries struct {
	store EntriesStore
}

func NewEntries(store EntriesStore) *Entries {
	return &Entries{store: store}
}

// draftFromForm validates the raw form fields into a persistable draft.
// Validation failures come back as user-facing errors.
func draftFromForm(userID int, in FormInput) (*model.Draft, error) {
	if model.UserName(userID) == "" {
		return nil, parse.ErrInvalidUser
	}

	description := strings.TrimSpace(in.Description)
	if description == "" {
		return nil, parse.ErrMissingDescription
	}

	amount := parse.ParseAmount(in.AmountRaw)
	if amount <= 0 {
		return nil, parse.ErrInvalidAmount
	}

	c, err := parse.Classify(in.TransactionKind, in.SubKind, in.InstallmentsRaw)
	if err != nil {
		return nil, err
	}

	dueDate := in.DueDate
	if dueDate.IsZero() {
		dueDate = time.Now()
	}

	var thirdParty *string
	if name := strings.TrimSpace(in.ThirdParty); name != "" {
		thirdParty = &name
	}

	return &model.Draft{
		UserID:             userID,
		Description:        description,
		Amount:             amount,
		Kind:               c.Kind,
		Category:           c.Category,
		Status:             c.Status,
		DueDate:            dueDate,
		InstallmentCurrent: c.InstallmentCurrent,
		InstallmentTotal:   c.InstallmentTotal,
		ThirdPartyName:     thirdParty,
	}, nil
}

// CreateFromForm validates web form input and inserts the resulting entry.
func (s *Entries) CreateFromForm(ctx context.Context, userID int, in FormInput) error {
	draft, err := draftFromForm(userID, in)
	if err != nil {
		return err
	}
	if err := s.store.Add(ctx, userID, draft); err != nil {
		return fmt.Errorf("add entry: %w", err)
	}
	return nil
}

// CreateFromDraft inserts an already-validated draft, the bot ingestion path.
func (s *Entries) CreateFromDraft(ctx context.Context, draft *model.Draft) error {
	if err := s.store.Add(ctx, draft.UserID, draft); err != nil {
		return fmt.Errorf("add entry: %w", err)
	}
	return nil
}

// UpdateFromForm validates web form input and rewrites an existing entry.
func (s *Entries) UpdateFromForm(ctx context.Context, userID int, id int64, in FormInput) error {
	draft, err := draftFromForm(userID, in)
	if err != nil {
		return err
	}
	if err := s.store.Update(ctx, userID, id, draft); err != nil {
		return fmt.Errorf("update entry: %w", err)
	}
	return nil
}

func (s *Entries) SetStatus(ctx context.Context, userID int, id int64, status model.Status) error {
	return s.store.UpdateStatus(ctx, userID, id, status)
}

// SetStatusByPerson toggles a whole third-party card at once.
func (s *Entries) SetStatusByPerson(ctx context.Context, userID int, person string, status model.Status, month, year int) error {
	return s.store.UpdateStatusByPerson(ctx, userID, person, status, month, year, model.UserName(userID))
}

func (s *Entries) Delete(ctx context.Context, userID int, id int64) error {
	return s.store.Delete(ctx, userID, id)
}

func (s *Entries) DeleteByPerson(ctx context.Context, userID int, person string, month, year int) error {
	return s.store.DeleteByPerson(ctx, userID, person, month, year, model.UserName(userID))
}

func (s *Entries) DeleteMonth(ctx context.Context, userID, month, year int) error {
	return s.store.DeleteMonth(ctx, userID, month, year)
}

func (s *Entries) Reorder(ctx context.Context, userID int, ids []int64) error {
	return s.store.Reorder(ctx, userID, ids)
}

func (s *Entries) ThirdPartyNames(ctx context.Context, userID int) ([]string, error) {
	return s.store.DistinctThirdParties(ctx, userID)
}

func (s *Entries) SaveCardOrder(ctx context.Context, userID int, names []string) error {
	return s.store.SaveCardOrder(ctx, userID, names)
}
