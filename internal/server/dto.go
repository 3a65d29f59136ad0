package server

import (
	"net/url"
	"strconv"
	"strings"
	"time"
)

// entryRequest is the create/edit payload. Amount and installments arrive as
// the user typed them and go through the same parsers the bot uses.
type entryRequest struct {
	UserID          int    `json:"usuario_id" validate:"required,gt=0"`
	Description     string `json:"descricao" validate:"required"`
	Amount          string `json:"valor" validate:"required"`
	TransactionKind string `json:"tipo_transacao"`
	SubKind         string `json:"sub_tipo" validate:"required"`
	Installments    string `json:"parcelas"`
	ThirdParty      string `json:"terceiro"`
	DueDate         string `json:"data_vencimento"` // optional, 2006-01-02
}

type statusRequest struct {
	UserID int    `json:"usuario_id" validate:"required,gt=0"`
	Status string `json:"status" validate:"required,oneof=PENDENTE PAGO"`
}

type personStatusRequest struct {
	UserID int    `json:"usuario_id" validate:"required,gt=0"`
	Status string `json:"status" validate:"required,oneof=PENDENTE PAGO"`
	Month  int    `json:"month" validate:"required,min=1,max=12"`
	Year   int    `json:"year" validate:"required"`
}

type reorderRequest struct {
	UserID int     `json:"usuario_id" validate:"required,gt=0"`
	IDs    []int64 `json:"itens" validate:"required,min=1"`
}

type cardOrderRequest struct {
	UserID int      `json:"usuario_id" validate:"required,gt=0"`
	Names  []string `json:"nomes" validate:"required"`
}

type copyMonthRequest struct {
	UserID int `json:"usuario_id" validate:"required,gt=0"`
	Month  int `json:"month" validate:"required,min=1,max=12"`
	Year   int `json:"year" validate:"required"`
}

// monthParams extracts usuario_id, month and year from the query string,
// defaulting the period to the current month.
type monthParams struct {
	UserID int
	Month  int
	Year   int
}

func parseMonthParams(query url.Values) monthParams {
	now := time.Now()
	p := monthParams{Month: int(now.Month()), Year: now.Year()}

	if v := strings.TrimSpace(query.Get("usuario_id")); v != "" {
		if id, err := strconv.Atoi(v); err == nil {
			p.UserID = id
		}
	}
	if v := strings.TrimSpace(query.Get("month")); v != "" {
		if m, err := strconv.Atoi(v); err == nil {
			p.Month = m
		}
	}
	if v := strings.TrimSpace(query.Get("year")); v != "" {
		if y, err := strconv.Atoi(v); err == nil {
			p.Year = y
		}
	}
	return p
}

func parseDueDate(s string) time.Time {
	if t, err := time.Parse("2006-01-02", strings.TrimSpace(s)); err == nil {
		return t
	}
	return time.Time{}
}
