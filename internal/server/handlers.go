// Package server exposes the dashboard operations as a JSON API. Rendering,
// sessions and authentication live in the reverse proxy / front end, not
// here.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/dodopay/contas/internal/model"
	"github.com/dodopay/contas/internal/parse"
	"github.com/dodopay/contas/internal/service"
)

type entriesService interface {
	CreateFromForm(ctx context.Context, userID int, in service.FormInput) error
	UpdateFromForm(ctx context.Context, userID int, id int64, in service.FormInput) error
	SetStatus(ctx context.Context, userID int, id int64, status model.Status) error
	SetStatusByPerson(ctx context.Context, userID int, person string, status model.Status, month, year int) error
	Delete(ctx context.Context, userID int, id int64) error
	DeleteByPerson(ctx context.Context, userID int, person string, month, year int) error
	DeleteMonth(ctx context.Context, userID, month, year int) error
	Reorder(ctx context.Context, userID int, ids []int64) error
	ThirdPartyNames(ctx context.Context, userID int) ([]string, error)
	SaveCardOrder(ctx context.Context, userID int, names []string) error
}

type reportService interface {
	Summary(ctx context.Context, userID, month, year int) (*service.Summary, error)
	EntriesByKind(ctx context.Context, userID int, kind model.Kind, month, year int) ([]*model.Entry, error)
	ThirdPartyCards(ctx context.Context, userID, month, year int) ([]*service.PersonCard, error)
}

type rolloverService interface {
	CopyMonth(ctx context.Context, userID, month, year int) error
}

// Handler holds the services behind the API.
type Handler struct {
	entries  entriesService
	report   reportService
	rollover rolloverService
	validate *validator.Validate
}

func NewHandler(entries entriesService, report reportService, rollover rolloverService) *Handler {
	return &Handler{
		entries:  entries,
		report:   report,
		rollover: rollover,
		validate: validator.New(),
	}
}

// --- dashboard reads ---

func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	p := parseMonthParams(r.URL.Query())
	summary, err := h.report.Summary(r.Context(), p.UserID, p.Month, p.Year)
	if err != nil {
		h.serverError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, summary)
}

func (h *Handler) ListByKind(w http.ResponseWriter, r *http.Request) {
	p := parseMonthParams(r.URL.Query())
	kind := model.Kind(r.URL.Query().Get("tipo"))
	switch kind {
	case model.KindRecurring, model.KindCard, model.KindIncome:
	default:
		respondError(w, http.StatusBadRequest, "tipo inválido")
		return
	}

	entries, err := h.report.EntriesByKind(r.Context(), p.UserID, kind, p.Month, p.Year)
	if err != nil {
		h.serverError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, entries)
}

func (h *Handler) ThirdPartyCards(w http.ResponseWriter, r *http.Request) {
	p := parseMonthParams(r.URL.Query())
	cards, err := h.report.ThirdPartyCards(r.Context(), p.UserID, p.Month, p.Year)
	if err != nil {
		h.serverError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, cards)
}

func (h *Handler) ThirdPartyNames(w http.ResponseWriter, r *http.Request) {
	p := parseMonthParams(r.URL.Query())
	names, err := h.entries.ThirdPartyNames(r.Context(), p.UserID)
	if err != nil {
		h.serverError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, names)
}

// --- entry writes ---

func (h *Handler) CreateEntry(w http.ResponseWriter, r *http.Request) {
	var req entryRequest
	if !h.decode(w, r, &req) {
		return
	}

	err := h.entries.CreateFromForm(r.Context(), req.UserID, formInput(req))
	if err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func (h *Handler) UpdateEntry(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req entryRequest
	if !h.decode(w, r, &req) {
		return
	}

	if err := h.entries.UpdateFromForm(r.Context(), req.UserID, id, formInput(req)); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req statusRequest
	if !h.decode(w, r, &req) {
		return
	}

	if err := h.entries.SetStatus(r.Context(), req.UserID, id, model.Status(req.Status)); err != nil {
		h.serverError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	p := parseMonthParams(r.URL.Query())

	if err := h.entries.Delete(r.Context(), p.UserID, id); err != nil {
		h.serverError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Reorder(w http.ResponseWriter, r *http.Request) {
	var req reorderRequest
	if !h.decode(w, r, &req) {
		return
	}

	if err := h.entries.Reorder(r.Context(), req.UserID, req.IDs); err != nil {
		h.serverError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- third party cards ---

func (h *Handler) SetStatusByPerson(w http.ResponseWriter, r *http.Request) {
	person := chi.URLParam(r, "nome")
	var req personStatusRequest
	if !h.decode(w, r, &req) {
		return
	}

	err := h.entries.SetStatusByPerson(r.Context(), req.UserID, person, model.Status(req.Status), req.Month, req.Year)
	if err != nil {
		h.serverError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) DeleteByPerson(w http.ResponseWriter, r *http.Request) {
	person := chi.URLParam(r, "nome")
	p := parseMonthParams(r.URL.Query())

	if err := h.entries.DeleteByPerson(r.Context(), p.UserID, person, p.Month, p.Year); err != nil {
		h.serverError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) SaveCardOrder(w http.ResponseWriter, r *http.Request) {
	var req cardOrderRequest
	if !h.decode(w, r, &req) {
		return
	}

	if err := h.entries.SaveCardOrder(r.Context(), req.UserID, req.Names); err != nil {
		h.serverError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- month operations ---

func (h *Handler) DeleteMonth(w http.ResponseWriter, r *http.Request) {
	month, year, ok := pathPeriod(w, r)
	if !ok {
		return
	}
	p := parseMonthParams(r.URL.Query())

	if err := h.entries.DeleteMonth(r.Context(), p.UserID, month, year); err != nil {
		h.serverError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CopyMonth carries the viewed month's recurring bills, income and open
// installments into the next month. The front end disables the button while
// a copy is in flight; concurrent copies for the same period double-insert.
func (h *Handler) CopyMonth(w http.ResponseWriter, r *http.Request) {
	var req copyMonthRequest
	if !h.decode(w, r, &req) {
		return
	}

	if err := h.rollover.CopyMonth(r.Context(), req.UserID, req.Month, req.Year); err != nil {
		h.serverError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// --- helpers ---

func formInput(req entryRequest) service.FormInput {
	return service.FormInput{
		Description:     req.Description,
		AmountRaw:       req.Amount,
		TransactionKind: req.TransactionKind,
		SubKind:         req.SubKind,
		InstallmentsRaw: req.Installments,
		ThirdParty:      req.ThirdParty,
		DueDate:         parseDueDate(req.DueDate),
	}
}

// decode unmarshals and validates the request body, answering 400 itself
// when the payload is unusable.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		respondError(w, http.StatusBadRequest, "corpo da requisição inválido")
		return false
	}
	if err := h.validate.Struct(v); err != nil {
		respondError(w, http.StatusBadRequest, "campos obrigatórios ausentes ou inválidos")
		return false
	}
	return true
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "id inválido")
		return 0, false
	}
	return id, true
}

func pathPeriod(w http.ResponseWriter, r *http.Request) (month, year int, ok bool) {
	month, err := strconv.Atoi(chi.URLParam(r, "month"))
	if err != nil || month < 1 || month > 12 {
		respondError(w, http.StatusBadRequest, "mês inválido")
		return 0, 0, false
	}
	year, err = strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "ano inválido")
		return 0, 0, false
	}
	return month, year, true
}

// validationErrors are surfaced verbatim to the user; anything else is a
// storage failure that only the logs get to see in full.
var validationErrors = []error{
	parse.ErrEmptyMessage,
	parse.ErrInvalidUser,
	parse.ErrMissingDescription,
	parse.ErrInvalidAmount,
	parse.ErrMissingKind,
	parse.ErrInvalidInstallments,
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	for _, v := range validationErrors {
		if errors.Is(err, v) {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	h.serverError(w, err)
}

func (h *Handler) serverError(w http.ResponseWriter, err error) {
	logrus.Errorf("request failed: %v", err)
	respondError(w, http.StatusInternalServerError, "erro interno")
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logrus.Errorf("encode response: %v", err)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
