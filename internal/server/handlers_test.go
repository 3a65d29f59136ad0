package server

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dodopay/contas/internal/model"
	"github.com/dodopay/contas/internal/parse"
	"github.com/dodopay/contas/internal/service"
)

type fakeEntries struct {
	createErr error
	created   []service.FormInput
	statuses  []model.Status
	reordered [][]int64
	deleted   []int64
}

func (f *fakeEntries) CreateFromForm(_ context.Context, _ int, in service.FormInput) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, in)
	return nil
}

func (f *fakeEntries) UpdateFromForm(_ context.Context, _ int, _ int64, in service.FormInput) error {
	if f.createErr != nil {
		return f.createErr
	}
	return nil
}

func (f *fakeEntries) SetStatus(_ context.Context, _ int, _ int64, status model.Status) error {
	f.statuses = append(f.statuses, status)
	return nil
}

func (f *fakeEntries) SetStatusByPerson(context.Context, int, string, model.Status, int, int) error {
	return nil
}

func (f *fakeEntries) Delete(_ context.Context, _ int, id int64) error {
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeEntries) DeleteByPerson(context.Context, int, string, int, int) error { return nil }

func (f *fakeEntries) DeleteMonth(context.Context, int, int, int) error { return nil }

func (f *fakeEntries) Reorder(_ context.Context, _ int, ids []int64) error {
	f.reordered = append(f.reordered, ids)
	return nil
}

func (f *fakeEntries) ThirdPartyNames(context.Context, int) ([]string, error) {
	return []string{"Maria"}, nil
}

func (f *fakeEntries) SaveCardOrder(context.Context, int, []string) error { return nil }

type fakeReport struct{}

func (fakeReport) Summary(context.Context, int, int, int) (*service.Summary, error) {
	return &service.Summary{}, nil
}

func (fakeReport) EntriesByKind(context.Context, int, model.Kind, int, int) ([]*model.Entry, error) {
	return []*model.Entry{{Description: "Internet"}}, nil
}

func (fakeReport) ThirdPartyCards(context.Context, int, int, int) ([]*service.PersonCard, error) {
	return nil, nil
}

type fakeRollover struct {
	err    error
	copied [][3]int
}

func (f *fakeRollover) CopyMonth(_ context.Context, userID, month, year int) error {
	if f.err != nil {
		return f.err
	}
	f.copied = append(f.copied, [3]int{userID, month, year})
	return nil
}

func newTestRouter(entries *fakeEntries, rollover *fakeRollover) http.Handler {
	return NewRouter(NewHandler(entries, fakeReport{}, rollover))
}

func doRequest(t *testing.T, handler http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestCreateEntry(t *testing.T) {
	entries := &fakeEntries{}
	router := newTestRouter(entries, &fakeRollover{})

	rec := doRequest(t, router, http.MethodPost, "/api/lancamentos",
		`{"usuario_id":1,"descricao":"Tênis","valor":"R$ 500,00","tipo_transacao":"CONTA","sub_tipo":"Parcelada","parcelas":"10","terceiro":"Maria"}`)

	require.Equal(t, http.StatusCreated, rec.Code)
	require.Len(t, entries.created, 1)
	require.Equal(t, "R$ 500,00", entries.created[0].AmountRaw)
}

func TestCreateEntry_ValidationErrorIsVerbatim(t *testing.T) {
	entries := &fakeEntries{createErr: parse.ErrInvalidAmount}
	router := newTestRouter(entries, &fakeRollover{})

	rec := doRequest(t, router, http.MethodPost, "/api/lancamentos",
		`{"usuario_id":1,"descricao":"Luz","valor":"abc","sub_tipo":"Fixa"}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "Valor inválido")
}

func TestCreateEntry_StorageErrorIsGeneric(t *testing.T) {
	entries := &fakeEntries{createErr: errors.New("pq: connection refused")}
	router := newTestRouter(entries, &fakeRollover{})

	rec := doRequest(t, router, http.MethodPost, "/api/lancamentos",
		`{"usuario_id":1,"descricao":"Luz","valor":"100","sub_tipo":"Fixa"}`)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Contains(t, rec.Body.String(), "erro interno")
	require.NotContains(t, rec.Body.String(), "connection refused")
}

func TestCreateEntry_MissingFields(t *testing.T) {
	router := newTestRouter(&fakeEntries{}, &fakeRollover{})

	rec := doRequest(t, router, http.MethodPost, "/api/lancamentos", `{"descricao":"Luz"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateStatus(t *testing.T) {
	entries := &fakeEntries{}
	router := newTestRouter(entries, &fakeRollover{})

	rec := doRequest(t, router, http.MethodPatch, "/api/lancamentos/7/status",
		`{"usuario_id":1,"status":"PAGO"}`)

	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, []model.Status{model.StatusPaid}, entries.statuses)
}

func TestUpdateStatus_RejectsUnknownStatus(t *testing.T) {
	router := newTestRouter(&fakeEntries{}, &fakeRollover{})

	rec := doRequest(t, router, http.MethodPatch, "/api/lancamentos/7/status",
		`{"usuario_id":1,"status":"QUITADO"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReorder(t *testing.T) {
	entries := &fakeEntries{}
	router := newTestRouter(entries, &fakeRollover{})

	rec := doRequest(t, router, http.MethodPost, "/api/lancamentos/reordenar",
		`{"usuario_id":1,"itens":[3,1,2]}`)

	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, [][]int64{{3, 1, 2}}, entries.reordered)
}

func TestCopyMonth(t *testing.T) {
	rollover := &fakeRollover{}
	router := newTestRouter(&fakeEntries{}, rollover)

	rec := doRequest(t, router, http.MethodPost, "/api/meses/copiar",
		`{"usuario_id":1,"month":12,"year":2025}`)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, [][3]int{{1, 12, 2025}}, rollover.copied)
}

func TestCopyMonth_FailureIsGeneric(t *testing.T) {
	rollover := &fakeRollover{err: errors.New("tx aborted")}
	router := newTestRouter(&fakeEntries{}, rollover)

	rec := doRequest(t, router, http.MethodPost, "/api/meses/copiar",
		`{"usuario_id":1,"month":4,"year":2025}`)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Contains(t, rec.Body.String(), "erro interno")
}

func TestCopyMonth_RejectsBadMonth(t *testing.T) {
	rollover := &fakeRollover{}
	router := newTestRouter(&fakeEntries{}, rollover)

	rec := doRequest(t, router, http.MethodPost, "/api/meses/copiar",
		`{"usuario_id":1,"month":13,"year":2025}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Empty(t, rollover.copied)
}

func TestListByKind_RejectsUnknownKind(t *testing.T) {
	router := newTestRouter(&fakeEntries{}, &fakeRollover{})

	rec := doRequest(t, router, http.MethodGet, "/api/lancamentos?usuario_id=1&tipo=OUTRO", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListByKind(t *testing.T) {
	router := newTestRouter(&fakeEntries{}, &fakeRollover{})

	rec := doRequest(t, router, http.MethodGet, "/api/lancamentos?usuario_id=1&tipo=FIXA&month=5&year=2025", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "Internet")
}
