package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/dodopay/contas/internal/model"
)

// Reusable SQL fragment: rows without a third party belong to the owner.
const noThirdParty = "(NomeTerceiro IS NULL OR NomeTerceiro = '')"

const entryColumns = "Id, UsuarioId, Descricao, Valor::float8, Tipo, Categoria, Status, DataVencimento, ParcelaAtual, TotalParcelas, NomeTerceiro, Ordem, DataCriacao"

// Entries runs every ledger query. The (month, year) bucket of a row is
// always derived from DataVencimento, never stored on its own.
type Entries struct {
	pool *pgxpool.Pool
}

func NewEntries(pool *pgxpool.Pool) *Entries {
	return &Entries{pool: pool}
}

// Add inserts a parser-validated draft. Ordem is assigned as the next slot
// for the user so new entries land at the bottom of their list.
func (r *Entries) Add(ctx context.Context, userID int, d *model.Draft) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO Lancamentos
			(UsuarioId, Descricao, Valor, Tipo, Categoria, Status, DataVencimento,
			 ParcelaAtual, TotalParcelas, NomeTerceiro, Ordem)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
			(SELECT COALESCE(MAX(Ordem), 0) + 1 FROM Lancamentos WHERE UsuarioId = $1))
	`, userID, d.Description, d.Amount, d.Kind, d.Category, d.Status, d.DueDate,
		d.InstallmentCurrent, d.InstallmentTotal, d.ThirdPartyName)
	if err != nil {
		return fmt.Errorf("insert entry: %w", err)
	}
	return nil
}

// Update rewrites the editable fields of one entry. Status and due date are
// changed through their own operations.
func (r *Entries) Update(ctx context.Context, userID int, id int64, d *model.Draft) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE Lancamentos
		SET Descricao = $1, Valor = $2, Tipo = $3, Categoria = $4,
			ParcelaAtual = $5, TotalParcelas = $6, NomeTerceiro = $7
		WHERE Id = $8 AND UsuarioId = $9
	`, d.Description, d.Amount, d.Kind, d.Category,
		d.InstallmentCurrent, d.InstallmentTotal, d.ThirdPartyName, id, userID)
	if err != nil {
		return fmt.Errorf("update entry %d: %w", id, err)
	}
	return nil
}

func (r *Entries) UpdateStatus(ctx context.Context, userID int, id int64, status model.Status) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE Lancamentos SET Status = $1 WHERE Id = $2 AND UsuarioId = $3`,
		status, id, userID)
	if err != nil {
		return fmt.Errorf("update status of entry %d: %w", id, err)
	}
	return nil
}

// UpdateStatusByPerson toggles every card entry of one person's card in the
// given month. When person is the owner's own name the owner rows (no third
// party) are targeted.
func (r *Entries) UpdateStatusByPerson(ctx context.Context, userID int, person string, status model.Status, month, year int, ownerName string) error {
	query := `
		UPDATE Lancamentos SET Status = $1
		WHERE UsuarioId = $2
		  AND Tipo = '` + string(model.KindCard) + `'
		  AND EXTRACT(MONTH FROM DataVencimento) = $3
		  AND EXTRACT(YEAR FROM DataVencimento) = $4`
	args := []any{status, userID, month, year}
	if person == ownerName {
		query += " AND " + noThirdParty
	} else {
		query += " AND NomeTerceiro = $5"
		args = append(args, person)
	}
	if _, err := r.pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("update status for person %q: %w", person, err)
	}
	return nil
}

func (r *Entries) Delete(ctx context.Context, userID int, id int64) error {
	_, err := r.pool.Exec(ctx,
		`DELETE FROM Lancamentos WHERE Id = $1 AND UsuarioId = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete entry %d: %w", id, err)
	}
	return nil
}

// DeleteByPerson removes every card entry grouped under one person's card in
// the given month.
func (r *Entries) DeleteByPerson(ctx context.Context, userID int, person string, month, year int, ownerName string) error {
	query := `
		DELETE FROM Lancamentos
		WHERE UsuarioId = $1
		  AND Tipo = '` + string(model.KindCard) + `'
		  AND EXTRACT(MONTH FROM DataVencimento) = $2
		  AND EXTRACT(YEAR FROM DataVencimento) = $3`
	args := []any{userID, month, year}
	if person == ownerName {
		query += " AND " + noThirdParty
	} else {
		query += " AND NomeTerceiro = $4"
		args = append(args, person)
	}
	if _, err := r.pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("delete entries of person %q: %w", person, err)
	}
	return nil
}

// DeleteMonth wipes the whole (month, year) bucket of a user.
func (r *Entries) DeleteMonth(ctx context.Context, userID, month, year int) error {
	_, err := r.pool.Exec(ctx, `
		DELETE FROM Lancamentos
		WHERE UsuarioId = $1
		  AND EXTRACT(MONTH FROM DataVencimento) = $2
		  AND EXTRACT(YEAR FROM DataVencimento) = $3
	`, userID, month, year)
	if err != nil {
		return fmt.Errorf("delete month %02d/%d: %w", month, year, err)
	}
	return nil
}

// Recent returns the latest entries by creation time. Rollover copies carry
// the creation time of their series origin, so a series shows up once and in
// its original position; the CTE drops same-second duplicates by description.
func (r *Entries) Recent(ctx context.Context, userID, limit int) ([]*model.Entry, error) {
	rows, err := r.pool.Query(ctx, `
		WITH Unicos AS (
			SELECT DISTINCT ON (date_trunc('second', DataCriacao), Descricao) `+entryColumns+`
			FROM Lancamentos
			WHERE UsuarioId = $1
			ORDER BY date_trunc('second', DataCriacao) DESC NULLS LAST, Descricao ASC, Id ASC
		)
		SELECT * FROM Unicos
		ORDER BY DataCriacao DESC NULLS LAST, Id DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("select recent entries: %w", err)
	}
	return scanEntries(rows)
}

// ByKind lists the owner's entries of one kind within a month bucket, in the
// user-defined display order.
func (r *Entries) ByKind(ctx context.Context, userID int, kind model.Kind, month, year int) ([]*model.Entry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+entryColumns+` FROM Lancamentos
		WHERE UsuarioId = $1
		  AND Tipo = $2
		  AND `+noThirdParty+`
		  AND EXTRACT(MONTH FROM DataVencimento) = $3
		  AND EXTRACT(YEAR FROM DataVencimento) = $4
		ORDER BY Ordem ASC
	`, userID, kind, month, year)
	if err != nil {
		return nil, fmt.Errorf("select %s entries: %w", kind, err)
	}
	return scanEntries(rows)
}

// ThirdParties lists every entry billed to a named third party within a
// month bucket, grouped for the dashboard cards.
func (r *Entries) ThirdParties(ctx context.Context, userID, month, year int) ([]*model.Entry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+entryColumns+` FROM Lancamentos
		WHERE UsuarioId = $1
		  AND (NomeTerceiro IS NOT NULL AND NomeTerceiro != '')
		  AND EXTRACT(MONTH FROM DataVencimento) = $2
		  AND EXTRACT(YEAR FROM DataVencimento) = $3
		ORDER BY NomeTerceiro, Tipo, Ordem
	`, userID, month, year)
	if err != nil {
		return nil, fmt.Errorf("select third party entries: %w", err)
	}
	return scanEntries(rows)
}

// DistinctThirdParties returns the names ever used, for form autocomplete.
func (r *Entries) DistinctThirdParties(ctx context.Context, userID int) ([]string, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT DISTINCT NomeTerceiro FROM Lancamentos
		WHERE UsuarioId = $1 AND NomeTerceiro IS NOT NULL AND NomeTerceiro != ''
		ORDER BY NomeTerceiro
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("select third party names: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan third party name: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// Reorder persists a drag-and-drop ordering: the slice index becomes the
// entry's Ordem. All updates happen in one transaction.
func (r *Entries) Reorder(ctx context.Context, userID int, ids []int64) error {
	return r.inTx(ctx, func(tx pgx.Tx) error {
		for i, id := range ids {
			if _, err := tx.Exec(ctx,
				`UPDATE Lancamentos SET Ordem = $1 WHERE Id = $2 AND UsuarioId = $3`,
				i, id, userID); err != nil {
				return fmt.Errorf("reorder entry %d: %w", id, err)
			}
		}
		return nil
	})
}

// CardOrder returns the saved third-party card ordering as name → position.
func (r *Entries) CardOrder(ctx context.Context, userID int) (map[string]int, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT Nome, Ordem FROM OrdemCards WHERE UsuarioId = $1 ORDER BY Ordem ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("select card order: %w", err)
	}
	defer rows.Close()

	order := make(map[string]int)
	for rows.Next() {
		var name string
		var pos int
		if err := rows.Scan(&name, &pos); err != nil {
			return nil, fmt.Errorf("scan card order: %w", err)
		}
		order[name] = pos
	}
	return order, rows.Err()
}

// SaveCardOrder replaces the user's card ordering with the given name list.
func (r *Entries) SaveCardOrder(ctx context.Context, userID int, names []string) error {
	return r.inTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM OrdemCards WHERE UsuarioId = $1`, userID); err != nil {
			return fmt.Errorf("clear card order: %w", err)
		}
		for i, name := range names {
			if _, err := tx.Exec(ctx,
				`INSERT INTO OrdemCards (Nome, Ordem, UsuarioId) VALUES ($1, $2, $3)`,
				name, i, userID); err != nil {
				return fmt.Errorf("save card order for %q: %w", name, err)
			}
		}
		return nil
	})
}

// SelectForRollover returns the rows eligible to be carried into the next
// month: recurring bills and income by kind, plus any entry mid-installment
// regardless of kind.
func (r *Entries) SelectForRollover(ctx context.Context, userID, month, year int) ([]*model.Entry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+entryColumns+` FROM Lancamentos
		WHERE UsuarioId = $1
		  AND EXTRACT(MONTH FROM DataVencimento) = $2
		  AND EXTRACT(YEAR FROM DataVencimento) = $3
		  AND (Tipo IN ('`+string(model.KindRecurring)+`', '`+string(model.KindIncome)+`')
			OR (ParcelaAtual IS NOT NULL AND TotalParcelas IS NOT NULL))
	`, userID, month, year)
	if err != nil {
		return nil, fmt.Errorf("select entries for rollover: %w", err)
	}
	return scanEntries(rows)
}

// DashboardTotals aggregates the month's headline numbers: income, owner
// bills, what is still unpaid and the projected balance.
type DashboardTotals struct {
	TotalIncome float64
	TotalBills  float64
	Unpaid      float64
	Projected   float64
}

func (r *Entries) DashboardTotals(ctx context.Context, userID, month, year int) (*DashboardTotals, error) {
	bills := "'" + string(model.KindRecurring) + "', '" + string(model.KindCard) + "'"
	income := "'" + string(model.KindIncome) + "'"
	pending := "'" + string(model.StatusPending) + "'"

	var t DashboardTotals
	err := r.pool.QueryRow(ctx, `
		SELECT
			COALESCE(SUM(CASE WHEN Tipo = `+income+` THEN Valor ELSE 0 END), 0)::float AS totalrendas,
			COALESCE(SUM(CASE WHEN Tipo IN (`+bills+`) AND `+noThirdParty+` THEN Valor ELSE 0 END), 0)::float AS totalcontas,
			COALESCE(SUM(CASE WHEN Tipo IN (`+bills+`) AND `+noThirdParty+` AND Status = `+pending+` THEN Valor ELSE 0 END), 0)::float AS faltapagar,
			COALESCE(SUM(CASE WHEN Tipo = `+income+` THEN Valor ELSE 0 END) -
				SUM(CASE WHEN Tipo IN (`+bills+`) AND `+noThirdParty+` THEN Valor ELSE 0 END), 0)::float AS saldoprevisto
		FROM Lancamentos
		WHERE UsuarioId = $1
		  AND EXTRACT(MONTH FROM DataVencimento) = $2
		  AND EXTRACT(YEAR FROM DataVencimento) = $3
	`, userID, month, year).Scan(&t.TotalIncome, &t.TotalBills, &t.Unpaid, &t.Projected)
	if err != nil {
		return nil, fmt.Errorf("select dashboard totals: %w", err)
	}
	return &t, nil
}

// RolloverTx is the slice of a transaction the rollover engine needs: it can
// only insert copies.
type RolloverTx interface {
	InsertCopy(ctx context.Context, e *model.Entry) error
}

// WithTransaction checks a connection out of the pool, opens a transaction
// and runs fn inside it. The transaction commits when fn returns nil and
// rolls back otherwise; the connection goes back to the pool on every path.
func (r *Entries) WithTransaction(ctx context.Context, fn func(RolloverTx) error) error {
	return r.inTx(ctx, func(tx pgx.Tx) error {
		return fn(&rolloverTx{tx: tx})
	})
}

func (r *Entries) inTx(ctx context.Context, fn func(pgx.Tx) error) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tx, err := conn.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			logrus.Errorf("rollback failed: %v", rbErr)
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

type rolloverTx struct {
	tx pgx.Tx
}

// InsertCopy writes a rollover copy with its Ordem and DataCriacao taken from
// the source row rather than assigned fresh.
func (t *rolloverTx) InsertCopy(ctx context.Context, e *model.Entry) error {
	_, err := t.tx.Exec(ctx, `
		INSERT INTO Lancamentos
			(UsuarioId, Descricao, Valor, Tipo, Categoria, Status, DataVencimento,
			 ParcelaAtual, TotalParcelas, NomeTerceiro, Ordem, DataCriacao)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`, e.UserID, e.Description, e.Amount, e.Kind, e.Category, e.Status, e.DueDate,
		e.InstallmentCurrent, e.InstallmentTotal, e.ThirdPartyName, e.Order, e.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert rollover copy: %w", err)
	}
	return nil
}

func scanEntries(rows pgx.Rows) ([]*model.Entry, error) {
	defer rows.Close()

	var entries []*model.Entry
	for rows.Next() {
		e := &model.Entry{}
		if err := rows.Scan(&e.ID, &e.UserID, &e.Description, &e.Amount, &e.Kind,
			&e.Category, &e.Status, &e.DueDate, &e.InstallmentCurrent,
			&e.InstallmentTotal, &e.ThirdPartyName, &e.Order, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
