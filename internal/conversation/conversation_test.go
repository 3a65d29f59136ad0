package conversation

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNextStep_LinearFlow(t *testing.T) {
	require.Equal(t, StepDescription, NextStep(StepOwner, Fields{}))
	require.Equal(t, StepAmount, NextStep(StepDescription, Fields{}))
	require.Equal(t, StepKind, NextStep(StepAmount, Fields{}))
	require.Equal(t, StepThirdParty, NextStep(StepInstallments, Fields{}))
	require.Equal(t, StepNone, NextStep(StepThirdParty, Fields{}))
}

func TestNextStep_KindBranch(t *testing.T) {
	require.Equal(t, StepInstallments, NextStep(StepKind, Fields{Kind: "parcelada"}))
	require.Equal(t, StepThirdParty, NextStep(StepKind, Fields{Kind: "fixa"}))
	require.Equal(t, StepThirdParty, NextStep(StepKind, Fields{Kind: "unica"}))
	require.Equal(t, StepThirdParty, NextStep(StepKind, Fields{}))
}

func TestNextStep_UnknownStepIsTerminal(t *testing.T) {
	require.Equal(t, StepNone, NextStep(Step("whatever"), Fields{}))
	require.Equal(t, StepNone, NextStep(StepNone, Fields{}))
}

func TestStore_FullSession(t *testing.T) {
	store := NewStore()
	const chat = int64(42)

	store.Start(chat)
	sess, ok := store.Get(chat)
	require.True(t, ok)
	require.Equal(t, StepOwner, sess.Step)

	next, ok := store.Advance(chat, func(f *Fields) { f.UserID = 1 })
	require.True(t, ok)
	require.Equal(t, StepDescription, next)

	next, _ = store.Advance(chat, func(f *Fields) { f.Description = "Tênis" })
	require.Equal(t, StepAmount, next)

	next, _ = store.Advance(chat, func(f *Fields) { f.Amount = 500 })
	require.Equal(t, StepKind, next)

	next, _ = store.Advance(chat, func(f *Fields) { f.Kind = "parcelada" })
	require.Equal(t, StepInstallments, next)

	cur, total := 1, 10
	next, _ = store.Advance(chat, func(f *Fields) {
		f.InstallmentCurrent = &cur
		f.InstallmentTotal = &total
	})
	require.Equal(t, StepThirdParty, next)

	third := "Vitoria"
	next, _ = store.Advance(chat, func(f *Fields) { f.ThirdParty = &third })
	require.Equal(t, StepNone, next)

	fields, ok := store.Finish(chat)
	require.True(t, ok)
	require.Equal(t, 1, fields.UserID)
	require.Equal(t, "Tênis", fields.Description)
	require.Equal(t, 500.0, fields.Amount)
	require.Equal(t, "parcelada", fields.Kind)
	require.Equal(t, 10, *fields.InstallmentTotal)
	require.Equal(t, "Vitoria", *fields.ThirdParty)
}

func TestStore_KindSkipsInstallments(t *testing.T) {
	store := NewStore()
	store.Start(7)
	store.Advance(7, func(f *Fields) { f.UserID = 2 })
	store.Advance(7, func(f *Fields) { f.Description = "Aluguel" })
	store.Advance(7, func(f *Fields) { f.Amount = 1200 })

	next, ok := store.Advance(7, func(f *Fields) { f.Kind = "fixa" })
	require.True(t, ok)
	require.Equal(t, StepThirdParty, next)
}

func TestStore_UnknownChatIsNoOp(t *testing.T) {
	store := NewStore()

	_, ok := store.Get(99)
	require.False(t, ok)

	next, ok := store.Advance(99, func(f *Fields) { f.UserID = 1 })
	require.False(t, ok)
	require.Equal(t, StepNone, next)

	_, ok = store.Finish(99)
	require.False(t, ok)

	store.Cancel(99) // must not panic
}

func TestStore_FinishConsumesSession(t *testing.T) {
	store := NewStore()
	store.Start(1)
	store.Advance(1, func(f *Fields) { f.UserID = 1 })

	_, ok := store.Finish(1)
	require.True(t, ok)

	_, ok = store.Finish(1)
	require.False(t, ok, "second finish behaves like an unknown session")
	_, ok = store.Get(1)
	require.False(t, ok)
}

func TestStore_StartResetsExistingSession(t *testing.T) {
	store := NewStore()
	store.Start(5)
	store.Advance(5, func(f *Fields) { f.UserID = 2 })

	store.Start(5)
	sess, ok := store.Get(5)
	require.True(t, ok)
	require.Equal(t, StepOwner, sess.Step)
	require.Zero(t, sess.Fields.UserID)
}

func TestStore_CancelDropsSession(t *testing.T) {
	store := NewStore()
	store.Start(3)
	store.Cancel(3)
	_, ok := store.Get(3)
	require.False(t, ok)
}
