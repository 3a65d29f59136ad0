// Package conversation drives the step-by-step entry form the Telegram bot
// fills in over multiple messages. Each chat has its own independent session.
package conversation

import "sync"

// Step is one question of the conversation. The flow is linear with a single
// branch: installments are only asked when the chosen kind is "parcelada".
//
//	OWNER → DESCRIPTION → AMOUNT → KIND → [INSTALLMENTS] → THIRD_PARTY → done
type Step string

const (
	StepOwner        Step = "USUARIO"
	StepDescription  Step = "DESCRICAO"
	StepAmount       Step = "VALOR"
	StepKind         Step = "TIPO"
	StepInstallments Step = "PARCELAS"
	StepThirdParty   Step = "TERCEIRO"

	// StepNone is the terminal step: the session is ready to persist.
	StepNone Step = ""
)

// KindInstallment is the kind answer that routes the flow through the
// installments question.
const KindInstallment = "parcelada"

// Fields accumulates the answers of one session.
type Fields struct {
	UserID             int
	Description        string
	Amount             float64
	Kind               string // fixa, unica or parcelada
	InstallmentCurrent *int
	InstallmentTotal   *int
	ThirdParty         *string
}

// NextStep computes the step that follows cur given the answers collected so
// far. It is pure and total: any step outside the flow maps to StepNone.
func NextStep(cur Step, f Fields) Step {
	switch cur {
	case StepOwner:
		return StepDescription
	case StepDescription:
		return StepAmount
	case StepAmount:
		return StepKind
	case StepKind:
		if f.Kind == KindInstallment {
			return StepInstallments
		}
		return StepThirdParty
	case StepInstallments:
		return StepThirdParty
	default:
		return StepNone
	}
}

// Session is the state of one chat's form fill.
type Session struct {
	Step   Step
	Fields Fields
}

// Store keeps the active sessions keyed by chat id. Updates for one chat are
// processed serially by the bot, so there is no per-session locking; the
// mutex only makes the map safe when different chats advance concurrently.
// State is process-local and lost on restart.
type Store struct {
	mu       sync.Mutex
	sessions map[int64]*Session
}

func NewStore() *Store {
	return &Store{sessions: make(map[int64]*Session)}
}

// Start opens a fresh session at the owner step, replacing any session the
// chat already had.
func (s *Store) Start(chatID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[chatID] = &Session{Step: StepOwner}
}

// Get returns a copy of the chat's session, or false when none is active.
func (s *Store) Get(chatID int64) (Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[chatID]
	if !ok {
		return Session{}, false
	}
	return *sess, true
}

// Advance records an answer via apply and moves the session to its next step.
// It returns the new step, which is StepNone once every question has been
// answered. An unknown chat is a no-op returning (StepNone, false).
func (s *Store) Advance(chatID int64, apply func(*Fields)) (Step, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[chatID]
	if !ok {
		return StepNone, false
	}
	apply(&sess.Fields)
	sess.Step = NextStep(sess.Step, sess.Fields)
	return sess.Step, true
}

// Finish returns the collected answers and deletes the session. The second
// call for the same chat behaves like an unknown session and returns false.
func (s *Store) Finish(chatID int64) (Fields, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[chatID]
	if !ok {
		return Fields{}, false
	}
	delete(s.sessions, chatID)
	return sess.Fields, true
}

// Cancel drops the chat's session, active or not.
func (s *Store) Cancel(chatID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, chatID)
}
