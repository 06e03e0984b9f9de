// Package memory implements an in-memory repository for development and testing.
package memory

import (
	"context"
	"errors"
	"sync"
	"time"

	"prochecka/internal/domain"
)

// DB implements an in-memory database storage.
type DB struct {
	mu            sync.Mutex
	userPlans     map[int64]*domain.ActionPlan
	guestPlans    map[string]*domain.ActionPlan
	guestSessions map[string]*domain.GuestSession
	chat          map[int64][]domain.ChatMessage
	progress      map[progressKey][]string
	users         []*domain.User
	sessions      map[string]*domain.Session

	userIDCounter int64
}

type progressKey struct {
	userID int64
	kind   domain.ProgressKind
	day    string
}

// New creates a new in-memory database.
func New() *DB {
	return &DB{
		userPlans:     make(map[int64]*domain.ActionPlan),
		guestPlans:    make(map[string]*domain.ActionPlan),
		guestSessions: make(map[string]*domain.GuestSession),
		chat:          make(map[int64][]domain.ChatMessage),
		progress:      make(map[progressKey][]string),
		sessions:      make(map[string]*domain.Session),
	}
}

// Ensure interfaces are met.
var _ domain.ActionPlanRepository = (*DB)(nil)
var _ domain.GuestSessionRepository = (*DB)(nil)
var _ domain.ChatHistoryRepository = (*DB)(nil)
var _ domain.ProgressRepository = (*DB)(nil)
var _ domain.UserRepository = (*DB)(nil)
var _ domain.SessionRepository = (*SessionRepo)(nil)

// --- ActionPlanRepository ---

func (db *DB) planFor(owner domain.Owner) *domain.ActionPlan {
	if owner.IsUser() {
		return db.userPlans[owner.UserID]
	}
	return db.guestPlans[owner.GuestToken]
}

func (db *DB) storePlan(owner domain.Owner, plan *domain.ActionPlan) {
	if owner.IsUser() {
		db.userPlans[owner.UserID] = plan
	} else {
		db.guestPlans[owner.GuestToken] = plan
	}
}

func copyPlan(p *domain.ActionPlan) *domain.ActionPlan {
	if p == nil {
		return nil
	}
	out := *p
	out.Tasks = append([]domain.PlanTask{}, p.Tasks...)
	return &out
}

// GetPlan returns the owner's plan, or nil if none exists.
func (db *DB) GetPlan(ctx context.Context, owner domain.Owner) (*domain.ActionPlan, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	return copyPlan(db.planFor(owner)), nil
}

// UpsertPlan stores the plan for the owner, replacing any existing one.
func (db *DB) UpsertPlan(ctx context.Context, owner domain.Owner, plan domain.ActionPlan) (*domain.ActionPlan, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.storePlan(owner, copyPlan(&plan))
	return copyPlan(db.planFor(owner)), nil
}

// SetTaskCompleted flips one task's completed flag in place.
func (db *DB) SetTaskCompleted(ctx context.Context, owner domain.Owner, taskID string, completed bool) (*domain.ActionPlan, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	plan := db.planFor(owner)
	if plan == nil {
		return nil, domain.ErrNotFound
	}
	for i := range plan.Tasks {
		if plan.Tasks[i].ID == taskID {
			plan.Tasks[i].Completed = completed
			return copyPlan(plan), nil
		}
	}
	return nil, domain.ErrNotFound
}

// CreateUserPlanIfAbsent inserts a plan for the user only if none exists.
func (db *DB) CreateUserPlanIfAbsent(ctx context.Context, userID int64, plan domain.ActionPlan) (bool, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, ok := db.userPlans[userID]; ok {
		return false, nil
	}
	db.userPlans[userID] = copyPlan(&plan)
	return true, nil
}

// --- GuestSessionRepository ---

func copyGuestSession(s *domain.GuestSession) *domain.GuestSession {
	if s == nil {
		return nil
	}
	out := *s
	if s.Data.Messages != nil {
		out.Data.Messages = append([]domain.ChatMessage{}, s.Data.Messages...)
	}
	return &out
}

// CreateGuestSession inserts a fresh anonymous session.
func (db *DB) CreateGuestSession(ctx context.Context, token string, expiresAt time.Time) (*domain.GuestSession, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, ok := db.guestSessions[token]; ok {
		return nil, errors.New("guest session already exists")
	}
	s := &domain.GuestSession{
		Token:     token,
		Data:      domain.AssessmentData{Version: 1},
		ExpiresAt: expiresAt,
		CreatedAt: time.Now().UTC(),
	}
	db.guestSessions[token] = s
	return copyGuestSession(s), nil
}

// GetGuestSession returns the session for token, or nil if none exists.
func (db *DB) GetGuestSession(ctx context.Context, token string) (*domain.GuestSession, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	return copyGuestSession(db.guestSessions[token]), nil
}

// UpdateGuestSession replaces the assessment data of a live, unconverted session.
func (db *DB) UpdateGuestSession(ctx context.Context, token string, data domain.AssessmentData, riskScore *int) (*domain.GuestSession, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	s, ok := db.guestSessions[token]
	if !ok || s.ConvertedToUserID != nil || time.Now().After(s.ExpiresAt) {
		return nil, domain.ErrNotFound
	}
	s.Data = data
	s.RiskScore = riskScore
	return copyGuestSession(s), nil
}

// ClaimConversion sets the converted user id only if it is still unset.
func (db *DB) ClaimConversion(ctx context.Context, token string, userID int64) (bool, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	s, ok := db.guestSessions[token]
	if !ok {
		return false, domain.ErrNotFound
	}
	if s.ConvertedToUserID != nil {
		return false, nil
	}
	s.ConvertedToUserID = &userID
	return true, nil
}

// --- ChatHistoryRepository ---

// AppendChatMessages appends messages to the user's transcript in order.
func (db *DB) AppendChatMessages(ctx context.Context, userID int64, msgs []domain.ChatMessage) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.chat[userID] = append(db.chat[userID], msgs...)
	return nil
}

// ListChatMessages returns the most recent limit messages, oldest first.
func (db *DB) ListChatMessages(ctx context.Context, userID int64, limit int) ([]domain.ChatMessage, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	msgs := db.chat[userID]
	if limit > 0 && len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	out := make([]domain.ChatMessage, len(msgs))
	copy(out, msgs)
	return out, nil
}

// --- ProgressRepository ---

// GetProgress returns the completed ids for (user, kind, day).
func (db *DB) GetProgress(ctx context.Context, userID int64, kind domain.ProgressKind, localDay string) ([]string, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	ids := db.progress[progressKey{userID, kind, localDay}]
	out := make([]string, len(ids))
	copy(out, ids)
	return out, nil
}

// SetProgress upserts the completed ids for (user, kind, day).
func (db *DB) SetProgress(ctx context.Context, userID int64, kind domain.ProgressKind, localDay string, completedIDs []string) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	ids := make([]string, len(completedIDs))
	copy(ids, completedIDs)
	db.progress[progressKey{userID, kind, localDay}] = ids
	return nil
}

// --- UserRepository ---

func copyUser(u *domain.User) *domain.User {
	out := *u
	return &out
}

// GetByUsername retrieves a user by username.
func (db *DB) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, u := range db.users {
		if u.Username == username {
			return copyUser(u), nil
		}
	}
	return nil, nil
}

// GetByID retrieves a user by ID.
func (db *DB) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, u := range db.users {
		if u.ID == id {
			return copyUser(u), nil
		}
	}
	return nil, nil
}

// Create creates a new user.
func (db *DB) Create(ctx context.Context, username, passwordHash string) (*domain.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, u := range db.users {
		if u.Username == username {
			return nil, errors.New("user already exists")
		}
	}

	db.userIDCounter++
	u := &domain.User{
		ID:           db.userIDCounter,
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}
	db.users = append(db.users, u)
	return copyUser(u), nil
}

// --- SessionRepository ---

// SessionRepo implements session persistence.
type SessionRepo struct {
	db *DB
}

// NewSessionRepo creates a new session repository.
func (db *DB) NewSessionRepo() *SessionRepo {
	return &SessionRepo{db: db}
}

// Create creates a new session.
func (r *SessionRepo) Create(ctx context.Context, userID int64, token string, expiresAt time.Time) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	r.db.sessions[token] = &domain.Session{
		Token:     token,
		UserID:    userID,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now().UTC(),
	}
	return nil
}

// GetByToken retrieves a session by token.
func (r *SessionRepo) GetByToken(ctx context.Context, token string) (*domain.Session, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if s, ok := r.db.sessions[token]; ok {
		return s, nil
	}
	return nil, nil
}

// Delete deletes a session.
func (r *SessionRepo) Delete(ctx context.Context, token string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	delete(r.db.sessions, token)
	return nil
}

// DeleteExpired deletes all expired sessions.
func (r *SessionRepo) DeleteExpired(ctx context.Context) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	now := time.Now()
	for k, v := range r.db.sessions {
		if now.After(v.ExpiresAt) {
			delete(r.db.sessions, k)
		}
	}
	return nil
}
