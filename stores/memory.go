package stores

import (
	"context"
	"sort"
	"sync"

	"github.com/lifecheck/lifecheck/models"
	"github.com/lifecheck/lifecheck/services"
)

// MemoryStore is an in-memory implementation of services.UserStore and
// services.CheckInStore. It mirrors the database semantics the engine relies
// on: the (user_id, checkin_day) pair is unique and InTx is atomic, rolling
// back on error. Used by tests and useful for local development.
type MemoryStore struct {
	mu        sync.Mutex
	users     map[uint]models.User
	checkins  map[uint]models.CheckIn
	byUserDay map[userDay]uint

	nextUserID    uint
	nextCheckInID uint
}

type userDay struct {
	userID uint
	day    string
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:     map[uint]models.User{},
		checkins:  map[uint]models.CheckIn{},
		byUserDay: map[userDay]uint{},
	}
}

// --- services.UserStore ---

func (m *MemoryStore) FindByID(ctx context.Context, id uint) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.findUserLocked(id)
}

func (m *MemoryStore) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == username {
			u := u
			return &u, nil
		}
	}
	return nil, services.ErrUserNotFound
}

func (m *MemoryStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			u := u
			return &u, nil
		}
	}
	return nil, services.ErrUserNotFound
}

func (m *MemoryStore) Create(ctx context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == user.Username {
			return services.ErrUsernameTaken
		}
		if u.Email == user.Email {
			return services.ErrEmailTaken
		}
	}
	m.nextUserID++
	user.ID = m.nextUserID
	if user.Roles == "" {
		user.Roles = models.DefaultRole
	}
	m.users[user.ID] = *user
	return nil
}

// --- services.CheckInStore ---

// InTx serializes writers and restores the pre-transaction state when fn
// fails, matching the all-or-nothing guarantee of a database transaction.
func (m *MemoryStore) InTx(ctx context.Context, fn func(tx services.CheckInTx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	snapshot := m.snapshotLocked()
	if err := fn(&memoryTx{store: m}); err != nil {
		m.restoreLocked(snapshot)
		return err
	}
	return nil
}

func (m *MemoryStore) FindByUserOnDay(ctx context.Context, userID uint, day string) (*models.CheckIn, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.findByUserOnDayLocked(userID, day), nil
}

func (m *MemoryStore) FindCheckIn(ctx context.Context, id uint) (*models.CheckIn, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if rec, ok := m.checkins[id]; ok {
		rec := rec
		return &rec, nil
	}
	return nil, services.ErrCheckInNotFound
}

func (m *MemoryStore) ListByUser(ctx context.Context, userID uint) ([]models.CheckIn, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var recs []models.CheckIn
	for _, rec := range m.checkins {
		if rec.UserID == userID {
			recs = append(recs, rec)
		}
	}
	sort.Slice(recs, func(i, j int) bool {
		return recs[i].CheckinTime.After(recs[j].CheckinTime)
	})
	return recs, nil
}

func (m *MemoryStore) Delete(ctx context.Context, id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.checkins[id]
	if !ok {
		return services.ErrCheckInNotFound
	}
	delete(m.checkins, id)
	delete(m.byUserDay, userDay{rec.UserID, rec.CheckinDay})
	return nil
}

// --- internals ---

func (m *MemoryStore) findUserLocked(id uint) (*models.User, error) {
	if u, ok := m.users[id]; ok {
		u := u
		return &u, nil
	}
	return nil, services.ErrUserNotFound
}

func (m *MemoryStore) findByUserOnDayLocked(userID uint, day string) *models.CheckIn {
	if id, ok := m.byUserDay[userDay{userID, day}]; ok {
		rec := m.checkins[id]
		return &rec
	}
	return nil
}

type memorySnapshot struct {
	users         map[uint]models.User
	checkins      map[uint]models.CheckIn
	byUserDay     map[userDay]uint
	nextUserID    uint
	nextCheckInID uint
}

func (m *MemoryStore) snapshotLocked() memorySnapshot {
	s := memorySnapshot{
		users:         make(map[uint]models.User, len(m.users)),
		checkins:      make(map[uint]models.CheckIn, len(m.checkins)),
		byUserDay:     make(map[userDay]uint, len(m.byUserDay)),
		nextUserID:    m.nextUserID,
		nextCheckInID: m.nextCheckInID,
	}
	for k, v := range m.users {
		s.users[k] = v
	}
	for k, v := range m.checkins {
		s.checkins[k] = v
	}
	for k, v := range m.byUserDay {
		s.byUserDay[k] = v
	}
	return s
}

func (m *MemoryStore) restoreLocked(s memorySnapshot) {
	m.users = s.users
	m.checkins = s.checkins
	m.byUserDay = s.byUserDay
	m.nextUserID = s.nextUserID
	m.nextCheckInID = s.nextCheckInID
}

// memoryTx operates under the store lock held by InTx.
type memoryTx struct {
	store *MemoryStore
}

func (t *memoryTx) UserForUpdate(ctx context.Context, id uint) (*models.User, error) {
	return t.store.findUserLocked(id)
}

func (t *memoryTx) FindByUserOnDay(ctx context.Context, userID uint, day string) (*models.CheckIn, error) {
	return t.store.findByUserOnDayLocked(userID, day), nil
}

func (t *memoryTx) CreateCheckIn(ctx context.Context, rec *models.CheckIn) error {
	key := userDay{rec.UserID, rec.CheckinDay}
	if _, exists := t.store.byUserDay[key]; exists {
		return services.ErrDuplicateCheckIn
	}
	t.store.nextCheckInID++
	rec.ID = t.store.nextCheckInID
	if rec.Status == "" {
		rec.Status = models.CheckInStatusNormal
	}
	t.store.checkins[rec.ID] = *rec
	t.store.byUserDay[key] = rec.ID
	return nil
}

func (t *memoryTx) SaveUser(ctx context.Context, user *models.User) error {
	if _, ok := t.store.users[user.ID]; !ok {
		return services.ErrUserNotFound
	}
	t.store.users[user.ID] = *user
	return nil
}
