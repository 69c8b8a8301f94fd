package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/authstack/identity-service/internal/core/domain"
	"github.com/authstack/identity-service/internal/core/password"
	"github.com/authstack/identity-service/internal/core/ports"
	"github.com/authstack/identity-service/internal/core/token"
)

// stubUserRepo is an in-memory UserRepository enforcing the same unique
// constraints the Mongo indexes provide.
type stubUserRepo struct {
	mu     sync.Mutex
	nextID int64
	users  map[int64]*domain.User
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[int64]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == user.Email {
			return nil, domain.ErrEmailTaken
		}
		if existing.Username == user.Username {
			return nil, domain.ErrUsernameTaken
		}
	}
	r.nextID++
	stored := cloneUser(user)
	stored.ID = r.nextID
	r.users[stored.ID] = stored
	return cloneUser(stored), nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id int64) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		return cloneUser(u), nil
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == username {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) Update(_ context.Context, id int64, patch ports.UserPatch) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	if patch.Username != nil {
		u.Username = *patch.Username
	}
	if patch.Email != nil {
		u.Email = *patch.Email
	}
	if patch.PasswordHash != nil {
		u.PasswordHash = *patch.PasswordHash
	}
	if patch.Role != nil {
		u.Role = *patch.Role
	}
	if patch.IsActive != nil {
		u.IsActive = *patch.IsActive
	}
	if patch.IsDeleted != nil {
		u.IsDeleted = *patch.IsDeleted
	}
	if patch.LastLogin != nil {
		t := *patch.LastLogin
		u.LastLogin = &t
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) List(_ context.Context, page, perPage int) ([]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.User, 0, len(r.users))
	for id := int64(1); id <= r.nextID; id++ {
		if u, ok := r.users[id]; ok {
			out = append(out, *cloneUser(u))
		}
	}
	start := (page - 1) * perPage
	if start >= len(out) {
		return nil, nil
	}
	end := start + perPage
	if end > len(out) {
		end = len(out)
	}
	return out[start:end], nil
}

func (r *stubUserRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(r.users, id)
	return nil
}

// stubActivityRepo collects appended records in order.
type stubActivityRepo struct {
	mu      sync.Mutex
	nextID  int64
	records []domain.Activity
	failing bool
}

func (r *stubActivityRepo) Append(_ context.Context, a *domain.Activity) (*domain.Activity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failing {
		return nil, errors.New("activity store down")
	}
	r.nextID++
	stored := *a
	stored.ID = r.nextID
	r.records = append(r.records, stored)
	return &stored, nil
}

func (r *stubActivityRepo) ListByUser(_ context.Context, userID int64, page, perPage int) ([]domain.Activity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Activity
	for _, rec := range r.records {
		if rec.UserID == userID {
			out = append(out, rec)
		}
	}
	return paginate(out, page, perPage), nil
}

func (r *stubActivityRepo) ListAll(_ context.Context, page, perPage int) ([]domain.Activity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return paginate(r.records, page, perPage), nil
}

func (r *stubActivityRepo) DeleteByUser(_ context.Context, userID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.records[:0]
	for _, rec := range r.records {
		if rec.UserID != userID {
			kept = append(kept, rec)
		}
	}
	r.records = kept
	return nil
}

func (r *stubActivityRepo) actions(userID int64) []domain.Action {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Action
	for _, rec := range r.records {
		if rec.UserID == userID {
			out = append(out, rec.Action)
		}
	}
	return out
}

func paginate(in []domain.Activity, page, perPage int) []domain.Activity {
	start := (page - 1) * perPage
	if start >= len(in) {
		return nil
	}
	end := start + perPage
	if end > len(in) {
		end = len(in)
	}
	out := make([]domain.Activity, end-start)
	copy(out, in[start:end])
	return out
}

// testIterations keeps hashing cheap in tests; NewHasher raises anything
// lower to the default, so build the hasher directly.
func testHasher() *password.Hasher {
	return password.NewHasher(password.DefaultIterations)
}

type fixture struct {
	users      *stubUserRepo
	activities *stubActivityRepo
	activity   *ActivityService
	auth       *AuthService
	user       *UserService
	tokens     *token.Service
}

func newFixture() *fixture {
	users := newStubUserRepo()
	activities := &stubActivityRepo{}
	log := zerolog.Nop()
	activitySvc := NewActivityService(activities, log)
	tokens := token.New("test-secret", time.Hour, token.DefaultRefreshTTL)
	hasher := testHasher()

	return &fixture{
		users:      users,
		activities: activities,
		activity:   activitySvc,
		auth:       NewAuthService(users, hasher, tokens, activitySvc, log),
		user:       NewUserService(users, hasher, activitySvc, log),
		tokens:     tokens,
	}
}

func (f *fixture) register(ctx context.Context, username, email, pass string) (*domain.User, error) {
	return f.auth.Register(ctx, ports.RegisterInput{Username: username, Email: email, Password: pass}, domain.Origin{})
}
