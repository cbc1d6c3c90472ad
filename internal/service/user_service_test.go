package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/user-service/internal/config"
	"github.com/spec-kit/user-service/internal/domain"
	"github.com/spec-kit/user-service/internal/events"
	"github.com/spec-kit/user-service/internal/observability"
	"github.com/spec-kit/user-service/internal/repository"
)

type fakeHasher struct {
	err error
}

func (h fakeHasher) HashPassword(password string) (string, error) {
	if h.err != nil {
		return "", h.err
	}
	return "hashed:" + password, nil
}

// memoryUsers enforces email uniqueness the way the users table does.
type memoryUsers struct {
	mu      sync.Mutex
	nextID  int64
	byEmail map[string]*domain.User
	failErr error
	creates int
}

func newMemoryUsers() *memoryUsers {
	return &memoryUsers{byEmail: map[string]*domain.User{}}
}

func (m *memoryUsers) Create(_ context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.creates++
	if m.failErr != nil {
		return m.failErr
	}
	if _, exists := m.byEmail[user.Email]; exists {
		return &repository.StorageError{
			Kind:       repository.KindConstraintViolation,
			Code:       repository.UniqueViolationCode,
			Constraint: "users_email_key",
			Err:        &pgconn.PgError{Code: "23505", ConstraintName: "users_email_key", Message: "duplicate key value violates unique constraint"},
		}
	}
	m.nextID++
	user.ID = m.nextID
	user.CreatedAt = time.Now()
	stored := *user
	m.byEmail[user.Email] = &stored
	return nil
}

func (m *memoryUsers) GetByID(_ context.Context, id int64) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memoryUsers) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.byEmail[email]; ok {
		return u, nil
	}
	return nil, repository.ErrNotFound
}

func newTestService(users repository.UserRepository, hasher fakeHasher, cfg config.UsersConfig) (*UserService, *observability.Metrics) {
	metrics := observability.NewMetrics()
	if cfg.EmailConstraint == "" {
		cfg.EmailConstraint = "users_email_key"
	}
	svc := NewUserService(cfg, UserDependencies{
		Hasher:   hasher,
		UserRepo: users,
		Metrics:  metrics,
	})
	return svc, metrics
}

var sampleInput = domain.UserCreateInput{Name: "A", LastName: "B", Email: "a@b.com", Password: "pw"}

func TestCreateUser_Success(t *testing.T) {
	users := newMemoryUsers()
	svc, metrics := newTestService(users, fakeHasher{}, config.UsersConfig{})

	result, err := svc.CreateUser(context.Background(), sampleInput)
	require.NoError(t, err)

	require.NotNil(t, result.User)
	assert.Nil(t, result.Error)
	assert.Equal(t, &domain.UserView{ID: 1, Name: "A", LastName: "B", Email: "a@b.com"}, result.User)

	stored, err := users.GetByEmail(context.Background(), "a@b.com")
	require.NoError(t, err)
	assert.Equal(t, "hashed:pw", stored.PasswordHash)
	assert.Equal(t, int64(1), metrics.Snapshot().Outcomes["user_create|CREATED"])
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	svc, metrics := newTestService(newMemoryUsers(), fakeHasher{}, config.UsersConfig{})

	first, err := svc.CreateUser(context.Background(), sampleInput)
	require.NoError(t, err)
	require.NotNil(t, first.User)

	second, err := svc.CreateUser(context.Background(), sampleInput)
	require.NoError(t, err)
	assert.Nil(t, second.User)
	require.NotNil(t, second.Error)
	assert.Equal(t, domain.UserErrorCodeEmailTaken, second.Error.Code)
	assert.Contains(t, second.Error.Message, "users_email_key")
	assert.Equal(t, int64(1), metrics.Snapshot().Outcomes["user_create|EMAIL_TAKEN"])
}

func TestCreateUser_HashFailureSkipsStorage(t *testing.T) {
	users := newMemoryUsers()
	hashErr := errors.New("password exceeds 72 bytes")
	svc, metrics := newTestService(users, fakeHasher{err: hashErr}, config.UsersConfig{})

	result, err := svc.CreateUser(context.Background(), sampleInput)
	assert.Nil(t, result)
	assert.ErrorIs(t, err, hashErr)
	assert.Equal(t, 0, users.creates)
	assert.Equal(t, int64(1), metrics.Snapshot().Outcomes["user_create|HASH_FAILED"])
}

func TestCreateUser_StorageFailureClassification(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		coarse bool
		want   domain.UserErrorCode
	}{
		{
			name: "connection failure",
			err:  &repository.StorageError{Kind: repository.KindConnection, Err: errors.New("connection refused")},
			want: domain.UserErrorCodeUnknown,
		},
		{
			name: "unnamed unique violation",
			err:  &repository.StorageError{Kind: repository.KindConstraintViolation, Code: "23505", Err: errors.New("duplicate")},
			want: domain.UserErrorCodeEmailTaken,
		},
		{
			name: "other constraint",
			err:  &repository.StorageError{Kind: repository.KindConstraintViolation, Code: "23502", Err: errors.New("null value in column")},
			want: domain.UserErrorCodeUnknown,
		},
		{
			name: "query failure in strict mode",
			err:  &repository.StorageError{Kind: repository.KindQuery, Code: "42703", Err: errors.New("column does not exist")},
			want: domain.UserErrorCodeUnknown,
		},
		{
			name:   "query failure in coarse mode",
			err:    &repository.StorageError{Kind: repository.KindQuery, Code: "42703", Err: errors.New("column does not exist")},
			coarse: true,
			want:   domain.UserErrorCodeEmailTaken,
		},
		{
			name:   "connection failure in coarse mode",
			err:    &repository.StorageError{Kind: repository.KindConnection, Err: errors.New("connection refused")},
			coarse: true,
			want:   domain.UserErrorCodeUnknown,
		},
		{
			name: "untagged error",
			err:  errors.New("boom"),
			want: domain.UserErrorCodeUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := newMemoryUsers()
			users.failErr = tt.err
			svc, _ := newTestService(users, fakeHasher{}, config.UsersConfig{CoarseQueryErrors: tt.coarse})

			result, err := svc.CreateUser(context.Background(), sampleInput)
			require.NoError(t, err)
			assert.Nil(t, result.User)
			require.NotNil(t, result.Error)
			assert.Equal(t, tt.want, result.Error.Code)
			assert.Equal(t, tt.err.Error(), result.Error.Message)
			assert.Equal(t, 1, users.creates)
		})
	}
}

func TestCreateUser_ResultNeverBothNorNeither(t *testing.T) {
	inputs := []domain.UserCreateInput{
		sampleInput,
		sampleInput,
		{Name: "", LastName: "", Email: "", Password: ""},
		{Name: "C", LastName: "D", Email: strings.Repeat("x", 300), Password: "pw"},
	}
	svc, _ := newTestService(newMemoryUsers(), fakeHasher{}, config.UsersConfig{})

	for _, in := range inputs {
		result, err := svc.CreateUser(context.Background(), in)
		require.NoError(t, err)
		assert.True(t, (result.User == nil) != (result.Error == nil))
	}
}

func TestCreateUser_PublishesEvent(t *testing.T) {
	dispatcher := events.NewInMemoryDispatcher()
	var published []events.Event
	dispatcher.Subscribe(events.EventUserCreated, func(_ context.Context, e events.Event) error {
		published = append(published, e)
		return nil
	})

	svc := NewUserService(config.UsersConfig{EmailConstraint: "users_email_key"}, UserDependencies{
		Hasher:     fakeHasher{},
		UserRepo:   newMemoryUsers(),
		Dispatcher: dispatcher,
	})

	result, err := svc.CreateUser(context.Background(), sampleInput)
	require.NoError(t, err)
	require.NotNil(t, result.User)

	require.Len(t, published, 1)
	assert.Equal(t, result.User.ID, published[0].SubjectID)
	assert.Equal(t, events.UserCreatedPayload{UserID: result.User.ID, Email: "a@b.com"}, published[0].Payload)
}

func TestCreateUser_PublishFailureDoesNotChangeResult(t *testing.T) {
	dispatcher := events.NewInMemoryDispatcher()
	dispatcher.Subscribe(events.EventUserCreated, func(context.Context, events.Event) error {
		return errors.New("redis down")
	})

	svc := NewUserService(config.UsersConfig{EmailConstraint: "users_email_key"}, UserDependencies{
		Hasher:     fakeHasher{},
		UserRepo:   newMemoryUsers(),
		Dispatcher: dispatcher,
	})

	result, err := svc.CreateUser(context.Background(), sampleInput)
	require.NoError(t, err)
	assert.NotNil(t, result.User)
	assert.Nil(t, result.Error)
}
