package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/taskboard/internal/database/dbtest"
	"github.com/iliyamo/taskboard/internal/model"
	"github.com/iliyamo/taskboard/internal/queue"
	"github.com/iliyamo/taskboard/internal/repository"
	"github.com/iliyamo/taskboard/internal/utils"
)

// mockUserStore is a func-field UserStore; unset funcs fail the call.
type mockUserStore struct {
	createFn                func(ctx context.Context, u *model.User) error
	getByEmailFn            func(ctx context.Context, email string) (*model.User, error)
	getByIDFn               func(ctx context.Context, id uint64) (*model.User, error)
	findByEmailOrProviderFn func(ctx context.Context, email, provider, providerID string) (*model.User, error)
	linkProviderFn          func(ctx context.Context, id uint64, provider, providerID string, avatar *string) (bool, error)
}

var errUnexpectedCall = errors.New("unexpected call")

func (m *mockUserStore) Create(ctx context.Context, u *model.User) error {
	if m.createFn != nil {
		return m.createFn(ctx, u)
	}
	return errUnexpectedCall
}

func (m *mockUserStore) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	if m.getByEmailFn != nil {
		return m.getByEmailFn(ctx, email)
	}
	return nil, errUnexpectedCall
}

func (m *mockUserStore) GetByID(ctx context.Context, id uint64) (*model.User, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, errUnexpectedCall
}

func (m *mockUserStore) FindByEmailOrProvider(ctx context.Context, email, provider, providerID string) (*model.User, error) {
	if m.findByEmailOrProviderFn != nil {
		return m.findByEmailOrProviderFn(ctx, email, provider, providerID)
	}
	return nil, errUnexpectedCall
}

func (m *mockUserStore) LinkProvider(ctx context.Context, id uint64, provider, providerID string, avatar *string) (bool, error) {
	if m.linkProviderFn != nil {
		return m.linkProviderFn(ctx, id, provider, providerID, avatar)
	}
	return false, errUnexpectedCall
}

var _ UserStore = (*mockUserStore)(nil)

// recordingPublisher keeps every published event.
type recordingPublisher struct {
	mu     sync.Mutex
	events []queue.ActivityEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, ev queue.ActivityEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, ev := range p.events {
		out[i] = ev.Type
	}
	return out
}

var _ queue.Publisher = (*recordingPublisher)(nil)

// recordingMetrics counts auth events by "event/outcome".
type recordingMetrics struct {
	mu     sync.Mutex
	events map[string]int
}

func (m *recordingMetrics) ObserveHTTPRequest(string, string, int, time.Duration) {}

func (m *recordingMetrics) RecordAuthEvent(event, outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.events == nil {
		m.events = map[string]int{}
	}
	m.events[event+"/"+outcome]++
}

// fixture wires the services to a fresh SQLite database.
type fixture struct {
	users    *repository.UserRepo
	projects *repository.ProjectRepo
	tasks    *repository.TaskRepo
	tokens   *utils.TokenIssuer
	events   *recordingPublisher
	metrics  *recordingMetrics

	auth       *AuthService
	projectSvc *ProjectService
	taskSvc    *TaskService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := dbtest.Open(t)
	f := &fixture{
		users:    repository.NewUserRepo(db),
		projects: repository.NewProjectRepo(db),
		tasks:    repository.NewTaskRepo(db),
		tokens:   utils.NewTokenIssuer("test-secret", time.Hour),
		events:   &recordingPublisher{},
		metrics:  &recordingMetrics{},
	}
	f.auth = NewAuthService(f.users, f.tokens, bcrypt.MinCost, f.events, f.metrics)
	f.projectSvc = NewProjectService(f.projects, f.tasks, f.events)
	f.taskSvc = NewTaskService(f.tasks, f.projects, f.events)
	return f
}

// register creates a password account and returns its id.
func (f *fixture) register(t *testing.T, email string) uint64 {
	t.Helper()
	res, err := f.auth.Register(context.Background(), RegisterInput{Name: "User", Email: email, Password: "secret1"})
	require.NoError(t, err)
	return res.User.ID
}
