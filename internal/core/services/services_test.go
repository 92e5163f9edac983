package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"credit-app/internal/adapters/persistence/repositories/repotest"
	"credit-app/internal/config"
	"credit-app/internal/core/domain"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

// recordingNotifier remembers every event it receives
type recordingNotifier struct {
	mu     sync.Mutex
	events []domain.LoanEvent
	err    error
}

func (n *recordingNotifier) Notify(_ context.Context, event domain.LoanEvent) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
	return n.err
}

func (n *recordingNotifier) Events() []domain.LoanEvent {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]domain.LoanEvent(nil), n.events...)
}

type testEnv struct {
	store     *repotest.Store
	cfg       *config.Config
	users     *UserService
	auth      *AuthService
	loans     *LoanService
	dashboard *DashboardService
	notifier  *recordingNotifier
}

func testConfig() *config.Config {
	return &config.Config{
		AppMode: "dev",
		JWT:     config.JWTConfig{Secret: "test-secret", SessionDays: 7},
		Security: config.SecurityConfig{
			BcryptCost:            4,
			AllowPrivilegedSignup: true,
		},
	}
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store := repotest.NewStore()
	cfg := testConfig()
	notifier := &recordingNotifier{}

	users := NewUserService(store.Users(), cfg)
	return &testEnv{
		store:     store,
		cfg:       cfg,
		users:     users,
		auth:      NewAuthService(users, store.Users(), NewRepositoryRevoker(store.RevokedSessions()), cfg),
		loans:     NewLoanService(store.Loans(), store.Transitions(), store.Users(), NewNotificationService(zerolog.Nop(), notifier)),
		dashboard: NewDashboardService(store.Loans(), store.Users()),
		notifier:  notifier,
	}
}

// signup creates an account and returns the identity its session carries
func (e *testEnv) signup(t *testing.T, name, email string, role domain.Role) domain.Identity {
	t.Helper()

	session, err := e.auth.Signup(context.Background(), &SignupInput{
		Name:     name,
		Email:    email,
		Password: "pw123456",
		Role:     string(role),
	})
	require.NoError(t, err)

	identity, err := e.auth.Authenticate(context.Background(), session.Token)
	require.NoError(t, err)
	return identity
}

// applyLoan submits a loan and fails the test on error
func (e *testEnv) applyLoan(t *testing.T, actor domain.Identity, amount float64) uint {
	t.Helper()

	loan, err := e.loans.Apply(context.Background(), actor, &ApplyLoanInput{Amount: amount, Reason: "school fees"}, "127.0.0.1")
	require.NoError(t, err)
	return loan.ID
}

var errBoom = errors.New("boom")
