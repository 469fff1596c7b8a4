package service

import (
	"context"
	"strings"
	"testing"

	"novella-shop/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// mockUserRepo implements repository.UserRepository in memory.
type mockUserRepo struct {
	NextID uint
	Users  map[uint]*model.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{NextID: 1, Users: map[uint]*model.User{}}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	user.ID = m.NextID
	m.NextID++
	m.Users[user.ID] = user
	return nil
}

func (m *mockUserRepo) FindByID(_ context.Context, userID uint) (*model.User, error) {
	if user, ok := m.Users[userID]; ok {
		return user, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) FindByEmail(_ context.Context, email string) (*model.User, error) {
	for _, user := range m.Users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) Update(_ context.Context, user *model.User) error {
	m.Users[user.ID] = user
	return nil
}

func (m *mockUserRepo) UpdatePassword(_ context.Context, userID uint, passwordHash string) error {
	user, ok := m.Users[userID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	user.PasswordHash = passwordHash
	return nil
}

// mockEmailOutbox implements repository.EmailJobRepository; only Enqueue
// matters to the user service.
type mockEmailOutbox struct {
	Queued []*model.EmailJob
}

func (m *mockEmailOutbox) Enqueue(_ context.Context, job *model.EmailJob) error {
	job.ID = uint(len(m.Queued) + 1)
	job.Status = model.EmailJobStatusQueued
	m.Queued = append(m.Queued, job)
	return nil
}

func (m *mockEmailOutbox) GetQueued(_ context.Context, _ int) ([]*model.EmailJob, error) {
	return m.Queued, nil
}

func (m *mockEmailOutbox) MarkSent(_ context.Context, _ uint) error {
	return nil
}

func (m *mockEmailOutbox) MarkFailed(_ context.Context, _ uint) error {
	return nil
}

func userFixture() (UserService, *mockUserRepo, *mockEmailOutbox) {
	users := newMockUserRepo()
	outbox := &mockEmailOutbox{}
	svc := NewUserService(users, outbox, "test-secret", "http://localhost:8080")
	return svc, users, outbox
}

func TestRegister_CreatesUserAndQueuesWelcomeEmail(t *testing.T) {
	svc, users, outbox := userFixture()

	user, token, err := svc.Register(context.Background(), "lisa@example.com", "hunter22", "Lisa", "Gherardini")
	require.NoError(t, err)

	assert.NotEmpty(t, token)
	assert.NotEqual(t, "hunter22", user.PasswordHash)
	assert.Len(t, users.Users, 1)

	require.Len(t, outbox.Queued, 1)
	assert.Equal(t, "lisa@example.com", outbox.Queued[0].ToAddress)
	assert.Contains(t, outbox.Queued[0].Body, "Lisa")
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc, _, _ := userFixture()
	ctx := context.Background()

	_, _, err := svc.Register(ctx, "lisa@example.com", "hunter22", "Lisa", "")
	require.NoError(t, err)

	_, _, err = svc.Register(ctx, "lisa@example.com", "other", "Mona", "")
	assert.ErrorIs(t, err, ErrEmailAlreadyInUse)
}

func TestLogin_RoundTrip(t *testing.T) {
	svc, _, _ := userFixture()
	ctx := context.Background()

	registered, _, err := svc.Register(ctx, "lisa@example.com", "hunter22", "Lisa", "")
	require.NoError(t, err)

	user, token, err := svc.Login(ctx, "lisa@example.com", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)

	userID, err := svc.ParseSessionToken(token)
	require.NoError(t, err)
	assert.Equal(t, registered.ID, userID)
}

func TestLogin_WrongPassword(t *testing.T) {
	svc, _, _ := userFixture()
	ctx := context.Background()

	_, _, err := svc.Register(ctx, "lisa@example.com", "hunter22", "Lisa", "")
	require.NoError(t, err)

	_, _, err = svc.Login(ctx, "lisa@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = svc.Login(ctx, "nobody@example.com", "hunter22")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestParseSessionToken_Garbage(t *testing.T) {
	svc, _, _ := userFixture()

	_, err := svc.ParseSessionToken("not-a-jwt")

	assert.Error(t, err)
}

func TestPasswordReset_FullFlow(t *testing.T) {
	svc, _, outbox := userFixture()
	ctx := context.Background()

	_, _, err := svc.Register(ctx, "lisa@example.com", "hunter22", "Lisa", "")
	require.NoError(t, err)

	sent, err := svc.RequestPasswordReset(ctx, "lisa@example.com")
	require.NoError(t, err)
	assert.True(t, sent)

	// welcome + reset
	require.Len(t, outbox.Queued, 2)
	body := outbox.Queued[1].Body
	idx := strings.Index(body, "token=")
	require.Greater(t, idx, -1)
	token := strings.Fields(body[idx+len("token="):])[0]

	require.NoError(t, svc.ConfirmPasswordReset(ctx, token, "newpassword"))

	_, _, err = svc.Login(ctx, "lisa@example.com", "hunter22")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = svc.Login(ctx, "lisa@example.com", "newpassword")
	assert.NoError(t, err)
}

func TestPasswordReset_UnknownEmailNotSent(t *testing.T) {
	svc, _, outbox := userFixture()

	sent, err := svc.RequestPasswordReset(context.Background(), "nobody@example.com")
	require.NoError(t, err)

	assert.False(t, sent)
	assert.Empty(t, outbox.Queued)
}

func TestPasswordReset_SessionTokenRejected(t *testing.T) {
	svc, _, _ := userFixture()
	ctx := context.Background()

	_, sessionToken, err := svc.Register(ctx, "lisa@example.com", "hunter22", "Lisa", "")
	require.NoError(t, err)

	// a login token must not be usable to reset the password
	err = svc.ConfirmPasswordReset(ctx, sessionToken, "newpassword")
	assert.ErrorIs(t, err, ErrInvalidResetToken)
}
