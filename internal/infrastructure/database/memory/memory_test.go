package memory

import (
	"context"
	"testing"
	"time"

	"storefront-identity/internal/domain/account"
	"storefront-identity/internal/domain/message"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccountRepository_UniqueEmail(t *testing.T) {
	repo := NewAccountRepository()
	ctx := context.Background()

	a := &account.Account{Name: "Ada", Email: "a@x.com", PasswordHash: "h"}
	require.NoError(t, repo.Insert(ctx, a))
	assert.NotEmpty(t, a.ID)

	assert.ErrorIs(t, repo.Insert(ctx, &account.Account{Email: "a@x.com"}), account.ErrAccountExists)

	b := &account.Account{Name: "Bea", Email: "b@x.com", PasswordHash: "h"}
	require.NoError(t, repo.Insert(ctx, b))

	email := "a@x.com"
	_, err := repo.UpdateByID(ctx, b.ID, account.Patch{Email: &email})
	assert.ErrorIs(t, err, account.ErrAccountExists)
}

func TestAccountRepository_ReturnsCopies(t *testing.T) {
	repo := NewAccountRepository()
	ctx := context.Background()
	a := &account.Account{Email: "a@x.com"}
	require.NoError(t, repo.Insert(ctx, a))

	got, err := repo.FindByID(ctx, a.ID)
	require.NoError(t, err)
	got.IsAdmin = true

	again, err := repo.FindByID(ctx, a.ID)
	require.NoError(t, err)
	assert.False(t, again.IsAdmin)
}

func TestAccountRepository_ResetToken(t *testing.T) {
	repo := NewAccountRepository()
	ctx := context.Background()
	a := &account.Account{Email: "a@x.com", PasswordHash: "old"}
	require.NoError(t, repo.Insert(ctx, a))

	now := time.Now()
	require.NoError(t, repo.SetResetToken(ctx, a.ID, "tok", now.Add(time.Hour)))

	found, err := repo.FindByResetToken(ctx, "tok", now)
	require.NoError(t, err)
	assert.Equal(t, a.ID, found.ID)

	_, err = repo.FindByResetToken(ctx, "tok", now.Add(2*time.Hour))
	assert.ErrorIs(t, err, account.ErrAccountNotFound)

	_, err = repo.ConsumeResetToken(ctx, "tok", now.Add(2*time.Hour), "new")
	assert.ErrorIs(t, err, account.ErrResetTokenInvalid)

	consumed, err := repo.ConsumeResetToken(ctx, "tok", now, "new")
	require.NoError(t, err)
	assert.Equal(t, "new", consumed.PasswordHash)
	assert.Empty(t, consumed.ResetToken)
	assert.Nil(t, consumed.ResetExpires)

	_, err = repo.ConsumeResetToken(ctx, "tok", now, "newer")
	assert.ErrorIs(t, err, account.ErrResetTokenInvalid)

	_, err = repo.ConsumeResetToken(ctx, "", now, "newer")
	assert.ErrorIs(t, err, account.ErrResetTokenInvalid)
}

func TestAccountRepository_ClearExpiredResetTokens(t *testing.T) {
	repo := NewAccountRepository()
	ctx := context.Background()
	now := time.Now()

	stale := &account.Account{Email: "stale@x.com"}
	fresh := &account.Account{Email: "fresh@x.com"}
	require.NoError(t, repo.Insert(ctx, stale))
	require.NoError(t, repo.Insert(ctx, fresh))
	require.NoError(t, repo.SetResetToken(ctx, stale.ID, "old", now.Add(-time.Minute)))
	require.NoError(t, repo.SetResetToken(ctx, fresh.ID, "new", now.Add(time.Hour)))

	cleared, err := repo.ClearExpiredResetTokens(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), cleared)

	got, err := repo.FindByID(ctx, stale.ID)
	require.NoError(t, err)
	assert.Empty(t, got.ResetToken)
	assert.Nil(t, got.ResetExpires)

	got, err = repo.FindByID(ctx, fresh.ID)
	require.NoError(t, err)
	assert.Equal(t, "new", got.ResetToken)
}

func TestAccountRepository_NotFound(t *testing.T) {
	repo := NewAccountRepository()
	ctx := context.Background()

	_, err := repo.FindByID(ctx, "x")
	assert.ErrorIs(t, err, account.ErrAccountNotFound)
	assert.ErrorIs(t, repo.DeleteByID(ctx, "x"), account.ErrAccountNotFound)
	assert.ErrorIs(t, repo.SetResetToken(ctx, "x", "t", time.Now()), account.ErrAccountNotFound)
	_, err = repo.UpdateByID(ctx, "x", account.Patch{})
	assert.ErrorIs(t, err, account.ErrAccountNotFound)
}

func TestMessageRepository(t *testing.T) {
	repo := NewMessageRepository()
	ctx := context.Background()

	first := &message.Message{Name: "Ada", Body: "one"}
	require.NoError(t, repo.Create(ctx, first))
	require.NoError(t, repo.Create(ctx, &message.Message{Name: "Bea", Body: "two"}))

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "two", list[0].Body)

	read, err := repo.MarkAsRead(ctx, first.ID)
	require.NoError(t, err)
	assert.True(t, read.IsRead)

	_, err = repo.MarkAsRead(ctx, "missing")
	assert.ErrorIs(t, err, message.ErrMessageNotFound)
}
