package account

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanupExpiredResetTokens(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "a@x.com", "secret1")

	err := env.svc.ForgotPassword(context.Background(), &ForgotPasswordRequest{Email: "a@x.com"})
	require.NoError(t, err)
	require.NotEmpty(t, env.stored(t, "a@x.com").ResetToken)

	env.svc.cleanupExpiredResetTokens(context.Background())
	assert.NotEmpty(t, env.stored(t, "a@x.com").ResetToken)

	env.svc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	env.svc.cleanupExpiredResetTokens(context.Background())
	assert.Empty(t, env.stored(t, "a@x.com").ResetToken)
}

func TestStartResetCleanupJob_StopsWithContext(t *testing.T) {
	env := newTestEnv(t)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		env.svc.StartResetCleanupJob(ctx, time.Hour)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("cleanup job did not stop")
	}
}
