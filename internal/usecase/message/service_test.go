package message

import (
	"context"
	"testing"

	domainMessage "storefront-identity/internal/domain/message"
	"storefront-identity/internal/infrastructure/database/memory"
	appErrors "storefront-identity/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService_CreateListMarkAsRead(t *testing.T) {
	svc := NewService(memory.NewMessageRepository())
	ctx := context.Background()

	first, err := svc.Create(ctx, &CreateMessageRequest{Name: "Ada", Email: "A@x.com", Message: "Where is my order?"})
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", first.Email)
	assert.False(t, first.IsRead)

	_, err = svc.Create(ctx, &CreateMessageRequest{Name: "Grace", Email: "g@x.com", Subject: "Hi", Message: "Hello"})
	require.NoError(t, err)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Grace", list[0].Name)

	read, err := svc.MarkAsRead(ctx, first.ID)
	require.NoError(t, err)
	assert.True(t, read.IsRead)

	_, err = svc.MarkAsRead(ctx, "999")
	assert.ErrorIs(t, err, domainMessage.ErrMessageNotFound)
}

func TestService_CreateValidation(t *testing.T) {
	svc := NewService(memory.NewMessageRepository())

	_, err := svc.Create(context.Background(), &CreateMessageRequest{Name: "Ada", Email: "a@x.com"})
	assert.True(t, appErrors.IsValidation(err))

	_, err = svc.Create(context.Background(), &CreateMessageRequest{Name: "Ada", Email: "nope", Message: "x"})
	assert.True(t, appErrors.IsValidation(err))
}

func TestService_CreateEscapesMarkup(t *testing.T) {
	svc := NewService(memory.NewMessageRepository())

	resp, err := svc.Create(context.Background(), &CreateMessageRequest{
		Name: "<b>Ada</b>", Email: "a@x.com", Message: "<script>alert(1)</script>",
	})
	require.NoError(t, err)
	assert.NotContains(t, resp.Name, "<b>")
	assert.NotContains(t, resp.Message, "<script>")
}
