package notify

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"amparo/pkg/models"
)

type recordingChannel struct {
	name  string
	calls int
}

func (r *recordingChannel) Name() string { return r.name }

func (r *recordingChannel) Send(ctx context.Context, contact models.Contact, message string) error {
	r.calls++
	return nil
}

func TestRouter_DeviceTokenUsaPush(t *testing.T) {
	push := &recordingChannel{name: "push"}
	email := &recordingChannel{name: "email"}
	router := NewRouter(push, email, nil)

	contato := models.Contact{Name: "Ana", DeviceToken: "tok", Email: "ana@example.com"}
	err := router.Send(context.Background(), contato, "msg")

	require.NoError(t, err)
	assert.Equal(t, 1, push.calls)
	assert.Equal(t, 0, email.calls)
}

func TestRouter_SemTokenComEmailUsaEmail(t *testing.T) {
	push := &recordingChannel{name: "push"}
	email := &recordingChannel{name: "email"}
	router := NewRouter(push, email, nil)

	contato := models.Contact{Name: "Ana", Email: "ana@example.com"}
	err := router.Send(context.Background(), contato, "msg")

	require.NoError(t, err)
	assert.Equal(t, 0, push.calls)
	assert.Equal(t, 1, email.calls)
}

func TestRouter_SemDadosUsaFallback(t *testing.T) {
	fallback := &recordingChannel{name: "console"}
	router := NewRouter(nil, nil, fallback)

	contato := models.Contact{Name: "Ana", Phone: "+551199999"}
	err := router.Send(context.Background(), contato, "msg")

	require.NoError(t, err)
	assert.Equal(t, 1, fallback.calls)
}

func TestRouter_SemCanalDisponivelFalha(t *testing.T) {
	router := NewRouter(nil, nil, nil)

	contato := models.Contact{Name: "Ana"}
	err := router.Send(context.Background(), contato, "msg")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "nenhum canal de entrega")
}

func TestConsoleChannel_RespeitaCancelamento(t *testing.T) {
	c := NewConsoleChannel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := c.Send(ctx, models.Contact{Name: "Ana"}, "msg")
	assert.Error(t, err)

	assert.NoError(t, c.Send(context.Background(), models.Contact{Name: "Ana"}, "msg"))
}
