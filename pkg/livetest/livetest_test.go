package livetest

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hamvadakara/hammeet/pkg/core"
)

var errBoom = errors.New("boom")

type ticker struct {
	core.BaseComponent
	count      int
	label      string
	terminated bool
}

func (c *ticker) Name() string { return "ticker" }

func (c *ticker) Mount(ctx context.Context, params core.Params, session core.Session) error {
	c.label = params.GetDefault("label", "count")
	return nil
}

func (c *ticker) HandleEvent(ctx context.Context, event string, payload map[string]any) error {
	switch event {
	case "inc":
		c.count++
	case "later":
		socket := c.Socket()
		go func() {
			time.Sleep(5 * time.Millisecond)
			_ = socket.SendInfo("tick")
		}()
	case "fail":
		return errBoom
	}
	return nil
}

func (c *ticker) HandleInfo(ctx context.Context, msg any) error {
	if msg == "tick" {
		c.count += 10
	}
	return nil
}

func (c *ticker) Terminate(ctx context.Context, reason core.TerminateReason) error {
	c.terminated = true
	return nil
}

func (c *ticker) Render(ctx context.Context) core.Renderer {
	return core.StringRenderer(fmt.Sprintf(`<p>%s: <span data-slot="count">%d</span></p>`, c.label, c.count))
}

func TestView_PushAndRender(t *testing.T) {
	v := Mount(t, &ticker{}, WithParams(core.Params{"label": "clicks"}))

	v.AssertText("clicks:")
	assert.Equal(t, "0", v.Slot("count"))

	v.Click("inc").Click("inc")
	assert.Equal(t, "2", v.Slot("count"))
	assert.Len(t, v.Events(), 2)
}

func TestView_PushErrKeepsRender(t *testing.T) {
	v := Mount(t, &ticker{})
	v.Click("inc")

	err := v.PushErr("fail", nil)
	assert.ErrorIs(t, err, errBoom)
	assert.Equal(t, "1", v.Slot("count"))
}

func TestView_AwaitInfo(t *testing.T) {
	v := Mount(t, &ticker{})
	v.Click("later")

	msg := v.AwaitInfo(time.Second)
	assert.Equal(t, "tick", msg)
	assert.Equal(t, "10", v.Slot("count"))

	v.AssertNoInfo(20 * time.Millisecond)
}

func TestView_CloseTerminates(t *testing.T) {
	comp := &ticker{}
	v := Mount(t, comp)
	socket := v.Socket()

	v.Close()
	v.Close()

	assert.True(t, comp.terminated)
	assert.ErrorIs(t, socket.SendInfo("tick"), core.ErrSocketClosed)
}

func TestMockTransport(t *testing.T) {
	mt := NewMockTransport()
	require.True(t, mt.IsConnected())

	require.NoError(t, mt.Send(core.Message{Event: "diff"}))
	assert.True(t, mt.SentEvent("diff"))
	assert.False(t, mt.SentEvent("reply"))

	mt.SetError(errBoom)
	assert.ErrorIs(t, mt.Send(core.Message{}), errBoom)
	mt.SetError(nil)

	require.NoError(t, mt.Close())
	assert.ErrorIs(t, mt.Send(core.Message{}), core.ErrSocketClosed)
	assert.Len(t, mt.Sent(), 1)
}
