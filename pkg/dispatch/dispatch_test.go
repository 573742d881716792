package dispatch

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tinyland-inc/picobuttons/pkg/host"
	"github.com/tinyland-inc/picobuttons/pkg/metrics"
	"github.com/tinyland-inc/picobuttons/pkg/registry"
)

type recordingUI struct{ replies []string }

func (u *recordingUI) Reply(text string) error {
	u.replies = append(u.replies, text)
	return nil
}

func TestDispatch_Local(t *testing.T) {
	reg := registry.New()
	m := metrics.New(prometheus.NewRegistry())
	reg.Register("-1--1", "m1", func(msg *host.Message, ui host.UIContainer) {
		_ = ui.Reply("pressed on " + msg.ID())
	})

	ui := &recordingUI{}
	res, err := New(reg, nil, m).Dispatch(context.Background(), host.NewMessage("m1", "c1", ""), "-1--1", ui)
	require.NoError(t, err)
	assert.Equal(t, ResultLocal, res)
	assert.Equal(t, []string{"pressed on m1"}, ui.replies)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Presses.WithLabelValues("local")))
}

func TestDispatch_ForwardsUnknownIDs(t *testing.T) {
	var forwarded string
	fb := FallbackFunc(func(_ context.Context, _ *host.Message, id string) error {
		forwarded = id
		return nil
	})

	res, err := New(registry.New(), fb, nil).Dispatch(context.Background(), nil, "12345", nil)
	require.NoError(t, err)
	assert.Equal(t, ResultForwarded, res)
	assert.Equal(t, "12345", forwarded)
}

func TestDispatch_ForwardError(t *testing.T) {
	boom := errors.New("server down")
	fb := FallbackFunc(func(context.Context, *host.Message, string) error { return boom })

	res, err := New(registry.New(), fb, nil).Dispatch(context.Background(), nil, "12345", nil)
	assert.Equal(t, ResultFailed, res)
	assert.ErrorIs(t, err, boom)
}

func TestDispatch_Unhandled(t *testing.T) {
	res, err := New(registry.New(), nil, nil).Dispatch(context.Background(), nil, "nope", nil)
	require.NoError(t, err)
	assert.Equal(t, ResultUnhandled, res)
}

func TestDispatch_PanicContained(t *testing.T) {
	reg := registry.New()
	reg.Register("id", "m1", func(*host.Message, host.UIContainer) { panic("bad handler") })

	var (
		res Result
		err error
	)
	assert.NotPanics(t, func() {
		res, err = New(reg, nil, nil).Dispatch(context.Background(), host.NewMessage("m1", "c", ""), "id", nil)
	})
	assert.Equal(t, ResultFailed, res)
	assert.Error(t, err)
}
