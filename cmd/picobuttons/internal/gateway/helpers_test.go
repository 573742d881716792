package gateway

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/tinyland-inc/picobuttons/pkg/buttons"
	"github.com/tinyland-inc/picobuttons/pkg/dispatch"
	"github.com/tinyland-inc/picobuttons/pkg/host"
	"github.com/tinyland-inc/picobuttons/pkg/ids"
	"github.com/tinyland-inc/picobuttons/pkg/registry"
)

func newTestPipeline(t *testing.T) *pipeline {
	t.Helper()
	p := newPipeline(buttons.Options{Allocator: ids.NewAllocator()}, nil)
	t.Cleanup(p.updates.Close)
	return p
}

func TestParseLabels(t *testing.T) {
	labels, ok := parseLabels("!buttons Yes | No|  | Maybe later ")
	require.True(t, ok)
	assert.Equal(t, []string{"Yes", "No", "Maybe later"}, labels)

	_, ok = parseLabels("!buttons  | ")
	assert.False(t, ok)

	_, ok = parseLabels("hello")
	assert.False(t, ok)
}

func TestNewPipeline_OwnRegistry(t *testing.T) {
	a, b := newTestPipeline(t), newTestPipeline(t)
	assert.NotSame(t, a.api.Registry(), b.api.Registry())
	assert.NotSame(t, registry.Default(), a.api.Registry())
}

func TestPipeline_PostButtons(t *testing.T) {
	p := newTestPipeline(t)
	msg := host.NewMessage("m1", "c1", prompt)
	p.postButtons(msg, []string{"Yes", "No"})

	got, err := p.store.Get("m1")
	require.NoError(t, err)
	btns := got.Buttons()
	require.Len(t, btns, 2)
	assert.Equal(t, "Yes", btns[0].Label())
	assert.Equal(t, "No", btns[1].Label())

	ui := &recordingUI{}
	res, err := p.dispatcher.Dispatch(context.Background(), got, btns[1].CustomID(), ui)
	require.NoError(t, err)
	assert.Equal(t, dispatch.ResultLocal, res)
	assert.Equal(t, []string{"You chose No"}, ui.replies)
}

func TestPipeline_Drop(t *testing.T) {
	p := newTestPipeline(t)
	ctx, cancel := context.WithCancel(context.Background())
	g, gctx := errgroup.WithContext(ctx)
	p.run(gctx, g)

	p.postButtons(host.NewMessage("m1", "c1", prompt), []string{"Yes"})
	require.Equal(t, 1, p.api.Registry().Len())

	p.drop(ctx, "m1")
	p.drop(ctx, "m1")
	assert.Empty(t, p.store.IDs())
	assert.Eventually(t, func() bool { return p.api.Registry().Len() == 0 }, time.Second, 5*time.Millisecond)

	cancel()
	require.NoError(t, g.Wait())
}

func TestNewGatewayCommand(t *testing.T) {
	cmd := NewGatewayCommand()
	require.NotNil(t, cmd)

	assert.Equal(t, "gateway", cmd.Use)
	assert.Equal(t, []string{"g"}, cmd.Aliases)
	assert.NotNil(t, cmd.RunE)
	assert.NotNil(t, cmd.Flags().Lookup("debug"))
}

type recordingUI struct {
	replies []string
}

func (r *recordingUI) Reply(text string) error {
	r.replies = append(r.replies, text)
	return nil
}

var _ host.UIContainer = (*recordingUI)(nil)
