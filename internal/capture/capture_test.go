package capture

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"plate-stabilizer/internal/domain/plate"
)

const recorded = `{"index": 3, "regions": [{"box": {"x1": 1, "y1": 2, "x2": 30, "y2": 40}, "chars": [{"class_id": 44, "center_x": 5}, {"class_id": 1, "center_x": 9}]}]}

{"regions": []}
`

func TestReplaySource_ReadsFramesUntilEOF(t *testing.T) {
	src := NewReplaySource(strings.NewReader(recorded))
	ctx := context.Background()

	f, err := src.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), f.Index)
	require.Len(t, f.Regions, 1)
	assert.Equal(t, 30, f.Regions[0].Box.X2)
	assert.Equal(t, 44, f.Regions[0].Chars[0].ClassID)
	assert.False(t, f.CapturedAt.IsZero())

	f, err = src.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), f.Index)
	assert.Empty(t, f.Regions)

	_, err = src.Read(ctx)
	assert.ErrorIs(t, err, io.EOF)
	assert.NoError(t, src.Close())
}

func TestReplaySource_MalformedLine(t *testing.T) {
	src := NewReplaySource(strings.NewReader("{not json}\n"))
	_, err := src.Read(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 1")
}

func TestReplaySource_CancelledContext(t *testing.T) {
	src := NewReplaySource(strings.NewReader(recorded))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := src.Read(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestHandoffSource_DropsWhenNobodyWaits(t *testing.T) {
	h := NewHandoffSource()
	assert.False(t, h.Offer(plate.Frame{Index: 1}))
}

func TestHandoffSource_DeliversToWaitingReader(t *testing.T) {
	h := NewHandoffSource()
	got := make(chan plate.Frame, 1)
	go func() {
		f, err := h.Read(context.Background())
		if err == nil {
			got <- f
		}
	}()

	require.Eventually(t, func() bool {
		return h.Offer(plate.Frame{Index: 7})
	}, time.Second, time.Millisecond)

	select {
	case f := <-got:
		assert.Equal(t, int64(7), f.Index)
	case <-time.After(time.Second):
		t.Fatal("frame was not delivered")
	}
}

func TestHandoffSource_CloseEndsRead(t *testing.T) {
	h := NewHandoffSource()
	require.NoError(t, h.Close())
	require.NoError(t, h.Close())

	_, err := h.Read(context.Background())
	assert.ErrorIs(t, err, io.EOF)
	assert.False(t, h.Offer(plate.Frame{}))
}
