package queue

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDedupSeenAndMark(t *testing.T) {
	w := newDedupWindow(time.Minute)

	// Seen never records: repeated checks of an unmarked id stay false.
	require.False(t, w.Seen("req-1"))
	require.False(t, w.Seen("req-1"))

	w.Mark("req-1")
	require.True(t, w.Seen("req-1"))
	require.False(t, w.Seen("req-2"))

	// Empty ids are never deduplicated.
	w.Mark("")
	require.False(t, w.Seen(""))
}

func TestDedupExpiry(t *testing.T) {
	w := newDedupWindow(time.Minute)

	base := time.Now()
	w.now = func() time.Time { return base }
	w.Mark("req-1")

	w.now = func() time.Time { return base.Add(30 * time.Second) }
	require.True(t, w.Seen("req-1"))

	w.now = func() time.Time { return base.Add(2 * time.Minute) }
	require.False(t, w.Seen("req-1"))
}
