package idx

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewProducesValidSortedIDs(t *testing.T) {
	t.Parallel()

	a := New()
	b := New()

	_, err := Parse(a.String())
	require.NoError(t, err)
	_, err = Parse(b.String())
	require.NoError(t, err)

	// Monotonic source: ids generated in sequence must sort in sequence.
	require.Less(t, a.String(), b.String())
}

func TestParseRejectsMalformedInput(t *testing.T) {
	t.Parallel()

	for _, s := range []string{"", "   ", "not-a-ulid", "0000"} {
		_, err := Parse(s)
		require.ErrorIs(t, err, ErrInvalid)
	}
}

func TestTimeRoundTrip(t *testing.T) {
	t.Parallel()

	at := time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)
	id := NewAt(at)

	require.WithinDuration(t, at, id.Time(), time.Millisecond)
	require.True(t, Zero.Time().IsZero())
}
