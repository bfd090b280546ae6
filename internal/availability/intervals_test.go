package availability

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(offset int) time.Time {
	base := time.Date(2026, time.September, 1, 0, 0, 0, 0, time.UTC)
	return base.AddDate(0, 0, offset)
}

func iv(start, end int) Interval {
	return Interval{Start: day(start), End: day(end)}
}

func TestMergeCollapsesOverlappingAndTouching(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		in   []Interval
		want []Interval
	}{
		{
			name: "empty",
			in:   nil,
			want: nil,
		},
		{
			name: "disjoint stay separate",
			in:   []Interval{iv(5, 7), iv(0, 2)},
			want: []Interval{iv(0, 2), iv(5, 7)},
		},
		{
			name: "overlapping collapse",
			in:   []Interval{iv(0, 4), iv(2, 6)},
			want: []Interval{iv(0, 6)},
		},
		{
			name: "touching collapse",
			in:   []Interval{iv(0, 3), iv(3, 5)},
			want: []Interval{iv(0, 5)},
		},
		{
			name: "contained interval absorbed",
			in:   []Interval{iv(0, 10), iv(2, 4), iv(6, 8)},
			want: []Interval{iv(0, 10)},
		},
		{
			name: "inverted input dropped",
			in:   []Interval{iv(4, 2), iv(0, 1)},
			want: []Interval{iv(0, 1)},
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, Merge(tc.in))
		})
	}
}

func TestFreeSlicesSubtractsBusyRuns(t *testing.T) {
	t.Parallel()

	window := iv(0, 10)

	free := FreeSlices(window, []Interval{iv(2, 4), iv(6, 7)})
	assert.Equal(t, []Interval{iv(0, 2), iv(4, 6), iv(7, 10)}, free)

	assert.Equal(t, []Interval{window}, FreeSlices(window, nil))
	assert.Empty(t, FreeSlices(window, []Interval{iv(0, 10)}))
	assert.Empty(t, FreeSlices(window, []Interval{iv(-5, 20)}))
	assert.Empty(t, FreeSlices(iv(4, 4), []Interval{iv(0, 2)}), "empty window has no free slices")
}

func TestFreeSlicesClipsBusyToWindow(t *testing.T) {
	t.Parallel()

	free := FreeSlices(iv(2, 8), []Interval{iv(0, 3), iv(7, 12)})
	assert.Equal(t, []Interval{iv(3, 7)}, free)
}

func TestTouchingEndpointsDoNotOverlap(t *testing.T) {
	t.Parallel()

	a := iv(0, 3)
	b := iv(3, 6)
	assert.False(t, a.Overlaps(b), "back-to-back bookings must be allowed")
	assert.True(t, a.Touches(b))
	assert.True(t, iv(0, 4).Overlaps(iv(3, 6)))
}

// Free slices plus the busy runs clipped to the window must reconstruct the
// window exactly, with no gaps and no double coverage.
func TestFreeSlicesReconstructWindow(t *testing.T) {
	t.Parallel()

	window := iv(0, 30)
	busySets := [][]Interval{
		{},
		{iv(0, 30)},
		{iv(-3, 2), iv(5, 9), iv(9, 14), iv(20, 40)},
		{iv(1, 2), iv(3, 4), iv(5, 6), iv(7, 8)},
		{iv(10, 20), iv(12, 18), iv(19, 21)},
	}

	for _, busy := range busySets {
		free := FreeSlices(window, busy)

		clipped := make([]Interval, 0, len(busy))
		for _, b := range busy {
			start := maxTime(window.Start, b.Start)
			end := minTime(window.End, b.End)
			if start.Before(end) {
				clipped = append(clipped, Interval{Start: start, End: end})
			}
		}

		pieces := Merge(append(append([]Interval{}, free...), clipped...))
		require.Len(t, pieces, 1, "window must be covered without gaps: %v", busy)
		assert.True(t, pieces[0].Start.Equal(window.Start))
		assert.True(t, pieces[0].End.Equal(window.End))

		for i := 1; i < len(free); i++ {
			assert.False(t, free[i-1].Overlaps(free[i]), "free slices must be disjoint")
			assert.True(t, free[i-1].End.Before(free[i].Start) || free[i-1].End.Equal(free[i].Start),
				"free slices must be ordered")
		}
	}
}
