package billing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func closed(start, end time.Time) BlockingInterval {
	return BlockingInterval{Start: start, End: &end}
}

func open(start time.Time) BlockingInterval {
	return BlockingInterval{Start: start}
}

func TestMergeBlockingIntervals(t *testing.T) {
	jan15 := date(2026, time.January, 15)
	jan18 := date(2026, time.January, 18)
	jan20 := date(2026, time.January, 20)
	jan25 := date(2026, time.January, 25)
	feb1 := date(2026, time.February, 1)
	feb10 := date(2026, time.February, 10)

	tests := []struct {
		name string
		in   []BlockingInterval
		want []BlockingInterval
	}{
		{
			name: "empty",
			in:   nil,
			want: nil,
		},
		{
			name: "single passes through",
			in:   []BlockingInterval{closed(jan15, feb1)},
			want: []BlockingInterval{closed(jan15, feb1)},
		},
		{
			name: "overlapping intervals merge into one",
			in:   []BlockingInterval{closed(jan18, jan25), closed(jan20, feb10)},
			want: []BlockingInterval{closed(jan18, feb10)},
		},
		{
			name: "identical intervals collapse",
			in:   []BlockingInterval{closed(jan20, feb1), closed(jan20, feb1)},
			want: []BlockingInterval{closed(jan20, feb1)},
		},
		{
			name: "contained interval disappears",
			in:   []BlockingInterval{closed(jan15, feb10), closed(jan20, jan25)},
			want: []BlockingInterval{closed(jan15, feb10)},
		},
		{
			name: "disjoint intervals stay separate",
			in:   []BlockingInterval{closed(feb1, feb10), closed(jan15, jan18)},
			want: []BlockingInterval{closed(jan15, jan18), closed(feb1, feb10)},
		},
		{
			name: "touching intervals merge",
			in:   []BlockingInterval{closed(jan15, jan20), closed(jan20, feb1)},
			want: []BlockingInterval{closed(jan15, feb1)},
		},
		{
			name: "open interval absorbs later ones",
			in:   []BlockingInterval{open(jan18), closed(jan20, feb10)},
			want: []BlockingInterval{open(jan18)},
		},
		{
			name: "closed interval extended open by overlap",
			in:   []BlockingInterval{closed(jan15, jan25), open(jan20)},
			want: []BlockingInterval{open(jan15)},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := MergeBlockingIntervals(tc.in)
			require.Len(t, got, len(tc.want))
			for i := range tc.want {
				assert.True(t, got[i].Start.Equal(tc.want[i].Start),
					"start: want %s got %s", tc.want[i].Start, got[i].Start)
				if tc.want[i].End == nil {
					assert.Nil(t, got[i].End)
				} else {
					require.NotNil(t, got[i].End)
					assert.True(t, got[i].End.Equal(*tc.want[i].End),
						"end: want %s got %s", tc.want[i].End, got[i].End)
				}
			}
		})
	}
}

func TestMergeBlockingIntervalsDoesNotMutateInput(t *testing.T) {
	jan18 := date(2026, time.January, 18)
	jan25 := date(2026, time.January, 25)
	feb10 := date(2026, time.February, 10)

	in := []BlockingInterval{
		closed(date(2026, time.January, 20), feb10),
		closed(jan18, jan25),
	}

	MergeBlockingIntervals(in)

	assert.True(t, in[0].Start.Equal(date(2026, time.January, 20)))
	assert.True(t, in[0].End.Equal(feb10))
	assert.True(t, in[1].Start.Equal(jan18))
	assert.True(t, in[1].End.Equal(jan25))
}
