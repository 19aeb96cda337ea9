package lotofacil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seq(from, to int) Draw {
	d := make(Draw, 0, to-from+1)
	for n := from; n <= to; n++ {
		d = append(d, n)
	}
	return d
}

func sampleDraws() [HistoryDraws]Draw {
	return [HistoryDraws]Draw{
		{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15},
		{2, 3, 5, 7, 9, 11, 12, 13, 14, 16, 18, 20, 22, 24, 25},
		{1, 4, 6, 8, 10, 11, 13, 15, 17, 19, 20, 21, 23, 24, 25},
	}
}

func TestComputeStatistics_FrequenciesSumTo45(t *testing.T) {
	for _, draws := range [][HistoryDraws]Draw{
		sampleDraws(),
		{seq(1, 15), seq(1, 15), seq(1, 15)},
		{seq(11, 25), seq(1, 15), seq(6, 20)},
	} {
		st := ComputeStatistics(draws)
		sum := 0
		for _, f := range st.Frequencies {
			sum += f
		}
		assert.Equal(t, DrawSize*HistoryDraws, sum)
		assert.Len(t, st.Frequencies, MaxNumber)
		assert.InDelta(t, 15.0, st.MeanFrequency, 1e-9)
	}
}

func TestComputeStatistics_IdenticalConsecutiveDraws(t *testing.T) {
	st := ComputeStatistics([HistoryDraws]Draw{seq(1, 15), seq(1, 15), seq(1, 15)})

	for n := 1; n <= 15; n++ {
		assert.Equal(t, 3, st.Frequencies[n-1], "number %d", n)
	}
	for n := 16; n <= 25; n++ {
		assert.Equal(t, 0, st.Frequencies[n-1], "number %d", n)
	}

	assert.Equal(t, 3, st.TotalSequences)
	assert.InDelta(t, 15.0, st.MeanSequenceLength, 1e-9)

	// 1-5, 6-10, 11-15 hold 5 numbers per draw, the rest none
	require.Len(t, st.Decades, 5)
	assert.InDelta(t, 5.0, st.Decades[0].Mean, 1e-9)
	assert.InDelta(t, 5.0, st.Decades[1].Mean, 1e-9)
	assert.InDelta(t, 5.0, st.Decades[2].Mean, 1e-9)
	assert.InDelta(t, 0.0, st.Decades[3].Mean, 1e-9)
	assert.InDelta(t, 0.0, st.Decades[4].Mean, 1e-9)

	// 7 even and 8 odd numbers in 1..15
	assert.InDelta(t, 7.0, st.Even, 1e-9)
	assert.InDelta(t, 8.0, st.Odd, 1e-9)
}

func TestComputeStatistics_StableRankings(t *testing.T) {
	st := ComputeStatistics([HistoryDraws]Draw{seq(1, 15), seq(1, 15), seq(1, 15)})

	require.Len(t, st.TopTen, RankingSize)
	require.Len(t, st.BottomTen, RankingSize)

	// ties keep ascending numeric order
	for i, nf := range st.TopTen {
		assert.Equal(t, i+1, nf.Number)
		assert.Equal(t, 3, nf.Frequency)
	}
	for i, nf := range st.BottomTen {
		assert.Equal(t, 16+i, nf.Number)
		assert.Equal(t, 0, nf.Frequency)
	}
}

func TestComputeStatistics_DistinctRankingMirror(t *testing.T) {
	st := ComputeStatistics(sampleDraws())

	for i := 1; i < len(st.TopTen); i++ {
		prev, cur := st.TopTen[i-1], st.TopTen[i]
		assert.GreaterOrEqual(t, prev.Frequency, cur.Frequency)
		if prev.Frequency == cur.Frequency {
			assert.Less(t, prev.Number, cur.Number)
		}
	}
	for i := 1; i < len(st.BottomTen); i++ {
		prev, cur := st.BottomTen[i-1], st.BottomTen[i]
		assert.LessOrEqual(t, prev.Frequency, cur.Frequency)
		if prev.Frequency == cur.Frequency {
			assert.Less(t, prev.Number, cur.Number)
		}
	}
}

func TestComputeStatistics_Decimals(t *testing.T) {
	st := ComputeStatistics(sampleDraws())

	// even counts: 7 + 8 + 6 = 21
	assert.InDelta(t, 7.0, st.Even, 1e-9)
	assert.InDelta(t, 8.0, st.Odd, 1e-9)

	// decades are not rounded: 1-5 holds 5 + 3 + 2 = 10 → 3.333…
	assert.InDelta(t, 10.0/3.0, st.Decades[0].Mean, 1e-9)
	assert.Equal(t, "1-5", st.Decades[0].Label)
}

func TestConsecutiveRuns(t *testing.T) {
	tests := []struct {
		name   string
		sorted []int
		want   []int
	}{
		{name: "empty", sorted: nil, want: nil},
		{name: "no runs", sorted: []int{1, 3, 5}, want: nil},
		{name: "one run", sorted: []int{1, 2, 3, 7}, want: []int{3}},
		{name: "trailing run", sorted: []int{1, 4, 5}, want: []int{2}},
		{name: "several", sorted: []int{1, 2, 4, 5, 6, 9, 11, 12}, want: []int{2, 3, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, consecutiveRuns(tt.sorted))
		})
	}
}

func TestRoundOneDecimal(t *testing.T) {
	assert.InDelta(t, 6.7, roundOneDecimal(20.0/3.0), 1e-9)
	assert.InDelta(t, 8.3, roundOneDecimal(25.0/3.0), 1e-9)
	assert.InDelta(t, 2.5, roundOneDecimal(2.5), 1e-9)
	assert.InDelta(t, 0.0, roundOneDecimal(0), 1e-9)
}
