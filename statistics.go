package lotofacil

import (
	"sort"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// FrequencyTable counts how often each number appears, indexed by number (index 0 unused)
type FrequencyTable [MaxNumber + 1]int

// Sum returns the total number of occurrences
func (ft FrequencyTable) Sum() int { return lo.Sum(ft[MinNumber:]) }

// Mean returns the average per-draw occurrence count, sum / 3
func (ft FrequencyTable) Mean() float64 { return float64(ft.Sum()) / float64(HistoryDraws) }

// NumberFrequency pairs a number with its frequency
type NumberFrequency struct {
	Number    int `json:"number"`
	Frequency int `json:"frequency"`
}

// DecadeBucket is one of the five fixed ranges with its mean occurrences per draw
type DecadeBucket struct {
	Label string  `json:"label"`
	Low   int     `json:"low"`
	High  int     `json:"high"`
	Mean  float64 `json:"mean"`
}

// Statistics is a read-only snapshot derived from the three reference draws
type Statistics struct {
	Frequencies        []int             `json:"frequencies"` // position i holds the count of number i+1
	MeanFrequency      float64           `json:"mean_frequency"`
	TopTen             []NumberFrequency `json:"top_ten"`
	BottomTen          []NumberFrequency `json:"bottom_ten"`
	Decades            []DecadeBucket    `json:"decades"`
	Even               float64           `json:"even"`
	Odd                float64           `json:"odd"`
	TotalSequences     int               `json:"total_sequences"`
	MeanSequenceLength float64           `json:"mean_sequence_length"`
}

var decadeRanges = [...]struct {
	label     string
	low, high int
}{
	{"1-5", 1, 5},
	{"6-10", 6, 10},
	{"11-15", 11, 15},
	{"16-20", 16, 20},
	{"21-25", 21, 25},
}

// CountFrequencies builds the frequency table over the given draws, ignoring out-of-range values
func CountFrequencies(draws [HistoryDraws]Draw) FrequencyTable {
	var ft FrequencyTable
	for _, d := range draws {
		for _, n := range d {
			if n >= MinNumber && n <= MaxNumber {
				ft[n]++
			}
		}
	}
	return ft
}

// ComputeStatistics derives frequency rankings and distribution metrics from three draws.
// Input is assumed valid.
func ComputeStatistics(draws [HistoryDraws]Draw) *Statistics {
	ft := CountFrequencies(draws)

	ranked := lo.Map(allNumbers(), func(n int, _ int) NumberFrequency {
		return NumberFrequency{Number: n, Frequency: ft[n]}
	})

	top := make([]NumberFrequency, len(ranked))
	copy(top, ranked)
	sort.SliceStable(top, func(i, j int) bool { return top[i].Frequency > top[j].Frequency })

	bottom := make([]NumberFrequency, len(ranked))
	copy(bottom, ranked)
	sort.SliceStable(bottom, func(i, j int) bool { return bottom[i].Frequency < bottom[j].Frequency })

	var (
		decadeCounts [len(decadeRanges)]int
		even, odd    int
		runs         []int
	)

	for _, d := range draws {
		sorted := d.Sorted()
		for _, n := range sorted {
			for i, r := range decadeRanges {
				if n >= r.low && n <= r.high {
					decadeCounts[i]++
					break
				}
			}
			if n%2 == 0 {
				even++
			} else {
				odd++
			}
		}
		runs = append(runs, consecutiveRuns(sorted)...)
	}

	decades := make([]DecadeBucket, len(decadeRanges))
	for i, r := range decadeRanges {
		decades[i] = DecadeBucket{
			Label: r.label,
			Low:   r.low,
			High:  r.high,
			Mean:  float64(decadeCounts[i]) / HistoryDraws,
		}
	}

	var meanRun float64
	if len(runs) > 0 {
		meanRun = roundOneDecimal(float64(lo.Sum(runs)) / float64(len(runs)))
	}

	return &Statistics{
		Frequencies:        append([]int(nil), ft[MinNumber:]...),
		MeanFrequency:      ft.Mean(),
		TopTen:             top[:RankingSize],
		BottomTen:          bottom[:RankingSize],
		Decades:            decades,
		Even:               roundOneDecimal(float64(even) / HistoryDraws),
		Odd:                roundOneDecimal(float64(odd) / HistoryDraws),
		TotalSequences:     len(runs),
		MeanSequenceLength: meanRun,
	}
}

// consecutiveRuns returns the length of every maximal run (length >= 2) of consecutive numbers
// in an ascending slice
func consecutiveRuns(sorted []int) []int {
	if len(sorted) == 0 {
		return nil
	}

	var runs []int
	length := 1
	for i := 1; i < len(sorted); i++ {
		if sorted[i] == sorted[i-1]+1 {
			length++
			continue
		}
		if length >= 2 {
			runs = append(runs, length)
		}
		length = 1
	}
	if length >= 2 {
		runs = append(runs, length)
	}
	return runs
}

func roundOneDecimal(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(1).Float64()
	return f
}
