package lotofacil

import (
	"fmt"
	"math"
	"slices"

	"github.com/samber/lo"
)

// Generator produces weighted games from the statistics of the reference draws
type Generator struct {
	random RandomGenerator
}

// NewGenerator creates a generator; a nil random source selects SecureRandomGenerator
func NewGenerator(random RandomGenerator) *Generator {
	if random == nil {
		random = NewSecureRandomGenerator()
	}
	return &Generator{random: random}
}

// candidate is one eligible number with its selection weight
type candidate struct {
	number int
	weight int
}

// GenerateRequest is the batch input of GenerateGames
type GenerateRequest struct {
	Draws    [HistoryDraws]Draw `json:"draws"`
	Current  Draw               `json:"current_result"`
	Mode     Mode               `json:"mode"`
	Quantity int                `json:"quantity"`
	Exclude  NumberSet          `json:"-"`
	Include  NumberSet          `json:"-"`
}

// Validate checks every precondition of a batch, reporting the first violation
func (r *GenerateRequest) Validate() error {
	for i, d := range r.Draws {
		if err := d.Validate(); err != nil {
			return withField(err, fmt.Sprintf("draw%d", i+1))
		}
	}
	if err := r.Current.Validate(); err != nil {
		return withField(err, "current_result")
	}
	if err := ValidateQuantity(r.Quantity); err != nil {
		return err
	}
	if !r.Mode.Valid() {
		return ErrInvalidMode.WithDetails(fmt.Sprintf("%q", r.Mode))
	}
	if err := r.Exclude.Validate(); err != nil {
		return withField(err, "exclude")
	}
	if err := r.Include.Validate(); err != nil {
		return withField(err, "include")
	}
	return nil
}

// GenerateResult holds the games of one batch and the statistics they were drawn from
type GenerateResult struct {
	Games      []Draw      `json:"games"`
	Statistics *Statistics `json:"statistics"`
}

// GenerateGames validates a batch, computes the statistics once and runs the
// generator Quantity times sequentially.
func GenerateGames(req GenerateRequest, gen *Generator) (*GenerateResult, error) {
	if gen == nil {
		gen = NewGenerator(nil)
	}
	if req.Mode == "" {
		req.Mode = ModeBalanced
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	ft := CountFrequencies(req.Draws)
	games := make([]Draw, 0, req.Quantity)
	for range req.Quantity {
		game, err := gen.generate(ft, req.Current, req.Mode, req.Exclude, req.Include)
		if err != nil {
			return nil, err
		}
		games = append(games, game)
	}

	return &GenerateResult{
		Games:      games,
		Statistics: ComputeStatistics(req.Draws),
	}, nil
}

// Generate draws one game of 15 numbers, sorted ascending and disjoint from exclude.
// Inputs are assumed valid; use GenerateGames for the validated entry point.
func (g *Generator) Generate(
	draws [HistoryDraws]Draw,
	current Draw,
	mode Mode,
	exclude, include NumberSet,
) (Draw, error) {
	return g.generate(CountFrequencies(draws), current, mode, exclude, include)
}

func (g *Generator) generate(ft FrequencyTable, current Draw, mode Mode, exclude, include NumberSet) (Draw, error) {
	pool := buildCandidates(ft, current, mode, exclude, include)
	if len(pool) < DrawSize {
		return nil, ErrInsufficientCandidates.
			WithDetails(fmt.Sprintf("%d candidates left, %d required", len(pool), DrawSize)).
			WithMetadata("candidates", len(pool))
	}

	game := make(Draw, 0, DrawSize)
	for range DrawSize {
		idx, err := g.pick(pool)
		if err != nil {
			return nil, err
		}
		game = append(game, pool[idx].number)
		pool = slices.Delete(pool, idx, idx+1)
	}

	slices.Sort(game)
	return game, nil
}

// buildCandidates weighs every number of 1..25 not in exclude
func buildCandidates(ft FrequencyTable, current Draw, mode Mode, exclude, include NumberSet) []candidate {
	w := mode.Weights()
	mean := ft.Mean()

	pool := make([]candidate, 0, MaxNumber)
	for _, n := range allNumbers() {
		if exclude.Has(n) {
			continue
		}

		weight := 1
		if include.Has(n) {
			weight += IncludeBonus
		}
		if !current.Contains(n) {
			weight += w.NotInResult
		}

		f := float64(ft[n])
		if f > mean {
			weight += int(math.Floor((f - mean) * float64(w.AboveMean)))
		} else if mode == ModeAggressive && f < mean {
			weight += int(math.Floor((mean - f) * float64(w.BelowMean)))
		}

		pool = append(pool, candidate{number: n, weight: weight})
	}
	return pool
}

// pick returns the index of one candidate chosen with probability proportional to its weight
func (g *Generator) pick(pool []candidate) (int, error) {
	sum := lo.SumBy(pool, func(c candidate) int { return c.weight })

	// 权重全为零时均匀选择
	if sum <= 0 {
		idx, err := g.random.GenerateInRange(0, len(pool)-1)
		if err != nil {
			return 0, ErrRandomSource.WithCause(err)
		}
		return idx, nil
	}

	f, err := g.random.GenerateFloat()
	if err != nil {
		return 0, ErrRandomSource.WithCause(err)
	}
	r := f * float64(sum)

	running := 0
	for i, c := range pool {
		running += c.weight
		if float64(running) > r {
			return i, nil
		}
	}

	// Fallback to the last candidate on floating point edge cases
	return len(pool) - 1, nil
}
