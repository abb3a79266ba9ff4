package statistics

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// SettlementResult is one player's outcome for one settled round
type SettlementResult struct {
	Room     string
	Round    int
	Result   string // win, loss, tie or bankrupt
	Category string // selector kind for wagers, choice for duel throws
	Staked   int
	Delta    int
	Bailout  int
}

// CategoryStats tracks statistics for one bet category
type CategoryStats struct {
	Settlements int
	Sum         float64
	SumSquares  float64
}

// Statistics tracks settlement results across a simulation
type Statistics struct {
	Settlements int
	Sum         float64
	SumSquares  float64   // Sum of squares for variance calculation
	Values      []float64 // Store all values for median/percentile calculation

	Wins         int
	Losses       int
	Ties         int
	Bankruptcies int

	WinDelta  float64 // Delta from winning settlements
	LossDelta float64 // Delta from losing and bankrupt settlements
	AllDelta  float64 // Total delta for sanity check

	Staked   int
	Bailouts int

	Categories map[string]*CategoryStats

	BiggestWin  int
	BiggestLoss int
}

// Mean returns the arithmetic mean balance change per settlement
func (s *Statistics) Mean() float64 {
	if len(s.Values) == 0 {
		return 0
	}
	return stat.Mean(s.Values, nil)
}

// Variance returns the sample variance of all results
func (s *Statistics) Variance() float64 {
	if len(s.Values) < 2 {
		return 0
	}
	return stat.Variance(s.Values, nil)
}

// StdDev returns the sample standard deviation of all results
func (s *Statistics) StdDev() float64 {
	return math.Sqrt(s.Variance())
}

// StdError returns the standard error of the mean
func (s *Statistics) StdError() float64 {
	if s.Settlements == 0 {
		return 0
	}
	return s.StdDev() / math.Sqrt(float64(s.Settlements))
}

// ConfidenceInterval95 returns the 95% confidence interval for the mean,
// using the t-distribution so small simulations are not overconfident.
func (s *Statistics) ConfidenceInterval95() (float64, float64) {
	mean := s.Mean()
	if s.Settlements < 2 {
		return mean, mean
	}

	tDist := distuv.StudentsT{
		Nu:    float64(s.Settlements - 1),
		Mu:    0,
		Sigma: 1,
	}
	// Two-tailed 95% CI uses 97.5th percentile
	margin := tDist.Quantile(0.975) * s.StdError()
	return mean - margin, mean + margin
}

// ReturnToPlayer is the share of staked money paid back, 1.0 being even.
func (s *Statistics) ReturnToPlayer() float64 {
	if s.Staked == 0 {
		return 0
	}
	return (float64(s.Staked) + s.AllDelta) / float64(s.Staked)
}

// Add incorporates a settlement into the statistics
func (s *Statistics) Add(result SettlementResult) {
	delta := float64(result.Delta)
	s.Settlements++
	s.Sum += delta
	s.SumSquares += delta * delta
	s.Values = append(s.Values, delta)
	s.Staked += result.Staked
	s.Bailouts += result.Bailout

	switch result.Result {
	case "win":
		s.Wins++
		s.WinDelta += delta
	case "loss":
		s.Losses++
		s.LossDelta += delta
	case "bankrupt":
		s.Bankruptcies++
		s.LossDelta += delta
	case "tie":
		s.Ties++
	}
	s.AllDelta += delta

	if result.Category != "" {
		if s.Categories == nil {
			s.Categories = make(map[string]*CategoryStats)
		}
		cs, ok := s.Categories[result.Category]
		if !ok {
			cs = &CategoryStats{}
			s.Categories[result.Category] = cs
		}
		cs.Settlements++
		cs.Sum += delta
		cs.SumSquares += delta * delta
	}

	if result.Delta > s.BiggestWin {
		s.BiggestWin = result.Delta
	}
	if result.Delta < s.BiggestLoss {
		s.BiggestLoss = result.Delta
	}
}

// Median returns the median value of all results
func (s *Statistics) Median() float64 {
	return s.Percentile(0.5)
}

// Percentile returns the value at the given percentile (0.0 to 1.0)
func (s *Statistics) Percentile(p float64) float64 {
	if len(s.Values) == 0 {
		return 0
	}
	sorted := make([]float64, len(s.Values))
	copy(sorted, s.Values)
	sort.Float64s(sorted)

	index := p * float64(len(sorted)-1)
	lower := int(index)
	upper := lower + 1

	if upper >= len(sorted) {
		return sorted[len(sorted)-1]
	}

	weight := index - float64(lower)
	return sorted[lower]*(1-weight) + sorted[upper]*weight
}

// CategoryMean returns the mean result for one category
func (s *Statistics) CategoryMean(category string) float64 {
	cs, ok := s.Categories[category]
	if !ok || cs.Settlements == 0 {
		return 0
	}
	return cs.Sum / float64(cs.Settlements)
}

// CategoryNames returns the recorded categories in sorted order
func (s *Statistics) CategoryNames() []string {
	names := make([]string, 0, len(s.Categories))
	for name := range s.Categories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsLedgerBalanced checks if the accounting is consistent
func (s *Statistics) IsLedgerBalanced() bool {
	return math.Abs(s.AllDelta-s.WinDelta-s.LossDelta) <= 1e-6
}

// Validate performs comprehensive validation of statistics data
func (s *Statistics) Validate() error {
	if !s.IsLedgerBalanced() {
		return fmt.Errorf("ledger mismatch: AllDelta=%.2f, WinDelta=%.2f, LossDelta=%.2f",
			s.AllDelta, s.WinDelta, s.LossDelta)
	}

	if s.Settlements <= 0 {
		return fmt.Errorf("invalid settlement count: %d", s.Settlements)
	}

	if len(s.Values) != s.Settlements {
		return fmt.Errorf("values array length (%d) does not match settlement count (%d)",
			len(s.Values), s.Settlements)
	}

	outcomes := s.Wins + s.Losses + s.Ties + s.Bankruptcies
	if outcomes != s.Settlements {
		return fmt.Errorf("outcome total (%d) does not match settlement count (%d)", outcomes, s.Settlements)
	}

	if len(s.Categories) > 0 {
		total := 0
		for _, cs := range s.Categories {
			total += cs.Settlements
		}
		if total != s.Settlements {
			return fmt.Errorf("category total (%d) does not match settlement count (%d)", total, s.Settlements)
		}
	}

	return nil
}
