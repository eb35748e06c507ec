// Package insights derives summary metrics and highlights from extracted
// monthly data: year-to-date sums, forward cash windows, best and worst
// months, and reference-window averages.
//
// Every function here is pure: it takes the monthly series and any "now"
// reference as explicit arguments and returns typed numeric values. No
// locale or currency formatting happens in this package — rendering
// amounts is the caller's job.
package insights

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"finstmt/pkg/contracts/domain"
)

// YTDSummary is the year-to-date aggregate from the first period through
// the period matching "now", or the last available period when "now"
// exceeds the series.
type YTDSummary struct {
	ThroughKey    string
	Months        int
	TotalIncome   decimal.Decimal
	TotalExpense  decimal.Decimal
	NetGeneration decimal.Decimal
}

// WindowSummary describes a forward window of months: peak and trough
// cumulative cash and the largest single-period swing in either direction.
type WindowSummary struct {
	FromKey     string
	ToKey       string
	Months      int
	PeakCash    decimal.Decimal
	PeakKey     string
	TroughCash  decimal.Decimal
	TroughKey   string
	LargestGain decimal.Decimal
	GainKey     string
	LargestLoss decimal.Decimal
	LossKey     string
}

// MonthPerformance names one month and its net generation.
type MonthPerformance struct {
	PeriodKey  string
	Date       time.Time
	Generation decimal.Decimal
}

// sortedByDate returns a date-ascending copy so callers can pass series in
// any order.
func sortedByDate(ms []domain.MonthlyMetrics) []domain.MonthlyMetrics {
	out := append([]domain.MonthlyMetrics(nil), ms...)
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// YearToDate sums income, expense and generation from the first period
// through the period containing now. When now precedes the series the
// summary is empty; when it exceeds the series the whole series counts.
func YearToDate(ms []domain.MonthlyMetrics, now time.Time) YTDSummary {
	series := sortedByDate(ms)
	var sum YTDSummary
	nowKey := now.Format("2006-01")

	for _, m := range series {
		if m.PeriodKey > nowKey {
			break
		}
		sum.TotalIncome = sum.TotalIncome.Add(m.TotalIncome)
		sum.TotalExpense = sum.TotalExpense.Add(m.TotalExpense)
		sum.NetGeneration = sum.NetGeneration.Add(m.MonthlyGeneration)
		sum.ThroughKey = m.PeriodKey
		sum.Months++
	}
	return sum
}

// ForwardWindow summarizes up to months periods starting at from. Peak and
// trough are taken over cumulative cash; largest gain and loss over the
// per-month generation.
func ForwardWindow(ms []domain.MonthlyMetrics, from time.Time, months int) WindowSummary {
	series := sortedByDate(ms)
	fromKey := from.Format("2006-01")

	var sum WindowSummary
	for _, m := range series {
		if m.PeriodKey < fromKey {
			continue
		}
		if sum.Months >= months {
			break
		}
		if sum.Months == 0 {
			sum.FromKey = m.PeriodKey
			sum.PeakCash, sum.PeakKey = m.CumulativeCash, m.PeriodKey
			sum.TroughCash, sum.TroughKey = m.CumulativeCash, m.PeriodKey
			sum.LargestGain, sum.GainKey = m.MonthlyGeneration, m.PeriodKey
			sum.LargestLoss, sum.LossKey = m.MonthlyGeneration, m.PeriodKey
		} else {
			if m.CumulativeCash.GreaterThan(sum.PeakCash) {
				sum.PeakCash, sum.PeakKey = m.CumulativeCash, m.PeriodKey
			}
			if m.CumulativeCash.LessThan(sum.TroughCash) {
				sum.TroughCash, sum.TroughKey = m.CumulativeCash, m.PeriodKey
			}
			if m.MonthlyGeneration.GreaterThan(sum.LargestGain) {
				sum.LargestGain, sum.GainKey = m.MonthlyGeneration, m.PeriodKey
			}
			if m.MonthlyGeneration.LessThan(sum.LargestLoss) {
				sum.LargestLoss, sum.LossKey = m.MonthlyGeneration, m.PeriodKey
			}
		}
		sum.ToKey = m.PeriodKey
		sum.Months++
	}
	return sum
}

// BestWorstMonth returns the months with the highest and lowest net
// generation. ok is false for an empty series.
func BestWorstMonth(ms []domain.MonthlyMetrics) (best, worst MonthPerformance, ok bool) {
	series := sortedByDate(ms)
	if len(series) == 0 {
		return MonthPerformance{}, MonthPerformance{}, false
	}

	bestM, worstM := series[0], series[0]
	for _, m := range series[1:] {
		if m.MonthlyGeneration.GreaterThan(bestM.MonthlyGeneration) {
			bestM = m
		}
		if m.MonthlyGeneration.LessThan(worstM.MonthlyGeneration) {
			worstM = m
		}
	}
	best = MonthPerformance{PeriodKey: bestM.PeriodKey, Date: bestM.Date, Generation: bestM.MonthlyGeneration}
	worst = MonthPerformance{PeriodKey: worstM.PeriodKey, Date: worstM.Date, Generation: worstM.MonthlyGeneration}
	return best, worst, true
}

// ReferenceAverage averages net generation over the window months strictly
// preceding current. ok is false when no preceding month falls in the
// window.
func ReferenceAverage(ms []domain.MonthlyMetrics, current time.Time, window int) (decimal.Decimal, bool) {
	series := sortedByDate(ms)
	currentKey := current.Format("2006-01")

	var candidates []domain.MonthlyMetrics
	for _, m := range series {
		if m.PeriodKey < currentKey {
			candidates = append(candidates, m)
		}
	}
	if len(candidates) == 0 || window <= 0 {
		return decimal.Zero, false
	}
	if len(candidates) > window {
		candidates = candidates[len(candidates)-window:]
	}

	sum := decimal.Zero
	for _, m := range candidates {
		sum = sum.Add(m.MonthlyGeneration)
	}
	return sum.Div(decimal.NewFromInt(int64(len(candidates)))), true
}
