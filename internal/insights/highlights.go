package insights

import (
	"time"

	"github.com/shopspring/decimal"

	"finstmt/pkg/contracts/domain"
)

// HighlightKind classifies a highlight for rendering.
type HighlightKind string

const (
	HighlightBestMonth   HighlightKind = "best_month"
	HighlightWorstMonth  HighlightKind = "worst_month"
	HighlightPeakCash    HighlightKind = "peak_cash"
	HighlightTroughCash  HighlightKind = "trough_cash"
	HighlightLargestGain HighlightKind = "largest_gain"
	HighlightLargestLoss HighlightKind = "largest_loss"
	HighlightYTD         HighlightKind = "ytd_generation"
)

// Highlight pairs a human-readable caption with its typed value. The
// caption names the month; the amount stays numeric so the caller can
// format it with the right currency and locale.
type Highlight struct {
	Kind      HighlightKind   `json:"kind"`
	PeriodKey string          `json:"period_key"`
	Caption   string          `json:"caption"`
	Amount    decimal.Decimal `json:"amount"`
}

// Highlights derives the standard highlight set from a monthly series: the
// year-to-date position, the best and worst months, and the shape of the
// next six months from now.
func Highlights(ms []domain.MonthlyMetrics, now time.Time) []Highlight {
	if len(ms) == 0 {
		return nil
	}

	var out []Highlight

	ytd := YearToDate(ms, now)
	if ytd.Months > 0 {
		out = append(out, Highlight{
			Kind:      HighlightYTD,
			PeriodKey: ytd.ThroughKey,
			Caption:   "net cash generated year to date through " + monthName(ytd.ThroughKey),
			Amount:    ytd.NetGeneration,
		})
	}

	if best, worst, ok := BestWorstMonth(ms); ok {
		out = append(out,
			Highlight{
				Kind:      HighlightBestMonth,
				PeriodKey: best.PeriodKey,
				Caption:   "best performing month was " + monthName(best.PeriodKey),
				Amount:    best.Generation,
			},
			Highlight{
				Kind:      HighlightWorstMonth,
				PeriodKey: worst.PeriodKey,
				Caption:   "worst performing month was " + monthName(worst.PeriodKey),
				Amount:    worst.Generation,
			},
		)
	}

	win := ForwardWindow(ms, now, 6)
	if win.Months > 0 {
		out = append(out,
			Highlight{
				Kind:      HighlightPeakCash,
				PeriodKey: win.PeakKey,
				Caption:   "cash peaks in " + monthName(win.PeakKey),
				Amount:    win.PeakCash,
			},
			Highlight{
				Kind:      HighlightTroughCash,
				PeriodKey: win.TroughKey,
				Caption:   "cash bottoms out in " + monthName(win.TroughKey),
				Amount:    win.TroughCash,
			},
			Highlight{
				Kind:      HighlightLargestGain,
				PeriodKey: win.GainKey,
				Caption:   "largest single-month gain in " + monthName(win.GainKey),
				Amount:    win.LargestGain,
			},
			Highlight{
				Kind:      HighlightLargestLoss,
				PeriodKey: win.LossKey,
				Caption:   "largest single-month loss in " + monthName(win.LossKey),
				Amount:    win.LargestLoss,
			},
		)
	}

	return out
}

func monthName(periodKey string) string {
	t, err := time.Parse("2006-01", periodKey)
	if err != nil {
		return periodKey
	}
	return t.Format("January 2006")
}
