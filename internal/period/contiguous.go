package period

// FindRecentContiguous looks for the most recent span of at least targetDays
// days that is inside the geofence apart from gaps of at most maxGapDays
// each. periods must be ordered oldest first, as Build returns them.
//
// The scan runs newest to oldest. Inside periods always join the span; any
// other period joins only if it is short enough, otherwise the span collected
// so far is dropped and the scan starts again below the gap. The first span
// to reach targetDays is returned. If none does, the result is the most
// recent span the scan gave up on, or the last one collected when no gap ever
// broke the scan.
func FindRecentContiguous(periods []Period, targetDays, maxGapDays int) []Period {
	var (
		span   []Period
		total  int
		recent []Period
	)

	for i := len(periods) - 1; i >= 0; i-- {
		p := periods[i]
		n := p.LengthDays()

		if !p.Inside() && n > maxGapDays {
			if recent == nil && len(span) > 0 {
				recent = span
			}
			span, total = nil, 0
			continue
		}

		span = append([]Period{p}, span...)
		total += n
		if total >= targetDays {
			return span
		}
	}

	if recent != nil {
		return recent
	}
	return span
}
