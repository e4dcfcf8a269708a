package util

import "time"

// AlignWindow returns the window of the given lookback ending at end, with
// the start rounded down to a step boundary so pages begin on candle opens.
func AlignWindow(end time.Time, lookback, step time.Duration) (time.Time, time.Time) {
	from := end.Add(-lookback)
	if step > 0 {
		from = from.Truncate(step)
	}
	return from, end
}

// Minutes converts a minute count to a duration.
func Minutes(n int) time.Duration {
	return time.Duration(n) * time.Minute
}
