package domain

import "time"

// Minutes returns the whole minutes between start and end, rounded to the
// nearest minute with ties rounding up (47m30s -> 48).
func Minutes(start, end time.Time) (int, error) {
	if end.Before(start) {
		return 0, &InvalidTimeRangeError{Start: start, End: end}
	}
	// Duration.Round rounds halfway values away from zero, which is half-up
	// for a non-negative duration.
	return int(end.Sub(start).Round(time.Minute) / time.Minute), nil
}
