package progress

import "time"

// updateStreakAndActivity applies a finished quiz to the daily activity counters.
// The previous activity date is read once before any field changes.
func (s *Store) updateStreakAndActivity(accuracy float64) {
	now := s.now()
	user := &s.data.User

	today := truncateToDay(now)
	var lastDate time.Time
	if user.LastActive != 0 {
		lastDate = truncateToDay(FromMillis(user.LastActive).In(now.Location()))
	}

	if !lastDate.Equal(today) {
		user.DaysActive++
		user.LastActive = Millis(now)
	}

	if accuracy >= s.streakPassAccuracy {
		switch {
		case lastDate.Equal(today):
		case lastDate.IsZero() || lastDate.Equal(today.AddDate(0, 0, -1)):
			user.StreakCurrent++
		default:
			user.StreakCurrent = 1
		}
	} else if user.StreakCurrent > 0 {
		user.StreakCurrent = 0
	}
	user.StreakBest = max(user.StreakBest, user.StreakCurrent)
}

func truncateToDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}
