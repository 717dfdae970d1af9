package ranking

import (
	"sort"
	"time"
)

// Compute aggregates a set of entries into per-user stats with dense ranks.
// It is a pure function: no I/O, deterministic for a given input set. Callers
// are expected to have already scoped the entries to one challenge (or all).
//
// Users are ordered by wins desc, then win rate desc, then top-25 rate desc.
// Ties across the full key share a rank and the next distinct key advances
// the rank by exactly one.
func Compute(entries []Entry) []Stat {
	byUser := make(map[string]*Stat)
	for _, e := range entries {
		s, ok := byUser[e.UserID]
		if !ok {
			s = &Stat{UserID: e.UserID}
			byUser[e.UserID] = s
		}
		s.Total++
		if e.IsWin {
			s.Wins++
		}
		// Top-50 membership is independent of top-25: a row can count toward both.
		if e.Percentile <= 25 {
			s.Top25Rate++
		}
		if e.Percentile <= 50 {
			s.Top50Rate++
		}
	}

	stats := make([]Stat, 0, len(byUser))
	for _, s := range byUser {
		if s.Total > 0 {
			s.WinRate = float64(s.Wins) / float64(s.Total)
			s.Top25Rate = s.Top25Rate / float64(s.Total)
			s.Top50Rate = s.Top50Rate / float64(s.Total)
		}
		stats = append(stats, *s)
	}

	sort.SliceStable(stats, func(i, j int) bool {
		a, b := stats[i], stats[j]
		if a.Wins != b.Wins {
			return a.Wins > b.Wins
		}
		if a.WinRate != b.WinRate {
			return a.WinRate > b.WinRate
		}
		if a.Top25Rate != b.Top25Rate {
			return a.Top25Rate > b.Top25Rate
		}
		// Any further tie is unordered; keep the sort stable.
		return false
	})

	rank := 0
	for i := range stats {
		if i == 0 || !sameKey(stats[i], stats[i-1]) {
			rank++
		}
		stats[i].Rank = rank
	}
	return stats
}

func sameKey(a, b Stat) bool {
	return a.Wins == b.Wins && a.WinRate == b.WinRate && a.Top25Rate == b.Top25Rate
}

// RankOf returns the dense rank assigned to userID, or 0 when the user has no
// entries in the computed set.
func RankOf(stats []Stat, userID string) int {
	for _, s := range stats {
		if s.UserID == userID {
			return s.Rank
		}
	}
	return 0
}

// StatOf returns the stat for userID, or a zero-valued stat when absent.
func StatOf(stats []Stat, userID string) Stat {
	for _, s := range stats {
		if s.UserID == userID {
			return s
		}
	}
	return Stat{UserID: userID}
}

// MonthBuckets returns n calendar-month windows ending with the month of now,
// oldest first. Each bucket is [first of month, first of next month).
func MonthBuckets(now time.Time, n int) []Bucket {
	buckets := make([]Bucket, 0, n)
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	start := first.AddDate(0, -(n - 1), 0)
	for i := 0; i < n; i++ {
		s := start.AddDate(0, i, 0)
		buckets = append(buckets, Bucket{
			Start: s,
			End:   s.AddDate(0, 1, 0),
			Label: s.Format("Jan"),
		})
	}
	return buckets
}

// History computes the rank trend of userID across the given buckets. Each
// bucket is recomputed independently from the raw entries whose occurred-at
// falls inside it, so a month with no entries for the user yields position 0.
func History(entries []Entry, userID string, buckets []Bucket) []Point {
	points := make([]Point, 0, len(buckets))
	for _, b := range buckets {
		var windowed []Entry
		for _, e := range entries {
			if !e.OccurredAt.Before(b.Start) && e.OccurredAt.Before(b.End) {
				windowed = append(windowed, e)
			}
		}
		stats := Compute(windowed)
		points = append(points, Point{Month: b.Label, Position: RankOf(stats, userID)})
	}
	return points
}
