package analytics

import (
	"math"
	"sort"
	"time"

	"github.com/NutriVision/NV-Backend/internal/auth"
	"github.com/NutriVision/NV-Backend/internal/history"
	"github.com/NutriVision/NV-Backend/internal/session"
)

// dayWindow is how many trailing calendar days the chart endpoints return.
const dayWindow = 14

// dayLabel is the short month+day form the charts bucket on, e.g. "Jan 2".
const dayLabel = "Jan 2"

type FoodBucket struct {
	Name          string  `json:"name"`
	TotalCalories float64 `json:"totalCalories"`
	Count         int     `json:"count"`
}

type DayBucket struct {
	Date     string  `json:"date"`
	Calories float64 `json:"calories"`
	Visits   int     `json:"visits"`
}

type VisitBucket struct {
	Date        string `json:"date"`
	Visits      int    `json:"visits"`
	UniqueUsers int    `json:"uniqueUsers"`
}

type AnalysisBucket struct {
	Date            string `json:"date"`
	ImageAnalyses   int    `json:"imageAnalyses"`
	CalorieSearches int    `json:"calorieSearches"`
}

type UserStats struct {
	Name     string `json:"name"`
	Sessions int    `json:"sessions"`
	Analyses int    `json:"analyses"`
	Minutes  int    `json:"minutes"`
}

// Round1 rounds a calorie figure to one decimal for display. Sums are carried
// at full precision until this point.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// AggregateByFood folds the nested result items of all records into per-food
// totals. Grouping is case-sensitive; the first-seen casing and first-seen
// order win. Totals are order-insensitive.
func AggregateByFood(records []history.Record) []FoodBucket {
	byName := make(map[string]*FoodBucket)
	order := []string{}

	for _, rec := range records {
		for _, item := range rec.Results {
			label := item.Label
			if label == "" {
				label = "Unknown"
			}
			b, ok := byName[label]
			if !ok {
				b = &FoodBucket{Name: label}
				byName[label] = b
				order = append(order, label)
			}
			b.TotalCalories += item.Calories
			b.Count++
		}
	}

	out := make([]FoodBucket, 0, len(order))
	for _, name := range order {
		b := byName[name]
		out = append(out, FoodBucket{
			Name:          b.Name,
			TotalCalories: Round1(b.TotalCalories),
			Count:         b.Count,
		})
	}
	return out
}

// AggregateByDay buckets records by calendar day in loc, summing each
// record's total calories and counting records. Output is the most recent 14
// days in chronological order.
func AggregateByDay(records []history.Record, loc *time.Location) []DayBucket {
	type bucket struct {
		day      time.Time
		calories float64
		visits   int
	}
	byDay := make(map[string]*bucket)

	for _, rec := range records {
		local := rec.CreatedAt.In(loc)
		key := local.Format(dayLabel)
		b, ok := byDay[key]
		if !ok {
			day := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
			b = &bucket{day: day}
			byDay[key] = b
		}
		b.calories += rec.TotalCalories
		b.visits++
	}

	buckets := make([]*bucket, 0, len(byDay))
	for _, b := range byDay {
		buckets = append(buckets, b)
	}
	sort.Slice(buckets, func(i, j int) bool { return buckets[i].day.Before(buckets[j].day) })
	if len(buckets) > dayWindow {
		buckets = buckets[len(buckets)-dayWindow:]
	}

	out := make([]DayBucket, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, DayBucket{
			Date:     b.day.Format(dayLabel),
			Calories: Round1(b.calories),
			Visits:   b.visits,
		})
	}
	return out
}

// DailySessions buckets heartbeat rows by login day: total visits and unique
// visitors per day, most recent 14 days in chronological order.
func DailySessions(sessions []session.UserSession, loc *time.Location) []VisitBucket {
	type bucket struct {
		day    time.Time
		visits int
		users  map[string]struct{}
	}
	byDay := make(map[string]*bucket)

	for _, s := range sessions {
		local := s.LoginAt.In(loc)
		key := local.Format(dayLabel)
		b, ok := byDay[key]
		if !ok {
			day := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
			b = &bucket{day: day, users: make(map[string]struct{})}
			byDay[key] = b
		}
		b.visits++
		b.users[s.UserID] = struct{}{}
	}

	buckets := make([]*bucket, 0, len(byDay))
	for _, b := range byDay {
		buckets = append(buckets, b)
	}
	sort.Slice(buckets, func(i, j int) bool { return buckets[i].day.Before(buckets[j].day) })
	if len(buckets) > dayWindow {
		buckets = buckets[len(buckets)-dayWindow:]
	}

	out := make([]VisitBucket, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, VisitBucket{
			Date:        b.day.Format(dayLabel),
			Visits:      b.visits,
			UniqueUsers: len(b.users),
		})
	}
	return out
}

// DailyAnalyses buckets history records by day, split into image analyses and
// calorie searches; most recent 14 days in chronological order.
func DailyAnalyses(records []history.Record, loc *time.Location) []AnalysisBucket {
	type bucket struct {
		day      time.Time
		images   int
		searches int
	}
	byDay := make(map[string]*bucket)

	for _, rec := range records {
		local := rec.CreatedAt.In(loc)
		key := local.Format(dayLabel)
		b, ok := byDay[key]
		if !ok {
			day := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
			b = &bucket{day: day}
			byDay[key] = b
		}
		if rec.Type == history.TypeCalorieSearch {
			b.searches++
		} else {
			b.images++
		}
	}

	buckets := make([]*bucket, 0, len(byDay))
	for _, b := range byDay {
		buckets = append(buckets, b)
	}
	sort.Slice(buckets, func(i, j int) bool { return buckets[i].day.Before(buckets[j].day) })
	if len(buckets) > dayWindow {
		buckets = buckets[len(buckets)-dayWindow:]
	}

	out := make([]AnalysisBucket, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, AnalysisBucket{
			Date:            b.day.Format(dayLabel),
			ImageAnalyses:   b.images,
			CalorieSearches: b.searches,
		})
	}
	return out
}

// UserActivity rolls sessions and analyses up per non-admin user, sorted by
// analysis count descending. Users with no activity are dropped.
func UserActivity(profiles []auth.Profile, sessions []session.UserSession, records []history.Record) []UserStats {
	sessionCount := make(map[string]int)
	minuteCount := make(map[string]int)
	for _, s := range sessions {
		sessionCount[s.UserID]++
		minuteCount[s.UserID] += s.DurationMinutes
	}
	analysisCount := make(map[string]int)
	for _, rec := range records {
		analysisCount[rec.UserID]++
	}

	out := []UserStats{}
	for _, p := range profiles {
		if p.Role == "admin" {
			continue
		}
		stats := UserStats{
			Name:     displayName(p),
			Sessions: sessionCount[p.ID],
			Analyses: analysisCount[p.ID],
			Minutes:  minuteCount[p.ID],
		}
		if stats.Sessions == 0 && stats.Analyses == 0 {
			continue
		}
		out = append(out, stats)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Analyses > out[j].Analyses })
	return out
}

func displayName(p auth.Profile) string {
	if p.FullName != "" {
		return p.FullName
	}
	if p.Email != "" {
		for i, c := range p.Email {
			if c == '@' {
				return p.Email[:i]
			}
		}
		return p.Email
	}
	return "User"
}
