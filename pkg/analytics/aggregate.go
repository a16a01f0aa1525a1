// Package analytics folds raw watch events into per-video, per-user and
// per-company summaries. Everything here is pure: the same input always
// yields the same report, and no function reads the clock or does I/O.
package analytics

import (
	"math"
	"sort"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"
	"video-portal/constant"
	"video-portal/entities"
)

// Heuristics carried over from the dashboards. They shape the numbers admins
// see and must keep these values.
const (
	// CompletedFloorSeconds is the minimum watch time credited to a completed video.
	CompletedFloorSeconds = 30.0
	// MinimumWatchSeconds is credited when a video has events but no recorded time.
	MinimumWatchSeconds = 1.0
	// EstimatedHoursPerView is used for watch-hour estimates when no duration is known.
	EstimatedHoursPerView = 0.1

	EngagementCompletionWeight = 0.4
	EngagementRewatchWeight    = 0.3
	EngagementDurationWeight   = 0.3
	EngagementRewatchCap       = 5.0
	EngagementDurationCap      = 300.0

	HistoricalLabel = "Historical data"
)

// Window restricts events by their last-watched time. A zero bound is open.
type Window struct {
	From time.Time `json:"from,omitempty"`
	To   time.Time `json:"to,omitempty"`
}

func (w Window) contains(t time.Time) bool {
	if !w.From.IsZero() && t.Before(w.From) {
		return false
	}
	if !w.To.IsZero() && t.After(w.To) {
		return false
	}
	return true
}

type Input struct {
	Events []*entities.WatchEvent
	Videos []*entities.Video
	Users  []*entities.User
	Window Window
}

// VideoWatch is the merged state of one (user, video) pair.
type VideoWatch struct {
	UserID           uuid.UUID `json:"userId"`
	VideoID          uuid.UUID `json:"videoId"`
	Title            string    `json:"title"`
	Category         string    `json:"category"`
	Tags             []string  `json:"tags"`
	WatchDuration    float64   `json:"watchDuration"`
	Progress         float64   `json:"progress"`
	Completed        bool      `json:"completed"`
	Milestones       []int     `json:"milestones"`
	RewatchCount     int       `json:"rewatchCount"`
	PlayCount        int       `json:"playCount"`
	FirstWatchedAt   time.Time `json:"firstWatchedAt"`
	LastWatchedAt    time.Time `json:"lastWatchedAt"`
	LastWatchedLabel string    `json:"lastWatchedLabel"`
	Records          int       `json:"records"`
}

type UserSummary struct {
	UserID               uuid.UUID `json:"userId"`
	Name                 string    `json:"name"`
	Email                string    `json:"email"`
	Company              string    `json:"company"`
	VideoCount           int       `json:"videoCount"`
	CompletedCount       int       `json:"completedCount"`
	TotalWatchTime       float64   `json:"totalWatchTime"`
	CompletionRate       float64   `json:"completionRate"`
	RewatchCount         int       `json:"rewatchCount"`
	AverageWatchDuration float64   `json:"averageWatchDuration"`
	EngagementScore      float64   `json:"engagementScore"`
	LastActive           time.Time `json:"lastActive"`
	videos               map[uuid.UUID]struct{}
}

type CompanySummary struct {
	Name                  string  `json:"name"`
	UserCount             int     `json:"userCount"`
	ActiveUsers           int     `json:"activeUsers"`
	TotalWatchTime        float64 `json:"totalWatchTime"`
	AverageCompletionRate float64 `json:"averageCompletionRate"`
	VideosWatched         int     `json:"videosWatched"`
	CompletedVideos       int     `json:"completedVideos"`
}

type VideoSummary struct {
	VideoID             uuid.UUID   `json:"videoId"`
	Title               string      `json:"title"`
	Category            string      `json:"category"`
	Views               int         `json:"views"`
	UniqueViewers       int         `json:"uniqueViewers"`
	TotalWatchTime      float64     `json:"totalWatchTime"`
	Completions         int         `json:"completions"`
	CompletionRate      float64     `json:"completionRate"`
	AverageProgress     float64     `json:"averageProgress"`
	MilestoneReach      map[int]int `json:"milestoneReach"`
	EstimatedWatchHours float64     `json:"estimatedWatchHours"`
}

type CategorySummary struct {
	Category       string  `json:"category"`
	Views          int     `json:"views"`
	TotalWatchTime float64 `json:"totalWatchTime"`
	Completions    int     `json:"completions"`
}

type Overview struct {
	TotalVideos         int     `json:"totalVideos"`
	TotalUsers          int     `json:"totalUsers"`
	TotalViews          int     `json:"totalViews"`
	UniqueViewers       int     `json:"uniqueViewers"`
	VideosWatched       int     `json:"videosWatched"`
	TotalWatchTime      float64 `json:"totalWatchTime"`
	AverageWatchTime    float64 `json:"averageWatchTime"`
	Completions         int     `json:"completions"`
	CompletionRate      float64 `json:"completionRate"`
	EstimatedWatchHours float64 `json:"estimatedWatchHours"`
}

type Report struct {
	Window     Window            `json:"window"`
	Overview   Overview          `json:"overview"`
	Videos     []VideoSummary    `json:"videos"`
	Users      []UserSummary     `json:"users"`
	Companies  []CompanySummary  `json:"companies"`
	Categories []CategorySummary `json:"categories"`
	Watches    []VideoWatch      `json:"watches"`
}

type pairKey struct {
	user  uuid.UUID
	video uuid.UUID
}

// Aggregate builds the full report. Malformed records degrade to defaults
// instead of failing the whole report.
func Aggregate(in Input) Report {
	watches := mergeWatches(in)

	videos := map[uuid.UUID]*entities.Video{}
	for _, v := range in.Videos {
		if v != nil {
			videos[v.ID] = v
		}
	}
	for i := range watches {
		fillVideoFields(&watches[i], videos[watches[i].VideoID])
	}

	users := summarizeUsers(in.Users, watches)
	report := Report{
		Window:     in.Window,
		Videos:     summarizeVideos(in.Videos, watches),
		Users:      users,
		Companies:  summarizeCompanies(users),
		Categories: summarizeCategories(watches),
		Watches:    watches,
	}
	report.Overview = overview(report, len(in.Videos), len(in.Users))
	return report
}

// eventTime is the most recent timestamp a record carries, zero when none.
func eventTime(e *entities.WatchEvent) time.Time {
	switch {
	case !e.LastWatchedAt.IsZero():
		return e.LastWatchedAt
	case !e.UpdatedAt.IsZero():
		return e.UpdatedAt
	default:
		return e.CreatedAt
	}
}

// epoch stands in for records without a usable timestamp.
var epoch = time.Unix(0, 0).UTC()

func normalizedTime(t time.Time) time.Time {
	if t.IsZero() || t.Before(epoch) {
		return epoch
	}
	return t
}

// Preferred reports whether a should represent a (user, video) pair over b:
// completed first, then higher progress, then the more recent timestamp.
func Preferred(a, b *entities.WatchEvent) bool {
	if a.Completed != b.Completed {
		return a.Completed
	}
	if a.Progress != b.Progress {
		return a.Progress > b.Progress
	}
	return normalizedTime(eventTime(a)).After(normalizedTime(eventTime(b)))
}

// Representative picks the record that stands for a pair among duplicates.
func Representative(events []*entities.WatchEvent) *entities.WatchEvent {
	var best *entities.WatchEvent
	for _, e := range events {
		if e == nil {
			continue
		}
		if best == nil || Preferred(e, best) {
			best = e
		}
	}
	return best
}

// ClampDuration applies the completed floor and the minimum watch time to a
// pair's summed duration.
func ClampDuration(summed float64, completed bool, records int) float64 {
	if completed && summed < CompletedFloorSeconds {
		return CompletedFloorSeconds
	}
	if summed <= 0 && records > 0 {
		return MinimumWatchSeconds
	}
	return summed
}

// EngagementScore weighs completion, rewatching and average watch time into [0, 1].
func EngagementScore(completionRate float64, rewatchCount int, averageWatchSeconds float64) float64 {
	rewatch := math.Min(float64(rewatchCount)/EngagementRewatchCap, 1)
	duration := math.Min(averageWatchSeconds/EngagementDurationCap, 1)
	if duration < 0 {
		duration = 0
	}
	return EngagementCompletionWeight*completionRate +
		EngagementRewatchWeight*rewatch +
		EngagementDurationWeight*duration
}

// CompanyKey is the grouping key for company names: trimmed and lowercased.
func CompanyKey(name string) string {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return strings.ToLower(constant.Unknown)
	}
	return key
}

// CompanyDisplayName capitalizes the first letter of every word.
func CompanyDisplayName(name string) string {
	words := strings.Fields(name)
	if len(words) == 0 {
		return constant.Unknown
	}
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + w[size:]
	}
	return strings.Join(words, " ")
}

func mergeWatches(in Input) []VideoWatch {
	seen := map[uuid.UUID]struct{}{}
	partitions := map[pairKey][]*entities.WatchEvent{}
	var order []pairKey
	for _, e := range in.Events {
		if e == nil {
			continue
		}
		if e.ID != uuid.Nil {
			if _, dup := seen[e.ID]; dup {
				continue
			}
			seen[e.ID] = struct{}{}
		}
		if !in.Window.contains(normalizedTime(eventTime(e))) {
			continue
		}
		key := pairKey{user: e.UserID, video: e.VideoID}
		if _, ok := partitions[key]; !ok {
			order = append(order, key)
		}
		partitions[key] = append(partitions[key], e)
	}

	watches := make([]VideoWatch, 0, len(order))
	for _, key := range order {
		watches = append(watches, mergePartition(key, partitions[key]))
	}
	sort.SliceStable(watches, func(i, j int) bool {
		if watches[i].UserID != watches[j].UserID {
			return watches[i].UserID.String() < watches[j].UserID.String()
		}
		if !watches[i].LastWatchedAt.Equal(watches[j].LastWatchedAt) {
			return watches[i].LastWatchedAt.After(watches[j].LastWatchedAt)
		}
		return watches[i].VideoID.String() < watches[j].VideoID.String()
	})
	return watches
}

func mergePartition(key pairKey, events []*entities.WatchEvent) VideoWatch {
	rep := Representative(events)
	w := VideoWatch{
		UserID:    key.user,
		VideoID:   key.video,
		Title:     rep.VideoTitle,
		Category:  rep.VideoCategory,
		Tags:      append([]string{}, rep.VideoTags...),
		Progress:  clampPercent(rep.Progress),
		Completed: rep.Completed,
		Records:   len(events),
	}

	var summed float64
	milestones := map[int]struct{}{}
	for _, e := range events {
		if e.WatchDuration > 0 {
			summed += e.WatchDuration
		}
		rewatches := e.RewatchCount
		if rewatches == 0 && e.IsRewatch {
			rewatches = 1
		}
		w.RewatchCount += rewatches
		w.PlayCount += e.PlayCount
		for _, m := range e.Milestones {
			milestones[m] = struct{}{}
		}

		first := e.FirstWatchedAt
		if first.IsZero() {
			first = e.CreatedAt
		}
		if !first.IsZero() && (w.FirstWatchedAt.IsZero() || first.Before(w.FirstWatchedAt)) {
			w.FirstWatchedAt = first
		}
		if last := eventTime(e); last.After(w.LastWatchedAt) {
			w.LastWatchedAt = last
		}
	}
	if w.Completed {
		w.Progress = 100
		milestones[constant.MilestoneComplete] = struct{}{}
	}
	if w.PlayCount < 1 {
		w.PlayCount = 1
	}
	w.WatchDuration = ClampDuration(summed, w.Completed, len(events))
	w.Milestones = make([]int, 0, len(milestones))
	for m := range milestones {
		w.Milestones = append(w.Milestones, m)
	}
	sort.Ints(w.Milestones)

	if w.LastWatchedAt.IsZero() {
		w.LastWatchedLabel = HistoricalLabel
	} else {
		w.LastWatchedLabel = w.LastWatchedAt.UTC().Format(time.RFC3339)
	}
	return w
}

func fillVideoFields(w *VideoWatch, v *entities.Video) {
	if v != nil {
		if w.Title == "" {
			w.Title = v.Title
		}
		if w.Category == "" {
			w.Category = v.Category
		}
		if len(w.Tags) == 0 {
			w.Tags = append([]string{}, v.Tags...)
		}
	}
	if w.Title == "" {
		w.Title = constant.Unknown
	}
	if w.Category == "" {
		w.Category = constant.Unknown
	}
}

func clampPercent(p float64) float64 {
	if math.IsNaN(p) || p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

func summarizeUsers(catalog []*entities.User, watches []VideoWatch) []UserSummary {
	byID := map[uuid.UUID]*UserSummary{}
	var order []uuid.UUID
	add := func(id uuid.UUID) *UserSummary {
		if s, ok := byID[id]; ok {
			return s
		}
		s := &UserSummary{
			UserID:  id,
			Name:    constant.Unknown,
			Email:   constant.Unknown,
			Company: constant.Unknown,
			videos:  map[uuid.UUID]struct{}{},
		}
		byID[id] = s
		order = append(order, id)
		return s
	}

	for _, u := range catalog {
		if u == nil {
			continue
		}
		s := add(u.ID)
		if u.Name != "" {
			s.Name = u.Name
		}
		if u.Email != "" {
			s.Email = u.Email
		}
		if strings.TrimSpace(u.CompanyName) != "" {
			s.Company = strings.TrimSpace(u.CompanyName)
		}
	}

	for _, w := range watches {
		s := add(w.UserID)
		s.videos[w.VideoID] = struct{}{}
		s.TotalWatchTime += w.WatchDuration
		s.RewatchCount += w.RewatchCount
		if w.Completed {
			s.CompletedCount++
		}
		if w.LastWatchedAt.After(s.LastActive) {
			s.LastActive = w.LastWatchedAt
		}
	}

	out := make([]UserSummary, 0, len(order))
	for _, id := range order {
		s := byID[id]
		s.VideoCount = len(s.videos)
		if s.VideoCount > 0 {
			s.CompletionRate = float64(s.CompletedCount) / float64(s.VideoCount)
			s.AverageWatchDuration = s.TotalWatchTime / float64(s.VideoCount)
			s.EngagementScore = EngagementScore(s.CompletionRate, s.RewatchCount, s.AverageWatchDuration)
		}
		out = append(out, *s)
	}
	return out
}

func summarizeCompanies(users []UserSummary) []CompanySummary {
	type bucket struct {
		summary CompanySummary
		rateSum float64
		videos  map[uuid.UUID]struct{}
	}
	byKey := map[string]*bucket{}
	var ordered []*bucket
	for _, u := range users {
		key := CompanyKey(u.Company)
		b, ok := byKey[key]
		if !ok {
			b = &bucket{
				summary: CompanySummary{Name: CompanyDisplayName(u.Company)},
				videos:  map[uuid.UUID]struct{}{},
			}
			byKey[key] = b
			ordered = append(ordered, b)
		}
		b.summary.UserCount++
		b.summary.TotalWatchTime += u.TotalWatchTime
		b.summary.CompletedVideos += u.CompletedCount
		if u.VideoCount > 0 {
			b.summary.ActiveUsers++
			b.rateSum += u.CompletionRate
		}
		for v := range u.videos {
			b.videos[v] = struct{}{}
		}
	}

	out := make([]CompanySummary, 0, len(ordered))
	for _, b := range ordered {
		if b.summary.ActiveUsers > 0 {
			b.summary.AverageCompletionRate = b.rateSum / float64(b.summary.ActiveUsers)
		}
		b.summary.VideosWatched = len(b.videos)
		out = append(out, b.summary)
	}
	// ties keep first-seen order
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].TotalWatchTime > out[j].TotalWatchTime
	})
	return out
}

func summarizeVideos(catalog []*entities.Video, watches []VideoWatch) []VideoSummary {
	byID := map[uuid.UUID]*VideoSummary{}
	minutes := map[uuid.UUID]float64{}
	progress := map[uuid.UUID]float64{}
	var order []uuid.UUID
	add := func(id uuid.UUID, title, category string) *VideoSummary {
		if s, ok := byID[id]; ok {
			return s
		}
		s := &VideoSummary{VideoID: id, Title: title, Category: category, MilestoneReach: map[int]int{}}
		for _, m := range constant.Milestones {
			s.MilestoneReach[m] = 0
		}
		byID[id] = s
		order = append(order, id)
		return s
	}

	for _, v := range catalog {
		if v == nil {
			continue
		}
		title, category := v.Title, v.Category
		if title == "" {
			title = constant.Unknown
		}
		if category == "" {
			category = constant.Unknown
		}
		add(v.ID, title, category)
		minutes[v.ID] = ParseDurationMinutes(v.Duration)
	}

	for _, w := range watches {
		s := add(w.VideoID, w.Title, w.Category)
		s.Views += w.PlayCount
		s.UniqueViewers++
		s.TotalWatchTime += w.WatchDuration
		progress[w.VideoID] += w.Progress
		if w.Completed {
			s.Completions++
		}
		for _, m := range w.Milestones {
			s.MilestoneReach[m]++
		}
	}

	out := make([]VideoSummary, 0, len(order))
	for _, id := range order {
		s := byID[id]
		if s.UniqueViewers > 0 {
			s.CompletionRate = float64(s.Completions) / float64(s.UniqueViewers)
			s.AverageProgress = progress[id] / float64(s.UniqueViewers)
		}
		s.EstimatedWatchHours = EstimateWatchHours(s.TotalWatchTime, s.Views, minutes[id])
		out = append(out, *s)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Views != out[j].Views {
			return out[i].Views > out[j].Views
		}
		return out[i].Title < out[j].Title
	})
	return out
}

// EstimateWatchHours prefers recorded watch time, then the catalog duration per
// view, then the fixed per-view estimate.
func EstimateWatchHours(recordedSeconds float64, views int, durationMinutes float64) float64 {
	switch {
	case recordedSeconds > 0:
		return recordedSeconds / 3600
	case durationMinutes > 0:
		return float64(views) * durationMinutes / 60
	default:
		return float64(views) * EstimatedHoursPerView
	}
}

func summarizeCategories(watches []VideoWatch) []CategorySummary {
	byName := map[string]*CategorySummary{}
	for _, w := range watches {
		s, ok := byName[w.Category]
		if !ok {
			s = &CategorySummary{Category: w.Category}
			byName[w.Category] = s
		}
		s.Views += w.PlayCount
		s.TotalWatchTime += w.WatchDuration
		if w.Completed {
			s.Completions++
		}
	}
	out := make([]CategorySummary, 0, len(byName))
	for _, s := range byName {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Views != out[j].Views {
			return out[i].Views > out[j].Views
		}
		return out[i].Category < out[j].Category
	})
	return out
}

func overview(r Report, totalVideos, totalUsers int) Overview {
	o := Overview{TotalVideos: totalVideos, TotalUsers: totalUsers}
	viewers := map[uuid.UUID]struct{}{}
	videos := map[uuid.UUID]struct{}{}
	for _, w := range r.Watches {
		viewers[w.UserID] = struct{}{}
		videos[w.VideoID] = struct{}{}
		o.TotalViews += w.PlayCount
		o.TotalWatchTime += w.WatchDuration
		if w.Completed {
			o.Completions++
		}
	}
	for _, v := range r.Videos {
		o.EstimatedWatchHours += v.EstimatedWatchHours
	}
	o.UniqueViewers = len(viewers)
	o.VideosWatched = len(videos)
	if n := len(r.Watches); n > 0 {
		o.CompletionRate = float64(o.Completions) / float64(n)
		o.AverageWatchTime = o.TotalWatchTime / float64(n)
	}
	return o
}
