package digest

import (
	"sort"
	"time"
)

// Classify partitions assignments into urgency buckets relative to now.
// lastRun is the previous successful run for the active mode (nil = no
// prior run, defaulting to 24 hours before now). seen holds every
// assignment ID observed by a prior run.
//
// Day boundaries are midnight-aligned in now's location, not rolling
// 24-hour windows. Assignments without an effective deadline are skipped
// entirely. Each bucket ends up sorted ascending by effective deadline.
func Classify(assignments []Assignment, lastRun *time.Time, seen map[string]bool, now time.Time) Buckets {
	todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	todayEnd := todayStart.AddDate(0, 0, 1)
	tomorrowEnd := todayStart.AddDate(0, 0, 2)
	soonEnd := todayStart.AddDate(0, 0, 4)

	cutoff := now.Add(-24 * time.Hour)
	if lastRun != nil {
		cutoff = *lastRun
	}

	var b Buckets

	for _, a := range assignments {
		dl, ok := a.EffectiveDeadline()
		if !ok {
			continue
		}

		// Unsubmitted with a deadline that passed since the last run.
		if !a.Submitted() && dl.After(cutoff) && !dl.After(now) {
			b.Missed = append(b.Missed, a)
			continue
		}

		// Past-due and submitted: nothing left to say about it.
		if !dl.After(now) && a.Submitted() {
			continue
		}

		// Never-seen assignments land in New on top of their time bucket.
		if !seen[a.Key()] {
			b.New = append(b.New, a)
		}

		switch {
		case !dl.Before(todayStart) && dl.Before(todayEnd):
			if dl.Before(now) {
				b.TodayPast = append(b.TodayPast, a)
			} else {
				b.Today = append(b.Today, a)
			}
		case !dl.Before(todayEnd) && dl.Before(tomorrowEnd):
			b.Tomorrow = append(b.Tomorrow, a)
		case !dl.Before(tomorrowEnd) && dl.Before(soonEnd):
			b.Soon = append(b.Soon, a)
		}
	}

	for _, bucket := range []*[]Assignment{&b.Missed, &b.TodayPast, &b.Today, &b.Tomorrow, &b.Soon, &b.New} {
		sortByDeadline(*bucket)
	}

	return b
}

// TomorrowUnsubmitted is the evening filter: unsubmitted assignments whose
// effective deadline falls within tomorrow's calendar day, sorted ascending
// by deadline. It is independent of Classify.
func TomorrowUnsubmitted(assignments []Assignment, now time.Time) []Assignment {
	todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	tomorrowStart := todayStart.AddDate(0, 0, 1)
	tomorrowEnd := todayStart.AddDate(0, 0, 2)

	var out []Assignment
	for _, a := range assignments {
		if a.Submitted() {
			continue
		}
		dl, ok := a.EffectiveDeadline()
		if !ok {
			continue
		}
		if !dl.Before(tomorrowStart) && dl.Before(tomorrowEnd) {
			out = append(out, a)
		}
	}
	sortByDeadline(out)
	return out
}

// RelevantAnnouncements keeps announcements posted strictly after lastRun
// (nil = no prior run, defaulting to 24 hours before now).
func RelevantAnnouncements(anns []Announcement, lastRun *time.Time, now time.Time) []Announcement {
	cutoff := now.Add(-24 * time.Hour)
	if lastRun != nil {
		cutoff = *lastRun
	}
	var out []Announcement
	for _, a := range anns {
		if a.PostedAt.After(cutoff) {
			out = append(out, a)
		}
	}
	return out
}

func sortByDeadline(assignments []Assignment) {
	sort.SliceStable(assignments, func(i, j int) bool {
		di, _ := assignments[i].EffectiveDeadline()
		dj, _ := assignments[j].EffectiveDeadline()
		return di.Before(dj)
	})
}
