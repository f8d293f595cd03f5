package digest

import (
	"strconv"
	"time"
)

// Mode is the run variant: a full morning digest or an evening reminder.
type Mode string

const (
	ModeMorning Mode = "morning"
	ModeEvening Mode = "evening"
)

const UnknownCourseLabel = "Unknown Course"

// Assignment is the canonical representation of a Canvas assignment inside
// this tool. Every fetch source maps into this shape at the API boundary.
type Assignment struct {
	ID              int64
	Name            string
	CourseID        int64
	CourseLabel     string
	DueAt           *time.Time
	LockAt          *time.Time
	PointsPossible  float64
	SubmissionTypes []string
	SubmissionState string
	Description     string
	URL             string
	PeerReviews     bool
	PeerReviewCount int
}

// Key is the assignment identifier used by the seen-history store.
func (a Assignment) Key() string {
	return strconv.FormatInt(a.ID, 10)
}

// EffectiveDeadline is the earlier of the due and lock timestamps, or
// whichever one is present. ok is false when the assignment has neither.
func (a Assignment) EffectiveDeadline() (time.Time, bool) {
	switch {
	case a.DueAt != nil && a.LockAt != nil:
		if a.LockAt.Before(*a.DueAt) {
			return *a.LockAt, true
		}
		return *a.DueAt, true
	case a.DueAt != nil:
		return *a.DueAt, true
	case a.LockAt != nil:
		return *a.LockAt, true
	}
	return time.Time{}, false
}

// Submitted reports whether the assignment carries a submission in the
// submitted or graded workflow state. No submission record means false.
func (a Assignment) Submitted() bool {
	return a.SubmissionState == "submitted" || a.SubmissionState == "graded"
}

type Course struct {
	ID      int64
	Code    string
	Name    string
	StartAt *time.Time
	EndAt   *time.Time
}

// Label prefers the course code, falls back to the full name.
func (c Course) Label() string {
	if c.Code != "" {
		return c.Code
	}
	if c.Name != "" {
		return c.Name
	}
	return UnknownCourseLabel
}

// Active reports whether the enrollment window contains now. An absent
// boundary is treated as open-ended.
func (c Course) Active(now time.Time) bool {
	if c.StartAt != nil && c.StartAt.After(now) {
		return false
	}
	if c.EndAt != nil && c.EndAt.Before(now) {
		return false
	}
	return true
}

type Announcement struct {
	ID          int64
	CourseLabel string
	Title       string
	Message     string
	PostedAt    time.Time
	URL         string
}

// Buckets is the classification output: six urgency categories. New is not
// exclusive with the time buckets; an assignment can appear in both.
type Buckets struct {
	Missed    []Assignment
	TodayPast []Assignment
	Today     []Assignment
	Tomorrow  []Assignment
	Soon      []Assignment
	New       []Assignment
}

func (b Buckets) Empty() bool {
	return len(b.Missed) == 0 && len(b.TodayPast) == 0 && len(b.Today) == 0 &&
		len(b.Tomorrow) == 0 && len(b.Soon) == 0 && len(b.New) == 0
}

// Digest is the outcome of the decision step for one run.
type Digest struct {
	Mode          Mode
	Buckets       Buckets
	Announcements map[string][]Announcement
	FailedCourses []string
	Reminder      []Assignment

	CourseCount     int
	AssignmentCount int

	// AllClear means a morning run found nothing to report; the digest is
	// still sent as an all-clear notice.
	AllClear bool
	// SendNothing means an evening run has no unsubmitted work due
	// tomorrow and no reminder goes out. This is a no-op, not an error.
	SendNothing bool
}
