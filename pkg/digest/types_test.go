package digest

import (
	"testing"
)

func TestEffectiveDeadline(t *testing.T) {
	due := at(10, 18, 0)
	lock := at(10, 12, 0)

	cases := []struct {
		name string
		a    Assignment
		want string
		ok   bool
	}{
		{"both, lock earlier", Assignment{DueAt: &due, LockAt: &lock}, lock.String(), true},
		{"both, due earlier", Assignment{DueAt: &lock, LockAt: &due}, lock.String(), true},
		{"due only", Assignment{DueAt: &due}, due.String(), true},
		{"lock only", Assignment{LockAt: &lock}, lock.String(), true},
		{"neither", Assignment{}, "", false},
	}
	for _, tc := range cases {
		got, ok := tc.a.EffectiveDeadline()
		if ok != tc.ok {
			t.Fatalf("%s: want ok=%t, got %t", tc.name, tc.ok, ok)
		}
		if ok && got.String() != tc.want {
			t.Fatalf("%s: want %s, got %s", tc.name, tc.want, got)
		}
	}
}

func TestSubmitted(t *testing.T) {
	cases := []struct {
		state string
		want  bool
	}{
		{"submitted", true},
		{"graded", true},
		{"unsubmitted", false},
		{"pending_review", false},
		{"", false},
	}
	for _, tc := range cases {
		a := Assignment{SubmissionState: tc.state}
		if got := a.Submitted(); got != tc.want {
			t.Fatalf("state %q: want %t, got %t", tc.state, tc.want, got)
		}
	}
}

func TestCourseLabel(t *testing.T) {
	cases := []struct {
		course Course
		want   string
	}{
		{Course{Code: "CS101", Name: "Intro to CS"}, "CS101"},
		{Course{Name: "Intro to CS"}, "Intro to CS"},
		{Course{}, UnknownCourseLabel},
	}
	for _, tc := range cases {
		if got := tc.course.Label(); got != tc.want {
			t.Fatalf("want %q, got %q", tc.want, got)
		}
	}
}

func TestCourseActive(t *testing.T) {
	now := at(10, 7, 0)
	start := at(1, 0, 0)
	end := at(20, 0, 0)
	past := at(5, 0, 0)
	future := at(15, 0, 0)

	cases := []struct {
		name   string
		course Course
		want   bool
	}{
		{"inside window", Course{StartAt: &start, EndAt: &end}, true},
		{"open ended", Course{}, true},
		{"not started", Course{StartAt: &future}, false},
		{"already ended", Course{EndAt: &past}, false},
	}
	for _, tc := range cases {
		if got := tc.course.Active(now); got != tc.want {
			t.Fatalf("%s: want %t, got %t", tc.name, tc.want, got)
		}
	}
}
