package digest

import "testing"

func TestDecideMorningAllClear(t *testing.T) {
	d := DecideMorning(Buckets{}, nil, nil, 4, 0)
	if !d.AllClear {
		t.Fatal("empty buckets, no announcements, no failures must be all-clear")
	}
}

func TestDecideMorningFailedCourseBlocksAllClear(t *testing.T) {
	d := DecideMorning(Buckets{}, nil, []string{"CS101"}, 4, 0)
	if d.AllClear {
		t.Fatal("a failed course must force a full digest with a warning")
	}
}

func TestDecideMorningAnnouncementsBlockAllClear(t *testing.T) {
	anns := map[string][]Announcement{"CS101": {{ID: 1, Title: "Midterm moved"}}}
	d := DecideMorning(Buckets{}, anns, nil, 4, 0)
	if d.AllClear {
		t.Fatal("relevant announcements must force a full digest")
	}
}

func TestDecideMorningBucketsBlockAllClear(t *testing.T) {
	b := Buckets{Today: []Assignment{{ID: 1}}}
	d := DecideMorning(b, nil, nil, 4, 1)
	if d.AllClear {
		t.Fatal("non-empty buckets must force a full digest")
	}
}

func TestDecideEveningNoOp(t *testing.T) {
	d := DecideEvening(nil)
	if !d.SendNothing {
		t.Fatal("empty reminder list must decide to send nothing")
	}
}

func TestDecideEveningSendsReminder(t *testing.T) {
	d := DecideEvening([]Assignment{{ID: 1}})
	if d.SendNothing {
		t.Fatal("non-empty reminder list must send")
	}
	if len(d.Reminder) != 1 {
		t.Fatalf("want 1 reminder item, got %d", len(d.Reminder))
	}
}
