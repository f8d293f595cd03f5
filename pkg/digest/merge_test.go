package digest

import (
	"reflect"
	"testing"
)

func TestCollectorFirstSourceWins(t *testing.T) {
	c := NewCollector()
	c.Add([]Assignment{{ID: 1, Name: "From course listing", CourseID: 10}})
	c.Add([]Assignment{{ID: 1, Name: "From todo"}, {ID: 2, Name: "Todo only"}})
	c.Add([]Assignment{{ID: 2, Name: "From calendar"}, {ID: 3, Name: "Calendar only"}})

	got := c.Assignments()
	if len(got) != 3 {
		t.Fatalf("want 3 merged assignments, got %d", len(got))
	}
	if got[0].Name != "From course listing" {
		t.Fatalf("first source must win for id 1, got %q", got[0].Name)
	}
	if got[1].Name != "Todo only" || got[2].Name != "Calendar only" {
		t.Fatalf("later sources must only contribute unseen ids: %+v", got)
	}
}

func TestCollectorIdempotent(t *testing.T) {
	source := []Assignment{
		{ID: 1, Name: "A", CourseID: 10},
		{ID: 2, Name: "B", CourseID: 10},
	}

	c1 := NewCollector()
	c1.Add(source)
	c1.Add(source)

	c2 := NewCollector()
	c2.Add(source)

	if !reflect.DeepEqual(c1.Assignments(), c2.Assignments()) {
		t.Fatalf("merging the same source twice must be a no-op.\nwant: %+v\ngot:  %+v", c2.Assignments(), c1.Assignments())
	}
}

func TestCollectorPeerReviewAttachOnly(t *testing.T) {
	c := NewCollector()
	c.Add([]Assignment{{ID: 1, CourseID: 10, PeerReviews: true}})

	c.AttachPeerReviewCount(1, 3)
	c.AttachPeerReviewCount(99, 5) // unknown id: must not introduce a record

	got := c.Assignments()
	if len(got) != 1 {
		t.Fatalf("peer-review data must never introduce new records, got %d", len(got))
	}
	if got[0].PeerReviewCount != 3 {
		t.Fatalf("want peer review count 3, got %d", got[0].PeerReviewCount)
	}
}

func TestCollectorPeerReviewIDs(t *testing.T) {
	c := NewCollector()
	c.Add([]Assignment{
		{ID: 1, CourseID: 10, PeerReviews: true},
		{ID: 2, CourseID: 10},
		{ID: 3, CourseID: 20, PeerReviews: true},
	})

	if got := c.PeerReviewIDs(10); !reflect.DeepEqual(got, []int64{1}) {
		t.Fatalf("peer review ids for course 10: want [1], got %v", got)
	}
}
