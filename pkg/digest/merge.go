package digest

// Collector merges assignment records from the four fetch sources into one
// collection deduplicated by assignment ID. The first source to contribute
// an ID wins; later sources never overwrite an existing record.
//
// Expected call order mirrors source priority: course assignment listings
// (both buckets), then peer-review attachment, then to-do items, then
// calendar events.
type Collector struct {
	byID  map[int64]Assignment
	order []int64
}

func NewCollector() *Collector {
	return &Collector{byID: make(map[int64]Assignment)}
}

// Add inserts assignments that are not already present.
func (c *Collector) Add(assignments []Assignment) {
	for _, a := range assignments {
		if _, ok := c.byID[a.ID]; ok {
			continue
		}
		c.byID[a.ID] = a
		c.order = append(c.order, a.ID)
	}
}

// AttachPeerReviewCount records peer-review enrichment on an already
// collected assignment. Unknown IDs are ignored: peer-review data never
// introduces new records.
func (c *Collector) AttachPeerReviewCount(id int64, count int) {
	a, ok := c.byID[id]
	if !ok {
		return
	}
	a.PeerReviewCount = count
	c.byID[id] = a
}

// PeerReviewIDs reports the IDs of collected assignments belonging to
// courseID that are flagged for peer review.
func (c *Collector) PeerReviewIDs(courseID int64) []int64 {
	var ids []int64
	for _, id := range c.order {
		a := c.byID[id]
		if a.CourseID == courseID && a.PeerReviews {
			ids = append(ids, id)
		}
	}
	return ids
}

// Assignments returns the merged collection in insertion order.
func (c *Collector) Assignments() []Assignment {
	out := make([]Assignment, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.byID[id])
	}
	return out
}
