package canvas

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/tidwall/gjson"

	"canvasdigest/pkg/digest"
	"canvasdigest/pkg/whttp"
)

const requestTimeout = 30 * time.Second

// Client talks to the Canvas REST API. All timestamps in returned records
// are converted into loc at this boundary; nothing downstream re-parses
// API-shaped data.
type Client struct {
	baseURL string
	token   string
	loc     *time.Location
	http    *retryablehttp.Client
}

func NewClient(baseURL, token string, loc *time.Location) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		token:   token,
		loc:     loc,
		http:    whttp.NewClient(requestTimeout),
	}
}

// fetchPaginated GETs a collection endpoint and follows the Link header
// rel="next" URL until the server stops supplying one.
func (c *Client) fetchPaginated(path string, params url.Values) ([]gjson.Result, error) {
	currentURL := c.baseURL + path

	var results []gjson.Result
	for currentURL != "" {
		res, err := whttp.SendHTTPRequest(
			&whttp.WHTTPReq{
				Method: "GET",
				URL:    currentURL,
				Params: params,
				Headers: []whttp.WHTTPHeader{
					{Name: "Authorization", Value: "Bearer " + c.token},
				},
			}, c.http)
		if err != nil {
			return nil, err
		}
		if res.StatusCode != 200 {
			return nil, fmt.Errorf("GET %s: unexpected status %d", currentURL, res.StatusCode)
		}

		results = append(results, gjson.Parse(res.BodyString).Array()...)

		// Params are baked into the next-page URL.
		currentURL = nextPageURL(res.Headers.Get("Link"))
		params = nil
	}

	return results, nil
}

// nextPageURL extracts the rel="next" target from a Canvas Link header.
// An empty result means the last page was reached.
func nextPageURL(link string) string {
	for _, part := range strings.Split(link, ",") {
		if !strings.Contains(part, `rel="next"`) {
			continue
		}
		start := strings.Index(part, "<")
		end := strings.Index(part, ">")
		if start != -1 && end > start {
			return part[start+1 : end]
		}
	}
	return ""
}

// ActiveCourses lists enrolled courses whose term window contains now.
func (c *Client) ActiveCourses(now time.Time) ([]digest.Course, error) {
	results, err := c.fetchPaginated("/courses", url.Values{
		"enrollment_state": {"active"},
		"per_page":         {"100"},
	})
	if err != nil {
		return nil, err
	}

	var courses []digest.Course
	for _, r := range results {
		course := digest.Course{
			ID:      r.Get("id").Int(),
			Code:    r.Get("course_code").String(),
			Name:    r.Get("name").String(),
			StartAt: c.timePtr(r.Get("start_at")),
			EndAt:   c.timePtr(r.Get("end_at")),
		}
		if course.Active(now) {
			courses = append(courses, course)
		}
	}
	return courses, nil
}

// Assignments lists a course's assignments for one bucket ("upcoming" or
// "past") with submission data inlined.
func (c *Client) Assignments(courseID int64, bucket string) ([]digest.Assignment, error) {
	results, err := c.fetchPaginated(fmt.Sprintf("/courses/%d/assignments", courseID), url.Values{
		"per_page":  {"100"},
		"include[]": {"submission"},
		"bucket":    {bucket},
	})
	if err != nil {
		return nil, err
	}

	assignments := make([]digest.Assignment, 0, len(results))
	for _, r := range results {
		assignments = append(assignments, c.assignmentFromJSON(r, courseID))
	}
	return assignments, nil
}

// Announcements lists a course's announcements ordered by recent activity.
// Relevance filtering against the last run happens in the digest layer.
func (c *Client) Announcements(courseID int64) ([]digest.Announcement, error) {
	results, err := c.fetchPaginated(fmt.Sprintf("/courses/%d/discussion_topics", courseID), url.Values{
		"only_announcements": {"true"},
		"per_page":           {"100"},
		"order_by":           {"recent_activity"},
	})
	if err != nil {
		return nil, err
	}

	var anns []digest.Announcement
	for _, r := range results {
		posted := c.timePtr(r.Get("posted_at"))
		if posted == nil {
			continue
		}
		anns = append(anns, digest.Announcement{
			ID:       r.Get("id").Int(),
			Title:    r.Get("title").String(),
			Message:  r.Get("message").String(),
			PostedAt: *posted,
			URL:      r.Get("html_url").String(),
		})
	}
	return anns, nil
}

// PeerReviewCount returns how many peer reviews exist for an assignment.
func (c *Client) PeerReviewCount(courseID, assignmentID int64) (int, error) {
	results, err := c.fetchPaginated(fmt.Sprintf("/courses/%d/assignments/%d/peer_reviews", courseID, assignmentID), nil)
	if err != nil {
		return 0, err
	}
	return len(results), nil
}

// TodoAssignments returns the assignments embedded in the current user's
// to-do items.
func (c *Client) TodoAssignments() ([]digest.Assignment, error) {
	results, err := c.fetchPaginated("/users/self/todo", url.Values{"per_page": {"100"}})
	if err != nil {
		return nil, err
	}

	var assignments []digest.Assignment
	for _, r := range results {
		a := r.Get("assignment")
		if !a.Exists() {
			continue
		}
		courseID := a.Get("course_id").Int()
		if courseID == 0 {
			courseID = r.Get("course_id").Int()
		}
		assignments = append(assignments, c.assignmentFromJSON(a, courseID))
	}
	return assignments, nil
}

// CalendarAssignments returns the assignments embedded in the current
// user's upcoming calendar events.
func (c *Client) CalendarAssignments() ([]digest.Assignment, error) {
	results, err := c.fetchPaginated("/users/self/upcoming_events", url.Values{"per_page": {"100"}})
	if err != nil {
		return nil, err
	}

	var assignments []digest.Assignment
	for _, r := range results {
		a := r.Get("assignment")
		if !a.Exists() {
			continue
		}
		assignments = append(assignments, c.assignmentFromJSON(a, a.Get("course_id").Int()))
	}
	return assignments, nil
}

func (c *Client) assignmentFromJSON(r gjson.Result, courseID int64) digest.Assignment {
	a := digest.Assignment{
		ID:              r.Get("id").Int(),
		Name:            r.Get("name").String(),
		CourseID:        courseID,
		DueAt:           c.timePtr(r.Get("due_at")),
		LockAt:          c.timePtr(r.Get("lock_at")),
		PointsPossible:  r.Get("points_possible").Float(),
		SubmissionState: r.Get("submission.workflow_state").String(),
		Description:     r.Get("description").String(),
		URL:             r.Get("html_url").String(),
		PeerReviews:     r.Get("peer_reviews").Bool(),
	}
	for _, t := range r.Get("submission_types").Array() {
		a.SubmissionTypes = append(a.SubmissionTypes, t.String())
	}
	return a
}

// timePtr parses an RFC3339 timestamp field into the client's timezone.
// Missing or malformed values map to nil.
func (c *Client) timePtr(r gjson.Result) *time.Time {
	if !r.Exists() || r.String() == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, r.String())
	if err != nil {
		return nil
	}
	local := t.In(c.loc)
	return &local
}
