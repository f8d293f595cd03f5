package canvas

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestFetchPaginatedFollowsLinkHeader(t *testing.T) {
	var authHeaders []string
	var mux *http.ServeMux
	var srv *httptest.Server

	mux = http.NewServeMux()
	srv = httptest.NewServer(mux)
	defer srv.Close()

	mux.HandleFunc("/courses", func(w http.ResponseWriter, r *http.Request) {
		authHeaders = append(authHeaders, r.Header.Get("Authorization"))
		switch r.URL.Query().Get("page") {
		case "", "1":
			w.Header().Set("Link", fmt.Sprintf(`<%s/courses?page=2>; rel="next", <%s/courses?page=1>; rel="first"`, srv.URL, srv.URL))
			fmt.Fprint(w, `[{"id": 1, "course_code": "CS101"}]`)
		case "2":
			// No next link: pagination ends here.
			fmt.Fprint(w, `[{"id": 2, "course_code": "HIST210"}]`)
		default:
			http.NotFound(w, r)
		}
	})

	client := NewClient(srv.URL, "secret-token", time.UTC)
	courses, err := client.ActiveCourses(time.Date(2024, 3, 10, 7, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}

	if len(courses) != 2 {
		t.Fatalf("want 2 courses across 2 pages, got %d", len(courses))
	}
	if courses[0].Code != "CS101" || courses[1].Code != "HIST210" {
		t.Fatalf("unexpected courses: %+v", courses)
	}
	for _, h := range authHeaders {
		if h != "Bearer secret-token" {
			t.Fatalf("every request must carry the bearer credential, got %q", h)
		}
	}
}

func TestFetchPaginatedSurfacesHTTPFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "bad-token", time.UTC)
	if _, err := client.ActiveCourses(time.Now()); err == nil {
		t.Fatal("expected an error for a non-200 response")
	}
}

func TestActiveCoursesFiltersEnrollmentWindow(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[
			{"id": 1, "course_code": "OPEN"},
			{"id": 2, "course_code": "CURRENT", "start_at": "2024-01-01T00:00:00Z", "end_at": "2024-06-01T00:00:00Z"},
			{"id": 3, "course_code": "ENDED", "end_at": "2024-02-01T00:00:00Z"},
			{"id": 4, "course_code": "FUTURE", "start_at": "2024-09-01T00:00:00Z"}
		]`)
	}))
	defer srv.Close()

	now := time.Date(2024, 3, 10, 7, 0, 0, 0, time.UTC)
	client := NewClient(srv.URL, "token", time.UTC)
	courses, err := client.ActiveCourses(now)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}

	if len(courses) != 2 {
		t.Fatalf("want 2 active courses, got %d: %+v", len(courses), courses)
	}
	if courses[0].Code != "OPEN" || courses[1].Code != "CURRENT" {
		t.Fatalf("unexpected active courses: %+v", courses)
	}
}

func TestAssignmentsMapping(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("bucket"); got != "upcoming" {
			t.Errorf("want bucket=upcoming, got %q", got)
		}
		if got := r.URL.Query().Get("include[]"); got != "submission" {
			t.Errorf("want include[]=submission, got %q", got)
		}
		fmt.Fprint(w, `[{
			"id": 42,
			"name": "Problem Set 3",
			"due_at": "2024-03-11T14:00:00Z",
			"lock_at": "2024-03-12T00:00:00Z",
			"points_possible": 25,
			"submission_types": ["online_upload", "online_text_entry"],
			"submission": {"workflow_state": "submitted"},
			"html_url": "https://canvas.example.com/a/42",
			"peer_reviews": true
		}, {
			"id": 43,
			"name": "Ungraded survey"
		}]`)
	}))
	defer srv.Close()

	loc := time.FixedZone("ET", -5*3600)
	client := NewClient(srv.URL, "token", loc)
	assignments, err := client.Assignments(10, "upcoming")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(assignments) != 2 {
		t.Fatalf("want 2 assignments, got %d", len(assignments))
	}

	a := assignments[0]
	if a.ID != 42 || a.Name != "Problem Set 3" || a.CourseID != 10 {
		t.Fatalf("unexpected assignment: %+v", a)
	}
	if a.DueAt == nil || a.DueAt.Location() != loc {
		t.Fatalf("due timestamp must be converted into the configured timezone: %v", a.DueAt)
	}
	if !a.DueAt.Equal(time.Date(2024, 3, 11, 14, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected due time: %v", a.DueAt)
	}
	if !a.Submitted() || !a.PeerReviews || a.PointsPossible != 25 {
		t.Fatalf("unexpected assignment fields: %+v", a)
	}
	if len(a.SubmissionTypes) != 2 {
		t.Fatalf("want 2 submission types, got %v", a.SubmissionTypes)
	}

	b := assignments[1]
	if b.DueAt != nil || b.LockAt != nil || b.Submitted() {
		t.Fatalf("missing optional fields must map to zero values: %+v", b)
	}
}

func TestTodoAndCalendarKeepOnlyEmbeddedAssignments(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/users/self/todo", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[
			{"type": "grading", "course_id": 10},
			{"type": "submitting", "course_id": 10, "assignment": {"id": 7, "name": "Quiz 2"}}
		]`)
	})
	mux.HandleFunc("/users/self/upcoming_events", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[
			{"title": "Office hours"},
			{"title": "Essay due", "assignment": {"id": 8, "name": "Essay", "course_id": 20}}
		]`)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	client := NewClient(srv.URL, "token", time.UTC)

	todo, err := client.TodoAssignments()
	if err != nil {
		t.Fatalf("todo: %v", err)
	}
	if len(todo) != 1 || todo[0].ID != 7 || todo[0].CourseID != 10 {
		t.Fatalf("unexpected todo assignments: %+v", todo)
	}

	events, err := client.CalendarAssignments()
	if err != nil {
		t.Fatalf("calendar: %v", err)
	}
	if len(events) != 1 || events[0].ID != 8 || events[0].CourseID != 20 {
		t.Fatalf("unexpected calendar assignments: %+v", events)
	}
}

func TestNextPageURL(t *testing.T) {
	cases := []struct {
		link string
		want string
	}{
		{`<https://c.example.com/courses?page=2>; rel="next"`, "https://c.example.com/courses?page=2"},
		{`<https://c.example.com/courses?page=1>; rel="first", <https://c.example.com/courses?page=3>; rel="next"`, "https://c.example.com/courses?page=3"},
		{`<https://c.example.com/courses?page=1>; rel="first"`, ""},
		{"", ""},
	}
	for _, tc := range cases {
		if got := nextPageURL(tc.link); got != tc.want {
			t.Fatalf("link %q: want %q, got %q", tc.link, tc.want, got)
		}
	}
}
