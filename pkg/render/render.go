package render

import (
	"bytes"
	"fmt"
	"html/template"
	"sort"
	"strings"
	"time"

	"canvasdigest/pkg/digest"
)

// Section accent colors, shared between the morning and evening bodies.
const (
	colorMissed       = "#dc3545"
	colorToday        = "#dc3545"
	colorTomorrow     = "#e67e22"
	colorSoon         = "#3498db"
	colorNew          = "#27ae60"
	colorAnnouncement = "#6c757d"
	colorWarning      = "#f0ad4e"
	colorHighStakes   = "#8b0000"
	colorDone         = "#555"
)

// Renderer turns digest decisions into email subjects and HTML bodies.
type Renderer struct {
	// HighStakesPoints marks assignments worth at least this many points
	// with a HIGH STAKES badge.
	HighStakesPoints float64
	// TruncateLength caps description and announcement excerpts.
	TruncateLength int
}

type badge struct {
	Text  string
	Color string
}

type card struct {
	Badges     []badge
	Name       string
	CourseLine string
	LockLine   string
	Desc       string
	URL        string
}

type section struct {
	Title string
	Color string
	Cards []card
}

type annCard struct {
	Title      string
	CourseLine string
	Excerpt    string
	URL        string
}

type page struct {
	Header       string
	HeaderColor  string
	Subtitle     string
	AllClear     bool
	Warning      string
	WarningColor string
	Sections     []section
	AnnTitle     string
	AnnColor     string
	AnnCards     []annCard
	ErrorMsg     string
}

var pageTmpl = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html><head><meta charset="utf-8"></head>
<body style="font-family:-apple-system,BlinkMacSystemFont,'Segoe UI',Roboto,sans-serif;background:#f5f5f5;margin:0;padding:20px;">
<div style="max-width:640px;margin:0 auto;">
    <div style="background:{{.HeaderColor}};color:#fff;padding:20px;border-radius:8px 8px 0 0;">
        <h1 style="margin:0;font-size:22px;">{{.Header}}</h1>
        <div style="color:#eee;font-size:14px;margin-top:4px;">{{.Subtitle}}</div>
    </div>
    <div style="background:#f9f9f9;padding:20px;border-radius:0 0 8px 8px;">
{{- if .ErrorMsg}}
        <div style="background:#dc3545;color:#fff;border-radius:6px;padding:16px;">
            <p style="margin:0;">{{.ErrorMsg}}</p>
            <p style="margin:8px 0 0 0;opacity:0.8;font-size:13px;">Check your API token and credentials.</p>
        </div>
{{- else if .AllClear}}
        <div style="background:#d4edda;border-radius:6px;padding:20px;text-align:center;color:#155724;font-size:16px;">No upcoming deadlines &mdash; you're all clear.</div>
{{- else}}
{{- if .Warning}}
        <div style="background:#fff3cd;border:1px solid {{.WarningColor}};border-radius:6px;padding:12px;margin-bottom:20px;">
            <strong style="color:#856404;">&#9888; Warning:</strong>
            <span style="color:#856404;">Failed to fetch data for: {{.Warning}}. These courses are excluded from this digest.</span>
        </div>
{{- end}}
{{- range .Sections}}
        <div style="border-left:4px solid {{.Color}};padding-left:16px;margin-bottom:24px;">
            <h2 style="color:{{.Color}};font-size:18px;margin:0 0 12px 0;">{{.Title}}</h2>
{{- range .Cards}}
            <div style="background:#fff;border:1px solid #e0e0e0;border-radius:6px;padding:14px;margin-bottom:10px;">
                <div>{{range .Badges}}<span style="display:inline-block;background:{{.Color}};color:#fff;padding:2px 8px;border-radius:3px;font-size:12px;font-weight:bold;margin-right:4px;">{{.Text}}</span>{{end}}</div>
                <div style="font-size:16px;font-weight:bold;margin-top:4px;">{{.Name}}</div>
                <div style="color:#555;font-size:13px;">{{.CourseLine}}</div>
{{- if .LockLine}}
                <div style="color:#888;font-size:13px;">{{.LockLine}}</div>
{{- end}}
{{- if .Desc}}
                <div style="color:#666;font-size:13px;margin-top:4px;">&quot;{{.Desc}}&quot;</div>
{{- end}}
                <div style="margin-top:8px;"><a href="{{.URL}}" style="color:#0066cc;font-size:13px;text-decoration:none;">View on Canvas &rarr;</a></div>
            </div>
{{- end}}
        </div>
{{- end}}
{{- if .AnnCards}}
        <div style="border-left:4px solid {{.AnnColor}};padding-left:16px;margin-bottom:24px;">
            <h2 style="color:{{.AnnColor}};font-size:18px;margin:0 0 12px 0;">{{.AnnTitle}}</h2>
{{- range .AnnCards}}
            <div style="background:#fff;border:1px solid #e0e0e0;border-radius:6px;padding:14px;margin-bottom:10px;">
                <div style="font-size:15px;font-weight:bold;">{{.Title}}</div>
                <div style="color:#555;font-size:13px;">{{.CourseLine}}</div>
                <div style="color:#666;font-size:13px;margin-top:4px;">{{.Excerpt}}</div>
                <div style="margin-top:6px;"><a href="{{.URL}}" style="color:#0066cc;font-size:13px;text-decoration:none;">Read more &rarr;</a></div>
            </div>
{{- end}}
        </div>
{{- end}}
{{- end}}
    </div>
    <div style="text-align:center;color:#999;font-size:12px;margin-top:16px;">
        Sent by canvasdigest
    </div>
</div>
</body></html>
`))

// Morning renders the full daily digest (or the all-clear notice).
func (r Renderer) Morning(d digest.Digest, now time.Time) (string, string, error) {
	subject := "Canvas Daily Digest — " + fmtDate(now)

	p := page{
		Header:       "Canvas Daily Digest",
		HeaderColor:  "#1a1a2e",
		Subtitle:     fmt.Sprintf("%s · %d courses · %d assignments tracked", fmtDate(now), d.CourseCount, d.AssignmentCount),
		AllClear:     d.AllClear,
		WarningColor: colorWarning,
	}

	if !d.AllClear {
		p.Warning = strings.Join(d.FailedCourses, ", ")
		p.Sections = r.appendSection(p.Sections, "⚠ MISSED", colorMissed, d.Buckets.Missed, false, true)
		p.Sections = r.appendSection(p.Sections, "⚠ DUE TODAY — PAST", colorToday, d.Buckets.TodayPast, false, true)
		p.Sections = r.appendSection(p.Sections, "DUE TODAY", colorToday, d.Buckets.Today, false, true)
		p.Sections = r.appendSection(p.Sections, "DUE TOMORROW", colorTomorrow, d.Buckets.Tomorrow, false, true)
		p.Sections = r.appendSection(p.Sections, "DUE IN 2-3 DAYS", colorSoon, d.Buckets.Soon, false, true)
		p.Sections = r.appendSection(p.Sections, "NEW ASSIGNMENTS", colorNew, d.Buckets.New, true, true)
		p.AnnTitle = "ANNOUNCEMENTS"
		p.AnnColor = colorAnnouncement
		p.AnnCards = r.announcementCards(d.Announcements)
	}

	body, err := execute(p)
	return subject, body, err
}

// Evening renders the next-day reminder.
func (r Renderer) Evening(items []digest.Assignment, now time.Time) (string, string, error) {
	subject := "Canvas Evening Alert — " + fmtDate(now)

	p := page{
		Header:      "Canvas Evening Alert",
		HeaderColor: colorTomorrow,
		Subtitle:    fmtDate(now) + " · Due tomorrow",
	}
	p.Sections = r.appendSection(p.Sections, "DUE TOMORROW (unsubmitted)", colorTomorrow, items, false, false)

	body, err := execute(p)
	return subject, body, err
}

// Error renders the fetch-failure notification. It carries no partial data.
func (r Renderer) Error(msg string, now time.Time) (string, string, error) {
	subject := "Canvas Alerts Error — " + fmtDate(now)

	p := page{
		Header:      "Canvas Alerts Failed",
		HeaderColor: colorMissed,
		Subtitle:    fmtDate(now),
		ErrorMsg:    msg,
	}

	body, err := execute(p)
	return subject, body, err
}

// appendSection adds a bucket section when it has any items; empty buckets
// are hidden from the digest entirely.
func (r Renderer) appendSection(sections []section, title, color string, items []digest.Assignment, showNew, showDone bool) []section {
	if len(items) == 0 {
		return sections
	}
	s := section{Title: title, Color: color}
	for _, a := range items {
		s.Cards = append(s.Cards, r.assignmentCard(a, showNew, showDone))
	}
	return append(sections, s)
}

func (r Renderer) assignmentCard(a digest.Assignment, showNew, showDone bool) card {
	var badges []badge
	if a.PointsPossible > 0 && a.PointsPossible >= r.HighStakesPoints {
		badges = append(badges, badge{Text: "HIGH STAKES", Color: colorHighStakes})
	}
	if showNew {
		badges = append(badges, badge{Text: "NEW", Color: colorNew})
	}
	if showDone && a.Submitted() {
		badges = append(badges, badge{Text: "✓ DONE", Color: colorDone})
	}

	name := a.Name
	if name == "" {
		name = "Untitled"
	}

	courseLine := a.CourseLabel
	if dl, ok := a.EffectiveDeadline(); ok {
		courseLine += " · Due " + fmtDeadline(dl)
	}
	if a.PointsPossible > 0 {
		courseLine += fmt.Sprintf(" · %d pts", int(a.PointsPossible))
	}
	if label := submissionTypesLabel(a.SubmissionTypes); label != "" {
		courseLine += " · " + label
	}

	lockLine := ""
	if a.LockAt != nil && a.DueAt != nil && !a.LockAt.Equal(*a.DueAt) {
		lockLine = "Locks: " + fmtDeadline(*a.LockAt)
	}

	return card{
		Badges:     badges,
		Name:       name,
		CourseLine: courseLine,
		LockLine:   lockLine,
		Desc:       Truncate(StripHTML(a.Description), r.TruncateLength),
		URL:        a.URL,
	}
}

// submissionTypesLabel joins submission types into a readable list,
// dropping the "none" placeholder.
func submissionTypesLabel(types []string) string {
	var parts []string
	for _, t := range types {
		if t == "none" {
			continue
		}
		words := strings.Fields(strings.ReplaceAll(t, "_", " "))
		for i, w := range words {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
		parts = append(parts, strings.Join(words, " "))
	}
	return strings.Join(parts, ", ")
}

func execute(p page) (string, error) {
	var buf bytes.Buffer
	if err := pageTmpl.Execute(&buf, p); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func fmtDate(t time.Time) string {
	return t.Format("Jan 2, 2006")
}

func fmtDeadline(t time.Time) string {
	return t.Format("Mon 3:04 PM MST")
}

func fmtPosted(t time.Time) string {
	return t.Format("Jan 2, 3:04 PM MST")
}

func (r Renderer) announcementCards(byCourse map[string][]digest.Announcement) []annCard {
	labels := make([]string, 0, len(byCourse))
	for label := range byCourse {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	var cards []annCard
	for _, label := range labels {
		for _, ann := range byCourse[label] {
			title := ann.Title
			if title == "" {
				title = "Untitled"
			}
			cards = append(cards, annCard{
				Title:      title,
				CourseLine: label + " · " + fmtPosted(ann.PostedAt),
				Excerpt:    Truncate(StripHTML(ann.Message), r.TruncateLength),
				URL:        ann.URL,
			})
		}
	}
	return cards
}
