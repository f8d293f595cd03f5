package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"canvasdigest/internal/utils"
	"canvasdigest/pkg/canvas"
	"canvasdigest/pkg/digest"
	"canvasdigest/pkg/mailer"
	"canvasdigest/pkg/render"
	"canvasdigest/pkg/state"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one digest cycle and deliver the result",
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) > 0 {
			return fmt.Errorf("unknown command: '%s'. See 'canvasdigest run --help'", args[0])
		}

		modeFlag, _ := cmd.Flags().GetString("mode")
		dryRun, _ := cmd.Flags().GetBool("dry-run")

		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		now := time.Now().In(cfg.Location)
		return runMode(cmd.Context(), cfg, modeFlag, now, dryRun)
	},
}

// runMode resolves the digest mode and runs one cycle. An out-of-window
// invocation is a successful no-op; delivery credentials are only required
// once a digest will actually run.
func runMode(ctx context.Context, cfg *Config, modeFlag string, now time.Time, dryRun bool) error {
	override := modeFlag
	if override == "" {
		override = cfg.ModeOverride
	}
	mode, ok, err := resolveMode(override, now)
	if err != nil {
		return err
	}
	if !ok {
		utils.Log.Infof("Current hour is %d, outside digest windows; nothing to do.", now.Hour())
		return nil
	}
	if !dryRun {
		if err := cfg.mailReady(); err != nil {
			return err
		}
	}

	utils.Log.Infof("Mode: %s | Time: %s", mode, now.Format("2006-01-02 03:04 PM MST"))
	return runDigest(ctx, cfg, mode, now, dryRun)
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringP("mode", "m", "", "Digest mode override (morning or evening). Default: derived from the current hour")
	runCmd.Flags().Bool("dry-run", false, "Render to stdout, skip delivery and state persistence")
}

// resolveMode applies the explicit override, else derives the mode from the
// local hour: [06,12) is morning, [18,23) is evening, anything else is a
// no-op run.
func resolveMode(override string, now time.Time) (digest.Mode, bool, error) {
	switch override {
	case "morning":
		return digest.ModeMorning, true, nil
	case "evening":
		return digest.ModeEvening, true, nil
	case "":
	default:
		return "", false, fmt.Errorf("invalid mode %q: want morning or evening", override)
	}

	hour := now.Hour()
	if hour >= 6 && hour < 12 {
		return digest.ModeMorning, true, nil
	}
	if hour >= 18 && hour < 23 {
		return digest.ModeEvening, true, nil
	}
	return "", false, nil
}

// runDigest executes one full cycle: load state, fetch, normalize,
// classify, decide, deliver, persist. State is persisted on every path
// except a fatal course-enumeration failure and dry runs.
func runDigest(ctx context.Context, cfg *Config, mode digest.Mode, now time.Time, dryRun bool) error {
	store, err := state.Open(cfg.StateDB)
	if err != nil {
		return err
	}
	defer store.Close()

	st, err := store.Load(ctx)
	if err != nil {
		return err
	}

	var lastRun *time.Time
	if mode == digest.ModeMorning {
		lastRun = st.LastMorningRun
	} else {
		lastRun = st.LastEveningRun
	}

	client := canvas.NewClient(cfg.BaseURL, cfg.Token, cfg.Location)
	renderer := render.Renderer{
		HighStakesPoints: cfg.HighStakesPoints,
		TruncateLength:   cfg.TruncateLength,
	}
	deliver := func(subject, body string) error {
		if dryRun {
			fmt.Println("Subject: " + subject)
			fmt.Println(body)
			return nil
		}
		return mailer.New(cfg.SendgridKey, cfg.FromEmail, cfg.FromName, cfg.Recipients).Send(subject, body)
	}

	// Course enumeration is the only fatal fetch. On failure an error
	// notification goes out and state stays untouched, so the next run
	// retries from the same baseline.
	courses, err := client.ActiveCourses(now)
	if err != nil {
		utils.Log.Errorf("Fatal: cannot fetch courses: %v", err)
		subject, body, rerr := renderer.Error(fmt.Sprintf("Could not fetch courses: %v", err), now)
		if rerr != nil {
			utils.Log.Errorf("Could not render error notification: %v", rerr)
			return err
		}
		if serr := deliver(subject, body); serr != nil {
			utils.Log.Errorf("Could not deliver error notification: %v", serr)
		}
		return err
	}
	utils.Log.Infof("Active courses: %d", len(courses))

	collector, annsByCourse, failedCourses := collectCourseData(client, courses, lastRun, now)

	courseLabels := make(map[int64]string, len(courses))
	for _, course := range courses {
		courseLabels[course.ID] = course.Label()
	}

	// To-do items and calendar events only contribute assignments not seen
	// in any course listing. Their failures are non-critical.
	if todo, err := client.TodoAssignments(); err != nil {
		utils.Log.Warnf("Todo fetch failed (non-critical): %v", err)
	} else {
		collector.Add(withCourseLabels(todo, courseLabels))
	}
	if events, err := client.CalendarAssignments(); err != nil {
		utils.Log.Warnf("Calendar fetch failed (non-critical): %v", err)
	} else {
		collector.Add(withCourseLabels(events, courseLabels))
	}

	assignments := collector.Assignments()
	utils.Log.Infof("Total assignments: %d", len(assignments))

	switch mode {
	case digest.ModeMorning:
		buckets := digest.Classify(assignments, lastRun, st.SeenIDs(), now)
		d := digest.DecideMorning(buckets, annsByCourse, failedCourses, len(courses), len(assignments))

		subject, body, err := renderer.Morning(d, now)
		if err != nil {
			return err
		}
		if err := deliver(subject, body); err != nil {
			return err
		}

		// Recorded regardless of digest content, including all-clear runs.
		t := now
		st.LastMorningRun = &t
		for _, a := range assignments {
			var due *time.Time
			if dl, ok := a.EffectiveDeadline(); ok {
				due = &dl
			}
			st.MarkSeen(a.Key(), a.Name, a.CourseLabel, due, now)
		}

	case digest.ModeEvening:
		d := digest.DecideEvening(digest.TomorrowUnsubmitted(assignments, now))
		if d.SendNothing {
			utils.Log.Info("No unsubmitted items due tomorrow; skipping evening email.")
		} else {
			subject, body, err := renderer.Evening(d.Reminder, now)
			if err != nil {
				return err
			}
			if err := deliver(subject, body); err != nil {
				return err
			}
		}

		t := now
		st.LastEveningRun = &t
	}

	if dryRun {
		utils.Log.Info("Dry run; state not persisted.")
		return nil
	}
	if err := store.Save(ctx, st); err != nil {
		return err
	}
	utils.Log.Debug("State saved.")
	return nil
}

// collectCourseData fetches every course's data in sequence. A course whose
// fetch fails is recorded by label and skipped; the remaining courses still
// contribute to the collector.
func collectCourseData(client *canvas.Client, courses []digest.Course, lastRun *time.Time, now time.Time) (*digest.Collector, map[string][]digest.Announcement, []string) {
	collector := digest.NewCollector()
	annsByCourse := make(map[string][]digest.Announcement)
	var failedCourses []string

	for _, course := range courses {
		label := course.Label()
		if err := fetchCourseData(client, course.ID, label, lastRun, now, collector, annsByCourse); err != nil {
			utils.Log.Warnf("Failed to fetch data for %s: %v", label, err)
			failedCourses = append(failedCourses, label)
		}
	}
	return collector, annsByCourse, failedCourses
}

// fetchCourseData pulls one course's assignments (both buckets), attaches
// peer-review enrichment, and collects relevant announcements. An error
// from assignments or announcements marks the whole course failed;
// peer-review failures are swallowed per assignment.
func fetchCourseData(
	client *canvas.Client,
	courseID int64,
	label string,
	lastRun *time.Time,
	now time.Time,
	collector *digest.Collector,
	annsByCourse map[string][]digest.Announcement,
) error {
	for _, bucket := range []string{"upcoming", "past"} {
		assignments, err := client.Assignments(courseID, bucket)
		if err != nil {
			return err
		}
		for i := range assignments {
			assignments[i].CourseLabel = label
		}
		collector.Add(assignments)
	}

	for _, id := range collector.PeerReviewIDs(courseID) {
		count, err := client.PeerReviewCount(courseID, id)
		if err != nil {
			utils.Log.Debugf("Peer review fetch failed for assignment %d (non-critical): %v", id, err)
			continue
		}
		collector.AttachPeerReviewCount(id, count)
	}

	anns, err := client.Announcements(courseID)
	if err != nil {
		return err
	}
	relevant := digest.RelevantAnnouncements(anns, lastRun, now)
	if len(relevant) > 0 {
		for i := range relevant {
			relevant[i].CourseLabel = label
		}
		annsByCourse[label] = relevant
	}

	return nil
}

func withCourseLabels(assignments []digest.Assignment, labels map[int64]string) []digest.Assignment {
	for i := range assignments {
		if label, ok := labels[assignments[i].CourseID]; ok {
			assignments[i].CourseLabel = label
		} else {
			assignments[i].CourseLabel = digest.UnknownCourseLabel
		}
	}
	return assignments
}
