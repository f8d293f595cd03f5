package digest

// DecideMorning produces the morning digest decision. The digest is always
// sent; when every bucket is empty, no announcement is relevant and no
// course failed, it is an all-clear notice instead of a full digest.
func DecideMorning(b Buckets, anns map[string][]Announcement, failedCourses []string, courseCount, assignmentCount int) Digest {
	return Digest{
		Mode:            ModeMorning,
		Buckets:         b,
		Announcements:   anns,
		FailedCourses:   failedCourses,
		CourseCount:     courseCount,
		AssignmentCount: assignmentCount,
		AllClear:        b.Empty() && len(anns) == 0 && len(failedCourses) == 0,
	}
}

// DecideEvening produces the evening decision from the tomorrow-unsubmitted
// filter. An empty reminder list means nothing is sent.
func DecideEvening(reminder []Assignment) Digest {
	return Digest{
		Mode:        ModeEvening,
		Reminder:    reminder,
		SendNothing: len(reminder) == 0,
	}
}
