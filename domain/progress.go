package domain

// Progress is derived from a project's task collection. It is recomputed on
// every read and never stored on the entity.
type Progress struct {
	TotalTasks         int     `json:"totalTasks"`
	CompletedTasks     int     `json:"completedTasks"`
	ProgressPercentage float64 `json:"progressPercentage"`
}

// TaskProgress counts total and completed tasks. An empty collection yields
// zero percent rather than dividing by zero.
func TaskProgress(tasks []Task) Progress {
	completed := 0
	for _, t := range tasks {
		if t.Completed {
			completed++
		}
	}
	p := Progress{TotalTasks: len(tasks), CompletedTasks: completed}
	if p.TotalTasks > 0 {
		p.ProgressPercentage = float64(completed) / float64(p.TotalTasks) * 100
	}
	return p
}
