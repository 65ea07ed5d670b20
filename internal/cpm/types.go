package cpm

// CPMResult holds the complete critical path analysis.
type CPMResult struct {
	Tasks         map[string]*TaskSchedule `json:"tasks"`
	CriticalPath  []string                 `json:"critical_path"` // ordered task IDs on critical path
	TotalDuration int                      `json:"total_duration"`
	Waves         []Wave                   `json:"waves"` // parallelizable groups
	TopoOrder     []string                 `json:"topo_order"`
}

// TaskSchedule holds the scheduling info for a single task.
type TaskSchedule struct {
	TaskID     string `json:"task_id"`
	Duration   int    `json:"duration"`
	ES         int    `json:"es"` // earliest start
	EF         int    `json:"ef"` // earliest finish
	LS         int    `json:"ls"` // latest start
	LF         int    `json:"lf"` // latest finish
	Slack      int    `json:"slack"`
	IsCritical bool   `json:"is_critical"`
	Wave       int    `json:"wave"` // which parallel wave this belongs to
}

// Wave represents a group of tasks that share an earliest start.
type Wave struct {
	Index      int      `json:"index"`
	Start      int      `json:"start"`
	TaskIDs    []string `json:"task_ids"`
	IsCritical bool     `json:"is_critical"` // true if wave contains critical path tasks
}
