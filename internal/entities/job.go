package entities

import "sort"

// UnemployedJob is the neutral job assigned to fired actors
const UnemployedJob = "unemployed"

// PermissionGrant is a grade's declared default permissions.
// All is the boolean shorthand meaning "every permission".
type PermissionGrant struct {
	All   bool
	Names []string
}

// Grade represents one rung of a job's hierarchy as defined by the job directory
type Grade struct {
	Level       int             // Grade number
	Label       string          // Display label
	Payment     *int64          // Suggested payment, nil when the job does not define one
	IsBoss      bool            // Implicit full authority over the business
	Permissions PermissionGrant // Job-level default permissions
}

// JobInfo is a resolved job definition
type JobInfo struct {
	Name      string
	Label     string
	Grades    map[int]Grade
	BossGrade *int // Lowest-numbered boss grade, nil if none
}

// NewJobInfo builds a JobInfo and derives BossGrade from the grades
func NewJobInfo(name, label string, grades map[int]Grade) *JobInfo {
	job := &JobInfo{Name: name, Label: label, Grades: grades}
	for _, level := range job.SortedLevels() {
		if grades[level].IsBoss {
			boss := level
			job.BossGrade = &boss
			break
		}
	}
	return job
}

// HasGrade reports whether level is a member of the job's grade set
func (j *JobInfo) HasGrade(level int) bool {
	_, ok := j.Grades[level]
	return ok
}

// GetGrade returns the grade definition by level
func (j *JobInfo) GetGrade(level int) (Grade, bool) {
	g, ok := j.Grades[level]
	return g, ok
}

// IsBossGrade reports whether level exists and is flagged boss
func (j *JobInfo) IsBossGrade(level int) bool {
	g, ok := j.Grades[level]
	return ok && g.IsBoss
}

// SortedLevels returns the grade levels in ascending order
func (j *JobInfo) SortedLevels() []int {
	levels := make([]int, 0, len(j.Grades))
	for level := range j.Grades {
		levels = append(levels, level)
	}
	sort.Ints(levels)
	return levels
}

// ResolveWage returns the authoritative wage for a grade: the job's payment
// when defined, otherwise the fallback clamped to the wage bounds.
func (j *JobInfo) ResolveWage(level int, fallback int64) int64 {
	if g, ok := j.Grades[level]; ok && g.Payment != nil {
		return ClampWage(*g.Payment)
	}
	return ClampWage(fallback)
}

// Clone returns a deep copy of the job
func (j *JobInfo) Clone() *JobInfo {
	if j == nil {
		return nil
	}
	out := &JobInfo{Name: j.Name, Label: j.Label, Grades: make(map[int]Grade, len(j.Grades))}
	for level, g := range j.Grades {
		if g.Payment != nil {
			p := *g.Payment
			g.Payment = &p
		}
		g.Permissions.Names = append([]string(nil), g.Permissions.Names...)
		out.Grades[level] = g
	}
	if j.BossGrade != nil {
		b := *j.BossGrade
		out.BossGrade = &b
	}
	return out
}

// GradeMetadata is a row for populating grade selection UIs
type GradeMetadata struct {
	Grade  int    `json:"grade"`
	Label  string `json:"label"`
	Wage   int64  `json:"wage"`
	IsBoss bool   `json:"isboss"`
}

// GradeMetadata returns the job's grades ordered by grade number
func (j *JobInfo) GradeMetadata() []GradeMetadata {
	out := make([]GradeMetadata, 0, len(j.Grades))
	for _, level := range j.SortedLevels() {
		g := j.Grades[level]
		var wage int64
		if g.Payment != nil {
			wage = *g.Payment
		}
		out = append(out, GradeMetadata{Grade: level, Label: g.Label, Wage: wage, IsBoss: g.IsBoss})
	}
	return out
}
