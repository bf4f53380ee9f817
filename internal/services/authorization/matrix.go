package authorization

import (
	"sort"
	"strconv"
	"strings"

	"github.com/JericoFX/advance-manager/internal/entities"
)

// Matrix is the effective grade → permission map of one business: the job's
// grade defaults with the business overrides merged on top. Overrides only
// add grants; they never revoke a job default.
type Matrix struct {
	grants   map[string]map[string]struct{} // grade key -> permissions
	boss     map[int]struct{}               // boss grades from the job schema
	warnings []string
}

// BuildMatrix builds the effective matrix for a business bound to job
func BuildMatrix(business *entities.Business, job *entities.JobInfo) *Matrix {
	m := &Matrix{
		grants: make(map[string]map[string]struct{}),
		boss:   make(map[int]struct{}),
	}

	if job != nil {
		for level, grade := range job.Grades {
			key := strconv.Itoa(level)
			if grade.IsBoss {
				m.boss[level] = struct{}{}
			}
			if grade.Permissions.All {
				m.grant(key, entities.Wildcard)
			}
			for _, name := range grade.Permissions.Names {
				if name = strings.TrimSpace(name); name != "" {
					m.grant(key, name)
				}
			}
		}
	}

	if business != nil {
		overrides, warnings := ParseOverrides(business.PermissionOverrides())
		m.warnings = warnings
		for _, o := range overrides {
			switch o.Kind {
			case GradeKeyed:
				for _, perm := range o.Values {
					m.grant(o.Key, perm)
				}
			case PermissionKeyed:
				for _, grade := range o.Values {
					m.grant(grade, o.Key)
				}
			}
		}
	}

	return m
}

func (m *Matrix) grant(gradeKey, permission string) {
	perms, ok := m.grants[gradeKey]
	if !ok {
		perms = make(map[string]struct{})
		m.grants[gradeKey] = perms
	}
	perms[permission] = struct{}{}
}

func (m *Matrix) has(gradeKey, permission string) bool {
	_, ok := m.grants[gradeKey][permission]
	return ok
}

// IsGranted reports whether grade holds permission.
// "boss" is granted only to boss grades of the job schema, regardless of
// overrides or wildcards. Other permissions are looked up in order:
// exact, any permission for the grade, the permission for any grade,
// any permission for any grade.
func (m *Matrix) IsGranted(grade int, permission string) bool {
	if permission == entities.PermissionBoss {
		return m.IsBoss(grade)
	}

	key := strconv.Itoa(grade)
	return m.has(key, permission) ||
		m.has(key, entities.Wildcard) ||
		m.has(entities.Wildcard, permission) ||
		m.has(entities.Wildcard, entities.Wildcard)
}

// IsBoss reports whether grade is a boss grade
func (m *Matrix) IsBoss(grade int) bool {
	_, ok := m.boss[grade]
	return ok
}

// Permissions returns the sorted permissions granted directly to a grade key
func (m *Matrix) Permissions(gradeKey string) []string {
	perms := m.grants[gradeKey]
	out := make([]string, 0, len(perms))
	for p := range perms {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Warnings lists override entries that were skipped while building
func (m *Matrix) Warnings() []string {
	return append([]string(nil), m.warnings...)
}
