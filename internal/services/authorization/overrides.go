package authorization

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/JericoFX/advance-manager/internal/entities"
)

// OverrideKind tells which of the two accepted shapes an override entry used
type OverrideKind int

const (
	// GradeKeyed entries map a grade ("3" or "*") to permissions
	GradeKeyed OverrideKind = iota
	// PermissionKeyed entries map a permission to grade references
	PermissionKeyed
)

func (k OverrideKind) String() string {
	switch k {
	case GradeKeyed:
		return "grade"
	case PermissionKeyed:
		return "permission"
	default:
		return "unknown"
	}
}

// Override is one normalized entry of a business's permission overrides.
// For GradeKeyed entries Key is a grade key and Values are permissions;
// for PermissionKeyed entries Key is a permission and Values are grade keys.
// The wildcard "*" may appear on either side.
type Override struct {
	Kind   OverrideKind
	Key    string
	Values []string
}

// ParseOverrides normalizes the raw permissions sub-map of business metadata.
// Keys that parse as an integer or equal "*" are grade keys, every other key
// is a permission name. A value of true stands for the wildcard. Malformed
// entries are skipped and described in the returned warnings.
func ParseOverrides(raw map[string]any) ([]Override, []string) {
	if len(raw) == 0 {
		return nil, nil
	}

	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var overrides []Override
	var warnings []string
	for _, rawKey := range keys {
		key := strings.TrimSpace(rawKey)
		if key == "" {
			warnings = append(warnings, "skipping override with empty key")
			continue
		}

		if gradeKey, ok := normalizeGradeKey(key); ok {
			perms, err := permissionValues(raw[rawKey])
			if err != nil {
				warnings = append(warnings, fmt.Sprintf("grade %s: %v", key, err))
				continue
			}
			overrides = append(overrides, Override{Kind: GradeKeyed, Key: gradeKey, Values: perms})
			continue
		}

		grades, bad, err := gradeValues(raw[rawKey])
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("permission %s: %v", key, err))
			continue
		}
		for _, b := range bad {
			warnings = append(warnings, fmt.Sprintf("permission %s: ignoring grade reference %v", key, b))
		}
		overrides = append(overrides, Override{Kind: PermissionKeyed, Key: key, Values: grades})
	}
	return overrides, warnings
}

// normalizeGradeKey returns the canonical form of a grade key: "*" or a
// base-10 integer without leading zeros or sign noise.
func normalizeGradeKey(key string) (string, bool) {
	if key == entities.Wildcard {
		return key, true
	}
	n, err := strconv.Atoi(key)
	if err != nil {
		return "", false
	}
	return strconv.Itoa(n), true
}

// permissionValues accepts true, a single name, or a list of names
func permissionValues(v any) ([]string, error) {
	switch t := v.(type) {
	case bool:
		if !t {
			return nil, nil
		}
		return []string{entities.Wildcard}, nil
	case string:
		name := strings.TrimSpace(t)
		if name == "" {
			return nil, fmt.Errorf("empty permission name")
		}
		return []string{name}, nil
	case []string:
		return permissionValues(toAnySlice(t))
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			name, ok := item.(string)
			if !ok || strings.TrimSpace(name) == "" {
				continue
			}
			out = append(out, strings.TrimSpace(name))
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported value of type %T", v)
	}
}

// gradeValues accepts true, a single grade reference, or a list of them.
// Unusable list items are returned separately so the caller can warn.
func gradeValues(v any) ([]string, []any, error) {
	switch t := v.(type) {
	case bool:
		if !t {
			return nil, nil, nil
		}
		return []string{entities.Wildcard}, nil, nil
	case []any:
		var out []string
		var bad []any
		for _, item := range t {
			if key, ok := gradeRef(item); ok {
				out = append(out, key)
			} else {
				bad = append(bad, item)
			}
		}
		return out, bad, nil
	case []int:
		out := make([]string, 0, len(t))
		for _, n := range t {
			out = append(out, strconv.Itoa(n))
		}
		return out, nil, nil
	case []string:
		return gradeValues(toAnySlice(t))
	default:
		if key, ok := gradeRef(v); ok {
			return []string{key}, nil, nil
		}
		return nil, nil, fmt.Errorf("unsupported value of type %T", v)
	}
}

// gradeRef converts a number, numeric string, or "*" to a grade key
func gradeRef(v any) (string, bool) {
	switch t := v.(type) {
	case int:
		return strconv.Itoa(t), true
	case int64:
		return strconv.FormatInt(t, 10), true
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) || t != math.Trunc(t) {
			return "", false
		}
		return strconv.FormatInt(int64(t), 10), true
	case string:
		return normalizeGradeKey(strings.TrimSpace(t))
	default:
		return "", false
	}
}

func toAnySlice(in []string) []any {
	out := make([]any, len(in))
	for i, s := range in {
		out[i] = s
	}
	return out
}

// GrantsByGrade folds both override shapes into grade key -> sorted
// permissions, the form reported back to editors.
func GrantsByGrade(overrides []Override) map[string][]string {
	sets := make(map[string]map[string]struct{})
	add := func(grade, perm string) {
		if sets[grade] == nil {
			sets[grade] = make(map[string]struct{})
		}
		sets[grade][perm] = struct{}{}
	}
	for _, o := range overrides {
		for _, v := range o.Values {
			if o.Kind == GradeKeyed {
				add(o.Key, v)
			} else {
				add(v, o.Key)
			}
		}
	}

	out := make(map[string][]string, len(sets))
	for grade, perms := range sets {
		list := make([]string, 0, len(perms))
		for p := range perms {
			list = append(list, p)
		}
		sort.Strings(list)
		out[grade] = list
	}
	return out
}
