package authorization

import "github.com/JericoFX/advance-manager/internal/entities"

func int64p(v int64) *int64 { return &v }

// policeJob: 0 recruit, 1 officer, 2 corporal (employees), 3 sergeant
// (hiring + employees), 4 chief (boss)
func policeJob() *entities.JobInfo {
	return entities.NewJobInfo("police", "Police", map[int]entities.Grade{
		0: {Level: 0, Label: "Recruit", Payment: int64p(25)},
		1: {Level: 1, Label: "Officer", Payment: int64p(35)},
		2: {Level: 2, Label: "Corporal", Permissions: entities.PermissionGrant{Names: []string{"employees"}}},
		3: {Level: 3, Label: "Sergeant", Permissions: entities.PermissionGrant{Names: []string{"hiring", "employees"}}},
		4: {Level: 4, Label: "Chief", Payment: int64p(75), IsBoss: true},
	})
}

func businessWithOverrides(overrides map[string]any) *entities.Business {
	b := &entities.Business{ID: 1, Name: "Mission Row", Owner: "OWNER1", JobName: "police", Metadata: map[string]any{}}
	if overrides != nil {
		b.Metadata[entities.MetadataPermissionsKey] = overrides
	}
	return b
}
