package jobs

import "github.com/JericoFX/advance-manager/internal/entities"

func int64p(v int64) *int64 { return &v }

// policeJob mirrors the catalog used across the service tests
func policeJob() *entities.JobInfo {
	return entities.NewJobInfo("police", "Police", map[int]entities.Grade{
		0: {Level: 0, Label: "Recruit", Payment: int64p(50)},
		1: {Level: 1, Label: "Officer", Payment: int64p(60)},
		3: {Level: 3, Label: "Sergeant", Permissions: entities.PermissionGrant{Names: []string{"hiring"}}},
		4: {Level: 4, Label: "Chief", Payment: int64p(75), IsBoss: true},
		5: {Level: 5, Label: "Commissioner", IsBoss: true},
	})
}
