package dto

type ApplyMigrationsCommand struct{}

type PlanMigrationsQuery struct{}

type MigrationPlan struct {
	CurrentVersion uint   `json:"current_version"`
	HasVersion     bool   `json:"has_version"`
	Dirty          bool   `json:"dirty"`
	Pending        []uint `json:"pending"`
}

type ApplyMigrationsOutput struct {
	VersionBefore uint   `json:"version_before"`
	VersionAfter  uint   `json:"version_after"`
	Applied       []uint `json:"applied"`
	NoChange      bool   `json:"no_change"`
}
