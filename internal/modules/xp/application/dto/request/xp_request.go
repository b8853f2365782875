package request

// UserId 为空表示调用方本人
type StatsRequest struct {
	UserId string `json:"user_id" validate:"omitempty,max=64"`
}

type LeaderboardRequest struct {
	Limit int `json:"limit" validate:"omitempty,min=1,max=100"`
}

type BackfillRequest struct {
	UserId string `json:"user_id" validate:"omitempty,max=64"`
	DryRun bool   `json:"dry_run"`
}

type BackfillAllRequest struct {
	DryRun bool `json:"dry_run"`
}

type RollbackRequest struct {
	UserId string `json:"user_id" validate:"omitempty,max=64"`
}

type ReportRequest struct {
	UserId string `json:"user_id" validate:"omitempty,max=64"`
}

type JobStatusRequest struct {
	JobId string `json:"job_id" validate:"required,max=32"`
}
