package respond

import "time"

type GoalItem struct {
	GoalId      string     `json:"goal_id"`
	UserId      string     `json:"user_id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Category    string     `json:"category"`
	Priority    string     `json:"priority"`
	Progress    int        `json:"progress"`
	Status      string     `json:"status"`
	TargetDate  *time.Time `json:"target_date,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Version     int        `json:"version"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

const (
	OutcomeUpdated = "updated"
	OutcomeSkipped = "skipped"
	OutcomeFailed  = "failed"
)

const (
	SkipNotActive  = "not_active"
	SkipNoSource   = "no_source"
	SkipNoActivity = "no_activity"
	SkipNoChange   = "no_change"
)

type GoalOutcome struct {
	GoalId     string `json:"goal_id"`
	Result     string `json:"result"`
	Reason     string `json:"reason,omitempty"`
	From       int    `json:"from"`
	To         int    `json:"to"`
	Milestones []int  `json:"milestones,omitempty"`
	Completed  bool   `json:"completed"`
}

type RecomputeSummary struct {
	UserId    string        `json:"user_id"`
	Goals     int           `json:"goals"`
	Updated   int           `json:"updated"`
	Skipped   int           `json:"skipped"`
	Failed    int           `json:"failed"`
	Completed int           `json:"completed"`
	Outcomes  []GoalOutcome `json:"outcomes"`
}

type RecomputeAllSummary struct {
	Users        int `json:"users"`
	UsersFailed  int `json:"users_failed"`
	GoalsUpdated int `json:"goals_updated"`
	GoalsFailed  int `json:"goals_failed"`
	Completed    int `json:"completed"`
}

type OverdueSummary struct {
	Checked     int `json:"checked"`
	Completed   int `json:"completed"`
	StillActive int `json:"still_active"`
	Failed      int `json:"failed"`
}

type CoachRespond struct {
	Model   string `json:"model"`
	Message string `json:"message"`
}
