package respond

import "time"

type StatsRespond struct {
	UserId       string      `json:"user_id"`
	TotalXP      int         `json:"total_xp"`
	Level        int         `json:"level"`
	LevelFloorXP int         `json:"level_floor_xp"`
	NextLevelXP  int         `json:"next_level_xp"`
	XPToNext     int         `json:"xp_to_next"`
	MaxLevel     bool        `json:"max_level"`
	BackfillXP   int         `json:"backfill_xp"`
	OrganicXP    int         `json:"organic_xp"`
	Badges       []BadgeItem `json:"badges"`
}

type LeaderboardItem struct {
	Rank    int    `json:"rank"`
	UserId  string `json:"user_id"`
	TotalXP int    `json:"total_xp"`
	Level   int    `json:"level"`
}

type CategoryCount struct {
	Events int `json:"events"`
	XP     int `json:"xp"`
}

type BackfillRespond struct {
	UserId           string                   `json:"user_id"`
	DryRun           bool                     `json:"dry_run"`
	BeforeXP         int                      `json:"before_xp"`
	ProjectedAfterXP int                      `json:"projected_after_xp"`
	AfterXP          int                      `json:"after_xp"`
	BeforeLevel      int                      `json:"before_level"`
	AfterLevel       int                      `json:"after_level"`
	EventsToCreate   int                      `json:"events_to_create"`
	EventsCreated    int                      `json:"events_created"`
	XPToAward        int                      `json:"xp_to_award"`
	ByCategory       map[string]CategoryCount `json:"by_category"`
	// dry_run 时为将会获得的徽章
	BadgesAwarded []string `json:"badges_awarded"`
}

type UserFailure struct {
	UserId string `json:"user_id"`
	Error  string `json:"error"`
}

type BackfillAllRespond struct {
	JobId          string        `json:"job_id"`
	DryRun         bool          `json:"dry_run"`
	Status         string        `json:"status"`
	UsersTotal     int           `json:"users_total"`
	UsersSucceeded int           `json:"users_succeeded"`
	UsersFailed    int           `json:"users_failed"`
	Events         int           `json:"events"`
	XP             int           `json:"xp"`
	Badges         int           `json:"badges"`
	Failures       []UserFailure `json:"failures,omitempty"`
}

type RollbackRespond struct {
	UserId        string `json:"user_id"`
	BeforeXP      int    `json:"before_xp"`
	AfterXP       int    `json:"after_xp"`
	EventsDeleted int    `json:"events_deleted"`
	XPRemoved     int    `json:"xp_removed"`
	BadgesRemoved int    `json:"badges_removed"`
}

type BadgeItem struct {
	BadgeId   string    `json:"badge_id"`
	Name      string    `json:"name"`
	Backfill  bool      `json:"backfill"`
	AwardedAt time.Time `json:"awarded_at"`
}

type BackfillJobRespond struct {
	JobId          string     `json:"job_id"`
	RequestedBy    string     `json:"requested_by"`
	DryRun         bool       `json:"dry_run"`
	Status         string     `json:"status"`
	UsersTotal     int        `json:"users_total"`
	UsersSucceeded int        `json:"users_succeeded"`
	UsersFailed    int        `json:"users_failed"`
	EventsCreated  int        `json:"events_created"`
	XPAwarded      int        `json:"xp_awarded"`
	LastError      string     `json:"last_error,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	FinishedAt     *time.Time `json:"finished_at,omitempty"`
}

type EventItem struct {
	EventId   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Amount    int       `json:"amount"`
	SourceKey string    `json:"source_key,omitempty"`
	Backfill  bool      `json:"backfill"`
	CreatedAt time.Time `json:"created_at"`
}

type ReportRespond struct {
	UserId         string      `json:"user_id"`
	TotalXP        int         `json:"total_xp"`
	Level          int         `json:"level"`
	NextLevelXP    int         `json:"next_level_xp"`
	TotalEvents    int         `json:"total_events"`
	BackfillEvents int         `json:"backfill_events"`
	BackfillXP     int         `json:"backfill_xp"`
	OrganicEvents  int         `json:"organic_events"`
	OrganicXP      int         `json:"organic_xp"`
	RecentEvents   []EventItem `json:"recent_events"`
	Badges         []BadgeItem `json:"badges"`
}
