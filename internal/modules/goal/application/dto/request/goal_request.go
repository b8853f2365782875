package request

import "time"

type CreateGoalRequest struct {
	Title       string     `json:"title" binding:"required" validate:"required,max=255"`
	Description string     `json:"description" validate:"max=4000"`
	Category    string     `json:"category" validate:"omitempty,max=16"`
	Priority    string     `json:"priority" validate:"omitempty,max=16"`
	TargetDate  *time.Time `json:"target_date"`
}

// UserId 为空表示调用方本人
type ListGoalsRequest struct {
	UserId string `json:"user_id" validate:"omitempty,max=64"`
	Status string `json:"status" validate:"omitempty,oneof=active completed overdue"`
}

type GetGoalRequest struct {
	GoalId string `json:"goal_id" binding:"required" validate:"required,len=20"`
}

// UpdateGoalRequest 只修改非空字段；Version 不为空时必须与库内一致
type UpdateGoalRequest struct {
	GoalId          string     `json:"goal_id" binding:"required" validate:"required,len=20"`
	Version         *int       `json:"version" validate:"omitempty,min=1"`
	Title           *string    `json:"title" validate:"omitempty,max=255"`
	Description     *string    `json:"description" validate:"omitempty,max=4000"`
	Category        *string    `json:"category" validate:"omitempty,max=16"`
	Priority        *string    `json:"priority" validate:"omitempty,max=16"`
	TargetDate      *time.Time `json:"target_date"`
	ClearTargetDate bool       `json:"clear_target_date"`
	Progress        *int       `json:"progress" validate:"omitempty,min=0,max=100"`
}

type CompleteGoalRequest struct {
	GoalId string `json:"goal_id" binding:"required" validate:"required,len=20"`
}

type RecomputeRequest struct {
	UserId string `json:"user_id" validate:"omitempty,max=64"`
}

type CoachRequest struct {
	Question string `json:"question" validate:"max=500"`
}
