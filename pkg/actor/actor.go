// Package actor carries the authenticated caller through service calls.
package actor

const (
	RoleStudent    = "student"
	RoleInstructor = "instructor"
	RoleAdmin      = "admin"
	RoleOwner      = "owner"
)

// Actor 调用方身份，由 HTTP 层从令牌解析后显式传入服务层
type Actor struct {
	UserID string
	OrgID  string
	Role   string
}

func New(userID, orgID, role string) Actor {
	if role == "" {
		role = RoleStudent
	}
	return Actor{UserID: userID, OrgID: orgID, Role: role}
}

func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin || a.Role == RoleOwner
}

// CanActFor 本人或管理员可以操作 userID 的数据
func (a Actor) CanActFor(userID string) bool {
	if a.UserID == "" || userID == "" {
		return false
	}
	return a.UserID == userID || a.IsAdmin()
}
