package respond

type ActivityRespond struct {
	Id        string `json:"id"`
	XPAwarded int    `json:"xp_awarded"`
}
