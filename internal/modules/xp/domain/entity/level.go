package entity

// levelThresholds[i] 是达到 i+1 级所需的累计经验
var levelThresholds = []int{0, 100, 250, 450, 700, 1000, 1400, 1900, 2500, 3200, 4000, 5000, 6200, 7600, 9200, 11000}

// Level 由累计经验推导，不单独存储
type Level struct {
	Level        int  `json:"level"`
	TotalXP      int  `json:"total_xp"`
	LevelFloorXP int  `json:"level_floor_xp"`
	NextLevelXP  int  `json:"next_level_xp"`
	XPToNext     int  `json:"xp_to_next"`
	MaxLevel     bool `json:"max_level"`
}

func MaxLevel() int {
	return len(levelThresholds)
}

// ComputeLevel 纯函数，对 total 单调不减；满级时 NextLevelXP 为满级门槛
func ComputeLevel(total int) Level {
	if total < 0 {
		total = 0
	}
	idx := 0
	for i, th := range levelThresholds {
		if total >= th {
			idx = i
		}
	}
	lv := Level{
		Level:        idx + 1,
		TotalXP:      total,
		LevelFloorXP: levelThresholds[idx],
	}
	if lv.Level < MaxLevel() {
		lv.NextLevelXP = levelThresholds[idx+1]
		lv.XPToNext = lv.NextLevelXP - total
	} else {
		lv.NextLevelXP = levelThresholds[idx]
		lv.MaxLevel = true
	}
	return lv
}
