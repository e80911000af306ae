package status

// 经验等级与项目周期的序数映射，未知取 0
var experienceLevels = map[string]int{
	"Unknown":      1,
	"Beginner":     2,
	"Intermediate": 3,
	"Advanced":     4,
}

var projectLengths = map[string]int{
	"Unknown": 1,
	"Hours":   2,
	"Days":    3,
	"Weeks":   4,
	"Months":  5,
}

// ExperienceOrdinal 经验等级序数
func ExperienceOrdinal(level string) int {
	return experienceLevels[level]
}

// ProjectLengthOrdinal 项目周期序数
func ProjectLengthOrdinal(length string) int {
	return projectLengths[length]
}
