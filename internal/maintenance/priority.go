package maintenance

import "github.com/ukydev/fleet-maintenance/internal/models"

const (
	maxPriorityScore = 100
	maxOverdueBonus  = 25
)

var levelBaseScore = map[models.AlertLevel]int{
	models.AlertLevelCritical: 60,
	models.AlertLevelWarning:  40,
	models.AlertLevelUpcoming: 20,
	models.AlertLevelNone:     0,
}

var categoryBonus = map[models.MaintenanceCategory]int{
	models.CategoryCorrective: 15,
	models.CategoryPreventive: 5,
}

// CalculatePriorityScore combines severity, category and overdue days into
// a triage score in [0,100]. It is a sort key only; the alert level stays
// authoritative.
func CalculatePriorityScore(level models.AlertLevel, category models.MaintenanceCategory, daysOverdue int) int {
	if daysOverdue < 0 {
		daysOverdue = 0
	}
	overdue := daysOverdue / 2
	if overdue > maxOverdueBonus {
		overdue = maxOverdueBonus
	}

	score := levelBaseScore[level] + categoryBonus[category] + overdue
	if score < 0 {
		return 0
	}
	if score > maxPriorityScore {
		return maxPriorityScore
	}
	return score
}
