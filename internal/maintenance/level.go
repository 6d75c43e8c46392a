package maintenance

import "github.com/ukydev/fleet-maintenance/internal/models"

// Kilometer thresholds, inclusive lower bounds.
const (
	UpcomingThresholdKm = 2000
	WarningThresholdKm  = 1000
	CriticalThresholdKm = 500
)

// CalculateAlertLevel maps the kilometers left until a task is due to a
// severity. Negative values mean the task is overdue.
func CalculateAlertLevel(kmToMaintenance int) models.AlertLevel {
	switch {
	case kmToMaintenance >= UpcomingThresholdKm:
		return models.AlertLevelNone
	case kmToMaintenance >= WarningThresholdKm:
		return models.AlertLevelUpcoming
	case kmToMaintenance >= CriticalThresholdKm:
		return models.AlertLevelWarning
	default:
		return models.AlertLevelCritical
	}
}
