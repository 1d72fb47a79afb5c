package model

import "time"

// MonthlyScore is one point in the rolling 12-month score series.
// Month is the first day of the month in UTC; Average is on the 0-100 scale.
type MonthlyScore struct {
	Month   time.Time `json:"month"   db:"month"`
	Average float64   `json:"average" db:"average"`
	Count   int       `json:"count"   db:"count"`
}

// SupplierRanking is one row of the top or bottom supplier board.
type SupplierRanking struct {
	SupplierID       string  `json:"supplier_id"       db:"supplier_id"`
	Code             string  `json:"code"              db:"code"`
	Name             string  `json:"name"              db:"name"`
	CurrentScore     float64 `json:"current_score"     db:"current_score"`
	TotalEvaluations int     `json:"total_evaluations" db:"total_evaluations"`
}

// AtRisk reports whether the ranked supplier sits below the risk threshold.
func (r SupplierRanking) AtRisk() bool {
	return r.TotalEvaluations > 0 && r.CurrentScore < RiskScoreThreshold
}

// CriterionStat is the average performance of one criterion across all
// concluded qualifications, used to surface the weakest criteria.
type CriterionStat struct {
	CriterionID  string  `json:"criterion_id" db:"criterion_id"`
	Code         string  `json:"code"         db:"code"`
	Description  string  `json:"description"  db:"description"`
	AverageStars float64 `json:"average_stars" db:"average_stars"`
	AverageScore float64 `json:"average_score" db:"average_score"`
	Samples      int     `json:"samples"      db:"samples"`
}

// DashboardStats is the headline counter strip.
type DashboardStats struct {
	ActiveSuppliers       int     `json:"active_suppliers"       db:"active_suppliers"`
	PendingQualifications int     `json:"pending_qualifications" db:"pending_qualifications"`
	AverageScore          float64 `json:"average_score"          db:"average_score"`
	SuppliersAtRisk       int     `json:"suppliers_at_risk"      db:"suppliers_at_risk"`
}

// Dashboard bundles everything the landing page renders in one payload.
type Dashboard struct {
	Stats          DashboardStats    `json:"stats"`
	MonthlyScores  []MonthlyScore    `json:"monthly_scores"`
	TopSuppliers   []SupplierRanking `json:"top_suppliers"`
	WorstSuppliers []SupplierRanking `json:"worst_suppliers"`
	WorstCriteria  []CriterionStat   `json:"worst_criteria"`
	GeneratedAt    time.Time         `json:"generated_at"`
}
