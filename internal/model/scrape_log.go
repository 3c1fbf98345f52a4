package model

import "time"

const (
	ScrapeStatusInProgress = "in_progress"
	ScrapeStatusCompleted  = "completed"
	ScrapeStatusPartial    = "partial"
	ScrapeStatusFailed     = "failed"
)

const (
	ScrapeSourceTCGPlayer = "tcgplayer"
	ScrapeSourceEBay      = "ebay"
	ScrapeSourceAll       = "all"
)

// ScrapeLog records one scrape run and its outcome statistics.
type ScrapeLog struct {
	ID          int64      `gorm:"column:id;primaryKey" json:"id"`
	StartedAt   time.Time  `gorm:"column:started_at;autoCreateTime;index" json:"started_at"`
	CompletedAt *time.Time `gorm:"column:completed_at" json:"completed_at"`
	User        string     `gorm:"column:user" json:"user"`
	Source      string     `gorm:"column:source;default:all" json:"source"`
	Status      string     `gorm:"column:status;default:in_progress;index" json:"status"`

	TotalCardsAttempted int64 `gorm:"column:total_cards_attempted" json:"total_cards_attempted"`
	TotalCardsUpdated   int64 `gorm:"column:total_cards_updated" json:"total_cards_updated"`
	TotalCardsFailed    int64 `gorm:"column:total_cards_failed" json:"total_cards_failed"`

	ErrorMessage  string        `gorm:"column:error_message" json:"error_message"`
	ExecutionTime time.Duration `gorm:"column:execution_time" json:"execution_time"`
}

func (*ScrapeLog) TableName() string {
	return "scrape_logs"
}

// Complete marks the run as finished with its statistics. A run with failures
// ends up partial rather than completed.
func (that *ScrapeLog) Complete(attempted, updated, failed int64) {
	now := time.Now()
	that.CompletedAt = &now
	that.Status = ScrapeStatusCompleted
	that.TotalCardsAttempted = attempted
	that.TotalCardsUpdated = updated
	that.TotalCardsFailed = failed
	that.ExecutionTime = now.Sub(that.StartedAt)

	if failed > 0 {
		that.Status = ScrapeStatusPartial
	}
}

// Fail marks the run as failed with error details.
func (that *ScrapeLog) Fail(errorMessage string) {
	now := time.Now()
	that.CompletedAt = &now
	that.Status = ScrapeStatusFailed
	that.ErrorMessage = errorMessage
	that.ExecutionTime = now.Sub(that.StartedAt)
}

// SuccessRate returns the share of attempted cards that were updated, in percent.
func (that *ScrapeLog) SuccessRate() float64 {
	if that.TotalCardsAttempted == 0 {
		return 0
	}
	return float64(that.TotalCardsUpdated) / float64(that.TotalCardsAttempted) * 100
}
