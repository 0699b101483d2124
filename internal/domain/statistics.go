package domain

import "context"

// ContactStat is the per-contact projection used for statistics.
type ContactStat struct {
	Category *string
	Status   ContactStatus
}

// StatisticsSnapshot is the raw result of the batched statistics read.
type StatisticsSnapshot struct {
	Event        *Event
	Contacts     []ContactStat
	EmailsSent   int
	EmailsFailed int
	Campaigns    []*EmailCampaign
}

// StatisticsReader loads the statistics inputs of an event in one read-only transaction.
type StatisticsReader interface {
	ReadStatistics(ctx context.Context, eventID string) (*StatisticsSnapshot, error)
}

// StatisticsSummary is the headline numbers of an event.
type StatisticsSummary struct {
	Total            int          `json:"total"`
	StatusCounts     StatusCounts `json:"status_counts"`
	RegistrationRate int          `json:"registration_rate"`
	InviteRate       int          `json:"invite_rate"`
	EmailsSent       int          `json:"emails_sent"`
	EmailsFailed     int          `json:"emails_failed"`
}

// CategoryBreakdown counts contacts of one category by status.
type CategoryBreakdown struct {
	Category string `json:"category"`
	Total    int    `json:"total"`
	StatusCounts
}

// EventStatistics is the statistics page payload.
type EventStatistics struct {
	Event             *Event               `json:"event"`
	Summary           StatisticsSummary    `json:"summary"`
	CategoryBreakdown []*CategoryBreakdown `json:"category_breakdown"`
	Campaigns         []*EmailCampaign     `json:"campaigns"`
}

// StatisticsService computes event statistics.
type StatisticsService interface {
	Get(ctx context.Context, eventID string) (*EventStatistics, error)
}
