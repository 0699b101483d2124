package services

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"registrationdesk/internal/domain"
)

// statisticsCampaignLimit bounds the campaigns listed on the statistics page.
const statisticsCampaignLimit = 10

type statisticsService struct {
	reader domain.StatisticsReader
}

func NewStatisticsService(reader domain.StatisticsReader) domain.StatisticsService {
	return &statisticsService{reader: reader}
}

func (s *statisticsService) Get(ctx context.Context, eventID string) (*domain.EventStatistics, error) {
	snap, err := s.reader.ReadStatistics(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("read statistics: %w", err)
	}
	return summarize(snap), nil
}

func summarize(snap *domain.StatisticsSnapshot) *domain.EventStatistics {
	var counts domain.StatusCounts
	byCategory := make(map[string]*domain.CategoryBreakdown)
	breakdown := []*domain.CategoryBreakdown{}
	for _, c := range snap.Contacts {
		counts.Add(c.Status)
		name := domain.UncategorizedGroup
		if c.Category != nil && *c.Category != "" {
			name = *c.Category
		}
		b, ok := byCategory[name]
		if !ok {
			b = &domain.CategoryBreakdown{Category: name}
			byCategory[name] = b
			breakdown = append(breakdown, b)
		}
		b.Total++
		b.StatusCounts.Add(c.Status)
	}
	sort.SliceStable(breakdown, func(i, j int) bool { return breakdown[i].Total > breakdown[j].Total })

	total := len(snap.Contacts)
	campaigns := snap.Campaigns
	if campaigns == nil {
		campaigns = []*domain.EmailCampaign{}
	}
	if len(campaigns) > statisticsCampaignLimit {
		campaigns = campaigns[:statisticsCampaignLimit]
	}
	return &domain.EventStatistics{
		Event: snap.Event,
		Summary: domain.StatisticsSummary{
			Total:            total,
			StatusCounts:     counts,
			RegistrationRate: percent(counts.Registered, total),
			InviteRate:       percent(counts.Invited+counts.Registered, total),
			EmailsSent:       snap.EmailsSent,
			EmailsFailed:     snap.EmailsFailed,
		},
		CategoryBreakdown: breakdown,
		Campaigns:         campaigns,
	}
}
