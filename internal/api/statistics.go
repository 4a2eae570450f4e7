package api

import (
	"context"
	"net/url"
	"strconv"
)

// StatisticsService reads aggregated totals.
type StatisticsService struct {
	c *Client
}

func (s *StatisticsService) Monthly(ctx context.Context, year, month int) (MonthlyStatistics, error) {
	var out MonthlyStatistics
	q := url.Values{"year": {strconv.Itoa(year)}, "month": {strconv.Itoa(month)}}
	err := s.c.get(ctx, "/statistics/monthly", q, &out)
	return out, err
}

func (s *StatisticsService) Weekly(ctx context.Context, year, week int) (WeeklyStatistics, error) {
	var out WeeklyStatistics
	q := url.Values{"year": {strconv.Itoa(year)}, "week": {strconv.Itoa(week)}}
	err := s.c.get(ctx, "/statistics/weekly", q, &out)
	return out, err
}

func (s *StatisticsService) Yearly(ctx context.Context, year int) (YearlyStatistics, error) {
	var out YearlyStatistics
	err := s.c.get(ctx, "/statistics/yearly", url.Values{"year": {strconv.Itoa(year)}}, &out)
	return out, err
}
