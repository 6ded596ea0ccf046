package dto

import (
	"github.com/spec-kit/appointment-service/internal/scheduling"
)

const dateLayout = "2006-01-02"

// DayCountResponse identifies the busiest date by appointment count.
type DayCountResponse struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// DayHoursResponse identifies the busiest date by booked hours.
type DayHoursResponse struct {
	Date  string  `json:"date"`
	Hours float64 `json:"hours"`
}

// DayOccupancyResponse reports one date's load against the daily capacity.
type DayOccupancyResponse struct {
	Date    string  `json:"date"`
	Percent float64 `json:"percent"`
}

// DashboardStatisticsResponse is the statistics envelope.
type DashboardStatisticsResponse struct {
	StartDate         string                 `json:"startDate"`
	EndDate           string                 `json:"endDate"`
	TotalEvents       int                    `json:"totalEvents"`
	DayWithMostEvents DayCountResponse       `json:"dayWithMostEvents"`
	DayWithMostHours  DayHoursResponse       `json:"dayWithMostHours"`
	DailyOccupancy    []DayOccupancyResponse `json:"dailyOccupancy"`
}

// NewDashboardStatisticsResponse maps aggregated stats to the wire view.
func NewDashboardStatisticsResponse(stats scheduling.Stats, startDate, endDate string) DashboardStatisticsResponse {
	occupancy := make([]DayOccupancyResponse, 0, len(stats.DailyOccupancy))
	for _, day := range stats.DailyOccupancy {
		occupancy = append(occupancy, DayOccupancyResponse{
			Date:    day.Date.Format(dateLayout),
			Percent: day.Percent,
		})
	}
	return DashboardStatisticsResponse{
		StartDate:   startDate,
		EndDate:     endDate,
		TotalEvents: stats.TotalEvents,
		DayWithMostEvents: DayCountResponse{
			Date:  stats.BusiestByCount.Date.Format(dateLayout),
			Count: stats.BusiestByCount.Count,
		},
		DayWithMostHours: DayHoursResponse{
			Date:  stats.BusiestByHours.Date.Format(dateLayout),
			Hours: stats.BusiestByHours.Hours,
		},
		DailyOccupancy: occupancy,
	}
}
