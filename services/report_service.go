package services

import (
	"context"
	"time"

	"deptsurvey/models"
	"deptsurvey/repository"
)

// Rating bands over a 0-100 percentage; each lower bound is inclusive.
const (
	BandExcellent    = "Excellent - Exceeds the Customer Expectation"
	BandSatisfactory = "Satisfactory - Meets the Customer requirement"
	BandBelowAverage = "Below Average - Identify areas for improvement and initiate action to eliminate dissatisfaction"
	BandPoor         = "Poor - Identify areas for improvement and initiate action to eliminate dissatisfaction"
)

// RatingBand describes a percentage rating.
func RatingBand(pct float64) string {
	switch {
	case pct >= 91:
		return BandExcellent
	case pct >= 75:
		return BandSatisfactory
	case pct >= 70:
		return BandBelowAverage
	default:
		return BandPoor
	}
}

const (
	latestSubmissions = 5
	defaultRecent     = 20
	maxRecent         = 100
)

// ReportService computes the admin dashboard aggregates.
type ReportService struct {
	Reports     repository.ReportRepository
	Submissions repository.SubmissionRepository
}

// DepartmentMetrics returns one row per department, including departments nobody rated.
func (s *ReportService) DepartmentMetrics(ctx context.Context) ([]models.DepartmentMetric, error) {
	rows, err := s.Reports.DepartmentMetrics(ctx)
	if err != nil {
		return nil, err
	}
	for i := range rows {
		rows[i].AverageRatingReceived = round2(rows[i].AverageRatingReceived)
	}
	return rows, nil
}

// OverallStats summarizes every submission.
func (s *ReportService) OverallStats(ctx context.Context) (*models.OverallStats, error) {
	totals, err := s.Reports.Totals(ctx)
	if err != nil {
		return nil, err
	}
	latest, err := s.Recent(ctx, latestSubmissions)
	if err != nil {
		return nil, err
	}
	avg := round2(totals.Average)
	return &models.OverallStats{
		TotalSubmissions:     totals.Count,
		AverageOverallRating: avg,
		TotalPercentage:      avg,
		RatingDescription:    RatingBand(avg),
		LatestSubmissions:    latest,
	}, nil
}

// Recent returns the newest submissions; limit is clamped to 1..100 with 20 as default.
func (s *ReportService) Recent(ctx context.Context, limit int) ([]models.SubmissionSummary, error) {
	switch {
	case limit <= 0:
		limit = defaultRecent
	case limit > maxRecent:
		limit = maxRecent
	}
	subs, err := s.Submissions.List(ctx, repository.SubmissionFilter{Limit: limit})
	if err != nil {
		return nil, err
	}
	out := make([]models.SubmissionSummary, 0, len(subs))
	for _, sub := range subs {
		sum := models.SubmissionSummary{
			ID:             sub.ID,
			DepartmentID:   sub.RatedDepartmentID,
			SubmissionDate: sub.SubmittedAt.UTC().Format(time.RFC3339),
		}
		if sub.OverallCustomerRating != nil {
			sum.OverallRating = *sub.OverallCustomerRating
		}
		if sub.RatedDepartment != nil {
			sum.DepartmentName = sub.RatedDepartment.Name
		}
		if sub.Submitter != nil {
			sum.SubmitterUsername = sub.Submitter.Username
			sum.SubmitterName = sub.Submitter.Name
		}
		out = append(out, sum)
	}
	return out, nil
}
