package model

import "time"

// FastLength is the fixed number of days in a financial fast.
const FastLength = 30

// DefaultFastTitle is used when a campaign is created without a title.
const DefaultFastTitle = "Jeûne financier"

// FastCampaign is a 30-day financial fast.
type FastCampaign struct {
	ID                    string             `json:"id"`
	UserID                string             `json:"userId"`
	Title                 string             `json:"title"`
	Categories            []string           `json:"categories"`
	Intention             string             `json:"intention"`
	AdditionalNotes       string             `json:"additionalNotes"`
	HabitName             string             `json:"habitName"`
	HabitReminder         string             `json:"habitReminder"`
	CategoryBudgets       map[string]float64 `json:"categoryBudgets"`
	EstimatedMonthlySpend float64            `json:"estimatedMonthlySpend"`
	StartDate             time.Time          `json:"startDate"`
	EndDate               time.Time          `json:"endDate"`
	IsActive              bool               `json:"isActive"`
	CreatedAt             time.Time          `json:"createdAt"`
}

// FastDay is one tracked day of a campaign.
type FastDay struct {
	ID         string    `json:"id"`
	CampaignID string    `json:"fastId"`
	DayIndex   int       `json:"dayIndex"`
	Date       time.Time `json:"date"`
	Respected  bool      `json:"respected"`
	Reflection string    `json:"reflection"`
}

// FastSnapshot is a campaign with its days ordered by day index.
type FastSnapshot struct {
	Fast *FastCampaign `json:"fast"`
	Days []FastDay     `json:"days"`
}

// RespectedDays counts days marked respected.
func (s FastSnapshot) RespectedDays() int {
	n := 0
	for _, d := range s.Days {
		if d.Respected {
			n++
		}
	}
	return n
}

// FastSummary is a history row.
type FastSummary struct {
	Campaign      FastCampaign `json:"fast"`
	RespectedDays int          `json:"respectedDays"`
}

// NewFastInput carries CreateCampaign arguments.
type NewFastInput struct {
	Title                 string
	Categories            []string
	Intention             string
	AdditionalNotes       string
	HabitName             string
	HabitReminder         string
	CategoryBudgets       map[string]float64
	EstimatedMonthlySpend float64
}

// DayUpdate carries optional FastDay changes; nil fields are left as stored.
type DayUpdate struct {
	Respected  *bool
	Reflection *string
}

// DayDate returns midnight of the given 1-based day of a campaign starting at start.
func DayDate(start time.Time, dayIndex int) time.Time {
	return start.AddDate(0, 0, dayIndex-1)
}
