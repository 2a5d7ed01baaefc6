package models

import "time"

// SocialMedia holds a competitor's social profile URLs. Every field is
// optional; the AI frequently only knows one or two of them.
type SocialMedia struct {
	Facebook  *string `json:"facebook,omitempty"`
	Twitter   *string `json:"twitter,omitempty"`
	YouTube   *string `json:"youtube,omitempty"`
	Instagram *string `json:"instagram,omitempty"`
}

// PlaceholderLogo is returned whenever a real logo cannot be resolved.
const PlaceholderLogo = "/placeholder-logo.png"

// Competitor represents one competitor record. A record belongs either
// to an AI search result set (SearchID set) or to a user's private list
// (UserID set), never both.
type Competitor struct {
	ID           string      `json:"id,omitempty"`
	Name         string      `json:"name" validate:"required"`
	BusinessType string      `json:"business_type" validate:"required"`
	Location     string      `json:"location" validate:"required"`
	Logo         string      `json:"logo"`
	RevenueRange string      `json:"revenue_range" validate:"required"`
	TargetMarket string      `json:"target_market" validate:"required"`
	Description  string      `json:"description,omitempty"`
	Website      string      `json:"website,omitempty"`
	WhatTheySell []string    `json:"what_they_sell" validate:"required,min=1"`
	Strengths    []string    `json:"strengths" validate:"required,min=1"`
	SocialMedia  SocialMedia `json:"social_media"`

	// Countries is only populated by the name/URL lookup flavor.
	Countries []string `json:"countries,omitempty"`

	SearchID string `json:"search_id,omitempty"`
	UserID   string `json:"user_id,omitempty"`
}

// CompetitorPage is the single pagination envelope used by both the
// find and lookup endpoints.
type CompetitorPage struct {
	Competitors []Competitor `json:"competitors"`
	Total       int          `json:"total"`
	Offset      int          `json:"offset"`
	Limit       int          `json:"limit"`
	SearchID    string       `json:"search_id"`
}

// FindRequest is the body of POST /competitors/find
type FindRequest struct {
	BusinessDescription string `json:"business_description" validate:"required,min=3"`
	Location            string `json:"location" validate:"required"`
}

// LookupRequest is the body of POST /competitors/lookup
type LookupRequest struct {
	NameOrURL string `json:"name_or_url" validate:"required,min=2"`
}

// CompetitorSearchRequest is the body of POST /competitors/search,
// matching stored competitors by business type and location.
type CompetitorSearchRequest struct {
	BusinessType string `json:"business_type" validate:"required"`
	Location     string `json:"location" validate:"required"`
}

// CompetitorCreateRequest is the body for user-managed competitor CRUD.
type CompetitorCreateRequest struct {
	Name         string      `json:"name" validate:"required"`
	BusinessType string      `json:"business_type" validate:"required"`
	Location     string      `json:"location" validate:"required"`
	Logo         string      `json:"logo"`
	RevenueRange string      `json:"revenue_range" validate:"required"`
	TargetMarket string      `json:"target_market" validate:"required"`
	Description  string      `json:"description"`
	Website      string      `json:"website" validate:"omitempty,url"`
	WhatTheySell []string    `json:"what_they_sell"`
	Strengths    []string    `json:"strengths"`
	SocialMedia  SocialMedia `json:"social_media"`
}

// CompetitorInsights pairs a competitor with AI-generated insight lines.
type CompetitorInsights struct {
	CompetitorID string   `json:"competitor_id"`
	Insights     []string `json:"insights"`
}

// SubmittedResponse is returned when a new background search was
// dispatched instead of serving cached results.
type SubmittedResponse struct {
	TaskID string `json:"task_id"`
	Status string `json:"status"`
}

// TaskStatusResponse is the polling response for one background job.
type TaskStatusResponse struct {
	ID        string      `json:"id"`
	Type      string      `json:"type"`
	Status    string      `json:"status"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
	Result    interface{} `json:"result,omitempty"`
	Error     string      `json:"error,omitempty"`
}

// ErrorResponse is the uniform error body for all endpoints.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
