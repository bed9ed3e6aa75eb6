package prompts

import (
	"errors"
	"time"
)

var (
	ErrUnknownPage       = errors.New("unknown prompt page")
	ErrUnknownPrompt     = errors.New("unknown prompt")
	ErrExecutionInFlight = errors.New("a prompt is already running")
)

// Page names one of the independent catalogs.
type Page string

const (
	PageDashboard     Page = "dashboard"
	PageOpportunities Page = "opportunities"
	PageSegmentation  Page = "segmentation"
)

// Pages lists every catalog in a stable order.
var Pages = []Page{PageDashboard, PageOpportunities, PageSegmentation}

// Category is a display group. Catalog order is the display order.
type Category struct {
	Key   string `yaml:"key" json:"key"`
	Label string `yaml:"label" json:"label"`
}

// PromptItem is one canned prompt.
type PromptItem struct {
	ID         string `yaml:"id" json:"id"`
	Category   string `yaml:"category" json:"category"`
	Label      string `yaml:"label" json:"label"`
	PromptText string `yaml:"promptText" json:"promptText"`
}

// Group is a category with its visible prompts.
type Group struct {
	Key     string       `json:"key"`
	Label   string       `json:"label"`
	Prompts []PromptItem `json:"prompts"`
}

// PromptRequest is the execution payload.
type PromptRequest struct {
	PromptID   string `json:"promptId"`
	PromptText string `json:"promptText"`
}

// Status is the per-session execution state.
type Status string

const (
	StatusIdle      Status = "idle"
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Execution is the observable result of the latest prompt run for a session.
type Execution struct {
	Status       Status    `json:"status"`
	PromptID     string    `json:"promptId,omitempty"`
	ResponseText string    `json:"responseText,omitempty"`
	ErrorMessage string    `json:"errorMessage,omitempty"`
	UpdatedAt    time.Time `json:"updatedAt,omitempty"`
}
