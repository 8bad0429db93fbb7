package generativeAI

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrUnavailable means a strategy is not configured or its model is not
// loaded, as opposed to a generation that was attempted and failed.
var ErrUnavailable = errors.New("generation strategy unavailable")

// Request describes the trip to plan. Prompt is filled by NewRequest.
type Request struct {
	Location  string
	Days      int
	Interests []string
	Budget    string
	Season    string
	Prompt    string
}

func NewRequest(location string, days int, interests []string, budget, season string) Request {
	return Request{
		Location:  location,
		Days:      days,
		Interests: interests,
		Budget:    budget,
		Season:    season,
		Prompt:    BuildPrompt(location, days, interests, budget, season),
	}
}

// Strategy is one tier of the itinerary generation chain.
type Strategy interface {
	Name() string
	Generate(ctx context.Context, req Request) (string, error)
}

func interestsText(interests []string) string {
	if len(interests) == 0 {
		return "general"
	}
	return strings.Join(interests, ", ")
}

func BuildPrompt(location string, days int, interests []string, budget, season string) string {
	return fmt.Sprintf(
		"Plan a detailed %d-day trip from %s in %s season. "+
			"Interests: %s. Budget: %s. "+
			"Include day-wise schedule with morning, afternoon, and evening activities. "+
			"Provide restaurant recommendations and travel tips.",
		days, location, season, interestsText(interests), budget,
	)
}
