package generativeAI

import (
	"context"
	"fmt"
	"strings"
)

const StrategyTemplate = "template"

var _ Strategy = Template{}

// Template is the last tier of the chain. It never fails.
type Template struct{}

func (Template) Name() string { return StrategyTemplate }

func (Template) Generate(_ context.Context, req Request) (string, error) {
	return TemplateItinerary(req.Location, req.Days, req.Interests, req.Budget), nil
}

// TemplateItinerary renders one Morning/Afternoon/Evening block per day.
func TemplateItinerary(location string, days int, interests []string, budget string) string {
	interestsStr := interestsText(interests)
	blocks := make([]string, 0, days)
	for day := 1; day <= days; day++ {
		blocks = append(blocks, fmt.Sprintf(
			"Day %d:\n"+
				"- Morning: Suggested activity based on %s interests\n"+
				"- Afternoon: Lunch recommendation for %s budget\n"+
				"- Evening: Leisure activity in %s",
			day, interestsStr, budget, location,
		))
	}
	return strings.Join(blocks, "\n\n")
}
