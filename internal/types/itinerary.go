package types

import (
	"encoding/json"
	"strings"
	"time"
)

// Itinerary is a generated multi-day travel plan.
type Itinerary struct {
	ID        int64     `json:"id,omitempty"`
	Start     string    `json:"start" validate:"required"`
	Days      int       `json:"days" validate:"required,gt=0"`
	Interests Interests `json:"interests" validate:"required"`
	Budget    string    `json:"budget" validate:"required"`
	Plan      string    `json:"plan" validate:"required"`
	CreatedAt time.Time `json:"created_at,omitzero"`
}

// Interests is a list of interest tags. It accepts either a JSON list or a
// comma-delimited string, which is how the local store keeps it.
type Interests []string

// UnmarshalJSON accepts ["a","b"] as well as "a,b".
func (in *Interests) UnmarshalJSON(b []byte) error {
	var list []string
	if err := json.Unmarshal(b, &list); err == nil {
		*in = list
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	*in = SplitInterests(s)
	return nil
}

// String joins the tags with commas.
func (in Interests) String() string {
	return strings.Join(in, ",")
}

// SplitInterests parses a comma-delimited interests column.
func SplitInterests(s string) Interests {
	if strings.TrimSpace(s) == "" {
		return Interests{}
	}
	parts := strings.Split(s, ",")
	out := make(Interests, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// GenerateItineraryRequest is the body of an itinerary generation request.
type GenerateItineraryRequest struct {
	Start     string    `json:"start"`
	Days      int       `json:"days"`
	Interests Interests `json:"interests"`
	Budget    string    `json:"budget"`
	Season    string    `json:"season"`
	Save      bool      `json:"save"`
}

// GeneratedItinerary is the result of running the generation chain.
// Source and Notice describe the save when one was requested.
type GeneratedItinerary struct {
	Itinerary Itinerary `json:"itinerary"`
	Strategy  string    `json:"strategy"`
	Saved     bool      `json:"saved"`
	Source    Source    `json:"source,omitempty"`
	Notice    string    `json:"notice,omitempty"`
}

// ItineraryFromRecord builds an Itinerary out of a loosely typed API record.
func ItineraryFromRecord(record map[string]any) Itinerary {
	it := Itinerary{
		Start:     stringField(record, "start"),
		Budget:    stringField(record, "budget"),
		Plan:      stringField(record, "plan"),
		CreatedAt: timeField(record, "created_at"),
	}
	if id, ok := FloatField(record, "id"); ok {
		it.ID = int64(id)
	}
	if days, ok := FloatField(record, "days"); ok {
		it.Days = int(days)
	}
	switch v := record["interests"].(type) {
	case string:
		it.Interests = SplitInterests(v)
	case []any:
		for _, tag := range v {
			if s, ok := tag.(string); ok {
				it.Interests = append(it.Interests, s)
			}
		}
	}
	return it
}
