package types

import "time"

// DefaultSentiment is stored when feedback arrives without a sentiment label.
const DefaultSentiment = "Neutral"

// Feedback is free-text feedback left for a place.
type Feedback struct {
	ID        int64     `json:"id,omitempty"`
	Place     string    `json:"place" validate:"required"`
	Feedback  string    `json:"feedback" validate:"required"`
	Sentiment string    `json:"sentiment,omitempty"`
	CreatedAt time.Time `json:"created_at,omitzero"`
}

// FeedbackFromRecord builds Feedback out of a loosely typed API record.
func FeedbackFromRecord(record map[string]any) Feedback {
	f := Feedback{
		Place:     stringField(record, "place"),
		Feedback:  stringField(record, "feedback"),
		Sentiment: stringField(record, "sentiment"),
		CreatedAt: timeField(record, "created_at"),
	}
	if id, ok := FloatField(record, "id"); ok {
		f.ID = int64(id)
	}
	return f
}
