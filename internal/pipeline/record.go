package pipeline

import "time"

// Record is the JSON form of a ClassifiedHeadline.
type Record struct {
	Title      string     `json:"title"`
	URL        string     `json:"url"`
	Source     string     `json:"source,omitempty"`
	Published  *time.Time `json:"published,omitempty"`
	Category   string     `json:"category"`
	Sentiment  string     `json:"sentiment"`
	Polarity   float64    `json:"polarity"`
	Urgent     bool       `json:"urgent"`
	ObservedAt time.Time  `json:"observed_at"`
}

func (h ClassifiedHeadline) Record() Record {
	r := Record{
		Title:      h.Title,
		URL:        h.URL,
		Source:     h.Source,
		Category:   h.Category,
		Sentiment:  string(h.Sentiment.Label),
		Polarity:   h.Sentiment.Polarity,
		Urgent:     h.Urgent,
		ObservedAt: h.ObservedAt,
	}
	if !h.Published.IsZero() {
		pub := h.Published
		r.Published = &pub
	}
	return r
}

func Records(items []ClassifiedHeadline) []Record {
	out := make([]Record, len(items))
	for i, it := range items {
		out[i] = it.Record()
	}
	return out
}
