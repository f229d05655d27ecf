package domain

import "time"

// interactionTitleLength is the number of runes of the query kept as title.
const interactionTitleLength = 50

// Interaction is one assistant question and its answer, kept in history.
type Interaction struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Title     string    `json:"title"`
	Query     string    `json:"query"`
	Response  string    `json:"response"`
	CreatedAt time.Time `json:"createdAt"`
}

// InteractionTitle derives a history title from the first words of a query.
func InteractionTitle(query string) string {
	runes := []rune(query)
	if len(runes) <= interactionTitleLength {
		return query
	}
	return string(runes[:interactionTitleLength]) + "..."
}
