package models

// Snapshot is the full current view of the store, delivered as the `init`
// event on connection and as the polling fetch body. It fully replaces an
// observer's local view.
type Snapshot struct {
	Participants []Participant `json:"participants"`
	Messages     []Message     `json:"messages"`   // append order, recent tail
	Activities   []Activity    `json:"activities"` // newest first
}
