package models

import "time"

// DefaultTopic is the topical category paired against local content.
const DefaultTopic = "sport"

// RatioPreferences is a user's split between local and topical content.
// Local + Topical is always 100.
type RatioPreferences struct {
	UserID    string    `json:"user_id" yaml:"user_id"`
	Local     int       `json:"local" yaml:"local"`
	Topical   int       `json:"topical" yaml:"topical"`
	Topic     string    `json:"topic" yaml:"topic"`
	UpdatedAt time.Time `json:"updated_at" yaml:"updated_at"`
}

// DefaultPreferences returns an even split for the given user.
func DefaultPreferences(userID string) RatioPreferences {
	return RatioPreferences{
		UserID:  userID,
		Local:   50,
		Topical: 50,
		Topic:   DefaultTopic,
	}
}

// TriRatio holds three weights that sum to 100, as driven by a three-way slider.
type TriRatio [3]int

// Sum returns the total of all three weights.
func (t TriRatio) Sum() int {
	return t[0] + t[1] + t[2]
}
