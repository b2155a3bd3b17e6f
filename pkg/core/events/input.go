package events

import "encoding/json"

// UserInput is the outbound frame carrying text typed by the user.
// The server does not acknowledge it.
type UserInput struct {
	Message string `json:"message"`
}

// NewUserInput creates a new outbound user input frame
func NewUserInput(text string) *UserInput {
	return &UserInput{Message: text}
}

// ToJSON serializes the frame to JSON
func (u *UserInput) ToJSON() ([]byte, error) {
	return json.Marshal(u)
}
