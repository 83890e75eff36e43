package profiles

import (
	"time"

	"github.com/google/uuid"
)

// Profile describes an executive the agent drafts comments for. Loading a
// profile is the one hard dependency of comment generation: without it there
// is no identity to draft as.
type Profile struct {
	ID                 uuid.UUID `json:"id"`
	Name               string    `json:"name"`
	Title              string    `json:"title"`
	Company            string    `json:"company"`
	CommunicationStyle string    `json:"communication_style"`
	Tone               string    `json:"tone"`
	TalkingPoints      []string  `json:"talking_points"`
	Expertise          []string  `json:"expertise"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// Summary renders the profile fields the judges and drafter care about.
func (p *Profile) Summary() string {
	s := "Name: " + p.Name + "\nTitle: " + p.Title
	if p.Company != "" {
		s += "\nCompany: " + p.Company
	}
	if p.CommunicationStyle != "" {
		s += "\nCommunication Style: " + p.CommunicationStyle
	}
	if p.Tone != "" {
		s += "\nTone: " + p.Tone
	}
	return s
}
