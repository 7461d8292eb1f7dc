package models

import "time"

// Project is owned by exactly one creator. The creator is never listed
// among the collaborators.
type Project struct {
	ID            string
	Name          string
	Description   string
	Client        string
	CreatorID     string
	Collaborators []User
	TaskIDs       []string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (p *Project) IsCreator(userID string) bool {
	return p.CreatorID == userID
}

func (p *Project) IsCollaborator(userID string) bool {
	for _, c := range p.Collaborators {
		if c.ID == userID {
			return true
		}
	}
	return false
}
