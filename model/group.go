package model

import "time"

type GroupMember struct {
	Email    string `firestore:"email,omitempty"`
	Username string `firestore:"username,omitempty"`
	UserID   string `firestore:"userid,omitempty"`
}

type Group struct {
	Name      string        `firestore:"name,omitempty"`
	Members   []GroupMember `firestore:"members"`
	CreatedAt time.Time     `firestore:"createdat,omitempty"`
}

// MemberEmails returns the e-mail of every member, in membership order.
func (g Group) MemberEmails() []string {
	emails := make([]string, 0, len(g.Members))
	for _, m := range g.Members {
		emails = append(emails, m.Email)
	}
	return emails
}

func (g Group) MemberUsernames() []string {
	usernames := make([]string, 0, len(g.Members))
	for _, m := range g.Members {
		usernames = append(usernames, m.Username)
	}
	return usernames
}

// HasMember reports whether email belongs to one of the members.
func (g Group) HasMember(email string) bool {
	for _, m := range g.Members {
		if m.Email == email {
			return true
		}
	}
	return false
}
