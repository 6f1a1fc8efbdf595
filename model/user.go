package model

import "time"

type User struct {
	UserID       string    `firestore:"userid,omitempty"`
	Username     string    `firestore:"username,omitempty"`
	Email        string    `firestore:"email,omitempty"`
	Password     string    `firestore:"password,omitempty"`
	Role         Role      `firestore:"role,omitempty"` // "Regular" หรือ "Admin"
	RefreshToken string    `firestore:"refreshtoken"`   // cleared on logout
	CreatedAt    time.Time `firestore:"createdat,omitempty"`
}
