package model

import "time"

type Category struct {
	Type      string    `firestore:"type,omitempty"`
	Color     string    `firestore:"color,omitempty"`
	CreatedAt time.Time `firestore:"createdat,omitempty"`
}
