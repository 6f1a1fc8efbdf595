package model

import "time"

type Transaction struct {
	TransactionID string    `firestore:"transactionid,omitempty"`
	Username      string    `firestore:"username,omitempty"`
	Amount        float64   `firestore:"amount"`
	Type          string    `firestore:"type,omitempty"`
	Date          time.Time `firestore:"date,omitempty"`
}
