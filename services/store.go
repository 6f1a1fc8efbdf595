package services

import (
	"context"
	"errors"

	"ezwallet/model"
)

// ErrNotFound is returned by every store lookup that matches no document.
var ErrNotFound = errors.New("not found")

type UserStore interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	// GetUserByRefreshToken never matches an empty token.
	GetUserByRefreshToken(ctx context.Context, refreshToken string) (*model.User, error)
	SetRefreshToken(ctx context.Context, userID, refreshToken string) error
	ListUsers(ctx context.Context) ([]model.User, error)
	DeleteUser(ctx context.Context, userID string) error
}

type CategoryStore interface {
	CreateCategory(ctx context.Context, category *model.Category) error
	GetCategory(ctx context.Context, categoryType string) (*model.Category, error)
	ListCategories(ctx context.Context) ([]model.Category, error)
	// UpdateCategory replaces the category stored under oldType, which may
	// differ from category.Type.
	UpdateCategory(ctx context.Context, oldType string, category *model.Category) error
}

type TransactionStore interface {
	CreateTransaction(ctx context.Context, tx *model.Transaction) error
	GetTransaction(ctx context.Context, id string) (*model.Transaction, error)
	// ListTransactions returns the transactions of the given users, or of
	// every user when none is given.
	ListTransactions(ctx context.Context, usernames ...string) ([]model.Transaction, error)
	DeleteTransaction(ctx context.Context, id string) error
	// DeleteTransactions removes all of ids or, when one is missing, none of
	// them and returns ErrNotFound.
	DeleteTransactions(ctx context.Context, ids ...string) error
	DeleteUserTransactions(ctx context.Context, username string) (int, error)
	// RetypeTransactions moves every transaction of oldType to newType.
	RetypeTransactions(ctx context.Context, oldType, newType string) (int, error)
}

type GroupStore interface {
	CreateGroup(ctx context.Context, group *model.Group) error
	GetGroup(ctx context.Context, name string) (*model.Group, error)
	ListGroups(ctx context.Context) ([]model.Group, error)
	UpdateGroup(ctx context.Context, group *model.Group) error
	DeleteGroup(ctx context.Context, name string) error
}

type Store interface {
	UserStore
	CategoryStore
	TransactionStore
	GroupStore
}

var (
	_ Store = (*MemoryStore)(nil)
	_ Store = (*FirestoreStore)(nil)
)
