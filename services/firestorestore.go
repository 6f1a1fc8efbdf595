package services

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"ezwallet/model"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	usersCollection        = "Users"
	categoriesCollection   = "Categories"
	transactionsCollection = "Transactions"
	groupsCollection       = "Groups"
)

// FirestoreStore persists documents in Cloud Firestore. Users and
// transactions are keyed by their uuid, categories by type and groups by name.
type FirestoreStore struct {
	client *firestore.Client
}

func NewFirestoreStore(client *firestore.Client) *FirestoreStore {
	return &FirestoreStore{client: client}
}

func (s *FirestoreStore) CreateUser(ctx context.Context, user *model.User) error {
	if _, err := s.client.Collection(usersCollection).Doc(user.UserID).Set(ctx, user); err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (s *FirestoreStore) findUser(ctx context.Context, field, value string) (*model.User, error) {
	query := s.client.Collection(usersCollection).Where(field, "==", value).Limit(1)
	docs, err := query.Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("query users by %s: %w", field, err)
	}
	if len(docs) == 0 {
		return nil, ErrNotFound
	}

	var user model.User
	if err := docs[0].DataTo(&user); err != nil {
		return nil, fmt.Errorf("parse user data: %w", err)
	}
	return &user, nil
}

func (s *FirestoreStore) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return s.findUser(ctx, "email", email)
}

func (s *FirestoreStore) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	return s.findUser(ctx, "username", username)
}

func (s *FirestoreStore) GetUserByRefreshToken(ctx context.Context, refreshToken string) (*model.User, error) {
	if refreshToken == "" {
		return nil, ErrNotFound
	}
	return s.findUser(ctx, "refreshtoken", refreshToken)
}

func (s *FirestoreStore) SetRefreshToken(ctx context.Context, userID, refreshToken string) error {
	_, err := s.client.Collection(usersCollection).Doc(userID).Update(ctx, []firestore.Update{
		{Path: "refreshtoken", Value: refreshToken},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return ErrNotFound
		}
		return fmt.Errorf("update refresh token: %w", err)
	}
	return nil
}

func (s *FirestoreStore) ListUsers(ctx context.Context) ([]model.User, error) {
	iter := s.client.Collection(usersCollection).OrderBy("username", firestore.Asc).Documents(ctx)
	return collect[model.User](iter)
}

func (s *FirestoreStore) DeleteUser(ctx context.Context, userID string) error {
	return s.deleteDoc(ctx, usersCollection, userID)
}

func (s *FirestoreStore) CreateCategory(ctx context.Context, category *model.Category) error {
	if _, err := s.client.Collection(categoriesCollection).Doc(category.Type).Set(ctx, category); err != nil {
		return fmt.Errorf("create category: %w", err)
	}
	return nil
}

func (s *FirestoreStore) GetCategory(ctx context.Context, categoryType string) (*model.Category, error) {
	var category model.Category
	if err := s.get(ctx, categoriesCollection, categoryType, &category); err != nil {
		return nil, err
	}
	return &category, nil
}

func (s *FirestoreStore) ListCategories(ctx context.Context) ([]model.Category, error) {
	iter := s.client.Collection(categoriesCollection).OrderBy("type", firestore.Asc).Documents(ctx)
	return collect[model.Category](iter)
}

func (s *FirestoreStore) UpdateCategory(ctx context.Context, oldType string, category *model.Category) error {
	col := s.client.Collection(categoriesCollection)
	oldRef := col.Doc(oldType)
	return s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if _, err := tx.Get(oldRef); err != nil {
			if status.Code(err) == codes.NotFound {
				return ErrNotFound
			}
			return fmt.Errorf("get category: %w", err)
		}
		if oldType != category.Type {
			if err := tx.Delete(oldRef); err != nil {
				return err
			}
		}
		return tx.Set(col.Doc(category.Type), category)
	})
}

func (s *FirestoreStore) CreateTransaction(ctx context.Context, tx *model.Transaction) error {
	if _, err := s.client.Collection(transactionsCollection).Doc(tx.TransactionID).Set(ctx, tx); err != nil {
		return fmt.Errorf("create transaction: %w", err)
	}
	return nil
}

func (s *FirestoreStore) GetTransaction(ctx context.Context, id string) (*model.Transaction, error) {
	var tx model.Transaction
	if err := s.get(ctx, transactionsCollection, id, &tx); err != nil {
		return nil, err
	}
	return &tx, nil
}

func (s *FirestoreStore) ListTransactions(ctx context.Context, usernames ...string) ([]model.Transaction, error) {
	col := s.client.Collection(transactionsCollection)
	if len(usernames) == 0 {
		return collect[model.Transaction](col.OrderBy("date", firestore.Asc).Documents(ctx))
	}

	// one query per member keeps clear of the "in" operator value limit
	var txs []model.Transaction
	for _, username := range usernames {
		found, err := collect[model.Transaction](col.Where("username", "==", username).Documents(ctx))
		if err != nil {
			return nil, err
		}
		txs = append(txs, found...)
	}
	sort.SliceStable(txs, func(i, j int) bool { return txs[i].Date.Before(txs[j].Date) })
	return txs, nil
}

func (s *FirestoreStore) DeleteTransaction(ctx context.Context, id string) error {
	ref := s.client.Collection(transactionsCollection).Doc(id)
	return s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(ref)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return ErrNotFound
			}
			return fmt.Errorf("get transaction: %w", err)
		}
		if !doc.Exists() {
			return ErrNotFound
		}
		return tx.Delete(ref)
	})
}

func (s *FirestoreStore) DeleteTransactions(ctx context.Context, ids ...string) error {
	col := s.client.Collection(transactionsCollection)
	refs := make([]*firestore.DocumentRef, 0, len(ids))
	for _, id := range ids {
		refs = append(refs, col.Doc(id))
	}
	return s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		docs, err := tx.GetAll(refs)
		if err != nil {
			return fmt.Errorf("get transactions: %w", err)
		}
		for _, doc := range docs {
			if !doc.Exists() {
				return ErrNotFound
			}
		}
		for _, ref := range refs {
			if err := tx.Delete(ref); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *FirestoreStore) DeleteUserTransactions(ctx context.Context, username string) (int, error) {
	query := s.client.Collection(transactionsCollection).Where("username", "==", username)
	deleted := 0
	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		docs, err := tx.Documents(query).GetAll()
		if err != nil {
			return fmt.Errorf("query user transactions: %w", err)
		}
		for _, doc := range docs {
			if err := tx.Delete(doc.Ref); err != nil {
				return err
			}
		}
		deleted = len(docs)
		return nil
	})
	return deleted, err
}

func (s *FirestoreStore) RetypeTransactions(ctx context.Context, oldType, newType string) (int, error) {
	query := s.client.Collection(transactionsCollection).Where("type", "==", oldType)
	updated := 0
	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		docs, err := tx.Documents(query).GetAll()
		if err != nil {
			return fmt.Errorf("query transactions by type: %w", err)
		}
		for _, doc := range docs {
			if err := tx.Update(doc.Ref, []firestore.Update{{Path: "type", Value: newType}}); err != nil {
				return err
			}
		}
		updated = len(docs)
		return nil
	})
	return updated, err
}

func (s *FirestoreStore) CreateGroup(ctx context.Context, group *model.Group) error {
	if _, err := s.client.Collection(groupsCollection).Doc(group.Name).Set(ctx, group); err != nil {
		return fmt.Errorf("create group: %w", err)
	}
	return nil
}

func (s *FirestoreStore) GetGroup(ctx context.Context, name string) (*model.Group, error) {
	var group model.Group
	if err := s.get(ctx, groupsCollection, name, &group); err != nil {
		return nil, err
	}
	return &group, nil
}

func (s *FirestoreStore) ListGroups(ctx context.Context) ([]model.Group, error) {
	iter := s.client.Collection(groupsCollection).OrderBy("name", firestore.Asc).Documents(ctx)
	return collect[model.Group](iter)
}

func (s *FirestoreStore) UpdateGroup(ctx context.Context, group *model.Group) error {
	ref := s.client.Collection(groupsCollection).Doc(group.Name)
	return s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if _, err := tx.Get(ref); err != nil {
			if status.Code(err) == codes.NotFound {
				return ErrNotFound
			}
			return fmt.Errorf("get group: %w", err)
		}
		return tx.Set(ref, group)
	})
}

func (s *FirestoreStore) DeleteGroup(ctx context.Context, name string) error {
	return s.deleteDoc(ctx, groupsCollection, name)
}

// deleteDoc fails with ErrNotFound when the document does not exist.
func (s *FirestoreStore) deleteDoc(ctx context.Context, collection, id string) error {
	_, err := s.client.Collection(collection).Doc(id).Delete(ctx, firestore.Exists)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return ErrNotFound
		}
		return fmt.Errorf("delete %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *FirestoreStore) get(ctx context.Context, collection, id string, dst interface{}) error {
	snap, err := s.client.Collection(collection).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return ErrNotFound
		}
		return fmt.Errorf("get %s/%s: %w", collection, id, err)
	}
	if err := snap.DataTo(dst); err != nil {
		return fmt.Errorf("parse %s data: %w", collection, err)
	}
	return nil
}

func collect[T any](iter *firestore.DocumentIterator) ([]T, error) {
	defer iter.Stop()
	out := make([]T, 0)
	for {
		doc, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, err
		}
		var item T
		if err := doc.DataTo(&item); err != nil {
			return nil, fmt.Errorf("parse document %s: %w", doc.Ref.ID, err)
		}
		out = append(out, item)
	}
	return out, nil
}
