package services

import (
	"context"
	"os"
	"testing"
	"time"

	"ezwallet/model"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newEmulatorStore connects to the emulator named by FIRESTORE_EMULATOR_HOST.
func newEmulatorStore(t *testing.T) *FirestoreStore {
	t.Helper()
	if os.Getenv("FIRESTORE_EMULATOR_HOST") == "" {
		t.Skip("FIRESTORE_EMULATOR_HOST not set")
	}
	client, err := firestore.NewClient(context.Background(), "ezwallet-test")
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return NewFirestoreStore(client)
}

func TestFirestoreStore_Users(t *testing.T) {
	s := newEmulatorStore(t)
	ctx := context.Background()
	suffix := uuid.NewString()
	user := model.User{
		UserID:    uuid.NewString(),
		Username:  "mario-" + suffix,
		Email:     "mario-" + suffix + "@x.com",
		Role:      model.RoleRegular,
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, s.CreateUser(ctx, &user))

	got, err := s.GetUserByEmail(ctx, user.Email)
	require.NoError(t, err)
	assert.Equal(t, user.Username, got.Username)

	require.NoError(t, s.SetRefreshToken(ctx, user.UserID, "digest-"+suffix))
	got, err = s.GetUserByRefreshToken(ctx, "digest-"+suffix)
	require.NoError(t, err)
	assert.Equal(t, user.UserID, got.UserID)

	require.NoError(t, s.SetRefreshToken(ctx, user.UserID, ""))
	_, err = s.GetUserByRefreshToken(ctx, "digest-"+suffix)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.GetUserByRefreshToken(ctx, "")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, s.SetRefreshToken(ctx, uuid.NewString(), "x"), ErrNotFound)
}

func TestFirestoreStore_Transactions(t *testing.T) {
	s := newEmulatorStore(t)
	ctx := context.Background()
	username := "luigi-" + uuid.NewString()
	tx := model.Transaction{
		TransactionID: uuid.NewString(),
		Username:      username,
		Amount:        12.5,
		Type:          "food",
		Date:          time.Now().UTC(),
	}
	require.NoError(t, s.CreateTransaction(ctx, &tx))

	txs, err := s.ListTransactions(ctx, username)
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, 12.5, txs[0].Amount)

	require.NoError(t, s.DeleteTransaction(ctx, tx.TransactionID))
	assert.ErrorIs(t, s.DeleteTransaction(ctx, tx.TransactionID), ErrNotFound)
	_, err = s.GetTransaction(ctx, tx.TransactionID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFirestoreStore_Groups(t *testing.T) {
	s := newEmulatorStore(t)
	ctx := context.Background()
	group := model.Group{
		Name:    "family-" + uuid.NewString(),
		Members: []model.GroupMember{{Email: "m@x.com", Username: "mario", UserID: "1"}},
	}
	require.NoError(t, s.CreateGroup(ctx, &group))

	got, err := s.GetGroup(ctx, group.Name)
	require.NoError(t, err)
	assert.Equal(t, []string{"m@x.com"}, got.MemberEmails())
	assert.Equal(t, []string{"mario"}, got.MemberUsernames())

	_, err = s.GetGroup(ctx, "missing-"+uuid.NewString())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFirestoreStore_ListTransactionsByDate(t *testing.T) {
	s := newEmulatorStore(t)
	ctx := context.Background()
	mario, luigi := "mario-"+uuid.NewString(), "luigi-"+uuid.NewString()
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	// luigi's only transaction falls between mario's two
	for _, tx := range []model.Transaction{
		{TransactionID: uuid.NewString(), Username: mario, Date: base},
		{TransactionID: uuid.NewString(), Username: mario, Date: base.Add(2 * time.Hour)},
		{TransactionID: uuid.NewString(), Username: luigi, Date: base.Add(time.Hour)},
	} {
		require.NoError(t, s.CreateTransaction(ctx, &tx))
	}

	txs, err := s.ListTransactions(ctx, mario, luigi)
	require.NoError(t, err)
	require.Len(t, txs, 3)
	assert.Equal(t, []string{mario, luigi, mario}, []string{txs[0].Username, txs[1].Username, txs[2].Username})
}

func TestFirestoreStore_Deletes(t *testing.T) {
	s := newEmulatorStore(t)
	ctx := context.Background()
	username := "peach-" + uuid.NewString()
	ids := []string{uuid.NewString(), uuid.NewString()}
	for _, id := range ids {
		require.NoError(t, s.CreateTransaction(ctx, &model.Transaction{TransactionID: id, Username: username, Type: "food"}))
	}

	assert.ErrorIs(t, s.DeleteTransactions(ctx, ids[0], uuid.NewString()), ErrNotFound)
	_, err := s.GetTransaction(ctx, ids[0])
	require.NoError(t, err)

	require.NoError(t, s.DeleteTransactions(ctx, ids[0]))
	deleted, err := s.DeleteUserTransactions(ctx, username)
	require.NoError(t, err)
	assert.Equal(t, 1, deleted)

	user := model.User{UserID: uuid.NewString(), Username: username, Email: username + "@x.com"}
	require.NoError(t, s.CreateUser(ctx, &user))
	require.NoError(t, s.DeleteUser(ctx, user.UserID))
	assert.ErrorIs(t, s.DeleteUser(ctx, user.UserID), ErrNotFound)
}

func TestFirestoreStore_UpdateCategory(t *testing.T) {
	s := newEmulatorStore(t)
	ctx := context.Background()
	oldType, newType := "food-"+uuid.NewString(), "groceries-"+uuid.NewString()
	require.NoError(t, s.CreateCategory(ctx, &model.Category{Type: oldType, Color: "red"}))
	txID := uuid.NewString()
	require.NoError(t, s.CreateTransaction(ctx, &model.Transaction{TransactionID: txID, Type: oldType}))

	require.NoError(t, s.UpdateCategory(ctx, oldType, &model.Category{Type: newType, Color: "green"}))
	_, err := s.GetCategory(ctx, oldType)
	assert.ErrorIs(t, err, ErrNotFound)

	updated, err := s.RetypeTransactions(ctx, oldType, newType)
	require.NoError(t, err)
	assert.Equal(t, 1, updated)
	tx, err := s.GetTransaction(ctx, txID)
	require.NoError(t, err)
	assert.Equal(t, newType, tx.Type)
}
