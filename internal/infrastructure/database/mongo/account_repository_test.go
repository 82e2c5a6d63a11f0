package mongo

import (
	"context"
	"testing"
	"time"

	"storefront-identity/internal/domain/account"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func newAccountRepo(mt *mtest.T) account.Repository {
	return NewAccountRepository(&Store{client: mt.Client, db: mt.DB})
}

func accountDoc(id primitive.ObjectID, email string, isAdmin bool) bson.D {
	return bson.D{
		{Key: "_id", Value: id},
		{Key: "name", Value: "Ada Lovelace"},
		{Key: "email", Value: email},
		{Key: "password", Value: "$2a$10$hash"},
		{Key: "isAdmin", Value: isAdmin},
	}
}

func TestAccountRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("find by email", func(mt *mtest.T) {
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "storefront.users", mtest.FirstBatch,
			accountDoc(id, "a@x.com", true)))

		got, err := newAccountRepo(mt).FindByEmail(context.Background(), "a@x.com")
		require.NoError(mt, err)
		assert.Equal(mt, id.Hex(), got.ID)
		assert.Equal(mt, "$2a$10$hash", got.PasswordHash)
		assert.True(mt, got.IsAdmin)
	})

	mt.Run("find by email not found", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "storefront.users", mtest.FirstBatch))

		_, err := newAccountRepo(mt).FindByEmail(context.Background(), "missing@x.com")
		assert.ErrorIs(mt, err, account.ErrAccountNotFound)
	})

	mt.Run("find by malformed id", func(mt *mtest.T) {
		_, err := newAccountRepo(mt).FindByID(context.Background(), "nope")
		assert.ErrorIs(mt, err, account.ErrAccountNotFound)
	})

	mt.Run("insert", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		a := &account.Account{Name: "Ada", Email: "a@x.com", PasswordHash: "hash"}
		require.NoError(mt, newAccountRepo(mt).Insert(context.Background(), a))
		assert.Len(mt, a.ID, 24)
	})

	mt.Run("insert duplicate", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "E11000 duplicate key error collection: storefront.users index: email_1",
		}))

		err := newAccountRepo(mt).Insert(context.Background(), &account.Account{Email: "a@x.com"})
		assert.ErrorIs(mt, err, account.ErrAccountExists)
	})

	mt.Run("update by id", func(mt *mtest.T) {
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: accountDoc(id, "new@x.com", false)}))

		email := "new@x.com"
		got, err := newAccountRepo(mt).UpdateByID(context.Background(), id.Hex(), account.Patch{Email: &email})
		require.NoError(mt, err)
		assert.Equal(mt, "new@x.com", got.Email)
	})

	mt.Run("update by id not found", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil}))

		email := "new@x.com"
		_, err := newAccountRepo(mt).UpdateByID(context.Background(), primitive.NewObjectID().Hex(), account.Patch{Email: &email})
		assert.ErrorIs(mt, err, account.ErrAccountNotFound)
	})

	mt.Run("update email clash", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    11000,
			Name:    "DuplicateKey",
			Message: "E11000 duplicate key error",
		}))

		email := "taken@x.com"
		_, err := newAccountRepo(mt).UpdateByID(context.Background(), primitive.NewObjectID().Hex(), account.Patch{Email: &email})
		assert.ErrorIs(mt, err, account.ErrAccountExists)
	})

	mt.Run("delete", func(mt *mtest.T) {
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}),
		)
		repo := newAccountRepo(mt)
		id := primitive.NewObjectID().Hex()

		require.NoError(mt, repo.DeleteByID(context.Background(), id))
		assert.ErrorIs(mt, repo.DeleteByID(context.Background(), id), account.ErrAccountNotFound)
	})

	mt.Run("set reset token", func(mt *mtest.T) {
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1}),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}, bson.E{Key: "nModified", Value: 0}),
		)
		repo := newAccountRepo(mt)
		id := primitive.NewObjectID().Hex()
		expires := time.Now().Add(time.Hour)

		require.NoError(mt, repo.SetResetToken(context.Background(), id, "tok", expires))
		assert.ErrorIs(mt, repo.SetResetToken(context.Background(), id, "tok", expires), account.ErrAccountNotFound)
	})

	mt.Run("consume reset token", func(mt *mtest.T) {
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: accountDoc(id, "a@x.com", false)}))

		got, err := newAccountRepo(mt).ConsumeResetToken(context.Background(), "tok", time.Now(), "newhash")
		require.NoError(mt, err)
		assert.Equal(mt, id.Hex(), got.ID)
		assert.Empty(mt, got.ResetToken)
	})

	mt.Run("consume reset token no match", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil}))

		_, err := newAccountRepo(mt).ConsumeResetToken(context.Background(), "tok", time.Now(), "newhash")
		assert.ErrorIs(mt, err, account.ErrResetTokenInvalid)
	})

	mt.Run("clear expired reset tokens", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 3}, bson.E{Key: "nModified", Value: 3}))

		cleared, err := newAccountRepo(mt).ClearExpiredResetTokens(context.Background(), time.Now())
		require.NoError(mt, err)
		assert.Equal(mt, int64(3), cleared)
	})
}

func TestPatchUpdate(t *testing.T) {
	now := time.Now().UTC()
	empty := ""
	name := "Ada"
	admin := true

	update := patchUpdate(account.Patch{Phone: &empty, Name: &name, IsAdmin: &admin}, now)

	assert.Equal(t, bson.M{"updatedAt": now, "name": "Ada", "isAdmin": true}, update["$set"])
	assert.Equal(t, bson.M{"phone": ""}, update["$unset"])

	update = patchUpdate(account.Patch{Name: &name}, now)
	_, hasUnset := update["$unset"]
	assert.False(t, hasUnset)
}

func TestResetTokenFilter(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	assert.Equal(t, bson.M{
		"resetPasswordToken":   "tok",
		"resetPasswordExpires": bson.M{"$gt": now},
	}, resetTokenFilter("tok", now))
}
