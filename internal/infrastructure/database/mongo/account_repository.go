package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storefront-identity/internal/domain/account"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type accountDocument struct {
	ID                   primitive.ObjectID `bson:"_id,omitempty"`
	FirstName            string             `bson:"firstName,omitempty"`
	LastName             string             `bson:"lastName,omitempty"`
	Name                 string             `bson:"name"`
	Email                string             `bson:"email"`
	Phone                string             `bson:"phone,omitempty"`
	Password             string             `bson:"password"`
	IsAdmin              bool               `bson:"isAdmin"`
	ResetPasswordToken   string             `bson:"resetPasswordToken,omitempty"`
	ResetPasswordExpires *time.Time         `bson:"resetPasswordExpires,omitempty"`
	CreatedAt            time.Time          `bson:"createdAt"`
	UpdatedAt            time.Time          `bson:"updatedAt"`
}

// AccountRepository implements account.Repository on the "users" collection.
type AccountRepository struct {
	coll  *mongo.Collection
	store *Store
}

func NewAccountRepository(store *Store) account.Repository {
	return &AccountRepository{
		coll:  store.db.Collection(accountsCollection),
		store: store,
	}
}

func (r *AccountRepository) Insert(ctx context.Context, a *account.Account) error {
	now := time.Now().UTC()
	a.CreatedAt = now
	a.UpdatedAt = now

	doc := toAccountDocument(a)
	doc.ID = primitive.NewObjectID()

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return account.ErrAccountExists
		}
		return fmt.Errorf("failed to create account: %w", err)
	}

	a.ID = doc.ID.Hex()
	return nil
}

func (r *AccountRepository) FindByID(ctx context.Context, id string) (*account.Account, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, account.ErrAccountNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *AccountRepository) FindByEmail(ctx context.Context, email string) (*account.Account, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *AccountRepository) FindByResetToken(ctx context.Context, token string, notExpiredAsOf time.Time) (*account.Account, error) {
	return r.findOne(ctx, resetTokenFilter(token, notExpiredAsOf))
}

func (r *AccountRepository) findOne(ctx context.Context, filter bson.M) (*account.Account, error) {
	var doc accountDocument
	err := r.coll.FindOne(ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, account.ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return toAccountEntity(&doc), nil
}

func (r *AccountRepository) List(ctx context.Context) ([]*account.Account, error) {
	cur, err := r.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer cur.Close(ctx)

	var docs []accountDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode accounts: %w", err)
	}

	accounts := make([]*account.Account, len(docs))
	for i := range docs {
		accounts[i] = toAccountEntity(&docs[i])
	}
	return accounts, nil
}

func (r *AccountRepository) UpdateByID(ctx context.Context, id string, patch account.Patch) (*account.Account, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, account.ErrAccountNotFound
	}
	if patch.IsEmpty() {
		return r.findOne(ctx, bson.M{"_id": oid})
	}

	update := patchUpdate(patch, time.Now().UTC())
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc accountDocument
	err = r.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, update, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, account.ErrAccountNotFound
	}
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, account.ErrAccountExists
		}
		return nil, fmt.Errorf("failed to update account: %w", err)
	}

	return toAccountEntity(&doc), nil
}

func (r *AccountRepository) DeleteByID(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return account.ErrAccountNotFound
	}

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}
	if res.DeletedCount == 0 {
		return account.ErrAccountNotFound
	}
	return nil
}

func (r *AccountRepository) SetResetToken(ctx context.Context, id, token string, expiresAt time.Time) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return account.ErrAccountNotFound
	}

	res, err := r.coll.UpdateByID(ctx, oid, bson.M{"$set": bson.M{
		"resetPasswordToken":   token,
		"resetPasswordExpires": expiresAt.UTC(),
		"updatedAt":            time.Now().UTC(),
	}})
	if err != nil {
		return fmt.Errorf("failed to store reset token: %w", err)
	}
	if res.MatchedCount == 0 {
		return account.ErrAccountNotFound
	}
	return nil
}

// ConsumeResetToken matches and clears the token in a single FindOneAndUpdate,
// so two concurrent resets with the same token cannot both succeed.
func (r *AccountRepository) ConsumeResetToken(ctx context.Context, token string, now time.Time, passwordHash string) (*account.Account, error) {
	update := bson.M{
		"$set":   bson.M{"password": passwordHash, "updatedAt": now.UTC()},
		"$unset": bson.M{"resetPasswordToken": "", "resetPasswordExpires": ""},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc accountDocument
	err := r.coll.FindOneAndUpdate(ctx, resetTokenFilter(token, now), update, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, account.ErrResetTokenInvalid
	}
	if err != nil {
		return nil, fmt.Errorf("failed to consume reset token: %w", err)
	}
	return toAccountEntity(&doc), nil
}

func (r *AccountRepository) ClearExpiredResetTokens(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.coll.UpdateMany(ctx,
		bson.M{"resetPasswordExpires": bson.M{"$lte": now.UTC()}},
		bson.M{"$unset": bson.M{"resetPasswordToken": "", "resetPasswordExpires": ""}},
	)
	if err != nil {
		return 0, fmt.Errorf("failed to clear expired reset tokens: %w", err)
	}
	return res.ModifiedCount, nil
}

func (r *AccountRepository) Health(ctx context.Context) error {
	return r.store.Health(ctx)
}

func resetTokenFilter(token string, now time.Time) bson.M {
	return bson.M{
		"resetPasswordToken":   token,
		"resetPasswordExpires": bson.M{"$gt": now.UTC()},
	}
}

// patchUpdate builds the update document. Optional fields set to "" are
// unset rather than stored empty.
func patchUpdate(p account.Patch, now time.Time) bson.M {
	set := bson.M{"updatedAt": now}
	unset := bson.M{}

	optional := func(key string, v *string) {
		if v == nil {
			return
		}
		if *v == "" {
			unset[key] = ""
			return
		}
		set[key] = *v
	}
	optional("firstName", p.FirstName)
	optional("lastName", p.LastName)
	optional("phone", p.Phone)

	if p.Name != nil {
		set["name"] = *p.Name
	}
	if p.Email != nil {
		set["email"] = *p.Email
	}
	if p.PasswordHash != nil {
		set["password"] = *p.PasswordHash
	}
	if p.IsAdmin != nil {
		set["isAdmin"] = *p.IsAdmin
	}

	update := bson.M{"$set": set}
	if len(unset) > 0 {
		update["$unset"] = unset
	}
	return update
}

func toAccountDocument(a *account.Account) *accountDocument {
	return &accountDocument{
		FirstName:            a.FirstName,
		LastName:             a.LastName,
		Name:                 a.Name,
		Email:                a.Email,
		Phone:                a.Phone,
		Password:             a.PasswordHash,
		IsAdmin:              a.IsAdmin,
		ResetPasswordToken:   a.ResetToken,
		ResetPasswordExpires: a.ResetExpires,
		CreatedAt:            a.CreatedAt,
		UpdatedAt:            a.UpdatedAt,
	}
}

func toAccountEntity(d *accountDocument) *account.Account {
	return &account.Account{
		ID:           d.ID.Hex(),
		FirstName:    d.FirstName,
		LastName:     d.LastName,
		Name:         d.Name,
		Email:        d.Email,
		Phone:        d.Phone,
		PasswordHash: d.Password,
		IsAdmin:      d.IsAdmin,
		ResetToken:   d.ResetPasswordToken,
		ResetExpires: d.ResetPasswordExpires,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}
