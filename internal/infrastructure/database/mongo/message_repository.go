package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storefront-identity/internal/domain/message"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type messageDocument struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Name      string             `bson:"name"`
	Email     string             `bson:"email"`
	Subject   string             `bson:"subject,omitempty"`
	Message   string             `bson:"message"`
	IsRead    bool               `bson:"isRead"`
	CreatedAt time.Time          `bson:"createdAt"`
}

type MessageRepository struct {
	coll *mongo.Collection
}

func NewMessageRepository(store *Store) message.Repository {
	return &MessageRepository{coll: store.db.Collection(messagesCollection)}
}

func (r *MessageRepository) Create(ctx context.Context, msg *message.Message) error {
	msg.CreatedAt = time.Now().UTC()
	msg.IsRead = false

	doc := toMessageDocument(msg)
	doc.ID = primitive.NewObjectID()
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to create message: %w", err)
	}

	msg.ID = doc.ID.Hex()
	return nil
}

func (r *MessageRepository) List(ctx context.Context) ([]*message.Message, error) {
	cur, err := r.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer cur.Close(ctx)

	var docs []messageDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode messages: %w", err)
	}

	messages := make([]*message.Message, len(docs))
	for i := range docs {
		messages[i] = toMessageEntity(&docs[i])
	}
	return messages, nil
}

func (r *MessageRepository) MarkAsRead(ctx context.Context, id string) (*message.Message, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, message.ErrMessageNotFound
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc messageDocument
	err = r.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M{"isRead": true}}, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, message.ErrMessageNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to mark message as read: %w", err)
	}
	return toMessageEntity(&doc), nil
}

func toMessageDocument(m *message.Message) *messageDocument {
	return &messageDocument{
		Name:      m.Name,
		Email:     m.Email,
		Subject:   m.Subject,
		Message:   m.Body,
		IsRead:    m.IsRead,
		CreatedAt: m.CreatedAt,
	}
}

func toMessageEntity(d *messageDocument) *message.Message {
	return &message.Message{
		ID:        d.ID.Hex(),
		Name:      d.Name,
		Email:     d.Email,
		Subject:   d.Subject,
		Body:      d.Message,
		IsRead:    d.IsRead,
		CreatedAt: d.CreatedAt,
	}
}
