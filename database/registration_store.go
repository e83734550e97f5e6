package database

import (
	"context"
	"errors"
	"time"

	"opolo-api/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

var (
	ErrDuplicatePaymentID = errors.New("registration with this payment id already exists")
	ErrNotFound           = errors.New("registration not found")
)

// RegistrationStore keeps registration records in a MongoDB collection,
// keyed by the gateway payment id.
type RegistrationStore struct {
	coll *mongo.Collection
}

func NewRegistrationStore(coll *mongo.Collection) *RegistrationStore {
	return &RegistrationStore{coll: coll}
}

func (s *RegistrationStore) Insert(ctx context.Context, reg *models.Registration) error {
	if reg.ID.IsZero() {
		reg.ID = primitive.NewObjectID()
	}
	if reg.CreatedAt.IsZero() {
		reg.CreatedAt = time.Now().UTC()
	}

	_, err := s.coll.InsertOne(ctx, reg)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicatePaymentID
	}
	return err
}

// MarkSettled moves a pending registration to status and stamps paidAt.
// The filter on status makes the write a no-op for records that already left
// pending, so concurrent deliveries for one payment are serialized by Mongo
// and only the first one wins. It reports whether a record was changed.
func (s *RegistrationStore) MarkSettled(ctx context.Context, paymentID string, status models.RegistrationStatus, paidAt time.Time) (bool, error) {
	filter := bson.M{
		"payment_id": paymentID,
		"status":     models.StatusPending,
	}
	update := bson.M{
		"$set": bson.M{
			"status":  status,
			"paid_at": paidAt,
		},
	}

	res, err := s.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount > 0, nil
}

// List returns registrations newest first, restricted to programType when it
// is not empty.
func (s *RegistrationStore) List(ctx context.Context, programType string) ([]models.Registration, error) {
	filter := bson.M{}
	if programType != "" {
		filter["program_type"] = programType
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var regs []models.Registration
	if err := cursor.All(ctx, &regs); err != nil {
		return nil, err
	}
	if regs == nil {
		regs = []models.Registration{}
	}
	return regs, nil
}

func (s *RegistrationStore) FindByPaymentID(ctx context.Context, paymentID string) (*models.Registration, error) {
	var reg models.Registration
	err := s.coll.FindOne(ctx, bson.M{"payment_id": paymentID}).Decode(&reg)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &reg, nil
}

func (s *RegistrationStore) Ping(ctx context.Context) error {
	return s.coll.Database().Client().Ping(ctx, readpref.Primary())
}
