package repositories

import (
	"context"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/souqly/souqly_backend/models"
)

type AuditRepository struct {
	collection *mongo.Collection
}

func NewAuditRepository(db *mongo.Database) *AuditRepository {
	return &AuditRepository{
		collection: db.Collection("mutation_audits"),
	}
}

// Record inserts a mutation audit entry. Best-effort: a failed insert
// is logged and swallowed so auditing never fails the mutation.
func (r *AuditRepository) Record(audit models.MutationAudit) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := r.collection.InsertOne(ctx, audit); err != nil {
		log.Printf("Failed to record mutation audit for seller %s (attempt %s): %v",
			audit.SellerID, audit.AttemptID, err)
	}
}

// FindBySeller returns a seller's mutation audit trail, newest first
func (r *AuditRepository) FindBySeller(ctx context.Context, sellerID string, limit int64) ([]models.MutationAudit, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(limit)

	cursor, err := r.collection.Find(ctx, bson.M{"sellerId": sellerID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var audits []models.MutationAudit
	if err := cursor.All(ctx, &audits); err != nil {
		return nil, err
	}
	return audits, nil
}
