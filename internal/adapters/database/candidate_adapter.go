package database

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/eventrove/marketplace-backend/internal/domain/entities"
	"github.com/eventrove/marketplace-backend/internal/domain/repositories"
	mongoclient "github.com/eventrove/marketplace-backend/internal/infrastructure/clients/mongo"
	apperrors "github.com/eventrove/marketplace-backend/pkg/errors"
)

// CandidateAdapter implements the CandidateRepository interface over
// the MongoDB listing collections. It is strictly read-only.
type CandidateAdapter struct {
	client *mongoclient.Client
}

// NewCandidateAdapter creates a new candidate adapter
func NewCandidateAdapter(client *mongoclient.Client) repositories.CandidateRepository {
	return &CandidateAdapter{client: client}
}

// Read returns the full candidate set of a collection, ordered by _id
// so repeated reads see the same insertion order.
func (a *CandidateAdapter) Read(ctx context.Context, collection string) ([]*entities.Candidate, error) {
	return a.find(ctx, collection, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
}

// FindWithOptions returns a filtered candidate set
func (a *CandidateAdapter) FindWithOptions(ctx context.Context, collection string, filter repositories.CandidateFilter, opts repositories.FindOptions) ([]*entities.Candidate, error) {
	query := bson.M{}
	if filter.Category != "" {
		query["category"] = filter.Category
	}
	if filter.ApprovedOnly {
		query["approved"] = true
	}
	if filter.VerifiedOnly {
		query["verified"] = true
	}
	if filter.FeaturedOnly {
		query["featured"] = true
	}

	sortField := opts.SortBy
	if sortField == "" {
		sortField = "_id"
	}
	findOpts := options.Find().SetSort(bson.D{{Key: sortField, Value: 1}})
	if opts.Limit > 0 {
		findOpts = findOpts.SetLimit(int64(opts.Limit))
	}

	return a.find(ctx, collection, query, findOpts)
}

func (a *CandidateAdapter) find(ctx context.Context, collection string, query bson.M, opts *options.FindOptions) ([]*entities.Candidate, error) {
	cursor, err := a.client.Collection(collection).Find(ctx, query, opts)
	if err != nil {
		return nil, apperrors.NewExternalError("candidate source unavailable", err)
	}
	defer cursor.Close(ctx)

	var candidates []*entities.Candidate
	for cursor.Next(ctx) {
		var doc bson.M
		if err := cursor.Decode(&doc); err != nil {
			return nil, apperrors.NewExternalError("failed to decode candidate record", err)
		}
		candidates = append(candidates, candidateFromDoc(doc))
	}
	if err := cursor.Err(); err != nil {
		return nil, apperrors.NewExternalError("failed to read candidate records", err)
	}

	return candidates, nil
}

// candidateFromDoc flattens a listing document into the view the
// discovery engine ranks. Suppliers carry business_name and price_from,
// packages carry title and price; both shapes map onto the same fields.
func candidateFromDoc(doc bson.M) *entities.Candidate {
	c := &entities.Candidate{
		ID:          docID(doc),
		Name:        docString(doc, "name", "business_name", "title"),
		Description: docString(doc, "description"),
		Category:    docString(doc, "category"),
		Location:    docString(doc, "location", "city"),
		Amenities:   docStrings(doc, "amenities"),
		Price:       docFloat(doc, "price", "price_from"),
		Rating:      docFloat(doc, "rating"),
		ReviewCount: int(docFloat(doc, "review_count")),
		MaxGuests:   int(docFloat(doc, "max_guests")),
		Featured:    docBool(doc, "featured"),
		ProActive:   docBool(doc, "pro_active"),
		Verified:    docBool(doc, "verified"),
		Approved:    docBool(doc, "approved"),
		CreatedAt:   docTime(doc, "created_at"),
		Doc:         map[string]interface{}(doc),
	}
	return c
}

func docID(doc bson.M) string {
	switch v := doc["_id"].(type) {
	case primitive.ObjectID:
		return v.Hex()
	case string:
		return v
	}
	return ""
}

func docString(doc bson.M, keys ...string) string {
	for _, key := range keys {
		if s, ok := doc[key].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

func docStrings(doc bson.M, key string) []string {
	arr, ok := doc[key].(primitive.A)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(arr))
	for _, v := range arr {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func docFloat(doc bson.M, keys ...string) float64 {
	for _, key := range keys {
		switch v := doc[key].(type) {
		case float64:
			return v
		case float32:
			return float64(v)
		case int32:
			return float64(v)
		case int64:
			return float64(v)
		case int:
			return float64(v)
		}
	}
	return 0
}

func docBool(doc bson.M, key string) bool {
	b, ok := doc[key].(bool)
	return ok && b
}

func docTime(doc bson.M, key string) time.Time {
	switch v := doc[key].(type) {
	case primitive.DateTime:
		return v.Time()
	case time.Time:
		return v
	}
	return time.Time{}
}
