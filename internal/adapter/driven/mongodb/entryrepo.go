package mongodb

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/nvasilev/vaultkeeper/internal/domain/model"
	"github.com/nvasilev/vaultkeeper/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.EntryStore = (*EntryRepo)(nil)

// EntryRepo is the MongoDB implementation of the EntryStore port interface.
type EntryRepo struct {
	db *DB
}

// NewEntryRepo creates a new EntryRepo backed by the given DB.
func NewEntryRepo(db *DB) *EntryRepo {
	return &EntryRepo{db: db}
}

// entryDoc is the BSON representation of a vault entry.
type entryDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Name      string             `bson:"name"`
	Content   string             `bson:"content"`
	Category  string             `bson:"category"`
	Tags      []string           `bson:"tags"`
	CreatedAt time.Time          `bson:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt"`
}

func toDoc(entry model.VaultEntry) entryDoc {
	return entryDoc{
		Name:      entry.Name,
		Content:   entry.Content,
		Category:  entry.Category,
		Tags:      entry.Tags,
		CreatedAt: entry.CreatedAt,
		UpdatedAt: entry.UpdatedAt,
	}
}

func fromDoc(doc entryDoc) model.VaultEntry {
	tags := doc.Tags
	if tags == nil {
		tags = []string{}
	}

	return model.VaultEntry{
		ID:        doc.ID.Hex(),
		Name:      doc.Name,
		Content:   doc.Content,
		Category:  doc.Category,
		Tags:      tags,
		CreatedAt: doc.CreatedAt.UTC(),
		UpdatedAt: doc.UpdatedAt.UTC(),
	}
}

// Insert persists a new entry and returns it with the store-assigned ID.
func (r *EntryRepo) Insert(ctx context.Context, entry model.VaultEntry) (model.VaultEntry, error) {
	res, err := r.db.Entries.InsertOne(ctx, toDoc(entry))
	if err != nil {
		return model.VaultEntry{}, fmt.Errorf("insert entry: %w", err)
	}

	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return model.VaultEntry{}, fmt.Errorf("insert entry: unexpected inserted id type %T", res.InsertedID)
	}

	entry.ID = oid.Hex()
	return entry, nil
}

// GetByID retrieves a single entry. Returns nil, nil if no entry has the id.
// A malformed id is an error, not a miss.
func (r *EntryRepo) GetByID(ctx context.Context, id string) (*model.VaultEntry, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("malformed entry id %q: %w", id, err)
	}

	var doc entryDoc
	err = r.db.Entries.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get entry %s: %w", id, err)
	}

	entry := fromDoc(doc)
	return &entry, nil
}

// Update applies the patch, restamps updatedAt, and returns the post-update
// document. Returns nil, nil if the id does not resolve.
func (r *EntryRepo) Update(ctx context.Context, id string, patch model.EntryPatch) (*model.VaultEntry, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("malformed entry id %q: %w", id, err)
	}

	set := bson.M{"updatedAt": time.Now().UTC().Truncate(time.Millisecond)}
	if patch.Name != nil {
		set["name"] = *patch.Name
	}
	if patch.Content != nil {
		set["content"] = *patch.Content
	}
	if patch.Category != nil {
		set["category"] = *patch.Category
	}
	if patch.Tags != nil {
		set["tags"] = *patch.Tags
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc entryDoc
	err = r.db.Entries.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set}, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("update entry %s: %w", id, err)
	}

	entry := fromDoc(doc)
	return &entry, nil
}

// Delete removes an entry and returns its last state. Returns nil, nil if the
// id does not resolve.
func (r *EntryRepo) Delete(ctx context.Context, id string) (*model.VaultEntry, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("malformed entry id %q: %w", id, err)
	}

	var doc entryDoc
	err = r.db.Entries.FindOneAndDelete(ctx, bson.M{"_id": oid}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("delete entry %s: %w", id, err)
	}

	entry := fromDoc(doc)
	return &entry, nil
}

// List returns all entries in the given order.
func (r *EntryRepo) List(ctx context.Context, sort model.SortSpec) ([]model.VaultEntry, error) {
	field := "createdAt"
	if sort.Field == model.SortByName {
		field = "name"
	}

	direction := -1
	if sort.Order == model.SortAsc {
		direction = 1
	}

	opts := options.Find().SetSort(bson.D{{Key: field, Value: direction}})

	cursor, err := r.db.Entries.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}

	return decodeEntries(ctx, cursor)
}

// Search matches the query as a case-insensitive substring against name,
// content, category, and tag elements. The query is escaped so regex
// metacharacters match literally.
func (r *EntryRepo) Search(ctx context.Context, query string) ([]model.VaultEntry, error) {
	pattern := primitive.Regex{Pattern: regexp.QuoteMeta(query), Options: "i"}
	filter := bson.M{"$or": []bson.M{
		{"name": pattern},
		{"content": pattern},
		{"category": pattern},
		{"tags": pattern},
	}}

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := r.db.Entries.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("search entries: %w", err)
	}

	return decodeEntries(ctx, cursor)
}

// Count returns the total number of entries.
func (r *EntryRepo) Count(ctx context.Context) (int64, error) {
	n, err := r.db.Entries.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("count entries: %w", err)
	}
	return n, nil
}

// CountCreatedSince returns the number of entries created at or after t.
func (r *EntryRepo) CountCreatedSince(ctx context.Context, t time.Time) (int64, error) {
	n, err := r.db.Entries.CountDocuments(ctx, bson.M{"createdAt": bson.M{"$gte": t}})
	if err != nil {
		return 0, fmt.Errorf("count entries since %s: %w", t.Format(time.RFC3339), err)
	}
	return n, nil
}

// CategoryCounts tallies entries per category, largest bucket first.
func (r *EntryRepo) CategoryCounts(ctx context.Context) ([]model.CategoryCount, error) {
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$category"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
		bson.D{{Key: "$sort", Value: bson.D{{Key: "count", Value: -1}}}},
	}

	cursor, err := r.db.Entries.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate categories: %w", err)
	}

	var buckets []struct {
		ID    string `bson:"_id"`
		Count int64  `bson:"count"`
	}
	if err := cursor.All(ctx, &buckets); err != nil {
		return nil, fmt.Errorf("decode category buckets: %w", err)
	}

	counts := make([]model.CategoryCount, 0, len(buckets))
	for _, b := range buckets {
		counts = append(counts, model.CategoryCount{Category: b.ID, Count: b.Count})
	}

	return counts, nil
}

// Ping verifies store connectivity.
func (r *EntryRepo) Ping(ctx context.Context) error {
	if err := r.db.Client.Ping(ctx, readpref.Primary()); err != nil {
		return fmt.Errorf("ping store: %w", err)
	}
	return nil
}

func decodeEntries(ctx context.Context, cursor *mongo.Cursor) ([]model.VaultEntry, error) {
	var docs []entryDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode entries: %w", err)
	}

	entries := make([]model.VaultEntry, 0, len(docs))
	for _, doc := range docs {
		entries = append(entries, fromDoc(doc))
	}

	return entries, nil
}
