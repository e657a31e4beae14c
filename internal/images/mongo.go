package images

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"

	"github.com/opengallery/gallery/internal/config"
)

// mongoRecord mirrors ImageRecord with BSON types the driver can round-trip
type mongoRecord struct {
	ID          bson.ObjectID `bson:"_id,omitempty"`
	Name        string        `bson:"name"`
	URL         string        `bson:"url"`
	SizeMB      float64       `bson:"sizeMB"`
	CreatedAt   time.Time     `bson:"createdAt"`
	UpdatedAt   time.Time     `bson:"updatedAt"`
	UploadedBy  string        `bson:"uploadedBy"`
	Description string        `bson:"description"`
	Metadata    Metadata      `bson:"metadata"`
}

func toMongoRecord(rec ImageRecord) mongoRecord {
	m := mongoRecord{
		Name:        rec.Name,
		URL:         rec.URL,
		SizeMB:      rec.SizeMB,
		CreatedAt:   rec.CreatedAt,
		UpdatedAt:   rec.UpdatedAt,
		UploadedBy:  rec.UploadedBy,
		Description: rec.Description,
		Metadata:    rec.Metadata,
	}
	if oid, err := bson.ObjectIDFromHex(rec.ID); err == nil {
		m.ID = oid
	}
	return m
}

func (m mongoRecord) toImageRecord() ImageRecord {
	return ImageRecord{
		ID:          m.ID.Hex(),
		Name:        m.Name,
		URL:         m.URL,
		SizeMB:      m.SizeMB,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
		UploadedBy:  m.UploadedBy,
		Description: m.Description,
		Metadata:    m.Metadata,
	}
}

// ConnectMongo dials the record store and verifies the connection
func ConnectMongo(ctx context.Context, cfg *config.StoreConfig) (*mongo.Client, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongodb ping failed: %w", err)
	}

	slog.Info("record store connection established", "driver", "mongo", "database", cfg.MongoDatabase)
	return client, nil
}

// MongoRepository implements Repository on a MongoDB collection
type MongoRepository struct {
	coll *mongo.Collection
}

func NewMongoRepository(client *mongo.Client, database, collection string) *MongoRepository {
	return &MongoRepository{coll: client.Database(database).Collection(collection)}
}

// EnsureIndexes creates the ascending name index used by the Name sort
func (r *MongoRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "name", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("failed to create name index: %w", err)
	}
	return nil
}

func (r *MongoRepository) sortKey(q ListQuery) bson.D {
	field := "name"
	if q.SortBy == SortByDate {
		field = "updatedAt"
	}
	dir := 1
	if q.Order == OrderDesc {
		dir = -1
	}
	// _id breaks ties so pages are stable across requests
	return bson.D{{Key: field, Value: dir}, {Key: "_id", Value: dir}}
}

func searchFilter(search string) bson.M {
	if search == "" {
		return bson.M{}
	}
	pattern := regexp.QuoteMeta(search)
	return bson.M{"$or": bson.A{
		bson.M{"name": bson.M{"$regex": pattern, "$options": "i"}},
		bson.M{"description": bson.M{"$regex": pattern, "$options": "i"}},
	}}
}

func (r *MongoRepository) List(ctx context.Context, q ListQuery) ([]ImageRecord, error) {
	opts := options.Find().
		SetSort(r.sortKey(q)).
		SetSkip(int64(q.Skip)).
		SetLimit(int64(q.Limit))

	cursor, err := r.coll.Find(ctx, searchFilter(q.Search), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list image records: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []mongoRecord
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode image records: %w", err)
	}

	recs := make([]ImageRecord, 0, len(docs))
	for _, d := range docs {
		recs = append(recs, d.toImageRecord())
	}
	return recs, nil
}

func (r *MongoRepository) Count(ctx context.Context, search string) (int, error) {
	n, err := r.coll.CountDocuments(ctx, searchFilter(search))
	if err != nil {
		return 0, fmt.Errorf("failed to count image records: %w", err)
	}
	return int(n), nil
}

func (r *MongoRepository) GetByID(ctx context.Context, id string) (*ImageRecord, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	var doc mongoRecord
	err = r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get image record %s: %w", id, err)
	}

	rec := doc.toImageRecord()
	return &rec, nil
}

func (r *MongoRepository) Insert(ctx context.Context, rec *ImageRecord) error {
	doc := toMongoRecord(*rec)
	if doc.ID.IsZero() {
		doc.ID = bson.NewObjectID()
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to insert image record: %w", err)
	}
	rec.ID = doc.ID.Hex()
	return nil
}

func (r *MongoRepository) BulkInsert(ctx context.Context, recs []ImageRecord) error {
	if len(recs) == 0 {
		return nil
	}

	docs := make([]mongoRecord, 0, len(recs))
	for _, rec := range recs {
		doc := toMongoRecord(rec)
		if doc.ID.IsZero() {
			doc.ID = bson.NewObjectID()
		}
		docs = append(docs, doc)
	}

	if _, err := r.coll.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("failed to bulk insert image records: %w", err)
	}

	for i := range recs {
		recs[i].ID = docs[i].ID.Hex()
	}
	return nil
}

func (r *MongoRepository) UpdateDescription(ctx context.Context, id, description string) error {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}

	res, err := r.coll.UpdateByID(ctx, oid, bson.M{"$set": bson.M{
		"description": description,
		"updatedAt":   time.Now().UTC(),
	}})
	if err != nil {
		return fmt.Errorf("failed to update image record %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoRepository) DeleteByID(ctx context.Context, id string) error {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("failed to delete image record %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
