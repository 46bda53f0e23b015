package store

import (
	"context"
	stderrors "errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/foamlayout/pkg/errors"
	"github.com/matzehuels/foamlayout/pkg/layout"
)

// Default Mongo names.
const (
	DefaultMongoDatabase   = "foamlayout"
	DefaultMongoCollection = "packages"
)

// mongoPackage is the stored document. The layout is kept as its canonical
// JSON so every backend round-trips the same bytes.
type mongoPackage struct {
	ID         string    `bson:"_id"`
	LayoutJSON string    `bson:"layout_json"`
	SVGText    string    `bson:"svg_text"`
	DXFText    string    `bson:"dxf_text"`
	CreatedAt  time.Time `bson:"created_at"`
}

// Mongo stores packages in a MongoDB collection.
type Mongo struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewMongo connects to uri and uses the given database. An empty database
// name selects DefaultMongoDatabase.
func NewMongo(ctx context.Context, uri, database string) (*Mongo, error) {
	if err := errors.ValidateURL(uri, "mongodb", "mongodb+srv"); err != nil {
		return nil, err
	}
	if database == "" {
		database = DefaultMongoDatabase
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "connect to mongo")
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "ping mongo")
	}

	coll := client.Database(database).Collection(DefaultMongoCollection)
	_, err = coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "created_at", Value: -1}},
	})
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "create index")
	}
	return &Mongo{client: client, coll: coll}, nil
}

func (s *Mongo) Save(ctx context.Context, p *Package) error {
	if err := errors.ValidatePackageID(p.ID); err != nil {
		return err
	}
	data, err := layout.Marshal(p.Layout)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode layout")
	}
	doc := mongoPackage{
		ID:         p.ID,
		LayoutJSON: string(data),
		SVGText:    p.SVGText,
		DXFText:    p.DXFText,
		CreatedAt:  p.CreatedAt,
	}
	_, err = s.coll.ReplaceOne(ctx, bson.M{"_id": p.ID}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return errors.Wrap(errors.ErrCodeStorage, err, "save package %s", p.ID)
	}
	return nil
}

func (s *Mongo) Get(ctx context.Context, id string) (*Package, error) {
	var doc mongoPackage
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if stderrors.Is(err, mongo.ErrNoDocuments) {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "get package %s", id)
	}
	return doc.toPackage()
}

func (s *Mongo) List(ctx context.Context, limit int) ([]*Package, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: 1}}).
		SetLimit(int64(listLimit(limit)))
	cur, err := s.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "list packages")
	}
	var docs []mongoPackage
	if err := cur.All(ctx, &docs); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "list packages")
	}

	out := make([]*Package, 0, len(docs))
	for _, doc := range docs {
		p, err := doc.toPackage()
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func (s *Mongo) Delete(ctx context.Context, id string) error {
	if _, err := s.coll.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return errors.Wrap(errors.ErrCodeStorage, err, "delete package %s", id)
	}
	return nil
}

func (s *Mongo) Close() error {
	return s.client.Disconnect(context.Background())
}

func (d mongoPackage) toPackage() (*Package, error) {
	m, err := layout.Unmarshal([]byte(d.LayoutJSON))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "decode package %s", d.ID)
	}
	return &Package{
		ID:        d.ID,
		Layout:    m,
		SVGText:   d.SVGText,
		DXFText:   d.DXFText,
		CreatedAt: d.CreatedAt.UTC(),
	}, nil
}

var _ Store = (*Mongo)(nil)
