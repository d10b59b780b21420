package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/druk-utility/consumer-registry/internal/core/domain"
	"github.com/druk-utility/consumer-registry/internal/core/ports"
)

const collectionDzongkhags = "dzongkhags"

type DzongkhagRepository struct {
	col *mongo.Collection
}

func NewDzongkhagRepository(db *mongo.Database) *DzongkhagRepository {
	return &DzongkhagRepository{col: db.Collection(collectionDzongkhags)}
}

var _ ports.DzongkhagRepository = (*DzongkhagRepository)(nil)

type coordinatesDoc struct {
	Latitude  float64 `bson:"latitude"`
	Longitude float64 `bson:"longitude"`
}

func coordinatesToDoc(c *domain.Coordinates) *coordinatesDoc {
	if c == nil {
		return nil
	}
	return &coordinatesDoc{Latitude: c.Latitude, Longitude: c.Longitude}
}

func (c *coordinatesDoc) toDomain() *domain.Coordinates {
	if c == nil {
		return nil
	}
	return &domain.Coordinates{Latitude: c.Latitude, Longitude: c.Longitude}
}

type dzongkhagDoc struct {
	ID             primitive.ObjectID `bson:"_id,omitempty"`
	Name           string             `bson:"name"`
	NameInDzongkha string             `bson:"nameInDzongkha,omitempty"`
	Code           string             `bson:"code"`
	Region         string             `bson:"region"`
	Area           float64            `bson:"area,omitempty"`
	Population     int64              `bson:"population,omitempty"`
	Coordinates    *coordinatesDoc    `bson:"coordinates,omitempty"`
	CreatedBy      primitive.ObjectID `bson:"createdBy,omitempty"`
	CreatedAt      time.Time          `bson:"createdAt"`
	UpdatedAt      time.Time          `bson:"updatedAt"`
}

func (d *dzongkhagDoc) toDomain() *domain.Dzongkhag {
	return &domain.Dzongkhag{
		ID:             d.ID.Hex(),
		Name:           d.Name,
		NameInDzongkha: d.NameInDzongkha,
		Code:           d.Code,
		Region:         domain.Region(d.Region),
		Area:           d.Area,
		Population:     d.Population,
		Coordinates:    d.Coordinates.toDomain(),
		CreatedBy:      hexOrEmpty(d.CreatedBy),
		CreatedAt:      d.CreatedAt.UTC(),
		UpdatedAt:      d.UpdatedAt.UTC(),
	}
}

func (r *DzongkhagRepository) Create(ctx context.Context, d *domain.Dzongkhag) (*domain.Dzongkhag, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	createdBy, _ := objectID(d.CreatedBy)
	doc := dzongkhagDoc{
		Name:           d.Name,
		NameInDzongkha: d.NameInDzongkha,
		Code:           d.Code,
		Region:         string(d.Region),
		Area:           d.Area,
		Population:     d.Population,
		Coordinates:    coordinatesToDoc(d.Coordinates),
		CreatedBy:      createdBy,
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
	}

	res, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrDzongkhagExists
		}
		return nil, fmt.Errorf("insert dzongkhag: %w", err)
	}
	doc.ID = res.InsertedID.(primitive.ObjectID)
	return doc.toDomain(), nil
}

func (r *DzongkhagRepository) FindByID(ctx context.Context, id string) (*domain.Dzongkhag, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, domain.ErrDzongkhagNotFound
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc dzongkhagDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if isNoDocuments(err) {
			return nil, domain.ErrDzongkhagNotFound
		}
		return nil, fmt.Errorf("find dzongkhag: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *DzongkhagRepository) FindAll(ctx context.Context) ([]*domain.Dzongkhag, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find dzongkhags: %w", err)
	}
	var docs []dzongkhagDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode dzongkhags: %w", err)
	}

	out := make([]*domain.Dzongkhag, 0, len(docs))
	for i := range docs {
		out = append(out, docs[i].toDomain())
	}
	return out, nil
}

func (r *DzongkhagRepository) UpdateByID(ctx context.Context, id string, p domain.DzongkhagPatch) (*domain.Dzongkhag, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, domain.ErrDzongkhagNotFound
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	set := setter{"updatedAt": time.Now().UTC()}
	set.str("name", p.Name)
	set.str("nameInDzongkha", p.NameInDzongkha)
	set.str("code", p.Code)
	setIf(set, "area", p.Area)
	setIf(set, "population", p.Population)
	if p.Region != nil {
		set["region"] = string(*p.Region)
	}
	if p.Coordinates != nil {
		set["coordinates"] = coordinatesToDoc(p.Coordinates)
	}

	var doc dzongkhagDoc
	err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": oid}, set.update(),
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&doc)
	if err != nil {
		switch {
		case isNoDocuments(err):
			return nil, domain.ErrDzongkhagNotFound
		case mongo.IsDuplicateKeyError(err):
			return nil, domain.ErrDzongkhagExists
		}
		return nil, fmt.Errorf("update dzongkhag: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *DzongkhagRepository) DeleteByID(ctx context.Context, id string) error {
	oid, ok := objectID(id)
	if !ok {
		return domain.ErrDzongkhagNotFound
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete dzongkhag: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrDzongkhagNotFound
	}
	return nil
}

// EnsureIndexes makes the dzongkhag code unique.
func (r *DzongkhagRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "code", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}
