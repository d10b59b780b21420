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

const collectionGewogs = "gewogs"

type GewogRepository struct {
	col *mongo.Collection
}

func NewGewogRepository(db *mongo.Database) *GewogRepository {
	return &GewogRepository{col: db.Collection(collectionGewogs)}
}

var _ ports.GewogRepository = (*GewogRepository)(nil)

type gewogDoc struct {
	ID             primitive.ObjectID `bson:"_id,omitempty"`
	Name           string             `bson:"name"`
	NameInDzongkha string             `bson:"nameInDzongkha,omitempty"`
	Dzongkhag      primitive.ObjectID `bson:"dzongkhag"`
	Area           float64            `bson:"area,omitempty"`
	Population     int64              `bson:"population,omitempty"`
	Coordinates    *coordinatesDoc    `bson:"coordinates,omitempty"`
	CreatedBy      primitive.ObjectID `bson:"createdBy,omitempty"`
	CreatedAt      time.Time          `bson:"createdAt"`
	UpdatedAt      time.Time          `bson:"updatedAt"`

	// Populated by $lookup; never written.
	DzongkhagDoc *dzongkhagDoc `bson:"dzongkhagDoc,omitempty"`
}

func (d *gewogDoc) toDomain() *domain.Gewog {
	g := &domain.Gewog{
		ID:             d.ID.Hex(),
		Name:           d.Name,
		NameInDzongkha: d.NameInDzongkha,
		DzongkhagID:    hexOrEmpty(d.Dzongkhag),
		Area:           d.Area,
		Population:     d.Population,
		Coordinates:    d.Coordinates.toDomain(),
		CreatedBy:      hexOrEmpty(d.CreatedBy),
		CreatedAt:      d.CreatedAt.UTC(),
		UpdatedAt:      d.UpdatedAt.UTC(),
	}
	if d.DzongkhagDoc != nil {
		g.Dzongkhag = d.DzongkhagDoc.toDomain()
	}
	return g
}

// populateDzongkhag joins the parent dzongkhag into dzongkhagDoc.
func populateDzongkhag() mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: collectionDzongkhags},
			{Key: "localField", Value: "dzongkhag"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "dzongkhagDoc"},
		}}},
		{{Key: "$unwind", Value: bson.D{
			{Key: "path", Value: "$dzongkhagDoc"},
			{Key: "preserveNullAndEmptyArrays", Value: true},
		}}},
	}
}

func (r *GewogRepository) Create(ctx context.Context, g *domain.Gewog) (*domain.Gewog, error) {
	dz, ok := objectID(g.DzongkhagID)
	if !ok {
		return nil, domain.Invalid("dzongkhag %s does not exist", g.DzongkhagID)
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	createdBy, _ := objectID(g.CreatedBy)
	doc := gewogDoc{
		Name:           g.Name,
		NameInDzongkha: g.NameInDzongkha,
		Dzongkhag:      dz,
		Area:           g.Area,
		Population:     g.Population,
		Coordinates:    coordinatesToDoc(g.Coordinates),
		CreatedBy:      createdBy,
		CreatedAt:      g.CreatedAt,
		UpdatedAt:      g.UpdatedAt,
	}

	res, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("insert gewog: %w", err)
	}
	return r.FindByID(ctx, res.InsertedID.(primitive.ObjectID).Hex())
}

func (r *GewogRepository) FindByID(ctx context.Context, id string) (*domain.Gewog, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, domain.ErrGewogNotFound
	}
	gewogs, err := r.aggregate(ctx, bson.M{"_id": oid})
	if err != nil {
		return nil, err
	}
	if len(gewogs) == 0 {
		return nil, domain.ErrGewogNotFound
	}
	return gewogs[0], nil
}

func (r *GewogRepository) FindAll(ctx context.Context, dzongkhagID string) ([]*domain.Gewog, error) {
	match := bson.M{}
	if dzongkhagID != "" {
		oid, ok := objectID(dzongkhagID)
		if !ok {
			return []*domain.Gewog{}, nil
		}
		match["dzongkhag"] = oid
	}
	return r.aggregate(ctx, match)
}

func (r *GewogRepository) UpdateByID(ctx context.Context, id string, p domain.GewogPatch) (*domain.Gewog, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, domain.ErrGewogNotFound
	}

	set := setter{"updatedAt": time.Now().UTC()}
	set.str("name", p.Name)
	set.str("nameInDzongkha", p.NameInDzongkha)
	setIf(set, "area", p.Area)
	setIf(set, "population", p.Population)
	if p.DzongkhagID != nil {
		dz, ok := objectID(*p.DzongkhagID)
		if !ok {
			return nil, domain.Invalid("dzongkhag %s does not exist", *p.DzongkhagID)
		}
		set["dzongkhag"] = dz
	}
	if p.Coordinates != nil {
		set["coordinates"] = coordinatesToDoc(p.Coordinates)
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": oid}, set.update())
	if err != nil {
		return nil, fmt.Errorf("update gewog: %w", err)
	}
	if res.MatchedCount == 0 {
		return nil, domain.ErrGewogNotFound
	}
	return r.FindByID(ctx, id)
}

func (r *GewogRepository) DeleteByID(ctx context.Context, id string) error {
	oid, ok := objectID(id)
	if !ok {
		return domain.ErrGewogNotFound
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete gewog: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrGewogNotFound
	}
	return nil
}

func (r *GewogRepository) CountByDzongkhag(ctx context.Context, dzongkhagID string) (int64, error) {
	oid, ok := objectID(dzongkhagID)
	if !ok {
		return 0, nil
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	n, err := r.col.CountDocuments(ctx, bson.M{"dzongkhag": oid})
	if err != nil {
		return 0, fmt.Errorf("count gewogs: %w", err)
	}
	return n, nil
}

func (r *GewogRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "dzongkhag", Value: 1}, {Key: "name", Value: 1}},
		Options: options.Index().SetName("dzongkhag_name"),
	})
	return err
}

func (r *GewogRepository) aggregate(ctx context.Context, match bson.M) ([]*domain.Gewog, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	pipeline := append(mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$sort", Value: bson.D{{Key: "name", Value: 1}}}},
	}, populateDzongkhag()...)

	cur, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate gewogs: %w", err)
	}
	var docs []gewogDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode gewogs: %w", err)
	}

	out := make([]*domain.Gewog, 0, len(docs))
	for i := range docs {
		out = append(out, docs[i].toDomain())
	}
	return out, nil
}
