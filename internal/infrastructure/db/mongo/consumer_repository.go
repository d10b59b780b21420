package mongo

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/druk-utility/consumer-registry/internal/core/domain"
	"github.com/druk-utility/consumer-registry/internal/core/ports"
)

const collectionConsumers = "consumers"

type ConsumerRepository struct {
	col *mongo.Collection
}

func NewConsumerRepository(db *mongo.Database) *ConsumerRepository {
	return &ConsumerRepository{col: db.Collection(collectionConsumers)}
}

var _ ports.ConsumerRepository = (*ConsumerRepository)(nil)

type addressDoc struct {
	Gewog       primitive.ObjectID `bson:"gewog"`
	Village     string             `bson:"village"`
	HouseNumber string             `bson:"houseNumber"`
}

type consumerDoc struct {
	ID             primitive.ObjectID `bson:"_id,omitempty"`
	HouseholdID    string             `bson:"householdId"`
	HouseholdHead  primitive.ObjectID `bson:"householdHead"`
	Address        addressDoc         `bson:"address"`
	FamilySize     int                `bson:"familySize"`
	ConnectionType string             `bson:"connectionType"`
	MeterNumber    string             `bson:"meterNumber"`
	ConnectionDate time.Time          `bson:"connectionDate"`
	Status         string             `bson:"status"`
	TariffCategory string             `bson:"tariffCategory"`
	CreatedAt      time.Time          `bson:"createdAt"`
	UpdatedAt      time.Time          `bson:"updatedAt"`

	// Populated by $lookup; never written.
	HeadDoc  *userDoc  `bson:"headDoc,omitempty"`
	GewogDoc *gewogDoc `bson:"gewogDoc,omitempty"`
}

func (d *consumerDoc) toDomain() *domain.Consumer {
	c := &domain.Consumer{
		ID:              d.ID.Hex(),
		HouseholdID:     d.HouseholdID,
		HouseholdHeadID: hexOrEmpty(d.HouseholdHead),
		Address: domain.ConsumerAddress{
			GewogID:     hexOrEmpty(d.Address.Gewog),
			Village:     d.Address.Village,
			HouseNumber: d.Address.HouseNumber,
		},
		FamilySize:     d.FamilySize,
		ConnectionType: domain.ConnectionType(d.ConnectionType),
		MeterNumber:    d.MeterNumber,
		ConnectionDate: d.ConnectionDate.UTC(),
		Status:         domain.ConsumerStatus(d.Status),
		TariffCategory: domain.TariffCategory(d.TariffCategory),
		CreatedAt:      d.CreatedAt.UTC(),
		UpdatedAt:      d.UpdatedAt.UTC(),
	}
	if d.HeadDoc != nil {
		c.HouseholdHead = &domain.HouseholdHead{
			ID:    d.HeadDoc.ID.Hex(),
			Name:  d.HeadDoc.Name,
			CID:   d.HeadDoc.CID,
			Phone: d.HeadDoc.Phone,
		}
	}
	if d.GewogDoc != nil {
		c.Address.Gewog = &domain.GewogRef{
			ID:             d.GewogDoc.ID.Hex(),
			Name:           d.GewogDoc.Name,
			NameInDzongkha: d.GewogDoc.NameInDzongkha,
		}
	}
	return c
}

// populateHead joins the household head, keeping only name, cid and phone.
func populateHead() mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: collectionUsers},
			{Key: "localField", Value: "householdHead"},
			{Key: "foreignField", Value: "_id"},
			{Key: "pipeline", Value: bson.A{
				bson.D{{Key: "$project", Value: bson.D{
					{Key: "name", Value: 1},
					{Key: "cid", Value: 1},
					{Key: "phone", Value: 1},
				}}},
			}},
			{Key: "as", Value: "headDoc"},
		}}},
		{{Key: "$unwind", Value: bson.D{
			{Key: "path", Value: "$headDoc"},
			{Key: "preserveNullAndEmptyArrays", Value: true},
		}}},
	}
}

// populateGewog joins the gewog name fields.
func populateGewog() mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: collectionGewogs},
			{Key: "localField", Value: "address.gewog"},
			{Key: "foreignField", Value: "_id"},
			{Key: "pipeline", Value: bson.A{
				bson.D{{Key: "$project", Value: bson.D{
					{Key: "name", Value: 1},
					{Key: "nameInDzongkha", Value: 1},
				}}},
			}},
			{Key: "as", Value: "gewogDoc"},
		}}},
		{{Key: "$unwind", Value: bson.D{
			{Key: "path", Value: "$gewogDoc"},
			{Key: "preserveNullAndEmptyArrays", Value: true},
		}}},
	}
}

func (r *ConsumerRepository) Create(ctx context.Context, c *domain.Consumer) (*domain.Consumer, error) {
	head, ok := objectID(c.HouseholdHeadID)
	if !ok {
		return nil, domain.Invalid("householdHead %s does not exist", c.HouseholdHeadID)
	}
	gewog, ok := objectID(c.Address.GewogID)
	if !ok {
		return nil, domain.Invalid("gewog %s does not exist", c.Address.GewogID)
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := consumerDoc{
		HouseholdID:   c.HouseholdID,
		HouseholdHead: head,
		Address: addressDoc{
			Gewog:       gewog,
			Village:     c.Address.Village,
			HouseNumber: c.Address.HouseNumber,
		},
		FamilySize:     c.FamilySize,
		ConnectionType: string(c.ConnectionType),
		MeterNumber:    c.MeterNumber,
		ConnectionDate: c.ConnectionDate.UTC(),
		Status:         string(c.Status),
		TariffCategory: string(c.TariffCategory),
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
	}

	res, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("insert consumer: %w", err)
	}
	return r.FindByID(ctx, res.InsertedID.(primitive.ObjectID).Hex())
}

func (r *ConsumerRepository) FindByID(ctx context.Context, id string) (*domain.Consumer, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, domain.ErrConsumerNotFound
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	pipeline := mongo.Pipeline{{{Key: "$match", Value: bson.M{"_id": oid}}}}
	pipeline = append(pipeline, populateHead()...)
	pipeline = append(pipeline, populateGewog()...)

	cur, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate consumer: %w", err)
	}
	var docs []consumerDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode consumer: %w", err)
	}
	if len(docs) == 0 {
		return nil, domain.ErrConsumerNotFound
	}
	return docs[0].toDomain(), nil
}

// List runs one aggregation: filter, join the household head so search can
// match its name or cid, then $facet into the page and the total count.
func (r *ConsumerRepository) List(ctx context.Context, f ports.ConsumerFilter) ([]*domain.Consumer, int64, error) {
	match := bson.M{}
	if f.GewogID != "" {
		oid, ok := objectID(f.GewogID)
		if !ok {
			return []*domain.Consumer{}, 0, nil
		}
		match["address.gewog"] = oid
	}
	if f.Status != "" {
		match["status"] = f.Status
	}
	if f.TariffCategory != "" {
		match["tariffCategory"] = f.TariffCategory
	}

	pipeline := mongo.Pipeline{{{Key: "$match", Value: match}}}
	pipeline = append(pipeline, populateHead()...)
	if f.Search != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(f.Search), Options: "i"}
		pipeline = append(pipeline, bson.D{{Key: "$match", Value: bson.M{"$or": bson.A{
			bson.M{"headDoc.name": pattern},
			bson.M{"headDoc.cid": pattern},
		}}}})
	}

	dir := -1
	if f.Ascending {
		dir = 1
	}
	page := mongo.Pipeline{
		{{Key: "$sort", Value: bson.D{{Key: f.SortBy, Value: dir}, {Key: "_id", Value: dir}}}},
		{{Key: "$skip", Value: int64(f.Page-1) * int64(f.Limit)}},
		{{Key: "$limit", Value: int64(f.Limit)}},
	}
	page = append(page, populateGewog()...)

	pipeline = append(pipeline, bson.D{{Key: "$facet", Value: bson.D{
		{Key: "items", Value: page},
		{Key: "total", Value: bson.A{bson.D{{Key: "$count", Value: "n"}}}},
	}}})

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, 0, fmt.Errorf("aggregate consumers: %w", err)
	}
	var facets []struct {
		Items []consumerDoc `bson:"items"`
		Total []struct {
			N int64 `bson:"n"`
		} `bson:"total"`
	}
	if err := cur.All(ctx, &facets); err != nil {
		return nil, 0, fmt.Errorf("decode consumers: %w", err)
	}

	out := []*domain.Consumer{}
	var total int64
	if len(facets) > 0 {
		for i := range facets[0].Items {
			out = append(out, facets[0].Items[i].toDomain())
		}
		if len(facets[0].Total) > 0 {
			total = facets[0].Total[0].N
		}
	}
	return out, total, nil
}

func (r *ConsumerRepository) UpdateByID(ctx context.Context, id string, p domain.ConsumerPatch) (*domain.Consumer, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, domain.ErrConsumerNotFound
	}

	set := setter{"updatedAt": time.Now().UTC()}
	set.str("householdId", p.HouseholdID)
	set.str("address.village", p.Village)
	set.str("address.houseNumber", p.HouseNumber)
	set.str("meterNumber", p.MeterNumber)
	setIf(set, "familySize", p.FamilySize)
	if p.HouseholdHeadID != nil {
		head, ok := objectID(*p.HouseholdHeadID)
		if !ok {
			return nil, domain.Invalid("householdHead %s does not exist", *p.HouseholdHeadID)
		}
		set["householdHead"] = head
	}
	if p.GewogID != nil {
		gewog, ok := objectID(*p.GewogID)
		if !ok {
			return nil, domain.Invalid("gewog %s does not exist", *p.GewogID)
		}
		set["address.gewog"] = gewog
	}
	if p.ConnectionType != nil {
		set["connectionType"] = string(*p.ConnectionType)
	}
	if p.ConnectionDate != nil {
		set["connectionDate"] = p.ConnectionDate.UTC()
	}
	if p.Status != nil {
		set["status"] = string(*p.Status)
	}
	if p.TariffCategory != nil {
		set["tariffCategory"] = string(*p.TariffCategory)
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": oid}, set.update())
	if err != nil {
		return nil, fmt.Errorf("update consumer: %w", err)
	}
	if res.MatchedCount == 0 {
		return nil, domain.ErrConsumerNotFound
	}
	return r.FindByID(ctx, id)
}

func (r *ConsumerRepository) DeleteByID(ctx context.Context, id string) error {
	oid, ok := objectID(id)
	if !ok {
		return domain.ErrConsumerNotFound
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete consumer: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrConsumerNotFound
	}
	return nil
}

func (r *ConsumerRepository) CountByGewog(ctx context.Context, gewogID string) (int64, error) {
	oid, ok := objectID(gewogID)
	if !ok {
		return 0, nil
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	n, err := r.col.CountDocuments(ctx, bson.M{"address.gewog": oid})
	if err != nil {
		return 0, fmt.Errorf("count consumers: %w", err)
	}
	return n, nil
}

// EnsureIndexes covers the list filters and the default sort.
func (r *ConsumerRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "address.gewog", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "tariffCategory", Value: 1}}},
		{Keys: bson.D{{Key: "householdHead", Value: 1}}},
	}
	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
