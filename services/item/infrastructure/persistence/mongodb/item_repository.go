package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/ghuser/inventory/pkg/database"
	itemdomain "github.com/ghuser/inventory/services/item/domain"
	"github.com/ghuser/inventory/services/item/domain/models"
)

// CollectionName is the MongoDB collection holding item documents.
const CollectionName = "items"

const tracerName = "github.com/ghuser/inventory/services/item/infrastructure/persistence/mongodb"

// itemDocument is the persisted shape of an Item. The id is stored as its
// canonical string so documents stay readable from the mongo shell.
type itemDocument struct {
	ID          string               `bson:"_id"`
	Name        string               `bson:"name"`
	Description string               `bson:"description"`
	Price       primitive.Decimal128 `bson:"price"`
	CreatedDate time.Time            `bson:"created_date"`
}

// ItemRepository implements repositories.ItemRepository against MongoDB.
type ItemRepository struct {
	coll   *mongo.Collection
	tracer trace.Tracer
}

// NewItemRepository returns an ItemRepository using the items collection of db.
func NewItemRepository(db *database.Database) *ItemRepository {
	return &ItemRepository{
		coll:   db.Collection(CollectionName),
		tracer: otel.Tracer(tracerName),
	}
}

// GetByID retrieves an Item by ID. Returns ErrItemNotFound if not found.
func (r *ItemRepository) GetByID(ctx context.Context, id uuid.UUID) (item *models.Item, err error) {
	ctx, span := r.startSpan(ctx, "findOne")
	defer func() { endSpan(span, err) }()

	var doc itemDocument
	if err := r.coll.FindOne(ctx, bson.D{{Key: "_id", Value: id.String()}}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, itemdomain.ErrItemNotFound
		}
		return nil, fmt.Errorf("find item: %w", err)
	}
	return fromDocument(doc)
}

// List retrieves every item in the collection in natural order.
func (r *ItemRepository) List(ctx context.Context) (items []*models.Item, err error) {
	ctx, span := r.startSpan(ctx, "find")
	defer func() { endSpan(span, err) }()

	cur, err := r.coll.Find(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("find items: %w", err)
	}
	var docs []itemDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode items: %w", err)
	}

	items = make([]*models.Item, 0, len(docs))
	for _, doc := range docs {
		item, err := fromDocument(doc)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	span.SetAttributes(attribute.Int("db.response.returned_rows", len(items)))
	return items, nil
}

// Create inserts a new Item. Returns ErrItemAlreadyExists on duplicate id.
func (r *ItemRepository) Create(ctx context.Context, item *models.Item) (err error) {
	ctx, span := r.startSpan(ctx, "insertOne")
	defer func() { endSpan(span, err) }()

	doc, err := toDocument(item)
	if err != nil {
		return err
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return itemdomain.ErrItemAlreadyExists
		}
		return fmt.Errorf("insert item: %w", err)
	}
	return nil
}

// Update replaces the document matching item.ID. Returns ErrItemNotFound when
// nothing matched.
func (r *ItemRepository) Update(ctx context.Context, item *models.Item) (err error) {
	ctx, span := r.startSpan(ctx, "replaceOne")
	defer func() { endSpan(span, err) }()

	doc, err := toDocument(item)
	if err != nil {
		return err
	}
	res, err := r.coll.ReplaceOne(ctx, bson.D{{Key: "_id", Value: doc.ID}}, doc)
	if err != nil {
		return fmt.Errorf("replace item: %w", err)
	}
	if res.MatchedCount == 0 {
		return itemdomain.ErrItemNotFound
	}
	return nil
}

// Delete removes the document with the given id. Missing ids are ignored.
func (r *ItemRepository) Delete(ctx context.Context, id uuid.UUID) (err error) {
	ctx, span := r.startSpan(ctx, "deleteOne")
	defer func() { endSpan(span, err) }()

	if _, err := r.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: id.String()}}); err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	return nil
}

func (r *ItemRepository) startSpan(ctx context.Context, op string) (context.Context, trace.Span) {
	return r.tracer.Start(ctx, "mongodb."+CollectionName+"."+op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("db.system", "mongodb"),
			attribute.String("db.collection.name", CollectionName),
			attribute.String("db.operation.name", op),
		),
	)
}

func endSpan(span trace.Span, err error) {
	if err != nil && !errors.Is(err, itemdomain.ErrItemNotFound) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// toDocument maps a domain Item to its BSON document.
func toDocument(item *models.Item) (itemDocument, error) {
	price, err := primitive.ParseDecimal128(item.Price.String())
	if err != nil {
		return itemDocument{}, fmt.Errorf("encode price %s: %w", item.Price, err)
	}
	return itemDocument{
		ID:          item.ID.String(),
		Name:        item.Name.String(),
		Description: item.Description,
		Price:       price,
		CreatedDate: item.CreatedDate.UTC(),
	}, nil
}

// fromDocument maps a BSON document back to a domain Item.
func fromDocument(doc itemDocument) (*models.Item, error) {
	id, err := uuid.Parse(doc.ID)
	if err != nil {
		return nil, fmt.Errorf("decode item id %q: %w", doc.ID, err)
	}
	amount, err := decimal.NewFromString(doc.Price.String())
	if err != nil {
		return nil, fmt.Errorf("decode price of item %s: %w", id, err)
	}
	return &models.Item{
		ID:          id,
		Name:        models.ItemName(doc.Name),
		Description: doc.Description,
		Price:       models.RestorePrice(amount),
		CreatedDate: doc.CreatedDate.UTC(),
	}, nil
}
