package mongo

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/akilawedasinghe/symetrix/internal/core/domain"
	"github.com/akilawedasinghe/symetrix/internal/core/ports"
)

const collectionTickets = "tickets"

type TicketRepository struct {
	col *mongo.Collection
}

func NewTicketRepository(db *mongo.Database) *TicketRepository {
	return &TicketRepository{col: db.Collection(collectionTickets)}
}

// Create inserts a new ticket document. A taken id or idempotency key is
// reported as domain.ErrDuplicateTicket.
func (r *TicketRepository) Create(ctx context.Context, t *domain.Ticket) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.col.InsertOne(ctx, t); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrDuplicateTicket
		}
		return fmt.Errorf("insert ticket: %w", err)
	}
	return nil
}

// FindByID retrieves a ticket by id.
// When clientID is non-empty, an additional filter by client_id is applied.
func (r *TicketRepository) FindByID(ctx context.Context, id string, clientID string) (*domain.Ticket, error) {
	filter := bson.M{"_id": id}
	if clientID != "" {
		filter["client_id"] = clientID
	}
	return r.findOne(ctx, filter)
}

// FindByIdempotencyKey retrieves an existing ticket that was created with the given key.
func (r *TicketRepository) FindByIdempotencyKey(ctx context.Context, key string) (*domain.Ticket, error) {
	return r.findOne(ctx, bson.M{"idempotency_key": key})
}

func (r *TicketRepository) findOne(ctx context.Context, filter bson.M) (*domain.Ticket, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var t domain.Ticket
	err := r.col.FindOne(ctx, filter).Decode(&t)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrTicketNotFound
		}
		return nil, err
	}
	return &t, nil
}

// List returns a page of tickets matching f, newest first, and the total count.
func (r *TicketRepository) List(ctx context.Context, f ports.ListTicketsFilter) ([]*domain.Ticket, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := listFilter(f)
	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count tickets: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64((f.Page - 1) * f.Limit)).
		SetLimit(int64(f.Limit))

	cursor, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("find tickets: %w", err)
	}
	defer cursor.Close(ctx)

	items := make([]*domain.Ticket, 0, f.Limit)
	if err := cursor.All(ctx, &items); err != nil {
		return nil, 0, fmt.Errorf("decode tickets: %w", err)
	}
	return items, total, nil
}

func listFilter(f ports.ListTicketsFilter) bson.M {
	filter := bson.M{}
	if f.ClientID != "" {
		filter["client_id"] = f.ClientID
	}
	if f.SupportID != "" {
		filter["support_id"] = f.SupportID
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.Priority != "" {
		filter["priority"] = f.Priority
	}
	if f.ERPSystem != "" {
		filter["erp_system"] = f.ERPSystem
	}
	if f.Department != "" {
		filter["department"] = f.Department
	}
	if f.Search != "" {
		pattern := bson.M{"$regex": regexp.QuoteMeta(f.Search), "$options": "i"}
		filter["$or"] = bson.A{
			bson.M{"_id": pattern},
			bson.M{"title": pattern},
		}
	}
	return filter
}

// UpdateStatus atomically sets the ticket status and appends a history entry.
func (r *TicketRepository) UpdateStatus(ctx context.Context, id string, status domain.TicketStatus, ts time.Time, actorID string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	entry := domain.StatusHistoryEntry{Status: status, Timestamp: ts.UTC(), ActorID: actorID}
	update := bson.M{
		"$set":  bson.M{"status": status, "updated_at": ts.UTC()},
		"$push": bson.M{"status_history": entry},
	}
	return r.updateOne(ctx, id, update)
}

func (r *TicketRepository) Assign(ctx context.Context, id, supportID string, ts time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	return r.updateOne(ctx, id, bson.M{"$set": bson.M{"support_id": supportID, "updated_at": ts.UTC()}})
}

func (r *TicketRepository) updateOne(ctx context.Context, id string, update bson.M) error {
	res, err := r.col.UpdateByID(ctx, id, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrTicketNotFound
	}
	return nil
}

// CountByStatus groups tickets by status, optionally scoped to one client.
func (r *TicketRepository) CountByStatus(ctx context.Context, clientID string) (map[domain.TicketStatus]int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	match := bson.M{}
	if clientID != "" {
		match["client_id"] = clientID
	}
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$group", Value: bson.M{"_id": "$status", "count": bson.M{"$sum": 1}}}},
	}

	cursor, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("count by status: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Status domain.TicketStatus `bson:"_id"`
		Count  int64               `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("count by status: %w", err)
	}

	out := make(map[domain.TicketStatus]int64, len(rows))
	for _, row := range rows {
		out[row.Status] = row.Count
	}
	return out, nil
}

// EnsureIndexes creates necessary indexes on the tickets collection.
func (r *TicketRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "client_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "support_id", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}}},
		{
			Keys:    bson.D{{Key: "idempotency_key", Value: 1}},
			Options: options.Index().SetUnique(true).SetPartialFilterExpression(bson.M{"idempotency_key": bson.M{"$type": "string"}}),
		},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
