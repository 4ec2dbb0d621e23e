package receiptstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/agentbackplane/abp/contract"
)

// Mongo mirrors receipts into a MongoDB collection for queryable archival,
// adapted from the teacher's registry/store/mongo.Store: a thin wrapper
// around a *mongo.Collection using replace-with-upsert writes and
// _id-keyed lookups.
type Mongo struct {
	collection *mongo.Collection
}

// NewMongo returns a Mongo backend using the provided collection.
func NewMongo(collection *mongo.Collection) *Mongo {
	return &Mongo{collection: collection}
}

// receiptDocument is the MongoDB document representation of a Receipt: a few
// filterable top-level fields plus the full receipt preserved verbatim as
// JSON, so the document schema never drifts from contract.Receipt's own.
type receiptDocument struct {
	RunID       string    `bson:"_id"`
	WorkOrderID string    `bson:"work_order_id"`
	Backend     string    `bson:"backend"`
	Status      string    `bson:"status"`
	FinishedAt  time.Time `bson:"finished_at"`
	ReceiptJSON []byte    `bson:"receipt_json"`
}

func toDocument(r contract.Receipt) (receiptDocument, error) {
	raw, err := json.Marshal(r)
	if err != nil {
		return receiptDocument{}, fmt.Errorf("receiptstore: marshal receipt %s: %w", r.Meta.RunID, err)
	}
	return receiptDocument{
		RunID:       string(r.Meta.RunID),
		WorkOrderID: string(r.Meta.WorkOrderID),
		Backend:     r.Backend.ID,
		Status:      r.Outcome.Status,
		FinishedAt:  r.Meta.FinishedAt,
		ReceiptJSON: raw,
	}, nil
}

func fromDocument(doc receiptDocument) (contract.Receipt, error) {
	var r contract.Receipt
	if err := json.Unmarshal(doc.ReceiptJSON, &r); err != nil {
		return contract.Receipt{}, fmt.Errorf("receiptstore: decode receipt %s: %w", doc.RunID, err)
	}
	return r, nil
}

// Save upserts r into the collection, keyed by run id.
func (m *Mongo) Save(ctx context.Context, r contract.Receipt) error {
	doc, err := toDocument(r)
	if err != nil {
		return err
	}
	opts := options.Replace().SetUpsert(true)
	if _, err := m.collection.ReplaceOne(ctx, bson.M{"_id": doc.RunID}, doc, opts); err != nil {
		return fmt.Errorf("receiptstore: mongo save %s: %w", doc.RunID, err)
	}
	return nil
}

// Get retrieves a receipt by run id.
func (m *Mongo) Get(ctx context.Context, id contract.RunID) (contract.Receipt, error) {
	var doc receiptDocument
	err := m.collection.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return contract.Receipt{}, ErrNotFound
		}
		return contract.Receipt{}, fmt.Errorf("receiptstore: mongo get %s: %w", id, err)
	}
	return fromDocument(doc)
}

// List returns up to limit receipts sorted by finished_at descending. limit
// <= 0 means unbounded.
func (m *Mongo) List(ctx context.Context, limit int) ([]contract.Receipt, error) {
	findOpts := options.Find().SetSort(bson.D{{Key: "finished_at", Value: -1}})
	if limit > 0 {
		findOpts.SetLimit(int64(limit))
	}
	cursor, err := m.collection.Find(ctx, bson.M{}, findOpts)
	if err != nil {
		return nil, fmt.Errorf("receiptstore: mongo list: %w", err)
	}
	defer func() { _ = cursor.Close(ctx) }()

	var docs []receiptDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("receiptstore: mongo list decode: %w", err)
	}

	out := make([]contract.Receipt, 0, len(docs))
	for _, doc := range docs {
		r, err := fromDocument(doc)
		if err != nil {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}
