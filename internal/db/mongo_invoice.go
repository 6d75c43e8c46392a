package db

import (
	"context"

	"github.com/ukydev/fleet-maintenance/internal/maintenance"
	"github.com/ukydev/fleet-maintenance/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// InsertInvoice inserts an invoice.
func (s *MongoStore) InsertInvoice(ctx context.Context, inv *models.Invoice) error {
	if inv.ID.IsZero() {
		inv.ID = primitive.NewObjectID()
	}
	_, err := s.invoices.InsertOne(ctx, inv)
	return err
}

// FindInvoice finds an invoice with its items.
func (s *MongoStore) FindInvoice(ctx context.Context, tenantID string, id primitive.ObjectID) (*models.Invoice, error) {
	var inv models.Invoice
	if err := s.invoices.FindOne(ctx, scoped(tenantID, id)).Decode(&inv); err != nil {
		return nil, notFound(err)
	}
	return &inv, nil
}

// UpdateInvoiceStatus replaces the invoice if its status is still from. The
// status filter makes a second concurrent approval match nothing once the
// first has written, and inside a transaction the first writer holds the
// document until commit.
func (s *MongoStore) UpdateInvoiceStatus(ctx context.Context, inv *models.Invoice, from models.InvoiceStatus) error {
	filter := bson.M{"_id": inv.ID, "tenant_id": inv.TenantID, "status": from}
	result, err := s.invoices.ReplaceOne(ctx, filter, inv)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return maintenance.ErrConflict
	}
	return nil
}

// InsertPriceHistory appends price history rows.
func (s *MongoStore) InsertPriceHistory(ctx context.Context, rows []models.PartPriceHistory) error {
	if len(rows) == 0 {
		return nil
	}
	docs := make([]interface{}, 0, len(rows))
	for i := range rows {
		if rows[i].ID.IsZero() {
			rows[i].ID = primitive.NewObjectID()
		}
		docs = append(docs, rows[i])
	}
	_, err := s.priceHistory.InsertMany(ctx, docs)
	return err
}

// FindPriceHistory returns a part's price history, newest first.
func (s *MongoStore) FindPriceHistory(ctx context.Context, tenantID string, partID primitive.ObjectID) ([]models.PartPriceHistory, error) {
	opts := options.Find().SetSort(bson.D{{Key: "recorded_at", Value: -1}})
	cursor, err := s.priceHistory.Find(ctx, bson.M{"tenant_id": tenantID, "master_part_id": partID}, opts)
	if err != nil {
		return nil, err
	}
	rows := []models.PartPriceHistory{}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}
