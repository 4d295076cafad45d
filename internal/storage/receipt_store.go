package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"restopos/internal/models"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/shopspring/decimal"
)

// Receipt is the archived record of a completed order
type Receipt struct {
	OrderID          uuid.UUID             `json:"order_id"`
	OrderNumber      string                `json:"order_number"`
	OrderDate        time.Time             `json:"order_date"`
	TableID          *uuid.UUID            `json:"table_id,omitempty"`
	Lines            []ReceiptLine         `json:"lines"`
	TotalAmount      decimal.Decimal       `json:"total_amount"`
	PaymentMethod    *models.PaymentMethod `json:"payment_method,omitempty"`
	PaymentReference *string               `json:"payment_reference,omitempty"`
	CompletedBy      uuid.UUID             `json:"completed_by"`
	CompletedAt      time.Time             `json:"completed_at"`
}

type ReceiptLine struct {
	ProductID uuid.UUID       `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// NewReceipt snapshots order for the archive
func NewReceipt(order *models.Order, actorID uuid.UUID) *Receipt {
	lines := make([]ReceiptLine, 0, len(order.Items))
	for _, item := range order.Items {
		lines = append(lines, ReceiptLine{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			Subtotal:  item.Subtotal,
		})
	}
	return &Receipt{
		OrderID:          order.ID,
		OrderNumber:      order.OrderNumber,
		OrderDate:        order.OrderDate,
		TableID:          order.TableID,
		Lines:            lines,
		TotalAmount:      order.TotalAmount,
		PaymentMethod:    order.PaymentMethod,
		PaymentReference: order.PaymentReference,
		CompletedBy:      actorID,
		CompletedAt:      order.UpdatedAt,
	}
}

// ReceiptObjectName places receipts under tenant and order day prefixes
func ReceiptObjectName(tenantID uuid.UUID, r *Receipt) string {
	return fmt.Sprintf("%s/%s/%s.json", tenantID.String(), r.OrderDate.UTC().Format("2006/01/02"), r.OrderNumber)
}

type ReceiptStore interface {
	Archive(ctx context.Context, tenantID uuid.UUID, receipt *Receipt) (string, error)
	PresignedURL(ctx context.Context, objectName string, expiry time.Duration) (string, error)
	EnsureBucketExists(ctx context.Context) error
	Ping(ctx context.Context) error
}

type minioReceiptStore struct {
	client *minio.Client
	bucket string
}

func NewMinioReceiptStore(endpoint, accessKey, secretKey string, useSSL bool, bucket string) (ReceiptStore, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, err
	}
	return &minioReceiptStore{client: client, bucket: bucket}, nil
}

// Archive uploads receipt as JSON and returns its object name
func (m *minioReceiptStore) Archive(ctx context.Context, tenantID uuid.UUID, receipt *Receipt) (string, error) {
	body, err := json.Marshal(receipt)
	if err != nil {
		return "", fmt.Errorf("failed to marshal receipt: %w", err)
	}

	objectName := ReceiptObjectName(tenantID, receipt)
	_, err = m.client.PutObject(ctx, m.bucket, objectName, bytes.NewReader(body), int64(len(body)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload receipt %s: %w", objectName, err)
	}
	return objectName, nil
}

func (m *minioReceiptStore) PresignedURL(ctx context.Context, objectName string, expiry time.Duration) (string, error) {
	url, err := m.client.PresignedGetObject(ctx, m.bucket, objectName, expiry, nil)
	if err != nil {
		return "", err
	}
	return url.String(), nil
}

func (m *minioReceiptStore) EnsureBucketExists(ctx context.Context) error {
	found, err := m.client.BucketExists(ctx, m.bucket)
	if err != nil {
		return err
	}
	if !found {
		return m.client.MakeBucket(ctx, m.bucket, minio.MakeBucketOptions{})
	}
	return nil
}

func (m *minioReceiptStore) Ping(ctx context.Context) error {
	_, err := m.client.BucketExists(ctx, m.bucket)
	return err
}
