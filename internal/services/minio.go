package services

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"makai_ordering/internal/database"

	"github.com/minio/minio-go/v7"
)

func receiptsBucket() string {
	bucket := os.Getenv("MINIO_RECEIPTS_BUCKET")
	if bucket == "" {
		bucket = "receipts"
	}
	return bucket
}

// ArchiveReceipt archive le reçu PDF d'une commande dans MinIO
func ArchiveReceipt(ctx context.Context, restaurantID, orderID string, pdf []byte) (string, error) {
	if database.MinIO == nil {
		return "", fmt.Errorf("MinIO non initialisé")
	}

	objectName := fmt.Sprintf("%s/%s.pdf", restaurantID, orderID)

	_, err := database.MinIO.PutObject(ctx, receiptsBucket(), objectName,
		bytes.NewReader(pdf), int64(len(pdf)),
		minio.PutObjectOptions{ContentType: "application/pdf"})
	if err != nil {
		return "", err
	}

	log.Printf("🧾 Reçu archivé: %s/%s", receiptsBucket(), objectName)
	return objectName, nil
}

// ReceiptSignedURL génère une URL de téléchargement temporaire pour un reçu
func ReceiptSignedURL(ctx context.Context, restaurantID, orderID string) (string, error) {
	if database.MinIO == nil {
		return "", fmt.Errorf("MinIO non initialisé")
	}

	objectName := fmt.Sprintf("%s/%s.pdf", restaurantID, orderID)

	u, err := database.MinIO.PresignedGetObject(ctx, receiptsBucket(), objectName,
		15*time.Minute, nil)
	if err != nil {
		return "", err
	}
	return u.String(), nil
}
