package services

import (
	"context"
	"fmt"
	"mime/multipart"
	"net/url"
	"os"
	"path"
	"time"

	"velora_back_end/internal/database"

	"github.com/minio/minio-go/v7"
)

// UploadProductImage pousse une image produit dans le bucket MinIO et
// retourne l'URL publique de l'objet
func UploadProductImage(ctx context.Context, productID int64, file *multipart.FileHeader) (string, error) {
	if database.MinIO == nil {
		return "", fmt.Errorf("MinIO non initialisé")
	}

	f, err := file.Open()
	if err != nil {
		return "", err
	}
	defer f.Close()

	bucket := os.Getenv("MINIO_BUCKET")
	object := fmt.Sprintf("products/%d/%s", productID, path.Base(file.Filename))

	_, err = database.MinIO.PutObject(ctx, bucket, object, f, file.Size,
		minio.PutObjectOptions{ContentType: file.Header.Get("Content-Type")})
	if err != nil {
		return "", err
	}

	imageURL := fmt.Sprintf("http://%s/%s/%s", os.Getenv("MINIO_ENDPOINT"), bucket, object)
	return imageURL, nil
}

// PresignedImageURL génère une URL signée temporaire (1h) pour un objet image
func PresignedImageURL(ctx context.Context, object string) (string, error) {
	if database.MinIO == nil {
		return "", fmt.Errorf("MinIO non initialisé")
	}

	bucket := os.Getenv("MINIO_BUCKET")

	presigned, err := database.MinIO.PresignedGetObject(ctx, bucket, object, time.Hour, url.Values{})
	if err != nil {
		return "", err
	}

	return presigned.String(), nil
}
