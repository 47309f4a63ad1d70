package services

import (
	"context"
	"fmt"
	"mime/multipart"
	"net/url"
	"os"
	"path"
	"strings"
	"time"

	"velora_back_end/internal/database"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
)

// UploadImage pousse une image vers MinIO sous un préfixe (products/, pages/...)
// et retourne le chemin objet stocké en base.
func UploadImage(ctx context.Context, prefix string, file *multipart.FileHeader) (string, error) {
	if database.MinIO == nil {
		return "", fmt.Errorf("MinIO non initialisé")
	}

	f, err := file.Open()
	if err != nil {
		return "", err
	}
	defer f.Close()

	bucket := os.Getenv("MINIO_BUCKET")
	// Nom unique pour éviter l'écrasement entre uploads homonymes
	objectName := path.Join(prefix, uuid.NewString()+path.Ext(file.Filename))

	_, err = database.MinIO.PutObject(ctx, bucket, objectName, f, file.Size,
		minio.PutObjectOptions{ContentType: file.Header.Get("Content-Type")})
	if err != nil {
		return "", err
	}

	return objectName, nil
}

// GenerateSignedURL génère une URL signée avec expiration pour un objet
func GenerateSignedURL(ctx context.Context, objectPath string, duration time.Duration) (string, error) {
	if database.MinIO == nil {
		return "", fmt.Errorf("MinIO non initialisé")
	}

	bucket := os.Getenv("MINIO_BUCKET")
	reqParams := make(url.Values)

	// Tolère les anciennes valeurs stockées en URL complète
	key := objectPath
	if i := strings.Index(key, bucket+"/"); i >= 0 {
		key = key[i+len(bucket)+1:]
	}

	presignedURL, err := database.MinIO.PresignedGetObject(ctx, bucket, key, duration, reqParams)
	if err != nil {
		return "", err
	}

	return presignedURL.String(), nil
}
