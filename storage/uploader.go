package storage

import (
	"context"
	"io"
)

// UploadResult описывает загруженный объект.
type UploadResult struct {
	Key      string
	Location string
	ETag     string
}

// FileUploader — хранилище медиафайлов (аватары, логотипы, обложки,
// превью хайлайтов). Ключи объектов назначает вызывающий сервис.
type FileUploader interface {
	// Upload пишет объект под заданным ключом, перезаписывая существующий.
	Upload(ctx context.Context, key string, contentType string, reader io.Reader) (*UploadResult, error)

	// Delete удаляет объект; отсутствие объекта не считается ошибкой.
	Delete(ctx context.Context, key string) error

	// GetPublicURL возвращает публичный URL объекта или пустую строку,
	// если публичный доступ не настроен.
	GetPublicURL(key string) string
}
