package services

import (
	"fmt"
	"strings"

	"github.com/minhkhoa23/npcnpm-final-sub001/models"
	"github.com/minhkhoa23/npcnpm-final-sub001/storage"
)

// --- Хелперы для заполнения публичных URL из ключей хранилища ---

func populateUserDetailsFunc(user *models.User, uploader storage.FileUploader) {
	if user == nil {
		return
	}
	user.PasswordHash = "" // Важно для безопасности
	if user.LogoKey != nil && *user.LogoKey != "" && uploader != nil {
		url := uploader.GetPublicURL(*user.LogoKey)
		if url != "" {
			user.LogoURL = &url
		}
	}
}

func populateTournamentLogoURLFunc(tournament *models.Tournament, uploader storage.FileUploader) {
	if tournament != nil && tournament.LogoKey != nil && *tournament.LogoKey != "" && uploader != nil {
		url := uploader.GetPublicURL(*tournament.LogoKey)
		if url != "" {
			tournament.LogoURL = &url
		}
	}
}

func populateNewsImageURLFunc(news *models.News, uploader storage.FileUploader) {
	if news != nil && news.ImageKey != nil && *news.ImageKey != "" && uploader != nil {
		url := uploader.GetPublicURL(*news.ImageKey)
		if url != "" {
			news.ImageURL = &url
		}
	}
}

func populateHighlightThumbnailURLFunc(h *models.Highlight, uploader storage.FileUploader) {
	if h != nil && h.ThumbnailKey != nil && *h.ThumbnailKey != "" && uploader != nil {
		url := uploader.GetPublicURL(*h.ThumbnailKey)
		if url != "" {
			h.ThumbnailURL = &url
		}
	}
}

func populateCompetitorListDetailsFunc(competitors []models.Competitor, uploader storage.FileUploader) {
	for i := range competitors {
		if competitors[i].User != nil {
			populateUserDetailsFunc(competitors[i].User, uploader)
		}
	}
}

// GetExtensionFromContentType подбирает расширение файла по Content-Type картинки.
func GetExtensionFromContentType(contentType string) (string, error) {
	switch contentType {
	case "image/jpeg", "image/jpg":
		return ".jpg", nil
	case "image/png":
		return ".png", nil
	case "image/gif":
		return ".gif", nil
	case "image/webp":
		return ".webp", nil
	default:
		parts := strings.Split(contentType, "/")
		if len(parts) == 2 && strings.HasPrefix(parts[0], "image") && parts[1] != "" {
			// Убираем возможные суффиксы типа "+xml" (например, "image/svg+xml")
			return "." + strings.Split(parts[1], "+")[0], nil
		}
		return "", fmt.Errorf("could not determine file extension from content type: '%s'", contentType)
	}
}
