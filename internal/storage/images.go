package storage

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// PublicPrefix - путь, по которому загруженные изображения отдаются клиентам
const PublicPrefix = "/uploads/"

var (
	ErrNotDataURI     = errors.New("value is not an image data uri")
	ErrImageNotFound  = errors.New("image not found")
	ErrMalformedImage = errors.New("malformed image data uri")
)

// ImageStore хранит изображения инцидентов в каталоге загрузок
type ImageStore struct {
	dir string
}

// NewImageStore создает каталог загрузок, если его нет
func NewImageStore(dir string) (*ImageStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create uploads dir %s: %w", dir, err)
	}
	return &ImageStore{dir: dir}, nil
}

// IsDataURI - значение является встроенным изображением вида data:image/...
func IsDataURI(value string) bool {
	return strings.HasPrefix(value, "data:image/")
}

// SaveDataURI декодирует base64-содержимое data URI, сохраняет файл под случайным именем
// и возвращает публичный путь /uploads/<name>
func (s *ImageStore) SaveDataURI(dataURI string) (string, error) {
	if !IsDataURI(dataURI) {
		return "", ErrNotDataURI
	}
	header, payload, found := strings.Cut(dataURI, ",")
	if !found || payload == "" {
		return "", ErrMalformedImage
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		// встречаются клиенты, отправляющие base64 без padding
		data, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "="))
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrMalformedImage, err)
		}
	}

	ext := "jpg"
	if strings.Contains(header, "png") {
		ext = "png"
	}
	name := fmt.Sprintf("%s.%s", uuid.NewString(), ext)

	if err := os.WriteFile(filepath.Join(s.dir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write image %s: %w", name, err)
	}
	return PublicPrefix + name, nil
}

// Path возвращает путь к файлу в каталоге загрузок; имена с разделителями каталогов отклоняются
func (s *ImageStore) Path(filename string) (string, error) {
	if filename == "" || filename != filepath.Base(filename) || filename == "." || filename == ".." ||
		strings.ContainsAny(filename, `/\`) {
		return "", ErrImageNotFound
	}
	full := filepath.Join(s.dir, filename)
	info, err := os.Stat(full)
	if err != nil || info.IsDir() {
		return "", ErrImageNotFound
	}
	return full, nil
}
