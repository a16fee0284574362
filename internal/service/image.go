package service

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"

	"github.com/gabriel-vasile/mimetype"
)

// ImageUpload is a file picked in a form.
type ImageUpload struct {
	FileName string
	File     io.ReadSeeker
	Size     int64
}

// ValidateImage checks the size limit and that the content is a supported
// image. It returns the detected content type and leaves file rewound.
func ValidateImage(file io.ReadSeeker, size, limit int64) (string, error) {
	if size > limit {
		return "", fileTooLarge(limit)
	}
	if size <= 0 {
		return "", errFileEmpty
	}

	mtype, err := mimetype.DetectReader(file)
	if err != nil {
		return "", fmt.Errorf("ошибка чтения файла: %w", err)
	}
	if err := rewind(file); err != nil {
		return "", err
	}

	switch {
	case mtype.Is("image/jpeg"), mtype.Is("image/png"), mtype.Is("image/gif"):
		if _, _, err := image.DecodeConfig(file); err != nil {
			return "", errFileNotImage
		}
		if err := rewind(file); err != nil {
			return "", err
		}
	case mtype.Is("image/webp"):
	default:
		return "", errFileNotImage
	}

	return mtype.String(), nil
}

func rewind(file io.Seeker) error {
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("ошибка чтения файла: %w", err)
	}
	return nil
}
