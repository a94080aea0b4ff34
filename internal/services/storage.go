package services

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/deepanshu089/suprathon/internal/models"
)

// StorageService stages uploaded documents on local disk so file-based
// parsers can read them. Staged files live only for one item's extraction.
type StorageService interface {
	EnsureUploadDir() error
	Stage(file models.SourceFile) (string, func(), error)
	PurgeStaged() (int, error)
}

type storageService struct {
	uploadPath string
}

func NewStorageService(uploadPath string) StorageService {
	return &storageService{
		uploadPath: uploadPath,
	}
}

func (s *storageService) EnsureUploadDir() error {
	if err := os.MkdirAll(s.uploadPath, 0755); err != nil {
		return fmt.Errorf("failed to create upload directory: %w", err)
	}

	return nil
}

// Stage writes the file under a unique name and returns its path with a
// cleanup func that removes it. Cleanup is safe to call more than once.
func (s *storageService) Stage(file models.SourceFile) (string, func(), error) {
	if err := s.EnsureUploadDir(); err != nil {
		return "", nil, err
	}

	uniqueFilename := fmt.Sprintf("staged_%s%s", uuid.New().String(), stagedExtension(file))
	filePath := s.path(uniqueFilename)

	if err := os.WriteFile(filePath, file.Data, 0600); err != nil {
		_ = os.Remove(filePath)
		return "", nil, fmt.Errorf("failed to stage file: %w", err)
	}

	cleanup := func() {
		if err := os.Remove(filePath); err != nil && !os.IsNotExist(err) {
			log.Printf("⚠️ Failed to remove staged file %s: %v\n", filePath, err)
		}
	}
	return filePath, cleanup, nil
}

// PurgeStaged removes staged files left behind by an interrupted run.
func (s *storageService) PurgeStaged() (int, error) {
	matches, err := filepath.Glob(s.path("staged_*"))
	if err != nil {
		return 0, fmt.Errorf("failed to list staged files: %w", err)
	}

	removed := 0
	for _, m := range matches {
		if err := os.Remove(m); err != nil {
			return removed, fmt.Errorf("failed to delete file: %w", err)
		}
		removed++
	}
	return removed, nil
}

func (s *storageService) path(filename string) string {
	return filepath.Join(s.uploadPath, filename)
}

func stagedExtension(file models.SourceFile) string {
	switch file.MediaType {
	case models.MediaTypePDF:
		return ".pdf"
	case models.MediaTypeDOC:
		return ".doc"
	case models.MediaTypeDOCX:
		return ".docx"
	}
	return strings.ToLower(filepath.Ext(file.Name))
}
