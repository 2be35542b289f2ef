package store

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/manifestlabs/manifest/pkg/util"
)

// MediaStore owns the on-disk media layout: a read-only uploads
// directory for source assets, a clips directory for extracted output,
// and a processed directory for thumbnails. All are created if absent.
type MediaStore struct {
	logger       zerolog.Logger
	UploadsDir   string
	ClipsDir     string
	ProcessedDir string
}

// NewMediaStore creates the directory layout
func NewMediaStore(logger zerolog.Logger, uploadsDir, clipsDir, processedDir string) (*MediaStore, error) {
	for _, dir := range []string{uploadsDir, clipsDir, processedDir} {
		if err := util.EnsureDir(dir); err != nil {
			return nil, fmt.Errorf("failed to create media directory %s: %w", dir, err)
		}
	}

	return &MediaStore{
		logger:       logger.With().Str("component", "media-store").Logger(),
		UploadsDir:   uploadsDir,
		ClipsDir:     clipsDir,
		ProcessedDir: processedDir,
	}, nil
}

// UploadPath resolves a filename inside the uploads directory
func (m *MediaStore) UploadPath(filename string) string {
	return filepath.Join(m.UploadsDir, filepath.Base(filename))
}

// Ingest copies an arbitrary input file into the uploads directory
// under a collision-free name and returns the stored filename
func (m *MediaStore) Ingest(src string) (string, error) {
	in, err := os.Open(src)
	if err != nil {
		return "", fmt.Errorf("failed to open input: %w", err)
	}
	defer in.Close()

	name := fmt.Sprintf("%s_%s", uuid.New().String()[:8], filepath.Base(src))
	dst := filepath.Join(m.UploadsDir, name)

	out, err := os.Create(dst)
	if err != nil {
		return "", fmt.Errorf("failed to create upload: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		util.CleanupFiles(dst)
		return "", fmt.Errorf("failed to copy upload: %w", err)
	}

	m.logger.Info().Str("source", src).Str("stored", name).Msg("ingested upload")
	return name, nil
}
