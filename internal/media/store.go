package media

import (
	"context"
	"fmt"
	"image"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/orgball2608/insta-archive/pkg/config"
	"github.com/orgball2608/insta-archive/pkg/errors"
	"github.com/orgball2608/insta-archive/pkg/logger"
)

var ErrInvalidName = errors.Mark("invalid media name", errors.ErrInvalidInput)

// Saved holds the media fields of an archived story. Paths are relative to the media root
// and always use forward slashes.
type Saved struct {
	Media       string
	Thumbnail   string
	BlurDataURL string
	MimeType    string
}

type Store interface {
	SaveStory(ctx context.Context, username, storyID, url string) (*Saved, error)
	Remove(paths ...string) error
	Root() string
}

type FileStore struct {
	root           string
	thumbnailWidth int
	fetcher        Fetcher
	logger         logger.Logger
}

func NewFileStore(cfg *config.Config, fetcher Fetcher, logger logger.Logger) *FileStore {
	return &FileStore{
		root:           cfg.Media.Dir,
		thumbnailWidth: cfg.Media.ThumbnailWidth,
		fetcher:        fetcher,
		logger:         logger.WithComponent("MediaStore"),
	}
}

var _ Store = (*FileStore)(nil)

func (s *FileStore) Root() string {
	return s.root
}

// SaveStory downloads url to stories/<username>/<storyID>.<ext>. Images also get a
// thumbnail and a blur placeholder; videos get neither.
func (s *FileStore) SaveStory(ctx context.Context, username, storyID, url string) (*Saved, error) {
	if !safeName(username) || !safeName(storyID) {
		return nil, ErrInvalidName
	}

	data, err := s.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to download story %s: %w", storyID, err)
	}

	mt := mimetype.Detect(data)
	dir := path.Join("stories", username)
	saved := &Saved{
		Media:    path.Join(dir, storyID+mt.Extension()),
		MimeType: mt.String(),
	}

	if err := s.write(saved.Media, data); err != nil {
		return nil, err
	}

	if !strings.HasPrefix(mt.String(), "image/") {
		s.logger.Debug("Stored story media", "story_id", storyID, "mime", mt.String())
		return saved, nil
	}

	img, err := decodeImage(data)
	if err != nil {
		s.logger.Warn("Story image could not be decoded, skipping previews", "story_id", storyID, "error", err)
		return saved, nil
	}

	if err := s.renderPreviews(saved, dir, storyID, img); err != nil {
		if rmErr := s.Remove(saved.Media, saved.Thumbnail); rmErr != nil {
			s.logger.Warn("Failed to clean up story media", "story_id", storyID, "error", rmErr)
		}
		return nil, err
	}

	s.logger.Debug("Stored story media", "story_id", storyID, "mime", mt.String(), "thumbnail", saved.Thumbnail)
	return saved, nil
}

// renderPreviews writes the thumbnail and fills the blur placeholder. saved.Thumbnail is only
// set once the file exists.
func (s *FileStore) renderPreviews(saved *Saved, dir, storyID string, img image.Image) error {
	thumb, err := Thumbnail(img, s.thumbnailWidth)
	if err != nil {
		return fmt.Errorf("failed to render thumbnail: %w", err)
	}
	thumbPath := path.Join(dir, storyID+"_thumbnail.jpg")
	if err := s.write(thumbPath, thumb); err != nil {
		return err
	}
	saved.Thumbnail = thumbPath

	saved.BlurDataURL, err = BlurDataURL(img)
	if err != nil {
		return fmt.Errorf("failed to render blur placeholder: %w", err)
	}
	return nil
}

// Remove deletes media files; empty and already missing paths are ignored.
func (s *FileStore) Remove(paths ...string) error {
	for _, p := range paths {
		if p == "" {
			continue
		}
		full, err := s.abs(p)
		if err != nil {
			return err
		}
		if err := os.Remove(full); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove %s: %w", p, err)
		}
	}
	return nil
}

func (s *FileStore) write(rel string, data []byte) error {
	full, err := s.abs(rel)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return fmt.Errorf("failed to create media directory: %w", err)
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", rel, err)
	}
	return nil
}

func (s *FileStore) abs(rel string) (string, error) {
	clean := path.Clean("/" + rel)
	if clean == "/" {
		return "", ErrInvalidName
	}
	return filepath.Join(s.root, filepath.FromSlash(clean)), nil
}

func safeName(name string) bool {
	return name != "" && name != "." && name != ".." && !strings.ContainsAny(name, `/\`)
}
