package repo

import (
	"context"
	"fmt"
	"io"
	"net/http"
)

// maxImageBytes caps downloads at Telegram's bot file size limit.
const maxImageBytes = 20 << 20

// FileLinker resolves a Telegram file id to its download link.
type FileLinker interface {
	FileLink(ctx context.Context, fileID string) (string, error)
}

// ImageService downloads photos users send to the bot so they can be handed to
// the vision extractor.
type ImageService struct {
	links  FileLinker
	client *http.Client
}

func NewImageService(links FileLinker) *ImageService {
	return &ImageService{
		links:  links,
		client: http.DefaultClient,
	}
}

// Download returns the bytes of the file behind fileID.
func (s *ImageService) Download(ctx context.Context, fileID string) ([]byte, error) {
	link, err := s.links.FileLink(ctx, fileID)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return nil, fmt.Errorf("error building download request: %w", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error downloading file: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("error downloading file: unexpected status %d", resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxImageBytes))
}
