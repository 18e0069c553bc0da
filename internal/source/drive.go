package source

import (
	"context"
	"fmt"

	"github.com/garagehq/servicebot/internal/recall"
	"github.com/garagehq/servicebot/pkg/drive"
)

// Drive is a recall source backed by one Google Drive folder.
type Drive struct {
	client   drive.Client
	folderID string
}

// NewDrive creates a recall source over a Drive folder.
func NewDrive(client drive.Client, folderID string) *Drive {
	return &Drive{
		client:   client,
		folderID: folderID,
	}
}

// Name identifies the source in logs and errors.
func (d *Drive) Name() string {
	return fmt.Sprintf("drive:%s", d.folderID)
}

// ListFiles returns the raw folder listing.
func (d *Drive) ListFiles(ctx context.Context) ([]recall.File, error) {
	files, err := d.client.ListFolder(ctx, d.folderID)
	if err != nil {
		return nil, err
	}

	out := make([]recall.File, len(files))
	for i, f := range files {
		out[i] = recall.File{
			ID:       f.ID,
			Name:     f.Name,
			MimeType: f.MimeType,
		}
	}
	return out, nil
}
