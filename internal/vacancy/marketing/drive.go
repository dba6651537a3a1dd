// internal/vacancy/marketing/drive.go
package marketing

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

const (
	googleDocMimeType = "application/vnd.google-apps.document"
	mediaPageSize     = 25
)

// DriveMedia is one file in a unit's media folder.
type DriveMedia struct {
	FileID      string `json:"file_id"`
	Name        string `json:"name"`
	MimeType    string `json:"mime_type,omitempty"`
	WebViewLink string `json:"web_view_link,omitempty"`
}

// IsImage treats files with no reported mime type as images.
func (m DriveMedia) IsImage() bool {
	return m.MimeType == "" || strings.HasPrefix(m.MimeType, "image/")
}

// DriveGateway is the slice of Google Drive the listing publisher needs.
type DriveGateway interface {
	ListUnitMedia(ctx context.Context, folderID string) ([]DriveMedia, error)
	// CreateListingDocument uploads htmlBody as a Google Doc and returns its id.
	// An empty parentFolderID creates the document in the drive root.
	CreateListingDocument(ctx context.Context, title, htmlBody, parentFolderID string) (string, error)
}

// DriveError wraps a failed Drive call.
type DriveError struct {
	Op  string
	Err error
}

func (e *DriveError) Error() string {
	return fmt.Sprintf("drive operation failed: %s: %v", e.Op, e.Err)
}

func (e *DriveError) Unwrap() error { return e.Err }

// GoogleDriveClient talks to the Drive v3 API.
type GoogleDriveClient struct {
	files *drive.FilesService
}

// NewGoogleDriveClient builds a client from service options, typically
// option.WithCredentialsFile.
func NewGoogleDriveClient(ctx context.Context, opts ...option.ClientOption) (*GoogleDriveClient, error) {
	svc, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create drive service: %w", err)
	}
	return &GoogleDriveClient{files: svc.Files}, nil
}

func (c *GoogleDriveClient) ListUnitMedia(ctx context.Context, folderID string) ([]DriveMedia, error) {
	list, err := c.files.List().
		Q(fmt.Sprintf("'%s' in parents and trashed=false", strings.ReplaceAll(folderID, "'", `\'`))).
		Fields("files(id,name,mimeType,webViewLink)").
		PageSize(mediaPageSize).
		IncludeItemsFromAllDrives(true).
		SupportsAllDrives(true).
		Context(ctx).
		Do()
	if err != nil {
		return nil, &DriveError{Op: "list media", Err: err}
	}

	media := make([]DriveMedia, 0, len(list.Files))
	for _, f := range list.Files {
		name := f.Name
		if name == "" {
			name = "untitled"
		}
		media = append(media, DriveMedia{
			FileID:      f.Id,
			Name:        name,
			MimeType:    f.MimeType,
			WebViewLink: f.WebViewLink,
		})
	}
	return media, nil
}

func (c *GoogleDriveClient) CreateListingDocument(ctx context.Context, title, htmlBody, parentFolderID string) (string, error) {
	metadata := &drive.File{Name: title, MimeType: googleDocMimeType}
	if parentFolderID != "" {
		metadata.Parents = []string{parentFolderID}
	}

	file, err := c.files.Create(metadata).
		Media(strings.NewReader(htmlBody), googleapi.ContentType("text/html")).
		Fields("id").
		SupportsAllDrives(true).
		Context(ctx).
		Do()
	if err != nil {
		return "", &DriveError{Op: "create document", Err: err}
	}
	return file.Id, nil
}

// ListingDocument is a document stored by MemoryDrive.
type ListingDocument struct {
	ID       string
	Title    string
	HTML     string
	ParentID string
}

// MemoryDrive is an in-process DriveGateway keyed by folder id.
type MemoryDrive struct {
	mu      sync.Mutex
	media   map[string][]DriveMedia
	docs    []ListingDocument
	ListErr error
}

func NewMemoryDrive() *MemoryDrive {
	return &MemoryDrive{media: make(map[string][]DriveMedia)}
}

func (d *MemoryDrive) AddMedia(folderID string, media ...DriveMedia) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.media[folderID] = append(d.media[folderID], media...)
}

func (d *MemoryDrive) ListUnitMedia(_ context.Context, folderID string) ([]DriveMedia, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.ListErr != nil {
		return nil, &DriveError{Op: "list media", Err: d.ListErr}
	}
	return append([]DriveMedia(nil), d.media[folderID]...), nil
}

func (d *MemoryDrive) CreateListingDocument(_ context.Context, title, htmlBody, parentFolderID string) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	id := fmt.Sprintf("doc-%03d", len(d.docs)+1)
	d.docs = append(d.docs, ListingDocument{ID: id, Title: title, HTML: htmlBody, ParentID: parentFolderID})
	return id, nil
}

func (d *MemoryDrive) Documents() []ListingDocument {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]ListingDocument(nil), d.docs...)
}
