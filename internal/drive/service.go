package drive

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/andresuchdata/inventra/backend-go/internal/storage"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

const folderMimeType = "application/vnd.google-apps.folder"

// Publisher uploads report artefacts into a Drive folder. Object keys map to
// nested folders under the root folder, created on demand.
type Publisher struct {
	srv    *drive.Service
	rootID string
}

// NewPublisher authenticates with a service account key.
func NewPublisher(ctx context.Context, credentialsJSON []byte, folderID string) (*Publisher, error) {
	// Parse credentials from JSON
	config, err := google.JWTConfigFromJSON(credentialsJSON, drive.DriveFileScope)
	if err != nil {
		return nil, fmt.Errorf("unable to parse service account key: %w", err)
	}

	srv, err := drive.NewService(ctx, option.WithHTTPClient(config.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve Drive client: %w", err)
	}

	return NewPublisherWithService(srv, folderID), nil
}

func NewPublisherWithService(srv *drive.Service, folderID string) *Publisher {
	if folderID == "" {
		folderID = "root"
	}
	return &Publisher{srv: srv, rootID: folderID}
}

// UploadObject creates or replaces the file at key.
func (p *Publisher) UploadObject(ctx context.Context, key string, data []byte) error {
	dir, name := splitKey(key)

	parentID, err := p.ensureFolderPath(ctx, dir)
	if err != nil {
		return err
	}

	existing, err := p.srv.Files.List().
		Q(childQuery(parentID, name, "")).
		Fields("files(id)").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("unable to look up %s: %w", key, err)
	}

	media := bytes.NewReader(data)
	if len(existing.Files) > 0 {
		_, err = p.srv.Files.Update(existing.Files[0].Id, &drive.File{}).
			Media(media).
			Context(ctx).
			Do()
	} else {
		_, err = p.srv.Files.Create(&drive.File{
			Name:     name,
			Parents:  []string{parentID},
			MimeType: storage.ContentType(key),
		}).
			Media(media).
			Context(ctx).
			Do()
	}
	if err != nil {
		return fmt.Errorf("unable to upload %s: %w", key, err)
	}
	return nil
}

// ListObjects lists the files directly inside the folder at prefix.
func (p *Publisher) ListObjects(ctx context.Context, prefix string) ([]storage.ObjectInfo, error) {
	folderID, err := p.findFolderPath(ctx, strings.Trim(prefix, "/"))
	if err != nil {
		return nil, err
	}

	result, err := p.srv.Files.List().
		Q(fmt.Sprintf("'%s' in parents and trashed=false", escapeQuery(folderID))).
		Fields("files(id, name, mimeType, size)").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve files: %w", err)
	}

	objects := make([]storage.ObjectInfo, 0, len(result.Files))
	for _, f := range result.Files {
		if f.MimeType == folderMimeType {
			continue
		}
		objects = append(objects, storage.ObjectInfo{
			Key:  path.Join(strings.Trim(prefix, "/"), f.Name),
			Size: f.Size,
		})
	}
	return objects, nil
}

func (p *Publisher) findFolderPath(ctx context.Context, dir string) (string, error) {
	currentID := p.rootID
	for _, folder := range strings.Split(dir, "/") {
		if folder == "" {
			continue
		}

		id, err := p.findFolder(ctx, currentID, folder)
		if err != nil {
			return "", err
		}
		if id == "" {
			return "", fmt.Errorf("folder not found: %s", folder)
		}
		currentID = id
	}
	return currentID, nil
}

func (p *Publisher) ensureFolderPath(ctx context.Context, dir string) (string, error) {
	currentID := p.rootID
	for _, folder := range strings.Split(dir, "/") {
		if folder == "" {
			continue
		}

		id, err := p.findFolder(ctx, currentID, folder)
		if err != nil {
			return "", err
		}
		if id == "" {
			created, err := p.srv.Files.Create(&drive.File{
				Name:     folder,
				MimeType: folderMimeType,
				Parents:  []string{currentID},
			}).Fields("id").Context(ctx).Do()
			if err != nil {
				return "", fmt.Errorf("error creating folder %s: %w", folder, err)
			}
			id = created.Id
		}
		currentID = id
	}
	return currentID, nil
}

func (p *Publisher) findFolder(ctx context.Context, parentID, name string) (string, error) {
	result, err := p.srv.Files.List().
		Q(childQuery(parentID, name, folderMimeType)).
		Fields("files(id, name)").
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("error finding folder %s: %w", name, err)
	}
	if len(result.Files) == 0 {
		return "", nil
	}
	return result.Files[0].Id, nil
}

func childQuery(parentID, name, mimeType string) string {
	q := fmt.Sprintf("'%s' in parents and name='%s' and trashed=false", escapeQuery(parentID), escapeQuery(name))
	if mimeType != "" {
		q += fmt.Sprintf(" and mimeType='%s'", mimeType)
	}
	return q
}

// escapeQuery escapes a literal for the Drive query language.
func escapeQuery(s string) string {
	return strings.NewReplacer(`\`, `\\`, `'`, `\'`).Replace(s)
}

func splitKey(key string) (dir, name string) {
	key = strings.Trim(key, "/")
	dir, name = path.Split(key)
	return strings.TrimSuffix(dir, "/"), name
}

var _ storage.ObjectStorage = (*Publisher)(nil)
