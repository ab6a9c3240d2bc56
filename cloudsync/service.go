package cloudsync

import (
	"context"
	"encoding/json"
	"log"
	"strings"
	"sync"

	"github.com/pkg/errors"
)

const (
	// FileName is the gist file holding the encrypted card export.
	FileName = "flashcards.enc"
	// Description is used when a new gist is created.
	Description = "EngCard Sync Data (encrypted)"
)

// CardArchive is the export/import surface of the card store.
type CardArchive interface {
	ExportAll(ctx context.Context) ([]byte, error)
	ImportAll(ctx context.Context, data []byte) (int, error)
}

// Service backs up and restores the card store through an encrypted gist.
type Service struct {
	cards CardArchive
	gists *GistClient

	mu     sync.Mutex
	gistID string
}

// NewService creates a Service. An empty gistID makes the first upload create a gist.
func NewService(cards CardArchive, gists *GistClient, gistID string) *Service {
	return &Service{cards: cards, gists: gists, gistID: strings.TrimSpace(gistID)}
}

// GistID returns the gist in use, including one created by Upload.
func (s *Service) GistID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gistID
}

// UploadResult describes a finished upload.
type UploadResult struct {
	GistID  string `json:"gistId"`
	Created bool   `json:"created"`
	Cards   int    `json:"cards"`
}

// Upload encrypts the full export with passphrase and stores it in the gist,
// creating a private gist when none is configured yet.
func (s *Service) Upload(ctx context.Context, passphrase string) (UploadResult, error) {
	passphrase = strings.TrimSpace(passphrase)
	if passphrase == "" {
		return UploadResult{}, ErrPassphraseRequired
	}
	if !s.gists.Configured() {
		return UploadResult{}, ErrNotConfigured
	}

	data, err := s.cards.ExportAll(ctx)
	if err != nil {
		return UploadResult{}, err
	}
	var records []json.RawMessage
	if err := json.Unmarshal(data, &records); err != nil {
		return UploadResult{}, errors.Wrap(err, "cloudsync: count exported cards")
	}

	sealed, err := Encrypt(data, passphrase)
	if err != nil {
		return UploadResult{}, err
	}
	files := map[string]GistFile{FileName: {Content: sealed}}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.gistID != "" {
		if _, err := s.gists.Update(ctx, s.gistID, files); err != nil {
			return UploadResult{}, err
		}
		return UploadResult{GistID: s.gistID, Cards: len(records)}, nil
	}

	g, err := s.gists.Create(ctx, Description, files)
	if err != nil {
		return UploadResult{}, err
	}
	s.gistID = g.ID
	// the id only lives in memory, GIST_ID keeps it across restarts
	log.Printf("Upload: created gist %s, set GIST_ID=%s to keep syncing with it", g.ID, g.ID)
	return UploadResult{GistID: g.ID, Created: true, Cards: len(records)}, nil
}

// Download decrypts the gist's export and upserts it into the card store.
// A wrong passphrase returns ErrDecrypt and leaves the store untouched.
func (s *Service) Download(ctx context.Context, passphrase string) (int, error) {
	passphrase = strings.TrimSpace(passphrase)
	if passphrase == "" {
		return 0, ErrPassphraseRequired
	}
	gistID := s.GistID()
	if gistID == "" || !s.gists.Configured() {
		return 0, ErrNotConfigured
	}

	g, err := s.gists.Get(ctx, gistID)
	if err != nil {
		return 0, err
	}
	f, ok := g.Files[FileName]
	if !ok {
		return 0, ErrRemoteMissing
	}

	plain, err := Decrypt(f.Content, passphrase)
	if err != nil {
		return 0, err
	}
	return s.cards.ImportAll(ctx, plain)
}
