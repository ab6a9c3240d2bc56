package cloudsync

import (
	"fmt"

	"github.com/pkg/errors"
)

// Sentinel errors for cloud sync.
var (
	ErrNotConfigured      = errors.New("cloudsync: github token or gist id not configured")
	ErrPassphraseRequired = errors.New("cloudsync: passphrase required")
	ErrDecrypt            = errors.New("cloudsync: wrong passphrase or corrupted data")
	ErrRemoteMissing      = errors.New("cloudsync: no synced data in gist")
)

// APIError is a non-2xx answer from the gist API.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("cloudsync: gist api error: %d", e.Status)
	}
	return fmt.Sprintf("cloudsync: gist api error: %d: %s", e.Status, e.Message)
}
