package interfaces

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pmsync-dev/pmsync/pkg/domain/model"
)

// ErrNoDocument means the configured folder holds no matching document.
var ErrNoDocument = goerr.New("no document found")

// DocumentSource reads the external document store. LatestDocument returns
// the most recently modified matching document in the configured folder,
// or ErrNoDocument when the folder has none.
type DocumentSource interface {
	LatestDocument(ctx context.Context, cfg model.DriveConfig) (*model.Document, error)
}
