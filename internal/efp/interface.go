package efp

import (
	"context"

	"github.com/vytor/web3profile/internal/models"
)

type ClientInterface interface {
	Stats(ctx context.Context, id string) (models.FollowStats, error)
	Followers(ctx context.Context, id string, limit, offset int) ([]models.FollowEntry, error)
	Following(ctx context.Context, id string, limit, offset int) ([]models.FollowEntry, error)
}

var _ ClientInterface = (*Client)(nil)
