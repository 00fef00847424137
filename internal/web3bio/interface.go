package web3bio

import (
	"context"

	"github.com/vytor/web3profile/internal/models"
)

type ClientInterface interface {
	Profiles(ctx context.Context, identity string) ([]models.SocialProfile, error)
}

var _ ClientInterface = (*Client)(nil)
