package poap

import (
	"context"

	"github.com/vytor/web3profile/internal/models"
)

type ClientInterface interface {
	Scan(ctx context.Context, address string) ([]models.POAP, error)
}

var _ ClientInterface = (*Client)(nil)
