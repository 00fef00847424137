package webacy

import (
	"context"

	"github.com/vytor/web3profile/internal/models"
)

type ClientInterface interface {
	AddressRisk(ctx context.Context, address string) (*models.SecurityScore, error)
}

var _ ClientInterface = (*Client)(nil)
