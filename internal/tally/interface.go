package tally

import (
	"context"

	"github.com/vytor/web3profile/internal/models"
)

type ClientInterface interface {
	Votes(ctx context.Context, address string, limit int) ([]models.TallyVote, error)
}

var _ ClientInterface = (*Client)(nil)
