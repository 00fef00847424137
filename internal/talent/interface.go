package talent

import (
	"context"

	"github.com/vytor/web3profile/internal/models"
)

type ClientInterface interface {
	Score(ctx context.Context, address string) (models.TalentScore, error)
	Credentials(ctx context.Context, address string) ([]models.Skill, error)
}

var _ ClientInterface = (*Client)(nil)
