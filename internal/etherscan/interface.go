package etherscan

import (
	"context"

	"github.com/vytor/web3profile/internal/models"
)

// ClientInterface defines the Etherscan operations used by the services.
type ClientInterface interface {
	Transactions(ctx context.Context, address string, limit int) ([]models.Transaction, error)
	NFTTransfers(ctx context.Context, address string, limit int) ([]models.NFTTransfer, error)
	TransactionCount(ctx context.Context, address string) (int, error)
}

var _ ClientInterface = (*Client)(nil)
