package etherscan

import (
	"sort"
	"strings"

	"github.com/vytor/web3profile/internal/models"
)

// Collections derives the NFT collections owner currently holds from a
// newest-first transfer list. A token counts when its latest transfer sent
// it to owner.
func Collections(transfers []models.NFTTransfer, owner string) []models.NFTCollection {
	owner = strings.ToLower(owner)
	seen := make(map[string]bool, len(transfers))
	byContract := make(map[string]*models.NFTCollection)

	for _, t := range transfers {
		key := t.Contract + "/" + t.TokenID
		if seen[key] {
			continue
		}
		seen[key] = true
		if t.To != owner {
			continue
		}
		col, ok := byContract[t.Contract]
		if !ok {
			col = &models.NFTCollection{Contract: t.Contract, Name: t.Name, Symbol: t.Symbol}
			byContract[t.Contract] = col
		}
		col.TokenCount++
	}

	out := make([]models.NFTCollection, 0, len(byContract))
	for _, col := range byContract {
		out = append(out, *col)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TokenCount != out[j].TokenCount {
			return out[i].TokenCount > out[j].TokenCount
		}
		return out[i].Contract < out[j].Contract
	})
	return out
}
