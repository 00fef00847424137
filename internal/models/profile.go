package models

import "time"

// Identity is a normalized and resolved lookup input.
type Identity struct {
	Input     string `json:"input"`
	Kind      string `json:"kind"`
	Address   string `json:"address"`
	Checksum  string `json:"checksum"`
	Name      string `json:"name,omitempty"`
	EmojiHash string `json:"emoji_hash"`
}

// Key is the stable cache identifier of the identity.
func (i Identity) Key() string {
	return i.Address
}

// ENSRecords holds the primary name and text records of an identity.
type ENSRecords struct {
	Name    string            `json:"name,omitempty"`
	Address string            `json:"address"`
	Avatar  string            `json:"avatar,omitempty"`
	Records map[string]string `json:"records,omitempty"`
}

// Section names used for caching and error reporting.
const (
	SectionENS          = "ens"
	SectionSocials      = "socials"
	SectionFollow       = "follow"
	SectionPOAPs        = "poaps"
	SectionTransactions = "transactions"
	SectionTxCount      = "transaction_count"
	SectionNFTs         = "nfts"
	SectionTalent       = "talent"
	SectionSkills       = "skills"
	SectionSecurity     = "security"
	SectionVotes        = "votes"
	SectionSummary      = "summary"
)

// AggregatedProfile is the fan-in of every section for one identity.
// A failed section holds its zero value and an entry in Errors.
type AggregatedProfile struct {
	Identity     Identity          `json:"identity"`
	ENS          ENSRecords        `json:"ens"`
	Socials      []SocialProfile   `json:"socials"`
	Follow       FollowStats       `json:"follow"`
	POAPs        []POAP            `json:"poaps"`
	Transactions []Transaction     `json:"transactions"`
	TxCount      int               `json:"transaction_count"`
	NFTs         []NFTCollection   `json:"nfts"`
	Talent       TalentScore       `json:"talent"`
	Skills       []Skill           `json:"skills"`
	Security     *SecurityScore    `json:"security"`
	Votes        []TallyVote       `json:"votes"`
	Score        BuilderScore      `json:"score"`
	Errors       map[string]string `json:"errors,omitempty"`
	FetchedAt    time.Time         `json:"fetched_at"`
}

// BuilderScore is a 0-100 weighted summary of an identity's activity.
type BuilderScore struct {
	Total     float64            `json:"total"`
	Breakdown map[string]float64 `json:"breakdown"`
}
