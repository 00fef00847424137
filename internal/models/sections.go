package models

import "time"

type SocialLink struct {
	Platform string `json:"platform"`
	Handle   string `json:"handle,omitempty"`
	URL      string `json:"url"`
}

type SocialProfile struct {
	Platform    string       `json:"platform"`
	Identity    string       `json:"identity"`
	Address     string       `json:"address,omitempty"`
	DisplayName string       `json:"display_name,omitempty"`
	Avatar      string       `json:"avatar,omitempty"`
	Description string       `json:"description,omitempty"`
	Links       []SocialLink `json:"links,omitempty"`
}

type FollowStats struct {
	Followers int `json:"followers"`
	Following int `json:"following"`
}

type FollowEntry struct {
	Address   string    `json:"address"`
	Tags      []string  `json:"tags,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

type POAP struct {
	TokenID   string    `json:"token_id"`
	EventID   int64     `json:"event_id"`
	Name      string    `json:"name"`
	ImageURL  string    `json:"image_url,omitempty"`
	StartDate string    `json:"start_date,omitempty"`
	City      string    `json:"city,omitempty"`
	Country   string    `json:"country,omitempty"`
	Chain     string    `json:"chain,omitempty"`
	Created   time.Time `json:"created"`
}

type Transaction struct {
	Hash         string    `json:"hash"`
	BlockNumber  uint64    `json:"block_number"`
	Timestamp    time.Time `json:"timestamp"`
	From         string    `json:"from"`
	To           string    `json:"to"`
	Value        string    `json:"value"`
	GasUsed      uint64    `json:"gas_used"`
	IsError      bool      `json:"is_error"`
	FunctionName string    `json:"function_name,omitempty"`
}

// NFTTransfer is one ERC-721 transfer touching an address.
type NFTTransfer struct {
	Contract  string    `json:"contract"`
	TokenID   string    `json:"token_id"`
	Name      string    `json:"name"`
	Symbol    string    `json:"symbol"`
	From      string    `json:"from"`
	To        string    `json:"to"`
	Timestamp time.Time `json:"timestamp"`
}

// NFTCollection counts the tokens an address currently holds in one contract.
type NFTCollection struct {
	Contract   string `json:"contract"`
	Name       string `json:"name"`
	Symbol     string `json:"symbol"`
	TokenCount int    `json:"token_count"`
}

type TalentScore struct {
	Points           float64    `json:"points"`
	LastCalculatedAt *time.Time `json:"last_calculated_at,omitempty"`
}

type Skill struct {
	Name     string  `json:"name"`
	Category string  `json:"category,omitempty"`
	Points   float64 `json:"points"`
	MaxScore float64 `json:"max_score"`
	Issuer   string  `json:"issuer,omitempty"`
}

type SecurityIssue struct {
	Tag         string `json:"tag"`
	Severity    string `json:"severity"`
	Description string `json:"description,omitempty"`
}

type SecurityScore struct {
	OverallRisk float64         `json:"overall_risk"`
	Count       int             `json:"count"`
	Medium      int             `json:"medium"`
	High        int             `json:"high"`
	Issues      []SecurityIssue `json:"issues,omitempty"`
}

type TallyVote struct {
	ProposalID    string    `json:"proposal_id"`
	ProposalTitle string    `json:"proposal_title"`
	Organization  string    `json:"organization"`
	Support       string    `json:"support"`
	Weight        string    `json:"weight"`
	CastAt        time.Time `json:"cast_at"`
}

type WorkExperience struct {
	Title        string `json:"title"`
	Organization string `json:"organization"`
	Start        string `json:"start,omitempty"`
	End          string `json:"end,omitempty"`
	Description  string `json:"description,omitempty"`
}

// Summary is the AI-generated narrative of a profile.
type Summary struct {
	Text       string           `json:"text"`
	Experience []WorkExperience `json:"experience,omitempty"`
}
