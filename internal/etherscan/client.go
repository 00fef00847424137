package etherscan

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/vytor/web3profile/internal/httpx"
	"github.com/vytor/web3profile/internal/logger"
	"github.com/vytor/web3profile/internal/models"
)

const DefaultBaseURL = "https://api.etherscan.io/v2/api"

// mainnetChainID selects Ethereum mainnet on the multichain v2 API.
const mainnetChainID = "1"

type Client struct {
	http   *httpx.Client
	apiKey string
}

type Option func(*Client)

func WithBaseURL(u string) Option { return func(c *Client) { c.http.BaseURL = u } }

func WithAPIKey(key string) Option { return func(c *Client) { c.apiKey = key } }

func WithRetries(n int) Option { return func(c *Client) { c.http.Retries = n } }

func WithTimeout(d time.Duration) Option { return func(c *Client) { c.http.HTTP.Timeout = d } }

func New(opts ...Option) *Client {
	c := &Client{http: httpx.New("etherscan", DefaultBaseURL, 15*time.Second)}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Result  json.RawMessage `json:"result"`
}

type txResp struct {
	BlockNumber  string `json:"blockNumber"`
	TimeStamp    string `json:"timeStamp"`
	Hash         string `json:"hash"`
	From         string `json:"from"`
	To           string `json:"to"`
	Value        string `json:"value"`
	GasUsed      string `json:"gasUsed"`
	IsError      string `json:"isError"`
	FunctionName string `json:"functionName"`
}

type nftResp struct {
	ContractAddress string `json:"contractAddress"`
	TokenID         string `json:"tokenID"`
	TokenName       string `json:"tokenName"`
	TokenSymbol     string `json:"tokenSymbol"`
	From            string `json:"from"`
	To              string `json:"to"`
	TimeStamp       string `json:"timeStamp"`
}

// rpcEnvelope is the JSON-RPC shaped reply of the proxy module. Key and rate
// limit failures still come back in the account module shape.
type rpcEnvelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Result  json.RawMessage `json:"result"`
	Error   *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (c *Client) authorize(params url.Values) url.Values {
	params.Set("chainid", mainnetChainID)
	if c.apiKey != "" {
		params.Set("apikey", c.apiKey)
	}
	return params
}

func (c *Client) query(ctx context.Context, params url.Values, out any) error {
	var env envelope
	if err := c.http.GetJSON(ctx, "", c.authorize(params), &env); err != nil {
		return err
	}
	if env.Status != "1" {
		// Empty histories come back as status 0 with an empty list or a message.
		if strings.HasPrefix(env.Message, "No ") {
			return nil
		}
		var detail string
		_ = json.Unmarshal(env.Result, &detail)
		return fmt.Errorf("etherscan %s: %s %s", params.Get("action"), env.Message, detail)
	}
	return json.Unmarshal(env.Result, out)
}

// Transactions returns the most recent normal transactions of address, newest first.
func (c *Client) Transactions(ctx context.Context, address string, limit int) ([]models.Transaction, error) {
	log := logger.FromContext(ctx).WithPrefix("etherscan").WithField("address", address)
	if limit <= 0 {
		limit = 50
	}
	var raw []txResp
	err := c.query(ctx, url.Values{
		"module":     {"account"},
		"action":     {"txlist"},
		"address":    {address},
		"startblock": {"0"},
		"endblock":   {"99999999"},
		"page":       {"1"},
		"offset":     {strconv.Itoa(limit)},
		"sort":       {"desc"},
	}, &raw)
	if err != nil {
		log.Error("failed to fetch transactions: %v", err)
		return nil, err
	}

	txs := make([]models.Transaction, 0, len(raw))
	for _, r := range raw {
		txs = append(txs, models.Transaction{
			Hash:         r.Hash,
			BlockNumber:  parseUint(r.BlockNumber),
			Timestamp:    parseUnix(r.TimeStamp),
			From:         r.From,
			To:           r.To,
			Value:        r.Value,
			GasUsed:      parseUint(r.GasUsed),
			IsError:      r.IsError == "1",
			FunctionName: r.FunctionName,
		})
	}
	log.Info("fetched %d transactions", len(txs))
	return txs, nil
}

// NFTTransfers returns ERC-721 transfers involving address, newest first.
func (c *Client) NFTTransfers(ctx context.Context, address string, limit int) ([]models.NFTTransfer, error) {
	log := logger.FromContext(ctx).WithPrefix("etherscan").WithField("address", address)
	if limit <= 0 {
		limit = 200
	}
	var raw []nftResp
	err := c.query(ctx, url.Values{
		"module":  {"account"},
		"action":  {"tokennfttx"},
		"address": {address},
		"page":    {"1"},
		"offset":  {strconv.Itoa(limit)},
		"sort":    {"desc"},
	}, &raw)
	if err != nil {
		log.Error("failed to fetch nft transfers: %v", err)
		return nil, err
	}

	out := make([]models.NFTTransfer, 0, len(raw))
	for _, r := range raw {
		out = append(out, models.NFTTransfer{
			Contract:  strings.ToLower(r.ContractAddress),
			TokenID:   r.TokenID,
			Name:      r.TokenName,
			Symbol:    r.TokenSymbol,
			From:      strings.ToLower(r.From),
			To:        strings.ToLower(r.To),
			Timestamp: parseUnix(r.TimeStamp),
		})
	}
	log.Debug("fetched %d nft transfers", len(out))
	return out, nil
}

// TransactionCount returns the number of transactions sent from address, as
// reported by eth_getTransactionCount. It is not bounded by any page size.
func (c *Client) TransactionCount(ctx context.Context, address string) (int, error) {
	log := logger.FromContext(ctx).WithPrefix("etherscan").WithField("address", address)

	var env rpcEnvelope
	err := c.http.GetJSON(ctx, "", c.authorize(url.Values{
		"module":  {"proxy"},
		"action":  {"eth_getTransactionCount"},
		"address": {address},
		"tag":     {"latest"},
	}), &env)
	if err != nil {
		log.Error("failed to fetch transaction count: %v", err)
		return 0, err
	}
	if env.Error != nil {
		return 0, fmt.Errorf("etherscan eth_getTransactionCount: %s (code %d)", env.Error.Message, env.Error.Code)
	}
	var hexCount string
	if err := json.Unmarshal(env.Result, &hexCount); err != nil || (env.Status == "0" && !strings.HasPrefix(hexCount, "0x")) {
		return 0, fmt.Errorf("etherscan eth_getTransactionCount: %s %s", env.Message, strings.TrimSpace(string(env.Result)))
	}
	n, err := parseHexCount(hexCount)
	if err != nil {
		return 0, fmt.Errorf("etherscan eth_getTransactionCount: %w", err)
	}
	log.Debug("transaction count %d", n)
	return n, nil
}

func parseHexCount(s string) (int, error) {
	digits := strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if digits == "" {
		return 0, nil
	}
	v, err := strconv.ParseUint(digits, 16, 31)
	if err != nil {
		return 0, fmt.Errorf("invalid quantity %q", s)
	}
	return int(v), nil
}

func parseUint(s string) uint64 {
	v, _ := strconv.ParseUint(s, 10, 64)
	return v
}

func parseUnix(s string) time.Time {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil || v <= 0 {
		return time.Time{}
	}
	return time.Unix(v, 0).UTC()
}
