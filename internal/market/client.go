package market

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"
)

// Fetcher is the read side of the market data sources. It is implemented by
// *Client and *CachedFetcher.
type Fetcher interface {
	FetchTopCoins(ctx context.Context, vsCurrency string, limit int) ([]Coin, error)
	FetchGlobal(ctx context.Context, vsCurrency string) (*GlobalStats, error)
	FetchNetworkFees(ctx context.Context) (*NetworkFees, error)
}

var _ Fetcher = (*Client)(nil)

const (
	DefaultCoinGeckoURL  = "https://api.coingecko.com"
	DefaultBlockchairURL = "https://api.blockchair.com"
	DefaultVsCurrency    = "usd"
	DefaultTopCoins      = 5

	defaultUserAgent = "metacount/0.1"
	requestTimeout   = 10 * time.Second
	maxTopCoins      = 250
)

// Client talks to the CoinGecko and Blockchair public REST APIs.
type Client struct {
	coingecko  *url.URL
	blockchair *url.URL
	http       *http.Client
	userAgent  string
}

// NewClient builds a Client. Empty base URLs select the public endpoints.
func NewClient(coingeckoURL, blockchairURL string) (*Client, error) {
	cg, err := parseBaseURL(coingeckoURL, DefaultCoinGeckoURL)
	if err != nil {
		return nil, err
	}
	bc, err := parseBaseURL(blockchairURL, DefaultBlockchairURL)
	if err != nil {
		return nil, err
	}
	return &Client{
		coingecko:  cg,
		blockchair: bc,
		http:       &http.Client{Timeout: requestTimeout},
		userAgent:  defaultUserAgent,
	}, nil
}

// FetchTopCoins returns the largest coins by market cap priced in vsCurrency.
func (c *Client) FetchTopCoins(ctx context.Context, vsCurrency string, limit int) ([]Coin, error) {
	if c == nil {
		return nil, errors.New("client is nil")
	}
	if limit <= 0 {
		limit = DefaultTopCoins
	}
	values := url.Values{}
	values.Set("vs_currency", currency(vsCurrency))
	values.Set("order", "market_cap_desc")
	values.Set("per_page", strconv.Itoa(min(limit, maxTopCoins)))
	values.Set("page", "1")
	values.Set("sparkline", "false")

	var coins []Coin
	rel := &url.URL{Path: "/api/v3/coins/markets", RawQuery: values.Encode()}
	if err := c.get(ctx, c.coingecko, rel, &coins); err != nil {
		return nil, err
	}
	if coins == nil {
		coins = []Coin{}
	}
	return coins, nil
}

// FetchGlobal returns total market cap, volume and BTC dominance.
func (c *Client) FetchGlobal(ctx context.Context, vsCurrency string) (*GlobalStats, error) {
	if c == nil {
		return nil, errors.New("client is nil")
	}
	var payload globalResponse
	if err := c.get(ctx, c.coingecko, &url.URL{Path: "/api/v3/global"}, &payload); err != nil {
		return nil, err
	}
	cur := currency(vsCurrency)
	d := payload.Data
	return &GlobalStats{
		Currency:               cur,
		TotalMarketCap:         d.TotalMarketCap[cur],
		TotalVolume:            d.TotalVolume[cur],
		BTCDominance:           d.MarketCapPercentage["btc"],
		MarketCapChange24h:     d.MarketCapChangePercentage24hUSD,
		ActiveCryptocurrencies: d.ActiveCryptocurrencies,
		Markets:                d.Markets,
	}, nil
}

// FetchChainStats returns Blockchair statistics for chain ("bitcoin",
// "ethereum", ...). Error messages reported by the API are surfaced.
func (c *Client) FetchChainStats(ctx context.Context, chain string) (*ChainStats, error) {
	if c == nil {
		return nil, errors.New("client is nil")
	}
	chain = strings.ToLower(strings.TrimSpace(chain))
	if chain == "" {
		return nil, errors.New("chain required")
	}
	var payload chainStatsResponse
	if err := c.get(ctx, c.blockchair, &url.URL{Path: "/" + chain + "/stats"}, &payload); err != nil {
		return nil, errors.Errorf("%s stats: %w", chain, err)
	}
	return &payload.Data, nil
}

// FetchNetworkFees reads bitcoin and ethereum stats concurrently.
func (c *Client) FetchNetworkFees(ctx context.Context) (*NetworkFees, error) {
	if c == nil {
		return nil, errors.New("client is nil")
	}
	var btc, eth *ChainStats
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		btc, err = c.FetchChainStats(gctx, "bitcoin")
		return err
	})
	g.Go(func() error {
		var err error
		eth, err = c.FetchChainStats(gctx, "ethereum")
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &NetworkFees{
		BitcoinSatPerByte: btc.SuggestedFeeSatPerByte,
		EthereumGasGwei:   eth.GasGwei(),
	}, nil
}

func (c *Client) get(ctx context.Context, base *url.URL, rel *url.URL, dest any) error {
	reqURL := base.ResolveReference(rel)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return errors.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return statusError(rel, resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return errors.Errorf("decode response: %w", err)
	}
	return nil
}

// statusError includes the API's own message when the body carries one in
// Blockchair's {"context":{"error":...}} or CoinGecko's {"error":...} shape.
func statusError(rel *url.URL, resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var payload struct {
		Error   string       `json:"error"`
		Context chainContext `json:"context"`
	}
	msg := ""
	if json.Unmarshal(body, &payload) == nil {
		msg = payload.Context.Error
		if msg == "" {
			msg = payload.Error
		}
	}
	if msg != "" {
		return errors.Errorf("api %s returned status %d: %s", rel.Path, resp.StatusCode, msg)
	}
	return errors.Errorf("api %s returned status %d", rel.Path, resp.StatusCode)
}

func currency(vs string) string {
	vs = strings.ToLower(strings.TrimSpace(vs))
	if vs == "" {
		return DefaultVsCurrency
	}
	return vs
}

func parseBaseURL(raw, fallback string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		trimmed = fallback
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "https://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, errors.Errorf("parse base url %q: %w", raw, err)
	}
	u.Path = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
