package market

import "time"

// Coin is one row of /api/v3/coins/markets.
type Coin struct {
	ID                       string    `json:"id"`
	Symbol                   string    `json:"symbol"`
	Name                     string    `json:"name"`
	Image                    string    `json:"image"`
	CurrentPrice             float64   `json:"current_price"`
	MarketCap                float64   `json:"market_cap"`
	MarketCapRank            int       `json:"market_cap_rank"`
	TotalVolume              float64   `json:"total_volume"`
	PriceChangePercentage24h float64   `json:"price_change_percentage_24h"`
	LastUpdated              time.Time `json:"last_updated"`
}

// globalResponse mirrors /api/v3/global.
type globalResponse struct {
	Data struct {
		ActiveCryptocurrencies          int                `json:"active_cryptocurrencies"`
		Markets                         int                `json:"markets"`
		TotalMarketCap                  map[string]float64 `json:"total_market_cap"`
		TotalVolume                     map[string]float64 `json:"total_volume"`
		MarketCapPercentage             map[string]float64 `json:"market_cap_percentage"`
		MarketCapChangePercentage24hUSD float64            `json:"market_cap_change_percentage_24h_usd"`
	} `json:"data"`
}

// GlobalStats summarizes the whole market in one currency.
type GlobalStats struct {
	Currency               string
	TotalMarketCap         float64
	TotalVolume            float64
	BTCDominance           float64
	MarketCapChange24h     float64
	ActiveCryptocurrencies int
	Markets                int
}

// ChainStats mirrors the data object of Blockchair's /{chain}/stats.
// Fields a chain does not report stay nil or zero.
type ChainStats struct {
	Blocks                 int64    `json:"blocks"`
	Transactions24h        int64    `json:"transactions_24h"`
	MempoolTransactions    int64    `json:"mempool_transactions"`
	MarketPriceUSD         float64  `json:"market_price_usd"`
	SuggestedFeeSatPerByte *float64 `json:"suggested_transaction_fee_per_byte_sat"`
	GasPrice               *float64 `json:"gas_price"`
	MempoolMedianGasPrice  *float64 `json:"mempool_median_gas_price"`
}

type chainStatsResponse struct {
	Data    ChainStats   `json:"data"`
	Context chainContext `json:"context"`
}

type chainContext struct {
	Code  int    `json:"code"`
	Error string `json:"error"`
}

// NetworkFees pairs the current bitcoin fee rate with the ethereum gas price.
type NetworkFees struct {
	BitcoinSatPerByte *float64
	EthereumGasGwei   *float64
}

// GasGwei converts a wei price to gwei. It prefers the reported gas price
// and falls back to the mempool median.
func (s ChainStats) GasGwei() *float64 {
	wei := s.GasPrice
	if wei == nil {
		wei = s.MempoolMedianGasPrice
	}
	if wei == nil {
		return nil
	}
	gwei := *wei / 1e9
	return &gwei
}
