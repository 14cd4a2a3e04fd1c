package public

import (
	"context"
	"encoding/json"
	"net/http"
	url2 "net/url"
	"strings"
	"time"

	"github.com/fxpgr/go-crypto-cart/models"
	"github.com/patrickmn/go-cache"
	"github.com/pkg/errors"
	"github.com/tidwall/gjson"
)

const (
	BINANCE_BASE_URL   = "https://api.binance.com"
	BINANCEUS_BASE_URL = "https://api.binance.us"
)

func NewBinancePublicApi(opts Options) *BinanceApi {
	return &BinanceApi{
		BaseURL:      opts.baseURL(BINANCE_BASE_URL),
		HttpClient:   opts.httpClient(),
		lotSizeCache: cache.New(10*time.Minute, time.Minute),
	}
}

// NewBinanceUSPublicApi talks to Binance.US, which lists USD quoted pairs.
func NewBinanceUSPublicApi(opts Options) *BinanceApi {
	opts.BaseURL = opts.baseURL(BINANCEUS_BASE_URL)
	return NewBinancePublicApi(opts)
}

type BinanceApi struct {
	BaseURL    string
	HttpClient *http.Client

	lotSizeCache *cache.Cache
}

func (h *BinanceApi) publicApiUrl(command string) string {
	return h.BaseURL + command
}

func (h *BinanceApi) Symbol(pair models.CurrencyPair) string {
	return strings.ToUpper(pair.Trading + pair.Settlement)
}

func (h *BinanceApi) Tickers(ctx context.Context, pairs []models.CurrencyPair) (map[string]*models.Ticker, error) {
	bySymbol := make(map[string]models.CurrencyPair)
	symbols := make([]string, 0, len(pairs))
	for _, p := range pairs {
		s := h.Symbol(p)
		bySymbol[s] = p
		symbols = append(symbols, s)
	}
	encoded, err := json.Marshal(symbols)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode symbols")
	}
	args := url2.Values{}
	args.Add("symbols", string(encoded))
	url := h.publicApiUrl("/api/v3/ticker/24hr?") + args.Encode()
	req, err := requestGetAsChrome(ctx, url)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to fetch %s", url)
	}
	byteArray, err := DoRequest(h.HttpClient, req)
	if err != nil {
		return nil, err
	}
	value := gjson.ParseBytes(byteArray)
	if !value.IsArray() {
		return nil, errors.Errorf("failed to parse json: %s", string(byteArray))
	}
	tickers := make(map[string]*models.Ticker)
	for _, v := range value.Array() {
		pair, ok := bySymbol[v.Get("symbol").Str]
		if !ok {
			continue
		}
		tickers[pair.Symbol()] = &models.Ticker{
			Symbol:    pair.Symbol(),
			Last:      v.Get("lastPrice").Float(),
			Bid:       v.Get("bidPrice").Float(),
			Ask:       v.Get("askPrice").Float(),
			Timestamp: time.UnixMilli(v.Get("closeTime").Int()),
		}
	}
	return tickers, nil
}

// LotStep returns the LOT_SIZE step size of a pair, e.g. "0.00001000".
func (h *BinanceApi) LotStep(ctx context.Context, pair models.CurrencyPair) (string, error) {
	symbol := h.Symbol(pair)
	if c, found := h.lotSizeCache.Get(symbol); found {
		return c.(string), nil
	}
	args := url2.Values{}
	args.Add("symbol", symbol)
	url := h.publicApiUrl("/api/v3/exchangeInfo?") + args.Encode()
	req, err := requestGetAsChrome(ctx, url)
	if err != nil {
		return "", errors.Wrapf(err, "failed to fetch %s", url)
	}
	byteArray, err := DoRequest(h.HttpClient, req)
	if err != nil {
		return "", err
	}
	value := gjson.ParseBytes(byteArray)
	for _, s := range value.Get("symbols").Array() {
		if s.Get("symbol").Str != symbol {
			continue
		}
		for _, f := range s.Get("filters").Array() {
			if f.Get("filterType").Str == "LOT_SIZE" {
				step := f.Get("stepSize").Str
				h.lotSizeCache.Set(symbol, step, cache.DefaultExpiration)
				return step, nil
			}
		}
	}
	return "", errors.Errorf("%s missing LOT_SIZE filter", symbol)
}
