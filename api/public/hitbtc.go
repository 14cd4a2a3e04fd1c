package public

import (
	"context"
	"net/http"
	url2 "net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Jeffail/gabs"
	"github.com/fxpgr/go-crypto-cart/models"
	"github.com/patrickmn/go-cache"
	"github.com/pkg/errors"
)

const (
	HITBTC_BASE_URL = "https://api.hitbtc.com"
)

func NewHitbtcPublicApi(opts Options) *HitbtcApi {
	return &HitbtcApi{
		BaseURL:        opts.baseURL(HITBTC_BASE_URL),
		HttpClient:     opts.httpClient(),
		incrementCache: cache.New(10*time.Minute, time.Minute),
	}
}

type HitbtcApi struct {
	BaseURL    string
	HttpClient *http.Client

	incrementCache *cache.Cache
}

func (h *HitbtcApi) publicApiUrl(command string) string {
	return h.BaseURL + "/api/2/public/" + command
}

func (h *HitbtcApi) Symbol(pair models.CurrencyPair) string {
	return strings.ToUpper(pair.Trading + pair.Settlement)
}

func parseGabsFloat(c *gabs.Container, path string) (float64, error) {
	s, ok := c.Path(path).Data().(string)
	if !ok {
		return 0, errors.Errorf("failed to parse json: %s is not a string", path)
	}
	if s == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "failed to parse json: %s", path)
	}
	return f, nil
}

func (h *HitbtcApi) Tickers(ctx context.Context, pairs []models.CurrencyPair) (map[string]*models.Ticker, error) {
	bySymbol := make(map[string]models.CurrencyPair)
	symbols := make([]string, 0, len(pairs))
	for _, p := range pairs {
		s := h.Symbol(p)
		bySymbol[s] = p
		symbols = append(symbols, s)
	}
	args := url2.Values{}
	args.Add("symbols", strings.Join(symbols, ","))
	url := h.publicApiUrl("ticker?") + args.Encode()
	req, err := requestGetAsChrome(ctx, url)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to fetch %s", url)
	}
	byteArray, err := DoRequest(h.HttpClient, req)
	if err != nil {
		return nil, err
	}
	json, err := gabs.ParseJSON(byteArray)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse json")
	}
	tickerList, err := json.Children()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse json")
	}
	tickers := make(map[string]*models.Ticker)
	for _, v := range tickerList {
		symbol, ok := v.Path("symbol").Data().(string)
		if !ok {
			continue
		}
		pair, ok := bySymbol[symbol]
		if !ok {
			continue
		}
		last, err := parseGabsFloat(v, "last")
		if err != nil {
			return nil, err
		}
		bid, _ := parseGabsFloat(v, "bid")
		ask, _ := parseGabsFloat(v, "ask")
		ticker := &models.Ticker{
			Symbol: pair.Symbol(),
			Last:   last,
			Bid:    bid,
			Ask:    ask,
		}
		if ts, ok := v.Path("timestamp").Data().(string); ok {
			if t, err := time.Parse(time.RFC3339, ts); err == nil {
				ticker.Timestamp = t
			}
		}
		tickers[pair.Symbol()] = ticker
	}
	return tickers, nil
}

// QuantityIncrement returns the order quantity step of a pair, e.g. "0.00001".
func (h *HitbtcApi) QuantityIncrement(ctx context.Context, pair models.CurrencyPair) (string, error) {
	symbol := h.Symbol(pair)
	if c, found := h.incrementCache.Get(symbol); found {
		return c.(string), nil
	}
	url := h.publicApiUrl("symbol/" + symbol)
	req, err := requestGetAsChrome(ctx, url)
	if err != nil {
		return "", errors.Wrapf(err, "failed to fetch %s", url)
	}
	byteArray, err := DoRequest(h.HttpClient, req)
	if err != nil {
		return "", err
	}
	json, err := gabs.ParseJSON(byteArray)
	if err != nil {
		return "", errors.Wrapf(err, "failed to parse json")
	}
	increment, ok := json.Path("quantityIncrement").Data().(string)
	if !ok {
		return "", errors.Errorf("%s missing quantityIncrement", symbol)
	}
	h.incrementCache.Set(symbol, increment, cache.DefaultExpiration)
	return increment, nil
}
