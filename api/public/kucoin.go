package public

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/antonholmquist/jason"
	"github.com/fxpgr/go-crypto-cart/models"
	"github.com/patrickmn/go-cache"
	"github.com/pkg/errors"
)

const (
	KUCOIN_BASE_URL = "https://api.kucoin.com"

	kucoinSuccessCode = "200000"
)

func NewKucoinPublicApi(opts Options) *KucoinApi {
	return &KucoinApi{
		BaseURL:        opts.baseURL(KUCOIN_BASE_URL),
		HttpClient:     opts.httpClient(),
		incrementCache: cache.New(10*time.Minute, time.Minute),
	}
}

type KucoinApi struct {
	BaseURL    string
	HttpClient *http.Client

	incrementCache *cache.Cache
}

func (h *KucoinApi) publicApiUrl(command string) string {
	return h.BaseURL + command
}

func (h *KucoinApi) Symbol(pair models.CurrencyPair) string {
	return strings.ToUpper(pair.Trading + "-" + pair.Settlement)
}

// ParseKucoinResponse unwraps the {"code": ..., "data": ...} envelope.
func ParseKucoinResponse(byteArray []byte) (*jason.Object, error) {
	json, err := jason.NewObjectFromBytes(byteArray)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse json")
	}
	code, err := json.GetString("code")
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse json code %s", json)
	}
	if code != kucoinSuccessCode {
		msg, _ := json.GetString("msg")
		return nil, errors.Errorf("kucoin error %s: %s", code, msg)
	}
	return json, nil
}

func jasonFloat(o *jason.Object, key string) float64 {
	s, err := o.GetString(key)
	if err != nil {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}

func (h *KucoinApi) Tickers(ctx context.Context, pairs []models.CurrencyPair) (map[string]*models.Ticker, error) {
	bySymbol := make(map[string]models.CurrencyPair)
	for _, p := range pairs {
		bySymbol[h.Symbol(p)] = p
	}
	url := h.publicApiUrl("/api/v1/market/allTickers")
	req, err := requestGetAsChrome(ctx, url)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to fetch %s", url)
	}
	byteArray, err := DoRequest(h.HttpClient, req)
	if err != nil {
		return nil, err
	}
	json, err := ParseKucoinResponse(byteArray)
	if err != nil {
		return nil, err
	}
	data, err := json.GetObject("data")
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse json key data %s", json)
	}
	ts, _ := data.GetInt64("time")
	list, err := data.GetObjectArray("ticker")
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse json key ticker %s", json)
	}
	tickers := make(map[string]*models.Ticker)
	for _, v := range list {
		symbol, err := v.GetString("symbol")
		if err != nil {
			continue
		}
		pair, ok := bySymbol[symbol]
		if !ok {
			continue
		}
		tickers[pair.Symbol()] = &models.Ticker{
			Symbol:    pair.Symbol(),
			Last:      jasonFloat(v, "last"),
			Bid:       jasonFloat(v, "buy"),
			Ask:       jasonFloat(v, "sell"),
			Timestamp: time.UnixMilli(ts),
		}
	}
	return tickers, nil
}

// BaseIncrement returns the order size step of a pair, e.g. "0.00000001".
func (h *KucoinApi) BaseIncrement(ctx context.Context, pair models.CurrencyPair) (string, error) {
	symbol := h.Symbol(pair)
	if c, found := h.incrementCache.Get(symbol); found {
		return c.(string), nil
	}
	url := h.publicApiUrl("/api/v2/symbols/" + symbol)
	req, err := requestGetAsChrome(ctx, url)
	if err != nil {
		return "", errors.Wrapf(err, "failed to fetch %s", url)
	}
	byteArray, err := DoRequest(h.HttpClient, req)
	if err != nil {
		return "", err
	}
	json, err := ParseKucoinResponse(byteArray)
	if err != nil {
		return "", err
	}
	increment, err := json.GetString("data", "baseIncrement")
	if err != nil {
		return "", errors.Wrapf(err, "%s missing baseIncrement", symbol)
	}
	h.incrementCache.Set(symbol, increment, cache.DefaultExpiration)
	return increment, nil
}
