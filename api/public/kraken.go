package public

import (
	"context"
	"strings"
	"time"

	"github.com/fxpgr/go-crypto-cart/logger"
	"github.com/fxpgr/go-crypto-cart/models"
	"github.com/go-resty/resty/v2"
	"github.com/patrickmn/go-cache"
	"github.com/pkg/errors"
	"github.com/tidwall/gjson"
)

const (
	KRAKEN_BASE_URL = "https://api.kraken.com"
)

// KrakenPair is the asset pair metadata Kraken needs to quote and trade.
type KrakenPair struct {
	Key         string // result key, e.g. "XXBTZUSD"
	Altname     string // request name, e.g. "XBTUSD"
	Symbol      string // unified, e.g. "BTC/USD"
	LotDecimals int
}

func NewKrakenPublicApi(opts Options) *KrakenApi {
	return &KrakenApi{
		BaseURL:   opts.baseURL(KRAKEN_BASE_URL),
		Client:    resty.NewWithClient(opts.httpClient()),
		pairCache: cache.New(30*time.Minute, 5*time.Minute),
	}
}

type KrakenApi struct {
	BaseURL string
	Client  *resty.Client

	pairCache *cache.Cache
}

var krakenAssetAliases = map[string]string{
	"XBT": "BTC",
	"XDG": "DOGE",
}

// NormalizeKrakenAsset maps Kraken asset codes to common tickers:
// "XXBT" and "XBT" become "BTC", "ZUSD" becomes "USD".
func NormalizeKrakenAsset(asset string) string {
	asset = strings.ToUpper(asset)
	if i := strings.IndexByte(asset, '.'); i >= 0 {
		asset = asset[:i]
	}
	if len(asset) == 4 && (asset[0] == 'X' || asset[0] == 'Z') {
		asset = asset[1:]
	}
	if alias, ok := krakenAssetAliases[asset]; ok {
		return alias
	}
	return asset
}

// CheckKrakenResponse returns the "result" member or the joined "error" array.
func CheckKrakenResponse(resp *resty.Response, err error) (gjson.Result, error) {
	if err != nil {
		return gjson.Result{}, errors.Wrap(err, "failed to request kraken")
	}
	logger.Get().Debugw("exchange request", "method", resp.Request.Method, "url", resp.Request.URL)
	value := gjson.ParseBytes(resp.Body())
	if errs := value.Get("error").Array(); len(errs) > 0 {
		msgs := make([]string, 0, len(errs))
		for _, e := range errs {
			msgs = append(msgs, e.String())
		}
		return gjson.Result{}, errors.Errorf("kraken error: %s", strings.Join(msgs, ", "))
	}
	if resp.IsError() {
		return gjson.Result{}, errors.Errorf("HttpStatusCode:%d ,Desc:%s", resp.StatusCode(), resp.String())
	}
	result := value.Get("result")
	if !result.Exists() {
		return gjson.Result{}, errors.Errorf("failed to parse json: %s", resp.String())
	}
	return result, nil
}

func (h *KrakenApi) fetchPairs(ctx context.Context) error {
	result, err := CheckKrakenResponse(h.Client.R().
		SetContext(ctx).
		Get(h.BaseURL + "/0/public/AssetPairs"))
	if err != nil {
		return err
	}
	result.ForEach(func(key, v gjson.Result) bool {
		wsname := v.Get("wsname").Str
		xs := strings.Split(wsname, "/")
		if len(xs) != 2 {
			return true
		}
		pair := &KrakenPair{
			Key:         key.Str,
			Altname:     v.Get("altname").Str,
			Symbol:      NormalizeKrakenAsset(xs[0]) + "/" + NormalizeKrakenAsset(xs[1]),
			LotDecimals: int(v.Get("lot_decimals").Int()),
		}
		h.pairCache.Set(pair.Symbol, pair, cache.DefaultExpiration)
		return true
	})
	return nil
}

// Pair looks up a unified pair, loading the asset pair list once per cache period.
func (h *KrakenApi) Pair(ctx context.Context, pair models.CurrencyPair) (*KrakenPair, error) {
	if c, found := h.pairCache.Get(pair.Symbol()); found {
		return c.(*KrakenPair), nil
	}
	if err := h.fetchPairs(ctx); err != nil {
		return nil, err
	}
	if c, found := h.pairCache.Get(pair.Symbol()); found {
		return c.(*KrakenPair), nil
	}
	return nil, errors.Errorf("%s is not listed on kraken", pair.Symbol())
}

func (h *KrakenApi) Tickers(ctx context.Context, pairs []models.CurrencyPair) (map[string]*models.Ticker, error) {
	byKey := make(map[string]*KrakenPair)
	names := make([]string, 0, len(pairs))
	for _, p := range pairs {
		kp, err := h.Pair(ctx, p)
		if err != nil {
			logger.Get().Warnw("skipping unknown pair", "symbol", p.Symbol(), "error", err)
			continue
		}
		byKey[kp.Key] = kp
		names = append(names, kp.Altname)
	}
	tickers := make(map[string]*models.Ticker)
	if len(names) == 0 {
		return tickers, nil
	}
	result, err := CheckKrakenResponse(h.Client.R().
		SetContext(ctx).
		SetQueryParam("pair", strings.Join(names, ",")).
		Get(h.BaseURL + "/0/public/Ticker"))
	if err != nil {
		return nil, err
	}
	now := time.Now()
	result.ForEach(func(key, v gjson.Result) bool {
		kp, ok := byKey[key.Str]
		if !ok {
			return true
		}
		tickers[kp.Symbol] = &models.Ticker{
			Symbol:    kp.Symbol,
			Last:      v.Get("c.0").Float(),
			Bid:       v.Get("b.0").Float(),
			Ask:       v.Get("a.0").Float(),
			Timestamp: now,
		}
		return true
	})
	return tickers, nil
}
