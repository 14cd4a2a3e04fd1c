package private

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/base64"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/fxpgr/go-crypto-cart/api/public"
	"github.com/fxpgr/go-crypto-cart/models"
	"github.com/pkg/errors"
	"github.com/tidwall/gjson"
)

func NewKrakenApi(creds models.Credentials, pub *public.KrakenApi) (*KrakenApi, error) {
	secret, err := base64.StdEncoding.DecodeString(creds.Secret)
	if err != nil {
		return nil, errors.Wrap(err, "kraken api secret must be base64 encoded")
	}
	return &KrakenApi{
		KrakenApi: pub,
		ApiKey:    creds.APIKey,
		secret:    secret,
	}, nil
}

type KrakenApi struct {
	*public.KrakenApi
	ApiKey string
	secret []byte
}

func (h *KrakenApi) sign(path string, nonce string, body string) string {
	sha := sha256.Sum256([]byte(nonce + body))
	mac := hmac.New(sha512.New, h.secret)
	mac.Write([]byte(path))
	mac.Write(sha[:])
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func (h *KrakenApi) privateApi(ctx context.Context, path string, params url.Values) (gjson.Result, error) {
	nonce := strconv.FormatInt(time.Now().UnixNano()/int64(time.Millisecond), 10)
	params.Set("nonce", nonce)
	body := params.Encode()

	return public.CheckKrakenResponse(h.Client.R().
		SetContext(ctx).
		SetHeader("API-Key", h.ApiKey).
		SetHeader("API-Sign", h.sign(path, nonce, body)).
		SetHeader("Content-Type", "application/x-www-form-urlencoded; charset=utf-8").
		SetBody(body).
		Post(h.BaseURL + path))
}

func (h *KrakenApi) CompleteBalances(ctx context.Context) (map[string]*models.Balance, error) {
	result, err := h.privateApi(ctx, "/0/private/BalanceEx", url.Values{})
	if err != nil {
		return nil, err
	}
	m := make(map[string]*models.Balance)
	result.ForEach(func(key, v gjson.Result) bool {
		currency := public.NormalizeKrakenAsset(key.Str)
		total := v.Get("balance").Float()
		hold := v.Get("hold_trade").Float()
		if b, ok := m[currency]; ok {
			// staked or futures variants such as "ETH.F" fold into the spot asset
			b.Total += total
			b.Used += hold
			b.Free = b.Total - b.Used
			return true
		}
		m[currency] = &models.Balance{
			Total: total,
			Free:  total - hold,
			Used:  hold,
		}
		return true
	})
	return m, nil
}

func (h *KrakenApi) MarketBuy(ctx context.Context, pair models.CurrencyPair, amount float64) (*models.Order, error) {
	kp, err := h.Pair(ctx, pair)
	if err != nil {
		return nil, err
	}
	volume := FloorFloat64ToStr(amount, kp.LotDecimals)
	params := url.Values{}
	params.Set("pair", kp.Altname)
	params.Set("type", "buy")
	params.Set("ordertype", "market")
	params.Set("volume", volume)

	result, err := h.privateApi(ctx, "/0/private/AddOrder", params)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to place order for %s", pair.Symbol())
	}
	txids := result.Get("txid").Array()
	if len(txids) == 0 {
		return nil, errors.Errorf("failed to parse order response: %s", result.Raw)
	}
	ids := make([]string, 0, len(txids))
	for _, id := range txids {
		ids = append(ids, id.String())
	}
	amountf, _ := strconv.ParseFloat(volume, 64)
	return &models.Order{
		ExchangeOrderID: strings.Join(ids, ","),
		Symbol:          pair.Symbol(),
		Side:            models.Buy,
		Type:            models.Market,
		Amount:          amountf,
		Status:          result.Get("descr.order").Str,
	}, nil
}
