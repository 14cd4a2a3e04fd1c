package private

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Jeffail/gabs"
	"github.com/fxpgr/go-crypto-cart/api/public"
	"github.com/fxpgr/go-crypto-cart/models"
	"github.com/pkg/errors"
)

func NewKucoinApi(creds models.Credentials, pub *public.KucoinApi) (*KucoinApi, error) {
	if creds.Passphrase == "" {
		return nil, errors.New("kucoin requires an api passphrase")
	}
	return &KucoinApi{
		KucoinApi:  pub,
		ApiKey:     creds.APIKey,
		SecretKey:  creds.Secret,
		Passphrase: creds.Passphrase,
	}, nil
}

type KucoinApi struct {
	*public.KucoinApi
	ApiKey     string
	SecretKey  string
	Passphrase string
}

func (h *KucoinApi) privateApi(ctx context.Context, method string, path string, params *url.Values, body []byte) ([]byte, error) {
	endpoint := path
	if params != nil && len(*params) > 0 {
		endpoint = endpoint + "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, h.BaseURL+endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to create request command %s", path)
	}

	timestamp := fmt.Sprintf("%d", time.Now().UnixNano()/int64(time.Millisecond))
	strForSign := timestamp + strings.ToUpper(method) + endpoint + string(body)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("KC-API-KEY", h.ApiKey)
	req.Header.Set("KC-API-SIGN", computeHmac256(strForSign, h.SecretKey))
	req.Header.Set("KC-API-TIMESTAMP", timestamp)
	req.Header.Set("KC-API-PASSPHRASE", computeHmac256(h.Passphrase, h.SecretKey))
	req.Header.Set("KC-API-KEY-VERSION", "2")

	return public.DoRequest(h.HttpClient, req)
}

func (h *KucoinApi) CompleteBalances(ctx context.Context) (map[string]*models.Balance, error) {
	params := &url.Values{}
	params.Set("type", "trade")
	byteArray, err := h.privateApi(ctx, "GET", "/api/v1/accounts", params, nil)
	if err != nil {
		return nil, err
	}
	json, err := public.ParseKucoinResponse(byteArray)
	if err != nil {
		return nil, err
	}
	data, err := json.GetObjectArray("data")
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse json key data %s", json)
	}
	m := make(map[string]*models.Balance)
	for _, v := range data {
		currency, err := v.GetString("currency")
		if err != nil {
			return nil, errors.Wrapf(err, "failed to parse json key currency")
		}
		available, err := jasonStringFloat(v.GetString("available"))
		if err != nil {
			return nil, errors.Wrapf(err, "failed to parse json key available")
		}
		holds, err := jasonStringFloat(v.GetString("holds"))
		if err != nil {
			return nil, errors.Wrapf(err, "failed to parse json key holds")
		}
		currency = strings.ToUpper(currency)
		if b, ok := m[currency]; ok {
			b.Free += available
			b.Used += holds
			b.Total = b.Free + b.Used
			continue
		}
		m[currency] = models.NewBalance(available, holds)
	}
	return m, nil
}

func jasonStringFloat(s string, err error) (float64, error) {
	if err != nil {
		return 0, err
	}
	return strconv.ParseFloat(s, 64)
}

func (h *KucoinApi) MarketBuy(ctx context.Context, pair models.CurrencyPair, amount float64) (*models.Order, error) {
	increment, err := h.BaseIncrement(ctx, pair)
	if err != nil {
		return nil, err
	}
	size := FloorFloat64ToStr(amount, public.PrecisionFromStep(increment))

	order := gabs.New()
	order.Set(strconv.FormatInt(time.Now().UnixNano(), 36), "clientOid")
	order.Set("buy", "side")
	order.Set(h.Symbol(pair), "symbol")
	order.Set("market", "type")
	order.Set(size, "size")

	byteArray, err := h.privateApi(ctx, "POST", "/api/v1/orders", nil, order.Bytes())
	if err != nil {
		return nil, errors.Wrapf(err, "failed to place order for %s", pair.Symbol())
	}
	json, err := public.ParseKucoinResponse(byteArray)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to place order for %s", pair.Symbol())
	}
	orderId, err := json.GetString("data", "orderId")
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse json orderId %s", json)
	}
	sizef, _ := strconv.ParseFloat(size, 64)
	return &models.Order{
		ExchangeOrderID: orderId,
		Symbol:          pair.Symbol(),
		Side:            models.Buy,
		Type:            models.Market,
		Amount:          sizef,
		Status:          "submitted",
	}, nil
}
