package private

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/Jeffail/gabs"
	"github.com/fxpgr/go-crypto-cart/api/public"
	"github.com/fxpgr/go-crypto-cart/models"
	"github.com/pkg/errors"
)

func NewHitbtcApi(creds models.Credentials, pub *public.HitbtcApi) *HitbtcApi {
	return &HitbtcApi{
		HitbtcApi: pub,
		ApiKey:    creds.APIKey,
		SecretKey: creds.Secret,
	}
}

type HitbtcApi struct {
	*public.HitbtcApi
	ApiKey    string
	SecretKey string
}

func (h *HitbtcApi) privateApi(ctx context.Context, method string, path string, args map[string]string) ([]byte, error) {
	val := url.Values{}
	for k, v := range args {
		val.Add(k, v)
	}

	req, err := http.NewRequestWithContext(ctx, method, h.BaseURL+path, strings.NewReader(val.Encode()))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to create request command %s", path)
	}
	req.SetBasicAuth(h.ApiKey, h.SecretKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	return public.DoRequest(h.HttpClient, req)
}

func gabsString(c *gabs.Container, path string) string {
	s, _ := c.Path(path).Data().(string)
	return s
}

func gabsFloat(c *gabs.Container, path string) (float64, error) {
	s := gabsString(c, path)
	if s == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "failed to parse json: %s", path)
	}
	return f, nil
}

func (h *HitbtcApi) CompleteBalances(ctx context.Context) (map[string]*models.Balance, error) {
	resBody, err := h.privateApi(ctx, "GET", "/api/2/trading/balance", nil)
	if err != nil {
		return nil, err
	}
	json, err := gabs.ParseJSON(resBody)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse json: %v", string(resBody))
	}
	balanceList, err := json.Children()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse json: %v", string(resBody))
	}
	m := make(map[string]*models.Balance)
	for _, v := range balanceList {
		currency := gabsString(v, "currency")
		if currency == "" {
			continue
		}
		available, err := gabsFloat(v, "available")
		if err != nil {
			return nil, err
		}
		reserved, err := gabsFloat(v, "reserved")
		if err != nil {
			return nil, err
		}
		m[strings.ToUpper(currency)] = models.NewBalance(available, reserved)
	}
	return m, nil
}

func (h *HitbtcApi) MarketBuy(ctx context.Context, pair models.CurrencyPair, amount float64) (*models.Order, error) {
	increment, err := h.QuantityIncrement(ctx, pair)
	if err != nil {
		return nil, err
	}
	args := map[string]string{
		"symbol":   h.Symbol(pair),
		"side":     "buy",
		"type":     "market",
		"quantity": FloorFloat64ToStr(amount, public.PrecisionFromStep(increment)),
	}
	resBody, err := h.privateApi(ctx, "POST", "/api/2/order", args)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to place order for %s", pair.Symbol())
	}
	json, err := gabs.ParseJSON(resBody)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse json: %v", string(resBody))
	}
	if json.Exists("error") {
		return nil, errors.Errorf("hitbtc error: %s", json.Path("error.message").String())
	}
	id := gabsString(json, "clientOrderId")
	if id == "" {
		return nil, errors.Errorf("failed to parse order response: %s", string(resBody))
	}
	quantity, _ := gabsFloat(json, "quantity")
	filled, _ := gabsFloat(json, "cumQuantity")
	return &models.Order{
		ExchangeOrderID: id,
		Symbol:          pair.Symbol(),
		Side:            models.Buy,
		Type:            models.Market,
		Amount:          quantity,
		Filled:          filled,
		Status:          gabsString(json, "status"),
	}, nil
}
