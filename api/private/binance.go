package private

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/fxpgr/go-crypto-cart/api/public"
	"github.com/fxpgr/go-crypto-cart/models"
	"github.com/pkg/errors"
	"github.com/tidwall/gjson"
)

const binanceRecvWindow = "5000"

func NewBinanceApi(creds models.Credentials, pub *public.BinanceApi) *BinanceApi {
	return &BinanceApi{
		BinanceApi: pub,
		ApiKey:     creds.APIKey,
		SecretKey:  creds.Secret,
	}
}

type BinanceApi struct {
	*public.BinanceApi
	ApiKey    string
	SecretKey string
}

func (h *BinanceApi) privateApi(ctx context.Context, method string, path string, params *url.Values) ([]byte, error) {
	urlStr := h.BaseURL + path
	nonce := time.Now().UnixNano() / int64(time.Millisecond)
	params.Set("timestamp", fmt.Sprintf("%d", nonce))
	params.Set("recvWindow", binanceRecvWindow)

	req, err := http.NewRequestWithContext(ctx, method, urlStr, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to create request command %s", path)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-MBX-APIKEY", h.ApiKey)

	signature := computeHmac256Hex(params.Encode(), h.SecretKey)
	req.URL.RawQuery = params.Encode() + "&signature=" + signature

	return public.DoRequest(h.HttpClient, req)
}

func (h *BinanceApi) CompleteBalances(ctx context.Context) (map[string]*models.Balance, error) {
	params := &url.Values{}
	byteArray, err := h.privateApi(ctx, "GET", "/api/v3/account", params)
	if err != nil {
		return nil, err
	}
	value := gjson.ParseBytes(byteArray)

	m := make(map[string]*models.Balance)
	for _, v := range value.Get("balances").Array() {
		currency := strings.ToUpper(v.Get("asset").Str)
		free := v.Get("free").Float()
		locked := v.Get("locked").Float()
		m[currency] = models.NewBalance(free, locked)
	}
	return m, nil
}

func (h *BinanceApi) MarketBuy(ctx context.Context, pair models.CurrencyPair, amount float64) (*models.Order, error) {
	step, err := h.LotStep(ctx, pair)
	if err != nil {
		return nil, err
	}
	quantity := FloorFloat64ToStr(amount, public.PrecisionFromStep(step))

	params := &url.Values{}
	params.Set("symbol", h.Symbol(pair))
	params.Set("side", "BUY")
	params.Set("type", "MARKET")
	params.Set("quantity", quantity)
	params.Set("newOrderRespType", "RESULT")

	byteArray, err := h.privateApi(ctx, "POST", "/api/v3/order", params)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to place order for %s", pair.Symbol())
	}
	value := gjson.ParseBytes(byteArray)
	if !value.Get("orderId").Exists() {
		return nil, errors.Errorf("failed to parse order response: %s", string(byteArray))
	}
	return &models.Order{
		ExchangeOrderID: value.Get("orderId").String(),
		Symbol:          pair.Symbol(),
		Side:            models.Buy,
		Type:            models.Market,
		Amount:          value.Get("origQty").Float(),
		Filled:          value.Get("executedQty").Float(),
		Status:          value.Get("status").Str,
	}, nil
}
