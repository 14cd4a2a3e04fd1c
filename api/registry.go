package api

import (
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/fxpgr/go-crypto-cart/api/private"
	"github.com/fxpgr/go-crypto-cart/api/public"
	"github.com/fxpgr/go-crypto-cart/models"
	"github.com/pkg/errors"
)

var (
	ErrUnsupportedExchange   = errors.New("unsupported exchange")
	ErrUnsupportedCapability = errors.New("unsupported capability")
)

type descriptor struct {
	has        map[Capability]bool
	passphrase bool
}

var all = map[Capability]bool{
	FetchBalance: true,
	FetchTickers: true,
	CreateOrder:  true,
}

var registry = map[string]descriptor{
	"binance":   {has: all},
	"binanceus": {has: all},
	"hitbtc":    {has: all},
	"kraken":    {has: all},
	"kucoin":    {has: all, passphrase: true},
}

// Exchanges lists every supported exchange id in alphabetical order.
func Exchanges() []string {
	ids := make([]string, 0, len(registry))
	for id := range registry {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func IsSupported(id string) bool {
	_, ok := registry[strings.ToLower(id)]
	return ok
}

func RequiresPassphrase(id string) bool {
	return registry[strings.ToLower(id)].passphrase
}

type options struct {
	timeout   time.Duration
	baseURL   string
	transport http.RoundTripper
}

type Option func(*options)

func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// WithBaseURL points the exchange at another REST endpoint, e.g. a sandbox.
func WithBaseURL(url string) Option {
	return func(o *options) { o.baseURL = url }
}

func WithTransport(rt http.RoundTripper) Option {
	return func(o *options) { o.transport = rt }
}

func NewExchange(id string, creds models.Credentials, opts ...Option) (Exchange, error) {
	id = strings.ToLower(id)
	d, ok := registry[id]
	if !ok {
		return nil, errors.Wrapf(ErrUnsupportedExchange, "%q", id)
	}
	o := &options{timeout: 20 * time.Second}
	for _, opt := range opts {
		opt(o)
	}
	client, err := private.NewClient(id, creds, public.Options{
		BaseURL:    o.baseURL,
		HttpClient: &http.Client{Timeout: o.timeout, Transport: o.transport},
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to init %s", id)
	}
	has := make(map[Capability]bool, len(d.has))
	for c, v := range d.has {
		has[c] = v
	}
	return &exchange{id: id, has: has, client: client}, nil
}
