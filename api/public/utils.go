package public

import (
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/fxpgr/go-crypto-cart/logger"
	"github.com/pkg/errors"
)

func requestGetAsChrome(ctx context.Context, url string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return req, err
	}
	req.Header.Add("User-Agent", "Mozilla/5.0 (Windows NT 6.3; WOW64; Trident/7.0; MAFSJS; rv:11.0) like Gecko")
	return req, err
}

// DoRequest sends req and returns the body of a 2xx response.
func DoRequest(client *http.Client, req *http.Request) ([]byte, error) {
	logger.Get().Debugw("exchange request", "method", req.Method, "path", req.URL.Path)
	resp, err := client.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to fetch %s", req.URL.Path)
	}
	defer resp.Body.Close()
	byteArray, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to fetch %s", req.URL.Path)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errors.Errorf("HttpStatusCode:%d ,Desc:%s", resp.StatusCode, string(byteArray))
	}
	return byteArray, nil
}

// PrecisionFromStep returns the number of decimals in a step size such as
// "0.00010000" (4). A step of "1" or more yields 0.
func PrecisionFromStep(step string) int {
	i := strings.IndexByte(step, '.')
	if i < 0 {
		return 0
	}
	return len(strings.TrimRight(step[i+1:], "0"))
}
