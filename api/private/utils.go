package private

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"math"
	"strconv"
)

func computeHmac256(message string, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(message))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func computeHmac256Hex(message string, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(message))
	return hex.EncodeToString(mac.Sum(nil))
}

// FloorFloat64ToStr truncates f to prec decimals so an order never asks for
// more than the computed quantity.
func FloorFloat64ToStr(f float64, prec int) string {
	pow := math.Pow10(prec)
	// the epsilon absorbs binary noise such as 0.025 being 0.024999...
	floored := math.Floor(f*pow+1e-9) / pow
	return strconv.FormatFloat(floored, 'f', prec, 64)
}
