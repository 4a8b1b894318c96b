package calendly

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// SignatureHeader carries "t=<unix seconds>,v1=<hex HMAC-SHA256 of "t.body">".
const SignatureHeader = "Calendly-Webhook-Signature"

// SignatureTolerance bounds the age of a signed delivery.
const SignatureTolerance = 3 * time.Minute

var (
	ErrMissingSignature = errors.New("missing webhook signature")
	ErrInvalidSignature = errors.New("invalid webhook signature")
	ErrStaleSignature   = errors.New("webhook signature too old")
)

// Sign returns the header value for body signed with key at t.
func Sign(key string, body []byte, t time.Time) string {
	ts := strconv.FormatInt(t.Unix(), 10)
	return "t=" + ts + ",v1=" + digest(key, ts, body)
}

// VerifySignature checks header against body and key as of now.
func VerifySignature(header string, body []byte, key string, now time.Time) error {
	if header == "" {
		return ErrMissingSignature
	}

	var ts, sig string
	for _, part := range strings.Split(header, ",") {
		kv := strings.SplitN(strings.TrimSpace(part), "=", 2)
		if len(kv) != 2 {
			continue
		}
		switch kv[0] {
		case "t":
			ts = kv[1]
		case "v1":
			sig = kv[1]
		}
	}
	if ts == "" || sig == "" {
		return ErrInvalidSignature
	}

	unix, err := strconv.ParseInt(ts, 10, 64)
	if err != nil {
		return ErrInvalidSignature
	}
	if now.Sub(time.Unix(unix, 0)) > SignatureTolerance {
		return ErrStaleSignature
	}

	want := digest(key, ts, body)
	if !hmac.Equal([]byte(want), []byte(strings.ToLower(sig))) {
		return ErrInvalidSignature
	}
	return nil
}

func digest(key, ts string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(key))
	mac.Write([]byte(ts + "."))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}
