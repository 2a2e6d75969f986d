package server

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/kimchiscan/server/internal/domain"
)

// normalizeExchange case-folds then title-cases a venue name to its canonical
// form. Unknown names are rejected before they reach the store.
func normalizeExchange(name string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "binance":
		return domain.ExchangeBinance, nil
	case "upbit":
		return domain.ExchangeUpbit, nil
	case "bithumb":
		return domain.ExchangeBithumb, nil
	}
	return "", fmt.Errorf("unknown exchange %q (allowed: binance, upbit, bithumb)", name)
}

// fxSourceParam parses ?fx= with a caller-chosen default: usdkrw for list
// reads, usdtkrw for single-symbol reads.
func fxSourceParam(r *http.Request, fallback domain.FxSource) (domain.FxSource, error) {
	raw := r.URL.Query().Get("fx")
	if raw == "" {
		return fallback, nil
	}
	return domain.ParseFxSource(strings.ToLower(raw))
}

// feesParam parses ?fees=include|exclude with a caller-chosen default.
func feesParam(r *http.Request, fallback bool) (bool, error) {
	switch strings.ToLower(r.URL.Query().Get("fees")) {
	case "":
		return fallback, nil
	case "include":
		return true, nil
	case "exclude":
		return false, nil
	}
	return false, fmt.Errorf("invalid fees value %q (allowed: include, exclude)", r.URL.Query().Get("fees"))
}

// intParam parses an optional positive integer query parameter.
func intParam(r *http.Request, name string, fallback int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 {
		return 0, fmt.Errorf("invalid %s value %q", name, raw)
	}
	return v, nil
}

// exchangePairParams resolves the required from/to venue parameters.
func exchangePairParams(r *http.Request) (from, to string, err error) {
	from, err = normalizeExchange(r.URL.Query().Get("from"))
	if err != nil {
		return "", "", fmt.Errorf("from: %w", err)
	}
	to, err = normalizeExchange(r.URL.Query().Get("to"))
	if err != nil {
		return "", "", fmt.Errorf("to: %w", err)
	}
	return from, to, nil
}
