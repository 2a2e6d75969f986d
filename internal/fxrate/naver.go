package fxrate

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/kimchiscan/server/internal/httpclient"
	"github.com/shopspring/decimal"
)

// The Naver calculator endpoint is not a stable API: the response is scanned
// for numeric tokens instead of being decoded structurally.
const naverFxPath = "/p/csearch/content/qapirender.nhn?key=calculator&pkid=141&q=%ED%99%98%EC%9C%A8&where=m&u1=keb&u6=standardUnit&u7=0&u3=USD&u4=KRW&u8=down&u2=1"

// Plausible USD/KRW band; tokens outside it are page noise (years, counts).
const (
	minPlausibleRate = 900.0
	maxPlausibleRate = 2000.0
)

var errNoRateToken = errors.New("no usd/krw token in naver response")

// fetchFromNaver scrapes the calculator endpoint. The endpoint rejects bare
// clients, so browser-like headers are required.
func (s *Service) fetchFromNaver(ctx context.Context) (decimal.Decimal, error) {
	text, err := s.naver.GetText(ctx, naverFxPath,
		httpclient.WithHeader("User-Agent",
			"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/116.0 Safari/537.36"),
		httpclient.WithHeader("Referer", "https://m.search.naver.com/"),
		httpclient.WithHeader("Accept", "*/*"),
	)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("fetch naver fx: %w", err)
	}

	rate, err := scanForRate(text)
	if err != nil {
		return decimal.Decimal{}, err
	}

	// Widened to decimal at 4 places immediately; the float leaves scope here.
	return decimal.NewFromFloat(rate).Round(4), nil
}

// scanForRate extracts comma-separated numeric tokens and keeps the maximum
// value inside the plausible band. The maximum wins because the page may also
// carry TTB-style rates slightly below the base rate.
func scanForRate(text string) (float64, error) {
	best := 0.0
	found := false

	flush := func(token string) {
		if token == "" {
			return
		}
		v, err := strconv.ParseFloat(strings.ReplaceAll(token, ",", ""), 64)
		if err != nil {
			return
		}
		if v < minPlausibleRate || v > maxPlausibleRate {
			return
		}
		if !found || v > best {
			best = v
			found = true
		}
	}

	var cur strings.Builder
	for _, ch := range text {
		if (ch >= '0' && ch <= '9') || ch == '.' || ch == ',' {
			cur.WriteRune(ch)
			continue
		}
		flush(cur.String())
		cur.Reset()
	}
	flush(cur.String())

	if !found {
		return 0, errNoRateToken
	}
	return best, nil
}
