package repository

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/adshao/go-binance/v2"

	"ParamSweep/internal/domain/models"
	domrepo "ParamSweep/internal/domain/repository"
	"ParamSweep/internal/service/ratelimit"
	"ParamSweep/pkg/util"
)

const binancePageSize = 1000

// BinanceCandles fetches spot klines for "<COIN><QUOTE>" symbols.
type BinanceCandles struct {
	client  *binance.Client
	quote   string
	limiter *ratelimit.Limiter
	now     func() time.Time
}

// NewBinanceCandles creates a public (unauthenticated) klines reader.
// An empty baseURL keeps the library default.
func NewBinanceCandles(baseURL, quote string, timeout time.Duration, limiter *ratelimit.Limiter) *BinanceCandles {
	client := binance.NewClient("", "")
	if baseURL != "" {
		client.BaseURL = baseURL
	}
	client.HTTPClient = &http.Client{Timeout: timeout}
	return &BinanceCandles{
		client:  client,
		quote:   strings.ToUpper(quote),
		limiter: limiter,
		now:     time.Now,
	}
}

func (b *BinanceCandles) symbol(coin string) string {
	return strings.ToUpper(coin) + b.quote
}

func (b *BinanceCandles) Candles(ctx context.Context, q domrepo.CandleQuery) (models.Series, error) {
	step := q.Interval.Duration()
	if step <= 0 {
		return nil, fmt.Errorf("unsupported interval %q", q.Interval)
	}
	start, end := util.AlignWindow(b.now(), q.Lookback, step)
	symbol := b.symbol(q.Coin)

	out := make(models.Series, 0, domrepo.CandlesFor(end.Sub(start), q.Interval))
	for from := start; from.Before(end); {
		if err := b.limiter.Wait(ctx, "binance"); err != nil {
			return nil, err
		}
		klines, err := b.client.NewKlinesService().
			Symbol(symbol).
			Interval(string(q.Interval)).
			StartTime(from.UnixMilli()).
			EndTime(end.UnixMilli()).
			Limit(binancePageSize).
			Do(ctx)
		if err != nil {
			return nil, fmt.Errorf("binance klines %s: %w", symbol, err)
		}
		if len(klines) == 0 {
			break
		}
		for _, k := range klines {
			c, err := parseCandle(k.OpenTime, k.Open, k.High, k.Low, k.Close, k.Volume)
			if err != nil {
				return nil, fmt.Errorf("binance klines %s: %w", symbol, err)
			}
			out = append(out, c)
		}
		if len(klines) < binancePageSize {
			break
		}
		from = time.UnixMilli(klines[len(klines)-1].OpenTime).Add(step)
	}
	return out, nil
}
