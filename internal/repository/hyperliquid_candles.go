package repository

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"ParamSweep/internal/domain/models"
	domrepo "ParamSweep/internal/domain/repository"
	"ParamSweep/internal/service/ratelimit"
	pkghttp "ParamSweep/pkg/http"
	"ParamSweep/pkg/util"
)

const (
	DefaultHyperliquidURL = "https://api.hyperliquid.xyz"
	hyperliquidPageSize   = 5000
)

// HyperliquidCandles fetches candle snapshots from the Hyperliquid info API.
type HyperliquidCandles struct {
	client  *pkghttp.Client
	baseURL string
	limiter *ratelimit.Limiter
	now     func() time.Time
}

func NewHyperliquidCandles(client *pkghttp.Client, baseURL string, limiter *ratelimit.Limiter) *HyperliquidCandles {
	if baseURL == "" {
		baseURL = DefaultHyperliquidURL
	}
	return &HyperliquidCandles{client: client, baseURL: baseURL, limiter: limiter, now: time.Now}
}

type hlCandleRequest struct {
	Type string `json:"type"`
	Req  struct {
		Coin      string `json:"coin"`
		Interval  string `json:"interval"`
		StartTime int64  `json:"startTime"`
		EndTime   int64  `json:"endTime"`
	} `json:"req"`
}

type hlCandle struct {
	OpenTime int64  `json:"t"`
	Open     string `json:"o"`
	High     string `json:"h"`
	Low      string `json:"l"`
	Close    string `json:"c"`
	Volume   string `json:"v"`
}

// Candles pages through [now-lookback, now]. Every page request waits on
// the shared limiter.
func (h *HyperliquidCandles) Candles(ctx context.Context, q domrepo.CandleQuery) (models.Series, error) {
	step := q.Interval.Duration()
	if step <= 0 {
		return nil, fmt.Errorf("unsupported interval %q", q.Interval)
	}
	start, end := util.AlignWindow(h.now(), q.Lookback, step)

	var out models.Series
	for from := start; from.Before(end); {
		to := from.Add(step * hyperliquidPageSize)
		if to.After(end) {
			to = end
		}
		page, err := h.page(ctx, q, from, to)
		if err != nil {
			return nil, err
		}
		out = append(out, page...)
		from = to
	}
	return out, nil
}

func (h *HyperliquidCandles) page(ctx context.Context, q domrepo.CandleQuery, from, to time.Time) (models.Series, error) {
	if err := h.limiter.Wait(ctx, "hyperliquid"); err != nil {
		return nil, err
	}

	var body hlCandleRequest
	body.Type = "candleSnapshot"
	body.Req.Coin = q.Coin
	body.Req.Interval = string(q.Interval)
	body.Req.StartTime = from.UnixMilli()
	body.Req.EndTime = to.UnixMilli()

	var raw []hlCandle
	err := h.client.SendAndParse(ctx, &pkghttp.RequestOptions{
		Method: http.MethodPost,
		URL:    h.baseURL + "/info",
		Body:   body,
	}, &raw)
	if err != nil {
		return nil, fmt.Errorf("hyperliquid candles %s: %w", q.Coin, err)
	}

	out := make(models.Series, 0, len(raw))
	for _, c := range raw {
		candle, err := parseCandle(c.OpenTime, c.Open, c.High, c.Low, c.Close, c.Volume)
		if err != nil {
			return nil, fmt.Errorf("hyperliquid candles %s: %w", q.Coin, err)
		}
		out = append(out, candle)
	}
	return out, nil
}

// parseCandle converts exchange string fields to a Candle.
func parseCandle(openTimeMs int64, open, high, low, closePrice, volume string) (models.Candle, error) {
	fields := [5]string{open, high, low, closePrice, volume}
	var vals [5]float64
	for i, f := range fields {
		d, err := decimal.NewFromString(f)
		if err != nil {
			return models.Candle{}, fmt.Errorf("parse %q: %w", f, err)
		}
		vals[i] = d.InexactFloat64()
	}
	return models.Candle{
		Timestamp: time.UnixMilli(openTimeMs).UTC(),
		Open:      vals[0],
		High:      vals[1],
		Low:       vals[2],
		Close:     vals[3],
		Volume:    vals[4],
	}, nil
}
