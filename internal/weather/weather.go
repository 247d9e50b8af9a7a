package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/garnizeh/hikelog/internal/config"
	"github.com/garnizeh/hikelog/pkg/models"
)

const forecastParams = "airTemperature,cloudCover,precipitation"

// Info is the compact forecast used to prefill a hike's weather fields.
type Info struct {
	Temperature float64 `json:"temperature"`
	Condition   string  `json:"condition"`
	Date        string  `json:"date"`
}

// Client fetches point forecasts from a StormGlass-compatible API.
type Client struct {
	cfg    config.WeatherConfig
	client *http.Client
	logger *slog.Logger
}

func New(cfg config.WeatherConfig, logger *slog.Logger) *Client {
	if cfg.MaxForecastDays <= 0 {
		cfg.MaxForecastDays = 16
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
}

// WithinForecastRange reports whether the given YYYY-MM-DD date is inside the
// provider's forecast horizon.
func (c *Client) WithinForecastRange(date string) bool {
	d, err := time.Parse(models.DateLayout, date)
	if err != nil {
		return false
	}
	days := int(time.Until(d).Hours() / 24)
	return days <= c.cfg.MaxForecastDays
}

type pointResponse struct {
	Hours []struct {
		Time           string             `json:"time"`
		AirTemperature map[string]float64 `json:"airTemperature"`
		CloudCover     map[string]float64 `json:"cloudCover"`
		Precipitation  map[string]float64 `json:"precipitation"`
	} `json:"hours"`
}

// PointForecast returns the forecast for the location on the given date.
func (c *Client) PointForecast(ctx context.Context, lat, lng float64, date string) (*Info, error) {
	if !c.WithinForecastRange(date) {
		return nil, fmt.Errorf("date %s is beyond the %d-day forecast range", date, c.cfg.MaxForecastDays)
	}

	q := url.Values{}
	q.Set("lat", fmt.Sprintf("%f", lat))
	q.Set("lng", fmt.Sprintf("%f", lng))
	q.Set("params", forecastParams)
	q.Set("start", date)
	q.Set("end", date)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimRight(c.cfg.BaseURL, "/")+"/weather/point?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", c.cfg.APIKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("weather request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("weather endpoint returned status %d", resp.StatusCode)
	}

	var out pointResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode weather response: %w", err)
	}
	if len(out.Hours) == 0 {
		return nil, fmt.Errorf("no forecast data for %s", date)
	}

	// midday hour if available, else the first
	h := out.Hours[0]
	if len(out.Hours) > 12 {
		h = out.Hours[12]
	}

	return &Info{
		Temperature: h.AirTemperature["sg"],
		Condition:   condition(h.CloudCover["sg"], h.Precipitation["sg"]),
		Date:        date,
	}, nil
}

func condition(cloudCover, precipitation float64) string {
	switch {
	case precipitation > 5:
		return "Stormy"
	case precipitation > 0.1:
		return "Rainy"
	case cloudCover > 75:
		return "Cloudy"
	case cloudCover > 30:
		return "Partly Cloudy"
	default:
		return "Sunny"
	}
}
