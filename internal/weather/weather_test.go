package weather

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/garnizeh/hikelog/internal/config"
	"github.com/garnizeh/hikelog/pkg/models"
)

func testWeatherServer(t *testing.T, hours int, temp, cloud, precip float64) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/weather/point" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "test-key" {
			t.Errorf("Authorization = %q", r.Header.Get("Authorization"))
		}
		q := r.URL.Query()
		if q.Get("params") != forecastParams {
			t.Errorf("params = %q", q.Get("params"))
		}

		type hour struct {
			Time           string             `json:"time"`
			AirTemperature map[string]float64 `json:"airTemperature"`
			CloudCover     map[string]float64 `json:"cloudCover"`
			Precipitation  map[string]float64 `json:"precipitation"`
		}
		out := struct {
			Hours []hour `json:"hours"`
		}{}
		for i := 0; i < hours; i++ {
			out.Hours = append(out.Hours, hour{
				AirTemperature: map[string]float64{"sg": temp},
				CloudCover:     map[string]float64{"sg": cloud},
				Precipitation:  map[string]float64{"sg": precip},
			})
		}
		json.NewEncoder(w).Encode(out)
	}))
}

func testClient(baseURL string) *Client {
	return New(config.WeatherConfig{
		BaseURL:         baseURL,
		APIKey:          "test-key",
		Timeout:         2 * time.Second,
		MaxForecastDays: 16,
	}, nil)
}

func TestPointForecast(t *testing.T) {
	srv := testWeatherServer(t, 24, 18.5, 10, 0)
	defer srv.Close()

	date := time.Now().AddDate(0, 0, 2).Format(models.DateLayout)
	info, err := testClient(srv.URL).PointForecast(context.Background(), 47.5, -122.2, date)
	if err != nil {
		t.Fatalf("PointForecast: %v", err)
	}

	if info.Temperature != 18.5 {
		t.Errorf("Temperature = %v", info.Temperature)
	}
	if info.Condition != "Sunny" {
		t.Errorf("Condition = %q", info.Condition)
	}
	if info.Date != date {
		t.Errorf("Date = %q", info.Date)
	}
}

func TestPointForecastBeyondRange(t *testing.T) {
	srv := testWeatherServer(t, 24, 10, 0, 0)
	defer srv.Close()

	date := time.Now().AddDate(0, 0, 30).Format(models.DateLayout)
	if _, err := testClient(srv.URL).PointForecast(context.Background(), 47.5, -122.2, date); err == nil {
		t.Fatal("want error for a date beyond the horizon")
	}
}

func TestPointForecastNoData(t *testing.T) {
	srv := testWeatherServer(t, 0, 0, 0, 0)
	defer srv.Close()

	date := time.Now().AddDate(0, 0, 1).Format(models.DateLayout)
	if _, err := testClient(srv.URL).PointForecast(context.Background(), 47.5, -122.2, date); err == nil {
		t.Fatal("want error when the provider has no hours")
	}
}

func TestWithinForecastRange(t *testing.T) {
	c := testClient("http://unused")

	tests := []struct {
		name string
		date string
		want bool
	}{
		{"tomorrow", time.Now().AddDate(0, 0, 1).Format(models.DateLayout), true},
		{"past", "2020-01-01", true},
		{"next month", time.Now().AddDate(0, 1, 0).Format(models.DateLayout), false},
		{"garbage", "not-a-date", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.WithinForecastRange(tt.date); got != tt.want {
				t.Errorf("WithinForecastRange(%q) = %v, want %v", tt.date, got, tt.want)
			}
		})
	}
}

func TestCondition(t *testing.T) {
	tests := []struct {
		cloud, precip float64
		want          string
	}{
		{0, 10, "Stormy"},
		{0, 1, "Rainy"},
		{90, 0, "Cloudy"},
		{50, 0, "Partly Cloudy"},
		{10, 0, "Sunny"},
	}
	for _, tt := range tests {
		if got := condition(tt.cloud, tt.precip); got != tt.want {
			t.Errorf("condition(%v, %v) = %q, want %q", tt.cloud, tt.precip, got, tt.want)
		}
	}
}
