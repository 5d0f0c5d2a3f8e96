package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newAlphaVantageTestService(handler http.HandlerFunc) (*AlphaVantageService, *httptest.Server) {
	server := httptest.NewServer(handler)
	svc := NewAlphaVantageService("test-key")
	svc.baseURL = server.URL
	return svc, server
}

func TestFetchGlobalQuote_Success(t *testing.T) {
	svc, server := newAlphaVantageTestService(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("function"); got != "GLOBAL_QUOTE" {
			t.Errorf("expected function GLOBAL_QUOTE, got %s", got)
		}
		if got := r.URL.Query().Get("symbol"); got != "AAPL" {
			t.Errorf("expected symbol AAPL, got %s", got)
		}
		w.Write([]byte(`{
			"Global Quote": {
				"01. symbol": "AAPL",
				"05. price": "227.5200",
				"06. volume": "44923941",
				"09. change": "1.2300",
				"10. change percent": "0.5435%"
			}
		}`))
	})
	defer server.Close()

	snapshot, err := svc.fetchGlobalQuote(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if snapshot.Price != 227.52 {
		t.Errorf("expected price 227.52, got %f", snapshot.Price)
	}
	if snapshot.Change != 1.23 {
		t.Errorf("expected change 1.23, got %f", snapshot.Change)
	}
	if snapshot.ChangePercent != 0.5435 {
		t.Errorf("expected change percent 0.5435, got %f", snapshot.ChangePercent)
	}
	if snapshot.Volume != 44923941 {
		t.Errorf("expected volume 44923941, got %d", snapshot.Volume)
	}
	if snapshot.Currency != "USD" {
		t.Errorf("expected USD, got %s", snapshot.Currency)
	}
	if snapshot.Source != BreakerAlphaVantage {
		t.Errorf("expected source alphavantage, got %s", snapshot.Source)
	}
}

func TestFetchGlobalQuote_ErrorMessage(t *testing.T) {
	svc, server := newAlphaVantageTestService(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"Error Message": "Invalid API call for symbol NOTREAL"}`))
	})
	defer server.Close()

	_, err := svc.fetchGlobalQuote(context.Background(), "NOTREAL")
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if KindOf(err) != KindInvalidSymbol {
		t.Errorf("expected invalid_symbol, got %v", KindOf(err))
	}
}

func TestFetchGlobalQuote_RateLimitNote(t *testing.T) {
	svc, server := newAlphaVantageTestService(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"Note": "Thank you for using Alpha Vantage! Our standard API rate limit is 25 requests per day."}`))
	})
	defer server.Close()

	_, err := svc.fetchGlobalQuote(context.Background(), "AAPL")
	if KindOf(err) != KindRateLimited {
		t.Errorf("expected rate_limited, got %v", KindOf(err))
	}
}

func TestFetchGlobalQuote_EmptyQuote(t *testing.T) {
	svc, server := newAlphaVantageTestService(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"Global Quote": {}}`))
	})
	defer server.Close()

	_, err := svc.fetchGlobalQuote(context.Background(), "ZZZZ")
	if KindOf(err) != KindDataNotFound {
		t.Errorf("expected data_not_found, got %v", KindOf(err))
	}
}

func TestFetchGlobalQuote_ServerError(t *testing.T) {
	svc, server := newAlphaVantageTestService(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	defer server.Close()

	_, err := svc.fetchGlobalQuote(context.Background(), "AAPL")
	if KindOf(err) != KindServiceUnavailable {
		t.Errorf("expected service_unavailable, got %v", KindOf(err))
	}
}

func TestFetchGlobalQuote_TooManyRequests(t *testing.T) {
	svc, server := newAlphaVantageTestService(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})
	defer server.Close()

	_, err := svc.fetchGlobalQuote(context.Background(), "AAPL")
	if KindOf(err) != KindRateLimited {
		t.Errorf("expected rate_limited, got %v", KindOf(err))
	}
}
