// Command stubserver runs a minimal in-memory trading backend for local
// development. It serves the three desk channels on their conventional
// ports so cmd/desk can run without the production services.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

type bookJSON struct {
	ID   string `json:"ID"`
	Name string `json:"Name"`
}

type dealJSON struct {
	Ticker   string `json:"ticker"`
	Quantity string `json:"quantity"`
	Date     string `json:"date"`
}

type quoteJSON struct {
	Date  string `json:"date"`
	Open  string `json:"open"`
	High  string `json:"high"`
	Low   string `json:"low"`
	Close string `json:"close"`
}

// desk holds the stub's mutable world: deals per trading book. Booking
// inserts here and the market data channel reads from here, so a booked
// trade shows up on the next deals refresh.
type deskData struct {
	mu    sync.Mutex
	deals map[string][]dealJSON
}

var (
	tickers = []string{"EURUSD", "GBPUSD", "USDJPY", "XAUUSD"}

	tradingBooks = []bookJSON{
		{ID: "TB1", Name: "FX Spot"},
		{ID: "TB2", Name: "FX Forwards"},
		{ID: "TB3", Name: "Metals"},
	}

	customerBooks = []bookJSON{
		{ID: "CB1", Name: "Acme Corp"},
		{ID: "CB2", Name: "Globex"},
	}

	reportNames = []string{"pv_summary", "delta_ladder", "var_daily"}
)

func seedDeals() map[string][]dealJSON {
	return map[string][]dealJSON{
		"TB1": {
			{Ticker: "EURUSD", Quantity: "1000000", Date: "2026-08-27"},
			{Ticker: "GBPUSD", Quantity: "-250000", Date: "2026-08-28"},
		},
		"TB2": {
			{Ticker: "USDJPY", Quantity: "500000", Date: "2026-08-26"},
		},
		"TB3": {
			{Ticker: "XAUUSD", Quantity: "100", Date: "2026-08-28"},
		},
	}
}

func main() {
	marketAddr := flag.String("market-addr", ":9002", "market data listen address")
	bookingAddr := flag.String("booking-addr", ":9003", "booking listen address")
	riskAddr := flag.String("risk-addr", ":9004", "risk report listen address")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	data := &deskData{deals: seedDeals()}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(serve(ctx, logger, "marketdata", *marketAddr, marketDataHandler(logger, data)))
	g.Go(serve(ctx, logger, "booking", *bookingAddr, bookingHandler(logger, data)))
	g.Go(serve(ctx, logger, "riskreport", *riskAddr, riskReportHandler(logger)))

	if err := g.Wait(); err != nil {
		logger.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func serve(ctx context.Context, logger *slog.Logger, name, addr string, h http.Handler) func() error {
	return func() error {
		srv := &http.Server{Addr: addr, Handler: h}
		errCh := make(chan error, 1)

		go func() {
			logger.Info("listening", "channel", name, "addr", addr)
			errCh <- srv.ListenAndServe()
		}()

		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		case err := <-errCh:
			return fmt.Errorf("%s: %w", name, err)
		}
	}
}

func writeJSON(conn *websocket.Conn, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return conn.WriteMessage(websocket.TextMessage, data)
}

// marketDataHandler pushes the reference data on connect and answers
// chart and deals requests.
func marketDataHandler(logger *slog.Logger, data *deskData) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Error("upgrade failed", "channel", "marketdata", "error", err)
			return
		}
		defer conn.Close()
		logger.Info("client connected", "channel", "marketdata", "remote", conn.RemoteAddr())

		initial := []any{
			map[string]any{"tickers": tickers},
			map[string]any{"books": map[string]any{
				"trading_book":  tradingBooks,
				"customer_book": customerBooks,
			}},
		}
		for _, msg := range initial {
			if err := writeJSON(conn, msg); err != nil {
				return
			}
		}

		for {
			_, payload, err := conn.ReadMessage()
			if err != nil {
				logger.Info("client gone", "channel", "marketdata", "error", err)
				return
			}
			if err := handleMarketCommand(conn, data, string(payload)); err != nil {
				logger.Error("write failed", "channel", "marketdata", "error", err)
				return
			}
		}
	})
}

func handleMarketCommand(conn *websocket.Conn, data *deskData, cmd string) error {
	verb, arg, _ := strings.Cut(strings.TrimSpace(cmd), " ")
	switch verb {
	case "ticker_for_chart":
		return writeJSON(conn, map[string]any{
			"ticker": arg,
			"quotes": quotesFor(arg),
		})
	case "book_id_for_deals":
		data.mu.Lock()
		deals := append([]dealJSON(nil), data.deals[arg]...)
		data.mu.Unlock()
		return writeJSON(conn, map[string]any{"deals": deals})
	}
	return nil
}

// quotesFor fabricates a short deterministic daily series per ticker.
func quotesFor(ticker string) []quoteJSON {
	base := 1.0 + float64(len(ticker)%5)*0.1
	quotes := make([]quoteJSON, 0, 5)
	day := time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		open := base + float64(i)*0.01
		quotes = append(quotes, quoteJSON{
			Date:  day.AddDate(0, 0, i).Format("2006-01-02"),
			Open:  fmt.Sprintf("%.4f", open),
			High:  fmt.Sprintf("%.4f", open+0.02),
			Low:   fmt.Sprintf("%.4f", open-0.01),
			Close: fmt.Sprintf("%.4f", open+0.005),
		})
	}
	return quotes
}

// bookingHandler accepts "tradingBook customerBook ticker quantity date"
// text frames, inserts the deal, and acknowledges with "1".
func bookingHandler(logger *slog.Logger, data *deskData) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Error("upgrade failed", "channel", "booking", "error", err)
			return
		}
		defer conn.Close()
		logger.Info("client connected", "channel", "booking", "remote", conn.RemoteAddr())

		for {
			_, payload, err := conn.ReadMessage()
			if err != nil {
				logger.Info("client gone", "channel", "booking", "error", err)
				return
			}

			fields := strings.Fields(string(payload))
			if len(fields) != 5 {
				logger.Error("malformed booking", "payload", string(payload))
				continue
			}
			book, ticker, quantity, date := fields[0], fields[2], fields[3], fields[4]

			data.mu.Lock()
			data.deals[book] = append(data.deals[book], dealJSON{
				Ticker:   ticker,
				Quantity: quantity,
				Date:     date,
			})
			data.mu.Unlock()
			logger.Info("trade booked", "book", book, "ticker", ticker, "quantity", quantity)

			if err := conn.WriteMessage(websocket.TextMessage, []byte("1")); err != nil {
				logger.Error("ack failed", "channel", "booking", "error", err)
				return
			}
		}
	})
}

// riskReportHandler advertises the report names on connect and answers
// "reportName bookID" requests with a flat result object. Field order in
// the JSON text is what the desk displays, so results are marshalled by
// hand here.
func riskReportHandler(logger *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Error("upgrade failed", "channel", "riskreport", "error", err)
			return
		}
		defer conn.Close()
		logger.Info("client connected", "channel", "riskreport", "remote", conn.RemoteAddr())

		if err := writeJSON(conn, map[string]any{"risk_reports": reportNames}); err != nil {
			return
		}

		for {
			_, payload, err := conn.ReadMessage()
			if err != nil {
				logger.Info("client gone", "channel", "riskreport", "error", err)
				return
			}

			name, book, _ := strings.Cut(strings.TrimSpace(string(payload)), " ")
			result, ok := reportResult(name, book)
			if !ok {
				result = fmt.Sprintf(`{"error_msg":"unknown report %q"}`, name)
			}
			if err := conn.WriteMessage(websocket.TextMessage, []byte(result)); err != nil {
				logger.Error("write failed", "channel", "riskreport", "error", err)
				return
			}
		}
	})
}

func reportResult(name, book string) (string, bool) {
	switch name {
	case "pv_summary":
		return fmt.Sprintf(`{"Book":%q,"Total PV":"1250340.55","Currency":"USD","As Of":"2026-08-28"}`, book), true
	case "delta_ladder":
		return fmt.Sprintf(`{"Book":%q,"1Y":"-420.7","2Y":"118.2","5Y":"960.0"}`, book), true
	case "var_daily":
		return fmt.Sprintf(`{"Book":%q,"VaR 95":"84211.90","VaR 99":"132880.10"}`, book), true
	}
	return "", false
}
