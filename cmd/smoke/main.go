// Command smoke drives a running storefront through the full shopping flow
// with many concurrent sessions and checks the totals it reports.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/rl1809/scoop-shop/pkg/logger"
)

type panel struct {
	Empty bool `json:"empty"`
	Rows  []struct {
		ID       int `json:"id"`
		Quantity int `json:"quantity"`
		Amount   int `json:"amount"`
	} `json:"rows"`
	Total           int  `json:"total"`
	CheckoutEnabled bool `json:"checkout_enabled"`
}

type confirmation struct {
	Success bool   `json:"success"`
	Status  string `json:"status"`
	OrderID string `json:"order_id"`
	Summary struct {
		Total int `json:"total"`
	} `json:"summary"`
}

func main() {
	baseURL := flag.String("url", "http://localhost:8080", "storefront base URL")
	sessions := flag.Int("sessions", 50, "concurrent shopper sessions")
	timeout := flag.Duration("timeout", 30*time.Second, "overall timeout")
	flag.Parse()

	log, err := logger.New(logger.Options{Service: "smoke", Env: "dev", Level: "info"})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	var passed, failed atomic.Int32
	var mu sync.Mutex
	var failures []string

	start := time.Now()
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(16)
	for i := 0; i < *sessions; i++ {
		g.Go(func() error {
			if err := shop(gctx, *baseURL); err != nil {
				failed.Add(1)
				mu.Lock()
				failures = append(failures, fmt.Sprintf("session %d: %v", i, err))
				mu.Unlock()
				return nil
			}
			passed.Add(1)
			return nil
		})
	}
	g.Wait()
	elapsed := time.Since(start)

	for _, f := range failures {
		log.Error("scenario failed", zap.String("detail", f))
	}

	fmt.Println("========== SMOKE TEST RESULTS ==========")
	fmt.Printf("Sessions:   %d\n", *sessions)
	fmt.Printf("Passed:     %d\n", passed.Load())
	fmt.Printf("Failed:     %d\n", failed.Load())
	fmt.Printf("Duration:   %v\n", elapsed)
	fmt.Println("=========================================")

	if failed.Load() > 0 {
		fmt.Println("FAIL")
		os.Exit(1)
	}
	fmt.Println("PASS: every session checked out with the expected total")
}

// shop runs one session: add vanilla twice, drop chocolate, remove one
// vanilla, check the total, check out, confirm, then make sure the payment
// page bounces back to the catalog.
func shop(ctx context.Context, baseURL string) error {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return err
	}
	c := &client{
		base: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Jar:     jar,
			Timeout: 10 * time.Second,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}

	if _, err := c.expect(ctx, http.MethodGet, "/catalog", "", http.StatusOK); err != nil {
		return fmt.Errorf("open catalog: %w", err)
	}

	add := url.Values{"product_id": {"1"}}.Encode()
	for i := 0; i < 2; i++ {
		if _, err := c.expect(ctx, http.MethodPost, "/cart/items", add, http.StatusOK); err != nil {
			return fmt.Errorf("add: %w", err)
		}
	}
	if _, err := c.send(ctx, "/cart/drop", "text/plain", "2", http.StatusOK); err != nil {
		return fmt.Errorf("drop: %w", err)
	}
	body, err := c.expect(ctx, http.MethodPost, "/cart/items/1/remove", "", http.StatusOK)
	if err != nil {
		return fmt.Errorf("remove: %w", err)
	}

	var p panel
	if err := json.Unmarshal(body, &p); err != nil {
		return fmt.Errorf("decode panel: %w", err)
	}
	if p.Total != 200 || len(p.Rows) != 2 || !p.CheckoutEnabled {
		return fmt.Errorf("unexpected panel: total=%d rows=%d checkout=%v", p.Total, len(p.Rows), p.CheckoutEnabled)
	}

	if _, err := c.expect(ctx, http.MethodPost, "/cart/checkout", "", http.StatusSeeOther); err != nil {
		return fmt.Errorf("checkout: %w", err)
	}

	body, err = c.expect(ctx, http.MethodPost, "/payment/confirm", "", http.StatusOK)
	if err != nil {
		return fmt.Errorf("confirm: %w", err)
	}
	var conf confirmation
	if err := json.Unmarshal(body, &conf); err != nil {
		return fmt.Errorf("decode confirmation: %w", err)
	}
	if !conf.Success || conf.Summary.Total != 200 || conf.OrderID == "" {
		return fmt.Errorf("unexpected confirmation: %+v", conf)
	}

	if _, err := c.expect(ctx, http.MethodGet, "/payment", "", http.StatusSeeOther); err != nil {
		return fmt.Errorf("payment after confirm: %w", err)
	}
	return nil
}

type client struct {
	base string
	http *http.Client
}

func (c *client) expect(ctx context.Context, method, path, form string, status int) ([]byte, error) {
	ct := ""
	if form != "" {
		ct = "application/x-www-form-urlencoded"
	}
	resp, err := c.do(ctx, method, path, ct, strings.NewReader(form))
	if err != nil {
		return nil, err
	}
	return check(resp, status)
}

func (c *client) send(ctx context.Context, path, contentType, body string, status int) ([]byte, error) {
	resp, err := c.do(ctx, http.MethodPost, path, contentType, strings.NewReader(body))
	if err != nil {
		return nil, err
	}
	return check(resp, status)
}

func (c *client) do(ctx context.Context, method, path, contentType string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	return c.http.Do(req)
}

func check(resp *http.Response, status int) ([]byte, error) {
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != status {
		return nil, fmt.Errorf("status %d, want %d: %s", resp.StatusCode, status, strings.TrimSpace(string(body)))
	}
	return body, nil
}
