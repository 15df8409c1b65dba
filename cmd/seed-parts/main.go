// Command seed-parts posts a parts catalog to a running API server.
package main

import (
	"bytes"
	"context"
	"flag"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"golang.org/x/time/rate"

	"github.com/xenking/parts-depot/internal/catalog"
	"github.com/xenking/parts-depot/internal/domain/part"
)

func main() {
	var (
		apiURL      string
		catalogFile string
		rps         float64
	)

	flag.StringVar(&apiURL, "api-url", "", "API server base URL (or PARTS_API_URL env)")
	flag.StringVar(&catalogFile, "catalog-file", "db/seed/parts.json", "path to parts JSON file (.json or .json.gz)")
	flag.Float64Var(&rps, "rps", 10, "maximum create requests per second")
	flag.Parse()

	if apiURL == "" {
		apiURL = os.Getenv("PARTS_API_URL")
	}
	if apiURL == "" {
		slog.Error("API URL is required: set --api-url or PARTS_API_URL")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	s := &seeder{
		baseURL: strings.TrimRight(apiURL, "/"),
		client:  &http.Client{Timeout: 10 * time.Second},
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
	}
	if err := s.run(ctx, catalogFile); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

type seeder struct {
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
}

func (s *seeder) run(ctx context.Context, catalogFile string) error {
	slog.Info("reading catalog file", slog.String("path", catalogFile))

	parts, err := catalog.LoadFile(catalogFile)
	if err != nil {
		return errors.Wrap(err, "load catalog")
	}

	slog.Info("creating parts", slog.Int("count", len(parts)))

	// Sequential so server-assigned IDs follow catalog order.
	for _, p := range parts {
		if err := s.limiter.Wait(ctx); err != nil {
			return errors.Wrap(err, "wait for rate limiter")
		}
		id, err := s.createPart(ctx, p)
		if err != nil {
			return errors.Wrapf(err, "create part %q", p.Description)
		}
		slog.Info("created part", slog.Int64("id", id), slog.String("description", p.Description))
	}
	return nil
}

func (s *seeder) createPart(ctx context.Context, p part.NewPart) (int64, error) {
	var e jx.Encoder
	e.Obj(func(e *jx.Encoder) {
		e.Field("description", func(e *jx.Encoder) { e.Str(p.Description) })
		e.Field("price", func(e *jx.Encoder) { e.Num(jx.Num(p.Price.String())) })
		e.Field("quantity", func(e *jx.Encoder) { e.Int(p.Quantity) })
	})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/parts", bytes.NewReader(e.Bytes()))
	if err != nil {
		return 0, errors.Wrap(err, "build request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return 0, errors.Wrap(err, "send request")
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, errors.Wrap(err, "read response")
	}
	if resp.StatusCode != http.StatusCreated {
		return 0, errors.Errorf("unexpected status %d: %s", resp.StatusCode, bytes.TrimSpace(body))
	}

	var id int64
	if err := jx.DecodeBytes(body).Obj(func(d *jx.Decoder, key string) error {
		if key != "id" {
			return d.Skip()
		}
		v, err := d.Int64()
		id = v
		return err
	}); err != nil {
		return 0, errors.Wrap(err, "decode response")
	}
	return id, nil
}
