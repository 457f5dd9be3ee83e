package ingest

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nimbleretail/poolalloc/internal/domain"
	"github.com/nimbleretail/poolalloc/internal/storage"
)

// Sources holds the URIs of the four extracts. http(s) URIs are fetched
// directly; s3://bucket/key URIs go through the object store.
type Sources struct {
	Sales         string
	LocationStock string
	PoolStock     string
	StyleRemarks  string
}

// Fetcher retrieves and normalizes the four extracts of one data cycle.
type Fetcher struct {
	sources    Sources
	httpClient *http.Client
	store      storage.ObjectStore
}

// NewFetcher builds a Fetcher. store may be nil when no s3:// sources
// are configured.
func NewFetcher(sources Sources, store storage.ObjectStore, timeout time.Duration) *Fetcher {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Fetcher{
		sources:    sources,
		httpClient: &http.Client{Timeout: timeout},
		store:      store,
	}
}

// FetchAll retrieves the four extracts concurrently. The fetches are
// independent network operations, but the engine never runs on partial
// data: the first failure cancels the rest and aborts the whole cycle.
func (f *Fetcher) FetchAll(ctx context.Context) (domain.Extracts, error) {
	var extracts domain.Extracts

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		rows, err := f.fetchTable(ctx, SourceSales, f.sources.Sales)
		if err != nil {
			return err
		}
		extracts.Sales = NormalizeSales(rows)
		return nil
	})

	g.Go(func() error {
		rows, err := f.fetchTable(ctx, SourceLocationStock, f.sources.LocationStock)
		if err != nil {
			return err
		}
		extracts.LocationStock = NormalizeLocationStock(rows)
		return nil
	})

	g.Go(func() error {
		rows, err := f.fetchTable(ctx, SourcePoolStock, f.sources.PoolStock)
		if err != nil {
			return err
		}
		extracts.PoolStock = NormalizePoolStock(rows)
		return nil
	})

	g.Go(func() error {
		rows, err := f.fetchTable(ctx, SourceStyleRemarks, f.sources.StyleRemarks)
		if err != nil {
			return err
		}
		extracts.StyleRemarks = NormalizeStyleRemarks(rows)
		return nil
	})

	if err := g.Wait(); err != nil {
		return domain.Extracts{}, err
	}
	return extracts, nil
}

func (f *Fetcher) fetchTable(ctx context.Context, source, uri string) ([]map[string]string, error) {
	if uri == "" {
		return nil, fmt.Errorf("no source configured for %s", source)
	}

	var (
		body io.ReadCloser
		err  error
	)
	if strings.HasPrefix(uri, "s3://") {
		body, err = f.openObject(ctx, uri)
	} else {
		body, err = f.openHTTP(ctx, uri)
	}
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", source, err)
	}
	defer body.Close()

	header, rows, err := DecodeCSV(body)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", source, err)
	}
	if err := ValidateContract(header, source); err != nil {
		return nil, err
	}
	return rows, nil
}

func (f *Fetcher) openHTTP(ctx context.Context, uri string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return nil, err
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("unexpected status %s from %s", resp.Status, uri)
	}
	return resp.Body, nil
}

func (f *Fetcher) openObject(ctx context.Context, uri string) (io.ReadCloser, error) {
	if f.store == nil {
		return nil, fmt.Errorf("s3 source %s configured but no object store available", uri)
	}

	trimmed := strings.TrimPrefix(uri, "s3://")
	parts := strings.SplitN(trimmed, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return nil, fmt.Errorf("malformed s3 uri %q, want s3://bucket/key", uri)
	}

	data, err := f.store.Fetch(ctx, parts[0], parts[1])
	if err != nil {
		return nil, err
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

// DecodeCSV reads a CSV document into its header plus header-keyed
// rows. Cell values are trimmed; short records are tolerated, their
// missing cells are empty. An empty document yields a nil header,
// which contract validation then rejects.
func DecodeCSV(r io.Reader) ([]string, []map[string]string, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("read header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	var rows []map[string]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("read record: %w", err)
		}

		row := make(map[string]string, len(header))
		for i, col := range header {
			if i < len(record) {
				row[col] = strings.TrimSpace(record[i])
			} else {
				row[col] = ""
			}
		}
		rows = append(rows, row)
	}
	return header, rows, nil
}
