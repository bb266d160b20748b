package indexer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/kollektive-hackathon/dice-ledger-backend/internal/pkg/metrics"
	"github.com/rs/zerolog/log"
)

type Collection string

const (
	CollectionRequests    Collection = "requests"
	CollectionCompletions Collection = "completions"
	CollectionTies        Collection = "ties"
)

const DefaultLimit = 50

type Client struct {
	baseUrl    string
	httpClient *http.Client
}

func NewClient(baseUrl string, timeout time.Duration) *Client {
	return &Client{
		baseUrl:    strings.TrimRight(baseUrl, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Fetch returns one page of raw records after lastId. Every failure degrades to an
// empty page; the caller retries on its own schedule.
func (c *Client) Fetch(ctx context.Context, collection Collection, lastId uint64, limit int) []json.RawMessage {
	if limit <= 0 {
		limit = DefaultLimit
	}

	start := time.Now()
	records, err := c.fetch(ctx, collection, lastId, limit)
	metrics.IndexerFetchDuration.WithLabelValues(string(collection)).Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.IndexerFetchTotal.WithLabelValues(string(collection), fetchStatus(err)).Inc()
		log.Warn().
			Err(err).
			Str("endpoint", c.endpoint(collection)).
			Uint64("last_id", lastId).
			Int("limit", limit).
			Msg("Indexer fetch failed")
		return []json.RawMessage{}
	}

	metrics.IndexerFetchTotal.WithLabelValues(string(collection), "ok").Inc()
	log.Info().
		Str("endpoint", c.endpoint(collection)).
		Uint64("last_id", lastId).
		Int("count", len(records)).
		Msg("Indexer fetch")
	return records
}

func (c *Client) Requests(ctx context.Context, lastId uint64, limit int) []RequestEvent {
	return decodeAll(c.Fetch(ctx, CollectionRequests, lastId, limit), CollectionRequests, DecodeRequest)
}

func (c *Client) Completions(ctx context.Context, lastId uint64, limit int) []CompletionEvent {
	return decodeAll(c.Fetch(ctx, CollectionCompletions, lastId, limit), CollectionCompletions, DecodeCompletion)
}

func (c *Client) Ties(ctx context.Context, lastId uint64, limit int) []TieEvent {
	return decodeAll(c.Fetch(ctx, CollectionTies, lastId, limit), CollectionTies, DecodeTie)
}

func (c *Client) endpoint(collection Collection) string {
	return c.baseUrl + "/api/" + string(collection)
}

func (c *Client) fetch(ctx context.Context, collection Collection, lastId uint64, limit int) ([]json.RawMessage, error) {
	query := url.Values{}
	query.Set("lastId", strconv.FormatUint(lastId, 10))
	query.Set("limit", strconv.Itoa(limit))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint(collection)+"?"+query.Encode(), nil)
	if err != nil {
		return nil, &TransportError{Collection: collection, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Collection: collection, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &TransportError{Collection: collection, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Collection: collection, Err: err}
	}

	body = bytes.TrimSpace(body)
	if len(body) == 0 || body[0] != '[' {
		return nil, &MalformedDataError{Collection: collection, Err: errors.New("expected a JSON array")}
	}

	var records []json.RawMessage
	if err := json.Unmarshal(body, &records); err != nil {
		return nil, &MalformedDataError{Collection: collection, Err: err}
	}
	return records, nil
}

func decodeAll[T any](records []json.RawMessage, collection Collection, decode func(json.RawMessage) (T, error)) []T {
	events := make([]T, 0, len(records))
	for i, raw := range records {
		event, err := decode(raw)
		if err != nil {
			metrics.IndexerRecordsSkipped.WithLabelValues(string(collection)).Inc()
			log.Warn().Err(err).Str("collection", string(collection)).Int("index", i).Msg("Skipping malformed record")
			continue
		}
		events = append(events, event)
	}
	return events
}

func fetchStatus(err error) string {
	var malformed *MalformedDataError
	if errors.As(err, &malformed) {
		return "malformed"
	}
	var transport *TransportError
	if errors.As(err, &transport) && transport.StatusCode != 0 {
		return "http_" + strconv.Itoa(transport.StatusCode)
	}
	return "error"
}
