package search

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/opensearch-project/opensearch-go/v2"
	"github.com/opensearch-project/opensearch-go/v2/opensearchapi"
)

// Config configures the OpenSearch backend. Empty Addresses disables it.
type Config struct {
	Addresses    []string `env:"OPENSEARCH_ADDRESSES"`
	Username     string   `env:"OPENSEARCH_USERNAME"`
	Password     string   `env:"OPENSEARCH_PASSWORD"`
	Index        string   `env:"OPENSEARCH_INDEX" envDefault:"ngola-workspace"`
	MaxRetries   int      `env:"OPENSEARCH_MAX_RETRIES" envDefault:"3"`
	DisableRetry bool     `env:"OPENSEARCH_DISABLE_RETRY" envDefault:"false"`
	// Refresh is passed to index and delete calls, e.g. "wait_for".
	Refresh string `env:"OPENSEARCH_REFRESH" envDefault:"false"`
}

func (c Config) Enabled() bool { return len(c.Addresses) > 0 }

// Connect creates a client and checks that the cluster answers.
func Connect(ctx context.Context, cfg Config) (*opensearch.Client, error) {
	client, err := opensearch.NewClient(opensearch.Config{
		Addresses:    cfg.Addresses,
		Username:     cfg.Username,
		Password:     cfg.Password,
		MaxRetries:   cfg.MaxRetries,
		DisableRetry: cfg.DisableRetry,
	})
	if err != nil {
		return nil, errors.Join(ErrConnectionFailed, err)
	}
	if err := Healthcheck(client)(ctx); err != nil {
		return nil, err
	}
	return client, nil
}

// Healthcheck returns a closure that queries the cluster info endpoint.
func Healthcheck(client *opensearch.Client) func(context.Context) error {
	return func(ctx context.Context) error {
		res, err := client.Info(
			client.Info.WithContext(ctx),
			client.Info.WithErrorTrace(),
		)
		if err != nil {
			return errors.Join(ErrHealthcheckFailed, err)
		}
		defer res.Body.Close()
		if res.IsError() {
			return errors.Join(ErrHealthcheckFailed, fmt.Errorf("status %d", res.StatusCode))
		}
		return nil
	}
}

// OpenSearchIndex keeps documents in one OpenSearch index.
type OpenSearchIndex struct {
	client  *opensearch.Client
	index   string
	refresh string
}

var _ Index = (*OpenSearchIndex)(nil)

func NewOpenSearchIndex(client *opensearch.Client, cfg Config) *OpenSearchIndex {
	return &OpenSearchIndex{client: client, index: cfg.Index, refresh: cfg.Refresh}
}

const indexMapping = `{
  "mappings": {
    "properties": {
      "id":         {"type": "keyword"},
      "kind":       {"type": "keyword"},
      "owner_id":   {"type": "keyword"},
      "project_id": {"type": "keyword"},
      "status":     {"type": "keyword"},
      "title":      {"type": "text", "analyzer": "standard"},
      "body":       {"type": "text", "analyzer": "standard"},
      "updated_at": {"type": "date"}
    }
  }
}`

// EnsureIndex creates the index with its mapping unless it exists.
func (o *OpenSearchIndex) EnsureIndex(ctx context.Context) error {
	res, err := opensearchapi.IndicesExistsRequest{Index: []string{o.index}}.Do(ctx, o.client)
	if err != nil {
		return errors.Join(ErrRequestFailed, err)
	}
	res.Body.Close()
	if res.StatusCode == http.StatusOK {
		return nil
	}

	res, err = opensearchapi.IndicesCreateRequest{
		Index: o.index,
		Body:  bytes.NewReader([]byte(indexMapping)),
	}.Do(ctx, o.client)
	return o.check(res, err)
}

func (o *OpenSearchIndex) Index(ctx context.Context, docs ...Document) error {
	for _, d := range docs {
		body, err := json.Marshal(d)
		if err != nil {
			return fmt.Errorf("encode document %s: %w", d.ID, err)
		}
		res, err := opensearchapi.IndexRequest{
			Index:      o.index,
			DocumentID: d.ID,
			Body:       bytes.NewReader(body),
			Refresh:    o.refresh,
		}.Do(ctx, o.client)
		if err := o.check(res, err); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes a document. A missing document is not an error.
func (o *OpenSearchIndex) Delete(ctx context.Context, id string) error {
	res, err := opensearchapi.DeleteRequest{
		Index:      o.index,
		DocumentID: id,
		Refresh:    o.refresh,
	}.Do(ctx, o.client)
	if err == nil && res.StatusCode == http.StatusNotFound {
		res.Body.Close()
		return nil
	}
	return o.check(res, err)
}

type searchResponse struct {
	Hits struct {
		Hits []struct {
			Score  float64  `json:"_score"`
			Source Document `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

func (o *OpenSearchIndex) Search(ctx context.Context, q Query) ([]Hit, error) {
	if q.OwnerID == "" {
		return nil, ErrMissingOwner
	}
	body, err := json.Marshal(buildQuery(q))
	if err != nil {
		return nil, err
	}
	res, err := opensearchapi.SearchRequest{
		Index: []string{o.index},
		Body:  bytes.NewReader(body),
	}.Do(ctx, o.client)
	if err != nil {
		return nil, errors.Join(ErrRequestFailed, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, responseError(res)
	}

	var sr searchResponse
	if err := json.NewDecoder(res.Body).Decode(&sr); err != nil {
		return nil, errors.Join(ErrRequestFailed, err)
	}
	hits := make([]Hit, len(sr.Hits.Hits))
	for i, h := range sr.Hits.Hits {
		hits[i] = Hit{Document: h.Source, Score: h.Score}
	}
	return hits, nil
}

type object = map[string]any

func buildQuery(q Query) object {
	filter := []any{object{"term": object{"owner_id": q.OwnerID}}}
	if len(q.Kinds) > 0 {
		filter = append(filter, object{"terms": object{"kind": q.Kinds}})
	}
	boolQuery := object{"filter": filter}
	if q.Text != "" {
		boolQuery["must"] = object{"multi_match": object{
			"query":    q.Text,
			"fields":   []string{"title^2", "body"},
			"type":     "bool_prefix",
			"operator": "and",
		}}
	}
	return object{
		"size":  q.limit(),
		"query": object{"bool": boolQuery},
		"sort":  []any{"_score", object{"updated_at": "desc"}},
	}
}

func (o *OpenSearchIndex) check(res *opensearchapi.Response, err error) error {
	if err != nil {
		return errors.Join(ErrRequestFailed, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return responseError(res)
	}
	_, _ = io.Copy(io.Discard, res.Body)
	return nil
}

func responseError(res *opensearchapi.Response) error {
	msg, _ := io.ReadAll(io.LimitReader(res.Body, 512))
	return errors.Join(ErrRequestFailed, fmt.Errorf("status %d: %s", res.StatusCode, bytes.TrimSpace(msg)))
}
