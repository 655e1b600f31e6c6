package searchindex

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	weaviate "github.com/weaviate/weaviate-go-client/v5/weaviate"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/auth"
	filters "github.com/weaviate/weaviate-go-client/v5/weaviate/filters"
	gql "github.com/weaviate/weaviate-go-client/v5/weaviate/graphql"

	"github.com/brightside-ai/assistant-backend/internal/model"
)

// newWeaviateClient builds a client for baseURL. baseURL may carry an
// explicit scheme; a bare host:port is assumed to be http.
func newWeaviateClient(baseURL, apiKey string) (*weaviate.Client, error) {
	scheme := "http"
	host := baseURL
	if strings.HasPrefix(baseURL, "https://") {
		scheme = "https"
		host = strings.TrimPrefix(baseURL, "https://")
	} else if strings.HasPrefix(baseURL, "http://") {
		host = strings.TrimPrefix(baseURL, "http://")
	}
	cfg := weaviate.Config{Scheme: scheme, Host: host}
	if apiKey != "" {
		cfg.AuthConfig = auth.ApiKey{Value: apiKey}
	}
	return weaviate.NewClient(cfg)
}

// weavProducts implements ProductIndex using the Weaviate Go client.
type weavProducts struct {
	client  *weaviate.Client
	baseURL string
	class   string
	log     zerolog.Logger

	// configuredDim is the fallback dimensionality; dim is resolved once
	// from the live class when possible.
	configuredDim int
	dimOnce       sync.Once
	dim           int
}

// NewProductIndex constructs a ProductIndex for the given instance and class.
// defaultDim is used when the class dimensionality cannot be probed.
func NewProductIndex(baseURL, apiKey, class string, defaultDim int, log zerolog.Logger) (ProductIndex, error) {
	cl, err := newWeaviateClient(baseURL, apiKey)
	if err != nil {
		return nil, err
	}
	return &weavProducts{client: cl, baseURL: baseURL, class: class, configuredDim: defaultDim, log: log}, nil
}

// dimensions resolves the target dimensionality once. Probe failure logs a
// warning and keeps the configured default; it never fails the query.
func (w *weavProducts) dimensions(ctx context.Context) int {
	w.dimOnce.Do(func() {
		w.dim = w.configuredDim
		probed, err := w.probeDimensions(ctx)
		if err != nil {
			w.log.Warn().Err(err).Int("assumed_dim", w.configuredDim).
				Msg("could not probe collection dimensionality; using configured default")
			return
		}
		if probed > 0 {
			w.dim = probed
		}
	})
	return w.dim
}

// probeDimensions reads one stored object's vector length from the class.
func (w *weavProducts) probeDimensions(ctx context.Context) (int, error) {
	resp, err := w.client.GraphQL().Get().
		WithClassName(w.class).
		WithLimit(1).
		WithFields(gql.Field{Name: "_additional", Fields: []gql.Field{{Name: "vector"}}}).
		Do(ctx)
	if err != nil {
		return 0, err
	}
	if len(resp.Errors) > 0 {
		return 0, fmt.Errorf("graphql: %s", formatGraphQLErrors(resp.Errors))
	}
	items := classItems(resp.Data["Get"], w.class)
	if len(items) == 0 {
		return 0, fmt.Errorf("class %s has no objects to probe", w.class)
	}
	m, ok := items[0].(map[string]interface{})
	if !ok {
		return 0, fmt.Errorf("unexpected object shape")
	}
	add, _ := m["_additional"].(map[string]interface{})
	vec, _ := add["vector"].([]interface{})
	return len(vec), nil
}

func (w *weavProducts) Search(ctx context.Context, vec []float32, limit int, clientID string, filterTree map[string]interface{}) ([]model.Product, error) {
	dim := w.dimensions(ctx)
	if len(vec) != dim {
		return nil, fmt.Errorf("%w: collection expects %d dimensions but query vector has %d",
			model.ErrDimensionMismatch, dim, len(vec))
	}

	where := buildWhere(filterTree)
	if clientID != "" {
		client := filters.Where().WithPath([]string{"clientId"}).WithOperator(filters.Equal).WithValueText(clientID)
		if where == nil {
			where = client
		} else {
			where = filters.Where().WithOperator(filters.And).WithOperands([]*filters.WhereBuilder{where, client})
		}
	}

	nv := (&gql.NearVectorArgumentBuilder{}).WithVector(vec)

	req := w.client.GraphQL().Get().
		WithClassName(w.class).
		WithNearVector(nv).
		WithLimit(limit).
		WithFields(
			gql.Field{Name: "productId"},
			gql.Field{Name: "title"},
			gql.Field{Name: "description"},
			gql.Field{Name: "price"},
			gql.Field{Name: "image"},
			gql.Field{Name: "link"},
			gql.Field{Name: "_additional", Fields: []gql.Field{{Name: "certainty"}}},
		)
	if where != nil {
		req = req.WithWhere(where)
	}

	resp, err := req.Do(ctx)
	if err != nil {
		return nil, err
	}
	if len(resp.Errors) > 0 {
		return nil, fmt.Errorf("weaviate graphql: %s", formatGraphQLErrors(resp.Errors))
	}

	items := classItems(resp.Data["Get"], w.class)
	out := make([]model.Product, 0, len(items))
	for _, item := range items {
		m, ok := item.(map[string]interface{})
		if !ok {
			w.log.Warn().Interface("hit", item).Msg("skipping malformed search hit")
			continue
		}
		out = append(out, productFromHit(m))
	}
	return out, nil
}

// productFromHit maps a search hit's payload into a Product. Missing payload
// fields default to empty values rather than failing the batch. The price is
// carried as its stored string so no decimal precision is lost.
func productFromHit(m map[string]interface{}) model.Product {
	brand := "Brightside"
	p := model.Product{
		ID:          payloadString(m, "productId"),
		Name:        payloadString(m, "title"),
		Description: payloadString(m, "description"),
		Price:       priceString(m["price"]),
		Currency:    "USD",
		ImageURL:    payloadString(m, "image"),
		ProductURL:  payloadString(m, "link"),
		Brand:       &brand,
	}
	if score, ok := hitScore(m); ok {
		p.Score = &score
	}
	return p
}

func payloadString(m map[string]interface{}, key string) string {
	s, _ := m[key].(string)
	return s
}

func priceString(v interface{}) string {
	switch p := v.(type) {
	case string:
		if p != "" {
			return p
		}
	case float64:
		return strconv.FormatFloat(p, 'f', -1, 64)
	}
	return "0.00"
}

func hitScore(m map[string]interface{}) (float64, bool) {
	add, ok := m["_additional"].(map[string]interface{})
	if !ok {
		return 0, false
	}
	switch v := add["certainty"].(type) {
	case float64:
		return v, true
	case string:
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f, true
		}
	}
	return 0, false
}

// weavIntents implements IntentIndex.
type weavIntents struct {
	client  *weaviate.Client
	baseURL string
	class   string
	log     zerolog.Logger
}

// NewIntentIndex constructs an IntentIndex for the given instance and class.
func NewIntentIndex(baseURL, apiKey, class string, log zerolog.Logger) (IntentIndex, error) {
	cl, err := newWeaviateClient(baseURL, apiKey)
	if err != nil {
		return nil, err
	}
	return &weavIntents{client: cl, baseURL: baseURL, class: class, log: log}, nil
}

func (w *weavIntents) Search(ctx context.Context, vec []float32, limit int, minSimilarity float64) ([]model.Intent, error) {
	// The threshold rides on the query itself; no second-layer check happens
	// on the results.
	nv := (&gql.NearVectorArgumentBuilder{}).
		WithVector(vec).
		WithCertainty(float32(minSimilarity))

	resp, err := w.client.GraphQL().Get().
		WithClassName(w.class).
		WithNearVector(nv).
		WithLimit(limit).
		WithFields(
			gql.Field{Name: "intentId"},
			gql.Field{Name: "title"},
			gql.Field{Name: "prompt"},
			gql.Field{Name: "exampleQueries"},
			gql.Field{Name: "requiredContext"},
			gql.Field{Name: "_additional", Fields: []gql.Field{{Name: "certainty"}}},
		).
		Do(ctx)
	if err != nil {
		return nil, err
	}
	if len(resp.Errors) > 0 {
		return nil, fmt.Errorf("weaviate graphql: %s", formatGraphQLErrors(resp.Errors))
	}

	items := classItems(resp.Data["Get"], w.class)
	out := make([]model.Intent, 0, len(items))
	for _, item := range items {
		m, ok := item.(map[string]interface{})
		if !ok {
			w.log.Warn().Interface("hit", item).Msg("skipping malformed intent hit")
			continue
		}
		intent := model.Intent{
			Title:           payloadString(m, "title"),
			Prompt:          payloadString(m, "prompt"),
			ExampleQueries:  stringList(m["exampleQueries"]),
			RequiredContext: stringList(m["requiredContext"]),
		}
		if id, ok := toFloat(m["intentId"]); ok {
			intent.IntentID = int(id)
		}
		if score, ok := hitScore(m); ok {
			intent.SimilarityScore = score
		}
		out = append(out, intent)
	}
	return out, nil
}

func stringList(v interface{}) []string {
	items, ok := v.([]interface{})
	if !ok {
		return []string{}
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		if s, ok := it.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// classItems extracts the result list for class from a GraphQL Get response's
// "Get" value, tolerating null or unexpectedly shaped data.
func classItems(get interface{}, class string) []interface{} {
	getData, ok := get.(map[string]interface{})
	if !ok {
		return nil
	}
	val := getData[class]
	if val == nil {
		return nil
	}
	items, ok := val.([]interface{})
	if !ok {
		return nil
	}
	return items
}

// formatGraphQLErrors returns a compact string for logging.
func formatGraphQLErrors(errs interface{}) string {
	if b, err := json.Marshal(errs); err == nil {
		return string(b)
	}
	return fmt.Sprintf("%v", errs)
}

// HealthPing implements health.Pinger. It calls GET <baseURL>/v1/meta and
// expects 200 OK.
func (w *weavProducts) HealthPing(ctx context.Context) error {
	return pingMeta(ctx, w.baseURL)
}

func (w *weavIntents) HealthPing(ctx context.Context) error {
	return pingMeta(ctx, w.baseURL)
}

func pingMeta(ctx context.Context, baseURL string) error {
	if baseURL == "" {
		return fmt.Errorf("weaviate baseURL missing")
	}
	url := baseURL
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		url = "http://" + url
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url+"/v1/meta", nil)
	if err != nil {
		return err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("weaviate status %d", resp.StatusCode)
	}
	return nil
}
