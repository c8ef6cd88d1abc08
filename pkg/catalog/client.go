package catalog

import (
	"context"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

const specsPath = "/ml/v1/foundation_model_specs"

// Client fetches foundation model specs from watsonx.ai regional endpoints.
// The specs endpoint is unauthenticated, so no credentials are needed here.
type Client struct {
	http       *resty.Client
	apiVersion string
	logger     zerolog.Logger
}

func NewClient(apiVersion string, timeout time.Duration, logger zerolog.Logger) *Client {
	client := resty.New()
	client.SetTimeout(timeout)
	client.SetRetryCount(3)
	client.SetRetryWaitTime(1 * time.Second)
	client.SetRetryMaxWaitTime(5 * time.Second)

	return &Client{
		http:       client,
		apiVersion: apiVersion,
		logger:     logger.With().Str("component", "catalog").Logger(),
	}
}

// Specs fetches the foundation model specs of one region. The filters query
// already excludes models withdrawn at the API side; deprecation filtering
// by date is done by the caller via DeprecatedOrWithdrawn.
func (c *Client) Specs(ctx context.Context, baseURL string, fn Function) ([]ModelSpec, error) {
	var result specsResponse

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("version", c.apiVersion).
		SetQueryParam("filters", string(fn)+",!lifecycle_withdrawn").
		SetResult(&result).
		Get(baseURL + specsPath)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to fetch model specs from %s", baseURL)
	}

	if resp.StatusCode() != http.StatusOK {
		return nil, errors.Errorf("model specs request to %s returned %s", baseURL, resp.Status())
	}

	return result.Resources, nil
}

// ModelIDs fetches the sorted model IDs of one region.
func (c *Client) ModelIDs(ctx context.Context, baseURL string, fn Function) ([]string, error) {
	specs, err := c.Specs(ctx, baseURL, fn)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(specs))
	for _, spec := range specs {
		ids = append(ids, spec.ModelID)
	}
	sort.Strings(ids)

	return ids, nil
}

// ModelIDsOrDefault is ModelIDs with a built-in fallback: a fetch failure is
// logged and the default model list is returned instead, so callers that
// only need some usable model selection keep working offline.
func (c *Client) ModelIDsOrDefault(ctx context.Context, baseURL string, fn Function) []string {
	ids, err := c.ModelIDs(ctx, baseURL, fn)
	if err != nil {
		c.logger.Error().Err(err).Str("baseURL", baseURL).Msg("Failed to fetch models, using default models")
		return DefaultChatModels
	}

	return ids
}

// ActiveModels fetches one region and drops models that are deprecated or
// withdrawn as of now.
func (c *Client) ActiveModels(ctx context.Context, baseURL string, fn Function) (ModelSet, error) {
	specs, err := c.Specs(ctx, baseURL, fn)
	if err != nil {
		return nil, err
	}

	now := time.Now()

	active := make(ModelSet, len(specs))
	for _, spec := range specs {
		if spec.DeprecatedOrWithdrawn(now) {
			continue
		}
		active[spec.ModelID] = struct{}{}
	}

	return active, nil
}

// FetchRegions fetches the active model sets of all regions concurrently.
// A failed region is logged and yields an empty set; an error is returned
// only when every region fails.
func (c *Client) FetchRegions(ctx context.Context, regions []string, fn Function) (map[string]ModelSet, error) {
	sets := make(map[string]ModelSet, len(regions))
	mu := sync.Mutex{}
	failures := 0

	eg, ctx := errgroup.WithContext(ctx)

	for _, region := range regions {
		region := region
		eg.Go(func() error {
			c.logger.Info().Str("region", region).Msg("Fetching model specs")

			active, err := c.ActiveModels(ctx, region, fn)

			mu.Lock()
			defer mu.Unlock()

			if err != nil {
				c.logger.Error().Err(err).Str("region", region).Msg("Failed to fetch model specs")
				sets[region] = ModelSet{}
				failures++
				return nil // Keep fetching the other regions.
			}

			c.logger.Info().Str("region", region).Int("activeModels", len(active)).Msg("Fetched model specs")
			sets[region] = active
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}

	if failures == len(regions) {
		return nil, errors.New("failed to fetch model specs from every region")
	}

	return sets, nil
}
