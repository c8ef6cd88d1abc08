package flow

import (
	"context"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

var (
	ErrInvalidFlowID = errors.New("flow ID must be a UUID")
	ErrEmptyReply    = errors.New("flow returned no message")
)

// Client calls the run API of a running Langflow instance.
type Client struct {
	http    *resty.Client
	baseURL string
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	client := resty.New()
	client.SetTimeout(timeout)

	return &Client{
		http:    client,
		baseURL: baseURL,
	}
}

type runRequest struct {
	InputValue string `json:"input_value"`
	InputType  string `json:"input_type"`
	OutputType string `json:"output_type"`
}

// runResponse mirrors the nesting of the Langflow run API: the reply text
// lives at outputs[0].outputs[0].results.message.text.
type runResponse struct {
	Outputs []struct {
		Outputs []struct {
			Results struct {
				Message struct {
					Text string `json:"text"`
				} `json:"message"`
			} `json:"results"`
		} `json:"outputs"`
	} `json:"outputs"`
}

// Run sends a chat input to the given flow and returns the reply text.
func (c *Client) Run(ctx context.Context, flowID, input string) (string, error) {
	if _, err := uuid.Parse(flowID); err != nil {
		return "", errors.Wrapf(ErrInvalidFlowID, "%q", flowID)
	}

	var result runResponse

	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(runRequest{
			InputValue: input,
			InputType:  "chat",
			OutputType: "chat",
		}).
		SetResult(&result).
		Post(c.baseURL + "/api/v1/run/" + flowID)
	if err != nil {
		return "", errors.Wrap(err, "failed to call flow run API")
	}

	if resp.StatusCode() != http.StatusOK {
		return "", errors.Errorf("flow run API returned %s: %s", resp.Status(), resp.String())
	}

	if len(result.Outputs) == 0 || len(result.Outputs[0].Outputs) == 0 {
		return "", ErrEmptyReply
	}

	text := result.Outputs[0].Outputs[0].Results.Message.Text
	if text == "" {
		return "", ErrEmptyReply
	}

	return text, nil
}

// Ping checks whether the Langflow instance is reachable.
func (c *Client) Ping(ctx context.Context) error {
	resp, err := c.http.R().SetContext(ctx).Get(c.baseURL + "/health")
	if err != nil {
		return errors.Wrapf(err, "failed to reach %s", c.baseURL)
	}

	if resp.StatusCode() >= http.StatusInternalServerError {
		return errors.Errorf("%s returned %s", c.baseURL, resp.Status())
	}

	return nil
}
