package flow

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testFlowID = "2c02349f-303c-4fbd-b95d-d69646817840"

func replyServer(t *testing.T, text string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/run/"+testFlowID, r.URL.Path)

		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "chat", req["input_type"])
		assert.Equal(t, "chat", req["output_type"])

		resp := map[string]any{
			"outputs": []any{
				map[string]any{
					"outputs": []any{
						map[string]any{
							"results": map[string]any{
								"message": map[string]any{"text": text},
							},
						},
					},
				},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
}

func TestRun(t *testing.T) {
	srv := replyServer(t, "Hello from the flow!")
	defer srv.Close()

	reply, err := NewClient(srv.URL, 2*time.Second).Run(context.Background(), testFlowID, "hello world!")
	require.NoError(t, err)
	assert.Equal(t, "Hello from the flow!", reply)
}

func TestRun_InvalidFlowID(t *testing.T) {
	_, err := NewClient("http://127.0.0.1:1", 2*time.Second).Run(context.Background(), "not-a-uuid", "hi")
	assert.True(t, errors.Is(err, ErrInvalidFlowID))
}

func TestRun_EmptyReply(t *testing.T) {
	srv := replyServer(t, "")
	defer srv.Close()

	_, err := NewClient(srv.URL, 2*time.Second).Run(context.Background(), testFlowID, "hi")
	assert.True(t, errors.Is(err, ErrEmptyReply))
}

func TestRun_NoOutputs(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"outputs": []}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, 2*time.Second).Run(context.Background(), testFlowID, "hi")
	assert.True(t, errors.Is(err, ErrEmptyReply))
}

func TestRun_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "flow not found", http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, 2*time.Second).Run(context.Background(), testFlowID, "hi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}
