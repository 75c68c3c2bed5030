// Package backend provides the client for the external voice-processing
// service that transcribes, answers and synthesizes speech.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"sort"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/oszuidwest/zwfm-voice/internal/apperrors"
	"github.com/oszuidwest/zwfm-voice/internal/config"
	"github.com/oszuidwest/zwfm-voice/internal/requestid"
	"github.com/oszuidwest/zwfm-voice/pkg/logger"
	"github.com/oszuidwest/zwfm-voice/pkg/version"
)

const runpodCompleted = "COMPLETED"

// Result is the unwrapped backend reply with defaults applied.
type Result struct {
	AudioB64      string `json:"audio_b64"`
	SampleRate    int    `json:"sample_rate"`
	Transcription string `json:"transcription"`
	LLMResponse   string `json:"llm_response"`
}

// Client calls the voice backend once per request. It is safe for
// concurrent use; the underlying connection pool is shared.
type Client struct {
	http              *resty.Client
	url               string
	protocol          config.BackendProtocol
	timeout           time.Duration
	defaultSampleRate int
}

// NewClient creates a backend client from configuration.
func NewClient(cfg config.BackendConfig) *Client {
	protocol := cfg.Protocol
	if protocol == "" {
		protocol = config.ProtocolPlain
	}
	defaultRate := cfg.DefaultSampleRate
	if defaultRate <= 0 {
		defaultRate = 24000
	}

	httpClient := resty.New().
		SetTimeout(cfg.Timeout).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", version.UserAgent()).
		SetLogger(logger.L().Sugar())
	if cfg.APIKey != "" {
		httpClient.SetAuthToken(cfg.APIKey)
	}

	return &Client{
		http:              httpClient,
		url:               cfg.URL,
		protocol:          protocol,
		timeout:           cfg.Timeout,
		defaultSampleRate: defaultRate,
	}
}

type audioInput struct {
	AudioB64 string `json:"audio_b64"`
}

type runpodRequest struct {
	Input audioInput `json:"input"`
}

func (c *Client) requestBody(audioB64 string) any {
	if c.protocol == config.ProtocolRunPod {
		return runpodRequest{Input: audioInput{AudioB64: audioB64}}
	}
	return audioInput{AudioB64: audioB64}
}

// Process sends the normalized audio to the backend and returns its result.
// Transport faults (network, timeout, non-2xx) and logical faults (a reply
// without usable audio) come back as distinct apperrors codes.
func (c *Client) Process(ctx context.Context, audioB64 string) (*Result, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req := c.http.R().
		SetContext(ctx).
		SetBody(c.requestBody(audioB64))
	if id := requestid.FromContext(ctx); id != "" {
		req.SetHeader(requestid.Header, id)
	}

	resp, err := req.Post(c.url)
	if err != nil {
		return nil, apperrors.BackendTransport(c.transportMessage(ctx, err)).
			WithInternal("POST %s", c.url).
			Wrap(err)
	}

	if !resp.IsSuccess() {
		apiErr := newAPIError(resp.StatusCode(), resp.Body())
		return nil, apperrors.BackendTransport(apiErr.Error()).
			WithInternal("POST %s returned %d in %s: %s", c.url, apiErr.StatusCode, resp.Time(), apiErr.Body).
			Wrap(apiErr)
	}

	logger.Debug("Backend replied %d in %s (%d bytes)", resp.StatusCode(), resp.Time(), len(resp.Body()))

	obj, err := c.unwrap(resp.Body())
	if err != nil {
		return nil, err
	}
	return c.parseResult(obj)
}

func (c *Client) transportMessage(ctx context.Context, err error) string {
	var netErr net.Error
	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded),
		errors.Is(err, context.DeadlineExceeded),
		errors.As(err, &netErr) && netErr.Timeout():
		return fmt.Sprintf("Voice backend did not respond within %s", c.timeout)
	case errors.Is(err, context.Canceled):
		return "Voice backend request was cancelled"
	default:
		return fmt.Sprintf("Voice backend request failed: %v", err)
	}
}

// unwrap decodes the response body and strips the protocol envelope.
func (c *Client) unwrap(body []byte) (map[string]any, error) {
	obj, err := decodeObject(body)
	if err != nil {
		return nil, apperrors.BackendLogical("response is not a JSON object").Wrap(err)
	}
	if c.protocol != config.ProtocolRunPod {
		return obj, nil
	}

	status, _ := obj["status"].(string)
	if status != runpodCompleted {
		return nil, apperrors.BackendLogical(fmt.Sprintf("runpod job %v finished with status %q: %v", obj["id"], status, obj["error"]))
	}
	output, ok := obj["output"].(map[string]any)
	if !ok {
		return nil, apperrors.BackendLogical(fmt.Sprintf("runpod job %v output is not an object", obj["id"]))
	}
	return output, nil
}

// parseResult validates the result object and applies defaults.
func (c *Client) parseResult(obj map[string]any) (*Result, error) {
	audio, _ := obj["audio_b64"].(string)
	if audio == "" {
		return nil, apperrors.BackendLogical(fmt.Sprintf("response has no audio_b64 (keys: %s)", keyList(obj)))
	}

	res := &Result{
		AudioB64:   audio,
		SampleRate: c.defaultSampleRate,
	}
	if n, ok := obj["sample_rate"].(json.Number); ok {
		if rate, err := n.Int64(); err == nil && rate > 0 {
			res.SampleRate = int(rate)
		} else if f, err := n.Float64(); err == nil && f > 0 && f == float64(int64(f)) {
			res.SampleRate = int(f)
		}
	}
	res.Transcription, _ = obj["transcription"].(string)
	res.LLMResponse, _ = obj["llm_response"].(string)
	return res, nil
}

func decodeObject(body []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("got %T", v)
	}
	return obj, nil
}

func keyList(obj map[string]any) string {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return strings.Join(keys, ", ")
}
