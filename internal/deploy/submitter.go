package deploy

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/scotchthepilgrim/ore-ev-program/internal/wire"
	"github.com/scotchthepilgrim/ore-ev-program/pkg/logger"
)

// Submitter delivers one commit-deployment call to the settlement system.
// The mask has exactly one bit set at the target block index.
type Submitter interface {
	Submit(ctx context.Context, amount uint64, mask uint32) error
}

// WebhookSubmitter posts commit calls to a configured endpoint; best-effort
// delivery, errors are returned to the caller for accounting.
type WebhookSubmitter struct {
	URL     string
	Timeout time.Duration
}

type commitBody struct {
	Amount      uint64 `json:"amount"`
	BlockMask   uint32 `json:"block_mask"`
	Instruction string `json:"instruction"` // base64 of the raw record
}

func (w WebhookSubmitter) Submit(ctx context.Context, amount uint64, mask uint32) error {
	body := commitBody{
		Amount:      amount,
		BlockMask:   mask,
		Instruction: base64.StdEncoding.EncodeToString(wire.EncodeCommit(amount, mask)),
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	client := &http.Client{Timeout: w.timeout()}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.URL, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := client.Do(req)
	if err != nil {
		logger.ErrorJ("commit_sink", map[string]any{"result": "post_error", "err": err.Error()})
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		logger.ErrorJ("commit_sink", map[string]any{"result": "remote_error", "code": resp.StatusCode})
		return &RemoteError{Code: resp.StatusCode}
	}
	logger.InfoJ("commit_sink", map[string]any{"result": "ok", "code": resp.StatusCode, "amount": amount, "mask": mask})
	return nil
}

func (w WebhookSubmitter) timeout() time.Duration {
	if w.Timeout > 0 {
		return w.Timeout
	}
	return 500 * time.Millisecond
}

// RemoteError reports an error response from the settlement endpoint.
type RemoteError struct{ Code int }

func (e *RemoteError) Error() string { return fmt.Sprintf("settlement endpoint returned %d", e.Code) }
