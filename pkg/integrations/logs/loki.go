// Package logs provides logger hooks that ship entries to external log
// stores. All shipping is fire-and-forget with a short timeout.
package logs

import (
	"bytes"
	"encoding/json"
	"net/http"
	"time"
)

// NewLokiHook posts each entry to a Loki push endpoint, tagged with the
// given stream labels (an "app: trustlens" label is added when absent).
func NewLokiHook(url string, labels map[string]string) func(map[string]any) {
	if url == "" {
		return nil
	}
	stream := map[string]string{"app": "trustlens"}
	for k, v := range labels {
		stream[k] = v
	}
	client := &http.Client{Timeout: 3 * time.Second}
	return func(entry map[string]any) {
		payload := map[string]any{
			"streams": []any{
				map[string]any{
					"stream": stream,
					"values": [][]string{
						{time.Now().Format(time.RFC3339Nano), toJSON(entry)},
					},
				},
			},
		}
		body, _ := json.Marshal(payload)
		req, _ := http.NewRequest(http.MethodPost, url, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		_, _ = client.Do(req)
	}
}

func toJSON(entry map[string]any) string {
	b, err := json.Marshal(entry)
	if err != nil {
		return "{}"
	}
	return string(b)
}
