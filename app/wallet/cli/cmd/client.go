package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

var client = http.Client{
	Timeout: time.Minute,
}

// errorResponse matches the error document returned by the node.
type errorResponse struct {
	Error  string            `json:"error"`
	Reason string            `json:"reason"`
	Fields map[string]string `json:"fields"`
}

// call sends the request to the node and decodes the response into resp.
// A nil body sends no payload.
func call(method string, path string, body any, resp any) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
	}

	req, err := http.NewRequest(method, url+path, &buf)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("calling node: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode >= http.StatusBadRequest {
		var er errorResponse
		if err := json.NewDecoder(res.Body).Decode(&er); err != nil {
			return fmt.Errorf("node returned status %d", res.StatusCode)
		}
		if er.Reason != "" {
			return fmt.Errorf("%s: %s", er.Reason, er.Error)
		}
		return fmt.Errorf("%s %v", er.Error, er.Fields)
	}

	if resp == nil {
		return nil
	}

	if err := json.NewDecoder(res.Body).Decode(resp); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}

	return nil
}
