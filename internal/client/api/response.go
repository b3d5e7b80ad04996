package api

import (
	"encoding/json"
	"fmt"
	"mime"
	"net/http"
	"strings"
)

// Meta carries response metadata (currently only the optional match count).
type Meta struct {
	Count *int64 `json:"count,omitempty"`
}

// Response is the uniform success result of the pipeline: the unwrapped
// data payload, response metadata, and the raw transport response for
// callers that need headers or status.
type Response struct {
	Data json.RawMessage
	Meta Meta
	Raw  *http.Response
}

// Decode unmarshals the data payload into v. A missing or null payload
// leaves v untouched.
func (r *Response) Decode(v any) error {
	if len(r.Data) == 0 || string(r.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(r.Data, v); err != nil {
		return fmt.Errorf("failed to decode response data: %w", err)
	}
	return nil
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Meta  Meta            `json:"meta"`
	Error json.RawMessage `json:"error"`
}

func isJSONContent(resp *http.Response) bool {
	ct := resp.Header.Get("Content-Type")
	mediaType, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return false
	}
	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}

// parseBody interprets a 2xx response body. JSON bodies carrying the
// {data, meta, error} envelope are unwrapped; other JSON bodies become the
// data payload as-is; anything else is treated as text and wrapped as a
// JSON string so Decode keeps working uniformly.
func parseBody(resp *http.Response, body []byte) (*Response, error) {
	out := &Response{Raw: resp}

	if len(body) == 0 {
		return out, nil
	}

	if !isJSONContent(resp) {
		text, err := json.Marshal(string(body))
		if err != nil {
			return nil, err
		}
		out.Data = text
		return out, nil
	}

	var probe map[string]json.RawMessage
	if err := json.Unmarshal(body, &probe); err == nil {
		if _, ok := probe["data"]; ok {
			var env envelope
			if err := json.Unmarshal(body, &env); err != nil {
				return nil, fmt.Errorf("failed to parse response envelope: %w", err)
			}
			if len(env.Error) > 0 && string(env.Error) != "null" {
				return nil, &StatusError{
					Status:  resp.StatusCode,
					Message: rawMessageText(env.Error),
					Detail:  env.Error,
				}
			}
			out.Data = env.Data
			out.Meta = env.Meta
			return out, nil
		}
	}

	out.Data = json.RawMessage(body)
	return out, nil
}

// rawMessageText renders a server error payload as a short human message.
func rawMessageText(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var obj struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil {
		if obj.Message != "" {
			return obj.Message
		}
		if obj.Error != "" {
			return obj.Error
		}
	}
	return string(raw)
}
