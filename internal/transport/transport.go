// Package transport adapts the engine's send capability onto concrete
// push backends. The engine hands over the campaign's message and
// audience unmodified and only looks at the returned outcome.
package transport

import "encoding/json"

// RecipientCountHint extracts a best-effort recipient count from an
// opaque audience payload. The audience is pass-through targeting
// criteria; when it happens to carry an explicit recipient list we
// surface its size, otherwise 0.
func RecipientCountHint(audience json.RawMessage) int {
	if len(audience) == 0 {
		return 0
	}
	var probe struct {
		Recipients   []json.RawMessage `json:"recipients"`
		DeviceTokens []json.RawMessage `json:"device_tokens"`
	}
	if err := json.Unmarshal(audience, &probe); err != nil {
		return 0
	}
	if n := len(probe.Recipients); n > 0 {
		return n
	}
	return len(probe.DeviceTokens)
}
