package capture

import "strings"

// NewCaptureOptions builds options from "Name: value" header lines and a
// comma-separated selector list. Malformed header lines are skipped.
func NewCaptureOptions(headers []string, maskSelectors string) CaptureOptions {
	var o CaptureOptions

	for _, header := range headers {
		name, value, ok := strings.Cut(header, ":")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			continue
		}
		if o.Headers == nil {
			o.Headers = make(map[string]string)
		}
		o.Headers[name] = strings.TrimSpace(value)
	}

	for _, selector := range strings.Split(maskSelectors, ",") {
		if selector = strings.TrimSpace(selector); selector != "" {
			o.MaskSelectors = append(o.MaskSelectors, selector)
		}
	}

	return o
}
