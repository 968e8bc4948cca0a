package concierge

import (
	"fmt"
	"math"
	"strings"
)

// Function-call arguments arrive as decoded JSON: strings, float64s, []any
// and map[string]any.

func argString(args map[string]any, key string) (string, bool) {
	s, ok := args[key].(string)
	if !ok {
		return "", false
	}
	s = strings.TrimSpace(s)
	return s, s != ""
}

func argNumber(args map[string]any, key string) (float64, bool) {
	var f float64
	switch v := args[key].(type) {
	case float64:
		f = v
	case float32:
		f = float64(v)
	case int:
		f = float64(v)
	case int64:
		f = float64(v)
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func argStrings(args map[string]any, key string) []string {
	out := []string{}
	switch v := args[key].(type) {
	case []string:
		for _, s := range v {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
				out = append(out, strings.TrimSpace(s))
			}
		}
	}
	return out
}

func argObjects(args map[string]any, key string) []map[string]any {
	var out []map[string]any
	switch v := args[key].(type) {
	case []map[string]any:
		out = v
	case []any:
		for _, item := range v {
			if m, ok := item.(map[string]any); ok {
				out = append(out, m)
			}
		}
	}
	return out
}

// argResults accepts either an object of metric → value or a list of
// {metric, value} objects and flattens both to strings.
func argResults(args map[string]any) map[string]string {
	out := map[string]string{}
	switch v := args["results"].(type) {
	case map[string]any:
		for k, val := range v {
			out[k] = fmt.Sprint(val)
		}
	case []any:
		for _, m := range argObjects(args, "results") {
			metric, ok := argString(m, "metric")
			if !ok {
				continue
			}
			out[metric] = fmt.Sprint(m["value"])
		}
	}
	return out
}
