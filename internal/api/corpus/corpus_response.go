package corpus

import (
	"encoding/json"

	"github.com/tidwall/gjson"
)

// listKeys are checked in order when a list response is wrapped in an object.
var listKeys = []string{"data", "items", "results"}

// NormalizeList returns the elements of a list response. A bare JSON array
// is returned as is; an object yields the first array found under data,
// items or results. Anything else is an empty list.
func NormalizeList(raw []byte) []json.RawMessage {
	if !gjson.ValidBytes(raw) {
		return []json.RawMessage{}
	}
	res := gjson.ParseBytes(raw)
	if res.IsArray() {
		return elements(res)
	}
	if res.IsObject() {
		for _, key := range listKeys {
			if v := res.Get(key); v.IsArray() {
				return elements(v)
			}
		}
	}
	return []json.RawMessage{}
}

// Records decodes the object elements of a list response.
func Records(raw []byte) []map[string]any {
	items := NormalizeList(raw)
	out := make([]map[string]any, 0, len(items))
	for _, item := range items {
		var rec map[string]any
		if err := json.Unmarshal(item, &rec); err == nil && rec != nil {
			out = append(out, rec)
		}
	}
	return out
}

// ExtractToken reads access_token, then token, from a verification response.
func ExtractToken(raw []byte) string {
	if tok := gjson.GetBytes(raw, "access_token"); tok.Type == gjson.String && tok.Str != "" {
		return tok.Str
	}
	if tok := gjson.GetBytes(raw, "token"); tok.Type == gjson.String {
		return tok.Str
	}
	return ""
}

func elements(v gjson.Result) []json.RawMessage {
	out := []json.RawMessage{}
	v.ForEach(func(_, item gjson.Result) bool {
		out = append(out, json.RawMessage(item.Raw))
		return true
	})
	return out
}
