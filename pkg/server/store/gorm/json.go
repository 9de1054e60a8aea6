package gorm

import (
	"encoding/json"

	"gorm.io/datatypes"
)

func encodeJSON(v interface{}) (datatypes.JSON, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(raw), nil
}

// decodeDoc decodes a JSON object column. Empty or null columns decode to
// an empty document.
func decodeDoc(raw datatypes.JSON) (map[string]any, error) {
	doc := map[string]any{}
	if len(raw) == 0 {
		return doc, nil
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	if doc == nil {
		doc = map[string]any{}
	}
	return doc, nil
}

func decodeLabels(raw datatypes.JSON) (map[string]string, error) {
	labels := map[string]string{}
	if len(raw) == 0 {
		return labels, nil
	}
	if err := json.Unmarshal(raw, &labels); err != nil {
		return nil, err
	}
	if labels == nil {
		labels = map[string]string{}
	}
	return labels, nil
}

// mergeDocs deep-merges patch onto base and returns the result. Nested
// objects are merged key by key; any other value in patch replaces the
// value in base. Neither input is modified.
func mergeDocs(base, patch map[string]any) map[string]any {
	out := make(map[string]any, len(base)+len(patch))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range patch {
		if pv, ok := v.(map[string]any); ok {
			if bv, ok := out[k].(map[string]any); ok {
				out[k] = mergeDocs(bv, pv)
				continue
			}
		}
		out[k] = v
	}
	return out
}
