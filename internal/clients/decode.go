package clients

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// datasetItem extracts the first dataset item from an actor run response.
// The actor normally returns a JSON array of items but some page types
// answer with a bare object; both are accepted. An empty body or empty
// array yields nil.
func datasetItem(body []byte) (json.RawMessage, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil, nil
	}

	switch body[0] {
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(body, &items); err != nil {
			return nil, fmt.Errorf("invalid dataset array: %w", err)
		}
		if len(items) == 0 {
			return nil, nil
		}
		return items[0], nil
	case '{':
		return json.RawMessage(body), nil
	default:
		return nil, fmt.Errorf("unexpected dataset payload starting with %q", body[0])
	}
}

// decodeItemField unmarshals one named field of the first dataset item
// into dest. A missing item or field leaves dest untouched, so slice
// destinations stay empty rather than erroring.
func decodeItemField(body []byte, field string, dest interface{}) error {
	item, err := datasetItem(body)
	if err != nil {
		return err
	}
	if item == nil {
		return nil
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(item, &fields); err != nil {
		return fmt.Errorf("invalid dataset item: %w", err)
	}

	raw, ok := fields[field]
	if !ok || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil
	}

	return json.Unmarshal(raw, dest)
}

// flexID accepts a category id encoded as either a JSON number or string.
type flexID string

func (f *flexID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = flexID(n.String())
	return nil
}

func (f flexID) ptr() *string {
	if f == "" {
		return nil
	}
	s := string(f)
	return &s
}

// decodeCategories parses the categories field of a category page
// response. v1 ships flat rows; v2 and v3 ship nested trees that are
// flattened to the same rows.
func decodeCategories(body []byte, version string) ([]Category, error) {
	switch version {
	case "v1":
		var categories []Category
		if err := decodeItemField(body, "categories", &categories); err != nil {
			return nil, err
		}
		return categories, nil
	case "v2":
		var tree map[string]v2Node
		if err := decodeItemField(body, "categories", &tree); err != nil {
			return nil, err
		}
		return flattenV2(tree), nil
	case "v3":
		var tree map[string]v3Node
		if err := decodeItemField(body, "categories", &tree); err != nil {
			return nil, err
		}
		return flattenV3(tree), nil
	default:
		return nil, fmt.Errorf("unknown categories version %q", version)
	}
}

// v2Node is a named category with named children.
type v2Node struct {
	CategoryName string            `json:"categoryName"`
	CategoryID   flexID            `json:"categoryId"`
	Children     map[string]v2Node `json:"children"`
}

// v3Node carries its display text inline; its id is the map key it sits
// under.
type v3Node struct {
	Text     string            `json:"text"`
	Children map[string]v3Node `json:"children"`
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func strPtr(s string) *string { return &s }

// flattenV2 walks a v2 tree and emits one row per leaf. JSON objects
// carry no ordering, so siblings are visited in name order.
func flattenV2(tree map[string]v2Node) []Category {
	var out []Category

	var walk func(node v2Node, parentText, parentID *string, level int)
	walk = func(node v2Node, parentText, parentID *string, level int) {
		name := node.CategoryName
		id := node.CategoryID.ptr()

		if len(node.Children) == 0 {
			row := Category{Level: level}
			if level == 1 {
				row.LevelText1 = strPtr(name)
				row.LevelID1 = id
			} else {
				row.LevelText1 = parentText
				row.LevelID1 = parentID
				row.LevelText2 = strPtr(name)
				row.LevelID2 = id
			}
			out = append(out, row)
			return
		}

		for _, childName := range sortedKeys(node.Children) {
			child := node.Children[childName]
			if len(child.Children) > 0 {
				walk(child, strPtr(name), id, level+1)
				continue
			}

			row := Category{Level: level + 1}
			if level == 1 {
				row.LevelText1 = strPtr(name)
				row.LevelID1 = id
				row.LevelText2 = strPtr(childName)
				row.LevelID2 = child.CategoryID.ptr()
			} else {
				row.LevelText1 = parentText
				row.LevelID1 = parentID
				row.LevelText2 = strPtr(name)
				row.LevelID2 = id
				row.LevelText3 = strPtr(childName)
				row.LevelID3 = child.CategoryID.ptr()
			}
			out = append(out, row)
		}
	}

	for _, name := range sortedKeys(tree) {
		walk(tree[name], nil, nil, 1)
	}
	return out
}

// flattenV3 walks a v3 tree, where node ids are the object keys.
func flattenV3(tree map[string]v3Node) []Category {
	var out []Category

	var walk func(id string, node v3Node, parentText, parentID *string, level int)
	walk = func(id string, node v3Node, parentText, parentID *string, level int) {
		text := node.Text

		if len(node.Children) == 0 {
			row := Category{Level: level}
			if level == 1 {
				row.LevelText1 = strPtr(text)
				row.LevelID1 = strPtr(id)
			} else {
				row.LevelText1 = parentText
				row.LevelID1 = parentID
				row.LevelText2 = strPtr(text)
				row.LevelID2 = strPtr(id)
			}
			out = append(out, row)
			return
		}

		for _, childID := range sortedKeys(node.Children) {
			child := node.Children[childID]
			if len(child.Children) > 0 {
				walk(childID, child, strPtr(text), strPtr(id), level+1)
				continue
			}

			row := Category{Level: level + 1}
			if level == 1 {
				row.LevelText1 = strPtr(text)
				row.LevelID1 = strPtr(id)
				row.LevelText2 = strPtr(child.Text)
				row.LevelID2 = strPtr(childID)
			} else {
				row.LevelText1 = parentText
				row.LevelID1 = parentID
				row.LevelText2 = strPtr(text)
				row.LevelID2 = strPtr(id)
				row.LevelText3 = strPtr(child.Text)
				row.LevelID3 = strPtr(childID)
			}
			out = append(out, row)
		}
	}

	for _, id := range sortedKeys(tree) {
		walk(id, tree[id], nil, nil, 1)
	}
	return out
}
