package journey

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// InputKind selects how a form field is parsed from text.
type InputKind string

const (
	InputText    InputKind = "text"
	InputChoice  InputKind = "choice"
	InputList    InputKind = "list"
	InputNumber  InputKind = "number"
	InputBool    InputKind = "bool"
	InputEntries InputKind = "entries"
)

// Column is one attribute of an entries field.
type Column struct {
	Key     string
	Kind    InputKind
	Choices []string
}

// FormField describes one editable value of a step.
type FormField struct {
	// Path is the dotted document path, e.g. "voice.tone".
	Path    string
	Label   string
	Kind    InputKind
	Hint    string
	Choices []string
	// Columns describes entries fields: items are separated by ";" or new
	// lines and columns by "|".
	Columns []Column
}

// Form is the Meta payload built-in and custom journeys attach to steps.
type Form struct {
	Prompt string
	Fields []FormField
}

// FormOf extracts the form from step metadata.
func FormOf(meta any) (Form, bool) {
	switch f := meta.(type) {
	case Form:
		return f, true
	case *Form:
		if f != nil {
			return *f, true
		}
	}
	return Form{}, false
}

// Field finds the field for path.
func (f Form) Field(path string) (FormField, bool) {
	for _, field := range f.Fields {
		if field.Path == path {
			return field, true
		}
	}
	return FormField{}, false
}

// Parse converts user input into the JSON-compatible value for the field.
func (f FormField) Parse(input string) (any, error) {
	input = strings.TrimSpace(input)
	switch f.Kind {
	case InputList:
		return splitItems(input, ","), nil
	case InputNumber:
		return parseNumber(input)
	case InputBool:
		return parseBool(input)
	case InputChoice:
		choice, err := matchChoice(input, f.Choices)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", f.Label, err)
		}
		return choice, nil
	case InputEntries:
		return f.parseEntries(input)
	default:
		return input, nil
	}
}

// Format renders a document value back into editable text.
func (f FormField) Format(value any) string {
	switch f.Kind {
	case InputList:
		items, _ := value.([]any)
		parts := make([]string, 0, len(items))
		for _, item := range items {
			parts = append(parts, scalarText(item))
		}
		return strings.Join(parts, ", ")
	case InputEntries:
		items, _ := value.([]any)
		rows := make([]string, 0, len(items))
		for _, item := range items {
			obj, _ := item.(map[string]any)
			cols := make([]string, 0, len(f.Columns))
			for _, col := range f.Columns {
				cols = append(cols, scalarText(obj[col.Key]))
			}
			rows = append(rows, strings.Join(cols, " | "))
		}
		return strings.Join(rows, "; ")
	default:
		return scalarText(value)
	}
}

func (f FormField) parseEntries(input string) ([]map[string]any, error) {
	out := []map[string]any{}
	if len(f.Columns) == 0 {
		return nil, fmt.Errorf("%s has no columns", f.Label)
	}
	for _, row := range splitItems(input, ";") {
		cells := strings.Split(row, "|")
		entry := make(map[string]any, len(f.Columns))
		for idx, col := range f.Columns {
			cell := ""
			if idx < len(cells) {
				cell = strings.TrimSpace(cells[idx])
			}
			switch col.Kind {
			case InputNumber:
				if cell == "" {
					entry[col.Key] = float64(0)
					continue
				}
				n, err := parseNumber(cell)
				if err != nil {
					return nil, fmt.Errorf("%s: %s: %w", f.Label, col.Key, err)
				}
				entry[col.Key] = n
			case InputBool:
				if cell == "" {
					entry[col.Key] = false
					continue
				}
				b, err := parseBool(cell)
				if err != nil {
					return nil, fmt.Errorf("%s: %s: %w", f.Label, col.Key, err)
				}
				entry[col.Key] = b
			case InputChoice:
				choice, err := matchChoice(cell, col.Choices)
				if err != nil {
					return nil, fmt.Errorf("%s: %s: %w", f.Label, col.Key, err)
				}
				entry[col.Key] = choice
			default:
				entry[col.Key] = cell
			}
		}
		out = append(out, entry)
	}
	return out, nil
}

func matchChoice(input string, choices []string) (string, error) {
	if input == "" || len(choices) == 0 {
		return input, nil
	}
	for _, choice := range choices {
		if strings.EqualFold(choice, input) {
			return choice, nil
		}
	}
	return "", fmt.Errorf("must be one of %s", strings.Join(choices, ", "))
}

func splitItems(input, sep string) []string {
	items := []string{}
	for _, line := range strings.Split(input, "\n") {
		for _, item := range strings.Split(line, sep) {
			if item = strings.TrimSpace(item); item != "" {
				items = append(items, item)
			}
		}
	}
	return items
}

func parseNumber(input string) (float64, error) {
	if input == "" {
		return 0, nil
	}
	cleaned := strings.NewReplacer(",", "", "$", "", "€", "", "£", "").Replace(input)
	n, err := strconv.ParseFloat(strings.TrimSpace(cleaned), 64)
	if err != nil {
		return 0, fmt.Errorf("%q is not a number", input)
	}
	return n, nil
}

func parseBool(input string) (bool, error) {
	switch strings.ToLower(input) {
	case "", "no", "n", "false", "0", "off":
		return false, nil
	case "yes", "y", "true", "1", "on", "done":
		return true, nil
	}
	return false, fmt.Errorf("%q is not yes or no", input)
}

func scalarText(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		if v {
			return "yes"
		}
		return "no"
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, k+"="+scalarText(v[k]))
		}
		return strings.Join(parts, " ")
	default:
		return fmt.Sprint(v)
	}
}

// Lookup walks a dotted path through a decoded JSON object.
func Lookup(fields map[string]any, path string) any {
	var current any = fields
	for _, part := range strings.Split(path, ".") {
		obj, ok := current.(map[string]any)
		if !ok {
			return nil
		}
		current = obj[part]
	}
	return current
}
