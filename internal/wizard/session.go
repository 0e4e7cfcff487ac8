package wizard

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/kingrea/waypoint/internal/document"
	"github.com/kingrea/waypoint/internal/export"
	"github.com/kingrea/waypoint/internal/journey"
)

// Session is the type-erased view of a Controller used by the TUI and CLI.
type Session interface {
	Info() journey.Info
	Hydrate(ctx context.Context)
	Reload(ctx context.Context) bool
	Loading() bool

	Total() int
	CurrentStepID() int
	Statuses() []journey.StepStatus
	StepMeta(id int) any
	CompletedCount() int
	Percent() float64
	CurrentStepPercent() float64
	IsComplete() bool

	GoTo(ctx context.Context, id int) bool
	GoNext(ctx context.Context) bool
	GoPrev(ctx context.Context) bool

	SetField(ctx context.Context, path string, value any) (bool, []document.FieldError)
	ApplyJSON(ctx context.Context, raw []byte) (bool, []document.FieldError, error)
	MarkStepComplete(ctx context.Context) bool
	Reset(ctx context.Context) bool

	DocumentJSON() ([]byte, error)
	Render() export.Document
	Subscribe(fn func()) func()
}

var _ Session = (*Controller[document.Record])(nil)

// Action is a journey-specific command beyond the common Session surface,
// such as saving a name-check snapshot.
type Action struct {
	Key   string
	Label string
	// ArgHint describes the argument Run expects; empty means none.
	ArgHint string
	Run     func(ctx context.Context, arg string) (string, error)
}

// ActionProvider is implemented by sessions that offer extra actions.
type ActionProvider interface {
	Actions() []Action
}

// FindAction looks up an action by key on sessions that provide them.
func FindAction(session Session, key string) (Action, bool) {
	provider, ok := session.(ActionProvider)
	if !ok {
		return Action{}, false
	}
	for _, action := range provider.Actions() {
		if action.Key == key {
			return action, true
		}
	}
	return Action{}, false
}

// renderFields is the fallback snapshot for journeys without a renderer:
// one section per top-level document field.
func renderFields(title string, doc any) export.Document {
	out := export.Document{Title: title}
	raw, err := json.Marshal(doc)
	if err != nil {
		return out
	}
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return out
	}
	keys := make([]string, 0, len(fields))
	for key := range fields {
		if key != document.LastUpdatedKey {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	for _, key := range keys {
		out.Sections = append(out.Sections, export.Section{Heading: key, Lines: valueLines(fields[key])})
	}
	return out
}

func valueLines(value any) []string {
	switch v := value.(type) {
	case nil:
		return nil
	case string:
		return []string{v}
	case bool:
		if v {
			return []string{"yes"}
		}
		return nil
	case float64:
		if v == 0 {
			return nil
		}
		return []string{fmt.Sprintf("%g", v)}
	case []any:
		var lines []string
		for _, item := range v {
			lines = append(lines, strings.Join(valueLines(item), ", "))
		}
		return lines
	case map[string]any:
		keys := make([]string, 0, len(v))
		for key := range v {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		var lines []string
		for _, key := range keys {
			if inner := strings.Join(valueLines(v[key]), ", "); inner != "" {
				lines = append(lines, key+": "+inner)
			}
		}
		return lines
	default:
		return []string{fmt.Sprint(v)}
	}
}
