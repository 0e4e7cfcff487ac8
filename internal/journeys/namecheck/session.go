package namecheck

import (
	"context"
	"crypto/rand"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/kingrea/waypoint/internal/document"
	"github.com/kingrea/waypoint/internal/wizard"
)

// Session is the name checker controller plus its search and saved-list
// actions.
type Session struct {
	*wizard.Controller[document.NameCheck]

	now     func() time.Time
	mu      sync.Mutex
	entropy io.Reader
}

var (
	_ wizard.Session        = (*Session)(nil)
	_ wizard.ActionProvider = (*Session)(nil)
)

// NewSession wraps ctrl. A nil now uses time.Now.
func NewSession(ctrl *wizard.Controller[document.NameCheck], now func() time.Time) *Session {
	if now == nil {
		now = time.Now
	}
	return &Session{Controller: ctrl, now: now, entropy: ulid.Monotonic(rand.Reader, 0)}
}

// Factory opens a name checker session for the catalog.
func Factory(env wizard.Env) (wizard.Session, error) {
	return wrap(wizard.OpenController(Definition(), env), env), nil
}

func wrap(ctrl *wizard.Controller[document.NameCheck], env wizard.Env) wizard.Session {
	return NewSession(ctrl, env.Now)
}

// UpdateSearch sets the candidate name. When its normalized form changes the
// domain and social rows are reseeded as unchecked; otherwise existing
// results are kept.
func (s *Session) UpdateSearch(ctx context.Context, name string) bool {
	normalized := Normalize(name)
	patch := document.Patch{"name": strings.TrimSpace(name), "normalizedName": normalized}
	if normalized != s.Document().NormalizedName {
		domains := []document.DomainCheck{}
		socials := []document.SocialCheck{}
		if normalized != "" {
			for _, tld := range TLDs {
				domains = append(domains, document.DomainCheck{TLD: tld, Domain: normalized + tld, Status: document.StatusUnchecked})
			}
			handle := "@" + strings.ReplaceAll(normalized, "-", "")
			for _, platform := range Platforms {
				socials = append(socials, document.SocialCheck{Platform: platform, Handle: handle, Status: document.StatusUnchecked})
			}
		}
		patch["domains"] = domains
		patch["socials"] = socials
	}
	ok, _ := s.UpdateDocument(ctx, patch)
	return ok
}

// SaveSnapshot records the current candidate in the saved list, replacing
// an earlier snapshot of the same normalized name.
func (s *Session) SaveSnapshot(ctx context.Context) (document.SavedName, error) {
	current := s.Document()
	if strings.TrimSpace(current.Name) == "" {
		return document.SavedName{}, fmt.Errorf("namecheck: no candidate name to save")
	}
	normalized := current.NormalizedName
	if normalized == "" {
		normalized = Normalize(current.Name)
	}
	now := s.now().UTC()
	entry := document.SavedName{
		Name:           current.Name,
		NormalizedName: normalized,
		Score:          Score(current),
		Verdict:        current.Verdict,
		SavedAt:        now,
	}
	saved := append([]document.SavedName{}, current.SavedNames...)
	replaced := false
	for idx := range saved {
		if saved[idx].NormalizedName == normalized {
			entry.ID = saved[idx].ID
			saved[idx] = entry
			replaced = true
			break
		}
	}
	if !replaced {
		id, err := s.newID(now)
		if err != nil {
			return document.SavedName{}, err
		}
		entry.ID = id
		saved = append(saved, entry)
	}
	if ok, _ := s.UpdateDocument(ctx, document.Patch{"savedNames": saved}); !ok {
		return document.SavedName{}, fmt.Errorf("namecheck: journey is still loading")
	}
	return entry, nil
}

// RemoveSaved deletes the snapshot with id. It reports false when no
// snapshot matches.
func (s *Session) RemoveSaved(ctx context.Context, id string) bool {
	id = strings.TrimSpace(id)
	current := s.Document().SavedNames
	kept := make([]document.SavedName, 0, len(current))
	for _, entry := range current {
		if entry.ID != id {
			kept = append(kept, entry)
		}
	}
	if len(kept) == len(current) {
		return false
	}
	ok, _ := s.UpdateDocument(ctx, document.Patch{"savedNames": kept})
	return ok
}

// Saved returns the saved snapshots.
func (s *Session) Saved() []document.SavedName {
	return append([]document.SavedName{}, s.Document().SavedNames...)
}

func (s *Session) newID(now time.Time) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, err := ulid.New(ulid.Timestamp(now), s.entropy)
	if err != nil {
		return "", fmt.Errorf("namecheck: generate id: %w", err)
	}
	return id.String(), nil
}

// Actions implements wizard.ActionProvider.
func (s *Session) Actions() []wizard.Action {
	return []wizard.Action{
		{
			Key:     "search",
			Label:   "Search a name",
			ArgHint: "name",
			Run: func(ctx context.Context, arg string) (string, error) {
				if !s.UpdateSearch(ctx, arg) {
					return "", fmt.Errorf("namecheck: journey is still loading")
				}
				normalized := s.Document().NormalizedName
				if normalized == "" {
					return "Search cleared", nil
				}
				return "Searching " + normalized, nil
			},
		},
		{
			Key:   "save",
			Label: "Save snapshot",
			Run: func(ctx context.Context, _ string) (string, error) {
				entry, err := s.SaveSnapshot(ctx)
				if err != nil {
					return "", err
				}
				return fmt.Sprintf("Saved %s (%d/100) as %s", entry.Name, entry.Score, entry.ID), nil
			},
		},
		{
			Key:     "remove",
			Label:   "Remove saved name",
			ArgHint: "saved id",
			Run: func(ctx context.Context, arg string) (string, error) {
				if !s.RemoveSaved(ctx, arg) {
					return "", fmt.Errorf("namecheck: no saved name %q", strings.TrimSpace(arg))
				}
				return "Removed " + strings.TrimSpace(arg), nil
			},
		},
	}
}

// Register installs the name checker journey into the catalog.
func Register(c *wizard.Catalog) {
	if err := wizard.RegisterSession(c, Definition(), wrap); err != nil {
		panic(err)
	}
}
