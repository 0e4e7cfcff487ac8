// Package brandkit exposes the brand's colors and logo as an observable
// store. Writes go through the brand journey's controller, and listeners hear
// about every palette change, whoever made it.
package brandkit

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/afero"

	"github.com/kingrea/waypoint/internal/document"
)

// Palette is the visual identity snapshot.
type Palette struct {
	Primary    string
	Secondary  string
	Accent     string
	Typography string
	Logo       string
}

// Colors returns the non-empty colors in primary, secondary, accent order.
func (p Palette) Colors() []string {
	var out []string
	for _, c := range []string{p.Primary, p.Secondary, p.Accent} {
		if c != "" {
			out = append(out, c)
		}
	}
	return out
}

// Swatch renders a colored block for each color, for terminal previews.
func (p Palette) Swatch() string {
	var blocks []string
	for _, c := range p.Colors() {
		blocks = append(blocks, lipgloss.NewStyle().Background(lipgloss.Color(c)).Render("      ")+" "+c)
	}
	return strings.Join(blocks, "  ")
}

// Brand is the slice of the brand controller the store needs.
type Brand interface {
	Document() document.BrandStrategy
	UpdateDocument(ctx context.Context, patch document.Patch) (bool, []document.FieldError)
	Subscribe(fn func()) func()
}

// Store is the observable palette store.
type Store struct {
	brand Brand
	fs    afero.Fs

	mu     sync.Mutex
	last   Palette
	nextID int
	subs   map[int]func(Palette)
	stop   func()
}

// New binds a store to the brand controller. Logo paths are checked on fs;
// a nil fs skips the existence check.
func New(brand Brand, fs afero.Fs) *Store {
	s := &Store{brand: brand, fs: fs, subs: map[int]func(Palette){}}
	s.last = paletteOf(brand.Document())
	s.stop = brand.Subscribe(s.relay)
	return s
}

// Close detaches the store from the controller.
func (s *Store) Close() {
	s.mu.Lock()
	stop := s.stop
	s.stop = nil
	s.mu.Unlock()
	if stop != nil {
		stop()
	}
}

// Palette returns the current palette.
func (s *Store) Palette() Palette {
	return paletteOf(s.brand.Document())
}

var hexColor = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// NormalizeColor validates a hex color and returns it as upper-case
// #RRGGBB. The empty string is accepted and returned unchanged.
func NormalizeColor(c string) (string, error) {
	c = strings.TrimSpace(c)
	if c == "" {
		return "", nil
	}
	if !strings.HasPrefix(c, "#") {
		c = "#" + c
	}
	if !hexColor.MatchString(c) {
		return "", fmt.Errorf("brandkit: %q is not a hex color", c)
	}
	if len(c) == 4 {
		c = string([]byte{'#', c[1], c[1], c[2], c[2], c[3], c[3]})
	}
	return strings.ToUpper(c), nil
}

// SetColors updates the palette colors. Empty arguments keep the current
// value.
func (s *Store) SetColors(ctx context.Context, primary, secondary, accent string) error {
	visual := s.brand.Document().Visual
	for _, item := range []struct {
		in  string
		dst *string
	}{
		{primary, &visual.PrimaryColor},
		{secondary, &visual.SecondaryColor},
		{accent, &visual.AccentColor},
	} {
		c, err := NormalizeColor(item.in)
		if err != nil {
			return err
		}
		if c != "" {
			*item.dst = c
		}
	}
	return s.write(ctx, visual)
}

// SetTypography records the typeface choice.
func (s *Store) SetTypography(ctx context.Context, typography string) error {
	visual := s.brand.Document().Visual
	visual.Typography = strings.TrimSpace(typography)
	return s.write(ctx, visual)
}

// SetLogo records the logo file. Only image files are accepted.
func (s *Store) SetLogo(ctx context.Context, path string) error {
	path = strings.TrimSpace(path)
	visual := s.brand.Document().Visual
	if path != "" {
		switch strings.ToLower(filepath.Ext(path)) {
		case ".png", ".jpg", ".jpeg", ".svg", ".gif", ".webp":
		default:
			return fmt.Errorf("brandkit: %s is not an image", path)
		}
		if s.fs != nil {
			info, err := s.fs.Stat(path)
			if err != nil {
				return fmt.Errorf("brandkit: logo: %w", err)
			}
			if info.IsDir() {
				return fmt.Errorf("brandkit: logo %s is a directory", path)
			}
		}
	}
	visual.LogoPath = path
	return s.write(ctx, visual)
}

func (s *Store) write(ctx context.Context, visual document.Visual) error {
	ok, skipped := s.brand.UpdateDocument(ctx, document.Patch{"visual": visual})
	if !ok {
		return fmt.Errorf("brandkit: brand journey is still loading")
	}
	if len(skipped) > 0 {
		return skipped[0]
	}
	return nil
}

// Subscribe registers listener for palette changes. The returned function
// unsubscribes.
func (s *Store) Subscribe(listener func(Palette)) func() {
	if listener == nil {
		return func() {}
	}
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = listener
	s.mu.Unlock()
	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
		})
	}
}

func (s *Store) relay() {
	current := paletteOf(s.brand.Document())
	s.mu.Lock()
	if current == s.last {
		s.mu.Unlock()
		return
	}
	s.last = current
	ids := make([]int, 0, len(s.subs))
	for id := range s.subs {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	listeners := make([]func(Palette), 0, len(ids))
	for _, id := range ids {
		listeners = append(listeners, s.subs[id])
	}
	s.mu.Unlock()
	for _, listener := range listeners {
		listener(current)
	}
}

func paletteOf(doc document.BrandStrategy) Palette {
	return Palette{
		Primary:    doc.Visual.PrimaryColor,
		Secondary:  doc.Visual.SecondaryColor,
		Accent:     doc.Visual.AccentColor,
		Typography: doc.Visual.Typography,
		Logo:       doc.Visual.LogoPath,
	}
}
