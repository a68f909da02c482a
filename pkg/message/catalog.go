package message

import (
	"embed"
	"io"
	"io/fs"
	"log/slog"
	"path"
	"slices"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"golang.org/x/text/language"
	xmessage "golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
	"gopkg.in/yaml.v3"
)

//go:embed defaults/*.yaml
var defaults embed.FS

// Catalog is a Bundle backed by an x/text message catalog. Message texts are
// printf formats. Requested locales are matched against the loaded ones;
// keys missing there come from the fallback language.
type Catalog struct {
	mu       sync.RWMutex
	builder  *catalog.Builder
	fallback language.Tag
	langs    []language.Tag
	matcher  language.Matcher
	keys     map[language.Tag]map[string]bool
	logger   *slog.Logger
}

// Option configures a Catalog.
type Option func(*Catalog)

// WithFallback sets the language used when no better match exists.
// Defaults to English.
func WithFallback(tag language.Tag) Option {
	return func(c *Catalog) {
		c.fallback = tag
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Catalog) {
		c.logger = logger
	}
}

// NewCatalog returns a catalog holding the default English and Brazilian
// Portuguese messages.
func NewCatalog(opts ...Option) (*Catalog, error) {
	c := &Catalog{
		fallback: language.English,
		keys:     make(map[language.Tag]map[string]bool),
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.builder = catalog.NewBuilder(catalog.Fallback(c.fallback))
	c.matcher = language.NewMatcher([]language.Tag{c.fallback})

	entries, err := fs.ReadDir(defaults, "defaults")
	if err != nil {
		return nil, errors.Wrap(err, "read default messages")
	}
	for _, e := range entries {
		name := strings.TrimSuffix(e.Name(), path.Ext(e.Name()))
		tag, err := language.Parse(name)
		if err != nil {
			return nil, errors.Wrapf(err, "default messages %s", e.Name())
		}
		f, err := defaults.Open(path.Join("defaults", e.Name()))
		if err != nil {
			return nil, errors.Wrapf(err, "open default messages %s", e.Name())
		}
		err = c.Load(tag, f)
		f.Close()
		if err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Set stores the text of key for tag, replacing any previous text.
func (c *Catalog) Set(tag language.Tag, key, text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.set(tag, key, text)
}

func (c *Catalog) set(tag language.Tag, key, text string) error {
	if key == "" {
		return errors.New("message key is empty")
	}
	if err := c.builder.SetString(tag, key, text); err != nil {
		return errors.Wrapf(err, "set message %s for %s", key, tag)
	}
	if c.keys[tag] == nil {
		c.keys[tag] = make(map[string]bool)
		c.langs = append(c.langs, tag)
		c.matcher = language.NewMatcher(append([]language.Tag{c.fallback}, c.langs...))
	}
	c.keys[tag][key] = true
	return nil
}

// Load reads a flat YAML mapping of key to text and stores it for tag.
func (c *Catalog) Load(tag language.Tag, r io.Reader) error {
	var texts map[string]string
	if err := yaml.NewDecoder(r).Decode(&texts); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return errors.Wrapf(err, "decode messages for %s", tag)
	}
	return c.SetAll(tag, texts)
}

// SetAll stores every text of texts for tag.
func (c *Catalog) SetAll(tag language.Tag, texts map[string]string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key, text := range texts {
		if err := c.set(tag, key, text); err != nil {
			return err
		}
	}
	c.logger.Debug("messages loaded", "locale", tag.String(), "count", len(texts))
	return nil
}

// Languages returns the locales that hold at least one message.
func (c *Catalog) Languages() []language.Tag {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.langs)
}

// MessageFor renders key for tag. A key missing from the best matching
// locale is taken from the fallback language. Unknown keys are returned
// unchanged.
func (c *Catalog) MessageFor(tag language.Tag, key string, args ...any) string {
	c.mu.RLock()
	best := c.fallback
	if _, i, conf := c.matcher.Match(tag); conf != language.No && i > 0 {
		best = c.langs[i-1]
	}
	if !c.keys[best][key] {
		best = c.fallback
	}
	known := c.keys[best][key]
	c.mu.RUnlock()

	if !known {
		c.logger.Debug("message key not found", "key", key, "locale", tag.String())
		return key
	}
	return xmessage.NewPrinter(best, xmessage.Catalog(c.builder)).Sprintf(key, args...)
}
