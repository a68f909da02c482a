package redis

import (
	"context"
	"io"
	"log/slog"
	"strings"

	"github.com/cockroachdb/errors"
	backend "github.com/redis/go-redis/v9"
	"golang.org/x/text/language"
)

// DefaultPrefix is prepended to the locale to form a message hash key, as in
// mold:messages:pt-BR.
const DefaultPrefix = "mold:messages:"

// Sink receives the messages of one locale. *message.Catalog implements it.
type Sink interface {
	SetAll(tag language.Tag, texts map[string]string) error
}

// Source reads localized message texts from Redis. Each locale is a hash
// mapping message keys to printf formats.
type Source struct {
	client *backend.Client
	prefix string
	logger *slog.Logger
}

type Option func(*Source)

// WithPrefix sets the key prefix of the message hashes.
func WithPrefix(prefix string) Option {
	return func(s *Source) {
		s.prefix = prefix
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Source) {
		s.logger = logger
	}
}

// New creates a message source connected to address.
func New(address, password string, db int, opts ...Option) *Source {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a message source from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Source {
	s := &Source{
		client: client,
		prefix: DefaultPrefix,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Source) key(tag language.Tag) string {
	return s.prefix + tag.String()
}

// Close closes the underlying client.
func (s *Source) Close() error {
	return s.client.Close()
}

// Locales lists the locales that have a message hash, in scan order.
// Keys whose suffix is not a language tag are skipped.
func (s *Source) Locales(ctx context.Context) ([]language.Tag, error) {
	var tags []language.Tag
	iter := s.client.Scan(ctx, 0, s.prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		suffix := strings.TrimPrefix(iter.Val(), s.prefix)
		tag, err := language.Parse(suffix)
		if err != nil {
			s.logger.Debug("skipping message key", "key", iter.Val(), "error", err)
			continue
		}
		tags = append(tags, tag)
	}
	if err := iter.Err(); err != nil {
		return nil, errors.Wrapf(err, "scan %s*", s.prefix)
	}
	return tags, nil
}

// Messages returns the texts stored for tag. A missing hash yields an empty
// map.
func (s *Source) Messages(ctx context.Context, tag language.Tag) (map[string]string, error) {
	texts, err := s.client.HGetAll(ctx, s.key(tag)).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "read messages for %s", tag)
	}
	return texts, nil
}

// Save stores texts for tag, keeping any other keys already in the hash.
func (s *Source) Save(ctx context.Context, tag language.Tag, texts map[string]string) error {
	if len(texts) == 0 {
		return nil
	}
	values := make(map[string]any, len(texts))
	for k, v := range texts {
		values[k] = v
	}
	if err := s.client.HSet(ctx, s.key(tag), values).Err(); err != nil {
		return errors.Wrapf(err, "save messages for %s", tag)
	}
	return nil
}

// LoadInto copies every stored locale into sink and returns the number of
// locales loaded.
func (s *Source) LoadInto(ctx context.Context, sink Sink) (int, error) {
	tags, err := s.Locales(ctx)
	if err != nil {
		return 0, err
	}
	loaded := 0
	for _, tag := range tags {
		texts, err := s.Messages(ctx, tag)
		if err != nil {
			return loaded, err
		}
		if len(texts) == 0 {
			continue
		}
		if err := sink.SetAll(tag, texts); err != nil {
			return loaded, errors.Wrapf(err, "load messages for %s", tag)
		}
		s.logger.Debug("messages loaded from redis", "locale", tag.String(), "count", len(texts))
		loaded++
	}
	return loaded, nil
}

// LoadMessages reads every message hash under prefix into sink. An empty
// prefix means DefaultPrefix.
func LoadMessages(ctx context.Context, client *backend.Client, prefix string, sink Sink) error {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	_, err := NewFromClient(client, WithPrefix(prefix)).LoadInto(ctx, sink)
	return err
}
