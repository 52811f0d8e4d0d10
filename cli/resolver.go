package cli

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"

	"github.com/ardnew/mustache/log"
)

// resolve returns a [kong.ConfigurationLoader] that reads YAML
// configuration files.
//
// Keys are flag names. Nested mappings are joined with hyphens, so both of
// the following set --log-level:
//
//	log-level: debug
//
//	log:
//	  level: debug
//
// Underscores may be used in place of hyphens. A file that cannot be parsed
// is logged and ignored. Command-line flags override configured values.
func resolve(ctx context.Context) kong.ConfigurationLoader {
	return func(r io.Reader) (kong.Resolver, error) {
		var doc map[string]any

		err := yaml.NewDecoder(r).DecodeContext(ctx, &doc)
		if err != nil && !errors.Is(err, io.EOF) {
			log.WarnContext(ctx, "ignoring malformed configuration",
				slog.Any("error", err))

			return config{}, nil
		}

		cfg := make(config, len(doc))
		cfg.add("", doc)

		return cfg, nil
	}
}

// config implements [kong.Resolver] for YAML configuration files.
type config map[string]any

func (r config) add(prefix string, m map[string]any) {
	for k, v := range m {
		key := strings.ReplaceAll(k, "_", "-")
		if prefix != "" {
			key = prefix + "-" + key
		}

		if sub, ok := v.(map[string]any); ok {
			r.add(key, sub)

			continue
		}

		r[key] = flagValue(v)
	}
}

// flagValue converts numbers to strings for kong's mappers, including
// those in lists.
func flagValue(v any) any {
	switch v := v.(type) {
	case int64:
		return strconv.FormatInt(v, 10)

	case uint64:
		return strconv.FormatUint(v, 10)

	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)

	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = flagValue(item)
		}

		return out

	default:
		return v
	}
}

// Validate implements [kong.Resolver].
func (r config) Validate(*kong.Application) error { return nil }

// Resolve implements [kong.Resolver].
func (r config) Resolve(
	_ *kong.Context,
	_ *kong.Path,
	flag *kong.Flag,
) (any, error) {
	if value, ok := r[flag.Name]; ok {
		return value, nil
	}

	return nil, nil
}
