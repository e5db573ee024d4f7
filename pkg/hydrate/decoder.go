// Package hydrate decodes resolved option maps into consumer structs.
package hydrate

import (
	"fmt"
	"maps"
	"slices"

	"github.com/go-viper/mapstructure/v2"
)

// TagName is the struct tag consulted when matching payload keys to fields.
const TagName = "json"

// Context identifies the options being decoded, for error messages and hooks.
type Context struct {
	Source string
	Task   string
}

func (c Context) String() string {
	if c.Task == "" {
		return c.Source
	}
	return c.Source + "/" + c.Task
}

// PreHook may rewrite the payload before decoding. Returning a nil map keeps
// the current payload.
type PreHook func(Context, map[string]any) (map[string]any, error)

// PostHook adjusts or validates the decoded value.
type PostHook[T any] func(Context, *T) error

// CustomDecoder replaces the mapstructure decoding step.
type CustomDecoder[T any] func(Context, map[string]any) (T, error)

// DecoderOption configures a Decoder.
type DecoderOption[T any] func(*Decoder[T])

// Decoder converts option payloads into T. Strings are weakly coerced into
// numeric and boolean fields.
type Decoder[T any] struct {
	pre    []PreHook
	post   []PostHook[T]
	strict bool
	custom CustomDecoder[T]
}

func WithPreHook[T any](hook PreHook) DecoderOption[T] {
	return func(d *Decoder[T]) {
		if hook != nil {
			d.pre = append(d.pre, hook)
		}
	}
}

func WithPostHook[T any](hook PostHook[T]) DecoderOption[T] {
	return func(d *Decoder[T]) {
		if hook != nil {
			d.post = append(d.post, hook)
		}
	}
}

// WithDisallowUnknownFields rejects payload keys T does not declare.
func WithDisallowUnknownFields[T any]() DecoderOption[T] {
	return func(d *Decoder[T]) { d.strict = true }
}

func WithCustomDecoder[T any](decoder CustomDecoder[T]) DecoderOption[T] {
	return func(d *Decoder[T]) { d.custom = decoder }
}

func NewDecoder[T any](opts ...DecoderOption[T]) *Decoder[T] {
	d := &Decoder[T]{}
	for _, opt := range opts {
		if opt != nil {
			opt(d)
		}
	}
	return d
}

// Decode runs the pre hooks, decodes and then runs the post hooks. payload is
// not modified.
func (d *Decoder[T]) Decode(ctx Context, payload map[string]any) (T, error) {
	var zero T
	if payload == nil {
		return zero, fmt.Errorf("hydrate: payload is nil for %q", ctx)
	}

	current := clonePayload(payload)
	for _, hook := range d.pre {
		next, err := hook(ctx, current)
		if err != nil {
			return zero, fmt.Errorf("hydrate: pre-hook for %q failed: %w", ctx, err)
		}
		if next != nil {
			current = next
		}
	}

	result, err := d.decode(ctx, current)
	if err != nil {
		return zero, err
	}

	for _, hook := range d.post {
		if err := hook(ctx, &result); err != nil {
			return zero, fmt.Errorf("hydrate: post-hook for %q failed: %w", ctx, err)
		}
	}
	return result, nil
}

func (d *Decoder[T]) decode(ctx Context, payload map[string]any) (T, error) {
	var result T
	if d.custom != nil {
		result, err := d.custom(ctx, payload)
		if err != nil {
			return result, fmt.Errorf("hydrate: custom decoder for %q failed: %w", ctx, err)
		}
		return result, nil
	}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          TagName,
		WeaklyTypedInput: true,
		ErrorUnused:      d.strict,
		Result:           &result,
	})
	if err != nil {
		return result, fmt.Errorf("hydrate: configure decoder for %q: %w", ctx, err)
	}
	if err := decoder.Decode(payload); err != nil {
		return result, fmt.Errorf("hydrate: decode %q: %w", ctx, err)
	}
	return result, nil
}

// clonePayload copies the top-level map and any string slices so hooks can
// edit freely.
func clonePayload(payload map[string]any) map[string]any {
	out := maps.Clone(payload)
	for key, value := range out {
		if list, ok := value.([]string); ok {
			out[key] = slices.Clone(list)
		}
	}
	return out
}
