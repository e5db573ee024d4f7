package annotate

import (
	"github.com/goliatone/go-annotate/pkg/hydrate"
)

// Decode maps resolved options onto T using `json` tags named after the
// option keys. Hooks run as configured on the hydrate decoder.
func Decode[T any](resolved ResolvedOptions, opts ...hydrate.DecoderOption[T]) (T, error) {
	return hydrate.NewDecoder(opts...).Decode(hydrate.Context{Source: "options"}, resolved.Map())
}
