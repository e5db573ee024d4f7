package envstore

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/afero"
)

// Dotenv parses the given files in order and returns the combined values.
// Missing files are skipped. Earlier files win over later ones, matching
// godotenv.Load which never overrides a key it already set.
func Dotenv(fs afero.Fs, paths ...string) (map[string]string, error) {
	out := map[string]string{}
	for _, path := range paths {
		if path == "" {
			continue
		}
		exists, err := afero.Exists(fs, path)
		if err != nil {
			return nil, fmt.Errorf("envstore: stat %q: %w", path, err)
		}
		if !exists {
			continue
		}
		file, err := fs.Open(path)
		if err != nil {
			return nil, fmt.Errorf("envstore: open %q: %w", path, err)
		}
		values, err := godotenv.Parse(file)
		_ = file.Close()
		if err != nil {
			return nil, fmt.Errorf("envstore: parse %q: %w", path, err)
		}
		for key, value := range values {
			if _, seen := out[key]; seen {
				continue
			}
			out[key] = value
		}
	}
	return out, nil
}
