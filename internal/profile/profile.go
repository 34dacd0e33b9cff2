// Package profile manages the catalog of environment profiles: named
// flake.nix sources a project can be bootstrapped from.
//
// The catalog is a TOML file in the nixup config directory. A built-in
// default profile is always present so the tool works with no
// configuration at all.
package profile

import (
	"os"
	"sort"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/cockroachdb/errors"

	nixuperrors "github.com/thoreinstein/nixup/internal/errors"
)

// DefaultName is the profile used when the user does not pick one.
const DefaultName = "default"

// DefaultFlakeURL is the remote flake definition for the built-in profile.
const DefaultFlakeURL = "https://raw.githubusercontent.com/thoreinstein/nix-templates/main/graphics/flake.nix"

// Profile is one named environment template.
type Profile struct {
	// Name is the catalog key.
	Name string `toml:"-"`

	// Description is a one-line human summary.
	Description string `toml:"description"`

	// FlakeURL is where flake.nix is fetched from.
	FlakeURL string `toml:"flake_url"`
}

// catalogFile is the on-disk TOML shape.
type catalogFile struct {
	Profiles map[string]Profile `toml:"profiles"`
}

// Catalog holds all known profiles.
type Catalog struct {
	profiles map[string]Profile
}

// Builtin returns a catalog containing only the built-in default profile.
func Builtin() *Catalog {
	return &Catalog{profiles: map[string]Profile{
		DefaultName: {
			Name:        DefaultName,
			Description: "C toolchain, build tools, and graphics libraries",
			FlakeURL:    DefaultFlakeURL,
		},
	}}
}

// Load reads the TOML catalog at path and merges it over the built-in
// profiles. A missing file yields the built-in catalog. File entries win
// over built-ins with the same name.
func Load(path string) (*Catalog, error) {
	c := Builtin()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return c, nil
		}
		return nil, errors.Wrap(err, "reading profile catalog")
	}

	var file catalogFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, errors.Wrap(err, "parsing profile catalog")
	}

	for name, p := range file.Profiles {
		p.Name = name
		c.profiles[name] = p
	}
	return c, nil
}

// Get returns the named profile, or ErrProfileNotFound.
func (c *Catalog) Get(name string) (Profile, error) {
	p, ok := c.profiles[name]
	if !ok {
		return Profile{}, errors.Wrapf(nixuperrors.ErrProfileNotFound, "%q", name)
	}
	return p, nil
}

// List returns all profiles sorted by name.
func (c *Catalog) List() []Profile {
	out := make([]Profile, 0, len(c.profiles))
	for _, p := range c.profiles {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Len returns the number of profiles in the catalog.
func (c *Catalog) Len() int {
	return len(c.profiles)
}
