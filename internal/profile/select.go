package profile

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/ktr0731/go-fuzzyfinder"

	"github.com/thoreinstein/nixup/internal/cli/prompt"
	nixuperrors "github.com/thoreinstein/nixup/internal/errors"
)

// Choose picks a profile for the run. A single-profile catalog is
// auto-selected. With several profiles, interactive mode uses the
// fuzzy-finder when a full terminal is available and falls back to the
// numbered prompt otherwise.
func Choose(c *Catalog, p prompt.Prompter, fullTTY bool) (Profile, error) {
	profiles := c.List()
	if len(profiles) == 0 {
		return Profile{}, errors.New("empty profile catalog")
	}
	if len(profiles) == 1 {
		return profiles[0], nil
	}

	if fullTTY {
		return chooseFuzzy(profiles)
	}
	return choosePrompt(profiles, p)
}

func chooseFuzzy(profiles []Profile) (Profile, error) {
	idx, err := fuzzyfinder.Find(
		profiles,
		func(i int) string {
			return fmt.Sprintf("%s — %s", profiles[i].Name, profiles[i].Description)
		},
		fuzzyfinder.WithPreviewWindow(func(i, w, h int) string {
			if i == -1 {
				return ""
			}
			p := profiles[i]
			return fmt.Sprintf("Profile: %s\n\n%s\n\nflake.nix source:\n%s",
				p.Name, p.Description, p.FlakeURL)
		}),
	)
	if err != nil {
		if errors.Is(err, fuzzyfinder.ErrAbort) {
			return Profile{}, nixuperrors.ErrCancelled
		}
		return Profile{}, errors.Wrap(err, "profile selection failed")
	}
	return profiles[idx], nil
}

func choosePrompt(profiles []Profile, p prompt.Prompter) (Profile, error) {
	options := make([]string, len(profiles))
	def := 0
	for i, pr := range profiles {
		options[i] = fmt.Sprintf("%s — %s", pr.Name, pr.Description)
		if pr.Name == DefaultName {
			def = i
		}
	}

	idx, err := p.Select("Choose an environment profile:", options, def)
	if err != nil {
		return Profile{}, err
	}
	return profiles[idx], nil
}
