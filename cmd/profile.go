package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/spindle/internal/shared"
	"github.com/urfave/cli/v3"
)

// Profile fetches and displays the authenticated account's profile.
func (r *Runner) Profile(ctx context.Context, cmd *cli.Command) error {
	useJSON := cmd.Bool("json")
	pretty := cmd.Bool("pretty")

	if err := r.requireService(); err != nil {
		return err
	}

	profile, err := r.spotify.Profile(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	if useJSON {
		return r.writeJSON(profile, pretty)
	}

	r.writePlain("Profile: %s\n", profile.DisplayName)
	r.writePlain("  ID: %s\n", profile.ID)
	if profile.Email != "" {
		r.writePlain("  Email: %s\n", profile.Email)
	}
	if profile.Country != "" {
		r.writePlain("  Country: %s\n", profile.Country)
	}
	if profile.Product != "" {
		r.writePlain("  Product: %s\n", profile.Product)
	}
	r.writePlain("  Followers: %d\n", profile.Followers)

	return nil
}
