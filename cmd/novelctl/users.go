package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	userModel "novelhub-backend/internal/domains/user/model"
)

var (
	promoteUser string
	promoteRole string
)

var promoteCmd = &cobra.Command{
	Use:   "promote",
	Short: "Change a user's role (user | author | admin)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		role := userModel.Role(strings.ToLower(strings.TrimSpace(promoteRole)))
		if !role.IsValid() {
			return fmt.Errorf("invalid role %q", promoteRole)
		}

		ctx := cmd.Context()
		rt, err := openRuntime(ctx)
		if err != nil {
			return err
		}
		defer rt.Close()

		profile, err := rt.findProfile(ctx, promoteUser)
		if err != nil {
			return fmt.Errorf("find user %q: %w", promoteUser, err)
		}

		if profile.Role == role {
			fmt.Printf("@%s is already %s\n", profile.Username, role)
			return nil
		}

		if err := rt.users.UpdateRole(ctx, profile.ID, role); err != nil {
			return err
		}

		color.New(color.FgHiGreen, color.Bold).Printf("✅ @%s: %s → %s\n", profile.Username, profile.Role, role)
		return nil
	},
}

func init() {
	promoteCmd.Flags().StringVar(&promoteUser, "user", "", "username or profile id")
	promoteCmd.Flags().StringVar(&promoteRole, "role", "author", "user | author | admin")
	_ = promoteCmd.MarkFlagRequired("user")
}
