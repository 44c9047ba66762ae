package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/spec-kit/ticket-tracker/internal/app"
	"github.com/spec-kit/ticket-tracker/internal/domain"
	"github.com/spec-kit/ticket-tracker/internal/service"
)

type userView struct {
	ID       int64       `json:"id"`
	Username string      `json:"username"`
	Role     domain.Role `json:"role"`
}

func newUserCmd(opts *rootOptions) *cobra.Command {
	userCmd := &cobra.Command{
		Use:   "user",
		Short: "Manage user accounts",
	}
	userCmd.AddCommand(newUserCreateCmd(opts), newUserDeleteCmd(opts), newUserListCmd(opts))
	return userCmd
}

func newUserCreateCmd(opts *rootOptions) *cobra.Command {
	var username, password, role string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a user",
		RunE: func(cmd *cobra.Command, _ []string) error {
			container, _, _, err := opts.open(cmd.Context(), app.Options{})
			if err != nil {
				return err
			}
			defer container.Close()

			user, err := container.AuthService.CreateUser(cmd.Context(), service.CreateUserInput{
				Username: username,
				Password: password,
				Role:     domain.Role(role),
			})
			if err != nil {
				return err
			}
			view := userView{ID: user.ID, Username: user.Username, Role: user.Role}
			if opts.jsonOutput {
				return opts.outputJSON(cmd.OutOrStdout(), view)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created user %d (%s, %s)\n", view.ID, view.Username, view.Role)
			return nil
		},
	}
	cmd.Flags().StringVar(&username, "username", "", "login name")
	cmd.Flags().StringVar(&password, "password", "", "initial password")
	cmd.Flags().StringVar(&role, "role", string(domain.RoleEmployee), "EMPLOYEE or IT_SUPPORT")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newUserDeleteCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a user that owns no tickets, comments or audit entries",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid user id %q", args[0])
			}
			container, _, _, err := opts.open(cmd.Context(), app.Options{})
			if err != nil {
				return err
			}
			defer container.Close()

			if err := container.AuthService.DeleteUser(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted user %d\n", id)
			return nil
		},
	}
}

func newUserListCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List users",
		RunE: func(cmd *cobra.Command, _ []string) error {
			container, _, _, err := opts.open(cmd.Context(), app.Options{})
			if err != nil {
				return err
			}
			defer container.Close()

			users, err := container.AuthService.ListUsers(cmd.Context())
			if err != nil {
				return err
			}
			views := make([]userView, 0, len(users))
			for _, u := range users {
				views = append(views, userView{ID: u.ID, Username: u.Username, Role: u.Role})
			}
			if opts.jsonOutput {
				return opts.outputJSON(cmd.OutOrStdout(), views)
			}
			for _, v := range views {
				fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\t%s\n", v.ID, v.Username, v.Role)
			}
			return nil
		},
	}
}
