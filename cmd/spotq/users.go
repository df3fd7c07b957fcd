package main

import (
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jeevithdev/spotq/internal/auth"
	"github.com/jeevithdev/spotq/internal/database"
	"github.com/jeevithdev/spotq/internal/model"
	"github.com/jeevithdev/spotq/internal/repository"
)

var (
	newUsername string
	newName     string
	newRole     string
	newPassword string
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Manage login accounts",
}

var usersCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a user",
	Long: `Create a user with a bcrypt-hashed password. The password may also be
given through SPOTQ_NEW_USER_PASSWORD to keep it out of shell history.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		password := newPassword
		if password == "" {
			password = os.Getenv("SPOTQ_NEW_USER_PASSWORD")
		}
		if len(password) < 8 {
			return errors.New("password must be at least 8 characters")
		}
		u := &model.User{Username: newUsername, Name: newName, Role: model.Role(newRole)}
		if err := model.Validate(u); err != nil {
			return err
		}

		a, err := bootstrap(cmd.Context(), true, database.Options{})
		if err != nil {
			return err
		}
		defer a.Close()

		u.PasswordHash, err = auth.HashPassword(password, a.cfg.Auth.BcryptCost)
		if err != nil {
			return err
		}
		if err := repository.NewUserRepository(a.db.Pool).Create(cmd.Context(), u); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "created %s (%s) %s\n", u.Username, u.Role, u.ID)
		return nil
	},
}

var usersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List users",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := bootstrap(cmd.Context(), true, database.Options{})
		if err != nil {
			return err
		}
		defer a.Close()

		users, err := repository.NewUserRepository(a.db.Pool).List(cmd.Context())
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "USERNAME\tNAME\tROLE\tPASSWORD\tCREATED")
		for _, u := range users {
			state := "hashed"
			if !auth.IsHashed(u.PasswordHash) {
				state = "PLAINTEXT"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", u.Username, u.Name, u.Role, state, u.CreatedAt.Format("2006-01-02"))
		}
		return w.Flush()
	},
}

var usersRehashCmd = &cobra.Command{
	Use:   "rehash",
	Short: "Hash any password still stored in plaintext",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := bootstrap(ctx, true, database.Options{})
		if err != nil {
			return err
		}
		defer a.Close()

		repo := repository.NewUserRepository(a.db.Pool)
		users, err := repo.List(ctx)
		if err != nil {
			return err
		}
		n := 0
		for _, u := range users {
			if auth.IsHashed(u.PasswordHash) {
				continue
			}
			hash, err := auth.HashPassword(u.PasswordHash, a.cfg.Auth.BcryptCost)
			if err != nil {
				return fmt.Errorf("hash %s: %w", u.Username, err)
			}
			if err := repo.UpdatePasswordHash(ctx, u.ID, hash); err != nil {
				return fmt.Errorf("update %s: %w", u.Username, err)
			}
			a.log.Info().Str("username", u.Username).Msg("password rehashed")
			n++
		}
		fmt.Fprintf(cmd.OutOrStdout(), "rehashed %d of %d users\n", n, len(users))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(usersCmd)
	usersCmd.AddCommand(usersCreateCmd, usersListCmd, usersRehashCmd)

	f := usersCreateCmd.Flags()
	f.StringVarP(&newUsername, "username", "u", "", "login name (required)")
	f.StringVar(&newName, "name", "", "display name")
	f.StringVar(&newRole, "role", string(model.RoleOperator), "admin, operator or viewer")
	f.StringVarP(&newPassword, "password", "p", "", "password (or SPOTQ_NEW_USER_PASSWORD)")
	_ = usersCreateCmd.MarkFlagRequired("username")
}
