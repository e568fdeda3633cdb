package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/syssam/tabula/internal/movies"
)

func newUsersCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "users",
		Aliases: []string{"user"},
		Short:   "Register and look up users",
	}
	cmd.AddCommand(
		newUsersSignupCmd(a),
		newUsersSigninCmd(a),
		newUsersFindCmd(a),
	)
	return cmd
}

func newUsersSignupCmd(a *app) *cobra.Command {
	var s movies.Signup
	cmd := &cobra.Command{
		Use:   "signup --login <login> [flags]",
		Short: "Register a user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if s.Password == "" {
				p, err := readPassword(cmd.InOrStdin())
				if err != nil {
					return err
				}
				s.Password = p
			}
			u, err := a.catalog.Signup(cmd.Context(), s)
			if err != nil {
				return err
			}
			return renderUsers(cmd.OutOrStdout(), a.cfg.Output, []*movies.User{u})
		},
	}
	cmd.Flags().StringVar(&s.Login, "login", "", "login name")
	cmd.Flags().StringVar(&s.Password, "password", "", "password, read from stdin when empty")
	cmd.Flags().StringVar(&s.Email, "email", "", "email address")
	cmd.Flags().StringVar(&s.Role, "role", movies.RoleUser, "role: user or admin")
	_ = cmd.MarkFlagRequired("login")
	_ = cmd.RegisterFlagCompletionFunc("role", cobra.FixedCompletions([]string{movies.RoleUser, movies.RoleAdmin}, cobra.ShellCompDirectiveNoFileComp))
	return cmd
}

func newUsersSigninCmd(a *app) *cobra.Command {
	var login, password string
	cmd := &cobra.Command{
		Use:   "signin --login <login>",
		Short: "Check the credentials of a user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if password == "" {
				p, err := readPassword(cmd.InOrStdin())
				if err != nil {
					return err
				}
				password = p
			}
			u, err := a.catalog.SignIn(cmd.Context(), login, password)
			if err != nil {
				return err
			}
			return renderUsers(cmd.OutOrStdout(), a.cfg.Output, []*movies.User{u})
		},
	}
	cmd.Flags().StringVar(&login, "login", "", "login name")
	cmd.Flags().StringVar(&password, "password", "", "password, read from stdin when empty")
	_ = cmd.MarkFlagRequired("login")
	return cmd
}

func newUsersFindCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "find <login>",
		Short: "Show the user with a login",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := a.catalog.UserByLogin(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return renderUsers(cmd.OutOrStdout(), a.cfg.Output, []*movies.User{u})
		},
	}
}

// readPassword reads the first line of r.
func readPassword(r io.Reader) (string, error) {
	sc := bufio.NewScanner(r)
	sc.Scan()
	if err := sc.Err(); err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	p := strings.TrimRight(sc.Text(), "\r")
	if p == "" {
		return "", errors.New("password is required")
	}
	return p, nil
}
