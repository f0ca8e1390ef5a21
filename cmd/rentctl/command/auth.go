package command

import (
	"fmt"

	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"
	"github.com/ukydev/transportease/internal/models"
)

func newLoginCmd(a *app) *cobra.Command {
	var (
		email, password string
		owner           bool
	)
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in as a traveller or vehicle owner",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			role := models.RoleUser
			if owner {
				role = models.RoleOwner
			}
			u, err := a.facade.Login(cmd.Context(), email, password, role)
			if err != nil {
				return err
			}
			printUser(cmd.OutOrStdout(), "Logged in", u)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	cmd.Flags().BoolVar(&owner, "owner", false, "sign in as a vehicle owner")
	return cmd
}

func newRegisterCmd(a *app) *cobra.Command {
	var req models.RegisterRequest
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create a traveller account and sign in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			u, err := a.facade.RegisterUser(cmd.Context(), req)
			if err != nil {
				return err
			}
			printUser(cmd.OutOrStdout(), "Registered", u)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&req.Username, "username", "", "username (or --first-name)")
	f.StringVar(&req.FirstName, "first-name", "", "first name")
	f.StringVar(&req.LastName, "last-name", "", "last name")
	f.StringVar(&req.Email, "email", "", "email")
	f.StringVar(&req.Phone, "phone", "", "phone number")
	f.StringVar(&req.Password, "password", "", "password")
	f.StringVar(&req.ConfirmPassword, "confirm-password", "", "repeat the password")
	return cmd
}

func newRegisterOwnerCmd(a *app) *cobra.Command {
	var req models.OwnerRegisterRequest
	cmd := &cobra.Command{
		Use:   "register-owner",
		Short: "Create a vehicle owner account and sign in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			u, err := a.facade.RegisterOwner(cmd.Context(), req)
			if err != nil {
				return err
			}
			printUser(cmd.OutOrStdout(), "Registered", u)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&req.Name, "name", "", "owner name")
	f.StringVar(&req.CompanyName, "company", "", "company name")
	f.StringVar(&req.Phone, "phone", "", "phone number")
	f.StringVar(&req.Email, "email", "", "email")
	f.StringVar(&req.Password, "password", "", "password")
	f.StringVar(&req.City, "city", "", "operating city")
	f.StringVar(&req.AdditionalInfo, "info", "", "additional information")
	return cmd
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.facade.Logout(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		},
	}
}

func newWhoamiCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			u := a.facade.Current()
			if u == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "Not logged in")
				return nil
			}
			table := uitable.New()
			table.AddRow("ID:", u.ID)
			table.AddRow("Username:", u.Username)
			table.AddRow("Email:", u.Email)
			table.AddRow("Role:", u.Role)
			table.AddRow("Session:", a.store.Path())
			fmt.Fprintln(cmd.OutOrStdout(), table)
			return nil
		},
	}
}
