// Package command provides the rentctl root and sub-commands. Every
// command shares one session record, read from SESSION_FILE or the user's
// config directory.
package command

import (
	"errors"
	"fmt"
	"io"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/ukydev/transportease/internal/client"
	"github.com/ukydev/transportease/internal/config"
	"github.com/ukydev/transportease/internal/models"
	"github.com/ukydev/transportease/internal/session"
)

var errNotLoggedIn = errors.New("not logged in, run rentctl login first")

// app holds what the sub-commands share once flags are parsed.
type app struct {
	v      *viper.Viper
	cfg    *config.Config
	log    *log.Logger
	store  *session.FileStore
	facade *session.Facade
}

// NewRootCmd builds the rentctl command tree.
func NewRootCmd() *cobra.Command {
	a := &app{v: config.New()}

	root := &cobra.Command{
		Use:           "rentctl",
		Short:         "Browse, price and book rental vehicles on TransportEase",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init()
		},
	}

	flags := root.PersistentFlags()
	flags.String("api-url", "", "rental API base URL (API_BASE_URL)")
	flags.String("session-file", "", "session record path (SESSION_FILE)")
	flags.String("log-level", "", "log level (LOG_LEVEL)")
	_ = a.v.BindPFlag("api_base_url", flags.Lookup("api-url"))
	_ = a.v.BindPFlag("session_file", flags.Lookup("session-file"))
	_ = a.v.BindPFlag("log_level", flags.Lookup("log-level"))

	root.AddCommand(
		newLoginCmd(a),
		newRegisterCmd(a),
		newRegisterOwnerCmd(a),
		newLogoutCmd(a),
		newWhoamiCmd(a),
		newVehiclesCmd(a),
		newQuoteCmd(a),
		newBookCmd(a),
		newBookingsCmd(a),
	)
	return root
}

func (a *app) init() error {
	cfg, err := config.Load(a.v)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.log = cfg.NewLogger()

	path := cfg.SessionFile
	if path == "" {
		path = session.DefaultPath()
	}
	a.store = session.NewFileStore(path)
	a.facade = session.NewFacade(a.client(""), a.store, session.WithLogger(a.log))
	a.log.WithFields(log.Fields{
		"api_url": cfg.APIBaseURL,
		"session": path,
		"state":   a.facade.State(),
	}).Debug("Session loaded")
	return nil
}

func (a *app) client(token string) *client.Client {
	opts := []client.Option{
		client.WithTimeout(a.cfg.HTTPTimeout),
		client.WithLogger(a.log),
	}
	if token != "" {
		opts = append(opts, client.WithToken(token))
	}
	return client.New(a.cfg.APIBaseURL, opts...)
}

// requireUser returns the signed-in user and a client carrying their token.
func (a *app) requireUser() (*models.User, *client.Client, error) {
	u := a.facade.Current()
	if u == nil {
		return nil, nil, errNotLoggedIn
	}
	return u, a.client(u.Token), nil
}

func printUser(w io.Writer, verb string, u *models.User) {
	fmt.Fprintf(w, "%s as %s <%s> (%s)\n", verb, u.Username, u.Email, u.Role)
}
