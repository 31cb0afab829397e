package command

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/iliyamo/parking-reservation/internal/repository"
	"github.com/iliyamo/parking-reservation/internal/service"
)

var adminInput service.RegisterInput

var createAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Create an administrator account",
	Long: `Create an administrator account.  The password is read from
--password or, when the flag is empty, from ADMIN_PASSWORD.`,
	Args: cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		cfg, log, db, err := bootstrap()
		if err != nil {
			return err
		}
		defer db.Close()

		in := adminInput
		if in.Password == "" {
			in.Password = os.Getenv("ADMIN_PASSWORD")
		}
		if in.Password == "" {
			return errors.New("password required (--password or ADMIN_PASSWORD)")
		}
		in.ConfirmPassword = in.Password

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		accounts := service.NewAccountService(service.Deps{
			Store: service.NewSQLStore(repository.NewStore(db)),
			Log:   log,
		}, cfg.Auth())
		u, err := accounts.CreateAdmin(ctx, in)
		if err != nil {
			return err
		}
		log.WithField("user_id", u.ID).WithField("username", u.Username).Info("administrator created")
		return nil
	},
}

func init() {
	f := createAdminCmd.Flags()
	f.StringVar(&adminInput.Username, "username", "admin", "login name")
	f.StringVar(&adminInput.Email, "email", "admin@parking.local", "email address")
	f.StringVar(&adminInput.Password, "password", "", "password (defaults to $ADMIN_PASSWORD)")
	f.StringVar(&adminInput.FullName, "full-name", "System Administrator", "display name")
	rootCmd.AddCommand(createAdminCmd)
}
