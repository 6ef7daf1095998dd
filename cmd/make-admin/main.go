// Command make-admin grants the admin role to an existing user.
//
//	make-admin --email someone@example.com
package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-extras/cobraflags"
	"github.com/spf13/cobra"

	"github.com/DevotionLoop/initializers"
	"github.com/DevotionLoop/services"
)

const emailFlag = "email"

var flags = map[string]cobraflags.Flag{
	emailFlag: &cobraflags.StringFlag{
		Name:  emailFlag,
		Value: "",
		Usage: "Email address of the user to promote (required)",
	},
}

func newCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "make-admin",
		Short: "Promote a registered user to admin",
		Long: `Promote a registered user to admin.

The user must already have signed up through the app. Running the command
for a user who is already an admin changes nothing.`,
		SilenceUsage: true,
		RunE:         run,
	}

	cobraflags.RegisterMap(cmd, flags)
	return cmd
}

func run(cmd *cobra.Command, _ []string) error {
	email := strings.ToLower(strings.TrimSpace(flags[emailFlag].GetString()))
	if email == "" {
		return errors.New("--email is required")
	}

	initializers.LoadEnv()

	cfg, err := initializers.LoadConfig()
	if err != nil {
		return err
	}

	if err := initializers.InitLogger("warn", false); err != nil {
		return err
	}

	ctx := cmd.Context()

	db, pool, err := initializers.ConnectDB(ctx, cfg.DBURL)
	if err != nil {
		return err
	}
	defer pool.Close()

	user, changed, err := services.NewUserRoleService(db).PromoteByEmail(ctx, email)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if !changed {
		fmt.Fprintf(out, "User %s is already an admin\n", user.Email)
		return nil
	}

	fmt.Fprintf(out, "Promoted %s (%s) to admin\n", user.Name, user.Email)
	return nil
}

func main() {
	if err := newCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
