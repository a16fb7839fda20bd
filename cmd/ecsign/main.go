package main

import (
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/mahdiidarabi/ecsign/pkg/ecsign"
)

// envPrefix is the prefix of environment variables that override flags, e.g.
// ECSIGN_KEY for --key.
const envPrefix = "ECSIGN"

// cli holds state shared by all commands of one invocation.
type cli struct {
	v      *viper.Viper
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{v: viper.New(), logger: zap.NewNop()}

	c.v.SetEnvPrefix(envPrefix)
	c.v.AutomaticEnv()
	c.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	rootCmd := &cobra.Command{
		Use:           "ecsign",
		Short:         "Deterministic secp256k1 ECDSA signing",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := c.v.BindPFlags(cmd.Flags()); err != nil {
				return errors.Wrap(err, "failed to bind flags")
			}
			return c.setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = c.logger.Sync()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.Bool("verbose", false, "Log debug output to stderr")
	flags.Int("window", 1, "Precomputation window for multiples of the generator (1, 2, 4, 8 or 16)")

	rootCmd.AddCommand(
		c.signCmd(),
		c.verifyCmd(),
		c.pubkeyCmd(),
		c.recoverCmd(),
		c.batchCmd(),
	)
	return rootCmd
}

func (c *cli) setup() error {
	if c.v.GetBool("verbose") {
		logger, err := zap.NewDevelopment()
		if err != nil {
			return errors.Wrap(err, "failed to create logger")
		}
		c.logger = logger
	}

	if err := ecsign.SetBaseWindowSize(c.v.GetInt("window")); err != nil {
		return errors.Wrap(err, "invalid --window")
	}
	return nil
}

func main() {
	rootCmd := newRootCmd()

	// On failure we print the error string and exit with a non-0 status.
	if err := rootCmd.Execute(); err != nil {
		rootCmd.PrintErrln("Error:", err)
		os.Exit(1)
	}
}
