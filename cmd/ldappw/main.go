// Command ldappw encodes and checks LDAP-style {SCHEME} password values.
package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/hasbyte1/go-authencoding/authencoding"
	"github.com/hasbyte1/go-authencoding/authencoding/metrics"
)

var version = "dev" // Will be set during build

// errMismatch makes validate exit with status 1 without printing an error.
var errMismatch = errors.New("password mismatch")

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// run executes the command line and returns the process exit status.
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	a := &app{stdin: stdin, stdout: stdout, stderr: stderr}
	cmd := a.rootCmd()
	cmd.SetArgs(args)
	cmd.SetIn(stdin)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.Execute()
	if ferr := a.flushMetrics(); ferr != nil {
		fmt.Fprintf(stderr, "Error: writing metrics: %v\n", ferr)
		if err == nil {
			err = ferr
		}
	}
	switch {
	case err == nil:
		return 0
	case errors.Is(err, errMismatch):
		return 1
	default:
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
}

type app struct {
	cfgFile  string
	password string
	scheme   string

	stdin          io.Reader
	stdout, stderr io.Writer

	cfg     Config
	mgr     *authencoding.Manager
	promReg *prometheus.Registry
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "ldappw",
		Short:         "Encode and verify {SCHEME} password values",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Long: `ldappw encodes passwords in the {SCHEME}payload format used by LDAP
userPassword attributes and checks attempts against stored values.

The password is taken from --password or, when absent, from the first line
of standard input.

Configuration file must be in JSON format with the following structure:
{
    "default_scheme": "SSHA",
    "bcrypt_cost": 12,
    "disabled_schemes": ["MYSQL"],
    "enable_argon2": false,
    "random": "secure",
    "log_level": "info",
    "metrics_file": "ldappw.prom"
}`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
	}
	root.PersistentFlags().StringVarP(&a.cfgFile, "config", "c", "", "path to config file")
	root.PersistentFlags().StringVarP(&a.password, "password", "p", "", "password (default: first line of stdin)")

	encrypt := &cobra.Command{
		Use:   "encrypt",
		Short: "Encode a password",
		Args:  cobra.NoArgs,
		RunE:  a.runEncrypt,
	}
	encrypt.Flags().StringVarP(&a.scheme, "scheme", "s", "", "scheme identifier (default: configured default_scheme)")

	root.AddCommand(
		encrypt,
		&cobra.Command{
			Use:   "validate REFERENCE",
			Short: "Check a password against a stored value; exits 1 on mismatch",
			Args:  cobra.ExactArgs(1),
			RunE:  a.runValidate,
		},
		&cobra.Command{
			Use:   "check VALUE",
			Short: "Print the scheme of a stored value, or cleartext",
			Args:  cobra.ExactArgs(1),
			RunE:  a.runCheck,
		},
		&cobra.Command{
			Use:   "schemes",
			Short: "List registered schemes in matching order",
			Args:  cobra.NoArgs,
			RunE:  a.runSchemes,
		},
		&cobra.Command{
			Use:   "rehash REFERENCE",
			Short: "Report whether a stored value should be re-encoded",
			Args:  cobra.ExactArgs(1),
			RunE:  a.runRehash,
		},
	)
	return root
}

// setup loads the configuration and builds the manager.
func (a *app) setup() error {
	a.cfg = DefaultConfig()
	if a.cfgFile != "" {
		a.cfg = Config{}
		if err := LoadConfig(a.cfgFile, &a.cfg); err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
	}

	level, err := a.cfg.Level()
	if err != nil {
		return err
	}
	logger := slog.New(slog.NewTextHandler(a.stderr, &slog.HandlerOptions{Level: level}))

	opts := a.cfg.Options()
	if a.cfg.Random == "reseeding" {
		logger.Warn("using reseeding random source; salts are not cryptographically secure")
	}

	a.promReg = prometheus.NewRegistry()
	mgr, err := authencoding.NewDefaultManager(opts,
		authencoding.WithLogger(logger),
		authencoding.WithObserver(metrics.New(a.promReg)),
	)
	if err != nil {
		return fmt.Errorf("failed to create manager: %w", err)
	}
	if err := mgr.SetDefaultScheme(authencoding.ParseIdentifier(a.cfg.DefaultScheme)); err != nil {
		return fmt.Errorf("default_scheme: %w", err)
	}
	a.mgr = mgr
	logger.Debug("manager ready", "schemes", mgr.ListSchemes(), "default", string(mgr.DefaultScheme()))
	return nil
}

// flushMetrics writes the collected counters when a metrics file is
// configured and the manager was built.
func (a *app) flushMetrics() error {
	if a.promReg == nil || a.cfg.MetricsFile == "" {
		return nil
	}
	return prometheus.WriteToTextfile(a.cfg.MetricsFile, a.promReg)
}

// readPassword returns --password when given, otherwise the first line of
// stdin without its line terminator.
func (a *app) readPassword(cmd *cobra.Command) (string, error) {
	if cmd.Flags().Changed("password") {
		return a.password, nil
	}
	line, err := bufio.NewReader(a.stdin).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("reading password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (a *app) runEncrypt(cmd *cobra.Command, _ []string) error {
	pw, err := a.readPassword(cmd)
	if err != nil {
		return err
	}
	id := a.mgr.DefaultScheme()
	if a.scheme != "" {
		id = authencoding.ParseIdentifier(a.scheme)
	}
	out, err := a.mgr.EncryptWith(authencoding.TextPassword(pw), id)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.stdout, string(out))
	return nil
}

func (a *app) runValidate(cmd *cobra.Command, args []string) error {
	pw, err := a.readPassword(cmd)
	if err != nil {
		return err
	}
	if !a.mgr.ValidateString(args[0], pw) {
		fmt.Fprintln(a.stdout, "mismatch")
		return errMismatch
	}
	fmt.Fprintln(a.stdout, "ok")
	return nil
}

func (a *app) runCheck(_ *cobra.Command, args []string) error {
	id, ok := a.mgr.Detect(authencoding.Binary(args[0]))
	if !ok {
		fmt.Fprintln(a.stdout, "cleartext")
		return nil
	}
	fmt.Fprintln(a.stdout, id)
	return nil
}

func (a *app) runSchemes(_ *cobra.Command, _ []string) error {
	def := a.mgr.DefaultScheme()
	for _, id := range a.mgr.ListSchemes() {
		if id == def {
			fmt.Fprintf(a.stdout, "%s (default)\n", id)
			continue
		}
		fmt.Fprintln(a.stdout, id)
	}
	return nil
}

func (a *app) runRehash(_ *cobra.Command, args []string) error {
	if a.mgr.NeedsRehash(authencoding.Binary(args[0])) {
		fmt.Fprintln(a.stdout, "yes")
		return nil
	}
	fmt.Fprintln(a.stdout, "no")
	return nil
}
