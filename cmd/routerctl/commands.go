package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/muurk/routerctl/internal/config"
	"github.com/muurk/routerctl/internal/logging"
	"github.com/muurk/routerctl/internal/router"
	"github.com/muurk/routerctl/internal/ui"
)

// PasswordEnvVar supplies the router password when --password is not given
const PasswordEnvVar = "ROUTERCTL_PASSWORD"

const (
	formatDetailed = config.FormatDetailed
	formatCompact  = config.FormatCompact
	formatJSON     = config.FormatJSON
)

// Connection flags
var (
	routerHost   string
	routerPort   int
	routerUser   string
	routerPass   string
	sessionID    string
	profileName  string
	timeout      time.Duration
	outputFormat string
	logLevel     string
)

// Command flags
var (
	structured    bool
	assumeYes     bool
	watchInterval time.Duration
)

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&routerHost, "host", "", "Router host name or IP (default routerlogin.net)")
	pf.IntVar(&routerPort, "port", 0, "Router SOAP port (default 5000)")
	pf.StringVar(&routerUser, "user", "", "Router username (default admin)")
	pf.StringVar(&routerPass, "password", "", "Router password (or set "+PasswordEnvVar+")")
	pf.StringVar(&sessionID, "session-id", "", "Session ID sent with every request")
	pf.StringVar(&profileName, "profile", "", "Use a saved router profile")
	pf.DurationVar(&timeout, "timeout", 0, "Per-request timeout (default 10s)")
	pf.StringVar(&outputFormat, "format", "", "Output format (detailed, compact, json)")
	pf.StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error); overrides "+logging.LogLevelEnvVar)

	devicesCmd.Flags().BoolVar(&structured, "structured", false, "Use GetAttachDevice2 for extended device fields")
	blockCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Do not ask for confirmation")
	// allow never prompts; --yes is accepted so scripts can pass it to both
	allowCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Do not ask for confirmation")
	watchCmd.Flags().DurationVar(&watchInterval, "interval", 5*time.Second, "Polling interval")

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(devicesCmd)
	rootCmd.AddCommand(trafficCmd)
	rootCmd.AddCommand(blockCmd)
	rootCmd.AddCommand(allowCmd)
	rootCmd.AddCommand(watchCmd)
}

// target is a resolved router connection
type target struct {
	client   *router.Client
	registry *config.Registry
	profile  string // empty when no profile is in use
	format   string
	out      *ui.Printer
}

// resolveTarget merges the selected profile, preferences and flags into a
// client. Explicit flags win over the profile.
func resolveTarget(cmd *cobra.Command, needPassword bool) (*target, error) {
	registry, err := config.LoadRegistry()
	if err != nil {
		return nil, err
	}

	t := &target{
		registry: registry,
		format:   registry.Preferences.OutputFormat,
		out:      ui.NewPrinter(cmd.OutOrStdout()),
	}

	var cfg router.Config
	switch {
	case profileName != "":
		p := registry.GetProfile(profileName)
		if p == nil {
			return nil, fmt.Errorf("profile %q not found (see 'routerctl profile list')", profileName)
		}
		t.profile = profileName
		cfg = p.RouterConfig("", registry.Preferences.Timeout())
	case !cmd.Flags().Changed("host"):
		if name, p := registry.DefaultProfile(); p != nil {
			t.profile = name
			cfg = p.RouterConfig("", registry.Preferences.Timeout())
		}
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = registry.Preferences.Timeout()
	}

	flags := cmd.Flags()
	if flags.Changed("host") {
		cfg.Host = routerHost
	}
	if flags.Changed("port") {
		cfg.Port = routerPort
	}
	if flags.Changed("user") {
		cfg.Username = routerUser
	}
	if flags.Changed("session-id") {
		cfg.SessionID = sessionID
	}
	if flags.Changed("timeout") {
		cfg.Timeout = timeout
	}
	if flags.Changed("format") {
		t.format = outputFormat
	}
	if t.format == "" {
		t.format = formatDetailed
	}
	outputFormat = t.format

	switch t.format {
	case formatDetailed, formatCompact, formatJSON:
	default:
		return nil, router.NewValidationError(fmt.Sprintf("unknown output format %q (expected detailed, compact or json)", t.format))
	}

	if needPassword {
		cfg.Password, err = readPassword(flags.Changed("password"))
		if err != nil {
			return nil, err
		}
	}

	t.client, err = router.NewClient(cfg, router.WithLogger(logging.GetLogger()))
	if err != nil {
		return nil, err
	}

	return t, nil
}

func readPassword(fromFlag bool) (string, error) {
	if fromFlag {
		return routerPass, nil
	}
	if pw, ok := os.LookupEnv(PasswordEnvVar); ok {
		return pw, nil
	}

	pw, err := ui.PromptPassword("Router password")
	if errors.Is(err, ui.ErrNoTerminal) {
		return "", router.NewValidationError("router password required: use --password or set " + PasswordEnvVar)
	}
	return pw, err
}

// touchProfile records a successful connection on the profile in use
func (t *target) touchProfile(model string) {
	if t.profile == "" {
		return
	}
	t.registry.UpdateProfileLastSeen(t.profile, model)
	if err := t.registry.Save(); err != nil {
		logging.Warn("Failed to save profile", zap.String("profile", t.profile), zap.Error(err))
	}
}

func (t *target) routerParams() []ui.Detail {
	params := []ui.Detail{{Key: "Router", Value: t.client.SOAPURL()}}
	if t.profile != "" {
		params = append(params, ui.Detail{Key: "Profile", Value: t.profile})
	}
	return params
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return nil
}

// loginCmd checks the credentials
var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in to the router to check the credentials",
	Example: `  # Check the default router
  routerctl login

  # Check a specific router
  routerctl login --host 192.168.1.1 --password secret`,
	Args: cobra.NoArgs,
	RunE: runLogin,
}

func runLogin(cmd *cobra.Command, args []string) error {
	t, err := resolveTarget(cmd, true)
	if err != nil {
		return err
	}

	if err := t.client.Login(cmd.Context()); err != nil {
		return err
	}
	t.touchProfile("")

	switch t.format {
	case formatJSON:
		return writeJSON(t.out.Writer(), map[string]any{"host": t.client.Host(), "authenticated": true})
	case formatCompact:
		t.out.Println("logged in to " + t.client.Host())
	default:
		t.out.PrintSuccess("Logged in", t.routerParams()...)
	}
	return nil
}

// infoCmd shows the unauthenticated router information page
var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show router model and firmware",
	Long: `Show the router information published at /currentsetting.htm.

This page does not need a password; it reports the model, firmware
version and SOAP version of the router.`,
	Args: cobra.NoArgs,
	RunE: runInfo,
}

func runInfo(cmd *cobra.Command, args []string) error {
	t, err := resolveTarget(cmd, false)
	if err != nil {
		return err
	}

	setting, err := t.client.GetCurrentSetting(cmd.Context())
	if err != nil {
		return err
	}
	t.touchProfile(setting.Model())

	switch t.format {
	case formatJSON:
		return writeJSON(t.out.Writer(), setting)
	case formatCompact:
		t.out.Println(setting.Summary())
	default:
		t.out.PrintHeader("Router information", "routerctl info", t.routerParams()...)
		t.out.Print(setting.FormatDetailed())
	}
	return nil
}

// devicesCmd lists attached devices
var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "List devices attached to the router",
	Example: `  # Legacy listing, works on most firmware
  routerctl devices

  # Extended fields from newer firmware
  routerctl devices --structured

  # JSON for scripting
  routerctl devices --format json`,
	Args: cobra.NoArgs,
	RunE: runDevices,
}

func runDevices(cmd *cobra.Command, args []string) error {
	t, err := resolveTarget(cmd, true)
	if err != nil {
		return err
	}

	if structured {
		devices, err := t.client.GetAttachedDevices2(cmd.Context())
		if err != nil {
			return err
		}
		t.touchProfile("")

		switch t.format {
		case formatJSON:
			return writeJSON(t.out.Writer(), devices)
		case formatCompact:
			t.out.Print(router.FormatDetailsCompact(devices))
		default:
			t.out.PrintHeader("Attached devices", "routerctl devices --structured", t.routerParams()...)
			t.out.Println(ui.RenderDeviceDetailTable(devices))
		}
		return nil
	}

	devices, err := t.client.GetAttachedDevices(cmd.Context())
	if err != nil {
		return err
	}
	t.touchProfile("")

	switch t.format {
	case formatJSON:
		return writeJSON(t.out.Writer(), devices)
	case formatCompact:
		t.out.Print(router.FormatDevicesCompact(devices))
	default:
		t.out.PrintHeader("Attached devices", "routerctl devices", t.routerParams()...)
		t.out.Println(ui.RenderDeviceTable(devices))
	}
	return nil
}

// trafficCmd shows today's traffic
var trafficCmd = &cobra.Command{
	Use:   "traffic",
	Short: "Show today's upload and download totals",
	Args:  cobra.NoArgs,
	RunE:  runTraffic,
}

func runTraffic(cmd *cobra.Command, args []string) error {
	t, err := resolveTarget(cmd, true)
	if err != nil {
		return err
	}

	stats, err := t.client.GetTrafficMeter(cmd.Context())
	if err != nil {
		return err
	}
	t.touchProfile("")

	switch t.format {
	case formatJSON:
		return writeJSON(t.out.Writer(), stats)
	case formatCompact:
		t.out.Println(stats.Summary())
	default:
		t.out.PrintSuccess("Traffic meter", append(t.routerParams(),
			ui.Detail{Key: "Upload today", Value: strconv.FormatFloat(stats.TodayUploadMB, 'f', 2, 64) + " MB"},
			ui.Detail{Key: "Download today", Value: strconv.FormatFloat(stats.TodayDownloadMB, 'f', 2, 64) + " MB"},
		)...)
	}
	return nil
}

// blockCmd blocks a device
var blockCmd = &cobra.Command{
	Use:   "block <mac>",
	Short: "Block a device from the network",
	Example: `  routerctl block AA:BB:CC:DD:EE:01
  routerctl block aa-bb-cc-dd-ee-01 --yes`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSetAccess(cmd, args[0], router.AccessBlock)
	},
}

// allowCmd allows a device
var allowCmd = &cobra.Command{
	Use:     "allow <mac>",
	Short:   "Allow a blocked device back on the network",
	Example: `  routerctl allow AA:BB:CC:DD:EE:01`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSetAccess(cmd, args[0], router.AccessAllow)
	},
}

func runSetAccess(cmd *cobra.Command, macArg string, state router.AccessState) error {
	mac, err := router.NormalizeMAC(macArg)
	if err != nil {
		return err
	}

	t, err := resolveTarget(cmd, true)
	if err != nil {
		return err
	}

	if state == router.AccessBlock && !assumeYes {
		in := cmd.InOrStdin()
		if !isInteractive(in) {
			return router.NewValidationError("refusing to block without confirmation: pass --yes")
		}
		details := append(t.routerParams(), ui.Detail{Key: "MAC", Value: mac})
		if !ui.Confirm(cmd.ErrOrStderr(), in, "Block device", details, "Block this device?") {
			return nil
		}
	}

	if err := t.client.SetBlockDevice(cmd.Context(), mac, state); err != nil {
		return err
	}
	t.touchProfile("")

	switch t.format {
	case formatJSON:
		return writeJSON(t.out.Writer(), map[string]string{"MAC": mac, "AllowOrBlock": string(state)})
	case formatCompact:
		t.out.Println(fmt.Sprintf("%s %s", mac, state))
	default:
		title := "Device allowed"
		if state == router.AccessBlock {
			title = "Device blocked"
		}
		t.out.PrintSuccess(title, append(t.routerParams(), ui.Detail{Key: "MAC", Value: mac})...)
	}
	return nil
}

// isInteractive reports whether answers can be read from in. Readers other
// than files, such as piped test input, are taken as interactive.
func isInteractive(in io.Reader) bool {
	f, ok := in.(*os.File)
	return !ok || ui.IsTerminal(f)
}

// watchCmd runs the live dashboard
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Live view of traffic and attached devices",
	Args:  cobra.NoArgs,
	RunE:  runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	if watchInterval < time.Second {
		return router.NewValidationError("--interval must be at least 1s")
	}

	t, err := resolveTarget(cmd, true)
	if err != nil {
		return err
	}

	fetch := func(ctx context.Context) (*ui.Snapshot, error) {
		stats, err := t.client.GetTrafficMeter(ctx)
		if err != nil {
			return nil, err
		}
		devices, err := t.client.GetAttachedDevices(ctx)
		if err != nil {
			return nil, err
		}
		return &ui.Snapshot{Traffic: stats, Devices: devices, At: time.Now()}, nil
	}

	// Each poll makes two requests, each bounded by the client timeout
	pollTimeout := 2*t.client.Timeout() + time.Second
	model := ui.NewWatchModel("Router "+t.client.Host(), fetch, watchInterval, pollTimeout)

	err = ui.RunWatch(cmd.Context(), model)
	if errors.Is(err, tea.ErrProgramKilled) {
		return nil
	}
	return err
}
