package main

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"os"
	"time"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/lakehouselib/lakehouse/client"
)

var configureCmd = &cobra.Command{
	Use:   "configure",
	Short: "Manage connection profiles",
	Long: `Profiles keep the endpoint and credentials of one lakehouse deployment
each. Commands use the default profile unless --profile or
LAKEHOUSE_PROFILE names another.

Profiles live in ~/.lakehouse/config.yaml`,
}

var configureListCmd = &cobra.Command{
	Use:   "list",
	Short: "List profiles (* marks the default)",
	RunE:  runConfigureList,
}

var configureAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add or update a profile interactively",
	Long: `Prompt for an endpoint, email and password, log in once to check them,
and store the result under <name>. The first profile becomes the default.`,
	Args: cobra.ExactArgs(1),
	RunE: runConfigureAdd,
}

var configureRemoveCmd = &cobra.Command{
	Use:     "remove <name>",
	Aliases: []string{"rm"},
	Short:   "Remove a profile",
	Args:    cobra.ExactArgs(1),
	RunE:    runConfigureRemove,
}

var configureSetDefaultCmd = &cobra.Command{
	Use:   "set-default <name>",
	Short: "Make a profile the default",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigureSetDefault,
}

var configureShowCmd = &cobra.Command{
	Use:   "show [name]",
	Short: "Show one profile, the default when no name is given",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runConfigureShow,
}

var showSecrets bool

func init() {
	configureCmd.AddCommand(configureListCmd, configureAddCmd, configureRemoveCmd, configureSetDefaultCmd, configureShowCmd)

	for _, c := range []*cobra.Command{configureListCmd, configureShowCmd} {
		c.Flags().BoolVar(&showSecrets, "show-secrets", false, "print passwords in full")
	}
}

// errCancelled ends a prompt flow without reporting a failure.
var errCancelled = errors.New("cancelled")

// loadProfiles reads the config file. A missing file yields an empty one
// when allowMissing is set.
func loadProfiles(allowMissing bool) (*client.ConfigFile, error) {
	cfg, err := client.LoadConfigFile(getConfigPath())
	switch {
	case err == nil:
		return cfg, nil
	case allowMissing && errors.Is(err, os.ErrNotExist):
		return &client.ConfigFile{}, nil
	default:
		return nil, fmt.Errorf("load config: %w", err)
	}
}

func saveProfiles(cfg *client.ConfigFile) error {
	if err := cfg.Save(getConfigPath()); err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	return nil
}

func runConfigureList(_ *cobra.Command, _ []string) error {
	cfg, err := loadProfiles(true)
	if err != nil {
		return err
	}
	if len(cfg.Profiles) == 0 {
		fmt.Println("No profiles configured. Create one with 'lakehouse configure add <name>'.")
		return nil
	}

	defaultName := ""
	if def, err := cfg.GetDefaultProfile(); err == nil {
		defaultName = def.Name
	}
	return getFormatter().FormatProfileList(os.Stdout, cfg.Profiles, defaultName, showSecrets)
}

func runConfigureAdd(cmd *cobra.Command, args []string) error {
	err := addProfile(cmd.Context(), args[0])
	if errors.Is(err, errCancelled) {
		fmt.Println("Cancelled.")
		return nil
	}
	return err
}

func addProfile(ctx context.Context, name string) error {
	cfg, err := loadProfiles(true)
	if err != nil {
		return err
	}

	existing, _ := cfg.GetProfile(name)
	if existing != nil {
		if err := confirm(fmt.Sprintf("Profile '%s' already exists. Update it", name)); err != nil {
			return err
		}
	}

	p, err := profileForm(name)
	if err != nil {
		return err
	}

	makeDefault := len(cfg.Profiles) == 0
	if !makeDefault {
		makeDefault = confirm("Set as default profile") == nil
	}

	if err := checkCredentials(ctx, p); err != nil {
		return err
	}

	if existing != nil {
		p.Default = existing.Default
		err = cfg.UpdateProfile(p)
	} else {
		err = cfg.AddProfile(p)
	}
	if err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	if makeDefault {
		if err := cfg.SetDefault(name); err != nil {
			return err
		}
	}
	if err := saveProfiles(cfg); err != nil {
		return err
	}

	verb := "added"
	if existing != nil {
		verb = "updated"
	}
	fmt.Printf("Profile '%s' %s.\n", name, verb)
	if makeDefault {
		fmt.Println("Set as default profile.")
	}
	return nil
}

// profileForm prompts for the connection fields of a profile.
func profileForm(name string) (client.Profile, error) {
	p := client.Profile{Name: name}

	endpoint, err := ask(promptui.Prompt{
		Label:   "Endpoint URL",
		Default: client.DefaultEndpoint,
		Validate: func(s string) error {
			_, err := client.NormalizeEndpoint(s)
			return err
		},
	})
	if err != nil {
		return p, err
	}
	p.Endpoint, _ = client.NormalizeEndpoint(endpoint)

	p.Email, err = ask(promptui.Prompt{
		Label: "Email",
		Validate: func(s string) error {
			if _, err := mail.ParseAddress(s); err != nil {
				return errors.New("a valid email address is required")
			}
			return nil
		},
	})
	if err != nil {
		return p, err
	}

	p.Password, err = ask(promptui.Prompt{Label: "Password", Mask: '*'})
	return p, err
}

// checkCredentials logs in with p once. A failed login is reported and the
// user decides whether to keep the profile anyway.
func checkCredentials(ctx context.Context, p client.Profile) error {
	fmt.Print("Checking credentials... ")

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	c, err := client.New(p.Endpoint, client.WithTimeout(5*time.Second))
	if err == nil {
		_, err = c.Authenticate(ctx, p.Email, p.Password)
	}
	if err == nil {
		fmt.Println("OK")
		return nil
	}

	fmt.Println("FAILED")
	fmt.Printf("Warning: %v\n", err)
	return confirm("Save profile anyway")
}

func runConfigureRemove(_ *cobra.Command, args []string) error {
	name := args[0]
	cfg, err := loadProfiles(false)
	if err != nil {
		return err
	}
	if _, err := cfg.GetProfile(name); err != nil {
		return err
	}

	if err := confirm(fmt.Sprintf("Remove profile '%s'", name)); err != nil {
		fmt.Println("Cancelled.")
		return nil //nolint:nilerr // declining is not a failure
	}

	if err := cfg.RemoveProfile(name); err != nil {
		return fmt.Errorf("remove profile: %w", err)
	}
	if err := saveProfiles(cfg); err != nil {
		return err
	}
	fmt.Printf("Profile '%s' removed.\n", name)
	return nil
}

func runConfigureSetDefault(_ *cobra.Command, args []string) error {
	cfg, err := loadProfiles(false)
	if err != nil {
		return err
	}
	if err := cfg.SetDefault(args[0]); err != nil {
		return err
	}
	if err := saveProfiles(cfg); err != nil {
		return err
	}
	fmt.Printf("Default profile set to '%s'.\n", args[0])
	return nil
}

func runConfigureShow(_ *cobra.Command, args []string) error {
	cfg, err := loadProfiles(false)
	if err != nil {
		return err
	}

	var name string
	if len(args) == 1 {
		name = args[0]
	}
	p, err := cfg.GetProfile(name)
	if err != nil {
		return err
	}

	def, _ := cfg.GetDefaultProfile()
	return getFormatter().FormatProfileShow(os.Stdout, *p, def != nil && def.Name == p.Name, showSecrets)
}

// ask runs a prompt. Ctrl-C exits the process; Ctrl-D and declined
// confirmations become errCancelled.
func ask(p promptui.Prompt) (string, error) {
	v, err := p.Run()
	switch {
	case err == nil:
		return v, nil
	case errors.Is(err, promptui.ErrInterrupt):
		fmt.Println("\nCancelled.")
		os.Exit(0)
	case errors.Is(err, promptui.ErrAbort), errors.Is(err, promptui.ErrEOF):
		return "", errCancelled
	}
	return "", err
}

// confirm asks a yes/no question and returns errCancelled unless the
// answer is yes.
func confirm(label string) error {
	_, err := ask(promptui.Prompt{Label: label, IsConfirm: true})
	return err
}
