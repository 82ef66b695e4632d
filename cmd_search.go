package main

import (
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/pkg/browser"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"search-launcher/profile"
	"search-launcher/search"
)

var searchCmd = &cobra.Command{
	Use:   "search [id|name]",
	Short: "Open the job search for a profile",
	Long: "Open the job search for a profile in the default browser and mark it active. " +
		"Without an argument the active profile is used.",
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		var p profile.Profile
		if len(args) == 1 {
			if p, err = resolveProfile(a.store, args[0]); err != nil {
				return err
			}
		} else {
			var ok bool
			if p, ok = a.store.Active(); !ok {
				return fmt.Errorf("no active profile; pass a profile id or name")
			}
		}

		printOnly, _ := cmd.Flags().GetBool("print")
		copyURL, _ := cmd.Flags().GetBool("copy")

		u := a.builder().URL(p.Keywords)
		if copyURL {
			if err := clipboard.WriteAll(u); err != nil {
				pterm.Warning.Printfln("Could not copy to clipboard: %v", err)
			} else {
				pterm.Success.Println("Search URL copied to clipboard")
			}
		}
		if printOnly {
			fmt.Println(u)
			return nil
		}

		// A CLI process has no relay tabs, so navigation goes to the desktop browser.
		res, err := a.dispatcher(hostFor(a.cfg.Navigation, nil, browser.OpenURL)).Search(cmd.Context(), p.ID)
		if err != nil {
			return err
		}
		pterm.Success.Printfln("Opened %s search", res.Profile.Name)
		if res.Removed {
			pterm.Warning.Println("Profile was deleted before it could be marked active")
		}
		if res.PersistErr != nil {
			pterm.Warning.Printfln("Active profile not saved: %v", res.PersistErr)
		}
		return nil
	},
}

var urlCmd = &cobra.Command{
	Use:   "url <keywords...>",
	Short: "Print the search URL for keywords",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		b := search.Builder{BaseURL: cfg.Search.BaseURL}
		fmt.Println(b.URL(strings.Join(args, " ")))
		return nil
	},
}

func init() {
	searchCmd.Flags().Bool("print", false, "print the URL instead of opening it")
	searchCmd.Flags().Bool("copy", false, "copy the URL to the clipboard")
}
