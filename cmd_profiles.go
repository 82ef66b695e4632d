package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"search-launcher/profile"
)

var outputFormat string

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List profiles",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()
		return renderProfiles(os.Stdout, a.store.State(), outputFormat)
	},
}

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a profile",
	Long:  "Add a profile from flags. Without any field flags an interactive form is shown.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		p := a.store.Create()
		return editAndSave(cmd, a, p)
	},
}

var editCmd = &cobra.Command{
	Use:   "edit <id|name>",
	Short: "Edit a profile",
	Long:  "Edit a profile from flags. Without any field flags an interactive form is shown, prefilled with the current values.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		found, err := resolveProfile(a.store, args[0])
		if err != nil {
			return err
		}
		p, err := a.store.Edit(found.ID)
		if err != nil {
			return err
		}
		return editAndSave(cmd, a, p)
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <id|name>",
	Short: "Delete a profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		p, err := resolveProfile(a.store, args[0])
		if err != nil {
			return err
		}
		if ok, err := confirm(cmd, fmt.Sprintf("Delete profile %q?", p.Name)); err != nil || !ok {
			return err
		}
		if err := a.store.Delete(cmd.Context(), p.ID); err != nil {
			return err
		}
		pterm.Success.Printfln("Profile %s deleted", p.Name)
		return nil
	},
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Remove all stored profiles and restore the defaults",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		if ok, err := confirm(cmd, "Replace all profiles with the defaults?"); err != nil || !ok {
			return err
		}
		if err := a.store.Reset(cmd.Context()); err != nil {
			return err
		}
		pterm.Success.Println("Profiles reset to defaults")
		return nil
	},
}

func init() {
	listCmd.Flags().StringVarP(&outputFormat, "output", "o", "table", "output format: table, json or yaml")

	for _, c := range []*cobra.Command{addCmd, editCmd} {
		addProfileFlags(c)
	}
	deleteCmd.Flags().BoolP("yes", "y", false, "skip confirmation")
	resetCmd.Flags().BoolP("yes", "y", false, "skip confirmation")
}

func addProfileFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("name", "", "profile name")
	f.String("keywords", "", "comma-separated search keywords")
	f.String("description", "", "short description")
	f.String("color", "", "display color from the palette, e.g. #3B82F6")
	f.String("template", "", "fill keywords from a template: "+strings.Join(profile.TemplateNames(), ", "))
}

// applyFlags copies the changed field flags onto p. A template fills the
// keywords first so an explicit --keywords still wins. It reports whether any
// field flag was given.
func applyFlags(cmd *cobra.Command, p *profile.Profile) (bool, error) {
	f := cmd.Flags()
	given := false

	if f.Changed("template") {
		name, _ := f.GetString("template")
		kw, ok := profile.Templates[name]
		if !ok {
			return false, fmt.Errorf("unknown template %q (available: %s)", name, strings.Join(profile.TemplateNames(), ", "))
		}
		p.Keywords = kw
		given = true
	}
	for flag, dst := range map[string]*string{
		"name":        &p.Name,
		"keywords":    &p.Keywords,
		"description": &p.Description,
		"color":       &p.Color,
	} {
		if f.Changed(flag) {
			*dst, _ = f.GetString(flag)
			given = true
		}
	}
	return given, nil
}

func editAndSave(cmd *cobra.Command, a *app, p profile.Profile) error {
	given, err := applyFlags(cmd, &p)
	if err != nil {
		a.store.Cancel()
		return err
	}
	if !given {
		if err := profileForm(&p); err != nil {
			a.store.Cancel()
			return err
		}
	}

	saved, err := a.store.Save(cmd.Context(), p)
	if err != nil {
		return err
	}
	pterm.Success.Printfln("Saved %s (%s)", saved.Name, saved.ID)
	return nil
}

// profileForm lets the user fill p interactively.
func profileForm(p *profile.Profile) error {
	template := ""
	templateOpts := []huh.Option[string]{huh.NewOption("none", "")}
	for _, name := range profile.TemplateNames() {
		templateOpts = append(templateOpts, huh.NewOption(name, name))
	}

	colorOpts := make([]huh.Option[string], 0, len(profile.Palette))
	for _, c := range profile.Palette {
		colorOpts = append(colorOpts, huh.NewOption(swatch(c)+" "+c, c))
	}
	if p.Color == "" {
		p.Color = profile.Palette[0]
	}

	required := func(field string) func(string) error {
		return func(s string) error {
			if strings.TrimSpace(s) == "" {
				return fmt.Errorf("%s is required", field)
			}
			return nil
		}
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Name").Value(&p.Name).Validate(required("name")),
			huh.NewSelect[string]().Title("Start from template").Options(templateOpts...).Value(&template),
		),
		huh.NewGroup(
			huh.NewText().Title("Keywords").Description("Comma-separated").Value(&p.Keywords).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" && template == "" {
						return fmt.Errorf("keywords are required")
					}
					return nil
				}),
			huh.NewInput().Title("Description").Value(&p.Description),
			huh.NewSelect[string]().Title("Color").Options(colorOpts...).Value(&p.Color),
		),
	)
	if err := form.Run(); err != nil {
		return err
	}
	if strings.TrimSpace(p.Keywords) == "" && template != "" {
		p.Keywords = profile.Templates[template]
	}
	return nil
}

func confirm(cmd *cobra.Command, question string) (bool, error) {
	if yes, _ := cmd.Flags().GetBool("yes"); yes {
		return true, nil
	}
	ok := false
	if err := huh.NewForm(huh.NewGroup(huh.NewConfirm().Title(question).Value(&ok))).Run(); err != nil {
		return false, err
	}
	return ok, nil
}

func swatch(color string) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render("■")
}

func renderProfiles(w io.Writer, st profile.State, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(st)
	case "yaml":
		return yaml.NewEncoder(w).Encode(st)
	case "table", "":
	default:
		return fmt.Errorf("unknown output format %q", format)
	}

	if len(st.Profiles) == 0 {
		pterm.Info.Println("No profiles")
		return nil
	}
	rows := pterm.TableData{{"", "ID", "Name", "Color", "Keywords"}}
	for _, p := range st.Profiles {
		mark := ""
		if p.ID == st.ActiveProfile {
			mark = "*"
		}
		rows = append(rows, []string{mark, p.ID, p.Name, swatch(p.Color) + " " + p.Color, truncate(p.Keywords, 60)})
	}
	out, err := pterm.DefaultTable.WithHasHeader().WithData(rows).Srender()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, out)
	return err
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
