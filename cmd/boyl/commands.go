package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"boyl/internal/copier"
	"boyl/internal/filetree"
	"boyl/internal/layout"
	"boyl/internal/registry"
	"boyl/internal/ui"

	"github.com/spf13/cobra"
)

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "boyl",
		Short:         "Quickly create boilerplate projects and templates",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load(cmd.Context())
		},
	}
	root.AddCommand(
		newListCmd(a),
		newTreeCmd(a),
		newMakeCmd(a),
		newNewCmd(a),
		newEditCmd(a),
		newDeleteCmd(a),
		newPathsCmd(a),
		newVersionCmd(),
		newXoxoCmd(a),
	)
	return root
}

func newListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the available templates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			templates := a.reg.List()
			if len(templates) == 0 {
				fmt.Fprintln(out, "No templates yet. Create one with "+ui.Styles.Key.Render("boyl make")+".")
				return nil
			}
			for _, t := range templates {
				line := ui.Styles.Title.Render(t.Name)
				if t.Description != "" {
					line += "  " + ui.Styles.Muted.Render(t.Description)
				}
				fmt.Fprintln(out, line)
			}
			return nil
		},
	}
}

func lookup(a *app, name string) (registry.Template, error) {
	t, ok := a.reg.Get(name)
	if !ok {
		return registry.Template{}, fmt.Errorf("%s does not exist; run boyl list to see the templates, or boyl make to create one", name)
	}
	return t, nil
}

func newTreeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "tree <template>",
		Short: "Browse the files of a template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := lookup(a, args[0])
			if err != nil {
				return err
			}
			tree, err := filetree.New(t.Path)
			if err != nil {
				return fmt.Errorf("read template %s: %w", t.Name, err)
			}
			return a.runScreen(cmd.Context(), ui.NewTreeViewer(t.Name, tree))
		},
	}
}

func newMakeCmd(a *app) *cobra.Command {
	var (
		location    string
		description string
		all         bool
	)
	cmd := &cobra.Command{
		Use:   "make [name]",
		Short: "Capture a directory as a new template",
		Long: "Capture a directory as a new template. Unless --all is given, an " +
			"interactive picker chooses which files are included.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			src, err := resolveDir(location)
			if err != nil {
				return err
			}
			info, err := os.Stat(src)
			if err != nil {
				return err
			}
			if !info.IsDir() {
				return fmt.Errorf("%s is not a directory", src)
			}

			name := filepath.Base(src)
			if len(args) == 1 {
				name = args[0]
			}
			if registry.Key(name) == "" {
				return errors.New("template name must not be empty")
			}
			if a.reg.Exists(name) {
				return fmt.Errorf("there is already a template named %s", name)
			}

			filter := copier.IncludeAll
			if !all {
				tree, err := filetree.New(src)
				if err != nil {
					return err
				}
				picker := ui.NewFilePicker(fmt.Sprintf("New template %s from %s", name, src), tree)
				if err := a.runScreen(ctx, picker); err != nil {
					return err
				}
				if picker.Aborted() {
					return errAborted
				}
				filter = tree.Filter()
			}

			dst := a.reg.TemplateDir(name)
			if within(src, dst) {
				return fmt.Errorf("cannot capture %s: it is inside the template directory %s", src, dst)
			}
			if within(dst, src) {
				// The copy would otherwise walk into itself.
				filter = excludeTree(filter, dst)
			}
			if _, err := os.Stat(dst); err == nil {
				fmt.Fprintf(out, "The template directory %s already exists.\n"+
					"This may be left over from an aborted template of the same name.\n", dst)
				ok, err := a.confirm("Delete the existing directory and continue?")
				if err != nil {
					return err
				}
				if !ok {
					return errAborted
				}
				if err := os.RemoveAll(dst); err != nil {
					return fmt.Errorf("remove %s: %w", dst, err)
				}
			}

			if err := a.replicate(ctx, src, dst, filter); err != nil {
				return fmt.Errorf("copy %s: %w", src, err)
			}
			if err := a.reg.Add(registry.Template{Name: name, Description: strings.TrimSpace(description), Path: dst}); err != nil {
				return err
			}
			if err := a.reg.Save(); err != nil {
				return err
			}

			fmt.Fprintf(out, "New template %s was created.\n", ui.Styles.Title.Render(name))
			fmt.Fprintf(out, "Call %s to create a new instance of this template.\n",
				ui.Styles.Key.Render("boyl new "+name))
			return nil
		},
	}
	cmd.Flags().StringVarP(&location, "location", "l", "", "directory to capture (default: current directory)")
	cmd.Flags().StringVarP(&description, "description", "d", "", "description of the template")
	cmd.Flags().BoolVar(&all, "all", false, "include every file without asking")
	return cmd
}

func newNewCmd(a *app) *cobra.Command {
	var name, location string
	cmd := &cobra.Command{
		Use:   "new <template>",
		Short: "Create a new project from a template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := lookup(a, args[0])
			if err != nil {
				return err
			}
			base, err := resolveDir(location)
			if err != nil {
				return err
			}
			if name == "" {
				name = t.Name
			}
			dst := filepath.Join(base, name)

			empty, err := isEmptyDir(dst)
			if err != nil {
				return err
			}
			if !empty {
				return fmt.Errorf("cannot create %s: it already exists and is not empty", dst)
			}

			if err := a.replicate(cmd.Context(), t.Path, dst, copier.IncludeAll); err != nil {
				return fmt.Errorf("copy template %s: %w", t.Name, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created new %s in %s.\n", ui.Styles.Title.Render(t.Name), dst)
			return nil
		},
	}
	cmd.Flags().StringVarP(&name, "name", "n", "", "name of the new project (default: template name)")
	cmd.Flags().StringVarP(&location, "location", "l", "", "where to create the project (default: current directory)")
	return cmd
}

func newEditCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "edit",
		Short: "Interactively delete templates and edit their descriptions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			editor := ui.NewTemplateEditor(a.reg)
			if err := a.runScreen(cmd.Context(), editor); err != nil {
				return err
			}
			if !editor.Changed() {
				return nil
			}
			return a.reg.Save()
		},
	}
}

func newDeleteCmd(a *app) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <template>",
		Short: "Delete a template and its stored files",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := lookup(a, args[0])
			if err != nil {
				return err
			}
			if !yes {
				ok, err := a.confirm(fmt.Sprintf("Delete template %s and %s?", t.Name, t.Path))
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(cmd.OutOrStdout(), "Nothing deleted.")
					return nil
				}
			}
			if err := a.reg.Remove(t.Name); err != nil {
				return err
			}
			if err := a.reg.Save(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s.\n", t.Name)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}

func newPathsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "paths",
		Short: "Print where boyl keeps its configuration and templates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "config:    %s\n", a.paths.ConfigPath)
			fmt.Fprintf(out, "registry:  %s\n", a.paths.RegistryPath)
			fmt.Fprintf(out, "templates: %s\n", a.cfg.Templates.Dir)
			return nil
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		// Printing the version needs no configuration.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "boyl %s\n", version)
		},
	}
}

const credits = "Boyl captures a directory as a template and stamps out fresh copies " +
	"of it whenever you start something new. It was first written by Miguel " +
	"Murça and is free and open source. You can read and contribute to the " +
	"source code at https://github.com/mikeevmm/boyl and if you find it " +
	"useful, a star or a kind word goes a long way. Thank you for using boyl!"

func newXoxoCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:               "xoxo",
		Short:             "Hello!",
		Args:              cobra.NoArgs,
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		Run: func(cmd *cobra.Command, args []string) {
			printCredits(cmd.OutOrStdout(), min(a.terminalWidth(72), 72))
		},
	}
}

func printCredits(out io.Writer, width int) {
	text, _ := layout.Wrap(credits, width)
	fmt.Fprintln(out, text)
}

// resolveDir returns dir as an absolute path, defaulting to the working
// directory.
func resolveDir(dir string) (string, error) {
	if dir == "" {
		return os.Getwd()
	}
	if strings.HasPrefix(dir, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		dir = filepath.Join(home, strings.TrimPrefix(dir, "~"))
	}
	return filepath.Abs(dir)
}

// within reports whether path is root or lies below it.
func within(path, root string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

// excludeTree wraps filter so that root and everything below it is left out.
func excludeTree(filter copier.Filter, root string) copier.Filter {
	return copier.FilterFunc(func(path string, isDir bool) bool {
		return !within(path, root) && filter.Include(path, isDir)
	})
}

// isEmptyDir reports whether path is missing or an empty directory.
func isEmptyDir(path string) (bool, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return false, err
	}
	if !info.IsDir() {
		return false, nil
	}
	_, err = f.Readdirnames(1)
	if errors.Is(err, io.EOF) {
		return true, nil
	}
	return false, err
}
