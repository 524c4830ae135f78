package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"

	"git.home.luguber.info/inful/wristrelay/internal/config"
	"git.home.luguber.info/inful/wristrelay/internal/settings"
)

// SettingsCmd groups the settings store commands.
type SettingsCmd struct {
	Get  SettingsGetCmd  `cmd:"" help:"Print one setting"`
	Set  SettingsSetCmd  `cmd:"" help:"Change one setting"`
	List SettingsListCmd `cmd:"" help:"Print every setting"`
}

// SettingsGetCmd implements 'settings get'.
type SettingsGetCmd struct {
	Name string `arg:"" help:"Setting name"`
}

func (c *SettingsGetCmd) Run(g *Global, root *CLI) error {
	return withSettings(g, root, func(ctx context.Context, s *settings.SQLiteStore) error {
		v, err := s.Get(ctx, c.Name)
		if err != nil {
			return err
		}
		fmt.Println(v)
		return nil
	})
}

// SettingsSetCmd implements 'settings set'.
type SettingsSetCmd struct {
	Name  string `arg:"" help:"Setting name"`
	Value int64  `arg:"" help:"New value"`
}

func (c *SettingsSetCmd) Run(g *Global, root *CLI) error {
	return withSettings(g, root, func(ctx context.Context, s *settings.SQLiteStore) error {
		if err := s.Set(ctx, c.Name, c.Value); err != nil {
			return err
		}
		g.Logger.Info("Setting updated", "name", c.Name, "value", c.Value)
		return nil
	})
}

// SettingsListCmd implements 'settings list'.
type SettingsListCmd struct{}

func (c *SettingsListCmd) Run(g *Global, root *CLI) error {
	return withSettings(g, root, func(ctx context.Context, s *settings.SQLiteStore) error {
		values, err := s.List(ctx)
		if err != nil {
			return err
		}
		printSettings(os.Stdout, values)
		return nil
	})
}

func printSettings(w io.Writer, values map[string]int64) {
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		_, _ = fmt.Fprintf(w, "%-18s %d\n", name, values[name])
	}
}

func withSettings(g *Global, root *CLI, fn func(ctx context.Context, s *settings.SQLiteStore) error) error {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return err
	}
	root.configure(g, cfg)

	s, err := settings.NewSQLiteStore(cfg.Settings.Path)
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()
	return fn(context.Background(), s)
}
