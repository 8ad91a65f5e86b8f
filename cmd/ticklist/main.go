package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/dori/ticklist/internal/app"
	"github.com/dori/ticklist/internal/config"
	"github.com/dori/ticklist/internal/model"
	"github.com/dori/ticklist/internal/tasklist"
	"github.com/dori/ticklist/internal/ui"
	"github.com/dori/ticklist/internal/ui/theme"
	pkgconfig "github.com/dori/ticklist/pkg/config"
)

var (
	version = "0.1.0"
)

// loadConfig reads the config file named by --config, falling back to the
// defaults when it does not exist
func loadConfig(cmd *cli.Command) (*config.Config, error) {
	cfg := config.NewDefault()
	if err := pkgconfig.LoadOptional(cmd.String("config"), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

// openApp loads the config and wires the application
func openApp(cmd *cli.Command, override func(*config.Config) error) (*app.App, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	if override != nil {
		if err := override(cfg); err != nil {
			return nil, err
		}
	}

	var opts []app.Option
	if cmd.Bool("ephemeral") {
		opts = append(opts, app.WithEphemeral())
	}
	return app.New(cfg, opts...)
}

func runTUI(ctx context.Context, cmd *cli.Command) error {
	application, err := openApp(cmd, func(cfg *config.Config) error {
		if name := cmd.String("theme"); name != "" {
			cfg.UI.Theme = name
		}
		if f := cmd.String("filter"); f != "" {
			filter, err := model.ParseFilter(f)
			if err != nil {
				return err
			}
			cfg.UI.StartFilter = string(filter)
		}
		return nil
	})
	if err != nil {
		return err
	}
	defer application.Close()

	if t, ok := theme.ByName(application.Config.UI.Theme); ok {
		theme.SetTheme(t)
	}

	p := tea.NewProgram(
		ui.NewRootModel(application),
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)

	_, err = p.Run()
	if errors.Is(err, tea.ErrProgramKilled) {
		return nil
	}
	return err
}

func runAdd(_ context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() == 0 {
		return fmt.Errorf("usage: ticklist add <task>")
	}

	application, err := openApp(cmd, nil)
	if err != nil {
		return err
	}
	defer application.Close()

	task, err := application.Controller.Add(strings.Join(cmd.Args().Slice(), " "))
	if err != nil {
		return err
	}

	fmt.Printf("Created %d: %s\n", task.ID, task.Text)
	return nil
}

func runList(_ context.Context, cmd *cli.Command) error {
	filter, err := model.ParseFilter(cmd.String("filter"))
	if err != nil {
		return err
	}

	application, err := openApp(cmd, nil)
	if err != nil {
		return err
	}
	defer application.Close()

	ctl := application.Controller
	ctl.SetFilter(filter)
	ctl.SetSearch(strings.TrimSpace(cmd.String("search")))
	printView(ctl.Render())
	return nil
}

func printView(v tasklist.View) {
	if v.Empty {
		if v.Total == 0 {
			fmt.Println("No tasks yet.")
		} else {
			fmt.Println("No matching tasks.")
		}
	}
	for _, item := range v.Items {
		check := "[ ]"
		if item.Completed {
			check = "[x]"
		}
		fmt.Printf("%s %d  %s\n", check, item.ID, item.Text)
	}
	fmt.Printf("%s · %s\n", v.RemainingLabel(), v.TotalLabel())
}

// withTask resolves the id argument and runs fn against the controller
func withTask(cmd *cli.Command, fn func(ctl *tasklist.Controller, task model.Task)) error {
	id, err := strconv.ParseInt(cmd.Args().First(), 10, 64)
	if err != nil {
		return fmt.Errorf("invalid task id %q", cmd.Args().First())
	}

	application, err := openApp(cmd, nil)
	if err != nil {
		return err
	}
	defer application.Close()

	task, ok := application.Controller.Task(id)
	if !ok {
		return fmt.Errorf("task %d not found", id)
	}
	fn(application.Controller, task)
	return nil
}

func runDone(_ context.Context, cmd *cli.Command) error {
	return withTask(cmd, func(ctl *tasklist.Controller, task model.Task) {
		ctl.Toggle(task.ID)
		if task.Completed {
			fmt.Printf("Reopened %d: %s\n", task.ID, task.Text)
		} else {
			fmt.Printf("Completed %d: %s\n", task.ID, task.Text)
		}
	})
}

func runRemove(_ context.Context, cmd *cli.Command) error {
	return withTask(cmd, func(ctl *tasklist.Controller, task model.Task) {
		ctl.Delete(task.ID)
		fmt.Printf("Deleted %d: %s\n", task.ID, task.Text)
	})
}

func runClearCompleted(_ context.Context, cmd *cli.Command) error {
	application, err := openApp(cmd, nil)
	if err != nil {
		return err
	}
	defer application.Close()

	removed := application.Controller.ClearCompleted()
	fmt.Printf("Cleared %d completed task(s)\n", removed)
	return nil
}

func main() {
	cmd := &cli.Command{
		Name:   "ticklist",
		Usage:  "Keyboard-driven to-do list for the terminal",
		Action: runTUI,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "$XDG_CONFIG_HOME/ticklist/config.yaml",
				Value:       config.DefaultPath(),
				Sources:     cli.EnvVars("TICKLIST_CONFIG"),
			},
			&cli.BoolFlag{
				Name:  "ephemeral",
				Usage: "Keep tasks in memory only",
			},
			&cli.StringFlag{
				Name:  "theme",
				Usage: "Theme name (nord, dracula)",
			},
			&cli.StringFlag{
				Name:  "filter",
				Usage: "Starting filter (all, active, completed)",
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "add",
				Usage:     "Quick add a task",
				ArgsUsage: "<task>",
				Action:    runAdd,
			},
			{
				Name:  "list",
				Usage: "Print tasks",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "filter",
						Usage: "all, active or completed",
						Value: string(model.FilterAll),
					},
					&cli.StringFlag{
						Name:  "search",
						Usage: "Case-insensitive substring match",
					},
				},
				Action: runList,
			},
			{
				Name:      "done",
				Usage:     "Toggle a task's completed state",
				ArgsUsage: "<id>",
				Action:    runDone,
			},
			{
				Name:      "rm",
				Usage:     "Delete a task",
				ArgsUsage: "<id>",
				Action:    runRemove,
			},
			{
				Name:   "clear-completed",
				Usage:  "Delete every completed task",
				Action: runClearCompleted,
			},
			{
				Name:  "version",
				Usage: "Show version",
				Action: func(context.Context, *cli.Command) error {
					fmt.Printf("ticklist v%s\n", version)
					return nil
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
