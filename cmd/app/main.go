package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/ansuz/internal"
	"github.com/starford/ansuz/internal/client"
	"github.com/starford/ansuz/internal/credentials"
	"github.com/starford/ansuz/internal/editor"
	"github.com/starford/ansuz/internal/fallback"
	"github.com/starford/ansuz/internal/mcpserver"
	"github.com/starford/ansuz/internal/models"
	"github.com/starford/ansuz/internal/store"
	pkgconfig "github.com/starford/ansuz/pkg/config"
)

func main() {
	cmd := &cli.Command{
		Name:  "ansuz",
		Usage: "Headless CMS toolkit: admin client, publishing workflows, and a local dev backend",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("ANSUZ_CONFIG_FILE"),
			},
		},
		Commands: []*cli.Command{
			serveCommand(),
			mcpCommand(),
			authCommands(),
			statusCommand(),
			contentCommand(models.KindPost),
			contentCommand(models.KindPage),
			readCommand(),
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.LoadOptional(cmd.String("config"), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

// toolkit bundles the wired client-side components for one invocation.
type toolkit struct {
	session *client.Session
	store   store.ContentStore
}

func newToolkit(ctx context.Context, cmd *cli.Command) (*toolkit, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	credsPath := cfg.Credentials.Path
	if credsPath == "" {
		credsPath, err = credentials.DefaultPath()
		if err != nil {
			return nil, err
		}
	}
	creds, err := credentials.NewStore(credsPath)
	if err != nil {
		return nil, err
	}

	api := client.New(cfg.API.BaseURL, creds)
	session := client.NewSession(api, creds)

	var cs store.ContentStore = store.NewREST(api)
	if cfg.Postgres.Enabled() {
		pg, err := store.NewPostgres(ctx, cfg.Postgres.DSN)
		if err != nil {
			return nil, err
		}
		cs = pg
	}

	return &toolkit{session: session, store: cs}, nil
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the local dev backend",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := loadConfig(cmd.Root())
			if err != nil {
				return err
			}
			if err := internal.Run(ctx, internal.WithConfig(cfg)); err != nil {
				return fmt.Errorf("app run error: %w", err)
			}
			return nil
		},
	}
}

func mcpCommand() *cli.Command {
	return &cli.Command{
		Name:  "mcp",
		Usage: "Expose content tools over MCP stdio",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			tk, err := newToolkit(ctx, cmd.Root())
			if err != nil {
				return err
			}
			return mcpserver.New(tk.store).ServeStdio()
		},
	}
}

func authCommands() *cli.Command {
	emailFlag := &cli.StringFlag{Name: "email", Usage: "Account email", Required: true}
	passwordFlag := &cli.StringFlag{
		Name:    "password",
		Usage:   "Account password",
		Sources: cli.EnvVars("ANSUZ_PASSWORD"),
	}

	return &cli.Command{
		Name:  "auth",
		Usage: "Sign in, sign out, and inspect the session",
		Commands: []*cli.Command{
			{
				Name:  "login",
				Usage: "Exchange credentials for a token",
				Flags: []cli.Flag{emailFlag, passwordFlag},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					tk, err := newToolkit(ctx, cmd.Root())
					if err != nil {
						return err
					}
					if err := tk.session.SignIn(ctx, cmd.String("email"), cmd.String("password")); err != nil {
						return err
					}
					fmt.Printf("signed in as %s\n", tk.session.User().Email)
					return nil
				},
			},
			{
				Name:  "register",
				Usage: "Create an account and sign in",
				Flags: []cli.Flag{emailFlag, passwordFlag},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					tk, err := newToolkit(ctx, cmd.Root())
					if err != nil {
						return err
					}
					if err := tk.session.SignUp(ctx, cmd.String("email"), cmd.String("password")); err != nil {
						return err
					}
					fmt.Printf("registered %s\n", tk.session.User().Email)
					return nil
				},
			},
			{
				Name:  "logout",
				Usage: "Invalidate the session and clear the stored token",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					tk, err := newToolkit(ctx, cmd.Root())
					if err != nil {
						return err
					}
					return tk.session.SignOut(ctx)
				},
			},
			{
				Name:  "whoami",
				Usage: "Show the active session",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					tk, err := newToolkit(ctx, cmd.Root())
					if err != nil {
						return err
					}
					if err := tk.session.Init(ctx); err != nil {
						return err
					}
					if !tk.session.SignedIn() {
						fmt.Println("not signed in")
						return nil
					}
					fmt.Println(tk.session.User().Email)
					return nil
				},
			},
		},
	}
}

func statusCommand() *cli.Command {
	return &cli.Command{
		Name:  "status",
		Usage: "Show content counts",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			tk, err := newToolkit(ctx, cmd.Root())
			if err != nil {
				return err
			}
			stats, err := tk.store.Stats(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("posts: %d total, %d published, %d drafts\n",
				stats.TotalPosts, stats.PublishedPosts, stats.DraftPosts)
			fmt.Printf("pages: %d total\n", stats.TotalPages)
			return nil
		},
	}
}

func contentCommand(kind models.Kind) *cli.Command {
	fieldFlags := []cli.Flag{
		&cli.StringFlag{Name: "title", Usage: "Record title"},
		&cli.StringFlag{Name: "slug", Usage: "Explicit slug (disables auto-slug)"},
		&cli.StringFlag{Name: "content", Usage: "Markdown body"},
		&cli.StringFlag{Name: "status", Usage: "Status for a plain submit", Value: string(models.StatusDraft)},
	}
	if kind == models.KindPost {
		fieldFlags = append(fieldFlags,
			&cli.StringFlag{Name: "excerpt", Usage: "Short description"},
			&cli.StringFlag{Name: "cover-image", Usage: "Cover image URL"},
		)
	}
	submitFlags := append(fieldFlags,
		&cli.BoolFlag{Name: "publish", Usage: "Publish regardless of --status"},
		&cli.BoolFlag{Name: "draft", Usage: "Save as draft regardless of --status"},
	)

	return &cli.Command{
		Name:  kind.Path(),
		Usage: fmt.Sprintf("Manage %s", kind.Path()),
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List records, optionally filtered by status",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "status", Usage: "Filter: draft, published, archived"},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					tk, err := newToolkit(ctx, cmd.Root())
					if err != nil {
						return err
					}
					view := editor.NewList(tk.store, kind)
					if err := view.SetFilter(ctx, models.Status(cmd.String("status"))); err != nil {
						return fmt.Errorf("%s", view.Notice())
					}
					printRecords(view.Items())
					return nil
				},
			},
			{
				Name:      "create",
				Usage:     "Create a record",
				Flags:     submitFlags,
				ArgsUsage: " ",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					tk, err := newToolkit(ctx, cmd.Root())
					if err != nil {
						return err
					}
					ed := editor.New(tk.store, kind)
					if err := tk.session.Init(ctx); err == nil {
						ed.SetAuthor(tk.session.User())
					}
					applyFields(ed, cmd, kind)
					return submitEditor(ctx, ed, cmd)
				},
			},
			{
				Name:      "edit",
				Usage:     "Edit a record by id",
				Flags:     submitFlags,
				ArgsUsage: "ID",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					id := cmd.Args().First()
					if id == "" {
						return fmt.Errorf("id is required")
					}
					tk, err := newToolkit(ctx, cmd.Root())
					if err != nil {
						return err
					}
					ed := editor.Edit(tk.store, kind, id)
					if err := ed.Load(ctx); err != nil {
						return fmt.Errorf("%s", ed.Notice())
					}
					applyFields(ed, cmd, kind)
					return submitEditor(ctx, ed, cmd)
				},
			},
			{
				Name:      "delete",
				Usage:     "Delete a record by id (asks for confirmation)",
				ArgsUsage: "ID",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "yes", Aliases: []string{"y"}, Usage: "Skip the confirmation prompt"},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					id := cmd.Args().First()
					if id == "" {
						return fmt.Errorf("id is required")
					}
					tk, err := newToolkit(ctx, cmd.Root())
					if err != nil {
						return err
					}
					view := editor.NewList(tk.store, kind)
					if err := view.Refresh(ctx); err != nil {
						return fmt.Errorf("%s", view.Notice())
					}
					confirm := promptConfirm(kind)
					if cmd.Bool("yes") {
						confirm = func(models.Record) bool { return true }
					}
					if err := view.Delete(ctx, id, confirm); err != nil {
						return fmt.Errorf("%s", view.Notice())
					}
					return nil
				},
			},
		},
	}
}

func readCommand() *cli.Command {
	return &cli.Command{
		Name:  "read",
		Usage: "Read public content (serves fallback samples when the backend is down)",
		Commands: []*cli.Command{
			{
				Name:  "posts",
				Usage: "List published posts",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					reader, err := newReader(ctx, cmd.Root())
					if err != nil {
						return err
					}
					printRecords(reader.Posts(ctx))
					return nil
				},
			},
			{
				Name:      "post",
				Usage:     "Show one published post by slug",
				ArgsUsage: "SLUG",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					reader, err := newReader(ctx, cmd.Root())
					if err != nil {
						return err
					}
					return printRecord(reader.PostBySlug(ctx, cmd.Args().First()))
				},
			},
			{
				Name:      "page",
				Usage:     "Show one published page by slug",
				ArgsUsage: "SLUG",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					reader, err := newReader(ctx, cmd.Root())
					if err != nil {
						return err
					}
					return printRecord(reader.PageBySlug(ctx, cmd.Args().First()))
				},
			},
		},
	}
}

func newReader(ctx context.Context, root *cli.Command) (*client.Reader, error) {
	cfg, err := loadConfig(root)
	if err != nil {
		return nil, err
	}
	api := client.New(cfg.API.BaseURL, nil)
	var provider fallback.Provider = fallback.Default()
	if cfg.Fallback.Disabled {
		provider = fallback.Disabled{}
	}
	return client.NewReader(api, provider), nil
}

func applyFields(ed *editor.Editor, cmd *cli.Command, kind models.Kind) {
	if v := cmd.String("title"); v != "" {
		ed.SetTitle(v)
	}
	if v := cmd.String("slug"); v != "" {
		ed.SetSlug(v)
	}
	if v := cmd.String("content"); v != "" {
		ed.SetContent(v)
	}
	if kind == models.KindPost {
		if v := cmd.String("excerpt"); v != "" {
			ed.SetExcerpt(v)
		}
		if v := cmd.String("cover-image"); v != "" {
			ed.SetCoverImage(v)
		}
	}
	if v := cmd.String("status"); v != "" {
		ed.SetStatus(models.Status(v))
	}
}

func submitEditor(ctx context.Context, ed *editor.Editor, cmd *cli.Command) error {
	var (
		record *models.Record
		err    error
	)
	switch {
	case cmd.Bool("publish"):
		record, err = ed.Publish(ctx)
	case cmd.Bool("draft"):
		record, err = ed.SaveDraft(ctx)
	default:
		record, err = ed.Submit(ctx)
	}
	if err != nil {
		return fmt.Errorf("%s", ed.Notice())
	}
	fmt.Printf("%s %s (%s)\n", record.ID, record.Slug, record.Status)
	return nil
}

func promptConfirm(kind models.Kind) editor.ConfirmFunc {
	return func(record models.Record) bool {
		fmt.Printf("Delete %s %q (%s)? [y/N] ", kind, record.Title, record.Slug)
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil {
			return false
		}
		answer := strings.ToLower(strings.TrimSpace(line))
		return answer == "y" || answer == "yes"
	}
}

func printRecords(records []models.Record) {
	if len(records) == 0 {
		fmt.Println("no records")
		return
	}
	for _, r := range records {
		fmt.Printf("%s\t%s\t/%s\t%s\n", r.ID, r.Status, r.Slug, r.Title)
	}
}

func printRecord(r *models.Record) error {
	if r == nil {
		return fmt.Errorf("not found")
	}
	fmt.Printf("# %s\n\n%s\n", r.Title, r.Content)
	return nil
}
