package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/noteshq/notesctl/internal/models"
	"github.com/noteshq/notesctl/internal/tokenrefresher"
)

func (a *app) cmdLogin(ctx context.Context, args []string) error {
	flags := flag.NewFlagSet("login", flag.ContinueOnError)
	username := flags.String("username", "", "the username to log in with")
	password := flags.String("password", "", "the password, prompted for when omitted")
	if err := flags.Parse(args); err != nil {
		return err
	}
	reader := bufio.NewReader(os.Stdin)
	if *username == "" {
		fmt.Fprint(os.Stderr, "username: ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return err
		}
		*username = strings.TrimSpace(line)
	}
	if *password == "" {
		fmt.Fprint(os.Stderr, "password: ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return err
		}
		*password = strings.TrimSpace(line)
	}
	if err := a.api.Login(ctx, *username, *password); err != nil {
		return err
	}
	fmt.Printf("logged in as %s\n", *username)
	return nil
}

func (a *app) cmdLogout(ctx context.Context) error {
	if err := a.api.Logout(ctx); err != nil {
		return err
	}
	fmt.Println("logged out")
	return nil
}

func (a *app) cmdStatus(ctx context.Context) error {
	authenticated, err := a.sessions.IsAuthenticated(ctx)
	if err != nil {
		return err
	}
	if !authenticated {
		fmt.Println("logged out")
		return nil
	}
	access, err := a.sessions.Access(ctx)
	if err != nil {
		return err
	}
	fmt.Println("logged in")
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(access, claims); err == nil {
		if username, ok := claims["username"].(string); ok {
			fmt.Printf("user: %s\n", username)
		}
		if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
			fmt.Printf("access token expires: %s\n", exp.Time.Format(time.RFC3339))
		}
	}
	return nil
}

func (a *app) cmdList(ctx context.Context) error {
	allNotes, err := a.notes.List(ctx)
	if err != nil {
		return err
	}
	if len(allNotes) == 0 {
		fmt.Println("no notes")
		return nil
	}
	for _, note := range allNotes {
		fmt.Printf("%s  %-12s  %s\n", note.ID, note.Status, note.Title)
	}
	return nil
}

func noteFieldsFlags(flags *flag.FlagSet) (title *string, content *string, status *string) {
	title = flags.String("title", "", "the note title")
	content = flags.String("content", "", "the note content")
	status = flags.String("status", "", "the note status: OPEN, IN_PROGRESS, DONE or ARCHIVED")
	return title, content, status
}

func (a *app) cmdCreate(ctx context.Context, args []string) error {
	flags := flag.NewFlagSet("create", flag.ContinueOnError)
	title, content, status := noteFieldsFlags(flags)
	if err := flags.Parse(args); err != nil {
		return err
	}
	note, err := a.notes.Create(ctx, models.NoteFields{
		Title:   *title,
		Content: *content,
		Status:  models.NoteStatus(*status),
	})
	if err != nil {
		return err
	}
	fmt.Printf("created note %s\n", note.ID)
	return nil
}

func printNote(note models.Note) {
	fmt.Printf("id:      %s\n", note.ID)
	fmt.Printf("title:   %s\n", note.Title)
	fmt.Printf("status:  %s\n", note.Status)
	fmt.Printf("owner:   %s\n", note.Owner)
	fmt.Printf("updated: %s\n", note.UpdatedAt.Format(time.RFC3339))
	if note.Content != "" {
		fmt.Printf("\n%s\n", note.Content)
	}
}

func (a *app) cmdShow(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: notesctl show <id>")
	}
	note, err := a.notes.Get(ctx, args[0])
	if err != nil {
		return err
	}
	printNote(note)
	return nil
}

func (a *app) cmdEdit(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: notesctl edit <id> [options]")
	}
	id := args[0]
	flags := flag.NewFlagSet("edit", flag.ContinueOnError)
	title, content, status := noteFieldsFlags(flags)
	if err := flags.Parse(args[1:]); err != nil {
		return err
	}
	// updates are full replacements on the server, so start from the
	// current note and apply only the provided fields
	current, err := a.notes.Get(ctx, id)
	if err != nil {
		return err
	}
	fields := models.NoteFields{Title: current.Title, Content: current.Content, Status: current.Status}
	if *title != "" {
		fields.Title = *title
	}
	if *content != "" {
		fields.Content = *content
	}
	if *status != "" {
		fields.Status = models.NoteStatus(*status)
	}
	note, err := a.notes.Update(ctx, id, fields)
	if err != nil {
		return err
	}
	printNote(note)
	return nil
}

func (a *app) cmdDelete(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: notesctl delete <id>")
	}
	if err := a.notes.Delete(ctx, args[0]); err != nil {
		return err
	}
	fmt.Printf("deleted note %s\n", args[0])
	return nil
}

func (a *app) cmdHealth(ctx context.Context, args []string) error {
	flags := flag.NewFlagSet("health", flag.ContinueOnError)
	withChecks := flags.Bool("checks", false, "request the detailed checks")
	if err := flags.Parse(args); err != nil {
		return err
	}
	status, err := a.health.Status(ctx, *withChecks)
	if err != nil {
		return err
	}
	fmt.Printf("status: %s\n", status.Status)
	if *withChecks {
		fmt.Printf("db: %s\n", status.DB)
		fmt.Printf("hostname: %s\n", status.Hostname)
		fmt.Printf("app: %s\n", status.App)
		if status.Commit != "" {
			fmt.Printf("commit: %s\n", status.Commit)
		}
	}
	if !status.OK() {
		return fmt.Errorf("the notes service is not healthy")
	}
	return nil
}

// cmdWatch follows session events from every process sharing this session
// and keeps the access token fresh until interrupted.
func (a *app) cmdWatch(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()
	cancel := a.sessions.Subscribe(func(event models.SessionEvent) {
		fmt.Printf("%s session %s\n", time.Now().Format(time.RFC3339), event.Kind)
	})
	defer cancel()
	if err := a.sessions.StartWatch(ctx); err != nil {
		return err
	}
	defer a.sessions.StopWatch()
	if a.config.Session.AutoRefresh {
		refresher, err := tokenrefresher.NewTokenRefresher(
			tokenrefresher.WithExpiryMargin(time.Duration(a.config.Session.ExpiryMarginMinutes)*time.Minute),
			tokenrefresher.WithSessionStore(a.sessions),
			tokenrefresher.WithRefreshRunner(a.api),
		)
		if err != nil {
			return err
		}
		scheduler, err := refresher.GetScheduler()
		if err != nil {
			return err
		}
		scheduler.StartAsync()
		defer scheduler.Stop()
	}
	slog.Info("watching session events", "storage", a.config.Storage.Type)
	<-ctx.Done()
	return nil
}
