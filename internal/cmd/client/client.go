// Package client wires the terminal front end for the zenith command. It is
// presentation only; all behavior lives in the client engine packages.
package client

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/blizx/zenith/internal/client/feedback"
	"github.com/blizx/zenith/internal/client/remind"
	"github.com/blizx/zenith/internal/client/rest"
	"github.com/blizx/zenith/internal/client/session"
	"github.com/blizx/zenith/internal/client/state"
	"github.com/blizx/zenith/internal/client/timer"
	"github.com/blizx/zenith/internal/domain"
	"github.com/blizx/zenith/internal/markdown"
	platformcmd "github.com/blizx/zenith/internal/platform/cmd"
)

// Config holds client command configuration.
type Config struct {
	GatewayURL  string `env:"ZENITH_GATEWAY_URL" envDefault:"http://localhost:8090"`
	FeedbackURL string `env:"ZENITH_FEEDBACK_URL"`
}

// ParseConfig loads env defaults and then flag overrides into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := platformcmd.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}

	fs.StringVar(&cfg.GatewayURL, "gateway", cfg.GatewayURL, "Base URL of the gateway")
	fs.StringVar(&cfg.FeedbackURL, "feedback", cfg.FeedbackURL, "Feedback relay URL")
	if err := platformcmd.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the interactive terminal client.
func Run(ctx context.Context, cfg Config, in io.Reader, out io.Writer) error {
	gw := rest.New(cfg.GatewayURL, nil)
	collections := state.New(gw)
	sessions := session.New(gw)
	countdown := timer.New()
	reminders := remind.New(remind.NotifierFunc(func(task domain.Task) {
		fmt.Fprintf(out, "\nreminder: %q is still open\n> ", task.Title)
	}))
	defer reminders.Stop()
	defer collections.Wait()

	sessions.Subscribe(func(s domain.Session) {
		if !s.Active() {
			collections.Reset()
			reminders.Stop()
			return
		}
		collections.FetchAll(ctx, s.UserID)
		collections.FetchProfile(ctx, s.UserID)
	})

	if err := sessions.Initialize(ctx); err != nil {
		fmt.Fprintf(out, "no existing session: %v\n", err)
	}

	app := &repl{
		cfg:         cfg,
		out:         out,
		sessions:    sessions,
		collections: collections,
		countdown:   countdown,
		reminders:   reminders,
	}
	if cfg.FeedbackURL != "" {
		app.feedback = feedback.New(cfg.FeedbackURL, nil)
	}

	fmt.Fprintln(out, "zenith (type help for commands)")
	scanner := bufio.NewScanner(in)
	fmt.Fprint(out, "> ")
	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "quit" || line == "exit" {
			return nil
		}
		if line != "" {
			app.dispatch(ctx, line)
		}
		fmt.Fprint(out, "> ")
	}
	return scanner.Err()
}

type repl struct {
	cfg         Config
	out         io.Writer
	sessions    *session.Store
	collections *state.Store
	countdown   *timer.Timer
	reminders   *remind.Scheduler
	feedback    *feedback.Relay
}

func (r *repl) dispatch(ctx context.Context, line string) {
	parts := strings.Fields(line)
	command, args := parts[0], parts[1:]

	switch command {
	case "help":
		r.printHelp()
	case "signup", "signin":
		r.authenticate(ctx, command, args)
	case "signout":
		if err := r.sessions.SignOut(ctx); err != nil {
			fmt.Fprintf(r.out, "sign out: %v\n", err)
		}
	case "recover":
		if len(args) != 1 {
			fmt.Fprintln(r.out, "usage: recover <email>")
			return
		}
		if err := r.sessions.RequestPasswordReset(ctx, args[0]); err != nil {
			fmt.Fprintf(r.out, "recover: %v\n", err)
			return
		}
		fmt.Fprintln(r.out, "reset requested; check your inbox")
	case "tasks":
		r.listTasks(args)
	case "add":
		r.addTask(ctx, args)
	case "toggle":
		r.withTask(args, func(task domain.Task) {
			r.collections.ToggleTaskStatus(ctx, task.ID)
			if task.Status != domain.TaskStatusDone {
				r.reminders.Cancel(task.ID)
			}
		})
	case "del":
		r.withTask(args, func(task domain.Task) {
			r.collections.DeleteTask(ctx, task.ID)
			r.reminders.Cancel(task.ID)
		})
	case "remind":
		r.setReminder(ctx, args)
	case "notes":
		for i, note := range r.collections.Notes() {
			fmt.Fprintf(r.out, "%2d. [%s] %s: %s\n", i+1, note.DateLabel, note.Title, note.Content)
		}
	case "note":
		if len(args) == 0 {
			fmt.Fprintln(r.out, "usage: note <content>")
			return
		}
		if _, err := r.collections.CreateNote(ctx, domain.CreateNoteInput{
			Content: strings.Join(args, " "),
		}); err != nil {
			fmt.Fprintf(r.out, "note: %v\n", err)
		}
	case "render":
		r.renderNote(args)
	case "delnote":
		r.deleteNote(ctx, args)
	case "board":
		r.printBoard()
	case "focus":
		r.addPriority(ctx, args)
	case "timer":
		r.timerCommand(args)
	case "profile":
		r.printProfile()
	case "onboard":
		r.onboard(ctx, args)
	case "feedback":
		r.sendFeedback(ctx, args)
	default:
		fmt.Fprintf(r.out, "unknown command %q; type help\n", command)
	}
}

func (r *repl) printHelp() {
	fmt.Fprint(r.out, `commands:
  signup <email> <password>      create an account
  signin <email> <password>      sign in
  signout                        sign out and clear local data
  recover <email>                request a password reset
  tasks [YYYY-MM-DD]             list tasks, optionally for one day
  add <title> [date]             add a task (date defaults to today)
  toggle <n>                     toggle task n between todo and done
  del <n>                        delete task n
  remind <n> [on|off]            arm or clear a reminder for task n
  board                          show the focus board
  focus <cat> <tier> <text>      add a focus item (tiers: must, should, backlog)
  notes / note <content>         list notes / write one
  render <n>                     show note n rendered as HTML
  delnote <n>                    delete note n
  timer <start|pause|reset|status|mode x|custom m>
  profile / onboard <name> ...   show or complete the profile
  feedback <message>             send feedback
  quit
`)
}

func (r *repl) authenticate(ctx context.Context, command string, args []string) {
	if len(args) != 2 {
		fmt.Fprintf(r.out, "usage: %s <email> <password>\n", command)
		return
	}
	var err error
	if command == "signup" {
		err = r.sessions.SignUp(ctx, args[0], args[1])
	} else {
		err = r.sessions.SignIn(ctx, args[0], args[1])
	}
	if err != nil {
		fmt.Fprintf(r.out, "%s: %v\n", command, err)
		return
	}
	fmt.Fprintf(r.out, "signed in as %s\n", r.sessions.Session().Email)
}

func (r *repl) listTasks(args []string) {
	tasks := r.collections.Tasks()
	if len(args) == 1 {
		tasks = r.collections.TasksOn(args[0])
	}
	for i, task := range tasks {
		marker := " "
		if task.Status == domain.TaskStatusDone {
			marker = "x"
		}
		fmt.Fprintf(r.out, "%2d. [%s] %s (%s, %s, %s)\n",
			i+1, marker, task.Title, task.Date, task.Category, task.Priority)
	}
}

func (r *repl) addTask(ctx context.Context, args []string) {
	if len(args) == 0 {
		fmt.Fprintln(r.out, "usage: add <title> [YYYY-MM-DD]")
		return
	}
	date := r.today()
	title := args
	if len(args) > 1 {
		if _, err := parseDay(args[len(args)-1]); err == nil {
			date = args[len(args)-1]
			title = args[:len(args)-1]
		}
	}
	task, err := r.collections.CreateTask(ctx, domain.CreateTaskInput{
		Title: strings.Join(title, " "),
		Date:  date,
	})
	if err != nil {
		fmt.Fprintf(r.out, "add: %v\n", err)
		return
	}
	if task.RemindEnabled {
		r.reminders.Schedule(task)
	}
}

func (r *repl) withTask(args []string, apply func(domain.Task)) {
	tasks := r.collections.Tasks()
	index, err := parseIndex(args, len(tasks))
	if err != nil {
		fmt.Fprintln(r.out, err)
		return
	}
	apply(tasks[index])
}

func (r *repl) setReminder(ctx context.Context, args []string) {
	enabled := true
	if len(args) == 2 {
		switch args[1] {
		case "on":
		case "off":
			enabled = false
		default:
			fmt.Fprintln(r.out, "usage: remind <n> [on|off]")
			return
		}
		args = args[:1]
	}
	r.withTask(args, func(task domain.Task) {
		r.collections.SetTaskReminder(ctx, task.ID, enabled)
		if !enabled {
			r.reminders.Cancel(task.ID)
			return
		}
		task.RemindEnabled = true
		r.reminders.Schedule(task)
	})
}

func (r *repl) renderNote(args []string) {
	notes := r.collections.Notes()
	index, err := parseIndex(args, len(notes))
	if err != nil {
		fmt.Fprintln(r.out, err)
		return
	}
	fmt.Fprintln(r.out, markdown.Render(notes[index].Content))
}

func (r *repl) deleteNote(ctx context.Context, args []string) {
	notes := r.collections.Notes()
	index, err := parseIndex(args, len(notes))
	if err != nil {
		fmt.Fprintln(r.out, err)
		return
	}
	r.collections.DeleteNote(ctx, notes[index].ID)
}

func (r *repl) printBoard() {
	for _, category := range domain.Categories() {
		fmt.Fprintf(r.out, "%s:\n", category)
		for _, tier := range domain.SubCategories() {
			items := r.collections.PrioritiesIn(category, tier)
			if len(items) == 0 {
				continue
			}
			fmt.Fprintf(r.out, "  %s:\n", tier)
			for _, item := range items {
				marker := " "
				if item.Completed {
					marker = "x"
				}
				fmt.Fprintf(r.out, "    [%s] %s\n", marker, item.Text)
			}
		}
	}
}

func (r *repl) addPriority(ctx context.Context, args []string) {
	if len(args) < 3 {
		fmt.Fprintln(r.out, "usage: focus <category> <tier> <text>")
		return
	}
	tier, ok := map[string]domain.SubCategory{
		"must":    domain.SubCategoryMustDo,
		"should":  domain.SubCategoryShouldDo,
		"backlog": domain.SubCategoryBacklog,
	}[strings.ToLower(args[1])]
	if !ok {
		fmt.Fprintln(r.out, "tiers: must, should, backlog")
		return
	}
	category, ok := parseCategory(args[0])
	if !ok {
		fmt.Fprintln(r.out, "categories: work, project, private")
		return
	}
	_, err := r.collections.CreatePriority(ctx, domain.CreatePriorityItemInput{
		Text:        strings.Join(args[2:], " "),
		Category:    category,
		SubCategory: tier,
	})
	if err != nil {
		fmt.Fprintf(r.out, "focus: %v\n", err)
	}
}

func (r *repl) timerCommand(args []string) {
	if len(args) == 0 {
		args = []string{"status"}
	}
	switch args[0] {
	case "start":
		r.countdown.Start()
	case "pause":
		r.countdown.Pause()
	case "reset":
		r.countdown.Reset()
	case "mode":
		if len(args) != 2 {
			fmt.Fprintln(r.out, "modes: focus, short, long, custom")
			return
		}
		mode, ok := map[string]timer.Mode{
			"focus":  timer.ModeFocus,
			"short":  timer.ModeShortBreak,
			"long":   timer.ModeLongBreak,
			"custom": timer.ModeCustom,
		}[args[1]]
		if !ok {
			fmt.Fprintln(r.out, "modes: focus, short, long, custom")
			return
		}
		r.countdown.SetMode(mode)
	case "custom":
		if len(args) != 2 {
			fmt.Fprintln(r.out, "usage: timer custom <minutes>")
			return
		}
		minutes, err := strconv.Atoi(args[1])
		if err != nil {
			fmt.Fprintln(r.out, "usage: timer custom <minutes>")
			return
		}
		r.countdown.SetCustomMinutes(minutes)
	}
	fmt.Fprintf(r.out, "%s %s (%s)\n", r.countdown.Mode(), r.countdown.FormatRemaining(), r.countdown.State())
}

func (r *repl) printProfile() {
	profile, loaded := r.sessions.Profile()
	if !loaded || profile.DisplayName == "" {
		fmt.Fprintln(r.out, "no profile yet; use onboard <name> [age] [occupation]")
		return
	}
	fmt.Fprintf(r.out, "%s (%s, %s)\n", profile.DisplayName, profile.Age, profile.Occupation)
}

func (r *repl) onboard(ctx context.Context, args []string) {
	if len(args) == 0 {
		fmt.Fprintln(r.out, "usage: onboard <name> [age] [occupation]")
		return
	}
	input := domain.ProfileInput{DisplayName: args[0], OnboardingComplete: true}
	if len(args) > 1 {
		input.Age = args[1]
	}
	if len(args) > 2 {
		input.Occupation = strings.Join(args[2:], " ")
	}
	if _, err := r.collections.SaveProfile(ctx, input); err != nil {
		fmt.Fprintf(r.out, "onboard: %v\n", err)
		return
	}
	fmt.Fprintln(r.out, "welcome aboard")
}

func (r *repl) sendFeedback(ctx context.Context, args []string) {
	if r.feedback == nil {
		fmt.Fprintln(r.out, "feedback relay is not configured")
		return
	}
	if len(args) == 0 {
		fmt.Fprintln(r.out, "usage: feedback <message>")
		return
	}
	err := r.feedback.Send(ctx, r.sessions.Session().Email, strings.Join(args, " "))
	if err != nil {
		fmt.Fprintf(r.out, "feedback failed, keep your message and retry: %v\n", err)
		return
	}
	fmt.Fprintln(r.out, "thanks for the feedback")
}

func (r *repl) today() string {
	return currentDay()
}

func parseIndex(args []string, length int) (int, error) {
	if len(args) != 1 {
		return 0, fmt.Errorf("usage: <command> <n>")
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 1 || n > length {
		return 0, fmt.Errorf("no entry %q", args[0])
	}
	return n - 1, nil
}
