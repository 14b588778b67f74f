// Command collegiate is a terminal client for the Collegiate API:
// account management, college search, the saved-college dashboard, and
// AI essay and resume guidance.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/joho/godotenv"

	"github.com/collegiate-app/collegiate/internal/dashboard"
	"github.com/collegiate-app/collegiate/internal/guidance"
	"github.com/collegiate-app/collegiate/internal/identity"
	"github.com/collegiate-app/collegiate/internal/logging"
	"github.com/collegiate-app/collegiate/internal/model"
	"github.com/collegiate-app/collegiate/internal/search"
	"github.com/collegiate-app/collegiate/internal/session"
)

func main() {
	godotenv.Load()
	logger := logging.Setup(os.Getenv("COLLEGIATE_LOG_LEVEL"), os.Getenv("COLLEGIATE_LOG_FORMAT"))

	app, err := newApp(logger)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	ctx := context.Background()
	if err := app.run(ctx, os.Args[1], os.Args[2:]); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprint(os.Stderr, `Usage: collegiate <command> [flags]

Account:
  login            -email -password
  signup           -email -password -name [-role student|counselor] [-school]
  logout
  whoami
  forgot-password  -email
  reset-password   -token -password

Colleges:
  search           [-query] [-state] [-online] [-sort name|acceptance|tuition_in_state|student_size] [-order asc|desc]
  dashboard        list | add [-query -state] | remove [-id]

Guidance:
  essay            outline [-about -quality -story -college] | grade [-file -context]
  resume           analyze [-file] | upload [-file]
`)
}

type app struct {
	identity  *identity.Service
	search    *search.Client
	dashboard *dashboard.Client
	guidance  *guidance.Client
	logger    *slog.Logger
}

func newApp(logger *slog.Logger) (*app, error) {
	apiURL := os.Getenv("COLLEGIATE_API_URL")
	if apiURL == "" {
		apiURL = "http://localhost:5001"
	}

	sessions, err := session.NewStore(os.Getenv("COLLEGIATE_SESSION_DIR"))
	if err != nil {
		return nil, fmt.Errorf("session store: %w", err)
	}

	redirectURL := os.Getenv("COLLEGIATE_PASSWORD_RESET_REDIRECT_URL")
	if redirectURL == "" {
		redirectURL = "collegiate://reset-password"
	}

	var provider identity.Provider
	client := identity.NewClient(identity.Config{
		URL:              os.Getenv("COLLEGIATE_SUPABASE_URL"),
		AnonKey:          os.Getenv("COLLEGIATE_SUPABASE_ANON_KEY"),
		ResetRedirectURL: redirectURL,
	})
	if client.Configured() {
		provider = client
	} else {
		// Accounts live only for this process; fine for trying things out.
		logger.Warn("identity provider not configured, using in-memory accounts")
		provider = identity.NewMemory(nil)
	}

	svc := identity.NewService(provider, sessions, logger.With("component", "identity"))

	return &app{
		identity:  svc,
		search:    search.NewClient(apiURL),
		dashboard: dashboard.NewClient(apiURL, svc),
		guidance:  guidance.NewClient(apiURL),
		logger:    logger,
	}, nil
}

func (a *app) run(ctx context.Context, command string, args []string) error {
	switch command {
	case "login":
		return a.login(ctx, args)
	case "signup":
		return a.signup(ctx, args)
	case "logout":
		return a.logout()
	case "whoami":
		return a.whoami(ctx)
	case "forgot-password":
		return a.forgotPassword(ctx, args)
	case "reset-password":
		return a.resetPassword(ctx, args)
	case "search":
		return a.searchColleges(ctx, args)
	case "dashboard":
		return a.dashboardCmd(ctx, args)
	case "essay":
		return a.essayCmd(ctx, args)
	case "resume":
		return a.resumeCmd(ctx, args)
	case "help", "-h", "--help":
		usage()
		return nil
	default:
		usage()
		return fmt.Errorf("unknown command %q", command)
	}
}

func (a *app) login(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	fs.Parse(args)

	if strings.TrimSpace(*email) == "" || *password == "" {
		return fmt.Errorf("both -email and -password are required")
	}

	user, err := a.identity.SignIn(ctx, *email, *password)
	if err != nil {
		return err
	}
	fmt.Printf("Signed in as %s (%s)\n", user.FullName, user.Email)
	return nil
}

func (a *app) signup(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("signup", flag.ExitOnError)
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	name := fs.String("name", "", "full name")
	role := fs.String("role", "student", "student or counselor")
	school := fs.String("school", "", "school name (counselors)")
	fs.Parse(args)

	if strings.TrimSpace(*email) == "" || *password == "" {
		return fmt.Errorf("both -email and -password are required")
	}
	if *role != string(model.RoleStudent) && *role != string(model.RoleCounselor) {
		return fmt.Errorf("-role must be student or counselor")
	}

	user, err := a.identity.SignUp(ctx, identity.SignUpParams{
		Email:      *email,
		Password:   *password,
		FullName:   *name,
		Role:       model.Role(*role),
		SchoolName: *school,
	})
	if err != nil {
		return err
	}
	if a.identity.CurrentUser() == nil {
		fmt.Printf("Account created for %s. Check your email to confirm, then log in.\n", user.Email)
		return nil
	}
	fmt.Printf("Account created. Signed in as %s (%s)\n", user.FullName, user.Email)
	return nil
}

func (a *app) logout() error {
	if err := a.identity.SignOut(); err != nil {
		return err
	}
	fmt.Println("Signed out.")
	return nil
}

func (a *app) whoami(ctx context.Context) error {
	user := a.identity.RestoreUser(ctx)
	if user == nil {
		fmt.Println("Not signed in.")
		return nil
	}
	fmt.Printf("%s <%s> role=%s\n", user.FullName, user.Email, user.Role)
	return nil
}

func (a *app) forgotPassword(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("forgot-password", flag.ExitOnError)
	email := fs.String("email", "", "account email")
	fs.Parse(args)

	if strings.TrimSpace(*email) == "" {
		return fmt.Errorf("-email is required")
	}
	if err := a.identity.ForgotPassword(ctx, *email); err != nil {
		return err
	}
	fmt.Println("If that email has an account, a reset link is on its way.")
	return nil
}

func (a *app) resetPassword(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("reset-password", flag.ExitOnError)
	token := fs.String("token", "", "recovery token from the reset email")
	password := fs.String("password", "", "new password")
	fs.Parse(args)

	if *token == "" || *password == "" {
		return fmt.Errorf("both -token and -password are required")
	}
	if err := a.identity.ResetPassword(ctx, *token, *password); err != nil {
		return err
	}
	fmt.Println("Password updated. You can log in with the new password now.")
	return nil
}

func (a *app) searchColleges(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	query := fs.String("query", "", "school name to search for")
	state := fs.String("state", "", "two-letter state code")
	online := fs.Bool("online", false, "online-only schools")
	sortBy := fs.String("sort", "name", "sort column")
	order := fs.String("order", "asc", "asc or desc")
	fs.Parse(args)

	filters := search.Filters{
		Query:      *query,
		State:      *state,
		OnlineOnly: *online,
		SortBy:     search.SortBy(*sortBy),
		SortOrder:  search.SortOrder(*order),
	}

	colleges, err := a.search.Search(ctx, filters)
	degraded := false
	if err != nil {
		// Offline or the API is down; show the bundled dataset instead.
		a.logger.Warn("college search failed, serving bundled data", "error", err)
		colleges = search.FilterMock(filters)
		degraded = true
	}

	printColleges(colleges)
	if degraded {
		fmt.Println("\n(offline results; could not reach the API)")
	}
	return nil
}

func printColleges(colleges []model.College) {
	if len(colleges) == 0 {
		fmt.Println("No colleges matched.")
		return
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tCITY\tSTATE\tACCEPT\tSIZE\tTUITION(IN)\tSAT75\tACT75")
	for _, c := range colleges {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			c.ID, c.Name, c.City, c.State,
			fmtRate(c.AcceptanceRate), fmtInt(c.StudentSize), fmtInt(c.TuitionInState),
			fmtInt(c.SAT75th), fmtInt(c.ACT75th))
	}
	w.Flush()
}

func fmtRate(p *float64) string {
	if p == nil {
		return "-"
	}
	return fmt.Sprintf("%.1f%%", *p*100)
}

func fmtInt(p *int) string {
	if p == nil {
		return "-"
	}
	return fmt.Sprintf("%d", *p)
}

func (a *app) dashboardCmd(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("dashboard needs a subcommand: list, add, or remove")
	}
	if user := a.identity.RestoreUser(ctx); user == nil {
		return fmt.Errorf("you must be logged in to use the dashboard")
	}

	switch args[0] {
	case "list":
		colleges, err := a.dashboard.List(ctx)
		if err != nil {
			return err
		}
		if len(colleges) == 0 {
			fmt.Println("No saved colleges yet.")
			return nil
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tCITY\tSTATE")
		for _, c := range colleges {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", c.ID, c.CollegeName, c.City, c.State)
		}
		return w.Flush()

	case "add":
		fs := flag.NewFlagSet("dashboard add", flag.ExitOnError)
		query := fs.String("query", "", "school name to look up")
		state := fs.String("state", "", "two-letter state code")
		fs.Parse(args[1:])
		if strings.TrimSpace(*query) == "" {
			return fmt.Errorf("-query is required")
		}

		results, err := a.search.Search(ctx, search.Filters{
			Query: *query, State: *state,
			SortBy: search.SortByName, SortOrder: search.SortAsc,
		})
		if err != nil {
			return err
		}
		if len(results) == 0 {
			return fmt.Errorf("no college matched %q", *query)
		}
		college := results[0]
		if err := a.dashboard.Add(ctx, college); err != nil {
			return err
		}
		fmt.Printf("Saved %s (%s) to your dashboard.\n", college.Name, college.State)
		return nil

	case "remove":
		fs := flag.NewFlagSet("dashboard remove", flag.ExitOnError)
		id := fs.String("id", "", "saved college id (from dashboard list)")
		fs.Parse(args[1:])
		if *id == "" {
			return fmt.Errorf("-id is required")
		}
		if err := a.dashboard.Remove(ctx, *id); err != nil {
			return err
		}
		fmt.Println("Removed.")
		return nil

	default:
		return fmt.Errorf("unknown dashboard subcommand %q", args[0])
	}
}

func (a *app) essayCmd(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("essay needs a subcommand: outline or grade")
	}

	switch args[0] {
	case "outline":
		fs := flag.NewFlagSet("essay outline", flag.ExitOnError)
		about := fs.String("about", "", "tell us about yourself")
		quality := fs.String("quality", "", "a quality that makes you unique")
		story := fs.String("story", "", "a story about someone you love")
		college := fs.String("college", "", "what colleges should know about you")
		fs.Parse(args[1:])

		outline, err := a.guidance.GenerateOutline(ctx, model.OutlineResponses{
			AboutYourself:      *about,
			UniqueQuality:      *quality,
			StoryAboutLovedOne: *story,
			CollegeInfo:        *college,
		})
		if err != nil {
			return err
		}
		fmt.Println(outline.AIOutline)
		return nil

	case "grade":
		fs := flag.NewFlagSet("essay grade", flag.ExitOnError)
		file := fs.String("file", "", "path to the essay text file")
		essayContext := fs.String("context", "", "optional prompt or background for the grader")
		fs.Parse(args[1:])
		if *file == "" {
			return fmt.Errorf("-file is required")
		}

		essay, err := os.ReadFile(*file)
		if err != nil {
			return fmt.Errorf("reading essay: %w", err)
		}

		grade, err := a.guidance.GradeEssay(ctx, string(essay), *essayContext)
		if err != nil {
			return err
		}
		printGrade(grade)
		return nil

	default:
		return fmt.Errorf("unknown essay subcommand %q", args[0])
	}
}

func printGrade(grade *model.EssayGrade) {
	fmt.Printf("Score: %.1f/10  (%d words)\n\n%s\n", grade.Score, grade.Meta.WordCount, grade.Summary)
	if len(grade.Strengths) > 0 {
		fmt.Println("\nStrengths:")
		for _, s := range grade.Strengths {
			fmt.Println("  +", s)
		}
	}
	if len(grade.Weaknesses) > 0 {
		fmt.Println("\nWeaknesses:")
		for _, s := range grade.Weaknesses {
			fmt.Println("  -", s)
		}
	}
	for _, fix := range grade.PriorityFixes {
		fmt.Printf("\nFix: %s\n  Why: %s\n  How: %s\n", fix.Issue, fix.WhyItMatters, fix.HowToFix)
	}
}

func (a *app) resumeCmd(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("resume needs a subcommand: analyze or upload")
	}

	fs := flag.NewFlagSet("resume "+args[0], flag.ExitOnError)
	file := fs.String("file", "", "path to the resume file")
	fs.Parse(args[1:])
	if *file == "" {
		return fmt.Errorf("-file is required")
	}

	switch args[0] {
	case "analyze":
		contents, err := os.ReadFile(*file)
		if err != nil {
			return fmt.Errorf("reading resume: %w", err)
		}
		feedback, err := a.guidance.AnalyzeResume(ctx, string(contents))
		if err != nil {
			return err
		}
		fmt.Println(feedback)
		return nil

	case "upload":
		f, err := os.Open(*file)
		if err != nil {
			return fmt.Errorf("opening resume: %w", err)
		}
		defer f.Close()
		feedback, err := a.guidance.UploadResume(ctx, filepath.Base(*file), f)
		if err != nil {
			return err
		}
		fmt.Println(feedback)
		return nil

	default:
		return fmt.Errorf("unknown resume subcommand %q", args[0])
	}
}
