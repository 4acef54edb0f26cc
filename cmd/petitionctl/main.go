package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"documerge-backend/app"
	"documerge-backend/config"
	"documerge-backend/document"
	"documerge-backend/models"
	"documerge-backend/service"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"
)

func main() {
	_ = godotenv.Load()

	args := os.Args
	if len(args) == 1 {
		args = append(args, "--help")
	}

	root := &cli.Command{
		Name:  "petitionctl",
		Usage: "Seed questionnaires and assemble petitions from the command line",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "db-type", Usage: "postgres or sqlite (overrides DB_TYPE)"},
			&cli.StringFlag{Name: "sqlite-path", Usage: "sqlite database file (overrides SQLITE_PATH)"},
		},
		Commands: []*cli.Command{
			seedCommand(),
			generateCommand(),
			inspectCommand(),
			listCommand(),
			thesesCommand(),
		},
	}

	if err := root.Run(context.Background(), args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func openApp(ctx context.Context, c *cli.Command) (*app.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if v := c.String("db-type"); v != "" {
		cfg.DBType = config.DBType(strings.ToLower(v))
	}
	if v := c.String("sqlite-path"); v != "" {
		cfg.SQLitePath = v
	}
	if cfg.LogFormat == "json" {
		cfg.LogFormat = "console"
	}
	return app.New(ctx, cfg, cfg.NewLogger(os.Stderr))
}

func seedCommand() *cli.Command {
	return &cli.Command{
		Name:      "seed",
		Usage:     "Create a client, its theses and a questionnaire from a JSON file",
		ArgsUsage: "<file.json>",
		Action: func(ctx context.Context, c *cli.Command) error {
			if c.Args().Len() != 1 {
				return fmt.Errorf("expected one seed file")
			}
			seed, err := loadSeed(c.Args().First())
			if err != nil {
				return err
			}

			a, err := openApp(ctx, c)
			if err != nil {
				return err
			}
			defer a.Close()

			out, err := applySeed(ctx, a, seed)
			if err != nil {
				return err
			}
			return printJSON(out)
		},
	}
}

func generateCommand() *cli.Command {
	return &cli.Command{
		Name:  "generate",
		Usage: "Assemble a petition from questionnaire answers",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "model", Required: true, Usage: "petition model id"},
			&cli.StringFlag{Name: "client", Required: true, Usage: "client id"},
			&cli.StringFlag{Name: "user", Required: true, Usage: "id of the drafter the petition belongs to"},
			&cli.StringFlag{Name: "title", Required: true},
			&cli.StringFlag{Name: "case-number"},
			&cli.StringSliceFlag{Name: "answer", Usage: "question-id=yes|no, repeatable"},
			&cli.StringFlag{Name: "answers-file", Usage: `JSON object {"<question-id>": true|false}`},
			&cli.StringFlag{Name: "out", Usage: "also write the document to this file"},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			modelID, err := uuid.Parse(c.String("model"))
			if err != nil {
				return fmt.Errorf("invalid --model: %w", err)
			}
			clientID, err := uuid.Parse(c.String("client"))
			if err != nil {
				return fmt.Errorf("invalid --client: %w", err)
			}
			userID, err := uuid.Parse(c.String("user"))
			if err != nil {
				return fmt.Errorf("invalid --user: %w", err)
			}
			answers, err := parseAnswers(c.StringSlice("answer"))
			if err != nil {
				return err
			}
			if path := c.String("answers-file"); path != "" {
				fromFile, err := loadAnswers(path)
				if err != nil {
					return err
				}
				for id, answer := range fromFile {
					if _, ok := answers[id]; !ok {
						answers[id] = answer
					}
				}
			}
			var caseNumber *string
			if c.IsSet("case-number") {
				v := c.String("case-number")
				caseNumber = &v
			}

			a, err := openApp(ctx, c)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
			defer cancel()

			result, err := a.Documents.GeneratePetition(ctx, service.GeneratePetitionRequest{
				ModelID:    modelID,
				ClientID:   clientID,
				Answers:    answers,
				Actor:      models.Actor{UserID: userID, Role: models.RoleDrafter},
				Title:      c.String("title"),
				CaseNumber: caseNumber,
			})
			if err != nil {
				return err
			}

			if path := c.String("out"); path != "" {
				file, err := a.Documents.GetPetitionFile(ctx, result.Petition.ID)
				if err != nil {
					return err
				}
				if err := os.WriteFile(path, file.Data, 0o644); err != nil {
					return fmt.Errorf("failed to write %s: %w", path, err)
				}
				a.Logger.Info().Str("path", path).Msg("document written")
			}

			titles := make([]string, len(result.Theses))
			for i, t := range result.Theses {
				titles[i] = t.Title
			}
			return printJSON(map[string]any{
				"petition": result.Petition,
				"theses":   titles,
			})
		},
	}
}

func inspectCommand() *cli.Command {
	return &cli.Command{
		Name:      "inspect",
		Usage:     "Print the paragraphs of a stored petition or of a local .docx file",
		ArgsUsage: "<petition-id | file.docx>",
		Action: func(ctx context.Context, c *cli.Command) error {
			arg := c.Args().First()
			if arg == "" {
				return fmt.Errorf("expected a petition id or a file")
			}

			id, err := uuid.Parse(arg)
			if err != nil {
				data, err := os.ReadFile(arg)
				if err != nil {
					return fmt.Errorf("%q is neither a petition id nor a readable file: %w", arg, err)
				}
				paragraphs, err := document.Decode(data)
				if err != nil {
					return err
				}
				printParagraphs(os.Stdout, paragraphs)
				return nil
			}

			a, err := openApp(ctx, c)
			if err != nil {
				return err
			}
			defer a.Close()

			result, err := a.Documents.GetPetitionContent(ctx, id)
			if err != nil {
				return err
			}
			printParagraphs(os.Stdout, result.Paragraphs)
			return nil
		},
	}
}

// printParagraphs writes one line per paragraph with its style and the
// formatting of each run: **bold**, _italic_
func printParagraphs(w io.Writer, paragraphs []document.Paragraph) {
	for _, p := range paragraphs {
		var b strings.Builder
		if p.Style != document.StyleNormal {
			b.WriteString("[" + string(p.Style) + "] ")
		}
		for _, r := range p.Runs {
			text := r.Text
			if r.Italic {
				text = "_" + text + "_"
			}
			if r.Bold {
				text = "**" + text + "**"
			}
			b.WriteString(text)
		}
		fmt.Fprintln(w, b.String())
	}
}

func listCommand() *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List generated petitions, newest first",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "user", Usage: "only petitions of this user"},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			var req service.ListPetitionsRequest
			if c.IsSet("user") {
				userID, err := uuid.Parse(c.String("user"))
				if err != nil {
					return fmt.Errorf("invalid --user: %w", err)
				}
				req.UserID = &userID
			}

			a, err := openApp(ctx, c)
			if err != nil {
				return err
			}
			defer a.Close()

			result, err := a.PetitionService.ListPetitions(ctx, req)
			if err != nil {
				return err
			}
			for _, p := range result.Petitions {
				fmt.Printf("%s\t%s\t%s\n", p.ID, p.CreatedAt.Format(time.RFC3339), p.Title)
			}
			return nil
		},
	}
}

func thesesCommand() *cli.Command {
	return &cli.Command{
		Name:  "theses",
		Usage: "List the theses of a client",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "client", Required: true},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			clientID, err := uuid.Parse(c.String("client"))
			if err != nil {
				return fmt.Errorf("invalid --client: %w", err)
			}

			a, err := openApp(ctx, c)
			if err != nil {
				return err
			}
			defer a.Close()

			theses, err := a.Theses.ListByClientID(ctx, clientID)
			if err != nil {
				return err
			}
			for _, t := range theses {
				fmt.Printf("%s\t%s\t%s\n", t.ID, t.Title, t.Location)
			}
			return nil
		},
	}
}

// parseAnswers reads question-id=yes|no pairs
func parseAnswers(values []string) (models.Answers, error) {
	answers := make(models.Answers, len(values))
	for _, v := range values {
		key, raw, ok := strings.Cut(v, "=")
		if !ok {
			return nil, fmt.Errorf("answer %q is not question-id=yes|no", v)
		}
		questionID, err := uuid.Parse(strings.TrimSpace(key))
		if err != nil {
			return nil, fmt.Errorf("answer %q: invalid question id", v)
		}
		answer, err := parseYesNo(raw)
		if err != nil {
			return nil, fmt.Errorf("answer %q: %w", v, err)
		}
		answers[questionID] = answer
	}
	return answers, nil
}

func loadAnswers(path string) (models.Answers, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read answers file: %w", err)
	}
	var raw map[string]bool
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse answers file: %w", err)
	}

	answers := make(models.Answers, len(raw))
	for key, answer := range raw {
		questionID, err := uuid.Parse(key)
		if err != nil {
			return nil, fmt.Errorf("answers file: invalid question id %q", key)
		}
		answers[questionID] = answer
	}
	return answers, nil
}

func parseYesNo(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "y", "sim", "s", "true", "1":
		return true, nil
	case "no", "n", "nao", "não", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("expected yes or no, got %q", s)
	}
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
