package cmd

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/recaplabs/recap-cli/config"
	rerrors "github.com/recaplabs/recap-cli/pkg/errors"
	"github.com/recaplabs/recap-cli/pkg/logging"
	"github.com/recaplabs/recap-cli/pkg/metrics"
	"github.com/recaplabs/recap-cli/pkg/session"
)

// Chat command flags.
var (
	chatQuestion string
	chatOutput   string
)

// ChatCommandDeps holds the dependencies for the chat command.
type ChatCommandDeps struct {
	Config     *config.CLIConfig
	LoadConfig func() (*config.CLIConfig, error)
	NewSession func(cfg *config.CLIConfig, log logging.Logger, m *metrics.Metrics) *session.Session
}

// DefaultChatDeps returns the default dependencies for production use.
func DefaultChatDeps() *ChatCommandDeps {
	return &ChatCommandDeps{
		LoadConfig: config.LoadConfig,
		NewSession: func(cfg *config.CLIConfig, log logging.Logger, m *metrics.Metrics) *session.Session {
			return session.New(NewAPIClient(cfg, log, m), log, m)
		},
	}
}

// NewChatCommand creates the chat command.
func NewChatCommand(deps *ChatCommandDeps) *cobra.Command {
	if deps == nil {
		deps = DefaultChatDeps()
	}

	cmd := &cobra.Command{
		Use:   "chat <transcript-file>",
		Short: "Ask questions about a meeting transcript",
		Long: `Analyze a transcript, then ask questions about it interactively.

The transcript is analyzed first so the conversation has the meeting's
summary, sentiment, and coaching context. Questions then go to the backend's
chat endpoint; if the backend is unreachable, a local heuristic responder
answers from the transcript's common themes instead.

Pass "-" as the file to read the transcript from stdin (then use -q, since
stdin is consumed by the transcript).

Examples:
  # Interactive chat over a transcript
  recap chat standup.txt

  # One-shot question
  recap chat standup.txt -q "What did David raise concerns about?"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(cmd, deps, args[0])
		},
	}

	cmd.Flags().StringVarP(&chatQuestion, "question", "q", "", "Ask a single question and exit")
	cmd.Flags().StringVarP(&chatOutput, "output", "o", "", "Output format for -q answers: text, json, yaml")

	return cmd
}

func runChat(cmd *cobra.Command, deps *ChatCommandDeps, path string) error {
	cfg, err := deps.LoadConfig()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}
	deps.Config = cfg

	outputFormat, err := resolveOutput(cfg, chatOutput)
	if err != nil {
		return err
	}

	transcript, err := readTranscript(path)
	if err != nil {
		return err
	}
	if path == "-" && chatQuestion == "" {
		return fmt.Errorf("interactive chat needs stdin; use -q with a piped transcript: %w", rerrors.ErrValidation)
	}

	log := newLogger(cfg)
	sess := deps.NewSession(cfg, log, metrics.New("recap"))

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Timeout)
	defer cancel()
	if err := sess.Analyze(ctx, transcript); err != nil {
		return fmt.Errorf("analyzing transcript: %w", err)
	}

	out := cmd.OutOrStdout()

	if chatQuestion != "" {
		answer, err := ask(cmd.Context(), cfg, sess, chatQuestion)
		if err != nil {
			return err
		}
		switch outputFormat {
		case config.OutputFormatJSON:
			return printJSON(out, map[string]string{"question": chatQuestion, "answer": answer})
		case config.OutputFormatYAML:
			return printYAML(out, map[string]string{"question": chatQuestion, "answer": answer})
		default:
			fmt.Fprintln(out, answer)
			return nil
		}
	}

	fmt.Fprintln(out, sess.History()[0].Content)
	fmt.Fprintln(out, `Type a question, or "exit" to quit.`)

	scanner := bufio.NewScanner(cmd.InOrStdin())
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		question := strings.TrimSpace(scanner.Text())
		switch question {
		case "":
			continue
		case "exit", "quit":
			return nil
		}

		answer, err := ask(cmd.Context(), cfg, sess, question)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, answer)
		fmt.Fprintln(out)
	}
}

func ask(parent context.Context, cfg *config.CLIConfig, sess *session.Session, question string) (string, error) {
	ctx, cancel := context.WithTimeout(parent, cfg.Timeout)
	defer cancel()
	answer, err := sess.Ask(ctx, question)
	if err != nil {
		return "", fmt.Errorf("asking question: %w", err)
	}
	return answer, nil
}
