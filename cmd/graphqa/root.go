package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"

	"github.com/vanshika/graphqa/internal/config"
	"github.com/vanshika/graphqa/internal/logging"
	"github.com/vanshika/graphqa/internal/pipeline"
)

const defaultEnvFile = ".env"

// app holds the process streams and the state shared by every subcommand.
type app struct {
	in     io.Reader
	out    io.Writer
	errOut io.Writer

	credentialsFile string
	envFile         string

	cfg    config.Config
	logger *slog.Logger

	// newPipeline is replaced in tests.
	newPipeline func(cfg config.Config, creds config.Source, logger *slog.Logger) (*pipeline.Pipeline, error)
}

func newApp(in io.Reader, out, errOut io.Writer) *app {
	return &app{in: in, out: out, errOut: errOut, newPipeline: buildPipeline}
}

func (a *app) command() *cobra.Command {
	root := &cobra.Command{
		Use:   "graphqa [question...]",
		Short: "Answer content sharing questions from a Neo4j knowledge graph",
		Long: `graphqa turns a natural-language question into a Cypher query, runs it
against Neo4j and asks a language model to phrase the answer.

Without arguments the question is read from standard input.`,
		Args:              cobra.ArbitraryArgs,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error { return a.setup() },
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.ask(cmd.Context(), args)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.credentialsFile, "credentials", "", "JSON or YAML file holding NEO4J_URI, NEO4J_USERNAME and NEO4J_PASSWORD")
	flags.StringVar(&a.envFile, "env-file", defaultEnvFile, "dotenv file loaded before reading the environment")

	root.AddCommand(a.seedCommand())
	return root
}

// setup loads the environment file and configuration and builds the logger.
func (a *app) setup() error {
	if err := godotenv.Load(a.envFile); err != nil {
		if !(a.envFile == defaultEnvFile && errors.Is(err, os.ErrNotExist)) {
			return fmt.Errorf("load env file %s: %w", a.envFile, err)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if a.credentialsFile != "" {
		cfg.Graph.CredentialsFile = a.credentialsFile
	}

	a.cfg = cfg
	a.logger = logging.New(cfg.Logging, a.errOut).With("component", "graphqa", "run_id", uuid.NewString())
	return nil
}

func (a *app) log() *slog.Logger {
	if a.logger != nil {
		return a.logger
	}
	return slog.New(slog.NewTextHandler(a.errOut, nil))
}

func (a *app) ask(ctx context.Context, args []string) error {
	question := strings.Join(args, " ")
	if len(args) == 0 {
		var err error
		if question, err = a.readQuestion(); err != nil {
			return err
		}
	}

	p, err := a.newPipeline(a.cfg, a.cfg.CredentialSource(), a.logger)
	if err != nil {
		return err
	}

	a.logger.Debug("answering question", "question", question)
	_, err = p.Ask(ctx, question, a.out)
	return err
}

func (a *app) readQuestion() (string, error) {
	if _, err := fmt.Fprint(a.out, "> "); err != nil {
		return "", err
	}
	line, err := bufio.NewReader(a.in).ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("read question: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func buildPipeline(cfg config.Config, creds config.Source, logger *slog.Logger) (*pipeline.Pipeline, error) {
	tmpl, err := cfg.AnswerTemplate()
	if err != nil {
		return nil, err
	}
	return &pipeline.Pipeline{
		Query:  pipeline.NewQueryStage(cfg, creds, logger),
		Answer: pipeline.NewAnswerStage(pipeline.ModelFactoryFor(cfg.LLM), tmpl, cfg.Answer.Platform),
		Tracer: otel.Tracer("github.com/vanshika/graphqa"),
	}, nil
}
