package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"curebird/internal/analysis"
	"curebird/internal/app"
	"curebird/internal/config"
	"curebird/internal/extract"
	"curebird/internal/logging"
	"curebird/internal/util"
)

func main() {
	_ = godotenv.Load(".env")
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(config.Load()).ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(cfg config.Config) *cobra.Command {
	var a *app.App
	root := &cobra.Command{
		Use:          "curebird",
		Short:        "Analyze clinical documents and talk to the health assistant",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			log := logging.New(cfg.LogLevel, cfg.LogPretty)
			built, err := app.Build(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			a = built
			return nil
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if a != nil {
				a.Close()
			}
		},
	}
	current := func() *app.App { return a }
	root.AddCommand(analyzeCmd(current))
	root.AddCommand(historyCmd(current))
	root.AddCommand(chatCmd(current))
	root.AddCommand(diseasesCmd(current))
	return root
}

func readDocument(path string) (extract.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return extract.Document{}, fmt.Errorf("read %s: %w", path, err)
	}
	if len(data) == 0 {
		return extract.Document{}, fmt.Errorf("%s: %w", path, util.ErrEmptyDocument)
	}
	return extract.NewDocument(filepath.Base(path), "", data), nil
}

func analyzeCmd(current func() *app.App) *cobra.Command {
	var out, summaryOut string
	cmd := &cobra.Command{
		Use:   "analyze <file>",
		Short: "Run the analysis pipeline on one image or PDF",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := readDocument(args[0])
			if err != nil {
				return err
			}
			res, err := current().Pipeline.Run(cmd.Context(), doc)
			if err != nil {
				return err
			}
			if out != "" {
				if err := util.WriteJSONAtomic(out, res); err != nil {
					return err
				}
			}
			if summaryOut != "" && res.Summary != "" {
				if err := util.WriteTextAtomic(summaryOut, res.Summary); err != nil {
					return err
				}
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(res); err != nil {
				return err
			}
			if res.Status == analysis.StatusUnsupported {
				return fmt.Errorf("%s (%s): %w", doc.Name, doc.MediaType, util.ErrUnsupportedDocument)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&out, "out", "", "write the result JSON to this path")
	cmd.Flags().StringVar(&summaryOut, "summary-out", "", "write the patient summary to this path")
	return cmd
}

func historyCmd(current func() *app.App) *cobra.Command {
	var records []string
	cmd := &cobra.Command{
		Use:   "history [files...]",
		Short: "Summarize record texts and documents into one paragraph",
		RunE: func(cmd *cobra.Command, args []string) error {
			docs := make([]extract.Document, 0, len(args))
			for _, p := range args {
				doc, err := readDocument(p)
				if err != nil {
					return err
				}
				docs = append(docs, doc)
			}
			summary := current().History.SummarizeHistory(cmd.Context(), records, docs)
			_, err := fmt.Fprintln(cmd.OutOrStdout(), summary)
			return err
		},
	}
	cmd.Flags().StringArrayVar(&records, "record", nil, "record text to include (repeatable)")
	return cmd
}

// chatCmd runs one conversation over line-oriented stdin. "/clear" starts
// a fresh history.
func chatCmd(current func() *app.App) *cobra.Command {
	var conversationID, medicalContext string
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Talk to the health assistant on stdin",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if conversationID == "" {
				conversationID = "conv_" + uuid.NewString()
			}
			return runChat(cmd.Context(), current(), conversationID, medicalContext, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&conversationID, "conversation", "", "conversation id to continue")
	cmd.Flags().StringVar(&medicalContext, "context", "", "medical context appended to every turn")
	return cmd
}

func runChat(ctx context.Context, a *app.App, conversationID, medicalContext string, in io.Reader, out io.Writer) error {
	sc := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !sc.Scan() {
			fmt.Fprintln(out)
			return sc.Err()
		}
		line := strings.TrimSpace(sc.Text())
		switch line {
		case "":
			continue
		case "/quit", "/exit":
			return nil
		case "/clear":
			a.Assistant.ClearConversation(conversationID)
			fmt.Fprintln(out, "(conversation cleared)")
			continue
		}
		res := a.Assistant.GenerateResponse(ctx, conversationID, line, medicalContext)
		fmt.Fprintln(out, res.Response)
		if err := ctx.Err(); err != nil {
			return err
		}
	}
}

func diseasesCmd(current func() *app.App) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "diseases",
		Short: "Show the disease trends fed to the assistant",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := current()
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(a.Diseases.View(cmd.Context()))
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), a.Diseases.PromptContext(cmd.Context()))
			return err
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the context view as JSON")
	return cmd
}
