// Package main is a line-oriented terminal player for the mathquest API.
package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"mathquest/pkg/client"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

const defaultServerURL = "http://localhost:8080"

var (
	serverURL string
	statePath string
	noCache   bool
	joinID    string
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "play",
		Short:        "Practise math word problems in the terminal",
		SilenceUsage: true,
		RunE:         runPlay,
	}

	defaultURL := defaultServerURL
	if v := os.Getenv("MATHQUEST_URL"); v != "" {
		defaultURL = v
	}
	rootCmd.Flags().StringVar(&serverURL, "server", defaultURL, "API server base URL (env MATHQUEST_URL)")
	rootCmd.Flags().StringVar(&statePath, "state", client.DefaultCachePath(), "file remembering the session between runs")
	rootCmd.Flags().BoolVar(&noCache, "no-cache", false, "do not remember the session between runs")
	rootCmd.Flags().StringVar(&joinID, "join", "", "join an existing session code on start")
	return rootCmd
}

func runPlay(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	deps := client.Deps{Notifier: printNotifier(out)}
	if !noCache {
		deps.Cache = client.NewCache(statePath)
	}
	p := &player{
		ctx:         ctx,
		out:         out,
		workflow:    client.NewWorkflow(client.New(serverURL, nil), deps),
		interactive: term.IsTerminal(int(os.Stdin.Fd())),
	}

	if err := p.workflow.Restore(ctx); err != nil {
		return fmt.Errorf("restore: %w", err)
	}
	if joinID != "" {
		if _, err := p.workflow.JoinSession(ctx, joinID); err != nil {
			return err
		}
	}
	if _, ok := p.workflow.Session(); !ok {
		if _, err := p.workflow.StartSession(ctx); err != nil {
			return err
		}
	}
	if prob, ok := p.workflow.Problem(); ok {
		fmt.Fprintf(out, "\nUnfinished problem:\n%s\n", prob.ProblemText)
	}
	fmt.Fprintln(out, "Type 'help' for commands.")

	return p.loop(cmd.InOrStdin())
}

type player struct {
	ctx         context.Context
	out         io.Writer
	workflow    *client.Workflow
	interactive bool
}

func (p *player) loop(in io.Reader) error {
	scanner := bufio.NewScanner(in)
	for {
		if p.interactive {
			fmt.Fprint(p.out, "> ")
		}
		if !scanner.Scan() {
			return scanner.Err()
		}
		name, args := parseCommand(scanner.Text())
		if name == "" {
			continue
		}
		if name == "quit" || name == "exit" {
			return nil
		}
		p.run(name, args)
	}
}

func parseCommand(line string) (string, []string) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return "", nil
	}
	return strings.ToLower(fields[0]), fields[1:]
}

// run executes one command. Errors are already reported by the notifier.
func (p *player) run(name string, args []string) {
	switch name {
	case "help", "?":
		fmt.Fprint(p.out, helpText)
	case "new":
		opts := client.ProblemOptions{}
		if len(args) > 0 {
			opts.Difficulty = args[0]
		}
		if len(args) > 1 {
			opts.Topic = args[1]
		}
		if len(args) > 2 {
			opts.ProblemType = args[2]
		}
		prob, err := p.workflow.NewProblem(p.ctx, opts)
		if err != nil {
			return
		}
		fmt.Fprintf(p.out, "\n[%s] %s\n%s\n\n", prob.Difficulty, topicLabel(prob.Topic), prob.ProblemText)
	case "hint":
		hint, err := p.workflow.Hint(p.ctx)
		if err != nil {
			return
		}
		s, _ := p.workflow.Session()
		fmt.Fprintf(p.out, "Hint: %s\n(%d hint credits left)\n", hint, s.HintCredits)
	case "answer", "a":
		if len(args) != 1 {
			fmt.Fprintln(p.out, "usage: answer <number>")
			return
		}
		v, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			fmt.Fprintf(p.out, "%q is not a number\n", args[0])
			return
		}
		res, err := p.workflow.Submit(p.ctx, v)
		if err != nil {
			return
		}
		fmt.Fprintf(p.out, "%s\nCorrect answer: %s\n", res.Feedback, strconv.FormatFloat(res.CorrectAnswer, 'f', -1, 64))
		p.printStats()
	case "history", "h":
		page := 1
		if len(args) > 0 {
			n, err := strconv.Atoi(args[0])
			if err != nil {
				fmt.Fprintln(p.out, "usage: history [page]")
				return
			}
			page = n
		}
		h, err := p.workflow.History(p.ctx, page)
		if err != nil {
			return
		}
		renderHistory(p.out, h, terminalWidth())
	case "stats":
		p.printStats()
	case "join":
		if len(args) != 1 {
			fmt.Fprintln(p.out, "usage: join <code>")
			return
		}
		if _, err := p.workflow.JoinSession(p.ctx, args[0]); err == nil {
			p.printStats()
		}
	case "session":
		if _, err := p.workflow.StartSession(p.ctx); err == nil {
			p.printStats()
		}
	default:
		fmt.Fprintf(p.out, "unknown command %q, type 'help'\n", name)
	}
}

func (p *player) printStats() {
	s, ok := p.workflow.Session()
	if !ok {
		fmt.Fprintln(p.out, "No session.")
		return
	}
	fmt.Fprintf(p.out, "Session %s: %d/%d correct, streak %d, %d hint credits\n",
		s.ID, s.CorrectCount, s.TotalCount, s.Streak, s.HintCredits)
}

func printNotifier(w io.Writer) client.Notifier {
	return client.NotifierFunc(func(kind client.NoticeKind, message string) {
		switch kind {
		case client.NoticeError:
			fmt.Fprintln(w, "! "+message)
		case client.NoticeSuccess:
			fmt.Fprintln(w, "* "+message)
		default:
			fmt.Fprintln(w, message)
		}
	})
}

func topicLabel(topic *string) string {
	if topic == nil {
		return "any topic"
	}
	return *topic
}

const helpText = `Commands:
  new [difficulty] [topic] [operation]  ask for a new problem (easy|medium|hard, random)
  hint                                  show a hint for the current problem (costs a credit)
  answer <number>                       submit an answer
  history [page]                        list past answers
  stats                                 show the scoreboard
  join <code>                           switch to another session
  session                               start a fresh session
  quit                                  leave
`
