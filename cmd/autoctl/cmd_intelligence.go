package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"socialbot-gateway/internal/store"
	"socialbot-gateway/pkg/models"
)

var (
	inferBotID   string
	samplesFile  string
	samples      []string
	waitForReady bool
	memoryStage  string
	searchLimit  int
)

var voiceDNACmd = &cobra.Command{
	Use:   "voice-dna",
	Short: "Infer and review a bot's writing voice",
}

var voiceDNAInferCmd = &cobra.Command{
	Use:   "infer --bot <id> (--sample <text>... | --file samples.txt)",
	Short: "Start a voice DNA analysis from writing samples",
	Long: `Start a voice DNA analysis. Samples come from repeated --sample flags or a
file with one sample per line. With --wait the command follows the analysis
over the realtime channel, falling back to polling, until it is ready or
failed.`,
	RunE: authed(func(ctx context.Context, cmd *cobra.Command, args []string) error {
		all, err := collectSamples()
		if err != nil {
			return err
		}
		p, err := app.Client.AutoInferVoiceDNA(ctx, models.AutoInferRequest{BotID: inferBotID, Samples: all})
		if err != nil {
			return err
		}
		fmt.Printf("Analysis %s %s\n", p.ID, p.Status)
		if !waitForReady {
			return nil
		}
		return followVoiceDNA(ctx, p.ID)
	}),
}

var voiceDNAStatusCmd = &cobra.Command{
	Use:   "status <profile-id>",
	Short: "Show the state of an analysis",
	Args:  cobra.ExactArgs(1),
	RunE: authed(func(ctx context.Context, cmd *cobra.Command, args []string) error {
		p, err := app.Client.VoiceDNAStatus(ctx, args[0])
		if err != nil {
			return err
		}
		printVoiceDNA(p)
		return nil
	}),
}

var voiceDNAReviewCmd = &cobra.Command{
	Use:   "review <profile-id>",
	Short: "Show example replies in the inferred voice",
	Args:  cobra.ExactArgs(1),
	RunE: authed(func(ctx context.Context, cmd *cobra.Command, args []string) error {
		r, err := app.Client.VoiceDNAReview(ctx, args[0])
		if err != nil {
			return err
		}
		printVoiceDNA(r.Profile)
		fmt.Println("\nExample replies:")
		for _, reply := range r.ExampleReplies {
			fmt.Println("  -", reply)
		}
		if r.FeedbackCount > 0 {
			fmt.Printf("\nRated %.1f from %d reviews\n", r.AverageRating, r.FeedbackCount)
		}
		return nil
	}),
}

func followVoiceDNA(ctx context.Context, id string) error {
	w := store.NewVoiceDNAWatcher(app.Client, id, func(p models.VoiceDNAProfile) {
		fmt.Printf("Analysis %s %s\n", p.ID, p.Status)
	})

	subCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		err := app.Client.Subscribe(subCtx, []string{models.ChannelVoiceDNAStatus}, w.HandleEvent)
		if err != nil {
			logrus.Debugf("realtime unavailable, polling only: %v", err)
		}
	}()
	w.Run(ctx)

	select {
	case <-w.Done():
	default:
		return fmt.Errorf("gave up waiting for analysis %s: %w", id, ctx.Err())
	}
	p := w.Profile()
	if p.Status == models.VoiceDNAFailed {
		return fmt.Errorf("analysis failed: %s", p.Error)
	}
	printVoiceDNA(p)
	return nil
}

func collectSamples() ([]string, error) {
	all := append([]string(nil), samples...)
	if samplesFile != "" {
		f, err := os.Open(samplesFile)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		sc := bufio.NewScanner(f)
		for sc.Scan() {
			if line := strings.TrimSpace(sc.Text()); line != "" {
				all = append(all, line)
			}
		}
		if err := sc.Err(); err != nil {
			return nil, fmt.Errorf("read %s: %w", samplesFile, err)
		}
	}
	return all, nil
}

func printVoiceDNA(p models.VoiceDNAProfile) {
	w := newTable()
	fmt.Fprintf(w, "Profile:\t%s (bot %s)\n", p.ID, p.BotID)
	fmt.Fprintf(w, "Status:\t%s\n", p.Status)
	fmt.Fprintf(w, "Samples:\t%d\n", p.SampleCount)
	if fp := p.Fingerprint; fp != nil {
		fmt.Fprintf(w, "Formality:\t%.2f\n", fp.Formality)
		fmt.Fprintf(w, "Emoji rate:\t%.2f\n", fp.EmojiRate)
		fmt.Fprintf(w, "Tone:\t%s\n", strings.Join(fp.ToneTags, ", "))
		fmt.Fprintf(w, "Top words:\t%s\n", strings.Join(fp.TopWords, ", "))
	}
	_ = w.Flush()
}

var memoryCmd = &cobra.Command{
	Use:   "memory",
	Short: "Inspect what a bot remembers about the people it talks to",
}

var memoryStatsCmd = &cobra.Command{
	Use:   "stats <bot-id>",
	Short: "Show relationship stage counts",
	Args:  cobra.ExactArgs(1),
	RunE: authed(func(ctx context.Context, cmd *cobra.Command, args []string) error {
		if err := app.Memory.Load(ctx, args[0]); err != nil {
			return err
		}
		s := app.Memory.Stats()
		w := newTable()
		fmt.Fprintf(w, "Users:\t%d\n", s.TotalUsers)
		fmt.Fprintf(w, "Interactions:\t%d\n", s.TotalInteractions)
		fmt.Fprintf(w, "Active last 7 days:\t%d\n", s.ActiveLast7Days)
		for _, stage := range []models.RelationshipStage{models.StageNew, models.StageCasual, models.StageEngaged, models.StageLoyal, models.StageAdvocate} {
			fmt.Fprintf(w, "  %s\t%d\n", stage, s.ByStage[stage])
		}
		return w.Flush()
	}),
}

var memoryUsersCmd = &cobra.Command{
	Use:   "users <bot-id>",
	Short: "List remembered users",
	Args:  cobra.ExactArgs(1),
	RunE: authed(func(ctx context.Context, cmd *cobra.Command, args []string) error {
		users, _, err := app.Client.MemoryUsers(ctx, models.MemoryListParams{BotID: args[0], Stage: models.RelationshipStage(memoryStage)})
		if err != nil {
			return err
		}
		printMemoryUsers(users)
		return nil
	}),
}

var memorySearchCmd = &cobra.Command{
	Use:   "search <bot-id> <query>",
	Short: "Search usernames, summaries and facts",
	Args:  cobra.ExactArgs(2),
	RunE: authed(func(ctx context.Context, cmd *cobra.Command, args []string) error {
		results, err := app.Client.SearchMemory(ctx, args[0], args[1], searchLimit)
		if err != nil {
			return err
		}
		if len(results) == 0 {
			fmt.Println("No matches.")
			return nil
		}
		w := newTable()
		fmt.Fprintln(w, "USER\tSTAGE\tMATCHED")
		for _, r := range results {
			fmt.Fprintf(w, "%s\t%s\t%s\n", r.User.Username, r.User.Stage, strings.Join(r.Matched, "; "))
		}
		return w.Flush()
	}),
}

func printMemoryUsers(users []models.MemoryUser) {
	w := newTable()
	fmt.Fprintln(w, "USERNAME\tSTAGE\tINTERACTIONS\tLAST SEEN")
	for _, u := range users {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", u.Username, u.Stage, u.InteractionCount, u.LastInteractionAt.Local().Format("2006-01-02"))
	}
	_ = w.Flush()
}

func init() {
	voiceDNAInferCmd.Flags().StringVar(&inferBotID, "bot", "", "Bot id")
	voiceDNAInferCmd.Flags().StringArrayVar(&samples, "sample", nil, "Writing sample (repeatable)")
	voiceDNAInferCmd.Flags().StringVarP(&samplesFile, "file", "f", "", "File with one sample per line")
	voiceDNAInferCmd.Flags().BoolVar(&waitForReady, "wait", false, "Wait for the analysis to finish")
	_ = voiceDNAInferCmd.MarkFlagRequired("bot")
	voiceDNACmd.AddCommand(voiceDNAInferCmd, voiceDNAStatusCmd, voiceDNAReviewCmd)

	memoryUsersCmd.Flags().StringVar(&memoryStage, "stage", "", "Filter by relationship stage")
	memorySearchCmd.Flags().IntVar(&searchLimit, "limit", 20, "Maximum results")
	memoryCmd.AddCommand(memoryStatsCmd, memoryUsersCmd, memorySearchCmd)
}
