package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"socialbot-gateway/internal/automation"
	"socialbot-gateway/pkg/models"
)

var (
	automationStatus string
	automationSearch string
	draftFile        string
	saveAsDraft      bool
	testText         string

	addKeywords    []string
	removeKeywords []string
	aiOn           []string
	aiOff          []string
)

var automationsCmd = &cobra.Command{
	Use:     "automations",
	Aliases: []string{"auto"},
	Short:   "List, create and toggle automations",
}

var automationsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List automations",
	RunE: authed(func(ctx context.Context, cmd *cobra.Command, args []string) error {
		s := app.Automations
		if err := s.SetFilters(ctx, models.AutomationStatus(automationStatus), automationSearch); err != nil {
			return err
		}
		items := s.Items()
		if len(items) == 0 {
			fmt.Println("No automations found.")
			return nil
		}
		w := newTable()
		fmt.Fprintln(w, "ID\tNAME\tPLATFORM\tTRIGGER\tSTATUS\tCREDITS")
		for _, a := range items {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d\n", a.ID, a.Name, a.Platform, a.Trigger.TriggerType, a.Status, a.EstimatedCredits)
		}
		if p := s.Pagination(); p != nil {
			fmt.Fprintf(w, "\npage %d of %d (%d total)\n", p.Page, p.TotalPages, p.Total)
		}
		return w.Flush()
	}),
}

var automationsGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show one automation",
	Args:  cobra.ExactArgs(1),
	RunE: authed(func(ctx context.Context, cmd *cobra.Command, args []string) error {
		a, err := app.Client.GetAutomation(ctx, args[0])
		if err != nil {
			return err
		}
		printAutomation(a)
		return nil
	}),
}

var automationsCreateCmd = &cobra.Command{
	Use:   "create -f draft.yaml",
	Short: "Create an automation from a YAML draft",
	Long: `Create an automation from a YAML draft. The draft is replayed through the
same wizard steps as the dashboard, so it is rejected at the first step the
wizard would not let you continue from.`,
	RunE: authed(func(ctx context.Context, cmd *cobra.Command, args []string) error {
		req, err := draftRequest()
		if err != nil {
			return err
		}
		a, err := app.Client.CreateAutomation(ctx, req)
		if err != nil {
			return err
		}
		fmt.Printf("Created %s (%s), %d credits per run\n", a.ID, a.Status, a.EstimatedCredits)
		return nil
	}),
}

var automationsToggleCmd = &cobra.Command{
	Use:   "toggle <id>",
	Short: "Switch an automation between active and inactive",
	Args:  cobra.ExactArgs(1),
	RunE: authed(func(ctx context.Context, cmd *cobra.Command, args []string) error {
		if err := app.Automations.Load(ctx); err != nil {
			return err
		}
		if err := app.Automations.Toggle(ctx, args[0]); err != nil {
			return err
		}
		for _, a := range app.Automations.Items() {
			if a.ID == args[0] {
				fmt.Printf("%s is now %s\n", a.ID, a.Status)
			}
		}
		return nil
	}),
}

var automationsEditCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Change keywords and AI replies of an automation",
	Args:  cobra.ExactArgs(1),
	RunE: authed(func(ctx context.Context, cmd *cobra.Command, args []string) error {
		a, err := app.Client.GetAutomation(ctx, args[0])
		if err != nil {
			return err
		}
		credits, err := creditContext(ctx, a.BotID)
		if err != nil {
			return err
		}
		b := automation.NewBuilderFromAutomation(a, credits)
		before := b.CreditCost
		if err := applyEdits(b); err != nil {
			return err
		}
		if !b.IsConfigured() {
			return fmt.Errorf("automation %s would be left with missing values", a.ID)
		}
		conds, actions := b.Parts()
		updated, err := app.Client.UpdateAutomation(ctx, a.ID, models.UpdateAutomationRequest{Conditions: &conds, Actions: &actions})
		if err != nil {
			return err
		}
		fmt.Printf("Updated %s, credits per run %d -> %d\n", updated.ID, before, updated.EstimatedCredits)
		return nil
	}),
}

var automationsCloneCmd = &cobra.Command{
	Use:   "clone <id>",
	Short: "Create a copy of an automation",
	Args:  cobra.ExactArgs(1),
	RunE: authed(func(ctx context.Context, cmd *cobra.Command, args []string) error {
		a, err := app.Client.GetAutomation(ctx, args[0])
		if err != nil {
			return err
		}
		req, ok := automation.NewEditWizard(a).HandleComplete(saveAsDraft)
		if !ok {
			return fmt.Errorf("automation %s is missing a platform, account or trigger", a.ID)
		}
		req.Name = a.Name + " (copy)"
		created, err := app.Client.CreateAutomation(ctx, req)
		if err != nil {
			return err
		}
		fmt.Printf("Created %s (%s) from %s\n", created.ID, created.Status, a.ID)
		return nil
	}),
}

var automationsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete an automation",
	Args:  cobra.ExactArgs(1),
	RunE: authed(func(ctx context.Context, cmd *cobra.Command, args []string) error {
		if err := app.Client.DeleteAutomation(ctx, args[0]); err != nil {
			return err
		}
		fmt.Println("Deleted", args[0])
		return nil
	}),
}

var automationsTestCmd = &cobra.Command{
	Use:   "test <id> --text <message>",
	Short: "Check whether a message would pass an automation's keyword conditions",
	Args:  cobra.ExactArgs(1),
	RunE: authed(func(ctx context.Context, cmd *cobra.Command, args []string) error {
		a, err := app.Client.GetAutomation(ctx, args[0])
		if err != nil {
			return err
		}
		if automation.MatchConditions(testText, a.Conditions) {
			fmt.Println("MATCH: the automation would run")
		} else {
			fmt.Println("NO MATCH: the automation would skip this message")
		}
		return nil
	}),
}

var automationsEstimateCmd = &cobra.Command{
	Use:   "estimate -f draft.yaml",
	Short: "Estimate the credits a draft would cost per run",
	RunE: authed(func(ctx context.Context, cmd *cobra.Command, args []string) error {
		req, err := draftRequest()
		if err != nil {
			return err
		}
		est, err := app.Client.EstimateCredits(ctx, models.CreditEstimateRequest{BotID: req.BotID, Actions: req.Actions})
		if err != nil {
			return err
		}
		parts := make([]string, len(est.PerAction))
		for i, n := range est.PerAction {
			parts[i] = fmt.Sprint(n)
		}
		fmt.Printf("%d credits per run (%s) [%s]\n", est.Total, est.LLMMode, strings.Join(parts, " + "))

		if err := app.Credits.Load(ctx, 30); err == nil {
			bal := app.Credits.Balance().Balance
			if est.Total > 0 {
				fmt.Printf("Current balance %d covers about %d runs\n", bal, bal/est.Total)
			}
		}
		return nil
	}),
}

func init() {
	automationsListCmd.Flags().StringVar(&automationStatus, "status", "", "Filter by status (active, inactive, paused, draft)")
	automationsListCmd.Flags().StringVar(&automationSearch, "search", "", "Filter by name")
	for _, c := range []*cobra.Command{automationsCreateCmd, automationsEstimateCmd} {
		c.Flags().StringVarP(&draftFile, "file", "f", "", "YAML draft file")
		_ = c.MarkFlagRequired("file")
	}
	automationsCreateCmd.Flags().BoolVar(&saveAsDraft, "draft", false, "Save as draft instead of activating")
	automationsEditCmd.Flags().StringSliceVar(&addKeywords, "add-keyword", nil, "Keyword to add to the first condition")
	automationsEditCmd.Flags().StringSliceVar(&removeKeywords, "remove-keyword", nil, "Keyword to remove from every condition")
	automationsEditCmd.Flags().StringSliceVar(&aiOn, "ai-on", nil, "Action id to switch to AI replies")
	automationsEditCmd.Flags().StringSliceVar(&aiOff, "ai-off", nil, "Action id to switch to manual replies")
	automationsCloneCmd.Flags().BoolVar(&saveAsDraft, "draft", false, "Save the copy as draft instead of activating")
	automationsTestCmd.Flags().StringVar(&testText, "text", "", "Message text to test")
	_ = automationsTestCmd.MarkFlagRequired("text")

	automationsCmd.AddCommand(automationsListCmd, automationsGetCmd, automationsCreateCmd,
		automationsToggleCmd, automationsEditCmd, automationsCloneCmd, automationsDeleteCmd, automationsTestCmd, automationsEstimateCmd)
}

// applyEdits applies the edit flags to a builder loaded from the server.
func applyEdits(b *automation.Builder) error {
	for _, kw := range removeKeywords {
		for i := range b.Conditions.Conditions {
			automation.RemoveKeyword(&b.Conditions.Conditions[i], kw)
		}
	}
	if len(addKeywords) > 0 {
		if len(b.Conditions.Conditions) == 0 {
			b.Conditions.AddCondition()
		}
		b.Conditions.Enabled = true
		for _, kw := range addKeywords {
			automation.AddKeyword(&b.Conditions.Conditions[0], kw)
		}
	}
	for _, id := range aiOn {
		if err := b.SetAIReply(id, true); err != nil {
			return fmt.Errorf("action %s: %w", id, err)
		}
	}
	for _, id := range aiOff {
		if err := b.SetAIReply(id, false); err != nil {
			return fmt.Errorf("action %s: %w", id, err)
		}
	}
	return nil
}

// creditContext prices actions with the caller's LLM mode and whether the
// bot has knowledge sources.
func creditContext(ctx context.Context, botID string) (automation.CreditContext, error) {
	if err := app.Credits.Load(ctx, 30); err != nil {
		return automation.CreditContext{}, err
	}
	hasKnowledge := false
	if botID != "" {
		sources, err := app.Client.ListKnowledgeSources(ctx, botID)
		if err != nil {
			return automation.CreditContext{}, err
		}
		hasKnowledge = len(sources) > 0
	}
	return app.Credits.CreditContext(hasKnowledge), nil
}

func draftRequest() (models.CreateAutomationRequest, error) {
	f, err := os.Open(draftFile)
	if err != nil {
		return models.CreateAutomationRequest{}, err
	}
	defer f.Close()

	w, err := automation.LoadDraft(f)
	if err != nil {
		return models.CreateAutomationRequest{}, err
	}
	req, ok := w.HandleComplete(saveAsDraft)
	if !ok {
		return models.CreateAutomationRequest{}, fmt.Errorf("draft %s is missing a platform, account or trigger", draftFile)
	}
	return req, nil
}

func printAutomation(a models.Automation) {
	w := newTable()
	fmt.Fprintf(w, "ID:\t%s\n", a.ID)
	fmt.Fprintf(w, "Name:\t%s\n", a.Name)
	fmt.Fprintf(w, "Status:\t%s\n", a.Status)
	fmt.Fprintf(w, "Platform:\t%s (%s)\n", a.Platform, a.SocialAccountID)
	fmt.Fprintf(w, "Trigger:\t%s / %s\n", a.Trigger.TriggerType, a.Trigger.TriggerScope)
	for _, c := range a.Conditions {
		fmt.Fprintf(w, "Condition:\t%s %s %q\n", c.ConditionOperator, c.KeywordMode, c.ConditionValue)
	}
	for _, act := range a.Actions {
		fmt.Fprintf(w, "Action %d:\t%s (delay %ds)\n", act.ExecutionOrder, act.ActionType, act.DelaySeconds)
	}
	fmt.Fprintf(w, "Credits:\t%d per run\n", a.EstimatedCredits)
	_ = w.Flush()
}
