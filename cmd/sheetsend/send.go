package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/greenmice/sheetsend/internal/app"
	"github.com/greenmice/sheetsend/internal/campaign"
)

var (
	sendCSVFile      string
	sendSubject      string
	sendTemplateName string
	sendHTMLFile     string
	sendLabel        string
)

var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Send the initial campaign",
	Long: `Send one personalized message per contact row, wait for the mailbox
to index the sent mail, resolve each message's permanent Message-ID, and
write the delivery log back to the table.`,
	RunE: runSend,
}

var remindCmd = &cobra.Command{
	Use:   "remind",
	Short: "Send threaded reminder replies",
	Long: `Send a follow-up reply in the original thread to every row whose
initial send was logged with a Message-ID. Rows without one are skipped.`,
	RunE: runRemind,
}

func campaignFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&sendCSVFile, "csv", "", "use a local CSV file instead of the configured spreadsheet")
	cmd.Flags().StringVar(&sendSubject, "subject", "", "subject template")
	cmd.Flags().StringVar(&sendTemplateName, "template", "", "stored template name")
	cmd.Flags().StringVar(&sendHTMLFile, "html", "", "HTML body template file")
	cmd.Flags().StringVar(&sendLabel, "label", "", "Gmail label for sent messages (overrides config)")
}

func init() {
	campaignFlags(sendCmd)
	campaignFlags(remindCmd)
	rootCmd.AddCommand(sendCmd, remindCmd)
}

// campaignContent resolves subject and body from the flags: a stored
// template by name, or --subject plus an HTML file.
func campaignContent(ctx context.Context, a *app.App) (subject, html string, err error) {
	if sendTemplateName != "" {
		tmpl, err := a.Templates.GetByName(ctx, sendTemplateName)
		if err != nil {
			return "", "", fmt.Errorf("failed to load template: %w", err)
		}
		if tmpl == nil {
			return "", "", fmt.Errorf("template not found: %s", sendTemplateName)
		}
		subject, html = tmpl.Subject, tmpl.HTML
		if sendSubject != "" {
			subject = sendSubject
		}
		return subject, html, nil
	}

	if sendHTMLFile == "" {
		return "", "", fmt.Errorf("either --template or --html is required")
	}
	data, err := os.ReadFile(sendHTMLFile)
	if err != nil {
		return "", "", fmt.Errorf("failed to read HTML file: %w", err)
	}
	return sendSubject, string(data), nil
}

func runCampaign(cmd *cobra.Command, mode campaign.Mode) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()
	subject, html, err := campaignContent(ctx, a)
	if err != nil {
		return err
	}
	if mode == campaign.ModeInitial && subject == "" {
		return fmt.Errorf("--subject is required (or a stored template with one)")
	}

	if err := a.ConnectGoogle(ctx); err != nil {
		return err
	}
	a.StartMetrics()

	store, err := a.TableStore(ctx, sendCSVFile)
	if err != nil {
		return err
	}
	runner, err := a.Runner(store)
	if err != nil {
		return err
	}

	label := sendLabel
	if label == "" {
		label = a.Config.Campaign.Label
	}
	labelID, err := a.ResolveLabelID(ctx, label)
	if err != nil {
		return fmt.Errorf("failed to resolve label %q: %w", label, err)
	}

	req := campaign.Request{
		Mode:    mode,
		Subject: subject,
		HTML:    html,
		LabelID: labelID,
	}

	var sum *campaign.Summary
	if mode == campaign.ModeInitial {
		sum, err = runner.RunInitial(ctx, req)
	} else {
		sum, err = runner.RunReminder(ctx, req)
	}
	if err != nil {
		return err
	}

	printSummary(mode, sum)
	return nil
}

func printSummary(mode campaign.Mode, sum *campaign.Summary) {
	fmt.Printf("Campaign finished (%d rows)\n", sum.Rows)
	if mode == campaign.ModeInitial {
		fmt.Printf("  Sent:       %d\n", sum.Sent)
		fmt.Printf("  Failed:     %d\n", sum.Failed)
		fmt.Printf("  Skipped:    %d\n", sum.Skipped)
		fmt.Printf("  Resolved:   %d\n", sum.Resolved)
		if sum.Unresolved > 0 {
			fmt.Printf("  Unresolved: %d (run 'sheetsend reconcile' later)\n", sum.Unresolved)
		}
		return
	}
	fmt.Printf("  Replies: %d\n", sum.Replies)
	fmt.Printf("  Failed:  %d\n", sum.Failed)
	fmt.Printf("  Skipped: %d\n", sum.Skipped)
}

func runSend(cmd *cobra.Command, args []string) error {
	return runCampaign(cmd, campaign.ModeInitial)
}

func runRemind(cmd *cobra.Command, args []string) error {
	return runCampaign(cmd, campaign.ModeReminder)
}
