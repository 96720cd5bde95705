package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/greenmice/sheetsend/internal/app"
	"github.com/greenmice/sheetsend/internal/template"
)

var (
	templateName        string
	templateDescription string
	templateSubject     string
	templateHTMLFile    string
	templateDataJSON    string
	templateOutputDir   string
)

var templateCmd = &cobra.Command{
	Use:   "template",
	Short: "Template management commands",
}

var templateListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all templates",
	RunE:  runTemplateList,
}

var templateCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a new template",
	RunE:  runTemplateCreate,
}

var templateShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Show template details",
	Args:  cobra.ExactArgs(1),
	RunE:  runTemplateShow,
}

var templatePreviewCmd = &cobra.Command{
	Use:   "preview <name>",
	Short: "Preview template with test data",
	Args:  cobra.ExactArgs(1),
	RunE:  runTemplatePreview,
}

var templateUpdateCmd = &cobra.Command{
	Use:   "update <name>",
	Short: "Update an existing template",
	Args:  cobra.ExactArgs(1),
	RunE:  runTemplateUpdate,
}

var templateDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a template",
	Args:  cobra.ExactArgs(1),
	RunE:  runTemplateDelete,
}

var templateExportCmd = &cobra.Command{
	Use:   "export <name>",
	Short: "Export template to a file",
	Args:  cobra.ExactArgs(1),
	RunE:  runTemplateExport,
}

var templateImportCmd = &cobra.Command{
	Use:   "import",
	Short: "Import template from files, replacing any existing version",
	RunE:  runTemplateImport,
}

func init() {
	// Flags for create
	templateCreateCmd.Flags().StringVar(&templateName, "name", "", "Template name (required)")
	templateCreateCmd.Flags().StringVar(&templateDescription, "description", "", "Template description")
	templateCreateCmd.Flags().StringVar(&templateSubject, "subject", "", "Subject template (required)")
	templateCreateCmd.Flags().StringVar(&templateHTMLFile, "html", "", "HTML template file (required)")
	templateCreateCmd.MarkFlagRequired("name")
	templateCreateCmd.MarkFlagRequired("subject")
	templateCreateCmd.MarkFlagRequired("html")

	// Flags for update
	templateUpdateCmd.Flags().StringVar(&templateDescription, "description", "", "Template description")
	templateUpdateCmd.Flags().StringVar(&templateSubject, "subject", "", "Subject template")
	templateUpdateCmd.Flags().StringVar(&templateHTMLFile, "html", "", "HTML template file")

	// Flags for preview
	templatePreviewCmd.Flags().StringVar(&templateDataJSON, "data", "{}", "JSON object with contact fields")

	// Flags for export
	templateExportCmd.Flags().StringVar(&templateOutputDir, "output", "./", "Output directory")

	// Flags for import
	templateImportCmd.Flags().StringVar(&templateName, "name", "", "Template name (required)")
	templateImportCmd.Flags().StringVar(&templateDescription, "description", "", "Template description")
	templateImportCmd.Flags().StringVar(&templateSubject, "subject", "", "Subject template (required)")
	templateImportCmd.Flags().StringVar(&templateHTMLFile, "html", "", "HTML template file (required)")
	templateImportCmd.MarkFlagRequired("name")
	templateImportCmd.MarkFlagRequired("subject")
	templateImportCmd.MarkFlagRequired("html")

	templateCmd.AddCommand(
		templateListCmd,
		templateCreateCmd,
		templateShowCmd,
		templatePreviewCmd,
		templateUpdateCmd,
		templateDeleteCmd,
		templateExportCmd,
		templateImportCmd,
	)
	rootCmd.AddCommand(templateCmd)
}

func getTemplate(a *app.App, cmd *cobra.Command, name string) (*template.Template, error) {
	tmpl, err := a.Templates.GetByName(cmd.Context(), name)
	if err != nil {
		return nil, fmt.Errorf("failed to get template: %w", err)
	}
	if tmpl == nil {
		return nil, fmt.Errorf("template not found: %s", name)
	}
	return tmpl, nil
}

func runTemplateList(cmd *cobra.Command, args []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	defer a.Close()

	templates, err := a.Templates.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list templates: %w", err)
	}

	if len(templates) == 0 {
		fmt.Println("No templates found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tSUBJECT\tVERSION\tUPDATED")
	for _, tmpl := range templates {
		subject := tmpl.Subject
		if len(subject) > 40 {
			subject = subject[:37] + "..."
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\n",
			tmpl.Name,
			subject,
			tmpl.Version,
			tmpl.UpdatedAt.Format("2006-01-02 15:04"),
		)
	}
	w.Flush()

	fmt.Printf("\nTotal: %d templates\n", len(templates))
	return nil
}

func runTemplateCreate(cmd *cobra.Command, args []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	defer a.Close()

	data, err := os.ReadFile(templateHTMLFile)
	if err != nil {
		return fmt.Errorf("failed to read HTML file: %w", err)
	}

	tmpl := &template.Template{
		Name:        templateName,
		Description: templateDescription,
		Subject:     templateSubject,
		HTML:        string(data),
	}

	if err := a.Templates.Create(cmd.Context(), tmpl); err != nil {
		return fmt.Errorf("failed to create template: %w", err)
	}

	fmt.Printf("Template created successfully\n")
	fmt.Printf("  Name:   %s\n", tmpl.Name)
	if fields := tmpl.Placeholders(); len(fields) > 0 {
		fmt.Printf("  Fields: %s\n", strings.Join(fields, ", "))
	}
	return nil
}

func runTemplateShow(cmd *cobra.Command, args []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	defer a.Close()

	tmpl, err := getTemplate(a, cmd, args[0])
	if err != nil {
		return err
	}

	fmt.Printf("Name:        %s\n", tmpl.Name)
	fmt.Printf("Description: %s\n", tmpl.Description)
	fmt.Printf("Version:     %d\n", tmpl.Version)
	fmt.Printf("Created:     %s\n", tmpl.CreatedAt.Format("2006-01-02 15:04:05"))
	fmt.Printf("Updated:     %s\n", tmpl.UpdatedAt.Format("2006-01-02 15:04:05"))
	fmt.Printf("\nSubject:\n  %s\n", tmpl.Subject)

	fmt.Printf("\nHTML:\n")
	lines := strings.Split(tmpl.HTML, "\n")
	if len(lines) > 20 {
		for _, line := range lines[:20] {
			fmt.Printf("  %s\n", line)
		}
		fmt.Printf("  ... (%d more lines)\n", len(lines)-20)
	} else {
		for _, line := range lines {
			fmt.Printf("  %s\n", line)
		}
	}

	if fields := tmpl.Placeholders(); len(fields) > 0 {
		fmt.Printf("\nFields:\n")
		for _, f := range fields {
			fmt.Printf("  - %s\n", f)
		}
	}
	return nil
}

func runTemplatePreview(cmd *cobra.Command, args []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	defer a.Close()

	tmpl, err := getTemplate(a, cmd, args[0])
	if err != nil {
		return err
	}

	var rec map[string]string
	if err := json.Unmarshal([]byte(templateDataJSON), &rec); err != nil {
		return fmt.Errorf("invalid --data JSON: %w", err)
	}

	subject, err := template.Render(tmpl.Subject, rec)
	if err != nil {
		return fmt.Errorf("subject: %w", err)
	}
	body, err := template.Render(tmpl.HTML, rec)
	if err != nil {
		return fmt.Errorf("body: %w", err)
	}

	fmt.Printf("Subject: %s\n", subject)
	fmt.Printf("\n%s\n", body)
	return nil
}

func runTemplateUpdate(cmd *cobra.Command, args []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	defer a.Close()

	tmpl, err := getTemplate(a, cmd, args[0])
	if err != nil {
		return err
	}

	if templateSubject != "" {
		tmpl.Subject = templateSubject
	}
	if templateDescription != "" {
		tmpl.Description = templateDescription
	}
	if templateHTMLFile != "" {
		data, err := os.ReadFile(templateHTMLFile)
		if err != nil {
			return fmt.Errorf("failed to read HTML file: %w", err)
		}
		tmpl.HTML = string(data)
	}

	if err := a.Templates.Update(cmd.Context(), tmpl); err != nil {
		return fmt.Errorf("failed to update template: %w", err)
	}

	fmt.Printf("Template updated (version %d)\n", tmpl.Version)
	return nil
}

func runTemplateDelete(cmd *cobra.Command, args []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.Templates.Delete(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("failed to delete template: %w", err)
	}

	fmt.Printf("Template deleted: %s\n", args[0])
	return nil
}

func runTemplateExport(cmd *cobra.Command, args []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	defer a.Close()

	tmpl, err := getTemplate(a, cmd, args[0])
	if err != nil {
		return err
	}

	htmlPath := filepath.Join(templateOutputDir, tmpl.Name+".html")
	if err := os.WriteFile(htmlPath, []byte(tmpl.HTML), 0644); err != nil {
		return fmt.Errorf("failed to write HTML file: %w", err)
	}
	subjectPath := filepath.Join(templateOutputDir, tmpl.Name+".subject.txt")
	if err := os.WriteFile(subjectPath, []byte(tmpl.Subject), 0644); err != nil {
		return fmt.Errorf("failed to write subject file: %w", err)
	}

	fmt.Printf("Exported:\n  %s\n  %s\n", htmlPath, subjectPath)
	return nil
}

func runTemplateImport(cmd *cobra.Command, args []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	defer a.Close()

	data, err := os.ReadFile(templateHTMLFile)
	if err != nil {
		return fmt.Errorf("failed to read HTML file: %w", err)
	}

	tmpl := &template.Template{
		Name:        templateName,
		Description: templateDescription,
		Subject:     templateSubject,
		HTML:        string(data),
	}

	ctx := cmd.Context()
	existing, err := a.Templates.GetByName(ctx, tmpl.Name)
	if err != nil {
		return fmt.Errorf("failed to check template: %w", err)
	}

	if existing == nil {
		if err := a.Templates.Create(ctx, tmpl); err != nil {
			return fmt.Errorf("failed to import template: %w", err)
		}
		fmt.Printf("Template imported: %s\n", tmpl.Name)
		return nil
	}

	if err := a.Templates.Update(ctx, tmpl); err != nil {
		return fmt.Errorf("failed to import template: %w", err)
	}
	fmt.Printf("Template imported: %s (version %d)\n", tmpl.Name, tmpl.Version)
	return nil
}
