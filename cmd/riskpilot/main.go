package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pmtooling/riskpilot/internal/advisor"
	"github.com/pmtooling/riskpilot/internal/config"
	"github.com/pmtooling/riskpilot/internal/document"
	"github.com/pmtooling/riskpilot/internal/lessons"
	"github.com/pmtooling/riskpilot/internal/llm"
	"github.com/pmtooling/riskpilot/internal/plan"
	"github.com/pmtooling/riskpilot/internal/register"
	"github.com/pmtooling/riskpilot/internal/risk"
	"github.com/pmtooling/riskpilot/internal/server"
)

var version = "dev"

var (
	verbose    bool
	configPath string
	cfg        *config.Config
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "riskpilot",
	Short:   "Project risk analysis toolkit",
	Long:    "RiskPilot analyzes risk registers, generates work breakdown structures from narratives, derives risks from WBS phases, and extracts lessons learned from assurance documents.",
	Version: version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if verbose {
			log.SetFlags(log.LstdFlags | log.Lshortfile)
		} else {
			log.SetFlags(log.LstdFlags)
		}

		// Skip config loading for init and version
		if cmd.Name() == "init" || cmd.Name() == "version" {
			return nil
		}

		path, err := config.ResolveConfigPath(configPath)
		if err != nil {
			if configPath != "" {
				return err
			}
			// No config file anywhere; run on built-in defaults.
			cfg = config.Default()
			return nil
		}
		cfg, err = config.Load(path)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(wbsCmd)
	rootCmd.AddCommand(deriveCmd)
	rootCmd.AddCommand(workflowCmd)
	rootCmd.AddCommand(lessonsCmd)
	rootCmd.AddCommand(serveCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("riskpilot", version)
	},
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration in ~/.config/riskpilot/",
	RunE: func(cmd *cobra.Command, args []string) error {
		target := filepath.Join(config.ConfigDir(), "config.yaml")
		if _, err := os.Stat(target); err == nil {
			fmt.Printf("Config already exists: %s\n", target)
			return nil
		}

		if err := os.MkdirAll(config.ConfigDir(), 0o755); err != nil {
			return fmt.Errorf("creating config directory: %w", err)
		}

		if err := os.WriteFile(target, config.DefaultConfigYAML, 0o644); err != nil {
			return fmt.Errorf("writing config: %w", err)
		}

		fmt.Printf("Created config: %s\n", target)
		fmt.Println("Edit it to configure the LLM provider, or leave demo_mode on for offline use.")
		return nil
	},
}

// --- analyze command ---

var (
	heuristicsPath string
	exportPath     string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <register.csv>",
	Short: "Analyze a risk register CSV for quality",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		risks, err := loadRegister(args[0])
		if err != nil {
			return err
		}

		heuristics := risk.DefaultHeuristics()
		if heuristicsPath != "" {
			custom, err := risk.LoadHeuristics(heuristicsPath)
			if err != nil {
				return fmt.Errorf("loading heuristics: %w", err)
			}
			heuristics = append(heuristics, custom...)
			fmt.Printf("Loaded %d custom heuristics from %s\n", len(custom), heuristicsPath)
		}

		result, meta, err := newAdvisor().AnalyzeRisks(context.Background(), risks, heuristics)
		if err != nil {
			return err
		}

		printAnalysis(result, meta)

		if exportPath != "" {
			if err := writeExport(exportPath, register.ExportRisks(result.Risks)); err != nil {
				return err
			}
		}
		return nil
	},
}

func init() {
	analyzeCmd.Flags().StringVar(&heuristicsPath, "heuristics", "", "YAML file with additional heuristics")
	analyzeCmd.Flags().StringVar(&exportPath, "export", "", "Write the enriched register CSV to this path (or directory)")
}

// --- wbs command ---

var (
	narrativeFile string
	templateFile  string
	projectName   string
	wbsExportPath string
)

var wbsCmd = &cobra.Command{
	Use:   "wbs",
	Short: "Generate a work breakdown structure from a project narrative",
	RunE: func(cmd *cobra.Command, args []string) error {
		narrative, err := readNarrative()
		if err != nil {
			return err
		}

		templateText := ""
		if templateFile != "" {
			data, err := os.ReadFile(templateFile)
			if err != nil {
				return fmt.Errorf("reading template: %w", err)
			}
			templateText = string(data)
		}

		phases, meta, err := newAdvisor().GenerateWBS(context.Background(), narrative, templateText)
		if err != nil {
			return err
		}

		printWBS(phases, meta)

		if wbsExportPath != "" {
			if err := writeExport(wbsExportPath, register.ExportWBS(phases)); err != nil {
				return err
			}
		}
		return nil
	},
}

func init() {
	wbsCmd.Flags().StringVar(&narrativeFile, "narrative-file", "", "File containing the project narrative")
	wbsCmd.Flags().StringVar(&templateFile, "template-file", "", "Optional WBS template file passed as prompt guidance")
	wbsCmd.Flags().StringVar(&projectName, "project", "", "Project name")
	wbsCmd.Flags().StringVar(&wbsExportPath, "export", "", "Write the WBS CSV to this path (or directory)")
}

// --- derive command ---

var deriveCmd = &cobra.Command{
	Use:   "derive",
	Short: "Generate a WBS from a narrative and derive a starter risk register",
	RunE: func(cmd *cobra.Command, args []string) error {
		narrative, err := readNarrative()
		if err != nil {
			return err
		}

		adv := newAdvisor()
		ctx := context.Background()

		phases, wbsMeta, err := adv.GenerateWBS(ctx, narrative, "")
		if err != nil {
			return err
		}
		printWBS(phases, wbsMeta)

		risks, meta, err := adv.IdentifyRisksFromWBS(ctx, phases, projectName)
		if err != nil {
			return err
		}
		printRisks(risks, meta)
		return nil
	},
}

func init() {
	deriveCmd.Flags().StringVar(&narrativeFile, "narrative-file", "", "File containing the project narrative")
	deriveCmd.Flags().StringVar(&projectName, "project", "", "Project name")
}

// --- workflow command ---

var workflowExportPath string

var workflowCmd = &cobra.Command{
	Use:   "workflow",
	Short: "Run narrative -> WBS -> risk identification -> quality analysis",
	RunE: func(cmd *cobra.Command, args []string) error {
		narrative, err := readNarrative()
		if err != nil {
			return err
		}

		adv := newAdvisor()
		ctx := context.Background()

		fmt.Println("Step 1/3: Generating work breakdown structure...")
		phases, wbsMeta, err := adv.GenerateWBS(ctx, narrative, "")
		if err != nil {
			return err
		}
		printWBS(phases, wbsMeta)

		fmt.Println("\nStep 2/3: Identifying risks...")
		risks, deriveMeta, err := adv.IdentifyRisksFromWBS(ctx, phases, projectName)
		if err != nil {
			return err
		}
		printRisks(risks, deriveMeta)

		fmt.Println("\nStep 3/3: Analyzing risk quality...")
		result, analysisMeta, err := adv.AnalyzeRisks(ctx, risks, risk.DefaultHeuristics())
		if err != nil {
			return err
		}
		printAnalysis(result, analysisMeta)

		if workflowExportPath != "" {
			if err := writeExport(workflowExportPath, register.ExportRisks(result.Risks)); err != nil {
				return err
			}
		}
		return nil
	},
}

func init() {
	workflowCmd.Flags().StringVar(&narrativeFile, "narrative-file", "", "File containing the project narrative")
	workflowCmd.Flags().StringVar(&projectName, "project", "", "Project name")
	workflowCmd.Flags().StringVar(&workflowExportPath, "export", "", "Write the analyzed register CSV to this path (or directory)")
}

// --- lessons command ---

var lessonsCmd = &cobra.Command{
	Use:   "lessons <document>",
	Short: "Extract lessons learned from an assurance document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("opening document: %w", err)
		}
		defer f.Close()

		name := filepath.Base(args[0])
		text, err := document.PrepareText(name, f)
		if err != nil {
			return err
		}

		result, meta, err := newExtractor().Extract(context.Background(), text, name, document.DocType(name))
		if err != nil {
			return err
		}

		fmt.Printf("Extracted %d lessons from %s (%s, %s)\n\n", len(result.Lessons), result.DocumentName, result.DocumentType, meta.Source)
		fmt.Println(result.Summary)
		if len(result.KeyThemes) > 0 {
			fmt.Printf("\nKey themes: %s\n", strings.Join(result.KeyThemes, ", "))
		}

		for i, l := range result.Lessons {
			review := ""
			if l.NeedsReview {
				review = " [needs review]"
			}
			fmt.Printf("\n%d. %s (%s, confidence %d/10)%s\n", i+1, l.Title, l.Category, l.Confidence, review)
			fmt.Printf("   %s\n", l.Description)
			if l.Recommendation != "" {
				fmt.Printf("   Recommendation: %s\n", l.Recommendation)
			}
			for _, step := range l.ActionableSteps {
				fmt.Printf("   - %s\n", step)
			}
		}
		return nil
	},
}

// --- serve command ---

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the local web UI",
	RunE: func(cmd *cobra.Command, args []string) error {
		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		fmt.Printf("Starting server at http://localhost:%d\n", port)
		fmt.Println("Press Ctrl+C to stop")
		return server.Serve(newAdvisor(), newExtractor(), port)
	},
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "Port to run server on (default from config)")
}

// --- helpers ---

func newAdvisor() *advisor.Advisor {
	return advisor.New(advisorConfig())
}

func newExtractor() *lessons.Extractor {
	c := advisorConfig()
	return lessons.NewExtractor(lessons.Config{
		Provider:  c.Provider,
		DemoMode:  c.DemoMode,
		DemoDelay: c.DemoDelay,
		Timeout:   c.Timeout,
		MaxTokens: c.MaxTokens,
	})
}

func advisorConfig() advisor.Config {
	var provider llm.Provider
	if !cfg.Advisor.DemoMode {
		provider = llm.CreateProvider(cfg.Advisor.Provider, cfg.Advisor.Model, cfg.Advisor.OllamaURL, cfg.Advisor.OpenAIModel, cfg.Advisor.APIKeyEnv)
	}
	return advisor.Config{
		Provider:  provider,
		DemoMode:  cfg.Advisor.DemoMode,
		DemoDelay: time.Duration(cfg.Advisor.DemoDelayMS) * time.Millisecond,
		Timeout:   time.Duration(cfg.Advisor.TimeoutSeconds) * time.Second,
		MaxTokens: cfg.Advisor.MaxTokens,
	}
}

func loadRegister(path string) ([]risk.Risk, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening register: %w", err)
	}
	defer f.Close()

	risks, err := register.Parse(f)
	if err != nil {
		return nil, err
	}
	fmt.Printf("Loaded %d risks from %s\n", len(risks), path)
	return risks, nil
}

func readNarrative() (string, error) {
	if narrativeFile == "" {
		return "", fmt.Errorf("--narrative-file is required")
	}
	data, err := os.ReadFile(narrativeFile)
	if err != nil {
		return "", fmt.Errorf("reading narrative: %w", err)
	}
	return string(data), nil
}

func printAnalysis(result risk.AnalysisResult, meta advisor.Meta) {
	fmt.Printf("\nOverall quality: %d/10 (%s)\n", result.OverallScore, describeMeta(meta))
	fmt.Println(result.Summary)

	for _, r := range result.Risks {
		fmt.Printf("\n%s: %s\n", r.ID, r.Description)
		fmt.Printf("  P%d x I%d = %d (%s), quality %d/10\n", r.Probability, r.Impact, r.Score, risk.SeverityOf(r.Score), r.QualityScore)
		for _, s := range r.Suggestions {
			fmt.Printf("  - %s\n", s)
		}
	}

	fmt.Println("\nRecommendations:")
	for _, rec := range result.Recommendations {
		fmt.Printf("  - %s\n", rec)
	}
}

func printWBS(phases []plan.Phase, meta advisor.Meta) {
	fmt.Printf("\nWBS with %d phases, %d activities (%s)\n", len(phases), plan.ActivityCount(phases), describeMeta(meta))
	for _, p := range phases {
		fmt.Printf("\n%s\n", p.Name)
		for _, a := range p.Activities {
			marker := ""
			if a.Milestone {
				marker = " *"
			}
			fmt.Printf("  %s (%g %s)%s\n", a.Name, a.Duration, a.Unit, marker)
		}
	}

	if issues := plan.Validate(phases); len(issues) > 0 {
		fmt.Println("\nStructure warnings:")
		for _, issue := range issues {
			fmt.Printf("  - %s\n", issue)
		}
	}
}

func printRisks(risks []risk.Risk, meta advisor.Meta) {
	fmt.Printf("\nIdentified %d risks (%s)\n", len(risks), describeMeta(meta))
	for _, r := range risks {
		fmt.Printf("  %s [P%d x I%d = %d] %s\n", r.ID, r.Probability, r.Impact, r.Score, r.Description)
	}
}

func describeMeta(meta advisor.Meta) string {
	if meta.Source == advisor.SourceLive {
		return "live"
	}
	if meta.Cause != "" {
		return "fallback: " + meta.Cause
	}
	return "fallback"
}

// writeExport writes CSV content to path. A directory path gets a dated
// filename inside it.
func writeExport(path, content string) error {
	target := path
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		target = filepath.Join(path, register.ExportFilename("riskpilot-export", time.Now()))
	}
	if err := os.WriteFile(target, []byte(content), 0o644); err != nil {
		return fmt.Errorf("writing export: %w", err)
	}
	fmt.Printf("Exported to %s\n", target)
	return nil
}
