package main

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/jonathan/skillforge/internal/observability"
	"github.com/jonathan/skillforge/internal/types"
	"github.com/oklog/ulid/v2"
	"github.com/spf13/cobra"
)

var roadmapJSON bool

var roadmapCmd = &cobra.Command{
	Use:   "roadmap <topic>",
	Short: "Generate a study roadmap for a topic and print it",
	Long:  "Generate a study roadmap without storing it. Useful for checking model configuration and prompts.",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runRoadmap,
}

func init() {
	roadmapCmd.Flags().BoolVar(&roadmapJSON, "json", false, "Print the roadmap as JSON")
	rootCmd.AddCommand(roadmapCmd)
}

func runRoadmap(cmd *cobra.Command, args []string) error {
	if err := cfg.RequireLLM(); err != nil {
		return err
	}
	llmConfig, err := cfg.LLMConfig()
	if err != nil {
		return err
	}
	service, closeTutor, err := newTutor(cmd.Context(), llmConfig)
	if err != nil {
		return err
	}
	defer closeTutor()

	topic := strings.Join(args, " ")
	modules, err := service.Roadmap(cmd.Context(), topic)
	if err != nil {
		return err
	}
	r := &types.Roadmap{
		ID:        ulid.Make().String(),
		Topic:     topic,
		CreatedAt: time.Now().UTC(),
		Modules:   modules,
	}

	if roadmapJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	}
	observability.NewPrinter(cmd.OutOrStdout()).PrintRoadmap(r)
	return nil
}
