package assistant

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/garnizeh/hikelog/internal/config"
	"github.com/garnizeh/hikelog/pkg/models"
	"github.com/garnizeh/hikelog/pkg/repository"
	"github.com/ollama/ollama/api"
)

// LocalClient answers questions with a local Ollama model, building its
// context from the journal in the entity store. It needs no network beyond
// the local Ollama instance, so the assistant keeps working offline.
type LocalClient struct {
	api          *api.Client
	model        string
	timeout      time.Duration
	hikes        repository.HikeStore
	observations repository.ObservationStore
	logger       *slog.Logger
}

var _ Client = (*LocalClient)(nil)

func NewLocalClient(cfg config.AssistantConfig, hikes repository.HikeStore, observations repository.ObservationStore, logger *slog.Logger) (*LocalClient, error) {
	u, err := url.ParseRequestURI(cfg.OllamaURL)
	if err != nil {
		return nil, fmt.Errorf("invalid ollama url: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &LocalClient{
		api:          api.NewClient(u, &http.Client{Timeout: cfg.Timeout}),
		model:        cfg.Model,
		timeout:      cfg.Timeout,
		hikes:        hikes,
		observations: observations,
		logger:       logger,
	}, nil
}

func (c *LocalClient) Ask(ctx context.Context, userID int64, question string) (string, error) {
	prompt, err := c.buildPrompt(ctx, userID, question)
	if err != nil {
		return "", fmt.Errorf("build prompt: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	stream := false
	req := &api.GenerateRequest{Model: c.model, Prompt: prompt, Stream: &stream}

	var answer strings.Builder
	err = c.api.Generate(ctx, req, func(r api.GenerateResponse) error {
		answer.WriteString(r.Response)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("generate: %w", err)
	}

	return strings.TrimSpace(answer.String()), nil
}

// buildPrompt renders the user's journal as plain text context. The model
// only sees non-deleted rows, same as the default queries.
func (c *LocalClient) buildPrompt(ctx context.Context, userID int64, question string) (string, error) {
	hikes, err := c.hikes.ListHikesByUser(ctx, userID)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("You are an assistant for a personal hiking journal. Answer the question using only the journal below.\n\n")
	if len(hikes) == 0 {
		b.WriteString("The journal is empty.\n")
	}
	for i := range hikes {
		writeHike(&b, &hikes[i])
		obs, err := c.observations.ListObservationsByHike(ctx, hikes[i].ID)
		if err != nil {
			return "", err
		}
		for j := range obs {
			fmt.Fprintf(&b, "  - observation (%s): %s", obs[j].ObservationTime, obs[j].ObservationText)
			if obs[j].Comments != "" {
				fmt.Fprintf(&b, " (%s)", obs[j].Comments)
			}
			b.WriteString("\n")
		}
	}

	fmt.Fprintf(&b, "\nQuestion: %s\nAnswer:", question)
	return b.String(), nil
}

func writeHike(b *strings.Builder, h *models.Hike) {
	fmt.Fprintf(b, "Hike %q on %s at %s: %.1f km, difficulty %s", h.Name, h.HikeDate, h.Location, h.Length, h.Difficulty)
	if h.Description != "" {
		fmt.Fprintf(b, ". %s", h.Description)
	}
	b.WriteString("\n")
}
