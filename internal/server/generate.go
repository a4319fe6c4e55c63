package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"art-trainer/internal/config"

	"github.com/google/uuid"
)

var (
	errGeneratorUnavailable = errors.New("image generator is unavailable")
	errGeneratorExhausted   = errors.New("image generator ran out of memory")
)

type generatorState int

const (
	generatorUninitialized generatorState = iota
	generatorReady
	generatorFailed
)

// imageGenerator talks to the diffusion-model sidecar over HTTP. Readiness is
// decided exactly once, when the process starts: the sidecar either answers
// the health probe and the generator is ready for the lifetime of the
// process, or it does not and every generation call fails with unavailable.
// Initialization is never retried mid-process.
type imageGenerator struct {
	baseURL  string
	client   *http.Client
	dir      string
	steps    int
	guidance float64
	state    generatorState
}

type generateSidecarRequest struct {
	Prompt         string  `json:"prompt"`
	NegativePrompt string  `json:"negative_prompt,omitempty"`
	Steps          int     `json:"num_inference_steps"`
	GuidanceScale  float64 `json:"guidance_scale"`
}

type generateSidecarResponse struct {
	Image string `json:"image"`
	Error string `json:"error,omitempty"`
}

func newImageGenerator(cfg config.Config) *imageGenerator {
	g := &imageGenerator{
		baseURL:  strings.TrimRight(cfg.GeneratorURL, "/"),
		client:   &http.Client{Timeout: time.Duration(cfg.GeneratorTimeoutSeconds) * time.Second},
		dir:      cfg.GeneratedImageDir,
		steps:    cfg.GenerationSteps,
		guidance: cfg.GenerationGuidance,
	}
	g.state = g.probe()
	return g
}

func (g *imageGenerator) probe() generatorState {
	resp, err := g.client.Get(g.baseURL + "/healthz")
	if err != nil {
		log.Printf("image generator unreachable url=%s: %v", g.baseURL, err)
		return generatorFailed
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Printf("image generator unhealthy url=%s status=%d", g.baseURL, resp.StatusCode)
		return generatorFailed
	}
	log.Printf("image generator ready url=%s", g.baseURL)
	return generatorReady
}

func (g *imageGenerator) Ready() bool {
	return g != nil && g.state == generatorReady
}

// Generate asks the sidecar for an image and stores the decoded PNG under the
// generated-image directory. The returned ref is the public path the server
// serves the file from.
func (g *imageGenerator) Generate(ctx context.Context, prompt, negativePrompt string) (string, error) {
	if !g.Ready() {
		return "", errGeneratorUnavailable
	}
	payload, err := json.Marshal(generateSidecarRequest{
		Prompt:         prompt,
		NegativePrompt: negativePrompt,
		Steps:          g.steps,
		GuidanceScale:  g.guidance,
	})
	if err != nil {
		return "", fmt.Errorf("failed to build generation request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/generate", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to build generation request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to reach image generator: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read generation response: %w", err)
	}
	var parsed generateSidecarResponse
	if len(body) > 0 {
		_ = json.Unmarshal(body, &parsed)
	}
	if resp.StatusCode == http.StatusInsufficientStorage || isOutOfMemory(parsed.Error) {
		return "", errGeneratorExhausted
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if parsed.Error != "" {
			return "", fmt.Errorf("image generation failed: %s", parsed.Error)
		}
		return "", fmt.Errorf("image generation failed (%d)", resp.StatusCode)
	}
	if parsed.Image == "" {
		return "", errors.New("image generator returned no image")
	}
	decoded, err := base64.StdEncoding.DecodeString(parsed.Image)
	if err != nil {
		return "", fmt.Errorf("failed to decode generated image: %w", err)
	}
	return g.saveImage(decoded)
}

func (g *imageGenerator) saveImage(image []byte) (string, error) {
	if err := os.MkdirAll(g.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create image directory: %w", err)
	}
	name := uuid.NewString() + ".png"
	if err := os.WriteFile(filepath.Join(g.dir, name), image, 0o644); err != nil {
		return "", fmt.Errorf("failed to save generated image: %w", err)
	}
	return "/generated/" + name, nil
}

func isOutOfMemory(message string) bool {
	lowered := strings.ToLower(message)
	return strings.Contains(lowered, "out of memory") || strings.Contains(lowered, "oom")
}
