package server

import (
	"errors"
	"log"
	"net/http"
)

type generateRequest struct {
	Prompt         string `json:"prompt"`
	NegativePrompt string `json:"negative_prompt"`
}

func (s *Server) handleGenerateReference(w http.ResponseWriter, r *http.Request) {
	user, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	var req generateRequest
	if err := readJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	prompt, err := validateText("prompt", req.Prompt, maxPromptLength)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	negativePrompt := normalizeText(req.NegativePrompt)

	if !s.generator.Ready() {
		writeGenerationError(w, http.StatusServiceUnavailable, "service_unavailable", "image generator is unavailable")
		return
	}
	imageRef, err := s.generator.Generate(r.Context(), prompt, negativePrompt)
	if err != nil {
		switch {
		case errors.Is(err, errGeneratorUnavailable):
			writeGenerationError(w, http.StatusServiceUnavailable, "service_unavailable", "image generator is unavailable")
		case errors.Is(err, errGeneratorExhausted):
			writeGenerationError(w, http.StatusServiceUnavailable, "resource_exhausted", "image generator ran out of memory")
		default:
			log.Printf("image generation failed user_id=%d: %v", user.ID, err)
			writeGenerationError(w, http.StatusBadGateway, "internal", "image generation failed")
		}
		return
	}
	log.Printf("image generated user_id=%d ref=%s", user.ID, imageRef)
	s.recordEvent("image_generated", &user.ID, nil, eventPayload{"image_ref": imageRef})
	writeJSON(w, http.StatusCreated, map[string]string{
		"image_ref": imageRef,
	})
}

func writeGenerationError(w http.ResponseWriter, status int, kind, message string) {
	writeJSON(w, status, map[string]string{
		"error": message,
		"kind":  kind,
	})
}
