package transcribe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// openAIBackend speaks the audio/transcriptions endpoint. It works against
// api.openai.com and against local OpenAI-compatible whisper servers, which
// is why the base URL is a parameter and the key may be empty.
type openAIBackend struct {
	baseURL  string
	apiKey   string
	model    string
	language string
}

func NewOpenAIBackend(baseURL, apiKey, model, language string) Backend {
	return &openAIBackend{
		baseURL:  strings.TrimSuffix(baseURL, "/"),
		apiKey:   apiKey,
		model:    model,
		language: language,
	}
}

// verboseResp is the response_format=verbose_json shape; it is the only
// format that carries per-segment timings.
type verboseResp struct {
	Language string  `json:"language"`
	Duration float64 `json:"duration"`
	Text     string  `json:"text"`
	Segments []struct {
		Start float64 `json:"start"`
		End   float64 `json:"end"`
		Text  string  `json:"text"`
	} `json:"segments"`
}

func (o *openAIBackend) Transcribe(ctx context.Context, audioPath string) (Transcript, error) {
	f, err := os.Open(audioPath)
	if err != nil {
		return Transcript{}, err
	}
	defer f.Close()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	if err := mw.WriteField("model", o.model); err != nil {
		return Transcript{}, err
	}
	if err := mw.WriteField("response_format", "verbose_json"); err != nil {
		return Transcript{}, err
	}
	if o.language != "" {
		if err := mw.WriteField("language", o.language); err != nil {
			return Transcript{}, err
		}
	}

	fw, err := mw.CreateFormFile("file", filepath.Base(audioPath))
	if err != nil {
		return Transcript{}, err
	}
	if _, err := io.Copy(fw, f); err != nil {
		return Transcript{}, err
	}
	if err := mw.Close(); err != nil {
		return Transcript{}, err
	}

	url := o.baseURL + "/audio/transcriptions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &body)
	if err != nil {
		return Transcript{}, err
	}
	if o.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+o.apiKey)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	hc := &http.Client{Timeout: 10 * time.Minute}
	resp, err := hc.Do(req)
	if err != nil {
		return Transcript{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return Transcript{}, fmt.Errorf("transcription server http %d: %s", resp.StatusCode, string(b))
	}

	var vr verboseResp
	if err := json.NewDecoder(resp.Body).Decode(&vr); err != nil {
		return Transcript{}, fmt.Errorf("decode transcription response: %w", err)
	}

	tr := Transcript{
		Language: vr.Language,
		Duration: time.Duration(vr.Duration * float64(time.Second)),
	}
	for _, s := range vr.Segments {
		tr.Segments = append(tr.Segments, Segment{
			StartSec: s.Start,
			EndSec:   s.End,
			Text:     strings.TrimSpace(s.Text),
		})
	}
	if len(tr.Segments) == 0 && strings.TrimSpace(vr.Text) != "" {
		// some servers omit segments; keep the text as a single untimed chunk
		tr.Segments = []Segment{{Text: strings.TrimSpace(vr.Text)}}
	}
	return tr, nil
}
