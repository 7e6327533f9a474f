// Package extraction talks to the external AI middleware that enhances
// images, runs OCR, and performs AI-assisted timetable extraction. The
// middleware owns all model internals; this package only carries its
// wire contract.
package extraction

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"learning-yogi/internal/model"
)

// OCRWord is one recognized word with its bounding box, as reported by
// the middleware OCR engine.
type OCRWord struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
	Left       int     `json:"left"`
	Top        int     `json:"top"`
	Width      int     `json:"width"`
	Height     int     `json:"height"`
}

// OCRResult is the middleware's OCR output. Confidence is in [0, 1].
// Words is part of the middleware contract and must round-trip intact:
// the quality gate re-reads it when scoring the result.
type OCRResult struct {
	Text       string    `json:"text"`
	Confidence float64   `json:"confidence"`
	Words      []OCRWord `json:"words"`
	Engine     string    `json:"engine"`
}

// QualityGateDecision is the externally computed routing signal. The
// threshold policy lives in the middleware; we only consume the tag.
type QualityGateDecision struct {
	Route      string  `json:"route"`
	Confidence float64 `json:"confidence"`
	Reason     string  `json:"reason"`
}

// TimetableData is the structured extraction payload returned by the
// AI-assisted step.
type TimetableData struct {
	Teacher    *string             `json:"teacher"`
	ClassName  *string             `json:"className"`
	Term       *string             `json:"term"`
	Year       *int                `json:"year"`
	Timeblocks model.TimeBlockList `json:"timeblocks"`
}

// Config locates the middleware and bounds each call. The timeout is the
// only bound enforced on pipeline stages; its expiry surfaces as a
// pipeline failure.
type Config struct {
	BaseURL        string
	RequestTimeout time.Duration
}

// HTTPGateway is the HTTP client for the extraction middleware.
type HTTPGateway struct {
	cfg        Config
	httpClient *http.Client
}

// NewHTTPGateway builds a gateway client with the caller-supplied timeout.
func NewHTTPGateway(cfg Config) *HTTPGateway {
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &HTTPGateway{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Enhance asks the middleware to preprocess the image for OCR and
// returns the locator of the enhanced copy.
func (g *HTTPGateway) Enhance(ctx context.Context, imagePath string) (string, error) {
	reqBody := map[string]string{
		"image_path": imagePath,
		"output_dir": "enhanced",
	}
	var parsed struct {
		EnhancedImagePath string `json:"enhanced_image_path"`
	}
	if err := g.post(ctx, "/preprocess/enhance", reqBody, &parsed); err != nil {
		return "", fmt.Errorf("enhance image failed: %w", err)
	}
	if parsed.EnhancedImagePath == "" {
		return "", fmt.Errorf("enhance response missing enhanced image path")
	}
	return parsed.EnhancedImagePath, nil
}

// ProcessOCR runs the middleware OCR step over the given image.
func (g *HTTPGateway) ProcessOCR(ctx context.Context, imagePath string) (OCRResult, error) {
	reqBody := map[string]string{"image_path": imagePath}
	var result OCRResult
	if err := g.post(ctx, "/ocr/process", reqBody, &result); err != nil {
		return OCRResult{}, fmt.Errorf("ocr process failed: %w", err)
	}
	return result, nil
}

// QualityGate asks the middleware for its routing decision over an OCR
// result. The numeric confidence bands are its business, not ours.
func (g *HTTPGateway) QualityGate(ctx context.Context, ocr OCRResult) (QualityGateDecision, error) {
	// The middleware requires words as a JSON array, never null.
	if ocr.Words == nil {
		ocr.Words = []OCRWord{}
	}
	var decision QualityGateDecision
	if err := g.post(ctx, "/ocr/quality-gate", ocr, &decision); err != nil {
		return QualityGateDecision{}, fmt.Errorf("quality gate failed: %w", err)
	}
	return decision, nil
}

// ExtractTimetable runs the AI-assisted extraction step.
func (g *HTTPGateway) ExtractTimetable(ctx context.Context, imagePath string) (TimetableData, error) {
	reqBody := map[string]string{"image_path": imagePath}
	var data TimetableData
	if err := g.post(ctx, "/ai/extract", reqBody, &data); err != nil {
		return TimetableData{}, fmt.Errorf("ai extract failed: %w", err)
	}
	return data, nil
}

func (g *HTTPGateway) post(ctx context.Context, path string, body interface{}, out interface{}) error {
	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal gateway request failed: %w", err)
	}

	url := strings.TrimRight(g.cfg.BaseURL, "/") + path
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bodyBytes))
	if err != nil {
		return fmt.Errorf("build gateway request failed: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read gateway response failed: %w", err)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("gateway response status %d: %s", resp.StatusCode, string(raw))
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("parse gateway json failed: %w", err)
	}
	return nil
}
