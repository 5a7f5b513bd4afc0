package face

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"math"

	"github.com/hashicorp/go-hclog"
	"google.golang.org/genai"

	imgutil "github.com/jmylchreest/shade/internal/image"
)

const (
	// DefaultGeminiModel is the vision model used when none is configured.
	DefaultGeminiModel = "gemini-2.5-flash"

	defaultGeminiImageSize = 1024
	defaultGeminiRetries   = 3
)

const facePrompt = `Detect every human face in this image.
Respond with JSON only, in this exact shape:
{"faces":[{"box":{"x":0,"y":0,"width":0,"height":0},"confidence":0.0,"landmarks":[{"x":0,"y":0}]}]}
Coordinates are pixels in the image as provided (%dx%d), origin top-left.
"confidence" is between 0 and 1.
"landmarks" are the 68 points of the iBUG 300-W face model in their standard
order (jawline 0-16, eyebrows 17-26, nose 27-35, eyes 36-47, mouth 48-67).
Omit "landmarks" if you cannot place all 68 points.
If there is no face, respond with {"faces":[]}.`

// GeminiOptions configures a GeminiDetector.
type GeminiOptions struct {
	// APIKey for the Gemini API backend.
	APIKey string

	// Backend is "gemini-api" (default) or "vertex-ai". Vertex AI reads its
	// project and location from the standard Google Cloud environment.
	Backend string

	// Model is the model name. Default: DefaultGeminiModel.
	Model string

	// MaxImageSize is the longest edge, in pixels, of the image sent to
	// the model. Default: 1024.
	MaxImageSize int

	// MaxRetries bounds attempts to obtain parseable JSON. Default: 3.
	MaxRetries int
}

// contentGenerator is the subset of genai.Models used by the detector.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeminiDetector asks a Gemini vision model for face boxes and landmarks.
type GeminiDetector struct {
	models contentGenerator
	opts   GeminiOptions
	logger hclog.Logger
}

// NewGeminiDetector creates a detector backed by the Gemini API.
func NewGeminiDetector(ctx context.Context, opts GeminiOptions, logger hclog.Logger) (*GeminiDetector, error) {
	clientConfig := &genai.ClientConfig{}

	if opts.Backend == "vertex-ai" {
		clientConfig.Backend = genai.BackendVertexAI
	} else {
		clientConfig.Backend = genai.BackendGeminiAPI
		if opts.APIKey == "" {
			return nil, fmt.Errorf("a Gemini API key is required (set SHADE_GEMINI_API_KEY or GOOGLE_API_KEY)")
		}
		clientConfig.APIKey = opts.APIKey
	}

	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return newGeminiDetector(client.Models, opts, logger), nil
}

func newGeminiDetector(models contentGenerator, opts GeminiOptions, logger hclog.Logger) *GeminiDetector {
	if opts.Model == "" {
		opts.Model = DefaultGeminiModel
	}
	if opts.MaxImageSize <= 0 {
		opts.MaxImageSize = defaultGeminiImageSize
	}
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = defaultGeminiRetries
	}
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	return &GeminiDetector{
		models: models,
		opts:   opts,
		logger: logger.Named("gemini"),
	}
}

// Detect implements Detector.
func (d *GeminiDetector) Detect(ctx context.Context, img image.Image) (*Detection, error) {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w == 0 || h == 0 {
		return nil, ErrNoFace
	}

	scaled := imgutil.Resize(img, d.opts.MaxImageSize, d.opts.MaxImageSize)
	sw, sh := scaled.Bounds().Dx(), scaled.Bounds().Dy()

	data, err := imgutil.EncodeJPEG(scaled, 90)
	if err != nil {
		return nil, err
	}

	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{Text: fmt.Sprintf(facePrompt, sw, sh)},
				{InlineData: &genai.Blob{Data: data, MIMEType: "image/jpeg"}},
			},
		},
	}

	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	}

	d.logger.Debug("requesting face detection", "model", d.opts.Model, "width", sw, "height", sh)

	var lastErr error
	for attempt := 1; attempt <= d.opts.MaxRetries; attempt++ {
		result, err := d.models.GenerateContent(ctx, d.opts.Model, contents, config)
		if err != nil {
			return nil, fmt.Errorf("gemini API error: %w", err)
		}

		content := result.Text()
		if content == "" {
			return nil, errors.New("no response from Gemini")
		}

		faces, err := ParseFaces([]byte(content), float64(w)/float64(sw), float64(h)/float64(sh))
		if err != nil {
			lastErr = err
			d.logger.Warn("unparseable face response", "attempt", attempt, "error", err)

			contents = append(contents,
				&genai.Content{Role: "model", Parts: []*genai.Part{{Text: content}}},
				&genai.Content{Role: "user", Parts: []*genai.Part{{Text: fmt.Sprintf("JSON parse error: %v. Reply again with valid JSON in the requested shape.", err)}}},
			)
			continue
		}

		d.logger.Debug("face detection complete", "faces", len(faces))
		return NewDetection(faces, w, h, "gemini")
	}

	return nil, fmt.Errorf("failed to parse face detection JSON after %d attempts: %w", d.opts.MaxRetries, lastErr)
}

type faceResponse struct {
	Faces []Face `json:"faces"`
}

// ParseFaces decodes a face detection response and scales coordinates by
// sx and sy. Faces with an empty box are dropped, confidence is clamped to
// [0, 1] and landmark sets of the wrong size are discarded.
func ParseFaces(data []byte, sx, sy float64) ([]Face, error) {
	var resp faceResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, err
	}

	faces := make([]Face, 0, len(resp.Faces))
	for _, f := range resp.Faces {
		if f.Box.Width <= 0 || f.Box.Height <= 0 {
			continue
		}

		f.Box = Box{X: f.Box.X * sx, Y: f.Box.Y * sy, Width: f.Box.Width * sx, Height: f.Box.Height * sy}
		f.Confidence = math.Max(0, math.Min(1, f.Confidence))

		if len(f.Landmarks) != LandmarkCount {
			f.Landmarks = nil
		}
		for i := range f.Landmarks {
			f.Landmarks[i] = Point{X: f.Landmarks[i].X * sx, Y: f.Landmarks[i].Y * sy}
		}

		faces = append(faces, f)
	}

	return faces, nil
}
