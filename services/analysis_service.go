package services

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Mil05h/calories-ai/apperr"
	"github.com/Mil05h/calories-ai/models"
)

// MaxImageBytes caps the decoded size of an inline image payload. Requests
// over the cap are rejected as invalid-argument.
const MaxImageBytes = 8 << 20

const (
	// Wall-clock ceiling for one handler invocation, model call included.
	analysisTimeout = 300 * time.Second
	maxOutputTokens = 500
)

const systemInstruction = `You are a nutrition analysis assistant. Given a meal description and/or a meal photo, estimate the meal's total nutrition.

Respond with valid JSON in exactly this format, with all values as plain numbers:
{"calories": <kcal>, "protein": <grams>, "carbs": <grams>, "fat": <grams>}

Estimate realistic portion sizes when unspecified. Respond with the JSON object only.`

const imageInstruction = "Analyze the meal shown in this photo and estimate its total nutrition."

// AnalysisService runs the meal-analysis pipeline: gate the caller,
// validate the payload, build the prompt, call the model once, and
// normalize its answer. It holds no state across calls.
type AnalysisService struct {
	llm    *LLMService
	logger *slog.Logger

	// Authorization predicate. Currently admits any authenticated
	// principal; kept as an explicit hook so the permission-denied path
	// stays real.
	authorize func(user *models.User) error
}

func NewAnalysisService(llm *LLMService, logger *slog.Logger) *AnalysisService {
	return &AnalysisService{
		llm:       llm,
		logger:    logger,
		authorize: func(*models.User) error { return nil },
	}
}

// Analyze performs one analysis request on behalf of user. Each gate is
// hard: a failure stops the pipeline and maps to a stable error kind.
func (s *AnalysisService) Analyze(ctx context.Context, user *models.User, req models.AnalysisRequest) (*models.NutritionResult, error) {
	if user == nil {
		return nil, apperr.New(apperr.Unauthenticated, "authentication required")
	}
	if err := s.authorize(user); err != nil {
		return nil, apperr.Wrap(apperr.PermissionDenied, "not allowed", err)
	}

	image, mime, err := validateRequest(&req)
	if err != nil {
		return nil, err
	}

	parts := buildPrompt(req.Description, image, mime)

	ctx, cancel := context.WithTimeout(ctx, analysisTimeout)
	defer cancel()

	content, err := s.llm.CompleteJSON(ctx, systemInstruction, parts, maxOutputTokens)
	if err != nil {
		return nil, apperr.Wrap(apperr.AnalysisFailed, "analysis failed", err)
	}

	result, err := parseNutrition(content)
	if err != nil {
		return nil, apperr.Wrap(apperr.AnalysisFailed, "analysis failed", err)
	}

	s.logger.Info("meal analyzed",
		"user_id", user.ID,
		"has_description", strings.TrimSpace(req.Description) != "",
		"has_image", image != "",
	)
	return result, nil
}

// validateRequest checks the analysis invariant and returns the cleaned
// base64 image payload ("" when none was supplied) plus its content type.
// A data-URI wrapper that carries no payload counts as no image: the
// request must still hold a description or it is rejected outright.
func validateRequest(req *models.AnalysisRequest) (string, string, error) {
	if req.Empty() {
		return "", "", apperr.New(apperr.InvalidArgument, "request must include a description or an image")
	}

	image := strings.TrimSpace(req.ImageBase64)
	var mime string
	// Tolerate clients that send a full data URI; keep its content type.
	if i := strings.Index(image, ","); strings.HasPrefix(image, "data:") && i >= 0 {
		meta := strings.TrimPrefix(image[:i], "data:")
		mime = strings.SplitN(meta, ";", 2)[0]
		image = strings.TrimSpace(image[i+1:])
	}
	if image == "" {
		if strings.TrimSpace(req.Description) == "" {
			return "", "", apperr.New(apperr.InvalidArgument, "request must include a description or an image")
		}
		return "", "", nil
	}
	if base64.StdEncoding.DecodedLen(len(image)) > MaxImageBytes {
		return "", "", apperr.New(apperr.InvalidArgument, fmt.Sprintf("image exceeds %d byte limit", MaxImageBytes))
	}
	decoded, err := base64.StdEncoding.DecodeString(image)
	if err != nil {
		return "", "", apperr.Wrap(apperr.InvalidArgument, "image is not valid base64", err)
	}
	if mime == "" {
		mime = http.DetectContentType(decoded)
	}
	return image, mime, nil
}

// buildPrompt assembles the single user turn: one text block per provided
// modality, the image as a data-URI attachment with its fixed instruction.
func buildPrompt(description, image, mime string) []ContentPart {
	var parts []ContentPart
	if desc := strings.TrimSpace(description); desc != "" {
		parts = append(parts, TextPart(fmt.Sprintf("Analyze this meal and estimate its nutrition: %q", desc)))
	}
	if image != "" {
		parts = append(parts,
			ImagePart("data:"+mime+";base64,"+image),
			TextPart(imageInstruction),
		)
	}
	return parts
}

// parseNutrition extracts the JSON object from the model output and
// coerces the four expected fields. Missing or mis-typed fields default
// to 0; only a wholly missing or unparsable object is an error.
func parseNutrition(content string) (*models.NutritionResult, error) {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start == -1 || end <= start {
		return nil, fmt.Errorf("model output contained no JSON object")
	}

	var raw map[string]any
	if err := json.Unmarshal([]byte(content[start:end+1]), &raw); err != nil {
		return nil, fmt.Errorf("model output was not a JSON object: %w", err)
	}

	return &models.NutritionResult{
		Calories: coerceNumber(raw["calories"]),
		Protein:  coerceNumber(raw["protein"]),
		Carbs:    coerceNumber(raw["carbs"]),
		Fat:      coerceNumber(raw["fat"]),
	}, nil
}

// coerceNumber turns a decoded JSON value into a non-negative float64,
// defaulting to 0 for anything missing or mis-typed.
func coerceNumber(v any) float64 {
	var n float64
	switch t := v.(type) {
	case float64:
		n = t
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0
		}
		n = parsed
	default:
		return 0
	}
	if n < 0 {
		return 0
	}
	return n
}
