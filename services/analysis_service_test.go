package services

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/Mil05h/calories-ai/apperr"
	"github.com/Mil05h/calories-ai/models"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeModel serves an OpenAI-shaped completion endpoint. It records call
// count and the last request body so tests can assert on prompt shape.
type fakeModel struct {
	server  *httptest.Server
	calls   atomic.Int32
	lastReq chatRequest
	content string
	status  int
}

func newFakeModel(t *testing.T, content string) *fakeModel {
	t.Helper()
	f := &fakeModel{content: content, status: http.StatusOK}
	f.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.calls.Add(1)
		if err := json.NewDecoder(r.Body).Decode(&f.lastReq); err != nil {
			t.Errorf("malformed completion request: %v", err)
		}
		if f.status != http.StatusOK {
			w.WriteHeader(f.status)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []any{
				map[string]any{"message": map[string]any{"content": f.content}},
			},
		})
	}))
	t.Cleanup(f.server.Close)
	return f
}

func newTestAnalysis(f *fakeModel) *AnalysisService {
	llm := NewLLMService(f.server.URL, "test-key", "test-model")
	return NewAnalysisService(llm, discardLogger())
}

// userParts extracts the content blocks of the user turn from the request
// the fake model received.
func userParts(t *testing.T, req chatRequest) []ContentPart {
	t.Helper()
	if len(req.Messages) != 2 {
		t.Fatalf("expected system + user message, got %d messages", len(req.Messages))
	}
	raw, err := json.Marshal(req.Messages[1].Content)
	if err != nil {
		t.Fatalf("re-marshal user content: %v", err)
	}
	var parts []ContentPart
	if err := json.Unmarshal(raw, &parts); err != nil {
		t.Fatalf("user content is not a part list: %v", err)
	}
	return parts
}

func testUser() *models.User {
	return &models.User{ID: "user-1", Email: "eater@example.com"}
}

func TestAnalyzeEmptyRequestNoCall(t *testing.T) {
	f := newFakeModel(t, `{}`)
	svc := newTestAnalysis(f)

	_, err := svc.Analyze(context.Background(), testUser(), models.AnalysisRequest{})
	if apperr.KindOf(err) != apperr.InvalidArgument {
		t.Fatalf("expected invalid-argument, got %v", err)
	}
	if f.calls.Load() != 0 {
		t.Errorf("model was called %d times for an empty request", f.calls.Load())
	}
}

func TestAnalyzeBlankFieldsNoCall(t *testing.T) {
	f := newFakeModel(t, `{}`)
	svc := newTestAnalysis(f)

	_, err := svc.Analyze(context.Background(), testUser(), models.AnalysisRequest{Description: "   ", ImageBase64: ""})
	if apperr.KindOf(err) != apperr.InvalidArgument {
		t.Fatalf("expected invalid-argument, got %v", err)
	}
	if f.calls.Load() != 0 {
		t.Errorf("model was called for a blank request")
	}
}

func TestAnalyzeUnauthenticatedNoCall(t *testing.T) {
	f := newFakeModel(t, `{}`)
	svc := newTestAnalysis(f)

	_, err := svc.Analyze(context.Background(), nil, models.AnalysisRequest{Description: "toast"})
	if apperr.KindOf(err) != apperr.Unauthenticated {
		t.Fatalf("expected unauthenticated, got %v", err)
	}
	if f.calls.Load() != 0 {
		t.Errorf("model was called for an unauthenticated request")
	}
}

func TestAnalyzeDescriptionOnly(t *testing.T) {
	f := newFakeModel(t, `{"calories":350,"protein":30,"carbs":10,"fat":15}`)
	svc := newTestAnalysis(f)

	result, err := svc.Analyze(context.Background(), testUser(), models.AnalysisRequest{
		Description: "grilled chicken salad",
	})
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	want := models.NutritionResult{Calories: 350, Protein: 30, Carbs: 10, Fat: 15}
	if *result != want {
		t.Errorf("got %+v, want %+v", *result, want)
	}

	parts := userParts(t, f.lastReq)
	if len(parts) != 1 || parts[0].Type != "text" {
		t.Fatalf("expected exactly one text part, got %+v", parts)
	}
	if !strings.Contains(parts[0].Text, "grilled chicken salad") {
		t.Errorf("text part does not echo the description: %q", parts[0].Text)
	}
	if f.lastReq.ResponseFormat["type"] != "json_object" {
		t.Errorf("expected json_object response mode, got %v", f.lastReq.ResponseFormat)
	}
}

func TestAnalyzeImageOnlyMissingFat(t *testing.T) {
	f := newFakeModel(t, `{"calories":420,"protein":18,"carbs":55}`)
	svc := newTestAnalysis(f)

	img := base64.StdEncoding.EncodeToString([]byte("\xff\xd8\xff fake jpeg bytes"))
	result, err := svc.Analyze(context.Background(), testUser(), models.AnalysisRequest{ImageBase64: img})
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if result.Fat != 0 {
		t.Errorf("missing fat should coerce to 0, got %v", result.Fat)
	}
	if result.Calories != 420 {
		t.Errorf("calories = %v, want 420", result.Calories)
	}

	parts := userParts(t, f.lastReq)
	if len(parts) != 2 {
		t.Fatalf("expected image part + instruction part, got %+v", parts)
	}
	if parts[0].Type != "image_url" || parts[0].ImageURL == nil {
		t.Fatalf("first part should be the image attachment, got %+v", parts[0])
	}
	if !strings.HasPrefix(parts[0].ImageURL.URL, "data:image/jpeg;base64,") {
		t.Errorf("image part is not a data URI: %q", parts[0].ImageURL.URL[:30])
	}
	if parts[1].Type != "text" || parts[1].Text != imageInstruction {
		t.Errorf("second part should be the fixed image instruction, got %+v", parts[1])
	}
}

func TestAnalyzeCoercion(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    models.NutritionResult
	}{
		{
			"string numbers",
			`{"calories":"290","protein":"20","carbs":"30","fat":"10"}`,
			models.NutritionResult{Calories: 290, Protein: 20, Carbs: 30, Fat: 10},
		},
		{
			"negative clamps to zero",
			`{"calories":-5,"protein":12,"carbs":0,"fat":3}`,
			models.NutritionResult{Calories: 0, Protein: 12, Carbs: 0, Fat: 3},
		},
		{
			"mis-typed fields default to zero",
			`{"calories":true,"protein":{"g":5},"carbs":"lots","fat":9}`,
			models.NutritionResult{Fat: 9},
		},
		{
			"prose around the object",
			"Here is the estimate:\n```json\n{\"calories\":100,\"protein\":5,\"carbs\":10,\"fat\":2}\n```",
			models.NutritionResult{Calories: 100, Protein: 5, Carbs: 10, Fat: 2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFakeModel(t, tt.content)
			svc := newTestAnalysis(f)

			result, err := svc.Analyze(context.Background(), testUser(), models.AnalysisRequest{Description: "meal"})
			if err != nil {
				t.Fatalf("Analyze failed: %v", err)
			}
			if *result != tt.want {
				t.Errorf("got %+v, want %+v", *result, tt.want)
			}
		})
	}
}

func TestAnalyzeUnparsableResponse(t *testing.T) {
	for _, content := range []string{"", "I could not analyze that meal.", "{broken"} {
		f := newFakeModel(t, content)
		svc := newTestAnalysis(f)

		_, err := svc.Analyze(context.Background(), testUser(), models.AnalysisRequest{Description: "meal"})
		if apperr.KindOf(err) != apperr.AnalysisFailed {
			t.Errorf("content %q: expected analysis-failed, got %v", content, err)
		}
	}
}

func TestAnalyzeUpstreamError(t *testing.T) {
	f := newFakeModel(t, "")
	f.status = http.StatusBadGateway
	svc := newTestAnalysis(f)

	_, err := svc.Analyze(context.Background(), testUser(), models.AnalysisRequest{Description: "meal"})
	if apperr.KindOf(err) != apperr.AnalysisFailed {
		t.Fatalf("expected analysis-failed, got %v", err)
	}
	if f.calls.Load() != 1 {
		t.Errorf("expected exactly one attempt (no retry), got %d", f.calls.Load())
	}
}

func TestAnalyzeImageValidation(t *testing.T) {
	f := newFakeModel(t, `{}`)
	svc := newTestAnalysis(f)

	t.Run("invalid base64", func(t *testing.T) {
		_, err := svc.Analyze(context.Background(), testUser(), models.AnalysisRequest{ImageBase64: "!!not base64!!"})
		if apperr.KindOf(err) != apperr.InvalidArgument {
			t.Errorf("expected invalid-argument, got %v", err)
		}
	})

	t.Run("over size cap", func(t *testing.T) {
		huge := strings.Repeat("A", base64.StdEncoding.EncodedLen(MaxImageBytes+1024))
		_, err := svc.Analyze(context.Background(), testUser(), models.AnalysisRequest{ImageBase64: huge})
		if apperr.KindOf(err) != apperr.InvalidArgument {
			t.Errorf("expected invalid-argument, got %v", err)
		}
	})

	t.Run("bare data URI with no payload", func(t *testing.T) {
		_, err := svc.Analyze(context.Background(), testUser(), models.AnalysisRequest{ImageBase64: "data:image/png;base64,"})
		if apperr.KindOf(err) != apperr.InvalidArgument {
			t.Errorf("expected invalid-argument for payload-less data URI, got %v", err)
		}
	})

	t.Run("data URI prefix tolerated, mime preserved", func(t *testing.T) {
		f2 := newFakeModel(t, `{"calories":1,"protein":0,"carbs":0,"fat":0}`)
		svc2 := newTestAnalysis(f2)
		img := "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("png bytes"))
		if _, err := svc2.Analyze(context.Background(), testUser(), models.AnalysisRequest{ImageBase64: img}); err != nil {
			t.Fatalf("data-URI image rejected: %v", err)
		}
		parts := userParts(t, f2.lastReq)
		if len(parts) != 2 || parts[0].ImageURL == nil {
			t.Fatalf("expected image part, got %+v", parts)
		}
		if !strings.HasPrefix(parts[0].ImageURL.URL, "data:image/png;base64,") {
			t.Errorf("client mime not preserved: %q", parts[0].ImageURL.URL[:30])
		}
	})

	if f.calls.Load() != 0 {
		t.Errorf("invalid images should never reach the model, got %d calls", f.calls.Load())
	}
}

func TestAnalyzePermissionDenied(t *testing.T) {
	f := newFakeModel(t, `{}`)
	svc := newTestAnalysis(f)
	svc.authorize = func(*models.User) error { return errors.New("role check failed") }

	_, err := svc.Analyze(context.Background(), testUser(), models.AnalysisRequest{Description: "meal"})
	if apperr.KindOf(err) != apperr.PermissionDenied {
		t.Fatalf("expected permission-denied, got %v", err)
	}
	if f.calls.Load() != 0 {
		t.Errorf("model was called despite failed authorization")
	}
}
