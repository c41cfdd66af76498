package narrative_test

import (
	"strings"
	"testing"

	"inkwit/internal/knowledge"
	"inkwit/internal/narrative"
)

var guideEntries = []knowledge.Entry{
	{Element: "집", Condition: "창문", Keywords: []string{"안정", "따뜻"}},
	{Element: "지붕", Condition: "격자무늬", Keywords: []string{"불안", "강박"}},
	{Element: "나무", Condition: "뿌리", Keywords: []string{"현실감", "안정"}},
}

func TestExtractMatchesElements(t *testing.T) {
	doc := narrative.Extract("그림의 집과 나무가 안정적으로 배치되어 있습니다", guideEntries)
	if len(doc.Elements) != 2 {
		t.Fatalf("expected 2 matched elements, got %d", len(doc.Elements))
	}
	if doc.Elements[0].Element != "집" || doc.Elements[1].Element != "나무" {
		t.Fatalf("unexpected element order: %#v", doc.Elements)
	}
}

func TestExtractEmptyNarrative(t *testing.T) {
	doc := narrative.Extract("   ", guideEntries)
	if doc.RawText != "" {
		t.Fatalf("expected normalized empty text, got %q", doc.RawText)
	}
	if len(doc.Elements) != 0 {
		t.Fatalf("expected no elements, got %d", len(doc.Elements))
	}
}

func TestExtractUnknownElements(t *testing.T) {
	doc := narrative.Extract("바다와 배가 그려져 있습니다", guideEntries)
	if len(doc.Elements) != 0 {
		t.Fatalf("expected no matches, got %#v", doc.Elements)
	}
	if doc.RawText == "" {
		t.Fatal("raw text must be preserved even without matches")
	}
}

func TestElementKeywordsDeduplicates(t *testing.T) {
	doc := narrative.Extract("집 옆에 나무가 있습니다", guideEntries)
	keywords := doc.ElementKeywords()

	want := []string{"안정", "따뜻", "현실감"}
	if len(keywords) != len(want) {
		t.Fatalf("expected %v, got %v", want, keywords)
	}
	for i := range want {
		if keywords[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, keywords)
		}
	}
}

func TestAnalysisPromptRendersGuideAndDetections(t *testing.T) {
	prompt := narrative.AnalysisPrompt(guideEntries[:1], []string{"집", "창문"})

	if !strings.Contains(prompt, "- element: 집") {
		t.Fatal("expected guide block in prompt")
	}
	if !strings.Contains(prompt, "- emotion keywords: 안정, 따뜻") {
		t.Fatal("expected keyword line in prompt")
	}
	if !strings.Contains(prompt, "그림에서 다음 요소가 탐지되었습니다: 집, 창문") {
		t.Fatal("expected detection hint in prompt")
	}
}

func TestAnalysisPromptWithoutDetections(t *testing.T) {
	prompt := narrative.AnalysisPrompt(guideEntries[:1], nil)
	if strings.Contains(prompt, "탐지되었습니다") {
		t.Fatal("detection hint must be absent without labels")
	}
}

func TestSummaryPromptEmbedsNarrative(t *testing.T) {
	prompt := narrative.SummaryPrompt("1단계: 요소 식별 결과입니다.")
	if !strings.Contains(prompt, "1단계: 요소 식별 결과입니다.") {
		t.Fatal("expected narrative embedded in summary prompt")
	}
	if !strings.Contains(prompt, "분석 결과:") {
		t.Fatal("expected summary preamble")
	}
}
