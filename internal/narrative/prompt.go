package narrative

import (
	"fmt"
	"strings"

	"inkwit/internal/knowledge"
)

const analysisInstructions = `모든 답변은 반드시 한글로 작성해 주세요.
주어진 그림은 실제 장소나 인물이 아닌, 심리 검사를 위해 직접 손으로 그린 그림입니다.
분석은 전문가처럼 자세하고 상세히 제시해야 하며, 모든 답변은 ~입니다 체로 적습니다.

아래의 세 단계로 분석을 수행해 주세요:

1. **심리 분석 요소 식별**
   - 그림에서 보이는 시각적 특징들을 가능한 한 많이 구체적으로 식별해 주세요.
   - 심리적 해석 없이 관찰 가능한 요소만 나열해 주세요.

2. **요소별 심층 분석**
   - 집, 나무, 사람 순서로 분석합니다.
   - 각 요소에 대해 그 특징이 시사하는 심리적 해석을 구체적으로 제시해 주세요.

3. **주요 감정 키워드**
   - 아래와 같이 요소, 조건 없이 감정 키워드만 한 줄씩 나열해 주세요.
   - 최소 3개 이상의 키워드를 반드시 포함해 주세요.
   - 예시:
     불안, 안정, 자기표현, 갈등

아래의 해석 기준을 반드시 참고하여 분석을 수행하세요:`

// AnalysisPrompt builds the drawing interpretation prompt. The knowledge
// entries are rendered back into the guide format so the model anchors its
// narrative on known elements, and detected labels (when present) direct
// attention to regions the detector found.
func AnalysisPrompt(entries []knowledge.Entry, detectedLabels []string) string {
	var b strings.Builder
	b.WriteString(analysisInstructions)
	b.WriteString("\n\n")
	b.WriteString(renderGuide(entries))
	if len(detectedLabels) > 0 {
		b.WriteString("\n\n그림에서 다음 요소가 탐지되었습니다: ")
		b.WriteString(strings.Join(detectedLabels, ", "))
	}
	return b.String()
}

// SummaryPrompt builds the follow-up prompt that condenses a narrative into
// reader-facing summary text.
func SummaryPrompt(narrativeText string) string {
	return fmt.Sprintf(`아래의 그림 심리 분석 결과(1,2,3단계)를 참고하여,
사용자가 이해하기 쉽도록 전체적인 심리 상태와 특징을 자연스럽게 요약·정리해주는 해석문을 작성해 주세요.
반드시 ~입니다 체로 작성해 주세요.

분석 결과:
%s`, narrativeText)
}

func renderGuide(entries []knowledge.Entry) string {
	var b strings.Builder
	for i, entry := range entries {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString("- element: ")
		b.WriteString(entry.Element)
		b.WriteString("\n- condition: ")
		b.WriteString(entry.Condition)
		b.WriteString("\n- emotion keywords: ")
		b.WriteString(strings.Join(entry.Keywords, ", "))
		b.WriteString("\n")
	}
	return b.String()
}
