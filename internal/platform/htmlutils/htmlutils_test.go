package htmlutils

import "testing"

func TestStripTags(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		expected string
	}{
		{name: "plain text", in: "기준금리 동결", expected: "기준금리 동결"},
		{name: "bold highlight", in: "한국은행 <b>기준금리</b> 동결", expected: "한국은행 기준금리 동결"},
		{name: "entities", in: "물가 &amp; 금리", expected: "물가 & 금리"},
		{name: "nested tags", in: "<p><b>코스피</b> 상승 <i>마감</i></p>", expected: "코스피 상승 마감"},
		{name: "surrounding whitespace", in: "  <b>환율</b>  ", expected: "환율"},
		{name: "empty", in: "", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripTags(tt.in); got != tt.expected {
				t.Errorf("StripTags(%q) = %q, want %q", tt.in, got, tt.expected)
			}
		})
	}
}
