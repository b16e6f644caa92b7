package analysis

import (
	"reflect"
	"testing"
)

func TestExtractKeywords(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "english question",
			text: "What is the weather today?",
			want: []string{"what", "is", "the", "weather", "today"},
		},
		{
			name: "lowercases and dedups",
			text: "Test test TEST autre",
			want: []string{"test", "autre"},
		},
		{
			name: "accented words survive",
			text: "Où est passé le café?",
			want: []string{"où", "est", "passé", "le", "café"},
		},
		{
			name: "punctuation only",
			text: "?! ... --",
			want: nil,
		},
		{
			name: "empty",
			text: "",
			want: nil,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := ExtractKeywords(tc.text); !reflect.DeepEqual(got, tc.want) {
				t.Errorf("ExtractKeywords(%q) = %v, want %v", tc.text, got, tc.want)
			}
		})
	}
}
