package model

import "testing"

func TestCompetencyLevelFor(t *testing.T) {
	cases := []struct {
		percentage float64
		want       CompetencyLevel
	}{
		{0, CompetencyBeginner},
		{49.9, CompetencyBeginner},
		{50, CompetencyIntermediate},
		{69.9, CompetencyIntermediate},
		{70, CompetencyAdvanced},
		{89.9, CompetencyAdvanced},
		{90, CompetencyExpert},
		{100, CompetencyExpert},
	}

	for _, tc := range cases {
		if got := CompetencyLevelFor(tc.percentage); got != tc.want {
			t.Errorf("CompetencyLevelFor(%v) = %s, want %s", tc.percentage, got, tc.want)
		}
	}
}

func TestContentTypeValid(t *testing.T) {
	if !ContentTypeCourse.Valid() || !ContentTypeOER.Valid() {
		t.Error("known content types must be valid")
	}
	if ContentType("lesson").Valid() {
		t.Error("unknown content type must be invalid")
	}
}
