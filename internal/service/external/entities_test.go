package external

import (
	"testing"
)

func TestCandidates_RequiresLiteratureTrigger(t *testing.T) {
	extractor := NewLiteratureExtractor()

	got := extractor.Candidates("Hôm nay Nguyễn Du đi chợ cùng Hồ Xuân Hương", 2)
	if len(got) != 0 {
		t.Errorf("expected no candidates without a trigger word, got %v", got)
	}
}

func TestCandidates_ExtractsCapitalizedNames(t *testing.T) {
	extractor := NewLiteratureExtractor()

	got := extractor.Candidates("Cho mình hỏi về nhà thơ Nguyễn Du và tác phẩm của ông", 2)
	if len(got) != 1 {
		t.Fatalf("expected 1 candidate, got %v", got)
	}
	if got[0] != "Nguyễn Du" {
		t.Errorf("expected Nguyễn Du, got %q", got[0])
	}
}

func TestCandidates_FiltersGeography(t *testing.T) {
	extractor := NewLiteratureExtractor()

	got := extractor.Candidates("Văn học Việt Nam có nhà thơ Xuân Quỳnh không?", 2)
	for _, c := range got {
		if c == "Việt Nam" {
			t.Errorf("stoplisted place leaked through: %v", got)
		}
	}
	if len(got) != 1 || got[0] != "Xuân Quỳnh" {
		t.Errorf("expected only Xuân Quỳnh, got %v", got)
	}
}

func TestCandidates_CapsAtMax(t *testing.T) {
	extractor := NewLiteratureExtractor()

	got := extractor.Candidates("So sánh nhà văn Nam Cao, nhà thơ Tố Hữu và nhà thơ Chế Lan Viên", 2)
	if len(got) != 2 {
		t.Errorf("expected 2 candidates, got %v", got)
	}
}

func TestCandidates_PunctuationEndsSpan(t *testing.T) {
	extractor := NewLiteratureExtractor()

	got := extractor.Candidates("Nhà thơ Hàn Mặc Tử, Huy Cận là ai?", 2)
	if len(got) != 2 {
		t.Fatalf("expected 2 candidates, got %v", got)
	}
	if got[0] != "Hàn Mặc Tử" {
		t.Errorf("expected span to end at the comma, got %q", got[0])
	}
	if got[1] != "Huy Cận" {
		t.Errorf("expected second name, got %q", got[1])
	}
}

func TestCandidates_DeduplicatesAndHandlesZeroMax(t *testing.T) {
	extractor := NewLiteratureExtractor()

	got := extractor.Candidates("Nhà thơ Xuân Diệu và Xuân Diệu là một người", 2)
	if len(got) != 1 {
		t.Errorf("expected deduplication, got %v", got)
	}

	if got := extractor.Candidates("nhà thơ Nguyễn Du", 0); len(got) != 0 {
		t.Errorf("expected nothing for max 0, got %v", got)
	}
}
