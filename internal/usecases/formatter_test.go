package usecases

import (
	"notdienst_bot/internal/config"
	"notdienst_bot/internal/entities"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestFormatPharmacies(t *testing.T) {
	m := config.DefaultMessages("@c")
	got := FormatPharmacies(m, []entities.Pharmacy{
		{Name: "A", Street: "Weg 2", PostalCode: "80331", City: "München", Phone: "1", ServiceTime: "ganztags"},
		{Name: "B", Street: "Platz 3", PostalCode: "80331", City: "München", Phone: "2", ServiceTime: "nachts"},
	})

	if !strings.HasPrefix(got, m.ResultsHeader+"\n\n") {
		t.Errorf("missing header: %q", got)
	}
	if strings.Index(got, "A") > strings.Index(got, ": B\n") {
		t.Error("pharmacies out of order")
	}
	want := m.AddressLabel + ": Platz 3, 80331 München\n"
	if !strings.Contains(got, want) {
		t.Errorf("missing %q in %q", want, got)
	}
	if !strings.Contains(got, "query=Weg+2,+80331+München\n\n") {
		t.Errorf("maps link not encoded: %q", got)
	}
}

func TestFormatPharmaciesEmptyAndNil(t *testing.T) {
	m := config.DefaultMessages("@c")
	if FormatPharmacies(m, nil) != m.NotFound {
		t.Error("nil list should render not-found text")
	}
	if FormatPharmacies(m, []entities.Pharmacy{}) != m.NotFound {
		t.Error("empty list should render not-found text")
	}
}

func TestMapsLink(t *testing.T) {
	got := MapsLink("Hauptstr 1, 10115 Berlin")
	want := "https://www.google.com/maps/search/?api=1&query=Hauptstr+1,+10115+Berlin"
	if got != want {
		t.Errorf("MapsLink = %q, want %q", got, want)
	}
}

func TestSplitMessage(t *testing.T) {
	if got := splitMessage("short", 10); len(got) != 1 || got[0] != "short" {
		t.Errorf("short text split into %q", got)
	}

	text := "aaaa\n\nbbbb\n\ncccc\n\n"
	got := splitMessage(text, 12)
	if len(got) != 2 || got[0] != "aaaa\n\nbbbb\n\n" || got[1] != "cccc\n\n" {
		t.Errorf("split = %q", got)
	}
	if strings.Join(got, "") != text {
		t.Error("split lost content")
	}

	long := strings.Repeat("ä", 25)
	got = splitMessage(long, 10)
	if len(got) != 3 {
		t.Fatalf("split into %d chunks, want 3", len(got))
	}
	for _, c := range got {
		if utf8.RuneCountInString(c) > 10 {
			t.Errorf("chunk %q exceeds limit", c)
		}
	}
}
