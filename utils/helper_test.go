package utils_test

import (
	"testing"
	"time"

	"github.com/vsfastfood/restaurant_backend/utils"
)

func TestLocalDateString_RestaurantTimezone(t *testing.T) {
	// 2026-08-29 20:30 UTC is already 2026-08-30 02:00 in Asia/Kolkata.
	instant := time.Date(2026, 8, 29, 20, 30, 0, 0, time.UTC)
	if got := utils.LocalDateString(instant); got != "2026-08-30" {
		t.Errorf("expected 2026-08-30, got %s", got)
	}

	instant = time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	if got := utils.LocalDateString(instant); got != "2026-08-29" {
		t.Errorf("expected 2026-08-29, got %s", got)
	}
}

func TestValidDateString(t *testing.T) {
	valid := []string{"2026-08-30", "2000-01-01", "2026-02-28"}
	for _, s := range valid {
		if !utils.ValidDateString(s) {
			t.Errorf("expected %q to be valid", s)
		}
	}

	invalid := []string{"", "30-08-2026", "2026/08/30", "2026-13-01", "2026-02-30", "today"}
	for _, s := range invalid {
		if utils.ValidDateString(s) {
			t.Errorf("expected %q to be invalid", s)
		}
	}
}

func TestIsValidEmail(t *testing.T) {
	if !utils.IsValidEmail("asha@example.com") {
		t.Error("expected a plain address to be valid")
	}
	for _, s := range []string{"", "no-at-sign", "a@", "@b.com"} {
		if utils.IsValidEmail(s) {
			t.Errorf("expected %q to be invalid", s)
		}
	}
}

func TestUniqueSlice(t *testing.T) {
	got := utils.UniqueSlice([]string{"a", "b", "a", "c", "b"})
	want := []string{"a", "b", "c"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestParseDecimal(t *testing.T) {
	d, err := utils.ParseDecimal("  150.50 ")
	if err != nil {
		t.Fatalf("ParseDecimal: %v", err)
	}
	if d.String() != "150.5" {
		t.Errorf("expected 150.5, got %s", d)
	}

	if _, err := utils.ParseDecimal(""); err == nil {
		t.Error("expected an error for an empty string")
	}
	if _, err := utils.ParseDecimal("abc"); err == nil {
		t.Error("expected an error for a non-numeric string")
	}
}

func TestExtractObjectKeyFromURL(t *testing.T) {
	cases := map[string]string{
		"https://storage.googleapis.com/vsf-bucket/dish/abc.jpg": "dish/abc.jpg",
		"dish/abc.jpg": "dish/abc.jpg",
		"":             "",
	}
	for in, want := range cases {
		if got := utils.ExtractObjectKeyFromURL(in); got != want {
			t.Errorf("ExtractObjectKeyFromURL(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestThumbnailObjectKey(t *testing.T) {
	cases := map[string]string{
		"review/abc.jpg":    "review/thumbnails/abc.jpg",
		"dish/nested/x.png": "dish/nested/thumbnails/x.png",
		"solo.jpg":          "thumbnails/solo.jpg",
	}
	for in, want := range cases {
		if got := utils.ThumbnailObjectKey(in); got != want {
			t.Errorf("ThumbnailObjectKey(%q) = %q, want %q", in, got, want)
		}
	}
}
