package main

import "testing"

func TestNormalizeEntity(t *testing.T) {
	cases := map[string]string{
		"Dish":         "dish",
		" Menu Item ":  "menu_item",
		"review":       "review",
		"../etc":       "etc",
	}
	for in, want := range cases {
		if got := normalizeEntity(in); got != want {
			t.Errorf("normalizeEntity(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestUploadEntities(t *testing.T) {
	for _, entity := range []string{"dish", "menu_item", "hero", "review"} {
		if !uploadEntities[entity] {
			t.Errorf("expected %q to accept uploads", entity)
		}
	}
	if uploadEntities["customer"] {
		t.Error("customer must not accept uploads")
	}
}
