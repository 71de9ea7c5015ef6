package utils

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"
)

func TestResolveUniquePathUnused(t *testing.T) {
	dir := t.TempDir()
	proposed := filepath.Join(dir, "Dune_puntos_8.mp4")

	if got := ResolveUniquePath(proposed); got != proposed {
		t.Errorf("Expected unchanged path %q, got %q", proposed, got)
	}
}

func TestResolveUniquePathCollisions(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"Dune_puntos_8.mp4", "Dune_puntos_8_2.mp4", "Dune_puntos_8_3.mp4"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatalf("Failed to create %s: %v", name, err)
		}
	}

	got := ResolveUniquePath(filepath.Join(dir, "Dune_puntos_8.mp4"))
	want := filepath.Join(dir, "Dune_puntos_8_4.mp4")
	if got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
	if _, err := os.Stat(got); !os.IsNotExist(err) {
		t.Errorf("Expected %q to not exist, stat error: %v", got, err)
	}
}

func TestResolveUniquePathProbeCount(t *testing.T) {
	for _, collisions := range []int{0, 1, 5} {
		var probes []string
		exists := func(p string) bool {
			probes = append(probes, p)
			return len(probes) <= collisions
		}

		got := resolveUniquePath(filepath.Join("videos", "Alien.mov"), exists)

		if len(probes) != collisions+1 {
			t.Errorf("collisions=%d: expected %d probes, got %d", collisions, collisions+1, len(probes))
		}
		if got != probes[len(probes)-1] {
			t.Errorf("collisions=%d: expected the last probed candidate %q, got %q", collisions, probes[len(probes)-1], got)
		}
		for i := 1; i < len(probes); i++ {
			want := filepath.Join("videos", "Alien_"+strconv.Itoa(i+1)+".mov")
			if probes[i] != want {
				t.Errorf("collisions=%d: probe %d expected %q, got %q", collisions, i, want, probes[i])
			}
		}
	}
}

func TestResolveUniquePathDoesNotOverwrite(t *testing.T) {
	dir := t.TempDir()
	existing := filepath.Join(dir, "Oppenheimer_puntos_9.mkv")
	if err := os.WriteFile(existing, []byte("first"), 0o644); err != nil {
		t.Fatalf("Failed to create file: %v", err)
	}

	// Running twice against the same directory keeps disambiguating.
	first := ResolveUniquePath(existing)
	if err := os.WriteFile(first, []byte("second"), 0o644); err != nil {
		t.Fatalf("Failed to create file: %v", err)
	}
	second := ResolveUniquePath(existing)

	if first == existing || second == existing || first == second {
		t.Errorf("Expected distinct disambiguated paths, got %q and %q", first, second)
	}
	data, _ := os.ReadFile(existing)
	if string(data) != "first" {
		t.Errorf("Existing file was modified: %q", data)
	}
}
